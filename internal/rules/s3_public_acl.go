package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudmap/cloudmap/internal/models"
)

const (
	granteeTypeGroup = "Group"
	allUsersMarker   = "AllUsers"
)

// NoPublicBuckets is emitted when no bucket ACL grants access to everyone.
const NoPublicBuckets models.Finding = "No public S3 buckets found."

// CheckS3Buckets fetches each bucket's ACL through acls and flags buckets
// with a Group grantee whose URI contains the AllUsers marker. A failed ACL
// lookup becomes a finding for that bucket and the scan moves on.
func CheckS3Buckets(ctx context.Context, buckets []models.S3Bucket, acls BucketACLAccessor) []models.Finding {
	var findings []models.Finding
	for _, b := range buckets {
		grants, err := bucketGrants(ctx, acls, b.Name)
		if err != nil {
			findings = append(findings, models.Finding(
				fmt.Sprintf("Error checking bucket %s: %v", b.Name, err),
			))
			continue
		}
		if hasPublicGrant(grants) {
			findings = append(findings, models.Finding(
				fmt.Sprintf("S3 bucket %s has public access via ACL.", b.Name),
			))
		}
	}
	return orPlaceholder(findings, NoPublicBuckets)
}

func bucketGrants(ctx context.Context, acls BucketACLAccessor, bucket string) ([]models.BucketGrant, error) {
	if acls == nil {
		return nil, errors.New("no ACL accessor configured")
	}
	return acls.BucketGrants(ctx, bucket)
}

func hasPublicGrant(grants []models.BucketGrant) bool {
	for _, g := range grants {
		if g.GranteeType == granteeTypeGroup && strings.Contains(g.URI, allUsersMarker) {
			return true
		}
	}
	return false
}

// S3PublicACLRule flags S3 buckets whose ACL grants access to all users.
type S3PublicACLRule struct{}

func (r S3PublicACLRule) ID() string                { return "S3_PUBLIC_ACL" }
func (r S3PublicACLRule) Name() string              { return "S3 Bucket With Public ACL" }
func (r S3PublicACLRule) Category() models.Category { return models.CategoryS3Buckets }

// Evaluate runs CheckS3Buckets over rc.Buckets using rc.BucketACLs.
func (r S3PublicACLRule) Evaluate(ctx context.Context, rc RuleContext) []models.Finding {
	return CheckS3Buckets(ctx, rc.Buckets, rc.BucketACLs)
}
