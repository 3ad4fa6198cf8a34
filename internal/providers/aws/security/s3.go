package awssecurity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
)

// collectS3Buckets lists all S3 buckets in the account.
func collectS3Buckets(ctx context.Context, client s3APIClient) ([]models.S3Bucket, error) {
	paginator := s3svc.NewListBucketsPaginator(client, &s3svc.ListBucketsInput{})
	var buckets []models.S3Bucket
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list S3 buckets: %w", common.Simplify(err))
		}
		for _, b := range page.Buckets {
			buckets = append(buckets, models.S3Bucket{
				Name:   aws.ToString(b.Name),
				Region: aws.ToString(b.BucketRegion),
			})
		}
	}
	return buckets, nil
}

// bucketACLReader implements rules.BucketACLAccessor with GetBucketAcl.
// Requests are sent to the bucket's own region when ListBuckets reported one,
// which avoids redirect errors for buckets outside us-east-1.
type bucketACLReader struct {
	client  s3APIClient
	regions map[string]string
}

func newBucketACLReader(client s3APIClient, buckets []models.S3Bucket) *bucketACLReader {
	regions := make(map[string]string, len(buckets))
	for _, b := range buckets {
		if b.Region != "" {
			regions[b.Name] = b.Region
		}
	}
	return &bucketACLReader{client: client, regions: regions}
}

// BucketGrants returns the grants of bucket's ACL.
func (r *bucketACLReader) BucketGrants(ctx context.Context, bucket string) ([]models.BucketGrant, error) {
	var optFns []func(*s3svc.Options)
	if region, ok := r.regions[bucket]; ok {
		optFns = append(optFns, func(o *s3svc.Options) { o.Region = region })
	}

	out, err := r.client.GetBucketAcl(ctx, &s3svc.GetBucketAclInput{Bucket: aws.String(bucket)}, optFns...)
	if err != nil {
		return nil, common.Simplify(err)
	}

	grants := make([]models.BucketGrant, 0, len(out.Grants))
	for _, g := range out.Grants {
		grant := models.BucketGrant{Permission: string(g.Permission)}
		if g.Grantee != nil {
			grant.GranteeType = string(g.Grantee.Type)
			grant.URI = aws.ToString(g.Grantee.URI)
		}
		grants = append(grants, grant)
	}
	return grants, nil
}
