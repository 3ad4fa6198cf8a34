package awssecurity

import (
	"context"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
	"github.com/cloudmap/cloudmap/internal/rules"
)

// SecurityCollector fetches the typed records for each AWS category.
//
// Implementations never apply business logic or produce findings. A returned
// error means the whole category could not be fetched; per-record lookups are
// deferred to the returned accessors so their failures stay per-record.
type SecurityCollector interface {
	// CollectSecurityGroups lists the security groups of every region, in
	// region order.
	CollectSecurityGroups(
		ctx context.Context,
		profile *common.ProfileConfig,
		provider common.AWSClientProvider,
		regions []string,
	) ([]models.SecurityGroup, error)

	// CollectBuckets lists the account's buckets and returns an accessor for
	// their ACLs.
	CollectBuckets(
		ctx context.Context,
		profile *common.ProfileConfig,
		provider common.AWSClientProvider,
	) ([]models.S3Bucket, rules.BucketACLAccessor, error)

	// CollectIAMUsers lists the account's IAM users and returns an accessor
	// for their attached managed policies.
	CollectIAMUsers(
		ctx context.Context,
		profile *common.ProfileConfig,
		provider common.AWSClientProvider,
	) ([]models.IAMUser, rules.UserPolicyAccessor, error)
}
