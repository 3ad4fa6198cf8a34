package awssecurity

import (
	"context"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
	"github.com/cloudmap/cloudmap/internal/rules"
)

// globalRegion is the canonical region for the S3 and IAM control planes.
const globalRegion = "us-east-1"

// defaultRegionConcurrency bounds parallel DescribeSecurityGroups calls.
const defaultRegionConcurrency = 4

// DefaultSecurityCollector is the production SecurityCollector.
// S3 and IAM are collected once from us-east-1; security groups are
// collected per region with bounded parallelism.
type DefaultSecurityCollector struct {
	factory     secClientFactory
	concurrency int
}

// NewDefaultSecurityCollector returns a DefaultSecurityCollector wired to
// production AWS SDK clients.
func NewDefaultSecurityCollector() *DefaultSecurityCollector {
	return &DefaultSecurityCollector{factory: newDefaultSecClients, concurrency: defaultRegionConcurrency}
}

// NewDefaultSecurityCollectorWithFactory returns a DefaultSecurityCollector
// that uses the supplied factory, allowing tests to inject fake clients.
func NewDefaultSecurityCollectorWithFactory(f secClientFactory) *DefaultSecurityCollector {
	return &DefaultSecurityCollector{factory: f, concurrency: defaultRegionConcurrency}
}

// CollectSecurityGroups implements SecurityCollector.
func (c *DefaultSecurityCollector) CollectSecurityGroups(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
	regions []string,
) ([]models.SecurityGroup, error) {
	return collectSecurityGroupsByRegion(ctx, regions, c.concurrency, func(region string) ec2SecurityAPIClient {
		return c.factory(provider.ConfigForRegion(profile, region)).EC2
	})
}

// CollectBuckets implements SecurityCollector.
func (c *DefaultSecurityCollector) CollectBuckets(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
) ([]models.S3Bucket, rules.BucketACLAccessor, error) {
	client := c.factory(provider.ConfigForRegion(profile, globalRegion)).S3
	buckets, err := collectS3Buckets(ctx, client)
	if err != nil {
		return nil, nil, err
	}
	return buckets, newBucketACLReader(client, buckets), nil
}

// CollectIAMUsers implements SecurityCollector.
func (c *DefaultSecurityCollector) CollectIAMUsers(
	ctx context.Context,
	profile *common.ProfileConfig,
	provider common.AWSClientProvider,
) ([]models.IAMUser, rules.UserPolicyAccessor, error) {
	client := c.factory(provider.ConfigForRegion(profile, globalRegion)).IAM
	users, err := collectIAMUsers(ctx, client)
	if err != nil {
		return nil, nil, err
	}
	return users, &userPolicyReader{client: client}, nil
}
