package awssecurity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3APIClient is the narrow S3 interface used by the security collector.
// It embeds ListBucketsAPIClient so the SDK paginator can be used directly.
type s3APIClient interface {
	s3svc.ListBucketsAPIClient
	GetBucketAcl(ctx context.Context, params *s3svc.GetBucketAclInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketAclOutput, error)
}

// ec2SecurityAPIClient is the narrow EC2 interface used for security group
// collection. Only DescribeSecurityGroups is required.
type ec2SecurityAPIClient interface {
	ec2svc.DescribeSecurityGroupsAPIClient
}

// iamAPIClient is the narrow IAM interface used for users and their attached
// managed policies. Both operations are paginated.
type iamAPIClient interface {
	iamsvc.ListUsersAPIClient
	iamsvc.ListAttachedUserPoliciesAPIClient
}

// secClients bundles all AWS service clients used by the security collector.
type secClients struct {
	S3  s3APIClient
	EC2 ec2SecurityAPIClient
	IAM iamAPIClient
}

// secClientFactory creates secClients from an AWS config.
// Injection point: tests replace this with a function returning fake clients.
type secClientFactory func(cfg aws.Config) *secClients

// newDefaultSecClients creates production AWS SDK clients from the given config.
func newDefaultSecClients(cfg aws.Config) *secClients {
	return &secClients{
		S3:  s3svc.NewFromConfig(cfg),
		EC2: ec2svc.NewFromConfig(cfg),
		IAM: iamsvc.NewFromConfig(cfg),
	}
}
