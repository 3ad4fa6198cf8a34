// Package aws provides the AWS misconfiguration rule pack.
// The CLI registers New() into a DefaultRuleRegistry before invoking the
// AWS engine. Registration order is the order categories appear in reports.
package aws

import "github.com/cloudmap/cloudmap/internal/rules"

// New returns the AWS rule pack, one rule per AWS category.
func New() []rules.Rule {
	return []rules.Rule{
		rules.SecurityGroupOpenCIDRRule{}, // security_groups: permission open to 0.0.0.0/0
		rules.S3PublicACLRule{},           // s3_buckets:      ACL grants AllUsers
		rules.IAMAdminPolicyRule{},        // iam_policies:    AdministratorAccess attached
	}
}
