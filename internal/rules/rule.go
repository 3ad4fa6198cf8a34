package rules

import (
	"context"

	"github.com/cloudmap/cloudmap/internal/models"
)

// BucketACLAccessor retrieves the ACL grants of a single S3 bucket.
type BucketACLAccessor interface {
	BucketGrants(ctx context.Context, bucket string) ([]models.BucketGrant, error)
}

// UserPolicyAccessor retrieves the names of the managed policies attached to
// a single IAM user.
type UserPolicyAccessor interface {
	AttachedPolicyNames(ctx context.Context, userName string) ([]string, error)
}

// StorageNetworkRuleAccessor retrieves the network rule set of a single
// storage account. A nil rule set with a nil error means the account has no
// network rule set configured.
type StorageNetworkRuleAccessor interface {
	NetworkRuleSet(ctx context.Context, account models.StorageAccount) (*models.StorageNetworkRuleSet, error)
}

// RuleContext carries every collected record for one scan, plus the accessors
// used for per-record lookups. Each rule reads only the fields of its own
// category; fields for categories that were not collected stay nil.
type RuleContext struct {
	SecurityGroups  []models.SecurityGroup
	Buckets         []models.S3Bucket
	IAMUsers        []models.IAMUser
	NSGs            []models.NetworkSecurityGroup
	StorageAccounts []models.StorageAccount

	BucketACLs          BucketACLAccessor
	UserPolicies        UserPolicyAccessor
	StorageNetworkRules StorageNetworkRuleAccessor
}

// Rule evaluates the records of one category.
// Rules must be stateless. Per-record lookup failures are reported as
// findings, never returned as errors, and the result is never empty.
type Rule interface {
	// ID returns the unique, stable identifier for this rule (e.g. "SG_OPEN_CIDR").
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Category returns the category whose findings this rule produces.
	Category() models.Category

	// Evaluate inspects rc and returns the category's findings.
	Evaluate(ctx context.Context, rc RuleContext) []models.Finding
}

// RuleRegistry manages the set of active rules, one per category.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on a duplicate category.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// Lookup returns the rule registered for category.
	Lookup(category models.Category) (Rule, bool)

	// Select returns the rules for categories, in registration order.
	// An empty list selects every rule.
	Select(categories []models.Category) ([]Rule, error)
}

// orPlaceholder returns findings, or the single placeholder when findings
// is empty.
func orPlaceholder(findings []models.Finding, placeholder models.Finding) []models.Finding {
	if len(findings) == 0 {
		return []models.Finding{placeholder}
	}
	return findings
}
