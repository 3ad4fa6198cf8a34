package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnknownCategory is returned when a category name is not one of the
	// fixed Category values.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnknownPlatform is returned when a platform name is not aws or azure.
	ErrUnknownPlatform = errors.New("unsupported platform")
)

// Platform identifies the cloud provider being scanned.
type Platform string

const (
	PlatformAWS   Platform = "aws"
	PlatformAzure Platform = "azure"
)

// ParsePlatform validates s and returns the matching Platform.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case PlatformAWS, PlatformAzure:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

// Category names one resource family. Each category owns exactly one list
// of findings per scan.
type Category string

const (
	CategorySecurityGroups  Category = "security_groups"
	CategoryS3Buckets       Category = "s3_buckets"
	CategoryIAMPolicies     Category = "iam_policies"
	CategoryNSGRules        Category = "nsg_rules"
	CategoryStorageAccounts Category = "storage_accounts"
)

// AllCategories lists every category in canonical order.
var AllCategories = []Category{
	CategorySecurityGroups,
	CategoryS3Buckets,
	CategoryIAMPolicies,
	CategoryNSGRules,
	CategoryStorageAccounts,
}

// ParseCategory validates s and returns the matching Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllCategories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// Platform returns the provider that owns c.
func (c Category) Platform() Platform {
	switch c {
	case CategoryNSGRules, CategoryStorageAccounts:
		return PlatformAzure
	default:
		return PlatformAWS
	}
}

// CategoriesFor returns the categories owned by p in canonical order.
func CategoriesFor(p Platform) []Category {
	var out []Category
	for _, c := range AllCategories {
		if c.Platform() == p {
			out = append(out, c)
		}
	}
	return out
}

// Finding is a single human-readable issue line. Findings are flat text:
// no severity, identifier or timestamp fields.
type Finding string

const errorFindingPrefix = "error: "

// ErrorFinding returns the single entry that replaces a category's findings
// when the category could not be fetched or evaluated.
func ErrorFinding(err error) Finding {
	return Finding(errorFindingPrefix + err.Error())
}

// IsError reports whether f was produced by ErrorFinding.
func (f Finding) IsError() bool {
	return strings.HasPrefix(string(f), errorFindingPrefix)
}

// FindingsReport maps each scanned category to its ordered findings.
// It is created fresh per scan and never persisted. Scope is the AWS account
// ID or the Azure subscription ID.
type FindingsReport struct {
	ReportID    string                 `json:"report_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Platform    Platform               `json:"platform"`
	Scope       string                 `json:"scope,omitempty"`
	Regions     []string               `json:"regions,omitempty"`
	Findings    map[Category][]Finding `json:"findings"`

	order []Category
}

// NewFindingsReport returns an empty report for platform.
func NewFindingsReport(platform Platform) *FindingsReport {
	now := time.Now().UTC()
	return &FindingsReport{
		ReportID:    fmt.Sprintf("scan-%d", now.UnixNano()),
		GeneratedAt: now,
		Platform:    platform,
		Findings:    make(map[Category][]Finding),
	}
}

// Set stores findings for category, replacing anything recorded earlier.
func (r *FindingsReport) Set(category Category, findings []Finding) {
	if _, seen := r.Findings[category]; !seen {
		r.order = append(r.order, category)
	}
	r.Findings[category] = findings
}

// SetError replaces the category's findings with a single error entry.
func (r *FindingsReport) SetError(category Category, err error) {
	r.Set(category, []Finding{ErrorFinding(err)})
}

// Categories returns the recorded categories in the order they were set.
// Reports decoded from JSON have no insertion order; their categories are
// returned in canonical order instead.
func (r *FindingsReport) Categories() []Category {
	if len(r.order) == len(r.Findings) {
		out := make([]Category, len(r.order))
		copy(out, r.order)
		return out
	}
	var out []Category
	for _, c := range AllCategories {
		if _, ok := r.Findings[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// HasErrors reports whether any category failed.
func (r *FindingsReport) HasErrors() bool {
	for _, findings := range r.Findings {
		for _, f := range findings {
			if f.IsError() {
				return true
			}
		}
	}
	return false
}
