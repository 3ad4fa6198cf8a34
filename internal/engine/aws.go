package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
	awssecurity "github.com/cloudmap/cloudmap/internal/providers/aws/security"
	"github.com/cloudmap/cloudmap/internal/rules"
)

// AWSEngine implements Engine for the AWS categories.
// It never calls the AWS SDK directly; all calls are delegated to the
// AWSClientProvider and SecurityCollector.
type AWSEngine struct {
	provider  common.AWSClientProvider
	collector awssecurity.SecurityCollector
	registry  rules.RuleRegistry
	logger    *slog.Logger
}

// NewAWSEngine constructs an AWSEngine wired to the supplied provider,
// collector and rule registry. A nil logger uses slog.Default().
func NewAWSEngine(
	provider common.AWSClientProvider,
	collector awssecurity.SecurityCollector,
	registry rules.RuleRegistry,
	logger *slog.Logger,
) *AWSEngine {
	return &AWSEngine{
		provider:  provider,
		collector: collector,
		registry:  registry,
		logger:    loggerOrDefault(logger),
	}
}

// RunScan implements Engine.
func (e *AWSEngine) RunScan(ctx context.Context, opts ScanOptions) (*models.FindingsReport, error) {
	if err := checkPlatform(models.PlatformAWS, opts.Platform); err != nil {
		return nil, err
	}
	categories, err := resolveCategories(models.PlatformAWS, opts.Categories)
	if err != nil {
		return nil, err
	}
	selected, err := e.registry.Select(categories)
	if err != nil {
		return nil, err
	}

	report := models.NewFindingsReport(models.PlatformAWS)

	profile, err := e.provider.LoadProfile(ctx, common.LoadOptions{
		Profile: opts.Profile,
		Region:  firstOrEmpty(opts.Regions),
		Static:  opts.AWSCredentials,
	})
	if err != nil {
		e.logger.Error("AWS setup failed", "profile", opts.Profile, "error", err)
		failAll(report, categories, err)
		return report, nil
	}
	report.Scope = profile.AccountID

	regions := opts.Regions
	if len(regions) == 0 {
		regions = []string{profile.Region}
	}
	report.Regions = regions

	e.logger.Debug("starting AWS scan",
		"profile", profile.ProfileName, "account", profile.AccountID, "regions", regions)

	for _, rule := range selected {
		category := rule.Category()
		rc, err := e.collect(ctx, category, profile, regions)
		if err != nil {
			e.logger.Error("category scan failed", "category", category, "error", err)
			report.SetError(category, err)
			continue
		}
		findings := rule.Evaluate(ctx, rc)
		e.logger.Debug("category evaluated", "category", category, "rule", rule.ID(), "findings", len(findings))
		report.Set(category, findings)
	}
	return report, nil
}

// collect fetches the records one category needs into a RuleContext.
func (e *AWSEngine) collect(
	ctx context.Context,
	category models.Category,
	profile *common.ProfileConfig,
	regions []string,
) (rules.RuleContext, error) {
	var rc rules.RuleContext
	var err error
	switch category {
	case models.CategorySecurityGroups:
		rc.SecurityGroups, err = e.collector.CollectSecurityGroups(ctx, profile, e.provider, regions)
	case models.CategoryS3Buckets:
		rc.Buckets, rc.BucketACLs, err = e.collector.CollectBuckets(ctx, profile, e.provider)
	case models.CategoryIAMPolicies:
		rc.IAMUsers, rc.UserPolicies, err = e.collector.CollectIAMUsers(ctx, profile, e.provider)
	default:
		err = fmt.Errorf("%w: %q", models.ErrUnknownCategory, category)
	}
	return rc, err
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
