package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/azure"
	"github.com/cloudmap/cloudmap/internal/rules"
)

// AzureEngine implements Engine for the Azure categories.
type AzureEngine struct {
	connector azure.Connector
	registry  rules.RuleRegistry
	logger    *slog.Logger
}

// NewAzureEngine constructs an AzureEngine. A nil logger uses slog.Default().
func NewAzureEngine(connector azure.Connector, registry rules.RuleRegistry, logger *slog.Logger) *AzureEngine {
	return &AzureEngine{
		connector: connector,
		registry:  registry,
		logger:    loggerOrDefault(logger),
	}
}

// RunScan implements Engine. opts.SubscriptionID must already be resolved;
// a missing subscription is a setup failure recorded for every category.
func (e *AzureEngine) RunScan(ctx context.Context, opts ScanOptions) (*models.FindingsReport, error) {
	if err := checkPlatform(models.PlatformAzure, opts.Platform); err != nil {
		return nil, err
	}
	categories, err := resolveCategories(models.PlatformAzure, opts.Categories)
	if err != nil {
		return nil, err
	}
	selected, err := e.registry.Select(categories)
	if err != nil {
		return nil, err
	}

	report := models.NewFindingsReport(models.PlatformAzure)
	report.Scope = opts.SubscriptionID

	collector, err := e.connector.Connect(ctx, opts.SubscriptionID, opts.AzureCredentials)
	if err != nil {
		e.logger.Error("Azure setup failed", "subscription", opts.SubscriptionID, "error", err)
		failAll(report, categories, err)
		return report, nil
	}

	e.logger.Debug("starting Azure scan", "subscription", opts.SubscriptionID)

	for _, rule := range selected {
		category := rule.Category()
		rc, err := collectAzure(ctx, collector, category)
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

func collectAzure(ctx context.Context, collector azure.ResourceCollector, category models.Category) (rules.RuleContext, error) {
	var rc rules.RuleContext
	var err error
	switch category {
	case models.CategoryNSGRules:
		rc.NSGs, err = collector.CollectNSGs(ctx)
	case models.CategoryStorageAccounts:
		rc.StorageAccounts, rc.StorageNetworkRules, err = collector.CollectStorageAccounts(ctx)
	default:
		err = fmt.Errorf("%w: %q", models.ErrUnknownCategory, category)
	}
	return rc, err
}
