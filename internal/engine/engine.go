package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cloudmap/cloudmap/internal/models"
)

// ReportFormat controls the CLI output format.
type ReportFormat string

const (
	ReportFormatJSON  ReportFormat = "json"
	ReportFormatTable ReportFormat = "table"
)

// ScanOptions configures a single scan.
// It is the sole input to Engine.RunScan.
type ScanOptions struct {
	// Platform selects the provider. Engines bound to one platform reject
	// any other value; the empty string means "the engine's own platform".
	Platform models.Platform

	// Categories restricts the scan. Empty means every category of the
	// platform.
	Categories []models.Category

	// Profile is the named AWS profile to use. Empty means the default chain.
	Profile string

	// Regions is an explicit list of AWS regions to scan for security
	// groups. When empty the profile's home region is used.
	Regions []string

	// SubscriptionID is the Azure subscription to scan. Required for Azure.
	SubscriptionID string

	// AWSCredentials, when non-nil, replaces the AWS default credential chain.
	AWSCredentials *models.AWSCredentials

	// AzureCredentials, when non-nil, replaces the Azure default credential
	// chain with a service principal.
	AzureCredentials *models.AzureCredentials
}

// Engine is the central orchestration interface.
// For each selected category it fetches records, evaluates the category's
// rule, and stores the findings in the report.
//
// A returned error means the options were invalid and nothing was scanned.
// Fetch and authentication failures are recorded in the report instead.
type Engine interface {
	RunScan(ctx context.Context, opts ScanOptions) (*models.FindingsReport, error)
}

// resolveCategories validates requested against platform and returns the
// categories to scan. Empty requested means all of the platform's
// categories.
func resolveCategories(platform models.Platform, requested []models.Category) ([]models.Category, error) {
	if len(requested) == 0 {
		return models.CategoriesFor(platform), nil
	}
	for _, c := range requested {
		if c.Platform() != platform {
			return nil, fmt.Errorf("%w: %q is not a %s category", models.ErrUnknownCategory, c, platform)
		}
	}
	return requested, nil
}

// checkPlatform rejects options meant for another engine.
func checkPlatform(want models.Platform, got models.Platform) error {
	if got != "" && got != want {
		return fmt.Errorf("%w: %s engine cannot scan %q", models.ErrUnknownPlatform, want, got)
	}
	return nil
}

// failAll records err against every category. Used when setup fails before
// any category could be fetched.
func failAll(report *models.FindingsReport, categories []models.Category, err error) {
	for _, c := range categories {
		report.SetError(c, err)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
