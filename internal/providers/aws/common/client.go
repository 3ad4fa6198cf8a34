package common

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/cloudmap/cloudmap/internal/models"
)

// ProfileConfig is a resolved AWS profile with its SDK configuration and
// initialised service clients. It is the unit passed between provider
// functions and into the engine.
type ProfileConfig struct {
	// ProfileName is the name from ~/.aws/credentials, "default", or
	// "static" when explicit access keys were supplied.
	ProfileName string

	// AccountID is the resolved AWS account ID for this profile (via STS).
	AccountID string

	// Region is the home region for this profile configuration.
	Region string

	// Config is the fully loaded AWS SDK v2 configuration.
	Config aws.Config

	// Clients holds initialised service clients scoped to the home region.
	Clients *ClientSet
}

// LoadOptions selects how credentials and the home region are resolved.
type LoadOptions struct {
	// Profile is a shared-config profile name. Empty means the default chain.
	Profile string

	// Region overrides the profile's configured region.
	Region string

	// Static, when non-nil, replaces the credential chain with fixed keys.
	Static *models.AWSCredentials
}

// AWSClientProvider loads AWS configurations.
// It is the sole entry point for AWS credential and region management across
// the provider layer.
type AWSClientProvider interface {
	// LoadProfile returns a ProfileConfig with the account ID resolved.
	LoadProfile(ctx context.Context, opts LoadOptions) (*ProfileConfig, error)

	// ListProfiles returns the profile names found in the shared config and
	// credentials files.
	ListProfiles() ([]string, error)

	// ConfigForRegion clones cfg with the target region set.
	ConfigForRegion(cfg *ProfileConfig, region string) aws.Config
}
