// Package credentials gathers explicit cloud credentials from the
// environment, falling back to interactive prompts. Values are held in
// memory only and never written to disk.
package credentials

import (
	"fmt"
	"strings"

	"github.com/cloudmap/cloudmap/internal/models"
)

// Environment variable names read by Get and ResolveSubscription.
const (
	EnvAWSAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvAWSSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvAWSSessionToken    = "AWS_SESSION_TOKEN"
	EnvAzureTenantID      = "AZURE_TENANT_ID"
	EnvAzureClientID      = "AZURE_CLIENT_ID"
	EnvAzureClientSecret  = "AZURE_CLIENT_SECRET"
	EnvAzureSubscription  = "AZURE_SUBSCRIPTION_ID"
)

// subscriptionPlaceholder is the literal left in an unedited config file.
const subscriptionPlaceholder = "subscription_id"

// Credentials holds the credentials for exactly one platform.
type Credentials struct {
	AWS   *models.AWSCredentials
	Azure *models.AzureCredentials
}

// Getenv looks up an environment variable. os.Getenv satisfies it.
type Getenv func(key string) string

// Get returns credentials for platform. Each field is taken from the
// environment when set, and prompted for otherwise; secrets are prompted
// without echo. An unsupported platform is an error.
func Get(platform models.Platform, getenv Getenv, prompter Prompter) (*Credentials, error) {
	r := resolver{getenv: getenv, prompter: prompter}
	switch platform {
	case models.PlatformAWS:
		c := &models.AWSCredentials{
			AccessKeyID:     r.value(EnvAWSAccessKeyID, "Enter AWS Access Key ID: ", false),
			SecretAccessKey: r.value(EnvAWSSecretAccessKey, "Enter AWS Secret Access Key: ", true),
			SessionToken:    strings.TrimSpace(getenv(EnvAWSSessionToken)),
		}
		if r.err != nil {
			return nil, r.err
		}
		return &Credentials{AWS: c}, nil
	case models.PlatformAzure:
		c := &models.AzureCredentials{
			TenantID:     r.value(EnvAzureTenantID, "Enter Azure Tenant ID: ", false),
			ClientID:     r.value(EnvAzureClientID, "Enter Azure Client ID: ", false),
			ClientSecret: r.value(EnvAzureClientSecret, "Enter Azure Client Secret: ", true),
		}
		if r.err != nil {
			return nil, r.err
		}
		return &Credentials{Azure: c}, nil
	default:
		return nil, fmt.Errorf("credentials: %w: %q", models.ErrUnknownPlatform, platform)
	}
}

// ResolveSubscription returns the Azure subscription ID from, in order: the
// flag value, the configured value, the AZURE_SUBSCRIPTION_ID environment
// variable, and finally a prompt. The placeholder "subscription_id" (any
// case) counts as unset. A nil prompter disables the prompt.
func ResolveSubscription(flagValue, configured string, getenv Getenv, prompter Prompter) (string, error) {
	for _, candidate := range []string{flagValue, configured, getenv(EnvAzureSubscription)} {
		if v := strings.TrimSpace(candidate); isSet(v) {
			return v, nil
		}
	}
	if prompter == nil {
		return "", fmt.Errorf("resolve Azure subscription ID: %w", ErrNoInput)
	}
	v, err := prompter.Prompt("Enter your Azure Subscription ID: ")
	if err != nil {
		return "", fmt.Errorf("read Azure subscription ID: %w", err)
	}
	if !isSet(v) {
		return "", fmt.Errorf("resolve Azure subscription ID: %w", ErrNoInput)
	}
	return v, nil
}

func isSet(v string) bool {
	return v != "" && !strings.EqualFold(v, subscriptionPlaceholder)
}

// resolver reads values in sequence and remembers the first failure.
type resolver struct {
	getenv   Getenv
	prompter Prompter
	err      error
}

func (r *resolver) value(envKey, label string, secret bool) string {
	if r.err != nil {
		return ""
	}
	if v := strings.TrimSpace(r.getenv(envKey)); v != "" {
		return v
	}
	if r.prompter == nil {
		r.err = fmt.Errorf("%s not set: %w", envKey, ErrNoInput)
		return ""
	}
	var v string
	var err error
	if secret {
		v, err = r.prompter.PromptSecret(label)
	} else {
		v, err = r.prompter.Prompt(label)
	}
	if err != nil {
		r.err = fmt.Errorf("read %s: %w", envKey, err)
		return ""
	}
	if v == "" {
		r.err = fmt.Errorf("%s: %w", envKey, ErrNoInput)
	}
	return v
}
