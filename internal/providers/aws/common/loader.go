package common

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// DefaultRegion is used when neither the caller nor the profile names one.
const DefaultRegion = "us-east-1"

const staticProfileName = "static"

// DefaultAWSClientProvider resolves credentials through the SDK default chain
// (environment, shared files, instance role) or from explicit static keys.
// Its ClientFactory is swappable so tests never reach STS.
type DefaultAWSClientProvider struct {
	factory ClientFactory
}

// NewDefaultAWSClientProvider returns a provider that builds real SDK clients.
func NewDefaultAWSClientProvider() *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: NewClientSet}
}

// NewDefaultAWSClientProviderWithFactory builds clients with f instead.
func NewDefaultAWSClientProviderWithFactory(f ClientFactory) *DefaultAWSClientProvider {
	return &DefaultAWSClientProvider{factory: f}
}

// LoadProfile loads the AWS SDK config described by opts and returns a
// ProfileConfig including the resolved account ID and initialised clients.
//
// Static keys take precedence over the named profile.
func (p *DefaultAWSClientProvider) LoadProfile(ctx context.Context, opts LoadOptions) (*ProfileConfig, error) {
	name := profileDisplayName(opts.Profile)

	var loadOpts []func(*awsconfig.LoadOptions) error
	switch {
	case opts.Static != nil:
		if !opts.Static.Complete() {
			return nil, errors.New("static AWS credentials require both an access key ID and a secret access key")
		}
		name = staticProfileName
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				opts.Static.AccessKeyID,
				opts.Static.SecretAccessKey,
				opts.Static.SessionToken,
			),
		))
	case opts.Profile != "":
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(opts.Profile))
	}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS profile %q: %w", name, err)
	}

	// Every SDK client needs a region, even for global services.
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}

	clients := p.factory(cfg)

	accountID, err := resolveAccountID(ctx, clients.STS)
	if err != nil {
		return nil, fmt.Errorf("resolve account ID for profile %q: %w", name, err)
	}

	return &ProfileConfig{
		ProfileName: name,
		AccountID:   accountID,
		Region:      cfg.Region,
		Config:      cfg,
		Clients:     clients,
	}, nil
}

// ListProfiles returns the deduplicated profile names found in the shared
// credentials and config files. Missing files contribute nothing.
func (p *DefaultAWSClientProvider) ListProfiles() ([]string, error) {
	credProfiles, err := parseProfilesFromFile(sharedCredentialsPath(), false)
	if err != nil {
		return nil, err
	}
	cfgProfiles, err := parseProfilesFromFile(sharedConfigPath(), true)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var all []string
	for _, name := range append(credProfiles, cfgProfiles...) {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		all = append(all, name)
	}
	return all, nil
}

// ConfigForRegion implements AWSClientProvider.
func (p *DefaultAWSClientProvider) ConfigForRegion(cfg *ProfileConfig, region string) aws.Config {
	regional := cfg.Config
	regional.Region = region
	return regional
}

// profileDisplayName shows the default profile as "default".
func profileDisplayName(profile string) string {
	if profile == "" {
		return "default"
	}
	return profile
}

// resolveAccountID asks STS who the loaded credentials belong to.
func resolveAccountID(ctx context.Context, stsClient STSClient) (string, error) {
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("STS GetCallerIdentity: %w", Simplify(err))
	}
	if out.Account == nil {
		return "", errors.New("STS GetCallerIdentity returned nil account")
	}
	return aws.ToString(out.Account), nil
}

func sharedCredentialsPath() string {
	if path := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); path != "" {
		return path
	}
	return awsconfig.DefaultSharedCredentialsFilename()
}

func sharedConfigPath() string {
	if path := os.Getenv("AWS_CONFIG_FILE"); path != "" {
		return path
	}
	return awsconfig.DefaultSharedConfigFilename()
}

// parseProfilesFromFile returns the section names of an INI-style AWS file.
// With stripProfilePrefix, only "[profile x]" and "[default]" sections count,
// as in ~/.aws/config; "[sso-session x]" and the like are ignored. A missing
// file yields no names.
func parseProfilesFromFile(path string, stripProfilePrefix bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var profiles []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
			continue
		}
		name := strings.TrimSpace(line[1 : len(line)-1])

		if stripProfilePrefix && name != "default" {
			trimmed, ok := strings.CutPrefix(name, "profile ")
			if !ok {
				continue
			}
			name = strings.TrimSpace(trimmed)
		}
		profiles = append(profiles, name)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}
	return profiles, nil
}
