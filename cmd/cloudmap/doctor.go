package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/spf13/cobra"

	"github.com/cloudmap/cloudmap/internal/config"
	"github.com/cloudmap/cloudmap/internal/credentials"
	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
	"github.com/cloudmap/cloudmap/internal/providers/azure"
)

// errUnhealthy is returned by the doctor command when any check failed.
var errUnhealthy = errors.New("one or more environment checks failed")

// DoctorResult is the structured output of cloudmap doctor. It is rendered
// as JSON via --format=json or as a human-readable list (default).
type DoctorResult struct {
	Config struct {
		Path   string `json:"path"`
		Loaded bool   `json:"loaded"`
		Error  string `json:"error,omitempty"`
	} `json:"config"`

	AWS *AWSDiagnostics `json:"aws,omitempty"`

	Azure *AzureDiagnostics `json:"azure,omitempty"`

	OverallHealthy bool `json:"overall_healthy"`
}

// AWSDiagnostics reports profile discovery and credential resolution.
type AWSDiagnostics struct {
	Profile     string   `json:"profile,omitempty"`
	Profiles    []string `json:"profiles,omitempty"`
	Credentials bool     `json:"credentials_ok"`
	AccountID   string   `json:"account_id,omitempty"`
	Region      string   `json:"region,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// AzureDiagnostics reports credential construction and token acquisition.
type AzureDiagnostics struct {
	Credential   bool   `json:"credential_ok"`
	Token        bool   `json:"token_ok"`
	Subscription string `json:"subscription_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

// doctorEnv bundles the dependencies of runDoctor.
type doctorEnv struct {
	awsProvider     common.AWSClientProvider
	azureCredential func() (azcore.TokenCredential, error)
	getenv          credentials.Getenv
}

func newDoctorCmd() *cobra.Command {
	var (
		format     string
		platform   string
		profile    string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and cloud credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := doctorEnv{
				awsProvider: common.NewDefaultAWSClientProvider(),
				azureCredential: func() (azcore.TokenCredential, error) {
					return azure.NewCredential(nil)
				},
				getenv: os.Getenv,
			}
			result, err := runDoctor(cmd.Context(), env, cmd.OutOrStdout(), doctorOptions{
				format:     format,
				platform:   platform,
				profile:    profile,
				configPath: configPath,
			})
			if err != nil {
				return err
			}
			if !result.OverallHealthy {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", `Output format: "table" or "json"`)
	cmd.Flags().StringVar(&platform, "platform", "", "Check only this platform: aws or azure (default: both)")
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile to check (default: config file, then the default credential chain)")
	cmd.Flags().StringVar(&configPath, "config", "", "Path to the config file (default: ~/.config/cloudmap/config.yaml)")
	return cmd
}

type doctorOptions struct {
	format     string
	platform   string
	profile    string
	configPath string
}

// runDoctor runs every check, renders the result to w and returns it. The
// returned error covers invalid options and rendering failures only; an
// unhealthy environment is reported through OverallHealthy.
func runDoctor(ctx context.Context, env doctorEnv, w io.Writer, opts doctorOptions) (DoctorResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var platforms []models.Platform
	if opts.platform == "" {
		platforms = []models.Platform{models.PlatformAWS, models.PlatformAzure}
	} else {
		p, err := models.ParsePlatform(opts.platform)
		if err != nil {
			return DoctorResult{}, err
		}
		platforms = []models.Platform{p}
	}

	result := collectDoctorResult(ctx, env, platforms, opts)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(result); err != nil {
			return result, fmt.Errorf("encode doctor result: %w", err)
		}
	case "table", "":
		renderDoctorTable(result, w)
	default:
		return result, fmt.Errorf("unsupported format %q: want table or json", opts.format)
	}
	return result, nil
}

// collectDoctorResult runs the checks for platforms. It performs no
// rendering.
func collectDoctorResult(ctx context.Context, env doctorEnv, platforms []models.Platform, opts doctorOptions) DoctorResult {
	var result DoctorResult

	cfg := &config.Config{}
	loader, err := config.NewFileLoader(opts.configPath)
	if err != nil {
		result.Config.Error = err.Error()
	} else {
		result.Config.Path = loader.ConfigPath()
		if loaded, err := loader.Load(); err != nil {
			result.Config.Error = err.Error()
		} else {
			result.Config.Loaded = true
			cfg = loaded
		}
	}
	healthy := result.Config.Loaded

	for _, p := range platforms {
		switch p {
		case models.PlatformAWS:
			result.AWS = checkAWS(ctx, env.awsProvider, firstSet(opts.profile, cfg.AWS.Profile), cfg.AWS.Region)
			healthy = healthy && result.AWS.Credentials
		case models.PlatformAzure:
			result.Azure = checkAzure(ctx, env, cfg.Azure.SubscriptionID)
			healthy = healthy && result.Azure.Token
		}
	}

	result.OverallHealthy = healthy
	return result
}

// checkAWS lists local profiles, then loads profile and resolves its
// account through STS.
func checkAWS(ctx context.Context, provider common.AWSClientProvider, profile, region string) *AWSDiagnostics {
	d := &AWSDiagnostics{Profile: profile}

	// Profile listing is informational; a missing ~/.aws is fine when
	// credentials come from the environment or an instance role.
	if names, err := provider.ListProfiles(); err == nil {
		d.Profiles = names
	}

	cfg, err := provider.LoadProfile(ctx, common.LoadOptions{Profile: profile, Region: region})
	if err != nil {
		d.Error = err.Error()
		return d
	}
	d.Credentials = true
	d.AccountID = cfg.AccountID
	d.Region = cfg.Region
	return d
}

// checkAzure builds the default credential and requests a management
// token. The subscription is resolved without prompting.
func checkAzure(ctx context.Context, env doctorEnv, configured string) *AzureDiagnostics {
	d := &AzureDiagnostics{}
	if sub, err := credentials.ResolveSubscription("", configured, env.getenv, nil); err == nil {
		d.Subscription = sub
	}

	cred, err := env.azureCredential()
	if err != nil {
		d.Error = err.Error()
		return d
	}
	d.Credential = true
	if err := azure.VerifyCredential(ctx, cred); err != nil {
		d.Error = err.Error()
		return d
	}
	d.Token = true
	return d
}

// renderDoctorTable writes the human-readable diagnostic output to w.
func renderDoctorTable(result DoctorResult, w io.Writer) {
	fmt.Fprintln(w, "Environment Diagnostics")

	fmt.Fprintln(w, "\nConfig:")
	switch {
	case result.Config.Loaded:
		doctorPrint(w, "Config file", "OK", result.Config.Path)
	default:
		doctorPrint(w, "Config file", "FAIL", result.Config.Error)
	}

	if d := result.AWS; d != nil {
		if d.Profile != "" {
			fmt.Fprintf(w, "\nAWS (profile: %s):\n", d.Profile)
		} else {
			fmt.Fprintln(w, "\nAWS:")
		}
		if len(d.Profiles) > 0 {
			doctorPrint(w, "Profiles", "OK", strings.Join(d.Profiles, ", "))
		} else {
			doctorPrint(w, "Profiles", "None found", "")
		}
		if d.Credentials {
			doctorPrint(w, "Credentials", "OK", "")
			doctorPrint(w, "STS Identity", "OK", "Account: "+d.AccountID)
			doctorPrint(w, "Region", "OK", d.Region)
		} else {
			doctorPrint(w, "Credentials", "FAIL", d.Error)
			doctorPrint(w, "STS Identity", "FAIL", "skipped")
		}
	}

	if d := result.Azure; d != nil {
		fmt.Fprintln(w, "\nAzure:")
		switch {
		case !d.Credential:
			doctorPrint(w, "Credential", "FAIL", d.Error)
			doctorPrint(w, "Token", "FAIL", "skipped")
		case !d.Token:
			doctorPrint(w, "Credential", "OK", "")
			doctorPrint(w, "Token", "FAIL", d.Error)
		default:
			doctorPrint(w, "Credential", "OK", "")
			doctorPrint(w, "Token", "OK", "")
		}
		if d.Subscription != "" {
			doctorPrint(w, "Subscription", "OK", d.Subscription)
		} else {
			doctorPrint(w, "Subscription", "Not set (scan will prompt)", "")
		}
	}
}

// doctorPrint writes a single diagnostic check line to w.
// When detail is non-empty it is appended in parentheses.
func doctorPrint(w io.Writer, label, status, detail string) {
	if detail != "" {
		fmt.Fprintf(w, "  %s: %s (%s)\n", label, status, detail)
	} else {
		fmt.Fprintf(w, "  %s: %s\n", label, status)
	}
}
