package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudmap/cloudmap/internal/config"
	"github.com/cloudmap/cloudmap/internal/credentials"
	"github.com/cloudmap/cloudmap/internal/engine"
	"github.com/cloudmap/cloudmap/internal/logging"
	"github.com/cloudmap/cloudmap/internal/models"
	"github.com/cloudmap/cloudmap/internal/output"
	"github.com/cloudmap/cloudmap/internal/providers/aws/common"
	awssecurity "github.com/cloudmap/cloudmap/internal/providers/aws/security"
	"github.com/cloudmap/cloudmap/internal/providers/azure"
	awspack "github.com/cloudmap/cloudmap/internal/rulepacks/aws"
	azurepack "github.com/cloudmap/cloudmap/internal/rulepacks/azure"
	"github.com/cloudmap/cloudmap/internal/rules"
	"github.com/cloudmap/cloudmap/internal/version"
)

// errScanCancelled is returned by runScan when the user declines the
// interactive confirmation. It is not reported as a failure.
var errScanCancelled = errors.New("scan cancelled")

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "cloudmap",
		Short:         "cloudmap: scan AWS and Azure for common misconfigurations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(cmd.ErrOrStderr(), debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging on stderr")

	root.AddCommand(newScanCmd(defaultScanEnv()))
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Info())
		},
	}
}

// scanFlags holds the raw values of the scan command's flags.
type scanFlags struct {
	platform     string
	categories   []string
	profile      string
	regions      []string
	subscription string
	reportFmt    string
	verbose      bool
	output       string
	configPath   string
	promptCreds  bool
	interactive  bool
	timeout      time.Duration
	color        bool
	maxWidth     int
}

// scanEnv bundles the process-level dependencies of runScan.
type scanEnv struct {
	newEngine func(logger *slog.Logger) engine.Engine
	prompter  credentials.Prompter
	getenv    credentials.Getenv
}

func defaultScanEnv() scanEnv {
	return scanEnv{
		newEngine: newDefaultEngine,
		prompter:  credentials.NewTerminalPrompter(),
		getenv:    os.Getenv,
	}
}

// newDefaultEngine wires both platform engines to the real SDK-backed
// providers and the built-in rule packs.
func newDefaultEngine(logger *slog.Logger) engine.Engine {
	awsRegistry := rules.NewDefaultRuleRegistry()
	for _, r := range awspack.New() {
		awsRegistry.Register(r)
	}
	azureRegistry := rules.NewDefaultRuleRegistry()
	for _, r := range azurepack.New() {
		azureRegistry.Register(r)
	}

	return engine.NewPlatformEngine(
		engine.NewAWSEngine(
			common.NewDefaultAWSClientProvider(),
			awssecurity.NewDefaultSecurityCollector(),
			awsRegistry,
			logger,
		),
		engine.NewAzureEngine(azure.NewDefaultConnector(), azureRegistry, logger),
	)
}

func newScanCmd(env scanEnv) *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a cloud account for misconfigurations",
		Example: `  cloudmap scan --platform aws --profile staging --region us-east-1 --region eu-west-1
  cloudmap scan --platform azure --subscription 00000000-0000-0000-0000-000000000000 --report json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runScan(cmd.Context(), f, env, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if errors.Is(err, errScanCancelled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Scan cancelled.")
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&f.platform, "platform", "", "Cloud platform to scan: aws or azure (required)")
	cmd.Flags().StringSliceVar(&f.categories, "category", nil, "Category to scan; repeatable (default: every category of the platform)")
	cmd.Flags().StringVar(&f.profile, "profile", "", "AWS profile name (default: config file, then the default credential chain)")
	cmd.Flags().StringSliceVar(&f.regions, "region", nil, "AWS region(s) to scan for security groups (default: the profile's region)")
	cmd.Flags().StringVar(&f.subscription, "subscription", "", "Azure subscription ID (default: config file, then AZURE_SUBSCRIPTION_ID, then prompt)")
	cmd.Flags().StringVar(&f.reportFmt, "report", string(engine.ReportFormatTable), "Output format: table or json")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "Print the full JSON report (same as --report json)")
	cmd.Flags().StringVar(&f.output, "output", "", "Also write the JSON report to this file path")
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to the config file (default: ~/.config/cloudmap/config.yaml)")
	cmd.Flags().BoolVar(&f.promptCreds, "prompt-credentials", false, "Read credentials from the environment or prompt instead of using the SDK credential chain")
	cmd.Flags().BoolVar(&f.interactive, "interactive", false, "Ask for confirmation before scanning")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Abort the scan after this duration (default: config file, else no limit)")
	cmd.Flags().BoolVar(&f.color, "color", false, "Colour error rows in table output")
	cmd.Flags().IntVar(&f.maxWidth, "max-width", 0, "Truncate issue text in table output to this many characters (0: no limit)")
	_ = cmd.MarkFlagRequired("platform")

	return cmd
}

// runScan resolves flags against the config file, runs the scan and renders
// the report to stdout. Prompts and progress go to stderr.
func runScan(ctx context.Context, f scanFlags, env scanEnv, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	loader, err := config.NewFileLoader(f.configPath)
	if err != nil {
		return err
	}
	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	platform, err := models.ParsePlatform(f.platform)
	if err != nil {
		return err
	}
	format, err := resolveFormat(f.reportFmt, f.verbose)
	if err != nil {
		return err
	}
	if f.maxWidth < 0 {
		return fmt.Errorf("--max-width must not be negative, got %d", f.maxWidth)
	}
	categories, err := resolveCategories(f.categories, cfg, platform)
	if err != nil {
		return err
	}

	opts := engine.ScanOptions{
		Platform:   platform,
		Categories: categories,
	}
	switch platform {
	case models.PlatformAWS:
		opts.Profile = firstSet(f.profile, cfg.AWS.Profile)
		opts.Regions = f.regions
		if len(opts.Regions) == 0 && cfg.AWS.Region != "" {
			opts.Regions = []string{cfg.AWS.Region}
		}
	case models.PlatformAzure:
		sub, err := credentials.ResolveSubscription(f.subscription, cfg.Azure.SubscriptionID, env.getenv, env.prompter)
		if err != nil {
			return err
		}
		opts.SubscriptionID = sub
	}

	if f.promptCreds {
		creds, err := credentials.Get(platform, env.getenv, env.prompter)
		if err != nil {
			return err
		}
		opts.AWSCredentials = creds.AWS
		opts.AzureCredentials = creds.Azure
	}

	if f.interactive {
		if err := confirmScan(env.prompter); err != nil {
			return err
		}
	}

	timeout := f.timeout
	if timeout == 0 {
		timeout = cfg.Scan.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	fmt.Fprintf(stderr, "Scanning %s...\n", platform)
	report, err := env.newEngine(slog.Default()).RunScan(ctx, opts)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if f.output != "" {
		if err := writeReportToFile(f.output, report); err != nil {
			return err
		}
	}

	if format == engine.ReportFormatJSON {
		return output.RenderJSON(stdout, report)
	}
	output.RenderTable(stdout, report, output.TableOptions{Colored: f.color, MaxIssueWidth: f.maxWidth})
	return nil
}

// resolveFormat validates the --report value; --verbose forces JSON.
func resolveFormat(value string, verbose bool) (engine.ReportFormat, error) {
	if verbose {
		return engine.ReportFormatJSON, nil
	}
	switch f := engine.ReportFormat(strings.ToLower(value)); f {
	case engine.ReportFormatJSON, engine.ReportFormatTable:
		return f, nil
	}
	return "", fmt.Errorf("unsupported report format %q: want table or json", value)
}

// resolveCategories parses --category values. Without flags the config
// file's categories apply, restricted to those owned by platform. The config
// list is shared by both platforms, so when none of its entries belong to
// platform the result is empty and every category of platform is scanned.
func resolveCategories(flagValues []string, cfg *config.Config, platform models.Platform) ([]models.Category, error) {
	if len(flagValues) > 0 {
		out := make([]models.Category, 0, len(flagValues))
		for _, v := range flagValues {
			c, err := models.ParseCategory(v)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
		return out, nil
	}

	configured, err := cfg.ScanCategories()
	if err != nil {
		return nil, err
	}
	var out []models.Category
	for _, c := range configured {
		if c.Platform() == platform {
			out = append(out, c)
		}
	}
	if len(configured) > 0 && len(out) == 0 {
		slog.Debug("no configured categories belong to platform; scanning all of its categories",
			"platform", platform, "configured", cfg.Scan.Categories)
	}
	return out, nil
}

// confirmScan waits for Enter. Typing "exit" (any case) cancels.
func confirmScan(p credentials.Prompter) error {
	answer, err := p.Prompt("Press Enter to start scanning or type 'exit' to cancel: ")
	if err != nil {
		return fmt.Errorf("read confirmation: %w", err)
	}
	if strings.EqualFold(strings.TrimSpace(answer), "exit") {
		return errScanCancelled
	}
	return nil
}

// writeReportToFile writes report as indented JSON to path, creating or
// truncating the file. Stdout output is unaffected.
func writeReportToFile(path string, report *models.FindingsReport) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close report file %q: %w", path, cerr)
		}
	}()
	return output.RenderJSON(f, report)
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
