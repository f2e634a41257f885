package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sambabib/depdrift/pkg/analyzer"
	"github.com/sambabib/depdrift/pkg/config"
	"github.com/sambabib/depdrift/pkg/logger"
	"github.com/sambabib/depdrift/pkg/output"
	"github.com/sambabib/depdrift/pkg/source"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrDriftThreshold is returned when --fail-on finds outdated packages at or above its level
var ErrDriftThreshold = errors.New("dependency drift threshold exceeded")

type analyzeOptions struct {
	verbose    bool
	configPath string

	path       string
	format     string // output format: text, json, markdown or sarif
	sourceName string
	reportPath string
	outputPath string
	strict     bool
	failOn     string
	timeout    time.Duration
}

func newAnalyzeOptions() *analyzeOptions {
	return &analyzeOptions{}
}

func (o *analyzeOptions) bindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.path, "path", "p", ".", "Path to project directory to analyze")
	fs.StringVarP(&o.format, "format", "f", "text", "Output format: text, json, markdown or sarif")
	fs.StringVarP(&o.sourceName, "source", "s", "yarn", "Dependency report source: yarn or npm")
	fs.StringVarP(&o.reportPath, "report", "r", "", "Read a saved \"yarn outdated --json\" report instead of running yarn (- for stdin)")
	fs.StringVarP(&o.outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	fs.BoolVar(&o.strict, "strict", false, "Require full MAJOR.MINOR.PATCH versions")
	fs.StringVar(&o.failOn, "fail-on", "", "Exit with an error when packages are outdated at or above this level: major, minor or patch")
	fs.DurationVar(&o.timeout, "timeout", 2*time.Minute, "Timeout for collecting the dependency report")
}

// newAnalyzeCmd represents the analyze subcommand
func newAnalyzeCmd(opts *analyzeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze project dependencies",
		Long:  "Analyze the project's dependencies and report how many are outdated by a major, minor or patch version.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}
	opts.bindFlags(cmd.Flags())
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	logger.SetVerbose(opts.verbose)

	dir := opts.path
	if len(args) > 0 {
		dir = args[0]
	}

	cfg, err := loadConfig(opts, dir)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), opts, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	records, err := collectRecords(cmd, opts, cfg, dir)
	if err != nil {
		return err
	}
	records = filterIgnored(cfg, records)

	classifier := &analyzer.Classifier{Strict: cfg.Strict}
	result := classifier.Classify(records)

	if cfg.Output.File == "" {
		if err := emitReport(cmd.OutOrStdout(), cfg, dir, result); err != nil {
			return err
		}
		return checkThreshold(cfg.FailOn, result)
	}

	f, err := os.Create(cfg.Output.File)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := emitReport(f, cfg, dir, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	return checkThreshold(cfg.FailOn, result)
}

func emitReport(out io.Writer, cfg *config.Config, dir string, result analyzer.Result) error {
	w, err := output.NewWriter(cfg.Output.Format, out, output.Options{
		ManifestURI: filepath.ToSlash(filepath.Join(dir, "package.json")),
		ToolVersion: Version,
		Levels:      severityLevels(cfg),
	})
	if err != nil {
		return err
	}

	if err := w.Write(result); err != nil {
		if errors.Is(err, output.ErrEmptyReport) {
			_, err = fmt.Fprintf(out, "No dependencies reported in %s; nothing to summarize.\n", dir)
			return err
		}
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// severityLevels maps the configured severities onto the SARIF buckets
func severityLevels(cfg *config.Config) output.SeverityLevels {
	return output.SeverityLevels{
		Major: cfg.GetSeverityForUpdate("major"),
		Minor: cfg.GetSeverityForUpdate("minor"),
		Patch: cfg.GetSeverityForUpdate("patch"),
	}
}

func loadConfig(opts *analyzeOptions, dir string) (*config.Config, error) {
	if opts.configPath != "" {
		return config.LoadConfig(opts.configPath)
	}
	return config.FindAndLoadConfig(dir)
}

// applyFlags lets explicitly set flags override the config file
func applyFlags(fs *pflag.FlagSet, opts *analyzeOptions, cfg *config.Config) {
	if fs.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if fs.Changed("source") {
		cfg.Source = opts.sourceName
	}
	if fs.Changed("output") {
		cfg.Output.File = opts.outputPath
	}
	if fs.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if fs.Changed("fail-on") {
		cfg.FailOn = opts.failOn
	}
}

func collectRecords(cmd *cobra.Command, opts *analyzeOptions, cfg *config.Config, dir string) ([]analyzer.PackageRecord, error) {
	if opts.reportPath != "" {
		return readReport(cmd.InOrStdin(), opts.reportPath)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	src, err := source.New(cfg.Source, source.Settings{
		YarnPath:    cfg.YarnPath,
		RegistryURL: cfg.Registries.Npm,
		Concurrency: cfg.Concurrency,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	records, err := src.Records(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("%s analysis failed: %w", cfg.Source, err)
	}
	logger.Infof("Collected %d dependencies from %s in %s", len(records), cfg.Source, time.Since(start).Round(10*time.Millisecond))
	return records, nil
}

func readReport(in io.Reader, reportPath string) ([]analyzer.PackageRecord, error) {
	if reportPath != "-" {
		f, err := os.Open(reportPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open report: %w", err)
		}
		defer f.Close()
		in = f
	}

	records, err := source.DecodeYarnReport(in)
	if err != nil {
		return nil, fmt.Errorf("invalid report %s: %w", reportPath, err)
	}
	return records, nil
}

func filterIgnored(cfg *config.Config, records []analyzer.PackageRecord) []analyzer.PackageRecord {
	if len(cfg.IgnorePackages) == 0 {
		return records
	}
	kept := make([]analyzer.PackageRecord, 0, len(records))
	for _, r := range records {
		if cfg.IsPackageIgnored(r.Name) {
			logger.Debugf("Ignoring package %s", r.Name)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// checkThreshold fails when any bucket at or above level has packages
func checkThreshold(level string, result analyzer.Result) error {
	var count int
	switch level {
	case "":
		return nil
	case "major":
		count = len(result.OutdatedMajor)
	case "minor":
		count = len(result.OutdatedMajor) + len(result.OutdatedMinor)
	case "patch":
		count = result.Outdated()
	}
	if count > 0 {
		return fmt.Errorf("%w: %d package(s) outdated at %s level or above", ErrDriftThreshold, count, level)
	}
	return nil
}
