package controllers

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autoenable/config"
	"github.com/rios0rios0/autoenable/internal/domain/commands"
	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/infrastructure/reporters"
)

const (
	flagConfig           = "config"
	flagRef              = "ref"
	flagRefsFile         = "refs-file"
	flagFeature          = "feature"
	flagMinHeadroom      = "min-headroom"
	flagSkipLicenseCheck = "skip-license-check"
	flagDryRun           = "dry-run"
	flagReport           = "report"
	flagToken            = "token"
)

// ErrNoFeatures is returned when neither the request nor the config selects a feature.
var ErrNoFeatures = errors.New("no features selected; use --feature or defaults.features in the config")

// enablementRunner holds what every enablement subcommand shares: config
// loading, request defaults, the pipeline call and the reports.
type enablementRunner struct {
	command  commands.PlanAndExecute
	markdown *reporters.MarkdownReporter
	console  *reporters.ConsoleReporter
}

func newEnablementRunner(command commands.PlanAndExecute) enablementRunner {
	return enablementRunner{
		command:  command,
		markdown: reporters.NewMarkdownReporter(),
		console:  reporters.NewConsoleReporter(),
	}
}

// run loads the configuration, completes the request from its defaults,
// executes the pipeline and writes the reports. The reports are written even
// when the run aborts, so the invalid references found so far are not lost.
func (it *enablementRunner) run(
	cmd *cobra.Command,
	request entities.EnablementRequest,
	headroomSet bool,
) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if len(request.Features) == 0 {
		request.Features, err = cfg.DefaultFeatures()
		if err != nil {
			return err
		}
	}
	if len(request.Features) == 0 {
		return ErrNoFeatures
	}
	if !headroomSet {
		request.MinHeadroom = cfg.Defaults.MinHeadroom
	}

	overrides, _ := cmd.Flags().GetStringToString(flagToken)
	settings := cfg.Settings(config.StaticCredentialResolver(overrides, config.EnvCredentialResolver()))
	logger.Infof("Enabling %s on %d references (dry run: %t, skip license check: %t)",
		request.Features, len(request.References), request.DryRun, request.SkipLicenseCheck)

	result, runErr := it.command.Execute(commandContext(cmd), settings, request)
	if reportErr := it.report(cmd, result); reportErr != nil {
		logger.Errorf("Failed to write report: %v", reportErr)
	}
	if runErr != nil {
		return fmt.Errorf("run aborted: %w", runErr)
	}
	return nil
}

func (it *enablementRunner) report(cmd *cobra.Command, result *entities.RunResult) error {
	if result == nil {
		return nil
	}
	if err := it.console.Write(cmd.OutOrStdout(), result); err != nil {
		return err
	}

	reportPath, _ := cmd.Flags().GetString(flagReport)
	if reportPath == "" {
		return nil
	}
	if err := os.WriteFile(reportPath, []byte(it.markdown.Render(result)), 0o600); err != nil {
		return fmt.Errorf("failed to write report %q: %w", reportPath, err)
	}
	logger.Infof("Report written to %s", reportPath)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := cmd.Flags().GetString(flagConfig)
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf("no config file found: %w; specify one with --config or create autoenable.yaml", err)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// requestFromFlags builds a request from the shared enablement flags.
func requestFromFlags(cmd *cobra.Command) (entities.EnablementRequest, bool, error) {
	refs, _ := cmd.Flags().GetStringArray(flagRef)
	refsFile, _ := cmd.Flags().GetString(flagRefsFile)
	featureNames, _ := cmd.Flags().GetStringSlice(flagFeature)
	minHeadroom, _ := cmd.Flags().GetInt(flagMinHeadroom)
	skipLicenseCheck, _ := cmd.Flags().GetBool(flagSkipLicenseCheck)

	if refsFile != "" {
		fileRefs, err := readReferencesFile(refsFile)
		if err != nil {
			return entities.EnablementRequest{}, false, err
		}
		refs = append(refs, fileRefs...)
	}
	if len(refs) == 0 {
		return entities.EnablementRequest{}, false, errors.New("no references given; use --ref or --refs-file")
	}
	if minHeadroom < 0 {
		return entities.EnablementRequest{}, false, fmt.Errorf("--%s must not be negative", flagMinHeadroom)
	}

	kinds := make([]entities.FeatureKind, 0, len(featureNames))
	for _, name := range featureNames {
		kind, err := entities.ParseFeatureKind(name)
		if err != nil {
			return entities.EnablementRequest{}, false, err
		}
		kinds = append(kinds, kind)
	}

	request := entities.EnablementRequest{
		References:       refs,
		Features:         entities.NewFeatureSelection(kinds...),
		MinHeadroom:      minHeadroom,
		SkipLicenseCheck: skipLicenseCheck,
	}
	return request, cmd.Flags().Changed(flagMinHeadroom), nil
}

// readReferencesFile reads one reference per line; blank lines and lines
// starting with "#" are skipped.
func readReferencesFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open references file %q: %w", path, err)
	}
	defer file.Close()

	var refs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		refs = append(refs, line)
	}
	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read references file %q: %w", path, err)
	}
	return refs, nil
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray(flagRef, nil, "Repository or organization URL (repeatable)")
	cmd.Flags().String(flagRefsFile, "", "File with one repository or organization URL per line")
	cmd.Flags().StringSlice(flagFeature, nil,
		"Feature to enable: secret_scanning, push_protection, code_scanning, dependabot_alerts (repeatable)")
	cmd.Flags().Int(flagMinHeadroom, 0, "Seats that must remain free after enablement (default from config)")
	cmd.Flags().Bool(flagSkipLicenseCheck, false, "Skip committer analysis and license headroom checks")
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagReport, "", "Write a Markdown report to this path")
	cmd.Flags().StringToString(flagToken, nil,
		"Override a credential key with a token or token file path, e.g. GH_TOKEN=/run/secrets/gh (repeatable)")
}
