package controllers

import (
	"errors"
	"fmt"
	"io"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autoenable/internal/domain/commands"
	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/infrastructure/intake"
)

// IntakeController handles the "intake" subcommand: it reads a request
// submitted through an issue form and runs it.
type IntakeController struct {
	runner enablementRunner
	parser *intake.IssueFormParser
}

// NewIntakeController creates a new IntakeController.
func NewIntakeController(command commands.PlanAndExecute, parser *intake.IssueFormParser) *IntakeController {
	return &IntakeController{runner: newEnablementRunner(command), parser: parser}
}

// GetBind returns the Cobra command metadata for the intake controller.
func (it *IntakeController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "intake <issue-body-file>",
		Short: "Run an enablement request submitted through an issue form",
		Long: `Parse the body of an enablement request issue (repositories, features,
minimum headroom, skip license check, dry run) and run it. Use "-" to read
the body from standard input. --dry-run forces a dry run regardless of the form.`,
	}
}

// Execute runs the request described by the issue body.
func (it *IntakeController) Execute(cmd *cobra.Command, args []string) {
	if err := it.Run(cmd, args); err != nil {
		logger.Fatalf("Intake failed: %v", err)
	}
}

// Run is Execute returning its error instead of exiting.
func (it *IntakeController) Run(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("expected exactly one issue body file")
	}

	body, err := readBody(cmd, args[0])
	if err != nil {
		return err
	}

	submission, err := it.parser.Parse(body)
	if err != nil {
		return fmt.Errorf("invalid issue form: %w", err)
	}
	request := submission.Request
	if forced, _ := cmd.Flags().GetBool(flagDryRun); forced {
		request.DryRun = true
	}
	return it.runner.run(cmd, request, submission.HeadroomSet)
}

// AddFlags adds the intake-specific flags to the given Cobra command.
func (it *IntakeController) AddFlags(cmd *cobra.Command) {
	addRunFlags(cmd)
	cmd.Flags().Bool(flagDryRun, false, "Force a dry run even if the form asks for changes")
}

func readBody(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read issue body from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read issue body %q: %w", path, err)
	}
	return string(data), nil
}
