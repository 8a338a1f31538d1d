package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autoenable/internal/domain/commands"
	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// EnableController handles the "enable" subcommand.
type EnableController struct {
	runner enablementRunner
}

// NewEnableController creates a new EnableController.
func NewEnableController(command commands.PlanAndExecute) *EnableController {
	return &EnableController{runner: newEnablementRunner(command)}
}

// GetBind returns the Cobra command metadata for the enable controller.
func (it *EnableController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "enable",
		Short: "Enable security features on repositories within license headroom",
		Long: `Resolve the given repository and organization URLs, group them by hosting
instance, count the committers that would newly consume a license seat, and
enable the selected security features on every group that keeps enough
headroom in the enterprise license pool.

Use --dry-run to report the actions without applying them.`,
	}
}

// Execute runs the enablement.
func (it *EnableController) Execute(cmd *cobra.Command, args []string) {
	if err := it.Run(cmd, args); err != nil {
		logger.Fatalf("Enable failed: %v", err)
	}
}

// Run is Execute returning its error instead of exiting.
func (it *EnableController) Run(cmd *cobra.Command, _ []string) error {
	request, headroomSet, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	request.DryRun, _ = cmd.Flags().GetBool(flagDryRun)
	return it.runner.run(cmd, request, headroomSet)
}

// AddFlags adds the enable-specific flags to the given Cobra command.
func (it *EnableController) AddFlags(cmd *cobra.Command) {
	addRequestFlags(cmd)
	addRunFlags(cmd)
	cmd.Flags().Bool(flagDryRun, false, "Show what would be done without making changes")
}
