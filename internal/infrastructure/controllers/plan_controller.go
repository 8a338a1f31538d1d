package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/autoenable/internal/domain/commands"
	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// PlanController handles the "plan" subcommand, which never changes anything.
type PlanController struct {
	runner enablementRunner
}

// NewPlanController creates a new PlanController.
func NewPlanController(command commands.PlanAndExecute) *PlanController {
	return &PlanController{runner: newEnablementRunner(command)}
}

// GetBind returns the Cobra command metadata for the plan controller.
func (it *PlanController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "plan",
		Short: "Report license impact and intended actions without applying them",
		Long: `Run the same analysis as "enable" and report, per hosting instance, the
committers that would consume new seats, the projected headroom and every
action that would be applied. No repository setting is changed.`,
	}
}

// Execute runs the planning in dry-run mode.
func (it *PlanController) Execute(cmd *cobra.Command, args []string) {
	if err := it.Run(cmd, args); err != nil {
		logger.Fatalf("Plan failed: %v", err)
	}
}

// Run is Execute returning its error instead of exiting.
func (it *PlanController) Run(cmd *cobra.Command, _ []string) error {
	request, headroomSet, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}
	request.DryRun = true
	return it.runner.run(cmd, request, headroomSet)
}

// AddFlags adds the plan-specific flags to the given Cobra command.
func (it *PlanController) AddFlags(cmd *cobra.Command) {
	addRequestFlags(cmd)
	addRunFlags(cmd)
}
