package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/infrastructure/intake"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register controller constructors
	constructors := []any{
		intake.NewIssueFormParser,
		NewEnableController,
		NewPlanController,
		NewIntakeController,
		NewControllers,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	return nil
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	enableController *EnableController,
	planController *PlanController,
	intakeController *IntakeController,
) *[]entities.Controller {
	return &[]entities.Controller{
		enableController,
		planController,
		intakeController,
	}
}
