package commands

import (
	"go.uber.org/dig"
)

// RegisterProviders registers all command providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register command constructors
	constructors := []any{
		NewResolveReferencesCommand,
		NewRouteInstancesCommand,
		NewAnalyzeCommittersCommand,
		NewPlanLicenseCommand,
		NewExecuteEnablementCommand,
		NewPlanAndExecuteCommand,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Bind interfaces to implementations
	bindings := []any{
		func(impl *ResolveReferencesCommand) ResolveReferences { return impl },
		func(impl *RouteInstancesCommand) RouteInstances { return impl },
		func(impl *AnalyzeCommittersCommand) AnalyzeCommitters { return impl },
		func(impl *PlanLicenseCommand) PlanLicense { return impl },
		func(impl *ExecuteEnablementCommand) ExecuteEnablement { return impl },
		func(impl *PlanAndExecuteCommand) PlanAndExecute { return impl },
	}
	for _, binding := range bindings {
		if err := container.Provide(binding); err != nil {
			return err
		}
	}

	return nil
}
