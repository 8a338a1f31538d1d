//go:build integration || unit || test

package commanddoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/autoenable/internal/domain/commands"
	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// StubPlanAndExecuteCommand is a stub implementation of commands.PlanAndExecute.
type StubPlanAndExecuteCommand struct {
	ExecuteCallCount int
	ExecuteErr       error
	Result           *entities.RunResult
	LastSettings     *entities.Settings
	LastRequest      entities.EnablementRequest
}

var _ commands.PlanAndExecute = (*StubPlanAndExecuteCommand)(nil)

func (s *StubPlanAndExecuteCommand) Execute(
	_ context.Context,
	settings *entities.Settings,
	request entities.EnablementRequest,
) (*entities.RunResult, error) {
	s.ExecuteCallCount++
	s.LastSettings = settings
	s.LastRequest = request

	result := s.Result
	if result == nil {
		result = &entities.RunResult{RunID: "stub-run", DryRun: request.DryRun}
	}
	return result, s.ExecuteErr
}
