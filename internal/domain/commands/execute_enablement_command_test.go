//go:build unit

package commands_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autoenable/internal/domain/commands"
	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/autoenable/test/infrastructure/repositorydoubles"
)

func approvedPlan(dryRun bool, names ...string) entities.EnablementPlan {
	builder := entitybuilders.NewRoutingGroupBuilder().
		WithFeatures(entities.FeatureSecretScanning, entities.FeatureDependabotAlerts)
	for _, name := range names {
		builder.WithRepository("org", name)
	}
	return entities.NewSkippedPlan(builder.BuildRoutingGroup(), dryRun)
}

func actionKinds(outcome entities.RepositoryOutcome) []entities.ActionKind {
	kinds := make([]entities.ActionKind, 0, len(outcome.Actions))
	for _, action := range outcome.Actions {
		kinds = append(kinds, action.Action.Kind)
	}
	return kinds
}

func TestExecuteEnablementCommandExecute(t *testing.T) {
	t.Parallel()

	t.Run("should make no calls for a rejected plan", func(t *testing.T) {
		t.Parallel()

		// given
		group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "a").WithMinHeadroom(5).
			BuildRoutingGroup()
		snapshot := entitybuilders.NewLicenseSnapshotBuilder().WithSeats(10, 9).BuildLicenseSnapshot()
		plan := entities.NewEnablementPlan(group, snapshot, entities.NewIdentitySet("new@x.io"), false)
		host := &doubles.SpyRepoHost{}

		// when
		result := commands.NewExecuteEnablementCommand().Execute(context.Background(), host, plan, 2)

		// then
		assert.Equal(t, entities.GroupRejected, result.Status)
		assert.Contains(t, result.Message, "not enough license headroom")
		assert.Empty(t, result.Outcomes)
		assert.Zero(t, host.TotalCalls())
	})

	t.Run("should mark an unauthenticated group as skipped", func(t *testing.T) {
		t.Parallel()

		// given
		group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "a").BuildRoutingGroup()
		plan := entities.NewUnauthenticatedPlan(group, false)

		// when
		result := commands.NewExecuteEnablementCommand().Execute(context.Background(), nil, plan, 2)

		// then
		assert.Equal(t, entities.GroupSkipped, result.Status)
		assert.Contains(t, result.Message, "GHES_TOKEN")
		assert.Contains(t, result.Message, "listed under invalid references")
		assert.Empty(t, result.Outcomes)
	})

	t.Run("should report the same actions in dry run without mutating", func(t *testing.T) {
		t.Parallel()

		// given
		dryHost := &doubles.SpyRepoHost{}
		liveHost := &doubles.SpyRepoHost{}
		cmd := commands.NewExecuteEnablementCommand()

		// when
		dry := cmd.Execute(context.Background(), dryHost, approvedPlan(true, "a", "b"), 2)
		live := cmd.Execute(context.Background(), liveHost, approvedPlan(false, "a", "b"), 2)

		// then
		assert.Equal(t, entities.GroupDryRun, dry.Status)
		assert.Equal(t, entities.GroupExecuted, live.Status)
		assert.Zero(t, dryHost.MutatingCalls())
		assert.Equal(t, 6, liveHost.MutatingCalls())
		require.Len(t, dry.Outcomes, 2)
		require.Len(t, live.Outcomes, 2)
		for i := range dry.Outcomes {
			assert.Equal(t, actionKinds(live.Outcomes[i]), actionKinds(dry.Outcomes[i]))
			for _, action := range dry.Outcomes[i].Actions {
				assert.Equal(t, entities.StatusWouldApply, action.Status)
			}
		}
		assert.Equal(t, []entities.ActionKind{
			entities.ActionEnsureCapability,
			entities.FeatureAction(entities.FeatureSecretScanning),
			entities.FeatureAction(entities.FeatureDependabotAlerts),
		}, actionKinds(live.Outcomes[0]))
	})

	t.Run("should continue after a repository fails", func(t *testing.T) {
		t.Parallel()

		// given
		plan := approvedPlan(false, "a", "b", "c")
		repos := plan.Group.Repositories
		host := &doubles.SpyRepoHost{
			CapabilityErrs: map[string]error{
				repos[0].Key(): entities.NewHostError("edit", entities.ReasonForbidden, nil),
			},
			FeatureErrs: map[string]error{
				doubles.FeatureKey(repos[1], entities.FeatureSecretScanning): entities.NewHostError(
					"edit", entities.ReasonUnprocessable, nil),
			},
			CapabilityStatuses: map[string]entities.CapabilityStatus{
				repos[2].Key(): entities.CapabilityAlreadyActive,
			},
		}

		// when
		result := commands.NewExecuteEnablementCommand().Execute(context.Background(), host, plan, 1)

		// then
		require.Len(t, result.Outcomes, 3)
		assert.Equal(t, 2, result.FailedRepositories())
		assert.Equal(t, "3 repositories processed, 2 with failures", result.Message)

		first := result.Outcomes[0].Actions
		assert.Equal(t, entities.StatusFailed, first[0].Status)
		assert.Equal(t, entities.ReasonForbidden, first[0].Reason)
		assert.Equal(t, entities.StatusSkipped, first[1].Status)
		assert.Equal(t, entities.StatusSkipped, first[2].Status)

		second := result.Outcomes[1].Actions
		assert.Equal(t, entities.StatusFailed, second[1].Status)
		assert.Equal(t, entities.StatusEnabled, second[2].Status)

		third := result.Outcomes[2].Actions
		assert.Equal(t, entities.StatusAlreadyEnabled, third[0].Status)
		assert.False(t, result.Outcomes[2].Failed())
	})
}

func TestPlannedActions(t *testing.T) {
	t.Parallel()

	t.Run("should plan the capability check before each feature", func(t *testing.T) {
		t.Parallel()

		// given
		plan := approvedPlan(false, "a")

		// when
		actions := commands.PlannedActions(plan)

		// then
		require.Len(t, actions, 1)
		require.Len(t, actions[0], 3)
		assert.Equal(t, entities.ActionEnsureCapability, actions[0][0].Kind)
	})
}
