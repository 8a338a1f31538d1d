//go:build unit

package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autoenable/internal/domain/commands"
	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/test/domain/entitybuilders"
	doubles "github.com/rios0rios0/autoenable/test/infrastructure/repositorydoubles"
)

func productRequired() error {
	return entities.NewHostError("billing", entities.ReasonUnprocessable,
		fmt.Errorf("%w: advanced_security_product is required", entities.ErrBillingProductRequired))
}

func TestPlanLicenseCommandFetchSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("should use the unparameterized request when it succeeds", func(t *testing.T) {
		t.Parallel()

		// given
		snapshot := entitybuilders.NewLicenseSnapshotBuilder().WithSeats(10, 4).BuildLicenseSnapshot()
		host := &doubles.SpyRepoHost{
			Snapshots: map[entities.BillingProduct]entities.LicenseSnapshot{entities.BillingProductNone: snapshot},
		}
		cmd := commands.NewPlanLicenseCommand(commands.NewAnalyzeCommittersCommand())

		// when
		got, err := cmd.FetchSnapshot(context.Background(), host, "acme", entities.NewFeatureSelection())

		// then
		require.NoError(t, err)
		assert.Equal(t, 10, got.TotalSeats)
		assert.Equal(t, []entities.BillingProduct{entities.BillingProductNone}, host.BillingProducts)
	})

	t.Run("should retry once with the secret protection product", func(t *testing.T) {
		t.Parallel()

		// given
		snapshot := entitybuilders.NewLicenseSnapshotBuilder().BuildLicenseSnapshot()
		host := &doubles.SpyRepoHost{
			BillingErrs: map[entities.BillingProduct]error{entities.BillingProductNone: productRequired()},
			Snapshots: map[entities.BillingProduct]entities.LicenseSnapshot{
				entities.BillingProductSecretProtection: snapshot,
			},
		}
		cmd := commands.NewPlanLicenseCommand(commands.NewAnalyzeCommittersCommand())
		features := entities.NewFeatureSelection(entities.FeatureSecretScanning)

		// when
		_, err := cmd.FetchSnapshot(context.Background(), host, "acme", features)

		// then
		require.NoError(t, err)
		assert.Equal(t,
			[]entities.BillingProduct{entities.BillingProductNone, entities.BillingProductSecretProtection},
			host.BillingProducts,
		)
	})

	t.Run("should fail after a single retry", func(t *testing.T) {
		t.Parallel()

		// given
		host := &doubles.SpyRepoHost{
			BillingErrs: map[entities.BillingProduct]error{
				entities.BillingProductNone:         productRequired(),
				entities.BillingProductCodeSecurity: productRequired(),
			},
		}
		cmd := commands.NewPlanLicenseCommand(commands.NewAnalyzeCommittersCommand())
		features := entities.NewFeatureSelection(entities.FeatureCodeScanning)

		// when
		_, err := cmd.FetchSnapshot(context.Background(), host, "acme", features)

		// then
		require.ErrorIs(t, err, entities.ErrLicenseAuthorityUnreachable)
		assert.Len(t, host.BillingProducts, 2)
	})

	t.Run("should not retry other failures", func(t *testing.T) {
		t.Parallel()

		// given
		host := &doubles.SpyRepoHost{
			BillingErrs: map[entities.BillingProduct]error{
				entities.BillingProductNone: entities.NewHostError("billing", entities.ReasonForbidden, errors.New("403")),
			},
		}
		cmd := commands.NewPlanLicenseCommand(commands.NewAnalyzeCommittersCommand())

		// when
		_, err := cmd.FetchSnapshot(context.Background(), host, "acme", entities.NewFeatureSelection())

		// then
		require.ErrorIs(t, err, entities.ErrLicenseAuthorityUnreachable)
		assert.Equal(t, entities.ReasonForbidden, entities.ReasonOf(err))
		assert.Len(t, host.BillingProducts, 1)
	})
}

func TestPlanLicenseCommandPlan(t *testing.T) {
	t.Parallel()

	t.Run("should skip committer analysis when the license check is skipped", func(t *testing.T) {
		t.Parallel()

		// given
		group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "a").WithMinHeadroom(99).BuildRoutingGroup()
		host := &doubles.SpyRepoHost{}
		cmd := commands.NewPlanLicenseCommand(commands.NewAnalyzeCommittersCommand())

		// when
		plan, invalid := cmd.Plan(context.Background(), host, group, entities.LicenseSnapshot{},
			commands.PlanOptions{SkipLicenseCheck: true})

		// then
		assert.True(t, plan.Approved)
		assert.True(t, plan.LicenseCheckSkipped())
		assert.Empty(t, invalid)
		assert.Zero(t, host.TotalCalls())
	})

	t.Run("should reject when new committers exhaust the headroom", func(t *testing.T) {
		t.Parallel()

		// given
		group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "a").WithMinHeadroom(1).BuildRoutingGroup()
		host := &doubles.SpyRepoHost{
			CommitPages: map[string][][]entities.CommitIdentity{
				group.Repositories[0].Key(): {{{AuthorEmail: "new@x.io"}, {AuthorEmail: "held@x.io"}}},
			},
		}
		snapshot := entitybuilders.NewLicenseSnapshotBuilder().WithSeats(10, 9).WithLicensed("held@x.io").
			BuildLicenseSnapshot()
		cmd := commands.NewPlanLicenseCommand(commands.NewAnalyzeCommittersCommand())

		// when
		plan, _ := cmd.Plan(context.Background(), host, group, snapshot, commands.PlanOptions{Concurrency: 1})

		// then
		assert.False(t, plan.Approved)
		assert.Equal(t, 1, plan.EstimatedSeatsNeeded)
		assert.Equal(t, entities.Seats(0), plan.ProjectedAvailableSeats)
	})

	t.Run("should pass analysis failures through", func(t *testing.T) {
		t.Parallel()

		// given
		group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "gone").BuildRoutingGroup()
		host := &doubles.SpyRepoHost{
			ListCommitsErr: map[string]error{
				group.Repositories[0].Key(): entities.NewHostError("list commits", entities.ReasonNotFound, nil),
			},
		}
		snapshot := entitybuilders.NewLicenseSnapshotBuilder().BuildLicenseSnapshot()
		cmd := commands.NewPlanLicenseCommand(commands.NewAnalyzeCommittersCommand())

		// when
		plan, invalid := cmd.Plan(context.Background(), host, group, snapshot, commands.PlanOptions{})

		// then
		assert.True(t, plan.Approved)
		require.Len(t, invalid, 1)
		assert.Equal(t, entities.StageAnalyze, invalid[0].Stage)
	})
}
