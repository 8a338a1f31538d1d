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

func newPipeline(connector *doubles.StubHostConnector) *commands.PlanAndExecuteCommand {
	analyzer := commands.NewAnalyzeCommittersCommand()
	return commands.NewPlanAndExecuteCommand(
		commands.NewResolveReferencesCommand(connector),
		commands.NewRouteInstancesCommand(),
		commands.NewPlanLicenseCommand(analyzer),
		commands.NewExecuteEnablementCommand(),
		connector,
	)
}

func snapshotHost() *doubles.SpyRepoHost {
	return &doubles.SpyRepoHost{
		Snapshots: map[entities.BillingProduct]entities.LicenseSnapshot{
			entities.BillingProductNone: entitybuilders.NewLicenseSnapshotBuilder().BuildLicenseSnapshot(),
		},
	}
}

func processedRepositories(result *entities.RunResult) []string {
	var names []string
	for _, group := range result.Groups {
		for _, outcome := range group.Outcomes {
			names = append(names, outcome.Repository.Name)
		}
	}
	return names
}

func TestPlanAndExecuteCommandExecute(t *testing.T) {
	t.Parallel()

	secrets := map[string]string{"GHES_TOKEN": "token"}

	t.Run("should merge an explicit repository with its expanded container", func(t *testing.T) {
		t.Parallel()

		// given
		host := snapshotHost()
		host.RepositoryPages = map[string][][]string{"org1": {{"repoA", "repoB"}}}
		connector := &doubles.StubHostConnector{DefaultHost: host}
		request := entities.EnablementRequest{
			References: []string{"https://github.example.com/org1/repoA", "https://github.example.com/org1"},
			Features:   entities.NewFeatureSelection(entities.FeatureSecretScanning),
			DryRun:     true,
		}

		// when
		result, err := newPipeline(connector).Execute(context.Background(), testSettings(secrets), request)

		// then
		require.NoError(t, err)
		require.Len(t, result.Groups, 1)
		assert.ElementsMatch(t, []string{"repoA", "repoB"}, processedRepositories(result))
		assert.Equal(t, entities.GroupDryRun, result.Groups[0].Status)
		assert.Zero(t, host.MutatingCalls())
		assert.NotEmpty(t, result.RunID)
		assert.Equal(t, result.RunID, result.Diagnostics.RunID)
	})

	t.Run("should report one invalid reference among many and process the rest", func(t *testing.T) {
		t.Parallel()

		// given
		host := snapshotHost()
		connector := &doubles.StubHostConnector{DefaultHost: host}
		references := make([]string, 0, 10)
		for i := range 9 {
			references = append(references, fmt.Sprintf("https://github.example.com/org/repo%d", i))
		}
		references = append(references, "not a url at all://")
		request := entities.EnablementRequest{
			References: references,
			Features:   entities.NewFeatureSelection(entities.FeatureSecretScanning),
		}

		// when
		result, err := newPipeline(connector).Execute(context.Background(), testSettings(secrets), request)

		// then
		require.NoError(t, err)
		require.Len(t, result.InvalidReferences, 1)
		assert.Equal(t, entities.ReasonMalformed, result.InvalidReferences[0].Reason)
		assert.Len(t, processedRepositories(result), 9)
		assert.Equal(t, entities.GroupExecuted, result.Groups[0].Status)
	})

	t.Run("should abort when the license snapshot cannot be fetched", func(t *testing.T) {
		t.Parallel()

		// given
		host := &doubles.SpyRepoHost{
			BillingErrs: map[entities.BillingProduct]error{
				entities.BillingProductNone: errors.New("connection refused"),
			},
		}
		connector := &doubles.StubHostConnector{DefaultHost: host}
		request := entities.EnablementRequest{
			References: []string{"https://github.example.com/org/repo", "::bad::"},
			Features:   entities.NewFeatureSelection(entities.FeatureCodeScanning),
		}

		// when
		result, err := newPipeline(connector).Execute(context.Background(), testSettings(secrets), request)

		// then
		require.ErrorIs(t, err, entities.ErrLicenseAuthorityUnreachable)
		require.NotNil(t, result)
		assert.Empty(t, result.Groups)
		assert.Len(t, result.InvalidReferences, 1)
		assert.Zero(t, host.MutatingCalls())
	})

	t.Run("should not fetch the snapshot when the license check is skipped", func(t *testing.T) {
		t.Parallel()

		// given
		host := &doubles.SpyRepoHost{}
		connector := &doubles.StubHostConnector{DefaultHost: host}
		request := entities.EnablementRequest{
			References:       []string{"https://github.example.com/org/repo"},
			Features:         entities.NewFeatureSelection(entities.FeatureSecretScanning),
			SkipLicenseCheck: true,
		}

		// when
		result, err := newPipeline(connector).Execute(context.Background(), testSettings(secrets), request)

		// then
		require.NoError(t, err)
		assert.Empty(t, host.BillingProducts)
		require.Len(t, result.Groups, 1)
		assert.True(t, result.Groups[0].Plan.LicenseCheckSkipped())
		assert.Equal(t, entities.GroupExecuted, result.Groups[0].Status)
	})

	t.Run("should skip a group without credential and still run the others", func(t *testing.T) {
		t.Parallel()

		// given
		host := snapshotHost()
		connector := &doubles.StubHostConnector{DefaultHost: host}
		request := entities.EnablementRequest{
			References: []string{
				"https://github.example.com/org/repo",
				"https://git.unknown.io/org/repo",
			},
			Features: entities.NewFeatureSelection(entities.FeatureSecretScanning),
		}

		// when
		result, err := newPipeline(connector).Execute(context.Background(), testSettings(secrets), request)

		// then
		require.NoError(t, err)
		require.Len(t, result.Groups, 2)
		assert.Equal(t, entities.GroupExecuted, result.Groups[0].Status)
		assert.Equal(t, entities.GroupSkipped, result.Groups[1].Status)
		assert.Empty(t, result.Groups[1].Outcomes)
		assert.Contains(t, result.Groups[1].Message, "listed under invalid references")
		require.Len(t, result.InvalidReferences, 1)
		assert.Equal(t, entities.ReasonNoCredential, result.InvalidReferences[0].Reason)
		assert.Equal(t, entities.StageRoute, result.InvalidReferences[0].Stage)
		assert.Equal(t, map[string]bool{"GHES_TOKEN": true, "GH_TOKEN": false},
			result.Diagnostics.CredentialPresence())
	})
}
