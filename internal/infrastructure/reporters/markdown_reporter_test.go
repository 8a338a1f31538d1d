//go:build unit

package reporters_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/infrastructure/reporters"
	"github.com/rios0rios0/autoenable/test/domain/entitybuilders"
)

func sampleResult() *entities.RunResult {
	group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "repoA").WithMinHeadroom(2).
		BuildRoutingGroup()
	snapshot := entitybuilders.NewLicenseSnapshotBuilder().WithSeats(10, 5).BuildLicenseSnapshot()
	plan := entities.NewEnablementPlan(group, snapshot, entities.NewIdentitySet("a@x.io"), false)

	diagnostics := entities.NewDiagnostics(time.Now())
	diagnostics.RecordCredential(entities.Credential{Key: "GHES_TOKEN", Token: "super-secret"})

	return &entities.RunResult{
		RunID: diagnostics.RunID,
		Groups: []entities.GroupResult{{
			Plan:    plan,
			Status:  entities.GroupExecuted,
			Message: "1 repositories processed, 1 with failures",
			Outcomes: []entities.RepositoryOutcome{{
				Repository: group.Repositories[0],
				Actions: []entities.ActionOutcome{
					{
						Action: entities.Action{Repository: group.Repositories[0], Kind: entities.ActionEnsureCapability},
						Status: entities.StatusFailed,
						Reason: entities.ReasonForbidden,
						Detail: "admin | rights required",
					},
				},
			}},
		}},
		InvalidReferences: []entities.InvalidReference{{
			Input:  "https://github.example.com",
			Reason: entities.ReasonMalformed,
			Stage:  entities.StageResolve,
		}},
		Diagnostics: diagnostics,
	}
}

func TestMarkdownReporterRender(t *testing.T) {
	t.Parallel()

	t.Run("should render seat math, actions and invalid references", func(t *testing.T) {
		t.Parallel()

		// given
		result := sampleResult()

		// when
		report := reporters.NewMarkdownReporter().Render(result)

		// then
		assert.Contains(t, report, result.RunID)
		assert.Contains(t, report, "approved within license headroom")
		assert.Contains(t, report, "- **Seats after enablement:** 4 (minimum headroom 2)")
		assert.Contains(t, report, "| org/repoA | ensure_capability | failed | forbidden: admin \\| rights required |")
		assert.Contains(t, report, "## Invalid references")
		assert.Contains(t, report, "| https://github.example.com | resolve | malformed |")
		assert.Contains(t, report, "- `GHES_TOKEN`: present")
		assert.NotContains(t, report, "super-secret")
	})

	t.Run("should label a skipped license check distinctly from an approval", func(t *testing.T) {
		t.Parallel()

		// given
		group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "repoA").BuildRoutingGroup()
		result := &entities.RunResult{
			RunID:  "run-1",
			DryRun: true,
			Groups: []entities.GroupResult{{
				Plan:   entities.NewSkippedPlan(group, true),
				Status: entities.GroupDryRun,
			}},
		}

		// when
		report := reporters.NewMarkdownReporter().Render(result)

		// then
		assert.Contains(t, report, "license check skipped")
		assert.NotContains(t, report, "approved within license headroom")
		assert.NotContains(t, report, "Seats after enablement")
		assert.Contains(t, report, "dry run (no changes applied)")
		assert.Contains(t, report, "None.")
	})

	t.Run("should count repositories of a group without credential only once", func(t *testing.T) {
		t.Parallel()

		// given
		group := entitybuilders.NewRoutingGroupBuilder().WithRepository("org", "repoA").BuildRoutingGroup()
		result := &entities.RunResult{
			RunID: "run-2",
			Groups: []entities.GroupResult{{
				Plan:   entities.NewUnauthenticatedPlan(group, false),
				Status: entities.GroupSkipped,
			}},
			InvalidReferences: []entities.InvalidReference{{
				Input:  group.Repositories[0].String(),
				Reason: entities.ReasonNoCredential,
				Stage:  entities.StageRoute,
			}},
		}

		// when
		report := reporters.NewMarkdownReporter().Render(result)

		// then
		assert.Contains(t, report, "not attempted, credential missing")
		assert.Contains(t, report, "- **Repositories:** see Invalid references")
		assert.NotContains(t, report, "- **Repositories:** 1")
		assert.Contains(t, report, "| route | no_credential |")
	})
}

func TestConsoleReporterWrite(t *testing.T) {
	t.Parallel()

	t.Run("should print every group and invalid reference", func(t *testing.T) {
		t.Parallel()

		// given
		var out bytes.Buffer
		result := sampleResult()

		// when
		err := reporters.NewConsoleReporter().Write(&out, result)

		// then
		require.NoError(t, err)
		assert.Contains(t, out.String(), "ghes-test: 1 repositories processed, 1 with failures")
		assert.Contains(t, out.String(), "https://github.example.com [resolve/malformed]")
	})
}
