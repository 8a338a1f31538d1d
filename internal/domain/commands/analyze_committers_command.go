package commands

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// CommitWindow is the trailing period whose contributors are counted.
const CommitWindow = 90 * 24 * time.Hour

// AnalyzeCommitters collects the contributor identities of a group.
type AnalyzeCommitters interface {
	Execute(
		ctx context.Context,
		host repositories.RepoHost,
		group entities.RoutingGroup,
		concurrency int,
	) CommitterAnalysis
}

// CommitterAnalysis is the union of identities over a group plus the
// repositories that could not be analyzed.
type CommitterAnalysis struct {
	Identities    entities.IdentitySet
	PerRepository map[string]entities.IdentitySet
	Invalid       []entities.InvalidReference
}

// AnalyzeCommittersCommand reads commit metadata over CommitWindow.
type AnalyzeCommittersCommand struct {
	now func() time.Time
}

// NewAnalyzeCommittersCommand creates a new AnalyzeCommittersCommand using the wall clock.
func NewAnalyzeCommittersCommand() *AnalyzeCommittersCommand {
	return &AnalyzeCommittersCommand{now: time.Now}
}

// WithClock replaces the clock used to compute the window start.
func (it *AnalyzeCommittersCommand) WithClock(now func() time.Time) *AnalyzeCommittersCommand {
	return &AnalyzeCommittersCommand{now: now}
}

type repositoryAnalysis struct {
	identities entities.IdentitySet
	invalid    *entities.InvalidReference
}

// Execute analyzes every repository of the group. A failing repository
// contributes nothing and is reported; the others still run.
func (it *AnalyzeCommittersCommand) Execute(
	ctx context.Context,
	host repositories.RepoHost,
	group entities.RoutingGroup,
	concurrency int,
) CommitterAnalysis {
	since := it.now().Add(-CommitWindow)
	results := make([]repositoryAnalysis, len(group.Repositories))

	var workers errgroup.Group
	workers.SetLimit(max(concurrency, 1))
	for i, repo := range group.Repositories {
		workers.Go(func() error {
			identities, err := collectCommitters(ctx, host, repo, since)
			if err != nil {
				logger.Warnf("Failed to analyze committers of %s: %v", repo.FullName(), err)
				record := entities.NewInvalidReference(repo.String(), entities.StageAnalyze, err)
				results[i] = repositoryAnalysis{identities: entities.IdentitySet{}, invalid: &record}
				return nil
			}
			results[i] = repositoryAnalysis{identities: identities}
			return nil
		})
	}
	_ = workers.Wait()

	analysis := CommitterAnalysis{
		Identities:    entities.IdentitySet{},
		PerRepository: make(map[string]entities.IdentitySet, len(results)),
	}
	for i, result := range results {
		analysis.PerRepository[group.Repositories[i].Key()] = result.identities
		analysis.Identities = analysis.Identities.Union(result.identities)
		if result.invalid != nil {
			analysis.Invalid = append(analysis.Invalid, *result.invalid)
		}
	}

	logger.Infof("Found %d unique committers across %d repositories on %s",
		len(analysis.Identities), len(group.Repositories), group.Instance.Name)
	return analysis
}

// collectCommitters pages through the whole window; the window, not a result
// count, bounds the work.
func collectCommitters(
	ctx context.Context,
	host repositories.RepoHost,
	repo entities.RepositoryReference,
	since time.Time,
) (entities.IdentitySet, error) {
	identities := entities.IdentitySet{}
	page := 1
	for {
		result, err := host.ListCommits(ctx, repo, since, page)
		if err != nil {
			return nil, err
		}
		for _, commit := range result.Items {
			identities.Add(commit.AuthorEmail)
			identities.Add(commit.CommitterEmail)
		}

		if result.NextPage <= page {
			return identities, nil
		}
		page = result.NextPage
	}
}
