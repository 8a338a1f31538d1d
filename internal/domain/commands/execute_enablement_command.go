package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// ExecuteEnablement applies an approved plan.
type ExecuteEnablement interface {
	Execute(
		ctx context.Context,
		host repositories.RepoHost,
		plan entities.EnablementPlan,
		concurrency int,
	) entities.GroupResult
}

// ExecuteEnablementCommand enables the selected features repository by
// repository, recording failures instead of stopping.
type ExecuteEnablementCommand struct{}

// NewExecuteEnablementCommand creates a new ExecuteEnablementCommand.
func NewExecuteEnablementCommand() *ExecuteEnablementCommand {
	return &ExecuteEnablementCommand{}
}

// PlannedActions enumerates, per repository, the capability check followed by
// one action per selected feature. Live and dry runs both use it.
func PlannedActions(plan entities.EnablementPlan) [][]entities.Action {
	actions := make([][]entities.Action, 0, len(plan.Group.Repositories))
	for _, repo := range plan.Group.Repositories {
		repoActions := make([]entities.Action, 0, len(plan.Group.Features)+1)
		repoActions = append(repoActions, entities.Action{Repository: repo, Kind: entities.ActionEnsureCapability})
		for _, feature := range plan.Group.Features {
			repoActions = append(repoActions, entities.Action{Repository: repo, Kind: entities.FeatureAction(feature)})
		}
		actions = append(actions, repoActions)
	}
	return actions
}

// Execute does nothing for a rejected plan, reports intended actions for a
// dry-run plan, and otherwise performs them.
func (it *ExecuteEnablementCommand) Execute(
	ctx context.Context,
	host repositories.RepoHost,
	plan entities.EnablementPlan,
	concurrency int,
) entities.GroupResult {
	if !plan.Approved {
		status := entities.GroupRejected
		if plan.Basis == entities.BasisMissingCredential {
			status = entities.GroupSkipped
		}
		return entities.GroupResult{
			Plan:    plan,
			Status:  status,
			Message: rejectionMessage(plan),
		}
	}

	planned := PlannedActions(plan)
	outcomes := make([]entities.RepositoryOutcome, len(planned))

	var workers errgroup.Group
	workers.SetLimit(max(concurrency, 1))
	for i, repoActions := range planned {
		workers.Go(func() error {
			outcomes[i] = applyActions(ctx, host, plan.Group.Repositories[i], repoActions, plan.DryRun)
			return nil
		})
	}
	_ = workers.Wait()

	result := entities.GroupResult{Plan: plan, Outcomes: outcomes}
	if plan.DryRun {
		result.Status = entities.GroupDryRun
		result.Message = fmt.Sprintf("dry run: %d repositories would be processed", len(outcomes))
		return result
	}

	result.Status = entities.GroupExecuted
	result.Message = fmt.Sprintf("%d repositories processed, %d with failures",
		len(outcomes), result.FailedRepositories())
	logger.Infof("Enablement on %s: %s", plan.Group.Instance.Name, result.Message)
	return result
}

// applyActions runs one repository's actions in order. A failed capability
// check skips the features; features fail independently of each other.
func applyActions(
	ctx context.Context,
	host repositories.RepoHost,
	repo entities.RepositoryReference,
	actions []entities.Action,
	dryRun bool,
) entities.RepositoryOutcome {
	outcome := entities.RepositoryOutcome{Repository: repo, Actions: make([]entities.ActionOutcome, 0, len(actions))}
	prerequisiteFailed := false

	for _, action := range actions {
		if dryRun {
			outcome.Actions = append(outcome.Actions, entities.ActionOutcome{Action: action, Status: entities.StatusWouldApply})
			continue
		}
		if prerequisiteFailed {
			outcome.Actions = append(outcome.Actions, entities.ActionOutcome{
				Action: action,
				Status: entities.StatusSkipped,
				Detail: "security capability could not be ensured",
			})
			continue
		}

		result := applyAction(ctx, host, action)
		if result.Status == entities.StatusFailed {
			logger.Errorf("[%s] %s failed: %s", repo.FullName(), action.Kind, result.Detail)
			if action.Kind == entities.ActionEnsureCapability {
				prerequisiteFailed = true
			}
		}
		outcome.Actions = append(outcome.Actions, result)
	}

	return outcome
}

func applyAction(
	ctx context.Context,
	host repositories.RepoHost,
	action entities.Action,
) entities.ActionOutcome {
	if action.Kind == entities.ActionEnsureCapability {
		status, err := host.EnsureSecurityCapability(ctx, action.Repository)
		if err != nil {
			return failedOutcome(action, err)
		}
		if status == entities.CapabilityAlreadyActive {
			return entities.ActionOutcome{Action: action, Status: entities.StatusAlreadyEnabled}
		}
		return entities.ActionOutcome{Action: action, Status: entities.StatusEnabled}
	}

	status, err := host.EnableFeature(ctx, action.Repository, entities.FeatureKind(action.Kind))
	if err != nil {
		return failedOutcome(action, err)
	}
	if status == entities.FeatureAlreadyEnabled {
		return entities.ActionOutcome{Action: action, Status: entities.StatusAlreadyEnabled}
	}
	return entities.ActionOutcome{Action: action, Status: entities.StatusEnabled}
}

func failedOutcome(action entities.Action, err error) entities.ActionOutcome {
	return entities.ActionOutcome{
		Action: action,
		Status: entities.StatusFailed,
		Reason: entities.ReasonOf(err),
		Detail: err.Error(),
	}
}

func rejectionMessage(plan entities.EnablementPlan) string {
	if plan.Basis == entities.BasisMissingCredential {
		return fmt.Sprintf(
			"no credential for key %q; nothing was attempted, the %d repositories are listed under invalid references",
			plan.Group.Instance.CredentialKey, len(plan.Group.Repositories),
		)
	}
	return fmt.Sprintf(
		"not enough license headroom: %s seats would remain after enabling %d new committers, minimum is %d",
		plan.ProjectedAvailableSeats, plan.EstimatedSeatsNeeded, plan.Group.MinHeadroom,
	)
}
