package commands

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// PlanAndExecute is the entry point used by the controllers.
type PlanAndExecute interface {
	Execute(
		ctx context.Context,
		settings *entities.Settings,
		request entities.EnablementRequest,
	) (*entities.RunResult, error)
}

// PlanAndExecuteCommand orchestrates the full flow:
// resolve -> route -> license snapshot (shared barrier) -> plan -> execute.
type PlanAndExecuteCommand struct {
	resolver  ResolveReferences
	router    RouteInstances
	planner   PlanLicense
	executor  ExecuteEnablement
	connector repositories.HostConnector
	now       func() time.Time
}

// NewPlanAndExecuteCommand creates a new PlanAndExecuteCommand.
func NewPlanAndExecuteCommand(
	resolver ResolveReferences,
	router RouteInstances,
	planner PlanLicense,
	executor ExecuteEnablement,
	connector repositories.HostConnector,
) *PlanAndExecuteCommand {
	return &PlanAndExecuteCommand{
		resolver:  resolver,
		router:    router,
		planner:   planner,
		executor:  executor,
		connector: connector,
		now:       time.Now,
	}
}

// connectedGroup is a routing group with its resolved host, or nil host when
// the credential is missing.
type connectedGroup struct {
	group entities.RoutingGroup
	host  repositories.RepoHost
}

type groupRun struct {
	result  entities.GroupResult
	invalid []entities.InvalidReference
}

// Execute runs the whole pipeline. Only a failed license snapshot aborts the
// run; the partial result (invalid references found so far) is returned with
// the error.
func (it *PlanAndExecuteCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	request entities.EnablementRequest,
) (*entities.RunResult, error) {
	diagnostics := entities.NewDiagnostics(it.now())
	result := &entities.RunResult{
		RunID:       diagnostics.RunID,
		DryRun:      request.DryRun,
		Diagnostics: diagnostics,
	}
	logger.Infof("Starting run %s with %d references", diagnostics.RunID, len(request.References))

	resolved := it.resolver.Execute(ctx, settings, diagnostics, request.References)
	result.InvalidReferences = append(result.InvalidReferences, resolved.Invalid...)

	groups := it.router.Execute(settings, resolved.Repositories, request.Features, request.MinHeadroom)
	connected := make([]connectedGroup, 0, len(groups))
	needsSnapshot := false
	for _, group := range groups {
		host, invalid := it.connect(settings, diagnostics, group)
		result.InvalidReferences = append(result.InvalidReferences, invalid...)
		connected = append(connected, connectedGroup{group: group, host: host})
		if host != nil && !request.SkipLicenseCheck {
			needsSnapshot = true
		}
	}

	var snapshot entities.LicenseSnapshot
	if needsSnapshot {
		var err error
		snapshot, err = it.fetchSnapshot(ctx, settings, diagnostics, request.Features)
		if err != nil {
			logger.Errorf("Aborting run %s: %v", diagnostics.RunID, err)
			return result, err
		}
	}

	runs := make([]groupRun, len(connected))
	var workers errgroup.Group
	workers.SetLimit(settings.EffectiveConcurrency())
	for i, entry := range connected {
		workers.Go(func() error {
			runs[i] = it.runGroup(ctx, settings, entry, snapshot, request)
			return nil
		})
	}
	_ = workers.Wait()

	for _, run := range runs {
		result.Groups = append(result.Groups, run.result)
		result.InvalidReferences = append(result.InvalidReferences, run.invalid...)
	}

	logger.Infof("Run %s complete: %d groups, %d invalid references",
		diagnostics.RunID, len(result.Groups), len(result.InvalidReferences))
	return result, nil
}

// connect resolves the group's credential. Without one, every repository of
// the group is reported as no_credential and the host is nil.
func (it *PlanAndExecuteCommand) connect(
	settings *entities.Settings,
	diagnostics *entities.Diagnostics,
	group entities.RoutingGroup,
) (repositories.RepoHost, []entities.InvalidReference) {
	credential := settings.Credential(group.Instance)
	diagnostics.RecordCredential(credential)

	var cause error
	if credential.Present() {
		host, err := it.connector.Connect(group.Instance, credential)
		if err == nil {
			return host, nil
		}
		cause = fmt.Errorf("failed to connect to %s: %w", group.Instance.Name, err)
	} else {
		cause = entities.NewHostError(
			"resolve credential",
			entities.ReasonNoCredential,
			fmt.Errorf("no secret for credential key %q (instance %s)", credential.Key, group.Instance.Name),
		)
	}

	diagnostics.Note(entities.StageRoute, group.Instance.Name, "%v", cause)
	invalid := make([]entities.InvalidReference, 0, len(group.Repositories))
	for _, repo := range group.Repositories {
		invalid = append(invalid, entities.NewInvalidReference(repo.String(), entities.StageRoute, cause))
	}
	return nil, invalid
}

func (it *PlanAndExecuteCommand) fetchSnapshot(
	ctx context.Context,
	settings *entities.Settings,
	diagnostics *entities.Diagnostics,
	features entities.FeatureSelection,
) (entities.LicenseSnapshot, error) {
	authority := settings.LicenseAuthority
	credential := settings.Credential(authority.Instance)
	diagnostics.RecordCredential(credential)
	if !credential.Present() {
		return entities.LicenseSnapshot{}, fmt.Errorf(
			"%w: no secret for credential key %q", entities.ErrLicenseAuthorityUnreachable, credential.Key,
		)
	}

	host, err := it.connector.Connect(authority.Instance, credential)
	if err != nil {
		return entities.LicenseSnapshot{}, fmt.Errorf("%w: %w", entities.ErrLicenseAuthorityUnreachable, err)
	}
	return it.planner.FetchSnapshot(ctx, host, authority.Enterprise, features)
}

func (it *PlanAndExecuteCommand) runGroup(
	ctx context.Context,
	settings *entities.Settings,
	entry connectedGroup,
	snapshot entities.LicenseSnapshot,
	request entities.EnablementRequest,
) groupRun {
	if entry.host == nil {
		plan := entities.NewUnauthenticatedPlan(entry.group, request.DryRun)
		return groupRun{result: it.executor.Execute(ctx, nil, plan, settings.EffectiveConcurrency())}
	}

	plan, invalid := it.planner.Plan(ctx, entry.host, entry.group, snapshot, PlanOptions{
		SkipLicenseCheck: request.SkipLicenseCheck,
		DryRun:           request.DryRun,
		Concurrency:      settings.EffectiveConcurrency(),
	})
	return groupRun{
		result:  it.executor.Execute(ctx, entry.host, plan, settings.EffectiveConcurrency()),
		invalid: invalid,
	}
}
