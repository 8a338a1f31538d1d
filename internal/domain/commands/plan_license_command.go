package commands

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// PlanLicense decides whether enabling a group fits in the license pool.
type PlanLicense interface {
	FetchSnapshot(
		ctx context.Context,
		host repositories.RepoHost,
		enterprise string,
		features entities.FeatureSelection,
	) (entities.LicenseSnapshot, error)

	Plan(
		ctx context.Context,
		host repositories.RepoHost,
		group entities.RoutingGroup,
		snapshot entities.LicenseSnapshot,
		opts PlanOptions,
	) (entities.EnablementPlan, []entities.InvalidReference)
}

// PlanOptions holds the per-run switches that affect planning.
type PlanOptions struct {
	SkipLicenseCheck bool
	DryRun           bool
	Concurrency      int
}

// PlanLicenseCommand fetches seat accounting and builds plans.
type PlanLicenseCommand struct {
	analyzer AnalyzeCommitters
}

// NewPlanLicenseCommand creates a new PlanLicenseCommand.
func NewPlanLicenseCommand(analyzer AnalyzeCommitters) *PlanLicenseCommand {
	return &PlanLicenseCommand{analyzer: analyzer}
}

// FetchSnapshot reads the enterprise billing data. When the API rejects the
// unparameterized request for lack of a product, it retries exactly once
// with the product derived from the feature selection. Every failure is
// reported as ErrLicenseAuthorityUnreachable.
func (it *PlanLicenseCommand) FetchSnapshot(
	ctx context.Context,
	host repositories.RepoHost,
	enterprise string,
	features entities.FeatureSelection,
) (entities.LicenseSnapshot, error) {
	snapshot, err := host.GetBillingSnapshot(ctx, enterprise, entities.BillingProductNone)
	if errors.Is(err, entities.ErrBillingProductRequired) {
		product := features.BillingProduct()
		logger.Infof("Billing endpoint requires a product; retrying with %q", product)
		snapshot, err = host.GetBillingSnapshot(ctx, enterprise, product)
	}
	if err != nil {
		return entities.LicenseSnapshot{}, fmt.Errorf("%w: %w", entities.ErrLicenseAuthorityUnreachable, err)
	}

	logger.Infof("License snapshot for %q: %d total seats, %d used, %d licensed identities",
		enterprise, snapshot.TotalSeats, snapshot.UsedSeats, len(snapshot.Licensed))
	return snapshot, nil
}

// Plan builds the group's plan. Skipping the license check bypasses the
// committer analysis entirely; an empty group only checks base headroom.
func (it *PlanLicenseCommand) Plan(
	ctx context.Context,
	host repositories.RepoHost,
	group entities.RoutingGroup,
	snapshot entities.LicenseSnapshot,
	opts PlanOptions,
) (entities.EnablementPlan, []entities.InvalidReference) {
	if opts.SkipLicenseCheck {
		logger.Warnf("License check skipped for %s", group.Instance.Name)
		return entities.NewSkippedPlan(group, opts.DryRun), nil
	}

	if len(group.Repositories) == 0 {
		return entities.NewEnablementPlan(group, snapshot, entities.IdentitySet{}, opts.DryRun), nil
	}

	analysis := it.analyzer.Execute(ctx, host, group, opts.Concurrency)
	plan := entities.NewEnablementPlan(group, snapshot, analysis.Identities, opts.DryRun)

	logger.Infof(
		"Plan for %s: %d new seats needed, %s projected available, minimum headroom %d, approved=%t",
		group.Instance.Name, plan.EstimatedSeatsNeeded, plan.ProjectedAvailableSeats,
		group.MinHeadroom, plan.Approved,
	)
	return plan, analysis.Invalid
}
