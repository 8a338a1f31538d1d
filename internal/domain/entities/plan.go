package entities

import "strconv"

// RoutingGroup is the per-instance unit of work that gets planned and
// executed as a whole.
type RoutingGroup struct {
	Instance     HostingInstance
	Repositories []RepositoryReference
	Features     FeatureSelection
	MinHeadroom  int
}

// LicenseSnapshot is the enterprise-wide seat accounting fetched once per run.
// TotalSeats <= 0 means the pool is unlimited.
type LicenseSnapshot struct {
	TotalSeats int
	UsedSeats  int
	Licensed   IdentitySet
}

// IsUnlimited reports whether the snapshot carries the unlimited sentinel.
func (s LicenseSnapshot) IsUnlimited() bool {
	return s.TotalSeats <= 0
}

// AvailableSeats returns the seats left before any new enablement.
func (s LicenseSnapshot) AvailableSeats() SeatCount {
	if s.IsUnlimited() {
		return UnlimitedSeats()
	}
	return Seats(s.TotalSeats - s.UsedSeats)
}

// SeatCount is a seat quantity that may be unlimited.
type SeatCount struct {
	Value     int
	Unlimited bool
}

// Seats returns a finite seat count.
func Seats(value int) SeatCount {
	return SeatCount{Value: value}
}

// UnlimitedSeats returns the unlimited sentinel.
func UnlimitedSeats() SeatCount {
	return SeatCount{Unlimited: true}
}

func (c SeatCount) String() string {
	if c.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(c.Value)
}

// PlanBasis records why a plan was approved or rejected.
type PlanBasis string

const (
	// BasisHeadroom means the decision came from the seat arithmetic.
	BasisHeadroom PlanBasis = "headroom"
	// BasisUnlimited means the license pool has no seat limit.
	BasisUnlimited PlanBasis = "unlimited"
	// BasisSkippedLicenseCheck means the caller bypassed license accounting.
	BasisSkippedLicenseCheck PlanBasis = "skipped_license_check"
	// BasisEmptyGroup means there was nothing to analyze and only the base
	// headroom was checked.
	BasisEmptyGroup PlanBasis = "empty_group"
	// BasisMissingCredential means the group could not be authenticated.
	BasisMissingCredential PlanBasis = "missing_credential"
)

// EnablementPlan is the License Planner's decision for one group. Plans are
// values: build a new one instead of changing an existing one.
type EnablementPlan struct {
	Group                   RoutingGroup
	NewIdentities           IdentitySet
	EstimatedSeatsNeeded    int
	BaseAvailableSeats      SeatCount
	ProjectedAvailableSeats SeatCount
	Approved                bool
	Basis                   PlanBasis
	DryRun                  bool
}

// NewEnablementPlan computes the plan for a group from the observed
// contributor identities. It has no side effects.
func NewEnablementPlan(
	group RoutingGroup,
	snapshot LicenseSnapshot,
	observed IdentitySet,
	dryRun bool,
) EnablementPlan {
	newIdentities := observed.Difference(snapshot.Licensed)
	needed := len(newIdentities)

	basis := BasisHeadroom
	if len(group.Repositories) == 0 {
		newIdentities = IdentitySet{}
		needed = 0
		basis = BasisEmptyGroup
	}

	plan := EnablementPlan{
		Group:                group,
		NewIdentities:        newIdentities,
		EstimatedSeatsNeeded: needed,
		DryRun:               dryRun,
	}

	// the sentinel must be handled before any subtraction
	if snapshot.IsUnlimited() {
		plan.BaseAvailableSeats = UnlimitedSeats()
		plan.ProjectedAvailableSeats = UnlimitedSeats()
		plan.Approved = true
		plan.Basis = BasisUnlimited
		return plan
	}

	base := snapshot.TotalSeats - snapshot.UsedSeats
	projected := base - needed
	plan.BaseAvailableSeats = Seats(base)
	plan.ProjectedAvailableSeats = Seats(projected)
	plan.Approved = projected >= group.MinHeadroom
	plan.Basis = basis
	return plan
}

// NewSkippedPlan builds the unconditionally approved plan used when license
// accounting is handled elsewhere.
func NewSkippedPlan(group RoutingGroup, dryRun bool) EnablementPlan {
	return EnablementPlan{
		Group:                   group,
		NewIdentities:           IdentitySet{},
		BaseAvailableSeats:      UnlimitedSeats(),
		ProjectedAvailableSeats: UnlimitedSeats(),
		Approved:                true,
		Basis:                   BasisSkippedLicenseCheck,
		DryRun:                  dryRun,
	}
}

// NewUnauthenticatedPlan builds the rejected plan used for a group whose
// credential could not be resolved.
func NewUnauthenticatedPlan(group RoutingGroup, dryRun bool) EnablementPlan {
	return EnablementPlan{
		Group:         group,
		NewIdentities: IdentitySet{},
		Basis:         BasisMissingCredential,
		DryRun:        dryRun,
	}
}

// LicenseCheckSkipped reports whether the plan bypassed license accounting.
func (p EnablementPlan) LicenseCheckSkipped() bool {
	return p.Basis == BasisSkippedLicenseCheck
}
