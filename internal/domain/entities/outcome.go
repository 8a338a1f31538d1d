package entities

// ActionKind is one step applied to a repository: the prerequisite
// capability check or one selected feature.
type ActionKind string

// ActionEnsureCapability verifies, and enables when missing, the security
// capability that every feature depends on.
const ActionEnsureCapability ActionKind = "ensure_capability"

// FeatureAction returns the action kind that enables a feature.
func FeatureAction(kind FeatureKind) ActionKind {
	return ActionKind(kind)
}

// Action is one intended call against one repository.
type Action struct {
	Repository RepositoryReference
	Kind       ActionKind
}

// ActionStatus is what happened to an Action.
type ActionStatus string

const (
	StatusEnabled        ActionStatus = "enabled"
	StatusAlreadyEnabled ActionStatus = "already_enabled"
	StatusWouldApply     ActionStatus = "would_apply"
	StatusFailed         ActionStatus = "failed"
	StatusSkipped        ActionStatus = "skipped"
)

// ActionOutcome is the result of one Action.
type ActionOutcome struct {
	Action Action
	Status ActionStatus
	Reason ReasonCode
	Detail string
}

// RepositoryOutcome collects the outcomes of every action on one repository.
type RepositoryOutcome struct {
	Repository RepositoryReference
	Actions    []ActionOutcome
}

// Failed reports whether any action on the repository failed.
func (o RepositoryOutcome) Failed() bool {
	for _, action := range o.Actions {
		if action.Status == StatusFailed {
			return true
		}
	}
	return false
}

// GroupStatus summarizes what the executor did with a group.
type GroupStatus string

const (
	GroupExecuted GroupStatus = "executed"
	GroupDryRun   GroupStatus = "dry_run"
	GroupRejected GroupStatus = "rejected"
	GroupSkipped  GroupStatus = "skipped"
)

// GroupResult pairs a plan with the executor's outcomes.
type GroupResult struct {
	Plan     EnablementPlan
	Status   GroupStatus
	Message  string
	Outcomes []RepositoryOutcome
}

// FailedRepositories counts repositories with at least one failed action.
func (r GroupResult) FailedRepositories() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Failed() {
			count++
		}
	}
	return count
}

// RunResult is everything a single planAndExecute run produced.
type RunResult struct {
	RunID             string
	DryRun            bool
	Groups            []GroupResult
	InvalidReferences []InvalidReference
	Diagnostics       *Diagnostics
}
