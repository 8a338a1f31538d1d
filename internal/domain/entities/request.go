package entities

// EnablementRequest is the typed input of a run. Intake adapters must build
// one of these; raw form text never reaches the commands.
type EnablementRequest struct {
	References       []string
	Features         FeatureSelection
	MinHeadroom      int
	SkipLicenseCheck bool
	DryRun           bool
}

// Page is one page of results from a paginated host call. NextPage is zero
// on the last page.
type Page[T any] struct {
	Items    []T
	NextPage int
}

// CommitIdentity holds the two email fields of a commit.
type CommitIdentity struct {
	AuthorEmail    string
	CommitterEmail string
}

// CapabilityStatus is the answer of an ensure-capability call.
type CapabilityStatus string

const (
	CapabilityAlreadyActive CapabilityStatus = "already_active"
	CapabilityActivated     CapabilityStatus = "activated"
)

// FeatureStatus is the answer of an enable-feature call.
type FeatureStatus string

const (
	FeatureAlreadyEnabled FeatureStatus = "already_enabled"
	FeatureEnabled        FeatureStatus = "enabled"
)
