package repositories

import (
	"context"
	"time"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// RepoHost abstracts the hosting provider API for one instance and one
// credential. Failures should be returned as *entities.HostError so the
// commands can classify them.
type RepoHost interface {
	// ListRepositories returns one page of repositories owned by the
	// organization or user. Pages start at 1.
	ListRepositories(
		ctx context.Context,
		container entities.ContainerReference,
		page int,
	) (entities.Page[entities.RepositoryReference], error)

	// ListCommits returns one page of commit identities pushed since the given time.
	ListCommits(
		ctx context.Context,
		repo entities.RepositoryReference,
		since time.Time,
		page int,
	) (entities.Page[entities.CommitIdentity], error)

	// GetBillingSnapshot fetches enterprise-wide seat accounting. An empty
	// product sends the unparameterized request; implementations return an
	// error wrapping entities.ErrBillingProductRequired when the API insists
	// on a product.
	GetBillingSnapshot(
		ctx context.Context,
		enterprise string,
		product entities.BillingProduct,
	) (entities.LicenseSnapshot, error)

	// EnsureSecurityCapability activates the prerequisite capability if it is
	// not already active.
	EnsureSecurityCapability(
		ctx context.Context,
		repo entities.RepositoryReference,
	) (entities.CapabilityStatus, error)

	// EnableFeature turns a single feature on.
	EnableFeature(
		ctx context.Context,
		repo entities.RepositoryReference,
		kind entities.FeatureKind,
	) (entities.FeatureStatus, error)
}

// HostConnector builds a RepoHost bound to an instance and credential.
type HostConnector interface {
	Connect(instance entities.HostingInstance, credential entities.Credential) (RepoHost, error)
}
