//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations, no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// FeatureCall records one EnableFeature invocation.
type FeatureCall struct {
	Repository entities.RepositoryReference
	Kind       entities.FeatureKind
}

// FeatureKey builds the key used by FeatureErrs and FeatureStatuses.
func FeatureKey(repo entities.RepositoryReference, kind entities.FeatureKind) string {
	return repo.Key() + "#" + string(kind)
}

// SpyRepoHost implements repositories.RepoHost as a configurable spy. Every
// method is safe for concurrent use since the commands fan out.
type SpyRepoHost struct {
	mu sync.Mutex

	// --- ListRepositories ---
	// owner -> pages of repository names
	RepositoryPages map[string][][]string
	// owner -> error returned on the page given by ListRepositoriesErrPage (default 1)
	ListRepositoriesErrs    map[string]error
	ListRepositoriesErrPage map[string]int
	// spy: "owner#page"
	ListRepositoriesCalls []string

	// --- ListCommits ---
	// repo key -> pages of commits
	CommitPages    map[string][][]entities.CommitIdentity
	ListCommitsErr map[string]error
	// spy
	ListCommitsCalls []string
	CommitsSince     []time.Time

	// --- GetBillingSnapshot ---
	Snapshots   map[entities.BillingProduct]entities.LicenseSnapshot
	BillingErrs map[entities.BillingProduct]error
	// spy: products requested, in order
	BillingProducts []entities.BillingProduct

	// --- EnsureSecurityCapability ---
	CapabilityStatuses map[string]entities.CapabilityStatus
	CapabilityErrs     map[string]error
	// spy: repo keys
	EnsureCalls []string

	// --- EnableFeature ---
	FeatureStatuses map[string]entities.FeatureStatus
	FeatureErrs     map[string]error
	// spy
	FeatureCalls []FeatureCall
}

var _ repositories.RepoHost = (*SpyRepoHost)(nil)

func (h *SpyRepoHost) ListRepositories(
	_ context.Context,
	container entities.ContainerReference,
	page int,
) (entities.Page[entities.RepositoryReference], error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ListRepositoriesCalls = append(h.ListRepositoriesCalls, fmt.Sprintf("%s#%d", container.Owner, page))

	if err, ok := h.ListRepositoriesErrs[container.Owner]; ok {
		errPage := h.ListRepositoriesErrPage[container.Owner]
		if errPage == 0 {
			errPage = 1
		}
		if page == errPage {
			return entities.Page[entities.RepositoryReference]{}, err
		}
	}

	pages, ok := h.RepositoryPages[container.Owner]
	if !ok {
		return entities.Page[entities.RepositoryReference]{}, entities.NewHostError(
			"list repositories", entities.ReasonNotFound, fmt.Errorf("owner %q not found", container.Owner),
		)
	}

	result := entities.Page[entities.RepositoryReference]{NextPage: nextPage(page, len(pages))}
	if page <= len(pages) {
		for _, name := range pages[page-1] {
			result.Items = append(result.Items, container.Repository(name))
		}
	}
	return result, nil
}

func (h *SpyRepoHost) ListCommits(
	_ context.Context,
	repo entities.RepositoryReference,
	since time.Time,
	page int,
) (entities.Page[entities.CommitIdentity], error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ListCommitsCalls = append(h.ListCommitsCalls, fmt.Sprintf("%s#%d", repo.Key(), page))
	h.CommitsSince = append(h.CommitsSince, since)

	if err, ok := h.ListCommitsErr[repo.Key()]; ok {
		return entities.Page[entities.CommitIdentity]{}, err
	}

	pages := h.CommitPages[repo.Key()]
	result := entities.Page[entities.CommitIdentity]{NextPage: nextPage(page, len(pages))}
	if page <= len(pages) {
		result.Items = pages[page-1]
	}
	return result, nil
}

func (h *SpyRepoHost) GetBillingSnapshot(
	_ context.Context,
	_ string,
	product entities.BillingProduct,
) (entities.LicenseSnapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.BillingProducts = append(h.BillingProducts, product)

	if err, ok := h.BillingErrs[product]; ok {
		return entities.LicenseSnapshot{}, err
	}
	snapshot, ok := h.Snapshots[product]
	if !ok {
		return entities.LicenseSnapshot{}, fmt.Errorf("no snapshot configured for product %q", product)
	}
	return snapshot, nil
}

func (h *SpyRepoHost) EnsureSecurityCapability(
	_ context.Context,
	repo entities.RepositoryReference,
) (entities.CapabilityStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.EnsureCalls = append(h.EnsureCalls, repo.Key())

	if err, ok := h.CapabilityErrs[repo.Key()]; ok {
		return "", err
	}
	if status, ok := h.CapabilityStatuses[repo.Key()]; ok {
		return status, nil
	}
	return entities.CapabilityActivated, nil
}

func (h *SpyRepoHost) EnableFeature(
	_ context.Context,
	repo entities.RepositoryReference,
	kind entities.FeatureKind,
) (entities.FeatureStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.FeatureCalls = append(h.FeatureCalls, FeatureCall{Repository: repo, Kind: kind})

	key := FeatureKey(repo, kind)
	if err, ok := h.FeatureErrs[key]; ok {
		return "", err
	}
	if status, ok := h.FeatureStatuses[key]; ok {
		return status, nil
	}
	return entities.FeatureEnabled, nil
}

// MutatingCalls counts calls that would change repository settings.
func (h *SpyRepoHost) MutatingCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.EnsureCalls) + len(h.FeatureCalls)
}

// TotalCalls counts every call made against the host.
func (h *SpyRepoHost) TotalCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.ListRepositoriesCalls) + len(h.ListCommitsCalls) + len(h.BillingProducts) +
		len(h.EnsureCalls) + len(h.FeatureCalls)
}

func nextPage(page, total int) int {
	if page < total {
		return page + 1
	}
	return 0
}
