package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	domainRepos "github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// HostFactory is a constructor function that creates a RepoHost for an
// instance and its credential.
type HostFactory func(
	instance entities.HostingInstance,
	credential entities.Credential,
) (domainRepos.RepoHost, error)

// HostRegistry maps instance kinds to RepoHost implementations.
type HostRegistry struct {
	factories map[entities.InstanceKind]HostFactory
}

var _ domainRepos.HostConnector = (*HostRegistry)(nil)

// NewHostRegistry creates an empty host registry.
func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		factories: make(map[entities.InstanceKind]HostFactory),
	}
}

// Register adds a factory under the given instance kind.
func (r *HostRegistry) Register(kind entities.InstanceKind, factory HostFactory) {
	r.factories[kind] = factory
}

// Connect returns a RepoHost for the instance, chosen by its kind.
func (r *HostRegistry) Connect(
	instance entities.HostingInstance,
	credential entities.Credential,
) (domainRepos.RepoHost, error) {
	factory, ok := r.factories[instance.Kind]
	if !ok {
		return nil, entities.NewHostError(
			"connect "+instance.Name,
			entities.ReasonMalformed,
			fmt.Errorf("unknown instance kind: %q", instance.Kind),
		)
	}
	return factory(instance, credential)
}

// Kinds returns the registered instance kinds in lexical order.
func (r *HostRegistry) Kinds() []entities.InstanceKind {
	kinds := make([]entities.InstanceKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
