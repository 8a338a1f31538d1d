//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/autoenable/internal/domain/entities"
	testkit "github.com/rios0rios0/testkit/pkg/test"
)

// RoutingGroupBuilder helps create routing groups with a fluent interface.
type RoutingGroupBuilder struct {
	*testkit.BaseBuilder
	instance     entities.HostingInstance
	repositories []entities.RepositoryReference
	features     entities.FeatureSelection
	minHeadroom  int
}

func defaultInstance() entities.HostingInstance {
	return entities.HostingInstance{
		Hostname:      "github.example.com",
		Name:          "ghes-test",
		Kind:          entities.InstanceKindServer,
		APIEndpoint:   "https://github.example.com/api/v3/",
		CredentialKey: "GHES_TOKEN",
	}
}

// NewRoutingGroupBuilder creates a new routing group builder with sensible defaults.
func NewRoutingGroupBuilder() *RoutingGroupBuilder {
	return &RoutingGroupBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		instance:    defaultInstance(),
		features:    entities.NewFeatureSelection(entities.FeatureSecretScanning),
	}
}

// WithInstance sets the hosting instance.
func (b *RoutingGroupBuilder) WithInstance(instance entities.HostingInstance) *RoutingGroupBuilder {
	b.instance = instance
	return b
}

// WithRepository appends a repository owned by owner on the instance hostname.
func (b *RoutingGroupBuilder) WithRepository(owner, name string) *RoutingGroupBuilder {
	b.repositories = append(b.repositories, entities.RepositoryReference{
		Hostname: b.instance.Hostname,
		Owner:    owner,
		Name:     name,
	})
	return b
}

// WithFeatures sets the selected features.
func (b *RoutingGroupBuilder) WithFeatures(kinds ...entities.FeatureKind) *RoutingGroupBuilder {
	b.features = entities.NewFeatureSelection(kinds...)
	return b
}

// WithMinHeadroom sets the minimum headroom.
func (b *RoutingGroupBuilder) WithMinHeadroom(minHeadroom int) *RoutingGroupBuilder {
	b.minHeadroom = minHeadroom
	return b
}

// Build creates the routing group (satisfies testkit.Builder interface).
func (b *RoutingGroupBuilder) Build() interface{} {
	return b.BuildRoutingGroup()
}

// BuildRoutingGroup creates the routing group with a concrete return type.
func (b *RoutingGroupBuilder) BuildRoutingGroup() entities.RoutingGroup {
	return entities.RoutingGroup{
		Instance:     b.instance,
		Repositories: append([]entities.RepositoryReference(nil), b.repositories...),
		Features:     append(entities.FeatureSelection(nil), b.features...),
		MinHeadroom:  b.minHeadroom,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *RoutingGroupBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.instance = defaultInstance()
	b.repositories = nil
	b.features = entities.NewFeatureSelection(entities.FeatureSecretScanning)
	b.minHeadroom = 0
	return b
}

// Clone creates a deep copy of the RoutingGroupBuilder.
func (b *RoutingGroupBuilder) Clone() testkit.Builder {
	return &RoutingGroupBuilder{
		BaseBuilder:  b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		instance:     b.instance,
		repositories: append([]entities.RepositoryReference(nil), b.repositories...),
		features:     append(entities.FeatureSelection(nil), b.features...),
		minHeadroom:  b.minHeadroom,
	}
}
