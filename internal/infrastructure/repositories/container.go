package repositories

import (
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	domainRepos "github.com/rios0rios0/autoenable/internal/domain/repositories"
	ghRepo "github.com/rios0rios0/autoenable/internal/infrastructure/repositories/github"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register host registry with one factory per instance kind
	if err := container.Provide(func() *HostRegistry {
		reg := NewHostRegistry()
		reg.Register(entities.InstanceKindCloud, ghRepo.NewRepoHost)
		reg.Register(entities.InstanceKindServer, ghRepo.NewRepoHost)
		logger.Debugf("Host registry serves instance kinds: %v", reg.Kinds())
		return reg
	}); err != nil {
		return err
	}

	// Bind the domain port to the registry
	if err := container.Provide(func(impl *HostRegistry) domainRepos.HostConnector {
		return impl
	}); err != nil {
		return err
	}

	return nil
}
