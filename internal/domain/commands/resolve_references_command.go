package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// ResolveReferences turns raw references into concrete repositories.
type ResolveReferences interface {
	Execute(
		ctx context.Context,
		settings *entities.Settings,
		diagnostics *entities.Diagnostics,
		references []string,
	) ResolvedReferences
}

// ResolvedReferences holds every repository found plus the inputs that could
// not be used. Repositories may contain duplicates.
type ResolvedReferences struct {
	Repositories []entities.RepositoryReference
	Invalid      []entities.InvalidReference
}

// ResolveReferencesCommand classifies inputs and expands containers through
// the hosting API.
type ResolveReferencesCommand struct {
	connector repositories.HostConnector
}

// NewResolveReferencesCommand creates a new ResolveReferencesCommand.
func NewResolveReferencesCommand(connector repositories.HostConnector) *ResolveReferencesCommand {
	return &ResolveReferencesCommand{connector: connector}
}

// Execute never fails as a whole: each bad input becomes an InvalidReference.
func (it *ResolveReferencesCommand) Execute(
	ctx context.Context,
	settings *entities.Settings,
	diagnostics *entities.Diagnostics,
	references []string,
) ResolvedReferences {
	var result ResolvedReferences

	for _, raw := range references {
		parsed, err := entities.ParseReference(raw)
		if err != nil {
			logger.Warnf("Skipping malformed reference %q: %v", raw, err)
			result.Invalid = append(result.Invalid, entities.NewInvalidReference(raw, entities.StageResolve, err))
			continue
		}

		if !parsed.IsContainer() {
			result.Repositories = append(result.Repositories, *parsed.Repository)
			continue
		}

		repos, expandErr := it.expand(ctx, settings, diagnostics, *parsed.Container)
		if expandErr != nil {
			logger.Warnf("Failed to expand %q: %v", parsed.Input, expandErr)
			result.Invalid = append(
				result.Invalid,
				entities.NewInvalidReference(parsed.Input, entities.StageResolve, expandErr),
			)
			continue
		}

		logger.Infof("Expanded %q into %d repositories", parsed.Input, len(repos))
		result.Repositories = append(result.Repositories, repos...)
	}

	return result
}

// expand lists every page of a container. A failure on any page discards the
// pages already read so a half-listed owner is never planned.
func (it *ResolveReferencesCommand) expand(
	ctx context.Context,
	settings *entities.Settings,
	diagnostics *entities.Diagnostics,
	container entities.ContainerReference,
) ([]entities.RepositoryReference, error) {
	instance := settings.InstanceFor(container.Hostname)
	credential := settings.Credential(instance)
	diagnostics.RecordCredential(credential)

	if !credential.Present() {
		return nil, entities.NewHostError(
			"resolve credential",
			entities.ReasonNoCredential,
			fmt.Errorf("no secret for credential key %q (instance %s)", credential.Key, instance.Name),
		)
	}

	host, err := it.connector.Connect(instance, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", instance.Name, err)
	}

	var repos []entities.RepositoryReference
	page := 1
	for {
		result, listErr := host.ListRepositories(ctx, container, page)
		if listErr != nil {
			return nil, listErr
		}
		repos = append(repos, result.Items...)

		if result.NextPage <= page {
			break
		}
		page = result.NextPage
	}

	diagnostics.Note(entities.StageResolve, container.String(), "expanded into %d repositories", len(repos))
	return repos, nil
}
