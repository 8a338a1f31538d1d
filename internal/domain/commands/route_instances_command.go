package commands

import (
	"sort"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// RouteInstances partitions repositories by hosting instance.
type RouteInstances interface {
	Execute(
		settings *entities.Settings,
		repos []entities.RepositoryReference,
		features entities.FeatureSelection,
		minHeadroom int,
	) []entities.RoutingGroup
}

// RouteInstancesCommand deduplicates repositories and assigns each one to
// exactly one routing group.
type RouteInstancesCommand struct{}

// NewRouteInstancesCommand creates a new RouteInstancesCommand.
func NewRouteInstancesCommand() *RouteInstancesCommand {
	return &RouteInstancesCommand{}
}

// Execute returns configured groups in configuration order, followed by one
// synthetic group per unmatched hostname in lexical order.
func (it *RouteInstancesCommand) Execute(
	settings *entities.Settings,
	repos []entities.RepositoryReference,
	features entities.FeatureSelection,
	minHeadroom int,
) []entities.RoutingGroup {
	var instances []entities.HostingInstance
	if settings != nil {
		instances = settings.Instances
	}

	matched := make(map[int]*entities.RoutingGroup)
	unmatched := make(map[string]*entities.RoutingGroup)
	seen := make(map[string]bool, len(repos))

	for _, repo := range repos {
		key := repo.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		hostname := strings.ToLower(repo.Hostname)
		instance, index, ok := entities.MatchInstance(instances, hostname)
		if ok {
			group, exists := matched[index]
			if !exists {
				group = &entities.RoutingGroup{Instance: instance, Features: features, MinHeadroom: minHeadroom}
				matched[index] = group
			}
			group.Repositories = append(group.Repositories, repo)
			continue
		}

		group, exists := unmatched[hostname]
		if !exists {
			fallback := entities.UnmatchedInstance(hostname, settings.EffectiveFallbackCredentialKey())
			logger.Warnf("No configured instance matches %q; using %s with credential %s",
				hostname, fallback.Name, fallback.CredentialKey)
			group = &entities.RoutingGroup{Instance: fallback, Features: features, MinHeadroom: minHeadroom}
			unmatched[hostname] = group
		}
		group.Repositories = append(group.Repositories, repo)
	}

	groups := make([]entities.RoutingGroup, 0, len(matched)+len(unmatched))
	for index := range instances {
		if group, ok := matched[index]; ok {
			groups = append(groups, *group)
		}
	}

	hostnames := make([]string, 0, len(unmatched))
	for hostname := range unmatched {
		hostnames = append(hostnames, hostname)
	}
	sort.Strings(hostnames)
	for _, hostname := range hostnames {
		groups = append(groups, *unmatched[hostname])
	}

	return groups
}
