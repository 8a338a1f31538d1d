//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"sync"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
	"github.com/rios0rios0/autoenable/internal/domain/repositories"
)

// ConnectCall records one Connect invocation.
type ConnectCall struct {
	Instance   entities.HostingInstance
	Credential entities.Credential
}

// StubHostConnector implements repositories.HostConnector by handing out
// preconfigured hosts keyed by instance hostname.
type StubHostConnector struct {
	mu sync.Mutex

	Hosts       map[string]repositories.RepoHost
	DefaultHost repositories.RepoHost
	ConnectErrs map[string]error

	// spy
	Calls []ConnectCall
}

var _ repositories.HostConnector = (*StubHostConnector)(nil)

func (c *StubHostConnector) Connect(
	instance entities.HostingInstance,
	credential entities.Credential,
) (repositories.RepoHost, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = append(c.Calls, ConnectCall{Instance: instance, Credential: credential})

	if err, ok := c.ConnectErrs[instance.Hostname]; ok {
		return nil, err
	}
	if host, ok := c.Hosts[instance.Hostname]; ok {
		return host, nil
	}
	return c.DefaultHost, nil
}

// ConnectedHostnames returns the hostnames passed to Connect, in call order.
func (c *StubHostConnector) ConnectedHostnames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	hostnames := make([]string, 0, len(c.Calls))
	for _, call := range c.Calls {
		hostnames = append(hostnames, call.Instance.Hostname)
	}
	return hostnames
}
