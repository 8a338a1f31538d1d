package entities

import (
	"strings"
)

// InstanceKind separates the main public hosting domain from enterprise
// server installations. Authentication scopes and API paths differ between them.
type InstanceKind string

const (
	InstanceKindCloud  InstanceKind = "cloud"
	InstanceKindServer InstanceKind = "server"

	// CloudHostname is the main public hosting domain.
	CloudHostname = "github.com"
	// CloudAPIEndpoint is the REST root of the main public hosting domain.
	CloudAPIEndpoint = "https://api.github.com/"

	// UnmatchedInstancePrefix prefixes the name of synthetic instances built
	// for hostnames that no configured descriptor claims.
	UnmatchedInstancePrefix = "unmatched:"
)

// HostingInstance describes one configured hosting instance.
type HostingInstance struct {
	Hostname      string
	Name          string
	Kind          InstanceKind
	APIEndpoint   string
	CredentialKey string
	Unmatched     bool
	// RequestsPerSecond caps API calls made to this instance; zero means the
	// client default.
	RequestsPerSecond float64
}

// MatchesHostname applies the suffix-anchored rule: the hostname must equal
// the instance hostname or end with "." followed by it.
func (h HostingInstance) MatchesHostname(hostname string) bool {
	host := strings.ToLower(strings.TrimSpace(hostname))
	configured := strings.ToLower(strings.TrimSpace(h.Hostname))
	if host == "" || configured == "" {
		return false
	}
	return host == configured || strings.HasSuffix(host, "."+configured)
}

// MatchInstance returns the first instance whose hostname matches.
func MatchInstance(instances []HostingInstance, hostname string) (HostingInstance, int, bool) {
	for i, instance := range instances {
		if instance.MatchesHostname(hostname) {
			return instance, i, true
		}
	}
	return HostingInstance{}, -1, false
}

// UnmatchedInstance builds the synthetic descriptor used for a hostname no
// configured instance claims. The public cloud keeps its own kind and endpoint;
// any other hostname is treated as an enterprise server.
func UnmatchedInstance(hostname, fallbackCredentialKey string) HostingInstance {
	host := strings.ToLower(strings.TrimSpace(hostname))
	kind := KindForHostname(host)
	return HostingInstance{
		Hostname:      host,
		Name:          UnmatchedInstancePrefix + host,
		Kind:          kind,
		APIEndpoint:   DefaultAPIEndpoint(kind, host),
		CredentialKey: fallbackCredentialKey,
		Unmatched:     true,
	}
}

// KindForHostname returns the kind a hostname has when nothing says otherwise.
func KindForHostname(hostname string) InstanceKind {
	if strings.ToLower(strings.TrimSpace(hostname)) == CloudHostname {
		return InstanceKindCloud
	}
	return InstanceKindServer
}

// DefaultAPIEndpoint returns the REST root for an instance of the given kind.
func DefaultAPIEndpoint(kind InstanceKind, hostname string) string {
	if kind == InstanceKindCloud {
		return CloudAPIEndpoint
	}
	return ServerAPIEndpoint(hostname)
}

// ServerAPIEndpoint returns the default REST root of an enterprise server.
func ServerAPIEndpoint(hostname string) string {
	return "https://" + hostname + "/api/v3/"
}

// Credential is a resolved secret for one credential key.
type Credential struct {
	Key   string
	Token string
}

// Present reports whether a usable secret was resolved.
func (c Credential) Present() bool {
	return c.Token != ""
}

// CredentialResolver maps a credential key to its secret value. It is the
// only place secrets enter the pipeline.
type CredentialResolver func(key string) (string, bool)

// Resolve looks up the key and returns a Credential; a missing or empty
// secret yields a Credential that is not Present.
func (r CredentialResolver) Resolve(key string) Credential {
	if r == nil || key == "" {
		return Credential{Key: key}
	}
	token, ok := r(key)
	if !ok {
		return Credential{Key: key}
	}
	return Credential{Key: key, Token: strings.TrimSpace(token)}
}
