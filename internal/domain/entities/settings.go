package entities

const (
	// DefaultFallbackCredentialKey is used for hostnames that no configured
	// instance claims.
	DefaultFallbackCredentialKey = "GH_TOKEN"
	// DefaultConcurrency bounds parallel groups and parallel repositories.
	DefaultConcurrency = 4
)

// LicenseAuthority is the single instance that owns enterprise seat accounting.
type LicenseAuthority struct {
	Enterprise string
	Instance   HostingInstance
}

// Settings is the runtime view of the configuration the commands work with.
type Settings struct {
	Instances             []HostingInstance
	LicenseAuthority      LicenseAuthority
	FallbackCredentialKey string
	Concurrency           int
	Credentials           CredentialResolver
}

// EffectiveConcurrency returns a usable parallelism bound.
func (s *Settings) EffectiveConcurrency() int {
	if s == nil || s.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return s.Concurrency
}

// EffectiveFallbackCredentialKey returns the configured fallback key or the default.
func (s *Settings) EffectiveFallbackCredentialKey() string {
	if s == nil || s.FallbackCredentialKey == "" {
		return DefaultFallbackCredentialKey
	}
	return s.FallbackCredentialKey
}

// InstanceFor returns the configured instance claiming hostname, or a
// synthetic unmatched instance bound to the fallback credential key.
func (s *Settings) InstanceFor(hostname string) HostingInstance {
	if s != nil {
		if instance, _, ok := MatchInstance(s.Instances, hostname); ok {
			return instance
		}
	}
	return UnmatchedInstance(hostname, s.EffectiveFallbackCredentialKey())
}

// Credential resolves the secret of an instance.
func (s *Settings) Credential(instance HostingInstance) Credential {
	if s == nil {
		return Credential{Key: instance.CredentialKey}
	}
	return s.Credentials.Resolve(instance.CredentialKey)
}
