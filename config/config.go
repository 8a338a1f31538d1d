package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// Config is the top-level configuration for autoenable.
type Config struct {
	Instances             []InstanceConfig       `yaml:"instances"`
	LicenseAuthority      LicenseAuthorityConfig `yaml:"license_authority"`
	FallbackCredentialKey string                 `yaml:"fallback_credential_key"`
	Concurrency           int                    `yaml:"concurrency"`
	Defaults              DefaultsConfig         `yaml:"defaults"`
}

// InstanceConfig describes a single hosting instance.
type InstanceConfig struct {
	Hostname          string  `yaml:"hostname"`
	Name              string  `yaml:"name"`
	Kind              string  `yaml:"kind"`           // "cloud" or "server"
	APIEndpoint       string  `yaml:"api_endpoint"`   // defaults from kind and hostname
	CredentialKey     string  `yaml:"credential_key"` // environment variable holding the token
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// LicenseAuthorityConfig points at the instance owning enterprise seat accounting.
type LicenseAuthorityConfig struct {
	Enterprise string         `yaml:"enterprise"`
	Instance   InstanceConfig `yaml:"instance"`
}

// DefaultsConfig holds request defaults used when the caller leaves them unset.
type DefaultsConfig struct {
	MinHeadroom int      `yaml:"min_headroom"`
	Features    []string `yaml:"features"`
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment variables,
// applying defaults and validating the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	expanded := envVarPattern.ReplaceAllStringFunc(string(data), func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	var cfg Config
	if unmarshalErr := yaml.Unmarshal([]byte(expanded), &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	applyDefaults(&cfg)

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".autoenable.yaml",
		".autoenable.yml",
		"autoenable.yaml",
		"autoenable.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// Settings converts the configuration into the runtime view the commands
// use, binding the credential resolver once.
func (c *Config) Settings(resolver entities.CredentialResolver) *entities.Settings {
	instances := make([]entities.HostingInstance, 0, len(c.Instances))
	for _, instance := range c.Instances {
		instances = append(instances, instance.toEntity())
	}

	return &entities.Settings{
		Instances: instances,
		LicenseAuthority: entities.LicenseAuthority{
			Enterprise: c.LicenseAuthority.Enterprise,
			Instance:   c.LicenseAuthority.Instance.toEntity(),
		},
		FallbackCredentialKey: c.FallbackCredentialKey,
		Concurrency:           c.Concurrency,
		Credentials:           resolver,
	}
}

func (i InstanceConfig) toEntity() entities.HostingInstance {
	return entities.HostingInstance{
		Hostname:          strings.ToLower(i.Hostname),
		Name:              i.Name,
		Kind:              entities.InstanceKind(i.Kind),
		APIEndpoint:       i.APIEndpoint,
		CredentialKey:     i.CredentialKey,
		RequestsPerSecond: i.RequestsPerSecond,
	}
}

// DefaultFeatures parses the configured default feature names.
func (c *Config) DefaultFeatures() (entities.FeatureSelection, error) {
	kinds := make([]entities.FeatureKind, 0, len(c.Defaults.Features))
	for _, name := range c.Defaults.Features {
		kind, err := entities.ParseFeatureKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return entities.NewFeatureSelection(kinds...), nil
}

// applyDefaults fills in what can be derived. The cloud/server distinction
// is decided here once; nothing downstream compares hostnames to find it.
func applyDefaults(cfg *Config) {
	if cfg.FallbackCredentialKey == "" {
		cfg.FallbackCredentialKey = entities.DefaultFallbackCredentialKey
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = entities.DefaultConcurrency
	}

	for i := range cfg.Instances {
		applyInstanceDefaults(&cfg.Instances[i])
	}

	authority := &cfg.LicenseAuthority.Instance
	if authority.Hostname == "" && len(cfg.Instances) > 0 {
		*authority = cfg.Instances[0]
	}
	applyInstanceDefaults(authority)
}

func applyInstanceDefaults(instance *InstanceConfig) {
	instance.Hostname = strings.ToLower(strings.TrimSpace(instance.Hostname))
	if instance.Kind == "" {
		instance.Kind = string(entities.KindForHostname(instance.Hostname))
	}
	if instance.Name == "" {
		instance.Name = instance.Hostname
	}
	if instance.APIEndpoint == "" && instance.Hostname != "" {
		instance.APIEndpoint = entities.DefaultAPIEndpoint(entities.InstanceKind(instance.Kind), instance.Hostname)
	}
	if instance.CredentialKey == "" && instance.Kind == string(entities.InstanceKindCloud) {
		instance.CredentialKey = entities.DefaultFallbackCredentialKey
	}
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if len(cfg.Instances) == 0 {
		return errors.New("at least one instance must be configured")
	}

	seen := make(map[string]int, len(cfg.Instances))
	for i, instance := range cfg.Instances {
		if err := validateInstance(fmt.Sprintf("instances[%d]", i), instance); err != nil {
			return err
		}
		if previous, ok := seen[instance.Hostname]; ok {
			return fmt.Errorf("instances[%d].hostname %q duplicates instances[%d]", i, instance.Hostname, previous)
		}
		seen[instance.Hostname] = i
	}

	if cfg.LicenseAuthority.Enterprise == "" {
		return errors.New("license_authority.enterprise is required")
	}
	if err := validateInstance("license_authority.instance", cfg.LicenseAuthority.Instance); err != nil {
		return err
	}

	if cfg.Concurrency < 0 {
		return errors.New("concurrency must not be negative")
	}
	if cfg.Defaults.MinHeadroom < 0 {
		return errors.New("defaults.min_headroom must not be negative")
	}
	for i, name := range cfg.Defaults.Features {
		if _, err := entities.ParseFeatureKind(name); err != nil {
			return fmt.Errorf("defaults.features[%d]: %w", i, err)
		}
	}

	return nil
}

func validateInstance(path string, instance InstanceConfig) error {
	if instance.Hostname == "" {
		return fmt.Errorf("%s.hostname is required", path)
	}
	switch entities.InstanceKind(instance.Kind) {
	case entities.InstanceKindCloud, entities.InstanceKindServer:
	default:
		return fmt.Errorf("%s.kind %q must be %q or %q",
			path, instance.Kind, entities.InstanceKindCloud, entities.InstanceKindServer)
	}
	if instance.CredentialKey == "" {
		return fmt.Errorf("%s.credential_key is required", path)
	}
	if instance.RequestsPerSecond < 0 {
		return fmt.Errorf("%s.requests_per_second must not be negative", path)
	}
	return nil
}
