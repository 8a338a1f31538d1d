package config

import (
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

// EnvCredentialResolver resolves a credential key from the environment. If
// the value is a path to an existing file, the token is read from the file.
func EnvCredentialResolver() entities.CredentialResolver {
	return func(key string) (string, bool) {
		return resolveCredential(os.LookupEnv, key)
	}
}

// StaticCredentialResolver resolves keys from a fixed map, falling back to
// the next resolver for unknown or blank keys. Values naming a file are read
// like environment values. Backs the CLI --token overrides.
func StaticCredentialResolver(values map[string]string, next entities.CredentialResolver) entities.CredentialResolver {
	lookup := func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
	return func(key string) (string, bool) {
		if value, ok := resolveCredential(lookup, key); ok {
			return value, true
		}
		if next == nil {
			return "", false
		}
		return next(key)
	}
}

func resolveCredential(lookup func(string) (string, bool), key string) (string, bool) {
	raw, ok := lookup(key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}

	// If the value is a path to an existing file, read the token from it
	if info, statErr := os.Stat(value); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(value)
		if readErr != nil {
			logger.Warnf("Failed to read token file for %q: %v", key, readErr)
			return "", false
		}
		token := strings.TrimSpace(string(data))
		return token, token != ""
	}

	return value, true
}
