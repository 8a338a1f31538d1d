package config

// Validate exports validate for testing.
var Validate = validate //nolint:gochecknoglobals // test export

// ApplyDefaults exports applyDefaults for testing.
var ApplyDefaults = applyDefaults //nolint:gochecknoglobals // test export

// ResolveCredential exports resolveCredential for testing.
var ResolveCredential = resolveCredential //nolint:gochecknoglobals // test export
