//go:build unit

package commands_test

import (
	"time"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

const testHostname = "github.example.com"

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) //nolint:gochecknoglobals // test fixture

func testInstance() entities.HostingInstance {
	return entities.HostingInstance{
		Hostname:      testHostname,
		Name:          "ghes-test",
		Kind:          entities.InstanceKindServer,
		APIEndpoint:   "https://github.example.com/api/v3/",
		CredentialKey: "GHES_TOKEN",
	}
}

func testSettings(secrets map[string]string) *entities.Settings {
	return &entities.Settings{
		Instances: []entities.HostingInstance{testInstance()},
		LicenseAuthority: entities.LicenseAuthority{
			Enterprise: "acme",
			Instance:   testInstance(),
		},
		Concurrency: 2,
		Credentials: func(key string) (string, bool) {
			value, ok := secrets[key]
			return value, ok
		},
	}
}

func repoRef(owner, name string) entities.RepositoryReference {
	return entities.RepositoryReference{Hostname: testHostname, Owner: owner, Name: name}
}
