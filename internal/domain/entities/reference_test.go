//go:build unit

package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

func TestParseReference(t *testing.T) {
	t.Parallel()

	t.Run("should classify owner and repository URL as a repository", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "https://github.example.com/platform/payments-api"

		// when
		parsed, err := entities.ParseReference(raw)

		// then
		require.NoError(t, err)
		require.NotNil(t, parsed.Repository)
		assert.False(t, parsed.IsContainer())
		assert.Equal(t, entities.RepositoryReference{
			Hostname: "github.example.com",
			Owner:    "platform",
			Name:     "payments-api",
		}, *parsed.Repository)
	})

	t.Run("should classify owner-only URL as a container", func(t *testing.T) {
		t.Parallel()

		// given
		raw := "https://github.com/platform/"

		// when
		parsed, err := entities.ParseReference(raw)

		// then
		require.NoError(t, err)
		require.NotNil(t, parsed.Container)
		assert.True(t, parsed.IsContainer())
		assert.Equal(t, "platform", parsed.Container.Owner)
		assert.Equal(t, "github.com", parsed.Container.Hostname)
	})

	t.Run("should strip the .git suffix and ignore extra segments", func(t *testing.T) {
		t.Parallel()

		// given
		inputs := []string{
			"https://github.com/platform/payments-api.git",
			"https://github.com/platform/payments-api/tree/main/src",
			"github.com/platform/payments-api",
			"  https://github.com/platform/payments-api  ",
		}

		for _, raw := range inputs {
			// when
			parsed, err := entities.ParseReference(raw)

			// then
			require.NoError(t, err, raw)
			require.NotNil(t, parsed.Repository, raw)
			assert.Equal(t, "payments-api", parsed.Repository.Name, raw)
		}
	})

	t.Run("should reject inputs without a usable owner", func(t *testing.T) {
		t.Parallel()

		// given
		inputs := []string{
			"",
			"   ",
			"https://github.com",
			"https://github.com/",
			"ftp://github.com/platform/repo",
			"https:///platform/repo",
			"https://github.com/platform/.git",
		}

		for _, raw := range inputs {
			// when
			_, err := entities.ParseReference(raw)

			// then
			require.ErrorIs(t, err, entities.ErrMalformedReference, raw)
		}
	})
}

func TestRepositoryReferenceKey(t *testing.T) {
	t.Parallel()

	t.Run("should treat hostnames case-insensitively", func(t *testing.T) {
		t.Parallel()

		// given
		lower := entities.RepositoryReference{Hostname: "github.com", Owner: "org", Name: "repo"}
		upper := entities.RepositoryReference{Hostname: "GitHub.COM", Owner: "org", Name: "repo"}

		// when
		equal := lower.Equal(upper)

		// then
		assert.True(t, equal)
		assert.Equal(t, "github.com/org/repo", upper.Key())
		assert.Equal(t, "https://GitHub.COM/org/repo", upper.String())
	})
}
