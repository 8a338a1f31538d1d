//go:build unit

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInjectAppContext(t *testing.T) {
	t.Parallel()

	t.Run("should wire every subcommand through the container", func(t *testing.T) {
		t.Parallel()

		// given
		root := buildRootCommand()

		// when
		appContext := injectAppContext()
		addSubcommands(root, appContext)

		// then
		require.Len(t, appContext.GetControllers(), 3)
		names := make([]string, 0, len(root.Commands()))
		for _, sub := range root.Commands() {
			names = append(names, sub.Name())
		}
		assert.ElementsMatch(t, []string{"enable", "plan", "intake"}, names)

		enable, _, err := root.Find([]string{"enable"})
		require.NoError(t, err)
		assert.NotNil(t, enable.Flags().Lookup("dry-run"))
		assert.NotNil(t, enable.Flags().Lookup("ref"))
	})
}
