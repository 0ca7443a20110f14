package testutil

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertBefore checks that both libraries appear in order and that first
// comes strictly before second.
func AssertBefore(t *testing.T, order []string, first, second string) {
	t.Helper()

	i := slices.Index(order, first)
	j := slices.Index(order, second)
	require.NotEqual(t, -1, i, "%s missing from %v", first, order)
	require.NotEqual(t, -1, j, "%s missing from %v", second, order)
	require.Less(t, i, j, "expected %s before %s in %v", first, second, order)
}
