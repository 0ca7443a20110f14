package dag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
	assert.Equal(t, 0, g.Len())
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("core")
	assert.Len(t, g.nodes, 1)
	nodeCore, ok := g.nodes["core"]
	require.True(t, ok)
	assert.Equal(t, "core", nodeCore.id)
	assert.NotNil(t, nodeCore.deps)
	assert.NotNil(t, nodeCore.dependents)

	g.AddNode("core") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("SPI")
	assert.Equal(t, 2, g.Len())
	assert.True(t, g.HasNode("SPI"))
	assert.False(t, g.HasNode("Wire"))
	assert.Equal(t, []string{"SPI", "core"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("core")
		g.AddNode("SPI")

		err := g.AddEdge("core", "SPI") // SPI depends on core
		require.NoError(t, err)

		deps, err := g.Dependencies("SPI")
		require.NoError(t, err)
		assert.Equal(t, []string{"core"}, deps)

		dependents, err := g.Dependents("core")
		require.NoError(t, err)
		assert.Equal(t, []string{"SPI"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a")
		assert.ErrorContains(t, err, "self-referential edge")

		_, err = g.Dependencies("dne")
		assert.ErrorContains(t, err, "node not found")
		_, err = g.Dependents("dne")
		assert.ErrorContains(t, err, "node not found")
	})
}

func TestTopologicalSort(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		order, err := New().TopologicalSort()
		require.NoError(t, err)
		assert.Empty(t, order)
	})

	t.Run("dependencies come first", func(t *testing.T) {
		g := New()
		for _, id := range []string{"Ethernet", "SPI", "core"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("core", "Ethernet"))
		require.NoError(t, g.AddEdge("core", "SPI"))
		require.NoError(t, g.AddEdge("SPI", "Ethernet"))

		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"core", "SPI", "Ethernet"}, order)
	})

	t.Run("siblings are ordered lexically", func(t *testing.T) {
		g := New()
		for _, id := range []string{"c", "b", "a", "root"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("root", "c"))
		require.NoError(t, g.AddEdge("root", "b"))
		require.NoError(t, g.AddEdge("root", "a"))

		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "a", "b", "c"}, order)
	})

	t.Run("cycle reports every unplaced node", func(t *testing.T) {
		g := New()
		for _, id := range []string{"A", "B", "C", "core"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("core", "A"))
		require.NoError(t, g.AddEdge("core", "B"))
		require.NoError(t, g.AddEdge("A", "B"))
		require.NoError(t, g.AddEdge("B", "A"))
		require.NoError(t, g.AddEdge("A", "C")) // C depends on the cycle

		order, err := g.TopologicalSort()
		assert.Nil(t, order)
		var ce *CycleError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, []string{"A", "B", "C"}, ce.Nodes)
		assert.ErrorContains(t, err, "cycle detected among nodes: A, B, C")
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("b", "c"))
		require.NoError(t, g.AddEdge("a", "c")) // Transitive edge
		require.NoError(t, g.AddEdge("c", "d"))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		// Component 1 (valid)
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b"))

		// Component 2 (has a cycle)
		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y"))
		require.NoError(t, g.AddEdge("y", "z"))
		require.NoError(t, g.AddEdge("z", "y")) // Cycle

		err := g.DetectCycles()
		var ce *CycleError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, []string{"y", "z"}, ce.Nodes)
	})
}
