package engine

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/geom"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/layout"
)

func threeNodeModel() *graph.Model {
	m := graph.NewModel(&graph.Payload{
		Nodes: []graph.PayloadNode{
			{ID: "A", Label: graph.NodeTeam, Name: "Team A"},
			{ID: "B", Label: graph.NodeProject, Name: "Project B"},
			{ID: "C", Label: graph.NodeTicket, Name: "Ticket C"},
		},
		Edges: []graph.PayloadEdge{
			{Source: "A", Target: "B", Type: graph.EdgeHasProject},
			{Source: "B", Target: "C", Type: graph.EdgeHasTicket},
		},
	})
	layout.Seed(m, 900, 600, rand.New(rand.NewSource(3)))
	return m
}

func positions(m *graph.Model) []geom.Vec {
	out := make([]geom.Vec, m.Len())
	for i, n := range m.Nodes() {
		out[i] = n.Pos
	}
	return out
}

func TestSimulator_AlphaLifecycle(t *testing.T) {
	s := NewSimulator(DefaultConfig())
	m := threeNodeModel()

	assert.Equal(t, 1.0, s.Alpha())
	require.True(t, s.Tick(m))
	assert.InDelta(t, 0.995, s.Alpha(), 1e-12)

	ticks := s.Run(m, 5000)
	assert.True(t, s.Settled())
	assert.Less(t, ticks, 5000)
	assert.Less(t, s.Alpha(), DefaultConfig().AlphaMin)

	s.Excite()
	assert.Equal(t, DefaultConfig().DragAlpha, s.Alpha())
	assert.False(t, s.Settled())

	s.Reset()
	s.Excite()
	assert.Equal(t, 1.0, s.Alpha(), "excite must not lower alpha")
}

func TestSimulator_SettledIsIdempotent(t *testing.T) {
	s := NewSimulator(DefaultConfig())
	m := threeNodeModel()
	s.Run(m, 5000)
	require.True(t, s.Settled())

	before := positions(m)
	for i := 0; i < 50; i++ {
		assert.False(t, s.Tick(m))
	}
	assert.Equal(t, before, positions(m))
}

func TestSimulator_PinOverridesForces(t *testing.T) {
	s := NewSimulator(DefaultConfig())
	m := threeNodeModel()
	i, _ := m.Lookup("C")

	target := geom.V(-333.25, 17.5)
	m.Pin(i, target)
	m.Node(i).Vel = geom.V(50, 50)

	for n := 0; n < 20; n++ {
		require.True(t, s.Tick(m))
		assert.Equal(t, target, m.Node(i).Pos)
		assert.Equal(t, geom.Vec{}, m.Node(i).Vel)
	}
}

func TestSimulator_SpringPullsTowardIdealLength(t *testing.T) {
	m := graph.NewModel(&graph.Payload{
		Nodes: []graph.PayloadNode{{ID: "a"}, {ID: "b"}},
		Edges: []graph.PayloadEdge{{Source: "a", Target: "b"}},
	})
	m.Node(0).Pos = geom.V(-300, 0)
	m.Node(1).Pos = geom.V(300, 0)

	s := NewSimulator(DefaultConfig())
	s.Tick(m)
	assert.Less(t, m.Node(0).Pos.Dist(m.Node(1).Pos), 600.0)
}

func TestSimulator_RepulsionSeparatesCoincidentNodes(t *testing.T) {
	m := graph.NewModel(&graph.Payload{
		Nodes: []graph.PayloadNode{{ID: "a"}, {ID: "b"}, {ID: "c"}},
	})

	s := NewSimulator(DefaultConfig())
	s.Tick(m)

	nodes := m.Nodes()
	for i := range nodes {
		assert.True(t, nodes[i].Pos.Finite())
		for j := i + 1; j < len(nodes); j++ {
			assert.Greater(t, nodes[i].Pos.Dist(nodes[j].Pos), 0.0, "nodes %d and %d still coincide", i, j)
		}
	}
}

func TestSimulator_DegenerateGraphs(t *testing.T) {
	s := NewSimulator(DefaultConfig())

	empty := graph.NewModel(&graph.Payload{})
	assert.True(t, s.Tick(empty))

	single := graph.NewModel(&graph.Payload{Nodes: []graph.PayloadNode{{ID: "x"}}})
	single.Node(0).Pos = geom.V(100, 100)
	s.Run(single, 200)
	assert.True(t, single.Node(0).Pos.Finite())
	assert.Less(t, single.Node(0).Pos.Len(), math.Hypot(100, 100), "gravity pulls towards origin")

	assert.False(t, s.Tick(nil))
}

func TestSimulator_SkipsDanglingEdges(t *testing.T) {
	m := graph.NewModel(&graph.Payload{
		Nodes: []graph.PayloadNode{{ID: "a"}},
		Edges: []graph.PayloadEdge{{Source: "a", Target: "missing"}, {Source: "ghost", Target: "a"}},
	})
	s := NewSimulator(DefaultConfig())
	assert.NotPanics(t, func() { s.Run(m, 100) })
	assert.True(t, m.Node(0).Pos.Finite())
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative repulsion", func(c *Config) { c.Repulsion = -1 }},
		{"zero ideal length", func(c *Config) { c.IdealLength = 0 }},
		{"damping of one", func(c *Config) { c.Damping = 1 }},
		{"alpha decay of one", func(c *Config) { c.AlphaDecay = 1 }},
		{"zero alpha min", func(c *Config) { c.AlphaMin = 0 }},
		{"drag alpha above one", func(c *Config) { c.DragAlpha = 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	bad := DefaultConfig()
	bad.Damping = 5
	assert.Equal(t, DefaultConfig(), NewSimulator(bad).Config())
}
