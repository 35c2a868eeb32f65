package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(DefaultConfig())
	b := Generate(DefaultConfig())
	assert.Equal(t, a, b)

	cfg := DefaultConfig()
	cfg.Seed = 99
	assert.NotEqual(t, a, Generate(cfg))
}

func TestGenerate_Shape(t *testing.T) {
	cfg := DefaultConfig()
	p := Generate(cfg)

	counts := map[graph.NodeType]int{}
	for _, n := range p.Nodes {
		counts[n.Label]++
	}
	assert.Equal(t, cfg.Teams, counts[graph.NodeTeam])
	assert.Equal(t, cfg.Teams*cfg.ProjectsPerTeam, counts[graph.NodeProject])
	assert.Equal(t, cfg.Teams*cfg.ProjectsPerTeam*cfg.TicketsPerProject, counts[graph.NodeTicket])
	assert.Equal(t, cfg.Teams*cfg.MembersPerTeam, counts[graph.NodeMember])
	assert.Equal(t, cfg.SystemUsers, counts[graph.NodeSystemUser])

	warnings, err := p.Validate()
	require.NoError(t, err)
	require.Len(t, warnings, 1, "only the external blocker dangles")
	assert.Contains(t, warnings[0], "BE-99")

	edgeTypes := map[graph.EdgeType]bool{}
	for _, e := range p.Edges {
		edgeTypes[e.Type] = true
	}
	for _, et := range graph.EdgeTypes() {
		assert.True(t, edgeTypes[et], "missing %s", et)
	}
}

func TestGenerate_TicketsNamedFromTitle(t *testing.T) {
	m := graph.NewModel(Generate(DefaultConfig()))
	i, ok := m.Lookup("FE-101")
	require.True(t, ok)
	n := m.Node(i)
	assert.Equal(t, n.Props["title"], n.Name)
}

func TestGenerate_NoSelfBlocking(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockedRatio = 1
	for _, e := range Generate(cfg).Edges {
		if e.Type == graph.EdgeBlockedBy {
			assert.NotEqual(t, e.Source, e.Target)
		}
	}
}

func TestGenerate_Empty(t *testing.T) {
	p := Generate(Config{})
	assert.Empty(t, p.Nodes)
	assert.Empty(t, p.Edges)
}

func TestPick(t *testing.T) {
	names := []string{"a", "b"}
	assert.Equal(t, "a", pick(names, 0))
	assert.Equal(t, "b", pick(names, 1))
	assert.Equal(t, "a 2", pick(names, 2))
}
