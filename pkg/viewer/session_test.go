package viewer

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmax-ai/graphscope/pkg/camera"
	"github.com/rmax-ai/graphscope/pkg/geom"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/interact"
)

func company() *graph.Payload {
	return &graph.Payload{
		Nodes: []graph.PayloadNode{
			{ID: "team-1", Label: graph.NodeTeam, Name: "Platform"},
			{ID: "proj-1", Label: graph.NodeProject, Name: "Apollo"},
			{ID: "tick-1", Label: graph.NodeTicket, Name: "Fix login"},
			{ID: "tick-2", Label: graph.NodeTicket, Name: "Add SSO"},
			{ID: "mem-1", Label: graph.NodeMember, Name: "Ada"},
		},
		Edges: []graph.PayloadEdge{
			{Source: "team-1", Target: "proj-1", Type: graph.EdgeHasProject},
			{Source: "proj-1", Target: "tick-1", Type: graph.EdgeHasTicket},
			{Source: "proj-1", Target: "tick-2", Type: graph.EdgeHasTicket},
			{Source: "mem-1", Target: "tick-1", Type: graph.EdgeAssignedTo},
			{Source: "mem-1", Target: "team-1", Type: graph.EdgeMemberOf},
			{Source: "tick-2", Target: "tick-1", Type: graph.EdgeBlockedBy},
			{Source: "tick-2", Target: "tick-404", Type: graph.EdgeBlockedBy},
		},
	}
}

func newSession() *Session {
	return NewSession(800, 600, Options{Rand: rand.New(rand.NewSource(1))})
}

func TestSession_LoadAndStats(t *testing.T) {
	s := newSession()
	assert.Nil(t, s.Model())
	assert.Equal(t, Stats{}, s.Stats())

	gen := s.Load(company())
	assert.Equal(t, uint64(1), gen)
	assert.True(t, s.IsCurrent(gen))

	st := s.Stats()
	assert.Equal(t, 5, st.Nodes)
	assert.Equal(t, 7, st.Edges, "dangling edges are counted")
	assert.Equal(t, []graph.NodeType{graph.NodeTeam, graph.NodeProject, graph.NodeTicket, graph.NodeMember}, st.Types)

	f := s.Frame()
	assert.Len(t, f.Nodes, 5)
	assert.Len(t, f.Edges, 6, "dangling edge is not drawn")
	for _, n := range s.Model().Nodes() {
		assert.True(t, n.Pos.Finite())
	}
}

func TestSession_StepUntilSettled(t *testing.T) {
	s := newSession()
	s.Load(company())
	steps := 0
	for s.Step() {
		steps++
		require.Less(t, steps, 5000)
	}
	assert.True(t, s.Settled())
	assert.False(t, s.Step())
	for _, n := range s.Model().Nodes() {
		assert.True(t, n.Pos.Finite(), n.ID)
	}
}

func TestSession_ReloadResetsEverything(t *testing.T) {
	s := newSession()
	first := s.Load(company())
	s.ZoomIn()

	n := s.Model().Node(0)
	p := s.Camera().ToSurface(n.Pos)
	s.PointerDown(p)
	_, ok := s.Selected()
	require.True(t, ok)
	require.Equal(t, interact.CursorGrabbing, s.Cursor())

	second := s.Load(company())
	assert.NotEqual(t, first, second)
	assert.False(t, s.IsCurrent(first))
	assert.Equal(t, camera.New(800, 600), s.Camera())
	assert.Equal(t, 1.0, s.Alpha())
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Equal(t, interact.CursorDefault, s.Cursor())
	for _, node := range s.Model().Nodes() {
		assert.False(t, node.Pinned())
	}
}

func TestSession_ErrorSuspends(t *testing.T) {
	s := newSession()
	s.Load(company())

	s.SetError(errors.New("connection refused"))
	assert.EqualError(t, s.Err(), "connection refused")
	assert.Nil(t, s.Model())
	assert.False(t, s.Step())
	assert.True(t, s.Frame().Empty())
	assert.Equal(t, Stats{}, s.Stats())

	s.PointerDown(geom.V(400, 300))
	s.PointerMove(geom.V(10, 10))
	s.PointerUp()

	s.Load(company())
	assert.NoError(t, s.Err())
	assert.Equal(t, 5, s.Stats().Nodes)

	s.SetError(nil)
	assert.NoError(t, s.Err(), "nil error is ignored")
}

func TestSession_ToolbarZoom(t *testing.T) {
	s := newSession()
	s.Load(company())
	s.ZoomIn()
	assert.InDelta(t, 1.3, s.Camera().Zoom, 1e-12)
	s.ZoomOut()
	assert.InDelta(t, 0.91, s.Camera().Zoom, 1e-12)
	assert.True(t, s.Camera().ToModel(geom.V(400, 300)).Near(geom.V(0, 0), 1e-9), "toolbar zoom keeps the centre")

	for i := 0; i < 50; i++ {
		s.ZoomIn()
	}
	assert.Equal(t, camera.MaxZoom, s.Camera().Zoom)
}

func TestSession_FitAll(t *testing.T) {
	s := newSession()
	s.FitAll()
	assert.Equal(t, camera.New(800, 600), s.Camera(), "no-op without a graph")

	s.Load(company())
	s.FitAll()
	for _, n := range s.Frame().Nodes {
		assert.True(t, n.Center.X >= 0 && n.Center.X <= 800, n.ID)
		assert.True(t, n.Center.Y >= 0 && n.Center.Y <= 600, n.ID)
	}
}

func TestSession_HoverAndSelectedDetails(t *testing.T) {
	s := newSession()
	s.Load(company())
	i, ok := s.Model().Lookup("tick-1")
	require.True(t, ok)
	p := s.Camera().ToSurface(s.Model().Node(i).Pos)

	s.PointerMove(p)
	h, ok := s.Hovered()
	require.True(t, ok)
	assert.Equal(t, "tick-1", h.ID)

	s.PointerDown(p)
	s.PointerUp()
	d, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, "Fix login", d.Name)
	assert.Len(t, d.Connections, 3)
	names := map[string]bool{}
	for _, c := range d.Connections {
		names[c.NeighborName] = true
	}
	assert.Equal(t, map[string]bool{"Apollo": true, "Ada": true, "Add SSO": true}, names)
}

func TestSession_Resize(t *testing.T) {
	s := newSession()
	s.Load(company())
	before := s.Camera()
	pos := s.Model().Node(0).Pos

	s.Resize(1024, 768)
	w, h := s.Size()
	assert.Equal(t, 1024.0, w)
	assert.Equal(t, 768.0, h)
	assert.Equal(t, before, s.Camera())
	assert.Equal(t, pos, s.Model().Node(0).Pos)
	assert.Equal(t, 1024.0, s.Frame().Width)
}

func TestSession_Wheel(t *testing.T) {
	s := newSession()
	s.Wheel(geom.V(100, 100), true)
	assert.InDelta(t, 1.1, s.Camera().Zoom, 1e-12)
	s.Wheel(geom.V(100, 100), false)
	assert.InDelta(t, 0.99, s.Camera().Zoom, 1e-12)
}
