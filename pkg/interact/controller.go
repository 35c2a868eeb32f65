// Package interact turns pointer input into camera moves, node drags and
// hover/selection changes.
package interact

import (
	"github.com/rmax-ai/graphscope/pkg/camera"
	"github.com/rmax-ai/graphscope/pkg/geom"
	"github.com/rmax-ai/graphscope/pkg/graph"
)

const (
	// HitSlop widens every node's hit radius, in model units.
	HitSlop = 4.0

	WheelInFactor  = 1.1
	WheelOutFactor = 0.9
)

// Exciter is told when a drag should reheat the layout.
type Exciter interface {
	Excite()
}

// Scene is what the controller operates on for one event.
type Scene struct {
	Model  *graph.Model
	Camera *camera.Camera
	Sim    Exciter
}

func (s Scene) excite() {
	if s.Sim != nil {
		s.Sim.Excite()
	}
}

// Controller holds the interaction state plus hover and selection. The zero
// value is ready to use.
type Controller struct {
	state    State
	hovered  string
	selected string
}

// NewController returns an idle controller.
func NewController() *Controller {
	return &Controller{state: Idle{}}
}

// State returns the current interaction mode.
func (c *Controller) State() State {
	if c.state == nil {
		return Idle{}
	}
	return c.state
}

// Reset drops any drag or pan along with hover and selection. Called when a
// new model replaces the old one.
func (c *Controller) Reset() {
	c.state = Idle{}
	c.hovered = ""
	c.selected = ""
}

// Hovered returns the id of the hovered node, or "" when none or when the id
// is not in m.
func (c *Controller) Hovered(m *graph.Model) string {
	return live(m, c.hovered)
}

// Selected returns the id of the selected node, or "" when none or when the
// id is not in m.
func (c *Controller) Selected(m *graph.Model) string {
	return live(m, c.selected)
}

// Cursor returns the affordance for the current state.
func (c *Controller) Cursor() Cursor {
	switch c.State().(type) {
	case DraggingNode:
		return CursorGrabbing
	case Panning:
		return CursorMove
	}
	if c.hovered != "" {
		return CursorPointer
	}
	return CursorDefault
}

// PointerDown starts a node drag when p hits a node, otherwise a pan. A drag
// still in progress (its release was never reported) is released first.
func (c *Controller) PointerDown(s Scene, p geom.Vec) {
	if s.Camera == nil {
		return
	}
	if st, ok := c.State().(DraggingNode); ok && st.belongsTo(s.Model) {
		s.Model.Unpin(st.Node)
	}
	if i, ok := HitTest(s.Model, *s.Camera, p); ok {
		n := s.Model.Node(i)
		s.Model.Pin(i, n.Pos)
		c.state = DraggingNode{Node: i, ID: n.ID, Start: p, model: s.Model}
		c.selected = n.ID
		c.hovered = n.ID
		s.excite()
		return
	}
	c.state = Panning{Start: p, Origin: s.Camera.Origin}
	c.selected = ""
}

// PointerMove updates hover when idle, pans, or moves the dragged node.
func (c *Controller) PointerMove(s Scene, p geom.Vec) {
	if s.Camera == nil {
		return
	}
	switch st := c.State().(type) {
	case Panning:
		s.Camera.Origin = st.Origin.Add(p.Sub(st.Start))
	case DraggingNode:
		if !st.belongsTo(s.Model) {
			c.state = Idle{}
			return
		}
		s.Model.Pin(st.Node, s.Camera.ToModel(p))
		s.excite()
	default:
		c.hovered = ""
		if i, ok := HitTest(s.Model, *s.Camera, p); ok {
			c.hovered = s.Model.Node(i).ID
		}
	}
}

// PointerUp ends a drag or pan. A dragged node is released to the simulator.
func (c *Controller) PointerUp(s Scene) {
	if st, ok := c.State().(DraggingNode); ok && st.belongsTo(s.Model) {
		s.Model.Unpin(st.Node)
	}
	c.state = Idle{}
}

// PointerLeave behaves like PointerUp and also clears hover.
func (c *Controller) PointerLeave(s Scene) {
	c.PointerUp(s)
	c.hovered = ""
}

// Wheel zooms about p: in for up, out otherwise. It works in every state.
func (c *Controller) Wheel(s Scene, p geom.Vec, up bool) {
	if s.Camera == nil {
		return
	}
	f := WheelOutFactor
	if up {
		f = WheelInFactor
	}
	s.Camera.ZoomAt(p, f)
}

// HitTest returns the topmost node under surface point p. Nodes drawn later
// are on top, so they are tested first.
func HitTest(m *graph.Model, cam camera.Camera, p geom.Vec) (int, bool) {
	if m == nil {
		return 0, false
	}
	q := cam.ToModel(p)
	nodes := m.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		n := &nodes[i]
		if q.Dist(n.Pos) <= n.Type.Radius()+HitSlop {
			return i, true
		}
	}
	return 0, false
}

func (d DraggingNode) belongsTo(m *graph.Model) bool {
	if m == nil || d.model != m || d.Node < 0 || d.Node >= m.Len() {
		return false
	}
	return m.Node(d.Node).ID == d.ID
}

func live(m *graph.Model, id string) string {
	if id == "" || m == nil {
		return ""
	}
	if _, ok := m.Lookup(id); !ok {
		return ""
	}
	return id
}
