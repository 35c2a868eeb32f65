// Package render turns a model and a camera into a display list, and
// rasterizes display lists onto a terminal grid.
package render

import (
	"github.com/rmax-ai/graphscope/pkg/camera"
	"github.com/rmax-ai/graphscope/pkg/geom"
	"github.com/rmax-ai/graphscope/pkg/graph"
)

const (
	ArrowLength    = 8.0 // surface units
	ArrowHalfAngle = 0.4 // radians
	ArrowGap       = 4.0 // model units between arrow tip and target rim
	RingWidth      = 6.0 // surface units
	LabelLift      = 5.0 // edge label offset above the midpoint
	NameGap        = 4.0 // gap between disk and name

	maxNameLen   = 18
	truncNameLen = 16
)

// Palette entries that do not depend on a type.
const (
	ColorSelectedStroke = "#ffffff"
	ColorHoveredStroke  = "#dddddd"
	ColorGlyph          = "#ffffff"
	ColorName           = "#e5e7eb"
	ColorEdgeLabel      = "#c8c8c8"
)

// EdgeGlyph is one edge in surface coordinates.
type EdgeGlyph struct {
	Source string
	Target string
	Type   graph.EdgeType

	From   geom.Vec
	To     geom.Vec
	Color  string
	Dashed bool
	Width  float64

	// Arrow is the filled arrowhead: tip first, then the two barbs.
	Arrow [3]geom.Vec

	Label   string
	LabelAt geom.Vec
}

// NodeGlyph is one node in surface coordinates.
type NodeGlyph struct {
	ID   string
	Type graph.NodeType

	Center geom.Vec
	Radius float64
	Color  string
	Glyph  string

	Name   string
	NameAt geom.Vec // top centre of the name

	Hovered  bool
	Selected bool
	// Ring is the outer radius of the highlight ring, 0 when none.
	Ring        float64
	Stroke      string
	StrokeWidth float64
}

// Frame is a complete display list. Edges are drawn before nodes; within
// each list, later entries are on top.
type Frame struct {
	Width  float64
	Height float64
	Zoom   float64
	Edges  []EdgeGlyph
	Nodes  []NodeGlyph
}

// Empty reports whether the frame has nothing to draw.
func (f Frame) Empty() bool { return len(f.Edges) == 0 && len(f.Nodes) == 0 }

// Render builds the frame for m as seen through cam on a w x h surface.
// hover and selected are node ids, "" for none. Dangling edges are left out.
func Render(m *graph.Model, cam camera.Camera, hover, selected string, w, h float64) Frame {
	f := Frame{Width: w, Height: h, Zoom: cam.Zoom}
	if m == nil {
		return f
	}
	nodes := m.Nodes()

	f.Edges = make([]EdgeGlyph, 0, m.EdgeCount()-m.DanglingCount())
	for _, e := range m.Edges() {
		if e.Dangling() {
			continue
		}
		a, b := &nodes[e.From], &nodes[e.To]
		st := e.Type.Style()
		from, to := cam.ToSurface(a.Pos), cam.ToSurface(b.Pos)
		f.Edges = append(f.Edges, EdgeGlyph{
			Source:  e.Source,
			Target:  e.Target,
			Type:    e.Type,
			From:    from,
			To:      to,
			Color:   st.Color,
			Dashed:  st.Dashed,
			Width:   st.Width,
			Arrow:   arrowhead(from, to, (b.Type.Radius()+ArrowGap)*cam.Zoom),
			Label:   e.Type.Label(),
			LabelAt: geom.V((from.X+to.X)/2, (from.Y+to.Y)/2-LabelLift),
		})
	}

	f.Nodes = make([]NodeGlyph, 0, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		st := n.Type.Style()
		c := cam.ToSurface(n.Pos)
		r := st.Radius * cam.Zoom
		g := NodeGlyph{
			ID:          n.ID,
			Type:        n.Type,
			Center:      c,
			Radius:      r,
			Color:       st.Color,
			Glyph:       st.Glyph,
			Name:        TruncateName(n.Name),
			NameAt:      geom.V(c.X, c.Y+r+NameGap),
			Hovered:     n.ID == hover && hover != "",
			Selected:    n.ID == selected && selected != "",
			Stroke:      st.Color + "88",
			StrokeWidth: 1,
		}
		switch {
		case g.Selected:
			g.Stroke, g.StrokeWidth = ColorSelectedStroke, 3
		case g.Hovered:
			g.Stroke, g.StrokeWidth = ColorHoveredStroke, 2
		}
		if g.Selected || g.Hovered {
			g.Ring = r + RingWidth
		}
		f.Nodes = append(f.Nodes, g)
	}
	return f
}

// TruncateName shortens names longer than 18 runes to 16 runes plus "…".
func TruncateName(s string) string {
	r := []rune(s)
	if len(r) <= maxNameLen {
		return s
	}
	return string(r[:truncNameLen]) + "…"
}

// arrowhead places the tip gap surface units before to, along from->to.
// Coincident endpoints fall back to pointing right.
func arrowhead(from, to geom.Vec, gap float64) [3]geom.Vec {
	angle := 0.0
	if d := to.Sub(from); d.Len() > 0 {
		angle = d.Angle()
	}
	tip := to.Polar(-gap, angle)
	return [3]geom.Vec{
		tip,
		tip.Polar(-ArrowLength, angle-ArrowHalfAngle),
		tip.Polar(-ArrowLength, angle+ArrowHalfAngle),
	}
}
