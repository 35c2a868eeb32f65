// Package viewer ties the model, layout, simulator, camera, interaction
// controller and renderer into one session that a front end drives.
package viewer

import (
	"io"
	"log/slog"
	"math/rand"

	"github.com/rmax-ai/graphscope/pkg/camera"
	"github.com/rmax-ai/graphscope/pkg/engine"
	"github.com/rmax-ai/graphscope/pkg/geom"
	"github.com/rmax-ai/graphscope/pkg/graph"
	"github.com/rmax-ai/graphscope/pkg/interact"
	"github.com/rmax-ai/graphscope/pkg/layout"
	"github.com/rmax-ai/graphscope/pkg/render"
)

// Toolbar zoom factors, applied about the canvas centre.
const (
	ZoomInFactor  = 1.3
	ZoomOutFactor = 0.7
)

// Options configures a Session. The zero value is usable.
type Options struct {
	Sim    engine.Config
	Logger *slog.Logger
	// Rand seeds initial layouts. Nil means time-seeded.
	Rand *rand.Rand
}

// Stats summarises the loaded graph.
type Stats struct {
	Nodes int              `json:"nodes"`
	Edges int              `json:"edges"`
	Types []graph.NodeType `json:"types"`
}

// Session is the state of one graph view. It is not safe for concurrent
// use; a single owner (the UI update loop or a Loop) drives it.
type Session struct {
	log  *slog.Logger
	rng  *rand.Rand
	proj *graph.Projection
	sim  *engine.Simulator
	cam  camera.Camera
	ctl  *interact.Controller
	w, h float64
	err  error
}

// NewSession creates an empty session for a w x h surface.
func NewSession(w, h float64, opts Options) *Session {
	cfg := opts.Sim
	if cfg == (engine.Config{}) {
		cfg = engine.DefaultConfig()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		log:  log.With("component", "viewer"),
		rng:  opts.Rand,
		proj: graph.NewProjection(),
		sim:  engine.NewSimulator(cfg),
		cam:  camera.New(w, h),
		ctl:  interact.NewController(),
		w:    w,
		h:    h,
	}
}

// Load replaces the displayed graph with p and returns the new generation.
// Positions are reseeded, the camera and simulator reset, and any drag,
// hover or selection of the previous graph dropped.
func (s *Session) Load(p *graph.Payload) uint64 {
	m := graph.NewModel(p)
	layout.Seed(m, s.w, s.h, s.rng)
	gen := s.proj.Swap(m)

	s.err = nil
	s.sim.Reset()
	s.cam = camera.New(s.w, s.h)
	s.ctl.Reset()

	engine.LoadsTotal.WithLabelValues("ok").Inc()
	engine.GraphSize.WithLabelValues("nodes").Set(float64(m.Len()))
	engine.GraphSize.WithLabelValues("edges").Set(float64(m.EdgeCount()))
	engine.GraphSize.WithLabelValues("dangling").Set(float64(m.DanglingCount()))

	s.log.Info("graph loaded", "gen", gen, "nodes", m.Len(), "edges", m.EdgeCount())
	if m.DanglingCount() > 0 {
		s.log.Debug("dangling edges dropped", "gen", gen, "dangling", m.DanglingCount())
	}
	return gen
}

// SetError records a failed fetch. The session drops its model, so stepping
// and rendering stop until the next successful Load.
func (s *Session) SetError(err error) {
	if err == nil {
		return
	}
	s.err = err
	gen := s.proj.Swap(nil)
	s.ctl.Reset()
	engine.LoadsTotal.WithLabelValues("error").Inc()
	s.log.Warn("graph load failed", "gen", gen, "err", err)
}

// Err returns the last load error, nil after a successful Load.
func (s *Session) Err() error { return s.err }

// Generation returns the generation of the graph on display.
func (s *Session) Generation() uint64 {
	_, gen := s.proj.Current()
	return gen
}

// IsCurrent reports whether gen still identifies the graph on display.
func (s *Session) IsCurrent(gen uint64) bool { return s.proj.IsCurrent(gen) }

// Model returns the graph on display, nil when none.
func (s *Session) Model() *graph.Model {
	m, _ := s.proj.Current()
	return m
}

// Camera returns a copy of the current camera.
func (s *Session) Camera() camera.Camera { return s.cam }

// Size returns the surface size.
func (s *Session) Size() (w, h float64) { return s.w, s.h }

// Settled reports whether the layout has cooled down.
func (s *Session) Settled() bool { return s.sim.Settled() }

// Alpha returns the simulator temperature.
func (s *Session) Alpha() float64 { return s.sim.Alpha() }

// Step advances the simulation by one tick. It reports whether anything
// moved.
func (s *Session) Step() bool {
	m := s.Model()
	if m == nil {
		return false
	}
	return s.sim.Tick(m)
}

// Frame renders the current state. A session without a model renders an
// empty frame.
func (s *Session) Frame() render.Frame {
	m := s.Model()
	if m == nil {
		return render.Frame{Width: s.w, Height: s.h, Zoom: s.cam.Zoom}
	}
	engine.FramesTotal.Inc()
	return render.Render(m, s.cam, s.ctl.Hovered(m), s.ctl.Selected(m), s.w, s.h)
}

// ZoomIn zooms about the canvas centre.
func (s *Session) ZoomIn() { s.cam.ZoomBy(ZoomInFactor, s.w, s.h) }

// ZoomOut zooms out about the canvas centre.
func (s *Session) ZoomOut() { s.cam.ZoomBy(ZoomOutFactor, s.w, s.h) }

// FitAll frames every node. It does nothing without nodes.
func (s *Session) FitAll() {
	if m := s.Model(); m != nil {
		s.cam.FitToBounds(m.Bounds(), s.w, s.h)
	}
}

// Resize changes the surface size only; camera and layout are kept.
func (s *Session) Resize(w, h float64) {
	s.w, s.h = w, h
}

func (s *Session) scene() interact.Scene {
	return interact.Scene{Model: s.Model(), Camera: &s.cam, Sim: s.sim}
}

// PointerDown forwards a press at surface point p.
func (s *Session) PointerDown(p geom.Vec) {
	if s.Model() == nil {
		return
	}
	s.ctl.PointerDown(s.scene(), p)
}

// PointerMove forwards pointer motion.
func (s *Session) PointerMove(p geom.Vec) {
	if s.Model() == nil {
		return
	}
	s.ctl.PointerMove(s.scene(), p)
}

// PointerUp forwards a release.
func (s *Session) PointerUp() { s.ctl.PointerUp(s.scene()) }

// PointerLeave forwards the pointer leaving the surface.
func (s *Session) PointerLeave() { s.ctl.PointerLeave(s.scene()) }

// Wheel zooms about p, in when up is true.
func (s *Session) Wheel(p geom.Vec, up bool) { s.ctl.Wheel(s.scene(), p, up) }

// Cursor returns the pointer affordance.
func (s *Session) Cursor() interact.Cursor { return s.ctl.Cursor() }

// Stats returns node and edge counts and the node types present. Edge counts
// include dangling edges.
func (s *Session) Stats() Stats {
	m := s.Model()
	if m == nil {
		return Stats{}
	}
	return Stats{Nodes: m.Len(), Edges: m.EdgeCount(), Types: m.Types()}
}

// Hovered returns the details of the hovered node.
func (s *Session) Hovered() (graph.Details, bool) {
	m := s.Model()
	return details(m, s.ctl.Hovered(m))
}

// Selected returns the details of the selected node.
func (s *Session) Selected() (graph.Details, bool) {
	m := s.Model()
	return details(m, s.ctl.Selected(m))
}

func details(m *graph.Model, id string) (graph.Details, bool) {
	if m == nil || id == "" {
		return graph.Details{}, false
	}
	return m.Details(id)
}
