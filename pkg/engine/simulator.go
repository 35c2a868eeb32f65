package engine

import (
	"math"
	"time"

	"github.com/rmax-ai/graphscope/pkg/graph"
)

// goldenAngle spreads the escape directions of coincident node pairs.
const goldenAngle = 2.399963229728653

// Simulator advances a graph.Model one step at a time. Its temperature
// (alpha) starts at 1 on Reset, decays geometrically with every tick and
// scales all forces; once it drops below Config.AlphaMin the simulator is
// settled and Tick does nothing until Reset or Excite raise it again.
type Simulator struct {
	cfg   Config
	alpha float64
}

// NewSimulator creates a simulator at full temperature. An invalid config
// falls back to DefaultConfig.
func NewSimulator(cfg Config) *Simulator {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	s := &Simulator{cfg: cfg}
	s.Reset()
	return s
}

// Config returns the force constants in use.
func (s *Simulator) Config() Config { return s.cfg }

// Reset reheats the simulation to alpha 1. Called on every dataset load.
func (s *Simulator) Reset() {
	s.alpha = 1
	SimAlpha.Set(s.alpha)
}

// Alpha returns the current temperature.
func (s *Simulator) Alpha() float64 { return s.alpha }

// Settled reports whether the simulation has cooled below AlphaMin.
func (s *Simulator) Settled() bool { return s.alpha < s.cfg.AlphaMin }

// Excite raises alpha to at least DragAlpha so the graph reacts to a
// dragged node. It never lowers alpha.
func (s *Simulator) Excite() {
	if s.alpha < s.cfg.DragAlpha {
		s.alpha = s.cfg.DragAlpha
		SimAlpha.Set(s.alpha)
	}
}

// Tick runs one simulation step on m and decays alpha. It returns false
// without touching m when the simulation is settled.
func (s *Simulator) Tick(m *graph.Model) bool {
	if s.Settled() || m == nil {
		return false
	}
	start := time.Now()

	nodes := m.Nodes()
	k := s.alpha

	s.repulse(nodes, k)
	s.attract(nodes, m.Edges(), k)

	for i := range nodes {
		n := &nodes[i]
		if n.Pin != nil {
			continue
		}
		n.Vel.X += -n.Pos.X * s.cfg.Gravity * k
		n.Vel.Y += -n.Pos.Y * s.cfg.Gravity * k
	}

	for i := range nodes {
		n := &nodes[i]
		if n.Pin != nil {
			n.Pos = *n.Pin
			n.Vel.X, n.Vel.Y = 0, 0
			continue
		}
		n.Vel = n.Vel.Scale(s.cfg.Damping)
		n.Pos = n.Pos.Add(n.Vel)
	}

	s.alpha *= s.cfg.AlphaDecay
	SimAlpha.Set(s.alpha)
	SimTicksTotal.Inc()
	SimTickSeconds.Observe(time.Since(start).Seconds())
	return true
}

// repulse pushes every unordered pair apart with an inverse-square force.
// Distances are floored at 1.
func (s *Simulator) repulse(nodes []graph.Node, k float64) {
	for i := 0; i < len(nodes); i++ {
		a := &nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := &nodes[j]
			dx, dy := b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y
			dist := math.Sqrt(dx*dx + dy*dy)
			var ux, uy float64
			if dist == 0 {
				theta := float64(i*len(nodes)+j) * goldenAngle
				ux, uy = math.Cos(theta), math.Sin(theta)
			} else {
				ux, uy = dx/dist, dy/dist
			}
			if dist < 1 {
				dist = 1
			}
			force := s.cfg.Repulsion / (dist * dist) * k
			fx, fy := ux*force, uy*force
			if a.Pin == nil {
				a.Vel.X -= fx
				a.Vel.Y -= fy
			}
			if b.Pin == nil {
				b.Vel.X += fx
				b.Vel.Y += fy
			}
		}
	}
}

// attract pulls the endpoints of every resolved edge towards IdealLength.
func (s *Simulator) attract(nodes []graph.Node, edges []graph.Edge, k float64) {
	for _, e := range edges {
		if e.Dangling() {
			continue
		}
		a, b := &nodes[e.From], &nodes[e.To]
		dx, dy := b.Pos.X-a.Pos.X, b.Pos.Y-a.Pos.Y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist < 1 {
			dist = 1
		}
		force := (dist - s.cfg.IdealLength) / dist * k * s.cfg.Stiffness
		fx, fy := dx*force, dy*force
		if a.Pin == nil {
			a.Vel.X += fx
			a.Vel.Y += fy
		}
		if b.Pin == nil {
			b.Vel.X -= fx
			b.Vel.Y -= fy
		}
	}
}

// Run ticks m until the simulation settles or maxTicks steps have run, and
// returns the number of ticks executed.
func (s *Simulator) Run(m *graph.Model, maxTicks int) int {
	n := 0
	for n < maxTicks && s.Tick(m) {
		n++
	}
	return n
}
