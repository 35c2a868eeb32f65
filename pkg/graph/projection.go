package graph

// Projection holds the model currently on display. Every Swap bumps the
// generation so work started against an older model can detect that it is
// stale instead of mutating a discarded graph.
type Projection struct {
	model *Model
	gen   uint64
}

// NewProjection creates an empty projection at generation 0.
func NewProjection() *Projection {
	return &Projection{}
}

// Swap replaces the current model and returns the new generation. Passing
// nil clears the projection (for example after a failed reload).
func (p *Projection) Swap(m *Model) uint64 {
	p.model = m
	p.gen++
	return p.gen
}

// Current returns the model on display and its generation. The model is nil
// when nothing has been loaded.
func (p *Projection) Current() (*Model, uint64) {
	return p.model, p.gen
}

// IsCurrent reports whether gen is still the live generation.
func (p *Projection) IsCurrent(gen uint64) bool {
	return p.model != nil && gen == p.gen
}
