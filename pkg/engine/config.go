package engine

import (
	"errors"
	"fmt"
)

// Config holds the constants of the force model.
type Config struct {
	Repulsion   float64 `json:"repulsion"`    // inverse-square charge between every node pair
	IdealLength float64 `json:"ideal_length"` // rest length of an edge spring
	Stiffness   float64 `json:"stiffness"`    // spring constant
	Gravity     float64 `json:"gravity"`      // pull towards the model origin
	Damping     float64 `json:"damping"`      // velocity retained per tick
	AlphaDecay  float64 `json:"alpha_decay"`  // alpha multiplier per tick
	AlphaMin    float64 `json:"alpha_min"`    // below this the simulation is settled
	DragAlpha   float64 `json:"drag_alpha"`   // alpha floor while a node is dragged
}

// DefaultConfig returns the force model tuned for graphs of tens to low
// hundreds of nodes.
func DefaultConfig() Config {
	return Config{
		Repulsion:   800,
		IdealLength: 120,
		Stiffness:   0.3,
		Gravity:     0.001,
		Damping:     0.6,
		AlphaDecay:  0.995,
		AlphaMin:    0.005,
		DragAlpha:   0.3,
	}
}

// Validate rejects configurations that would make the simulation diverge or
// never settle.
func (c Config) Validate() error {
	if c.Repulsion < 0 || c.Stiffness < 0 || c.Gravity < 0 {
		return errors.New("force constants must not be negative")
	}
	if c.IdealLength <= 0 {
		return fmt.Errorf("ideal length must be positive, got %v", c.IdealLength)
	}
	if c.Damping < 0 || c.Damping >= 1 {
		return fmt.Errorf("damping must be in [0, 1), got %v", c.Damping)
	}
	if c.AlphaDecay <= 0 || c.AlphaDecay >= 1 {
		return fmt.Errorf("alpha decay must be in (0, 1), got %v", c.AlphaDecay)
	}
	if c.AlphaMin <= 0 || c.AlphaMin >= 1 {
		return fmt.Errorf("alpha min must be in (0, 1), got %v", c.AlphaMin)
	}
	if c.DragAlpha < 0 || c.DragAlpha > 1 {
		return fmt.Errorf("drag alpha must be in [0, 1], got %v", c.DragAlpha)
	}
	return nil
}
