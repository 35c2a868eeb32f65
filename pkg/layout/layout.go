// Package layout computes the starting positions a force simulation runs from.
package layout

import (
	"math"
	"math/rand"
	"time"

	"github.com/rmax-ai/graphscope/pkg/geom"
	"github.com/rmax-ai/graphscope/pkg/graph"
)

const (
	// ClusterFraction is the distance of each type cluster from the canvas
	// centre, as a fraction of min(width, height).
	ClusterFraction = 0.25
	// MinSpread and MaxSpread bound the random radius of a cluster's ring.
	MinSpread = 40.0
	MaxSpread = 100.0
)

// Seed places every node of m near the other nodes of its type. Type groups
// sit evenly on a circle around the canvas centre and each group's members
// are spread evenly on a small ring with a random radius, so no two nodes
// start at the same point. Velocities and pins are cleared.
//
// A nil rng uses a time-seeded source.
func Seed(m *graph.Model, width, height float64, rng *rand.Rand) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		width = 0
	}
	if height <= 0 || math.IsNaN(height) || math.IsInf(height, 0) {
		height = 0
	}

	groups := Groups(m)
	for gi, members := range groups {
		groupCenter := ClusterCenter(gi, len(groups), width, height)
		for ni, idx := range members {
			a2 := float64(ni) / float64(len(members)) * 2 * math.Pi
			r2 := MinSpread + rng.Float64()*(MaxSpread-MinSpread)
			n := m.Node(idx)
			n.Pos = groupCenter.Polar(r2, a2)
			n.Vel = geom.Vec{}
			n.Pin = nil
		}
	}
}

// Groups returns node handles grouped by type, groups ordered by the first
// appearance of their type.
func Groups(m *graph.Model) [][]int {
	order := make(map[graph.NodeType]int)
	var groups [][]int
	for i, n := range m.Nodes() {
		g, ok := order[n.Type]
		if !ok {
			g = len(groups)
			order[n.Type] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// ClusterCenter returns where Seed puts the centre of group gi out of n.
func ClusterCenter(gi, n int, width, height float64) geom.Vec {
	angle := float64(gi) / float64(n) * 2 * math.Pi
	return geom.V(width/2, height/2).Polar(math.Min(width, height)*ClusterFraction, angle)
}
