// Package camera maps model space onto the drawing surface.
//
// The transform is surface = origin + model*zoom with a uniform zoom that is
// always kept inside [MinZoom, MaxZoom].
package camera

import (
	"math"

	"github.com/rmax-ai/graphscope/pkg/geom"
)

const (
	MinZoom = 0.15
	MaxZoom = 5.0

	// FitMaxZoom caps the zoom chosen by FitToBounds so tiny graphs are not
	// blown up.
	FitMaxZoom = 2.0
	// FitPadding is the model-space margin FitToBounds keeps around the nodes.
	FitPadding = 80.0
)

// Camera is the affine model->surface transform.
type Camera struct {
	Origin geom.Vec `json:"origin"`
	Zoom   float64  `json:"zoom"`
}

// New returns a unit-zoom camera whose model origin sits at the centre of a
// w x h surface.
func New(w, h float64) Camera {
	return Camera{Origin: geom.V(w/2, h/2), Zoom: 1}
}

// ToSurface maps a model-space point onto the surface.
func (c Camera) ToSurface(v geom.Vec) geom.Vec {
	return c.Origin.Add(v.Scale(c.Zoom))
}

// ToModel maps a surface point back into model space.
func (c Camera) ToModel(v geom.Vec) geom.Vec {
	return v.Sub(c.Origin).Scale(1 / c.Zoom)
}

// Pan moves the origin by (dx, dy) surface units. Panning is unbounded.
func (c *Camera) Pan(dx, dy float64) {
	c.Origin = c.Origin.Add(geom.V(dx, dy))
}

// ZoomAt multiplies the zoom by factor, clamped to [MinZoom, MaxZoom],
// keeping the model point under the surface point p where it is.
// Non-finite or non-positive factors are ignored.
func (c *Camera) ZoomAt(p geom.Vec, factor float64) {
	if !validFactor(factor) {
		return
	}
	anchor := c.ToModel(p)
	c.Zoom = Clamp(c.Zoom * factor)
	c.Origin = p.Sub(anchor.Scale(c.Zoom))
}

// ZoomBy zooms about the centre of a w x h surface.
func (c *Camera) ZoomBy(factor, w, h float64) {
	c.ZoomAt(geom.V(w/2, h/2), factor)
}

// FitToBounds chooses the largest zoom not above FitMaxZoom at which r plus
// FitPadding on every side fits a w x h surface, and centres r. An empty r
// leaves the camera untouched.
func (c *Camera) FitToBounds(r geom.Rect, w, h float64) {
	if r.Empty() || w <= 0 || h <= 0 {
		return
	}
	gw := r.Width() + FitPadding*2
	gh := r.Height() + FitPadding*2
	zoom := Clamp(math.Min(math.Min(w/gw, h/gh), FitMaxZoom))
	c.Zoom = zoom
	c.Origin = geom.V(w/2, h/2).Sub(r.Center().Scale(zoom))
}

// Clamp limits z to [MinZoom, MaxZoom].
func Clamp(z float64) float64 {
	return math.Min(math.Max(z, MinZoom), MaxZoom)
}

func validFactor(f float64) bool {
	return f > 0 && !math.IsInf(f, 0) && !math.IsNaN(f)
}
