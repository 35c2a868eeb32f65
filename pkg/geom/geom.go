// Package geom holds the small value types shared by the layout, camera,
// interaction and rendering packages.
package geom

import "math"

// Vec is a point or displacement in a 2-D plane.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Add returns v + o.
func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Scale returns v multiplied by k.
func (v Vec) Scale(k float64) Vec { return Vec{v.X * k, v.Y * k} }

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between v and o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// Angle returns the direction of v in radians, in (-π, π].
func (v Vec) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Finite reports whether neither coordinate is NaN or infinite.
func (v Vec) Finite() bool { return finite(v.X) && finite(v.Y) }

// Near reports whether v and o differ by at most eps on each axis.
func (v Vec) Near(o Vec, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

// Polar returns the point at distance r from v in direction theta.
func (v Vec) Polar(r, theta float64) Vec {
	return Vec{v.X + math.Cos(theta)*r, v.Y + math.Sin(theta)*r}
}

// Rect is an axis-aligned box. The zero Rect is empty.
type Rect struct {
	Min, Max Vec
	valid    bool
}

// EmptyRect returns a rect that contains nothing; Extend grows it.
func EmptyRect() Rect { return Rect{} }

// Empty reports whether no point has been added to r.
func (r Rect) Empty() bool { return !r.valid }

// Extend returns r grown to contain p.
func (r Rect) Extend(p Vec) Rect {
	if !r.valid {
		return Rect{Min: p, Max: p, valid: true}
	}
	r.Min = Vec{math.Min(r.Min.X, p.X), math.Min(r.Min.Y, p.Y)}
	r.Max = Vec{math.Max(r.Max.X, p.X), math.Max(r.Max.Y, p.Y)}
	return r
}

// Width is the horizontal extent of r.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height is the vertical extent of r.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Center returns the midpoint of r.
func (r Rect) Center() Vec { return Vec{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2} }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Vec) bool {
	return r.valid && p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
