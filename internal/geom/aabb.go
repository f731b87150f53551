package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB returns the box spanning the two corner points, whatever their order.
func NewAABB(a, b mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(a.X(), b.X()), math.Min(a.Y(), b.Y()), math.Min(a.Z(), b.Z())},
		Max: mgl64.Vec3{math.Max(a.X(), b.X()), math.Max(a.Y(), b.Y()), math.Max(a.Z(), b.Z())},
	}
}

// AABBFromPoints returns the smallest box containing all points.
// An empty point set yields a degenerate box at the origin.
func AABBFromPoints(points []mgl64.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box = box.ExtendPoint(p)
	}
	return box
}

// Overlaps reports whether the two boxes intersect. Touching boxes overlap.
func (b AABB) Overlaps(o AABB) bool {
	if b.Max.X() < o.Min.X() || b.Min.X() > o.Max.X() {
		return false
	}
	if b.Max.Y() < o.Min.Y() || b.Min.Y() > o.Max.Y() {
		return false
	}
	if b.Max.Z() < o.Min.Z() || b.Min.Z() > o.Max.Z() {
		return false
	}
	return true
}

// Contains reports whether the point lies inside or on the box.
func (b AABB) Contains(p mgl64.Vec3) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y() &&
		p.Z() >= b.Min.Z() && p.Z() <= b.Max.Z()
}

// Expanded grows the box by margin on every side. Negative margins shrink it.
func (b AABB) Expanded(margin float64) AABB {
	m := mgl64.Vec3{margin, margin, margin}
	return AABB{Min: b.Min.Sub(m), Max: b.Max.Add(m)}
}

// Swept extends the box to cover a displacement over one step, so that fast
// movers cannot tunnel past the broad phase.
func (b AABB) Swept(displacement mgl64.Vec3) AABB {
	moved := AABB{Min: b.Min.Add(displacement), Max: b.Max.Add(displacement)}
	return b.Union(moved)
}

// Union returns the smallest box containing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min.X(), o.Min.X()), math.Min(b.Min.Y(), o.Min.Y()), math.Min(b.Min.Z(), o.Min.Z())},
		Max: mgl64.Vec3{math.Max(b.Max.X(), o.Max.X()), math.Max(b.Max.Y(), o.Max.Y()), math.Max(b.Max.Z(), o.Max.Z())},
	}
}

// ExtendPoint grows the box to include p.
func (b AABB) ExtendPoint(p mgl64.Vec3) AABB {
	return AABB{
		Min: mgl64.Vec3{math.Min(b.Min.X(), p.X()), math.Min(b.Min.Y(), p.Y()), math.Min(b.Min.Z(), p.Z())},
		Max: mgl64.Vec3{math.Max(b.Max.X(), p.X()), math.Max(b.Max.Y(), p.Y()), math.Max(b.Max.Z(), p.Z())},
	}
}

// Center returns the box midpoint.
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the half-size of the box along each axis.
func (b AABB) Extents() mgl64.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// LongestSide returns the largest edge length of the box.
func (b AABB) LongestSide() float64 {
	size := b.Max.Sub(b.Min)
	return math.Max(size.X(), math.Max(size.Y(), size.Z()))
}
