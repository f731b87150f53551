package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is the closed set of convex collision shapes. Every shape answers
// support queries in its local frame; world-space queries go through
// SupportWorld and Bounds, which apply a body transform.
//
// The variant set is fixed {Sphere, Box, Capsule, ConvexHull, TriangleMesh};
// the unexported method keeps it closed.
type Shape interface {
	// Support returns the local-space point of the shape furthest along dir.
	// dir need not be normalized. A near-zero dir returns an arbitrary
	// boundary point rather than propagating garbage.
	Support(dir mgl64.Vec3) mgl64.Vec3

	// Inertia returns the local-frame inertia tensor for the given mass.
	Inertia(mass float64) mgl64.Mat3

	sealed()
}

// SupportWorld evaluates a shape's support point in world space for a body at
// position pos with orientation orient.
func SupportWorld(s Shape, pos mgl64.Vec3, orient mgl64.Quat, dir mgl64.Vec3) mgl64.Vec3 {
	localDir := orient.Inverse().Rotate(dir)
	local := s.Support(localDir)
	return pos.Add(orient.Rotate(local))
}

// Bounds computes the world-space AABB of a shape under the given transform by
// probing the support function along the six axis directions. Exact for every
// convex variant.
func Bounds(s Shape, pos mgl64.Vec3, orient mgl64.Quat) AABB {
	axes := [3]mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	var lo, hi mgl64.Vec3
	for i, axis := range axes {
		hi[i] = SupportWorld(s, pos, orient, axis)[i]
		lo[i] = SupportWorld(s, pos, orient, axis.Mul(-1))[i]
	}
	return AABB{Min: lo, Max: hi}
}

// Sphere is a sphere centred on the body origin.
type Sphere struct {
	Radius float64
}

func (s Sphere) Support(dir mgl64.Vec3) mgl64.Vec3 {
	n := dir.Len()
	if n < 1e-12 {
		return mgl64.Vec3{s.Radius, 0, 0}
	}
	return dir.Mul(s.Radius / n)
}

func (s Sphere) Inertia(mass float64) mgl64.Mat3 {
	i := 2.0 / 5.0 * mass * s.Radius * s.Radius
	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

func (Sphere) sealed() {}

// Box is an axis-aligned box in the body frame, described by half extents.
type Box struct {
	HalfExtents mgl64.Vec3
}

func (b Box) Support(dir mgl64.Vec3) mgl64.Vec3 {
	sign := func(v, extent float64) float64 {
		if v < 0 {
			return -extent
		}
		return extent
	}
	return mgl64.Vec3{
		sign(dir.X(), b.HalfExtents.X()),
		sign(dir.Y(), b.HalfExtents.Y()),
		sign(dir.Z(), b.HalfExtents.Z()),
	}
}

func (b Box) Inertia(mass float64) mgl64.Mat3 {
	w := 2 * b.HalfExtents.X()
	h := 2 * b.HalfExtents.Y()
	d := 2 * b.HalfExtents.Z()
	k := mass / 12.0
	return mgl64.Diag3(mgl64.Vec3{
		k * (h*h + d*d),
		k * (w*w + d*d),
		k * (w*w + h*h),
	})
}

func (Box) sealed() {}

// Capsule is a sphere-swept segment along the body Z axis: half-height
// measures the cylindrical section, the caps add Radius at both ends.
type Capsule struct {
	HalfHeight float64
	Radius     float64
}

func (c Capsule) Support(dir mgl64.Vec3) mgl64.Vec3 {
	end := mgl64.Vec3{0, 0, c.HalfHeight}
	if dir.Z() < 0 {
		end = mgl64.Vec3{0, 0, -c.HalfHeight}
	}
	return end.Add(Sphere{Radius: c.Radius}.Support(dir))
}

func (c Capsule) Inertia(mass float64) mgl64.Mat3 {
	// Cylinder approximation; adequate for the wheel and bumper proxies
	// this shape is used for.
	h := 2 * c.HalfHeight
	r := c.Radius
	ixy := mass * (3*r*r + h*h) / 12.0
	iz := mass * r * r / 2.0
	return mgl64.Diag3(mgl64.Vec3{ixy, ixy, iz})
}

func (Capsule) sealed() {}

// ConvexHull is the convex hull of a local-space point cloud. Points are
// assumed to already be hull vertices; interior points only cost time.
type ConvexHull struct {
	Points []mgl64.Vec3
}

func (h ConvexHull) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return supportOverPoints(h.Points, dir)
}

func (h ConvexHull) Inertia(mass float64) mgl64.Mat3 {
	return pointCloudInertia(h.Points, mass)
}

func (ConvexHull) sealed() {}

// TriangleMesh carries an indexed triangle surface. Collision queries treat
// it as the convex hull of its vertices; the index list is retained for the
// deformation pass, which needs real surface connectivity.
type TriangleMesh struct {
	Vertices []mgl64.Vec3
	Indices  [][3]int
}

func (m TriangleMesh) Support(dir mgl64.Vec3) mgl64.Vec3 {
	return supportOverPoints(m.Vertices, dir)
}

func (m TriangleMesh) Inertia(mass float64) mgl64.Mat3 {
	return pointCloudInertia(m.Vertices, mass)
}

func (TriangleMesh) sealed() {}

// supportOverPoints scans for the furthest point along dir. Empty point sets
// degrade to the origin so callers never see NaN.
func supportOverPoints(points []mgl64.Vec3, dir mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return mgl64.Vec3{}
	}
	best := points[0]
	bestDot := best.Dot(dir)
	for _, p := range points[1:] {
		if d := p.Dot(dir); d > bestDot {
			best, bestDot = p, d
		}
	}
	return best
}

// pointCloudInertia approximates a hull or mesh by the inertia of its
// bounding box. Crash reconstruction needs stable moments, not exact ones.
func pointCloudInertia(points []mgl64.Vec3, mass float64) mgl64.Mat3 {
	box := AABBFromPoints(points)
	ext := box.Extents()
	half := mgl64.Vec3{
		math.Max(ext.X(), 1e-3),
		math.Max(ext.Y(), 1e-3),
		math.Max(ext.Z(), 1e-3),
	}
	return Box{HalfExtents: half}.Inertia(mass)
}
