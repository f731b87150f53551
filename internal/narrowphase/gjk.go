// Package narrowphase decides whether two convex shapes intersect and, when
// they do, extracts a contact normal and penetration depth.
//
// Intersection testing is GJK on the Minkowski difference: build a simplex of
// support points, walk it toward the origin, and either enclose the origin
// (hit) or prove it unreachable (miss). Penetration extraction is EPA on the
// terminal simplex.
package narrowphase

import (
	"github.com/go-gl/mathgl/mgl64"
)

// MaxIterations bounds both the GJK refinement loop and the EPA expansion
// loop so degenerate input terminates.
const MaxIterations = 64

const (
	// directions shorter than this are treated as degenerate
	epsDirection = 1e-12
	// squared lengths below this collapse simplex features
	epsFeature = 1e-10
)

// Support is anything that can answer world-space support queries. RigidBody
// satisfies it; tests use bare shapes through small adapters.
type Support interface {
	SupportWorld(dir mgl64.Vec3) mgl64.Vec3
}

// Simplex holds 1 to 4 points of the Minkowski difference. Points[n-1] is
// always the most recently added vertex.
type Simplex struct {
	Points [4]mgl64.Vec3
	Count  int
}

func (s *Simplex) push(p mgl64.Vec3) {
	s.Points[s.Count] = p
	s.Count++
}

func (s *Simplex) set(points ...mgl64.Vec3) {
	s.Count = len(points)
	copy(s.Points[:], points)
}

// minkowskiSupport samples the Minkowski difference A-B along dir.
func minkowskiSupport(a, b Support, dir mgl64.Vec3) mgl64.Vec3 {
	return a.SupportWorld(dir).Sub(b.SupportWorld(dir.Mul(-1)))
}

// Intersect runs GJK. seed is the initial search direction, typically the
// vector between the two body centers; a degenerate seed falls back to +X.
// On a hit, the returned simplex encloses the origin and seeds EPA.
func Intersect(a, b Support, seed mgl64.Vec3) (Simplex, bool) {
	dir := seed
	if dir.LenSqr() < epsDirection {
		dir = mgl64.Vec3{1, 0, 0}
	}

	var sx Simplex
	sx.push(minkowskiSupport(a, b, dir))

	// walk toward the origin from the first support point
	dir = sx.Points[0].Mul(-1)
	if dir.LenSqr() < epsDirection {
		// first support point is the origin: surfaces touch exactly
		return sx, true
	}

	for i := 0; i < MaxIterations; i++ {
		p := minkowskiSupport(a, b, dir)
		if p.Dot(dir) <= 0 {
			// the support point never crossed the origin, so the
			// Minkowski difference cannot contain it
			return sx, false
		}
		sx.push(p)
		if sx.refine(&dir) {
			return sx, true
		}
	}

	// iteration cap hit on near-touching input; call it a miss
	return sx, false
}

// refine reduces the simplex to the feature nearest the origin and updates
// the search direction. Returns true only when a tetrahedron encloses the
// origin.
func (s *Simplex) refine(dir *mgl64.Vec3) bool {
	switch s.Count {
	case 2:
		return s.refineLine(dir)
	case 3:
		return s.refineTriangle(dir)
	case 4:
		return s.refineTetrahedron(dir)
	}
	return false
}

func (s *Simplex) refineLine(dir *mgl64.Vec3) bool {
	a := s.Points[1] // newest
	b := s.Points[0]
	ab := b.Sub(a)
	ao := a.Mul(-1)

	if ab.LenSqr() < epsFeature {
		// the two supports coincide; keep one and search toward origin
		s.set(a)
		*dir = ao
		return ao.LenSqr() < epsDirection
	}

	if ab.Dot(ao) <= 0 {
		// origin lies behind a
		s.set(a)
		*dir = ao
		return false
	}

	perp := ab.Cross(ao).Cross(ab)
	if perp.LenSqr() < epsFeature {
		// origin sits on the segment
		return true
	}
	*dir = perp
	return false
}

func (s *Simplex) refineTriangle(dir *mgl64.Vec3) bool {
	a := s.Points[2] // newest
	b := s.Points[1]
	c := s.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ao := a.Mul(-1)
	n := ab.Cross(ac)

	if n.LenSqr() < epsFeature {
		// collinear points; fall back to the newest edge
		s.set(b, a)
		return s.refineLine(dir)
	}

	// edge AB region
	if ab.Cross(n).Dot(ao) > 0 {
		s.set(b, a)
		*dir = ab.Cross(ao).Cross(ab)
		return false
	}
	// edge AC region
	if n.Cross(ac).Dot(ao) > 0 {
		s.set(c, a)
		*dir = ac.Cross(ao).Cross(ac)
		return false
	}

	// origin is above or below the face
	if n.Dot(ao) > 0 {
		*dir = n
		return false
	}
	// flip winding so the next vertex lands on the origin side
	s.set(b, c, a)
	*dir = n.Mul(-1)
	return false
}

func (s *Simplex) refineTetrahedron(dir *mgl64.Vec3) bool {
	a := s.Points[3] // newest
	b := s.Points[2]
	c := s.Points[1]
	d := s.Points[0]

	ab := b.Sub(a)
	ac := c.Sub(a)
	ad := d.Sub(a)
	ao := a.Mul(-1)

	// outward normals of the three faces that include the newest vertex
	abc := outwardNormal(ab.Cross(ac), ad)
	acd := outwardNormal(ac.Cross(ad), ab)
	adb := outwardNormal(ad.Cross(ab), ac)

	if abc.LenSqr() < epsFeature || acd.LenSqr() < epsFeature || adb.LenSqr() < epsFeature {
		// flat tetrahedron; retry as a triangle of the newest points
		s.set(c, b, a)
		return s.refineTriangle(dir)
	}

	if abc.Dot(ao) > 0 {
		s.set(c, b, a)
		return s.refineTriangle(dir)
	}
	if acd.Dot(ao) > 0 {
		s.set(d, c, a)
		return s.refineTriangle(dir)
	}
	if adb.Dot(ao) > 0 {
		s.set(b, d, a)
		return s.refineTriangle(dir)
	}

	// inside all three faces (and face BCD by construction): enclosed
	return true
}

// outwardNormal flips n away from the interior reference direction.
func outwardNormal(n, interior mgl64.Vec3) mgl64.Vec3 {
	if n.Dot(interior) > 0 {
		return n.Mul(-1)
	}
	return n
}
