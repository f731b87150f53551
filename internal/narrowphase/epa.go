package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// epaTolerance stops expansion once a new support point stops improving
	// the closest-face distance by more than this.
	epaTolerance = 1e-4

	// epaMinDistance guards faces that pass through the origin.
	epaMinDistance = 1e-6

	// degeneratePenetration is the fallback depth when GJK terminates with
	// fewer than four points (surfaces touching, not overlapping).
	degeneratePenetration = 1e-3
)

// face is a triangle of polytope vertex indices with its cached plane.
type face struct {
	v        [3]int
	normal   mgl64.Vec3 // unit, pointing away from the origin
	distance float64    // origin-to-plane distance, >= 0
}

// polytope is the expanding convex hull of Minkowski support points.
type polytope struct {
	verts []mgl64.Vec3
	faces []face
}

// Penetration runs EPA on a terminal GJK simplex and reports the minimum
// translation vector separating the shapes: a unit normal and a positive
// depth. The normal's sign follows the polytope geometry; callers orient it
// by body centers. ok is false only when the polytope collapses entirely.
func Penetration(a, b Support, sx Simplex) (normal mgl64.Vec3, depth float64, ok bool) {
	if sx.Count < 4 {
		return degeneratePenetrationEstimate(sx)
	}

	pt := newPolytope(sx)
	if len(pt.faces) == 0 {
		return degeneratePenetrationEstimate(sx)
	}

	for i := 0; i < MaxIterations; i++ {
		fi := pt.closestFace()
		f := pt.faces[fi]

		support := minkowskiSupport(a, b, f.normal)
		grown := support.Dot(f.normal) - f.distance
		if grown < epaTolerance {
			// the hull no longer expands along the closest normal:
			// this face is the surface of the Minkowski difference
			return f.normal, math.Max(f.distance, epaMinDistance), true
		}
		if !pt.expand(support) {
			return f.normal, math.Max(f.distance, epaMinDistance), true
		}
	}

	// non-converged: the closest face so far is still a usable estimate
	fi := pt.closestFace()
	f := pt.faces[fi]
	return f.normal, math.Max(f.distance, epaMinDistance), true
}

func degeneratePenetrationEstimate(sx Simplex) (mgl64.Vec3, float64, bool) {
	// Pick the support point nearest the origin; its direction approximates
	// the contact normal for a touching configuration.
	best := -1
	bestLen := math.Inf(1)
	for i := 0; i < sx.Count; i++ {
		if l := sx.Points[i].Len(); l < bestLen && l > epsDirection {
			best, bestLen = i, l
		}
	}
	if best < 0 {
		return mgl64.Vec3{0, 0, 1}, degeneratePenetration, true
	}
	return sx.Points[best].Mul(1 / bestLen), math.Max(bestLen, degeneratePenetration), true
}

func newPolytope(sx Simplex) *polytope {
	pt := &polytope{verts: append([]mgl64.Vec3(nil), sx.Points[:4]...)}
	for _, tri := range [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2}} {
		if f, valid := pt.makeFace(tri); valid {
			pt.faces = append(pt.faces, f)
		}
	}
	return pt
}

// makeFace builds a face plane with the normal oriented away from the
// polytope interior (approximated by the centroid of the current vertices).
func (pt *polytope) makeFace(v [3]int) (face, bool) {
	a, b, c := pt.verts[v[0]], pt.verts[v[1]], pt.verts[v[2]]
	n := b.Sub(a).Cross(c.Sub(a))
	if n.LenSqr() < epsFeature {
		return face{}, false
	}
	n = n.Normalize()

	var centroid mgl64.Vec3
	for _, p := range pt.verts {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(pt.verts)))

	if n.Dot(a.Sub(centroid)) < 0 {
		n = n.Mul(-1)
		v[1], v[2] = v[2], v[1]
	}

	return face{v: v, normal: n, distance: math.Abs(a.Dot(n))}, true
}

func (pt *polytope) closestFace() int {
	best := 0
	for i := 1; i < len(pt.faces); i++ {
		if pt.faces[i].distance < pt.faces[best].distance {
			best = i
		}
	}
	return best
}

// expand inserts a support point: faces visible from the point are removed
// and the resulting horizon is stitched to the new vertex. Returns false if
// the polytope would lose all faces.
func (pt *polytope) expand(p mgl64.Vec3) bool {
	type edge struct{ a, b int }

	seen := make(map[edge]int)
	note := func(a, b int) {
		// shared edges appear once per winding direction; an edge whose
		// reverse was already noted is interior to the visible region
		if _, dup := seen[edge{b, a}]; dup {
			delete(seen, edge{b, a})
			return
		}
		seen[edge{a, b}]++
	}

	kept := pt.faces[:0]
	removed := 0
	for _, f := range pt.faces {
		if f.normal.Dot(p.Sub(pt.verts[f.v[0]])) > 0 {
			note(f.v[0], f.v[1])
			note(f.v[1], f.v[2])
			note(f.v[2], f.v[0])
			removed++
			continue
		}
		kept = append(kept, f)
	}
	if removed == 0 {
		// the point is already inside the hull; nothing to expand
		return true
	}

	pt.faces = kept
	pt.verts = append(pt.verts, p)
	vi := len(pt.verts) - 1
	for e := range seen {
		if f, valid := pt.makeFace([3]int{e.a, e.b, vi}); valid {
			pt.faces = append(pt.faces, f)
		}
	}
	return len(pt.faces) > 0
}
