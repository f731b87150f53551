package narrowphase

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Contact describes one resolved contact between two bodies. Contacts are
// ephemeral: they are rebuilt every step and reference bodies by id only.
type Contact struct {
	BodyA int
	BodyB int

	// Point is the world-space contact location, taken midway between the
	// two witness points.
	Point mgl64.Vec3

	// Normal is a unit vector from body A toward body B.
	Normal mgl64.Vec3

	// Depth is the penetration along Normal; positive means overlapping.
	Depth float64

	// FeatureID tracks the touching feature across frames so the response
	// solver can warm-start resting contacts.
	FeatureID uint32
}

// Detect runs the full narrow phase for one candidate pair. centerA/centerB
// are the body origins, used to seed GJK and to orient the normal from A
// toward B. Returns false when the shapes are disjoint or the geometry is
// too degenerate to produce a finite contact.
func Detect(a, b Support, centerA, centerB mgl64.Vec3) (Contact, bool) {
	seed := centerB.Sub(centerA)

	sx, hit := Intersect(a, b, seed)
	if !hit {
		return Contact{}, false
	}

	normal, depth, ok := Penetration(a, b, sx)
	if !ok || !isFinite(normal) || math.IsNaN(depth) || math.IsInf(depth, 0) {
		return Contact{}, false
	}

	// orient from A toward B; for concentric bodies keep EPA's direction
	if seed.LenSqr() > epsDirection && normal.Dot(seed) < 0 {
		normal = normal.Mul(-1)
	}

	witnessA := a.SupportWorld(normal)
	witnessB := b.SupportWorld(normal.Mul(-1))

	return Contact{
		Point:     witnessA.Add(witnessB).Mul(0.5),
		Normal:    normal,
		Depth:     depth,
		FeatureID: featureID(normal),
	}, true
}

// featureID quantizes the contact normal into one of its dominant axis
// octants. Resting contacts keep a stable normal frame to frame, so the id
// is stable too, which is all warm starting needs.
func featureID(normal mgl64.Vec3) uint32 {
	axis := 0
	mag := math.Abs(normal.X())
	if a := math.Abs(normal.Y()); a > mag {
		axis, mag = 1, a
	}
	if a := math.Abs(normal.Z()); a > mag {
		axis = 2
	}
	id := uint32(axis) << 1
	if normal[axis] < 0 {
		id |= 1
	}
	return id
}

func isFinite(v mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.IsNaN(v[i]) || math.IsInf(v[i], 0) {
			return false
		}
	}
	return true
}
