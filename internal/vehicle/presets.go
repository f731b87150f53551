package vehicle

import "fmt"

// VehicleClass selects a tire coefficient family.
type VehicleClass string

const (
	ClassPassenger   VehicleClass = "passenger"
	ClassPerformance VehicleClass = "performance"
	ClassSUV         VehicleClass = "suv"
)

// SurfaceCondition selects a road surface scaling.
type SurfaceCondition string

const (
	SurfaceDry SurfaceCondition = "dry"
	SurfaceWet SurfaceCondition = "wet"
	SurfaceIce SurfaceCondition = "ice"
)

// baseTire is the dry passenger-car reference set. All presets are scaled
// variants of this one.
var baseTire = TireParameters{
	LongB: 10.0, LongC: 1.9, LongD: 1.0, LongE: 0.97,
	LatB: 8.5, LatC: 1.3, LatD: 0.9, LatE: -1.0,
	RollingResistance: 0.015,
}

// classScale adjusts peak grip and stiffness per vehicle class.
var classScale = map[VehicleClass]struct{ peak, stiffness float64 }{
	ClassPassenger:   {peak: 1.0, stiffness: 1.0},
	ClassPerformance: {peak: 1.25, stiffness: 1.15},
	ClassSUV:         {peak: 0.9, stiffness: 0.92},
}

// surfaceScale adjusts peak grip and stiffness per road condition. Ice keeps
// some longitudinal stiffness but almost no peak grip.
var surfaceScale = map[SurfaceCondition]struct{ peak, stiffness float64 }{
	SurfaceDry: {peak: 1.0, stiffness: 1.0},
	SurfaceWet: {peak: 0.7, stiffness: 0.85},
	SurfaceIce: {peak: 0.15, stiffness: 0.5},
}

// TirePreset returns the coefficient set for a vehicle class on a surface.
func TirePreset(class VehicleClass, surface SurfaceCondition) (TireParameters, error) {
	cs, ok := classScale[class]
	if !ok {
		return TireParameters{}, fmt.Errorf("unknown vehicle class %q", class)
	}
	ss, ok := surfaceScale[surface]
	if !ok {
		return TireParameters{}, fmt.Errorf("unknown surface condition %q", surface)
	}

	p := baseTire
	p.LongB *= cs.stiffness * ss.stiffness
	p.LatB *= cs.stiffness * ss.stiffness
	p.LongD *= cs.peak * ss.peak
	p.LatD *= cs.peak * ss.peak
	return p, nil
}
