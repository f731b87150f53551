// Package vehicle supplies the tire and suspension force models feeding the
// rigid-body integrator.
package vehicle

import (
	"math"
)

// Slip inputs outside these ranges are not physically meaningful and are
// clamped before entering the formula.
const (
	maxSlipRatio = 1.0
	maxSlipAngle = 0.5 // rad
)

// TireParameters is an immutable Pacejka "Magic Formula" coefficient set:
// stiffness B, shape C, peak D, curvature E, separately for the
// longitudinal (slip ratio) and lateral (slip angle) responses, plus a
// rolling-resistance coefficient.
type TireParameters struct {
	LongB, LongC, LongD, LongE float64
	LatB, LatC, LatD, LatE     float64
	RollingResistance          float64
}

// magic is the Pacejka curve D·sin(C·atan(B·x − E·(B·x − atan(B·x)))),
// normalized to the load (multiply by N outside).
func magic(b, c, d, e, x float64) float64 {
	bx := b * x
	return d * math.Sin(c*math.Atan(bx-e*(bx-math.Atan(bx))))
}

// LongitudinalForce returns the tractive/braking force for slip ratio kappa
// under normal load n. Rolling resistance opposes the rolling direction.
func (p TireParameters) LongitudinalForce(kappa, n float64) float64 {
	if n <= 0 {
		return 0
	}
	kappa = clamp(kappa, -maxSlipRatio, maxSlipRatio)
	f := magic(p.LongB, p.LongC, p.LongD, p.LongE, kappa) * n
	f -= p.RollingResistance * n * sign(kappa)
	return f
}

// LateralForce returns the cornering force for slip angle alpha (radians)
// under normal load n.
func (p TireParameters) LateralForce(alpha, n float64) float64 {
	if n <= 0 {
		return 0
	}
	alpha = clamp(alpha, -maxSlipAngle, maxSlipAngle)
	return magic(p.LatB, p.LatC, p.LatD, p.LatE, alpha) * n
}

// CombinedForce evaluates both slip responses and applies friction-circle
// limiting: the combined force vector cannot exceed the larger of the two
// peak coefficients times the load.
func (p TireParameters) CombinedForce(kappa, alpha, n float64) (fx, fy float64) {
	fx = p.LongitudinalForce(kappa, n)
	fy = p.LateralForce(alpha, n)

	limit := math.Max(p.LongD, p.LatD) * n
	mag := math.Hypot(fx, fy)
	if mag > limit && mag > 0 {
		scale := limit / mag
		fx *= scale
		fy *= scale
	}
	return fx, fy
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
