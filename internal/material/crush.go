package material

import (
	"fmt"
	"math"
)

// CrushStiffness is the empirical force-deflection model F(x) = k·xⁿ for a
// vehicle structure class.
type CrushStiffness struct {
	Name string
	// K is the stiffness coefficient in N/mⁿ.
	K float64
	// N is the deflection exponent; 1 is a linear spring.
	N float64
}

// Validate rejects coefficient sets the energy integral cannot use.
func (c CrushStiffness) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("%w %q: stiffness %v", ErrInvalidMaterial, c.Name, c.K)
	}
	if c.N <= -1 {
		return fmt.Errorf("%w %q: exponent %v", ErrInvalidMaterial, c.Name, c.N)
	}
	return nil
}

// Force returns the crush force at deflection x meters.
func (c CrushStiffness) Force(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return c.K * math.Pow(x, c.N)
}

// Energy is the closed-form work integral k/(n+1)·x^(n+1).
func (c CrushStiffness) Energy(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return c.K / (c.N + 1) * math.Pow(x, c.N+1)
}

// Depth inverts Energy: the crush deflection that absorbs the given energy.
func (c CrushStiffness) Depth(energy float64) float64 {
	if energy <= 0 {
		return 0
	}
	return math.Pow((c.N+1)*energy/c.K, 1/(c.N+1))
}

// Crush structure presets, calibrated to published NHTSA stiffness ranges.
func PassengerFront() CrushStiffness {
	return CrushStiffness{Name: "passenger-front", K: 1.2e6, N: 1.1}
}

func PassengerSide() CrushStiffness {
	return CrushStiffness{Name: "passenger-side", K: 0.7e6, N: 1.05}
}

func HeavyTruckFront() CrushStiffness {
	return CrushStiffness{Name: "heavy-truck-front", K: 4.5e6, N: 1.2}
}
