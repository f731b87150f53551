// Package material holds the structural property sets used by the
// deformation analysis: bulk materials and empirical crush-stiffness
// presets per vehicle structure class.
package material

import (
	"errors"
	"fmt"
)

// ErrInvalidMaterial is returned for property sets the deformation pass
// cannot use.
var ErrInvalidMaterial = errors.New("invalid material")

// Material is a linear-elastic bulk material with a plastic yield point.
// Stress units are pascals, density kg/m³.
type Material struct {
	Name          string
	Density       float64
	YoungsModulus float64
	PoissonRatio  float64
	YieldStrength float64
}

// Validate rejects non-physical property sets. Poisson ratio 0.5 is
// excluded: the Lamé conversion divides by (1 - 2ν).
func (m Material) Validate() error {
	if m.Density <= 0 {
		return fmt.Errorf("%w %q: density %v", ErrInvalidMaterial, m.Name, m.Density)
	}
	if m.YoungsModulus <= 0 {
		return fmt.Errorf("%w %q: Young's modulus %v", ErrInvalidMaterial, m.Name, m.YoungsModulus)
	}
	if m.PoissonRatio < 0 || m.PoissonRatio >= 0.5 {
		return fmt.Errorf("%w %q: Poisson ratio %v", ErrInvalidMaterial, m.Name, m.PoissonRatio)
	}
	if m.YieldStrength < 0 {
		return fmt.Errorf("%w %q: yield strength %v", ErrInvalidMaterial, m.Name, m.YieldStrength)
	}
	return nil
}

// Lame converts Young's modulus and Poisson ratio to the Lamé parameters
// λ and μ.
func (m Material) Lame() (lambda, mu float64) {
	e, nu := m.YoungsModulus, m.PoissonRatio
	lambda = e * nu / ((1 + nu) * (1 - 2*nu))
	mu = e / (2 * (1 + nu))
	return lambda, mu
}

// Bulk material presets for common vehicle structures.
func Steel() Material {
	return Material{Name: "steel", Density: 7850, YoungsModulus: 200e9, PoissonRatio: 0.29, YieldStrength: 250e6}
}

func Aluminum() Material {
	return Material{Name: "aluminum", Density: 2700, YoungsModulus: 69e9, PoissonRatio: 0.33, YieldStrength: 95e6}
}

func Plastic() Material {
	return Material{Name: "plastic", Density: 1200, YoungsModulus: 2.3e9, PoissonRatio: 0.35, YieldStrength: 50e6}
}

func Rubber() Material {
	return Material{Name: "rubber", Density: 1100, YoungsModulus: 0.05e9, PoissonRatio: 0.49, YieldStrength: 16e6}
}
