package vehicle

import (
	"errors"
	"fmt"
)

// ErrInvalidSuspension is returned for non-physical suspension parameters.
var ErrInvalidSuspension = errors.New("invalid suspension config")

// SuspensionConfig is an immutable per-corner spring-damper parameter set.
// Displacements are measured from the rest length: positive x means
// extension, negative x compression. Travel limits are positive magnitudes.
type SuspensionConfig struct {
	// Stiffness is the linear spring rate in N/m.
	Stiffness float64
	// Damping is the damper rate in N·s/m.
	Damping float64
	// MaxCompression and MaxExtension bound the travel before the bump
	// stops engage, in meters.
	MaxCompression float64
	MaxExtension   float64
	// BumpStopFactor multiplies the spring rate beyond the travel limits.
	BumpStopFactor float64
	// AntiRoll is the anti-roll bar stiffness coupling an axle pair, N/m.
	AntiRoll float64
}

// DefaultSuspension is a mid-size passenger car corner.
func DefaultSuspension() SuspensionConfig {
	return SuspensionConfig{
		Stiffness:      35000,
		Damping:        3500,
		MaxCompression: 0.12,
		MaxExtension:   0.10,
		BumpStopFactor: 10,
		AntiRoll:       15000,
	}
}

// Validate rejects parameter sets the force model cannot use.
func (c SuspensionConfig) Validate() error {
	if c.Stiffness <= 0 {
		return fmt.Errorf("%w: stiffness %v", ErrInvalidSuspension, c.Stiffness)
	}
	if c.Damping < 0 {
		return fmt.Errorf("%w: damping %v", ErrInvalidSuspension, c.Damping)
	}
	if c.MaxCompression <= 0 || c.MaxExtension <= 0 {
		return fmt.Errorf("%w: travel limits %v/%v", ErrInvalidSuspension, c.MaxCompression, c.MaxExtension)
	}
	if c.BumpStopFactor < 1 {
		return fmt.Errorf("%w: bump stop factor %v", ErrInvalidSuspension, c.BumpStopFactor)
	}
	return nil
}

// CornerForce returns the vertical force of one corner for displacement x
// and displacement rate xdot: -k·x - c·ẋ, with a progressively stiffened
// bump-stop term once travel exceeds the configured limits.
func (c SuspensionConfig) CornerForce(x, xdot float64) float64 {
	f := -c.Stiffness*x - c.Damping*xdot

	if x < -c.MaxCompression {
		over := x + c.MaxCompression
		f -= c.Stiffness * c.BumpStopFactor * over
	} else if x > c.MaxExtension {
		over := x - c.MaxExtension
		f -= c.Stiffness * c.BumpStopFactor * over
	}
	return f
}

// AntiRollForce returns the vertical force transferred across an axle for
// the given left/right displacements. The returned value is added to the
// left corner and subtracted from the right, resisting the roll difference.
func (c SuspensionConfig) AntiRollForce(left, right float64) float64 {
	return -c.AntiRoll * (left - right)
}
