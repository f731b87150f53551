// Package body holds the rigid bodies of a reconstruction scene and the
// simulation state that owns them.
package body

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/reconlab/crashsim/internal/geom"
)

// ErrInvalidMass is returned when a dynamic body is created with mass <= 0.
var ErrInvalidMass = errors.New("dynamic body mass must be positive")

// ErrNilShape is returned when a body is created without a collision shape.
var ErrNilShape = errors.New("body requires a collision shape")

// RigidBody is one simulated body. Dynamic bodies carry finite mass and a
// positive-definite inertia tensor; static bodies (ground, barriers) have
// zero inverse mass and inverse inertia and never move.
//
// Bodies are owned by a State and mutated in place each step.
type RigidBody struct {
	ID int

	Mass    float64
	InvMass float64

	Position    mgl64.Vec3
	Orientation mgl64.Quat

	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3

	// invInertiaLocal is the body-frame inverse inertia; the world-frame
	// tensor is derived per query since orientation changes every step.
	invInertiaLocal mgl64.Mat3

	Shape  geom.Shape
	Bounds geom.AABB

	Static bool
	Awake  bool

	// Restitution and Friction are per-body surface coefficients combined
	// pairwise by the response solver.
	Restitution float64
	Friction    float64

	// Metadata carries free-form labels (vehicle class, VIN, report tags).
	Metadata map[string]string

	force  mgl64.Vec3
	torque mgl64.Vec3

	prevPosition mgl64.Vec3
}

// NewDynamic creates a moving body. mass must be positive.
func NewDynamic(id int, shape geom.Shape, mass float64) (*RigidBody, error) {
	if shape == nil {
		return nil, ErrNilShape
	}
	if mass <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidMass, mass)
	}
	b := &RigidBody{
		ID:          id,
		Mass:        mass,
		InvMass:     1 / mass,
		Orientation: mgl64.QuatIdent(),
		Shape:       shape,
		Awake:       true,
		Restitution: 0.3,
		Friction:    0.6,
		Metadata:    map[string]string{},
	}
	b.invInertiaLocal = shape.Inertia(mass).Inv()
	b.UpdateBounds()
	return b, nil
}

// NewStatic creates an immovable body with infinite mass.
func NewStatic(id int, shape geom.Shape) (*RigidBody, error) {
	if shape == nil {
		return nil, ErrNilShape
	}
	b := &RigidBody{
		ID:          id,
		Orientation: mgl64.QuatIdent(),
		Shape:       shape,
		Static:      true,
		Restitution: 0.3,
		Friction:    0.6,
		Metadata:    map[string]string{},
	}
	b.UpdateBounds()
	return b, nil
}

// ApplyForce accumulates a force through the center of mass.
func (b *RigidBody) ApplyForce(f mgl64.Vec3) {
	if b.Static {
		return
	}
	b.force = b.force.Add(f)
	b.Awake = true
}

// ApplyForceAt accumulates a force applied at a world-space point, adding the
// induced torque r x F about the center of mass.
func (b *RigidBody) ApplyForceAt(f, point mgl64.Vec3) {
	if b.Static {
		return
	}
	b.force = b.force.Add(f)
	b.torque = b.torque.Add(point.Sub(b.Position).Cross(f))
	b.Awake = true
}

// ApplyTorque accumulates a pure torque.
func (b *RigidBody) ApplyTorque(t mgl64.Vec3) {
	if b.Static {
		return
	}
	b.torque = b.torque.Add(t)
	b.Awake = true
}

// ApplyImpulseAt changes velocity immediately: linear by impulse/m, angular
// by I⁻¹(r x impulse). Static bodies ignore impulses.
func (b *RigidBody) ApplyImpulseAt(impulse, point mgl64.Vec3) {
	if b.Static {
		return
	}
	b.Velocity = b.Velocity.Add(impulse.Mul(b.InvMass))
	r := point.Sub(b.Position)
	b.AngularVelocity = b.AngularVelocity.Add(b.InvInertiaWorld().Mul3x1(r.Cross(impulse)))
	b.Awake = true
}

// Force returns the accumulated force for this step.
func (b *RigidBody) Force() mgl64.Vec3 { return b.force }

// Torque returns the accumulated torque for this step.
func (b *RigidBody) Torque() mgl64.Vec3 { return b.torque }

// ClearForces resets the per-step accumulators.
func (b *RigidBody) ClearForces() {
	b.force = mgl64.Vec3{}
	b.torque = mgl64.Vec3{}
}

// InvInertiaWorld returns the world-frame inverse inertia tensor,
// R · I_local⁻¹ · Rᵀ. Zero for static bodies.
func (b *RigidBody) InvInertiaWorld() mgl64.Mat3 {
	if b.Static {
		return mgl64.Mat3{}
	}
	r := b.Orientation.Mat4().Mat3()
	return r.Mul3(b.invInertiaLocal).Mul3(r.Transpose())
}

// VelocityAt returns the velocity of a world-space point on the body,
// v + ω x r.
func (b *RigidBody) VelocityAt(point mgl64.Vec3) mgl64.Vec3 {
	return b.Velocity.Add(b.AngularVelocity.Cross(point.Sub(b.Position)))
}

// SupportWorld answers world-space support queries for the narrow phase.
func (b *RigidBody) SupportWorld(dir mgl64.Vec3) mgl64.Vec3 {
	return geom.SupportWorld(b.Shape, b.Position, b.Orientation, dir)
}

// UpdateBounds refreshes the cached world AABB from the current transform.
func (b *RigidBody) UpdateBounds() {
	b.Bounds = geom.Bounds(b.Shape, b.Position, b.Orientation)
}

// Displacement is the world-space motion since MarkPosition, used by the
// broad phase for sweeping fast movers.
func (b *RigidBody) Displacement() mgl64.Vec3 {
	return b.Position.Sub(b.prevPosition)
}

// MarkPosition records the current position as the displacement reference.
func (b *RigidBody) MarkPosition() {
	b.prevPosition = b.Position
}

// KineticEnergy returns ½mv² plus the rotational term ½ωᵀIω. Static bodies
// report zero.
func (b *RigidBody) KineticEnergy() float64 {
	if b.Static {
		return 0
	}
	linear := 0.5 * b.Mass * b.Velocity.Dot(b.Velocity)
	// recover I_world from its inverse via the local tensor
	r := b.Orientation.Mat4().Mat3()
	inertia := r.Mul3(b.invInertiaLocal.Inv()).Mul3(r.Transpose())
	rotational := 0.5 * b.AngularVelocity.Dot(inertia.Mul3x1(b.AngularVelocity))
	return linear + rotational
}
