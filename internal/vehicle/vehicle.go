package vehicle

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/reconlab/crashsim/internal/body"
)

// Wheel corner indices. Front/rear pairs share an anti-roll bar.
const (
	WheelFL = iota
	WheelFR
	WheelRL
	WheelRR
	WheelCount
)

// minForwardSpeed floors the slip-angle denominator so a near-stationary
// vehicle does not produce spurious lateral forces.
const minForwardSpeed = 0.5 // m/s

// ErrNilBody is returned when a vehicle is created without a rigid body.
var ErrNilBody = errors.New("vehicle requires a rigid body")

// ErrNilTire is returned when a vehicle is created without tire parameters.
var ErrNilTire = errors.New("vehicle requires tire parameters")

// ErrNilSuspension is returned when a vehicle is created without a
// suspension configuration.
var ErrNilSuspension = errors.New("vehicle requires a suspension config")

// Wheel is one corner of the vehicle: a chassis-frame attachment point plus
// the per-step control inputs set by the scenario layer.
type Wheel struct {
	// Offset is the suspension attachment point in the chassis frame.
	Offset mgl64.Vec3
	// Radius is the loaded wheel radius in meters.
	Radius float64
	// SteerAngle rotates the wheel about the vertical axis, radians.
	SteerAngle float64
	// SlipRatio is the commanded longitudinal slip (drive positive,
	// brake negative).
	SlipRatio float64

	displacement float64
}

// Vehicle binds a rigid body to four wheels, a tire coefficient set and a
// suspension configuration. Tire and suspension parameters are referenced,
// not owned, so presets can be swapped between steps.
type Vehicle struct {
	Body       *body.RigidBody
	Tire       *TireParameters
	Suspension *SuspensionConfig
	Wheels     [WheelCount]Wheel

	// RestHeight is the attachment-point height above the ground plane at
	// which the suspension is unloaded.
	RestHeight float64
}

// New lays out the four wheels from wheelbase and track width, both in
// meters, centered on the body origin.
func New(b *body.RigidBody, tire *TireParameters, susp *SuspensionConfig, wheelbase, track, radius, restHeight float64) (*Vehicle, error) {
	if b == nil {
		return nil, ErrNilBody
	}
	if tire == nil {
		return nil, ErrNilTire
	}
	if susp == nil {
		return nil, ErrNilSuspension
	}
	if err := susp.Validate(); err != nil {
		return nil, err
	}
	halfL := wheelbase / 2
	halfT := track / 2
	v := &Vehicle{
		Body:       b,
		Tire:       tire,
		Suspension: susp,
		RestHeight: restHeight,
	}
	v.Wheels[WheelFL] = Wheel{Offset: mgl64.Vec3{halfL, halfT, 0}, Radius: radius}
	v.Wheels[WheelFR] = Wheel{Offset: mgl64.Vec3{halfL, -halfT, 0}, Radius: radius}
	v.Wheels[WheelRL] = Wheel{Offset: mgl64.Vec3{-halfL, halfT, 0}, Radius: radius}
	v.Wheels[WheelRR] = Wheel{Offset: mgl64.Vec3{-halfL, -halfT, 0}, Radius: radius}
	return v, nil
}

// attachWorld is the wheel attachment point in world space.
func (v *Vehicle) attachWorld(i int) mgl64.Vec3 {
	return v.Body.Position.Add(v.Body.Orientation.Rotate(v.Wheels[i].Offset))
}

// NormalLoads evaluates the suspension at the current pose and returns the
// vertical load carried by each corner, anti-roll coupling included. Loads
// are clamped at zero: a corner lifted past full extension carries nothing.
func (v *Vehicle) NormalLoads() [WheelCount]float64 {
	var loads [WheelCount]float64
	for i := range v.Wheels {
		at := v.attachWorld(i)
		x := at.Z() - v.RestHeight
		xdot := v.Body.VelocityAt(at).Z()
		v.Wheels[i].displacement = x
		loads[i] = v.Suspension.CornerForce(x, xdot)
	}

	// anti-roll bars couple each axle pair
	for _, axle := range [][2]int{{WheelFL, WheelFR}, {WheelRL, WheelRR}} {
		ar := v.Suspension.AntiRollForce(v.Wheels[axle[0]].displacement, v.Wheels[axle[1]].displacement)
		loads[axle[0]] += ar
		loads[axle[1]] -= ar
	}

	for i := range loads {
		if loads[i] < 0 {
			loads[i] = 0
		}
	}
	return loads
}

// SlipAngle returns the lateral slip angle of wheel i in radians, signed so
// that the resulting lateral force opposes the sliding direction.
func (v *Vehicle) SlipAngle(i int) float64 {
	fwd, lat := v.wheelAxes(i)
	contact := v.contactPoint(i)
	vel := v.Body.VelocityAt(contact)

	vx := vel.Dot(fwd)
	vy := vel.Dot(lat)
	return math.Atan2(-vy, math.Max(math.Abs(vx), minForwardSpeed))
}

// ApplyForces evaluates suspension and tire forces for all four corners and
// accumulates them on the rigid body at each wheel's contact point.
func (v *Vehicle) ApplyForces() {
	loads := v.NormalLoads()
	up := mgl64.Vec3{0, 0, 1}

	for i := range v.Wheels {
		n := loads[i]
		contact := v.contactPoint(i)

		force := up.Mul(n)
		if n > 0 {
			fwd, lat := v.wheelAxes(i)
			fx, fy := v.Tire.CombinedForce(v.Wheels[i].SlipRatio, v.SlipAngle(i), n)
			force = force.Add(fwd.Mul(fx)).Add(lat.Mul(fy))
		}
		v.Body.ApplyForceAt(force, contact)
	}
}

// contactPoint is the tire patch location: one radius below the attachment.
func (v *Vehicle) contactPoint(i int) mgl64.Vec3 {
	return v.attachWorld(i).Sub(mgl64.Vec3{0, 0, v.Wheels[i].Radius})
}

// wheelAxes returns the world-space forward and lateral unit vectors of
// wheel i, steering applied about the chassis vertical axis.
func (v *Vehicle) wheelAxes(i int) (fwd, lat mgl64.Vec3) {
	steer := mgl64.QuatRotate(v.Wheels[i].SteerAngle, mgl64.Vec3{0, 0, 1})
	fwd = v.Body.Orientation.Mul(steer).Rotate(mgl64.Vec3{1, 0, 0})
	lat = v.Body.Orientation.Mul(steer).Rotate(mgl64.Vec3{0, 1, 0})
	return fwd, lat
}
