package integrator

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/reconlab/crashsim/internal/body"
)

// integrate advances one body by dt using the configured scheme. Forces are
// held constant across the substep, so the schemes differ only in how they
// compose the position update; velocity Verlet and RK4 both recover the
// exact quadratic for constant acceleration.
func (e *Engine) integrate(b *body.RigidBody, dt float64) {
	accel := b.Force().Mul(b.InvMass)

	switch e.cfg.Method {
	case Verlet:
		b.Position = b.Position.Add(b.Velocity.Mul(dt)).Add(accel.Mul(0.5 * dt * dt))
		b.Velocity = b.Velocity.Add(accel.Mul(dt))
	case RK4:
		b.Position, b.Velocity = rk4(b.Position, b.Velocity, accel, dt)
	default: // semi-implicit Euler
		b.Velocity = b.Velocity.Add(accel.Mul(dt))
		b.Position = b.Position.Add(b.Velocity.Mul(dt))
	}

	alpha := b.InvInertiaWorld().Mul3x1(b.Torque())
	b.AngularVelocity = b.AngularVelocity.Add(alpha.Mul(dt))
	b.Orientation = integrateOrientation(b.Orientation, b.AngularVelocity, dt)
}

// rk4 integrates dx/dt = v, dv/dt = a over one step.
func rk4(x, v, a mgl64.Vec3, dt float64) (mgl64.Vec3, mgl64.Vec3) {
	k1x := v
	k2x := v.Add(a.Mul(dt / 2))
	k3x := v.Add(a.Mul(dt / 2))
	k4x := v.Add(a.Mul(dt))

	dx := k1x.Add(k2x.Mul(2)).Add(k3x.Mul(2)).Add(k4x).Mul(dt / 6)
	return x.Add(dx), v.Add(a.Mul(dt))
}

// integrateOrientation applies q' = q + (dt/2)·ω_q·q and renormalizes.
func integrateOrientation(q mgl64.Quat, omega mgl64.Vec3, dt float64) mgl64.Quat {
	if omega.LenSqr() < 1e-18 {
		return q
	}
	dq := mgl64.Quat{W: 0, V: omega.Mul(0.5 * dt)}.Mul(q)
	return mgl64.Quat{W: q.W + dq.W, V: q.V.Add(dq.V)}.Normalize()
}

// clampGround keeps bodies above the ground plane at z = 0 and kills any
// downward velocity once they touch it.
func clampGround(b *body.RigidBody) {
	if b.Position.Z() >= 0 {
		return
	}
	b.Position[2] = 0
	if b.Velocity.Z() < 0 {
		b.Velocity[2] = 0
	}
}
