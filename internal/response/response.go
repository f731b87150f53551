// Package response turns contacts into impulses. Each step the solver seeds
// contact constraints from the contact list, optionally warm-starts them
// with last frame's impulses, then iterates a velocity solve: a normal
// impulse with restitution and Baumgarte bias, and a Coulomb friction
// impulse clamped to the friction cone.
package response

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/reconlab/crashsim/internal/body"
	"github.com/reconlab/crashsim/internal/narrowphase"
)

// ErrInvalidResolver is returned for solver settings that cannot converge.
var ErrInvalidResolver = errors.New("invalid resolver config")

type contactKey struct {
	a, b    int
	feature uint32
}

// constraint is the per-frame working state for one contact.
type constraint struct {
	key  contactKey
	a, b *body.RigidBody

	point  mgl64.Vec3
	normal mgl64.Vec3
	rA, rB mgl64.Vec3

	// target is the desired post-solve relative normal velocity:
	// restitution bounce plus Baumgarte recovery bias.
	target float64

	invMassN float64 // effective inverse mass along the normal
	friction float64 // combined coefficient

	accumN float64 // accumulated normal impulse, clamped >= 0
	accumT float64 // accumulated tangential impulse magnitude
}

// Resolver solves contact velocity constraints.
//
// Baumgarte is the velocity-bias factor recovering penetration beyond Slop.
// WarmStart seeds each contact with the previous frame's accumulated normal
// impulse (matched by body pair and feature id), which settles resting
// contacts in far fewer iterations.
type Resolver struct {
	Baumgarte  float64
	Slop       float64
	WarmStart  bool
	Iterations int

	cache map[contactKey]float64
}

// NewResolver returns a resolver with the usual stabilization defaults.
func NewResolver() *Resolver {
	return &Resolver{
		Baumgarte:  0.2,
		Slop:       0.005,
		WarmStart:  true,
		Iterations: 8,
		cache:      make(map[contactKey]float64),
	}
}

// Validate rejects solver settings before a simulation starts.
func (r *Resolver) Validate() error {
	if r.Iterations < 1 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidResolver, r.Iterations)
	}
	if r.Baumgarte < 0 || r.Baumgarte > 1 {
		return fmt.Errorf("%w: baumgarte %v outside [0,1]", ErrInvalidResolver, r.Baumgarte)
	}
	if r.Slop < 0 {
		return fmt.Errorf("%w: negative slop %v", ErrInvalidResolver, r.Slop)
	}
	return nil
}

// convergenceTolerance bounds the normal impulse still being applied in the
// final iteration of a solve that counts as converged.
const convergenceTolerance = 1e-6

// ResolveAll runs the full velocity solve for one step. Contacts must
// already be in canonical pair order; processing order is part of the
// reproducibility contract. invDt feeds the Baumgarte bias.
//
// The return value reports whether the solve settled: false means the last
// iteration was still applying impulse above the convergence tolerance.
func (r *Resolver) ResolveAll(s *body.State, contacts []narrowphase.Contact, invDt float64) bool {
	constraints := r.setup(s, contacts, invDt)

	iters := r.Iterations
	if iters < 1 {
		iters = 1
	}
	var residual float64
	for i := 0; i < iters; i++ {
		residual = 0
		for _, c := range constraints {
			dj := c.solveNormal()
			c.solveFriction()
			residual = math.Max(residual, math.Abs(dj))
		}
	}

	// persist accumulated impulses for next frame's warm start
	clear(r.cache)
	for _, c := range constraints {
		r.cache[c.key] = c.accumN
	}
	return residual <= convergenceTolerance
}

func (r *Resolver) setup(s *body.State, contacts []narrowphase.Contact, invDt float64) []*constraint {
	constraints := make([]*constraint, 0, len(contacts))
	for _, ct := range contacts {
		a, okA := s.Body(ct.BodyA)
		b, okB := s.Body(ct.BodyB)
		if !okA || !okB {
			continue // body removed mid-frame; contact is stale
		}
		if a.Static && b.Static {
			continue
		}

		c := &constraint{
			key:    contactKey{a: ct.BodyA, b: ct.BodyB, feature: ct.FeatureID},
			a:      a,
			b:      b,
			point:  ct.Point,
			normal: ct.Normal,
			rA:     ct.Point.Sub(a.Position),
			rB:     ct.Point.Sub(b.Position),
		}

		c.invMassN = effectiveInvMass(a, b, c.rA, c.rB, c.normal)
		if c.invMassN <= 1e-12 {
			// zero effective mass along the normal: treated as a no-op
			continue
		}
		c.friction = combineFriction(a.Friction, b.Friction)

		// restitution acts on the pre-solve approach speed only
		vn := c.relativeNormalVelocity()
		if vn < 0 {
			e := combineRestitution(a.Restitution, b.Restitution)
			c.target = -e * vn
		}
		if pen := ct.Depth - r.Slop; pen > 0 {
			c.target = math.Max(c.target, r.Baumgarte*invDt*pen)
		}

		if r.WarmStart {
			if j, ok := r.cache[c.key]; ok && j > 0 {
				c.accumN = j
				c.applyNormal(j)
			}
		}

		a.Awake = true
		b.Awake = true
		constraints = append(constraints, c)
	}
	return constraints
}

func (c *constraint) relativeNormalVelocity() float64 {
	rel := c.b.VelocityAt(c.point).Sub(c.a.VelocityAt(c.point))
	return rel.Dot(c.normal)
}

func (c *constraint) applyNormal(j float64) {
	impulse := c.normal.Mul(j)
	c.a.ApplyImpulseAt(impulse.Mul(-1), c.point)
	c.b.ApplyImpulseAt(impulse, c.point)
}

// solveNormal drives the relative normal velocity toward the target while
// keeping the total impulse non-negative (contacts push, never pull). It
// returns the impulse delta actually applied.
func (c *constraint) solveNormal() float64 {
	vn := c.relativeNormalVelocity()
	dj := (c.target - vn) / c.invMassN

	total := math.Max(c.accumN+dj, 0)
	dj = total - c.accumN
	c.accumN = total

	if dj != 0 {
		c.applyNormal(dj)
	}
	return dj
}

// solveFriction kills tangential slip at the contact, clamped to the
// Coulomb cone |jt| <= mu * jn.
func (c *constraint) solveFriction() {
	if c.friction <= 0 || c.accumN <= 0 {
		return
	}

	rel := c.b.VelocityAt(c.point).Sub(c.a.VelocityAt(c.point))
	tangent := rel.Sub(c.normal.Mul(rel.Dot(c.normal)))
	speed := tangent.Len()
	if speed < 1e-9 {
		return
	}
	t := tangent.Mul(1 / speed)

	kt := effectiveInvMass(c.a, c.b, c.rA, c.rB, t)
	if kt <= 1e-12 {
		return
	}

	dj := -speed / kt
	maxFriction := c.friction * c.accumN
	total := clamp(c.accumT+dj, -maxFriction, maxFriction)
	dj = total - c.accumT
	c.accumT = total

	impulse := t.Mul(dj)
	c.a.ApplyImpulseAt(impulse.Mul(-1), c.point)
	c.b.ApplyImpulseAt(impulse, c.point)
}

// effectiveInvMass is the denominator of the impulse equation along dir:
// invM_a + invM_b + (rA x d)ᵀ Ia⁻¹ (rA x d) + (rB x d)ᵀ Ib⁻¹ (rB x d).
// Static bodies contribute zero.
func effectiveInvMass(a, b *body.RigidBody, rA, rB, dir mgl64.Vec3) float64 {
	k := a.InvMass + b.InvMass
	raxd := rA.Cross(dir)
	rbxd := rB.Cross(dir)
	k += raxd.Dot(a.InvInertiaWorld().Mul3x1(raxd))
	k += rbxd.Dot(b.InvInertiaWorld().Mul3x1(rbxd))
	return k
}

// combineRestitution uses the geometric mean for asymmetric pairs, which
// keeps a perfectly plastic surface plastic against anything.
func combineRestitution(ea, eb float64) float64 {
	if ea == eb {
		return ea
	}
	return math.Sqrt(ea * eb)
}

// combineFriction is the harmonic mean, dominated by the slipperier surface.
func combineFriction(fa, fb float64) float64 {
	if fa+fb <= 0 {
		return 0
	}
	return 2 * fa * fb / (fa + fb)
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
