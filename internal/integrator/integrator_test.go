package integrator

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconlab/crashsim/internal/body"
	"github.com/reconlab/crashsim/internal/geom"
	"github.com/reconlab/crashsim/internal/response"
)

func TestParseMethod(t *testing.T) {
	for _, s := range []string{"euler", "verlet", "rk4"} {
		m, err := ParseMethod(s)
		require.NoError(t, err)
		assert.Equal(t, Method(s), m)
	}
	_, err := ParseMethod("leapfrog")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mut    func(*Config)
		wantOK bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown method", func(c *Config) { c.Method = "leapfrog" }, false},
		{"zero substeps", func(c *Config) { c.Substeps = 0 }, false},
		{"zero gravity", func(c *Config) { c.Gravity = mgl64.Vec3{} }, false},
		{"upward gravity", func(c *Config) { c.Gravity = mgl64.Vec3{0, 0, 9.81} }, false},
		{"adaptive ok", func(c *Config) { c.Adaptive = true }, true},
		{"adaptive zero minDt", func(c *Config) { c.Adaptive = true; c.MinDt = 0 }, false},
		{"adaptive inverted window", func(c *Config) { c.Adaptive = true; c.MaxDt = 1e-6 }, false},
		{"adaptive zero travel", func(c *Config) { c.Adaptive = true; c.MaxTravel = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mut(&cfg)
			err := cfg.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func newFallScene(t *testing.T, z float64) *body.State {
	t.Helper()
	s, err := body.NewState(0.01)
	require.NoError(t, err)
	b, err := body.NewDynamic(1, geom.Sphere{Radius: 0.5}, 10)
	require.NoError(t, err)
	b.Position = mgl64.Vec3{0, 0, z}
	require.NoError(t, s.AddBody(b))
	return s
}

func TestStep_FreeFallEuler(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Substeps = 1
	e, err := New(cfg)
	require.NoError(t, err)

	s := newFallScene(t, 100)
	for i := 0; i < 100; i++ {
		require.NoError(t, e.Step(context.Background(), s))
	}

	b, _ := s.Body(1)
	assert.InDelta(t, 1.0, s.Time, 1e-9)
	assert.InDelta(t, -9.81, b.Velocity.Z(), 1e-9)
	// discretization puts the body slightly below the analytic 100 - g/2
	assert.InDelta(t, 100-4.905, b.Position.Z(), 0.06)
}

func TestStep_ConstantAccelerationExactForVerletAndRK4(t *testing.T) {
	for _, method := range []Method{Verlet, RK4} {
		cfg := DefaultConfig()
		cfg.Method = method
		cfg.Substeps = 1
		e, err := New(cfg)
		require.NoError(t, err)

		s := newFallScene(t, 50)
		require.NoError(t, e.Step(context.Background(), s))

		b, _ := s.Body(1)
		want := 50 + 0.5*(-9.81)*0.01*0.01
		assert.InDelta(t, want, b.Position.Z(), 1e-12, "method %s", method)
		assert.InDelta(t, -9.81*0.01, b.Velocity.Z(), 1e-12, "method %s", method)
	}
}

func TestStep_GroundClamp(t *testing.T) {
	cfg := DefaultConfig()
	e, err := New(cfg)
	require.NoError(t, err)

	s := newFallScene(t, 0.001)
	b, _ := s.Body(1)
	b.Velocity = mgl64.Vec3{3, 0, -20}

	for i := 0; i < 10; i++ {
		require.NoError(t, e.Step(context.Background(), s))
	}

	assert.GreaterOrEqual(t, b.Position.Z(), 0.0)
	assert.GreaterOrEqual(t, b.Velocity.Z(), 0.0)
	// horizontal motion is unaffected by the clamp
	assert.Greater(t, b.Position.X(), 0.0)
}

func TestStep_PausedStateUntouched(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)

	s := newFallScene(t, 10)
	s.Paused = true
	require.NoError(t, e.Step(context.Background(), s))

	b, _ := s.Body(1)
	assert.Zero(t, s.Time)
	assert.Equal(t, mgl64.Vec3{0, 0, 10}, b.Position)
}

func TestStep_ContextCancellation(t *testing.T) {
	e, err := New(DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newFallScene(t, 10)
	assert.ErrorIs(t, e.Step(ctx, s), context.Canceled)
	assert.Zero(t, s.Time)
}

// negligibleGravity passes validation while leaving the motion under test
// unperturbed at double precision.
var negligibleGravity = mgl64.Vec3{0, 0, -1e-12}

func TestStep_HeadOnElasticCollision(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = negligibleGravity
	cfg.Substeps = 1

	res := response.NewResolver()
	res.Baumgarte = 0 // isolate the restitution response
	e, err := New(cfg, WithResolver(res))
	require.NoError(t, err)

	s, err := body.NewState(0.001)
	require.NoError(t, err)
	for _, tc := range []struct {
		id int
		x  float64
		vx float64
	}{{1, -0.45, 1}, {2, 0.45, -1}} {
		b, err := body.NewDynamic(tc.id, geom.Sphere{Radius: 0.5}, 1000)
		require.NoError(t, err)
		b.Position = mgl64.Vec3{tc.x, 0, 5}
		b.Velocity = mgl64.Vec3{tc.vx, 0, 0}
		b.Restitution = 1
		b.Friction = 0
		require.NoError(t, s.AddBody(b))
	}

	require.NoError(t, e.Step(context.Background(), s))

	a, _ := s.Body(1)
	b, _ := s.Body(2)
	assert.InDelta(t, -1, a.Velocity.X(), 1e-6)
	assert.InDelta(t, 1, b.Velocity.X(), 1e-6)
	assert.NotEmpty(t, s.Contacts)
}

func TestStep_AdaptiveBoundsTravelPerSubstep(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = negligibleGravity
	cfg.Adaptive = true
	e, err := New(cfg)
	require.NoError(t, err)

	s := newFallScene(t, 10)
	b, _ := s.Body(1)
	b.Velocity = mgl64.Vec3{100, 0, 0}

	require.NoError(t, e.Step(context.Background(), s))

	assert.InDelta(t, 0.01, s.Time, 1e-9)
	assert.InDelta(t, 1.0, b.Position.X(), 1e-6)
}

func TestStep_ForceProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = negligibleGravity
	cfg.Substeps = 1

	thrust := ForceFunc(func(s *body.State) {
		s.ForEach(func(b *body.RigidBody) {
			b.ApplyForce(mgl64.Vec3{100, 0, 0})
		})
	})
	e, err := New(cfg, WithForceProvider(thrust))
	require.NoError(t, err)

	s := newFallScene(t, 10)
	require.NoError(t, e.Step(context.Background(), s))

	b, _ := s.Body(1)
	// a = F/m = 10 m/s², one 0.01 s step
	assert.InDelta(t, 0.1, b.Velocity.X(), 1e-9)
}

func TestStep_OrientationIntegration(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = negligibleGravity
	e, err := New(cfg)
	require.NoError(t, err)

	s := newFallScene(t, 10)
	b, _ := s.Body(1)
	b.AngularVelocity = mgl64.Vec3{0, 0, math.Pi}

	for i := 0; i < 100; i++ { // one second: half a revolution about z
		require.NoError(t, e.Step(context.Background(), s))
	}

	got := b.Orientation.Rotate(mgl64.Vec3{1, 0, 0})
	assert.InDelta(t, -1, got.X(), 0.01)
	assert.InDelta(t, 0, got.Y(), 0.01)
	assert.Equal(t, mgl64.Vec3{0, 0, math.Pi}, b.AngularVelocity)
}

func TestStep_Deterministic(t *testing.T) {
	run := func() body.Snapshot {
		cfg := DefaultConfig()
		e, err := New(cfg)
		require.NoError(t, err)

		s, err := body.NewState(0.005)
		require.NoError(t, err)
		ground, err := body.NewStatic(0, geom.Box{HalfExtents: mgl64.Vec3{50, 50, 0.5}})
		require.NoError(t, err)
		ground.Position = mgl64.Vec3{0, 0, -0.5}
		require.NoError(t, s.AddBody(ground))
		for id := 1; id <= 5; id++ {
			b, err := body.NewDynamic(id, geom.Sphere{Radius: 0.5}, 100)
			require.NoError(t, err)
			b.Position = mgl64.Vec3{float64(id) * 0.9, 0, 0.5 + 0.1*float64(id)}
			b.Velocity = mgl64.Vec3{-2, 0, 0}
			require.NoError(t, s.AddBody(b))
		}
		for i := 0; i < 50; i++ {
			require.NoError(t, e.Step(context.Background(), s))
		}
		snap, err := s.Snapshot()
		require.NoError(t, err)
		return snap
	}

	first := run()
	second := run()
	require.Equal(t, len(first.Bodies), len(second.Bodies))
	for i := range first.Bodies {
		assert.Equal(t, first.Bodies[i].Position, second.Bodies[i].Position, "body %d", first.Bodies[i].ID)
		assert.Equal(t, first.Bodies[i].Velocity, second.Bodies[i].Velocity, "body %d", first.Bodies[i].ID)
	}
}
