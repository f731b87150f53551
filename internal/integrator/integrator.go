// Package integrator advances a simulation state through time. Each step
// runs force accumulation, the broad and narrow collision phases, impulse
// response, then numeric integration of every body against a ground plane
// at z = 0.
package integrator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"github.com/reconlab/crashsim/internal/body"
	"github.com/reconlab/crashsim/internal/broadphase"
	"github.com/reconlab/crashsim/internal/logging"
	"github.com/reconlab/crashsim/internal/narrowphase"
	"github.com/reconlab/crashsim/internal/parallel"
	"github.com/reconlab/crashsim/internal/response"
	"github.com/reconlab/crashsim/internal/telemetry"
)

// Method selects the numeric integration scheme.
type Method string

const (
	// Euler is semi-implicit (symplectic) Euler, the default.
	Euler Method = "euler"
	// Verlet is velocity Verlet.
	Verlet Method = "verlet"
	// RK4 is the classic fourth-order Runge-Kutta scheme.
	RK4 Method = "rk4"
)

// ParseMethod maps a config string onto a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case Euler, Verlet, RK4:
		return Method(s), nil
	}
	return "", fmt.Errorf("%w: unknown integration method %q", ErrInvalidConfig, s)
}

// ErrInvalidConfig is returned by Config.Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid integrator config")

// Config holds the stepping parameters of an Engine.
type Config struct {
	// Gravity is the world-frame gravitational acceleration.
	Gravity mgl64.Vec3

	Method   Method
	Substeps int

	// Adaptive switches from fixed substeps to displacement-bounded
	// stepping within [MinDt, MaxDt]: the fastest body moves at most
	// MaxTravel per substep.
	Adaptive  bool
	MinDt     float64
	MaxDt     float64
	MaxTravel float64

	// Workers bounds the goroutines of the per-body phases; zero or
	// negative means GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the stepping defaults.
func DefaultConfig() Config {
	return Config{
		Gravity:   mgl64.Vec3{0, 0, -9.81},
		Method:    Euler,
		Substeps:  4,
		MinDt:     1e-5,
		MaxDt:     0.01,
		MaxTravel: 0.05,
	}
}

// Validate rejects settings the step loop cannot run with.
func (c Config) Validate() error {
	if _, err := ParseMethod(string(c.Method)); err != nil {
		return err
	}
	if c.Gravity.Len() == 0 {
		return fmt.Errorf("%w: gravity magnitude must be positive", ErrInvalidConfig)
	}
	if c.Gravity.Z() > 0 {
		return fmt.Errorf("%w: gravity must not point upward, got %v", ErrInvalidConfig, c.Gravity.Z())
	}
	if !c.Adaptive && c.Substeps < 1 {
		return fmt.Errorf("%w: substeps must be at least 1, got %d", ErrInvalidConfig, c.Substeps)
	}
	if c.Adaptive {
		if c.MinDt <= 0 {
			return fmt.Errorf("%w: adaptive minDt must be positive, got %v", ErrInvalidConfig, c.MinDt)
		}
		if c.MaxDt < c.MinDt {
			return fmt.Errorf("%w: adaptive maxDt %v below minDt %v", ErrInvalidConfig, c.MaxDt, c.MinDt)
		}
		if c.MaxTravel <= 0 {
			return fmt.Errorf("%w: adaptive maxTravel must be positive, got %v", ErrInvalidConfig, c.MaxTravel)
		}
	}
	return nil
}

// ForceProvider contributes forces to bodies before integration, once per
// substep. Vehicle dynamics plugs in here.
type ForceProvider interface {
	ApplyForces(s *body.State)
}

// ForceFunc adapts a plain function to the ForceProvider interface.
type ForceFunc func(*body.State)

// ApplyForces calls f.
func (f ForceFunc) ApplyForces(s *body.State) { f(s) }

// Engine steps a simulation state. An Engine holds no per-state data beyond
// the resolver's warm-start cache, so one engine drives one state.
type Engine struct {
	cfg       Config
	broad     broadphase.Detector
	resolver  *response.Resolver
	providers []ForceProvider
	log       zerolog.Logger
	metrics   *telemetry.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics sets the telemetry instruments.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithDetector replaces the broad-phase detector.
func WithDetector(d broadphase.Detector) Option {
	return func(e *Engine) { e.broad = d }
}

// WithResolver replaces the contact resolver.
func WithResolver(r *response.Resolver) Option {
	return func(e *Engine) { e.resolver = r }
}

// WithForceProvider appends a force provider; providers run in registration
// order each substep.
func WithForceProvider(p ForceProvider) Option {
	return func(e *Engine) { e.providers = append(e.providers, p) }
}

// New builds an engine after validating cfg.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:      cfg,
		broad:    broadphase.BruteForce{Margin: 0.01, SweepThreshold: 0.5},
		resolver: response.NewResolver(),
		log:      logging.Disabled(),
		metrics:  telemetry.Noop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.resolver.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Step advances s by one outer frame of s.Step seconds. Paused states are
// left untouched. ctx is checked between substeps only; a substep itself
// runs to completion.
func (e *Engine) Step(ctx context.Context, s *body.State) error {
	if s.Paused {
		return nil
	}
	start := time.Now()

	substeps := 0
	if e.cfg.Adaptive {
		remaining := s.Step
		for remaining > 1e-12 {
			if err := ctx.Err(); err != nil {
				return err
			}
			dt := math.Min(e.adaptiveDt(s), remaining)
			e.substep(ctx, s, dt)
			remaining -= dt
			substeps++
		}
	} else {
		dt := s.Step / float64(e.cfg.Substeps)
		for i := 0; i < e.cfg.Substeps; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.substep(ctx, s, dt)
			substeps++
		}
	}

	e.metrics.Steps.Add(ctx, 1)
	e.metrics.Substeps.Add(ctx, int64(substeps))
	e.metrics.StepSeconds.Record(ctx, time.Since(start).Seconds())
	e.log.Debug().
		Float64("time", s.Time).
		Int("substeps", substeps).
		Int("contacts", len(s.Contacts)).
		Msg("step complete")
	return nil
}

// adaptiveDt bounds the fastest body to MaxTravel of motion per substep.
func (e *Engine) adaptiveDt(s *body.State) float64 {
	maxSpeed := 0.0
	s.ForEach(func(b *body.RigidBody) {
		if sp := b.Velocity.Len(); sp > maxSpeed {
			maxSpeed = sp
		}
	})
	dt := e.cfg.MaxDt
	if maxSpeed > 0 {
		dt = e.cfg.MaxTravel / maxSpeed
	}
	return clamp(dt, e.cfg.MinDt, e.cfg.MaxDt)
}

func (e *Engine) substep(ctx context.Context, s *body.State, dt float64) {
	ids := s.IDs()

	// force phase: per body, write-disjoint. Bounds are refreshed here too
	// so bodies repositioned between steps enter the broad phase current.
	parallel.ForEach(len(ids), e.cfg.Workers, func(i int) {
		b, _ := s.Body(ids[i])
		b.UpdateBounds()
		if b.Static {
			return
		}
		b.ApplyForce(e.cfg.Gravity.Mul(b.Mass))
	})
	for _, p := range e.providers {
		p.ApplyForces(s)
	}

	contacts := e.detect(s, ids, dt)
	if !e.resolver.ResolveAll(s, contacts, 1/dt) {
		e.log.Warn().
			Float64("time", s.Time).
			Int("contacts", len(contacts)).
			Msg("contact solver hit iteration cap before converging")
		e.metrics.NonConvergence.Add(ctx, 1)
	}
	s.Contacts = contacts
	e.metrics.Contacts.Add(ctx, int64(len(contacts)))

	// integration phase: per body, write-disjoint
	parallel.ForEach(len(ids), e.cfg.Workers, func(i int) {
		b, _ := s.Body(ids[i])
		if b.Static {
			return
		}
		b.MarkPosition()
		e.integrate(b, dt)
		clampGround(b)
		b.ClearForces()
		b.UpdateBounds()
	})
	s.Time += dt
}

// detect runs broad and narrow phase and returns contacts in canonical pair
// order, which the resolver relies on for reproducibility.
func (e *Engine) detect(s *body.State, ids []int, dt float64) []narrowphase.Contact {
	entries := make([]broadphase.Entry, 0, len(ids))
	for _, id := range ids {
		b, _ := s.Body(id)
		entries = append(entries, broadphase.Entry{
			ID:           id,
			Bounds:       b.Bounds,
			Displacement: b.Velocity.Mul(dt),
			Static:       b.Static,
		})
	}

	pairs := e.broad.Pairs(entries)
	contacts := make([]narrowphase.Contact, 0, len(pairs))
	for _, p := range pairs {
		a, _ := s.Body(p.A)
		b, _ := s.Body(p.B)
		ct, ok := narrowphase.Detect(a, b, a.Position, b.Position)
		if !ok {
			continue
		}
		ct.BodyA, ct.BodyB = p.A, p.B
		contacts = append(contacts, ct)
	}
	return contacts
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
