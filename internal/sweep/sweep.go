// Package sweep runs Monte Carlo batches of independent simulations over
// uncertain inputs. Every run owns its own state and engine, so runs
// parallelize freely; sampling is seeded per run index to keep a batch
// reproducible regardless of scheduling.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reconlab/crashsim/internal/body"
	"github.com/reconlab/crashsim/internal/integrator"
	"github.com/reconlab/crashsim/internal/logging"
	"github.com/reconlab/crashsim/internal/queue"
)

// ErrInvalidRunner is returned for unusable batch settings.
var ErrInvalidRunner = errors.New("invalid sweep runner")

// Params is one sampled input set for a single run.
type Params struct {
	Friction    float64
	Restitution float64
	ImpactSpeed float64
	ImpactAngle float64
}

// Sampler draws one parameter set. The generator is private to the run.
type Sampler func(r *rand.Rand) Params

// Scenario builds a fresh state and engine for a parameter set. It is
// called once per run and must not share mutable data between calls.
type Scenario func(p Params) (*body.State, *integrator.Engine, error)

// Result is the outcome of one completed run.
type Result struct {
	RunID    string
	Index    int
	Params   Params
	Final    body.Snapshot
	Duration time.Duration
}

// Runner executes a batch of runs.
type Runner struct {
	// Runs is the batch size; Steps the outer steps per run.
	Runs  int
	Steps int

	// Workers bounds concurrent runs; zero or negative means unbounded.
	Workers int

	// Seed makes sampling reproducible: run i draws from Seed + i.
	Seed int64

	Log zerolog.Logger
}

// NewRunner returns a runner with a disabled logger.
func NewRunner(runs, steps int) *Runner {
	return &Runner{Runs: runs, Steps: steps, Log: logging.Disabled()}
}

func (r *Runner) validate() error {
	if r.Runs < 1 {
		return fmt.Errorf("%w: runs %d", ErrInvalidRunner, r.Runs)
	}
	if r.Steps < 1 {
		return fmt.Errorf("%w: steps %d", ErrInvalidRunner, r.Steps)
	}
	return nil
}

// Run executes the batch. The first run error cancels the remaining runs
// and is returned; completed results up to that point are discarded.
// Results come back ordered by run index.
func (r *Runner) Run(ctx context.Context, scenario Scenario, sample Sampler) ([]Result, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	results := queue.New[Result]()
	g, ctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}

	for i := 0; i < r.Runs; i++ {
		g.Go(func() error {
			res, err := r.one(ctx, i, scenario, sample)
			if err != nil {
				return err
			}
			results.Push(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results.Drain()
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out, nil
}

func (r *Runner) one(ctx context.Context, index int, scenario Scenario, sample Sampler) (Result, error) {
	start := time.Now()
	runID := uuid.NewString()

	p := sample(rand.New(rand.NewSource(r.Seed + int64(index))))
	s, eng, err := scenario(p)
	if err != nil {
		return Result{}, fmt.Errorf("run %d (%s): building scenario: %w", index, runID, err)
	}

	for step := 0; step < r.Steps; step++ {
		if err := eng.Step(ctx, s); err != nil {
			return Result{}, fmt.Errorf("run %d (%s): step %d: %w", index, runID, step, err)
		}
	}

	final, err := s.Snapshot()
	if err != nil {
		return Result{}, fmt.Errorf("run %d (%s): capturing final state: %w", index, runID, err)
	}
	res := Result{
		RunID:    runID,
		Index:    index,
		Params:   p,
		Final:    final,
		Duration: time.Since(start),
	}
	r.Log.Debug().
		Str("run", runID).
		Int("index", index).
		Dur("elapsed", res.Duration).
		Msg("sweep run complete")
	return res, nil
}
