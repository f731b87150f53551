// crashsim reconstructs a vehicle collision scenario and prints the
// resulting trajectory and energy report as JSON on stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reconlab/crashsim/internal/body"
	"github.com/reconlab/crashsim/internal/config"
	"github.com/reconlab/crashsim/internal/deform"
	"github.com/reconlab/crashsim/internal/geom"
	"github.com/reconlab/crashsim/internal/integrator"
	"github.com/reconlab/crashsim/internal/logging"
	"github.com/reconlab/crashsim/internal/material"
	"github.com/reconlab/crashsim/internal/recorder"
	"github.com/reconlab/crashsim/internal/response"
	"github.com/reconlab/crashsim/internal/sweep"
	"github.com/reconlab/crashsim/internal/vehicle"
)

// set at build time via ldflags
var (
	Version   = "0.0.1"
	BuildDate = "unknown"
)

const vehicleMass = 1500.0

// EnergySummary holds the forensic quantities derived from the run.
type EnergySummary struct {
	InitialKinetic float64 `json:"initialKinetic"`
	FinalKinetic   float64 `json:"finalKinetic"`
	Dissipated     float64 `json:"dissipated"`
	CrushDepth     float64 `json:"crushDepth"`
	EES            float64 `json:"ees"`
	DeltaV         float64 `json:"deltaV"`
}

// Output is the top-level JSON document.
type Output struct {
	Version string          `json:"version"`
	Energy  EnergySummary   `json:"energy"`
	Report  recorder.Report `json:"report"`
}

func main() {
	configDir := flag.String("config", ".", "directory containing crashsim.cfg.json")
	sweepMode := flag.Bool("sweep", false, "run a Monte Carlo parameter sweep instead of a single scenario")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("crashsim %s (built %s)\n", Version, BuildDate)
		return
	}

	cfgErr := config.Load(*configDir)
	level := config.GetString("logLevel")
	runID := uuid.NewString()

	log := logging.NewConsole(level)
	logFile, fileErr := logging.NewRunFile(config.GetString("logsDir"), runID, time.Now())
	if fileErr == nil {
		defer logFile.Close()
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
		log = logging.New(zerolog.MultiLevelWriter(console, logFile), level)
	}
	log = log.With().Str("run", runID).Logger()
	if fileErr != nil {
		log.Warn().Err(fileErr).Msg("per-run log file unavailable, logging to console only")
	}
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("no config file found, using defaults")
	}

	var err error
	if *sweepMode {
		err = runSweep(log)
	} else {
		err = runSingle(log)
	}
	if err != nil {
		log.Error().Err(err).Msg("simulation failed")
		os.Exit(1)
	}
}

// buildScenario places a vehicle driving toward a static barrier.
func buildScenario(speed, friction, restitution float64) (*body.State, *integrator.Engine, *body.RigidBody, error) {
	simCfg := config.GetSimulationConfig()
	solverCfg := config.GetSolverConfig()
	sceneCfg := config.GetSceneConfig()

	method, err := integrator.ParseMethod(simCfg.Method)
	if err != nil {
		return nil, nil, nil, err
	}

	s, err := body.NewState(simCfg.TimeStep)
	if err != nil {
		return nil, nil, nil, err
	}

	barrier, err := body.NewStatic(0, geom.Box{HalfExtents: mgl64.Vec3{0.5, 5, 2}})
	if err != nil {
		return nil, nil, nil, err
	}
	barrier.Position = mgl64.Vec3{30, 0, 2}
	barrier.Friction = friction
	if err := s.AddBody(barrier); err != nil {
		return nil, nil, nil, err
	}

	car, err := body.NewDynamic(1, geom.Box{HalfExtents: mgl64.Vec3{2.2, 0.9, 0.6}}, vehicleMass)
	if err != nil {
		return nil, nil, nil, err
	}
	car.Position = mgl64.Vec3{0, 0, 0.9}
	car.Velocity = mgl64.Vec3{speed, 0, 0}
	car.Friction = friction
	car.Restitution = restitution
	car.Metadata["class"] = sceneCfg.VehicleClass
	car.Metadata["surface"] = sceneCfg.Surface
	if err := s.AddBody(car); err != nil {
		return nil, nil, nil, err
	}

	tire, err := vehicle.TirePreset(
		vehicle.VehicleClass(sceneCfg.VehicleClass),
		vehicle.SurfaceCondition(sceneCfg.Surface),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	susp := vehicle.DefaultSuspension()
	veh, err := vehicle.New(car, &tire, &susp, 2.7, 1.6, 0.3, 0.9)
	if err != nil {
		return nil, nil, nil, err
	}

	resolver := response.NewResolver()
	resolver.Iterations = solverCfg.Iterations
	resolver.Baumgarte = solverCfg.Baumgarte
	resolver.Slop = solverCfg.Slop
	resolver.WarmStart = solverCfg.WarmStart

	eng, err := integrator.New(
		integrator.Config{
			Gravity:   mgl64.Vec3{0, 0, simCfg.Gravity},
			Method:    method,
			Substeps:  simCfg.Substeps,
			Adaptive:  simCfg.Adaptive,
			MinDt:     simCfg.MinDt,
			MaxDt:     simCfg.MaxDt,
			MaxTravel: 0.05,
			Workers:   simCfg.Workers,
		},
		integrator.WithResolver(resolver),
		integrator.WithForceProvider(integrator.ForceFunc(func(*body.State) {
			veh.ApplyForces()
		})),
	)
	if err != nil {
		return nil, nil, nil, err
	}
	return s, eng, car, nil
}

func runSingle(log zerolog.Logger) error {
	simCfg := config.GetSimulationConfig()

	s, eng, car, err := buildScenario(15, 0.7, 0.2)
	if err != nil {
		return err
	}

	rec := recorder.New()
	if err := rec.Record(s); err != nil {
		return err
	}
	initialKE := car.KineticEnergy()

	ctx := context.Background()
	steps := int(simCfg.MaxSimTime / simCfg.TimeStep)
	for i := 0; i < steps; i++ {
		if err := eng.Step(ctx, s); err != nil {
			return err
		}
		if err := rec.Record(s); err != nil {
			return err
		}
	}

	dissipated := initialKE - car.KineticEnergy()
	if dissipated < 0 {
		dissipated = 0
	}
	crush := material.PassengerFront()
	out := Output{
		Version: Version,
		Energy: EnergySummary{
			InitialKinetic: initialKE,
			FinalKinetic:   car.KineticEnergy(),
			Dissipated:     dissipated,
			CrushDepth:     crush.Depth(dissipated),
			EES:            deform.EES(dissipated, vehicleMass),
			DeltaV:         deform.DeltaV(dissipated, vehicleMass),
		},
		Report: rec.Report(),
	}
	log.Info().
		Float64("dissipatedKJ", dissipated/1e3).
		Float64("ees", out.Energy.EES).
		Msg("reconstruction complete")
	return emit(out)
}

func runSweep(log zerolog.Logger) error {
	simCfg := config.GetSimulationConfig()
	sweepCfg := config.GetSweepConfig()

	runner := sweep.NewRunner(sweepCfg.Runs, int(simCfg.MaxSimTime/simCfg.TimeStep))
	runner.Workers = sweepCfg.Workers
	runner.Seed = sweepCfg.Seed
	runner.Log = log

	results, err := runner.Run(context.Background(),
		func(p sweep.Params) (*body.State, *integrator.Engine, error) {
			s, eng, _, err := buildScenario(p.ImpactSpeed, p.Friction, p.Restitution)
			return s, eng, err
		},
		func(r *rand.Rand) sweep.Params {
			return sweep.Params{
				Friction:    0.4 + 0.5*r.Float64(),
				Restitution: 0.1 + 0.3*r.Float64(),
				ImpactSpeed: 10 + 15*r.Float64(),
			}
		})
	if err != nil {
		return err
	}

	log.Info().Int("runs", len(results)).Msg("sweep complete")
	return emit(results)
}

func emit(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
