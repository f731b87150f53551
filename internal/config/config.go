package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SimulationConfig holds time stepping and environment settings.
type SimulationConfig struct {
	Gravity    float64 `json:"gravity" mapstructure:"gravity"`
	TimeStep   float64 `json:"timeStep" mapstructure:"timeStep"`
	Substeps   int     `json:"substeps" mapstructure:"substeps"`
	Method     string  `json:"method" mapstructure:"method"`
	Adaptive   bool    `json:"adaptive" mapstructure:"adaptive"`
	MinDt      float64 `json:"minDt" mapstructure:"minDt"`
	MaxDt      float64 `json:"maxDt" mapstructure:"maxDt"`
	Workers    int     `json:"workers" mapstructure:"workers"`
	MaxSimTime float64 `json:"maxSimTime" mapstructure:"maxSimTime"`
}

// SolverConfig holds the contact-solver tuning knobs.
type SolverConfig struct {
	Iterations int     `json:"iterations" mapstructure:"iterations"`
	Baumgarte  float64 `json:"baumgarte" mapstructure:"baumgarte"`
	Slop       float64 `json:"slop" mapstructure:"slop"`
	WarmStart  bool    `json:"warmStart" mapstructure:"warmStart"`
}

// SceneConfig selects road and vehicle presets.
type SceneConfig struct {
	Surface      string `json:"surface" mapstructure:"surface"`
	VehicleClass string `json:"vehicleClass" mapstructure:"vehicleClass"`
}

// SweepConfig controls Monte Carlo batch runs.
type SweepConfig struct {
	Runs    int   `json:"runs" mapstructure:"runs"`
	Workers int   `json:"workers" mapstructure:"workers"`
	Seed    int64 `json:"seed" mapstructure:"seed"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./crashlogs")
	viper.SetDefault("outputDir", "./reports")

	viper.SetDefault("simulation.gravity", -9.81)
	viper.SetDefault("simulation.timeStep", 0.001)
	viper.SetDefault("simulation.substeps", 4)
	viper.SetDefault("simulation.method", "euler")
	viper.SetDefault("simulation.adaptive", false)
	viper.SetDefault("simulation.minDt", 1e-5)
	viper.SetDefault("simulation.maxDt", 0.01)
	viper.SetDefault("simulation.workers", 0)
	viper.SetDefault("simulation.maxSimTime", 10.0)

	viper.SetDefault("solver.iterations", 8)
	viper.SetDefault("solver.baumgarte", 0.2)
	viper.SetDefault("solver.slop", 0.005)
	viper.SetDefault("solver.warmStart", true)

	viper.SetDefault("scene.surface", "dry")
	viper.SetDefault("scene.vehicleClass", "passenger")

	viper.SetDefault("sweep.runs", 100)
	viper.SetDefault("sweep.workers", 0)
	viper.SetDefault("sweep.seed", 1)

	viper.SetConfigName("crashsim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetSimulationConfig returns the stepping configuration.
func GetSimulationConfig() SimulationConfig {
	return SimulationConfig{
		Gravity:    viper.GetFloat64("simulation.gravity"),
		TimeStep:   viper.GetFloat64("simulation.timeStep"),
		Substeps:   viper.GetInt("simulation.substeps"),
		Method:     viper.GetString("simulation.method"),
		Adaptive:   viper.GetBool("simulation.adaptive"),
		MinDt:      viper.GetFloat64("simulation.minDt"),
		MaxDt:      viper.GetFloat64("simulation.maxDt"),
		Workers:    viper.GetInt("simulation.workers"),
		MaxSimTime: viper.GetFloat64("simulation.maxSimTime"),
	}
}

// GetSolverConfig returns the contact-solver configuration.
func GetSolverConfig() SolverConfig {
	return SolverConfig{
		Iterations: viper.GetInt("solver.iterations"),
		Baumgarte:  viper.GetFloat64("solver.baumgarte"),
		Slop:       viper.GetFloat64("solver.slop"),
		WarmStart:  viper.GetBool("solver.warmStart"),
	}
}

// GetSceneConfig returns the preset selection.
func GetSceneConfig() SceneConfig {
	return SceneConfig{
		Surface:      viper.GetString("scene.surface"),
		VehicleClass: viper.GetString("scene.vehicleClass"),
	}
}

// GetSweepConfig returns the Monte Carlo batch configuration.
func GetSweepConfig() SweepConfig {
	return SweepConfig{
		Runs:    viper.GetInt("sweep.runs"),
		Workers: viper.GetInt("sweep.workers"),
		Seed:    viper.GetInt64("sweep.seed"),
	}
}
