package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"simulation": { "timeStep": 0.002, "method": "rk4" },
		"solver": { "iterations": 16 }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crashsim.cfg.json"), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, 0.002, viper.GetFloat64("simulation.timeStep"))
	assert.Equal(t, "rk4", viper.GetString("simulation.method"))
	assert.Equal(t, 16, viper.GetInt("solver.iterations"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crashsim.cfg.json"), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./crashlogs", viper.GetString("logsDir"))
	assert.Equal(t, "./reports", viper.GetString("outputDir"))
	assert.Equal(t, -9.81, viper.GetFloat64("simulation.gravity"))
	assert.Equal(t, 0.001, viper.GetFloat64("simulation.timeStep"))
	assert.Equal(t, 4, viper.GetInt("simulation.substeps"))
	assert.Equal(t, "euler", viper.GetString("simulation.method"))
	assert.Equal(t, false, viper.GetBool("simulation.adaptive"))
	assert.Equal(t, 8, viper.GetInt("solver.iterations"))
	assert.Equal(t, 0.2, viper.GetFloat64("solver.baumgarte"))
	assert.Equal(t, 0.005, viper.GetFloat64("solver.slop"))
	assert.Equal(t, true, viper.GetBool("solver.warmStart"))
	assert.Equal(t, "dry", viper.GetString("scene.surface"))
	assert.Equal(t, "passenger", viper.GetString("scene.vehicleClass"))
	assert.Equal(t, 100, viper.GetInt("sweep.runs"))
	assert.Equal(t, int64(1), viper.GetInt64("sweep.seed"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetString(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testKey", "testValue")
	assert.Equal(t, "testValue", GetString("testKey"))
}

func TestGetInt(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testInt", 42)
	assert.Equal(t, 42, GetInt("testInt"))
}

func TestGetBool(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("testBool", true)
	assert.Equal(t, true, GetBool("testBool"))
}

func TestGetSimulationConfig_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crashsim.cfg.json"), []byte(`{}`), 0644))
	require.NoError(t, Load(dir))

	sc := GetSimulationConfig()
	assert.Equal(t, -9.81, sc.Gravity)
	assert.Equal(t, 0.001, sc.TimeStep)
	assert.Equal(t, 4, sc.Substeps)
	assert.Equal(t, "euler", sc.Method)
	assert.Equal(t, false, sc.Adaptive)
	assert.Equal(t, 1e-5, sc.MinDt)
	assert.Equal(t, 0.01, sc.MaxDt)
	assert.Equal(t, 10.0, sc.MaxSimTime)
}

func TestGetSolverConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"solver": { "iterations": 20, "baumgarte": 0.1, "slop": 0.002, "warmStart": false }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crashsim.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	sc := GetSolverConfig()
	assert.Equal(t, 20, sc.Iterations)
	assert.Equal(t, 0.1, sc.Baumgarte)
	assert.Equal(t, 0.002, sc.Slop)
	assert.Equal(t, false, sc.WarmStart)
}

func TestGetSweepConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"sweep": { "runs": 500, "workers": 8, "seed": 1234 }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crashsim.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	sw := GetSweepConfig()
	assert.Equal(t, 500, sw.Runs)
	assert.Equal(t, 8, sw.Workers)
	assert.Equal(t, int64(1234), sw.Seed)
}

func TestGetSceneConfig_Override(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{ "scene": { "surface": "wet", "vehicleClass": "suv" } }`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crashsim.cfg.json"), []byte(cfg), 0644))
	require.NoError(t, Load(dir))

	sc := GetSceneConfig()
	assert.Equal(t, "wet", sc.Surface)
	assert.Equal(t, "suv", sc.VehicleClass)
}
