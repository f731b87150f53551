// Package telemetry defines the OpenTelemetry instruments recorded by the
// simulation engine. Callers that do not configure a meter provider get
// no-op instruments.
package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metrics bundles the engine's instruments.
type Metrics struct {
	Steps          metric.Int64Counter
	Substeps       metric.Int64Counter
	Contacts       metric.Int64Counter
	NonConvergence metric.Int64Counter
	StepSeconds    metric.Float64Histogram
}

// New creates the instrument set on the given meter.
func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.Steps, err = meter.Int64Counter("crashsim.steps",
		metric.WithDescription("completed outer simulation steps")); err != nil {
		return nil, fmt.Errorf("creating step counter: %w", err)
	}
	if m.Substeps, err = meter.Int64Counter("crashsim.substeps",
		metric.WithDescription("integration substeps, adaptive subdivisions included")); err != nil {
		return nil, fmt.Errorf("creating substep counter: %w", err)
	}
	if m.Contacts, err = meter.Int64Counter("crashsim.contacts",
		metric.WithDescription("narrow-phase contacts resolved")); err != nil {
		return nil, fmt.Errorf("creating contact counter: %w", err)
	}
	if m.NonConvergence, err = meter.Int64Counter("crashsim.solver_nonconvergence",
		metric.WithDescription("steps where the contact solver hit its iteration cap")); err != nil {
		return nil, fmt.Errorf("creating non-convergence counter: %w", err)
	}
	if m.StepSeconds, err = meter.Float64Histogram("crashsim.step_seconds",
		metric.WithDescription("wall time per outer step"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("creating step histogram: %w", err)
	}
	return m, nil
}

// Noop returns instruments that record nothing.
func Noop() *Metrics {
	m, _ := New(noop.Meter{})
	return m
}
