package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestNew_CreatesAllInstruments(t *testing.T) {
	m, err := New(noop.Meter{})
	require.NoError(t, err)
	assert.NotNil(t, m.Steps)
	assert.NotNil(t, m.Substeps)
	assert.NotNil(t, m.Contacts)
	assert.NotNil(t, m.NonConvergence)
	assert.NotNil(t, m.StepSeconds)
}

func TestNoop_RecordsWithoutPanic(t *testing.T) {
	m := Noop()
	ctx := context.Background()
	m.Steps.Add(ctx, 1)
	m.Contacts.Add(ctx, 12)
	m.StepSeconds.Record(ctx, 0.016)
}
