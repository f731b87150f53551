package recorder

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconlab/crashsim/internal/body"
	"github.com/reconlab/crashsim/internal/geom"
)

func newScene(t *testing.T) *body.State {
	t.Helper()
	s, err := body.NewState(0.01)
	require.NoError(t, err)
	for id := 1; id <= 2; id++ {
		b, err := body.NewDynamic(id, geom.Sphere{Radius: 0.5}, 1000)
		require.NoError(t, err)
		b.Position = mgl64.Vec3{float64(id), 0, 1}
		b.Velocity = mgl64.Vec3{3, 4, 0}
		b.Metadata["class"] = "passenger"
		require.NoError(t, s.AddBody(b))
	}
	return s
}

func TestRecord_BuildsSeriesPerBody(t *testing.T) {
	s := newScene(t)
	r := New()

	require.NoError(t, r.Record(s))
	s.Time = 0.01
	require.NoError(t, r.Record(s))

	rep := r.Report()
	assert.InDelta(t, 0.01, rep.Duration, 1e-12)
	require.Len(t, rep.Bodies, 2)
	assert.Equal(t, 1, rep.Bodies[0].ID)
	assert.Equal(t, 2, rep.Bodies[1].ID)
	for _, ser := range rep.Bodies {
		require.Len(t, ser.Samples, 2)
		assert.InDelta(t, 5.0, ser.Samples[0].Speed, 1e-12)
		assert.Equal(t, "passenger", ser.Metadata["class"])
	}
	require.Len(t, rep.Contacts, 2)
}

func TestReport_DetachedFromRecorder(t *testing.T) {
	s := newScene(t)
	r := New()
	require.NoError(t, r.Record(s))

	rep := r.Report()
	require.NoError(t, r.Record(s))

	assert.Len(t, rep.Bodies[0].Samples, 1)
	assert.Len(t, r.Report().Bodies[0].Samples, 2)
}

func TestReport_MarshalsToJSON(t *testing.T) {
	s := newScene(t)
	r := New()
	require.NoError(t, r.Record(s))

	data, err := json.Marshal(r.Report())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"duration"`)
	assert.Contains(t, string(data), `"samples"`)
}

func TestReport_Empty(t *testing.T) {
	rep := New().Report()
	assert.Empty(t, rep.Bodies)
	assert.Zero(t, rep.Duration)
}
