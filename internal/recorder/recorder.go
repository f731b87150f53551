// Package recorder collects per-body time series from a running simulation
// and assembles them into the report consumed by the reconstruction output.
package recorder

import (
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/reconlab/crashsim/internal/body"
)

// Sample is one body's kinematic state at a sampled time.
type Sample struct {
	Time     float64    `json:"time"`
	Position mgl64.Vec3 `json:"position"`
	Velocity mgl64.Vec3 `json:"velocity"`
	Speed    float64    `json:"speed"`
}

// BodySeries groups one body with its sampled trajectory.
type BodySeries struct {
	ID       int               `json:"id"`
	Static   bool              `json:"static"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Samples  []Sample          `json:"samples"`
}

// ContactSample counts live contacts at a sampled time.
type ContactSample struct {
	Time  float64 `json:"time"`
	Count int     `json:"count"`
}

// Report is the assembled output of a recorded simulation.
type Report struct {
	Duration float64         `json:"duration"`
	Bodies   []BodySeries    `json:"bodies"`
	Contacts []ContactSample `json:"contacts"`
}

// Recorder accumulates samples. Safe for use from a single stepping loop;
// the mutex covers concurrent Report calls while stepping continues.
type Recorder struct {
	mu       sync.RWMutex
	series   map[int]*BodySeries
	contacts []ContactSample
	duration float64
}

// New creates an empty recorder.
func New() *Recorder {
	return &Recorder{series: make(map[int]*BodySeries)}
}

// Record samples the current state. Bodies are registered on first sight;
// metadata is copied from the snapshot, which owns its own maps.
func (r *Recorder) Record(s *body.State) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.duration = snap.Time
	for _, bs := range snap.Bodies {
		ser, ok := r.series[bs.ID]
		if !ok {
			ser = &BodySeries{ID: bs.ID, Static: bs.Static, Metadata: bs.Metadata}
			r.series[bs.ID] = ser
		}
		ser.Samples = append(ser.Samples, Sample{
			Time:     snap.Time,
			Position: bs.Position,
			Velocity: bs.Velocity,
			Speed:    bs.Velocity.Len(),
		})
	}
	r.contacts = append(r.contacts, ContactSample{Time: snap.Time, Count: len(s.Contacts)})
	return nil
}

// Report assembles the collected series, ordered by body id.
func (r *Recorder) Report() Report {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep := Report{
		Duration: r.duration,
		Bodies:   make([]BodySeries, 0, len(r.series)),
		Contacts: append([]ContactSample(nil), r.contacts...),
	}
	for _, ser := range r.series {
		cp := *ser
		cp.Samples = append([]Sample(nil), ser.Samples...)
		rep.Bodies = append(rep.Bodies, cp)
	}
	sort.Slice(rep.Bodies, func(i, j int) bool { return rep.Bodies[i].ID < rep.Bodies[j].ID })
	return rep
}
