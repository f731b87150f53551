package body

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"

	"github.com/reconlab/crashsim/internal/narrowphase"
)

// ErrDuplicateBody is returned when a body id is inserted twice.
var ErrDuplicateBody = errors.New("body id already present")

// ErrInvalidStep is returned for a non-positive fixed step size.
var ErrInvalidStep = errors.New("step size must be positive")

// ErrUnknownBody is returned when an id is not in the state.
var ErrUnknownBody = errors.New("unknown body id")

// State is the authoritative simulation state: the full body arena keyed by
// id, the clock, and the most recent contact list. It has a single owner and
// is advanced synchronously; contacts reference bodies by id so the contact
// list never aliases the arena.
type State struct {
	Time float64
	Step float64

	Paused bool

	// Contacts from the most recent step, ordered by canonical pair.
	Contacts []narrowphase.Contact

	bodies map[int]*RigidBody
	ids    []int // sorted; kept in sync with bodies
}

// NewState creates an empty state with the given fixed step size.
func NewState(step float64) (*State, error) {
	if step <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidStep, step)
	}
	return &State{
		Step:   step,
		bodies: make(map[int]*RigidBody),
	}, nil
}

// AddBody inserts a body into the arena. The state takes ownership.
func (s *State) AddBody(b *RigidBody) error {
	if _, exists := s.bodies[b.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateBody, b.ID)
	}
	s.bodies[b.ID] = b
	i := sort.SearchInts(s.ids, b.ID)
	s.ids = append(s.ids, 0)
	copy(s.ids[i+1:], s.ids[i:])
	s.ids[i] = b.ID
	return nil
}

// RemoveBody deletes a body from the arena.
func (s *State) RemoveBody(id int) error {
	if _, exists := s.bodies[id]; !exists {
		return fmt.Errorf("%w: %d", ErrUnknownBody, id)
	}
	delete(s.bodies, id)
	i := sort.SearchInts(s.ids, id)
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	return nil
}

// Body looks up a body by id. The non-owning lookup used by contacts.
func (s *State) Body(id int) (*RigidBody, bool) {
	b, ok := s.bodies[id]
	return b, ok
}

// Len returns the number of bodies.
func (s *State) Len() int { return len(s.ids) }

// IDs returns the body ids in ascending order.
func (s *State) IDs() []int {
	out := make([]int, len(s.ids))
	copy(out, s.ids)
	return out
}

// ForEach visits every body in ascending id order. Iteration order is part
// of the reproducibility contract.
func (s *State) ForEach(fn func(*RigidBody)) {
	for _, id := range s.ids {
		fn(s.bodies[id])
	}
}

// BodySnapshot is one body's kinematic state at a point in time.
type BodySnapshot struct {
	ID              int
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Static          bool
	Metadata        map[string]string
}

// Snapshot is a point-in-time copy of the state for consumption by
// persistence and reporting collaborators. It shares no memory with the
// live state.
type Snapshot struct {
	Time   float64
	Bodies []BodySnapshot
}

// Snapshot copies the current kinematic state. Metadata maps are deep-copied
// so downstream consumers cannot race the live arena.
func (s *State) Snapshot() (Snapshot, error) {
	snap := Snapshot{Time: s.Time, Bodies: make([]BodySnapshot, 0, len(s.ids))}
	for _, id := range s.ids {
		b := s.bodies[id]
		bs := BodySnapshot{
			ID:              b.ID,
			Position:        b.Position,
			Orientation:     b.Orientation,
			Velocity:        b.Velocity,
			AngularVelocity: b.AngularVelocity,
			Static:          b.Static,
		}
		// copier handles the nested map without sharing storage
		if err := copier.CopyWithOption(&bs.Metadata, b.Metadata, copier.Option{DeepCopy: true}); err != nil {
			return Snapshot{}, fmt.Errorf("copying metadata for body %d: %w", id, err)
		}
		snap.Bodies = append(snap.Bodies, bs)
	}
	return snap, nil
}
