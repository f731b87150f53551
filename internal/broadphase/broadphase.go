// Package broadphase finds candidate collision pairs by AABB overlap.
//
// The broad phase may report false positives (the narrow phase discards them)
// but must never miss a truly overlapping pair. Fast-moving bodies get their boxes
// swept along the per-step displacement so they cannot tunnel through.
package broadphase

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/reconlab/crashsim/internal/geom"
)

// Pair is a canonically ordered pair of body ids (A < B). Canonical ordering
// deduplicates candidates and fixes the contact resolution order, which keeps
// repeated runs bit-for-bit reproducible.
type Pair struct {
	A, B int
}

// NewPair returns the canonical pair for two body ids.
func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Less orders pairs by (A, B) for deterministic iteration.
func (p Pair) Less(o Pair) bool {
	if p.A != o.A {
		return p.A < o.A
	}
	return p.B < o.B
}

// Entry is one body's broad-phase view: its id, current bounds, and the
// displacement it covered during the last step.
type Entry struct {
	ID           int
	Bounds       geom.AABB
	Displacement mgl64.Vec3
	Static       bool
}

// Detector produces overlap candidates. Implementations must return pairs in
// canonical order, sorted, with no duplicates, and must not miss any pair of
// entries whose (expanded) bounds overlap.
type Detector interface {
	Pairs(entries []Entry) []Pair
}

// BruteForce tests every pair of entries, O(n²). Fine for reconstruction
// scenes of a handful of vehicles; swap in sweep-and-prune behind Detector
// if scenes grow.
type BruteForce struct {
	// Margin expands every box by a constant slop on all sides.
	Margin float64

	// SweepThreshold is the fraction of a body's size its displacement must
	// exceed before the box is swept along the motion. Zero means sweep any
	// non-trivial motion.
	SweepThreshold float64
}

// Pairs implements Detector.
func (bf BruteForce) Pairs(entries []Entry) []Pair {
	boxes := make([]geom.AABB, len(entries))
	for i, e := range entries {
		box := e.Bounds
		if bf.shouldSweep(e) {
			box = box.Swept(e.Displacement)
		}
		if bf.Margin > 0 {
			box = box.Expanded(bf.Margin)
		}
		boxes[i] = box
	}

	var pairs []Pair
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].Static && entries[j].Static {
				continue
			}
			if boxes[i].Overlaps(boxes[j]) {
				pairs = append(pairs, NewPair(entries[i].ID, entries[j].ID))
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Less(pairs[j]) })
	return pairs
}

func (bf BruteForce) shouldSweep(e Entry) bool {
	if e.Static {
		return false
	}
	d := e.Displacement.Len()
	if d == 0 {
		return false
	}
	return d > bf.SweepThreshold*e.Bounds.LongestSide()
}
