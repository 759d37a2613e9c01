// Package animation models the progressive reveal of a category breakdown.
//
// A Sequencer is a small state machine (Idle → Running → Complete) that is
// advanced by an external clock. It never blocks and never does I/O, so it
// can be ticked from a timer, a render loop or a test.
package animation

import (
	"fmt"
	"math"
	"sync"
)

// Tunables for the reveal. The step and cadence are defaults only; callers
// pass their own step to Tick.
const (
	DefaultStep      = 0.04
	LabelThreshold   = 0.8
	PercentThreshold = 0.9

	// snapEpsilon absorbs float drift when summing many small steps.
	snapEpsilon = 1e-9
)

// Phase is the lifecycle stage of a sequence.
type Phase int

const (
	Idle Phase = iota
	Running
	Complete
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Complete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "idle":
		*p = Idle
	case "running":
		*p = Running
	case "complete":
		*p = Complete
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// Target is the final count for one category.
type Target struct {
	Category string
	Count    int
}

// Slice is one category's share of a frame.
type Slice struct {
	Category string  `json:"category"`
	Target   int     `json:"target"`
	Value    float64 `json:"value"`   // Target scaled by progress
	Count    int     `json:"count"`   // Value rounded to the nearest unit
	Percent  float64 `json:"percent"` // share of the final total, 0-100
}

// Frame is an immutable snapshot of the reveal.
type Frame struct {
	Generation         uint64  `json:"generation"`
	Phase              Phase   `json:"phase"`
	Progress           float64 `json:"progress"`
	Slices             []Slice `json:"slices"`
	LabelsVisible      bool    `json:"labels_visible"`
	PercentagesVisible bool    `json:"percentages_visible"`
}

// Sequencer drives one view's reveal. Safe for concurrent use; Start from
// the ingest path and Tick from a timer may interleave.
type Sequencer struct {
	mu         sync.RWMutex
	targets    []Target
	total      int
	progress   float64
	phase      Phase
	generation uint64
}

// NewSequencer returns an idle sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Start supersedes any sequence in flight and begins revealing targets from
// zero. It returns the generation number of the new sequence.
func (s *Sequencer) Start(targets []Target) uint64 {
	cp := make([]Target, len(targets))
	copy(cp, targets)

	total := 0
	for _, t := range cp {
		total += t.Count
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.targets = cp
	s.total = total
	s.progress = 0
	s.phase = Running
	s.generation++
	return s.generation
}

// Tick advances a running sequence by step, clamped to 1. It reports whether
// progress changed. Ticks on an idle or complete sequence, and non-positive
// steps, are ignored.
func (s *Sequencer) Tick(step float64) bool {
	if step <= 0 || math.IsNaN(step) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != Running {
		return false
	}

	next := s.progress + step
	if next >= 1-snapEpsilon {
		next = 1
		s.phase = Complete
	}
	s.progress = next
	return true
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Progress returns the fraction revealed, in [0, 1].
func (s *Sequencer) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// CurrentFrame scales every target by the same progress factor, so the
// relative proportions only reach their true values at progress 1.
func (s *Sequencer) CurrentFrame() Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := Frame{
		Generation:         s.generation,
		Phase:              s.phase,
		Progress:           s.progress,
		Slices:             make([]Slice, len(s.targets)),
		LabelsVisible:      s.progress > LabelThreshold,
		PercentagesVisible: s.progress > PercentThreshold,
	}

	for i, t := range s.targets {
		value := float64(t.Count) * s.progress
		sl := Slice{
			Category: t.Category,
			Target:   t.Count,
			Value:    value,
			Count:    int(math.Round(value)),
		}
		if s.total > 0 {
			sl.Percent = float64(t.Count) / float64(s.total) * 100
		}
		f.Slices[i] = sl
	}
	return f
}
