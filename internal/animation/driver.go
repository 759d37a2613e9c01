package animation

import (
	"context"
	"time"
)

// DefaultInterval is the wall-clock cadence between ticks.
const DefaultInterval = 35 * time.Millisecond

// Driver ticks a Sequencer on a fixed cadence. It is the scheduling half of
// the reveal; the Sequencer holds the logic.
type Driver struct {
	seq      *Sequencer
	step     float64
	interval time.Duration

	// OnFrame, if set, receives the frame after every tick that moved progress.
	// It runs on the driver goroutine and must not block.
	OnFrame func(Frame)
}

// NewDriver creates a driver. Non-positive values fall back to the defaults.
func NewDriver(seq *Sequencer, step float64, interval time.Duration) *Driver {
	if step <= 0 {
		step = DefaultStep
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Driver{seq: seq, step: step, interval: interval}
}

// Run ticks until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if d.seq.Tick(d.step) && d.OnFrame != nil {
				d.OnFrame(d.seq.CurrentFrame())
			}
		}
	}
}
