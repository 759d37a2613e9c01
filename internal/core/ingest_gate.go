package core

// ingest_gate.go serializes ingestions.
//
// Only one ingestion may run at a time. A second caller waits up to maxWait
// for the slot and then fails with ErrIngestBusy. WaitForDrain lets shutdown
// block until the running ingestion has finished.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrIngestBusy is returned when another ingestion holds the slot for longer
// than the configured wait.
var ErrIngestBusy = errors.New("ingestion in progress, too many uploads")

// DefaultMaxWaitTime is how long to wait for the slot before rejecting.
const DefaultMaxWaitTime = 10 * time.Second

// IngestGate is a single-slot semaphore.
type IngestGate struct {
	slot    chan struct{}
	maxWait time.Duration
	active  atomic.Int32
}

// NewIngestGate creates a gate. A non-positive maxWait uses the default.
func NewIngestGate(maxWait time.Duration) *IngestGate {
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}
	return &IngestGate{slot: make(chan struct{}, 1), maxWait: maxWait}
}

// Acquire takes the slot. The caller must call Release when done.
func (g *IngestGate) Acquire(ctx context.Context) error {
	timer := time.NewTimer(g.maxWait)
	defer timer.Stop()

	select {
	case g.slot <- struct{}{}:
		g.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrIngestBusy
	}
}

// Release frees the slot taken by Acquire.
func (g *IngestGate) Release() {
	g.active.Add(-1)
	<-g.slot
}

// Busy reports whether an ingestion currently holds the slot.
func (g *IngestGate) Busy() bool {
	return g.active.Load() > 0
}

// WaitForDrain blocks until no ingestion is running or ctx ends.
func (g *IngestGate) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if !g.Busy() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
