package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIngestGate_AcquireRelease(t *testing.T) {
	gate := NewIngestGate(time.Second)

	if gate.Busy() {
		t.Error("new gate is busy")
	}
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !gate.Busy() {
		t.Error("Busy() = false after Acquire")
	}

	gate.Release()
	if gate.Busy() {
		t.Error("Busy() = true after Release")
	}
}

func TestIngestGate_SecondCallerTimesOut(t *testing.T) {
	gate := NewIngestGate(20 * time.Millisecond)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer gate.Release()

	start := time.Now()
	err := gate.Acquire(context.Background())
	if !errors.Is(err, ErrIngestBusy) {
		t.Fatalf("second Acquire error = %v, want ErrIngestBusy", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("second Acquire returned after %v, want >= 20ms", elapsed)
	}
}

func TestIngestGate_SecondCallerQueues(t *testing.T) {
	gate := NewIngestGate(time.Second)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	acquired := make(chan error, 1)
	go func() { acquired <- gate.Acquire(context.Background()) }()

	select {
	case <-acquired:
		t.Fatal("second Acquire succeeded while slot was held")
	case <-time.After(20 * time.Millisecond):
	}

	gate.Release()
	if err := <-acquired; err != nil {
		t.Fatalf("queued Acquire failed: %v", err)
	}
	gate.Release()
}

func TestIngestGate_ContextCancelled(t *testing.T) {
	gate := NewIngestGate(time.Second)
	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	defer gate.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := gate.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Acquire error = %v, want context.Canceled", err)
	}
}

func TestIngestGate_WaitForDrain(t *testing.T) {
	gate := NewIngestGate(time.Second)
	if err := gate.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("WaitForDrain on idle gate: %v", err)
	}

	if err := gate.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := gate.WaitForDrain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain error = %v, want DeadlineExceeded", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		gate.Release()
	}()
	if err := gate.WaitForDrain(context.Background()); err != nil {
		t.Errorf("WaitForDrain failed: %v", err)
	}
}
