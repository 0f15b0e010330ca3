package elog

import (
	"testing"
	"time"
)

func TestQuantumTargetDeliversToInner(t *testing.T) {
	inner := &recordingTarget{}
	q, err := NewQuantumTarget(1, inner, QuantumOptions{Capacity: 16, BatchSize: 4})
	if err != nil {
		t.Fatalf("NewQuantumTarget: %v", err)
	}
	defer q.Close()

	for i := 0; i < 5; i++ {
		q.Submit(&Record{Message: "m"})
	}
	q.Flush()

	if got := inner.count(); got != 5 {
		t.Errorf("inner received %d records, want 5", got)
	}
}

func TestQuantumTargetDefaultsAppliedForZeroOptions(t *testing.T) {
	inner := &recordingTarget{}
	q, err := NewQuantumTarget(1, inner, QuantumOptions{})
	if err != nil {
		t.Fatalf("NewQuantumTarget: %v", err)
	}
	defer q.Close()
	q.Submit(&Record{Message: "m"})
	q.Flush()
	if inner.count() != 1 {
		t.Error("expected the single submitted record to reach inner")
	}
}

func TestQuantumTargetBlockOnFullDoesNotDropUnderSlowConsumer(t *testing.T) {
	inner := &recordingTarget{}
	q, err := NewQuantumTarget(1, inner, QuantumOptions{Capacity: 2, BatchSize: 1, Block: true})
	if err != nil {
		t.Fatalf("NewQuantumTarget: %v", err)
	}
	defer q.Close()

	for i := 0; i < 20; i++ {
		q.Submit(&Record{Message: "m"})
	}
	q.Flush()
	time.Sleep(10 * time.Millisecond)
	if got := inner.count(); got != 20 {
		t.Errorf("inner received %d records, want 20 (BlockOnFull should never drop)", got)
	}
}

// gatedTarget blocks every Submit until release is closed, letting a test
// hold the ring's consumer goroutine still so the ring fills up on a known
// schedule.
type gatedTarget struct {
	recordingTarget
	release chan struct{}
}

func (g *gatedTarget) Submit(rec *Record) {
	<-g.release
	g.recordingTarget.Submit(rec)
}

// TestQuantumTargetDiscardAllDropsBacklogUntilClear exercises the
// discard-all congestion policy against the default (discard only the
// record that didn't fit): once the ring is observed full, DiscardAll must
// drop every subsequent submission, including ones that would otherwise
// have fit, until the backlog fully drains rather than resuming after the
// very next successful write.
func TestQuantumTargetDiscardAllDropsBacklogUntilClear(t *testing.T) {
	gate := make(chan struct{})
	inner := &gatedTarget{release: gate}
	q, err := NewQuantumTarget(1, inner, QuantumOptions{Capacity: 2, BatchSize: 1, DiscardAll: true})
	if err != nil {
		t.Fatalf("NewQuantumTarget: %v", err)
	}

	// The consumer is blocked on gate, so these quickly overrun the
	// 2-slot ring and trip discarding.
	for i := 0; i < 20; i++ {
		q.Submit(&Record{Message: "first-wave"})
	}
	time.Sleep(10 * time.Millisecond)

	// While still blocked and discarding, nothing submitted now should
	// reach inner even once the processor briefly frees a slot, since
	// discard-all only resets once the backlog is fully empty.
	for i := 0; i < 20; i++ {
		q.Submit(&Record{Message: "second-wave"})
	}
	time.Sleep(10 * time.Millisecond)

	close(gate)
	time.Sleep(20 * time.Millisecond)
	q.Close()

	got := inner.count()
	if got >= 40 {
		t.Errorf("inner received %d records, want well under 40 (discard-all should drop the backlog, not just overflow)", got)
	}
}

func TestQuantumTargetCloseClosesInner(t *testing.T) {
	inner := &recordingTarget{}
	q, err := NewQuantumTarget(1, inner, QuantumOptions{Capacity: 4})
	if err != nil {
		t.Fatalf("NewQuantumTarget: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
