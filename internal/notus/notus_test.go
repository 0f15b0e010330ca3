package notus

import (
	"testing"
	"time"
)

func TestWriteAndProcessBatch(t *testing.T) {
	var got []int
	n, err := NewBuilder[int](8).
		WithProcessor(func(v *int) { got = append(got, *v) }).
		WithBatchSize(8).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	for i := 1; i <= 4; i++ {
		v := i
		if !n.Write(func(slot *int) { *slot = v }) {
			t.Fatalf("Write(%d) returned false", v)
		}
	}
	n.Flush()

	processed := n.ProcessBatch()
	if processed != 4 {
		t.Errorf("ProcessBatch() = %d, want 4", processed)
	}
	want := []int{1, 2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestWriteFailsWhenClosed(t *testing.T) {
	n, err := NewBuilder[int](4).
		WithProcessor(func(*int) {}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	n.Close()
	if n.Write(func(slot *int) { *slot = 1 }) {
		t.Error("expected Write to fail after Close")
	}
}

func TestLoopProcessDrainsAllWrites(t *testing.T) {
	count := 0
	n, err := NewBuilder[int](16).
		WithProcessor(func(*int) { count++ }).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	done := make(chan struct{})
	go func() {
		n.LoopProcess()
		close(done)
	}()

	for i := 0; i < 10; i++ {
		for !n.Write(func(slot *int) { *slot = i }) {
		}
	}
	n.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for LoopProcess to exit")
	}
	if count != 10 {
		t.Errorf("count = %d, want 10", count)
	}
}

func TestStatsReportsBufferedItems(t *testing.T) {
	n, err := NewBuilder[int](8).
		WithProcessor(func(*int) {}).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	n.Write(func(slot *int) { *slot = 1 })
	n.Write(func(slot *int) { *slot = 2 })
	n.Flush()

	stats := n.Stats()
	if stats["items_buffered"] != 2 {
		t.Errorf("items_buffered = %d, want 2", stats["items_buffered"])
	}
	if stats["buffer_size"] != 8 {
		t.Errorf("buffer_size = %d, want 8", stats["buffer_size"])
	}
}
