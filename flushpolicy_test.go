package elog

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFlushImmediateAndNever(t *testing.T) {
	if !FlushImmediate.ShouldFlush(&Record{}) {
		t.Error("FlushImmediate should always flush")
	}
	if FlushNever.ShouldFlush(&Record{}) {
		t.Error("FlushNever should never flush")
	}
}

func TestFlushCountEvery(t *testing.T) {
	p := FlushCountEvery(3)
	rec := &Record{}
	results := []bool{
		p.ShouldFlush(rec),
		p.ShouldFlush(rec),
		p.ShouldFlush(rec),
		p.ShouldFlush(rec),
	}
	want := []bool{false, false, true, false}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("call %d = %v, want %v", i, results[i], want[i])
		}
	}
}

func TestFlushCountEveryConcurrentCallsFireExactlyOncePerThreshold(t *testing.T) {
	const goroutines = 20
	const perGoroutine = 500
	const n = 5

	p := FlushCountEvery(n)
	rec := &Record{}
	var fires int64
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				if p.ShouldFlush(rec) {
					atomic.AddInt64(&fires, 1)
				}
			}
		}()
	}
	wg.Wait()

	want := int64(goroutines * perGoroutine / n)
	if fires != want {
		t.Errorf("fires = %d, want exactly %d (floor(total/n), no double-fires under contention)", fires, want)
	}
}

func TestFlushCountEveryMinimumOne(t *testing.T) {
	p := FlushCountEvery(0)
	if !p.ShouldFlush(&Record{}) {
		t.Error("FlushCountEvery(0) should behave like every record (n clamped to 1)")
	}
}

func TestSizeFlushAccumulate(t *testing.T) {
	p := FlushSizeEvery(100)
	sf := p.(*sizeFlush)
	if sf.Accumulate(50) {
		t.Error("50 bytes should not yet cross a 100-byte threshold")
	}
	if !sf.Accumulate(60) {
		t.Error("110 accumulated bytes should cross a 100-byte threshold")
	}
	// ShouldFlush itself never fires for sizeFlush; only Accumulate does.
	if sf.ShouldFlush(&Record{}) {
		t.Error("sizeFlush.ShouldFlush should always report false")
	}
}

func TestSizeFlushImplementsAccumulator(t *testing.T) {
	p := FlushSizeEvery(10)
	if _, ok := p.(flushAccumulator); !ok {
		t.Fatal("FlushSizeEvery should return a flushAccumulator")
	}
}

func TestFlushTimerEvery(t *testing.T) {
	p := FlushTimerEvery(10 * time.Millisecond)
	if p.ShouldFlush(&Record{}) {
		t.Error("should not flush immediately after construction")
	}
	time.Sleep(15 * time.Millisecond)
	if !p.ShouldFlush(&Record{}) {
		t.Error("should flush once the interval has elapsed")
	}
	if p.ShouldFlush(&Record{}) {
		t.Error("should not flush again immediately after resetting")
	}
}

func TestFlushAnd(t *testing.T) {
	always := FlushImmediate
	never := FlushNever
	p := FlushAnd(always, never)
	if p.ShouldFlush(&Record{}) {
		t.Error("AND of true and false should be false")
	}
	p2 := FlushAnd(always, always)
	if !p2.ShouldFlush(&Record{}) {
		t.Error("AND of true and true should be true")
	}
}

func TestFlushAndEmpty(t *testing.T) {
	p := FlushAnd()
	if p.ShouldFlush(&Record{}) {
		t.Error("AND with no children should be false")
	}
}

func TestFlushOr(t *testing.T) {
	p := FlushOr(FlushNever, FlushImmediate)
	if !p.ShouldFlush(&Record{}) {
		t.Error("OR of false and true should be true")
	}
	p2 := FlushOr(FlushNever, FlushNever)
	if p2.ShouldFlush(&Record{}) {
		t.Error("OR of false and false should be false")
	}
}

func TestFlushOrEvaluatesAllChildren(t *testing.T) {
	// Both count policies must advance even if the first already returns true,
	// since OR must not short-circuit side-effecting policies.
	c1 := FlushCountEvery(1)
	c2 := FlushCountEvery(2)
	p := FlushOr(c1, c2)

	rec := &Record{}
	p.ShouldFlush(rec) // c1 fires (count 1), c2 advances to count 1
	got := p.ShouldFlush(rec)
	if !got {
		t.Error("expected c1 to fire again on the second call")
	}
	if n := atomic.LoadInt64(&c2.(*countFlush).counter); n != 2 {
		t.Errorf("c2 counter = %d, want 2 (evaluated on both calls)", n)
	}
}
