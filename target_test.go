package elog

import "testing"

func TestBaseTargetAcceptsGatesByLevel(t *testing.T) {
	b := newBaseTarget(1, Warn, "test", NativelyThreadSafe)
	if b.accepts(&Record{Level: Info}) {
		t.Error("Info should be rejected below a Warn gate")
	}
	if !b.accepts(&Record{Level: Error}) {
		t.Error("Error should pass a Warn gate")
	}
}

func TestBaseTargetAcceptsSentinelAlwaysPasses(t *testing.T) {
	b := newBaseTarget(1, Fatal, "test", NativelyThreadSafe)
	rec := &Record{Control: RecordFlush}
	if !b.accepts(rec) {
		t.Error("sentinel records should always pass the level gate")
	}
}

func TestBaseTargetStats(t *testing.T) {
	b := newBaseTarget(1, Info, "test", NativelyThreadSafe)
	b.accepts(&Record{Level: Debug})
	b.accepts(&Record{Level: Error})
	b.accepts(&Record{Level: Warn})
	accepted, dropped, _ := b.Stats()
	if accepted != 2 {
		t.Errorf("accepted = %d, want 2", accepted)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestBaseTargetSetMinLevel(t *testing.T) {
	b := newBaseTarget(1, Info, "test", NativelyThreadSafe)
	b.SetMinLevel(Error)
	if b.MinLevel() != Error {
		t.Errorf("MinLevel() = %v, want Error", b.MinLevel())
	}
	if b.accepts(&Record{Level: Warn}) {
		t.Error("Warn should now be rejected after raising the gate to Error")
	}
}

func TestBaseTargetID(t *testing.T) {
	b := newBaseTarget(7, Info, "test", NativelyThreadSafe)
	if b.ID() != 7 {
		t.Errorf("ID() = %d, want 7", b.ID())
	}
}

func TestBaseTargetThreadSafety(t *testing.T) {
	b := newBaseTarget(1, Info, "test", RequiresLock)
	if b.ThreadSafety() != RequiresLock {
		t.Errorf("ThreadSafety() = %v, want RequiresLock", b.ThreadSafety())
	}
	if got := RequiresLock.String(); got != "requires-lock" {
		t.Errorf("RequiresLock.String() = %q, want %q", got, "requires-lock")
	}
}

func TestBaseTargetRejectIfNotLiveBeforeStart(t *testing.T) {
	b := newBaseTarget(1, Info, "test", NativelyThreadSafe)
	if !b.rejectIfNotLive() {
		t.Error("expected Submit to be rejected before Start")
	}
	if err := b.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if b.rejectIfNotLive() {
		t.Error("expected Submit to be accepted once started")
	}
}

func TestBaseTargetRejectIfNotLiveAfterStop(t *testing.T) {
	b := newBaseTarget(1, Info, "test", NativelyThreadSafe)
	if err := b.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	b.stop()
	if !b.rejectIfNotLive() {
		t.Error("expected Submit to be rejected after stop")
	}
}

func TestBaseTargetStartIsIdempotent(t *testing.T) {
	b := newBaseTarget(1, Info, "test", NativelyThreadSafe)
	if err := b.start(); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if err := b.start(); err != nil {
		t.Fatalf("second start: %v", err)
	}
}

func TestBaseTargetStartAfterStopFails(t *testing.T) {
	b := newBaseTarget(1, Info, "test", NativelyThreadSafe)
	if err := b.start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	b.stop()
	if err := b.start(); err == nil {
		t.Error("expected start after stop to fail")
	}
}

func TestBaseTargetCaughtUpAndBacklog(t *testing.T) {
	b := newBaseTarget(1, Info, "test", NativelyThreadSafe)
	if !b.CaughtUp() {
		t.Error("a fresh target with nothing written should be caught up")
	}
	b.noteWrite()
	b.noteWrite()
	b.noteWrite()
	if b.CaughtUp() {
		t.Error("expected the target to be behind after writes with no reads")
	}
	if got := b.Backlog(); got != 3 {
		t.Errorf("Backlog() = %d, want 3", got)
	}
	b.noteRead()
	if got := b.Backlog(); got != 2 {
		t.Errorf("Backlog() = %d, want 2", got)
	}
	b.noteRead()
	b.noteRead()
	if !b.CaughtUp() {
		t.Error("expected the target to be caught up once reads match writes")
	}
	if got := b.Backlog(); got != 0 {
		t.Errorf("Backlog() = %d, want 0", got)
	}
}

func TestIsCaughtUp(t *testing.T) {
	cases := []struct {
		write, read uint64
		want        bool
	}{
		{0, 0, true},
		{5, 5, true},
		{5, 3, false},
		{3, 5, true},
	}
	for _, c := range cases {
		if got := IsCaughtUp(c.write, c.read); got != c.want {
			t.Errorf("IsCaughtUp(%d, %d) = %v, want %v", c.write, c.read, got, c.want)
		}
	}
}
