package elog

import (
	"testing"
	"time"
)

func TestTimeCacheNowAdvances(t *testing.T) {
	tc := newTimeCache(time.Millisecond)
	defer tc.stop()

	first := tc.Now()
	time.Sleep(5 * time.Millisecond)
	second := tc.Now()
	if second <= first {
		t.Errorf("expected the cached clock to advance: %d then %d", first, second)
	}
}

func TestTimeCacheFormatStringLayout(t *testing.T) {
	tc := newTimeCache(time.Second)
	defer tc.stop()

	nanos := time.Date(2024, 3, 15, 9, 30, 45, 123_000_000, time.UTC).UnixNano()
	got := tc.FormatString(nanos, true)
	want := "2024-03-15 09:30:45.123"
	if got != want {
		t.Errorf("FormatString() = %q, want %q", got, want)
	}
}

func TestTimeCacheFormatStringReusesWithinSameSecond(t *testing.T) {
	tc := newTimeCache(time.Second)
	defer tc.stop()

	base := time.Date(2024, 3, 15, 9, 30, 45, 100_000_000, time.UTC).UnixNano()
	first := tc.FormatString(base, true)
	second := tc.FormatString(base+200_000_000, true) // same whole second, +200ms
	if first == second {
		t.Error("expected the millisecond component to differ between the two calls")
	}
	if second != "2024-03-15 09:30:45.300" {
		t.Errorf("FormatString() = %q, want %q", second, "2024-03-15 09:30:45.300")
	}
}

func TestTimeCacheFormatStringCrossesSecondBoundary(t *testing.T) {
	tc := newTimeCache(time.Second)
	defer tc.stop()

	first := time.Date(2024, 3, 15, 9, 30, 45, 900_000_000, time.UTC).UnixNano()
	second := time.Date(2024, 3, 15, 9, 30, 46, 0, time.UTC).UnixNano()
	got1 := tc.FormatString(first, true)
	got2 := tc.FormatString(second, true)
	if got1 == got2 {
		t.Error("expected distinct renders across a second boundary")
	}
	if got2 != "2024-03-15 09:30:46.000" {
		t.Errorf("FormatString() = %q, want %q", got2, "2024-03-15 09:30:46.000")
	}
}

func TestCachedTimeNanoTracksGlobalCache(t *testing.T) {
	if CachedTimeNano() <= 0 {
		t.Error("expected a positive cached timestamp")
	}
}

func TestMillisPatchReplacesLastThreeDigits(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 456_000_000, time.UTC)
	got := millisPatch("2024-01-01 00:00:00.000", t0)
	if got != "2024-01-01 00:00:00.456" {
		t.Errorf("millisPatch() = %q, want %q", got, "2024-01-01 00:00:00.456")
	}
}
