// timecache.go: cheap monotonic-wall fused timestamp with a string cache
//
// Grounded on a background-ticker cached-time design, extended with a
// formatted-string cache: re-formatting "YYYY-MM-DD HH:MM:SS.mmm" on every
// record would dwarf the cost of everything else on the hot path.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync"
	"sync/atomic"
	"time"
)

// TimeStringFormat is the external time-string format exchanged at
// configuration and transport boundaries.
const TimeStringFormat = "2006-01-02 15:04:05.000"

// timeCache maintains a coarse wall-clock reading refreshed by a background
// goroutine, plus the last pre-rendered string for that reading. Records
// take their timestamp from this cached reading (CachedTimeNano), so it is
// only as precise as the refresh interval; the string cache exists so that
// repeated formatting of close-together timestamps reuses one render.
type timeCache struct {
	nanos    int64
	mu       sync.Mutex
	lastSec  int64
	lastStr  string
	lastUTC  string
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
}

var globalTimeCache = newTimeCache(500 * time.Microsecond)

func newTimeCache(resolution time.Duration) *timeCache {
	tc := &timeCache{
		nanos:  time.Now().UnixNano(),
		ticker: time.NewTicker(resolution),
		stopCh: make(chan struct{}),
	}
	go tc.loop()
	return tc
}

func (tc *timeCache) loop() {
	for {
		select {
		case <-tc.ticker.C:
			atomic.StoreInt64(&tc.nanos, time.Now().UnixNano())
		case <-tc.stopCh:
			tc.ticker.Stop()
			return
		}
	}
}

func (tc *timeCache) stop() {
	tc.stopOnce.Do(func() { close(tc.stopCh) })
}

// Now returns the cached wall-clock reading in nanoseconds since the epoch.
func (tc *timeCache) Now() int64 {
	return atomic.LoadInt64(&tc.nanos)
}

// FormatString renders nanos in TimeStringFormat, reusing the last render
// when nanos falls within the same whole second (local time) or the same
// second in UTC, whichever utc selects.
func (tc *timeCache) FormatString(nanos int64, utc bool) string {
	t := time.Unix(0, nanos)
	if utc {
		t = t.UTC()
	}
	sec := t.Unix()

	tc.mu.Lock()
	defer tc.mu.Unlock()

	if sec == tc.lastSec {
		if utc && tc.lastUTC != "" {
			return millisPatch(tc.lastUTC, t)
		}
		if !utc && tc.lastStr != "" {
			return millisPatch(tc.lastStr, t)
		}
	}

	rendered := t.Format(TimeStringFormat)
	if sec != tc.lastSec {
		// The render kept for the other mode belongs to the old second.
		tc.lastStr, tc.lastUTC = "", ""
	}
	tc.lastSec = sec
	if utc {
		tc.lastUTC = rendered
	} else {
		tc.lastStr = rendered
	}
	return rendered
}

// millisPatch replaces the last 3 digits of a cached "...HH:MM:SS.mmm"
// render with t's millisecond component, avoiding a full reformat when only
// sub-second precision changed within the same whole second.
func millisPatch(cached string, t time.Time) string {
	if len(cached) < 3 {
		return t.Format(TimeStringFormat)
	}
	ms := t.Nanosecond() / int(time.Millisecond)
	out := []byte(cached)
	out[len(out)-3] = byte('0' + ms/100)
	out[len(out)-2] = byte('0' + (ms/10)%10)
	out[len(out)-1] = byte('0' + ms%10)
	return string(out)
}

// CachedTimeNano returns the process-wide coarse clock reading, used by the
// record pipeline's "cheap coarse time source" step.
func CachedTimeNano() int64 {
	return globalTimeCache.Now()
}

// StopTimeCache stops the background updater goroutine. Exposed for tests
// and for orderly process shutdown.
func StopTimeCache() {
	globalTimeCache.stop()
}
