// goid.go: best-effort per-goroutine identifier
//
// Go has no goroutine-local storage. original_source keys its per-thread
// producer slots and BEGIN/APPEND/END builder state off the OS thread id;
// Go's equivalent needs its own drop-in identifier that
// preserves the contract that the same caller sees the same slot across a
// burst of calls. We derive a stable-for-the-goroutine's-lifetime
// id by parsing the "goroutine NNN [...]" header runtime.Stack always
// emits — the same technique used by third-party goroutine-id shims, kept
// here instead of adding such a dependency since it is a few lines and the
// parsing is the only part that matters.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"runtime"
	"strconv"
)

// goroutineID returns the runtime's internal goroutine id for the calling
// goroutine. It is stable across calls from the same goroutine and used as
// the ordering tie-break key and as the producer-slot
// affinity key in the multi-quantum target.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Format is "goroutine 123 [running]:\n..."
	b := buf[:n]
	i := 0
	for i < len(b) && (b[i] < '0' || b[i] > '9') {
		i++
	}
	j := i
	for j < len(b) && b[j] >= '0' && b[j] <= '9' {
		j++
	}
	id, _ := strconv.ParseInt(string(b[i:j]), 10, 64)
	return id
}
