// target.go: the Target interface and the shared bookkeeping every
// concrete target variant embeds
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync/atomic"
)

// Target receives records selected for it by a Logger's dispatch and is
// responsible for formatting and delivering them. Submit must never block
// the calling logger for longer than the target's documented latency class.
type Target interface {
	// ID is the target's registry-assigned identifier, stable for the
	// target's lifetime; bit (ID % 64) of a source's affinity mask
	// selects this target.
	ID() uint32
	// Start transitions the target into the live state required before it
	// will accept records. A constructor that returns a ready-to-use
	// target has already called this; Start is exposed on the interface
	// so a Target can be built and wired up before it starts accepting
	// records, and so Submit can reject calls that race ahead of it.
	// Calling Start more than once is a safe no-op.
	Start() error
	// Submit delivers rec (or a sentinel control record) to
	// the target.
	Submit(rec *Record)
	// Flush forces any buffered output to be written out synchronously.
	Flush() error
	// Close releases the target's resources; after Close, Submit must be
	// a safe no-op.
	Close() error
}

// ThreadSafety classifies how a Target handles concurrent Submit calls,
// mirroring the three tiers a transport can fall into: safe by its own
// construction, safe because of something external to it, or safe only
// because a target wraps it in a lock of its own.
type ThreadSafety int8

const (
	// NativelyThreadSafe means the target's own data structures (a
	// lock-free ring, an atomic counter) make concurrent Submit calls
	// safe with no external synchronization.
	NativelyThreadSafe ThreadSafety = iota
	// ExternallyThreadSafe means concurrent Submit calls are safe only
	// because of a guarantee the target relies on but does not itself
	// enforce, e.g. a single-writer discipline upheld by its caller.
	ExternallyThreadSafe
	// RequiresLock means the target serializes concurrent Submit calls
	// itself, typically behind a mutex guarding shared I/O state.
	RequiresLock
)

func (t ThreadSafety) String() string {
	switch t {
	case NativelyThreadSafe:
		return "natively-thread-safe"
	case ExternallyThreadSafe:
		return "externally-thread-safe"
	case RequiresLock:
		return "requires-lock"
	default:
		return "unknown"
	}
}

// baseTarget holds the bookkeeping common to every Target implementation:
// identity, minimum level gate, delivery counters, lifecycle state, and the
// write/read sequence pair a caller can poll to tell whether a target has
// caught up with everything submitted to it. Concrete targets embed it and
// call its helpers from their own Start/Submit.
type baseTarget struct {
	id           uint32
	kind         string
	threadSafety ThreadSafety
	minLevel     atomic.Int32
	accepted     atomic.Uint64
	dropped      atomic.Uint64
	flushed      atomic.Uint64

	isStarted atomic.Bool
	isStopped atomic.Bool
	writeSeq  atomic.Uint64
	readSeq   atomic.Uint64
}

func newBaseTarget(id uint32, minLevel Level, kind string, safety ThreadSafety) baseTarget {
	b := baseTarget{id: id, kind: kind, threadSafety: safety}
	b.minLevel.Store(int32(minLevel))
	return b
}

func (b *baseTarget) ID() uint32 { return b.id }

// ThreadSafety reports this target's concurrency classification.
func (b *baseTarget) ThreadSafety() ThreadSafety { return b.threadSafety }

// SetMinLevel changes the target-local level gate.
func (b *baseTarget) SetMinLevel(level Level) { b.minLevel.Store(int32(level)) }

func (b *baseTarget) MinLevel() Level { return Level(b.minLevel.Load()) }

// start marks the target live. It is idempotent: a constructor that already
// brought the target up calling it again, or a caller retrying after a
// transient setup failure, both get a nil error back. Calling it once a
// target has been stopped is refused, since a stopped target's background
// goroutines and resources are already torn down.
func (b *baseTarget) start() error {
	if b.isStopped.Load() {
		return NewLifecycleError(b.kind, "start called after stop")
	}
	b.isStarted.Store(true)
	return nil
}

// stop marks the target no longer live. Idempotent for the same reason
// start is.
func (b *baseTarget) stop() {
	b.isStopped.Store(true)
}

// rejectIfNotLive reports whether a Submit arrived outside the target's
// live window, reporting the misuse through the installed error handler so
// it is visible without making Submit itself return an error. Concrete
// targets call it as the first statement of their own Submit, ahead of any
// sentinel handling, so a stray record submitted before Start or after
// Close never reaches the transport.
func (b *baseTarget) rejectIfNotLive() bool {
	if b.isStopped.Load() {
		GetErrorHandler()(NewLifecycleError(b.kind, "submit after close"))
		return true
	}
	if !b.isStarted.Load() {
		GetErrorHandler()(NewLifecycleError(b.kind, "submit before start"))
		return true
	}
	return false
}

// accepts reports whether rec passes this target's own level gate; a
// sentinel control record (Flush/Stop) always passes, since it carries no
// level of its own.
func (b *baseTarget) accepts(rec *Record) bool {
	if rec.IsSentinel() {
		return true
	}
	if Level(rec.Level) < b.MinLevel() {
		b.dropped.Add(1)
		return false
	}
	b.accepted.Add(1)
	return true
}

// Stats returns the target's running accepted/dropped/flushed counters.
func (b *baseTarget) Stats() (accepted, dropped, flushed uint64) {
	return b.accepted.Load(), b.dropped.Load(), b.flushed.Load()
}

// noteWrite records that one more non-sentinel record has been handed to
// the target for eventual delivery.
func (b *baseTarget) noteWrite() { b.writeSeq.Add(1) }

// noteRead records that one more record has actually reached the
// downstream sink (an inner Target, a transport write), as opposed to
// merely being buffered by an async target.
func (b *baseTarget) noteRead() { b.readSeq.Add(1) }

// WriteSeq and ReadSeq expose the raw counters behind IsCaughtUp/Backlog
// for callers that want to poll progress directly.
func (b *baseTarget) WriteSeq() uint64 { return b.writeSeq.Load() }
func (b *baseTarget) ReadSeq() uint64  { return b.readSeq.Load() }

// IsCaughtUp reports whether a consumer that has processed read records has
// fully drained a producer that has written write records. It is the
// building block CaughtUp/Backlog are defined in terms of, split out as a
// free function since the comparison itself carries no target-specific
// state.
func IsCaughtUp(write, read uint64) bool {
	return read >= write
}

// CaughtUp reports whether this target has delivered every record handed
// to it so far; for a synchronous target this is always true once Submit
// returns, for an async target it is false while records sit in its queue
// or ring.
func (b *baseTarget) CaughtUp() bool {
	return IsCaughtUp(b.writeSeq.Load(), b.readSeq.Load())
}

// Backlog returns how many submitted records have not yet reached the
// downstream sink.
func (b *baseTarget) Backlog() uint64 {
	w, r := b.writeSeq.Load(), b.readSeq.Load()
	if r >= w {
		return 0
	}
	return w - r
}
