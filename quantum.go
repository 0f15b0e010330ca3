// quantum.go: the quantum (single lock-free MPSC ring, one consumer
// goroutine) async target variant
//
// Wraps internal/zephyroslite's MPSC ring, adapted from its original
// ring-internal cell type to elog's Record.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"sync/atomic"

	"github.com/agilira/elog/internal/zephyroslite"
)

// cell is the ring's storage element: a copy of the submitted Record, its
// Control tag included. Message is copied into target-owned storage so the
// ring owns its bytes independent of the submitting goroutine's lifetime.
type cell struct {
	rec Record
}

// QuantumTarget delivers records through a single lock-free MPSC ring to
// one consumer goroutine, giving submitters a lock-free Write at the cost
// of losing records under sustained overload.
type QuantumTarget struct {
	baseTarget
	inner      Target
	ring       *zephyroslite.ZephyrosLight[cell]
	done       chan struct{}
	discardAll bool
	discarding atomic.Bool
}

// QuantumOptions configures a QuantumTarget's ring.
type QuantumOptions struct {
	Capacity  int64 // must be a power of two
	BatchSize int64
	Block     bool // BlockOnFull instead of DropOnFull
	IdleSpin  bool // spinning idle strategy instead of the progressive default

	// DiscardAll changes what happens once the ring is observed full: instead
	// of dropping only the record that didn't fit (the default), the target
	// starts dropping every record, including ones that would otherwise have
	// fit, until the ring's backlog fully drains. This trades a burst of lost
	// records for bounded memory and a consumer that is never handed a
	// backlog built up while it was behind.
	DiscardAll bool
}

// NewQuantumTarget builds a quantum target delivering to inner through a
// ring buffer sized by opts.
func NewQuantumTarget(id uint32, inner Target, opts QuantumOptions) (*QuantumTarget, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = 4096
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 64
	}

	q := &QuantumTarget{
		baseTarget: newBaseTarget(id, Diag, "quantum", NativelyThreadSafe),
		inner:      inner,
		done:       make(chan struct{}),
		discardAll: opts.DiscardAll,
	}

	builder := zephyroslite.NewBuilder[cell](opts.Capacity).
		WithProcessor(func(c *cell) {
			q.inner.Submit(&c.rec)
			if !c.rec.IsSentinel() {
				q.noteRead()
			}
		}).
		WithBatchSize(opts.BatchSize)

	if opts.Block {
		builder = builder.WithBackpressurePolicy(zephyroslite.BlockOnFull)
	}
	if opts.IdleSpin {
		builder = builder.WithIdleStrategy(zephyroslite.NewSpinningIdleStrategy())
	}

	ring, err := builder.Build()
	if err != nil {
		return nil, err
	}
	q.ring = ring

	go func() {
		defer close(q.done)
		ring.LoopProcess()
	}()

	_ = q.start()
	return q, nil
}

// Start marks the target live. NewQuantumTarget already calls it, so a
// caller using the constructor directly never needs to.
func (q *QuantumTarget) Start() error { return q.start() }

func (q *QuantumTarget) Submit(rec *Record) {
	if q.rejectIfNotLive() {
		return
	}
	if !rec.IsSentinel() && !q.accepts(rec) {
		return
	}

	if q.discardAll && q.discarding.Load() {
		if q.ring.Stats()["items_buffered"] == 0 {
			q.discarding.Store(false)
		} else {
			reportRuntimeError(nil, q.id, ErrCodeResourceExhausted, "quantum ring discarding, record dropped")
			return
		}
	}

	ok := q.ring.Write(func(c *cell) { c.rec = *rec })
	if !ok {
		if q.discardAll {
			q.discarding.Store(true)
		}
		reportRuntimeError(nil, q.id, ErrCodeResourceExhausted, "quantum ring full, record dropped")
		return
	}
	if !rec.IsSentinel() {
		q.noteWrite()
	}
}

func (q *QuantumTarget) Flush() error {
	if err := q.ring.Flush(); err != nil {
		return err
	}
	return q.inner.Flush()
}

func (q *QuantumTarget) Close() error {
	defer q.stop()
	_ = q.Flush()
	q.ring.Close()
	<-q.done
	return q.inner.Close()
}
