// multiquantum.go: the multi-quantum (one SPSC ring per producer,
// timestamp-sorted merge funnel, single consumer) async target variant
//
// Wraps internal/notus's SPSC ring per producer slot and internal/ringmerge
// for the funnel, adapted from a ring-internal cell type to elog's
// Record.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"hash/maphash"
	"sync"

	"github.com/agilira/elog/internal/notus"
	"github.com/agilira/elog/internal/ringmerge"
)

// mqCell is the per-slot payload; it implements ringmerge.Timestamped so
// the funnel can order across producer rings.
type mqCell struct {
	rec Record
}

func (c mqCell) MergeTimestamp() int64 { return c.rec.Timestamp }

// producerSlot owns one SPSC ring and the channel its drain goroutine
// feeds into the merge funnel.
type producerSlot struct {
	ring *notus.Notus[mqCell]
	out  chan mqCell
	done chan struct{}
}

// MultiQuantumTarget spreads producers across N single-producer rings by
// goroutine identity, draining each independently and recombining through
// a timestamp-ordered funnel before handing records to inner in strict
// timestamp order. This avoids the MPSC ring's shared writer-cursor
// contention under high producer counts; the funnel's watermark-gated
// merge (internal/ringmerge) trades latency, not ordering, for that
// per-producer lock-freedom, since it must wait for every producer to
// report before shipping a record that could otherwise be overtaken.
type MultiQuantumTarget struct {
	baseTarget
	inner    Target
	slots    []*producerSlot
	numSlots uint64
	seed     maphash.Seed
	funnel   *ringmerge.Funnel[mqCell]
	mergeOut chan struct{}

	mu        sync.Mutex
	slotOfGID map[int64]int
}

// MultiQuantumOptions configures a MultiQuantumTarget.
type MultiQuantumOptions struct {
	Producers     int   // number of per-producer rings
	RingCapacity  int64 // must be a power of two
	FunnelBuffer  int
}

// NewMultiQuantumTarget builds a multi-quantum target delivering to inner.
func NewMultiQuantumTarget(id uint32, inner Target, opts MultiQuantumOptions) (*MultiQuantumTarget, error) {
	if opts.Producers <= 0 {
		opts.Producers = 8
	}
	if opts.RingCapacity <= 0 {
		opts.RingCapacity = 1024
	}
	if opts.FunnelBuffer <= 0 {
		opts.FunnelBuffer = 1024
	}

	m := &MultiQuantumTarget{
		baseTarget: newBaseTarget(id, Diag, "multiquantum", NativelyThreadSafe),
		inner:      inner,
		numSlots:   uint64(opts.Producers),
		seed:       maphash.MakeSeed(),
		slotOfGID:  make(map[int64]int),
	}

	inputs := make([]<-chan mqCell, opts.Producers)
	for i := 0; i < opts.Producers; i++ {
		out := make(chan mqCell, opts.FunnelBuffer)
		slot := &producerSlot{out: out, done: make(chan struct{})}

		ring, err := notus.NewBuilder[mqCell](opts.RingCapacity).
			WithProcessor(func(c *mqCell) { out <- *c }).
			Build()
		if err != nil {
			return nil, err
		}
		slot.ring = ring
		m.slots = append(m.slots, slot)
		inputs[i] = out

		go func(s *producerSlot) {
			defer close(s.done)
			defer close(out)
			s.ring.LoopProcess()
		}(slot)
	}

	m.funnel = ringmerge.New[mqCell](inputs, opts.FunnelBuffer)
	m.mergeOut = make(chan struct{})
	go m.drain()

	_ = m.start()
	return m, nil
}

// Start marks the target live. NewMultiQuantumTarget already calls it, so a
// caller using the constructor directly never needs to.
func (m *MultiQuantumTarget) Start() error { return m.start() }

func (m *MultiQuantumTarget) drain() {
	defer close(m.mergeOut)
	for c := range m.funnel.Out() {
		rec := c.rec
		m.inner.Submit(&rec)
		if !rec.IsSentinel() {
			m.noteRead()
		}
	}
}

// slotFor deterministically assigns a goroutine to one of numSlots rings,
// sticky for the goroutine's lifetime.
func (m *MultiQuantumTarget) slotFor(gid int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, ok := m.slotOfGID[gid]; ok {
		return idx
	}
	var h maphash.Hash
	h.SetSeed(m.seed)
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(gid >> (8 * i))
	}
	h.Write(b[:])
	idx := int(h.Sum64() % m.numSlots)
	m.slotOfGID[gid] = idx
	return idx
}

func (m *MultiQuantumTarget) Submit(rec *Record) {
	if m.rejectIfNotLive() {
		return
	}
	if !rec.IsSentinel() && !m.accepts(rec) {
		return
	}
	idx := m.slotFor(rec.ThreadID)
	ok := m.slots[idx].ring.Write(func(c *mqCell) { c.rec = *rec })
	if !ok {
		reportRuntimeError(nil, m.id, ErrCodeResourceExhausted, "multiquantum producer ring full, record dropped")
		return
	}
	if !rec.IsSentinel() {
		m.noteWrite()
	}
}

// Flush publishes every producer ring's pending writes and flushes inner.
// It is best-effort: it does not wait for the funnel to drain already
// published items through to inner before returning.
func (m *MultiQuantumTarget) Flush() error {
	for _, s := range m.slots {
		s.ring.Flush()
	}
	return m.inner.Flush()
}

func (m *MultiQuantumTarget) Close() error {
	defer m.stop()
	for _, s := range m.slots {
		s.ring.Close()
		<-s.done
	}
	<-m.mergeOut
	m.funnel.Stop()
	return m.inner.Close()
}
