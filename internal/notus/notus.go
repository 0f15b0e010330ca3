// notus.go: single-producer-single-consumer ring buffer
//
// Backs multiquantum.go's one-ring-per-producer design: each producer
// goroutine owns exactly one Notus, so the ring never needs to coordinate
// multiple writers the way zephyroslite's MPSC ring does.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package notus

import (
	"runtime"
	"sync/atomic"
	"time"
)

const (
	// readerCacheRefreshMask refreshes the writer's cached reader position
	// every 32 writes (bit masking on a power-of-two interval), trading a
	// bounded amount of capacity-check staleness for far fewer atomic
	// loads on the hot write path.
	readerCacheRefreshMask = 31

	// spinYieldMask bounds how many empty-poll spins LoopProcess takes
	// before yielding to the scheduler.
	spinYieldMask = (1 << 14) - 1
)

// ProcessorFunc processes one buffered item in place.
type ProcessorFunc[T any] func(*T)

// Notus is a single-producer-single-consumer ring buffer: exactly one
// goroutine may call Write, and exactly one goroutine may drive
// ProcessBatch/LoopProcess, for the lifetime of a given instance.
type Notus[T any] struct {
	// Ring buffer core
	buffer   []T
	capacity int64
	mask     int64 // capacity - 1 for bit masking

	// Writer state (SPSC optimized)
	writerCursor   AtomicPaddedInt64 // Published sequence
	writerPosition PaddedInt64       // Cached writer position

	// Reader state (SPSC optimized)
	readerCursor AtomicPaddedInt64 // Reader sequence
	cachedReader int64             // Cached reader position (SPSC optimization)

	// SPSC performance counters
	batchPublishSize int64 // Batch publish threshold

	// Processor function
	processor ProcessorFunc[T]

	// Batching configuration
	batchSize int64

	// Control
	closed AtomicPaddedInt64 // 0 = open, 1 = closed

	// Cache line padding to prevent false sharing
	_ [64]byte
}

// NewNotus builds a ring directly from capacity and processor.
// Deprecated: use NewBuilder for batch-size and batch-publish-size control.
func NewNotus[T any](capacity int64, processor ProcessorFunc[T]) (*Notus[T], error) {
	return NewBuilder[T](capacity).WithProcessor(processor).Build()
}

// Write hands slot construction to writerFunc and publishes it, returning
// false if the ring is closed or the single producer has outrun the
// consumer by a full capacity's worth of unread items.
func (n *Notus[T]) Write(writerFunc func(*T)) bool {
	if n.closed.Load() != 0 {
		return false
	}

	nextPos := atomic.LoadInt64(&n.writerPosition.Value) + 1

	if nextPos&readerCacheRefreshMask == 0 {
		n.cachedReader = n.readerCursor.Load()
	}

	if nextPos-n.cachedReader > n.capacity {
		fresh := n.readerCursor.Load()
		if nextPos-fresh > n.capacity {
			return false
		}
		n.cachedReader = fresh
	}

	slot := &n.buffer[nextPos&n.mask]
	writerFunc(slot)

	atomic.StoreInt64(&n.writerPosition.Value, nextPos)

	if n.batchPublishSize == 1 || nextPos&(n.batchPublishSize-1) == 0 {
		n.writerCursor.Store(nextPos)
	}

	return true
}

// Flush publishes the writer's current position immediately, bypassing
// batchPublishSize, so the reader sees every write issued so far.
func (n *Notus[T]) Flush() {
	currentPos := atomic.LoadInt64(&n.writerPosition.Value)
	n.writerCursor.Store(currentPos)
}

// ProcessBatch drains up to batchSize published items through processor
// and reports how many it processed.
func (n *Notus[T]) ProcessBatch() int {
	current := n.readerCursor.Load()
	available := n.writerCursor.Load()

	if available <= current {
		return 0
	}

	count := available - current

	// Branchless min(count, batchSize): diff's sign bit, sign-extended by
	// the arithmetic shift, masks in diff only when count < batchSize.
	diff := count - n.batchSize
	branchlessMask := diff >> 63
	count = n.batchSize + (diff & branchlessMask)

	buffer := n.buffer
	mask := n.mask
	processor := n.processor

	if count == 1 {
		nextIdx := (current + 1) & mask
		processor(&buffer[nextIdx])
	} else if count <= 4 {
		seq := current + 1
		for i := int64(0); i < count; i++ {
			processor(&buffer[(seq+i)&mask])
		}
	} else {
		endSeq := current + count
		for seq := current + 1; seq <= endSeq; seq++ {
			processor(&buffer[seq&mask])
		}
	}

	newReaderPos := current + count
	n.readerCursor.Store(newReaderPos)
	return int(count)
}

// LoopProcess drains the ring on the calling goroutine until Close, then
// keeps draining until three consecutive polls find nothing left, which
// absorbs the last in-flight writes racing the close.
func (n *Notus[T]) LoopProcess() {
	spins := 0

	for n.closed.Load() == 0 {
		if n.ProcessBatch() == 0 {
			spins++
			if spins&spinYieldMask == 0 {
				runtime.Gosched()
			}
		} else {
			spins = 0
		}
	}

	consecutiveEmpty := 0
	for consecutiveEmpty < 3 {
		n.Flush()
		processed := n.ProcessBatch()
		if processed > 0 {
			consecutiveEmpty = 0
			continue
		}

		consecutiveEmpty++
		time.Sleep(time.Microsecond)

		if n.ProcessBatch() > 0 {
			consecutiveEmpty = 0
		}
	}
}

// Close marks the ring closed to further Write calls; LoopProcess keeps
// draining already-published items after Close returns.
func (n *Notus[T]) Close() {
	n.closed.Store(1)
	n.Flush()
}

// Stats reports the ring's current writer/reader positions and backlog,
// keyed the same way across this package's and zephyroslite's rings so
// multiquantum.go and quantum.go can poll either uniformly.
func (n *Notus[T]) Stats() map[string]int64 {
	writerPos := n.writerCursor.Load()
	readerPos := n.readerCursor.Load()

	return map[string]int64{
		"writer_position": writerPos,
		"reader_position": readerPos,
		"buffer_size":     n.capacity,
		"items_buffered":  writerPos - readerPos,
		"closed":          n.closed.Load(),
	}
}
