// builder.go: fluent construction for a Notus ring
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package notus

import (
	"fmt"
)

var (
	// ErrCapacity is returned when capacity is not a power of two.
	ErrCapacity = fmt.Errorf("capacity must be a power of two")

	// ErrMissingProcessor is returned when no processor function is provided.
	ErrMissingProcessor = fmt.Errorf("missing processor function")
)

// Builder assembles a Notus ring one option at a time.
type Builder[T any] struct {
	capacity         int64
	processor        ProcessorFunc[T]
	batchSize        int64
	batchPublishSize int64
}

// NewBuilder starts a Builder for a ring of the given capacity (must end up
// a power of two), picking batch-size and batch-publish-size defaults
// scaled to that capacity.
func NewBuilder[T any](capacity int64) *Builder[T] {
	defaultBatchSize := int64(64)
	if capacity >= 1024 {
		defaultBatchSize = 256
	} else if capacity >= 64 {
		defaultBatchSize = 16
	} else if capacity < 64 {
		defaultBatchSize = 1
	}

	defaultBatchPublishSize := int64(64)
	if capacity < 64 {
		// Largest power of two no more than a quarter of capacity, capped
		// at 8, so a small ring doesn't batch-publish its entire backlog
		// before the reader ever sees anything.
		defaultBatchPublishSize = 1
		for defaultBatchPublishSize*4 <= capacity {
			defaultBatchPublishSize *= 2
		}
		if defaultBatchPublishSize > 8 {
			defaultBatchPublishSize = 8
		}
	}

	return &Builder[T]{
		capacity:         capacity,
		batchSize:        defaultBatchSize,
		batchPublishSize: defaultBatchPublishSize,
	}
}

// WithProcessor sets the function Build's ring hands each drained item to.
func (b *Builder[T]) WithProcessor(processor ProcessorFunc[T]) *Builder[T] {
	b.processor = processor
	return b
}

// WithBatchSize sets how many items ProcessBatch drains per call.
func (b *Builder[T]) WithBatchSize(batchSize int64) *Builder[T] {
	b.batchSize = batchSize
	return b
}

// WithBatchPublishSize sets how many writes accumulate before the writer
// cursor is published to the reader. Lower values favor latency, higher
// values favor throughput.
func (b *Builder[T]) WithBatchPublishSize(size int64) *Builder[T] {
	b.batchPublishSize = size
	return b
}

// Build validates the accumulated options and allocates the ring.
func (b *Builder[T]) Build() (*Notus[T], error) {
	if b.capacity <= 0 || (b.capacity&(b.capacity-1)) != 0 {
		return nil, ErrCapacity
	}

	if b.processor == nil {
		return nil, ErrMissingProcessor
	}

	if b.batchSize <= 0 || b.batchSize > b.capacity {
		if b.batchSize <= 0 {
			return nil, fmt.Errorf("batch size must be positive, got %d", b.batchSize)
		}
		return nil, fmt.Errorf("batch size (%d) cannot exceed capacity (%d)", b.batchSize, b.capacity)
	}

	if b.batchPublishSize > 1 && (b.batchPublishSize&(b.batchPublishSize-1)) != 0 {
		return nil, fmt.Errorf("batch publish size must be power of 2, got %d", b.batchPublishSize)
	}

	mask := b.capacity - 1

	n := &Notus[T]{
		buffer:           make([]T, b.capacity),
		capacity:         b.capacity,
		mask:             mask,
		processor:        b.processor,
		batchSize:        b.batchSize,
		batchPublishSize: b.batchPublishSize,
		cachedReader:     -1,
	}

	n.writerCursor.Store(-1)
	n.readerCursor.Store(-1)
	n.closed.Store(0)
	n.writerPosition.Value = -1

	return n, nil
}
