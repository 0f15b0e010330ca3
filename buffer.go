// buffer.go: growable small-buffer-optimized byte buffer
//
// Grounded on a buffer-pool recycling strategy, reshaped into
// the fixed-inline-then-overflow design the configuration grammar requires.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

// inlineBufferSize is sized to the typical log line, matching the
// bufferpool.DefaultCapacity choice for the same reason: most records
// never touch the allocator.
const inlineBufferSize = 512

// LogBuffer is a growable byte buffer. It uses a fixed inline region until
// the first overflow, then an allocated dynamic region; once dynamic, the
// inline region is never touched again. Growth doubles, capped at maxCap.
type LogBuffer struct {
	inline  [inlineBufferSize]byte
	dynamic []byte
	offset  int
	maxCap  int
	full    bool
}

// NewLogBuffer returns a buffer whose dynamic region, once allocated, never
// grows past maxCap bytes. maxCap <= 0 means unbounded growth.
func NewLogBuffer(maxCap int) *LogBuffer {
	return &LogBuffer{maxCap: maxCap}
}

// Reset clears the buffer for reuse without releasing the dynamic region.
func (b *LogBuffer) Reset() {
	b.offset = 0
	b.full = false
	if b.dynamic != nil {
		b.dynamic = b.dynamic[:0]
	}
}

// Len returns the number of bytes currently appended.
func (b *LogBuffer) Len() int { return b.offset }

// Full reports whether the last Append was truncated by maxCap.
func (b *LogBuffer) Full() bool { return b.full }

// Bytes returns the appended bytes. The returned slice aliases the buffer's
// storage and is invalidated by the next Append or Reset.
func (b *LogBuffer) Bytes() []byte {
	if b.dynamic != nil {
		return b.dynamic
	}
	return b.inline[:b.offset]
}

// Append adds p to the buffer, switching from the inline region to a
// dynamic allocation on first overflow. It returns false (and sets Full)
// if maxCap would be exceeded; the bytes that do fit are still appended.
func (b *LogBuffer) Append(p []byte) bool {
	if b.dynamic == nil && b.offset+len(p) <= inlineBufferSize &&
		(b.maxCap <= 0 || b.offset+len(p) <= b.maxCap) {
		copy(b.inline[b.offset:], p)
		b.offset += len(p)
		return true
	}

	if b.dynamic == nil {
		// First overflow: migrate the inline prefix into a dynamic slice.
		cap0 := inlineBufferSize * 2
		if cap0 < b.offset+len(p) {
			cap0 = b.offset + len(p)
		}
		b.dynamic = make([]byte, b.offset, cap0)
		copy(b.dynamic, b.inline[:b.offset])
	}

	want := len(b.dynamic) + len(p)
	if b.maxCap > 0 && want > b.maxCap {
		room := b.maxCap - len(b.dynamic)
		if room < 0 {
			room = 0
		}
		b.dynamic = append(b.dynamic, p[:room]...)
		b.offset = len(b.dynamic)
		b.full = true
		return false
	}

	if want > cap(b.dynamic) {
		newCap := cap(b.dynamic) * 2
		if newCap < want {
			newCap = want
		}
		if b.maxCap > 0 && newCap > b.maxCap {
			newCap = b.maxCap
		}
		grown := make([]byte, len(b.dynamic), newCap)
		copy(grown, b.dynamic)
		b.dynamic = grown
	}

	b.dynamic = append(b.dynamic, p...)
	b.offset = len(b.dynamic)
	return true
}

// AppendString is a convenience wrapper avoiding a []byte allocation at
// call sites that already hold a string.
func (b *LogBuffer) AppendString(s string) bool {
	return b.Append([]byte(s))
}

// String returns a copy of the buffer contents.
func (b *LogBuffer) String() string {
	return string(b.Bytes())
}
