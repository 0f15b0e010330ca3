// record.go: the immutable log record
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "sync/atomic"

// RecordControl distinguishes a normal record from an async-path sentinel.
type RecordControl int8

const (
	RecordNormal RecordControl = 0
	RecordFlush  RecordControl = -1
	RecordStop   RecordControl = -2
)

// Record is an immutable value captured at the call site. Once submitted it
// is never mutated; async sinks that need to outlive the caller's buffer
// copy Message into target-owned storage (see quantum.go, multiquantum.go).
type Record struct {
	ID        uint64
	Timestamp int64 // nanoseconds since epoch
	Level     Level
	ThreadID  int64
	SourceID  uint32
	File      string
	Line      int
	Func      string
	Message   string
	Control   RecordControl
}

// recordCounter is the process-wide monotonic record-id generator.
var recordCounter uint64

// nextRecordID returns a strictly increasing, never-reused record id.
func nextRecordID() uint64 {
	return atomic.AddUint64(&recordCounter, 1)
}

// IsSentinel reports whether the record exists only to carry a flush/stop
// signal through an async pipeline rather than a message.
func (r *Record) IsSentinel() bool {
	return r.Control != RecordNormal
}
