// receptor.go: the target-side interface the formatter drives
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "time"

// FieldReceptor is implemented by a formatter's output sink: it accepts
// typed field values as the formatter walks a record's selectors. Each
// method receives the originating FieldSpec so the receptor can apply
// justification and text attributes itself (e.g. the text encoder) or
// ignore them (e.g. the JSON encoder).
type FieldReceptor interface {
	ReceiveString(spec *FieldSpec, s string)
	ReceiveInt(spec *FieldSpec, v int64)
	ReceiveTime(spec *FieldSpec, t time.Time, formatted string)
	ReceiveLevel(spec *FieldSpec, l Level)
	ReceiveStaticText(s string)
}

// NamedFieldReceptor is the "by name" variant: in addition to FieldReceptor
// it exposes a per-builtin-field callback, so structured sinks (JSON,
// protobuf, DB parameter binding) can bind directly to a named column
// without re-deriving which builtin a generic ReceiveString call came from.
type NamedFieldReceptor interface {
	FieldReceptor
	ReceiveRecordID(id uint64)
	ReceiveHostName(host string)
	ReceiveProcessID(pid int)
	ReceiveThreadID(tid int64)
	ReceiveLine(line int)
}
