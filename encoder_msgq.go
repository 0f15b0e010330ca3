// encoder_msgq.go: message-queue header formatter, the "alternating
// name/value pairs" wire variant, grounded on original_source's
// elog_proto_receptor.h named-field callbacks.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"strconv"
	"time"
)

// MsgQEncoder renders a Formatter's selectors as alternating name/value
// pairs, matching the header conventions of message-queue transports (JMS,
// AMQP application properties) where each field is addressed by name
// rather than position. Implements NamedFieldReceptor so callers wiring a
// real transport can bind builtins directly without string matching.
type MsgQEncoder struct {
	buf     *LogBuffer
	sep     string // between pairs
	kvSep   string // between name and value
	count   int
}

// NewMsgQEncoder wraps buf; sep separates successive pairs, kvSep separates
// a pair's name from its value (e.g. sep=" ", kvSep="=").
func NewMsgQEncoder(buf *LogBuffer, sep, kvSep string) *MsgQEncoder {
	return &MsgQEncoder{buf: buf, sep: sep, kvSep: kvSep}
}

func (e *MsgQEncoder) pairString(name, value string) {
	if e.count > 0 {
		e.buf.AppendString(e.sep)
	}
	e.count++
	e.buf.AppendString(name)
	e.buf.AppendString(e.kvSep)
	e.buf.AppendString(value)
}

func (e *MsgQEncoder) ReceiveString(spec *FieldSpec, s string) { e.pairString(spec.Name, s) }
func (e *MsgQEncoder) ReceiveInt(spec *FieldSpec, v int64) {
	e.pairString(spec.Name, strconv.FormatInt(v, 10))
}
func (e *MsgQEncoder) ReceiveTime(spec *FieldSpec, t time.Time, formatted string) {
	e.pairString(spec.Name, formatted)
}
func (e *MsgQEncoder) ReceiveLevel(spec *FieldSpec, l Level) { e.pairString(spec.Name, l.String()) }
func (e *MsgQEncoder) ReceiveStaticText(s string)            {}

func (e *MsgQEncoder) ReceiveRecordID(id uint64)   { e.pairString("rid", strconv.FormatUint(id, 10)) }
func (e *MsgQEncoder) ReceiveHostName(host string) { e.pairString("host", host) }
func (e *MsgQEncoder) ReceiveProcessID(pid int)    { e.pairString("pid", strconv.Itoa(pid)) }
func (e *MsgQEncoder) ReceiveThreadID(tid int64)   { e.pairString("tid", strconv.FormatInt(tid, 10)) }
func (e *MsgQEncoder) ReceiveLine(line int)        { e.pairString("line", strconv.Itoa(line)) }
