// encoder_json.go: JSON field receptor
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"encoding/json"
	"strconv"
	"time"
)

// JSONEncoder renders a Formatter's field selectors into a flat JSON
// object, keyed by field name. Static-text selectors are ignored: JSON
// output has no room for inter-field literal text.
type JSONEncoder struct {
	buf     *LogBuffer
	started bool
}

func NewJSONEncoder(buf *LogBuffer) *JSONEncoder {
	e := &JSONEncoder{buf: buf}
	e.buf.AppendString("{")
	return e
}

func (e *JSONEncoder) comma() {
	if e.started {
		e.buf.AppendString(",")
	}
	e.started = true
}

func (e *JSONEncoder) key(spec *FieldSpec) {
	e.comma()
	b, _ := json.Marshal(spec.Name)
	e.buf.Append(b)
	e.buf.AppendString(":")
}

func (e *JSONEncoder) ReceiveString(spec *FieldSpec, s string) {
	e.key(spec)
	b, _ := json.Marshal(s)
	e.buf.Append(b)
}

func (e *JSONEncoder) ReceiveInt(spec *FieldSpec, v int64) {
	e.key(spec)
	e.buf.AppendString(strconv.FormatInt(v, 10))
}

func (e *JSONEncoder) ReceiveTime(spec *FieldSpec, t time.Time, formatted string) {
	e.key(spec)
	b, _ := json.Marshal(formatted)
	e.buf.Append(b)
}

func (e *JSONEncoder) ReceiveLevel(spec *FieldSpec, l Level) {
	e.key(spec)
	b, _ := json.Marshal(l.String())
	e.buf.Append(b)
}

func (e *JSONEncoder) ReceiveStaticText(s string) {}

// Close appends the closing brace; call once after Render.
func (e *JSONEncoder) Close() {
	e.buf.AppendString("}")
}
