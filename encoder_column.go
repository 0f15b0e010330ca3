// encoder_column.go: column-oriented DB INSERT formatter, the
// "column-oriented (DB INSERT with placeholder for each value)" wire
// variant
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"strconv"
	"time"
)

// ColumnEncoder collects one positional value per field selector and can
// render the matching "$1,$2,…" (or "?,?,…") placeholder list, leaving
// actual parameter binding to the caller's DB driver.
type ColumnEncoder struct {
	Values      []interface{}
	placeholder func(n int) string
}

// NewColumnEncoder builds a column encoder. placeholder formats the Nth
// (1-based) positional parameter marker for the target SQL dialect; pass
// nil for "?" (e.g. MySQL/SQLite) style markers.
func NewColumnEncoder(placeholder func(n int) string) *ColumnEncoder {
	if placeholder == nil {
		placeholder = func(int) string { return "?" }
	}
	return &ColumnEncoder{placeholder: placeholder}
}

// NewPostgresPlaceholder returns a placeholder func producing "$1", "$2", …
func NewPostgresPlaceholder() func(int) string {
	return func(n int) string { return "$" + strconv.Itoa(n) }
}

func (e *ColumnEncoder) ReceiveString(spec *FieldSpec, s string) { e.Values = append(e.Values, s) }
func (e *ColumnEncoder) ReceiveInt(spec *FieldSpec, v int64)     { e.Values = append(e.Values, v) }
func (e *ColumnEncoder) ReceiveTime(spec *FieldSpec, t time.Time, formatted string) {
	e.Values = append(e.Values, t)
}
func (e *ColumnEncoder) ReceiveLevel(spec *FieldSpec, l Level) {
	e.Values = append(e.Values, l.String())
}
func (e *ColumnEncoder) ReceiveStaticText(s string) {}

// Placeholders returns the comma-joined positional markers for Values, in
// order, e.g. "$1,$2,$3".
func (e *ColumnEncoder) Placeholders() string {
	out := ""
	for i := range e.Values {
		if i > 0 {
			out += ","
		}
		out += e.placeholder(i + 1)
	}
	return out
}
