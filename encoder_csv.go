// encoder_csv.go: comma-separated argument list formatter, the
// "comma-separated (RPC argument list)" wire variant
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"strconv"
	"time"
)

// CSVEncoder renders a Formatter's field selectors as a single
// comma-separated line, quoting any value that itself contains the
// separator, a quote, or a newline (RFC 4180-style minimal quoting).
// Static-text selectors are appended verbatim and unquoted, in addition to
// the separator the encoder itself writes between successive values.
type CSVEncoder struct {
	buf   *LogBuffer
	sep   byte
	count int
}

// NewCSVEncoder wraps buf; sep is the field separator, typically ','.
func NewCSVEncoder(buf *LogBuffer, sep byte) *CSVEncoder {
	return &CSVEncoder{buf: buf, sep: sep}
}

func (e *CSVEncoder) writeValue(s string) {
	if e.count > 0 {
		e.buf.Append([]byte{e.sep})
	}
	e.count++
	if needsCSVQuote(s, e.sep) {
		e.buf.AppendString(`"`)
		for i := 0; i < len(s); i++ {
			if s[i] == '"' {
				e.buf.AppendString(`""`)
			} else {
				e.buf.Append([]byte{s[i]})
			}
		}
		e.buf.AppendString(`"`)
		return
	}
	e.buf.AppendString(s)
}

func needsCSVQuote(s string, sep byte) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == sep || c == '"' || c == '\n' || c == '\r' {
			return true
		}
	}
	return false
}

func (e *CSVEncoder) ReceiveString(spec *FieldSpec, s string) { e.writeValue(s) }
func (e *CSVEncoder) ReceiveInt(spec *FieldSpec, v int64)     { e.writeValue(strconv.FormatInt(v, 10)) }
func (e *CSVEncoder) ReceiveTime(spec *FieldSpec, t time.Time, formatted string) {
	e.writeValue(formatted)
}
func (e *CSVEncoder) ReceiveLevel(spec *FieldSpec, l Level) { e.writeValue(l.String()) }
func (e *CSVEncoder) ReceiveStaticText(s string)            { e.buf.AppendString(s) }
