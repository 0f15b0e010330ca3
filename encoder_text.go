// encoder_text.go: plain text log-line field receptor, the "plain text
// (log line)" wire variant
//
// Grounded on an append-into-buffer text encoder style.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"strconv"
	"time"
)

// TextEncoder renders a Formatter's selectors as a single text log line
// into a LogBuffer, applying each field's justification and (if the
// target enables color) its precomputed terminal escape.
type TextEncoder struct {
	buf   *LogBuffer
	color bool
}

// NewTextEncoder wraps buf; color enables emitting precomputed ANSI escapes.
func NewTextEncoder(buf *LogBuffer, color bool) *TextEncoder {
	return &TextEncoder{buf: buf, color: color}
}

func (e *TextEncoder) beginColored(spec *FieldSpec) {
	if e.color && spec.Text != nil && spec.Text.Escape != "" {
		e.buf.AppendString(spec.Text.Escape)
	}
}

func (e *TextEncoder) finishColored(spec *FieldSpec) {
	if e.color && spec.Text != nil && !spec.Text.BeginOnly && spec.Text.Escape != "" {
		e.buf.AppendString("\x1b[0m")
	}
}

func (e *TextEncoder) ReceiveString(spec *FieldSpec, s string) {
	e.beginColored(spec)
	e.writeJustifiedNoColor(s, spec)
}

func (e *TextEncoder) writeJustifiedNoColor(s string, spec *FieldSpec) {
	if spec.Justify.Mode != JustifyNone && len(s) < spec.Justify.Width {
		pad := spec.Justify.Width - len(s)
		padding := make([]byte, pad)
		for i := range padding {
			padding[i] = ' '
		}
		if spec.Justify.Mode == JustifyLeft {
			e.buf.AppendString(s)
			e.buf.Append(padding)
		} else {
			e.buf.Append(padding)
			e.buf.AppendString(s)
		}
	} else {
		e.buf.AppendString(s)
	}
	e.finishColored(spec)
}

func (e *TextEncoder) ReceiveInt(spec *FieldSpec, v int64) {
	e.beginColored(spec)
	e.writeJustifiedNoColor(strconv.FormatInt(v, 10), spec)
}

func (e *TextEncoder) ReceiveTime(spec *FieldSpec, t time.Time, formatted string) {
	e.beginColored(spec)
	e.writeJustifiedNoColor(formatted, spec)
}

func (e *TextEncoder) ReceiveLevel(spec *FieldSpec, l Level) {
	e.beginColored(spec)
	e.writeJustifiedNoColor(l.String(), spec)
}

func (e *TextEncoder) ReceiveStaticText(s string) {
	e.buf.AppendString(s)
}
