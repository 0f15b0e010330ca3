// console.go: console target with automatic color/TTY detection
//
// Grounded on a console writer pattern of wrapping os.Stdout through
// go-colorable so ANSI escapes render on Windows consoles too, gated by
// go-isatty so color is never emitted into a redirected file or pipe.
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// ConsoleStream selects which standard stream a console target writes to.
type ConsoleStream int8

const (
	ConsoleStdout ConsoleStream = iota
	ConsoleStderr
)

// NewConsoleTarget builds a synchronous target writing to the process's
// stdout or stderr. Color is auto-detected: enabled when the underlying
// file descriptor is a terminal, disabled when output is redirected to a
// file or pipe. forceColor overrides detection when non-nil.
func NewConsoleTarget(id uint32, stream ConsoleStream, formatter *Formatter, tree *Tree, forceColor *bool) *WriterTarget {
	f := os.Stdout
	if stream == ConsoleStderr {
		f = os.Stderr
	}

	color := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	if forceColor != nil {
		color = *forceColor
	}

	w := colorable.NewColorable(f)
	if !color {
		w = colorable.NewNonColorable(f)
	}

	return NewWriterTarget(id, w, formatter, TextEncoderFactory(color), FlushImmediate, tree)
}
