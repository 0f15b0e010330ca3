// level.go: log level definitions and the total order over them
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "strings"

// Level is the severity of a log record, in increasing order of urgency:
// Diag < Debug < Trace < Info < Notice < Warn < Error < Fatal.
//
// Level is an int32 so comparisons and atomic loads/stores on the
// hot path never allocate.
type Level int32

const (
	Diag Level = iota
	Debug
	Trace
	Info
	Notice
	Warn
	Error
	Fatal
)

var levelNames = [...]string{
	Diag:   "DIAG",
	Debug:  "DEBUG",
	Trace:  "TRACE",
	Info:   "INFO",
	Notice: "NOTICE",
	Warn:   "WARN",
	Error:  "ERROR",
	Fatal:  "FATAL",
}

var levelByName = map[string]Level{
	"diag":   Diag,
	"debug":  Debug,
	"trace":  Trace,
	"info":   Info,
	"notice": Notice,
	"warn":   Warn,
	"warning": Warn,
	"error":  Error,
	"err":    Error,
	"fatal":  Fatal,
}

// String returns the canonical upper-case name of the level.
func (l Level) String() string {
	if l < Diag || l > Fatal {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel parses a level name, case-insensitively. The returned ok is
// false for unrecognized names; callers that need propagation suffixes
// should strip them first (see parseLevelSetting in config.go).
func ParseLevel(name string) (Level, bool) {
	l, ok := levelByName[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

// Enabled reports whether a record at this level should be emitted given a
// minimum (gate) level.
func (l Level) Enabled(min Level) bool {
	return l >= min
}
