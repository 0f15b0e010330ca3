// logger.go: the user-facing logger handle and the synchronous record
// pipeline
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"runtime"
	"sync"
)

// ThreadMode tags whether a Logger is used by one goroutine at a time
// (Private, thread-local buffers allowed) or must be concurrency-safe
// (Shared).
type ThreadMode int8

const (
	Private ThreadMode = iota
	Shared
)

// Logger is a bound pair of (source, thread-mode) exposing the log calls.
type Logger struct {
	source *Source
	mode   ThreadMode
	reg    *Registry
}

// newLogger builds a logger bound to source, and registers it with the
// source.
func newLogger(source *Source, mode ThreadMode, reg *Registry) *Logger {
	l := &Logger{source: source, mode: mode, reg: reg}
	source.AttachLogger(l)
	return l
}

// Source returns the source this logger is bound to.
func (l *Logger) Source() *Source { return l.source }

// NewSharedLogger builds a concurrency-safe logger bound to source,
// dispatching to reg's registered targets. Most callers get a Logger from
// an Engine instead; this constructor is for wiring a source tree and
// registry directly, without the rest of Engine's config-driven setup.
func NewSharedLogger(source *Source, reg *Registry) *Logger {
	return newLogger(source, Shared, reg)
}

// NewPrivateLogger builds a single-goroutine logger bound to source,
// dispatching to reg's registered targets.
func NewPrivateLogger(source *Source, reg *Registry) *Logger {
	return newLogger(source, Private, reg)
}

// callerSkip is the number of stack frames between a log call and the
// user's call site when invoked through the level-named methods below.
const callerSkip = 3

// log is the synchronous fast path.
//
//  1. Early-out: compare level against the source's effective level.
//  2. Acquire the cached coarse time.
//  3. Format the message.
//  4. Build the Record (monotonic record-id via atomic fetch-add).
//  5. Submit to every target selected by the source's affinity mask.
func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.source.EffectiveLevel() {
		return
	}

	file, line, fn := captureCaller(callerSkip)
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}

	rec := Record{
		ID:        nextRecordID(),
		Timestamp: CachedTimeNano(),
		Level:     level,
		ThreadID:  goroutineID(),
		SourceID:  l.source.ID,
		File:      file,
		Line:      line,
		Func:      fn,
		Message:   msg,
		Control:   RecordNormal,
	}

	l.dispatch(&rec)
}

// dispatch submits rec to every target the source's affinity mask selects,
// or all enabled targets when the mask is zero.
func (l *Logger) dispatch(rec *Record) {
	if l.reg == nil {
		return
	}
	mask := l.source.Affinity()
	for _, t := range l.reg.Snapshot() {
		if mask != 0 && mask&(1<<(t.ID()%64)) == 0 {
			continue
		}
		t.Submit(rec)
	}
}

func (l *Logger) Diag(format string, args ...interface{})   { l.log(Diag, format, args...) }
func (l *Logger) Debug(format string, args ...interface{})  { l.log(Debug, format, args...) }
func (l *Logger) Trace(format string, args ...interface{})  { l.log(Trace, format, args...) }
func (l *Logger) Info(format string, args ...interface{})   { l.log(Info, format, args...) }
func (l *Logger) Notice(format string, args ...interface{}) { l.log(Notice, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})   { l.log(Warn, format, args...) }
func (l *Logger) Error(format string, args ...interface{})  { l.log(Error, format, args...) }
func (l *Logger) Fatal(format string, args ...interface{})  { l.log(Fatal, format, args...) }

// partial is the thread-local (goroutine-local) builder state for the
// BEGIN/APPEND/END multi-part log protocol.
type partial struct {
	level Level
	buf   []byte
}

var partialState sync.Map // goroutineID -> *partial

// Begin starts a multi-part log record at level. Subsequent Append calls on
// the same goroutine extend it; End promotes it to a normal submit.
func (l *Logger) Begin(level Level, initial string) {
	if level < l.source.EffectiveLevel() {
		return
	}
	partialState.Store(goroutineID(), &partial{level: level, buf: []byte(initial)})
}

// Append writes more text into the goroutine's open partial record. It is a
// no-op if Begin was never called (or the record was already ended) on
// this goroutine.
func (l *Logger) Append(text string) {
	v, ok := partialState.Load(goroutineID())
	if !ok {
		return
	}
	p := v.(*partial)
	p.buf = append(p.buf, text...)
}

// End promotes the goroutine's open partial record to a normal submit.
func (l *Logger) End() {
	gid := goroutineID()
	v, ok := partialState.LoadAndDelete(gid)
	if !ok {
		return
	}
	p := v.(*partial)
	l.log(p.level, string(p.buf))
}

// captureCaller resolves (file, line, function) at skip frames above the
// call into this package. Replaces the original __FILE__/__LINE__/__func__
// C macros with runtime.Caller + a function-name cache.
func captureCaller(skip int) (file string, line int, fn string) {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "", 0, ""
	}
	if f := runtime.FuncForPC(pc); f != nil {
		fn = f.Name()
	}
	return file, line, fn
}

