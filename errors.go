// errors.go: error kinds and propagation policy
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/agilira/go-errors"
)

// Error codes, one per error kind the runtime reports.
const (
	ErrCodeConfigParse       errors.ErrorCode = "ELOG_CONFIG_PARSE"
	ErrCodeConfigSemantics   errors.ErrorCode = "ELOG_CONFIG_SEMANTICS"
	ErrCodeResourceExhausted errors.ErrorCode = "ELOG_RESOURCE_EXHAUSTED"
	ErrCodeIOTransient       errors.ErrorCode = "ELOG_IO_TRANSIENT"
	ErrCodeIOPermanent       errors.ErrorCode = "ELOG_IO_PERMANENT"
	ErrCodeLifecycle         errors.ErrorCode = "ELOG_LIFECYCLE"
)

// ErrorHandler receives runtime diagnostics that are never returned to the
// caller.
type ErrorHandler func(err *errors.Error)

var defaultErrorHandler ErrorHandler = func(err *errors.Error) {
	fmt.Fprintf(os.Stderr, "[ELOG ERROR] %s: %s\n", err.Code, err.Message)
}

var (
	handlerMu            sync.RWMutex
	currentErrorHandler  = defaultErrorHandler
)

// SetErrorHandler installs a custom error handler for the process-wide
// elog runtime. Passing nil restores the default (stderr-printing) handler.
func SetErrorHandler(h ErrorHandler) {
	handlerMu.Lock()
	defer handlerMu.Unlock()
	if h == nil {
		currentErrorHandler = defaultErrorHandler
		return
	}
	currentErrorHandler = h
}

// GetErrorHandler returns the currently installed error handler.
func GetErrorHandler() ErrorHandler {
	handlerMu.RLock()
	defer handlerMu.RUnlock()
	return currentErrorHandler
}

func newErr(code errors.ErrorCode, msg string) *errors.Error {
	return errors.New(code, msg)
}

// NewConfigParseError builds a located parse error, with a
// "| HERE ===>>> |" marker included in the message.
func NewConfigParseError(msg string, offset int, input string) *errors.Error {
	located := fmt.Sprintf("%s at offset %d: %s| HERE ===>>> |%s",
		msg, offset, input[:offset], input[offset:])
	return newErr(ErrCodeConfigParse, located)
}

// NewConfigSemanticsError reports an unknown field name, duplicate source,
// or unknown target scheme.
func NewConfigSemanticsError(msg string) *errors.Error {
	return newErr(ErrCodeConfigSemantics, msg)
}

// NewLifecycleError reports a target or engine used outside its live
// window: submit before start, submit after close, or a repeated
// terminate/close call.
func NewLifecycleError(target string, msg string) *errors.Error {
	return newErr(ErrCodeLifecycle, fmt.Sprintf("target %q: %s", target, msg))
}

// rateLimiter suppresses identical (target, message) diagnostics within a
// window, grounded on original_source's elog_error.cpp dedup-by-hash
// behavior.
type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	seen   map[string]time.Time
}

func newRateLimiter(window time.Duration) *rateLimiter {
	return &rateLimiter{window: window, seen: make(map[string]time.Time)}
}

// Allow reports whether this (targetID, message) pair should be reported
// now, i.e. it either has not been seen, or the suppression window for its
// last occurrence has elapsed.
func (r *rateLimiter) Allow(targetID uint32, message string) bool {
	key := fmt.Sprintf("%d|%s", targetID, message)
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if last, ok := r.seen[key]; ok && now.Sub(last) < r.window {
		return false
	}
	r.seen[key] = now
	return true
}

// reportRuntimeError routes a runtime error through the rate limiter and the installed ErrorHandler.
func reportRuntimeError(rl *rateLimiter, targetID uint32, code errors.ErrorCode, msg string) {
	if rl != nil && !rl.Allow(targetID, msg) {
		return
	}
	GetErrorHandler()(newErr(code, msg))
}
