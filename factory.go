// factory.go: engine lifecycle and config-driven target construction
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"sync/atomic"

	"github.com/agilira/elog/internal/lethe"
)

// Engine is the process-wide logging runtime: a source tree plus a target
// registry, bound together by the loggers created from it.
type Engine struct {
	tree     *Tree
	reg      *Registry
	started  atomic.Bool
	defaultL *Logger
}

// Initialize builds a fresh Engine from a parsed Config. Parse-time errors
// are returned; if a target fails to build, the targets already built by
// this call are closed before the error is returned.
func Initialize(cfg *Config) (*Engine, error) {
	e := &Engine{tree: NewTree(), reg: NewRegistry()}

	if cfg.Level.Level != 0 || cfg.Level.HasPropagate {
		e.tree.Root().SetLevel(cfg.Level.Level, cfg.Level.Propagate)
	}
	for qname, ls := range cfg.SourceLevels {
		src, err := e.tree.DefineSource(qname, true)
		if err != nil {
			return nil, err
		}
		src.SetLevel(ls.Level, ls.Propagate)
	}

	var rootFormatter *Formatter
	if cfg.Format != "" {
		f, err := Parse(cfg.Format)
		if err != nil {
			return nil, err
		}
		rootFormatter = f
	} else {
		rootFormatter = MustParse("${time} ${level} ${src}: ${msg}")
	}

	for i, tc := range cfg.Targets {
		target, err := BuildTarget(uint32(i+1), tc, rootFormatter, e.tree)
		if err != nil {
			e.reg.CloseAll()
			return nil, err
		}
		e.reg.AddLogTarget(target, tc.Name)
	}

	if len(cfg.Targets) == 0 {
		e.reg.AddLogTarget(NewConsoleTarget(1, ConsoleStdout, rootFormatter, e.tree, nil), "console")
	}

	e.started.Store(true)
	e.defaultL = newLogger(e.tree.Root(), Shared, e.reg)
	return e, nil
}

// InitializeLogFile is a convenience entry point building a single-target
// engine writing plain-text lines to path.
func InitializeLogFile(path, format string, level Level) (*Engine, error) {
	cfg := &Config{
		Level:   LevelSetting{Level: level},
		Format:  format,
		Targets: []TargetConfig{{Scheme: "file", Level: level, Params: map[string]string{"path": path}}},
	}
	return Initialize(cfg)
}

// InitializeSegmentedLogFile is a convenience entry point building a
// single-target engine writing rotating segments of maxBytes each.
func InitializeSegmentedLogFile(dir, base string, maxBytes int64, format string, level Level) (*Engine, error) {
	cfg := &Config{
		Level:  LevelSetting{Level: level},
		Format: format,
		Targets: []TargetConfig{{
			Scheme: "segmented-file",
			Level:  level,
			Params: map[string]string{"dir": dir, "base": base, "max_bytes": fmt.Sprint(maxBytes)},
		}},
	}
	return Initialize(cfg)
}

// BuildTarget dispatches a single TargetConfig to a concrete Target,
// falling back to the lethe sink-provider registry so an externally
// registered transport can claim a scheme elog's core does not know about.
func BuildTarget(id uint32, tc TargetConfig, fallbackFormat *Formatter, tree *Tree) (Target, error) {
	format := fallbackFormat
	if tc.Format != "" {
		f, err := Parse(tc.Format)
		if err != nil {
			return nil, err
		}
		format = f
	}

	enc := encoderFactoryFor(tc.Params["encoding"])

	var flush FlushPolicy
	switch tc.FlushPolicy {
	case "", "immediate":
		flush = FlushImmediate
	case "never":
		flush = FlushNever
	default:
		flush = FlushImmediate
	}

	var inner Target
	var err error

	switch tc.Scheme {
	case "console":
		inner = NewConsoleTarget(id, ConsoleStdout, format, tree, nil)
	case "console-stderr":
		inner = NewConsoleTarget(id, ConsoleStderr, format, tree, nil)
	case "file":
		inner, err = newPlainFileTarget(id, tc, format, enc, flush, tree)
	case "segmented-file":
		inner, err = newSegmentedFileTargetFromConfig(id, tc, format, enc, flush, tree)
	default:
		if provider, ok := lethe.Lookup(tc.Scheme); ok {
			sink, perr := provider.CreateSink(tc.Params["target"], tc.Params)
			if perr != nil {
				return nil, NewConfigSemanticsError(perr.Error())
			}
			w, ok := sink.(interface {
				Write([]byte) (int, error)
			})
			if !ok {
				return nil, NewConfigSemanticsError("provider for scheme " + tc.Scheme + " did not return a writer")
			}
			inner = NewWriterTarget(id, w, format, enc, flush, tree)
		} else {
			return nil, NewConfigSemanticsError("unknown target scheme: " + tc.Scheme)
		}
	}
	if err != nil {
		return nil, err
	}

	inner.(interface{ SetMinLevel(Level) }).SetMinLevel(tc.Level)

	wrapped, err := wrapAsync(id, inner, tc)
	if err != nil {
		return nil, err
	}
	return wrapped, nil
}

func encoderFactoryFor(encoding string) EncoderFactory {
	switch encoding {
	case "json":
		return JSONEncoderFactory()
	default:
		return TextEncoderFactory(false)
	}
}

func newPlainFileTarget(id uint32, tc TargetConfig, format *Formatter, enc EncoderFactory, flush FlushPolicy, tree *Tree) (Target, error) {
	path := tc.Params["path"]
	if path == "" {
		return nil, NewConfigSemanticsError("file target requires a \"path\" param")
	}
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	return NewWriterTarget(id, f, format, enc, flush, tree), nil
}

func newSegmentedFileTargetFromConfig(id uint32, tc TargetConfig, format *Formatter, enc EncoderFactory, flush FlushPolicy, tree *Tree) (Target, error) {
	dir := tc.Params["dir"]
	base := tc.Params["base"]
	if base == "" {
		return nil, NewConfigSemanticsError("segmented-file target requires a \"base\" param")
	}
	var maxBytes int64 = 64 << 20
	if s := tc.Params["max_bytes"]; s != "" {
		fmt.Sscanf(s, "%d", &maxBytes)
	}
	return NewSegmentedFileTarget(id, dir, base, maxBytes, format, enc, flush, tree)
}

// wrapAsync wraps inner in the async variant (deferred or quantum) that
// tc's options request, independent of tc.Scheme itself.
func wrapAsync(id uint32, inner Target, tc TargetConfig) (Target, error) {
	if tc.Deferred {
		depth := tc.QueueBatchSize * 4
		return NewDeferredTarget(id, inner, depth), nil
	}
	if tc.QuantumBufferSize > 0 {
		opts := QuantumOptions{
			Capacity:   tc.QuantumBufferSize,
			Block:      tc.QuantumCongestionPolicy == "wait",
			DiscardAll: tc.QuantumCongestionPolicy == "discard-all",
		}
		return NewQuantumTarget(id, inner, opts)
	}
	return inner, nil
}

// Tree exposes the engine's source tree for configuration and inspection.
func (e *Engine) Tree() *Tree { return e.tree }

// Registry exposes the engine's target registry for configuration and
// inspection.
func (e *Engine) Registry() *Registry { return e.reg }

// DefaultLogger returns the logger bound to the tree's root source.
func (e *Engine) DefaultLogger() *Logger { return e.defaultL }

// PrivateLogger returns a goroutine-affine logger bound to qname.
func (e *Engine) PrivateLogger(qname string) (*Logger, error) {
	src, err := e.tree.DefineSource(qname, true)
	if err != nil {
		return nil, err
	}
	return newLogger(src, Private, e.reg), nil
}

// SharedLogger returns a concurrency-safe logger bound to qname.
func (e *Engine) SharedLogger(qname string) (*Logger, error) {
	src, err := e.tree.DefineSource(qname, true)
	if err != nil {
		return nil, err
	}
	return newLogger(src, Shared, e.reg), nil
}

// Terminate flushes and closes every registered target exactly once and
// empties the registry, so log calls on loggers bound to this engine after
// Terminate reach no target and are dropped without a report. A second call
// returns a lifecycle error.
func (e *Engine) Terminate() error {
	if !e.started.CompareAndSwap(true, false) {
		return NewLifecycleError("engine", "terminate called more than once")
	}
	e.reg.CloseAll()
	return nil
}
