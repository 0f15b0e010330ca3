// config_loader.go: JSON configuration loading and file-watch hot reload
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/agilira/argus"
)

// validateConfigPath rejects paths that attempt to escape the intended
// directory via "..", the same defense-in-depth check applied before any
// config file this process did not itself create is opened.
func validateConfigPath(path string) error {
	if path == "" {
		return NewConfigSemanticsError("empty config file path")
	}
	if strings.Contains(filepath.Clean(path), "..") {
		return NewConfigSemanticsError("config path contains directory traversal: " + path)
	}
	return nil
}

// LoadConfigFromJSON reads path and parses it with ParseConfig. The file
// must contain a single JSON object using the flat/nested key grammar
// ParseConfig understands.
func LoadConfigFromJSON(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) // #nosec G304 -- path validated above
	if err != nil {
		return nil, NewConfigSemanticsError(fmt.Sprintf("reading %s: %v", path, err))
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, NewConfigSemanticsError(fmt.Sprintf("parsing %s: %v", path, err))
	}
	return ParseConfig(raw)
}

// ApplyLevels re-applies only the level-related settings of cfg to the
// engine's source tree: the root level and every named source's level.
// It deliberately does not touch the target registry, so a reload never
// closes or reopens a sink mid-flight; only filtering sensitivity changes.
func (e *Engine) ApplyLevels(cfg *Config) {
	if cfg.Level.Level != 0 || cfg.Level.HasPropagate {
		e.tree.Root().SetLevel(cfg.Level.Level, cfg.Level.Propagate)
	}
	for qname, ls := range cfg.SourceLevels {
		src, err := e.tree.DefineSource(qname, true)
		if err != nil {
			continue
		}
		src.SetLevel(ls.Level, ls.Propagate)
	}
}

// ConfigWatcher watches a JSON config file for changes and hot-reloads the
// level settings of an Engine's source tree without restarting any target,
// using argus for the underlying poll-based file watch and audit trail.
type ConfigWatcher struct {
	configPath string
	engine     *Engine
	watcher    *argus.Watcher
	enabled    int32
	mu         sync.Mutex
}

// NewConfigWatcher builds a watcher that hot-reloads engine's level
// settings whenever configPath changes on disk.
func NewConfigWatcher(configPath string, engine *Engine) (*ConfigWatcher, error) {
	if _, err := os.Stat(configPath); err != nil {
		return nil, NewConfigSemanticsError(fmt.Sprintf("config file does not exist: %v", err))
	}

	argusCfg := argus.Config{
		PollInterval:         2 * time.Second,
		OptimizationStrategy: argus.OptimizationAuto,
		Audit: argus.AuditConfig{
			Enabled:       true,
			OutputFile:    "elog-config-audit.jsonl",
			MinLevel:      argus.AuditInfo,
			BufferSize:    1000,
			FlushInterval: 5 * time.Second,
		},
		ErrorHandler: func(err error, path string) {
			reportRuntimeError(nil, 0, ErrCodeConfigSemantics, fmt.Sprintf("config watcher error for %s: %v", path, err))
		},
	}

	watcher := argus.New(*argusCfg.WithDefaults())
	return &ConfigWatcher{configPath: configPath, engine: engine, watcher: watcher}, nil
}

// Start loads the current config immediately, then begins watching for
// further file changes.
func (w *ConfigWatcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if atomic.LoadInt32(&w.enabled) != 0 {
		return NewLifecycleError("config-watcher", "already started")
	}

	if cfg, err := LoadConfigFromJSON(w.configPath); err == nil {
		w.engine.ApplyLevels(cfg)
	}

	if err := w.watcher.Watch(w.configPath, func(event argus.ChangeEvent) {
		cfg, err := LoadConfigFromJSON(event.Path)
		if err != nil {
			reportRuntimeError(nil, 0, ErrCodeConfigSemantics, fmt.Sprintf("reload from %s failed: %v", event.Path, err))
			return
		}
		w.engine.ApplyLevels(cfg)
	}); err != nil {
		return NewLifecycleError("config-watcher", err.Error())
	}

	if err := w.watcher.Start(); err != nil {
		return NewLifecycleError("config-watcher", err.Error())
	}
	atomic.StoreInt32(&w.enabled, 1)
	return nil
}

// Stop stops the underlying file watcher.
func (w *ConfigWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if atomic.LoadInt32(&w.enabled) == 0 {
		return NewLifecycleError("config-watcher", "not started")
	}
	if err := w.watcher.Stop(); err != nil {
		return NewLifecycleError("config-watcher", err.Error())
	}
	atomic.StoreInt32(&w.enabled, 0)
	return nil
}

// IsRunning reports whether the watcher is currently active.
func (w *ConfigWatcher) IsRunning() bool { return atomic.LoadInt32(&w.enabled) != 0 }
