// config.go: key→value configuration ingestion
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"strconv"
	"strings"
)

// TargetConfig is one `log_target` entry: the scheme selects which
// concrete Target constructor factory.go dispatches to; the remaining
// fields mirror the target config keys the core consumes.
type TargetConfig struct {
	Scheme                  string
	Name                    string
	Level                   Level
	Format                  string
	Filter                  string
	FlushPolicy             string
	Deferred                bool
	QueueBatchSize          int
	QueueTimeoutMillis      int
	QuantumBufferSize       int64
	QuantumCongestionPolicy string // wait | discard-log | discard-all
	Params                  map[string]string
}

// LevelSetting is a parsed `log_level` value: a level name plus its
// optional propagation suffix.
type LevelSetting struct {
	Level        Level
	Propagate    Propagation
	HasPropagate bool
}

// Config is the parsed form of a configuration ingestion payload, ready to
// be passed to Initialize (or, for its level settings only, to
// Engine.ApplyLevels).
type Config struct {
	Format        string
	Level         LevelSetting
	SourceLevels  map[string]LevelSetting // qualified source name -> level
	Targets       []TargetConfig
}

// ParseConfig walks a flat or nested key→value map and produces a Config.
// Recognized keys: "log_format", "log_level", "<qname>.log_level",
// "log_target" (a single target map or a []interface{} of them).
func ParseConfig(raw map[string]interface{}) (*Config, error) {
	cfg := &Config{SourceLevels: make(map[string]LevelSetting)}

	for key, val := range raw {
		switch {
		case key == "log_format":
			s, ok := val.(string)
			if !ok {
				return nil, NewConfigSemanticsError("log_format must be a string")
			}
			cfg.Format = s

		case key == "log_level":
			s, ok := val.(string)
			if !ok {
				return nil, NewConfigSemanticsError("log_level must be a string")
			}
			ls, err := parseLevelSetting(s)
			if err != nil {
				return nil, err
			}
			cfg.Level = ls

		case key == "log_target":
			targets, err := parseLogTargetValue(val)
			if err != nil {
				return nil, err
			}
			cfg.Targets = append(cfg.Targets, targets...)

		case strings.HasSuffix(key, ".log_level"):
			qname := strings.TrimSuffix(key, ".log_level")
			s, ok := val.(string)
			if !ok {
				return nil, NewConfigSemanticsError(fmt.Sprintf("%s must be a string", key))
			}
			ls, err := parseLevelSetting(s)
			if err != nil {
				return nil, err
			}
			cfg.SourceLevels[qname] = ls

		default:
			return nil, NewConfigSemanticsError("unrecognized config key: " + key)
		}
	}

	return cfg, nil
}

// parseLevelSetting parses "warn", "warn*", "warn+", "warn-" into a
// LevelSetting.
func parseLevelSetting(s string) (LevelSetting, error) {
	if s == "" {
		return LevelSetting{}, NewConfigSemanticsError("empty log_level value")
	}

	var prop Propagation
	hasProp := true
	name := s
	switch s[len(s)-1] {
	case '*':
		prop = PropagateSet
		name = s[:len(s)-1]
	case '+':
		prop = PropagateLoose
		name = s[:len(s)-1]
	case '-':
		prop = PropagateRestrict
		name = s[:len(s)-1]
	default:
		hasProp = false
	}

	level, ok := ParseLevel(name)
	if !ok {
		return LevelSetting{}, NewConfigSemanticsError("unknown log level: " + name)
	}
	return LevelSetting{Level: level, Propagate: prop, HasPropagate: hasProp}, nil
}

func parseLogTargetValue(val interface{}) ([]TargetConfig, error) {
	switch v := val.(type) {
	case map[string]interface{}:
		tc, err := parseTargetConfig(v)
		if err != nil {
			return nil, err
		}
		return []TargetConfig{tc}, nil
	case []interface{}:
		var out []TargetConfig
		for _, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, NewConfigSemanticsError("log_target array entries must be maps")
			}
			tc, err := parseTargetConfig(m)
			if err != nil {
				return nil, err
			}
			out = append(out, tc)
		}
		return out, nil
	default:
		return nil, NewConfigSemanticsError("log_target must be a map or array of maps")
	}
}

func parseTargetConfig(m map[string]interface{}) (TargetConfig, error) {
	tc := TargetConfig{Level: Diag, Params: make(map[string]string)}

	getString := func(key string) (string, bool) {
		v, ok := m[key]
		if !ok {
			return "", false
		}
		s, ok := v.(string)
		return s, ok
	}
	getBool := func(key string) (bool, bool) {
		v, ok := m[key]
		if !ok {
			return false, false
		}
		b, ok := v.(bool)
		return b, ok
	}
	getInt := func(key string) (int64, bool) {
		v, ok := m[key]
		if !ok {
			return 0, false
		}
		switch n := v.(type) {
		case int:
			return int64(n), true
		case int64:
			return n, true
		case float64:
			return int64(n), true
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			return i, err == nil
		}
		return 0, false
	}

	if s, ok := getString("scheme"); ok {
		tc.Scheme = s
	} else {
		return tc, NewConfigSemanticsError("log_target entry missing required key: scheme")
	}
	if s, ok := getString("name"); ok {
		tc.Name = s
	}
	if s, ok := getString("log_level"); ok {
		ls, err := parseLevelSetting(s)
		if err != nil {
			return tc, err
		}
		tc.Level = ls.Level
	}
	if s, ok := getString("log_format"); ok {
		tc.Format = s
	}
	if s, ok := getString("filter"); ok {
		tc.Filter = s
	}
	if s, ok := getString("flush_policy"); ok {
		tc.FlushPolicy = s
	}
	if b, ok := getBool("deferred"); ok {
		tc.Deferred = b
	}
	if n, ok := getInt("queue_batch_size"); ok {
		tc.QueueBatchSize = int(n)
	}
	if n, ok := getInt("queue_timeout_millis"); ok {
		tc.QueueTimeoutMillis = int(n)
	}
	if n, ok := getInt("quantum_buffer_size"); ok {
		tc.QuantumBufferSize = n
	}
	if s, ok := getString("quantum-congestion-policy"); ok {
		switch s {
		case "wait", "discard-log", "discard-all":
			tc.QuantumCongestionPolicy = s
		default:
			return tc, NewConfigSemanticsError("unknown quantum-congestion-policy: " + s)
		}
	}

	knownKeys := map[string]bool{
		"scheme": true, "name": true, "log_level": true, "log_format": true,
		"filter": true, "flush_policy": true, "deferred": true,
		"queue_batch_size": true, "queue_timeout_millis": true,
		"quantum_buffer_size": true, "quantum-congestion-policy": true,
	}
	for k, v := range m {
		if knownKeys[k] {
			continue
		}
		if s, ok := v.(string); ok {
			tc.Params[k] = s
		}
	}

	return tc, nil
}
