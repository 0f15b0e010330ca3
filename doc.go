// Package elog provides a hierarchical, structured logging engine for Go
// applications.
//
// A process builds a tree of named log sources, each with its own
// effective level and set of output targets. Targets range from a
// synchronous console/file writer to lock-free single- and
// multi-producer async rings, and records can be rendered through any of
// several wire formats: plain text, structured properties, JSON,
// column-oriented, comma-separated, or message-queue headers.
//
// # Quick start
//
//	engine, err := elog.Initialize(&elog.Config{
//		Level:   elog.LevelSetting{Level: elog.Info},
//		Format:  "${time} ${level} ${src}: ${msg}",
//		Targets: []elog.TargetConfig{{Scheme: "console"}},
//	})
//	if err != nil {
//		panic(err)
//	}
//	defer engine.Terminate()
//
//	log := engine.DefaultLogger()
//	log.Info("service started")
//
// # Source hierarchy
//
// Sources are addressed by dotted qualified name ("http.server.tls"). A
// source's effective level is its own level (Info for the root, Diag for
// any other source until SetLevel is called on it) unless an ancestor's
// propagation directive changes it: Set replaces it, Restrict keeps it no
// more verbose than the ancestor's level, and Loose makes it at least as
// verbose.
//
// # Targets and async delivery
//
// A Target accepts Records synchronously from the caller's goroutine.
// Wrapping a synchronous target in a DeferredTarget, QuantumTarget, or
// MultiQuantumTarget moves the encode-and-write work off the caller's
// critical path, trading bounded queue depth (or ring capacity) for
// lower logging latency.
//
// # Configuration
//
// ParseConfig ingests a flat or nested key→value map using the
// "log_format" / "log_level" / "<source>.log_level" / "log_target" key
// grammar; LoadConfigFromJSON reads that grammar from a JSON file, and
// ConfigWatcher hot-reloads level settings from such a file as it
// changes on disk.
package elog
