// writer_target.go: synchronous io.Writer-backed target, plus a segmented
// (size-rotated) file target
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agilira/go-errors"

	"github.com/agilira/elog/internal/bufferpool"
	"github.com/agilira/elog/internal/lethe"
)

// defaultErrorSuppressWindow bounds how often an identical write error is
// reported per target
const defaultErrorSuppressWindow = 5 * time.Second

// EncoderFactory builds a fresh FieldReceptor over buf for one record. Each
// concrete encoder (text, JSON, CSV, …) is wrapped into one of these so a
// WriterTarget does not need to know which wire format it is producing.
type EncoderFactory func(buf *LogBuffer) FieldReceptor

// TextEncoderFactory returns an EncoderFactory producing plain-text lines.
func TextEncoderFactory(color bool) EncoderFactory {
	return func(buf *LogBuffer) FieldReceptor { return NewTextEncoder(buf, color) }
}

// JSONEncoderFactory returns an EncoderFactory producing one JSON object per
// record; WriterTarget appends the trailing newline itself.
func JSONEncoderFactory() EncoderFactory {
	return func(buf *LogBuffer) FieldReceptor { return NewJSONEncoder(buf) }
}

// WriterTarget writes formatted records synchronously to an io.Writer. It
// is the base every other synchronous target (console, plain file) is
// built from; async targets (deferred, quantum, multiquantum) wrap one of
// these as their eventual sink.
type WriterTarget struct {
	baseTarget
	mu     sync.Mutex
	w      io.Writer
	format *Formatter
	newEnc EncoderFactory
	flush  FlushPolicy
	tree   *Tree
	pi     ProcessInfo
	utc    bool
	rl     *rateLimiter
	closer io.Closer
	enh    lethe.EnhancedWriter // non-nil when w opts into zero-copy writes
}

// NewWriterTarget builds a synchronous target writing formatted records to
// w. tree resolves ${src}; pass nil to disable source-name resolution.
func NewWriterTarget(id uint32, w io.Writer, formatter *Formatter, enc EncoderFactory, flush FlushPolicy, tree *Tree) *WriterTarget {
	if flush == nil {
		flush = FlushImmediate
	}
	t := &WriterTarget{
		baseTarget: newBaseTarget(id, Diag, "writer", RequiresLock),
		w:          w,
		format:     formatter,
		newEnc:     enc,
		flush:      flush,
		tree:       tree,
		pi:         DefaultProcessInfo,
		rl:         newRateLimiter(defaultErrorSuppressWindow),
	}
	if c, ok := w.(io.Closer); ok {
		t.closer = c
	}
	t.enh = lethe.Detect(w)
	_ = t.start()
	return t
}

// Start marks the target live. NewWriterTarget already calls it, so a
// caller using the constructor directly never needs to.
func (t *WriterTarget) Start() error { return t.start() }

func (t *WriterTarget) Submit(rec *Record) {
	if t.rejectIfNotLive() {
		return
	}
	if rec.IsSentinel() {
		switch rec.Control {
		case RecordFlush:
			_ = t.Flush()
		case RecordStop:
			_ = t.Close()
		}
		return
	}
	if !t.accepts(rec) {
		return
	}
	t.noteWrite()

	buf := NewLogBuffer(0)
	recv := t.newEnc(buf)
	t.format.Render(recv, rec, t.tree, t.pi, t.utc)
	if closer, ok := recv.(interface{ Close() }); ok {
		closer.Close()
	}
	buf.AppendString("\n")

	// Stage the encoded line through a pooled bytes.Buffer so the write
	// itself (which can block behind a slow console or file descriptor
	// while t.mu is held) never holds onto LogBuffer's own storage,
	// letting callers reuse a LogBuffer pool of their own independent of
	// how long this write takes.
	scratch := bufferpool.Get()
	scratch.Write(buf.Bytes())

	t.mu.Lock()
	var err error
	if t.enh != nil {
		// The writer promises not to retain scratch's bytes past this
		// call, so it is safe to return scratch to the pool immediately.
		_, err = t.enh.WriteOwned(scratch.Bytes())
	} else {
		_, err = t.w.Write(scratch.Bytes())
	}
	t.mu.Unlock()
	bufferpool.Put(scratch)
	if err != nil {
		reportRuntimeError(t.rl, t.id, ErrCodeIOTransient, err.Error())
		return
	}
	t.noteRead()

	shouldFlush := t.flush.ShouldFlush(rec)
	if acc, ok := t.flush.(flushAccumulator); ok && acc.Accumulate(buf.Len()) {
		shouldFlush = true
	}
	if shouldFlush {
		_ = t.Flush()
	}
}

func (t *WriterTarget) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.w.(interface{ Sync() error }); ok {
		err := s.Sync()
		t.flushed.Add(1)
		return err
	}
	if f, ok := t.w.(interface{ Flush() error }); ok {
		err := f.Flush()
		t.flushed.Add(1)
		return err
	}
	t.flushed.Add(1)
	return nil
}

func (t *WriterTarget) Close() error {
	defer t.stop()
	_ = t.Flush()
	if t.closer != nil {
		return t.closer.Close()
	}
	return nil
}

// SegmentedFileTarget is a synchronous file target that rotates to a new
// numbered segment once the current file reaches maxBytes, grounded on
// original_source's rotating log-file writer.
type SegmentedFileTarget struct {
	*WriterTarget
	mu       sync.Mutex
	dir      string
	base     string
	maxBytes int64
	written  int64
	segment  int
	file     *os.File
}

// NewSegmentedFileTarget opens (or creates) the first segment of base in
// dir and rotates to base.N once a write would exceed maxBytes.
func NewSegmentedFileTarget(id uint32, dir, base string, maxBytes int64, formatter *Formatter, enc EncoderFactory, flush FlushPolicy, tree *Tree) (*SegmentedFileTarget, error) {
	s := &SegmentedFileTarget{dir: dir, base: base, maxBytes: maxBytes}
	if err := s.openSegment(0); err != nil {
		return nil, err
	}
	s.WriterTarget = NewWriterTarget(id, s, formatter, enc, flush, tree)
	return s, nil
}

// openAppend opens path for appended writes, creating it if necessary, for
// use by the plain "file" target scheme.
func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.New(ErrCodeIOPermanent, err.Error())
	}
	return f, nil
}

func (s *SegmentedFileTarget) segmentPath(n int) string {
	if n == 0 {
		return filepath.Join(s.dir, s.base)
	}
	return filepath.Join(s.dir, fmt.Sprintf("%s.%d", s.base, n))
}

func (s *SegmentedFileTarget) openSegment(n int) error {
	f, err := os.OpenFile(s.segmentPath(n), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.New(ErrCodeIOPermanent, err.Error())
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return errors.New(ErrCodeIOPermanent, err.Error())
	}
	s.file = f
	s.segment = n
	s.written = info.Size()
	return nil
}

// Write implements io.Writer, rotating to the next segment first if p would
// push the current segment past maxBytes.
func (s *SegmentedFileTarget) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxBytes > 0 && s.written+int64(len(p)) > s.maxBytes && s.written > 0 {
		prev := s.file
		if err := s.openSegment(s.segment + 1); err != nil {
			return 0, err
		}
		prev.Close()
	}
	n, err := s.file.Write(p)
	s.written += int64(n)
	return n, err
}

// Sync implements the interface WriterTarget.Flush probes for.
func (s *SegmentedFileTarget) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Sync()
}

// Close flushes and closes the current segment file. It shadows the
// embedded WriterTarget.Close so the registry's Target.Close call reaches
// the file directly.
func (s *SegmentedFileTarget) Close() error {
	defer s.WriterTarget.stop()
	_ = s.WriterTarget.Flush()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
