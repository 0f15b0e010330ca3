package elog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestWriterTargetSubmitWritesFormattedLine(t *testing.T) {
	var buf bytes.Buffer
	f := MustParse("${level}: ${msg}")
	target := NewWriterTarget(1, &buf, f, TextEncoderFactory(false), FlushImmediate, nil)
	target.Submit(&Record{Level: Info, Message: "started", SourceID: 0})
	want := "INFO: started\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriterTargetSubmitGatesByLevel(t *testing.T) {
	var buf bytes.Buffer
	f := MustParse("${msg}")
	target := NewWriterTarget(1, &buf, f, TextEncoderFactory(false), FlushImmediate, nil)
	target.SetMinLevel(Error)
	target.Submit(&Record{Level: Info, Message: "should be dropped"})
	if buf.Len() != 0 {
		t.Errorf("expected nothing written, got %q", buf.String())
	}
}

func TestWriterTargetSubmitSentinelFlush(t *testing.T) {
	var buf bytes.Buffer
	f := MustParse("${msg}")
	target := NewWriterTarget(1, &buf, f, TextEncoderFactory(false), FlushNever, nil)
	target.Submit(&Record{Control: RecordFlush})
	_, _, flushed := target.Stats()
	if flushed == 0 {
		t.Error("expected the flush sentinel to invoke Flush")
	}
}

func TestWriterTargetSubmitSentinelStopClosesUnderlyingCloser(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.log")
	file, err := openAppend(path)
	if err != nil {
		t.Fatalf("openAppend: %v", err)
	}
	f := MustParse("${msg}")
	target := NewWriterTarget(1, file, f, TextEncoderFactory(false), FlushImmediate, nil)
	target.Submit(&Record{Message: "hello"})
	target.Submit(&Record{Control: RecordStop})

	if _, err := file.Write([]byte("x")); err == nil {
		t.Error("expected the stop sentinel to close the underlying file")
	}

	// A Submit after the stop should not panic; the stopped target rejects
	// it as a lifecycle error before any write is attempted.
	target.Submit(&Record{Message: "after close"})
}

func TestOpenAppendCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "created.log")
	f, err := openAppend(path)
	if err != nil {
		t.Fatalf("openAppend: %v", err)
	}
	defer f.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}

func TestSegmentedFileTargetRotates(t *testing.T) {
	dir := t.TempDir()
	f := MustParse("${msg}")
	target, err := NewSegmentedFileTarget(1, dir, "app.log", 20, f, TextEncoderFactory(false), FlushImmediate, nil)
	if err != nil {
		t.Fatalf("NewSegmentedFileTarget: %v", err)
	}
	defer target.Close()

	for i := 0; i < 5; i++ {
		target.Submit(&Record{Message: "0123456789"})
	}

	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Errorf("expected base segment to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "app.log.1")); err != nil {
		t.Errorf("expected rotation to have created app.log.1: %v", err)
	}
}

func TestSegmentedFileTargetNoRotationUnderLimit(t *testing.T) {
	dir := t.TempDir()
	f := MustParse("${msg}")
	target, err := NewSegmentedFileTarget(1, dir, "small.log", 10_000, f, TextEncoderFactory(false), FlushImmediate, nil)
	if err != nil {
		t.Fatalf("NewSegmentedFileTarget: %v", err)
	}
	defer target.Close()

	target.Submit(&Record{Message: "short"})
	if _, err := os.Stat(filepath.Join(dir, "small.log.1")); err == nil {
		t.Error("did not expect rotation when under the byte limit")
	}
}
