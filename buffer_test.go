package elog

import "testing"

func TestLogBufferInline(t *testing.T) {
	b := NewLogBuffer(0)
	if !b.Append([]byte("hello")) {
		t.Fatal("inline append should succeed")
	}
	if b.String() != "hello" {
		t.Errorf("got %q, want %q", b.String(), "hello")
	}
	if b.Full() {
		t.Error("unbounded buffer should never report full")
	}
}

func TestLogBufferOverflow(t *testing.T) {
	b := NewLogBuffer(0)
	big := make([]byte, inlineBufferSize+100)
	for i := range big {
		big[i] = 'x'
	}
	if !b.Append(big) {
		t.Fatal("overflow append should succeed when unbounded")
	}
	if b.Len() != len(big) {
		t.Errorf("Len() = %d, want %d", b.Len(), len(big))
	}
	// Appending more after overflow should keep working from the dynamic region.
	if !b.AppendString("tail") {
		t.Fatal("post-overflow append should succeed")
	}
	if b.Len() != len(big)+4 {
		t.Errorf("Len() after tail = %d, want %d", b.Len(), len(big)+4)
	}
}

func TestLogBufferMaxCap(t *testing.T) {
	b := NewLogBuffer(10)
	ok := b.Append([]byte("0123456789ABCDEF"))
	if ok {
		t.Error("Append exceeding maxCap should return false")
	}
	if !b.Full() {
		t.Error("Full() should be true after truncation")
	}
	if b.Len() != 10 {
		t.Errorf("Len() = %d, want 10", b.Len())
	}
}

func TestLogBufferReset(t *testing.T) {
	b := NewLogBuffer(0)
	b.AppendString("something")
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", b.Len())
	}
	if b.Full() {
		t.Error("Full() should reset to false")
	}
	b.AppendString("again")
	if b.String() != "again" {
		t.Errorf("got %q after reset+append, want %q", b.String(), "again")
	}
}

func TestLogBufferResetAfterOverflow(t *testing.T) {
	b := NewLogBuffer(0)
	big := make([]byte, inlineBufferSize+50)
	b.Append(big)
	b.Reset()
	if b.Len() != 0 {
		t.Errorf("Len() = %d, want 0", b.Len())
	}
	b.AppendString("small")
	if b.String() != "small" {
		t.Errorf("got %q, want %q", b.String(), "small")
	}
}
