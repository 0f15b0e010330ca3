package elog

import "testing"

func TestNewConsoleTargetStdout(t *testing.T) {
	f := MustParse("${level}: ${msg}")
	target := NewConsoleTarget(1, ConsoleStdout, f, nil, nil)
	if target == nil {
		t.Fatal("expected a non-nil target")
	}
	if target.ID() != 1 {
		t.Errorf("ID() = %d, want 1", target.ID())
	}
}

func TestNewConsoleTargetForceColor(t *testing.T) {
	f := MustParse("${msg}")
	on := true
	off := false
	if target := NewConsoleTarget(2, ConsoleStderr, f, nil, &on); target == nil {
		t.Fatal("expected a non-nil target with color forced on")
	}
	if target := NewConsoleTarget(3, ConsoleStderr, f, nil, &off); target == nil {
		t.Fatal("expected a non-nil target with color forced off")
	}
}
