package elog

import "testing"

func TestLevelAtLeast(t *testing.T) {
	f := LevelAtLeast(Warn)
	if !f.Match(&Record{Level: Error}) {
		t.Error("Error should match LevelAtLeast(Warn)")
	}
	if f.Match(&Record{Level: Info}) {
		t.Error("Info should not match LevelAtLeast(Warn)")
	}
}

func TestSourceHasPrefix(t *testing.T) {
	tree := NewTree()
	src, err := tree.DefineSource("http.server", true)
	if err != nil {
		t.Fatalf("DefineSource: %v", err)
	}
	f := SourceHasPrefix(tree, "http")
	if !f.Match(&Record{SourceID: src.ID}) {
		t.Error("expected http.server to match the http prefix")
	}
	if f.Match(&Record{SourceID: 9999}) {
		t.Error("expected an unknown source id not to match")
	}
}

func TestAndFilter(t *testing.T) {
	always := FilterFunc(func(*Record) bool { return true })
	never := FilterFunc(func(*Record) bool { return false })
	if And(always, never).Match(&Record{}) {
		t.Error("And(true, false) should be false")
	}
	if !And(always, always).Match(&Record{}) {
		t.Error("And(true, true) should be true")
	}
	if !And().Match(&Record{}) {
		t.Error("And() with no children should vacuously be true")
	}
}

func TestOrFilter(t *testing.T) {
	always := FilterFunc(func(*Record) bool { return true })
	never := FilterFunc(func(*Record) bool { return false })
	if !Or(never, always).Match(&Record{}) {
		t.Error("Or(false, true) should be true")
	}
	if Or(never, never).Match(&Record{}) {
		t.Error("Or(false, false) should be false")
	}
	if Or().Match(&Record{}) {
		t.Error("Or() with no children should vacuously be false")
	}
}

func TestNotFilter(t *testing.T) {
	always := FilterFunc(func(*Record) bool { return true })
	if Not(always).Match(&Record{}) {
		t.Error("Not(true) should be false")
	}
}
