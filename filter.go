// filter.go: boolean predicates over a record
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import "strings"

// Filter decides whether a record should be delivered to a target.
type Filter interface {
	Match(rec *Record) bool
}

// FilterFunc adapts a function to the Filter interface.
type FilterFunc func(rec *Record) bool

func (f FilterFunc) Match(rec *Record) bool { return f(rec) }

// LevelAtLeast matches records whose level is >= min.
func LevelAtLeast(min Level) Filter {
	return FilterFunc(func(rec *Record) bool { return rec.Level >= min })
}

// SourceHasPrefix matches records whose source's qualified name (resolved
// via tree) starts with prefix. The tree lookup happens once per record;
// callers on a hot path that filter by a fixed source should prefer the
// affinity mask instead.
func SourceHasPrefix(tree *Tree, prefix string) Filter {
	return FilterFunc(func(rec *Record) bool {
		s, ok := tree.ByID(rec.SourceID)
		if !ok {
			return false
		}
		return strings.HasPrefix(s.QualifiedName(), prefix)
	})
}

type andFilter struct{ children []Filter }

// And composes filters: true iff every child matches.
func And(children ...Filter) Filter { return andFilter{children} }

func (f andFilter) Match(rec *Record) bool {
	for _, c := range f.children {
		if !c.Match(rec) {
			return false
		}
	}
	return true
}

type orFilter struct{ children []Filter }

// Or composes filters: true iff any child matches.
func Or(children ...Filter) Filter { return orFilter{children} }

func (f orFilter) Match(rec *Record) bool {
	for _, c := range f.children {
		if c.Match(rec) {
			return true
		}
	}
	return false
}

type notFilter struct{ child Filter }

// Not negates a filter.
func Not(child Filter) Filter { return notFilter{child} }

func (f notFilter) Match(rec *Record) bool { return !f.child.Match(rec) }
