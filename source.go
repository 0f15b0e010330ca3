// source.go: hierarchical named log sources
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package elog

import (
	"strings"
	"sync"
	"sync/atomic"
)

// Propagation controls how a source's level reaches its descendants.
type Propagation int8

const (
	// PropagateNone leaves descendants independent.
	PropagateNone Propagation = iota
	// PropagateSet hard-overrides every descendant's effective level.
	PropagateSet
	// PropagateRestrict keeps descendants no more verbose than this level:
	// a lower descendant level is raised to this one.
	PropagateRestrict
	// PropagateLoose lets descendants be at least as verbose as this level:
	// a higher descendant level is lowered to this one.
	PropagateLoose
)

// Source is a node in the tree rooted at an unnamed root. Structural
// mutation (DefineSource) happens under Tree.mu during configuration;
// after that, level/affinity reads on the hot path are lock-free atomics,
// since the topology is stable and lookups never need the tree lock.
type Source struct {
	ID       uint32
	Name     string
	Parent   *Source
	children map[string]*Source

	level      atomic.Int32 // Level, own setting
	effective  atomic.Int32 // Level, computed from the root->self path
	propagate  atomic.Int32 // Propagation
	affinity   atomic.Uint64 // target-id bitmap; 0 means "all enabled targets"

	loggersMu sync.Mutex
	loggers   []*Logger
}

// QualifiedName returns the dotted path from the root to this source. The
// root's qualified name is the empty string.
func (s *Source) QualifiedName() string {
	if s.Parent == nil {
		return ""
	}
	var parts []string
	for n := s; n.Parent != nil; n = n.Parent {
		parts = append([]string{n.Name}, parts...)
	}
	return strings.Join(parts, ".")
}

// EffectiveLevel returns the source's current computed level.
func (s *Source) EffectiveLevel() Level {
	return Level(s.effective.Load())
}

// Affinity returns the target-affinity bitmap. Zero means "all enabled
// targets".
func (s *Source) Affinity() uint64 {
	return s.affinity.Load()
}

// SetAffinity sets the target-affinity bitmap for this source.
func (s *Source) SetAffinity(mask uint64) {
	s.affinity.Store(mask)
}

// Tree is the process-wide hierarchy of named log sources.
type Tree struct {
	mu       sync.Mutex
	root     *Source
	byID     map[uint32]*Source
	nextID   uint32
}

// NewTree creates a tree with only the root source (empty name, id 0).
func NewTree() *Tree {
	root := &Source{Name: "", children: make(map[string]*Source)}
	t := &Tree{root: root, byID: make(map[uint32]*Source)}
	t.byID[0] = root
	root.level.Store(int32(Info))
	root.effective.Store(int32(Info))
	return t
}

// Root returns the tree's root source.
func (t *Tree) Root() *Source { return t.root }

// ByID looks up a source by id in O(1).
func (t *Tree) ByID(id uint32) (*Source, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.byID[id]
	return s, ok
}

// ByName looks up a source by its dotted qualified name in O(depth).
func (t *Tree) ByName(qname string) (*Source, bool) {
	if qname == "" {
		return t.root, true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	node := t.root
	for _, part := range strings.Split(qname, ".") {
		child, ok := node.children[part]
		if !ok {
			return nil, false
		}
		node = child
	}
	return node, true
}

// DefineSource walks the tree from the root along qname, creating missing
// intermediate nodes when defineMissing is true. It fails
// (NewConfigSemanticsError) if an intermediate node is missing and
// defineMissing is false.
func (t *Tree) DefineSource(qname string, defineMissing bool) (*Source, error) {
	if qname == "" {
		return t.root, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	node := t.root
	parts := strings.Split(qname, ".")
	for i, part := range parts {
		child, ok := node.children[part]
		if !ok {
			if !defineMissing && i != len(parts)-1 {
				return nil, NewConfigSemanticsError("missing intermediate source: " + strings.Join(parts[:i+1], "."))
			}
			t.nextID++
			child = &Source{
				ID:       t.nextID,
				Name:     part,
				Parent:   node,
				children: make(map[string]*Source),
			}
			child.propagate.Store(int32(PropagateNone))
			node.children[part] = child
			t.byID[child.ID] = child
			t.republishFrom(child)
		}
		node = child
	}
	return node, nil
}

// SetLevel sets a source's own level and propagation mode, then republishes
// effective levels to itself and all its descendants.
func (s *Source) SetLevel(level Level, prop Propagation) {
	s.level.Store(int32(level))
	s.propagate.Store(int32(prop))
	s.republish()
}

// republish recomputes s's effective level from the root->s path and then
// recurses into every child.
func (s *Source) republish() {
	s.effective.Store(int32(computeEffective(s)))
	for _, c := range s.children {
		c.republish()
	}
}

// republishFrom is used when a new node is inserted: it only needs to
// compute its own effective level, since it has no children yet.
func (t *Tree) republishFrom(s *Source) {
	s.effective.Store(int32(computeEffective(s)))
}

// computeEffective implements the effective-level walk: the node's own
// level is the fallback; each strict ancestor,
// visited root-first, then contributes its declared propagation. A Set
// ancestor hard-overrides the level and locks it: once locked, closer
// Restrict/Loose ancestors have no further effect. A closer Set may still re-lock
// to a more specific value. Restrict raises the running level to the
// ancestor's when it is lower (less verbose); Loose lowers it to the
// ancestor's when it is higher (more verbose); None contributes nothing.
func computeEffective(s *Source) Level {
	var ancestors []*Source
	for n := s.Parent; n != nil; n = n.Parent {
		ancestors = append(ancestors, n)
	}
	// ancestors is s.Parent, s.Parent.Parent, ..., root; reverse to root-first.
	for i, j := 0, len(ancestors)-1; i < j; i, j = i+1, j-1 {
		ancestors[i], ancestors[j] = ancestors[j], ancestors[i]
	}

	level := Level(s.level.Load())
	locked := false

	for _, a := range ancestors {
		switch Propagation(a.propagate.Load()) {
		case PropagateSet:
			level = Level(a.level.Load())
			locked = true
		case PropagateRestrict:
			if !locked {
				if al := Level(a.level.Load()); al > level {
					level = al
				}
			}
		case PropagateLoose:
			if !locked {
				if al := Level(a.level.Load()); al < level {
					level = al
				}
			}
		case PropagateNone:
			// contributes nothing
		}
	}
	return level
}

// AttachLogger records a logger as bound to this source.
func (s *Source) AttachLogger(l *Logger) {
	s.loggersMu.Lock()
	defer s.loggersMu.Unlock()
	s.loggers = append(s.loggers, l)
}
