package pipeline

import "github.com/sneedgroup-holder/wink-browser/pkg/dom"

// InvalidationSet accumulates the nodes whose style must be
// recomputed. A document-level invalidation subsumes the per-node
// entries.
type InvalidationSet struct {
	nodes    map[dom.NodeID]bool
	document bool
}

func NewInvalidationSet() *InvalidationSet {
	return &InvalidationSet{nodes: make(map[dom.NodeID]bool)}
}

// Add marks one node dirty.
func (s *InvalidationSet) Add(id dom.NodeID) {
	s.nodes[id] = true
}

// MarkDocument escalates to a whole-document recompute.
func (s *InvalidationSet) MarkDocument() {
	s.document = true
}

// Empty reports whether nothing is dirty.
func (s *InvalidationSet) Empty() bool {
	return !s.document && len(s.nodes) == 0
}

// DocumentLevel reports whether the whole document is dirty.
func (s *InvalidationSet) DocumentLevel() bool { return s.document }

// Nodes returns the dirty node set, or nil for a document-level
// invalidation.
func (s *InvalidationSet) Nodes() map[dom.NodeID]bool {
	if s.document {
		return nil
	}
	return s.nodes
}

// Len returns the number of per-node entries.
func (s *InvalidationSet) Len() int { return len(s.nodes) }

// Reset clears the set after a flush.
func (s *InvalidationSet) Reset() {
	s.nodes = make(map[dom.NodeID]bool)
	s.document = false
}
