package css

import (
	"strings"

	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
)

// Matches reports whether sel selects node. Matching runs right to
// left: the subject compound is tested against node itself, then each
// combinator walks outward, short-circuiting on the first ancestry
// level with no candidate.
func Matches(sel *Selector, node *dom.Node) bool {
	if node == nil || node.Kind != dom.ElementNode {
		return false
	}
	last := len(sel.Compounds) - 1
	if !matchCompound(&sel.Compounds[last], node) {
		return false
	}
	return matchLeft(sel, last-1, node)
}

// matchLeft tries to satisfy compounds [0..i] to the left of node,
// joined by sel.Combinators[i].
func matchLeft(sel *Selector, i int, node *dom.Node) bool {
	if i < 0 {
		return true
	}
	comp := &sel.Compounds[i]
	switch sel.Combinators[i] {
	case Child:
		p := node.Parent
		if p == nil || !matchCompound(comp, p) {
			return false
		}
		return matchLeft(sel, i-1, p)
	case Descendant:
		for p := node.Parent; p != nil; p = p.Parent {
			if matchCompound(comp, p) && matchLeft(sel, i-1, p) {
				return true
			}
		}
		return false
	case NextSibling:
		s := previousElementSibling(node)
		if s == nil || !matchCompound(comp, s) {
			return false
		}
		return matchLeft(sel, i-1, s)
	case SubsequentSibling:
		for s := previousElementSibling(node); s != nil; s = previousElementSibling(s) {
			if matchCompound(comp, s) && matchLeft(sel, i-1, s) {
				return true
			}
		}
		return false
	}
	return false
}

func matchCompound(comp *Compound, n *dom.Node) bool {
	if n.Kind != dom.ElementNode {
		return false
	}
	// Pseudo-classes are accepted by the parser but never match.
	if len(comp.Pseudos) > 0 {
		return false
	}
	if comp.Tag != "" && comp.Tag != n.Tag {
		return false
	}
	if comp.ID != "" {
		id, ok := n.GetAttribute("id")
		if !ok || id != comp.ID {
			return false
		}
	}
	for _, class := range comp.Classes {
		if !n.HasClass(class) {
			return false
		}
	}
	for i := range comp.Attrs {
		if !matchAttr(&comp.Attrs[i], n) {
			return false
		}
	}
	return true
}

func matchAttr(m *AttrMatch, n *dom.Node) bool {
	val, ok := n.GetAttribute(m.Name)
	if !ok {
		return false
	}
	switch m.Op {
	case AttrExists:
		return true
	case AttrEquals:
		return val == m.Value
	case AttrIncludes:
		for _, tok := range strings.Fields(val) {
			if tok == m.Value {
				return true
			}
		}
		return false
	case AttrPrefix:
		return m.Value != "" && strings.HasPrefix(val, m.Value)
	case AttrSuffix:
		return m.Value != "" && strings.HasSuffix(val, m.Value)
	case AttrSubstring:
		return m.Value != "" && strings.Contains(val, m.Value)
	case AttrDashMatch:
		return val == m.Value || strings.HasPrefix(val, m.Value+"-")
	}
	return false
}

func previousElementSibling(n *dom.Node) *dom.Node {
	if n.Parent == nil {
		return nil
	}
	prev := (*dom.Node)(nil)
	for _, c := range n.Parent.Children {
		if c == n {
			return prev
		}
		if c.Kind == dom.ElementNode {
			prev = c
		}
	}
	return nil
}
