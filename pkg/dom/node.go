package dom

import "strings"

// NodeID identifies a node within its owning document. IDs are never
// reused; script handles and invalidation sets refer to nodes by ID so
// the tree can be restructured freely without dangling pointers.
type NodeID uint64

type NodeKind int

const (
	ElementNode NodeKind = iota
	TextNode
	CommentNode
)

// Node is one node of the document tree. The tree owns its nodes:
// children belong to their parent, and Parent is a non-owning back
// reference that never keeps a subtree alive.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Tag      string // lowercase element name; empty for text/comment
	Text     string // text/comment content
	Children []*Node
	Parent   *Node

	attrs     map[string]string
	attrOrder []string // attribute names in source order
}

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	if n.attrs == nil {
		return "", false
	}
	val, ok := n.attrs[name]
	return val, ok
}

// SetAttribute sets an attribute, preserving first-set order for
// iteration and serialization.
func (n *Node) SetAttribute(name, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	if _, exists := n.attrs[name]; !exists {
		n.attrOrder = append(n.attrOrder, name)
	}
	n.attrs[name] = value
}

// RemoveAttribute deletes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	if n.attrs == nil {
		return
	}
	if _, ok := n.attrs[name]; !ok {
		return
	}
	delete(n.attrs, name)
	for i, a := range n.attrOrder {
		if a == name {
			n.attrOrder = append(n.attrOrder[:i], n.attrOrder[i+1:]...)
			break
		}
	}
}

// AttributeNames returns attribute names in source order.
func (n *Node) AttributeNames() []string {
	return n.attrOrder
}

// HasClass reports whether the class attribute, treated as a
// space-separated token set, contains cls exactly.
func (n *Node) HasClass(cls string) bool {
	raw, ok := n.GetAttribute("class")
	if !ok {
		return false
	}
	for _, tok := range strings.Fields(raw) {
		if tok == cls {
			return true
		}
	}
	return false
}

// AppendChild adds child as the last child, reparenting if needed.
func (n *Node) AppendChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// RemoveChild removes the given child, clears its parent pointer, and
// returns it. Returns nil if child is not a child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// InsertBefore inserts newChild before refChild. A nil refChild
// appends. If newChild already has a parent it is moved.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}
	if refChild == nil {
		n.AppendChild(newChild)
		return newChild
	}
	for i, c := range n.Children {
		if c == refChild {
			n.Children = append(n.Children, nil)
			copy(n.Children[i+1:], n.Children[i:])
			n.Children[i] = newChild
			newChild.Parent = n
			return newChild
		}
	}
	n.AppendChild(newChild)
	return newChild
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// IndexInParent returns this node's position among its parent's
// children, or -1 if detached.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// TextContent concatenates the text of this node and all descendants.
func (n *Node) TextContent() string {
	if n.Kind == TextNode {
		return n.Text
	}
	if n.Kind == CommentNode {
		return ""
	}
	var out string
	for _, c := range n.Children {
		out += c.TextContent()
	}
	return out
}

// Walk calls fn for n and every descendant in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
