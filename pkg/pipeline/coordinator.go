package pipeline

import (
	"fmt"

	"github.com/sneedgroup-holder/wink-browser/pkg/css"
	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
)

// InvariantError reports a mutation that would corrupt the tree. The
// mutation is rejected before any state changes; catching one leaves
// the document exactly as it was.
type InvariantError struct {
	Op     string
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Coordinator is the single gate for tree mutations. Every change,
// whether from script or from resource arrival, is validated here,
// applied atomically, and recorded in a pending invalidation set that
// a later Flush turns into one style recompute and one layout pass.
type Coordinator struct {
	doc      *dom.Document
	resolver *css.Resolver
	sink     diag.Sink

	pending *InvalidationSet

	// onRemoved lets the script realm tombstone handles for a
	// removed subtree. Nil when no realm is attached.
	onRemoved func(*dom.Node)

	// onFlush rebuilds layout (and whatever sits downstream) after
	// styles have been recomputed.
	onFlush func()

	flushes int
}

func NewCoordinator(doc *dom.Document, resolver *css.Resolver, sink diag.Sink) *Coordinator {
	if sink == nil {
		sink = diag.Nop{}
	}
	return &Coordinator{
		doc:      doc,
		resolver: resolver,
		sink:     sink,
		pending:  NewInvalidationSet(),
	}
}

// SetRemovalHook registers a callback invoked once per removed
// subtree root, before styles are forgotten.
func (c *Coordinator) SetRemovalHook(fn func(*dom.Node)) { c.onRemoved = fn }

// SetFlushHook registers the downstream rebuild run by Flush.
func (c *Coordinator) SetFlushHook(fn func()) { c.onFlush = fn }

// Pending exposes the accumulated invalidations.
func (c *Coordinator) Pending() *InvalidationSet { return c.pending }

// Flushes returns how many non-empty flushes have run.
func (c *Coordinator) Flushes() int { return c.flushes }

// ParserInserted records a parser attachment, so incremental parsing
// and script mutation feed the same invalidation set.
func (c *Coordinator) ParserInserted(n *dom.Node) {
	if n.Parent != nil {
		c.invalidateAttached(n.Parent)
	}
}

// InsertNode attaches a detached node (and its subtree) under parent,
// before the given sibling or at the end when before is nil.
func (c *Coordinator) InsertNode(parent, child, before *dom.Node) error {
	if parent == nil || child == nil {
		return &InvariantError{Op: "insert", Reason: "nil node"}
	}
	if child.Contains(parent) {
		return &InvariantError{Op: "insert", Reason: "insertion would create a cycle"}
	}
	if child.Parent != nil {
		return &InvariantError{Op: "insert", Reason: "node is already attached; move it instead"}
	}
	if before != nil && before.Parent != parent {
		return &InvariantError{Op: "insert", Reason: "reference node is not a child of parent"}
	}
	parent.InsertBefore(child, before)
	c.invalidateAttached(parent)
	return nil
}

// RemoveNode detaches n from its parent. Script handles into the
// removed subtree go stale; the subtree itself stays alive for as long
// as something references it.
func (c *Coordinator) RemoveNode(n *dom.Node) error {
	if n == nil {
		return &InvariantError{Op: "remove", Reason: "nil node"}
	}
	if n == c.doc.Root {
		return &InvariantError{Op: "remove", Reason: "cannot remove the document root"}
	}
	if n.Parent == nil {
		return &InvariantError{Op: "remove", Reason: "node is already detached"}
	}
	parent := n.Parent
	parent.RemoveChild(n)
	if c.onRemoved != nil {
		c.onRemoved(n)
	}
	if c.resolver != nil {
		n.Walk(func(d *dom.Node) { c.resolver.Forget(d.ID) })
	}
	c.invalidateAttached(parent)
	return nil
}

// MoveNode reparents an attached node in one step, so no observer ever
// sees it detached.
func (c *Coordinator) MoveNode(n, newParent, before *dom.Node) error {
	if n == nil || newParent == nil {
		return &InvariantError{Op: "move", Reason: "nil node"}
	}
	if n.Contains(newParent) {
		return &InvariantError{Op: "move", Reason: "move would create a cycle"}
	}
	if before != nil && before.Parent != newParent {
		return &InvariantError{Op: "move", Reason: "reference node is not a child of new parent"}
	}
	oldParent := n.Parent
	newParent.InsertBefore(n, before)
	if oldParent != nil {
		c.invalidateAttached(oldParent)
	}
	c.invalidateAttached(newParent)
	return nil
}

// SetAttribute changes one attribute. When the attribute name appears
// in any active selector, the whole document is conservatively marked
// dirty, since the change can flip matching anywhere.
func (c *Coordinator) SetAttribute(n *dom.Node, name, value string) error {
	if n == nil {
		return &InvariantError{Op: "set-attribute", Reason: "nil node"}
	}
	if n.Kind != dom.ElementNode {
		return &InvariantError{Op: "set-attribute", Reason: "attributes only exist on elements"}
	}
	if old, ok := n.GetAttribute(name); ok && old == value {
		return nil
	}
	n.SetAttribute(name, value)
	if c.resolver != nil && c.resolver.AttributeIndex().References(name) {
		c.pending.MarkDocument()
		return nil
	}
	c.invalidateAttached(n)
	return nil
}

// SetText replaces the content of a text node.
func (c *Coordinator) SetText(n *dom.Node, text string) error {
	if n == nil {
		return &InvariantError{Op: "set-text", Reason: "nil node"}
	}
	if n.Kind != dom.TextNode {
		return &InvariantError{Op: "set-text", Reason: "node is not a text node"}
	}
	if n.Text == text {
		return nil
	}
	n.Text = text
	if n.Parent != nil {
		c.invalidateAttached(n.Parent)
	}
	return nil
}

// MediaArrived records that the element's replaced content changed
// size, forcing a relayout on the next flush.
func (c *Coordinator) MediaArrived(n *dom.Node) {
	if n != nil {
		c.invalidateAttached(n)
	}
}

// invalidateAttached marks a node dirty only if it is still in the
// tree; mutations inside detached subtrees cost nothing until the
// subtree is inserted.
func (c *Coordinator) invalidateAttached(n *dom.Node) {
	if c.doc.Root.Contains(n) {
		c.pending.Add(n.ID)
	}
}

// Flush recomputes styles for the pending invalidation set, resets it,
// and runs the downstream rebuild once. Returns the number of elements
// whose style was recomputed; a flush with nothing pending does
// nothing and returns zero.
func (c *Coordinator) Flush() int {
	if c.pending.Empty() {
		return 0
	}
	count := 0
	if c.resolver != nil {
		count = c.resolver.Recompute(c.doc, c.pending.Nodes())
	}
	c.pending.Reset()
	c.flushes++
	if c.onFlush != nil {
		c.onFlush()
	}
	return count
}
