package dom

// Document owns a node tree. All node creation goes through the
// document so every node gets a unique NodeID; the synthetic root
// element (tag "document") always exists, even for input with no
// single top-level element.
type Document struct {
	Root *Node

	nextID NodeID
}

func NewDocument() *Document {
	d := &Document{}
	d.Root = d.CreateElement("document")
	return d
}

// CreateElement allocates a detached element node. The tag should
// already be lowercase.
func (d *Document) CreateElement(tag string) *Node {
	d.nextID++
	return &Node{ID: d.nextID, Kind: ElementNode, Tag: tag}
}

// CreateText allocates a detached text node.
func (d *Document) CreateText(text string) *Node {
	d.nextID++
	return &Node{ID: d.nextID, Kind: TextNode, Text: text}
}

// CreateComment allocates a detached comment node.
func (d *Document) CreateComment(text string) *Node {
	d.nextID++
	return &Node{ID: d.nextID, Kind: CommentNode, Text: text}
}

// FindByID walks the tree for the node with the given NodeID.
func (d *Document) FindByID(id NodeID) *Node {
	var found *Node
	d.Root.Walk(func(n *Node) {
		if n.ID == id {
			found = n
		}
	})
	return found
}

// GetElementByAttr returns the first element whose attribute name has
// exactly the given value, in document order.
func (d *Document) GetElementByAttr(name, value string) *Node {
	var found *Node
	d.Root.Walk(func(n *Node) {
		if found != nil || n.Kind != ElementNode {
			return
		}
		if v, ok := n.GetAttribute(name); ok && v == value {
			found = n
		}
	})
	return found
}

// ElementsByTag collects all elements with the given tag, in document
// order.
func (d *Document) ElementsByTag(tag string) []*Node {
	var out []*Node
	d.Root.Walk(func(n *Node) {
		if n.Kind == ElementNode && n.Tag == tag {
			out = append(out, n)
		}
	})
	return out
}

// ElementsByClass collects all elements carrying the class token, in
// document order.
func (d *Document) ElementsByClass(cls string) []*Node {
	var out []*Node
	d.Root.Walk(func(n *Node) {
		if n.Kind == ElementNode && n.HasClass(cls) {
			out = append(out, n)
		}
	})
	return out
}
