package dom

import "testing"

func TestAppendChild_SetsParent(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	span := doc.CreateElement("span")
	div.AppendChild(span)

	if span.Parent != div {
		t.Error("expected span's parent to be div")
	}
	if len(div.Children) != 1 || div.Children[0] != span {
		t.Error("expected div to have span as its only child")
	}
}

func TestAppendChild_ReparentsFromOldParent(t *testing.T) {
	doc := NewDocument()
	a := doc.CreateElement("div")
	b := doc.CreateElement("div")
	child := doc.CreateElement("span")
	a.AppendChild(child)
	b.AppendChild(child)

	if len(a.Children) != 0 {
		t.Errorf("expected old parent to have 0 children, got %d", len(a.Children))
	}
	if child.Parent != b {
		t.Error("expected child's parent to be the new parent")
	}
}

func TestRemoveChild(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	span := doc.CreateElement("span")
	div.AppendChild(span)

	removed := div.RemoveChild(span)
	if removed != span {
		t.Error("expected RemoveChild to return the removed node")
	}
	if span.Parent != nil {
		t.Error("expected removed node's parent to be nil")
	}
	if div.RemoveChild(span) != nil {
		t.Error("expected removing a non-child to return nil")
	}
}

func TestInsertBefore(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	first := doc.CreateElement("a")
	second := doc.CreateElement("b")
	div.AppendChild(second)
	div.InsertBefore(first, second)

	if len(div.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(div.Children))
	}
	if div.Children[0] != first || div.Children[1] != second {
		t.Error("expected insert before the reference child")
	}
}

func TestContains(t *testing.T) {
	doc := NewDocument()
	outer := doc.CreateElement("div")
	inner := doc.CreateElement("span")
	text := doc.CreateText("hi")
	outer.AppendChild(inner)
	inner.AppendChild(text)

	if !outer.Contains(text) {
		t.Error("expected outer to contain the grandchild text node")
	}
	if inner.Contains(outer) {
		t.Error("expected child not to contain its ancestor")
	}
	if !outer.Contains(outer) {
		t.Error("expected a node to contain itself")
	}
}

func TestAttributes_SourceOrderPreserved(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("div")
	n.SetAttribute("id", "x")
	n.SetAttribute("class", "a b")
	n.SetAttribute("data-k", "v")
	n.SetAttribute("id", "y") // overwrite must not reorder

	names := n.AttributeNames()
	want := []string{"id", "class", "data-k"}
	if len(names) != len(want) {
		t.Fatalf("expected %d attribute names, got %d", len(want), len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("attribute %d: expected %q, got %q", i, want[i], names[i])
		}
	}
	if v, _ := n.GetAttribute("id"); v != "y" {
		t.Errorf("expected overwritten id 'y', got %q", v)
	}
}

func TestHasClass_ExactTokenMatch(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("div")
	n.SetAttribute("class", "button button-primary")

	if !n.HasClass("button") {
		t.Error("expected class 'button' to match")
	}
	if n.HasClass("butt") {
		t.Error("expected substring 'butt' not to match")
	}
	if n.HasClass("primary") {
		t.Error("expected token suffix 'primary' not to match")
	}
}

func TestNodeIDs_Unique(t *testing.T) {
	doc := NewDocument()
	seen := map[NodeID]bool{doc.Root.ID: true}
	for i := 0; i < 100; i++ {
		n := doc.CreateElement("div")
		if seen[n.ID] {
			t.Fatalf("duplicate NodeID %d", n.ID)
		}
		seen[n.ID] = true
	}
}

func TestSerialize_AttributesInSourceOrder(t *testing.T) {
	doc := NewDocument()
	n := doc.CreateElement("div")
	n.SetAttribute("zeta", "1")
	n.SetAttribute("alpha", "2")
	n.AppendChild(doc.CreateText("x < y"))

	got := n.SerializeOuter()
	want := `<div zeta="1" alpha="2">x &lt; y</div>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestSerialize_VoidAndComment(t *testing.T) {
	doc := NewDocument()
	div := doc.CreateElement("div")
	div.AppendChild(doc.CreateElement("br"))
	div.AppendChild(doc.CreateComment(" note "))

	got := div.Serialize()
	want := `<br><!-- note -->`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestTextContent_Recursive(t *testing.T) {
	doc := NewDocument()
	p := doc.CreateElement("p")
	em := doc.CreateElement("em")
	p.AppendChild(doc.CreateText("hello "))
	em.AppendChild(doc.CreateText("world"))
	p.AppendChild(em)
	p.AppendChild(doc.CreateComment("ignored"))

	if got := p.TextContent(); got != "hello world" {
		t.Errorf("expected 'hello world', got %q", got)
	}
}
