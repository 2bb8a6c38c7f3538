package html

import (
	"strings"
	"testing"

	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
)

func TestParser_SingleElement(t *testing.T) {
	doc := Parse("<div></div>", nil)
	if len(doc.Root.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(doc.Root.Children))
	}
	if doc.Root.Children[0].Tag != "div" {
		t.Errorf("expected tag 'div', got %q", doc.Root.Children[0].Tag)
	}
}

func TestParser_NestedElements(t *testing.T) {
	doc := Parse("<div><p>text</p></div>", nil)
	div := doc.Root.Children[0]
	if len(div.Children) != 1 || div.Children[0].Tag != "p" {
		t.Fatalf("expected div > p, got %+v", div.Children)
	}
	p := div.Children[0]
	if len(p.Children) != 1 || p.Children[0].Kind != dom.TextNode || p.Children[0].Text != "text" {
		t.Errorf("expected p to contain text 'text'")
	}
}

func TestParser_MultipleTopLevel_ShareImplicitRoot(t *testing.T) {
	doc := Parse("<div></div><p></p>", nil)
	if len(doc.Root.Children) != 2 {
		t.Errorf("expected implicit root with 2 children, got %d", len(doc.Root.Children))
	}
}

func TestParser_MalformedMarkup_NeverFatal(t *testing.T) {
	var c diag.Collector
	doc := Parse("<div><span>text</div>", &c)

	// The open <span> is auto-closed before </div>.
	div := doc.Root.Children[0]
	if div.Tag != "div" || len(div.Children) != 1 {
		t.Fatalf("expected div with 1 child, got %+v", div)
	}
	span := div.Children[0]
	if span.Tag != "span" {
		t.Fatalf("expected span inside div, got %q", span.Tag)
	}
	if span.TextContent() != "text" {
		t.Errorf("expected span to keep its text, got %q", span.TextContent())
	}
	if len(c.Diagnostics) == 0 {
		t.Error("expected a diagnostic for the auto-closed span")
	}
}

func TestParser_UnmatchedEndTagIgnored(t *testing.T) {
	var c diag.Collector
	doc := Parse("<div></span></div>", &c)
	if len(doc.Root.Children) != 1 {
		t.Errorf("expected stray </span> to be ignored")
	}
	if len(c.Diagnostics) != 1 {
		t.Errorf("expected 1 diagnostic, got %d", len(c.Diagnostics))
	}
}

func TestParser_UnclosedTagsAtEOF(t *testing.T) {
	var c diag.Collector
	doc := Parse("<div><p>hi", &c)
	div := doc.Root.Children[0]
	if div.Tag != "div" || div.Children[0].Tag != "p" {
		t.Fatalf("expected div > p structure despite missing close tags")
	}
	if len(c.Diagnostics) != 2 {
		t.Errorf("expected 2 unclosed-tag diagnostics, got %d", len(c.Diagnostics))
	}
}

func TestParser_UnknownTagsBecomeGenericElements(t *testing.T) {
	doc := Parse("<widget><gadget>x</gadget></widget>", nil)
	w := doc.Root.Children[0]
	if w.Tag != "widget" || w.Kind != dom.ElementNode {
		t.Errorf("expected unknown tag to parse as a generic element")
	}
	if w.Children[0].Tag != "gadget" {
		t.Errorf("expected nested unknown element")
	}
}

func TestParser_VoidElements(t *testing.T) {
	doc := Parse("<div><br><img src=x><span>after</span></div>", nil)
	div := doc.Root.Children[0]
	if len(div.Children) != 3 {
		t.Fatalf("expected br, img, span as siblings, got %d children", len(div.Children))
	}
	if div.Children[2].Tag != "span" {
		t.Error("expected void elements not to swallow following content")
	}
}

func TestParser_ParagraphAutoClose(t *testing.T) {
	doc := Parse("<p>one<p>two", nil)
	if len(doc.Root.Children) != 2 {
		t.Fatalf("expected two sibling <p> elements, got %d", len(doc.Root.Children))
	}
	if doc.Root.Children[0].TextContent() != "one" || doc.Root.Children[1].TextContent() != "two" {
		t.Error("expected <p> to auto-close before the next <p>")
	}
}

func TestParser_ScriptContentIsOpaque(t *testing.T) {
	doc := Parse(`<script>document.write("<div>not a tag</div>");</script>`, nil)
	script := doc.Root.Children[0]
	if script.Tag != "script" {
		t.Fatalf("expected script element, got %q", script.Tag)
	}
	if len(script.Children) != 1 || script.Children[0].Kind != dom.TextNode {
		t.Fatalf("expected a single opaque text child, got %+v", script.Children)
	}
	if !strings.Contains(script.Children[0].Text, "<div>not a tag</div>") {
		t.Errorf("expected script body kept verbatim, got %q", script.Children[0].Text)
	}
}

func TestParser_CommentsBecomeCommentNodes(t *testing.T) {
	doc := Parse("<div><!-- note --></div>", nil)
	div := doc.Root.Children[0]
	if len(div.Children) != 1 || div.Children[0].Kind != dom.CommentNode {
		t.Fatalf("expected comment node, got %+v", div.Children)
	}
}

func TestParser_DuplicateAttributeDropped(t *testing.T) {
	var c diag.Collector
	doc := Parse(`<div id="a" id="b"></div>`, &c)
	id, _ := doc.Root.Children[0].GetAttribute("id")
	if id != "a" {
		t.Errorf("expected first attribute to win, got %q", id)
	}
	if len(c.Diagnostics) != 1 {
		t.Errorf("expected duplicate-attribute diagnostic")
	}
}

func TestParser_IncrementalFeeding(t *testing.T) {
	doc := dom.NewDocument()
	p := NewParser(doc, nil)
	for _, chunk := range []string{"<div><p>he", "llo</p>", "<p>world</p></div>"} {
		p.WriteString(chunk)
	}
	p.Finish()

	div := doc.Root.Children[0]
	if len(div.Children) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(div.Children))
	}
	if div.Children[0].TextContent() != "hello" {
		t.Errorf("expected text stitched across chunks, got %q", div.Children[0].TextContent())
	}
}

func TestParser_RoundTrip(t *testing.T) {
	input := `<div id="main"><p class="intro">hello <em>world</em></p><ul><li>a</li><li>b</li></ul></div>`
	doc := Parse(input, nil)
	serialized := doc.Root.Serialize()
	if serialized != input {
		t.Errorf("round trip mismatch:\n in: %s\nout: %s", input, serialized)
	}

	// Parsing the serialized form again yields an equivalent tree.
	doc2 := Parse(serialized, nil)
	if doc2.Root.Serialize() != serialized {
		t.Error("expected parse -> serialize to be a fixpoint")
	}
}

type insertRecorder struct{ nodes []*dom.Node }

func (r *insertRecorder) ParserInserted(n *dom.Node) { r.nodes = append(r.nodes, n) }

func TestParser_ObserverSeesDocumentOrder(t *testing.T) {
	doc := dom.NewDocument()
	p := NewParser(doc, nil)
	rec := &insertRecorder{}
	p.SetObserver(rec)
	p.WriteString("<div><span>x</span></div>")
	p.Finish()

	var tags []string
	for _, n := range rec.nodes {
		if n.Kind == dom.ElementNode {
			tags = append(tags, n.Tag)
		}
	}
	if len(tags) != 2 || tags[0] != "div" || tags[1] != "span" {
		t.Errorf("expected insertions in document order, got %v", tags)
	}
}
