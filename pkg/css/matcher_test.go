package css

import (
	"testing"

	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
	"github.com/sneedgroup-holder/wink-browser/pkg/html"
)

func mustSelector(t *testing.T, raw string) *Selector {
	t.Helper()
	sel, err := ParseSelector(raw)
	if err != nil {
		t.Fatalf("ParseSelector(%q): %v", raw, err)
	}
	return &sel
}

func findTag(doc *dom.Document, tag string) *dom.Node {
	nodes := doc.ElementsByTag(tag)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func TestMatches_SimpleSelectors(t *testing.T) {
	doc := html.Parse(`<div id="main" class="box wide" lang="en-US"><p>x</p></div>`, nil)
	div := findTag(doc, "div")

	matching := []string{"div", "*", "#main", ".box", ".wide", "div.box",
		"[id]", "[id=main]", "[class~=wide]", "[lang|=en]", "[lang^=en]",
		"[lang$=US]", "[lang*=n-U]"}
	for _, raw := range matching {
		if !Matches(mustSelector(t, raw), div) {
			t.Errorf("expected %q to match", raw)
		}
	}

	failing := []string{"p", "#other", ".boxy", ".bo", "[lang=en]",
		"[class~=wid]", "[lang|=e]", "div:hover"}
	for _, raw := range failing {
		if Matches(mustSelector(t, raw), div) {
			t.Errorf("expected %q not to match", raw)
		}
	}
}

func TestMatches_Combinators(t *testing.T) {
	doc := html.Parse(`<div class="outer"><ul><li>a</li><li id="second">b</li><li id="third">c</li></ul></div>`, nil)
	second := doc.GetElementByAttr("id", "second")
	third := doc.GetElementByAttr("id", "third")

	if !Matches(mustSelector(t, "ul > li"), second) {
		t.Error("expected child combinator to match")
	}
	if Matches(mustSelector(t, "div > li"), second) {
		t.Error("expected child combinator to require the direct parent")
	}
	if !Matches(mustSelector(t, "div li"), second) {
		t.Error("expected descendant combinator to cross levels")
	}
	if !Matches(mustSelector(t, ".outer ul li"), second) {
		t.Error("expected chained descendant combinators to match")
	}
	if !Matches(mustSelector(t, "li + li"), second) {
		t.Error("expected adjacent sibling to match")
	}
	if Matches(mustSelector(t, "#second + li"), second) {
		t.Error("expected adjacent sibling to look left, not at self")
	}
	if !Matches(mustSelector(t, "#second + li"), third) {
		t.Error("expected adjacent sibling after #second to match")
	}
	if !Matches(mustSelector(t, "li ~ li"), third) {
		t.Error("expected general sibling to match")
	}
	if Matches(mustSelector(t, "span li"), second) {
		t.Error("expected no match without a span ancestor")
	}
}

func TestMatches_TextNodesNeverMatch(t *testing.T) {
	doc := html.Parse("<p>hello</p>", nil)
	text := findTag(doc, "p").Children[0]
	if Matches(mustSelector(t, "*"), text) {
		t.Error("expected text node not to match the universal selector")
	}
}
