package html

import "testing"

func collect(t *Tokenizer) []Token {
	var out []Token
	for {
		tok, ok := t.Next()
		if !ok {
			return out
		}
		if tok.Type == TokenEOF {
			return out
		}
		out = append(out, tok)
	}
}

func tokenizeAll(input string) []Token {
	tz := NewTokenizer()
	tz.WriteString(input)
	tz.Finish()
	return collect(tz)
}

func TestTokenizer_SimpleTag(t *testing.T) {
	toks := tokenizeAll("<div>hello</div>")
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(toks))
	}
	if toks[0].Type != TokenStartTag || toks[0].TagName != "div" {
		t.Errorf("expected <div> start tag, got %+v", toks[0])
	}
	if toks[1].Type != TokenText || toks[1].Text != "hello" {
		t.Errorf("expected text 'hello', got %+v", toks[1])
	}
	if toks[2].Type != TokenEndTag || toks[2].TagName != "div" {
		t.Errorf("expected </div> end tag, got %+v", toks[2])
	}
}

func TestTokenizer_AttributesInSourceOrder(t *testing.T) {
	toks := tokenizeAll(`<input type="text" name=q disabled>`)
	if len(toks) != 1 {
		t.Fatalf("expected 1 token, got %d", len(toks))
	}
	attrs := toks[0].Attributes
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attributes, got %d", len(attrs))
	}
	if attrs[0].Name != "type" || attrs[0].Value != "text" {
		t.Errorf("attr 0: got %+v", attrs[0])
	}
	if attrs[1].Name != "name" || attrs[1].Value != "q" {
		t.Errorf("attr 1: got %+v", attrs[1])
	}
	if attrs[2].Name != "disabled" || attrs[2].Value != "" {
		t.Errorf("attr 2: got %+v", attrs[2])
	}
}

func TestTokenizer_TagNamesLowercased(t *testing.T) {
	toks := tokenizeAll("<DIV CLASS='x'></DIV>")
	if toks[0].TagName != "div" {
		t.Errorf("expected lowercase tag, got %q", toks[0].TagName)
	}
	if toks[0].Attributes[0].Name != "class" {
		t.Errorf("expected lowercase attr name, got %q", toks[0].Attributes[0].Name)
	}
}

func TestTokenizer_SelfClosing(t *testing.T) {
	toks := tokenizeAll("<br/>")
	if len(toks) != 1 || !toks[0].SelfClosing {
		t.Errorf("expected self-closing <br/>, got %+v", toks)
	}
}

func TestTokenizer_Comment(t *testing.T) {
	toks := tokenizeAll("a<!-- hidden -->b")
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(toks))
	}
	if toks[1].Type != TokenComment || toks[1].Text != " hidden " {
		t.Errorf("expected comment ' hidden ', got %+v", toks[1])
	}
}

func TestTokenizer_DoctypeSkipped(t *testing.T) {
	toks := tokenizeAll("<!DOCTYPE html><p>x</p>")
	if len(toks) != 3 || toks[0].TagName != "p" {
		t.Errorf("expected doctype to be skipped, got %+v", toks)
	}
}

func TestTokenizer_EntitiesDecoded(t *testing.T) {
	toks := tokenizeAll("<p>a &amp; b &lt;ok&gt;</p>")
	if toks[1].Text != "a & b <ok>" {
		t.Errorf("expected decoded entities, got %q", toks[1].Text)
	}
}

func TestTokenizer_WhitespaceNormalized(t *testing.T) {
	toks := tokenizeAll("<p>  one \n  two  </p>")
	if toks[1].Text != " one two " {
		t.Errorf("expected collapsed whitespace with boundary spaces, got %q", toks[1].Text)
	}
}

func TestTokenizer_WhitespaceOnlyTextSkipped(t *testing.T) {
	toks := tokenizeAll("<div>\n  \n</div>")
	if len(toks) != 2 {
		t.Errorf("expected whitespace-only text to be dropped, got %+v", toks)
	}
}

func TestTokenizer_SpaceBetweenInlineElementsKept(t *testing.T) {
	toks := tokenizeAll("<em>a</em> <em>b</em>")
	var texts []string
	for _, tok := range toks {
		if tok.Type == TokenText {
			texts = append(texts, tok.Text)
		}
	}
	if len(texts) != 3 || texts[0] != "a" || texts[1] != " " || texts[2] != "b" {
		t.Errorf("expected the separating space to survive, got %q", texts)
	}
}

func TestTokenizer_WhitespaceBetweenBlocksStillSkipped(t *testing.T) {
	toks := tokenizeAll("<div>a</div>\n  <div>b</div>")
	for _, tok := range toks {
		if tok.Type == TokenText && tok.Text == " " {
			t.Error("expected no synthetic space between block elements")
		}
	}
}

func TestTokenizer_ScriptRawText(t *testing.T) {
	toks := tokenizeAll(`<script>if (a < b) { s = "</div>"; }</script>`)
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %+v", len(toks), toks)
	}
	want := `if (a < b) { s = "</div>"; }`
	if toks[1].Type != TokenText || toks[1].Text != want {
		t.Errorf("expected raw script text %q, got %q", want, toks[1].Text)
	}
	if toks[2].Type != TokenEndTag || toks[2].TagName != "script" {
		t.Errorf("expected </script>, got %+v", toks[2])
	}
}

func TestTokenizer_ScriptRawTextPrefixedCloseTag(t *testing.T) {
	toks := tokenizeAll(`<script>var s = "</scripty>";</script>`)
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d: %+v", len(toks), toks)
	}
	want := `var s = "</scripty>";`
	if toks[1].Type != TokenText || toks[1].Text != want {
		t.Errorf("expected %q to stay in the script body, got %q", want, toks[1].Text)
	}
	if toks[2].Type != TokenEndTag || toks[2].TagName != "script" {
		t.Errorf("expected </script>, got %+v", toks[2])
	}
}

func TestTokenizer_StyleRawText(t *testing.T) {
	toks := tokenizeAll("<style>p > a { color: red; }</style>")
	if len(toks) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(toks))
	}
	if toks[1].Text != "p > a { color: red; }" {
		t.Errorf("expected raw style text, got %q", toks[1].Text)
	}
}

func TestTokenizer_IncrementalChunks(t *testing.T) {
	// Split mid-tag, mid-attribute, and mid-raw-text.
	chunks := []string{"<di", `v cla`, `ss="a`, `b">hel`, "lo<scri", "pt>x<y</scr", "ipt></div>"}
	tz := NewTokenizer()
	for _, c := range chunks {
		tz.WriteString(c)
	}
	tz.Finish()
	toks := collect(tz)

	var kinds []TokenType
	for _, tok := range toks {
		kinds = append(kinds, tok.Type)
	}
	want := []TokenType{TokenStartTag, TokenText, TokenStartTag, TokenText, TokenEndTag, TokenEndTag}
	if len(kinds) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %+v", len(want), len(kinds), toks)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("token %d: expected type %d, got %d", i, want[i], kinds[i])
		}
	}
	if toks[0].Attributes[0].Value != "ab" {
		t.Errorf("expected attribute stitched across chunks, got %q", toks[0].Attributes[0].Value)
	}
	if toks[3].Text != "x<y" {
		t.Errorf("expected raw text stitched across chunks, got %q", toks[3].Text)
	}
}

func TestTokenizer_UnterminatedTagAtEOF(t *testing.T) {
	toks := tokenizeAll("text <div")
	if len(toks) != 2 {
		t.Fatalf("expected 2 text tokens, got %+v", toks)
	}
	if toks[1].Type != TokenText {
		t.Errorf("expected trailing partial tag recovered as text, got %+v", toks[1])
	}
}

func TestTokenizer_LineAndColumnTracking(t *testing.T) {
	toks := tokenizeAll("<a>\n<b>")
	if toks[0].Line != 1 {
		t.Errorf("expected first tag on line 1, got %d", toks[0].Line)
	}
	if toks[1].Line != 2 {
		t.Errorf("expected second tag on line 2, got %d", toks[1].Line)
	}
}
