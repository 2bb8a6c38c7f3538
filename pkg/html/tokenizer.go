package html

import (
	gohtml "html"
	"strings"
	"unicode"
)

// TokenType classifies tokenizer output.
type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenComment
	TokenEOF
)

// Attr is one attribute in source order.
type Attr struct {
	Name  string
	Value string
}

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  []Attr
	Text        string
	SelfClosing bool
	Line        int
	Col         int
}

// State is the tokenizer's current position in its state machine.
type State int

const (
	StateInitial State = iota
	StateText
	StateTagOpen
	StateTagName
	StateInAttributes
	StateAttributeValue
	StateComment
	StateScriptOrStyleRawText
	StateDone
)

// Tokenizer converts markup text into tokens. Input may arrive in
// chunks: Write appends bytes and the state machine picks up exactly
// where the previous chunk left it, so a tag split across chunk
// boundaries tokenizes the same as unbroken input. Finish marks end of
// input; after the buffered tail drains, Next reports TokenEOF.
type Tokenizer struct {
	buf      []byte
	pos      int
	state    State
	finished bool

	line, col       int
	tokLine, tokCol int // position where the pending token started
	pending         []Token
	text            strings.Builder
	tagName         strings.Builder
	closingTag      bool
	selfClosing     bool
	attrs           []Attr
	attrName        strings.Builder
	attrValue       strings.Builder
	attrQuote       byte // 0 while unquoted
	attrHasValue    bool
	rawTag          string // element whose raw text we are inside
	bogusUntilGt    bool   // doctype / processing instruction skip
	commentDashes   int

	lastType TokenType // last emitted tag/text token
	lastTag  string
	// pendingSpace records a whitespace-only run after an inline end
	// tag; it becomes a single space if an inline start tag follows.
	pendingSpace bool
}

func NewTokenizer() *Tokenizer {
	return &Tokenizer{state: StateInitial, line: 1, col: 1, tokLine: 1, tokCol: 1}
}

// Write feeds a chunk of markup and advances the state machine as far
// as the data allows.
func (t *Tokenizer) Write(chunk []byte) {
	t.buf = append(t.buf, chunk...)
	t.run()
}

func (t *Tokenizer) WriteString(s string) { t.Write([]byte(s)) }

// Finish marks the end of input. Any partially buffered text is
// flushed; a partially buffered tag is emitted as literal text rather
// than dropped.
func (t *Tokenizer) Finish() {
	t.finished = true
	t.run()
	switch t.state {
	case StateText, StateInitial:
		t.flushText()
	case StateScriptOrStyleRawText:
		// Unterminated raw text: emit what we have.
		t.emitRawText()
	case StateTagOpen, StateTagName, StateInAttributes, StateAttributeValue:
		// Unterminated tag at EOF: recover by treating it as text.
		t.text.WriteByte('<')
		if t.closingTag {
			t.text.WriteByte('/')
		}
		t.text.WriteString(t.tagName.String())
		t.flushText()
		t.resetTag()
	case StateComment:
		// Unterminated comment: emit what was collected.
		t.pending = append(t.pending, Token{Type: TokenComment, Text: t.text.String(), Line: t.tokLine, Col: t.tokCol})
		t.text.Reset()
	}
	t.state = StateDone
	t.pending = append(t.pending, Token{Type: TokenEOF, Line: t.line, Col: t.col})
}

// Next returns the next complete token. ok is false when the tokenizer
// needs more input (or, after Finish, once TokenEOF has been consumed).
func (t *Tokenizer) Next() (tok Token, ok bool) {
	if len(t.pending) == 0 {
		return Token{}, false
	}
	tok = t.pending[0]
	t.pending = t.pending[1:]
	return tok, true
}

// run consumes buffered bytes until a state needs data we don't have.
func (t *Tokenizer) run() {
	for t.pos < len(t.buf) {
		switch t.state {
		case StateInitial, StateText:
			t.stepText()
		case StateTagOpen:
			if !t.stepTagOpen() {
				return
			}
		case StateTagName:
			t.stepTagName()
		case StateInAttributes:
			t.stepInAttributes()
		case StateAttributeValue:
			t.stepAttributeValue()
		case StateComment:
			t.stepComment()
		case StateScriptOrStyleRawText:
			if !t.stepRawText() {
				return
			}
		case StateDone:
			return
		}
	}
	// Drop consumed bytes so long documents don't pin old chunks.
	if t.pos > 0 {
		t.buf = t.buf[t.pos:]
		t.pos = 0
	}
}

func (t *Tokenizer) advance() byte {
	c := t.buf[t.pos]
	t.pos++
	if c == '\n' {
		t.line++
		t.col = 1
	} else {
		t.col++
	}
	return c
}

func (t *Tokenizer) peek(offset int) (byte, bool) {
	if t.pos+offset < len(t.buf) {
		return t.buf[t.pos+offset], true
	}
	return 0, false
}

func (t *Tokenizer) stepText() {
	c, _ := t.peek(0)
	if c == '<' {
		t.flushText()
		t.tokLine, t.tokCol = t.line, t.col
		t.advance()
		t.state = StateTagOpen
		t.resetTag()
		return
	}
	t.text.WriteByte(t.advance())
	t.state = StateText
}

// stepTagOpen decides what kind of markup follows '<'. Returns false
// when it needs lookahead bytes that have not arrived yet.
func (t *Tokenizer) stepTagOpen() bool {
	c, _ := t.peek(0)

	if t.bogusUntilGt {
		if t.advance() == '>' {
			t.bogusUntilGt = false
			t.state = StateText
		}
		return true
	}

	switch {
	case c == '/':
		t.advance()
		t.closingTag = true
		t.state = StateTagName
	case c == '!':
		// Could be <!-- comment --> or <!DOCTYPE ...>; need 3 bytes to
		// tell. Wait for more input rather than guessing.
		b1, ok1 := t.peek(1)
		b2, ok2 := t.peek(2)
		if (!ok1 || !ok2) && !t.finished {
			return false
		}
		if ok1 && ok2 && b1 == '-' && b2 == '-' {
			t.advance()
			t.advance()
			t.advance()
			t.state = StateComment
			t.commentDashes = 0
		} else {
			t.advance()
			t.bogusUntilGt = true
		}
	case c == '?':
		t.advance()
		t.bogusUntilGt = true
	case isTagNameByte(c):
		t.state = StateTagName
	default:
		// A stray '<': keep it as text.
		t.text.WriteByte('<')
		t.text.WriteByte(t.advance())
		t.state = StateText
	}
	return true
}

func (t *Tokenizer) stepTagName() {
	c, _ := t.peek(0)
	switch {
	case isTagNameByte(c):
		t.tagName.WriteByte(t.advance())
	case t.tagName.Len() == 0:
		// "</>" or "< >": malformed, recover as text.
		t.text.WriteByte('<')
		if t.closingTag {
			t.text.WriteByte('/')
		}
		t.resetTag()
		t.state = StateText
	default:
		t.state = StateInAttributes
	}
}

func (t *Tokenizer) stepInAttributes() {
	c, _ := t.peek(0)
	switch {
	case c == '>':
		t.advance()
		t.flushAttr()
		t.emitTag()
	case c == '/':
		t.advance()
		t.flushAttr()
		t.selfClosing = true
	case unicode.IsSpace(rune(c)):
		t.advance()
		t.flushAttr()
	case c == '=' && t.attrName.Len() > 0:
		t.advance()
		t.state = StateAttributeValue
		t.attrQuote = 0
		t.attrHasValue = false
	case isAttrNameByte(c):
		t.selfClosing = false // '/' in the middle of a tag is noise
		t.attrName.WriteByte(t.advance())
	default:
		// Junk byte inside a tag. Drop it; the attribute in progress
		// (if any) is abandoned.
		t.advance()
		t.attrName.Reset()
	}
}

func (t *Tokenizer) stepAttributeValue() {
	c, _ := t.peek(0)
	if !t.attrHasValue {
		// First byte after '=': may open a quote.
		if unicode.IsSpace(rune(c)) {
			t.advance()
			return
		}
		t.attrHasValue = true
		if c == '"' || c == '\'' {
			t.attrQuote = t.advance()
			return
		}
	}
	if t.attrQuote != 0 {
		b := t.advance()
		if b == t.attrQuote {
			t.commitAttr()
			t.state = StateInAttributes
			return
		}
		t.attrValue.WriteByte(b)
		return
	}
	// Unquoted value ends on whitespace or '>'.
	if c == '>' || unicode.IsSpace(rune(c)) {
		t.commitAttr()
		t.state = StateInAttributes
		return
	}
	t.attrValue.WriteByte(t.advance())
}

func (t *Tokenizer) stepComment() {
	b := t.advance()
	switch {
	case b == '-':
		t.commentDashes++
	case b == '>' && t.commentDashes >= 2:
		// Dashes beyond the two that close the comment are body text.
		text := t.text.String() + strings.Repeat("-", t.commentDashes-2)
		t.pending = append(t.pending, Token{Type: TokenComment, Text: text, Line: t.tokLine, Col: t.tokCol})
		t.text.Reset()
		t.commentDashes = 0
		t.state = StateText
	default:
		for t.commentDashes > 0 {
			t.text.WriteByte('-')
			t.commentDashes--
		}
		t.text.WriteByte(b)
	}
}

// stepRawText scans for the matching close tag without interpreting
// any markup in between. Returns false when more input is needed.
func (t *Tokenizer) stepRawText() bool {
	needle := "</" + t.rawTag
	avail := string(t.buf[t.pos:])
	idx := -1
	for from := 0; ; {
		i := indexFold(avail[from:], needle)
		if i < 0 {
			break
		}
		cand := from + i
		end := cand + len(needle)
		if end >= len(avail) {
			// The byte that distinguishes "</script>" from body text
			// like "</scripty" has not arrived yet.
			if !t.finished {
				return false
			}
			break
		}
		if c := avail[end]; c == '>' || c == '/' || unicode.IsSpace(rune(c)) {
			idx = cand
			break
		}
		from = cand + 1
	}
	if idx < 0 {
		if !t.finished {
			// The close tag may straddle the chunk boundary; keep the
			// unconsumed tail around.
			return false
		}
		for t.pos < len(t.buf) {
			t.text.WriteByte(t.advance())
		}
		return true
	}
	for i := 0; i < idx; i++ {
		t.text.WriteByte(t.advance())
	}
	t.emitRawText()
	// Consume "</tag" and let the normal end-tag path finish it.
	t.tokLine, t.tokCol = t.line, t.col
	for range needle {
		t.advance()
	}
	t.closingTag = true
	t.tagName.WriteString(t.rawTag)
	t.rawTag = ""
	t.state = StateInAttributes
	return true
}

func (t *Tokenizer) emitRawText() {
	if t.text.Len() > 0 {
		t.pending = append(t.pending, Token{Type: TokenText, Text: t.text.String(), Line: t.tokLine, Col: t.tokCol})
		t.text.Reset()
		t.lastType = TokenText
	}
	t.state = StateText
}

// flushText emits accumulated character data as a text token,
// collapsing whitespace runs while preserving boundary spaces (the
// space in "</em> word" is significant for inline flow).
func (t *Tokenizer) flushText() {
	raw := t.text.String()
	t.text.Reset()
	if raw == "" {
		return
	}
	if strings.TrimSpace(raw) == "" {
		// The space in "<em>a</em> <em>b</em>" separates words; keep
		// it when an inline start tag follows the inline end tag.
		t.pendingSpace = t.lastType == TokenEndTag && !isBlockLevel(t.lastTag)
		return
	}
	t.pendingSpace = false
	text := gohtml.UnescapeString(normalizeWhitespace(raw))
	t.pending = append(t.pending, Token{Type: TokenText, Text: text, Line: t.tokLine, Col: t.tokCol})
	t.lastType = TokenText
}

func (t *Tokenizer) flushAttr() {
	if t.attrName.Len() == 0 {
		return
	}
	t.attrs = append(t.attrs, Attr{Name: strings.ToLower(t.attrName.String())})
	t.attrName.Reset()
}

func (t *Tokenizer) commitAttr() {
	name := strings.ToLower(t.attrName.String())
	if name != "" {
		t.attrs = append(t.attrs, Attr{Name: name, Value: t.attrValue.String()})
	}
	t.attrName.Reset()
	t.attrValue.Reset()
	t.attrQuote = 0
}

func (t *Tokenizer) emitTag() {
	name := strings.ToLower(t.tagName.String())
	tok := Token{
		TagName: name,
		Line:    t.tokLine,
		Col:     t.tokCol,
	}
	if t.closingTag {
		tok.Type = TokenEndTag
	} else {
		tok.Type = TokenStartTag
		tok.Attributes = t.attrs
		tok.SelfClosing = t.selfClosing
	}
	if t.pendingSpace {
		t.pendingSpace = false
		if tok.Type == TokenStartTag && !isBlockLevel(name) {
			t.pending = append(t.pending, Token{Type: TokenText, Text: " ", Line: tok.Line, Col: tok.Col})
		}
	}
	t.pending = append(t.pending, tok)
	t.lastType = tok.Type
	t.lastTag = name
	selfClosing := t.selfClosing
	t.resetTag()
	// Script and style bodies are opaque: '<' inside them does not open
	// a tag, so the tokenizer switches modes itself rather than letting
	// the parser race the already-buffered input.
	if tok.Type == TokenStartTag && !selfClosing && isRawTextElement(name) {
		t.rawTag = name
		t.tokLine, t.tokCol = t.line, t.col
		t.state = StateScriptOrStyleRawText
		return
	}
	t.state = StateText
}

func isRawTextElement(tag string) bool {
	return tag == "script" || tag == "style"
}

func (t *Tokenizer) resetTag() {
	t.tagName.Reset()
	t.attrName.Reset()
	t.attrValue.Reset()
	t.attrs = nil
	t.closingTag = false
	t.selfClosing = false
	t.attrQuote = 0
}

// normalizeWhitespace collapses runs of whitespace to a single space,
// keeping one space at either boundary.
func normalizeWhitespace(s string) string {
	hasLeading := len(s) > 0 && unicode.IsSpace(rune(s[0]))
	hasTrailing := len(s) > 0 && unicode.IsSpace(rune(s[len(s)-1]))

	parts := strings.Fields(s)
	if len(parts) == 0 {
		if hasLeading || hasTrailing {
			return " "
		}
		return ""
	}
	out := strings.Join(parts, " ")
	if hasLeading {
		out = " " + out
	}
	if hasTrailing {
		out = out + " "
	}
	return out
}

// indexFold is a case-insensitive strings.Index for ASCII needles.
func indexFold(haystack, needle string) int {
	return strings.Index(strings.ToLower(haystack), strings.ToLower(needle))
}

func isTagNameByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isAttrNameByte(c byte) bool {
	return isTagNameByte(c) || c == ':' || c == '.'
}
