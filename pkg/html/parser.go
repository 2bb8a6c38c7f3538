package html

import (
	"fmt"

	"github.com/sneedgroup-holder/wink-browser/pkg/diag"
	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
)

// Observer is notified as the parser attaches nodes, so the pipeline's
// mutation coordinator can track parser insertions the same way it
// tracks script-driven ones.
type Observer interface {
	ParserInserted(n *dom.Node)
}

// Parser builds a dom.Document from markup fed in chunks. Parsing
// never fails: malformed markup is recovered in place and reported as
// diagnostics.
type Parser struct {
	tokenizer *Tokenizer
	doc       *dom.Document
	stack     []*dom.Node
	sink      diag.Sink
	observer  Observer
	done      bool
}

func NewParser(doc *dom.Document, sink diag.Sink) *Parser {
	if sink == nil {
		sink = diag.Nop{}
	}
	p := &Parser{
		tokenizer: NewTokenizer(),
		doc:       doc,
		sink:      sink,
	}
	p.stack = []*dom.Node{doc.Root}
	return p
}

// SetObserver registers a recipient for insertion notifications. Must
// be called before feeding input.
func (p *Parser) SetObserver(obs Observer) { p.observer = obs }

// Write feeds a chunk of markup. Complete tokens are consumed and the
// tree extended immediately; partial trailing input waits for the next
// chunk.
func (p *Parser) Write(chunk []byte) {
	p.tokenizer.Write(chunk)
	p.drain()
}

func (p *Parser) WriteString(s string) { p.Write([]byte(s)) }

// Finish flushes buffered input and auto-closes any elements left open
// at end of input.
func (p *Parser) Finish() *dom.Document {
	if p.done {
		return p.doc
	}
	p.tokenizer.Finish()
	p.drain()
	for len(p.stack) > 1 {
		open := p.pop()
		p.report(diag.Warning, fmt.Sprintf("unclosed <%s> at end of input", open.Tag), 0, 0)
	}
	p.done = true
	return p.doc
}

// Document returns the (possibly still growing) document.
func (p *Parser) Document() *dom.Document { return p.doc }

func (p *Parser) drain() {
	for {
		tok, ok := p.tokenizer.Next()
		if !ok {
			return
		}
		switch tok.Type {
		case TokenStartTag:
			p.handleStartTag(tok)
		case TokenEndTag:
			p.handleEndTag(tok)
		case TokenText:
			p.handleText(tok)
		case TokenComment:
			p.attach(p.doc.CreateComment(tok.Text))
		case TokenEOF:
			return
		}
	}
}

func (p *Parser) handleStartTag(tok Token) {
	// A block-level element implicitly terminates an open <p>.
	if isBlockLevel(tok.TagName) {
		p.autoCloseParagraph()
	}

	node := p.doc.CreateElement(tok.TagName)
	seen := make(map[string]bool, len(tok.Attributes))
	for _, a := range tok.Attributes {
		if seen[a.Name] {
			p.report(diag.Warning, fmt.Sprintf("duplicate attribute %q on <%s> dropped", a.Name, tok.TagName), tok.Line, tok.Col)
			continue
		}
		seen[a.Name] = true
		node.SetAttribute(a.Name, a.Value)
	}
	p.attach(node)

	if tok.SelfClosing || dom.IsVoidElement(tok.TagName) {
		return
	}
	p.push(node)
}

func (p *Parser) handleEndTag(tok Token) {
	// Pop up to the matching open element; auto-close everything
	// between it and the top of the stack.
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].Tag == tok.TagName {
			for j := len(p.stack) - 1; j > i; j-- {
				p.report(diag.Warning,
					fmt.Sprintf("<%s> auto-closed by </%s>", p.stack[j].Tag, tok.TagName),
					tok.Line, tok.Col)
			}
			p.stack = p.stack[:i]
			return
		}
	}
	p.report(diag.Warning, fmt.Sprintf("unmatched </%s> ignored", tok.TagName), tok.Line, tok.Col)
}

func (p *Parser) handleText(tok Token) {
	if tok.Text == "" {
		return
	}
	p.attach(p.doc.CreateText(tok.Text))
}

func (p *Parser) attach(n *dom.Node) {
	p.current().AppendChild(n)
	if p.observer != nil {
		p.observer.ParserInserted(n)
	}
}

func (p *Parser) current() *dom.Node {
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(n *dom.Node) { p.stack = append(p.stack, n) }

func (p *Parser) pop() *dom.Node {
	n := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	return n
}

func (p *Parser) autoCloseParagraph() {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].Tag == "p" {
			p.stack = p.stack[:i]
			return
		}
		// Never close out of an enclosing block container.
		if isBlockLevel(p.stack[i].Tag) {
			return
		}
	}
}

func (p *Parser) report(sev diag.Severity, msg string, line, col int) {
	p.sink.Report(diag.Diagnostic{
		Severity: sev,
		Stage:    diag.StageParse,
		Message:  msg,
		Where:    diag.Location{Line: line, Col: col},
	})
}

// isBlockLevel lists the elements that implicitly close an open <p>.
func isBlockLevel(tag string) bool {
	switch tag {
	case "address", "article", "aside", "blockquote", "details", "dialog",
		"dd", "div", "dl", "dt", "fieldset", "figcaption", "figure",
		"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hgroup", "hr", "li", "main", "nav", "ol",
		"p", "pre", "section", "table", "ul":
		return true
	}
	return false
}

// Parse is the one-shot convenience for complete input.
func Parse(markup string, sink diag.Sink) *dom.Document {
	doc := dom.NewDocument()
	p := NewParser(doc, sink)
	p.WriteString(markup)
	return p.Finish()
}
