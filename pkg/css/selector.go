package css

import (
	"fmt"
	"strings"
)

// SelectorSyntaxError reports a selector that could not be parsed. The
// rule carrying it is dropped; the rest of the stylesheet is unaffected.
type SelectorSyntaxError struct {
	Selector string
	Reason   string
}

func (e *SelectorSyntaxError) Error() string {
	return fmt.Sprintf("bad selector %q: %s", e.Selector, e.Reason)
}

// Combinator relates two compound selectors.
type Combinator byte

const (
	Descendant        Combinator = ' ' // any ancestor
	Child             Combinator = '>' // parent
	NextSibling       Combinator = '+' // immediately preceding sibling
	SubsequentSibling Combinator = '~' // any preceding sibling
)

// AttrOp is the comparison used by an attribute selector.
type AttrOp int

const (
	AttrExists    AttrOp = iota // [attr]
	AttrEquals                  // [attr=v]
	AttrIncludes                // [attr~=v], whitespace token
	AttrPrefix                  // [attr^=v]
	AttrSuffix                  // [attr$=v]
	AttrSubstring               // [attr*=v]
	AttrDashMatch               // [attr|=v]
)

// AttrMatch is one attribute condition within a compound selector.
type AttrMatch struct {
	Name  string
	Op    AttrOp
	Value string
}

// Compound is a run of simple selectors applying to a single element,
// e.g. "div.note[role=main]".
type Compound struct {
	Tag     string // lowercase tag name, "" matches any element
	ID      string
	Classes []string
	Attrs   []AttrMatch
	Pseudos []string // parsed for recovery, never match
}

// Selector is a full complex selector. Compounds are stored left to
// right; the last compound is the subject. Combinators[i] joins
// Compounds[i] to Compounds[i+1].
type Selector struct {
	Raw         string
	Compounds   []Compound
	Combinators []Combinator
	Specificity int
}

// Subject returns the compound the selector ultimately applies to.
func (s *Selector) Subject() *Compound {
	return &s.Compounds[len(s.Compounds)-1]
}

// Specificity components are packed into one comparable int:
// IDs dominate classes/attributes, which dominate tag names.
func specificity(compounds []Compound) int {
	var a, b, c int
	for _, comp := range compounds {
		if comp.ID != "" {
			a++
		}
		b += len(comp.Classes) + len(comp.Attrs) + len(comp.Pseudos)
		if comp.Tag != "" {
			c++
		}
	}
	return a<<20 | b<<10 | c
}

// ParseSelector parses a single complex selector (no commas).
func ParseSelector(raw string) (Selector, error) {
	p := selParser{src: strings.TrimSpace(raw)}
	sel, err := p.parse()
	if err != nil {
		return Selector{}, &SelectorSyntaxError{Selector: raw, Reason: err.Error()}
	}
	sel.Raw = strings.TrimSpace(raw)
	sel.Specificity = specificity(sel.Compounds)
	return sel, nil
}

type selParser struct {
	src string
	pos int
}

func (p *selParser) parse() (Selector, error) {
	var sel Selector
	if p.src == "" {
		return sel, fmt.Errorf("empty selector")
	}
	for {
		comp, err := p.compound()
		if err != nil {
			return sel, err
		}
		sel.Compounds = append(sel.Compounds, comp)

		comb, more, err := p.combinator()
		if err != nil {
			return sel, err
		}
		if !more {
			return sel, nil
		}
		sel.Combinators = append(sel.Combinators, comb)
	}
}

// combinator consumes whitespace and an optional > + ~ between
// compounds. Returns more=false at end of input.
func (p *selParser) combinator() (Combinator, bool, error) {
	sawSpace := false
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		sawSpace = true
		p.pos++
	}
	if p.pos >= len(p.src) {
		return 0, false, nil
	}
	switch p.src[p.pos] {
	case '>', '+', '~':
		comb := Combinator(p.src[p.pos])
		p.pos++
		for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return 0, false, fmt.Errorf("selector ends after combinator %q", string(comb))
		}
		return comb, true, nil
	}
	if !sawSpace {
		return 0, false, fmt.Errorf("unexpected character %q", string(p.src[p.pos]))
	}
	return Descendant, true, nil
}

func (p *selParser) compound() (Compound, error) {
	var comp Compound
	start := p.pos

	// Leading tag name or universal selector.
	if p.pos < len(p.src) {
		if p.src[p.pos] == '*' {
			p.pos++
		} else if isNameStart(p.src[p.pos]) {
			comp.Tag = strings.ToLower(p.ident())
		}
	}

	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '#':
			p.pos++
			id := p.ident()
			if id == "" {
				return comp, fmt.Errorf("expected identifier after '#'")
			}
			comp.ID = id
		case '.':
			p.pos++
			class := p.ident()
			if class == "" {
				return comp, fmt.Errorf("expected identifier after '.'")
			}
			comp.Classes = append(comp.Classes, class)
		case '[':
			attr, err := p.attribute()
			if err != nil {
				return comp, err
			}
			comp.Attrs = append(comp.Attrs, attr)
		case ':':
			p.pos++
			for p.pos < len(p.src) && p.src[p.pos] == ':' {
				p.pos++
			}
			name := p.ident()
			if name == "" {
				return comp, fmt.Errorf("expected identifier after ':'")
			}
			// Functional pseudo-classes like :nth-child(2n).
			if p.pos < len(p.src) && p.src[p.pos] == '(' {
				depth := 0
				for p.pos < len(p.src) {
					if p.src[p.pos] == '(' {
						depth++
					} else if p.src[p.pos] == ')' {
						depth--
						if depth == 0 {
							p.pos++
							break
						}
					}
					p.pos++
				}
				if depth != 0 {
					return comp, fmt.Errorf("unterminated '(' in :%s", name)
				}
			}
			comp.Pseudos = append(comp.Pseudos, name)
		default:
			if p.pos == start {
				return comp, fmt.Errorf("unexpected character %q", string(p.src[p.pos]))
			}
			return comp, nil
		}
	}
	if p.pos == start {
		return comp, fmt.Errorf("empty compound selector")
	}
	return comp, nil
}

func (p *selParser) attribute() (AttrMatch, error) {
	var m AttrMatch
	p.pos++ // consume '['
	p.skipSpace()
	m.Name = strings.ToLower(p.ident())
	if m.Name == "" {
		return m, fmt.Errorf("expected attribute name after '['")
	}
	p.skipSpace()
	if p.pos >= len(p.src) {
		return m, fmt.Errorf("unterminated attribute selector")
	}
	if p.src[p.pos] == ']' {
		p.pos++
		m.Op = AttrExists
		return m, nil
	}

	switch p.src[p.pos] {
	case '=':
		m.Op = AttrEquals
		p.pos++
	case '~', '^', '$', '*', '|':
		switch p.src[p.pos] {
		case '~':
			m.Op = AttrIncludes
		case '^':
			m.Op = AttrPrefix
		case '$':
			m.Op = AttrSuffix
		case '*':
			m.Op = AttrSubstring
		case '|':
			m.Op = AttrDashMatch
		}
		p.pos++
		if p.pos >= len(p.src) || p.src[p.pos] != '=' {
			return m, fmt.Errorf("expected '=' in attribute selector")
		}
		p.pos++
	default:
		return m, fmt.Errorf("unexpected character %q in attribute selector", string(p.src[p.pos]))
	}

	p.skipSpace()
	val, err := p.attrValue()
	if err != nil {
		return m, err
	}
	m.Value = val
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return m, fmt.Errorf("unterminated attribute selector")
	}
	p.pos++
	return m, nil
}

func (p *selParser) attrValue() (string, error) {
	if p.pos < len(p.src) && (p.src[p.pos] == '"' || p.src[p.pos] == '\'') {
		quote := p.src[p.pos]
		p.pos++
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.src) {
			return "", fmt.Errorf("unterminated string in attribute selector")
		}
		val := p.src[start:p.pos]
		p.pos++
		return val, nil
	}
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != ']' && !isSpace(p.src[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return "", fmt.Errorf("expected attribute value")
	}
	return p.src[start:p.pos], nil
}

func (p *selParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) && isNameChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *selParser) skipSpace() {
	for p.pos < len(p.src) && isSpace(p.src[p.pos]) {
		p.pos++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isNameStart(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b == '_' || b >= 0x80
}

func isNameChar(b byte) bool {
	return isNameStart(b) || b >= '0' && b <= '9' || b == '-'
}
