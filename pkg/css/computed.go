package css

import (
	"sort"

	"github.com/sneedgroup-holder/wink-browser/pkg/dom"
)

// Computed is the resolved style of one element. It is derived data:
// the style pass builds a fresh value, it is never edited in place.
type Computed struct {
	properties map[string]string
}

func newComputed() *Computed {
	return &Computed{properties: make(map[string]string)}
}

// Get returns the computed value for property, or "".
func (c *Computed) Get(property string) string {
	if c == nil {
		return ""
	}
	return c.properties[property]
}

// Lookup returns the computed value and whether it is set.
func (c *Computed) Lookup(property string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.properties[property]
	return v, ok
}

func (c *Computed) set(property, value string) {
	c.properties[property] = value
}

// applyUserAgentDefaults seeds the browser defaults before any author
// rule applies.
func applyUserAgentDefaults(node *dom.Node, c *Computed) {
	switch node.Tag {
	case "head", "script", "style", "meta", "link", "title", "base":
		c.set("display", "none")
	case "span", "em", "i", "strong", "b", "u", "code", "small",
		"label", "sub", "sup", "img", "br":
		c.set("display", "inline")
	case "a":
		c.set("display", "inline")
		c.set("color", "#0645ad")
		c.set("text-decoration", "underline")
	case "h1":
		c.set("font-size", "32px")
		c.set("font-weight", "bold")
	case "h2":
		c.set("font-size", "24px")
		c.set("font-weight", "bold")
	case "h3":
		c.set("font-size", "19px")
		c.set("font-weight", "bold")
	}
	switch node.Tag {
	case "em", "i":
		c.set("font-style", "italic")
	case "strong", "b":
		c.set("font-weight", "bold")
	}
}

// application is one declaration with its cascade sort key.
type application struct {
	decl        Declaration
	inline      bool
	specificity int
	sheet       int
	order       int
}

func (a application) less(b application) bool {
	if a.decl.Important != b.decl.Important {
		return !a.decl.Important
	}
	if a.inline != b.inline {
		return !a.inline
	}
	if a.specificity != b.specificity {
		return a.specificity < b.specificity
	}
	if a.sheet != b.sheet {
		return a.sheet < b.sheet
	}
	return a.order < b.order
}

// ComputeStyle runs the cascade for one element: user-agent defaults,
// matching author rules ordered by importance, specificity, and source
// order, the inline style attribute, then inheritance and initial
// values. parent is the parent element's computed style (nil at the
// root).
func ComputeStyle(node *dom.Node, parent *Computed, sheets []*Stylesheet) *Computed {
	c := newComputed()
	applyUserAgentDefaults(node, c)

	var apps []application
	for si, sheet := range sheets {
		for ri := range sheet.Rules {
			rule := &sheet.Rules[ri]
			if !Matches(&rule.Selector, node) {
				continue
			}
			for _, d := range rule.Declarations {
				apps = append(apps, application{
					decl:        d,
					specificity: rule.Selector.Specificity,
					sheet:       si,
					order:       rule.SourceOrder,
				})
			}
		}
	}
	if styleAttr, ok := node.GetAttribute("style"); ok {
		for i, d := range ParseInlineStyle(styleAttr) {
			apps = append(apps, application{decl: d, inline: true, order: i})
		}
	}

	// Weakest first; each later application overwrites.
	sort.SliceStable(apps, func(i, j int) bool { return apps[i].less(apps[j]) })
	for _, a := range apps {
		c.set(a.decl.Property, a.decl.Value)
	}

	// Explicit "inherit" pulls the parent value for any property.
	for prop, val := range c.properties {
		if val == "inherit" {
			if pv, ok := parent.Lookup(prop); ok {
				c.set(prop, pv)
			} else {
				delete(c.properties, prop)
			}
		}
	}

	// Unset inheritable properties copy the parent's computed value.
	if parent != nil {
		for prop := range inheritedProperties {
			if _, ok := c.properties[prop]; ok {
				continue
			}
			if pv, ok := parent.Lookup(prop); ok {
				c.set(prop, pv)
			}
		}
	}

	// Non-inherited properties fall back to their initial values.
	for prop, val := range initialValues {
		if _, ok := c.properties[prop]; !ok {
			c.set(prop, val)
		}
	}
	return c
}

// AttributeIndex is the set of attribute names referenced by any
// selector of the active sheets. Id and class selectors count as
// references to "id" and "class".
type AttributeIndex map[string]bool

// References reports whether any active selector depends on name.
func (ix AttributeIndex) References(name string) bool {
	return ix[name]
}

func buildAttributeIndex(sheets []*Stylesheet) AttributeIndex {
	ix := make(AttributeIndex)
	for _, sheet := range sheets {
		for ri := range sheet.Rules {
			for _, comp := range sheet.Rules[ri].Selector.Compounds {
				if comp.ID != "" {
					ix["id"] = true
				}
				if len(comp.Classes) > 0 {
					ix["class"] = true
				}
				for _, a := range comp.Attrs {
					ix[a.Name] = true
				}
			}
		}
	}
	return ix
}

// Resolver owns the computed styles of one document and recomputes
// them in response to invalidation.
type Resolver struct {
	sheets []*Stylesheet
	styles map[dom.NodeID]*Computed
	index  AttributeIndex
}

func NewResolver() *Resolver {
	return &Resolver{
		styles: make(map[dom.NodeID]*Computed),
		index:  make(AttributeIndex),
	}
}

// AddSheet appends a stylesheet. Later sheets win source-order ties.
func (r *Resolver) AddSheet(sheet *Stylesheet) {
	r.sheets = append(r.sheets, sheet)
	r.index = buildAttributeIndex(r.sheets)
}

// Sheets returns the active stylesheets in order.
func (r *Resolver) Sheets() []*Stylesheet { return r.sheets }

// AttributeIndex exposes the selector-referenced attribute names.
func (r *Resolver) AttributeIndex() AttributeIndex { return r.index }

// Style returns the computed style for id, or nil if never computed.
func (r *Resolver) Style(id dom.NodeID) *Computed { return r.styles[id] }

// Forget drops the stored style of a detached node.
func (r *Resolver) Forget(id dom.NodeID) { delete(r.styles, id) }

// RecomputeAll recomputes every element in the document. Returns the
// number of elements recomputed.
func (r *Resolver) RecomputeAll(doc *dom.Document) int {
	return r.Recompute(doc, nil)
}

// Recompute recomputes the elements named by dirty plus all their
// descendants, in document order so inheritance sees fresh parent
// values. A nil dirty set recomputes everything. Returns the number
// of elements recomputed.
func (r *Resolver) Recompute(doc *dom.Document, dirty map[dom.NodeID]bool) int {
	count := 0
	var walk func(n *dom.Node, parent *Computed, forced bool)
	walk = func(n *dom.Node, parent *Computed, forced bool) {
		style := parent
		if n.Kind == dom.ElementNode && n.Parent != nil {
			forced = forced || dirty == nil || dirty[n.ID]
			if forced {
				r.styles[n.ID] = ComputeStyle(n, parent, r.sheets)
				count++
			}
			if s, ok := r.styles[n.ID]; ok {
				style = s
			}
		}
		for _, child := range n.Children {
			walk(child, style, forced)
		}
	}
	walk(doc.Root, nil, false)
	return count
}
