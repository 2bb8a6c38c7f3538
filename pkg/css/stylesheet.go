package css

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"github.com/sneedgroup-holder/wink-browser/pkg/diag"

	douceur "github.com/aymerick/douceur/css"
)

// Declaration is one property/value pair, kept in source order.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule pairs one parsed selector with its declarations. A source rule
// with a comma-separated prelude becomes several Rules sharing the
// same declarations.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
	SourceOrder  int
}

// Stylesheet is a parsed sheet. Rules keep their source order.
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS source. It never fails: a selector that
// does not parse drops only the rules under that selector, a sheet
// that does not tokenize at all yields an empty stylesheet, and every
// recovery is reported through sink.
func ParseStylesheet(source string, sink diag.Sink) *Stylesheet {
	if sink == nil {
		sink = diag.Nop{}
	}
	sheet := &Stylesheet{}
	parsed, err := parser.Parse(source)
	if err != nil {
		sink.Report(diag.Diagnostic{
			Severity: diag.Error,
			Stage:    diag.StageStyle,
			Message:  "unparseable stylesheet: " + err.Error(),
		})
		return sheet
	}

	order := 0
	for _, r := range parsed.Rules {
		if r.Kind == douceur.AtRule {
			// Media queries and other at-rules are out of scope.
			sink.Report(diag.Diagnostic{
				Severity: diag.Info,
				Stage:    diag.StageStyle,
				Message:  "ignoring at-rule " + r.Name,
			})
			continue
		}
		decls := convertDeclarations(r.Declarations)
		for _, selText := range r.Selectors {
			sel, err := ParseSelector(selText)
			if err != nil {
				sink.Report(diag.Diagnostic{
					Severity: diag.Warning,
					Stage:    diag.StageStyle,
					Message:  err.Error(),
				})
				continue
			}
			sheet.Rules = append(sheet.Rules, Rule{
				Selector:     sel,
				Declarations: decls,
				SourceOrder:  order,
			})
			order++
		}
	}
	return sheet
}

// ParseInlineStyle parses the contents of a style="" attribute.
// Unparseable attribute text yields no declarations.
func ParseInlineStyle(styleAttr string) []Declaration {
	// douceur leaves the last declaration's value empty when the
	// input has no trailing semicolon, so supply one.
	styleAttr = strings.TrimSpace(styleAttr)
	if styleAttr != "" && !strings.HasSuffix(styleAttr, ";") {
		styleAttr += ";"
	}
	parsed, err := parser.ParseDeclarations(styleAttr)
	if err != nil {
		return nil
	}
	return convertDeclarations(parsed)
}

func convertDeclarations(in []*douceur.Declaration) []Declaration {
	out := make([]Declaration, 0, len(in))
	for _, d := range in {
		out = expandShorthand(out, d.Property, d.Value, d.Important)
	}
	return out
}
