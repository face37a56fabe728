package patch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
)

// VariablesMarker tags the style element holding re-homed variables.
const VariablesMarker = "css-variables"

// VariableSet is an insertion-ordered set of custom property declarations.
// Setting a name again keeps its first position and takes the new value.
type VariableSet struct {
	names   []string
	values  map[string]*css.Declaration
	skipped []error
}

// NewVariableSet returns an empty set.
func NewVariableSet() *VariableSet {
	return &VariableSet{values: make(map[string]*css.Declaration)}
}

// Set records a declaration.
func (v *VariableSet) Set(d *css.Declaration) {
	if _, ok := v.values[d.Property]; !ok {
		v.names = append(v.names, d.Property)
	}
	v.values[d.Property] = &css.Declaration{Property: d.Property, Value: d.Value, Important: d.Important}
}

// Get returns the value recorded for name.
func (v *VariableSet) Get(name string) (string, bool) {
	d, ok := v.values[name]
	if !ok {
		return "", false
	}
	return d.Value, true
}

// Len returns the number of distinct names.
func (v *VariableSet) Len() int {
	return len(v.names)
}

// Names returns the names in first-declared order.
func (v *VariableSet) Names() []string {
	return append([]string(nil), v.names...)
}

// Skipped returns one error per stylesheet that could not be parsed.
// Variables declared in those sheets stay where they are.
func (v *VariableSet) Skipped() []error {
	return append([]error(nil), v.skipped...)
}

// Rule renders the set as a single rule for selector.
func (v *VariableSet) Rule(selector string) string {
	parts := make([]string, 0, len(v.names))
	for _, name := range v.names {
		parts = append(parts, strings.TrimSuffix(v.values[name].String(), ";"))
	}
	return selector + " { " + strings.Join(parts, "; ") + "; }"
}

// RehomeVariables moves custom properties declared on :root into a single
// rule scoped to the boundary host, appended to the body. Variables do not
// inherit across the boundary, so without this author styles that use
// them render wrong. Stylesheets that fail to parse, such as ones using CSS
// nesting, are left untouched and reported by Skipped.
func RehomeVariables(h *isolate.Handle) *VariableSet {
	vars := NewVariableSet()
	h.Find("style").Each(func(i int, s *goquery.Selection) {
		if marker, _ := s.Attr("data-html-reader"); marker == VariablesMarker {
			return
		}
		sheet, err := parser.Parse(s.Text())
		if err != nil {
			vars.skipped = append(vars.skipped, fmt.Errorf("style element %d: %w", i, err))
			return
		}
		if extractRootVariables(sheet, vars) {
			setText(s.Get(0), sheet.String())
		}
	})

	if vars.Len() == 0 {
		return vars
	}
	body := h.Body()
	if body.Length() == 0 {
		return vars
	}
	style := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Style,
		Data:     "style",
		Attr:     []html.Attribute{{Key: "data-html-reader", Val: VariablesMarker}},
	}
	style.AppendChild(&html.Node{Type: html.TextNode, Data: vars.Rule(h.HostSelector())})
	body.Get(0).AppendChild(style)
	return vars
}

// extractRootVariables removes custom properties from top-level :root
// rules into vars and drops rules left empty. It reports whether the
// sheet changed.
func extractRootVariables(sheet *css.Stylesheet, vars *VariableSet) bool {
	changed := false
	kept := sheet.Rules[:0]
	for _, rule := range sheet.Rules {
		if rule.Kind != css.QualifiedRule || !rootOnly(rule.Selectors) {
			kept = append(kept, rule)
			continue
		}
		decls := rule.Declarations[:0]
		for _, d := range rule.Declarations {
			if strings.HasPrefix(d.Property, "--") {
				vars.Set(d)
				changed = true
				continue
			}
			decls = append(decls, d)
		}
		rule.Declarations = decls
		if len(decls) > 0 {
			kept = append(kept, rule)
		}
	}
	sheet.Rules = kept
	return changed
}

func rootOnly(selectors []string) bool {
	if len(selectors) == 0 {
		return false
	}
	for _, sel := range selectors {
		if !strings.EqualFold(strings.TrimSpace(sel), ":root") {
			return false
		}
	}
	return true
}

func setText(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}
