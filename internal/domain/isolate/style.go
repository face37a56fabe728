package isolate

import (
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
)

// Declarations parses an inline style attribute. Input the strict parser
// rejects, such as empty declarations, is read leniently one ";" at a
// time. ok is false when neither reading succeeds.
func Declarations(style string) (decls []*css.Declaration, ok bool) {
	style = strings.TrimRight(style, " \t\r\n\f;")
	if strings.TrimSpace(style) == "" {
		return nil, true
	}
	// the parser only completes a declaration at a terminator
	decls, err := parser.ParseDeclarations(style + ";")
	if err == nil {
		return decls, true
	}
	return looseDeclarations(style)
}

const important = "!important"

func looseDeclarations(style string) ([]*css.Declaration, bool) {
	var decls []*css.Declaration
	for _, part := range strings.Split(style, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		prop, value, found := strings.Cut(part, ":")
		prop = strings.TrimSpace(prop)
		if !found || prop == "" || strings.ContainsAny(prop, " \t{}()\"'") {
			return nil, false
		}
		d := &css.Declaration{Property: prop, Value: strings.TrimSpace(value)}
		if lower := strings.ToLower(d.Value); strings.HasSuffix(lower, important) {
			d.Important = true
			d.Value = strings.TrimSpace(d.Value[:len(d.Value)-len(important)])
		}
		decls = append(decls, d)
	}
	return decls, true
}

// JoinDeclarations serializes declarations back into attribute form:
// "a: 1; b: 2".
func JoinDeclarations(decls []*css.Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, strings.TrimSuffix(d.String(), ";"))
	}
	return strings.Join(parts, "; ")
}

// propertyValue returns the last value declared for prop, "" when unset.
func propertyValue(decls []*css.Declaration, prop string) string {
	prop = strings.ToLower(prop)
	value := ""
	for _, d := range decls {
		if strings.ToLower(d.Property) == prop {
			value = d.Value
		}
	}
	return value
}

// setProperty replaces every declaration of prop with a single one, or
// appends it.
func setProperty(decls []*css.Declaration, prop, value string) []*css.Declaration {
	lower := strings.ToLower(prop)
	out := decls[:0]
	replaced := false
	for _, d := range decls {
		if strings.ToLower(d.Property) != lower {
			out = append(out, d)
			continue
		}
		if !replaced {
			d.Value = value
			d.Important = false
			out = append(out, d)
			replaced = true
		}
	}
	if !replaced {
		out = append(out, &css.Declaration{Property: prop, Value: value})
	}
	return out
}
