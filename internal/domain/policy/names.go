package policy

import (
	"regexp"
	"strings"
)

// ListKind selects how a NameSet admits names.
type ListKind int

const (
	// AllowAll admits every name.
	AllowAll ListKind = iota
	// AllowList admits only names in the set.
	AllowList
	// DenyList admits every name not in the set.
	DenyList
)

// NameSet is a case-insensitive set of tag or attribute names. An entry
// ending in "-*" matches every name sharing that hyphenated prefix, so
// "data-*" covers "data-foo". Prefixes match plain name prefixes ("on"
// covers every event handler attribute).
type NameSet struct {
	Kind     ListKind
	Names    map[string]struct{}
	Prefixes []string
}

func newNameSet(kind ListKind, groups ...[]string) NameSet {
	s := NameSet{Kind: kind, Names: make(map[string]struct{})}
	for _, g := range groups {
		for _, name := range g {
			s.Names[strings.ToLower(name)] = struct{}{}
		}
	}
	return s
}

func (s NameSet) withPrefixes(prefixes ...string) NameSet {
	s.Prefixes = append(append([]string(nil), s.Prefixes...), prefixes...)
	return s
}

// Contains reports whether name is listed, ignoring Kind.
func (s NameSet) Contains(name string) bool {
	name = strings.ToLower(name)
	if _, ok := s.Names[name]; ok {
		return true
	}
	if i := strings.IndexByte(name, '-'); i > 0 {
		if _, ok := s.Names[name[:i+1]+"*"]; ok {
			return true
		}
	}
	for _, p := range s.Prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Admits applies Kind to name.
func (s NameSet) Admits(name string) bool {
	switch s.Kind {
	case AllowList:
		return s.Contains(name)
	case DenyList:
		return !s.Contains(name)
	default:
		return true
	}
}

var customElementName = regexp.MustCompile(`^[a-z][a-z0-9._\x{B7}\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{37D}\x{37F}-\x{1FFF}\x{200C}-\x{200D}\x{203F}-\x{2040}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}]*-[-a-z0-9._\x{B7}\x{C0}-\x{D6}\x{D8}-\x{F6}\x{F8}-\x{37D}\x{37F}-\x{1FFF}\x{200C}-\x{200D}\x{203F}-\x{2040}\x{2070}-\x{218F}\x{2C00}-\x{2FEF}\x{3001}-\x{D7FF}\x{F900}-\x{FDCF}\x{FDF0}-\x{FFFD}]*$`)

var reservedCustomNames = map[string]struct{}{
	"annotation-xml":   {},
	"color-profile":    {},
	"font-face":        {},
	"font-face-src":    {},
	"font-face-uri":    {},
	"font-face-format": {},
	"font-face-name":   {},
	"missing-glyph":    {},
}

// IsCustomElementName reports whether name is a valid autonomous custom
// element name such as "my-widget".
func IsCustomElementName(name string) bool {
	name = strings.ToLower(name)
	if _, reserved := reservedCustomNames[name]; reserved {
		return false
	}
	return customElementName.MatchString(name)
}

// TagRule decides the fate of an element by its lowercase name.
type TagRule struct {
	NameSet
	// CustomElements admits hyphenated custom element names regardless of
	// the list.
	CustomElements bool
	// DropContent names rejected tags whose whole subtree is removed.
	// Other rejected tags are unwrapped and keep their children.
	DropContent map[string]struct{}
}

// Admits reports whether an element named tag is kept.
func (r TagRule) Admits(tag string) bool {
	if r.CustomElements && IsCustomElementName(tag) {
		return true
	}
	return r.NameSet.Admits(tag)
}

// Drops reports whether a rejected element loses its content too.
func (r TagRule) Drops(tag string) bool {
	_, ok := r.DropContent[strings.ToLower(tag)]
	return ok
}

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}
