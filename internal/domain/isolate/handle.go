package isolate

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// Handle is the only way to reach into an isolated document. It exposes
// queries, inline style mutation and listener registration.
type Handle struct {
	root *html.Node
	doc  *goquery.Document
	host string
	kind policy.Strategy
	b    *base
}

func newHandle(root *html.Node, b *base) *Handle {
	return &Handle{
		root: root,
		doc:  goquery.NewDocumentFromNode(root),
		host: b.host,
		kind: b.kind,
		b:    b,
	}
}

// Root returns the isolated document node.
func (h *Handle) Root() *html.Node {
	return h.root
}

// Find runs a CSS selector against the isolated document.
func (h *Handle) Find(selector string) *goquery.Selection {
	return h.doc.Find(selector)
}

// Head returns the document head.
func (h *Handle) Head() *goquery.Selection {
	return h.doc.Find("head").First()
}

// Body returns the root content element.
func (h *Handle) Body() *goquery.Selection {
	return h.doc.Find("body").First()
}

// HostSelector is the selector that reaches the boundary host from inside
// the isolated document.
func (h *Handle) HostSelector() string {
	return h.host
}

// Strategy reports which boundary the handle belongs to.
func (h *Handle) Strategy() policy.Strategy {
	return h.kind
}

// AddListener registers l for events of type typ dispatched on the
// boundary.
func (h *Handle) AddListener(typ string, l Listener) {
	h.b.addListener(typ, l)
}

// Style returns the inline value of prop on the first selected element,
// "" when the property is not set. ok is false when the style attribute
// cannot be read, in which case the property may well be set.
func (h *Handle) Style(sel *goquery.Selection, prop string) (value string, ok bool) {
	if sel.Length() == 0 {
		return "", true
	}
	style, _ := sel.First().Attr("style")
	decls, ok := Declarations(style)
	if !ok {
		return "", false
	}
	return propertyValue(decls, prop), true
}

// SetStyle sets prop on every selected element, keeping other inline
// declarations.
func (h *Handle) SetStyle(sel *goquery.Selection, prop, value string) {
	sel.Each(func(_ int, s *goquery.Selection) {
		style, _ := s.Attr("style")
		decls, ok := Declarations(style)
		if !ok {
			s.SetAttr("style", strings.TrimRight(style, "; ")+"; "+prop+": "+value)
			return
		}
		s.SetAttr("style", JoinDeclarations(setProperty(decls, prop, value)))
	})
}

// EnsureBaseTarget makes sure the head carries a base element whose target
// is target. It reports whether the document changed.
func (h *Handle) EnsureBaseTarget(target string) bool {
	head := h.Head()
	if head.Length() == 0 {
		return false
	}
	base := head.Find("base").First()
	if base.Length() > 0 {
		if current, _ := base.Attr("target"); current == target {
			return false
		}
		base.SetAttr("target", target)
		return true
	}
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Base,
		Data:     "base",
		Attr:     []html.Attribute{{Key: "target", Val: target}},
	}
	headNode := head.Get(0)
	if first := firstElementAfterCSP(headNode); first != nil {
		headNode.InsertBefore(n, first)
	} else {
		headNode.AppendChild(n)
	}
	return true
}

// firstElementAfterCSP returns the head child a new element should be
// inserted before so that a CSP meta stays first.
func firstElementAfterCSP(head *html.Node) *html.Node {
	c := head.FirstChild
	if c != nil && isCSPMeta(c) {
		return c.NextSibling
	}
	return c
}
