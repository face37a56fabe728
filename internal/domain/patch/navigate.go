package patch

import (
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
)

// InstallNavigation registers a click handler that performs same-document
// fragment navigation inside the boundary. The literal href attribute is
// consulted, so base elements and anchor rewriting never redirect a
// fragment link out of the document.
func InstallNavigation(h *isolate.Handle) {
	root := h.Root()
	h.AddListener("click", func(ev *isolate.Event) {
		link := nearestLink(ev.Path)
		if link == nil {
			return
		}
		href := strings.TrimSpace(attrValue(link, "href"))
		if !strings.HasPrefix(href, "#") {
			return
		}
		ev.PreventDefault()
		if target := ResolveFragment(root, href[1:]); target != nil {
			ev.ScrollIntoView(target)
		}
	})
}

// ResolveFragment finds the element a fragment identifier refers to: an
// element with a matching id, otherwise an anchor with a matching name.
// An empty fragment and "top" resolve to the body.
func ResolveFragment(root *html.Node, fragment string) *html.Node {
	name := fragment
	if decoded, err := url.PathUnescape(fragment); err == nil {
		name = decoded
	}
	if name == "" || strings.EqualFold(name, "top") {
		if body := htmlquery.FindOne(root, "//body"); body != nil {
			return body
		}
		return nil
	}
	// Compared in Go rather than interpolated into the expression so
	// author-controlled fragments never reach the XPath parser.
	for _, n := range htmlquery.Find(root, "//*[@id]") {
		if attrValue(n, "id") == name {
			return n
		}
	}
	for _, n := range htmlquery.Find(root, "//a[@name]") {
		if attrValue(n, "name") == name {
			return n
		}
	}
	return nil
}

func nearestLink(path []*html.Node) *html.Node {
	for _, n := range path {
		if n.Type != html.ElementNode {
			continue
		}
		switch strings.ToLower(n.Data) {
		case "a", "area":
			if _, ok := lookupAttr(n, "href"); ok {
				return n
			}
			return nil
		}
	}
	return nil
}

func lookupAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func attrValue(n *html.Node, key string) string {
	v, _ := lookupAttr(n, key)
	return v
}
