package sanitize

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

type action int

const (
	actionKeep action = iota
	actionDrop
	actionUnwrap
)

type walker struct {
	p     *policy.Policy
	stats Stats
}

// run walks the tree with an explicit stack so hostile nesting depth
// cannot exhaust the goroutine stack.
func (w *walker) run(root *html.Node) {
	stack := []*html.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c := n.FirstChild
		for c != nil {
			next := c.NextSibling
			switch w.visit(c) {
			case actionKeep:
				if c.FirstChild != nil {
					stack = append(stack, c)
				}
			case actionDrop:
				n.RemoveChild(c)
			case actionUnwrap:
				first := c.FirstChild
				for ch := c.FirstChild; ch != nil; {
					nx := ch.NextSibling
					c.RemoveChild(ch)
					n.InsertBefore(ch, c)
					ch = nx
				}
				n.RemoveChild(c)
				// hoisted children are visited by this same loop
				if first != nil {
					next = first
				}
			}
			c = next
		}
	}
}

func (w *walker) visit(n *html.Node) action {
	if n.Type != html.ElementNode {
		return actionKeep
	}
	tag := strings.ToLower(n.Data)

	if w.p.StripScripts && loadsScript(tag, n) {
		w.stats.ScriptsStripped++
		return actionDrop
	}

	if !w.p.Tags.Admits(tag) {
		if w.p.Tags.Drops(tag) {
			w.stats.ElementsDropped++
			return actionDrop
		}
		w.stats.ElementsUnwrapped++
		return actionUnwrap
	}

	w.filterAttrs(tag, n)
	if w.p.LockForms {
		w.lockControl(tag, n)
	}
	if w.p.SandboxFrames && tag == "iframe" {
		w.sandboxFrame(n)
	}
	return actionKeep
}

// AttrName returns the lookup name of an attribute: lowercase, prefixed
// with its namespace for foreign attributes ("xlink:href").
func AttrName(a html.Attribute) string {
	if a.Namespace != "" {
		return strings.ToLower(a.Namespace + ":" + a.Key)
	}
	return strings.ToLower(a.Key)
}

func (w *walker) filterAttrs(tag string, n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		name := AttrName(a)
		if !w.p.Attrs.Admits(name) {
			w.stats.AttributesRemoved++
			continue
		}
		if policy.IsURLAttribute(name) {
			val, ok, changed := vetAttrURL(w.p.URLs, tag, name, a.Val)
			if !ok {
				w.stats.AttributesRemoved++
				continue
			}
			if changed {
				w.stats.URLsNeutralized++
			}
			a.Val = val
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func (w *walker) lockControl(tag string, n *html.Node) {
	var want []string
	switch tag {
	case "input", "textarea":
		want = []string{"readonly", "disabled"}
	case "select", "button":
		want = []string{"disabled"}
	default:
		return
	}
	locked := false
	for _, key := range want {
		if !hasAttr(n, key) {
			n.Attr = append(n.Attr, html.Attribute{Key: key})
			locked = true
		}
	}
	if locked {
		w.stats.ControlsLocked++
	}
}

func (w *walker) sandboxFrame(n *html.Node) {
	for i, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, "sandbox") {
			if a.Val != "" {
				n.Attr[i].Val = ""
				w.stats.FramesSandboxed++
			}
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "sandbox"})
	w.stats.FramesSandboxed++
}

// loadsScript reports script elements and links that fetch script.
func loadsScript(tag string, n *html.Node) bool {
	switch tag {
	case "script":
		return true
	case "link":
		rels := strings.Fields(strings.ToLower(attr(n, "rel")))
		as := strings.ToLower(strings.TrimSpace(attr(n, "as")))
		for _, rel := range rels {
			switch rel {
			case "modulepreload", "import", "serviceworker":
				return true
			case "preload", "prefetch", "preconnect":
				if as == "script" || as == "worker" || as == "sharedworker" || as == "serviceworker" {
					return true
				}
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}
