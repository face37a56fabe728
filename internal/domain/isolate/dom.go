package isolate

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const cspMarker = "data-html-reader"

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	stack := []*html.Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.Type == html.ElementNode && cur.DataAtom == a {
			return cur
		}
		for c := cur.LastChild; c != nil; c = c.PrevSibling {
			stack = append(stack, c)
		}
	}
	return nil
}

// ensureSkeleton guarantees html, head and body elements exist.
func ensureSkeleton(doc *html.Node) (head, body *html.Node) {
	root := findElement(doc, atom.Html)
	if root == nil {
		root = element(atom.Html)
		doc.AppendChild(root)
	}
	head = findElement(root, atom.Head)
	if head == nil {
		head = element(atom.Head)
		if root.FirstChild != nil {
			root.InsertBefore(head, root.FirstChild)
		} else {
			root.AppendChild(head)
		}
	}
	body = findElement(root, atom.Body)
	if body == nil {
		body = element(atom.Body)
		root.AppendChild(body)
	}
	return head, body
}

func isCSPMeta(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == cspMarker && a.Val == "csp" {
			return true
		}
	}
	return false
}

// injectCSP places a CSP meta element first in head, replacing an earlier
// one written by this package.
func injectCSP(head *html.Node, csp string) {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if isCSPMeta(c) {
			head.RemoveChild(c)
			break
		}
	}
	meta := element(atom.Meta,
		html.Attribute{Key: "http-equiv", Val: "Content-Security-Policy"},
		html.Attribute{Key: "content", Val: csp},
		html.Attribute{Key: cspMarker, Val: "csp"},
	)
	if head.FirstChild != nil {
		head.InsertBefore(meta, head.FirstChild)
	} else {
		head.AppendChild(meta)
	}
}

// cloneTree deep-copies n without recursion.
func cloneTree(n *html.Node) *html.Node {
	type pair struct{ src, dst *html.Node }
	rootCopy := shallowCopy(n)
	stack := []pair{{n, rootCopy}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for c := p.src.FirstChild; c != nil; c = c.NextSibling {
			cc := shallowCopy(c)
			p.dst.AppendChild(cc)
			if c.FirstChild != nil {
				stack = append(stack, pair{c, cc})
			}
		}
	}
	return rootCopy
}

func shallowCopy(n *html.Node) *html.Node {
	return &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
}

func renderNode(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}
