package overlay

import (
	"strings"
	"unicode/utf8"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// textNode is a searchable text node. ordinal is its index among the
// searchable text nodes under the search root, which is how the page
// script addresses it.
type textNode struct {
	node    *html.Node
	ordinal int
}

// hiddenText are elements whose text is never rendered as content.
var hiddenText = map[string]bool{
	"script":   true,
	"style":    true,
	"template": true,
}

// blockElements end a run of text: a match never spans two of them.
var blockElements = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "br": true, "caption": true, "dd": true, "details": true,
	"dialog": true, "div": true, "dl": true, "dt": true, "fieldset": true,
	"figcaption": true, "figure": true, "footer": true, "form": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "hgroup": true, "hr": true, "html": true, "li": true,
	"main": true, "nav": true, "ol": true, "option": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true,
	"tr": true, "ul": true,
}

// collectText returns the searchable text nodes under root in document
// order.
func collectText(root *html.Node) []textNode {
	var out []textNode
	for _, n := range htmlquery.Find(root, ".//text()") {
		if hidden(n, root) {
			continue
		}
		out = append(out, textNode{node: n, ordinal: len(out)})
	}
	return out
}

func hidden(n, root *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && hiddenText[strings.ToLower(p.Data)] {
			return true
		}
		if p == root {
			break
		}
	}
	return false
}

func isBlock(n *html.Node) bool {
	return n.Type == html.ElementNode && blockElements[strings.ToLower(n.Data)]
}

// blockOf returns the nearest block ancestor of n, or root.
func blockOf(n, root *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == root || isBlock(p) {
			return p
		}
	}
	return root
}

// following returns the node after n in document order, staying under
// root.
func following(n, root *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for ; n != nil && n != root; n = n.Parent {
		if n.NextSibling != nil {
			return n.NextSibling
		}
	}
	return nil
}

// separated reports whether a block boundary lies between two text nodes
// that follow each other in document order.
func separated(a, b, root *html.Node) bool {
	if blockOf(a, root) != blockOf(b, root) {
		return true
	}
	for n := following(a, root); n != nil && n != b; n = following(n, root) {
		if isBlock(n) {
			return true
		}
	}
	return false
}

// segments splits the text nodes into runs of visually contiguous text.
func segments(nodes []textNode, root *html.Node) [][]textNode {
	var out [][]textNode
	start := 0
	for i := 1; i <= len(nodes); i++ {
		if i == len(nodes) || separated(nodes[i-1].node, nodes[i].node, root) {
			if i > start {
				out = append(out, nodes[start:i])
			}
			start = i
		}
	}
	return out
}

// utf16Len returns the length of s in UTF-16 code units, the unit DOM
// ranges are measured in.
func utf16Len(s string) int {
	n := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
