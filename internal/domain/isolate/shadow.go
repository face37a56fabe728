package isolate

import (
	"context"
	"fmt"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// Class names of the shadow host and the element standing in for body
// inside the shadow root.
const (
	HostClass = "html-reader-host"
	BodyClass = "html-reader-body"
)

// ShadowStrategy attaches the document under an open declarative shadow
// root. It encapsulates styles but not script, so it only serves tiers
// that removed all script capability.
type ShadowStrategy struct{}

func (ShadowStrategy) Kind() policy.Strategy { return policy.StrategyShadow }

func (ShadowStrategy) Isolate(ctx context.Context, doc *html.Node, p *policy.Policy, opts Options) (Boundary, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ensureSkeleton(doc)
	return &shadowBoundary{
		base: newBase(policy.StrategyShadow, ":host", p.CSP(opts.BlockRemoteImages), opts.Title),
		doc:  doc,
	}, nil
}

type shadowBoundary struct {
	*base
	doc *html.Node
}

// Load is synchronous: the content is attached in place.
func (b *shadowBoundary) Load(ctx context.Context) error {
	if err := b.begin(ctx); err != nil {
		return err
	}
	return b.finish(b.doc)
}

// Markup renders
//
//	<div class="html-reader-host"><template shadowrootmode="open">
//	  head styles, then <div class="html-reader-body"> with the body content
//	</template></div>
func (b *shadowBoundary) Markup() (string, error) {
	h, err := b.Handle()
	if err != nil {
		return "", err
	}
	head, body := ensureSkeleton(h.Root())

	host := element(atom.Div,
		html.Attribute{Key: "class", Val: HostClass},
		html.Attribute{Key: "data-strategy", Val: "shadow"},
	)
	tmpl := element(atom.Template, html.Attribute{Key: "shadowrootmode", Val: "open"})
	host.AppendChild(tmpl)

	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.DataAtom == atom.Style || c.DataAtom == atom.Link) {
			tmpl.AppendChild(cloneTree(c))
		}
	}

	wrapper := cloneTree(body)
	wrapper.DataAtom = atom.Div
	wrapper.Data = "div"
	wrapper.Attr = withClass(wrapper.Attr, BodyClass)
	tmpl.AppendChild(wrapper)

	out, err := renderNode(host)
	if err != nil {
		return "", fmt.Errorf("failed to render shadow host: %w", err)
	}
	return out, nil
}

func withClass(attrs []html.Attribute, class string) []html.Attribute {
	for i, a := range attrs {
		if a.Namespace == "" && a.Key == "class" {
			attrs[i].Val = class + " " + a.Val
			return attrs
		}
	}
	return append(attrs, html.Attribute{Key: "class", Val: class})
}
