package isolate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// FrameClass is the class of the nested frame element.
const FrameClass = "html-reader-frame"

// FrameStrategy serializes the document into the srcdoc of a sandboxed
// nested frame. The content gets its own realm; cross-boundary behavior
// is wired through load callbacks.
type FrameStrategy struct{}

func (FrameStrategy) Kind() policy.Strategy { return policy.StrategyFrame }

func (FrameStrategy) Isolate(ctx context.Context, doc *html.Node, p *policy.Policy, opts Options) (Boundary, error) {
	if doc == nil {
		return nil, ErrNoDocument
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	head, _ := ensureSkeleton(doc)

	csp := p.CSP(opts.BlockRemoteImages)
	if csp != "" {
		injectCSP(head, csp)
	}

	b := &frameBoundary{
		base: newBase(policy.StrategyFrame, "html", csp, opts.Title),
		doc:  doc,
	}
	b.sandbox, b.sandboxed = p.Sandbox()

	// links always leave the frame, whatever the tier
	tmp := newHandle(doc, b.base)
	tmp.EnsureBaseTarget("_blank")
	return b, nil
}

type frameBoundary struct {
	*base
	doc       *html.Node
	sandbox   string
	sandboxed bool
}

// Load assigns the serialized document as frame content. The frame parses
// it into a fresh tree, which is what the handle then exposes.
func (b *frameBoundary) Load(ctx context.Context) error {
	if err := b.begin(ctx); err != nil {
		return err
	}
	srcdoc, err := renderNode(b.doc)
	if err != nil {
		b.abort()
		return fmt.Errorf("failed to serialize frame content: %w", err)
	}
	// sandboxed frames never run script, so noscript content is live markup
	content, err := html.ParseWithOptions(strings.NewReader(srcdoc), html.ParseOptionEnableScripting(!b.sandboxed))
	if err != nil {
		b.abort()
		return fmt.Errorf("frame content failed to load: %w", err)
	}
	b.doc = nil
	return b.finish(content)
}

func (b *frameBoundary) Markup() (string, error) {
	h, err := b.Handle()
	if err != nil {
		return "", err
	}
	srcdoc, err := renderNode(h.Root())
	if err != nil {
		return "", fmt.Errorf("failed to serialize frame content: %w", err)
	}

	attrs := []html.Attribute{
		{Key: "class", Val: FrameClass},
		{Key: "data-strategy", Val: "frame"},
		{Key: "title", Val: b.title},
		{Key: "referrerpolicy", Val: "no-referrer"},
	}
	if b.sandboxed {
		attrs = append(attrs, html.Attribute{Key: "sandbox", Val: b.sandbox})
	}
	if b.csp != "" {
		attrs = append(attrs, html.Attribute{Key: "csp", Val: b.csp})
	}
	attrs = append(attrs, html.Attribute{Key: "srcdoc", Val: srcdoc})

	out, err := renderNode(element(atom.Iframe, attrs...))
	if err != nil {
		return "", fmt.Errorf("failed to render frame: %w", err)
	}
	return out, nil
}

// Sandbox returns the sandbox attribute value and whether one is set.
func (b *frameBoundary) Sandbox() (string, bool) {
	return b.sandbox, b.sandboxed
}
