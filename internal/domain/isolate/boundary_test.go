package isolate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

func parse(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func isolated(t *testing.T, mode policy.Mode, raw string) Boundary {
	t.Helper()
	b, err := Isolate(context.Background(), parse(t, raw), policy.Lookup(mode), Options{Title: "doc.html", BlockRemoteImages: true})
	require.NoError(t, err)
	return b
}

func TestForPicksStrategy(t *testing.T) {
	assert.Equal(t, policy.StrategyShadow, For(policy.StrategyShadow).Kind())
	assert.Equal(t, policy.StrategyFrame, For(policy.StrategyFrame).Kind())
}

func TestIsolateRejectsNilDocument(t *testing.T) {
	_, err := Isolate(context.Background(), nil, policy.Lookup(policy.ModeText), Options{})
	assert.ErrorIs(t, err, ErrNoDocument)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Isolate(ctx, parse(t, "<p>x</p>"), policy.Lookup(policy.ModeBalance), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOnLoadRunsOnceInOrder(t *testing.T) {
	b := isolated(t, policy.ModeBalance, "<p>hi</p>")

	var order []int
	require.NoError(t, b.OnLoad(func(h *Handle) error { order = append(order, 1); return nil }))
	require.NoError(t, b.OnLoad(func(h *Handle) error { order = append(order, 2); return nil }))

	_, err := b.Handle()
	assert.ErrorIs(t, err, ErrNotLoaded)

	require.NoError(t, b.Load(context.Background()))
	assert.Equal(t, []int{1, 2}, order)
	assert.True(t, b.Loaded())

	assert.ErrorIs(t, b.OnLoad(func(h *Handle) error { return nil }), ErrAlreadyLoaded)
	assert.ErrorIs(t, b.Load(context.Background()), ErrAlreadyLoaded)
	assert.Equal(t, []int{1, 2}, order)
}

func TestLoadCallbackError(t *testing.T) {
	b := isolated(t, policy.ModeText, "<p>hi</p>")
	boom := errors.New("boom")
	require.NoError(t, b.OnLoad(func(h *Handle) error { return boom }))
	assert.ErrorIs(t, b.Load(context.Background()), boom)
}

func TestClose(t *testing.T) {
	b := isolated(t, policy.ModeBalance, "<p>hi</p>")
	require.NoError(t, b.Load(context.Background()))
	b.Close()

	_, err := b.Handle()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Markup()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, DispatchResult{}, b.Dispatch(&Event{Type: "click"}))
}

func TestShadowMarkup(t *testing.T) {
	b := isolated(t, policy.ModeText, `<html><head><style>p{color:red}</style><title>x</title></head><body class="doc"><p>hello</p></body></html>`)
	assert.Equal(t, ":host", b.HostSelector())
	assert.Contains(t, b.CSP(), "default-src 'none'")

	require.NoError(t, b.Load(context.Background()))
	out, err := b.Markup()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<div class="html-reader-host" data-strategy="shadow"><template shadowrootmode="open"><style>p{color:red}</style>`))
	assert.Contains(t, out, `<div class="html-reader-body doc"><p>hello</p></div>`)
	assert.NotContains(t, out, "<title>")
	assert.NotContains(t, out, "<body")

	again, err := b.Markup()
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestFrameMarkup(t *testing.T) {
	b := isolated(t, policy.ModeHighRestricted, `<html><head><title>x</title></head><body><p>hello &amp; "bye"</p></body></html>`)
	assert.Equal(t, "html", b.HostSelector())
	require.NoError(t, b.Load(context.Background()))

	out, err := b.Markup()
	require.NoError(t, err)

	frame, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	iframe := frame.Find("iframe")
	require.Equal(t, 1, iframe.Length())

	sandbox, _ := iframe.Attr("sandbox")
	assert.Equal(t, "allow-same-origin allow-popups allow-popups-to-escape-sandbox", sandbox)
	csp, _ := iframe.Attr("csp")
	assert.Equal(t, policy.Lookup(policy.ModeHighRestricted).CSP(true), csp)

	srcdoc, _ := iframe.Attr("srcdoc")
	inner, err := goquery.NewDocumentFromReader(strings.NewReader(srcdoc))
	require.NoError(t, err)
	assert.Equal(t, `hello & "bye"`, inner.Find("p").Text())

	meta := inner.Find("head").Children().First()
	equiv, _ := meta.Attr("http-equiv")
	assert.Equal(t, "Content-Security-Policy", equiv)
	target, _ := inner.Find("base").Attr("target")
	assert.Equal(t, "_blank", target)
}

func TestUnrestrictedFrameHasNoSandbox(t *testing.T) {
	b := isolated(t, policy.ModeUnrestricted, `<a href="https://example.com">x</a><script>1</script>`)
	assert.Empty(t, b.CSP())
	require.NoError(t, b.Load(context.Background()))

	out, err := b.Markup()
	require.NoError(t, err)
	assert.NotContains(t, out, "sandbox=")
	assert.NotContains(t, out, " csp=")
	assert.Contains(t, out, "&lt;base target=&#34;_blank&#34;/&gt;")
}

func TestFrameContentIsReparsed(t *testing.T) {
	doc := parse(t, "<p>one</p>")
	b, err := Isolate(context.Background(), doc, policy.Lookup(policy.ModeBalance), Options{})
	require.NoError(t, err)

	var root *html.Node
	require.NoError(t, b.OnLoad(func(h *Handle) error {
		root = h.Root()
		assert.Equal(t, "one", h.Find("p").Text())
		return nil
	}))
	require.NoError(t, b.Load(context.Background()))
	assert.NotSame(t, doc, root)
}

func TestHandleStyle(t *testing.T) {
	b := isolated(t, policy.ModeBalance, `<body style="color: red; overflow: hidden !important"><p>x</p></body>`)
	require.NoError(t, b.Load(context.Background()))
	h, err := b.Handle()
	require.NoError(t, err)

	body := h.Body()
	assert.Equal(t, "red", inlineStyle(t, h, body, "color"))
	assert.Equal(t, "hidden", inlineStyle(t, h, body, "OVERFLOW"))
	assert.Equal(t, "", inlineStyle(t, h, body, "user-select"))

	h.SetStyle(body, "user-select", "text")
	h.SetStyle(body, "color", "blue")
	style, _ := body.Attr("style")
	assert.Equal(t, "color: blue; overflow: hidden !important; user-select: text", style)

	assert.Equal(t, "", inlineStyle(t, h, h.Find("nothing"), "color"))
}

func inlineStyle(t *testing.T, h *Handle, sel *goquery.Selection, prop string) string {
	t.Helper()
	v, ok := h.Style(sel, prop)
	require.True(t, ok, "style of %s unreadable", prop)
	return v
}

func TestHandleStyleLenient(t *testing.T) {
	b := isolated(t, policy.ModeBalance, `<body style="overflow: hidden; ; user-select: none !important"><p>x</p></body>`)
	require.NoError(t, b.Load(context.Background()))
	h, err := b.Handle()
	require.NoError(t, err)

	body := h.Body()
	assert.Equal(t, "hidden", inlineStyle(t, h, body, "overflow"))
	assert.Equal(t, "none", inlineStyle(t, h, body, "user-select"))

	body.SetAttr("style", "overflow hidden; {")
	v, ok := h.Style(body, "overflow")
	assert.False(t, ok)
	assert.Empty(t, v)
}

func TestDispatch(t *testing.T) {
	b := isolated(t, policy.ModeBalance, `<p id="p">x</p>`)
	require.NoError(t, b.OnLoad(func(h *Handle) error {
		h.AddListener("click", func(ev *Event) {
			ev.PreventDefault()
			ev.ScrollIntoView(ev.Target())
		})
		return nil
	}))
	require.NoError(t, b.Load(context.Background()))
	h, _ := b.Handle()

	p := h.Find("#p").Get(0)
	res := b.Dispatch(NewEvent("click", p))
	assert.True(t, res.DefaultPrevented)
	assert.Same(t, p, res.ScrollTarget)

	res = b.Dispatch(NewEvent("keydown", p))
	assert.False(t, res.DefaultPrevented)
}

func TestEnsureSkeleton(t *testing.T) {
	doc := &html.Node{Type: html.DocumentNode}
	head, body := ensureSkeleton(doc)
	require.NotNil(t, head)
	require.NotNil(t, body)
	out, err := renderNode(doc)
	require.NoError(t, err)
	assert.Equal(t, "<html><head></head><body></body></html>", out)
}
