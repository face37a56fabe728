package patch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/sanitize"
)

// pipeline sanitizes, isolates, patches and loads raw.
func pipeline(t *testing.T, mode policy.Mode, raw string) (isolate.Boundary, *isolate.Handle, *Report) {
	t.Helper()
	p := policy.Lookup(mode)
	doc, _ := sanitize.Sanitize(raw, mode)
	b, err := isolate.Isolate(context.Background(), doc, p, isolate.Options{Title: "t.html", BlockRemoteImages: true})
	require.NoError(t, err)
	report, err := Apply(b, p, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, b.Load(context.Background()))
	h, err := b.Handle()
	require.NoError(t, err)
	return b, h, report
}

func TestRestoreInteractionOnEmptyStyle(t *testing.T) {
	_, h, report := pipeline(t, policy.ModeBalance, `<body style=""><a href="javascript:alert(1)">x</a></body>`)

	style, _ := h.Body().Attr("style")
	assert.Equal(t, "overflow: auto; user-select: text", style)
	assert.Equal(t, 2, report.Restored())
	assert.True(t, report.Applied())

	href, _ := h.Find("a").Attr("href")
	assert.False(t, strings.HasPrefix(strings.ToLower(href), "javascript:alert"))
}

func TestRestoreInteractionKeepsAuthorValues(t *testing.T) {
	_, h, report := pipeline(t, policy.ModeBalance, `<body style="overflow: hidden; color: red"><p>x</p></body>`)

	assert.Equal(t, "hidden", inlineStyle(t, h, "overflow"))
	assert.Equal(t, "text", inlineStyle(t, h, "user-select"))
	assert.Equal(t, "red", inlineStyle(t, h, "color"))
	assert.Equal(t, 1, report.Restored())
}

func TestRestoreInteractionReadsLenientStyles(t *testing.T) {
	raw := `<body style="overflow: hidden; ; user-select: none"><p>x</p></body>`
	_, h, report := pipeline(t, policy.ModeBalance, raw)

	style, _ := h.Body().Attr("style")
	assert.Equal(t, "overflow: hidden; ; user-select: none", style)
	assert.Equal(t, "hidden", inlineStyle(t, h, "overflow"))
	assert.Equal(t, "none", inlineStyle(t, h, "user-select"))
	assert.Zero(t, report.Restored())
}

func TestRestoreInteractionSkipsUnreadableStyles(t *testing.T) {
	doc, _ := sanitize.Sanitize(`<body><p>x</p></body>`, policy.ModeBalance)
	b, err := isolate.Isolate(context.Background(), doc, policy.Lookup(policy.ModeBalance), isolate.Options{Title: "t.html"})
	require.NoError(t, err)
	require.NoError(t, b.Load(context.Background()))
	h, err := b.Handle()
	require.NoError(t, err)

	h.Body().SetAttr("style", "overflow hidden; {")
	assert.Zero(t, RestoreInteraction(h))
	style, _ := h.Body().Attr("style")
	assert.Equal(t, "overflow hidden; {", style)
}

func inlineStyle(t *testing.T, h *isolate.Handle, prop string) string {
	t.Helper()
	v, ok := h.Style(h.Body(), prop)
	require.True(t, ok, "body style unreadable")
	return v
}

func TestRestoreInteractionDisabled(t *testing.T) {
	for _, mode := range []policy.Mode{policy.ModeText, policy.ModeUnrestricted} {
		_, h, report := pipeline(t, mode, `<body><p>x</p></body>`)
		_, has := h.Body().Attr("style")
		assert.False(t, has, mode.ID())
		assert.Zero(t, report.Restored())
	}
}

func TestRehomeVariables(t *testing.T) {
	raw := `<html><head><style>:root{--c: red;}</style></head><body><p>x</p></body></html>`

	for _, tc := range []struct {
		mode policy.Mode
		host string
	}{
		{policy.ModeBalance, "html"},
		{policy.ModeHighRestricted, "html"},
	} {
		t.Run(tc.mode.ID(), func(t *testing.T) {
			_, h, report := pipeline(t, tc.mode, raw)
			assert.Equal(t, 1, report.Variables())

			original := h.Find("head style").First().Text()
			assert.NotContains(t, original, "--c")

			synth := h.Find(`style[data-html-reader="css-variables"]`)
			require.Equal(t, 1, synth.Length())
			assert.Equal(t, tc.host+" { --c: red; }", synth.Text())
		})
	}
}

func TestRehomeVariablesReachDocumentElement(t *testing.T) {
	raw := `<style>:root{--bg: #fff} html{background: var(--bg)}</style><p>x</p>`
	_, h, report := pipeline(t, policy.ModeBalance, raw)

	assert.Equal(t, 1, report.Variables())
	assert.Equal(t, "html { --bg: #fff; }", h.Find(`style[data-html-reader="css-variables"]`).Text())
	assert.Contains(t, h.Find("style").First().Text(), "var(--bg)")
}

func TestRehomeVariablesShadowHost(t *testing.T) {
	doc := sanitize.Parse(`<style>:root { --c: red; color: blue }</style><p>x</p>`, false)
	p := *policy.Lookup(policy.ModeText)
	p.RehomeVariables = true

	b, err := isolate.Isolate(context.Background(), doc, &p, isolate.Options{})
	require.NoError(t, err)
	report, err := Apply(b, &p, nil)
	require.NoError(t, err)
	require.NoError(t, b.Load(context.Background()))

	h, err := b.Handle()
	require.NoError(t, err)
	assert.Equal(t, 1, report.Variables())
	assert.Equal(t, ":host { --c: red; }", h.Find(`style[data-html-reader="css-variables"]`).Text())
	// the rule survives with its remaining declaration
	kept := h.Find("style").First().Text()
	assert.Contains(t, kept, ":root")
	assert.Contains(t, kept, "color: blue")
	assert.NotContains(t, kept, "--c")

	markup, err := b.Markup()
	require.NoError(t, err)
	assert.Contains(t, markup, ":host { --c: red; }")
}

func TestRehomeVariablesLastWins(t *testing.T) {
	raw := `<style>:root{--a: 1; --b: 2}</style><style>:root{--a: 3}</style><style>.x, :root{--z: 9}</style>`
	_, h, report := pipeline(t, policy.ModeBalance, raw)

	assert.Equal(t, 2, report.Variables())
	assert.Equal(t, "html { --a: 3; --b: 2; }", h.Find(`style[data-html-reader="css-variables"]`).Text())
	// mixed selector lists stay in place
	assert.Contains(t, h.Find("style").Eq(2).Text(), "--z")
}

func TestRehomeVariablesSkipsUnparsable(t *testing.T) {
	_, h, report := pipeline(t, policy.ModeBalance, `<style>:root{--a: 1}}</style><p>x</p>`)
	assert.Zero(t, report.Variables())
	assert.Equal(t, 0, h.Find(`style[data-html-reader="css-variables"]`).Length())
	assert.Contains(t, h.Find("style").Text(), "--a")
}

func TestRehomeVariablesLogsSkippedSheets(t *testing.T) {
	raw := `<style>.x { &:hover { color: red } } :root{--a: 1}</style><style>:root{--b: 2}</style><p>x</p>`
	p := policy.Lookup(policy.ModeBalance)
	doc, _ := sanitize.Sanitize(raw, policy.ModeBalance)
	b, err := isolate.Isolate(context.Background(), doc, p, isolate.Options{Title: "t.html"})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	report, err := Apply(b, p, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, b.Load(context.Background()))

	assert.Equal(t, 1, report.Variables())
	skipped := logs.FilterMessageSnippet("Stylesheet not parsed").All()
	require.Len(t, skipped, 1)
	assert.Contains(t, skipped[0].ContextMap()["error"], "style element 0")

	h, err := b.Handle()
	require.NoError(t, err)
	vars := RehomeVariables(h)
	assert.Len(t, vars.Skipped(), 1)
}

func TestVariableSet(t *testing.T) {
	vars := NewVariableSet()
	assert.Zero(t, vars.Len())
	_, ok := vars.Get("--x")
	assert.False(t, ok)
}

func TestRewriteAnchors(t *testing.T) {
	raw := `<body>
		<a id="self" href="https://a.example/" target="_self">a</a>
		<a id="top" href="https://b.example/" target="_TOP">b</a>
		<a id="plain" href="https://c.example/">c</a>
		<a id="named" href="https://d.example/" target="other" rel="noopener">d</a>
		<a id="frag" href="#sec">e</a>
		<h2 id="sec">S</h2>
	</body>`
	_, h, report := pipeline(t, policy.ModeBalance, raw)

	target := func(id string) string {
		v, _ := h.Find("#" + id).Attr("target")
		return v
	}
	rel := func(id string) string {
		v, _ := h.Find("#" + id).Attr("rel")
		return v
	}

	assert.Equal(t, "_blank", target("self"))
	assert.Equal(t, "_blank", target("top"))
	assert.Equal(t, "", target("plain"))
	assert.Equal(t, "other", target("named"))
	assert.Equal(t, "_self", target("frag"))

	assert.Equal(t, "noopener noreferrer", rel("plain"))
	assert.Equal(t, "noopener noreferrer", rel("named"))
	assert.Equal(t, "", rel("frag"))

	base, _ := h.Find("head base").Attr("target")
	assert.Equal(t, "_blank", base)

	stats := report.Anchors()
	assert.Equal(t, 3, stats.Retargeted)
	assert.Equal(t, 4, stats.Secured)
}

func TestRewriteAnchorsIdempotent(t *testing.T) {
	_, h, _ := pipeline(t, policy.ModeBalance, `<a href="https://x.example/" target="_parent">x</a>`)
	again := RewriteAnchors(h)
	assert.False(t, again.BaseInserted)
	assert.Zero(t, again.Retargeted)
	assert.Zero(t, again.Secured)
}

func click(t *testing.T, b isolate.Boundary, h *isolate.Handle, selector string) isolate.DispatchResult {
	t.Helper()
	sel := h.Find(selector)
	require.Equal(t, 1, sel.Length(), selector)
	return b.Dispatch(isolate.NewEvent("click", sel.Get(0)))
}

func TestFragmentNavigation(t *testing.T) {
	raw := `<body>
		<a id="to-sec" href="#sec"><span id="inner">go</span></a>
		<a id="to-name" href="#legacy">n</a>
		<a id="to-escaped" href="#caf%C3%A9">c</a>
		<a id="to-top" href="#top">t</a>
		<a id="to-missing" href="#nowhere">m</a>
		<a id="external" href="https://x.example/">x</a>
		<h2 id="sec">S</h2>
		<a name="legacy"></a>
		<h3 id="café">C</h3>
	</body>`
	b, h, report := pipeline(t, policy.ModeBalance, raw)
	assert.True(t, report.Navigation())

	res := click(t, b, h, "#inner")
	assert.True(t, res.DefaultPrevented)
	require.NotNil(t, res.ScrollTarget)
	assert.Equal(t, "h2", res.ScrollTarget.Data)

	res = click(t, b, h, "#to-name")
	require.NotNil(t, res.ScrollTarget)
	assert.Equal(t, "a", res.ScrollTarget.Data)

	res = click(t, b, h, "#to-escaped")
	require.NotNil(t, res.ScrollTarget)
	assert.Equal(t, "h3", res.ScrollTarget.Data)

	res = click(t, b, h, "#to-top")
	require.NotNil(t, res.ScrollTarget)
	assert.Equal(t, "body", res.ScrollTarget.Data)

	res = click(t, b, h, "#to-missing")
	assert.True(t, res.DefaultPrevented)
	assert.Nil(t, res.ScrollTarget)

	res = click(t, b, h, "#external")
	assert.False(t, res.DefaultPrevented)
	assert.Nil(t, res.ScrollTarget)

	res = click(t, b, h, "#sec")
	assert.False(t, res.DefaultPrevented)
}

func TestFragmentNavigationIgnoresXPathSyntax(t *testing.T) {
	doc := sanitize.Parse(`<p id="a']|//*[@id='b">x</p><p id="b">y</p>`, false)
	n := ResolveFragment(doc, `a']|//*[@id='b`)
	require.NotNil(t, n)
	assert.Equal(t, "x", n.FirstChild.Data)
}

func TestNoNavigationOutsidePolicy(t *testing.T) {
	b, h, report := pipeline(t, policy.ModeUnrestricted, `<a id="l" href="#x">l</a><p id="x">x</p>`)
	assert.False(t, report.Navigation())
	res := click(t, b, h, "#l")
	assert.False(t, res.DefaultPrevented)
}

func TestApplyAfterLoadFails(t *testing.T) {
	b, _, _ := pipeline(t, policy.ModeBalance, `<p>x</p>`)
	_, err := Apply(b, policy.Lookup(policy.ModeBalance), nil)
	assert.ErrorIs(t, err, isolate.ErrAlreadyLoaded)
}

func TestNearestLinkStopsAtFirstAnchor(t *testing.T) {
	doc := sanitize.Parse(`<a href="#x"><a>inner</a></a>`, false)
	var anchors []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			anchors = append(anchors, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.NotEmpty(t, anchors)
	assert.Nil(t, nearestLink(isolate.NewEvent("click", anchors[len(anchors)-1]).Path))
}
