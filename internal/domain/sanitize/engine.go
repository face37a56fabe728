package sanitize

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// Stats counts what a sanitize pass changed.
type Stats struct {
	ElementsDropped   int `json:"elementsDropped"`
	ElementsUnwrapped int `json:"elementsUnwrapped"`
	ScriptsStripped   int `json:"scriptsStripped"`
	AttributesRemoved int `json:"attributesRemoved"`
	URLsNeutralized   int `json:"urlsNeutralized"`
	ControlsLocked    int `json:"controlsLocked"`
	FramesSandboxed   int `json:"framesSandboxed"`
}

// Changed reports whether the pass touched the tree at all.
func (s Stats) Changed() bool {
	return s != Stats{}
}

// Kinds returns the non-zero counters keyed by a short name, for metrics.
func (s Stats) Kinds() map[string]int {
	out := make(map[string]int)
	add := func(k string, v int) {
		if v > 0 {
			out[k] = v
		}
	}
	add("element_dropped", s.ElementsDropped)
	add("element_unwrapped", s.ElementsUnwrapped)
	add("script_stripped", s.ScriptsStripped)
	add("attribute_removed", s.AttributesRemoved)
	add("url_neutralized", s.URLsNeutralized)
	add("control_locked", s.ControlsLocked)
	add("frame_sandboxed", s.FramesSandboxed)
	return out
}

// Engine sanitizes documents against a policy table.
type Engine struct {
	table  policy.Table
	logger *zap.Logger
}

// NewEngine returns an engine over the built-in tier policies.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{table: policy.NewTable(), logger: logger}
}

// Policy returns the policy the engine applies for mode.
func (e *Engine) Policy(mode policy.Mode) *policy.Policy {
	if p, ok := e.table[mode]; ok {
		return p
	}
	return e.table[policy.DefaultMode]
}

// Sanitize parses raw and applies the policy for mode. It never fails:
// malformed markup is recovered by the parser and unknown modes fall back
// to the default tier.
func (e *Engine) Sanitize(raw string, mode policy.Mode) (*html.Node, Stats) {
	p := e.Policy(mode)
	doc := Parse(raw, p.ParseScripting)
	stats := Apply(doc, p)
	if stats.Changed() {
		e.logger.Debug("document sanitized",
			zap.String("mode", p.Mode.ID()),
			zap.Int("dropped", stats.ElementsDropped),
			zap.Int("unwrapped", stats.ElementsUnwrapped),
			zap.Int("attributes", stats.AttributesRemoved),
			zap.Int("urls", stats.URLsNeutralized),
		)
	}
	return doc, stats
}

var defaultEngine = NewEngine(nil)

// Sanitize runs the default engine.
func Sanitize(raw string, mode policy.Mode) (*html.Node, Stats) {
	return defaultEngine.Sanitize(raw, mode)
}

// Parse builds a document tree. Scripting controls whether noscript
// content is treated as raw text.
func Parse(raw string, scripting bool) *html.Node {
	doc, err := html.ParseWithOptions(strings.NewReader(raw), html.ParseOptionEnableScripting(scripting))
	if err != nil {
		return &html.Node{Type: html.DocumentNode}
	}
	return doc
}

// Render serializes a tree.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Apply sanitizes doc in place.
func Apply(doc *html.Node, p *policy.Policy) Stats {
	w := walker{p: p}
	w.run(doc)
	return w.stats
}
