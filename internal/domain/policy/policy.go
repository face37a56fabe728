package policy

import (
	"strings"
)

// Strategy names the isolation boundary a tier renders into.
type Strategy int

const (
	// StrategyShadow hosts the document in an open shadow root.
	StrategyShadow Strategy = iota
	// StrategyFrame hosts the document in a nested frame via srcdoc.
	StrategyFrame
)

func (s Strategy) String() string {
	if s == StrategyShadow {
		return "shadow"
	}
	return "frame"
}

// URLCheck selects how URL-bearing attributes are vetted.
type URLCheck int

const (
	// URLPassthrough leaves URL values alone.
	URLPassthrough URLCheck = iota
	// URLSchemeAllowList keeps a URL only when its scheme is listed.
	URLSchemeAllowList
	// URLNeutralizeScript rewrites or drops script-scheme URLs only.
	URLNeutralizeScript
)

// InertHref replaces script-scheme anchor targets under URLNeutralizeScript.
const InertHref = "javascript:void(0)"

// URLRule configures URL vetting.
type URLRule struct {
	Check   URLCheck
	Schemes map[string]struct{}
	// DataTags names elements on which data: URLs are accepted in
	// allow-list mode.
	DataTags map[string]struct{}
}

// ContentPolicy describes the CSP emitted for a tier. ImageSources is
// widened with RemoteImageSources unless remote images are blocked.
type ContentPolicy struct {
	Directives         []string
	ImageSources       string
	RemoteImageSources string
}

// Policy is the full rule set for a tier.
type Policy struct {
	Mode  Mode
	Tags  TagRule
	Attrs NameSet
	URLs  URLRule

	// ParseScripting controls how the parser treats noscript.
	ParseScripting bool
	// StripScripts removes script elements and script-loading links.
	StripScripts bool
	// LockForms forces form controls read-only and disabled.
	LockForms bool
	// SandboxFrames forces a maximally restrictive sandbox on frames.
	SandboxFrames bool

	Strategy     Strategy
	FrameSandbox []string
	Content      ContentPolicy

	RestoreInteraction bool
	RehomeVariables    bool
	RewriteAnchors     bool
	FixNavigation      bool

	Search bool
	Zoom   bool
}

// CSP renders the content security policy, or "" for tiers without one.
func (p *Policy) CSP(blockRemoteImages bool) string {
	if len(p.Content.Directives) == 0 {
		return ""
	}
	directives := append([]string(nil), p.Content.Directives...)
	img := p.Content.ImageSources
	if !blockRemoteImages && p.Content.RemoteImageSources != "" {
		img = strings.TrimSpace(img + " " + p.Content.RemoteImageSources)
	}
	if img != "" {
		directives = append(directives, "img-src "+img)
	}
	return strings.Join(directives, "; ")
}

// Sandbox renders the nested frame sandbox attribute. ok is false when the
// frame must carry no sandbox attribute at all.
func (p *Policy) Sandbox() (value string, ok bool) {
	if p.FrameSandbox == nil {
		return "", false
	}
	return strings.Join(p.FrameSandbox, " "), true
}

var scriptSchemes = set("javascript", "vbscript", "livescript")

var escapeSandbox = []string{"allow-same-origin", "allow-popups", "allow-popups-to-escape-sandbox"}

// Table maps every tier to its policy.
type Table map[Mode]*Policy

// NewTable builds the built-in tier policies.
func NewTable() Table {
	return Table{
		ModeText:           textPolicy(),
		ModeHighRestricted: highRestrictedPolicy(),
		ModeBalance:        balancePolicy(),
		ModeLowRestricted:  lowRestrictedPolicy(),
		ModeUnrestricted:   unrestrictedPolicy(),
	}
}

var defaultTable = NewTable()

// Lookup returns the built-in policy for m, falling back to DefaultMode.
// Callers must not mutate the result.
func Lookup(m Mode) *Policy {
	if p, ok := defaultTable[m]; ok {
		return p
	}
	return defaultTable[DefaultMode]
}

func textPolicy() *Policy {
	return &Policy{
		Mode: ModeText,
		Tags: TagRule{
			NameSet:     newNameSet(DenyList, textDeniedTags),
			DropContent: set(textDropContent...),
		},
		Attrs: newNameSet(DenyList, textDeniedAttrs).withPrefixes("on"),
		URLs:  URLRule{Check: URLPassthrough},

		Strategy: StrategyShadow,
		Content: ContentPolicy{
			Directives: []string{
				"default-src 'none'",
				"style-src 'unsafe-inline'",
				"font-src 'self' data:",
				"object-src 'none'",
				"frame-src 'none'",
				"form-action 'none'",
				"base-uri 'none'",
			},
			ImageSources: "'self' data:",
		},
		Search: true,
		Zoom:   true,
	}
}

func highRestrictedPolicy() *Policy {
	return &Policy{
		Mode: ModeHighRestricted,
		Tags: TagRule{
			NameSet:        newNameSet(AllowList, htmlTags, svgTags, mathMLTags),
			CustomElements: true,
			DropContent:    set(curatedDropContent...),
		},
		Attrs: newNameSet(AllowList, htmlAttrs, svgAttrs, mathMLAttrs),
		URLs: URLRule{
			Check:    URLSchemeAllowList,
			Schemes:  set("http", "https", "mailto", "tel", "callto", "sms", "cid", "xmpp", "app"),
			DataTags: set("img", "a", "area", "link"),
		},
		LockForms:     true,
		SandboxFrames: true,

		Strategy:     StrategyFrame,
		FrameSandbox: escapeSandbox,
		Content: ContentPolicy{
			Directives: []string{
				"default-src 'none'",
				"script-src 'none'",
				"object-src 'none'",
				"style-src 'unsafe-inline' data:",
				"font-src 'self' data:",
				"media-src 'self' data:",
				"frame-src 'none'",
				"form-action 'none'",
				"base-uri 'none'",
			},
			ImageSources:       "'self' data:",
			RemoteImageSources: "http: https:",
		},
		RestoreInteraction: true,
		RehomeVariables:    true,
		RewriteAnchors:     true,
		FixNavigation:      true,
		Search:             true,
		Zoom:               true,
	}
}

func balancePolicy() *Policy {
	return &Policy{
		Mode: ModeBalance,
		Tags: TagRule{
			NameSet:        newNameSet(DenyList, []string{"script", "base"}),
			CustomElements: true,
			DropContent:    set("script"),
		},
		Attrs: newNameSet(AllowList, htmlAttrs, svgAttrs, mathMLAttrs, broadAttrs),
		URLs: URLRule{
			Check:   URLNeutralizeScript,
			Schemes: scriptSchemes,
		},
		LockForms:     true,
		SandboxFrames: true,

		Strategy:     StrategyFrame,
		FrameSandbox: escapeSandbox,
		Content: ContentPolicy{
			Directives: []string{
				"default-src * data: blob: 'unsafe-inline'",
				"script-src 'none'",
				"object-src 'none'",
				"frame-src * data: blob:",
				"media-src * data: blob:",
			},
			ImageSources: "* data: blob:",
		},
		RestoreInteraction: true,
		RehomeVariables:    true,
		RewriteAnchors:     true,
		FixNavigation:      true,
		Search:             true,
		Zoom:               true,
	}
}

func lowRestrictedPolicy() *Policy {
	return &Policy{
		Mode:         ModeLowRestricted,
		Tags:         TagRule{NameSet: NameSet{Kind: AllowAll}},
		Attrs:        NameSet{Kind: AllowAll},
		URLs:         URLRule{Check: URLNeutralizeScript, Schemes: scriptSchemes},
		StripScripts: true,

		Strategy:     StrategyFrame,
		FrameSandbox: escapeSandbox,

		RestoreInteraction: true,
		RewriteAnchors:     true,
		FixNavigation:      true,
		Zoom:               true,
	}
}

func unrestrictedPolicy() *Policy {
	return &Policy{
		Mode:           ModeUnrestricted,
		Tags:           TagRule{NameSet: NameSet{Kind: AllowAll}},
		Attrs:          NameSet{Kind: AllowAll},
		URLs:           URLRule{Check: URLPassthrough},
		ParseScripting: true,

		Strategy: StrategyFrame,
	}
}
