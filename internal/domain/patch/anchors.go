package patch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
)

// AnchorStats counts anchor rewrites.
type AnchorStats struct {
	BaseInserted bool
	Retargeted   int
	Secured      int
}

// sameContext lists targets that would navigate the boundary itself.
var sameContext = map[string]bool{
	"":        true,
	"_self":   true,
	"_parent": true,
	"_top":    true,
}

// RewriteAnchors sends every navigating link out of the boundary. A
// base element targeting a new context is ensured, same-context targets
// are replaced with _blank and external links gain noopener noreferrer.
// Fragment-only links stay in the document so in-page navigation still
// works.
func RewriteAnchors(h *isolate.Handle) AnchorStats {
	stats := AnchorStats{BaseInserted: h.EnsureBaseTarget("_blank")}

	h.Find("a[href], area[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target, hasTarget := s.Attr("target")
		target = strings.ToLower(strings.TrimSpace(target))

		if strings.HasPrefix(strings.TrimSpace(href), "#") {
			if target != "_self" {
				s.SetAttr("target", "_self")
				stats.Retargeted++
			}
			return
		}
		if hasTarget && sameContext[target] {
			s.SetAttr("target", "_blank")
			stats.Retargeted++
		}
		if ensureRel(s, "noopener", "noreferrer") {
			stats.Secured++
		}
	})
	return stats
}

// ensureRel adds the missing tokens to the rel attribute.
func ensureRel(s *goquery.Selection, tokens ...string) bool {
	rel, _ := s.Attr("rel")
	have := strings.Fields(strings.ToLower(rel))
	added := false
	for _, tok := range tokens {
		found := false
		for _, h := range have {
			if h == tok {
				found = true
				break
			}
		}
		if !found {
			have = append(have, tok)
			added = true
		}
	}
	if added {
		s.SetAttr("rel", strings.Join(have, " "))
	}
	return added
}
