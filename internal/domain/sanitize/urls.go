package sanitize

import (
	"net/url"
	"strings"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// cleanURL removes what browsers ignore when resolving a URL: embedded tab
// and newline characters, plus leading and trailing C0 controls and spaces.
func cleanURL(raw string) string {
	raw = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, raw)
	return strings.TrimFunc(raw, func(r rune) bool {
		return r <= 0x20
	})
}

// schemeOf returns the lowercase scheme of raw, "" for relative URLs, and
// ok=false when the value does not parse.
func schemeOf(raw string) (scheme string, ok bool) {
	u, err := url.Parse(cleanURL(raw))
	if err != nil {
		return "", false
	}
	return u.Scheme, true
}

// srcsetURLs splits a srcset value into candidate URLs.
func srcsetURLs(v string) []string {
	var urls []string
	for _, candidate := range strings.Split(v, ",") {
		fields := strings.Fields(candidate)
		if len(fields) == 0 {
			continue
		}
		urls = append(urls, fields[0])
	}
	return urls
}

type urlVerdict int

const (
	urlKeep urlVerdict = iota
	urlRemove
	urlInert
)

// vetURL decides the fate of a single URL value on element tag.
func vetURL(rule policy.URLRule, tag, attr, value string) urlVerdict {
	scheme, ok := schemeOf(value)
	switch rule.Check {
	case policy.URLSchemeAllowList:
		if !ok {
			return urlRemove
		}
		if scheme == "" {
			return urlKeep
		}
		if scheme == "data" {
			if _, allowed := rule.DataTags[tag]; allowed {
				return urlKeep
			}
			return urlRemove
		}
		if _, allowed := rule.Schemes[scheme]; allowed {
			return urlKeep
		}
		return urlRemove
	case policy.URLNeutralizeScript:
		if !ok {
			return urlRemove
		}
		if _, script := rule.Schemes[scheme]; !script {
			return urlKeep
		}
		if attr == "href" && (tag == "a" || tag == "area") {
			if cleanURL(value) == policy.InertHref {
				return urlKeep
			}
			return urlInert
		}
		return urlRemove
	default:
		return urlKeep
	}
}

// vetAttrURL applies vetURL to an attribute value, handling srcset lists.
// It returns the replacement value and whether the attribute survives.
func vetAttrURL(rule policy.URLRule, tag, attr, value string) (string, bool, bool) {
	if rule.Check == policy.URLPassthrough {
		return value, true, false
	}
	if attr == "srcset" || attr == "imagesrcset" {
		for _, u := range srcsetURLs(value) {
			if vetURL(rule, tag, attr, u) != urlKeep {
				return "", false, true
			}
		}
		return value, true, false
	}
	switch vetURL(rule, tag, attr, value) {
	case urlKeep:
		return value, true, false
	case urlInert:
		return policy.InertHref, true, true
	default:
		return "", false, true
	}
}
