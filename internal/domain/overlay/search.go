package overlay

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Fragment is the part of one text node covered by a match. Start and
// End are byte offsets into the node's data.
type Fragment struct {
	Node    *html.Node
	Ordinal int
	Start   int
	End     int
}

// Text returns the covered text.
func (f Fragment) Text() string {
	return f.Node.Data[f.Start:f.End]
}

// Match is one logical occurrence of the query. Markup inside the
// occurrence splits it into several fragments.
type Match struct {
	Fragments []Fragment
}

// Text returns the matched text as it appears in the document.
func (m Match) Text() string {
	var sb strings.Builder
	for _, f := range m.Fragments {
		sb.WriteString(f.Text())
	}
	return sb.String()
}

// Highlight addresses a fragment the way the page script does: by text
// node ordinal and UTF-16 offsets.
type Highlight struct {
	Ordinal int  `json:"ordinal"`
	Start   int  `json:"start"`
	End     int  `json:"end"`
	Current bool `json:"current,omitempty"`
}

// Search is the find-in-document state of one view. The current index is
// -1 until the user steps to a match.
type Search struct {
	mu sync.Mutex

	nodes        []textNode
	segments     [][]textNode
	highlightAll bool

	query   string
	matches []Match
	current int
	visible bool
	all     bool
	noMatch bool
}

// NewSearch indexes the text under root. With highlightAll, find-all
// decorates every match at once; otherwise nothing is decorated until the
// user steps to a match.
func NewSearch(root *html.Node, highlightAll bool) *Search {
	s := &Search{highlightAll: highlightAll, current: -1}
	if root != nil {
		s.nodes = collectText(root)
		s.segments = segments(s.nodes, root)
	}
	return s
}

// FindAll replaces the match list with the occurrences of text and
// returns how many there are. An empty text clears everything.
func (s *Search) FindAll(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = text
	s.current = -1
	s.matches = nil
	s.noMatch = false
	if text == "" {
		s.visible = false
		s.all = false
		return 0
	}
	needle := fold(text)
	for _, seg := range s.segments {
		s.matches = append(s.matches, findIn(seg, needle)...)
	}
	s.noMatch = len(s.matches) == 0
	s.visible = true
	s.all = s.highlightAll
	return len(s.matches)
}

// Next advances to the following match, wrapping after the last one. It
// returns the new index, -1 when there are no matches.
func (s *Search) Next() int {
	return s.step(1)
}

// Previous retreats to the preceding match, wrapping before the first.
// From -1 it lands on the last match.
func (s *Search) Previous() int {
	return s.step(-1)
}

func (s *Search) step(dir int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.matches)
	if n == 0 {
		return -1
	}
	switch {
	case s.current < 0 && dir < 0:
		s.current = n - 1
	case s.current < 0:
		s.current = 0
	default:
		s.current = (s.current + dir + n) % n
	}
	s.visible = true
	return s.current
}

// SelectAll decorates every match and returns the count.
func (s *Search) SelectAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) == 0 {
		return 0
	}
	s.visible = true
	s.all = true
	return len(s.matches)
}

// Exit removes the decorations. The query, matches and current index are
// kept for Resume.
func (s *Search) Exit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = false
}

// Resume shows the decorations of the last search again.
func (s *Search) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.matches) > 0 {
		s.visible = true
	}
}

// Query returns the last searched text.
func (s *Search) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Count returns the number of matches.
func (s *Search) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// Current returns the current match index.
func (s *Search) Current() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Matches returns a copy of the match list.
func (s *Search) Matches() []Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Match(nil), s.matches...)
}

// NoMatch reports whether the last non-empty search found nothing.
func (s *Search) NoMatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noMatch
}

// Visible reports whether decorations are shown.
func (s *Search) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Highlights returns the decorations to draw: every match once all are
// selected, otherwise only the current one.
func (s *Search) Highlights() []Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.visible {
		return nil
	}
	var out []Highlight
	for i, m := range s.matches {
		if !s.all && i != s.current {
			continue
		}
		for _, f := range m.Fragments {
			out = append(out, Highlight{
				Ordinal: f.Ordinal,
				Start:   utf16Len(f.Node.Data[:f.Start]),
				End:     utf16Len(f.Node.Data[:f.End]),
				Current: i == s.current,
			})
		}
	}
	return out
}

func fold(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, unicode.ToLower(r))
	}
	return out
}

// position maps one folded rune back into the document.
type position struct {
	node  int
	start int
	end   int
}

// findIn returns the non-overlapping occurrences of needle in the
// concatenated text of seg.
func findIn(seg []textNode, needle []rune) []Match {
	var hay []rune
	var pos []position
	for i, tn := range seg {
		data := tn.node.Data
		for off := 0; off < len(data); {
			r, size := utf8.DecodeRuneInString(data[off:])
			hay = append(hay, unicode.ToLower(r))
			pos = append(pos, position{node: i, start: off, end: off + size})
			off += size
		}
	}

	var out []Match
	for i := 0; i+len(needle) <= len(hay); {
		if !hasPrefix(hay[i:], needle) {
			i++
			continue
		}
		out = append(out, matchAt(seg, pos[i:i+len(needle)]))
		i += len(needle)
	}
	return out
}

func hasPrefix(hay, needle []rune) bool {
	for j, r := range needle {
		if hay[j] != r {
			return false
		}
	}
	return true
}

func matchAt(seg []textNode, span []position) Match {
	var m Match
	for _, p := range span {
		last := len(m.Fragments) - 1
		if last >= 0 && m.Fragments[last].Node == seg[p.node].node {
			m.Fragments[last].End = p.end
			continue
		}
		m.Fragments = append(m.Fragments, Fragment{
			Node:    seg[p.node].node,
			Ordinal: seg[p.node].ordinal,
			Start:   p.start,
			End:     p.end,
		})
	}
	return m
}
