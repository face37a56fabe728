package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
)

// ErrBadPattern is returned for malformed glob filters.
var ErrBadPattern = errors.New("bad glob pattern")

// Entry is a readable document found under the content root.
type Entry struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Scanner lists documents whose extension the reader accepts.
type Scanner struct {
	pattern string
	hidden  bool
}

// NewScanner builds a scanner for the given extensions (without dots).
func NewScanner(extensions []string) *Scanner {
	exts := make([]string, 0, len(extensions))
	seen := make(map[string]bool)
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		exts = append(exts, ext)
	}
	return &Scanner{pattern: "**/*.{" + strings.Join(exts, ",") + "}"}
}

// IncludeHidden makes the scanner descend into dot directories.
func (s *Scanner) IncludeHidden(v bool) *Scanner {
	s.hidden = v
	return s
}

// Pattern returns the glob used to accept files.
func (s *Scanner) Pattern() string {
	return s.pattern
}

// Matches reports whether a slash-separated path has an accepted
// extension. Matching ignores case.
func (s *Scanner) Matches(p string) bool {
	ok, _ := doublestar.Match(s.pattern, strings.ToLower(filepath.ToSlash(p)))
	return ok
}

// Scan walks root and returns every accepted file, sorted by path.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Entry, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var (
		mu      sync.Mutex
		entries []Entry
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if p != root && !s.hidden && strings.HasPrefix(d.Name(), ".") {
				return fastwalk.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || !s.Matches(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}

		mu.Lock()
		entries = append(entries, Entry{
			Path:    filepath.ToSlash(rel),
			Name:    d.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Glob returns accepted files under root that also match pattern, a
// doublestar glob relative to root such as "guides/**".
func (s *Scanner) Glob(root, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", ErrBadPattern, pattern)
	}
	matches, err := doublestar.Glob(os.DirFS(root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}

	out := matches[:0]
	for _, m := range matches {
		if s.Matches(m) && (s.hidden || !hiddenPath(m)) {
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

// hiddenPath reports whether p lies inside a dot directory.
func hiddenPath(p string) bool {
	parts := strings.Split(p, "/")
	for _, part := range parts[:len(parts)-1] {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
