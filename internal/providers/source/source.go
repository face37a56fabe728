package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
)

var (
	// ErrUnsupportedScheme is returned for locations no loader handles.
	ErrUnsupportedScheme = errors.New("unsupported location scheme")
	// ErrOutsideRoot is returned for paths escaping the content root.
	ErrOutsideRoot = errors.New("path outside content root")
	// ErrTooLarge is returned for documents over the size limit.
	ErrTooLarge = errors.New("document too large")
	// ErrNotFound is returned when the location does not exist.
	ErrNotFound = errors.New("document not found")
)

// DefaultMaxSize bounds a loaded document.
const DefaultMaxSize = 64 << 20

// Document is a loaded byte sequence.
type Document struct {
	// Name is the display name, the last path element.
	Name string
	// Location is where the bytes came from: a root-relative path for
	// files, the URL for remote documents.
	Location string
	// Path is the file system path; empty for remote documents.
	Path    string
	Data    []byte
	ModTime time.Time
	Remote  bool
}

// Loader reads documents.
type Loader interface {
	Load(ctx context.Context, location string) (*Document, error)
}

// Router sends http(s) locations to the remote loader and everything
// else to the file loader.
type Router struct {
	files  Loader
	remote Loader
}

// NewRouter creates a router. Either loader may be nil to disable it.
func NewRouter(files, remote Loader) *Router {
	return &Router{files: files, remote: remote}
}

// Load implements Loader.
func (r *Router) Load(ctx context.Context, location string) (*Document, error) {
	switch scheme := schemeOf(location); scheme {
	case "http", "https":
		if r.remote == nil {
			return nil, fmt.Errorf("%w: %s (remote loading disabled)", ErrUnsupportedScheme, scheme)
		}
		return r.remote.Load(ctx, location)
	case "", "file":
		if r.files == nil {
			return nil, fmt.Errorf("%w: file", ErrUnsupportedScheme)
		}
		if scheme == "file" {
			u, err := url.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("invalid file location %q: %w", location, err)
			}
			location = u.Path
		}
		return r.files.Load(ctx, location)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}
}

// schemeOf returns the lowercased scheme, "" for plain paths including
// Windows drive paths.
func schemeOf(location string) string {
	i := strings.Index(location, ":")
	if i <= 1 {
		return ""
	}
	scheme := location[:i]
	for j, r := range scheme {
		isAlpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isAlpha && (j == 0 || !strings.ContainsRune("0123456789+-.", r)) {
			return ""
		}
	}
	return strings.ToLower(scheme)
}

// nameOf returns the last element of a slash or URL path.
func nameOf(p string) string {
	name := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
