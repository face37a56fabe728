package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileLoader reads documents under a content root. Locations are
// resolved relative to the root and may not leave it.
type FileLoader struct {
	root    string
	maxSize int64
}

// NewFileLoader creates a loader for root. maxSize <= 0 uses
// DefaultMaxSize.
func NewFileLoader(root string, maxSize int64) (*FileLoader, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("invalid content root %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %q is not a directory", root)
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &FileLoader{root: abs, maxSize: maxSize}, nil
}

// Root returns the absolute content root.
func (l *FileLoader) Root() string {
	return l.root
}

// Resolve maps a location to an absolute path inside the root. Absolute
// locations are accepted when they already lie inside the root.
func (l *FileLoader) Resolve(location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	p := filepath.FromSlash(location)
	if !filepath.IsAbs(p) {
		p = filepath.Join(l.root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(l.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, location)
	}
	return p, nil
}

// Relative returns p relative to the root with forward slashes.
func (l *FileLoader) Relative(p string) (string, error) {
	rel, err := filepath.Rel(l.root, p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, location string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.Resolve(location)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", location, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", location, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", location)
	}
	if info.Size() > l.maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, location, info.Size())
	}

	data, err := io.ReadAll(io.LimitReader(f, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, location)
	}

	rel, err := l.Relative(p)
	if err != nil {
		rel = location
	}
	return &Document{
		Name:     filepath.Base(p),
		Location: rel,
		Path:     p,
		Data:     data,
		ModTime:  info.ModTime(),
	}, nil
}
