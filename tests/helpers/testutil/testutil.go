// Package testutil provides testing utilities and helpers for reader tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/source"
)

// MockLoader is a mock implementation of source.Loader for testing.
type MockLoader struct {
	mock.Mock
}

// Load mocks the Load method.
func (m *MockLoader) Load(ctx context.Context, location string) (*source.Document, error) {
	args := m.Called(ctx, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*source.Document), args.Error(1)
}

// NewMockLoader creates a loader serving docs by location. Unknown
// locations fail with source.ErrNotFound.
func NewMockLoader(t *testing.T, docs map[string]string) *MockLoader {
	t.Helper()
	m := new(MockLoader)
	for loc, html := range docs {
		m.On("Load", mock.Anything, loc).Return(Document(loc, html), nil).Maybe()
	}
	m.On("Load", mock.Anything, mock.Anything).Return(nil, source.ErrNotFound).Maybe()
	return m
}

// Document builds a loaded document.
func Document(location, html string) *source.Document {
	return &source.Document{
		Name:     filepath.Base(location),
		Location: location,
		Data:     []byte(html),
	}
}

// WriteTree creates files under a temporary root, keyed by slash path,
// and returns the root.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

// AssertRendered fails unless view rendered without a notice and its page
// contains every want.
func AssertRendered(t *testing.T, view *render.View, want ...string) {
	t.Helper()
	if view == nil {
		t.Fatal("View is nil")
	}
	if view.Failed() {
		t.Fatalf("Expected a rendered view, got notice: %s", view.Notice.Message)
	}
	for _, w := range want {
		if !strings.Contains(view.Page, w) {
			t.Fatalf("Page does not contain %q", w)
		}
	}
}

// AssertStripped fails if the page contains any of banned.
func AssertStripped(t *testing.T, view *render.View, banned ...string) {
	t.Helper()
	for _, b := range banned {
		if strings.Contains(view.Page, b) {
			t.Fatalf("Page still contains %q", b)
		}
	}
}
