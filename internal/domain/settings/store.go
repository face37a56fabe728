package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store holds the current settings and persists them to one file. A
// store without a path keeps settings in memory only.
type Store struct {
	mu      sync.RWMutex
	path    string
	format  Format
	current Settings
	logger  *zap.Logger
}

// NewStore creates a store for path. The format follows the extension.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, current: Defaults(), logger: logger}
	if path == "" {
		return s, nil
	}
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	s.format = format
	return s, nil
}

// NewMemoryStore creates a store that never touches disk.
func NewMemoryStore(initial Settings) *Store {
	return &Store{current: initial.Normalize(), logger: zap.NewNop()}
}

// Path returns the backing file, "" for memory stores.
func (s *Store) Path() string {
	return s.path
}

// Load reads the file. A missing file yields the defaults; keys missing
// from the file keep their default values.
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return s.current.Clone(), nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.current = Defaults()
		s.logger.Debug("Settings file not found, using defaults", zap.String("path", s.path))
		return s.current.Clone(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	loaded := Defaults()
	if len(bytes.TrimSpace(data)) > 0 {
		if err := s.format.Unmarshal(data, &loaded); err != nil {
			return Settings{}, fmt.Errorf("failed to parse %s settings %s: %w", s.format, s.path, err)
		}
	}
	s.current = loaded.Normalize()
	s.logger.Debug("Settings loaded",
		zap.String("path", s.path),
		zap.String("mode", s.current.OperatingMode),
		zap.Float64("zoom", s.current.ZoomValue),
	)
	return s.current.Clone(), nil
}

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update applies fn to a copy of the settings, normalizes the result and
// persists it. The in-memory value only changes when saving succeeds.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current.Clone()
	fn(&next)
	next = next.Normalize()
	if err := s.write(next); err != nil {
		return s.current.Clone(), err
	}
	s.current = next
	return next.Clone(), nil
}

// SetZoom persists a new zoom value.
func (s *Store) SetZoom(scale float64) error {
	_, err := s.Update(func(st *Settings) { st.ZoomValue = scale })
	return err
}

// Save writes the current settings.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(s.current)
}

func (s *Store) write(st Settings) error {
	if s.path == "" {
		return nil
	}
	data, err := s.format.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
