package settings

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// ErrUnknownFormat is returned for settings files with an unsupported
// extension.
var ErrUnknownFormat = errors.New("unknown settings format")

// Format is a settings file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "json"
	}
}

// FormatFor picks the encoding from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
}

// Marshal encodes s.
func (f Format) Marshal(s Settings) ([]byte, error) {
	switch f {
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatTOML:
		return toml.Marshal(s)
	default:
		return sonic.ConfigStd.MarshalIndent(s, "", "  ")
	}
}

// Unmarshal decodes data over s, so keys missing from data keep the
// values s already has.
func (f Format) Unmarshal(data []byte, s *Settings) error {
	switch f {
	case FormatYAML:
		return yaml.Unmarshal(data, s)
	case FormatTOML:
		return toml.Unmarshal(data, s)
	default:
		return sonic.Unmarshal(data, s)
	}
}
