package settings

import (
	"math"
	"strings"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// BaseExtensions are always recognized as documents.
var BaseExtensions = []string{"html", "htm"}

// Settings are the persisted user preferences.
type Settings struct {
	OperatingMode         string              `json:"operatingMode" yaml:"operatingMode" toml:"operatingMode"`
	ZoomValue             float64             `json:"zoomValue" yaml:"zoomValue" toml:"zoomValue"`
	ZoomByWheelAndGesture bool                `json:"zoomByWheelAndGesture" yaml:"zoomByWheelAndGesture" toml:"zoomByWheelAndGesture"`
	ExtraFileExtensions   string              `json:"extraFileExtensions" yaml:"extraFileExtensions" toml:"extraFileExtensions"`
	BlockRemoteImages     bool                `json:"blockRemoteImages" yaml:"blockRemoteImages" toml:"blockRemoteImages"`
	HighlightAll          bool                `json:"highlightAll" yaml:"highlightAll" toml:"highlightAll"`
	Hotkeys               map[string][]string `json:"hotkeys,omitempty" yaml:"hotkeys,omitempty" toml:"hotkeys,omitempty"`
}

// Defaults returns the settings used when nothing is persisted.
func Defaults() Settings {
	return Settings{
		OperatingMode:         policy.DefaultMode.ID(),
		ZoomValue:             overlay.DefaultZoom,
		ZoomByWheelAndGesture: true,
		BlockRemoteImages:     true,
		HighlightAll:          true,
	}
}

// Mode returns the operating mode, the default for unknown ids.
func (s Settings) Mode() policy.Mode {
	return policy.ParseModeOrDefault(s.OperatingMode)
}

// Extensions returns the recognized file extensions without dots: the
// base set followed by the extra ones, lowercased and deduplicated.
func (s Settings) Extensions() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ext string) {
		ext = strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
		if ext == "" || seen[ext] {
			return
		}
		seen[ext] = true
		out = append(out, ext)
	}
	for _, ext := range BaseExtensions {
		add(ext)
	}
	for _, ext := range strings.Split(s.ExtraFileExtensions, ",") {
		add(ext)
	}
	return out
}

// Normalize replaces invalid values: unknown modes become the default
// mode and the zoom is kept within the overlay's limits.
func (s Settings) Normalize() Settings {
	s.OperatingMode = s.Mode().ID()
	switch {
	case math.IsNaN(s.ZoomValue) || math.IsInf(s.ZoomValue, 0) || s.ZoomValue <= 0:
		s.ZoomValue = overlay.DefaultZoom
	case s.ZoomValue < overlay.MinZoom:
		s.ZoomValue = overlay.MinZoom
	}
	s.Hotkeys = cloneHotkeys(s.Hotkeys)
	return s
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	s.Hotkeys = cloneHotkeys(s.Hotkeys)
	return s
}

// Keymap resolves the hotkey overrides on top of the default bindings.
func (s Settings) Keymap() (overlay.Keymap, error) {
	return overlay.ParseKeymap(overlay.DefaultKeymap(), s.Hotkeys)
}

func cloneHotkeys(in map[string][]string) map[string][]string {
	if in == nil {
		return nil
	}
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}
