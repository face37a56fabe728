package settings

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, "BalanceMode", d.OperatingMode)
	assert.Equal(t, policy.ModeBalance, d.Mode())
	assert.Equal(t, 1.0, d.ZoomValue)
	assert.True(t, d.ZoomByWheelAndGesture)
	assert.Equal(t, "", d.ExtraFileExtensions)
	assert.True(t, d.BlockRemoteImages)
	assert.Equal(t, []string{"html", "htm"}, d.Extensions())
}

func TestExtensions(t *testing.T) {
	s := Defaults()
	s.ExtraFileExtensions = " .XHTML, mhtml,,htm , shtml"
	assert.Equal(t, []string{"html", "htm", "xhtml", "mhtml", "shtml"}, s.Extensions())
}

func TestNormalize(t *testing.T) {
	s := Settings{OperatingMode: "nonsense", ZoomValue: 0.01}.Normalize()
	assert.Equal(t, "BalanceMode", s.OperatingMode)
	assert.Equal(t, overlay.MinZoom, s.ZoomValue)

	s = Settings{OperatingMode: "unrestricted", ZoomValue: math.NaN()}.Normalize()
	assert.Equal(t, "UnestrictedMode", s.OperatingMode)
	assert.Equal(t, 1.0, s.ZoomValue)
}

func TestKeymapOverrides(t *testing.T) {
	s := Defaults()
	s.Hotkeys = map[string][]string{"zoom-in": {"Alt+Z"}}
	km, err := s.Keymap()
	require.NoError(t, err)
	a, ok := km.Resolve(overlay.KeyEvent{Key: "z", Alt: true})
	require.True(t, ok)
	assert.Equal(t, overlay.ActionZoomIn, a)

	s.Hotkeys = map[string][]string{"zoom-in": {"Hyper+Z"}}
	_, err = s.Keymap()
	assert.Error(t, err)
}

func TestFormatFor(t *testing.T) {
	for path, want := range map[string]Format{
		"a.json":     FormatJSON,
		"a.YAML":     FormatYAML,
		"dir/a.yml":  FormatYAML,
		"a.toml":     FormatTOML,
	} {
		got, err := FormatFor(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}
	_, err := FormatFor("settings.ini")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestStoreMissingFileUsesDefaults(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "settings.json"), nil)
	require.NoError(t, err)
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestStorePersistsEveryFormat(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yaml", "settings.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			store, err := NewStore(path, nil)
			require.NoError(t, err)

			_, err = store.Update(func(s *Settings) {
				s.OperatingMode = policy.ModeHighRestricted.ID()
				s.ZoomValue = 1.3
				s.ExtraFileExtensions = "xhtml"
				s.Hotkeys = map[string][]string{"find": {"Mod+K"}}
			})
			require.NoError(t, err)
			require.FileExists(t, path)

			reopened, err := NewStore(path, nil)
			require.NoError(t, err)
			got, err := reopened.Load()
			require.NoError(t, err)
			assert.Equal(t, policy.ModeHighRestricted, got.Mode())
			assert.Equal(t, 1.3, got.ZoomValue)
			assert.Equal(t, []string{"html", "htm", "xhtml"}, got.Extensions())
			assert.Equal(t, []string{"Mod+K"}, got.Hotkeys["find"])
			assert.True(t, got.ZoomByWheelAndGesture)
		})
	}
}

func TestStorePartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"operatingMode": "TextMode"}`), 0o644))

	store, err := NewStore(path, nil)
	require.NoError(t, err)
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, policy.ModeText, got.Mode())
	assert.Equal(t, 1.0, got.ZoomValue)
	assert.True(t, got.BlockRemoteImages)
}

func TestStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operatingMode: [unterminated"), 0o644))

	store, err := NewStore(path, nil)
	require.NoError(t, err)
	_, err = store.Load()
	assert.Error(t, err)
	assert.Equal(t, Defaults(), store.Get())
}

func TestStoreUpdateNormalizesAndIsolatesCopies(t *testing.T) {
	store := NewMemoryStore(Defaults())
	got, err := store.Update(func(s *Settings) {
		s.OperatingMode = "bogus"
		s.Hotkeys = map[string][]string{"exit": {"Escape"}}
	})
	require.NoError(t, err)
	assert.Equal(t, "BalanceMode", got.OperatingMode)

	got.Hotkeys["exit"][0] = "Q"
	assert.Equal(t, "Escape", store.Get().Hotkeys["exit"][0])

	require.NoError(t, store.SetZoom(0.05))
	assert.Equal(t, overlay.MinZoom, store.Get().ZoomValue)
	assert.Equal(t, "", store.Path())
}

func TestNewStoreRejectsUnknownFormat(t *testing.T) {
	_, err := NewStore("settings.cfg", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
