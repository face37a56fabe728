package policy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"TextMode", ModeText},
		{"HighRestrictedMode", ModeHighRestricted},
		{"BalanceMode", ModeBalance},
		{"LowRestrictedMode", ModeLowRestricted},
		{"UnestrictedMode", ModeUnrestricted},
		{"UnrestrictedMode", ModeUnrestricted},
		{"balancemode", ModeBalance},
		{"high-restricted", ModeHighRestricted},
		{" text ", ModeText},
		{"low", ModeLowRestricted},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseModeUnknown(t *testing.T) {
	m, err := ParseMode("ParanoidMode")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, DefaultMode, m)
	assert.Equal(t, ModeBalance, ParseModeOrDefault(""))
}

func TestModeIDsRoundTrip(t *testing.T) {
	for _, m := range Modes() {
		got, err := ParseMode(m.ID())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	assert.Equal(t, "UnestrictedMode", ModeUnrestricted.ID())
	assert.Equal(t, "Unrestricted Mode", ModeUnrestricted.Label())
	assert.False(t, Mode(42).Valid())
	assert.Equal(t, "", Mode(42).ID())
}

func TestModeOrdering(t *testing.T) {
	modes := Modes()
	for i := 1; i < len(modes); i++ {
		assert.True(t, modes[i-1].StricterThan(modes[i]))
	}
}

func TestLookupFallsBack(t *testing.T) {
	assert.Equal(t, ModeBalance, Lookup(Mode(-1)).Mode)
	for _, m := range Modes() {
		assert.Equal(t, m, Lookup(m).Mode)
	}
}

func TestNameSet(t *testing.T) {
	s := newNameSet(AllowList, []string{"href", "data-*"}).withPrefixes("on")

	assert.True(t, s.Admits("HREF"))
	assert.True(t, s.Admits("data-foo"))
	assert.True(t, s.Admits("data-foo-bar"))
	assert.True(t, s.Admits("onclick"))
	assert.False(t, s.Admits("data"))
	assert.False(t, s.Admits("src"))

	deny := newNameSet(DenyList, []string{"style"})
	assert.False(t, deny.Admits("style"))
	assert.True(t, deny.Admits("class"))

	assert.True(t, NameSet{}.Admits("anything"))
}

func TestCustomElementNames(t *testing.T) {
	assert.True(t, IsCustomElementName("my-widget"))
	assert.True(t, IsCustomElementName("x-1"))
	assert.False(t, IsCustomElementName("div"))
	assert.False(t, IsCustomElementName("-bad"))
	assert.False(t, IsCustomElementName("font-face"))

	rule := Lookup(ModeBalance).Tags
	assert.True(t, rule.Admits("my-widget"))
	assert.False(t, rule.Admits("script"))
	assert.True(t, rule.Drops("script"))
	assert.False(t, rule.Drops("base"))
}

func TestTextPolicyDeniesActiveContent(t *testing.T) {
	p := Lookup(ModeText)
	for _, tag := range []string{"a", "img", "svg", "math", "form", "input", "video", "iframe", "script", "style", "link"} {
		assert.False(t, p.Tags.Admits(tag), tag)
	}
	for _, attr := range []string{"href", "src", "style", "onclick", "onload", "xlink:href"} {
		assert.False(t, p.Attrs.Admits(attr), attr)
	}
	assert.True(t, p.Tags.Admits("p"))
	assert.True(t, p.Attrs.Admits("class"))
	assert.Equal(t, StrategyShadow, p.Strategy)
}

func TestCSP(t *testing.T) {
	high := Lookup(ModeHighRestricted)
	blocked := high.CSP(true)
	assert.Contains(t, blocked, "script-src 'none'")
	assert.Contains(t, blocked, "img-src 'self' data:")
	assert.NotContains(t, blocked, "https:")

	open := high.CSP(false)
	assert.Contains(t, open, "img-src 'self' data: http: https:")

	balance := Lookup(ModeBalance).CSP(true)
	assert.True(t, strings.HasPrefix(balance, "default-src * data: blob: 'unsafe-inline'"))
	assert.Equal(t, balance, Lookup(ModeBalance).CSP(false))

	assert.Empty(t, Lookup(ModeLowRestricted).CSP(true))
	assert.Empty(t, Lookup(ModeUnrestricted).CSP(true))
}

func TestSandbox(t *testing.T) {
	for _, m := range []Mode{ModeHighRestricted, ModeBalance, ModeLowRestricted} {
		v, ok := Lookup(m).Sandbox()
		assert.True(t, ok)
		assert.NotContains(t, v, "allow-scripts")
		assert.Contains(t, v, "allow-popups-to-escape-sandbox")
	}
	_, ok := Lookup(ModeUnrestricted).Sandbox()
	assert.False(t, ok)
}

func TestAffordances(t *testing.T) {
	for _, m := range []Mode{ModeText, ModeHighRestricted, ModeBalance} {
		assert.True(t, Lookup(m).Search, m.String())
		assert.True(t, Lookup(m).Zoom, m.String())
	}
	assert.False(t, Lookup(ModeLowRestricted).Search)
	assert.True(t, Lookup(ModeLowRestricted).Zoom)
	assert.False(t, Lookup(ModeUnrestricted).Search)
	assert.False(t, Lookup(ModeUnrestricted).Zoom)
}

func TestDescribeAll(t *testing.T) {
	rows := DescribeAll()
	require.Len(t, rows, 5)

	assert.Equal(t, "TextMode", rows[0].ID)
	assert.Equal(t, SupportNo, rows[0].Images)
	assert.Equal(t, "shadow", rows[0].Strategy)

	assert.Equal(t, SupportPartial, rows[1].Styles)
	assert.Equal(t, SupportPartial, rows[3].Scripting)
	assert.Equal(t, SupportNo, rows[4].Isolated)
	assert.Equal(t, "frame", rows[4].Strategy)
}
