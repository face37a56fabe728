package policy

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is a security tier. Lower values are stricter.
type Mode int

const (
	ModeText Mode = iota
	ModeHighRestricted
	ModeBalance
	ModeLowRestricted
	ModeUnrestricted
)

// DefaultMode is used when no mode is configured or a stored id is unknown.
const DefaultMode = ModeBalance

// ErrUnknownMode is returned by ParseMode for ids that name no tier.
var ErrUnknownMode = errors.New("unknown operating mode")

// Stored ids. "UnestrictedMode" is misspelled on purpose: settings files
// written by earlier releases carry it.
var modeIDs = [...]string{
	ModeText:           "TextMode",
	ModeHighRestricted: "HighRestrictedMode",
	ModeBalance:        "BalanceMode",
	ModeLowRestricted:  "LowRestrictedMode",
	ModeUnrestricted:   "UnestrictedMode",
}

var modeLabels = [...]string{
	ModeText:           "Text Mode",
	ModeHighRestricted: "High Restricted Mode",
	ModeBalance:        "Balance Mode",
	ModeLowRestricted:  "Low Restricted Mode",
	ModeUnrestricted:   "Unrestricted Mode",
}

// Modes returns every tier from strictest to most permissive.
func Modes() []Mode {
	return []Mode{ModeText, ModeHighRestricted, ModeBalance, ModeLowRestricted, ModeUnrestricted}
}

// Valid reports whether m names a tier.
func (m Mode) Valid() bool {
	return m >= ModeText && m <= ModeUnrestricted
}

// ID returns the stable identifier persisted in settings.
func (m Mode) ID() string {
	if !m.Valid() {
		return ""
	}
	return modeIDs[m]
}

// Label returns the human readable name.
func (m Mode) Label() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeLabels[m]
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeIDs[m]
}

// StricterThan reports whether m sits below other in the tier ordering.
func (m Mode) StricterThan(other Mode) bool {
	return m < other
}

// ParseMode resolves a stored id. Matching ignores case, and the correctly
// spelled "UnrestrictedMode" as well as short names such as "text" or
// "balance" are accepted too.
func ParseMode(id string) (Mode, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	for i, known := range modeIDs {
		if strings.EqualFold(known, key) {
			return Mode(i), nil
		}
	}
	switch strings.TrimSuffix(strings.NewReplacer("-", "", "_", "", " ", "").Replace(key), "mode") {
	case "text":
		return ModeText, nil
	case "highrestricted", "high":
		return ModeHighRestricted, nil
	case "balance", "balanced":
		return ModeBalance, nil
	case "lowrestricted", "low":
		return ModeLowRestricted, nil
	case "unrestricted", "unestricted":
		return ModeUnrestricted, nil
	}
	return DefaultMode, fmt.Errorf("%w: %q", ErrUnknownMode, id)
}

// ParseModeOrDefault is ParseMode without the error.
func ParseModeOrDefault(id string) Mode {
	m, err := ParseMode(id)
	if err != nil {
		return DefaultMode
	}
	return m
}
