package overlay

import (
	"errors"
	"fmt"
	"strings"
)

// Action is an overlay command.
type Action string

// Overlay actions. The values double as the toolbar's data-action names.
const (
	ActionFind         Action = "find"
	ActionFindNext     Action = "find-next"
	ActionFindPrevious Action = "find-previous"
	ActionSelectAll    Action = "select-all"
	ActionExit         Action = "exit"
	ActionZoomIn       Action = "zoom-in"
	ActionZoomOut      Action = "zoom-out"
	ActionZoomReset    Action = "zoom-reset"
)

// Actions returns every action.
func Actions() []Action {
	return []Action{
		ActionFind, ActionFindNext, ActionFindPrevious, ActionSelectAll, ActionExit,
		ActionZoomIn, ActionZoomOut, ActionZoomReset,
	}
}

// ParseAction validates an action name.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

func (a Action) searches() bool {
	switch a {
	case ActionFind, ActionFindNext, ActionFindPrevious, ActionSelectAll, ActionExit:
		return true
	}
	return false
}

// Modifier is a set of modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

// ErrInvalidBinding is returned for unparsable key bindings.
var ErrInvalidBinding = errors.New("invalid key binding")

// Binding is a modifier set plus a key.
type Binding struct {
	Mods Modifier
	Key  string
}

// ParseBinding parses bindings such as "Mod+Shift+G", "Escape" or "Ctrl+=".
// "Mod" and "Ctrl" both mean the control key; "Cmd" and "Meta" the meta key.
func ParseBinding(s string) (Binding, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Binding{}, ErrInvalidBinding
	}
	var b Binding
	parts := strings.Split(s, "+")
	// "Ctrl++" splits into a trailing empty pair
	if strings.HasSuffix(s, "++") {
		parts = append(parts[:len(parts)-2], "+")
	}
	for i, part := range parts {
		if i == len(parts)-1 {
			if part == "" {
				return Binding{}, fmt.Errorf("%w: %q has no key", ErrInvalidBinding, s)
			}
			b.Key = normalizeKey(part)
			break
		}
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "mod", "ctrl", "control":
			b.Mods |= ModCtrl
		case "alt", "option":
			b.Mods |= ModAlt
		case "shift":
			b.Mods |= ModShift
		case "meta", "cmd", "command", "super":
			b.Mods |= ModMeta
		default:
			return Binding{}, fmt.Errorf("%w: unknown modifier %q in %q", ErrInvalidBinding, part, s)
		}
	}
	return b, nil
}

// MustParseBinding is ParseBinding for literals.
func MustParseBinding(s string) Binding {
	b, err := ParseBinding(s)
	if err != nil {
		panic(err)
	}
	return b
}

func normalizeKey(k string) string {
	if len([]rune(k)) == 1 {
		return strings.ToLower(k)
	}
	return k
}

// String renders the binding in ParseBinding syntax.
func (b Binding) String() string {
	var parts []string
	if b.Mods&ModCtrl != 0 {
		parts = append(parts, "Ctrl")
	}
	if b.Mods&ModAlt != 0 {
		parts = append(parts, "Alt")
	}
	if b.Mods&ModShift != 0 {
		parts = append(parts, "Shift")
	}
	if b.Mods&ModMeta != 0 {
		parts = append(parts, "Meta")
	}
	return strings.Join(append(parts, b.Key), "+")
}

// KeyEvent is the literal key state of one key press.
type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	Meta  bool   `json:"meta"`
}

func (e KeyEvent) mods() Modifier {
	var m Modifier
	if e.Ctrl {
		m |= ModCtrl
	}
	if e.Alt {
		m |= ModAlt
	}
	if e.Shift {
		m |= ModShift
	}
	if e.Meta {
		m |= ModMeta
	}
	return m
}

// Matches reports whether e presses exactly b.
func (b Binding) Matches(e KeyEvent) bool {
	return b.Mods == e.mods() && b.Key == normalizeKey(e.Key)
}

// Keymap resolves key events to actions. Actions without bindings are
// simply never resolved.
type Keymap struct {
	bindings map[Action][]Binding
}

// NewKeymap builds a keymap from resolved bindings.
func NewKeymap(bindings map[Action][]Binding) Keymap {
	km := Keymap{bindings: make(map[Action][]Binding, len(bindings))}
	for a, bs := range bindings {
		km.bindings[a] = append([]Binding(nil), bs...)
	}
	return km
}

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() Keymap {
	return NewKeymap(map[Action][]Binding{
		ActionFind:         {MustParseBinding("Mod+F")},
		ActionFindNext:     {MustParseBinding("Enter"), MustParseBinding("Mod+G"), MustParseBinding("F3")},
		ActionFindPrevious: {MustParseBinding("Shift+Enter"), MustParseBinding("Mod+Shift+G"), MustParseBinding("Shift+F3")},
		ActionSelectAll:    {MustParseBinding("Alt+Enter")},
		ActionExit:         {MustParseBinding("Escape")},
		ActionZoomIn:       {MustParseBinding("Mod+="), MustParseBinding("Mod+Shift++")},
		ActionZoomOut:      {MustParseBinding("Mod+-")},
		ActionZoomReset:    {MustParseBinding("Mod+0")},
	})
}

// ParseKeymap overlays host-provided bindings, keyed by action name, on
// base. An action listed with no bindings is unbound.
func ParseKeymap(base Keymap, overrides map[string][]string) (Keymap, error) {
	out := NewKeymap(base.bindings)
	for name, list := range overrides {
		a, err := ParseAction(name)
		if err != nil {
			return Keymap{}, err
		}
		bs := make([]Binding, 0, len(list))
		for _, s := range list {
			b, err := ParseBinding(s)
			if err != nil {
				return Keymap{}, err
			}
			bs = append(bs, b)
		}
		out.bindings[a] = bs
	}
	return out, nil
}

// Bindings returns the bindings for a.
func (k Keymap) Bindings(a Action) []Binding {
	return append([]Binding(nil), k.bindings[a]...)
}

// Resolve returns the action bound to e.
func (k Keymap) Resolve(e KeyEvent) (Action, bool) {
	for _, a := range Actions() {
		for _, b := range k.bindings[a] {
			if b.Matches(e) {
				return a, true
			}
		}
	}
	return "", false
}

// Entry is one action binding.
type Entry struct {
	Action  Action
	Binding Binding
}

// Entries lists every binding in action order.
func (k Keymap) Entries() []Entry {
	var out []Entry
	for _, a := range Actions() {
		for _, b := range k.bindings[a] {
			out = append(out, Entry{Action: a, Binding: b})
		}
	}
	return out
}
