package patch

import (
	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
)

var restored = []struct{ prop, value string }{
	{"overflow", "auto"},
	{"user-select", "text"},
}

// RestoreInteraction makes the root content element scrollable and its
// text selectable. Each property is only set when the author left it
// unset; explicit author values always win, and an unreadable style
// attribute is left alone. It reports how many properties were set.
func RestoreInteraction(h *isolate.Handle) int {
	body := h.Body()
	if body.Length() == 0 {
		return 0
	}
	set := 0
	for _, d := range restored {
		if v, ok := h.Style(body, d.prop); !ok || v != "" {
			continue
		}
		h.SetStyle(body, d.prop, d.value)
		set++
	}
	return set
}
