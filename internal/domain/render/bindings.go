package render

import (
	"github.com/GriffinCanCode/HTMLReader/internal/domain/isolate"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
)

var zoomActions = map[overlay.Action]bool{
	overlay.ActionZoomIn:    true,
	overlay.ActionZoomOut:   true,
	overlay.ActionZoomReset: true,
}

// ShellBindings lists the hotkeys the page script must intercept, limited
// to the affordances c offers.
func ShellBindings(c *overlay.Controller) []isolate.ShellBinding {
	var out []isolate.ShellBinding
	for _, e := range c.Keymap().Entries() {
		if zoomActions[e.Action] && !c.HasZoom() || !zoomActions[e.Action] && !c.HasSearch() {
			continue
		}
		m := e.Binding.Mods
		out = append(out, isolate.ShellBinding{
			Action: string(e.Action),
			Key:    e.Binding.Key,
			Ctrl:   m&overlay.ModCtrl != 0,
			Alt:    m&overlay.ModAlt != 0,
			Shift:  m&overlay.ModShift != 0,
			Meta:   m&overlay.ModMeta != 0,
		})
	}
	return out
}
