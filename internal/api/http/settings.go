package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
)

// ModeRequest selects an operating mode.
type ModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// GetSettings returns the current settings.
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.views.Settings().Get())
}

// UpdateSettings replaces the settings. Fields missing from the body keep
// their current values. Open views re-render when the mode or anything
// else affecting rendering changed.
func (h *Handlers) UpdateSettings(c *gin.Context) {
	store := h.views.Settings()
	before := store.Get()

	next := before.Clone()
	if err := c.ShouldBindJSON(&next); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings"})
		return
	}
	if _, err := next.Keymap(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	saved, err := store.Update(func(s *settings.Settings) { *s = next })
	if err != nil {
		h.logger.Error("Failed to save settings", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	reloaded := h.reloadIfChanged(c, before, saved)
	c.JSON(http.StatusOK, gin.H{"settings": saved, "reloaded": reloaded})
}

// SetMode switches the operating mode and re-renders open views.
func (h *Handlers) SetMode(c *gin.Context) {
	var req ModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required"})
		return
	}
	mode, err := policy.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := h.views.Settings()
	before := store.Get()
	saved, err := store.Update(func(s *settings.Settings) { s.OperatingMode = mode.ID() })
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	reloaded := h.reloadIfChanged(c, before, saved)
	c.JSON(http.StatusOK, gin.H{"mode": policy.Describe(mode), "reloaded": reloaded})
}

// reloadIfChanged re-renders open views when a setting that shapes the
// render changed. Zoom alone never triggers a reload.
func (h *Handlers) reloadIfChanged(c *gin.Context, before, after settings.Settings) bool {
	b, a := before.Clone(), after.Clone()
	b.ZoomValue, a.ZoomValue = 0, 0
	b.ExtraFileExtensions, a.ExtraFileExtensions = "", ""
	if sameSettings(b, a) {
		return false
	}
	if err := h.views.ReloadAll(c.Request.Context()); err != nil {
		h.logger.Warn("Some views failed to re-render", zap.Error(err))
	}
	return true
}

func sameSettings(a, b settings.Settings) bool {
	if a.OperatingMode != b.OperatingMode ||
		a.ZoomByWheelAndGesture != b.ZoomByWheelAndGesture ||
		a.BlockRemoteImages != b.BlockRemoteImages ||
		a.HighlightAll != b.HighlightAll ||
		len(a.Hotkeys) != len(b.Hotkeys) {
		return false
	}
	for k, v := range a.Hotkeys {
		w, ok := b.Hotkeys[k]
		if !ok || len(v) != len(w) {
			return false
		}
		for i := range v {
			if v[i] != w[i] {
				return false
			}
		}
	}
	return true
}
