package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/source"
)

// OpenRequest names the document to open.
type OpenRequest struct {
	Location string `json:"location" binding:"required"`
}

// FindRequest is a search from a client without the overlay channel.
type FindRequest struct {
	Text string `json:"text"`
}

// ListViews lists the open views.
func (h *Handlers) ListViews(c *gin.Context) {
	views := h.views.List()
	infos := make([]render.Info, 0, len(views))
	for _, v := range views {
		infos = append(infos, v.Info())
	}
	c.JSON(http.StatusOK, gin.H{"views": infos, "count": len(infos)})
}

// OpenView renders a document into a new view.
func (h *Handlers) OpenView(c *gin.Context) {
	var req OpenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	view, err := h.views.Open(c.Request.Context(), req.Location)
	if err != nil {
		h.renderFailed(c, err)
		return
	}
	h.viewsChanged()

	info := view.Info()
	c.JSON(http.StatusCreated, gin.H{
		"view": info,
		"page": "/views/" + view.ID + "/page",
	})
}

// GetView returns a view summary.
func (h *Handlers) GetView(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view.Info())
}

// ViewPage serves the host page of a view, or the notice of a failed one.
func (h *Handlers) ViewPage(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.Header("Cache-Control", "no-store")
	if view.Failed() {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(noticePage(*view.Notice)))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(view.Page))
}

// ReloadView renders the view's document again.
func (h *Handlers) ReloadView(c *gin.Context) {
	view, err := h.views.Reload(c.Request.Context(), c.Param("id"))
	if errors.Is(err, render.ErrViewNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.renderFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, view.Info())
}

// CloseView discards a view.
func (h *Handlers) CloseView(c *gin.Context) {
	if err := h.views.Close(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	h.viewsChanged()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Find runs a search and publishes the result to the view's pages.
func (h *Handlers) Find(c *gin.Context) {
	var req FindRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid find request"})
		return
	}
	view, ok := h.view(c)
	if !ok {
		return
	}
	if view.Overlay == nil || !view.Overlay.HasSearch() {
		c.JSON(http.StatusConflict, gin.H{"error": "search is not available in " + view.Mode.Label()})
		return
	}
	h.publish(c, view, view.Overlay.Find(req.Text))
}

// Action performs an overlay action such as find-next or zoom-in.
func (h *Handlers) Action(c *gin.Context) {
	a, err := overlay.ParseAction(c.Param("action"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, ok := h.view(c)
	if !ok {
		return
	}
	if view.Overlay == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "view has no overlay"})
		return
	}
	if h.metrics != nil {
		h.metrics.RecordOverlayAction(string(a))
	}
	h.publish(c, view, view.Overlay.Do(a))
}

func (h *Handlers) publish(c *gin.Context, view *render.View, msgs []overlay.Message) {
	if err := h.views.Publish(view.ID, msgs); err != nil {
		h.logger.Debug("Publish failed", zap.String("view", view.ID), zap.Error(err))
	}
	if msgs == nil {
		msgs = []overlay.Message{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handlers) view(c *gin.Context) (*render.View, bool) {
	view, err := h.views.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return nil, false
	}
	return view, true
}

// renderFailed answers with the notice for err.
func (h *Handlers) renderFailed(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error":  err.Error(),
		"notice": render.NoticeFor(err),
	})
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	var serr *source.StatusError
	switch {
	case errors.Is(err, render.ErrViewNotFound), errors.Is(err, source.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, source.ErrOutsideRoot):
		return http.StatusForbidden
	case errors.Is(err, source.ErrUnsupportedScheme):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &serr):
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}

func noticePage(n render.Notice) string {
	var sb strings.Builder
	sb.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
	sb.WriteString(n.Title)
	sb.WriteString(`</title></head><body><div class="html-reader-notice" role="alert">`)
	sb.WriteString(n.HTML())
	sb.WriteString(`</div></body></html>`)
	return sb.String()
}
