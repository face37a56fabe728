package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/render"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/HTMLReader/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/library"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// Deps are the collaborators the handlers serve.
type Deps struct {
	Views   *render.Manager
	Root    string
	Metrics *monitoring.Metrics
	// Hosts are the remote fetch breakers, nil when remote loading is off.
	Hosts *resilience.Group
	// ViewsChanged is called after a view opens or closes.
	ViewsChanged func()
	Logger       *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	views        *render.Manager
	root         string
	metrics      *monitoring.Metrics
	hosts        *resilience.Group
	viewsChanged func()
	logger       *zap.Logger
	started      time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.ViewsChanged == nil {
		d.ViewsChanged = func() {}
	}
	return &Handlers{
		views:        d.Views,
		root:         d.Root,
		metrics:      d.Metrics,
		hosts:        d.Hosts,
		viewsChanged: d.ViewsChanged,
		logger:       d.Logger,
		started:      time.Now(),
	}
}

// Register mounts every route on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/modes", h.ListModes)

	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.PUT("/settings/mode", h.SetMode)

	r.GET("/files", h.ListFiles)

	r.GET("/views", h.ListViews)
	r.POST("/views", h.OpenView)
	r.GET("/views/:id", h.GetView)
	r.GET("/views/:id/page", h.ViewPage)
	r.POST("/views/:id/reload", h.ReloadView)
	r.DELETE("/views/:id", h.CloseView)
	r.POST("/views/:id/find", h.Find)
	r.POST("/views/:id/actions/:action", h.Action)

	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(h.metrics.Handler()))
		r.GET("/metrics/json", h.MetricsJSON)
	}
	r.GET("/breakers", h.Breakers)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "HTML Reader",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	s := h.views.Settings().Get()
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"views":   len(h.views.List()),
		"mode":    s.Mode().ID(),
		"root":    h.root,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"remote":  h.hosts != nil,
		"version": Version,
	})
}

// ListModes returns the mode comparison table.
func (h *Handlers) ListModes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"modes":   policy.DescribeAll(),
		"current": h.views.Settings().Get().Mode().ID(),
		"default": policy.DefaultMode.ID(),
	})
}

// ListFiles lists the recognized documents under the content root.
func (h *Handlers) ListFiles(c *gin.Context) {
	scanner := library.NewScanner(h.views.Settings().Get().Extensions())

	if pattern := c.Query("glob"); pattern != "" {
		paths, err := scanner.Glob(h.root, pattern)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"files": paths, "count": len(paths)})
		return
	}

	entries, err := scanner.Scan(c.Request.Context(), h.root)
	if err != nil {
		h.logger.Error("Failed to scan content root", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": entries, "count": len(entries)})
}

// MetricsJSON returns the metric snapshot.
func (h *Handlers) MetricsJSON(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}

// Breakers returns the state of every remote host circuit.
func (h *Handlers) Breakers(c *gin.Context) {
	if h.hosts == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "hosts": []interface{}{}})
		return
	}
	states := h.hosts.States()
	hosts := make([]gin.H, 0, len(states))
	for _, s := range states {
		hosts = append(hosts, gin.H{"host": s.Key, "state": s.State.String()})
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "hosts": hosts})
}
