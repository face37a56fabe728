package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection. Requests are
// labelled by route template so view ids do not explode cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		size := int64(c.Writer.Size())
		if size < 0 {
			size = 0
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, status, time.Since(start), size)
	}
}

// Timer measures a render.
type Timer struct {
	start   time.Time
	metrics *Metrics
	mode    string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, mode string) *Timer {
	return &Timer{start: time.Now(), metrics: metrics, mode: mode}
}

// Stop records the render outcome and its duration.
func (t *Timer) Stop(ok bool, size int) time.Duration {
	d := time.Since(t.start)
	t.metrics.RecordRender(t.mode, ok, d, size)
	return d
}
