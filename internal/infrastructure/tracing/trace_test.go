package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed() (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return New("test", zap.New(core)), logs
}

func TestChildSpansShareTrace(t *testing.T) {
	tracer, _ := observed()
	defer tracer.Close()

	parent, ctx := tracer.StartSpan(context.Background(), "render")
	child, _ := tracer.StartSpan(ctx, "render.decode")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
	assert.Equal(t, parent.TraceID, GetTraceID(ctx))
}

func TestTraceLogsSpans(t *testing.T) {
	tracer, logs := observed()

	_, end := tracer.Trace(context.Background(), "render.sanitize")
	end(nil)
	_, end = tracer.Trace(context.Background(), "render.isolate")
	end(errors.New("boom"))
	tracer.Close()

	require.Eventually(t, func() bool { return logs.Len() == 2 }, time.Second, 5*time.Millisecond)
	failed := logs.FilterMessage("span completed with error").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "render.isolate", failed[0].ContextMap()["operation"])
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	ctx, end := tracer.Trace(context.Background(), "noop")
	end(errors.New("ignored"))
	tracer.Close()
	assert.Empty(t, GetTraceID(ctx))
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, _ := observed()
	defer tracer.Close()

	var seen TraceID
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/views", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/views", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, string(seen), w.Header().Get(HeaderTraceID))

	req := httptest.NewRequest(http.MethodGet, "/views", nil)
	req.Header.Set(HeaderTraceID, "caller-trace")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, TraceID("caller-trace"), seen)
	assert.Equal(t, "caller-trace", w.Header().Get(HeaderTraceID))
}
