/*
Package tracing provides lightweight request and render tracing.

Every API request gets a trace id, returned in X-Trace-ID and continued
when the caller sends one. The render pipeline opens a child span per
stage, so a slow or failing render can be followed stage by stage in the
logs.

# Usage

	tracer := tracing.New("htmlreader", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	ctx, end := tracer.Trace(ctx, "render.sanitize")
	err := work(ctx)
	end(err)

Finished spans are logged through zap by a collector goroutine, at debug
level unless they carry an error. A nil *Tracer records nothing.
*/
package tracing
