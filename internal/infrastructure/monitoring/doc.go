/*
Package monitoring provides Prometheus metrics for the reader.

# Overview

Metrics live in a private registry so several servers (or tests) can run
in one process. The collector tracks HTTP traffic, pipeline runs, sanitizer
changes by kind, decoded container kinds, open views and the overlay
websocket.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, mode.ID())
	// ... run the pipeline ...
	timer.Stop(err == nil, len(raw))
*/
package monitoring
