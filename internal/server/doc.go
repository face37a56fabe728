// Package server assembles the HTML reader service.
//
// NewServer wires configuration, logging, metrics, persisted settings,
// the document loaders and the view manager behind a gin router:
//   - JSON API for views, settings, files and modes (api/http)
//   - overlay channel per view at /ws/views/:id (api/ws)
//   - Prometheus metrics at /metrics
//
// When watching is enabled the files behind open views and the settings
// file are watched; an edit re-renders the affected views.
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	srv, err := server.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Close()
//	err = srv.Run(ctx)
package server
