// Package logging provides structured logging using uber/zap.
//
// Two output modes are supported:
//   - Production: JSON lines on stderr for machine parsing
//   - Development: colored console output for humans
//
// Every render pipeline stage logs through a component child logger so a
// single document can be followed across decode, sanitize, isolate and
// patch:
//
//	logger := logging.FromLevel("debug", false)
//	log := logger.Component("sanitize")
//	log.Debug("element removed", zap.String("tag", "script"))
package logging
