// Package config provides 12-factor process configuration for the reader.
//
// Configuration is loaded from environment variables with defaults; the
// cobra commands in cmd/htmlreader override individual fields from flags.
// Reader preferences (operating mode, zoom, hotkeys) are not process
// configuration and live in the settings package instead.
//
// Environment Variables:
//   - PORT, HOST
//   - READER_ROOT, READER_SETTINGS, READER_WATCH, READER_MAX_DOCUMENT,
//     READER_FETCH_TIMEOUT, READER_WATCH_DEBOUNCE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
