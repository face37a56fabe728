// Package settings persists user preferences (operating mode, zoom,
// wheel zoom, extra file extensions, image blocking, search highlighting
// and hotkeys) as JSON, YAML or TOML chosen by file extension.
package settings
