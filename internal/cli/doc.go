// Package cli implements the htmlreader command: serve documents over
// HTTP, render one document or a whole tree to standalone pages, and
// list the operating modes.
package cli
