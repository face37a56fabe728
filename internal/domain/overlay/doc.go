// Package overlay implements the interactive layer over an isolated
// document: find-in-document with matches that may span several text
// nodes, zoom with pointer anchoring, and hotkey resolution.
//
// The state lives on the server; the page script only forwards input and
// draws the Message updates a Controller returns.
package overlay
