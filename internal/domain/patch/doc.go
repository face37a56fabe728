// Package patch restores author intent that isolation breaks: scrolling
// and text selection on the root element, :root custom properties that
// no longer cascade into the boundary, links that would navigate the
// boundary itself, and in-page fragment navigation.
//
// Patches run as load callbacks on an isolate.Boundary and operate only
// on the handle it publishes.
package patch
