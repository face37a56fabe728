// Package watch reports changes to open documents so their views can be
// re-rendered.
package watch
