package isolate

import (
	"golang.org/x/net/html"
)

// Listener observes events dispatched on a boundary.
type Listener func(ev *Event)

// Event is a DOM event crossing the boundary. Path is the composed path
// from the target outwards, bounded by the isolated document root.
type Event struct {
	Type string
	Path []*html.Node

	defaultPrevented bool
	scrollTarget     *html.Node
}

// NewEvent builds an event whose composed path starts at target.
func NewEvent(typ string, target *html.Node) *Event {
	var path []*html.Node
	for n := target; n != nil; n = n.Parent {
		path = append(path, n)
	}
	return &Event{Type: typ, Path: path}
}

// Target returns the innermost node of the path.
func (e *Event) Target() *html.Node {
	if len(e.Path) == 0 {
		return nil
	}
	return e.Path[0]
}

// PreventDefault cancels the browser's default action.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether a listener cancelled the default action.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// ScrollIntoView asks the host to bring n into view once dispatch ends.
func (e *Event) ScrollIntoView(n *html.Node) {
	e.scrollTarget = n
}

// DispatchResult is what the host must do after listeners ran.
type DispatchResult struct {
	DefaultPrevented bool
	ScrollTarget     *html.Node
}
