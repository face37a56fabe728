package overlay

import (
	"sync"

	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

// Message types sent to the page script.
const (
	MsgSearch        = "search"
	MsgSearchCleared = "search_cleared"
	MsgZoom          = "zoom"
	MsgOpenFind      = "open_find"
	MsgCloseFind     = "close_find"
	MsgReload        = "reload"
	MsgError         = "error"
)

// Message is an update for the page script.
type Message struct {
	Type       string      `json:"type"`
	Count      int         `json:"count,omitempty"`
	Current    int         `json:"current"`
	NoMatch    bool        `json:"noMatch,omitempty"`
	Highlights []Highlight `json:"highlights,omitempty"`
	Scale      float64     `json:"scale,omitempty"`
	Transform  string      `json:"transform,omitempty"`
	ScrollLeft *float64    `json:"scrollLeft,omitempty"`
	ScrollTop  *float64    `json:"scrollTop,omitempty"`
	Message    string      `json:"message,omitempty"`
}

// Wheel is a ctrl+wheel or pinch gesture. X and Y locate the pointer in
// the viewport; the scroll offsets are the viewport's before zooming.
type Wheel struct {
	DeltaY     float64 `json:"deltaY"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	ScrollLeft float64 `json:"scrollLeft"`
	ScrollTop  float64 `json:"scrollTop"`
}

// Options configure a Controller.
type Options struct {
	HighlightAll bool
	Scale        float64
	Wheel        bool
	Keymap       *Keymap
	// OnZoom is called with the new scale after every zoom change.
	OnZoom func(scale float64)
}

// Controller runs the overlay of one view. Only the affordances the
// policy grants are created; actions for missing ones are no-ops.
type Controller struct {
	mu sync.Mutex

	search   *Search
	zoom     *Zoom
	keymap   Keymap
	wheel    bool
	findOpen bool
	onZoom   func(float64)
}

// NewController builds the overlay for the document under root.
func NewController(root *html.Node, p *policy.Policy, opts Options) *Controller {
	c := &Controller{keymap: DefaultKeymap(), onZoom: opts.OnZoom}
	if opts.Keymap != nil {
		c.keymap = *opts.Keymap
	}
	if p.Search {
		c.search = NewSearch(root, opts.HighlightAll)
	}
	if p.Zoom {
		c.zoom = NewZoom(opts.Scale)
		c.wheel = opts.Wheel
	}
	return c
}

// HasSearch reports whether the find bar is available.
func (c *Controller) HasSearch() bool { return c.search != nil }

// HasZoom reports whether zoom controls are available.
func (c *Controller) HasZoom() bool { return c.zoom != nil }

// Search returns the search state, nil without a find bar.
func (c *Controller) Search() *Search { return c.search }

// Zoom returns the zoom state, nil without zoom controls.
func (c *Controller) Zoom() *Zoom { return c.zoom }

// Keymap returns the bindings in use.
func (c *Controller) Keymap() Keymap { return c.keymap }

// Scale returns the current zoom, DefaultZoom without zoom controls.
func (c *Controller) Scale() float64 {
	if c.zoom == nil {
		return DefaultZoom
	}
	return c.zoom.Scale()
}

func (c *Controller) allowed(a Action) bool {
	if a.searches() {
		return c.search != nil
	}
	return c.zoom != nil
}

// Do performs a and returns the resulting updates.
func (c *Controller) Do(a Action) []Message {
	if !c.allowed(a) {
		return nil
	}
	switch a {
	case ActionFind:
		c.mu.Lock()
		c.findOpen = true
		c.mu.Unlock()
		msgs := []Message{{Type: MsgOpenFind}}
		if c.search.Query() != "" {
			c.search.Resume()
			msgs = append(msgs, c.searchMessage())
		}
		return msgs
	case ActionFindNext:
		c.search.Next()
		return []Message{c.searchMessage()}
	case ActionFindPrevious:
		c.search.Previous()
		return []Message{c.searchMessage()}
	case ActionSelectAll:
		c.search.SelectAll()
		return []Message{c.searchMessage()}
	case ActionExit:
		c.mu.Lock()
		wasOpen := c.findOpen
		c.findOpen = false
		c.mu.Unlock()
		decorated := c.search.Visible()
		c.search.Exit()
		if !wasOpen && !decorated {
			return nil
		}
		return []Message{{Type: MsgCloseFind}}
	case ActionZoomIn:
		return c.zoomed(c.zoom.In(), nil)
	case ActionZoomOut:
		return c.zoomed(c.zoom.Out(), nil)
	case ActionZoomReset:
		return c.zoomed(c.zoom.Reset(), nil)
	}
	return nil
}

// Find searches for text.
func (c *Controller) Find(text string) []Message {
	if c.search == nil {
		return nil
	}
	c.search.FindAll(text)
	if text == "" {
		return []Message{{Type: MsgSearchCleared}}
	}
	return []Message{c.searchMessage()}
}

// Key resolves e through the keymap and performs the bound action.
func (c *Controller) Key(e KeyEvent) []Message {
	a, ok := c.keymap.Resolve(e)
	if !ok {
		return nil
	}
	return c.Do(a)
}

// Wheel zooms around the pointer.
func (c *Controller) Wheel(w Wheel) []Message {
	if c.zoom == nil || !c.wheel || w.DeltaY == 0 {
		return nil
	}
	delta := ZoomStep
	if w.DeltaY > 0 {
		delta = -ZoomStep
	}
	scale, scroll := c.zoom.ZoomAt(delta, Point{X: w.X, Y: w.Y}, Scroll{Left: w.ScrollLeft, Top: w.ScrollTop})
	return c.zoomed(scale, &scroll)
}

// State returns the updates that bring a freshly connected page up to
// date.
func (c *Controller) State() []Message {
	var msgs []Message
	if c.zoom != nil && c.zoom.Scale() != DefaultZoom {
		msgs = append(msgs, zoomMessage(c.zoom.Scale(), nil))
	}
	if c.search != nil {
		c.mu.Lock()
		open := c.findOpen
		c.mu.Unlock()
		if open {
			msgs = append(msgs, Message{Type: MsgOpenFind})
			if c.search.Visible() {
				msgs = append(msgs, c.searchMessage())
			}
		}
	}
	return msgs
}

func (c *Controller) searchMessage() Message {
	return Message{
		Type:       MsgSearch,
		Count:      c.search.Count(),
		Current:    c.search.Current(),
		NoMatch:    c.search.NoMatch(),
		Highlights: c.search.Highlights(),
	}
}

func (c *Controller) zoomed(scale float64, scroll *Scroll) []Message {
	if c.onZoom != nil {
		c.onZoom(scale)
	}
	return []Message{zoomMessage(scale, scroll)}
}

func zoomMessage(scale float64, scroll *Scroll) Message {
	m := Message{Type: MsgZoom, Scale: scale, Transform: Transform(scale)}
	if scroll != nil {
		left, top := scroll.Left, scroll.Top
		m.ScrollLeft = &left
		m.ScrollTop = &top
	}
	return m
}

// ErrorMessage reports a failure to the page.
func ErrorMessage(err error) Message {
	return Message{Type: MsgError, Message: err.Error()}
}
