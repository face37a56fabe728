package isolate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/net/html"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

var (
	ErrNoDocument    = errors.New("no document to isolate")
	ErrAlreadyLoaded = errors.New("boundary content already loaded")
	ErrNotLoaded     = errors.New("boundary content not loaded")
	ErrClosed        = errors.New("boundary closed")
)

// LoadFunc runs once the isolated content has loaded.
type LoadFunc func(h *Handle) error

// Boundary is the isolation surface hosting one document. Exactly one
// exists per open document; it is discarded on close or reload.
type Boundary interface {
	// Strategy reports shadow or frame.
	Strategy() policy.Strategy
	// HostSelector reaches the host scope from inside the document.
	HostSelector() string
	// CSP is the content security policy declared for the content.
	CSP() string
	// OnLoad registers a one-shot callback. It must be called before Load.
	OnLoad(fn LoadFunc) error
	// Load assigns the content and fires the load callbacks in order.
	Load(ctx context.Context) error
	Loaded() bool
	// Handle returns the content handle once loaded.
	Handle() (*Handle, error)
	// Dispatch delivers ev to the listeners registered through the handle.
	Dispatch(ev *Event) DispatchResult
	// Markup serializes the boundary for embedding in a host page.
	Markup() (string, error)
	Close()
}

// Options tune an isolation run.
type Options struct {
	Title             string
	BlockRemoteImages bool
}

// Strategy builds a boundary around a sanitized document.
type Strategy interface {
	Kind() policy.Strategy
	Isolate(ctx context.Context, doc *html.Node, p *policy.Policy, opts Options) (Boundary, error)
}

// For returns the strategy implementation for kind.
func For(kind policy.Strategy) Strategy {
	if kind == policy.StrategyShadow {
		return ShadowStrategy{}
	}
	return FrameStrategy{}
}

// Isolate is For(p.Strategy).Isolate.
func Isolate(ctx context.Context, doc *html.Node, p *policy.Policy, opts Options) (Boundary, error) {
	return For(p.Strategy).Isolate(ctx, doc, p, opts)
}

type base struct {
	mu        sync.Mutex
	kind      policy.Strategy
	host      string
	csp       string
	title     string
	callbacks []LoadFunc
	listeners map[string][]Listener
	handle    *Handle
	loading   bool
	loaded    bool
	closed    bool
}

func newBase(kind policy.Strategy, host, csp, title string) *base {
	return &base{
		kind:      kind,
		host:      host,
		csp:       csp,
		title:     title,
		listeners: make(map[string][]Listener),
	}
}

func (b *base) Strategy() policy.Strategy { return b.kind }
func (b *base) HostSelector() string      { return b.host }
func (b *base) CSP() string               { return b.csp }

func (b *base) OnLoad(fn LoadFunc) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.closed:
		return ErrClosed
	case b.loaded:
		return ErrAlreadyLoaded
	}
	b.callbacks = append(b.callbacks, fn)
	return nil
}

func (b *base) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loaded
}

func (b *base) Handle() (*Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	if !b.loaded {
		return nil, ErrNotLoaded
	}
	return b.handle, nil
}

// begin claims the load so a second Load fails.
func (b *base) begin(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.closed:
		return ErrClosed
	case b.loaded, b.loading:
		return ErrAlreadyLoaded
	}
	b.loading = true
	return nil
}

// abort releases a claim taken by begin after a failed load.
func (b *base) abort() {
	b.mu.Lock()
	b.loading = false
	b.mu.Unlock()
}

// finish publishes the handle and fires the callbacks outside the lock so
// they may register listeners.
func (b *base) finish(root *html.Node) error {
	b.mu.Lock()
	h := newHandle(root, b)
	b.handle = h
	b.loading = false
	b.loaded = true
	callbacks := b.callbacks
	b.callbacks = nil
	b.mu.Unlock()

	for i, fn := range callbacks {
		if err := fn(h); err != nil {
			return fmt.Errorf("load callback %d: %w", i, err)
		}
	}
	return nil
}

func (b *base) addListener(typ string, l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[typ] = append(b.listeners[typ], l)
}

func (b *base) Dispatch(ev *Event) DispatchResult {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return DispatchResult{}
	}
	ls := append([]Listener(nil), b.listeners[ev.Type]...)
	b.mu.Unlock()

	for _, l := range ls {
		l(ev)
	}
	return DispatchResult{DefaultPrevented: ev.defaultPrevented, ScrollTarget: ev.scrollTarget}
}

func (b *base) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.callbacks = nil
	b.listeners = make(map[string][]Listener)
	b.handle = nil
}
