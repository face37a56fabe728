package render

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/overlay"
	"github.com/GriffinCanCode/HTMLReader/internal/domain/settings"
	"github.com/GriffinCanCode/HTMLReader/internal/providers/source"
)

// ViewRecorder tracks open views.
type ViewRecorder interface {
	SetViewsActive(count int)
}

// Update is a batch of overlay messages for one view's subscribers.
type Update []overlay.Message

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	// SocketPath maps a view id to its overlay channel path.
	SocketPath func(id string) string
	Views      ViewRecorder
}

type entry struct {
	// renderMu serializes renders of one view.
	renderMu sync.Mutex

	mu       sync.Mutex
	view     *View
	location string
	subs     map[int]chan Update
	nextSub  int
}

func (e *entry) current() *View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// Manager owns the open views. Each view has exactly one live boundary;
// a reload builds a new one and discards the old.
type Manager struct {
	renderer *Renderer
	loader   source.Loader
	store    *settings.Store
	opts     ManagerOptions
	logger   *zap.Logger

	mu    sync.RWMutex
	views map[string]*entry
}

// NewManager creates a manager.
func NewManager(renderer *Renderer, loader source.Loader, store *settings.Store, opts ManagerOptions, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SocketPath == nil {
		opts.SocketPath = func(id string) string { return "/ws/views/" + id }
	}
	return &Manager{
		renderer: renderer,
		loader:   loader,
		store:    store,
		opts:     opts,
		logger:   logger,
		views:    make(map[string]*entry),
	}
}

// Settings returns the settings store.
func (m *Manager) Settings() *settings.Store {
	return m.store
}

// Open loads and renders location into a new view.
func (m *Manager) Open(ctx context.Context, location string) (*View, error) {
	id := uuid.NewString()
	view, err := m.render(ctx, id, location)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.views[id] = &entry{view: view, location: view.Location, subs: make(map[int]chan Update)}
	count := len(m.views)
	m.mu.Unlock()

	m.countViews(count)
	m.logger.Info("Opened view", zap.String("id", id), zap.String("file", view.Location), zap.String("mode", view.Mode.ID()))
	return view, nil
}

// Get returns the current render of a view.
func (m *Manager) Get(id string) (*View, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	return e.current(), nil
}

// List returns every view ordered by render time.
func (m *Manager) List() []*View {
	m.mu.RLock()
	out := make([]*View, 0, len(m.views))
	for _, e := range m.views {
		out = append(out, e.current())
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Rendered.Before(out[j].Rendered) })
	return out
}

// Reload renders the view's location again. The previous boundary and
// overlay state are discarded whether or not the new render succeeds; a
// failure leaves the view empty with a notice.
func (m *Manager) Reload(ctx context.Context, id string) (*View, error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	e.renderMu.Lock()
	defer e.renderMu.Unlock()

	view, rerr := m.render(ctx, id, e.location)
	if rerr != nil {
		notice := NoticeFor(rerr)
		old := e.current()
		view = &View{ID: id, Name: old.Name, Location: e.location, Mode: m.store.Get().Mode(), Notice: &notice}
	}

	e.mu.Lock()
	old := e.view
	e.view = view
	e.mu.Unlock()
	old.Close()

	if rerr != nil {
		m.publish(e, Update{overlay.ErrorMessage(rerr)})
		return view, rerr
	}
	m.publish(e, Update{{Type: overlay.MsgReload}})
	m.logger.Debug("Reloaded view", zap.String("id", id), zap.String("file", e.location))
	return view, nil
}

// ReloadAll reloads every view, as after an operating mode change.
func (m *Manager) ReloadAll(ctx context.Context) error {
	var first error
	for _, id := range m.ids() {
		if _, err := m.Reload(ctx, id); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// ViewsOf returns the ids of views showing location.
func (m *Manager) ViewsOf(location string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []string
	for id, e := range m.views {
		if e.location == location {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Locations returns the distinct locations of open views.
func (m *Manager) Locations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, e := range m.views {
		if !seen[e.location] {
			seen[e.location] = true
			out = append(out, e.location)
		}
	}
	sort.Strings(out)
	return out
}

// Close discards a view and ends its subscriptions.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	e, ok := m.views[id]
	delete(m.views, id)
	count := len(m.views)
	m.mu.Unlock()
	if !ok {
		return ErrViewNotFound
	}

	e.mu.Lock()
	e.view.Close()
	for k, ch := range e.subs {
		close(ch)
		delete(e.subs, k)
	}
	e.mu.Unlock()

	m.countViews(count)
	m.logger.Info("Closed view", zap.String("id", id))
	return nil
}

// CloseAll discards every view.
func (m *Manager) CloseAll() {
	for _, id := range m.ids() {
		_ = m.Close(id)
	}
}

// Subscribe returns a channel receiving the view's overlay updates and a
// function ending the subscription. The channel closes with the view.
func (m *Manager) Subscribe(id string) (<-chan Update, func(), error) {
	e, err := m.entry(id)
	if err != nil {
		return nil, nil, err
	}
	ch := make(chan Update, 16)

	e.mu.Lock()
	key := e.nextSub
	e.nextSub++
	e.subs[key] = ch
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if c, ok := e.subs[key]; ok {
			delete(e.subs, key)
			close(c)
		}
	}
	return ch, cancel, nil
}

// Publish sends msgs to the view's subscribers.
func (m *Manager) Publish(id string, msgs []overlay.Message) error {
	e, err := m.entry(id)
	if err != nil {
		return err
	}
	m.publish(e, Update(msgs))
	return nil
}

func (m *Manager) publish(e *entry, u Update) {
	if len(u) == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- u:
		default:
			m.logger.Warn("Dropping overlay update for slow subscriber", zap.String("type", u[0].Type))
		}
	}
}

func (m *Manager) render(ctx context.Context, id, location string) (*View, error) {
	end := m.renderer.stage(ctx, StageLoad)
	doc, err := m.loader.Load(ctx, location)
	end(err)
	if err != nil {
		return nil, fail(StageLoad, location, err)
	}
	return m.renderer.Render(ctx, Request{
		ID:         id,
		Name:       doc.Name,
		Location:   doc.Location,
		Data:       doc.Data,
		Settings:   m.store.Get(),
		SocketPath: m.opts.SocketPath(id),
		OnZoom:     m.persistZoom,
	})
}

func (m *Manager) persistZoom(scale float64) {
	if err := m.store.SetZoom(scale); err != nil {
		m.logger.Warn("Failed to persist zoom", zap.Float64("scale", scale), zap.Error(err))
	}
}

func (m *Manager) entry(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	return e, nil
}

func (m *Manager) ids() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.views))
	for id := range m.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (m *Manager) countViews(n int) {
	if m.opts.Views != nil {
		m.opts.Views.SetViewsActive(n)
	}
}
