package resilience

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Group hands out one breaker per key, such as a remote host, all sharing
// a policy.
type Group struct {
	policy Policy
	logger *zap.Logger

	mu       sync.Mutex
	breakers map[string]*Breaker
	notify   []ChangeFunc
}

// NewGroup creates a group whose state changes are logged.
func NewGroup(p Policy, logger *zap.Logger) *Group {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Group{policy: p, logger: logger, breakers: make(map[string]*Breaker)}
}

// For returns the breaker for key, creating it on first use.
func (g *Group) For(key string) *Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.breakers[key]; ok {
		return b
	}
	b := NewBreaker(key, g.policy, g.logChange)
	g.breakers[key] = b
	return b
}

// OnChange registers fn to be called on every state change of any breaker
// in the group.
func (g *Group) OnChange(fn ChangeFunc) {
	g.mu.Lock()
	g.notify = append(g.notify, fn)
	g.mu.Unlock()
}

// States snapshots the state of every breaker, sorted by key.
func (g *Group) States() []KeyState {
	g.mu.Lock()
	keys := make([]string, 0, len(g.breakers))
	for k := range g.breakers {
		keys = append(keys, k)
	}
	g.mu.Unlock()
	sort.Strings(keys)

	out := make([]KeyState, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyState{Key: k, State: g.For(k).State()})
	}
	return out
}

// KeyState pairs a key with its breaker state.
type KeyState struct {
	Key   string
	State State
}

func (g *Group) logChange(name string, from, to State) {
	level := g.logger.Info
	if to == StateOpen {
		level = g.logger.Warn
	}
	level("Circuit state changed",
		zap.String("key", name),
		zap.String("from", from.String()),
		zap.String("to", to.String()),
	)

	g.mu.Lock()
	notify := append([]ChangeFunc(nil), g.notify...)
	g.mu.Unlock()
	for _, fn := range notify {
		fn(name, from, to)
	}
}
