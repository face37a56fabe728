package resilience

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrOpen is returned while a breaker rejects calls.
	ErrOpen = errors.New("circuit open")
	// ErrProbing is returned in half-open state once the probe budget is
	// spent.
	ErrProbing = errors.New("circuit half-open, probes in flight")
)

// State is a breaker state.
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	}
	return "unknown"
}

// Policy tunes when a breaker trips and how it recovers.
type Policy struct {
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold uint32
	// Cooldown is how long the circuit stays open before probing.
	Cooldown time.Duration
	// Probes is how many calls half-open admits; that many successes close
	// the circuit again.
	Probes uint32
	// Window clears the failure streak of a closed circuit.
	Window time.Duration
}

// DefaultPolicy suits remote document hosts: a flaky host gets a few
// chances before it is left alone for half a minute.
func DefaultPolicy() Policy {
	return Policy{FailureThreshold: 5, Cooldown: 30 * time.Second, Probes: 1, Window: time.Minute}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.FailureThreshold == 0 {
		p.FailureThreshold = d.FailureThreshold
	}
	if p.Cooldown <= 0 {
		p.Cooldown = d.Cooldown
	}
	if p.Probes == 0 {
		p.Probes = d.Probes
	}
	if p.Window <= 0 {
		p.Window = d.Window
	}
	return p
}

// ChangeFunc observes state transitions.
type ChangeFunc func(name string, from, to State)

// Breaker is a circuit breaker. Calls made before a transition do not
// count against the state that follows it.
type Breaker struct {
	name     string
	policy   Policy
	onChange ChangeFunc
	now      func() time.Time

	mu        sync.Mutex
	state     State
	epoch     uint64
	failures  uint32
	successes uint32
	inflight  uint32
	deadline  time.Time
}

// NewBreaker creates a closed breaker. onChange may be nil.
func NewBreaker(name string, p Policy, onChange ChangeFunc) *Breaker {
	b := &Breaker{name: name, policy: p.withDefaults(), onChange: onChange, now: time.Now}
	b.deadline = b.now().Add(b.policy.Window)
	return b
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// State returns the state, advancing an expired open circuit to
// half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick(b.now())
	return b.state
}

// Call runs fn through b. fn is not run while the circuit rejects calls.
func Call[T any](b *Breaker, fn func() (T, error)) (T, error) {
	var zero T
	epoch, err := b.admit()
	if err != nil {
		return zero, err
	}
	ok := false
	defer func() { b.settle(epoch, ok) }()

	v, err := fn()
	ok = err == nil
	return v, err
}

// Do is Call for functions without a result.
func (b *Breaker) Do(fn func() error) error {
	_, err := Call(b, func() (struct{}, error) { return struct{}{}, fn() })
	return err
}

func (b *Breaker) admit() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tick(b.now())
	switch b.state {
	case StateOpen:
		return 0, ErrOpen
	case StateHalfOpen:
		if b.inflight >= b.policy.Probes {
			return 0, ErrProbing
		}
	}
	b.inflight++
	return b.epoch, nil
}

func (b *Breaker) settle(epoch uint64, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	b.tick(now)
	if epoch != b.epoch {
		return
	}
	if b.inflight > 0 {
		b.inflight--
	}
	if ok {
		b.failures = 0
		b.successes++
		if b.state == StateHalfOpen && b.successes >= b.policy.Probes {
			b.transition(StateClosed, now)
		}
		return
	}
	b.successes = 0
	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.policy.FailureThreshold {
		b.transition(StateOpen, now)
	}
}

// tick applies time-based transitions. Callers hold mu.
func (b *Breaker) tick(now time.Time) {
	if now.Before(b.deadline) {
		return
	}
	switch b.state {
	case StateClosed:
		b.failures, b.successes = 0, 0
		b.deadline = now.Add(b.policy.Window)
	case StateOpen:
		b.transition(StateHalfOpen, now)
	}
}

// transition moves to state and starts a new epoch. Callers hold mu.
func (b *Breaker) transition(state State, now time.Time) {
	if b.state == state {
		return
	}
	from := b.state
	b.state = state
	b.epoch++
	b.failures, b.successes, b.inflight = 0, 0, 0
	switch state {
	case StateClosed:
		b.deadline = now.Add(b.policy.Window)
	case StateOpen:
		b.deadline = now.Add(b.policy.Cooldown)
	case StateHalfOpen:
		// half-open only ends through calls
		b.deadline = now.Add(time.Duration(1<<62 - 1))
	}
	if b.onChange != nil {
		b.onChange(b.name, from, state)
	}
}
