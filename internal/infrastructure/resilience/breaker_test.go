package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errBoom = errors.New("boom")

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func breaker(p Policy) (*Breaker, *clock, *[]string) {
	c := &clock{t: time.Unix(1_700_000_000, 0)}
	var changes []string
	b := NewBreaker("host", p, func(_ string, from, to State) {
		changes = append(changes, from.String()+">"+to.String())
	})
	b.now = c.now
	b.deadline = c.now().Add(b.policy.Window)
	return b, c, &changes
}

func fail(b *Breaker) error { return b.Do(func() error { return errBoom }) }
func pass(b *Breaker) error { return b.Do(func() error { return nil }) }

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b, _, changes := breaker(Policy{FailureThreshold: 3, Cooldown: time.Second})

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, fail(b), errBoom)
	}
	assert.Equal(t, StateClosed, b.State())
	require.NoError(t, pass(b), "a success resets the streak")
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, fail(b), errBoom)
	}
	assert.Equal(t, StateOpen, b.State())
	assert.Equal(t, []string{"closed>open"}, *changes)

	called := false
	err := b.Do(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	b, c, changes := breaker(Policy{FailureThreshold: 1, Cooldown: time.Second, Probes: 1})

	fail(b)
	require.Equal(t, StateOpen, b.State())

	c.advance(2 * time.Second)
	assert.Equal(t, StateHalfOpen, b.State())
	require.NoError(t, pass(b))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"closed>open", "open>half-open", "half-open>closed"}, *changes)
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b, c, _ := breaker(Policy{FailureThreshold: 1, Cooldown: time.Second})
	fail(b)
	c.advance(2 * time.Second)
	assert.ErrorIs(t, fail(b), errBoom)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreakerLimitsProbes(t *testing.T) {
	b, c, _ := breaker(Policy{FailureThreshold: 1, Cooldown: time.Second, Probes: 1})
	fail(b)
	c.advance(2 * time.Second)

	err := b.Do(func() error {
		// a second caller while the probe is in flight
		assert.ErrorIs(t, pass(b), ErrProbing)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerWindowClearsStreak(t *testing.T) {
	b, c, _ := breaker(Policy{FailureThreshold: 2, Window: time.Minute})
	fail(b)
	c.advance(2 * time.Minute)
	fail(b)
	assert.Equal(t, StateClosed, b.State())
}

func TestCallReturnsValue(t *testing.T) {
	b := NewBreaker("x", Policy{}, nil)
	v, err := Call(b, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, "x", b.Name())
}

func TestGroupKeepsOneBreakerPerKey(t *testing.T) {
	g := NewGroup(Policy{FailureThreshold: 1}, zap.NewNop())
	a := g.For("a.example")
	assert.Same(t, a, g.For("a.example"))

	fail(a)
	require.NoError(t, pass(g.For("b.example")))

	assert.Equal(t, []KeyState{
		{Key: "a.example", State: StateOpen},
		{Key: "b.example", State: StateClosed},
	}, g.States())
}

func TestGroupNotifiesChanges(t *testing.T) {
	g := NewGroup(Policy{FailureThreshold: 1}, nil)
	var opened []string
	g.OnChange(func(name string, _, to State) {
		if to == StateOpen {
			opened = append(opened, name)
		}
	})

	fail(g.For("a.example"))
	require.NoError(t, pass(g.For("b.example")))
	assert.Equal(t, []string{"a.example"}, opened)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
