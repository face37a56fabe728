package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/HTMLReader/internal/domain/policy"
)

func controller(t *testing.T, mode policy.Mode, opts Options) *Controller {
	t.Helper()
	return NewController(body(t, needles), policy.Lookup(mode), opts)
}

func TestControllerSearchFlow(t *testing.T) {
	c := controller(t, policy.ModeBalance, Options{HighlightAll: true, Scale: 1})
	require.True(t, c.HasSearch())

	msgs := c.Key(KeyEvent{Key: "f", Ctrl: true})
	require.Len(t, msgs, 1)
	assert.Equal(t, MsgOpenFind, msgs[0].Type)

	msgs = c.Find("needle")
	require.Len(t, msgs, 1)
	assert.Equal(t, MsgSearch, msgs[0].Type)
	assert.Equal(t, 3, msgs[0].Count)
	assert.Equal(t, -1, msgs[0].Current)
	assert.Len(t, msgs[0].Highlights, 5)

	msgs = c.Do(ActionFindNext)
	assert.Equal(t, 0, msgs[0].Current)

	msgs = c.Find("missing")
	assert.True(t, msgs[0].NoMatch)

	msgs = c.Find("")
	assert.Equal(t, MsgSearchCleared, msgs[0].Type)
}

func TestControllerExitAndResume(t *testing.T) {
	c := controller(t, policy.ModeHighRestricted, Options{HighlightAll: true})

	assert.Nil(t, c.Do(ActionExit), "nothing to close")

	c.Do(ActionFind)
	c.Find("needle")
	c.Do(ActionFindNext)

	msgs := c.Key(KeyEvent{Key: "Escape"})
	require.Len(t, msgs, 1)
	assert.Equal(t, MsgCloseFind, msgs[0].Type)
	assert.Equal(t, "needle", c.Search().Query())

	msgs = c.Do(ActionFind)
	require.Len(t, msgs, 2)
	assert.Equal(t, MsgSearch, msgs[1].Type)
	assert.Equal(t, 0, msgs[1].Current)
	assert.NotEmpty(t, msgs[1].Highlights)
}

func TestControllerExitClearsSearchWithoutFindBar(t *testing.T) {
	c := controller(t, policy.ModeBalance, Options{HighlightAll: true, Scale: 1})

	msgs := c.Find("needle")
	require.Len(t, msgs, 1)
	require.True(t, c.Search().Visible())
	require.NotEmpty(t, c.Search().Highlights())

	msgs = c.Do(ActionExit)
	require.Len(t, msgs, 1)
	assert.Equal(t, MsgCloseFind, msgs[0].Type)
	assert.False(t, c.Search().Visible())
	assert.Empty(t, c.Search().Highlights())
	assert.Equal(t, "needle", c.Search().Query())

	assert.Nil(t, c.Do(ActionExit), "already cleared")
}

func TestControllerZoom(t *testing.T) {
	var persisted []float64
	c := controller(t, policy.ModeText, Options{Scale: 1, OnZoom: func(s float64) { persisted = append(persisted, s) }})

	msgs := c.Do(ActionZoomIn)
	require.Len(t, msgs, 1)
	assert.Equal(t, MsgZoom, msgs[0].Type)
	assert.Equal(t, 1.1, msgs[0].Scale)
	assert.Equal(t, "scale(1.1)", msgs[0].Transform)
	assert.Nil(t, msgs[0].ScrollLeft)

	c.Key(KeyEvent{Key: "0", Ctrl: true})
	assert.Equal(t, []float64{1.1, 1.0}, persisted)
	assert.Equal(t, 1.0, c.Scale())
}

func TestControllerWheel(t *testing.T) {
	c := controller(t, policy.ModeBalance, Options{Scale: 1, Wheel: true})

	msgs := c.Wheel(Wheel{DeltaY: -120, X: 100, Y: 50})
	require.Len(t, msgs, 1)
	assert.Equal(t, 1.1, msgs[0].Scale)
	require.NotNil(t, msgs[0].ScrollLeft)
	assert.InDelta(t, 10, *msgs[0].ScrollLeft, 1e-9)

	msgs = c.Wheel(Wheel{DeltaY: 120, X: 100, Y: 50, ScrollLeft: *msgs[0].ScrollLeft, ScrollTop: *msgs[0].ScrollTop})
	assert.Equal(t, 1.0, msgs[0].Scale)

	assert.Nil(t, c.Wheel(Wheel{}))

	off := controller(t, policy.ModeBalance, Options{Scale: 1})
	assert.Nil(t, off.Wheel(Wheel{DeltaY: -120}))
}

func TestControllerAffordancesByMode(t *testing.T) {
	low := controller(t, policy.ModeLowRestricted, Options{Scale: 1})
	assert.False(t, low.HasSearch())
	assert.True(t, low.HasZoom())
	assert.Nil(t, low.Find("needle"))
	assert.Nil(t, low.Do(ActionFind))
	assert.NotNil(t, low.Do(ActionZoomOut))

	open := controller(t, policy.ModeUnrestricted, Options{Scale: 1})
	assert.False(t, open.HasSearch())
	assert.False(t, open.HasZoom())
	assert.Nil(t, open.Do(ActionZoomIn))
	assert.Nil(t, open.Key(KeyEvent{Key: "f", Ctrl: true}))
	assert.Equal(t, DefaultZoom, open.Scale())
}

func TestControllerState(t *testing.T) {
	c := controller(t, policy.ModeBalance, Options{HighlightAll: true, Scale: 1.5})
	assert.Len(t, c.State(), 1)

	c.Do(ActionFind)
	c.Find("needle")
	state := c.State()
	require.Len(t, state, 3)
	assert.Equal(t, MsgZoom, state[0].Type)
	assert.Equal(t, MsgOpenFind, state[1].Type)
	assert.Equal(t, MsgSearch, state[2].Type)
}

func TestControllerCustomKeymap(t *testing.T) {
	km, err := ParseKeymap(DefaultKeymap(), map[string][]string{"zoom-reset": {}})
	require.NoError(t, err)
	c := controller(t, policy.ModeBalance, Options{Scale: 2, Keymap: &km})
	assert.Nil(t, c.Key(KeyEvent{Key: "0", Ctrl: true}))
	assert.Equal(t, 2.0, c.Scale())
}
