package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMenuState_NoFocusBeforeFirstRender(t *testing.T) {
	var m menuState
	m.toggle()
	assert.True(t, m.open)
	assert.Equal(t, focusNone, m.focus)

	m.close()
	assert.False(t, m.open)
	assert.Equal(t, focusNone, m.focus)
}

func TestMenuState_FocusFollowsTransitions(t *testing.T) {
	var m menuState
	m.markRendered()

	m.toggle()
	assert.True(t, m.open)
	assert.Equal(t, focusCloseButton, m.focus)

	m.toggle()
	assert.False(t, m.open)
	assert.Equal(t, focusOpenButton, m.focus)
}

func TestMenuState_CloseWhenClosedIsNoop(t *testing.T) {
	m := menuState{rendered: true, focus: focusNone}
	m.close()
	assert.False(t, m.open)
	assert.Equal(t, focusNone, m.focus)

	m.setOpen(true)
	m.setOpen(true)
	assert.Equal(t, focusCloseButton, m.focus)
}

func TestFocusTarget_String(t *testing.T) {
	assert.Equal(t, "none", focusNone.String())
	assert.Equal(t, "open", focusOpenButton.String())
	assert.Equal(t, "close", focusCloseButton.String())
}
