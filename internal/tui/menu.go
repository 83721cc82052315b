package tui

type focusTarget int

const (
	focusNone focusTarget = iota
	focusOpenButton
	focusCloseButton
)

func (f focusTarget) String() string {
	switch f {
	case focusOpenButton:
		return "open"
	case focusCloseButton:
		return "close"
	default:
		return "none"
	}
}

// menuState is the participant menu's open flag plus the control that
// holds focus after each transition. Transitions before the first
// render move no focus.
type menuState struct {
	open     bool
	focus    focusTarget
	rendered bool
}

func (m *menuState) markRendered() {
	m.rendered = true
}

func (m *menuState) setOpen(open bool) {
	if m.open == open {
		return
	}
	m.open = open
	if !m.rendered {
		return
	}
	if open {
		m.focus = focusCloseButton
	} else {
		m.focus = focusOpenButton
	}
}

func (m *menuState) toggle() {
	m.setOpen(!m.open)
}

func (m *menuState) close() {
	m.setOpen(false)
}
