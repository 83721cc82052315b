package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// menuHeaderLines is the number of lines above the participant rows.
const menuHeaderLines = 2

// renderMenu renders the participant sidebar: a header with the close
// button, then one row per participant with scrolling.
func (m model) renderMenu(width, height int) string {
	closeBtn := styleButton.Render("x")
	if m.menu.focus == focusCloseButton {
		closeBtn = styleButtonFocused.Render("x")
	}
	title := styleTitle.Render("Participants")
	gap := width - lipgloss.Width(title) - lipgloss.Width(closeBtn)
	if gap < 1 {
		gap = 1
	}
	lines := []string{
		title + strings.Repeat(" ", gap) + closeBtn,
		lipgloss.NewStyle().Foreground(colorBorder).Render(strings.Repeat("─", width)),
	}

	rows := height - menuHeaderLines
	if len(m.state.Participants) == 0 {
		empty := lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(rows).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No participants")
		return strings.Join(lines, "\n") + "\n" + empty
	}

	for i, name := range m.state.Participants {
		if i < m.menuOffset {
			continue
		}
		if len(lines) >= height {
			break
		}
		lines = append(lines, formatParticipant(name, width, i == m.menuCursor, name == m.state.ActiveParticipant))
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

// formatParticipant formats one sidebar row:
//
//	[>] [*] name
func formatParticipant(name string, width int, selected, active bool) string {
	nameMax := width - 4
	if nameMax < 0 {
		nameMax = 0
	}
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "…")
	}

	mark := "  "
	if active {
		mark = "* "
	}

	switch {
	case selected:
		return styleMenuSelected.Render("> " + mark + name)
	case active:
		return "  " + styleMenuActive.Render(mark+name)
	default:
		return "  " + styleMenuNormal.Render(mark+name)
	}
}

// adjustMenuScroll keeps the cursor visible within the sidebar.
func (m *model) adjustMenuScroll(menuHeight int) {
	visibleItems := menuHeight - menuHeaderLines
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.menuCursor < m.menuOffset {
		m.menuOffset = m.menuCursor
	}
	if m.menuCursor >= m.menuOffset+visibleItems {
		m.menuOffset = m.menuCursor - visibleItems + 1
	}
}
