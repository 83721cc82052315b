package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	colorPrimary   = lipgloss.Color("12")  // bright blue
	colorSecondary = lipgloss.Color("10")  // bright green
	colorDim       = lipgloss.Color("240") // gray
	colorHighlight = lipgloss.Color("11")  // bright yellow
	colorBorder    = lipgloss.Color("238") // dark gray
	colorError     = lipgloss.Color("9")   // bright red

	// Input area
	styleInput = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	// Menu items
	styleMenuSelected = lipgloss.NewStyle().
				Foreground(colorHighlight).
				Bold(true)

	styleMenuNormal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	styleMenuActive = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	// Buttons; the focused one is reversed
	styleButton = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	styleButtonFocused = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Reverse(true).
				Padding(0, 1)

	// Panels
	stylePanelBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder)

	styleActiveBorder = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary)

	styleAlert = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorError).
			Padding(1, 2)

	// Status bar
	styleStatusBar = lipgloss.NewStyle().
			Foreground(colorDim).
			Padding(0, 1)

	// Panel titles
	styleTitle = lipgloss.NewStyle().
			Foreground(colorDim).
			Bold(true)
)
