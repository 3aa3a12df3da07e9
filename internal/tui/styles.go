package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Colors matching existing output/colors.go scheme
var (
	colorCyan    = lipgloss.Color("6")  // Cyan - links, selection
	colorYellow  = lipgloss.Color("3")  // Yellow - prices, mid distance
	colorRed     = lipgloss.Color("1")  // Red - errors, user position
	colorGreen   = lipgloss.Color("2")  // Green - close by
	colorMagenta = lipgloss.Color("5")  // Magenta - far away
	colorWhite   = lipgloss.Color("15") // White - names, text
	colorGray    = lipgloss.Color("8")  // Gray - muted text
)

// Text styles
var (
	styleName       = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	stylePrice      = lipgloss.NewStyle().Foreground(colorYellow)
	styleNear       = lipgloss.NewStyle().Foreground(colorGreen)
	styleMid        = lipgloss.NewStyle().Foreground(colorYellow)
	styleFar        = lipgloss.NewStyle().Foreground(colorMagenta)
	styleLink       = lipgloss.NewStyle().Foreground(colorCyan)
	styleRating     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleMuted      = lipgloss.NewStyle().Foreground(colorGray)
	styleHeader     = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	stylePending    = lipgloss.NewStyle().Foreground(colorYellow)
	styleChipActive = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)

// Panel border styles
var (
	stylePanelFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorCyan)

	stylePanelNormal = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray)
)

// Selected item in a list
var styleSelected = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)

// Focused chip cursor in the filter bar, reverse-video style
var styleChipCursor = lipgloss.NewStyle().
	Foreground(lipgloss.Color("0")).
	Background(colorCyan).
	Bold(true)

// Status bar at the bottom
var styleStatusBar = lipgloss.NewStyle().
	Foreground(colorGray).
	Background(lipgloss.Color("0"))

// Loading indicator
var styleLoading = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)

// Error text
var styleError = lipgloss.NewStyle().Foreground(colorRed)

// Logo/brand style
var styleLogo = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)

// formatDistance returns a styled distance label (8-cell width)
func formatDistance(km *float64, label string) string {
	if km == nil || label == "" {
		return "        "
	}
	s := fmt.Sprintf("%8s", label)
	switch {
	case *km < 1:
		return styleNear.Render(s)
	case *km <= 10:
		return styleMid.Render(s)
	}
	return styleFar.Render(s)
}

// truncate truncates a string to the given display width.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "~")
}
