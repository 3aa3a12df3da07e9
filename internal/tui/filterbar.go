package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokoni-market/sokoni-cli/internal/locate"
)

// chip groups, each rendered in its own box
var chipGroups = []chipKind{chipTarget, chipRadius, chipNearMe}

func groupOf(k chipKind) chipKind {
	if k == chipAutoRefresh || k == chipClear {
		return chipNearMe
	}
	return k
}

// renderFilterBar renders three bordered boxes side by side: catalog,
// radius, and actions (near me, auto-refresh, clear).
func (m Model) renderFilterBar() string {
	var boxes []string
	for _, group := range chipGroups {
		var b strings.Builder
		groupFocused := false
		for i, c := range chips {
			if groupOf(c.kind) != group {
				continue
			}
			focused := m.focus == focusFilters && m.chipCursor == i
			if focused {
				groupFocused = true
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(m.renderChip(m.chipLabel(c), m.chipActive(c), focused))
		}

		border := stylePanelNormal
		if groupFocused {
			border = stylePanelFocused
		}
		boxes = append(boxes, border.Render(b.String()))
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)

	// Location and last update line above the boxes
	var info []string
	if label := m.location.State().Label(); label != "" {
		info = append(info, "Location: "+label)
	}
	if !m.lastUpdate.IsZero() {
		updateText := "Last update: " + m.lastUpdate.Format("15:04:05")

		// Add countdown if auto-refresh is enabled
		if m.autoRefresh {
			remaining := autoRefreshInterval - time.Since(m.lastUpdate)
			if remaining < 0 {
				remaining = 0
			}
			updateText += fmt.Sprintf(" (refresh in %ds)", int(remaining.Seconds()))
		}
		info = append(info, updateText)
	}
	if len(info) > 0 {
		return styleMuted.Render("  "+strings.Join(info, "   ")) + "\n" + bar
	}

	return bar
}

func (m Model) chipLabel(c chip) string {
	if c.kind == chipNearMe && m.location.State().Status == locate.Locating {
		return "Locating…"
	}
	return c.label
}

func (m Model) chipActive(c chip) bool {
	switch c.kind {
	case chipTarget:
		return m.orch.Target() == c.target
	case chipRadius:
		return m.orch.RadiusKm() == c.radius
	case chipNearMe:
		return m.location.Coordinate() != nil
	case chipAutoRefresh:
		return m.autoRefresh
	}
	return false
}

// renderChip renders a single chip with cursor highlighting.
func (m Model) renderChip(label string, active bool, focused bool) string {
	if focused {
		if active {
			return styleChipCursor.Render("[" + label + "]")
		}
		return styleChipCursor.Render(" " + label + " ")
	}
	if active {
		return styleChipActive.Render("[" + label + "]")
	}
	return styleMuted.Render(" " + label + " ")
}

// handleFilterKeys handles key events when the filter bar is focused.
func (m Model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "h", "left":
		if m.chipCursor > 0 {
			m.chipCursor--
		}
		return m, nil

	case "l", "right":
		if m.chipCursor < len(chips)-1 {
			m.chipCursor++
		}
		return m, nil

	case " ", "enter":
		return m.activateChip(chips[m.chipCursor])

	case "n":
		return m.nearMe()

	case "tab":
		if len(m.orch.Results()) > 0 {
			m.focus = focusResults
			return m, nil
		}
		return m.focusSearchBar(), nil

	case "shift+tab", "esc", "/":
		return m.focusSearchBar(), nil

	case "q":
		return m, tea.Quit
	}

	return m, nil
}

// activateChip applies the chip's filter and re-issues the search when
// the orchestrator asks for it.
func (m Model) activateChip(c chip) (tea.Model, tea.Cmd) {
	switch c.kind {
	case chipTarget:
		if m.orch.Target() == c.target {
			return m, nil
		}
		m.detailScroll = 0
		return m, runSearch(m.orch, m.orch.SetTarget(c.target))

	case chipRadius:
		req, ok := m.orch.SetRadius(c.radius)
		if !ok {
			return m, nil
		}
		return m, runSearch(m.orch, req)

	case chipNearMe:
		if m.location.Coordinate() != nil {
			// Toggle off: drop the coordinate, keep the text filters
			m.location.Clear()
			return m, runSearch(m.orch, m.orch.ClearLocation())
		}
		return m.nearMe()

	case chipAutoRefresh:
		m.autoRefresh = !m.autoRefresh
		if m.autoRefresh {
			// Do immediate update when enabling auto-refresh
			return m, tea.Batch(autoRefreshTick(), countdownTick(), runSearch(m.orch, m.orch.Refresh()))
		}
		return m, nil

	case chipClear:
		m.location.Clear()
		m.searchInput.SetValue("")
		m.notice = ""
		m.detailScroll = 0
		return m, runSearch(m.orch, m.orch.Clear())
	}

	return m, nil
}
