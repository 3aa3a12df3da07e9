package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokoni-market/sokoni-cli/internal/search"
)

// View renders the entire TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	// Layout: header + search bar + filter bar + panels + status bar
	header := renderHeader()
	searchBar := m.renderSearchBar()
	filterBar := m.renderFilterBar()
	statusBar := m.renderStatusBar()

	headerHeight := lipgloss.Height(header)
	searchHeight := lipgloss.Height(searchBar)
	filterHeight := lipgloss.Height(filterBar)
	statusHeight := lipgloss.Height(statusBar)
	panelHeight := m.height - headerHeight - searchHeight - filterHeight - statusHeight
	if panelHeight < 3 {
		panelHeight = 3
	}

	// Panel widths: ~40% left, ~60% right
	leftWidth := m.width*40/100 - 2 // subtract border
	rightWidth := m.width - leftWidth - 4
	if leftWidth < 20 {
		leftWidth = 20
	}
	if rightWidth < 20 {
		rightWidth = 20
	}

	leftPanel := m.renderResultList(leftWidth, panelHeight-2)
	rightPanel := m.renderRightPanel(rightWidth, panelHeight-2)

	// Apply borders
	leftBorder := stylePanelNormal
	if m.focus == focusResults {
		leftBorder = stylePanelFocused
	}
	leftPanel = leftBorder.
		Width(leftWidth).
		Height(panelHeight - 2).
		Render(leftPanel)

	rightBorder := stylePanelNormal
	if m.focus == focusDetail {
		rightBorder = stylePanelFocused
	}
	rightPanel = rightBorder.
		Width(rightWidth).
		Height(panelHeight - 2).
		Render(rightPanel)

	panels := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, searchBar, filterBar, panels, statusBar)
}

// renderHeader renders the ASCII logo and brand name.
func renderHeader() string {
	logo := "" +
		" .--. \n" +
		"( () )\n" +
		" \\  / \n" +
		"  \\/  "

	title := "" +
		" ___  ___  _  __ ___  _  _ ___ \n" +
		"/ __|/ _ \\| |/ // _ \\| \\| |_ _|\n" +
		"\\__ \\ (_) | ' <| (_) | .` || | \n" +
		"|___/\\___/|_|\\_\\\\___/|_|\\_|___|"

	styledLogo := styleLogo.Render(logo)
	styledTitle := styleLogo.Render(title)

	return lipgloss.JoinHorizontal(lipgloss.Bottom, styledLogo, "  ", styledTitle)
}

// renderSearchBar renders the search input at the top.
func (m Model) renderSearchBar() string {
	border := stylePanelNormal
	if m.focus == focusSearch {
		border = stylePanelFocused
	}

	label := styleHeader.Render("Search: ")
	input := m.searchInput.View()
	content := label + input

	return border.Width(m.width - 2).Render(content)
}

// resultsTitle names the active catalog and filters, e.g.
// "SELLERS within 10 km".
func (m Model) resultsTitle() string {
	title := strings.ToUpper(m.orch.Target().String())
	switch m.orch.Mode() {
	case search.Nearby:
		title += fmt.Sprintf(" within %g km", m.orch.RadiusKm())
	case search.KeywordSearch:
		if q := m.orch.Query(); q != "" {
			title += fmt.Sprintf(" matching %q", q)
		}
	}
	return title
}

// renderResultList renders the left results panel.
func (m Model) renderResultList(width, height int) string {
	title := styleHeader.Render(truncate(m.resultsTitle(), width))
	results := m.orch.Results()

	if m.orch.Loading() && len(results) == 0 {
		return title + "\n" + styleLoading.Render(" Searching...")
	}
	if err := m.orch.Err(); err != nil {
		return title + "\n" + styleError.Render(" Error: "+err.Error())
	}
	if len(results) == 0 {
		return title + "\n" + styleMuted.Render(" No results. Try another search or a wider radius")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")

	// Calculate visible range to keep cursor in view
	maxVisible := height - 2 // account for title + spacing
	if maxVisible < 1 {
		maxVisible = 1
	}
	cursor := m.orch.SelectedIndex()
	start, end := visibleRange(cursor, len(results), maxVisible)

	for i := start; i < end; i++ {
		b.WriteString(m.renderResultLine(results[i], width, i == cursor))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderResultLine renders a single result entry.
func (m Model) renderResultLine(r search.Result, width int, selected bool) string {
	marker := " "
	switch m.actions.State(r.Key()) {
	case search.ActionPending:
		marker = stylePending.Render("…")
	case search.ActionError:
		marker = styleError.Render("!")
	}

	// cursor + distance + spaces + marker
	name := truncate(r.Name(), width-1-8-2-2)
	entry := fmt.Sprintf("%s  %s", formatDistance(r.DistanceKm(), r.DistanceLabel()), name)

	if selected {
		return styleSelected.Render(">") + entry + " " + marker
	}
	return " " + entry + " " + marker
}

// renderRightPanel renders the detail pane and, below it, the dot map.
func (m Model) renderRightPanel(width, height int) string {
	center := m.searchCoordinate()
	results := m.orch.Results()

	hasPoints := center != nil
	for _, r := range results {
		if r.Coordinate() != nil {
			hasPoints = true
			break
		}
	}
	if !hasPoints || height < 12 {
		return m.renderDetail(width, height)
	}

	// Split: top 55% details, bottom 45% map
	detailHeight := height * 55 / 100
	mapHeight := height - detailHeight - 2 // separator and title
	if mapHeight < 4 {
		return m.renderDetail(width, height)
	}

	detailView := lipgloss.NewStyle().
		Width(width).
		Height(detailHeight).
		Render(m.renderDetail(width, detailHeight))
	separator := styleMuted.Render(strings.Repeat("─", width))
	mapTitle := styleHeader.Render("MAP") + styleMuted.Render("  ◉ you  ● selected  ○ others")
	mapView := renderDotMap(center, results, m.orch.SelectedIndex(), width, mapHeight)

	return detailView + "\n" + separator + "\n" + mapTitle + "\n" + mapView
}

// renderStatusBar renders context-aware keyboard hints at the bottom.
func (m Model) renderStatusBar() string {
	var hints string
	switch m.focus {
	case focusSearch:
		hints = "Enter:search  Tab:filters  Esc:clear  Ctrl+C:quit"
	case focusFilters:
		hints = "h/l:move  Space:apply  n:near me  Tab:results  Esc:search  q:quit"
	case focusResults:
		hints = "j/k:navigate  Enter:details  o:directions  m:map  n:near me  r:refresh  Esc:search  q:quit"
	case focusDetail:
		hints = "j/k:scroll  o:directions  m:map  Tab:search  Esc:results  q:quit"
	}

	line := " " + hints
	if m.notice != "" {
		line = " " + m.notice + "  |" + line
	}
	return styleStatusBar.Width(m.width).Render(line)
}

// visibleRange calculates the start and end indices for a scrollable list.
func visibleRange(cursor, total, maxVisible int) (int, int) {
	if total <= maxVisible {
		return 0, total
	}

	start := cursor - maxVisible/2
	if start < 0 {
		start = 0
	}
	end := start + maxVisible
	if end > total {
		end = total
		start = end - maxVisible
		if start < 0 {
			start = 0
		}
	}
	return start, end
}
