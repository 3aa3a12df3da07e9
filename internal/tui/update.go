package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/locate"
)

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case searchResultMsg:
		return m.handleSearchResult(msg)

	case locateResultMsg:
		return m.handleLocateResult(msg)

	case openResultMsg:
		m.actions.Done(msg.key, msg.err)
		return m, nil

	case autoRefreshTickMsg:
		return m.handleAutoRefreshTick()

	case countdownTickMsg:
		return m.handleCountdownTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Pass remaining messages to textinput when focused
	if m.focus == focusSearch {
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleSearchResult(msg searchResultMsg) (tea.Model, tea.Cmd) {
	// Ignore stale results
	if !m.orch.Apply(msg.resp) {
		return m, nil
	}
	m.lastUpdate = time.Now()
	m.detailScroll = 0

	if m.focusResultsOnLoad {
		m.focusResultsOnLoad = false
		if msg.resp.Err == nil && len(m.orch.Results()) > 0 {
			if m.orch.SelectedIndex() < 0 {
				m.orch.Select(0)
			}
			m.focus = focusResults
			m.searchInput.Blur()
		}
	}
	return m, nil
}

func (m Model) handleLocateResult(msg locateResultMsg) (tea.Model, tea.Cmd) {
	state := m.location.Finish(msg.result)
	if state.Status != locate.Succeeded {
		m.notice = state.Label()
		return m, nil
	}
	m.notice = ""
	m.focusResultsOnLoad = true
	return m, runSearch(m.orch, m.orch.EnterNearby(*state.Coordinate))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKeys(msg)
	case focusFilters:
		return m.handleFilterKeys(msg)
	case focusResults:
		return m.handleResultKeys(msg)
	case focusDetail:
		return m.handleDetailKeys(msg)
	}

	return m, nil
}

func (m Model) focusSearchBar() Model {
	m.focus = focusSearch
	m.searchInput.Focus()
	return m
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		input := strings.TrimSpace(m.searchInput.Value())
		if input == "" {
			return m, nil
		}
		m.notice = ""
		m.focusResultsOnLoad = true

		// A typed coordinate searches around it
		if c, ok := geo.ParsePair(input); ok {
			m.location.Set(c)
			m.searchInput.SetValue("")
			return m, runSearch(m.orch, m.orch.EnterNearby(c))
		}

		req, ok := m.orch.SubmitKeyword(input)
		if !ok {
			return m, nil
		}
		return m, runSearch(m.orch, req)

	case "esc":
		m.searchInput.SetValue("")
		return m, nil

	case "tab":
		m.focus = focusFilters
		m.searchInput.Blur()
		return m, nil

	case "shift+tab":
		// Navigate backward to last available panel
		if _, ok := m.orch.Selected(); ok {
			m.focus = focusDetail
		} else if len(m.orch.Results()) > 0 {
			m.focus = focusResults
		} else {
			m.focus = focusFilters
		}
		m.searchInput.Blur()
		return m, nil
	}

	// Forward to textinput
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	results := m.orch.Results()
	cursor := m.orch.SelectedIndex()

	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab", "enter":
		if _, ok := m.orch.Selected(); ok {
			m.focus = focusDetail
			return m, nil
		}
		return m.focusSearchBar(), nil

	case "shift+tab":
		m.focus = focusFilters
		return m, nil

	case "esc", "/":
		return m.focusSearchBar(), nil

	case "j", "down":
		m.moveCursor(cursor + 1)
		return m, nil

	case "k", "up":
		m.moveCursor(cursor - 1)
		return m, nil

	case "pgdown":
		m.moveCursor(cursor + m.pageSize())
		return m, nil

	case "pgup":
		m.moveCursor(cursor - m.pageSize())
		return m, nil

	case "home":
		m.moveCursor(0)
		return m, nil

	case "end":
		m.moveCursor(len(results) - 1)
		return m, nil

	case "o":
		return m.openSelected(m.maps.DirectionsURL)

	case "m":
		return m.openSelected(m.maps.SearchURL)

	case "n":
		return m.nearMe()

	case "r":
		return m, runSearch(m.orch, m.orch.Refresh())
	}

	return m, nil
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "tab", "/":
		return m.focusSearchBar(), nil

	case "shift+tab", "esc":
		m.focus = focusResults
		return m, nil

	case "j", "down":
		m.detailScroll++
		return m, nil

	case "k", "up":
		if m.detailScroll > 0 {
			m.detailScroll--
		}
		return m, nil

	case "home":
		m.detailScroll = 0
		return m, nil

	case "o":
		return m.openSelected(m.maps.DirectionsURL)

	case "m":
		return m.openSelected(m.maps.SearchURL)
	}

	return m, nil
}

// moveCursor selects result i, clamped to the list.
func (m *Model) moveCursor(i int) {
	n := len(m.orch.Results())
	if n == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	if m.orch.Select(i) {
		m.detailScroll = 0
	}
}

func (m Model) pageSize() int {
	// conservative estimate: minus header, search, filter bar, status
	pageSize := m.height - 14
	if pageSize < 1 {
		pageSize = 10
	}
	return pageSize
}

// openSelected opens the URL built for the selected row. A row whose
// action is still pending is left alone.
func (m Model) openSelected(build func(*geo.Coordinate) string) (tea.Model, tea.Cmd) {
	r, ok := m.orch.Selected()
	if !ok {
		return m, nil
	}
	url := build(r.Coordinate())
	if url == "" {
		m.notice = "No map location available."
		return m, nil
	}
	if !m.actions.Begin(r.Key()) {
		return m, nil
	}
	m.notice = ""
	return m, openURL(m.open, r.Key(), url)
}

// nearMe starts a geolocation request unless one is in flight.
func (m Model) nearMe() (tea.Model, tea.Cmd) {
	if m.location.State().Status == locate.Locating {
		return m, nil
	}
	m.location.Begin()
	if m.acquirer == nil {
		return m.handleLocateResult(locateResultMsg{result: locate.Result{Reason: locate.NoSupport}})
	}
	return m, acquireLocation(m.acquirer, m.locateOpts)
}

func (m Model) handleAutoRefreshTick() (tea.Model, tea.Cmd) {
	if !m.autoRefresh {
		return m, nil
	}

	// Silently refresh results; keep existing data visible until new data arrives
	return m, tea.Batch(autoRefreshTick(), runSearch(m.orch, m.orch.Refresh()))
}

func (m Model) handleCountdownTick() (tea.Model, tea.Cmd) {
	if !m.autoRefresh {
		return m, nil
	}
	// Schedule next countdown tick
	return m, countdownTick()
}
