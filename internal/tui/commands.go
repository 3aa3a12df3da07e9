package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sokoni-market/sokoni-cli/internal/locate"
	"github.com/sokoni-market/sokoni-cli/internal/search"
)

const (
	apiTimeout          = 5 * time.Second
	autoRefreshInterval = 30 * time.Second
)

// autoRefreshTick returns a tea.Cmd that sends a tick after the refresh interval.
func autoRefreshTick() tea.Cmd {
	return tea.Tick(autoRefreshInterval, func(t time.Time) tea.Msg {
		return autoRefreshTickMsg(t)
	})
}

// countdownTick returns a tea.Cmd that sends a tick every second for countdown display.
func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

// runSearch returns a tea.Cmd that executes req off the UI goroutine.
func runSearch(orch *search.Orchestrator, req search.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()

		return searchResultMsg{resp: orch.Execute(ctx, req)}
	}
}

// acquireLocation returns a tea.Cmd that asks for the current position once.
// The acquirer enforces opts.Timeout itself.
func acquireLocation(a *locate.Acquirer, opts locate.Options) tea.Cmd {
	return func() tea.Msg {
		return locateResultMsg{result: a.Acquire(context.Background(), opts)}
	}
}

// openURL returns a tea.Cmd that opens url in the browser.
func openURL(open func(string) error, key, url string) tea.Cmd {
	return func() tea.Msg {
		return openResultMsg{key: key, err: open(url)}
	}
}
