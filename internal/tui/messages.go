package tui

import (
	"time"

	"github.com/sokoni-market/sokoni-cli/internal/locate"
	"github.com/sokoni-market/sokoni-cli/internal/search"
)

// autoRefreshTickMsg is sent every 30 seconds when auto-refresh is enabled.
type autoRefreshTickMsg time.Time

// countdownTickMsg is sent every second when auto-refresh is enabled to update countdown display.
type countdownTickMsg time.Time

// searchResultMsg carries a search response back to the model.
// The response Seq is used for stale-result detection.
type searchResultMsg struct {
	resp search.Response
}

// locateResultMsg carries the outcome of a "Near me" acquisition.
type locateResultMsg struct {
	result locate.Result
}

// openResultMsg reports whether a map URL was handed to the browser.
type openResultMsg struct {
	key string
	err error
}
