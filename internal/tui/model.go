package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/locate"
	"github.com/sokoni-market/sokoni-cli/internal/search"
)

type focusPanel int

const (
	focusSearch focusPanel = iota
	focusFilters
	focusResults
	focusDetail
)

type chipKind int

const (
	chipTarget chipKind = iota
	chipRadius
	chipNearMe
	chipAutoRefresh
	chipClear
)

type chip struct {
	kind   chipKind
	label  string
	target search.Target
	radius float64
}

// chips is the filter bar, left to right
var chips = []chip{
	{kind: chipTarget, label: "Products", target: search.Products},
	{kind: chipTarget, label: "Sellers", target: search.Sellers},
	{kind: chipRadius, label: "1 km", radius: 1},
	{kind: chipRadius, label: "5 km", radius: 5},
	{kind: chipRadius, label: "10 km", radius: 10},
	{kind: chipRadius, label: "25 km", radius: 25},
	{kind: chipRadius, label: "50 km", radius: 50},
	{kind: chipNearMe, label: "Near me"},
	{kind: chipAutoRefresh, label: "Auto-refresh 30s"},
	{kind: chipClear, label: "Clear"},
}

// Options wires the optional collaborators of the TUI
type Options struct {
	Acquirer *locate.Acquirer // nil disables "Near me"
	Locate   locate.Options
	Maps     geo.MapURLBuilder
	Open     func(url string) error // defaults to the system browser
}

// Model is the root Bubble Tea model for the TUI.
type Model struct {
	orch       *search.Orchestrator
	acquirer   *locate.Acquirer
	locateOpts locate.Options
	maps       geo.MapURLBuilder
	open       func(url string) error

	width  int
	height int

	searchInput textinput.Model
	focus       focusPanel
	chipCursor  int

	// Geolocation
	location locate.Tracker

	// Per-row open actions
	actions *search.ActionTracker

	// Auto-refresh
	autoRefresh bool
	lastUpdate  time.Time

	// Move focus to the list when the submitted search lands
	focusResultsOnLoad bool

	detailScroll int
	notice       string
}

// New creates a new TUI model driving orch.
func New(orch *search.Orchestrator, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search products, or type lat,lng..."
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 40

	if opts.Open == nil {
		opts.Open = browser.OpenURL
	}
	if opts.Locate.Timeout == 0 {
		opts.Locate = locate.DefaultOptions()
	}

	return Model{
		orch:        orch,
		acquirer:    opts.Acquirer,
		locateOpts:  opts.Locate,
		maps:        opts.Maps,
		open:        opts.Open,
		searchInput: ti,
		focus:       focusSearch,
		actions:     search.NewActionTracker(),
	}
}

// Init loads the unfiltered catalog and starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, runSearch(m.orch, m.orch.Refresh()))
}

// searchCoordinate is where the map is centered: the search coordinate,
// else the last acquired position.
func (m Model) searchCoordinate() *geo.Coordinate {
	if c := m.orch.Coordinate(); c != nil {
		return c
	}
	return m.location.Coordinate()
}
