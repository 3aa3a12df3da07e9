package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sokoni-market/sokoni-cli/internal/api"
	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/models"
)

// Mode determines which filters are sent to the backend
type Mode int

const (
	All Mode = iota
	KeywordSearch
	Nearby
)

func (m Mode) String() string {
	switch m {
	case All:
		return "all"
	case KeywordSearch:
		return "keyword_search"
	case Nearby:
		return "nearby"
	}
	return "unknown"
}

// Backend is the subset of the REST client the orchestrator needs
type Backend interface {
	ListProducts(ctx context.Context, q api.ProductQuery) ([]models.Product, error)
	ListSellers(ctx context.Context, q api.SellerQuery) ([]models.Seller, error)
	NearbySellers(ctx context.Context, req api.NearbyRequest) ([]models.Seller, error)
}

// Request is a snapshot of the search state at the time it was issued
type Request struct {
	Seq          uint64
	Target       Target
	Mode         Mode
	Query        string
	LocationText string
	Coordinate   *geo.Coordinate
	RadiusKm     float64
	Limit        int

	// Fresh asks the backend to skip cached responses (Refresh)
	Fresh bool
}

// Response carries the outcome of a Request
type Response struct {
	Seq     uint64
	Results []Result
	Err     error
}

// Orchestrator is the search state machine. Its methods are not
// synchronized; only Execute may run off the owning goroutine.
type Orchestrator struct {
	backend Backend
	logger  *zap.Logger

	target       Target
	mode         Mode
	query        string
	locationText string
	coord        *geo.Coordinate
	radiusKm     float64
	limit        int

	results  []Result
	selected int
	err      error
	loading  bool
	seq      uint64

	// set by EnterNearby: the next applied response selects row 0
	selectFirst bool
}

// Option configures the Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRadius sets the initial radius in kilometers
func WithRadius(km float64) Option {
	return func(o *Orchestrator) {
		if km > 0 {
			o.radiusKm = km
		}
	}
}

// WithLimit sets the nearby result limit
func WithLimit(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.limit = n
		}
	}
}

// WithTarget sets the initial catalog
func WithTarget(t Target) Option {
	return func(o *Orchestrator) {
		o.target = t
	}
}

// New creates an Orchestrator in mode All
func New(backend Backend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:  backend,
		logger:   zap.NewNop(),
		radiusKm: api.DefaultRadiusKm,
		limit:    api.DefaultLimit,
		selected: -1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) Mode() Mode                  { return o.mode }
func (o *Orchestrator) Target() Target              { return o.target }
func (o *Orchestrator) Query() string               { return o.query }
func (o *Orchestrator) LocationText() string        { return o.locationText }
func (o *Orchestrator) Coordinate() *geo.Coordinate { return o.coord }
func (o *Orchestrator) RadiusKm() float64           { return o.radiusKm }
func (o *Orchestrator) Limit() int                  { return o.limit }
func (o *Orchestrator) Results() []Result           { return o.results }
func (o *Orchestrator) Err() error                  { return o.err }
func (o *Orchestrator) Loading() bool               { return o.loading }
func (o *Orchestrator) SelectedIndex() int          { return o.selected }

// Selected returns the selected result, if any
func (o *Orchestrator) Selected() (Result, bool) {
	if o.selected < 0 || o.selected >= len(o.results) {
		return Result{}, false
	}
	return o.results[o.selected], true
}

// Select designates result i. Out-of-range indexes are rejected.
func (o *Orchestrator) Select(i int) bool {
	if i < 0 || i >= len(o.results) {
		return false
	}
	o.selected = i
	return true
}

// Refresh re-issues the current search, bypassing cached responses. The
// selected row survives when it is still in the new results.
func (o *Orchestrator) Refresh() Request {
	req := o.issue()
	req.Fresh = true
	return req
}

// SubmitKeyword applies a text query. An empty query is a no-op. While in
// Nearby with a coordinate the keyword narrows the proximity search;
// otherwise the mode becomes KeywordSearch.
func (o *Orchestrator) SubmitKeyword(q string) (Request, bool) {
	q = strings.TrimSpace(q)
	if q == "" {
		return Request{}, false
	}

	o.query = q
	if !(o.mode == Nearby && o.coord != nil) {
		o.setMode(KeywordSearch)
	}
	return o.issue(), true
}

// EnterNearby switches to proximity search around c
func (o *Orchestrator) EnterNearby(c geo.Coordinate) Request {
	o.coord = c.Ptr()
	o.setMode(Nearby)
	req := o.issue()
	o.selectFirst = true
	return req
}

// SetRadius changes the radius. Only Nearby re-issues the search.
func (o *Orchestrator) SetRadius(km float64) (Request, bool) {
	if km <= 0 {
		return Request{}, false
	}
	o.radiusKm = km
	if o.mode != Nearby {
		return Request{}, false
	}
	return o.issue(), true
}

// SetLocationText sets the free-text location filter
func (o *Orchestrator) SetLocationText(s string) Request {
	o.locationText = strings.TrimSpace(s)
	if o.mode == All && o.locationText != "" {
		o.setMode(KeywordSearch)
	}
	return o.issue()
}

// SetTarget switches catalog, keeping the current filters
func (o *Orchestrator) SetTarget(t Target) Request {
	o.target = t
	o.results = nil
	o.selected = -1
	return o.issue()
}

// ClearLocation drops the coordinate, falling back to the text filters
func (o *Orchestrator) ClearLocation() Request {
	o.coord = nil
	if o.query != "" || o.locationText != "" {
		o.setMode(KeywordSearch)
	} else {
		o.setMode(All)
	}
	return o.issue()
}

// Clear drops every filter and returns to All
func (o *Orchestrator) Clear() Request {
	o.query = ""
	o.locationText = ""
	o.coord = nil
	o.setMode(All)
	return o.issue()
}

func (o *Orchestrator) setMode(m Mode) {
	if o.mode == Nearby && m != Nearby {
		o.selected = -1
	}
	o.mode = m
}

func (o *Orchestrator) issue() Request {
	o.seq++
	o.loading = true
	o.selectFirst = false

	req := Request{
		Seq:          o.seq,
		Target:       o.target,
		Mode:         o.mode,
		Query:        o.query,
		LocationText: o.locationText,
		RadiusKm:     o.radiusKm,
		Limit:        o.limit,
	}
	if o.coord != nil {
		req.Coordinate = o.coord.Ptr()
	}
	return req
}

// Execute performs the backend call for req. It reads only req and the
// backend, so it may run in a goroutine.
func (o *Orchestrator) Execute(ctx context.Context, req Request) Response {
	o.logger.Debug("search",
		zap.Uint64("seq", req.Seq),
		zap.Stringer("target", req.Target),
		zap.Stringer("mode", req.Mode),
		zap.String("query", req.Query),
	)

	if req.Fresh {
		ctx = api.BypassCache(ctx)
	}

	var (
		results []Result
		err     error
	)
	switch req.Target {
	case Products:
		results, err = o.searchProducts(ctx, req)
	case Sellers:
		results, err = o.searchSellers(ctx, req)
	default:
		err = fmt.Errorf("unknown search target %d", req.Target)
	}

	if err != nil {
		o.logger.Warn("search failed", zap.Uint64("seq", req.Seq), zap.Error(err))
	}
	return Response{Seq: req.Seq, Results: results, Err: err}
}

func (o *Orchestrator) searchProducts(ctx context.Context, req Request) ([]Result, error) {
	q := api.ProductQuery{
		Search:   req.Query,
		Location: req.LocationText,
	}
	nearby := req.Mode == Nearby && req.Coordinate != nil
	if nearby {
		q.Near = req.Coordinate
	}

	products, err := o.backend.ListProducts(ctx, q)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(products))
	for _, p := range products {
		// The products endpoint takes no radius, so it is applied here.
		// Rows without a distance stay.
		if nearby && p.DistanceKm != nil && *p.DistanceKm > req.RadiusKm {
			continue
		}
		results = append(results, ProductResult(p))
	}
	return results, nil
}

func (o *Orchestrator) searchSellers(ctx context.Context, req Request) ([]Result, error) {
	var (
		sellers []models.Seller
		err     error
	)
	if req.Mode == Nearby && req.Coordinate != nil {
		sellers, err = o.backend.NearbySellers(ctx, api.NearbyRequest{
			Latitude:  req.Coordinate.Lat,
			Longitude: req.Coordinate.Lng,
			RadiusKm:  req.RadiusKm,
			Limit:     req.Limit,
		})
	} else {
		sellers, err = o.backend.ListSellers(ctx, api.SellerQuery{Search: req.Query})
	}
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(sellers))
	for _, s := range sellers {
		// The nearby endpoint has no text filter
		if req.Mode == Nearby && !containsFold(s.Name, req.Query) {
			continue
		}
		if !containsFold(s.Place(), req.LocationText) {
			continue
		}
		results = append(results, SellerResult(s))
	}
	return results, nil
}

// Apply installs resp if it answers the latest request. Stale responses
// are dropped and Apply returns false.
func (o *Orchestrator) Apply(resp Response) bool {
	if resp.Seq != o.seq {
		o.logger.Debug("dropping stale response", zap.Uint64("seq", resp.Seq), zap.Uint64("latest", o.seq))
		return false
	}

	selectFirst := o.selectFirst
	o.selectFirst = false
	o.loading = false
	if resp.Err != nil {
		o.results = nil
		o.err = resp.Err
		o.selected = -1
		return true
	}

	prev, hadPrev := o.Selected()
	o.results = resp.Results
	o.err = nil
	o.selected = -1

	if hadPrev && !selectFirst {
		key := prev.Key()
		for i, r := range o.results {
			if r.Key() == key {
				o.selected = i
				return true
			}
		}
	}
	if o.mode == Nearby && len(o.results) > 0 {
		o.selected = 0
	}
	return true
}

// Run executes req and applies the response
func (o *Orchestrator) Run(ctx context.Context, req Request) error {
	resp := o.Execute(ctx, req)
	o.Apply(resp)
	return resp.Err
}

// EmbedCoordinate picks the coordinate a map preview should show: the
// selected result's own location, else the search coordinate.
func (o *Orchestrator) EmbedCoordinate() *geo.Coordinate {
	if r, ok := o.Selected(); ok {
		if c := r.Coordinate(); c != nil {
			return c
		}
	}
	return o.coord
}

// MapLinks builds the map URLs for EmbedCoordinate
func (o *Orchestrator) MapLinks(b geo.MapURLBuilder) (geo.MapLinks, bool) {
	return b.Links(o.EmbedCoordinate())
}

func containsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
