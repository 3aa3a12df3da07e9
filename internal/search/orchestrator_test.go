package search

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/sokoni-market/sokoni-cli/internal/api"
	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/models"
	"github.com/sokoni-market/sokoni-cli/internal/testutil"
)

type fakeBackend struct {
	products []models.Product
	sellers  []models.Seller
	nearby   []models.Seller
	err      error

	productQueries []api.ProductQuery
	sellerQueries  []api.SellerQuery
	nearbyRequests []api.NearbyRequest
	bypassed       []bool
}

func (f *fakeBackend) ListProducts(ctx context.Context, q api.ProductQuery) ([]models.Product, error) {
	f.productQueries = append(f.productQueries, q)
	return f.products, f.err
}

func (f *fakeBackend) ListSellers(ctx context.Context, q api.SellerQuery) ([]models.Seller, error) {
	f.sellerQueries = append(f.sellerQueries, q)
	return f.sellers, f.err
}

func (f *fakeBackend) NearbySellers(ctx context.Context, req api.NearbyRequest) ([]models.Seller, error) {
	f.nearbyRequests = append(f.nearbyRequests, req)
	f.bypassed = append(f.bypassed, api.CacheBypassed(ctx))
	return f.nearby, f.err
}

func km(v float64) *float64 { return &v }

func coord(lat, lng float64) *geo.Coordinate {
	return &geo.Coordinate{Lat: lat, Lng: lng}
}

var (
	user = geo.Coordinate{Lat: -6.2, Lng: 35.75}

	nearbySellers = []models.Seller{
		{ID: "7", Name: "Mama Neema Greens", City: "Dodoma", Coordinate: coord(-6.199, 35.751), DistanceKm: km(0.12)},
		{ID: "9", Name: "Dodoma Mills", City: "Dodoma", Coordinate: coord(-6.1801, 35.742), DistanceKm: km(2.3)},
		{ID: "12", Name: "Kisasa Crafts", DistanceKm: km(8.05)},
	}
)

func TestNew_Defaults(t *testing.T) {
	o := New(&fakeBackend{})

	testutil.AssertEqual(t, o.Mode(), All)
	testutil.AssertEqual(t, o.Target(), Products)
	testutil.AssertFloatEqual(t, o.RadiusKm(), 10, 0)
	testutil.AssertEqual(t, o.Limit(), 20)
	testutil.AssertEqual(t, o.SelectedIndex(), -1)
	testutil.AssertTrue(t, o.EmbedCoordinate() == nil)
}

func TestSubmitKeyword_EmptyIsNoop(t *testing.T) {
	o := New(&fakeBackend{})

	_, ok := o.SubmitKeyword("   ")

	testutil.AssertFalse(t, ok)
	testutil.AssertEqual(t, o.Mode(), All)
	testutil.AssertFalse(t, o.Loading())
}

func TestSubmitKeyword_FromAll(t *testing.T) {
	fb := &fakeBackend{products: []models.Product{{ID: "1", Name: "Tomatoes"}}}
	o := New(fb)

	req, ok := o.SubmitKeyword(" tomatoes ")
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, req.Mode, KeywordSearch)
	testutil.AssertEqual(t, req.Query, "tomatoes")
	testutil.AssertTrue(t, req.Coordinate == nil)

	testutil.AssertNil(t, o.Run(context.Background(), req))
	testutil.AssertLen(t, fb.productQueries, 1)
	testutil.AssertEqual(t, fb.productQueries[0].Search, "tomatoes")
	testutil.AssertTrue(t, fb.productQueries[0].Near == nil)
	testutil.AssertLen(t, o.Results(), 1)
	testutil.AssertEqual(t, o.SelectedIndex(), -1)
}

func TestSubmitKeyword_InNearbyKeepsNearby(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	testutil.AssertNil(t, o.Run(context.Background(), o.EnterNearby(user)))

	req, ok := o.SubmitKeyword("mills")
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, req.Mode, Nearby)
	testutil.AssertEqual(t, *req.Coordinate, user)

	testutil.AssertNil(t, o.Run(context.Background(), req))
	testutil.AssertEqual(t, o.Mode(), Nearby)
	testutil.AssertLen(t, fb.nearbyRequests, 2)

	// keyword filters the nearby list client-side, order preserved
	testutil.AssertLen(t, o.Results(), 1)
	testutil.AssertEqual(t, o.Results()[0].Name(), "Dodoma Mills")
	testutil.AssertEqual(t, o.SelectedIndex(), 0)
}

func TestSubmitKeyword_AfterClearLocation(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers, sellers: nearbySellers[:1]}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))
	o.Run(context.Background(), o.ClearLocation())
	testutil.AssertEqual(t, o.Mode(), All)

	req, ok := o.SubmitKeyword("greens")
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, req.Mode, KeywordSearch)
	testutil.AssertTrue(t, req.Coordinate == nil)

	o.Run(context.Background(), req)
	testutil.AssertLen(t, fb.sellerQueries, 2)
	testutil.AssertEqual(t, fb.sellerQueries[1].Search, "greens")
}

func TestClearLocation_KeepsKeyword(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))
	o.Run(context.Background(), mustRequest(o.SubmitKeyword("crafts")))
	testutil.AssertEqual(t, o.Mode(), Nearby)
	testutil.AssertEqual(t, o.SelectedIndex(), 0)

	req := o.ClearLocation()
	testutil.AssertEqual(t, req.Mode, KeywordSearch)
	testutil.AssertEqual(t, req.Query, "crafts")
	testutil.AssertTrue(t, req.Coordinate == nil)

	// leaving Nearby clears the selection
	testutil.AssertEqual(t, o.SelectedIndex(), -1)
}

func TestEnterNearby_SelectsFirst(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	req := o.EnterNearby(user)
	testutil.AssertEqual(t, req.Mode, Nearby)
	testutil.AssertTrue(t, o.Loading())

	testutil.AssertNil(t, o.Run(context.Background(), req))
	testutil.AssertFalse(t, o.Loading())

	sel, ok := o.Selected()
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, sel.ID(), models.ID("7"))

	// server order is kept
	testutil.AssertEqual(t, o.Results()[2].Name(), "Kisasa Crafts")

	nr := fb.nearbyRequests[0]
	testutil.AssertFloatEqual(t, nr.Latitude, -6.2, 0)
	testutil.AssertFloatEqual(t, nr.Longitude, 35.75, 0)
	testutil.AssertFloatEqual(t, nr.RadiusKm, 10, 0)
	testutil.AssertEqual(t, nr.Limit, 20)
}

func TestEnterNearby_EmptyResults(t *testing.T) {
	o := New(&fakeBackend{}, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))

	_, ok := o.Selected()
	testutil.AssertFalse(t, ok)
	testutil.AssertEqual(t, *o.EmbedCoordinate(), user)
}

func TestSetRadius(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	// outside Nearby the radius is stored only
	_, ok := o.SetRadius(5)
	testutil.AssertFalse(t, ok)
	testutil.AssertFloatEqual(t, o.RadiusKm(), 5, 0)
	testutil.AssertLen(t, fb.nearbyRequests, 0)

	o.Run(context.Background(), o.EnterNearby(user))

	req, ok := o.SetRadius(25)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, req.Mode, Nearby)
	testutil.AssertEqual(t, *req.Coordinate, user)
	testutil.AssertFloatEqual(t, req.RadiusKm, 25, 0)

	o.Run(context.Background(), req)
	testutil.AssertEqual(t, o.Mode(), Nearby)
	testutil.AssertFloatEqual(t, fb.nearbyRequests[1].RadiusKm, 25, 0)

	_, ok = o.SetRadius(0)
	testutil.AssertFalse(t, ok)
	testutil.AssertFloatEqual(t, o.RadiusKm(), 25, 0)
}

func TestRefresh_KeepsSelectedRow(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	testutil.AssertNil(t, o.Run(context.Background(), o.EnterNearby(user)))
	testutil.AssertTrue(t, o.Select(2))

	req := o.Refresh()
	testutil.AssertTrue(t, req.Fresh)
	testutil.AssertNil(t, o.Run(context.Background(), req))

	testutil.AssertEqual(t, o.SelectedIndex(), 2)
	sel, _ := o.Selected()
	testutil.AssertEqual(t, sel.ID(), models.ID("12"))

	// only the refresh skipped cached responses
	testutil.AssertEqual(t, fb.bypassed[0], false)
	testutil.AssertEqual(t, fb.bypassed[1], true)
}

func TestRefresh_SelectedRowMovesWithIt(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))
	o.Select(1)

	// a seller closer than the selected one appeared
	fb.nearby = []models.Seller{nearbySellers[2], nearbySellers[0], nearbySellers[1]}
	o.Run(context.Background(), o.Refresh())

	testutil.AssertEqual(t, o.SelectedIndex(), 2)
	sel, _ := o.Selected()
	testutil.AssertEqual(t, sel.Name(), "Dodoma Mills")
}

func TestRefresh_SelectedRowGoneFallsBackToFirst(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))
	o.Select(2)

	fb.nearby = nearbySellers[:2]
	o.Run(context.Background(), o.Refresh())

	testutil.AssertEqual(t, o.SelectedIndex(), 0)
}

func TestEnterNearby_AgainSelectsFirst(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))
	o.Select(2)

	// a new position starts over at the nearest result
	o.Run(context.Background(), o.EnterNearby(geo.Coordinate{Lat: -6.18, Lng: 35.74}))
	testutil.AssertEqual(t, o.SelectedIndex(), 0)
}

func TestApply_StaleResponseDropped(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))

	first, _ := o.SetRadius(5)
	second, _ := o.SetRadius(50)

	// responses arrive out of order
	secondResp := Response{Seq: second.Seq, Results: []Result{SellerResult(nearbySellers[2])}}
	firstResp := Response{Seq: first.Seq, Results: []Result{SellerResult(nearbySellers[0])}}

	testutil.AssertTrue(t, o.Apply(secondResp))
	testutil.AssertFalse(t, o.Apply(firstResp))

	testutil.AssertLen(t, o.Results(), 1)
	testutil.AssertEqual(t, o.Results()[0].Name(), "Kisasa Crafts")
	testutil.AssertFloatEqual(t, o.RadiusKm(), 50, 0)
}

func TestApply_PendingUntilLatestArrives(t *testing.T) {
	o := New(&fakeBackend{})

	first := o.Refresh()
	o.Refresh()

	testutil.AssertFalse(t, o.Apply(Response{Seq: first.Seq}))
	testutil.AssertTrue(t, o.Loading())
}

func TestApply_FailureKeepsMode(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.EnterNearby(user))
	testutil.AssertLen(t, o.Results(), 3)

	fb.err = errors.New("connection refused")
	req, _ := o.SetRadius(5)
	err := o.Run(context.Background(), req)

	testutil.AssertError(t, err)
	testutil.AssertEqual(t, o.Mode(), Nearby)
	testutil.AssertLen(t, o.Results(), 0)
	testutil.AssertError(t, o.Err())
	testutil.AssertEqual(t, o.SelectedIndex(), -1)

	// no retry
	testutil.AssertLen(t, fb.nearbyRequests, 2)

	// recovers on the next successful response
	fb.err = nil
	o.Run(context.Background(), o.Refresh())
	testutil.AssertNil(t, o.Err())
	testutil.AssertLen(t, o.Results(), 3)
}

func TestClear(t *testing.T) {
	fb := &fakeBackend{products: []models.Product{{ID: "1"}}}
	o := New(fb)

	o.Run(context.Background(), o.SetLocationText("Dodoma"))
	o.Run(context.Background(), mustRequest(o.SubmitKeyword("maize")))
	o.Run(context.Background(), o.EnterNearby(user))

	req := o.Clear()
	testutil.AssertEqual(t, req.Mode, All)
	testutil.AssertEqual(t, req.Query, "")
	testutil.AssertEqual(t, req.LocationText, "")
	testutil.AssertTrue(t, req.Coordinate == nil)

	o.Run(context.Background(), req)
	last := fb.productQueries[len(fb.productQueries)-1]
	testutil.AssertEqual(t, last, api.ProductQuery{})
}

func TestProducts_NearbyComposesFilters(t *testing.T) {
	fb := &fakeBackend{products: []models.Product{
		{ID: "1", Name: "Near", DistanceKm: km(0.4)},
		{ID: "2", Name: "Unknown distance"},
		{ID: "3", Name: "Far", DistanceKm: km(12.5)},
		{ID: "4", Name: "Edge", DistanceKm: km(10)},
	}}
	o := New(fb)

	o.SetLocationText("Dodoma")
	o.SubmitKeyword("tomatoes")
	req := o.EnterNearby(user)
	testutil.AssertNil(t, o.Run(context.Background(), req))

	q := fb.productQueries[len(fb.productQueries)-1]
	testutil.AssertEqual(t, q.Search, "tomatoes")
	testutil.AssertEqual(t, q.Location, "Dodoma")
	testutil.AssertEqual(t, *q.Near, user)

	names := make([]string, 0, len(o.Results()))
	for _, r := range o.Results() {
		names = append(names, r.Name())
	}
	testutil.AssertLen(t, names, 3)
	testutil.AssertEqual(t, names[0], "Near")
	testutil.AssertEqual(t, names[1], "Unknown distance")
	testutil.AssertEqual(t, names[2], "Edge")
}

func TestSellers_LocationTextFilter(t *testing.T) {
	fb := &fakeBackend{sellers: nearbySellers}
	o := New(fb, WithTarget(Sellers))

	o.Run(context.Background(), o.SetLocationText("dodoma"))

	testutil.AssertEqual(t, o.Mode(), KeywordSearch)
	testutil.AssertLen(t, o.Results(), 2)
}

func TestSetTarget(t *testing.T) {
	fb := &fakeBackend{products: []models.Product{{ID: "1"}}, sellers: nearbySellers}
	o := New(fb)

	o.Run(context.Background(), o.Refresh())
	testutil.AssertLen(t, fb.productQueries, 1)

	req := o.SetTarget(Sellers)
	testutil.AssertEqual(t, req.Target, Sellers)
	o.Run(context.Background(), req)

	testutil.AssertLen(t, fb.sellerQueries, 1)
	testutil.AssertEqual(t, o.Results()[0].Kind(), Sellers)
}

func TestEmbedCoordinate_FallsBackToUser(t *testing.T) {
	fb := &fakeBackend{nearby: nearbySellers}
	o := New(fb, WithTarget(Sellers))
	o.Run(context.Background(), o.EnterNearby(user))

	testutil.AssertEqual(t, *o.EmbedCoordinate(), geo.Coordinate{Lat: -6.199, Lng: 35.751})

	// third seller has no coordinate
	testutil.AssertTrue(t, o.Select(2))
	testutil.AssertEqual(t, *o.EmbedCoordinate(), user)

	testutil.AssertFalse(t, o.Select(3))
	testutil.AssertEqual(t, o.SelectedIndex(), 2)
}

// Near me: acquire, switch to nearby, query the backend, select the first
// seller, and embed its own coordinate.
func TestNearMe_EndToEnd(t *testing.T) {
	ms := testutil.NewMockServer(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(testutil.SampleNearbySellersResponse))
	})
	defer ms.Close()

	client, err := api.NewClient(api.WithBaseURL(ms.URL))
	testutil.AssertNil(t, err)

	o := New(client, WithTarget(Sellers))
	testutil.AssertNil(t, o.Run(context.Background(), o.EnterNearby(user)))

	testutil.AssertEqual(t, o.Mode(), Nearby)
	testutil.AssertEqual(t, ms.LastRequest().URL.Path, "/sellers/nearby")
	testutil.AssertEqual(t, ms.LastRequest().URL.RawQuery, "latitude=-6.2&limit=20&longitude=35.75&radius=10")
	testutil.AssertLen(t, o.Results(), 3)

	sel, ok := o.Selected()
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, sel.Name(), "Mama Neema Greens")

	links, ok := o.MapLinks(geo.NewMapURLBuilder(""))
	testutil.AssertTrue(t, ok)
	testutil.AssertContains(t, links.Embed, "-6.199,35.751")
	testutil.AssertNotContains(t, links.Embed, "-6.2,35.75")

	o.Select(2)
	links, _ = o.MapLinks(geo.NewMapURLBuilder(""))
	testutil.AssertContains(t, links.Embed, "-6.2,35.75")
}

func mustRequest(req Request, ok bool) Request {
	if !ok {
		panic("no request issued")
	}
	return req
}
