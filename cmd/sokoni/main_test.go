package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sokoni-market/sokoni-cli/internal/config"
	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/locate"
	"github.com/sokoni-market/sokoni-cli/internal/models"
	"github.com/sokoni-market/sokoni-cli/internal/search"
	"github.com/sokoni-market/sokoni-cli/internal/testutil"
)

// withFlags resets the global flags after the test
func withFlags(t *testing.T) {
	t.Helper()
	saved := []any{flagConfig, flagAPIURL, flagLogLevel, flagNoCache, flagAt, flagColor, flagLinks}
	t.Cleanup(func() {
		flagConfig = saved[0].(string)
		flagAPIURL = saved[1].(string)
		flagLogLevel = saved[2].(string)
		flagNoCache = saved[3].(bool)
		flagAt = saved[4].(string)
		flagColor = saved[5].(string)
		flagLinks = saved[6].(bool)
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestParseCoordinateArg(t *testing.T) {
	tests := []struct {
		in      string
		want    geo.Coordinate
		wantErr bool
	}{
		{"-6.163,35.7516", geo.Coordinate{Lat: -6.163, Lng: 35.7516}, false},
		{"-6.163:35.7516", geo.Coordinate{Lat: -6.163, Lng: 35.7516}, false},
		{" 0, 0 ", geo.Coordinate{}, false},
		{"invalid", geo.Coordinate{}, true},
		{"-6.163", geo.Coordinate{}, true},
		{"91,10", geo.Coordinate{}, true},
		{"10,181", geo.Coordinate{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCoordinateArg(tt.in)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNil(t, err)
			testutil.AssertFloatEqual(t, got.Lat, tt.want.Lat, 1e-9)
			testutil.AssertFloatEqual(t, got.Lng, tt.want.Lng, 1e-9)
		})
	}
}

func TestNewProvider(t *testing.T) {
	t.Run("at flag wins", func(t *testing.T) {
		p, err := newProvider(config.GeoConfig{Provider: config.ProviderNone}, "-6.2,35.75")
		testutil.AssertNil(t, err)
		sp, ok := p.(locate.StaticProvider)
		testutil.AssertTrue(t, ok)
		testutil.AssertFloatEqual(t, sp.Coordinate.Lat, -6.2, 1e-9)
	})

	t.Run("bad at flag", func(t *testing.T) {
		_, err := newProvider(config.GeoConfig{}, "nowhere")
		testutil.AssertError(t, err)
	})

	t.Run("none", func(t *testing.T) {
		p, err := newProvider(config.GeoConfig{Provider: config.ProviderNone}, "")
		testutil.AssertNil(t, err)
		testutil.AssertTrue(t, p == nil)
	})

	t.Run("static", func(t *testing.T) {
		p, err := newProvider(config.GeoConfig{Provider: config.ProviderStatic, Static: "-6.1,35.7"}, "")
		testutil.AssertNil(t, err)
		sp, ok := p.(locate.StaticProvider)
		testutil.AssertTrue(t, ok)
		testutil.AssertFloatEqual(t, sp.Coordinate.Lng, 35.7, 1e-9)
	})

	t.Run("ip", func(t *testing.T) {
		p, err := newProvider(config.GeoConfig{Provider: config.ProviderIP, IPURL: "http://127.0.0.1:1/json"}, "")
		testutil.AssertNil(t, err)
		_, ok := p.(*locate.IPProvider)
		testutil.AssertTrue(t, ok)
	})
}

func TestOpenCache_FileCache(t *testing.T) {
	dir := t.TempDir()
	c, closer, err := openCache(context.Background(), config.CacheConfig{Enabled: true, Dir: dir, TTL: time.Minute})
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, closer == nil)

	testutil.AssertNil(t, c.Set("k", []byte("v")))
	got, ok := c.Get("k")
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, string(got), "v")

	testutil.AssertNil(t, c.Clear())
	_, ok = c.Get("k")
	testutil.AssertFalse(t, ok)
}

func TestOpenCache_NearbyTTL(t *testing.T) {
	cfg := config.CacheConfig{Enabled: true, Dir: t.TempDir(), TTL: time.Minute}
	c, _, err := openCache(context.Background(), cfg)
	testutil.AssertNil(t, err)

	products := "http://localhost:8000/products"
	nearby := "http://localhost:8000/sellers/nearby?lat=-6.8&lng=39.28"
	testutil.AssertNil(t, c.Set(products, []byte("[]")))
	testutil.AssertNil(t, c.Set(nearby, []byte("[]")))

	_, ok := c.Get(products)
	testutil.AssertTrue(t, ok)
	_, ok = c.Get(nearby)
	testutil.AssertFalse(t, ok)

	testutil.AssertNil(t, pruneCache(c))
	_, ok = c.Get(products)
	testutil.AssertTrue(t, ok)
}

func TestOpenCache_BadRedisURL(t *testing.T) {
	_, _, err := openCache(context.Background(), config.CacheConfig{RedisURL: "http://localhost:6379", TTL: time.Minute})
	testutil.AssertError(t, err)
}

func TestWriteResultsJSON(t *testing.T) {
	results := []search.Result{
		search.ProductResult(models.Product{ID: "101", Name: "Fresh Tomatoes"}),
		search.SellerResult(models.Seller{ID: "7", Name: "Mama Neema Greens"}),
	}

	var buf bytes.Buffer
	testutil.AssertNil(t, writeResultsJSON(&buf, results))

	var items []map[string]any
	testutil.AssertNil(t, json.Unmarshal(buf.Bytes(), &items))
	testutil.AssertLen(t, items, 2)
	testutil.AssertEqual(t, items[0]["name"].(string), "Fresh Tomatoes")
	testutil.AssertEqual(t, items[1]["name"].(string), "Mama Neema Greens")
}

func TestWriteResultsJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNil(t, writeResultsJSON(&buf, nil))
	testutil.AssertEqual(t, buf.String(), "[]\n")
}

func TestNewApp_SearchesThroughClient(t *testing.T) {
	withFlags(t)

	server := testutil.NewJSONServer(testutil.SampleProductsResponse)
	defer server.Close()

	flagConfig = writeConfig(t, "cache:\n  enabled: false\ngeo:\n  provider: none\n")
	flagAPIURL = server.URL
	flagAt = ""

	a, err := newApp(context.Background(), true)
	testutil.AssertNil(t, err)
	defer func() { _ = a.Close() }()

	testutil.AssertTrue(t, a.cache == nil)
	testutil.AssertEqual(t, a.client.BaseURL(), server.URL)
	testutil.AssertFalse(t, a.acquirer.Supported())

	orch := a.newOrchestrator(search.Products, 0, 0)
	testutil.AssertFloatEqual(t, orch.RadiusKm(), 10, 1e-9)
	testutil.AssertEqual(t, orch.Limit(), 20)

	testutil.AssertNil(t, orch.Run(context.Background(), orch.Refresh()))
	testutil.AssertTrue(t, len(orch.Results()) > 0)
	testutil.AssertEqual(t, orch.Results()[0].Name(), "Fresh Tomatoes")
}

func TestNewApp_AtFlagLocates(t *testing.T) {
	withFlags(t)

	flagConfig = writeConfig(t, "cache:\n  enabled: false\n")
	flagAt = "-6.163,35.7516"

	a, err := newApp(context.Background(), true)
	testutil.AssertNil(t, err)
	defer func() { _ = a.Close() }()

	r := a.acquirer.Acquire(context.Background(), a.cfg.Geo.LocateOptions())
	testutil.AssertTrue(t, r.OK())
	testutil.AssertFloatEqual(t, r.Coordinate.Lat, -6.163, 1e-9)
}

func TestNewApp_FileCacheWired(t *testing.T) {
	withFlags(t)

	dir := t.TempDir()
	flagConfig = writeConfig(t, "cache:\n  enabled: true\n  dir: "+dir+"\ngeo:\n  provider: none\n")
	flagNoCache = false

	a, err := newApp(context.Background(), true)
	testutil.AssertNil(t, err)
	defer func() { _ = a.Close() }()
	testutil.AssertTrue(t, a.cache != nil)

	flagNoCache = true
	b, err := newApp(context.Background(), true)
	testutil.AssertNil(t, err)
	defer func() { _ = b.Close() }()
	testutil.AssertTrue(t, b.cache == nil)
}

func TestNewApp_InvalidConfig(t *testing.T) {
	withFlags(t)

	flagConfig = writeConfig(t, "geo:\n  provider: gps\n")
	_, err := newApp(context.Background(), true)
	testutil.AssertError(t, err)
}
