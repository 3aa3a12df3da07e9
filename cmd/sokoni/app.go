package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/sokoni-market/sokoni-cli/internal/api"
	"github.com/sokoni-market/sokoni-cli/internal/cache"
	"github.com/sokoni-market/sokoni-cli/internal/config"
	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/locate"
	"github.com/sokoni-market/sokoni-cli/internal/logging"
	"github.com/sokoni-market/sokoni-cli/internal/output"
	"github.com/sokoni-market/sokoni-cli/internal/search"
)

// responseCache is a cache the CLI can also wipe
type responseCache interface {
	api.Cache
	Clear() error
}

// app holds everything a command needs, built from config and global flags
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	client   *api.Client
	cache    responseCache
	acquirer *locate.Acquirer
	maps     geo.MapURLBuilder

	closers []func() error
}

// newApp loads configuration and wires the client, cache and geolocation.
// quiet swaps the logger for a no-op one (the TUI owns the terminal).
func newApp(ctx context.Context, quiet bool) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	logger := zap.NewNop()
	if !quiet {
		logger, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return nil, err
		}
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		maps:   cfg.Map.Builder(),
	}

	opts := []api.ClientOption{
		api.WithBaseURL(cfg.API.BaseURL),
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	}

	if cfg.Cache.Enabled && !flagNoCache {
		c, closer, err := openCache(ctx, cfg.Cache)
		if err != nil {
			// Caching is an optimization; run without it
			logger.Warn("response cache disabled", zap.Error(err))
		} else {
			a.cache = c
			if closer != nil {
				a.closers = append(a.closers, closer)
			}
			opts = append(opts, api.WithCache(c))
		}
	}

	a.client, err = api.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	provider, err := newProvider(cfg.Geo, flagAt)
	if err != nil {
		return nil, err
	}
	a.acquirer = locate.New(provider, locate.WithLogger(logger))

	return a, nil
}

// Close releases the cache connection and flushes the logger
func (a *app) Close() error {
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c())
	}
	// Sync on stderr fails on some terminals; nothing to report there
	_ = a.logger.Sync()
	return err
}

// openCache picks Redis when a URL is configured, else the file cache.
// Nearby searches get their own, shorter lifetime.
func openCache(ctx context.Context, cfg config.CacheConfig) (responseCache, func() error, error) {
	opts := []cache.Option{cache.WithPathTTL(api.EndpointSellersNearby, cfg.NearbyTTL)}

	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, cfg.TTL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return rc, rc.Close, nil
	}

	dir := cfg.Dir
	if dir == "" {
		dir = cache.DefaultCacheDir()
	}
	fc, err := cache.NewFileCache(dir, cfg.TTL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("cache dir %s: %w", dir, err)
	}
	return fc, nil, nil
}

// newProvider builds the geolocation provider. A coordinate passed with
// --at always wins over the configured provider.
func newProvider(cfg config.GeoConfig, at string) (locate.Provider, error) {
	if at != "" {
		c, err := parseCoordinateArg(at)
		if err != nil {
			return nil, err
		}
		return locate.StaticProvider{Coordinate: c}, nil
	}

	switch cfg.Provider {
	case config.ProviderNone:
		return nil, nil
	case config.ProviderStatic:
		c, _ := cfg.StaticCoordinate()
		return locate.StaticProvider{Coordinate: c}, nil
	}
	return locate.NewIPProvider(cfg.IPURL, nil), nil
}

// newOrchestrator creates a search over the app's client with the
// configured radius and limit, overridden by flags
func (a *app) newOrchestrator(target search.Target, radiusKm float64, limit int) *search.Orchestrator {
	if radiusKm <= 0 {
		radiusKm = a.cfg.Search.RadiusKm
	}
	if limit <= 0 {
		limit = a.cfg.Search.Limit
	}
	return search.New(a.client,
		search.WithTarget(target),
		search.WithRadius(radiusKm),
		search.WithLimit(limit),
		search.WithLogger(a.logger),
	)
}

func (a *app) tableOptions() output.TableOptions {
	return output.TableOptions{
		Colors:    output.NewColors(getColorMode()),
		ShowLinks: flagLinks,
		Maps:      a.maps,
	}
}

// parseCoordinateArg parses "lat,lng" (or "lat:lng") and checks the range
func parseCoordinateArg(s string) (geo.Coordinate, error) {
	c, ok := geo.ParsePair(s)
	if !ok {
		return geo.Coordinate{}, fmt.Errorf("coordinates must be in format LAT,LNG (e.g., -6.163,35.7516), got %q", s)
	}
	if !c.InRange() {
		return geo.Coordinate{}, fmt.Errorf("coordinates out of range: %s", c)
	}
	return c, nil
}

// getColorMode returns the color mode based on flag
func getColorMode() output.ColorMode {
	return output.ParseColorMode(flagColor)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeResultsJSON encodes the rows as a plain array of products or sellers
func writeResultsJSON(w io.Writer, results []search.Result) error {
	items := make([]any, 0, len(results))
	for _, r := range results {
		switch {
		case r.Product != nil:
			items = append(items, r.Product)
		case r.Seller != nil:
			items = append(items, r.Seller)
		}
	}
	return writeJSON(w, items)
}

func printPrettyJSON(data []byte) error {
	var prettyJSON any
	if err := json.Unmarshal(data, &prettyJSON); err != nil {
		// If we can't parse it, just print raw
		fmt.Println(string(data))
		return err
	}
	return writeJSON(os.Stdout, prettyJSON)
}
