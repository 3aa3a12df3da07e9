package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sokoni-market/sokoni-cli/internal/api"
	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/locate"
	"github.com/sokoni-market/sokoni-cli/internal/models"
	"github.com/sokoni-market/sokoni-cli/internal/output"
	"github.com/sokoni-market/sokoni-cli/internal/search"
	"github.com/sokoni-market/sokoni-cli/internal/tui"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sokoni",
	Short: "CLI for browsing a local marketplace by keyword and location",
	Long: `sokoni is a command-line interface for the Sokoni marketplace API.

Features:
  - Product and seller search by keyword and free-text location
  - "Near me" search using IP geolocation or a fixed coordinate
  - Distance labels (m/km) and map links for every listing
  - Plus codes for places without a street address
  - JSON output for scripting
  - Response caching (file or shared Redis)

Quick Start:
  1. Launch TUI:                 sokoni (or sokoni tui)
  2. Search products:            sokoni products tomatoes
  3. Products near you:          sokoni products tomatoes --near-me
  4. Sellers around a point:     sokoni nearby -6.163,35.7516 --radius 5
  5. Show a shop:                sokoni shop <seller_id>
  6. Where am I?                 sokoni locate
  7. Map links for a point:      sokoni maplink -6.163,35.7516`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is provided, launch TUI
		if len(args) == 0 {
			return runTUI(cmd, args)
		}
		return cmd.Help()
	},
}

// Global flags
var (
	flagJSON     bool
	flagRawJSON  bool
	flagColor    string
	flagNoCache  bool
	flagConfig   string
	flagAPIURL   string
	flagLogLevel string
	flagAt       string
)

// Search flags
var (
	flagLocation string
	flagNearMe   bool
	flagRadius   float64
	flagLimit    int
	flagLinks    bool
	flagWatch    bool
)

// Locate and maplink flags
var (
	flagTimeout      time.Duration
	flagHighAccuracy bool
	flagMaximumAge   time.Duration
	flagZoom         int
	flagOpen         string
	flagExpired      bool
)

func init() {
	// Add subcommands
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(sellersCmd)
	rootCmd.AddCommand(nearbyCmd)
	rootCmd.AddCommand(shopCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(maplinkCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(tuiCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagRawJSON, "raw-json", false, "Output raw API response")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Disable response caching")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ./config.yaml or ~/.config/sokoni/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Marketplace API base URL")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagAt, "at", "", "Use this LAT,LNG as your location instead of geolocation")

	// Search flags
	for _, c := range []*cobra.Command{productsCmd, sellersCmd} {
		c.Flags().StringVarP(&flagLocation, "location", "L", "", "Filter by place name (substring match)")
		c.Flags().BoolVarP(&flagNearMe, "near-me", "n", false, "Search around your current location")
		c.Flags().Float64VarP(&flagRadius, "radius", "r", 0, "Search radius in km (default from config, 10)")
		c.Flags().BoolVar(&flagLinks, "links", false, "Print a directions link under each result")
	}
	sellersCmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum nearby results (default from config, 20)")

	nearbyCmd.Flags().Float64VarP(&flagRadius, "radius", "r", 0, "Search radius in km (default from config, 10)")
	nearbyCmd.Flags().IntVar(&flagLimit, "limit", 0, "Maximum results (default from config, 20)")
	nearbyCmd.Flags().BoolVar(&flagLinks, "links", false, "Print a directions link under each result")
	nearbyCmd.Flags().BoolVarP(&flagWatch, "watch", "w", false, "Watch mode: refresh every 30 seconds")

	// Locate flags
	locateCmd.Flags().DurationVar(&flagTimeout, "timeout", locate.DefaultTimeout, "Give up after this long")
	locateCmd.Flags().BoolVar(&flagHighAccuracy, "high-accuracy", false, "Ask the provider for its most precise fix")
	locateCmd.Flags().DurationVar(&flagMaximumAge, "maximum-age", 0, "Accept a cached fix up to this old")

	// Maplink flags
	maplinkCmd.Flags().IntVarP(&flagZoom, "zoom", "z", geo.DefaultZoom, "Embed zoom level (1-21)")
	maplinkCmd.Flags().StringVar(&flagOpen, "open", "", "Open a link in the browser: embed, search, directions")

	cacheClearCmd.Flags().BoolVar(&flagExpired, "expired", false, "Only remove entries past their lifetime")
}

var productsCmd = &cobra.Command{
	Use:   "products [query]",
	Short: "Search products",
	Long: `Search products by keyword, place name and/or proximity.

Without any filter all products are listed in the order the server returns.

Location:
  --location, -L <place>   Only products whose location mentions <place>
  --near-me, -n            Search around your current location
  --at <lat,lng>           Search around a fixed point (implies --near-me)
  --radius, -r <km>        Drop products farther than <km> (default 10)

Examples:
  sokoni products                          # Everything
  sokoni products tomatoes                 # Keyword search
  sokoni products maize -L Dodoma          # Keyword + place
  sokoni products honey --near-me -r 5     # Within 5 km of you
  sokoni products --at -6.163,35.7516      # Around a point`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd, search.Products, strings.Join(args, " "))
	},
}

var sellersCmd = &cobra.Command{
	Use:   "sellers [query]",
	Short: "Search sellers",
	Long: `Search sellers by name, place name and/or proximity.

With --near-me or --at the nearby endpoint is used and results come back
nearest first, each with its distance.

Examples:
  sokoni sellers                           # Every seller
  sokoni sellers greens                    # Name search
  sokoni sellers -L Majengo                # By place
  sokoni sellers --near-me --radius 2      # Within 2 km of you
  sokoni sellers greens --at -6.2,35.75 --links`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd, search.Sellers, strings.Join(args, " "))
	},
}

var nearbyCmd = &cobra.Command{
	Use:   "nearby [lat,lng]",
	Short: "Show sellers near a location",
	Long: `Show sellers near a geographic location, nearest first.

The location is given as latitude,longitude in decimal degrees. Without it
your current location is looked up.

Watch Mode:
  --watch, -w            Refresh every 30 seconds (full-screen mode)

Examples:
  sokoni nearby -6.163,35.7516
  sokoni nearby -6.163,35.7516 --radius 25 --limit 50
  sokoni nearby --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNearby,
}

var shopCmd = &cobra.Command{
	Use:   "shop <seller_id>",
	Short: "Show a seller and their products",
	Args:  cobra.ExactArgs(1),
	RunE:  runShop,
}

var productCmd = &cobra.Command{
	Use:   "product <product_id>",
	Short: "Show product details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Show your current location",
	Long: `Look up your current location once, using the configured provider
(geo.provider: ip, static or none), and print it with its plus code.

Exits with status 1 when no location could be determined.`,
	Args: cobra.NoArgs,
	RunE: runLocate,
}

var maplinkCmd = &cobra.Command{
	Use:   "maplink <lat,lng>",
	Short: "Print map links for a coordinate",
	Long: `Print the embed, search and directions map URLs for a coordinate.

Examples:
  sokoni maplink -6.163,35.7516
  sokoni maplink -6.163,35.7516 --zoom 17
  sokoni maplink -6.163,35.7516 --open directions`,
	Args: cobra.ExactArgs(1),
	RunE: runMaplink,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the response cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached API responses",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive full-screen TUI",
	Long: `Launch an interactive full-screen terminal UI for browsing
products and sellers with a detail pane and a map.

Keyboard:
  Tab            Cycle focus between panels
  j/k or arrows  Navigate lists
  Enter          Search / select / confirm
  n              Near me
  o / m          Open directions / map for the selected row
  Esc            Go back
  /              Jump to search
  q              Quit`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	orch := a.newOrchestrator(search.Products, 0, 0)
	model := tui.New(orch, tui.Options{
		Acquirer: a.acquirer,
		Locate:   a.cfg.Geo.LocateOptions(),
		Maps:     a.maps,
	})
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// locateOrWarn acquires the current position. Failure is not fatal: the
// reason goes to stderr and the search continues without a coordinate.
func locateOrWarn(ctx context.Context, a *app) *geo.Coordinate {
	r := a.acquirer.Acquire(ctx, a.cfg.Geo.LocateOptions())
	if !r.OK() {
		_, _ = fmt.Fprintf(os.Stderr, "Location unavailable: %s; searching without it\n", r.Reason.Message())
		return nil
	}
	return r.Coordinate
}

func runSearch(cmd *cobra.Command, target search.Target, query string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	orch := a.newOrchestrator(target, flagRadius, flagLimit)
	if flagLocation != "" {
		orch.SetLocationText(flagLocation)
	}
	if query != "" {
		orch.SubmitKeyword(query)
	}
	if flagNearMe || flagAt != "" {
		if c := locateOrWarn(ctx, a); c != nil {
			// the keyword stays as a narrowing filter
			orch.EnterNearby(*c)
		}
	}
	req := orch.Refresh()

	if flagRawJSON {
		raw, err := fetchRaw(ctx, a.client, req)
		if err != nil {
			return err
		}
		return printPrettyJSON(raw)
	}

	if err := orch.Run(ctx, req); err != nil {
		return err
	}

	if flagJSON {
		return writeResultsJSON(os.Stdout, orch.Results())
	}

	opts := a.tableOptions()
	output.RenderSearchHeader(os.Stdout, req, len(orch.Results()), opts)
	output.RenderResults(os.Stdout, orch.Results(), opts)
	return nil
}

// fetchRaw issues the same backend call as req without decoding it
func fetchRaw(ctx context.Context, client *api.Client, req search.Request) ([]byte, error) {
	nearby := req.Mode == search.Nearby && req.Coordinate != nil

	if req.Target == search.Sellers {
		if nearby {
			return client.NearbySellersRaw(ctx, api.NearbyRequest{
				Latitude:  req.Coordinate.Lat,
				Longitude: req.Coordinate.Lng,
				RadiusKm:  req.RadiusKm,
				Limit:     req.Limit,
			})
		}
		return client.ListSellersRaw(ctx, api.SellerQuery{Search: req.Query})
	}

	q := api.ProductQuery{Search: req.Query, Location: req.LocationText}
	if nearby {
		q.Near = req.Coordinate
	}
	return client.ListProductsRaw(ctx, q)
}

// watchInterval matches the TUI auto-refresh
const watchInterval = 30 * time.Second

func runWatch(ctx context.Context, fetchAndRender func(ctx context.Context) error) error {
	return output.NewScreen(os.Stdout).Watch(ctx, watchInterval, os.Stderr, fetchAndRender)
}

func runNearby(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	var center geo.Coordinate
	if len(args) == 1 {
		center, err = parseCoordinateArg(args[0])
		if err != nil {
			return err
		}
	} else {
		r := a.acquirer.Acquire(ctx, a.cfg.Geo.LocateOptions())
		if !r.OK() {
			return fmt.Errorf("location unavailable: %s\nPass a coordinate, e.g. 'sokoni nearby -6.163,35.7516'", r.Reason.Message())
		}
		center = *r.Coordinate
	}

	orch := a.newOrchestrator(search.Sellers, flagRadius, flagLimit)
	req := orch.EnterNearby(center)

	if flagRawJSON {
		raw, err := fetchRaw(ctx, a.client, req)
		if err != nil {
			return err
		}
		return printPrettyJSON(raw)
	}

	render := func(ctx context.Context) error {
		if err := orch.Run(ctx, req); err != nil {
			return err
		}
		opts := a.tableOptions()
		output.RenderSearchHeader(os.Stdout, req, len(orch.Results()), opts)
		output.RenderResults(os.Stdout, orch.Results(), opts)
		return nil
	}

	if flagWatch {
		return runWatch(ctx, func(ctx context.Context) error {
			req = orch.Refresh()
			return render(ctx)
		})
	}

	if flagJSON {
		if err := orch.Run(ctx, req); err != nil {
			return err
		}
		return writeResultsJSON(os.Stdout, orch.Results())
	}

	return render(ctx)
}

func runShop(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sellerID := args[0]

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if flagRawJSON {
		raw, err := a.client.GetSellerRaw(ctx, sellerID)
		if err != nil {
			return err
		}
		return printPrettyJSON(raw)
	}

	var (
		seller   *models.Seller
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		seller, err = a.client.GetSeller(gctx, sellerID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = a.client.ListProducts(gctx, api.ProductQuery{SellerID: sellerID})
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("seller %s not found", sellerID)
		}
		return err
	}

	if flagJSON {
		return writeJSON(os.Stdout, struct {
			Seller   *models.Seller   `json:"seller"`
			Products []models.Product `json:"products"`
		}{seller, products})
	}

	output.RenderShop(os.Stdout, seller, products, a.tableOptions())
	return nil
}

func runProduct(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	productID := args[0]

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if flagRawJSON {
		raw, err := a.client.GetProductRaw(ctx, productID)
		if err != nil {
			return err
		}
		return printPrettyJSON(raw)
	}

	product, err := a.client.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("product %s not found", productID)
		}
		return err
	}

	if flagJSON {
		return writeJSON(os.Stdout, product)
	}

	output.RenderProduct(os.Stdout, product, a.tableOptions())
	return nil
}

// locateJSON is the --json shape of the locate command
type locateJSON struct {
	Coordinate *geo.Coordinate `json:"coordinate,omitempty"`
	PlusCode   string          `json:"plusCode,omitempty"`
	AccuracyM  float64         `json:"accuracyMeters,omitempty"`
	Cached     bool            `json:"cached,omitempty"`
	Error      string          `json:"error,omitempty"`
}

func runLocate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	opts := a.cfg.Geo.LocateOptions()
	if cmd.Flags().Changed("timeout") {
		opts.Timeout = flagTimeout
	}
	if cmd.Flags().Changed("high-accuracy") {
		opts.EnableHighAccuracy = flagHighAccuracy
	}
	if cmd.Flags().Changed("maximum-age") {
		opts.MaximumAge = flagMaximumAge
	}

	r := a.acquirer.Acquire(ctx, opts)

	if flagJSON {
		out := locateJSON{Coordinate: r.Coordinate, AccuracyM: r.Accuracy, Cached: r.Cached}
		if r.OK() {
			out.PlusCode = r.Coordinate.PlusCode()
		} else {
			out.Error = r.Reason.String()
		}
		if err := writeJSON(os.Stdout, out); err != nil {
			return err
		}
	} else if r.OK() {
		output.RenderLocate(os.Stdout, r, a.tableOptions())
	}

	if !r.OK() {
		return fmt.Errorf("location unavailable: %s (%s)", r.Reason.Message(), r.Reason)
	}
	return nil
}

func runMaplink(cmd *cobra.Command, args []string) error {
	c, err := parseCoordinateArg(args[0])
	if err != nil {
		return err
	}

	// maplink needs no API access, only the map settings
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	maps := a.maps
	if cmd.Flags().Changed("zoom") {
		maps = maps.WithZoom(flagZoom)
	}
	links, _ := maps.Links(&c)

	if flagOpen != "" {
		var url string
		switch flagOpen {
		case "embed":
			url = links.Embed
		case "search":
			url = links.Search
		case "directions":
			url = links.Directions
		default:
			return fmt.Errorf("--open must be embed, search or directions, got %q", flagOpen)
		}
		if err := browser.OpenURL(url); err != nil {
			return fmt.Errorf("failed to open browser: %w", err)
		}
	}

	if flagJSON {
		return writeJSON(os.Stdout, struct {
			Coordinate geo.Coordinate `json:"coordinate"`
			PlusCode   string         `json:"plusCode"`
			geo.MapLinks
		}{c, c.PlusCode(), links})
	}

	opts := a.tableOptions()
	opts.Maps = maps
	output.RenderMapLinks(os.Stdout, &c, opts)
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if a.cache == nil {
		return errors.New("caching is disabled")
	}
	if flagExpired {
		return pruneCache(a.cache)
	}
	if err := a.cache.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	fmt.Println("Cache cleared.")
	return nil
}

// pruneCache drops stale entries. Redis expires its keys on its own, so
// only the file cache has anything to do here.
func pruneCache(c responseCache) error {
	p, ok := c.(interface{ Prune() (int, error) })
	if !ok {
		fmt.Println("Nothing to prune: this cache expires entries itself.")
		return nil
	}
	n, err := p.Prune()
	if err != nil {
		return fmt.Errorf("failed to prune cache: %w", err)
	}
	fmt.Printf("Removed %d expired entries.\n", n)
	return nil
}
