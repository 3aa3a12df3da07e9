package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sokoni-market/sokoni-cli/internal/cache"
	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/models"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 60 * time.Second

	// nearby results go stale as soon as sellers move or open up
	defaultNearbyCacheTTL = 15 * time.Second

	userAgent = "sokoni-cli"
)

// Cache interface for caching HTTP responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Client is the API client for the marketplace backend
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      Cache
	logger     *zap.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client. A nil client is ignored.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL points the client at a different backend
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithCache enables caching with the provided cache implementation
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithDefaultCache enables caching with the default file cache
func WithDefaultCache() ClientOption {
	return func(c *Client) {
		fc, err := cache.NewFileCache(cache.DefaultCacheDir(), defaultCacheTTL,
			cache.WithPathTTL(EndpointSellersNearby, defaultNearbyCacheTTL))
		if err == nil {
			c.cache = fc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: DefaultBaseURL,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", c.baseURL, err)
	}

	return c, nil
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ProductQuery contains parameters for a product listing
type ProductQuery struct {
	Search   string          // Free-text filter
	Location string          // Location text filter
	Near     *geo.Coordinate // Sent as lat/lng when set
	SellerID string          // Restrict to one seller's catalog
}

// ListProducts fetches products matching the query
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]models.Product, error) {
	body, err := c.ListProductsRaw(ctx, q)
	if err != nil {
		return nil, err
	}

	var resp []models.ProductResponse
	if err := decodeList(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse products response: %w", err)
	}

	products := make([]models.Product, 0, len(resp))
	for _, entry := range resp {
		products = append(products, *entry.ToProduct())
	}

	return products, nil
}

// ListProductsRaw fetches products and returns raw JSON
func (c *Client) ListProductsRaw(ctx context.Context, q ProductQuery) (json.RawMessage, error) {
	params := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}
	if l := strings.TrimSpace(q.Location); l != "" {
		params.Set("location", l)
	}
	if q.Near != nil {
		params.Set("lat", formatFloat(q.Near.Lat))
		params.Set("lng", formatFloat(q.Near.Lng))
	}
	if q.SellerID != "" {
		params.Set("seller_id", q.SellerID)
	}

	return c.doRequest(ctx, c.buildURL(EndpointProducts, params))
}

// GetProduct fetches a single product
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	body, err := c.GetProductRaw(ctx, id)
	if err != nil {
		return nil, err
	}

	var resp models.ProductResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}

	return resp.ToProduct(), nil
}

// GetProductRaw fetches a single product and returns raw JSON
func (c *Client) GetProductRaw(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingField("id")
	}
	return c.doRequest(ctx, c.buildURL(EndpointProduct+url.PathEscape(id), nil))
}

// SellerQuery contains parameters for a seller listing
type SellerQuery struct {
	Search string
}

// ListSellers fetches sellers matching the query
func (c *Client) ListSellers(ctx context.Context, q SellerQuery) ([]models.Seller, error) {
	body, err := c.ListSellersRaw(ctx, q)
	if err != nil {
		return nil, err
	}
	return parseSellers(body, "sellers")
}

// ListSellersRaw fetches sellers and returns raw JSON
func (c *Client) ListSellersRaw(ctx context.Context, q SellerQuery) (json.RawMessage, error) {
	params := url.Values{}
	if s := strings.TrimSpace(q.Search); s != "" {
		params.Set("search", s)
	}
	return c.doRequest(ctx, c.buildURL(EndpointSellers, params))
}

// NearbyRequest contains parameters for a nearby seller search
type NearbyRequest struct {
	Latitude  float64 // Latitude (required)
	Longitude float64 // Longitude (required)
	RadiusKm  float64 // Search radius in kilometers (default: 10)
	Limit     int     // Maximum number of results (default: 20)
}

// NearbySellers searches for sellers near a location. Results keep the
// server's distance ordering.
func (c *Client) NearbySellers(ctx context.Context, req NearbyRequest) ([]models.Seller, error) {
	body, err := c.NearbySellersRaw(ctx, req)
	if err != nil {
		return nil, err
	}
	return parseSellers(body, "nearby")
}

// NearbySellersRaw searches for nearby sellers and returns raw JSON
func (c *Client) NearbySellersRaw(ctx context.Context, req NearbyRequest) (json.RawMessage, error) {
	if !(geo.Coordinate{Lat: req.Latitude, Lng: req.Longitude}).InRange() {
		return nil, ErrInvalidValue("coordinate", fmt.Sprintf("%v,%v", req.Latitude, req.Longitude))
	}
	if req.RadiusKm < 0 {
		return nil, ErrInvalidValue("radius", req.RadiusKm)
	}

	radius := req.RadiusKm
	if radius == 0 {
		radius = DefaultRadiusKm
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("latitude", formatFloat(req.Latitude))
	params.Set("longitude", formatFloat(req.Longitude))
	params.Set("radius", formatFloat(radius))
	params.Set("limit", strconv.Itoa(limit))

	return c.doRequest(ctx, c.buildURL(EndpointSellersNearby, params))
}

// GetSeller fetches a single seller
func (c *Client) GetSeller(ctx context.Context, id string) (*models.Seller, error) {
	body, err := c.GetSellerRaw(ctx, id)
	if err != nil {
		return nil, err
	}

	var resp models.SellerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse seller response: %w", err)
	}

	return resp.ToSeller(), nil
}

// GetSellerRaw fetches a single seller and returns raw JSON
func (c *Client) GetSellerRaw(ctx context.Context, id string) (json.RawMessage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrMissingField("id")
	}
	return c.doRequest(ctx, c.buildURL(EndpointSeller+url.PathEscape(id), nil))
}

func parseSellers(body []byte, what string) ([]models.Seller, error) {
	var resp []models.SellerResponse
	if err := decodeList(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", what, err)
	}

	sellers := make([]models.Seller, 0, len(resp))
	for _, entry := range resp {
		sellers = append(sellers, *entry.ToSeller())
	}
	return sellers, nil
}

// decodeList accepts either a bare JSON array or a paginated envelope
// ({"data": [...]}, {"results": [...]}).
func decodeList(body []byte, out any) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Data    json.RawMessage `json:"data"`
			Results json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return err
		}
		switch {
		case len(envelope.Data) > 0:
			trimmed = envelope.Data
		case len(envelope.Results) > 0:
			trimmed = envelope.Results
		default:
			trimmed = []byte("[]")
		}
	}
	return json.Unmarshal(trimmed, out)
}

func (c *Client) buildURL(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return c.baseURL + endpoint
	}
	return c.baseURL + endpoint + "?" + params.Encode()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

type bypassCacheKey struct{}

// BypassCache marks ctx so requests made with it skip cached responses.
// The fresh bodies are still written to the cache.
func BypassCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassCacheKey{}, true)
}

// CacheBypassed reports whether ctx was marked with BypassCache
func CacheBypassed(ctx context.Context) bool {
	bypass, _ := ctx.Value(bypassCacheKey{}).(bool)
	return bypass
}

// doRequest performs an HTTP GET request with optional caching
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	// Check cache first
	if c.cache != nil && !CacheBypassed(ctx) {
		if data, ok := c.cache.Get(reqURL); ok {
			c.logger.Debug("cache hit", zap.String("url", reqURL))
			return data, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Check for context errors
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		c.logger.Warn("request failed", zap.String("url", reqURL), zap.String("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("request completed",
		zap.String("url", reqURL),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, NewAPIErrorFromBody(resp.StatusCode, resp.Status, extractEndpoint(reqURL), body)
	}

	// Store in cache
	if c.cache != nil {
		_ = c.cache.Set(reqURL, body)
	}

	return body, nil
}

// extractEndpoint extracts the endpoint path from a full URL
func extractEndpoint(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	return u.Path
}
