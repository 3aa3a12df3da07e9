package locate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
)

const (
	// DefaultIPURL is an ip-api.com compatible lookup endpoint
	DefaultIPURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country"

	// ipAccuracyMeters is the rough radius of a city-level IP fix
	ipAccuracyMeters = 5000
)

// IPProvider estimates the position from the public IP address
type IPProvider struct {
	httpClient *http.Client
	url        string
}

// NewIPProvider creates an IP lookup provider. An empty url uses DefaultIPURL.
func NewIPProvider(url string, hc *http.Client) *IPProvider {
	if url == "" {
		url = DefaultIPURL
	}
	if hc == nil {
		hc = &http.Client{}
	}
	return &IPProvider{httpClient: hc, url: url}
}

type ipResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Lat     any    `json:"lat"`
	Lon     any    `json:"lon"`
}

// CurrentPosition performs one lookup. IP lookups have no high-accuracy
// mode; the reported accuracy stays city-level either way.
func (p *IPProvider) CurrentPosition(ctx context.Context, _ Options) (Position, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return Position{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Position{}, ctx.Err()
		}
		return Position{}, &PositionError{Code: CodePositionUnavailable, Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Position{}, &PositionError{Code: CodePermissionDenied, Message: resp.Status}
	case resp.StatusCode != http.StatusOK:
		return Position{}, &PositionError{Code: CodePositionUnavailable, Message: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Position{}, &PositionError{Code: CodePositionUnavailable, Message: err.Error()}
	}

	var r ipResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return Position{}, &PositionError{Code: CodePositionUnavailable, Message: "malformed lookup response"}
	}
	if r.Status != "" && r.Status != "success" {
		return Position{}, &PositionError{Code: CodePositionUnavailable, Message: r.Message}
	}

	c, ok := geo.ParseCoordinate(r.Lat, r.Lon)
	if !ok {
		return Position{}, &PositionError{Code: CodePositionUnavailable, Message: "lookup returned no coordinate"}
	}

	return Position{
		Coordinate: c,
		Accuracy:   ipAccuracyMeters,
		Timestamp:  time.Now(),
	}, nil
}
