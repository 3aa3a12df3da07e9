package geo

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultMapBaseURL is the web map service used for outbound links.
	DefaultMapBaseURL = "https://www.google.com/maps"

	// DefaultZoom is the embed zoom level used when none is configured.
	DefaultZoom = 15

	MinZoom = 1
	MaxZoom = 21
)

// MapLinks holds the three outbound URLs for a coordinate.
type MapLinks struct {
	Embed      string `json:"embed"`
	Search     string `json:"search"`
	Directions string `json:"directions"`
}

// MapURLBuilder builds map URLs for a single map service.
type MapURLBuilder struct {
	BaseURL string
	Zoom    int
}

// NewMapURLBuilder returns a builder for baseURL (DefaultMapBaseURL when
// empty) at DefaultZoom.
func NewMapURLBuilder(baseURL string) MapURLBuilder {
	if baseURL == "" {
		baseURL = DefaultMapBaseURL
	}
	return MapURLBuilder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Zoom:    DefaultZoom,
	}
}

// WithZoom returns a copy of the builder using zoom, clamped to 1..21.
func (b MapURLBuilder) WithZoom(zoom int) MapURLBuilder {
	if zoom < MinZoom {
		zoom = MinZoom
	}
	if zoom > MaxZoom {
		zoom = MaxZoom
	}
	b.Zoom = zoom
	return b
}

func (b MapURLBuilder) base() string {
	if b.BaseURL == "" {
		return DefaultMapBaseURL
	}
	return strings.TrimRight(b.BaseURL, "/")
}

// zoom also guards builders assembled as struct literals
func (b MapURLBuilder) zoom() int {
	switch {
	case b.Zoom == 0:
		return DefaultZoom
	case b.Zoom < MinZoom:
		return MinZoom
	case b.Zoom > MaxZoom:
		return MaxZoom
	}
	return b.Zoom
}

// EmbedURL returns an inline preview URL that needs no API key, or "" for
// an absent coordinate.
func (b MapURLBuilder) EmbedURL(c *Coordinate) string {
	if c == nil {
		return ""
	}
	params := url.Values{}
	params.Set("q", c.String())
	params.Set("z", strconv.Itoa(b.zoom()))
	params.Set("output", "embed")
	return b.base() + "?" + encode(params)
}

// SearchURL opens the map centered on the coordinate.
func (b MapURLBuilder) SearchURL(c *Coordinate) string {
	if c == nil {
		return ""
	}
	params := url.Values{}
	params.Set("api", "1")
	params.Set("query", c.String())
	return b.base() + "/search/?" + encode(params)
}

// DirectionsURL opens navigation with the coordinate as destination.
func (b MapURLBuilder) DirectionsURL(c *Coordinate) string {
	if c == nil {
		return ""
	}
	params := url.Values{}
	params.Set("api", "1")
	params.Set("destination", c.String())
	return b.base() + "/dir/?" + encode(params)
}

// Links returns all three URLs, or false for an absent coordinate.
func (b MapURLBuilder) Links(c *Coordinate) (MapLinks, bool) {
	if c == nil {
		return MapLinks{}, false
	}
	return MapLinks{
		Embed:      b.EmbedURL(c),
		Search:     b.SearchURL(c),
		Directions: b.DirectionsURL(c),
	}, true
}

// encode keeps the "lat,lng" separator readable; map services accept both
// the literal and the escaped comma.
func encode(params url.Values) string {
	return strings.ReplaceAll(params.Encode(), "%2C", ",")
}
