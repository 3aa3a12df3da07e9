package geo

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	olc "github.com/google/open-location-code/go"
)

const earthRadiusKm = 6371.0

// Coordinate is a validated latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ParseFloat normalizes a loosely typed numeric field (number, numeric
// string, json.Number, raw JSON, pointer or nil) into a finite float.
// The second return value is false when the value is absent or unparseable.
func ParseFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case json.Number:
		return ParseFloat(string(x))
	case json.RawMessage:
		return parseRaw(x)
	case []byte:
		return parseRaw(x)
	case *float64:
		if x == nil {
			return 0, false
		}
		f = *x
	case *string:
		if x == nil {
			return 0, false
		}
		return ParseFloat(*x)
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseRaw(raw []byte) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	return ParseFloat(v)
}

// ParseCoordinate returns a Coordinate only when both components parse.
// A missing component never defaults to zero.
func ParseCoordinate(lat, lng any) (Coordinate, bool) {
	la, ok := ParseFloat(lat)
	if !ok {
		return Coordinate{}, false
	}
	lo, ok := ParseFloat(lng)
	if !ok {
		return Coordinate{}, false
	}
	return Coordinate{Lat: la, Lng: lo}, true
}

// ParsePair parses user-entered text of the form "lat,lng" or "lat:lng".
func ParsePair(s string) (Coordinate, bool) {
	sep := ","
	if !strings.Contains(s, sep) {
		sep = ":"
	}
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return Coordinate{}, false
	}
	return ParseCoordinate(parts[0], parts[1])
}

// Ptr returns a pointer to a copy of c.
func (c Coordinate) Ptr() *Coordinate {
	return &c
}

// InRange reports whether the coordinate lies within WGS84 bounds.
func (c Coordinate) InRange() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// String formats the coordinate as "lat,lng" using the shortest
// representation that parses back to the same values.
func (c Coordinate) String() string {
	return formatDegrees(c.Lat) + "," + formatDegrees(c.Lng)
}

// PlusCode returns the 10-digit Open Location Code for the coordinate.
func (c Coordinate) PlusCode() string {
	return olc.Encode(c.Lat, c.Lng, 10)
}

// Distance returns the great-circle distance in kilometers between a and b.
func Distance(a, b Coordinate) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func formatDegrees(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
