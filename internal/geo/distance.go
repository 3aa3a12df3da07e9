package geo

import (
	"fmt"
	"math"
)

// metersThresholdKm is the distance below which labels switch to meters.
const metersThresholdKm = 1.0

// ParseDistance parses a distance in kilometers. Negative or unparseable
// values are absent.
func ParseDistance(v any) (float64, bool) {
	km, ok := ParseFloat(v)
	if !ok || km < 0 {
		return 0, false
	}
	return km, true
}

// FormatDistance renders a distance in kilometers as "500 m" or "1.0 km".
func FormatDistance(km float64) string {
	if km < metersThresholdKm {
		return fmt.Sprintf("%d m", int64(math.Round(km*1000)))
	}
	return fmt.Sprintf("%.1f km", km)
}

// DistanceLabel returns the formatted distance, or "" when v is absent.
func DistanceLabel(v any) string {
	km, ok := ParseDistance(v)
	if !ok {
		return ""
	}
	return FormatDistance(km)
}
