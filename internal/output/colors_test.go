package output

import (
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sokoni-market/sokoni-cli/internal/testutil"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input string
		want  ColorMode
	}{
		{"always", ColorAlways},
		{"never", ColorNever},
		{"auto", ColorAuto},
		{"", ColorAuto},        // default
		{"invalid", ColorAuto}, // default
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseColorMode(tt.input)
			testutil.AssertEqual(t, got, tt.want)
		})
	}
}

func TestNewColors_NeverMode(t *testing.T) {
	// Save and restore color state
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	testutil.AssertEqual(t, c.Name("Mama Neema Greens"), "Mama Neema Greens")
	testutil.AssertEqual(t, c.Price("TZS 2500"), "TZS 2500")
	testutil.AssertEqual(t, c.Near("120 m"), "120 m")
	testutil.AssertEqual(t, c.Mid("2.3 km"), "2.3 km")
	testutil.AssertEqual(t, c.Far("12.4 km"), "12.4 km")
	testutil.AssertEqual(t, c.Place("Dodoma"), "Dodoma")
	testutil.AssertEqual(t, c.Rating("★ 4.6"), "★ 4.6")
	testutil.AssertEqual(t, c.Link("https://maps.example.org"), "https://maps.example.org")
	testutil.AssertEqual(t, c.Error("timeout"), "timeout")
	testutil.AssertEqual(t, c.Header("Sellers"), "Sellers")
	testutil.AssertEqual(t, c.Muted("details"), "details")
}

func TestNewColors_AlwaysMode(t *testing.T) {
	c := NewColors(ColorAlways)

	result := c.Name("Dodoma Mills")
	testutil.AssertContains(t, result, "\033[")
	testutil.AssertContains(t, result, "Dodoma Mills")

	result = c.Error("failed")
	testutil.AssertContains(t, result, "\033[")
	testutil.AssertContains(t, result, "failed")
}

func TestFormatDistance_NoColor(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	near, mid, far := 0.12, 2.3, 12.4

	tests := []struct {
		name  string
		km    *float64
		label string
		want  string
	}{
		{"unknown", nil, "", "        "},
		{"near", &near, "120 m", "   120 m"},
		{"mid", &mid, "2.3 km", "  2.3 km"},
		{"far", &far, "12.4 km", " 12.4 km"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.FormatDistance(tt.km, tt.label)
			testutil.AssertEqual(t, got, tt.want)
			testutil.AssertEqual(t, len(got), 8)
		})
	}
}

func TestFormatDistance_WithColor(t *testing.T) {
	c := NewColors(ColorAlways)

	near := 0.5
	got := c.FormatDistance(&near, "500 m")
	testutil.AssertContains(t, got, "\033[")
	testutil.AssertEqual(t, stripANSI(got), "   500 m")

	testutil.AssertNotContains(t, c.FormatDistance(nil, ""), "\033[")
}

func TestColors_Sprintf(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()
	color.NoColor = true

	c := NewColors(ColorNever)

	testutil.AssertEqual(t, c.Rating("★ %.1f", 4.6), "★ 4.6")
	testutil.AssertEqual(t, c.Price("%s %d", "TZS", 1800), "TZS 1800")
}

// Helper functions

func stripANSI(s string) string {
	// Simple ANSI stripper for testing
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
