package output

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

// Colors holds the color functions for different output types
type Colors struct {
	Name   func(format string, a ...interface{}) string
	Price  func(format string, a ...interface{}) string
	Near   func(format string, a ...interface{}) string
	Mid    func(format string, a ...interface{}) string
	Far    func(format string, a ...interface{}) string
	Place  func(format string, a ...interface{}) string
	Rating func(format string, a ...interface{}) string
	Link   func(format string, a ...interface{}) string
	Error  func(format string, a ...interface{}) string
	Header func(format string, a ...interface{}) string
	Muted  func(format string, a ...interface{}) string
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false // Force colors on
	case ColorNever:
		useColors = false
	case ColorAuto:
		useColors = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	if !useColors {
		noColor := func(format string, a ...interface{}) string {
			if len(a) == 0 {
				return format
			}
			return color.New().Sprintf(format, a...)
		}
		return &Colors{
			Name:   noColor,
			Price:  noColor,
			Near:   noColor,
			Mid:    noColor,
			Far:    noColor,
			Place:  noColor,
			Rating: noColor,
			Link:   noColor,
			Error:  noColor,
			Header: noColor,
			Muted:  noColor,
		}
	}

	return &Colors{
		Name:   color.New(color.FgCyan, color.Bold).SprintfFunc(),
		Price:  color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Near:   color.New(color.FgGreen).SprintfFunc(),
		Mid:    color.New(color.FgYellow).SprintfFunc(),
		Far:    color.New(color.FgRed).SprintfFunc(),
		Place:  color.New(color.FgMagenta).SprintfFunc(),
		Rating: color.New(color.FgYellow).SprintfFunc(),
		Link:   color.New(color.FgBlue, color.Underline).SprintfFunc(),
		Error:  color.New(color.FgRed, color.Bold).SprintfFunc(),
		Header: color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Muted:  color.New(color.FgHiBlack).SprintfFunc(),
	}
}

// FormatDistance colors a distance label by proximity (fixed 8-char width).
// Unknown distances render as blanks so columns stay aligned.
func (c *Colors) FormatDistance(km *float64, label string) string {
	if km == nil || label == "" {
		return "        " // 8 spaces for alignment
	}
	switch {
	case *km < 1:
		return c.Near("%8s", label)
	case *km <= 10:
		return c.Mid("%8s", label)
	}
	return c.Far("%8s", label)
}

// ParseColorMode parses a color mode string
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}
