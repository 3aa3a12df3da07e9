package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/search"
)

type mapCellType int

const (
	mapCellEmpty mapCellType = iota
	mapCellPath
	mapCellResult
	mapCellSelected
	mapCellUser
)

type mapCell struct {
	ch    rune
	ctype mapCellType
}

type mapPoint struct {
	coord geo.Coordinate
	ctype mapCellType
}

// renderDotMap renders a dots-only map of the results around center. The
// selected result is joined to center by a dotted path and the last row
// carries the horizontal scale.
func renderDotMap(center *geo.Coordinate, results []search.Result, selected, width, height int) string {
	if width < 3 || height < 4 {
		return ""
	}

	var points []mapPoint
	var selectedCoord *geo.Coordinate
	for i, r := range results {
		c := r.Coordinate()
		if c == nil {
			continue
		}
		p := mapPoint{coord: *c, ctype: mapCellResult}
		if i == selected {
			p.ctype = mapCellSelected
			selectedCoord = c
		}
		points = append(points, p)
	}
	if center != nil {
		points = append(points, mapPoint{coord: *center, ctype: mapCellUser})
	}
	if len(points) == 0 {
		return ""
	}

	gridHeight := height - 1

	// Compute bounding box
	minLat, maxLat := points[0].coord.Lat, points[0].coord.Lat
	minLng, maxLng := points[0].coord.Lng, points[0].coord.Lng
	for _, p := range points[1:] {
		minLat = math.Min(minLat, p.coord.Lat)
		maxLat = math.Max(maxLat, p.coord.Lat)
		minLng = math.Min(minLng, p.coord.Lng)
		maxLng = math.Max(maxLng, p.coord.Lng)
	}

	// Handle degenerate cases
	latSpan := maxLat - minLat
	lngSpan := maxLng - minLng
	if latSpan < 0.01 {
		mid := (minLat + maxLat) / 2
		minLat = mid - 0.005
		maxLat = mid + 0.005
		latSpan = 0.01
	}
	if lngSpan < 0.01 {
		mid := (minLng + maxLng) / 2
		minLng = mid - 0.005
		maxLng = mid + 0.005
		lngSpan = 0.01
	}

	// Add 10% padding
	minLat -= latSpan * 0.1
	maxLat += latSpan * 0.1
	minLng -= lngSpan * 0.1
	maxLng += lngSpan * 0.1
	latSpan = maxLat - minLat
	lngSpan = maxLng - minLng

	// Scale factors with terminal aspect ratio correction (chars ~2x tall as wide)
	xScale := float64(width-1) / lngSpan
	yScale := float64(gridHeight-1) / latSpan * 2.0
	scale := math.Min(xScale, yScale)

	// Center the map within the available area
	xOffset := (float64(width-1) - scale*lngSpan) / 2
	yOffset := (float64(gridHeight-1) - scale*latSpan/2.0) / 2

	toGrid := func(c geo.Coordinate) (int, int) {
		col := int(math.Round((c.Lng-minLng)*scale + xOffset))
		row := int(math.Round((maxLat-c.Lat)*scale/2.0 + yOffset))
		return clamp(col, 0, width-1), clamp(row, 0, gridHeight-1)
	}

	grid := make([][]mapCell, gridHeight)
	for r := range grid {
		grid[r] = make([]mapCell, width)
		for c := range grid[r] {
			grid[r][c] = mapCell{ch: ' ', ctype: mapCellEmpty}
		}
	}

	if center != nil && selectedCoord != nil {
		x0, y0 := toGrid(*center)
		x1, y1 := toGrid(*selectedCoord)
		bresenhamLine(grid, x0, y0, x1, y1)
	}

	// Place markers in priority order so the user and the selection stay visible
	for _, want := range []mapCellType{mapCellResult, mapCellSelected, mapCellUser} {
		for _, p := range points {
			if p.ctype != want {
				continue
			}
			col, row := toGrid(p.coord)
			grid[row][col] = mapCell{ch: markerFor(p.ctype), ctype: p.ctype}
		}
	}

	pathStyle := lipgloss.NewStyle().Foreground(colorGray)
	resultStyle := lipgloss.NewStyle().Foreground(colorGray)
	selectedStyle := lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	userStyle := lipgloss.NewStyle().Foreground(colorRed).Bold(true)

	var b strings.Builder
	for r := 0; r < gridHeight; r++ {
		for c := 0; c < width; c++ {
			ch := string(grid[r][c].ch)
			switch grid[r][c].ctype {
			case mapCellPath:
				b.WriteString(pathStyle.Render(ch))
			case mapCellResult:
				b.WriteString(resultStyle.Render(ch))
			case mapCellSelected:
				b.WriteString(selectedStyle.Render(ch))
			case mapCellUser:
				b.WriteString(userStyle.Render(ch))
			default:
				b.WriteString(ch)
			}
		}
		b.WriteString("\n")
	}

	// Scale: ground distance covered by the full map width
	midLat := (minLat + maxLat) / 2
	across := geo.Distance(
		geo.Coordinate{Lat: midLat, Lng: minLng},
		geo.Coordinate{Lat: midLat, Lng: minLng + float64(width-1)/scale},
	)
	b.WriteString(styleMuted.Render(truncate("↔ "+geo.FormatDistance(across), width)))

	return b.String()
}

func markerFor(t mapCellType) rune {
	switch t {
	case mapCellSelected:
		return '●'
	case mapCellUser:
		return '◉'
	}
	return '○'
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// bresenhamLine draws a line between two points on the grid using Bresenham's algorithm.
func bresenhamLine(grid [][]mapCell, x0, y0, x1, y1 int) {
	dx := x1 - x0
	if dx < 0 {
		dx = -dx
	}
	dy := y1 - y0
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx - dy

	for {
		if y0 >= 0 && y0 < len(grid) && x0 >= 0 && x0 < len(grid[y0]) {
			if grid[y0][x0].ctype == mapCellEmpty {
				grid[y0][x0] = mapCell{ch: '·', ctype: mapCellPath}
			}
		}

		if x0 == x1 && y0 == y1 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}
