package tui

import (
	"fmt"
	"strings"

	"github.com/sokoni-market/sokoni-cli/internal/search"
)

// renderDetail renders the selected result with its map links and action state.
func (m Model) renderDetail(width, height int) string {
	titleStr := styleHeader.Render("DETAILS")

	r, ok := m.orch.Selected()
	if !ok {
		return titleStr + "\n" + styleMuted.Render(" Select a result to see details")
	}

	lines := m.detailLines(r, width)

	maxVisible := height - 1
	if maxVisible < 1 {
		maxVisible = 1
	}
	start := m.detailScroll
	if start > len(lines)-maxVisible {
		start = len(lines) - maxVisible
	}
	if start < 0 {
		start = 0
	}
	end := start + maxVisible
	if end > len(lines) {
		end = len(lines)
	}

	return titleStr + "\n" + strings.Join(lines[start:end], "\n")
}

func (m Model) detailLines(r search.Result, width int) []string {
	field := func(label, value string) string {
		return " " + styleMuted.Render(fmt.Sprintf("%-11s", label)) + truncate(value, width-13)
	}

	var lines []string
	name := styleName.Render(truncate(r.Name(), width-2))
	if r.Product != nil && r.Product.Price != nil {
		name += " " + stylePrice.Render(r.Product.PriceLabel())
	}
	lines = append(lines, " "+name)

	switch {
	case r.Product != nil:
		p := r.Product
		if p.Description != "" {
			lines = append(lines, " "+truncate(p.Description, width-2))
		}
		if p.Category != "" {
			lines = append(lines, field("Category", p.Category))
		}
		if seller := p.SellerName(); seller != "" {
			lines = append(lines, field("Seller", seller))
		}
	case r.Seller != nil:
		s := r.Seller
		if s.Description != "" {
			lines = append(lines, " "+truncate(s.Description, width-2))
		}
		if s.Rating != nil {
			lines = append(lines, " "+styleMuted.Render(fmt.Sprintf("%-11s", "Rating"))+styleRating.Render(fmt.Sprintf("★ %.1f", *s.Rating)))
		}
		if s.Phone != "" {
			lines = append(lines, field("Phone", s.Phone))
		}
	}
	if place := r.Place(); place != "" {
		lines = append(lines, field("Place", place))
	}
	if label := r.DistanceLabel(); label != "" {
		lines = append(lines, field("Distance", label+" away"))
	}

	lines = append(lines, "")
	c := r.Coordinate()
	links, ok := m.maps.Links(c)
	if !ok {
		lines = append(lines, styleMuted.Render(" No map location available."))
	} else {
		lines = append(lines,
			" "+styleHeader.Render("Map: ")+c.String()+" "+styleMuted.Render("("+c.PlusCode()+")"),
			field("Preview", "")+styleLink.Render(truncate(links.Embed, width-13)),
			field("Open", "")+styleLink.Render(truncate(links.Search, width-13)),
			field("Directions", "")+styleLink.Render(truncate(links.Directions, width-13)),
		)
	}

	switch m.actions.State(r.Key()) {
	case search.ActionPending:
		lines = append(lines, stylePending.Render(" Opening map…"))
	case search.ActionError:
		lines = append(lines, styleError.Render(" Could not open map: "+m.actions.Err(r.Key()).Error()))
	}

	return lines
}
