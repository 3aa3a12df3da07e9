package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/locate"
	"github.com/sokoni-market/sokoni-cli/internal/models"
	"github.com/sokoni-market/sokoni-cli/internal/search"
)

const (
	nameWidth  = 28
	priceWidth = 14
	indent     = "          "
)

// TableOptions configures the table output
type TableOptions struct {
	Colors    *Colors
	ShowLinks bool              // Print map links under each row
	Maps      geo.MapURLBuilder // Builder for ShowLinks and detail cards
}

func (o TableOptions) colors() *Colors {
	if o.Colors == nil {
		return NewColors(ColorNever)
	}
	return o.Colors
}

// fit truncates s to width display cells and pads it to exactly width
func fit(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

// RenderResults renders mixed search results in server order
func RenderResults(w io.Writer, results []search.Result, opts TableOptions) {
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "No results found.")
		return
	}

	for _, r := range results {
		switch {
		case r.Product != nil:
			renderProductRow(w, r.Product, opts)
		case r.Seller != nil:
			renderSellerRow(w, r.Seller, opts)
		}
	}
}

// RenderProducts renders products as a formatted table
func RenderProducts(w io.Writer, products []models.Product, opts TableOptions) {
	if len(products) == 0 {
		_, _ = fmt.Fprintln(w, "No products found.")
		return
	}
	for i := range products {
		renderProductRow(w, &products[i], opts)
	}
}

// RenderSellers renders sellers as a formatted table
func RenderSellers(w io.Writer, sellers []models.Seller, opts TableOptions) {
	if len(sellers) == 0 {
		_, _ = fmt.Fprintln(w, "No sellers found.")
		return
	}
	for i := range sellers {
		renderSellerRow(w, &sellers[i], opts)
	}
}

func renderProductRow(w io.Writer, p *models.Product, opts TableOptions) {
	c := opts.colors()

	// DIST  NAME  PRICE  SELLER · PLACE
	where := p.LocationText
	if seller := p.SellerName(); seller != "" {
		if where != "" {
			where = seller + " · " + where
		} else {
			where = seller
		}
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		c.FormatDistance(p.DistanceKm, p.DistanceLabel()),
		c.Name("%s", fit(p.Name, nameWidth)),
		c.Price("%s", fit(p.PriceLabel(), priceWidth)),
		c.Place("%s", where),
	)

	if opts.ShowLinks {
		renderRowLink(w, p.Coordinate, opts)
	}
}

func renderSellerRow(w io.Writer, s *models.Seller, opts TableOptions) {
	c := opts.colors()

	rating := "     "
	if s.Rating != nil {
		rating = fmt.Sprintf("★ %.1f", *s.Rating)
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		c.FormatDistance(s.DistanceKm, s.DistanceLabel()),
		c.Name("%s", fit(s.Name, nameWidth)),
		c.Rating("%s", rating),
		c.Place("%s", s.Place()),
	)

	if opts.ShowLinks {
		renderRowLink(w, s.Coordinate, opts)
	}
}

func renderRowLink(w io.Writer, coord *geo.Coordinate, opts TableOptions) {
	c := opts.colors()
	if url := opts.Maps.DirectionsURL(coord); url != "" {
		_, _ = fmt.Fprintf(w, "%s%s %s\n", indent, c.Muted("Directions:"), c.Link("%s", url))
	}
}

// RenderSeller renders a seller card
func RenderSeller(w io.Writer, s *models.Seller, opts TableOptions) {
	if s == nil {
		_, _ = fmt.Fprintln(w, "No seller data found.")
		return
	}

	c := opts.colors()

	_, _ = fmt.Fprintln(w, c.Header("%s", s.Name))
	if s.Description != "" {
		_, _ = fmt.Fprintln(w, s.Description)
	}
	_, _ = fmt.Fprintln(w)

	if s.Rating != nil {
		_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Rating:  "), c.Rating("★ %.1f", *s.Rating))
	}
	if s.Phone != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Phone:   "), s.Phone)
	}
	if place := s.Place(); place != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Address: "), c.Place("%s", place))
	}
	if label := s.DistanceLabel(); label != "" {
		_, _ = fmt.Fprintf(w, "  %s %s away\n", c.Muted("Distance:"), label)
	}

	_, _ = fmt.Fprintln(w)
	RenderMapLinks(w, s.Coordinate, opts)
}

// RenderShop renders a seller card followed by their products
func RenderShop(w io.Writer, s *models.Seller, products []models.Product, opts TableOptions) {
	RenderSeller(w, s, opts)

	c := opts.colors()
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, c.Header("Products (%d):", len(products)))
	_, _ = fmt.Fprintln(w)

	// Links would repeat the shop's own location
	rows := opts
	rows.ShowLinks = false
	RenderProducts(w, products, rows)
}

// RenderProduct renders a product card
func RenderProduct(w io.Writer, p *models.Product, opts TableOptions) {
	if p == nil {
		_, _ = fmt.Fprintln(w, "No product data found.")
		return
	}

	c := opts.colors()

	_, _ = fmt.Fprintf(w, "%s %s\n", c.Header("%s", p.Name), c.Price("%s", p.PriceLabel()))
	if p.Description != "" {
		_, _ = fmt.Fprintln(w, p.Description)
	}
	_, _ = fmt.Fprintln(w)

	if p.Category != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Category:"), p.Category)
	}
	if seller := p.SellerName(); seller != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Seller:  "), c.Name("%s", seller))
	}
	if p.LocationText != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Location:"), c.Place("%s", p.LocationText))
	}
	if label := p.DistanceLabel(); label != "" {
		_, _ = fmt.Fprintf(w, "  %s %s away\n", c.Muted("Distance:"), label)
	}

	_, _ = fmt.Fprintln(w)
	RenderMapLinks(w, p.Coordinate, opts)
}

// RenderMapLinks renders the three map URLs for a coordinate, or a
// placeholder when there is none
func RenderMapLinks(w io.Writer, coord *geo.Coordinate, opts TableOptions) {
	c := opts.colors()

	links, ok := opts.Maps.Links(coord)
	if !ok {
		_, _ = fmt.Fprintln(w, c.Muted("No map location available."))
		return
	}

	_, _ = fmt.Fprintf(w, "%s %s  %s\n", c.Header("Map:"), coord.String(), c.Muted("(%s)", coord.PlusCode()))
	_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Preview:   "), c.Link("%s", links.Embed))
	_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Open:      "), c.Link("%s", links.Search))
	_, _ = fmt.Fprintf(w, "  %s %s\n", c.Muted("Directions:"), c.Link("%s", links.Directions))
}

// RenderLocate renders the outcome of a geolocation attempt
func RenderLocate(w io.Writer, r locate.Result, opts TableOptions) {
	c := opts.colors()

	if !r.OK() {
		_, _ = fmt.Fprintf(w, "%s %s %s\n",
			c.Error("Location unavailable:"),
			r.Reason.Message(),
			c.Muted("(%s)", r.Reason),
		)
		return
	}

	var details []string
	if r.Accuracy > 0 {
		details = append(details, fmt.Sprintf("±%s", geo.FormatDistance(r.Accuracy/1000)))
	}
	if r.Cached {
		details = append(details, "cached")
	}

	line := fmt.Sprintf("%s %s", c.Header("Location:"), r.Coordinate.String())
	if len(details) > 0 {
		line += " " + c.Muted("(%s)", strings.Join(details, ", "))
	}
	_, _ = fmt.Fprintln(w, line)
	_, _ = fmt.Fprintf(w, "%s %s\n", c.Header("Plus code:"), r.Coordinate.PlusCode())
}

// RenderSearchHeader renders a one-line summary of the active search
func RenderSearchHeader(w io.Writer, req search.Request, count int, opts TableOptions) {
	c := opts.colors()

	var parts []string
	if req.Mode == search.Nearby && req.Coordinate != nil {
		parts = append(parts, fmt.Sprintf("within %g km of %s", req.RadiusKm, req.Coordinate.String()))
	}
	if req.Query != "" {
		parts = append(parts, fmt.Sprintf("matching %q", req.Query))
	}
	if req.LocationText != "" {
		parts = append(parts, "in "+req.LocationText)
	}

	title := strings.ToUpper(req.Target.String()[:1]) + req.Target.String()[1:]
	if len(parts) > 0 {
		title += " " + strings.Join(parts, ", ")
	}

	_, _ = fmt.Fprintf(w, "%s %s\n\n", c.Header("%s", title), c.Muted("(%d)", count))
}
