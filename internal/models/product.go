package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
)

// Product is an item listed by a seller
type Product struct {
	ID           ID              `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        *float64        `json:"price,omitempty"`
	Currency     string          `json:"currency,omitempty"`
	Category     string          `json:"category,omitempty"`
	ImageURL     string          `json:"imageUrl,omitempty"`
	LocationText string          `json:"location,omitempty"`
	Coordinate   *geo.Coordinate `json:"coordinate,omitempty"`
	DistanceKm   *float64        `json:"distanceKm,omitempty"`
	Seller       *Seller         `json:"seller,omitempty"`
}

// ProductResponse represents the raw JSON for a product
type ProductResponse struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       any             `json:"price"`
	Currency    string          `json:"currency"`
	Category    any             `json:"category"`
	ImageURL    string          `json:"image_url"`
	Latitude    any             `json:"latitude"`
	Longitude   any             `json:"longitude"`
	DistanceKm  any             `json:"distance_km"`
	Location    json.RawMessage `json:"location"`
	Seller      *SellerResponse `json:"seller"`
}

// ToProduct converts the raw response to a Product
func (r *ProductResponse) ToProduct() *Product {
	p := &Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       floatOf(r.Price),
		Currency:    r.Currency,
		Category:    categoryOf(r.Category),
		ImageURL:    r.ImageURL,
		Coordinate:  coordinateOf(r.Latitude, r.Longitude),
		DistanceKm:  distanceOf(r.DistanceKm),
	}

	if r.Seller != nil {
		p.Seller = r.Seller.ToSeller()
	}

	// location is free text on most endpoints and a sub-record on others
	if len(r.Location) > 0 {
		var text string
		if err := json.Unmarshal(r.Location, &text); err == nil {
			p.LocationText = text
		} else {
			var loc LocationResponse
			if err := json.Unmarshal(r.Location, &loc); err == nil {
				p.LocationText = strings.Trim(loc.Address+", "+loc.City, ", ")
				if p.Coordinate == nil {
					p.Coordinate = loc.Coordinate()
				}
			}
		}
	}

	if p.Coordinate == nil && p.Seller != nil {
		p.Coordinate = p.Seller.Coordinate
	}
	if p.LocationText == "" && p.Seller != nil {
		p.LocationText = p.Seller.Place()
	}

	return p
}

// DistanceLabel returns the formatted distance or "" when unknown
func (p *Product) DistanceLabel() string {
	return geo.DistanceLabel(p.DistanceKm)
}

// PriceLabel formats the price with its currency
func (p *Product) PriceLabel() string {
	if p.Price == nil {
		return ""
	}
	s := fmt.Sprintf("%.2f", *p.Price)
	s = strings.TrimSuffix(s, ".00")
	if p.Currency != "" {
		return p.Currency + " " + s
	}
	return s
}

// SellerName returns the seller's name or ""
func (p *Product) SellerName() string {
	if p.Seller == nil {
		return ""
	}
	return p.Seller.Name
}

// categoryOf accepts a plain name or a {"name": ...} object
func categoryOf(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case map[string]any:
		if name, ok := c["name"].(string); ok {
			return name
		}
	}
	return ""
}
