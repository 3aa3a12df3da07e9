package models

import (
	"strings"

	"github.com/sokoni-market/sokoni-cli/internal/geo"
)

// Seller is a shop on the marketplace
type Seller struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Rating      *float64        `json:"rating,omitempty"`
	Address     string          `json:"address,omitempty"`
	City        string          `json:"city,omitempty"`
	Region      string          `json:"region,omitempty"`
	Coordinate  *geo.Coordinate `json:"coordinate,omitempty"`
	DistanceKm  *float64        `json:"distanceKm,omitempty"`
}

// LocationResponse is the location sub-record attached to sellers.
// Coordinates arrive as numbers, numeric strings or null.
type LocationResponse struct {
	Latitude  any    `json:"latitude"`
	Longitude any    `json:"longitude"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Region    string `json:"region"`
}

// Coordinate returns the validated coordinate, or nil when absent
func (l *LocationResponse) Coordinate() *geo.Coordinate {
	if l == nil {
		return nil
	}
	return coordinateOf(l.Latitude, l.Longitude)
}

// SellerResponse represents the raw JSON for a seller
type SellerResponse struct {
	ID           ID                `json:"id"`
	BusinessName string            `json:"business_name"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Phone        string            `json:"phone"`
	Rating       any               `json:"rating"`
	Location     *LocationResponse `json:"location"`
	Latitude     any               `json:"latitude"`
	Longitude    any               `json:"longitude"`
	DistanceKm   any               `json:"distance_km"`
}

// ToSeller converts the raw response to a Seller
func (r *SellerResponse) ToSeller() *Seller {
	name := r.BusinessName
	if name == "" {
		name = r.Name
	}

	s := &Seller{
		ID:          r.ID,
		Name:        name,
		Description: r.Description,
		Phone:       r.Phone,
		Rating:      floatOf(r.Rating),
		DistanceKm:  distanceOf(r.DistanceKm),
	}

	if r.Location != nil {
		s.Address = r.Location.Address
		s.City = r.Location.City
		s.Region = r.Location.Region
		s.Coordinate = r.Location.Coordinate()
	}

	// Some endpoints flatten the coordinate onto the seller itself
	if s.Coordinate == nil {
		s.Coordinate = coordinateOf(r.Latitude, r.Longitude)
	}

	return s
}

// Place returns a short human-readable address
func (s *Seller) Place() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.Address, s.City, s.Region} {
		if p != "" && !containsFold(parts, p) {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// DistanceLabel returns the formatted distance or "" when unknown
func (s *Seller) DistanceLabel() string {
	return geo.DistanceLabel(s.DistanceKm)
}

func coordinateOf(lat, lng any) *geo.Coordinate {
	c, ok := geo.ParseCoordinate(lat, lng)
	if !ok {
		return nil
	}
	return &c
}

func floatOf(v any) *float64 {
	f, ok := geo.ParseFloat(v)
	if !ok {
		return nil
	}
	return &f
}

func distanceOf(v any) *float64 {
	km, ok := geo.ParseDistance(v)
	if !ok {
		return nil
	}
	return &km
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
