package search

import (
	"github.com/sokoni-market/sokoni-cli/internal/geo"
	"github.com/sokoni-market/sokoni-cli/internal/models"
)

// Target selects which catalog a search runs against
type Target int

const (
	Products Target = iota
	Sellers
)

func (t Target) String() string {
	switch t {
	case Products:
		return "products"
	case Sellers:
		return "sellers"
	}
	return "unknown"
}

// Result is one row of a search: exactly one of Product or Seller is set
type Result struct {
	Product *models.Product
	Seller  *models.Seller
}

// ProductResult wraps a product
func ProductResult(p models.Product) Result {
	return Result{Product: &p}
}

// SellerResult wraps a seller
func SellerResult(s models.Seller) Result {
	return Result{Seller: &s}
}

// Kind reports which variant is set
func (r Result) Kind() Target {
	if r.Seller != nil {
		return Sellers
	}
	return Products
}

// Key identifies the row across both variants
func (r Result) Key() string {
	switch {
	case r.Product != nil:
		return "product:" + string(r.Product.ID)
	case r.Seller != nil:
		return "seller:" + string(r.Seller.ID)
	}
	return ""
}

func (r Result) ID() models.ID {
	switch {
	case r.Product != nil:
		return r.Product.ID
	case r.Seller != nil:
		return r.Seller.ID
	}
	return ""
}

func (r Result) Name() string {
	switch {
	case r.Product != nil:
		return r.Product.Name
	case r.Seller != nil:
		return r.Seller.Name
	}
	return ""
}

// Coordinate returns the entity's own coordinate, or nil
func (r Result) Coordinate() *geo.Coordinate {
	switch {
	case r.Product != nil:
		return r.Product.Coordinate
	case r.Seller != nil:
		return r.Seller.Coordinate
	}
	return nil
}

// DistanceKm returns the server-reported distance, or nil
func (r Result) DistanceKm() *float64 {
	switch {
	case r.Product != nil:
		return r.Product.DistanceKm
	case r.Seller != nil:
		return r.Seller.DistanceKm
	}
	return nil
}

// DistanceLabel formats DistanceKm, "" when unknown
func (r Result) DistanceLabel() string {
	return geo.DistanceLabel(r.DistanceKm())
}

// Place returns the human-readable location of the row
func (r Result) Place() string {
	switch {
	case r.Product != nil:
		return r.Product.LocationText
	case r.Seller != nil:
		return r.Seller.Place()
	}
	return ""
}
