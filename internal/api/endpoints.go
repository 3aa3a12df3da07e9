package api

const (
	// DefaultBaseURL is the marketplace REST backend used when none is configured
	DefaultBaseURL = "http://localhost:8000/api"

	// EndpointProducts lists products
	// Optional params: search, location, lat, lng, seller_id
	EndpointProducts = "/products"

	// EndpointProduct returns a single product: /products/{id}
	EndpointProduct = "/products/"

	// EndpointSellers lists sellers
	// Optional params: search
	EndpointSellers = "/sellers"

	// EndpointSellersNearby lists sellers ordered by server-side distance
	// Required params: latitude, longitude, radius, limit
	//
	// The products endpoint names its coordinate params lat/lng while this
	// one uses latitude/longitude. Both are sent as the backend expects them.
	EndpointSellersNearby = "/sellers/nearby"

	// EndpointSeller returns a single seller: /sellers/{id}
	EndpointSeller = "/sellers/"
)

// Defaults for nearby seller queries
const (
	DefaultRadiusKm = 10.0
	DefaultLimit    = 20
)
