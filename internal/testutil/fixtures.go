package testutil

// Sample JSON responses for API testing

// SampleProductsResponse is a product list with mixed coordinate encodings
const SampleProductsResponse = `[
	{
		"id": 101,
		"name": "Fresh Tomatoes",
		"description": "Sun-ripened, 1 kg",
		"price": "2500.00",
		"currency": "TZS",
		"category": "Vegetables",
		"latitude": "-6.1630",
		"longitude": "35.7516",
		"distance_km": "0.42",
		"location": "Majengo Market, Dodoma",
		"seller": {
			"id": 7,
			"business_name": "Mama Neema Greens",
			"location": {"latitude": -6.1632, "longitude": 35.7519, "city": "Dodoma"}
		}
	},
	{
		"id": "102",
		"name": "Maize Flour",
		"price": 1800,
		"currency": "TZS",
		"latitude": null,
		"longitude": null,
		"distance_km": 3.7,
		"seller": {
			"id": 9,
			"business_name": "Dodoma Mills",
			"location": {"latitude": "-6.1801", "longitude": "35.7420", "city": "Dodoma"}
		}
	},
	{
		"id": 103,
		"name": "Hand-woven Basket",
		"price": 15000,
		"currency": "TZS",
		"latitude": "",
		"longitude": "abc",
		"distance_km": null
	}
]`

// SampleProductsEnvelope wraps products in a paginated envelope
const SampleProductsEnvelope = `{
	"data": [
		{"id": 201, "name": "Honey", "price": 8000, "latitude": -6.2, "longitude": 35.75, "distance_km": 12.4}
	],
	"total": 1
}`

// SampleProductDetail is a single product
const SampleProductDetail = `{
	"id": 101,
	"name": "Fresh Tomatoes",
	"description": "Sun-ripened, 1 kg",
	"price": "2500.00",
	"currency": "TZS",
	"latitude": -6.163,
	"longitude": 35.7516,
	"seller": {"id": 7, "business_name": "Mama Neema Greens"}
}`

// SampleSellersResponse is a seller list
const SampleSellersResponse = `[
	{
		"id": 7,
		"business_name": "Mama Neema Greens",
		"description": "Vegetables and fruit",
		"phone": "+255 700 000 001",
		"rating": 4.6,
		"location": {"latitude": -6.1632, "longitude": 35.7519, "address": "Stall 14", "city": "Dodoma", "region": "Dodoma"}
	},
	{
		"id": 9,
		"name": "Dodoma Mills",
		"location": {"latitude": "-6.1801", "longitude": "35.7420", "city": "Dodoma"}
	}
]`

// SampleNearbySellersResponse is a bare list pre-sorted by distance
const SampleNearbySellersResponse = `[
	{
		"id": 7,
		"business_name": "Mama Neema Greens",
		"location": {"latitude": -6.1990, "longitude": 35.7510, "city": "Dodoma"},
		"distance_km": 0.12
	},
	{
		"id": 9,
		"business_name": "Dodoma Mills",
		"location": {"latitude": "-6.1801", "longitude": "35.7420", "city": "Dodoma"},
		"distance_km": "2.3"
	},
	{
		"id": 12,
		"business_name": "Kisasa Crafts",
		"location": {"latitude": null, "longitude": null},
		"distance_km": 8.05
	}
]`

// SampleSellerDetail is a single seller
const SampleSellerDetail = `{
	"id": 7,
	"business_name": "Mama Neema Greens",
	"description": "Vegetables and fruit",
	"phone": "+255 700 000 001",
	"rating": "4.6",
	"location": {"latitude": "-6.1632", "longitude": "35.7519", "address": "Stall 14", "city": "Dodoma"}
}`

// SampleIPLocationResponse is a successful IP geolocation lookup
const SampleIPLocationResponse = `{
	"status": "success",
	"country": "Tanzania",
	"city": "Dodoma",
	"lat": -6.2,
	"lon": 35.75
}`

// SampleIPLocationFailure is a failed IP geolocation lookup
const SampleIPLocationFailure = `{
	"status": "fail",
	"message": "private range"
}`

// SampleErrorResponse is a sample backend error body
const SampleErrorResponse = `{
	"detail": "Not found."
}`
