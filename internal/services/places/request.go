package places

import (
	"net/url"
	"strconv"

	"github.com/ternarybob/lunchtime/internal/models"
)

const (
	// DefaultNearbySearchURL is the Google Places Nearby Search endpoint
	DefaultNearbySearchURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

	placeTypeRestaurant = "restaurant"
	rankByDistance      = "distance"
	redactedKey         = "***REDACTED***"
)

// BuildSearchURL builds the Nearby Search request URL for q.
//
// type=restaurant and rankby=distance are always sent. rankby=distance is
// mutually exclusive with radius on the API, so radius is never sent.
// Coordinates are written at full precision and are not validated; the API
// rejects out-of-range or NaN values itself.
func BuildSearchURL(baseURL, apiKey string, q models.SearchQuery) string {
	if baseURL == "" {
		baseURL = DefaultNearbySearchURL
	}
	return baseURL + "?" + searchParams(apiKey, q).Encode()
}

// redactedSearchURL is BuildSearchURL with the key masked, for logs
func redactedSearchURL(baseURL string, q models.SearchQuery) string {
	return BuildSearchURL(baseURL, redactedKey, q)
}

func searchParams(apiKey string, q models.SearchQuery) url.Values {
	params := url.Values{}
	params.Set("location", formatLocation(q.Center))
	params.Set("type", placeTypeRestaurant)
	params.Set("rankby", rankByDistance)
	params.Set("key", apiKey)

	if q.Keyword != nil {
		params.Set("keyword", *q.Keyword)
	}

	return params
}

// formatLocation renders "<lat>,<lng>" with the shortest exact representation
func formatLocation(c models.Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
