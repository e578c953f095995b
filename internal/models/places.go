package models

// Coordinate represents a WGS84 latitude/longitude pair
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SearchQuery represents a single nearby-restaurant search
type SearchQuery struct {
	Keyword *string    `json:"keyword,omitempty"` // nil means no keyword parameter is sent
	Center  Coordinate `json:"center"`
}

// NewSearchQuery builds a SearchQuery, treating an empty keyword as absent
func NewSearchQuery(center Coordinate, keyword string) SearchQuery {
	q := SearchQuery{Center: center}
	if keyword != "" {
		q.Keyword = &keyword
	}
	return q
}

// Place is the mapped, presentation-ready form of a search result.
// Derived strings (price, rating, distance) are computed on demand, see display.go.
type Place struct {
	PlaceID           string     `json:"place_id"`
	Name              string     `json:"name"`
	Location          Coordinate `json:"location"`
	Icon              string     `json:"icon"`
	PriceLevel        *int       `json:"price_level,omitempty"`        // 0-4
	Rating            *float64   `json:"rating,omitempty"`             // 0.0-5.0
	UserRatingsTotal  *int       `json:"user_ratings_total,omitempty"` // >= 0
	Address           string     `json:"address"`
	IsOpen            bool       `json:"is_open"` // unknown and closed both map to false
	PermanentlyClosed *bool      `json:"permanently_closed,omitempty"`
	BusinessStatus    *string    `json:"business_status,omitempty"`
}

// SearchResult is what an asynchronous search delivers to its caller
type SearchResult struct {
	Seq      uint64      `json:"seq"`       // monotonically increasing per client, used to drop stale results
	SearchID string      `json:"search_id"` // correlates log lines for one search
	Query    SearchQuery `json:"query"`
	// Cell is the ~1.2km geohash cell of the search centre. Callers compare it
	// against the current position's cell to decide whether results are still local.
	Cell   string  `json:"cell,omitempty"`
	Places []Place `json:"places"`
	// NextPageToken is parsed from the response but pagination is not followed.
	NextPageToken *string `json:"next_page_token,omitempty"`
	Err           error   `json:"-"`
}
