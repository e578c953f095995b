package places

// RawSearchResponse represents the Google Places Nearby Search API response.
// NextPageToken is parsed and surfaced but never followed.
type RawSearchResponse struct {
	HTMLAttributions []string   `json:"html_attributions"`
	NextPageToken    *string    `json:"next_page_token,omitempty"`
	Results          []RawPlace `json:"results" validate:"required,dive"`
	Status           *string    `json:"status" validate:"required"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
}

func (r *RawSearchResponse) statusString() string {
	if r.Status == nil {
		return ""
	}
	return *r.Status
}

// RawPlace represents a single place result from the Google Places API.
// Required fields are pointers: validation rejects an absent field, not an empty one.
type RawPlace struct {
	BusinessStatus    *string       `json:"business_status,omitempty"`
	Icon              *string       `json:"icon" validate:"required"`
	OpeningHours      *OpeningHours `json:"opening_hours,omitempty"`
	Name              *string       `json:"name" validate:"required"`
	Geometry          *Geometry     `json:"geometry" validate:"required"`
	PermanentlyClosed *bool         `json:"permanently_closed,omitempty"`
	PlaceID           *string       `json:"place_id" validate:"required"`
	PriceLevel        *int          `json:"price_level,omitempty"`
	Rating            *float64      `json:"rating,omitempty"`
	UserRatingsTotal  *int          `json:"user_ratings_total,omitempty"`
	Vicinity          *string       `json:"vicinity" validate:"required"`

	// Carried on the wire, unused by the mapper
	Reference string    `json:"reference,omitempty"`
	Scope     string    `json:"scope,omitempty"`
	Types     []string  `json:"types,omitempty"`
	PlusCode  *PlusCode `json:"plus_code,omitempty"`
}

// Geometry represents the geometry information of a place
type Geometry struct {
	Location *LatLng `json:"location" validate:"required"`
}

// LatLng represents a geographic coordinate. Pointers distinguish a missing
// coordinate from the equator or prime meridian.
type LatLng struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

// OpeningHours represents the opening hours of a place
type OpeningHours struct {
	OpenNow *bool `json:"open_now,omitempty"`
}

// PlusCode represents a plus code (Open Location Code)
type PlusCode struct {
	CompoundCode string `json:"compound_code,omitempty"`
	GlobalCode   string `json:"global_code,omitempty"`
}
