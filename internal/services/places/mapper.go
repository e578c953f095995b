package places

import "github.com/ternarybob/lunchtime/internal/models"

// MapPlace converts a raw API place into a models.Place. It never fails:
// optional fields keep their absence and missing structure maps to zero values.
func MapPlace(raw RawPlace) models.Place {
	place := models.Place{
		PriceLevel:        raw.PriceLevel,
		Rating:            raw.Rating,
		UserRatingsTotal:  raw.UserRatingsTotal,
		PermanentlyClosed: raw.PermanentlyClosed,
		BusinessStatus:    raw.BusinessStatus,
	}

	if raw.PlaceID != nil {
		place.PlaceID = *raw.PlaceID
	}
	if raw.Name != nil {
		place.Name = *raw.Name
	}
	if raw.Icon != nil {
		place.Icon = *raw.Icon
	}
	if raw.Vicinity != nil {
		place.Address = *raw.Vicinity
	}

	// Geometry/Location
	if raw.Geometry != nil && raw.Geometry.Location != nil {
		if raw.Geometry.Location.Lat != nil {
			place.Location.Latitude = *raw.Geometry.Location.Lat
		}
		if raw.Geometry.Location.Lng != nil {
			place.Location.Longitude = *raw.Geometry.Location.Lng
		}
	}

	// Absent and false are not distinguished downstream
	if raw.OpeningHours != nil && raw.OpeningHours.OpenNow != nil {
		place.IsOpen = *raw.OpeningHours.OpenNow
	}

	return place
}

// MapPlaces maps every raw place, preserving the API's nearest-first order
func MapPlaces(raw []RawPlace) []models.Place {
	places := make([]models.Place, len(raw))
	for i, r := range raw {
		places[i] = MapPlace(r)
	}
	return places
}
