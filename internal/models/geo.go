package models

import "math"

const earthRadiusMeters = 6371000.0

// haversine returns the great-circle distance in metres between two points
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * (math.Pi / 180.0)
	dLon := (lon2 - lon1) * (math.Pi / 180.0)

	lat1 = lat1 * (math.Pi / 180.0)
	lat2 = lat2 * (math.Pi / 180.0)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1)*math.Cos(lat2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// DistanceTo returns the great-circle distance in metres from c to other
func (c Coordinate) DistanceTo(other Coordinate) float64 {
	return haversine(c.Latitude, c.Longitude, other.Latitude, other.Longitude)
}
