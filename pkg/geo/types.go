// Package geo provides common geographic types and calculations.
// It centralizes location-based data structures and algorithms so that the
// journey engine and the tool layer measure distances the same way.
package geo

import (
	"fmt"
	"math"

	"github.com/golang/geo/s2"
)

const (
	// EarthRadius is the mean radius of Earth in meters
	EarthRadius = 6371000.0

	// EarthRadiusKm is the mean radius of Earth in kilometers
	EarthRadiusKm = 6371.0
)

// Distance units accepted by ConvertDistance
const (
	UnitKilometers = "km"
	UnitMiles      = "miles"
	UnitMeters     = "meters"
)

// unitFactors maps a unit name to its multiplier from kilometers.
var unitFactors = map[string]float64{
	UnitKilometers: 1.0,
	UnitMiles:      0.621371,
	UnitMeters:     1000.0,
}

// Location represents a geographic coordinate (latitude and longitude)
// with standardized JSON field names.
//
// Example:
//
//	loc := geo.Location{Latitude: -33.8568, Longitude: 151.2153}
//	dist := geo.HaversineDistance(loc.Latitude, loc.Longitude, -33.8523, 151.2108)
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// String returns the coordinate as "lat,lng" with six decimals.
func (l Location) String() string {
	return fmt.Sprintf("%.6f,%.6f", l.Latitude, l.Longitude)
}

// HaversineDistance calculates the great-circle distance between two points
// on the Earth's surface given their latitude and longitude in degrees.
// The result is returned in meters. Inputs are not validated.
func HaversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadius * centralAngle(lat1, lon1, lat2, lon2)
}

// HaversineKm is HaversineDistance expressed in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return EarthRadiusKm * centralAngle(lat1, lon1, lat2, lon2)
}

// DistanceBetween is HaversineDistance for two Locations.
func DistanceBetween(a, b Location) float64 {
	return HaversineDistance(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

// centralAngle returns the angle in radians subtended at the center of the
// sphere by the two points.
func centralAngle(lat1, lon1, lat2, lon2 float64) float64 {
	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	// Haversine formula
	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad
	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlon/2)*math.Sin(dlon/2)

	// Rounding can push a fractionally above 1 for antipodal points
	if a > 1 {
		a = 1
	}
	return 2 * math.Asin(math.Sqrt(a))
}

// ConvertDistance scales a kilometer value to the given unit.
// Unknown units return the kilometer value unchanged.
func ConvertDistance(valueKm float64, unit string) float64 {
	factor, ok := unitFactors[unit]
	if !ok {
		return valueKm
	}
	return valueKm * factor
}

// Interpolate returns the point located at fraction along the great circle
// from a to b. A fraction of 0 yields a and 1 yields b.
func Interpolate(a, b Location, fraction float64) Location {
	pa := s2.PointFromLatLng(s2.LatLngFromDegrees(a.Latitude, a.Longitude))
	pb := s2.PointFromLatLng(s2.LatLngFromDegrees(b.Latitude, b.Longitude))
	ll := s2.LatLngFromPoint(s2.Interpolate(fraction, pa, pb))
	return Location{
		Latitude:  ll.Lat.Degrees(),
		Longitude: ll.Lng.Degrees(),
	}
}

// ValidateCoords validates latitude and longitude ranges.
func ValidateCoords(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return fmt.Errorf("coordinates must be numbers")
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("invalid latitude value: %f (must be between -90 and 90)", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("invalid longitude value: %f (must be between -180 and 180)", lon)
	}
	return nil
}
