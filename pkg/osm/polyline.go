package osm

import (
	"math"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
)

// polylinePrecision is the Polyline5 scale used by OSRM.
const polylinePrecision = 1e5

// DecodePolyline decodes an encoded Polyline5 string to a slice of locations.
// A truncated trailing value is dropped.
// See https://developers.google.com/maps/documentation/utilities/polylinealgorithm
func DecodePolyline(encoded string) []geo.Location {
	points := make([]geo.Location, 0, len(encoded)/4+1)

	var lat, lng int
	for i := 0; i < len(encoded); {
		dLat, n, ok := decodeSigned(encoded[i:])
		if !ok {
			break
		}
		i += n
		dLng, n, ok := decodeSigned(encoded[i:])
		if !ok {
			break
		}
		i += n

		lat += dLat
		lng += dLng
		points = append(points, geo.Location{
			Latitude:  float64(lat) / polylinePrecision,
			Longitude: float64(lng) / polylinePrecision,
		})
	}
	return points
}

// decodeSigned reads one zigzag value and reports the bytes consumed.
func decodeSigned(s string) (value, n int, ok bool) {
	result, shift := 0, 0
	for n < len(s) {
		b := int(s[n]) - 63
		n++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			return (result >> 1) ^ -(result & 1), n, true
		}
	}
	return 0, n, false
}

// EncodePolyline encodes locations as a Polyline5 string.
func EncodePolyline(points []geo.Location) string {
	buf := make([]byte, 0, len(points)*6)
	var prevLat, prevLng int
	for _, p := range points {
		lat := int(math.Round(p.Latitude * polylinePrecision))
		lng := int(math.Round(p.Longitude * polylinePrecision))
		buf = appendSigned(buf, lat-prevLat)
		buf = appendSigned(buf, lng-prevLng)
		prevLat, prevLng = lat, lng
	}
	return string(buf)
}

func appendSigned(buf []byte, value int) []byte {
	s := value << 1
	if value < 0 {
		s = ^s
	}
	for s >= 0x20 {
		buf = append(buf, byte((0x20|(s&0x1f))+63))
		s >>= 5
	}
	return append(buf, byte(s+63))
}
