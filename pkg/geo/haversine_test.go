package geo

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	// Test cases with known distances
	tests := []struct {
		lat1      float64
		lon1      float64
		lat2      float64
		lon2      float64
		expected  float64
		name      string
		tolerance float64 // relative tolerance (e.g., 0.001 for 0.1%)
	}{
		{
			name:      "Same point",
			lat1:      -33.8568,
			lon1:      151.2153,
			lat2:      -33.8568,
			lon2:      151.2153,
			expected:  0,
			tolerance: 0.0001,
		},
		{
			name:      "Short distance - Opera House to Harbour Bridge",
			lat1:      -33.8568,
			lon1:      151.2153,
			lat2:      -33.8523,
			lon2:      151.2108,
			expected:  650.42,
			tolerance: 0.005,
		},
		{
			name:      "Medium distance - Circular Quay to Bondi Junction",
			lat1:      -33.8610,
			lon1:      151.2105,
			lat2:      -33.8915,
			lon2:      151.2477,
			expected:  4826.6,
			tolerance: 0.005,
		},
		{
			name:      "Long distance - SF to NYC",
			lat1:      37.7749,
			lon1:      -122.4194,
			lat2:      40.7128,
			lon2:      -74.0060,
			expected:  4129936.81,
			tolerance: 0.001,
		},
		{
			name:      "Antipodal points",
			lat1:      37.7749,
			lon1:      -122.4194,
			lat2:      -37.7749,
			lon2:      57.5806,
			expected:  20015086.8,
			tolerance: 0.001,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := HaversineDistance(tc.lat1, tc.lon1, tc.lat2, tc.lon2)

			var difference float64
			if tc.expected == 0 {
				difference = math.Abs(result)
			} else {
				difference = math.Abs(result-tc.expected) / tc.expected
			}

			if difference > tc.tolerance {
				t.Errorf("HaversineDistance(%f, %f, %f, %f) = %f, expected %f ± %.1f%%",
					tc.lat1, tc.lon1, tc.lat2, tc.lon2, result, tc.expected, tc.tolerance*100)
			}
		})
	}
}

func TestHaversineSymmetry(t *testing.T) {
	points := []Location{
		{Latitude: -33.8610, Longitude: 151.2105},
		{Latitude: -33.8915, Longitude: 151.2477},
		{Latitude: 51.5074, Longitude: -0.1278},
		{Latitude: 0, Longitude: 0},
	}

	for i, a := range points {
		for j, b := range points {
			ab := DistanceBetween(a, b)
			ba := DistanceBetween(b, a)
			if math.Abs(ab-ba) > 1e-6 {
				t.Errorf("distance(%d,%d)=%f but distance(%d,%d)=%f", i, j, ab, j, i, ba)
			}
			if ab < 0 {
				t.Errorf("distance(%d,%d) is negative: %f", i, j, ab)
			}
			if i == j && ab > 1e-6 {
				t.Errorf("distance from point %d to itself = %f, want 0", i, ab)
			}
		}
	}
}

func TestHaversineKm(t *testing.T) {
	meters := HaversineDistance(-33.8610, 151.2105, -33.8915, 151.2477)
	km := HaversineKm(-33.8610, 151.2105, -33.8915, 151.2477)
	if math.Abs(meters/1000-km) > 1e-9 {
		t.Errorf("HaversineKm = %f, want %f", km, meters/1000)
	}
}

func TestGreatCircleAdditivity(t *testing.T) {
	a := Location{Latitude: -33.8610, Longitude: 151.2105}
	c := Location{Latitude: -33.8915, Longitude: 151.2477}

	for _, fraction := range []float64{0.1, 0.25, 0.5, 0.9} {
		b := Interpolate(a, c, fraction)
		ac := DistanceBetween(a, c)
		sum := DistanceBetween(a, b) + DistanceBetween(b, c)
		if math.Abs(ac-sum) > 0.05 {
			t.Errorf("fraction %.2f: distance(a,c)=%f, distance(a,b)+distance(b,c)=%f", fraction, ac, sum)
		}
		if got, want := DistanceBetween(a, b), ac*fraction; math.Abs(got-want) > 0.5 {
			t.Errorf("fraction %.2f: distance(a,b)=%f, want about %f", fraction, got, want)
		}
	}
}

func TestInterpolateEndpoints(t *testing.T) {
	a := Location{Latitude: -33.8568, Longitude: 151.2153}
	b := Location{Latitude: -33.8523, Longitude: 151.2108}

	if d := DistanceBetween(Interpolate(a, b, 0), a); d > 1e-3 {
		t.Errorf("Interpolate(a, b, 0) is %f m from a", d)
	}
	if d := DistanceBetween(Interpolate(a, b, 1), b); d > 1e-3 {
		t.Errorf("Interpolate(a, b, 1) is %f m from b", d)
	}
}

func TestConvertDistance(t *testing.T) {
	tests := []struct {
		name string
		unit string
		want float64
	}{
		{name: "kilometers", unit: UnitKilometers, want: 10},
		{name: "miles", unit: UnitMiles, want: 6.21371},
		{name: "meters", unit: UnitMeters, want: 10000},
		{name: "unknown unit falls back to km", unit: "furlongs", want: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertDistance(10, tt.unit)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ConvertDistance(10, %q) = %f, want %f", tt.unit, got, tt.want)
			}
		})
	}
}

func TestValidateCoords(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{name: "valid coordinates", lat: -33.8688, lon: 151.2093},
		{name: "valid coordinates at boundaries", lat: 90.0, lon: 180.0},
		{name: "valid coordinates at negative boundaries", lat: -90.0, lon: -180.0},
		{name: "invalid latitude too high", lat: 91.0, lon: 151.2093, wantErr: true},
		{name: "invalid latitude too low", lat: -91.0, lon: 151.2093, wantErr: true},
		{name: "invalid longitude too high", lat: -33.8688, lon: 181.0, wantErr: true},
		{name: "invalid longitude too low", lat: -33.8688, lon: -181.0, wantErr: true},
		{name: "not a number", lat: math.NaN(), lon: 151.2093, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoords(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoords() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
