package tools

import (
	"testing"
)

func TestHandleGetCurrentLocation(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		wantLat  float64
		wantLng  float64
		wantAddr string
		wantCode string
	}{
		{
			name:     "default high accuracy",
			args:     map[string]any{},
			wantLat:  -33.8688,
			wantLng:  151.2093,
			wantAddr: DefaultLocation.Address,
		},
		{
			name:     "low accuracy rounds to two decimals",
			args:     map[string]any{"accuracy": "low", "lat": -33.856812, "lng": 151.215297},
			wantLat:  -33.86,
			wantLng:  151.22,
			wantAddr: "-33.8568, 151.2153",
		},
		{
			name:     "medium accuracy rounds to four decimals",
			args:     map[string]any{"accuracy": "medium", "lat": -33.856812, "lng": 151.215297},
			wantLat:  -33.8568,
			wantLng:  151.2153,
			wantAddr: "-33.8568, 151.2153",
		},
		{
			name:     "out of range latitude",
			args:     map[string]any{"lat": -95.0, "lng": 151.2},
			wantCode: CodeInvalidParameters,
		},
		{
			name:     "latitude without longitude",
			args:     map[string]any{"lat": -33.8568},
			wantCode: CodeInvalidParameters,
		},
		{
			name:     "longitude without latitude",
			args:     map[string]any{"lng": 151.2153},
			wantCode: CodeInvalidParameters,
		},
		{
			name:     "non-numeric latitude",
			args:     map[string]any{"lat": "north", "lng": 151.2153},
			wantCode: CodeInvalidParameters,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.wantCode != "" {
				mustFail(t, f.registry.HandleGetCurrentLocation, tt.args, tt.wantCode)
				return
			}

			var data struct {
				Lat     float64 `json:"lat"`
				Lng     float64 `json:"lng"`
				Address string  `json:"address"`
				Source  string  `json:"source"`
			}
			mustSucceed(t, f.registry.HandleGetCurrentLocation, tt.args, &data)
			if data.Lat != tt.wantLat || data.Lng != tt.wantLng {
				t.Errorf("location = %v,%v, want %v,%v", data.Lat, data.Lng, tt.wantLat, tt.wantLng)
			}
			if data.Source != "mock_gps" {
				t.Errorf("source = %q", data.Source)
			}
			if data.Address != tt.wantAddr {
				t.Errorf("address = %q, want %q", data.Address, tt.wantAddr)
			}
		})
	}
}

func TestHandleCalculateDistance(t *testing.T) {
	operaToBridge := map[string]any{
		"start_lat": -33.8568, "start_lng": 151.2153,
		"end_lat": -33.8523, "end_lng": 151.2108,
	}

	tests := []struct {
		name string
		unit string
		want float64
	}{
		{name: "kilometers", unit: "", want: 0.65},
		{name: "meters", unit: "meters", want: 650.42},
		{name: "miles", unit: "miles", want: 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			args := map[string]any{}
			for k, v := range operaToBridge {
				args[k] = v
			}
			if tt.unit != "" {
				args["unit"] = tt.unit
			}

			var data struct {
				Distance float64 `json:"distance"`
				Method   string  `json:"calculation_method"`
			}
			mustSucceed(t, f.registry.HandleCalculateDistance, args, &data)
			if data.Distance != tt.want {
				t.Errorf("distance = %v, want %v", data.Distance, tt.want)
			}
			if data.Method != "haversine" {
				t.Errorf("method = %q", data.Method)
			}
		})
	}

	t.Run("unknown unit", func(t *testing.T) {
		f := newFixture(t)
		args := map[string]any{"unit": "furlongs"}
		for k, v := range operaToBridge {
			args[k] = v
		}
		mustFail(t, f.registry.HandleCalculateDistance, args, CodeInvalidParameters)
	})

	t.Run("missing coordinate", func(t *testing.T) {
		f := newFixture(t)
		mustFail(t, f.registry.HandleCalculateDistance,
			map[string]any{"start_lat": -33.8568, "start_lng": 151.2153, "end_lat": -33.8523},
			CodeCalculationError)
	})
}
