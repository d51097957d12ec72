package tools

import (
	"strings"
	"testing"
)

type placesData struct {
	Places     []Place `json:"places"`
	TotalFound int     `json:"total_found"`
	Source     string  `json:"source"`
}

func placeIDs(ps []Place) string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return strings.Join(ids, ",")
}

func TestHandleSearchPlaces(t *testing.T) {
	tests := []struct {
		name      string
		args      map[string]any
		wantIDs   string
		wantTotal int
	}{
		{
			name:      "query matches name and description",
			args:      map[string]any{"query": "Opera"},
			wantIDs:   "place_001,place_004",
			wantTotal: 2,
		},
		{
			name:      "type filter sorted by distance",
			args:      map[string]any{"place_type": "museum"},
			wantIDs:   "place_008,place_007",
			wantTotal: 2,
		},
		{
			name:      "radius excludes distant places",
			args:      map[string]any{"query": "vegan", "radius": 1.0},
			wantIDs:   "",
			wantTotal: 0,
		},
		{
			name:      "max results truncates but total counts all",
			args:      map[string]any{"place_type": "restaurant", "radius": 10.0, "max_results": 2.0},
			wantTotal: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			var data placesData
			mustSucceed(t, f.registry.HandleSearchPlaces, tt.args, &data)

			if data.TotalFound != tt.wantTotal {
				t.Errorf("total_found = %d, want %d", data.TotalFound, tt.wantTotal)
			}
			if tt.wantIDs != "" || tt.wantTotal == 0 {
				if got := placeIDs(data.Places); got != tt.wantIDs {
					t.Errorf("places = %s, want %s", got, tt.wantIDs)
				}
			}
			if data.Source != "mock_database" {
				t.Errorf("source = %q", data.Source)
			}
			for i, p := range data.Places {
				if p.DistanceKm == nil {
					t.Fatalf("place %s has no distance", p.ID)
				}
				if i > 0 && *p.DistanceKm < *data.Places[i-1].DistanceKm {
					t.Errorf("places not sorted by distance at %d", i)
				}
			}
			if maxResults, ok := tt.args["max_results"].(float64); ok && len(data.Places) > int(maxResults) {
				t.Errorf("returned %d places, max %v", len(data.Places), maxResults)
			}
		})
	}
}

func TestHandleSearchPlacesValidation(t *testing.T) {
	f := newFixture(t)
	mustFail(t, f.registry.HandleSearchPlaces, map[string]any{"radius": 500.0}, CodeInvalidParameters)
	mustFail(t, f.registry.HandleSearchPlaces, map[string]any{"lat": 123.0}, CodeInvalidParameters)
}

func TestHandleGetPlaceDetails(t *testing.T) {
	f := newFixture(t)

	var data struct {
		Place Place `json:"place"`
	}
	mustSucceed(t, f.registry.HandleGetPlaceDetails, map[string]any{"place_id": "place_009"}, &data)
	if data.Place.Name != "Royal Botanic Gardens Sydney" {
		t.Errorf("place = %+v", data.Place)
	}

	env := mustFail(t, f.registry.HandleGetPlaceDetails, map[string]any{"place_id": "place_999"}, CodePlaceNotFound)
	if env.Message != "Place with ID 'place_999' not found" {
		t.Errorf("message = %q", env.Message)
	}

	mustFail(t, f.registry.HandleGetPlaceDetails, map[string]any{}, CodeInvalidParameters)
}

func TestHandleGetPlacesByType(t *testing.T) {
	f := newFixture(t)

	var data placesData
	mustSucceed(t, f.registry.HandleGetPlacesByType, map[string]any{"place_type": "restaurant"}, &data)
	if got, want := placeIDs(data.Places), "place_013,place_014,place_003,place_004,place_015"; got != want {
		t.Errorf("restaurants = %s, want %s", got, want)
	}

	mustSucceed(t, f.registry.HandleGetPlacesByType, map[string]any{"place_type": "restaurant", "limit": 2.0}, &data)
	if len(data.Places) != 2 || data.TotalFound != 5 {
		t.Errorf("limit 2 returned %d of %d", len(data.Places), data.TotalFound)
	}
}

func TestHandleGetPopularPlaces(t *testing.T) {
	f := newFixture(t)

	var data struct {
		Places   []Place `json:"places"`
		Criteria string  `json:"criteria"`
	}
	mustSucceed(t, f.registry.HandleGetPopularPlaces, map[string]any{"limit": 3.0}, &data)
	if got, want := placeIDs(data.Places), "place_013,place_001,place_009"; got != want {
		t.Errorf("popular = %s, want %s", got, want)
	}
	if data.Criteria != "highest_rating" {
		t.Errorf("criteria = %q", data.Criteria)
	}

	mustSucceed(t, f.registry.HandleGetPopularPlaces, map[string]any{}, &data)
	if len(data.Places) != 5 {
		t.Errorf("default limit returned %d places", len(data.Places))
	}
}
