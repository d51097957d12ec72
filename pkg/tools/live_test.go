package tools

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/time/rate"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/journey"
	"github.com/sydneyguide/sydneymcp/pkg/osm"
	"github.com/sydneyguide/sydneymcp/pkg/testutil"
)

// newLiveFixture serves Nominatim, Overpass and OSRM from one fake server.
func newLiveFixture(t *testing.T, status int) *fixture {
	t.Helper()

	path := []geo.Location{
		{Latitude: -33.8610, Longitude: 151.2105},
		{Latitude: -33.8568, Longitude: 151.2153},
	}
	geometry, _ := json.Marshal(osm.EncodePolyline(path))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		switch {
		case r.URL.Path == "/reverse":
			w.Write([]byte(`{
				"display_name": "Sydney Opera House, Bennelong Point, Sydney NSW 2000, Australia",
				"lat": "-33.8567844", "lon": "151.2152967",
				"address": {"road": "Bennelong Point", "suburb": "Sydney", "city": "Sydney",
					"state": "New South Wales", "postcode": "2000", "country": "Australia"}
			}`))
		case r.URL.Path == "/api/interpreter":
			w.Write([]byte(`{"elements": [
				{"type": "node", "id": 11, "lat": -33.8611, "lon": 151.2107,
					"tags": {"name": "Circular Quay", "railway": "station", "public_transport": "station"}},
				{"type": "node", "id": 12, "lat": -33.8655, "lon": 151.2065,
					"tags": {"name": "Wynyard", "railway": "station", "public_transport": "station"}}
			]}`))
		case strings.HasPrefix(r.URL.Path, "/route/v1/foot/"):
			w.Write([]byte(`{"code": "Ok", "routes": [{
				"distance": 650.4, "duration": 468.2, "geometry": ` + string(geometry) + `,
				"legs": [{"steps": [
					{"distance": 600, "duration": 430, "mode": "walking", "name": "Circular Quay East",
						"maneuver": {"type": "depart", "location": [151.2105, -33.8610]}},
					{"distance": 0, "duration": 0, "mode": "walking", "name": "",
						"maneuver": {"type": "arrive", "location": [151.2153, -33.8568]}}
				]}]
			}]}`))
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client := osm.NewOSMClient(
		osm.WithLogger(testutil.NewTLogger(t)),
		osm.WithHTTPClient(srv.Client()),
		osm.WithBaseURL(osm.ServiceNominatim, srv.URL),
		osm.WithBaseURL(osm.ServiceOverpass, srv.URL+"/api/interpreter"),
		osm.WithBaseURL(osm.ServiceOSRM, srv.URL),
		osm.WithRateLimit(osm.ServiceNominatim, float64(rate.Inf), 1),
		osm.WithRateLimit(osm.ServiceOverpass, float64(rate.Inf), 1),
		osm.WithRateLimit(osm.ServiceOSRM, float64(rate.Inf), 1),
	)
	t.Cleanup(client.Close)

	return newFixture(t, WithOSMClient(client))
}

func TestLiveGetCurrentLocation(t *testing.T) {
	f := newLiveFixture(t, http.StatusOK)
	if !f.registry.LiveMode() {
		t.Fatal("expected live mode")
	}

	var data struct {
		Address string `json:"address"`
		Suburb  string `json:"suburb"`
		Source  string `json:"source"`
	}
	mustSucceed(t, f.registry.HandleGetCurrentLocation, map[string]any{"lat": -33.8568, "lng": 151.2153}, &data)
	if data.Source != "nominatim" || !strings.HasPrefix(data.Address, "Sydney Opera House") || data.Suburb != "Sydney" {
		t.Errorf("location = %+v", data)
	}
}

func TestLiveUpstreamFailure(t *testing.T) {
	f := newLiveFixture(t, http.StatusTooManyRequests)

	env := mustFail(t, f.registry.HandleGetCurrentLocation, map[string]any{}, CodeLocationError)
	if !strings.Contains(env.Message, GuidanceNominatimRateLimit) {
		t.Errorf("message = %q", env.Message)
	}
	env = mustFail(t, f.registry.HandleSearchPlaces, map[string]any{}, CodeSearchError)
	if !strings.Contains(env.Message, GuidanceOverpassRateLimit) {
		t.Errorf("message = %q", env.Message)
	}
	mustFail(t, f.registry.HandlePlanRoute, map[string]any{
		"origin_lat": -33.8610, "origin_lng": 151.2105,
		"destination_lat": -33.8568, "destination_lng": 151.2153,
	}, CodeRoutePlanning)
}

func TestLiveFindNearbyTransport(t *testing.T) {
	f := newLiveFixture(t, http.StatusOK)

	var data struct {
		Stations   []osm.Place `json:"stations"`
		TotalFound int         `json:"total_found"`
		Source     string      `json:"source"`
	}
	mustSucceed(t, f.registry.HandleFindNearbyTransport, map[string]any{
		"lat": -33.8615, "lng": 151.2110, "transport_type": "train", "max_results": 1.0,
	}, &data)
	if data.Source != "openstreetmap" || data.TotalFound != 2 || len(data.Stations) != 1 {
		t.Fatalf("response = %+v", data)
	}
	if data.Stations[0].Name != "Circular Quay" {
		t.Errorf("nearest = %q", data.Stations[0].Name)
	}
}

func TestLiveSearchPlacesFiltersByQuery(t *testing.T) {
	f := newLiveFixture(t, http.StatusOK)

	var data struct {
		Places     []osm.Place `json:"places"`
		TotalFound int         `json:"total_found"`
	}
	mustSucceed(t, f.registry.HandleSearchPlaces, map[string]any{"query": "wynyard"}, &data)
	if data.TotalFound != 1 || data.Places[0].Name != "Wynyard" {
		t.Errorf("response = %+v", data)
	}
}

func TestLivePlanRoute(t *testing.T) {
	f := newLiveFixture(t, http.StatusOK)

	var data routeData
	mustSucceed(t, f.registry.HandlePlanRoute, map[string]any{
		"origin_lat": -33.8610, "origin_lng": 151.2105,
		"destination_lat": -33.8568, "destination_lng": 151.2153,
	}, &data)

	if data.APISource != "osrm" {
		t.Errorf("api_source = %q", data.APISource)
	}
	if data.Route.Overview.TotalDistanceKm != 0.65 || data.Route.Overview.TotalMinutes != 8 {
		t.Errorf("overview = %+v", data.Route.Overview)
	}
	if len(data.Route.Steps) != 2 || data.Route.Steps[0].Instruction != "Head out onto Circular Quay East" {
		t.Errorf("steps = %+v", data.Route.Steps)
	}

	var plan journey.Plan
	if err := json.Unmarshal(data.JourneyPlan, &plan); err != nil {
		t.Fatal(err)
	}
	stops := plan.Legs[0].Stops
	if len(stops) != 2 || stops[0].Name != "Circular Quay East" || stops[1].Name != "Destination" {
		t.Errorf("stops = %+v", stops)
	}
}
