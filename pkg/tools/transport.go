package tools

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/journey"
	"github.com/sydneyguide/sydneymcp/pkg/osm"
)

// Mock routing model
const (
	walkingOnlyKm       = 0.5
	walkMinutesPerKm    = 12.0
	transitMinutesPerKm = 5.0
	trainMinutesPerKm   = 3.0
	fareAUDPerKm        = 2.5
	maxWalkLegKm        = 0.3
	departureSpacing    = 8 * time.Minute
	mockLine            = "T1 Western Line"
)

// Fixed boarding and alighting points of the mock transit route
var (
	mockBoarding  = geo.Location{Latitude: -33.8830, Longitude: 151.2063}
	mockAlighting = geo.Location{Latitude: -33.8700, Longitude: 151.2100}
)

var transportTypes = []string{"train", "bus", "ferry", "light_rail"}

// FindNearbyTransportTool returns a tool definition for finding stops
func FindNearbyTransportTool() mcp.Tool {
	return mcp.NewTool("find_nearby_transport",
		mcp.WithDescription("Find nearby transport stations and stops"),
		mcp.WithNumber("lat",
			mcp.Required(),
			mcp.Description("Latitude coordinate"),
		),
		mcp.WithNumber("lng",
			mcp.Required(),
			mcp.Description("Longitude coordinate"),
		),
		mcp.WithString("transport_type",
			mcp.Description("Type of transport to search for"),
			mcp.Enum(append([]string{"all"}, transportTypes...)...),
			mcp.DefaultString("all"),
		),
		mcp.WithNumber("radius",
			mcp.Description("Search radius in kilometers"),
			mcp.DefaultNumber(1),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results"),
			mcp.DefaultNumber(5),
		),
	)
}

// HandleFindNearbyTransport finds stations near a point, closest first
func (r *Registry) HandleFindNearbyTransport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("find_nearby_transport")

	lat, err := requireNumber(req, "lat")
	if err != nil {
		return r.failure(CodeTransportSearch, err.Error())
	}
	lng, err := requireNumber(req, "lng")
	if err != nil {
		return r.failure(CodeTransportSearch, err.Error())
	}
	transportType := mcp.ParseString(req, "transport_type", "all")
	radius := mcp.ParseFloat64(req, "radius", 1)
	limit := int(mcp.ParseFloat64(req, "max_results", 5))
	if limit <= 0 {
		limit = 5
	}
	if apiErr := ValidationError(lat, lng, radius, maxSearchRadiusKm); apiErr != nil {
		return r.failure(CodeInvalidParameters, guidanceMessage(apiErr))
	}

	origin := geo.Location{Latitude: lat, Longitude: lng}
	params := map[string]any{
		"location":       origin,
		"transport_type": transportType,
		"radius_km":      radius,
		"max_results":    limit,
	}

	if r.LiveMode() {
		stops, err := r.osm.NearbyTransport(ctx, transportType, origin, radius*1000, 0)
		if err != nil {
			logger.Error("transport search failed", "error", err)
			return r.failure(CodeTransportSearch, guidanceMessage(upstreamError(osm.ServiceOverpass, err)))
		}
		total := len(stops)
		if len(stops) > limit {
			stops = stops[:limit]
		}
		return r.success(map[string]any{
			"stations":      stops,
			"total_found":   total,
			"search_params": params,
			"source":        "openstreetmap",
		})
	}

	nearby := []Station{}
	for _, s := range stations {
		if transportType != "all" && s.Type != transportType {
			continue
		}
		d := geo.HaversineKm(lat, lng, s.Latitude, s.Longitude)
		if d > radius {
			continue
		}
		d = round(d, 2)
		s.DistanceKm = &d
		nearby = append(nearby, s)
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return *nearby[i].DistanceKm < *nearby[j].DistanceKm
	})

	total := len(nearby)
	if len(nearby) > limit {
		nearby = nearby[:limit]
	}
	return r.success(map[string]any{
		"stations":      nearby,
		"total_found":   total,
		"search_params": params,
		"source":        "mock_database",
	})
}

// PlanRouteTool returns a tool definition for route planning
func PlanRouteTool() mcp.Tool {
	return mcp.NewTool("plan_route",
		mcp.WithDescription("Plan a route between two locations. The returned journey_plan can be passed to start_journey_tracking."),
		mcp.WithNumber("origin_lat",
			mcp.Required(),
			mcp.Description("Origin latitude"),
		),
		mcp.WithNumber("origin_lng",
			mcp.Required(),
			mcp.Description("Origin longitude"),
		),
		mcp.WithNumber("destination_lat",
			mcp.Required(),
			mcp.Description("Destination latitude"),
		),
		mcp.WithNumber("destination_lng",
			mcp.Required(),
			mcp.Description("Destination longitude"),
		),
		mcp.WithArray("travel_modes",
			mcp.Description("Preferred travel modes (walking, transit, bus, train, ferry)"),
			mcp.DefaultArray([]interface{}{"transit", "walking"}),
		),
		mcp.WithString("departure_time",
			mcp.Description("Departure time in RFC 3339 format or 'now'"),
			mcp.DefaultString("now"),
		),
	)
}

// routeStep is one step of a planned route.
type routeStep struct {
	StepNumber      int           `json:"step_number"`
	Mode            string        `json:"mode"`
	Instruction     string        `json:"instruction"`
	DistanceKm      float64       `json:"distance_km"`
	DurationMinutes float64       `json:"duration_minutes"`
	StartLocation   *geo.Location `json:"start_location,omitempty"`
	EndLocation     *geo.Location `json:"end_location,omitempty"`
	Line            string        `json:"line,omitempty"`
	StartStation    string        `json:"start_station,omitempty"`
	EndStation      string        `json:"end_station,omitempty"`
}

// HandlePlanRoute plans a route. Live mode asks OSRM for a walking route;
// otherwise a walk or walk-train-walk estimate is produced.
func (r *Registry) HandlePlanRoute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("plan_route")

	var coords [4]float64
	for i, key := range []string{"origin_lat", "origin_lng", "destination_lat", "destination_lng"} {
		v, err := requireNumber(req, key)
		if err != nil {
			return r.failure(CodeRoutePlanning, err.Error())
		}
		coords[i] = v
	}
	from := geo.Location{Latitude: coords[0], Longitude: coords[1]}
	to := geo.Location{Latitude: coords[2], Longitude: coords[3]}
	for _, loc := range []geo.Location{from, to} {
		if err := geo.ValidateCoords(loc.Latitude, loc.Longitude); err != nil {
			return r.failure(CodeInvalidParameters, err.Error())
		}
	}

	modes := stringSlice(req, "travel_modes", []string{"transit", "walking"})
	departureArg := mcp.ParseString(req, "departure_time", "now")
	departure := r.now()
	if departureArg != "now" && departureArg != "" {
		t, err := time.Parse(time.RFC3339, departureArg)
		if err != nil {
			return r.failure(CodeInvalidParameters, fmt.Sprintf("departure_time must be RFC 3339 or 'now': %v", err))
		}
		departure = t
	}

	if r.LiveMode() {
		route, err := r.osm.Route(ctx, osm.ProfileFoot, from, to)
		if err != nil {
			logger.Error("route request failed", "error", err)
			return r.failure(CodeRoutePlanning, guidanceMessage(upstreamError(osm.ServiceOSRM, err)))
		}
		return r.success(liveRoute(route, from, to, departure, departureArg, modes))
	}

	return r.success(mockRoute(from, to, departure, departureArg, modes))
}

func mockRoute(from, to geo.Location, departure time.Time, departureArg string, modes []string) map[string]any {
	totalKm := geo.DistanceBetween(from, to) / 1000

	var (
		steps    []routeStep
		minutes  float64
		cost     float64
		plan     journey.Plan
		geometry []geo.Location
	)

	if totalKm < walkingOnlyKm {
		minutes = math.Max(math.Round(totalKm*walkMinutesPerKm), 1)
		steps = []routeStep{{
			StepNumber:      1,
			Mode:            "walking",
			Instruction:     "Walk directly to destination",
			DistanceKm:      round(totalKm, 2),
			DurationMinutes: minutes,
			StartLocation:   &from,
			EndLocation:     &to,
		}}
		geometry = []geo.Location{from, to}
		plan = journey.Plan{
			Destination: "Destination",
			Legs: []journey.Leg{{
				TransportMode: "walking",
				RouteLabel:    "Walk",
				Stops: []journey.Stop{
					{Name: "Start", Latitude: from.Latitude, Longitude: from.Longitude, Sequence: 1},
					{Name: "Destination", Latitude: to.Latitude, Longitude: to.Longitude, Sequence: 2},
				},
			}},
		}
	} else {
		walk := math.Min(maxWalkLegKm, totalKm*0.2)
		transitKm := math.Max(0.1, totalKm-2*walk)
		board := mockBoarding
		alight := mockAlighting

		minutes = math.Round(totalKm * transitMinutesPerKm)
		cost = round(totalKm*fareAUDPerKm, 2)
		steps = []routeStep{
			{
				StepNumber:      1,
				Mode:            "walking",
				Instruction:     "Walk to nearest transport station",
				DistanceKm:      round(walk, 2),
				DurationMinutes: math.Round(walk * walkMinutesPerKm),
				StartLocation:   &from,
				EndLocation:     &board,
			},
			{
				StepNumber:      2,
				Mode:            "train",
				Instruction:     "Take " + mockLine + " to destination area",
				DistanceKm:      round(transitKm, 2),
				DurationMinutes: math.Round(transitKm * trainMinutesPerKm),
				Line:            mockLine,
				StartStation:    "Central Station",
				EndStation:      "Destination Station",
			},
			{
				StepNumber:      3,
				Mode:            "walking",
				Instruction:     "Walk to final destination",
				DistanceKm:      round(walk, 2),
				DurationMinutes: math.Round(walk * walkMinutesPerKm),
				StartLocation:   &alight,
				EndLocation:     &to,
			},
		}
		midway := geo.Interpolate(board, alight, 0.5)
		geometry = []geo.Location{from, board, midway, alight, to}
		plan = journey.Plan{
			Destination: "Destination Station",
			Legs: []journey.Leg{{
				TransportMode: "train",
				RouteLabel:    mockLine,
				Stops: []journey.Stop{
					{Name: "Central Station", Latitude: board.Latitude, Longitude: board.Longitude, Sequence: 1},
					{Name: "Destination Station", Latitude: alight.Latitude, Longitude: alight.Longitude, Sequence: 2},
				},
			}},
		}
	}

	arrival := departure.Add(time.Duration(math.Max(minutes, 1) * float64(time.Minute)))
	return map[string]any{
		"route": map[string]any{
			"overview": map[string]any{
				"total_distance_km":      round(totalKm, 2),
				"total_duration_minutes": minutes,
				"total_cost_aud":         cost,
				"departure_time":         departureArg,
				"arrival_time":           arrival.Format("15:04"),
			},
			"steps":    steps,
			"polyline": osm.EncodePolyline(geometry),
		},
		"journey_plan":       plan,
		"alternative_routes": []any{},
		"travel_modes_used":  modes,
		"api_source":         "mock_data",
	}
}

func liveRoute(route *osm.Route, from, to geo.Location, departure time.Time, departureArg string, modes []string) map[string]any {
	minutes := math.Max(math.Round(route.DurationSeconds/60), 1)

	steps := make([]routeStep, 0, len(route.Steps))
	stops := []journey.Stop{}
	for i, s := range route.Steps {
		loc := s.Location
		steps = append(steps, routeStep{
			StepNumber:      i + 1,
			Mode:            "walking",
			Instruction:     s.Instruction,
			DistanceKm:      round(s.DistanceMeters/1000, 2),
			DurationMinutes: math.Round(s.DurationSeconds / 60),
			StartLocation:   &loc,
		})
		name := s.Street
		if name == "" {
			name = fmt.Sprintf("Waypoint %d", i+1)
		}
		stops = append(stops, journey.Stop{Name: name, Latitude: loc.Latitude, Longitude: loc.Longitude, Sequence: len(stops) + 1})
	}
	if len(stops) == 0 || stops[len(stops)-1].Location() != to {
		stops = append(stops, journey.Stop{Name: "Destination", Latitude: to.Latitude, Longitude: to.Longitude, Sequence: len(stops) + 1})
	} else {
		stops[len(stops)-1].Name = "Destination"
	}

	return map[string]any{
		"route": map[string]any{
			"overview": map[string]any{
				"total_distance_km":      round(route.DistanceMeters/1000, 2),
				"total_duration_minutes": minutes,
				"total_cost_aud":         0.0,
				"departure_time":         departureArg,
				"arrival_time":           departure.Add(time.Duration(minutes * float64(time.Minute))).Format("15:04"),
				"start_location":         from,
				"end_location":           to,
			},
			"steps":    steps,
			"polyline": route.Polyline,
		},
		"journey_plan": journey.Plan{
			Destination: "Destination",
			Legs:        []journey.Leg{{TransportMode: "walking", RouteLabel: "Walk", Stops: stops}},
		},
		"alternative_routes": []any{},
		"travel_modes_used":  modes,
		"api_source":         "osrm",
	}
}

// GetTransportStatusTool returns a tool definition for departures
func GetTransportStatusTool() mcp.Tool {
	return mcp.NewTool("get_transport_status",
		mcp.WithDescription("Get upcoming departures for a transport stop"),
		mcp.WithString("stop_id",
			mcp.Required(),
			mcp.Description("Transport stop or station ID"),
		),
		mcp.WithString("transport_type",
			mcp.Description("Type of transport"),
			mcp.Enum(transportTypes...),
			mcp.DefaultString("train"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Number of upcoming departures"),
			mcp.DefaultNumber(5),
		),
	)
}

type departure struct {
	ServiceID            string `json:"service_id"`
	Destination          string `json:"destination"`
	ScheduledTime        string `json:"scheduled_time"`
	EstimatedTime        string `json:"estimated_time"`
	DelayMinutes         int    `json:"delay_minutes"`
	Platform             string `json:"platform"`
	ServiceStatus        string `json:"service_status"`
	WheelchairAccessible bool   `json:"wheelchair_accessible"`
	IsMockData           bool   `json:"is_mock_data"`
}

// HandleGetTransportStatus returns deterministic departures spaced eight
// minutes apart. No real-time feed is consulted.
func (r *Registry) HandleGetTransportStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stopID := strings.TrimSpace(mcp.ParseString(req, "stop_id", ""))
	if stopID == "" {
		return r.failure(CodeTransportStatus, "stop_id is required")
	}
	transportType := mcp.ParseString(req, "transport_type", "train")
	limit := int(mcp.ParseFloat64(req, "limit", 5))
	if limit <= 0 {
		limit = 5
	}

	routes, ok := serviceRoutes[transportType]
	if !ok {
		return r.failure(CodeTransportStatus, fmt.Sprintf("unknown transport type %q", transportType))
	}

	var info any = map[string]any{
		"stop_id": stopID,
		"name":    "Station " + stopID,
		"type":    transportType,
		"status":  "operational",
	}
	if station, ok := findStation(stopID); ok {
		info = station
	}

	now := r.now()
	departures := make([]departure, 0, limit)
	for i := 0; i < limit; i++ {
		at := now.Add(time.Duration(i+1) * departureSpacing).Format("15:04")
		route := routes[i%len(routes)]
		departures = append(departures, departure{
			ServiceID:            route,
			Destination:          "City via " + route,
			ScheduledTime:        at,
			EstimatedTime:        at,
			Platform:             fmt.Sprintf("Platform %d", i%4+1),
			ServiceStatus:        "on_time",
			WheelchairAccessible: true,
			IsMockData:           true,
		})
	}

	return r.success(map[string]any{
		"station_info":   info,
		"departures":     departures,
		"last_updated":   now.Format(time.RFC3339),
		"data_source":    "mock_data_development_only",
		"service_alerts": []any{},
		"warning":        "This is mock data for development - not real transport information",
	})
}
