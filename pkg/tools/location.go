package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/osm"
)

// accuracyPrecision maps an accuracy level to coordinate decimals.
var accuracyPrecision = map[string]int{
	"high":   6,
	"medium": 4,
	"low":    2,
}

// GetCurrentLocationTool returns a tool definition for locating the user
func GetCurrentLocationTool() mcp.Tool {
	return mcp.NewTool("get_current_location",
		mcp.WithDescription("Get the user's current location in Sydney"),
		mcp.WithString("accuracy",
			mcp.Description("Location accuracy level"),
			mcp.Enum("high", "medium", "low"),
			mcp.DefaultString("high"),
		),
		mcp.WithNumber("lat",
			mcp.Description("Device latitude, when known"),
		),
		mcp.WithNumber("lng",
			mcp.Description("Device longitude, when known"),
		),
	)
}

// HandleGetCurrentLocation reports the device position. In live mode the
// position is reverse geocoded through Nominatim. In mock mode a supplied
// position is echoed back and, without one, DefaultLocation stands in.
func (r *Registry) HandleGetCurrentLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("get_current_location")

	accuracy := mcp.ParseString(req, "accuracy", "high")
	precision, ok := accuracyPrecision[accuracy]
	if !ok {
		precision = accuracyPrecision["medium"]
	}

	lat, lng := DefaultLocation.Latitude, DefaultLocation.Longitude
	address := DefaultLocation.Address
	_, hasLat := argument(req, "lat")
	_, hasLng := argument(req, "lng")
	switch {
	case hasLat != hasLng:
		return r.failure(CodeInvalidParameters, "lat and lng must be supplied together")
	case hasLat:
		var err error
		if lat, err = requireNumber(req, "lat"); err != nil {
			return r.failure(CodeInvalidParameters, err.Error())
		}
		if lng, err = requireNumber(req, "lng"); err != nil {
			return r.failure(CodeInvalidParameters, err.Error())
		}
		// The mock address only describes the default point.
		address = fmt.Sprintf("%.4f, %.4f", lat, lng)
	}
	if err := geo.ValidateCoords(lat, lng); err != nil {
		return r.failure(CodeInvalidParameters, err.Error())
	}

	data := map[string]any{
		"lat":      round(lat, precision),
		"lng":      round(lng, precision),
		"address":  address,
		"city":     DefaultLocation.City,
		"country":  DefaultLocation.Country,
		"accuracy": accuracy,
		"source":   "mock_gps",
	}

	if r.LiveMode() {
		addr, err := r.osm.ReverseGeocode(ctx, lat, lng)
		if err != nil {
			apiErr := upstreamError(osm.ServiceNominatim, err)
			logger.Error("reverse geocode failed", "error", err)
			return r.failure(CodeLocationError, guidanceMessage(apiErr))
		}
		data["address"] = addr.DisplayName
		data["city"] = addr.City
		data["country"] = addr.Country
		if addr.Suburb != "" {
			data["suburb"] = addr.Suburb
		}
		data["source"] = "nominatim"
	}

	logger.Debug("location resolved", "accuracy", accuracy, "source", data["source"])
	return r.success(data)
}

// CalculateDistanceTool returns a tool definition for calculating distances
func CalculateDistanceTool() mcp.Tool {
	return mcp.NewTool("calculate_distance",
		mcp.WithDescription("Calculate the great-circle distance between two points"),
		mcp.WithNumber("start_lat",
			mcp.Required(),
			mcp.Description("Start point latitude"),
		),
		mcp.WithNumber("start_lng",
			mcp.Required(),
			mcp.Description("Start point longitude"),
		),
		mcp.WithNumber("end_lat",
			mcp.Required(),
			mcp.Description("End point latitude"),
		),
		mcp.WithNumber("end_lng",
			mcp.Required(),
			mcp.Description("End point longitude"),
		),
		mcp.WithString("unit",
			mcp.Description("Distance unit"),
			mcp.Enum(geo.UnitKilometers, geo.UnitMiles, geo.UnitMeters),
			mcp.DefaultString(geo.UnitKilometers),
		),
	)
}

// HandleCalculateDistance implements distance calculation
func (r *Registry) HandleCalculateDistance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var coords [4]float64
	for i, key := range []string{"start_lat", "start_lng", "end_lat", "end_lng"} {
		v, err := requireNumber(req, key)
		if err != nil {
			return r.failure(CodeCalculationError, err.Error())
		}
		coords[i] = v
	}
	unit := mcp.ParseString(req, "unit", geo.UnitKilometers)
	switch unit {
	case geo.UnitKilometers, geo.UnitMiles, geo.UnitMeters:
	default:
		return r.failure(CodeInvalidParameters, fmt.Sprintf("unknown unit %q (must be km, miles or meters)", unit))
	}

	km := geo.HaversineKm(coords[0], coords[1], coords[2], coords[3])

	return r.success(map[string]any{
		"distance":           round(geo.ConvertDistance(km, unit), 2),
		"unit":               unit,
		"start_coordinates":  geo.Location{Latitude: coords[0], Longitude: coords[1]},
		"end_coordinates":    geo.Location{Latitude: coords[2], Longitude: coords[3]},
		"calculation_method": "haversine",
	})
}
