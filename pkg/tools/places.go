package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/osm"
)

// maxSearchRadiusKm bounds place and transport searches.
const maxSearchRadiusKm = 50

// SearchPlacesTool returns a tool definition for searching places
func SearchPlacesTool() mcp.Tool {
	return mcp.NewTool("search_places",
		mcp.WithDescription("Search places in Sydney with query, location, type and radius filters"),
		mcp.WithString("query",
			mcp.Description("Text to match against place names and descriptions"),
			mcp.DefaultString(""),
		),
		mcp.WithNumber("lat",
			mcp.Description("Latitude of the search centre"),
			mcp.DefaultNumber(DefaultLocation.Latitude),
		),
		mcp.WithNumber("lng",
			mcp.Description("Longitude of the search centre"),
			mcp.DefaultNumber(DefaultLocation.Longitude),
		),
		mcp.WithString("place_type",
			mcp.Description("Place type filter"),
			mcp.Enum(append([]string{"all"}, placeTypes...)...),
			mcp.DefaultString("all"),
		),
		mcp.WithNumber("radius",
			mcp.Description("Search radius in kilometers"),
			mcp.DefaultNumber(5),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results"),
			mcp.DefaultNumber(10),
		),
	)
}

// HandleSearchPlaces implements place search
func (r *Registry) HandleSearchPlaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("search_places")

	query := strings.TrimSpace(mcp.ParseString(req, "query", ""))
	lat := mcp.ParseFloat64(req, "lat", DefaultLocation.Latitude)
	lng := mcp.ParseFloat64(req, "lng", DefaultLocation.Longitude)
	placeType := mcp.ParseString(req, "place_type", "all")
	radius := mcp.ParseFloat64(req, "radius", 5)
	limit := int(mcp.ParseFloat64(req, "max_results", 10))
	if limit <= 0 {
		limit = 10
	}

	if apiErr := ValidationError(lat, lng, radius, maxSearchRadiusKm); apiErr != nil {
		return r.failure(CodeInvalidParameters, guidanceMessage(apiErr))
	}

	params := map[string]any{
		"query":       query,
		"location":    geo.Location{Latitude: lat, Longitude: lng},
		"place_type":  placeType,
		"radius_km":   radius,
		"max_results": limit,
	}
	origin := geo.Location{Latitude: lat, Longitude: lng}

	if r.LiveMode() {
		found, err := r.osm.SearchPlaces(ctx, placeType, origin, radius*1000, 0)
		if err != nil {
			logger.Error("place search failed", "error", err)
			return r.failure(CodeSearchError, guidanceMessage(upstreamError(osm.ServiceOverpass, err)))
		}
		matched := make([]osm.Place, 0, len(found))
		for _, p := range found {
			if query == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
				matched = append(matched, p)
			}
		}
		total := len(matched)
		if len(matched) > limit {
			matched = matched[:limit]
		}
		return r.success(map[string]any{
			"places":        matched,
			"total_found":   total,
			"search_params": params,
			"source":        "openstreetmap",
		})
	}

	q := strings.ToLower(query)
	matched := []Place{}
	for _, p := range places {
		if placeType != "all" && p.Type != placeType {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		d := geo.DistanceBetween(origin, p.location()) / 1000
		if d > radius {
			continue
		}
		d = round(d, 2)
		p.DistanceKm = &d
		matched = append(matched, p)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return *matched[i].DistanceKm < *matched[j].DistanceKm
	})

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}

	logger.Debug("places matched", "query", query, "type", placeType, "found", total)
	return r.success(map[string]any{
		"places":        matched,
		"total_found":   total,
		"search_params": params,
		"source":        "mock_database",
	})
}

// GetPlaceDetailsTool returns a tool definition for place details
func GetPlaceDetailsTool() mcp.Tool {
	return mcp.NewTool("get_place_details",
		mcp.WithDescription("Get detailed information for a specific place"),
		mcp.WithString("place_id",
			mcp.Required(),
			mcp.Description("Place ID (example: place_001)"),
		),
	)
}

// HandleGetPlaceDetails looks a place up by id
func (r *Registry) HandleGetPlaceDetails(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := strings.TrimSpace(mcp.ParseString(req, "place_id", ""))
	if id == "" {
		return r.failure(CodeInvalidParameters, "place_id is required")
	}
	p, ok := findPlace(id)
	if !ok {
		return r.failure(CodePlaceNotFound, fmt.Sprintf("Place with ID '%s' not found", id))
	}
	return r.success(map[string]any{"place": p})
}

// GetPlacesByTypeTool returns a tool definition for listing places by type
func GetPlacesByTypeTool() mcp.Tool {
	return mcp.NewTool("get_places_by_type",
		mcp.WithDescription("List places of a specific type, highest rated first"),
		mcp.WithString("place_type",
			mcp.Required(),
			mcp.Description("Place type"),
			mcp.Enum(placeTypes...),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results"),
			mcp.DefaultNumber(10),
		),
	)
}

// HandleGetPlacesByType lists places of one type ordered by rating
func (r *Registry) HandleGetPlacesByType(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	placeType := mcp.ParseString(req, "place_type", "")
	limit := int(mcp.ParseFloat64(req, "limit", 10))
	if placeType == "" {
		return r.failure(CodeInvalidParameters, "place_type is required")
	}
	if limit <= 0 {
		limit = 10
	}

	matched := []Place{}
	for _, p := range places {
		if p.Type == placeType {
			matched = append(matched, p)
		}
	}
	sortByRating(matched)

	total := len(matched)
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return r.success(map[string]any{
		"places":      matched,
		"place_type":  placeType,
		"total_found": total,
		"limit":       limit,
	})
}

// GetPopularPlacesTool returns a tool definition for popular places
func GetPopularPlacesTool() mcp.Tool {
	return mcp.NewTool("get_popular_places",
		mcp.WithDescription("Get the most popular places by rating"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results"),
			mcp.DefaultNumber(5),
		),
	)
}

// HandleGetPopularPlaces returns the top rated places
func (r *Registry) HandleGetPopularPlaces(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(mcp.ParseFloat64(req, "limit", 5))
	if limit <= 0 {
		limit = 5
	}

	all := append([]Place(nil), places...)
	sortByRating(all)
	if len(all) > limit {
		all = all[:limit]
	}
	return r.success(map[string]any{
		"places":   all,
		"criteria": "highest_rating",
		"limit":    limit,
	})
}

// sortByRating orders by rating descending; ties keep table order.
func sortByRating(ps []Place) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].Rating > ps[j].Rating
	})
}
