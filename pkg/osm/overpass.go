package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/osm/queries"
)

// Place is a named OSM element near a search origin.
type Place struct {
	ID             string            `json:"place_id"`
	Name           string            `json:"name"`
	Type           string            `json:"place_type"`
	Location       geo.Location      `json:"location"`
	Address        string            `json:"address,omitempty"`
	DistanceMeters float64           `json:"distance_meters"`
	Tags           map[string]string `json:"tags,omitempty"`
}

type overpassElement struct {
	ID     int64             `json:"id"`
	Type   string            `json:"type"`
	Lat    float64           `json:"lat"`
	Lon    float64           `json:"lon"`
	Center *geo.Location     `json:"-"`
	Tags   map[string]string `json:"tags"`
}

func (e *overpassElement) UnmarshalJSON(data []byte) error {
	type plain overpassElement
	var raw struct {
		plain
		Center *struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"center"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = overpassElement(raw.plain)
	if raw.Center != nil {
		e.Center = &geo.Location{Latitude: raw.Center.Lat, Longitude: raw.Center.Lon}
	}
	return nil
}

func (e overpassElement) location() geo.Location {
	if e.Center != nil {
		return *e.Center
	}
	return geo.Location{Latitude: e.Lat, Longitude: e.Lon}
}

// Query runs a raw Overpass query and returns the named elements sorted by
// distance from origin, classified against table. A limit <= 0 keeps all.
func (c *Client) Query(ctx context.Context, query string, origin geo.Location, table map[string]map[string][]string, limit int) ([]Place, error) {
	req, err := NewRequestWithUserAgent(ctx, http.MethodPost, c.baseURLs[ServiceOverpass],
		strings.NewReader("data="+url.QueryEscape(query)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(ctx, ServiceOverpass, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var overpassResp struct {
		Elements []overpassElement `json:"elements"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&overpassResp); err != nil {
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}

	seen := map[string]bool{}
	places := make([]Place, 0, len(overpassResp.Elements))
	for _, el := range overpassResp.Elements {
		name := el.Tags["name"]
		if name == "" {
			continue
		}
		id := el.Type + "/" + strconv.FormatInt(el.ID, 10)
		if seen[id] {
			continue
		}
		seen[id] = true

		loc := el.location()
		places = append(places, Place{
			ID:             id,
			Name:           name,
			Type:           classify(el.Tags, table),
			Location:       loc,
			Address:        formatAddress(el.Tags),
			DistanceMeters: geo.DistanceBetween(origin, loc),
			Tags:           el.Tags,
		})
	}

	sort.SliceStable(places, func(i, j int) bool {
		return places[i].DistanceMeters < places[j].DistanceMeters
	})
	if limit > 0 && len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

// SearchPlaces finds named places of category within radiusMeters.
func (c *Client) SearchPlaces(ctx context.Context, category string, origin geo.Location, radiusMeters float64, limit int) ([]Place, error) {
	query := queries.Named(origin.Latitude, origin.Longitude, radiusMeters, TagsForCategory(category))
	return c.Query(ctx, query, origin, CategoryMap, limit)
}

// NearbyTransport finds stations and stops of transportType ("all" for any
// mode) within radiusMeters.
func (c *Client) NearbyTransport(ctx context.Context, transportType string, origin geo.Location, radiusMeters float64, limit int) ([]Place, error) {
	var query string
	if _, ok := TransportMap[transportType]; ok {
		query = queries.Named(origin.Latitude, origin.Longitude, radiusMeters, TagsForTransport(transportType))
	} else {
		query = queries.StandardQueries.PublicTransport(origin.Latitude, origin.Longitude, radiusMeters)
	}
	return c.Query(ctx, query, origin, TransportMap, limit)
}

func formatAddress(tags map[string]string) string {
	var parts []string
	street := strings.TrimSpace(tags["addr:housenumber"] + " " + tags["addr:street"])
	if street != "" {
		parts = append(parts, street)
	}
	if s := tags["addr:suburb"]; s != "" {
		parts = append(parts, s)
	} else if s := tags["addr:city"]; s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, ", ")
}
