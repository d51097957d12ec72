package osm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
)

// ErrNoRoute is returned when OSRM cannot connect the two points.
var ErrNoRoute = errors.New("no route found")

// Route profiles supported by the public OSRM instance
const (
	ProfileFoot    = "foot"
	ProfileCar     = "car"
	ProfileBicycle = "bike"
)

// RouteStep is one maneuver of a route.
type RouteStep struct {
	Instruction     string       `json:"instruction"`
	Street          string       `json:"street,omitempty"`
	Mode            string       `json:"mode"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
	Location        geo.Location `json:"location"`
}

// Route is a decoded OSRM route.
type Route struct {
	DistanceMeters  float64        `json:"distance_meters"`
	DurationSeconds float64        `json:"duration_seconds"`
	Polyline        string         `json:"polyline"`
	Geometry        []geo.Location `json:"geometry"`
	Steps           []RouteStep    `json:"steps"`
}

// osrmResponse represents the response from the OSRM routing service
type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
	Routes  []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
		Geometry string  `json:"geometry"`
		Legs     []struct {
			Steps []struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
				Mode     string  `json:"mode"`
				Name     string  `json:"name"`
				Maneuver struct {
					Location []float64 `json:"location"`
					Type     string    `json:"type"`
					Modifier string    `json:"modifier"`
				} `json:"maneuver"`
			} `json:"steps"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route asks OSRM for the best route between two points using profile.
func (c *Client) Route(ctx context.Context, profile string, from, to geo.Location) (*Route, error) {
	if profile == "" {
		profile = ProfileFoot
	}
	coords := fmt.Sprintf("%f,%f;%f,%f", from.Longitude, from.Latitude, to.Longitude, to.Latitude)
	reqURL, err := url.Parse(fmt.Sprintf("%s/route/v1/%s/%s", c.baseURLs[ServiceOSRM], profile, coords))
	if err != nil {
		return nil, fmt.Errorf("parse osrm url: %w", err)
	}
	q := reqURL.Query()
	q.Add("overview", "full")
	q.Add("geometries", "polyline")
	q.Add("steps", "true")
	reqURL.RawQuery = q.Encode()

	req, err := NewRequestWithUserAgent(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, ServiceOSRM, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode osrm response: %w", err)
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, body.Code, body.Message)
	}

	r := body.Routes[0]
	route := &Route{
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Polyline:        r.Geometry,
		Geometry:        DecodePolyline(r.Geometry),
		Steps:           []RouteStep{},
	}
	for _, leg := range r.Legs {
		for _, s := range leg.Steps {
			step := RouteStep{
				Instruction:     instruction(s.Maneuver.Type, s.Maneuver.Modifier, s.Name),
				Street:          s.Name,
				Mode:            s.Mode,
				DistanceMeters:  s.Distance,
				DurationSeconds: s.Duration,
			}
			if len(s.Maneuver.Location) == 2 {
				step.Location = geo.Location{Latitude: s.Maneuver.Location[1], Longitude: s.Maneuver.Location[0]}
			}
			route.Steps = append(route.Steps, step)
		}
	}
	return route, nil
}

// instruction renders an OSRM maneuver as a short sentence.
func instruction(kind, modifier, street string) string {
	var b strings.Builder
	switch kind {
	case "depart":
		b.WriteString("Head out")
	case "arrive":
		return "Arrive at destination"
	case "turn", "end of road", "fork":
		b.WriteString("Turn")
	default:
		b.WriteString("Continue")
	}
	if modifier != "" && kind != "depart" {
		b.WriteString(" " + modifier)
	}
	if street != "" {
		b.WriteString(" onto " + street)
	}
	return b.String()
}
