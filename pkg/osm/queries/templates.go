// Package queries provides utilities for building OpenStreetMap API queries.
package queries

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultTimeout is the server-side timeout, in seconds, sent with every query.
const DefaultTimeout = 25

// OverpassBuilder provides a fluent interface for building Overpass API queries.
// Tag filters are written in sorted order so equal inputs give equal queries.
type OverpassBuilder struct {
	buf        strings.Builder
	hasElement bool
}

// NewOverpassBuilder creates a new Overpass query builder.
// All queries start with [out:json] to request JSON output format.
func NewOverpassBuilder() *OverpassBuilder {
	b := &OverpassBuilder{}
	b.buf.WriteString(fmt.Sprintf("[out:json][timeout:%d];", DefaultTimeout))
	return b
}

// WithNode adds a node query around a point with specified radius and tags.
func (b *OverpassBuilder) WithNode(lat, lon, radius float64, tags map[string]string) *OverpassBuilder {
	b.addElement(fmt.Sprintf("node(around:%.0f,%.6f,%.6f)", radius, lat, lon), tags)
	return b
}

// WithWay adds a way query around a point with specified radius and tags.
func (b *OverpassBuilder) WithWay(lat, lon, radius float64, tags map[string]string) *OverpassBuilder {
	b.addElement(fmt.Sprintf("way(around:%.0f,%.6f,%.6f)", radius, lat, lon), tags)
	return b
}

// WithTagValues adds node and way queries for every key=value pair of tags.
func (b *OverpassBuilder) WithTagValues(lat, lon, radius float64, tags map[string][]string) *OverpassBuilder {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		values := append([]string(nil), tags[k]...)
		sort.Strings(values)
		seen := map[string]bool{}
		for _, v := range values {
			if seen[v] {
				continue
			}
			seen[v] = true
			filter := map[string]string{k: v}
			b.WithNode(lat, lon, radius, filter).WithWay(lat, lon, radius, filter)
		}
	}
	return b
}

// Begin starts a group of queries with parentheses.
func (b *OverpassBuilder) Begin() *OverpassBuilder {
	if !b.hasElement {
		b.buf.WriteString("(")
		b.hasElement = true
	}
	return b
}

// End closes the group with 'out center;' so ways carry a center point.
func (b *OverpassBuilder) End() *OverpassBuilder {
	return b.WithOutput("center")
}

// WithOutput closes the group with a custom output format.
func (b *OverpassBuilder) WithOutput(outputType string) *OverpassBuilder {
	if b.hasElement {
		b.buf.WriteString(fmt.Sprintf(");out %s;", outputType))
		b.hasElement = false
	}
	return b
}

// Build returns the complete Overpass query string.
func (b *OverpassBuilder) Build() string {
	return b.buf.String()
}

func (b *OverpassBuilder) addElement(baseQuery string, tags map[string]string) {
	if !b.hasElement {
		b.Begin()
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.buf.WriteString(baseQuery)
	for _, k := range keys {
		if v := tags[k]; v == "" {
			b.buf.WriteString(fmt.Sprintf("[%s]", k))
		} else {
			b.buf.WriteString(fmt.Sprintf("[%s=%s]", k, v))
		}
	}
	b.buf.WriteString(";")
}

// Named returns a query for named elements matching any of tags.
func Named(lat, lon, radius float64, tags map[string][]string) string {
	b := NewOverpassBuilder().Begin().WithTagValues(lat, lon, radius, tags)
	return b.End().Build()
}

// StandardQueries contains the guide's common query templates
var StandardQueries = struct {
	Attractions     func(lat, lon, radius float64) string
	Restaurants     func(lat, lon, radius float64) string
	PublicTransport func(lat, lon, radius float64) string
}{
	Attractions: func(lat, lon, radius float64) string {
		return Named(lat, lon, radius, map[string][]string{
			"tourism":  {"attraction", "museum", "gallery", "viewpoint"},
			"historic": {"monument"},
		})
	},

	Restaurants: func(lat, lon, radius float64) string {
		return Named(lat, lon, radius, map[string][]string{
			"amenity": {"restaurant", "cafe", "fast_food"},
		})
	},

	PublicTransport: func(lat, lon, radius float64) string {
		return NewOverpassBuilder().
			Begin().
			WithNode(lat, lon, radius, map[string]string{"railway": "station"}).
			WithNode(lat, lon, radius, map[string]string{"railway": "tram_stop"}).
			WithNode(lat, lon, radius, map[string]string{"highway": "bus_stop"}).
			WithNode(lat, lon, radius, map[string]string{"amenity": "ferry_terminal"}).
			End().
			Build()
	},
}
