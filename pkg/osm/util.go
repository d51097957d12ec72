package osm

import (
	"sort"
	"strings"
)

const (
	// API endpoints
	NominatimBaseURL = "https://nominatim.openstreetmap.org"
	OverpassBaseURL  = "https://overpass-api.de/api/interpreter"
	OSRMBaseURL      = "https://router.project-osrm.org"
)

// CategoryMap maps the guide's place types to OSM tags
var CategoryMap = map[string]map[string][]string{
	"tourist_attraction": {
		"tourism": {"attraction", "viewpoint", "artwork"},
		"historic": {"monument", "memorial"},
	},
	"restaurant": {
		"amenity": {"restaurant", "fast_food", "cafe"},
	},
	"cafe": {
		"amenity": {"cafe"},
	},
	"bar": {
		"amenity": {"bar", "pub"},
	},
	"shopping_mall": {
		"shop": {"mall", "department_store"},
	},
	"museum": {
		"tourism": {"museum", "gallery"},
	},
	"park": {
		"leisure": {"park", "garden", "nature_reserve"},
	},
	"beach": {
		"natural": {"beach"},
	},
	"entertainment": {
		"amenity": {"theatre", "cinema", "nightclub"},
	},
	"hotel": {
		"tourism": {"hotel", "motel", "hostel", "guest_house"},
	},
	"transport": {
		"public_transport": {"station"},
		"amenity":          {"ferry_terminal", "bus_station"},
	},
}

// TransportMap maps a transport type to the tags of its stops.
var TransportMap = map[string]map[string][]string{
	"train": {
		"railway": {"station", "halt"},
	},
	"bus": {
		"highway": {"bus_stop"},
		"amenity": {"bus_station"},
	},
	"ferry": {
		"amenity": {"ferry_terminal"},
	},
	"light_rail": {
		"railway": {"tram_stop"},
	},
}

// TagsForCategory returns the OSM tags of a place type. Plural and unknown
// names fall back to an amenity of the same name.
func TagsForCategory(category string) map[string][]string {
	category = strings.ToLower(strings.TrimSpace(category))
	if tags, ok := CategoryMap[category]; ok {
		return tags
	}
	if tags, ok := CategoryMap[strings.TrimSuffix(category, "s")]; ok {
		return tags
	}
	switch category {
	case "", "all":
		merged := map[string][]string{}
		for _, name := range []string{"tourist_attraction", "museum", "park", "restaurant"} {
			for k, vs := range CategoryMap[name] {
				merged[k] = append(merged[k], vs...)
			}
		}
		return merged
	case "attraction", "attractions", "sights":
		return CategoryMap["tourist_attraction"]
	case "shopping", "shops", "mall":
		return CategoryMap["shopping_mall"]
	}
	return map[string][]string{"amenity": {category}}
}

// TagsForTransport returns the stop tags of a transport type; "all" or an
// empty type merges every mode.
func TagsForTransport(transportType string) map[string][]string {
	if tags, ok := TransportMap[transportType]; ok {
		return tags
	}
	merged := map[string][]string{}
	for _, tags := range TransportMap {
		for k, vs := range tags {
			merged[k] = append(merged[k], vs...)
		}
	}
	return merged
}

// classify derives the guide's place type from OSM tags.
func classify(tags map[string]string, table map[string]map[string][]string) string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for key, values := range table[name] {
			for _, v := range values {
				if tags[key] == v {
					return name
				}
			}
		}
	}
	return ""
}
