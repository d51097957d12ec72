package osm

import (
	"reflect"
	"sort"
	"testing"
)

func TestTagsForCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     map[string][]string
	}{
		{name: "known", category: "museum", want: CategoryMap["museum"]},
		{name: "plural", category: "Museums", want: CategoryMap["museum"]},
		{name: "alias", category: "attractions", want: CategoryMap["tourist_attraction"]},
		{name: "shopping alias", category: "shops", want: CategoryMap["shopping_mall"]},
		{name: "unknown amenity", category: "pharmacy", want: map[string][]string{"amenity": {"pharmacy"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TagsForCategory(tt.category); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TagsForCategory(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}

	t.Run("all merges sightseeing categories", func(t *testing.T) {
		got := TagsForCategory("all")
		for _, key := range []string{"tourism", "historic", "leisure", "amenity"} {
			if len(got[key]) == 0 {
				t.Errorf("merged tags missing %s: %v", key, got)
			}
		}
	})
}

func TestTagsForTransport(t *testing.T) {
	if got := TagsForTransport("ferry"); !reflect.DeepEqual(got, TransportMap["ferry"]) {
		t.Errorf("ferry tags = %v", got)
	}

	all := TagsForTransport("all")
	railway := append([]string(nil), all["railway"]...)
	sort.Strings(railway)
	if !reflect.DeepEqual(railway, []string{"halt", "station", "tram_stop"}) {
		t.Errorf("merged railway tags = %v", railway)
	}
	if len(all["amenity"]) != 2 || len(all["highway"]) != 1 {
		t.Errorf("merged tags = %v", all)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		tags  map[string]string
		table map[string]map[string][]string
		want  string
	}{
		{name: "museum", tags: map[string]string{"tourism": "museum"}, table: CategoryMap, want: "museum"},
		{name: "pub is a bar", tags: map[string]string{"amenity": "pub"}, table: CategoryMap, want: "bar"},
		{name: "cafe wins over restaurant", tags: map[string]string{"amenity": "cafe"}, table: CategoryMap, want: "cafe"},
		{name: "train station", tags: map[string]string{"railway": "station"}, table: TransportMap, want: "train"},
		{name: "tram stop", tags: map[string]string{"railway": "tram_stop"}, table: TransportMap, want: "light_rail"},
		{name: "unmatched", tags: map[string]string{"shop": "bakery"}, table: CategoryMap, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(tt.tags, tt.table); got != tt.want {
				t.Errorf("classify(%v) = %q, want %q", tt.tags, got, tt.want)
			}
		})
	}
}
