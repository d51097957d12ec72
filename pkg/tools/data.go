package tools

import (
	"github.com/sydneyguide/sydneymcp/pkg/geo"
)

// DefaultLocation is reported by get_current_location in mock mode.
var DefaultLocation = struct {
	Latitude  float64
	Longitude float64
	Address   string
	City      string
	Country   string
}{
	Latitude:  -33.8688,
	Longitude: 151.2093,
	Address:   "Sydney Opera House, Bennelong Point, Sydney NSW 2000, Australia",
	City:      "Sydney",
	Country:   "Australia",
}

// Place types understood by the place tools
var placeTypes = []string{"tourist_attraction", "restaurant", "shopping_mall", "museum", "park", "transport", "entertainment"}

// Place is a point of interest in the static guide table.
type Place struct {
	ID           string   `json:"place_id"`
	Name         string   `json:"name"`
	Type         string   `json:"place_type"`
	Latitude     float64  `json:"lat"`
	Longitude    float64  `json:"lng"`
	Address      string   `json:"address"`
	Rating       float64  `json:"rating"`
	PriceLevel   int      `json:"price_level"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Description  string   `json:"description"`
	OpeningHours string   `json:"opening_hours,omitempty"`
	Features     []string `json:"features,omitempty"`
	DistanceKm   *float64 `json:"distance_km,omitempty"`
}

func (p Place) location() geo.Location {
	return geo.Location{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Station is a public transport stop in the static guide table.
type Station struct {
	ID         string   `json:"stop_id"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Latitude   float64  `json:"lat"`
	Longitude  float64  `json:"lng"`
	Address    string   `json:"address"`
	Services   []string `json:"services"`
	Facilities []string `json:"facilities"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// places is ordered by id.
var places = []Place{
	{
		ID: "place_001", Name: "Sydney Opera House", Type: "tourist_attraction",
		Latitude: -33.8568, Longitude: 151.2153, Address: "Bennelong Point, Sydney NSW 2000",
		Rating: 4.6, PriceLevel: 4,
		Description:  "World-famous performing arts venue and architectural icon",
		OpeningHours: "Tours: 9:00 AM - 5:00 PM",
		Features:     []string{"tours", "performances", "dining", "gift_shop"},
	},
	{
		ID: "place_002", Name: "Sydney Harbour Bridge", Type: "tourist_attraction",
		Latitude: -33.8523, Longitude: 151.2108, Address: "Sydney Harbour Bridge, Sydney NSW",
		Rating: 4.5, PriceLevel: 3,
		Description: "Iconic steel arch bridge with BridgeClimb experiences",
		Features:    []string{"bridge_climb", "pylon_lookout", "walking", "cycling"},
	},
	{
		ID: "place_003", Name: "Quay Restaurant", Type: "restaurant",
		Latitude: -33.8584, Longitude: 151.2106, Address: "Upper Level, Overseas Passenger Terminal, The Rocks NSW 2000",
		Rating: 4.4, PriceLevel: 4, Cuisine: "modern_australian",
		Description:  "Award-winning fine dining with harbour views",
		OpeningHours: "Tue-Sat: 6:00 PM - 10:00 PM",
		Features:     []string{"harbour_view", "fine_dining", "wine_list"},
	},
	{
		ID: "place_004", Name: "Bennelong Restaurant", Type: "restaurant",
		Latitude: -33.8568, Longitude: 151.2153, Address: "Sydney Opera House, Bennelong Point NSW 2000",
		Rating: 4.2, PriceLevel: 4, Cuisine: "modern_australian",
		Description:  "Fine dining inside the Opera House",
		OpeningHours: "Tue-Sat: 5:30 PM - 10:00 PM",
	},
	{
		ID: "place_005", Name: "Queen Victoria Building (QVB)", Type: "shopping_mall",
		Latitude: -33.8719, Longitude: 151.2062, Address: "455 George St, Sydney NSW 2000",
		Rating: 4.3, PriceLevel: 3,
		Description:  "Historic shopping centre with luxury boutiques",
		OpeningHours: "Mon-Sat: 9:00 AM - 6:00 PM, Sun: 11:00 AM - 5:00 PM",
	},
	{
		ID: "place_006", Name: "Westfield Sydney", Type: "shopping_mall",
		Latitude: -33.8704, Longitude: 151.2065, Address: "188 Pitt St, Sydney NSW 2000",
		Rating: 4.1, PriceLevel: 3,
		Description: "Modern shopping center in Sydney CBD",
	},
	{
		ID: "place_007", Name: "Australian Museum", Type: "museum",
		Latitude: -33.8742, Longitude: 151.2135, Address: "1 William St, Sydney NSW 2010",
		Rating: 4.2, PriceLevel: 2,
		Description: "Australia's first museum with natural history collections",
	},
	{
		ID: "place_008", Name: "Art Gallery of NSW", Type: "museum",
		Latitude: -33.8688, Longitude: 151.2168, Address: "Art Gallery Rd, The Domain NSW 2000",
		Rating: 4.4, PriceLevel: 1,
		Description: "Premier art gallery with Australian and international works",
	},
	{
		ID: "place_009", Name: "Royal Botanic Gardens Sydney", Type: "park",
		Latitude: -33.8642, Longitude: 151.2166, Address: "Mrs Macquaries Rd, Sydney NSW 2000",
		Rating: 4.6, PriceLevel: 0,
		Description: "Historic botanical gardens with harbour views",
	},
	{
		ID: "place_010", Name: "Hyde Park", Type: "park",
		Latitude: -33.8732, Longitude: 151.2104, Address: "Elizabeth St, Sydney NSW 2000",
		Rating: 4.3, PriceLevel: 0,
		Description: "Historic city park in the heart of Sydney CBD",
	},
	{
		ID: "place_011", Name: "Circular Quay Station", Type: "transport",
		Latitude: -33.8611, Longitude: 151.2107, Address: "Alfred St, Sydney NSW 2000",
		Rating: 4.0, PriceLevel: 0,
		Description: "Major transport hub for trains, buses, and ferries",
	},
	{
		ID: "place_012", Name: "State Theatre", Type: "entertainment",
		Latitude: -33.8721, Longitude: 151.2076, Address: "49 Market St, Sydney NSW 2000",
		Rating: 4.5, PriceLevel: 3,
		Description: "Historic theatre hosting musicals, concerts and events",
	},
	{
		ID: "place_013", Name: "Yellow Food Store", Type: "restaurant",
		Latitude: -33.8847, Longitude: 151.2099, Address: "57 Macleay St, Potts Point NSW 2011",
		Rating: 4.7, PriceLevel: 2, Cuisine: "vegan",
		Description: "Plant-based organic vegan restaurant and grocer",
	},
	{
		ID: "place_014", Name: "Gigi Pizzeria", Type: "restaurant",
		Latitude: -33.8964, Longitude: 151.1794, Address: "379 King St, Newtown NSW 2042",
		Rating: 4.5, PriceLevel: 2, Cuisine: "vegan",
		Description: "Plant-based pizza with creative vegan toppings",
	},
	{
		ID: "place_015", Name: "Din Tai Fung", Type: "restaurant",
		Latitude: -33.8704, Longitude: 151.2065, Address: "Level 1, Westfield Sydney, 188 Pitt St, Sydney NSW 2000",
		Rating: 4.1, PriceLevel: 2, Cuisine: "chinese",
		Description: "Taiwanese restaurant chain known for xiaolongbao",
	},
	{
		ID: "place_016", Name: "The Strand Arcade", Type: "shopping_mall",
		Latitude: -33.8697, Longitude: 151.2078, Address: "412-414 George St, Sydney NSW 2000",
		Rating: 4.4, PriceLevel: 3,
		Description: "Victorian-era shopping arcade",
	},
	{
		ID: "place_017", Name: "Sydney Observatory", Type: "tourist_attraction",
		Latitude: -33.8568, Longitude: 151.2044, Address: "1003 Upper Fort St, Millers Point NSW 2000",
		Rating: 4.3, PriceLevel: 2,
		Description: "Historic observatory with telescope shows and harbour views",
	},
}

// stations is ordered by id.
var stations = []Station{
	{
		ID: "central_station", Name: "Central Station", Type: "train",
		Latitude: -33.8830, Longitude: 151.2063, Address: "Central Station, Eddy Ave, Sydney NSW 2000",
		Services:   []string{"t1", "t2", "t3", "t4", "t8", "airport_link"},
		Facilities: []string{"wheelchair_accessible", "parking", "shops", "toilets"},
	},
	{
		ID: "circular_quay", Name: "Circular Quay", Type: "ferry",
		Latitude: -33.8611, Longitude: 151.2107, Address: "Alfred St, Sydney NSW 2000",
		Services:   []string{"ferry_manly", "ferry_parramatta", "ferry_taronga"},
		Facilities: []string{"wheelchair_accessible", "parking", "food"},
	},
	{
		ID: "qvb_bus_stop", Name: "QVB Bus Stop", Type: "bus",
		Latitude: -33.8719, Longitude: 151.2062, Address: "George St, Sydney NSW 2000",
		Services:   []string{"bus_555", "bus_333", "bus_200"},
		Facilities: []string{"shelter", "real_time_display"},
	},
	{
		ID: "wynyard_station", Name: "Wynyard Station", Type: "train",
		Latitude: -33.8655, Longitude: 151.2065, Address: "York St, Sydney NSW 2000",
		Services:   []string{"t1", "t2", "t3", "t9"},
		Facilities: []string{"wheelchair_accessible", "shops", "underground"},
	},
}

// serviceRoutes are the route labels used for mock departures.
var serviceRoutes = map[string][]string{
	"bus":        {"200", "333", "378", "380", "394", "396", "400", "L28", "M20", "M30"},
	"train":      {"T1", "T2", "T3", "T4", "T8", "T9"},
	"ferry":      {"F1", "F3", "F4", "F7", "F8"},
	"light_rail": {"L1", "L2", "L3"},
}

func findPlace(id string) (Place, bool) {
	for _, p := range places {
		if p.ID == id {
			return p, true
		}
	}
	return Place{}, false
}

func findStation(id string) (Station, bool) {
	for _, s := range stations {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}
