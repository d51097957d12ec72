package notify

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Template names
const (
	TemplateTransportDelay           = "transport_delay"
	TemplateLocationSuggestion       = "location_suggestion"
	TemplateJourneyReminder          = "journey_reminder"
	TemplateRestaurantRecommendation = "restaurant_recommendation"
	TemplateWeatherAlert             = "weather_alert"
	TemplateJourneyArrival           = "journey_arrival"
	TemplateJourneyLookahead         = "journey_lookahead"
)

// Template is a notification with {placeholder} slots in its title and body.
type Template struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
}

var templates = map[string]Template{
	TemplateTransportDelay: {
		Title:    "Transport Delay Alert",
		Body:     "Your {transport_type} service to {destination} is delayed by {delay_minutes} minutes.",
		Category: "transport",
		Priority: PriorityHigh,
	},
	TemplateLocationSuggestion: {
		Title:    "Nearby Attraction",
		Body:     "You're near {place_name}! It has a {rating} star rating and is only {distance}m away.",
		Category: "suggestion",
		Priority: PriorityMedium,
	},
	TemplateJourneyReminder: {
		Title:    "Journey Reminder",
		Body:     "Don't forget to leave for {destination} in {minutes} minutes to catch your {transport_type}.",
		Category: "reminder",
		Priority: PriorityHigh,
	},
	TemplateRestaurantRecommendation: {
		Title:    "Hungry? Try This!",
		Body:     "{restaurant_name} nearby serves great {cuisine_type}. Rating: {rating} stars, {distance}m away.",
		Category: "recommendation",
		Priority: PriorityLow,
	},
	TemplateWeatherAlert: {
		Title:    "Weather Update",
		Body:     "{weather_condition} expected in Sydney. {advice}",
		Category: "weather",
		Priority: PriorityMedium,
	},
	TemplateJourneyArrival: {
		Title:    "Journey Alert",
		Body:     "You're approaching {stop_name}! Get ready to get off.",
		Category: "journey",
		Priority: PriorityHigh,
	},
	TemplateJourneyLookahead: {
		Title:    "Journey Alert",
		Body:     "Get ready! {remaining_stops} stops until {destination}.",
		Category: "journey",
		Priority: PriorityHigh,
	},
}

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// LookupTemplate returns the named template.
func LookupTemplate(name string) (Template, bool) {
	t, ok := templates[name]
	return t, ok
}

// TemplateNames lists the registered template names in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fill substitutes every {key} in text with values[key]. Placeholders with
// no value are reported as an error naming all of them.
func Fill(text string, values map[string]string) (string, error) {
	var missing []string
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		key := match[1 : len(match)-1]
		v, ok := values[key]
		if !ok {
			missing = append(missing, key)
			return match
		}
		return v
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: missing template values: %s", ErrInvalidNotification, strings.Join(missing, ", "))
	}
	return out, nil
}

// Render builds a notification for recipient from the template.
func (t Template) Render(recipient string, values map[string]string) (Notification, error) {
	title, err := Fill(t.Title, values)
	if err != nil {
		return Notification{}, err
	}
	body, err := Fill(t.Body, values)
	if err != nil {
		return Notification{}, err
	}
	return Notification{
		Recipient: recipient,
		Title:     title,
		Body:      body,
		Priority:  t.Priority,
		Category:  t.Category,
	}, nil
}

// RenderTemplate looks up a template by name and renders it.
func RenderTemplate(name, recipient string, values map[string]string) (Notification, error) {
	t, ok := LookupTemplate(name)
	if !ok {
		return Notification{}, fmt.Errorf("%w: unknown template %q", ErrInvalidNotification, name)
	}
	return t.Render(recipient, values)
}
