package notify

import (
	"errors"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		values    map[string]string
		wantTitle string
		wantBody  string
		wantErr   bool
	}{
		{
			name:      "arrival",
			template:  TemplateJourneyArrival,
			values:    map[string]string{"stop_name": "Bondi Junction"},
			wantTitle: "Journey Alert",
			wantBody:  "You're approaching Bondi Junction! Get ready to get off.",
		},
		{
			name:      "look-ahead",
			template:  TemplateJourneyLookahead,
			values:    map[string]string{"remaining_stops": "2", "destination": "Central"},
			wantTitle: "Journey Alert",
			wantBody:  "Get ready! 2 stops until Central.",
		},
		{
			name:     "transport delay",
			template: TemplateTransportDelay,
			values: map[string]string{
				"transport_type": "train",
				"destination":    "Parramatta",
				"delay_minutes":  "7",
			},
			wantTitle: "Transport Delay Alert",
			wantBody:  "Your train service to Parramatta is delayed by 7 minutes.",
		},
		{
			name:     "missing value",
			template: TemplateWeatherAlert,
			values:   map[string]string{"weather_condition": "Rain"},
			wantErr:  true,
		},
		{
			name:     "unknown template",
			template: "fireworks",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := RenderTemplate(tt.template, "tok", tt.values)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RenderTemplate error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidNotification) {
					t.Errorf("error %v does not wrap ErrInvalidNotification", err)
				}
				return
			}
			if n.Title != tt.wantTitle || n.Body != tt.wantBody {
				t.Errorf("got %q / %q, want %q / %q", n.Title, n.Body, tt.wantTitle, tt.wantBody)
			}
			if n.Recipient != "tok" {
				t.Errorf("recipient = %q", n.Recipient)
			}
		})
	}
}

func TestTemplateNamesSorted(t *testing.T) {
	names := TemplateNames()
	if len(names) != len(templates) {
		t.Fatalf("TemplateNames returned %d names, want %d", len(names), len(templates))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}
