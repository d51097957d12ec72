package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/notify"
)

// Scheduling defaults
const (
	defaultAlertRadiusMeters = 500.0
	alertExpiry              = 24 * time.Hour
)

var alertTypes = []string{"attractions", "restaurants", "transport", "all"}

// transitModes are the step modes that get departure reminders.
var transitModes = map[string]bool{
	"train":   true,
	"bus":     true,
	"ferry":   true,
	"transit": true,
}

// SendNotificationTool returns a tool definition for push notifications
func SendNotificationTool() mcp.Tool {
	return mcp.NewTool("send_notification",
		mcp.WithDescription("Send a push notification to the user"),
		mcp.WithString("user_token",
			mcp.Required(),
			mcp.Description("User's push notification token"),
		),
		mcp.WithString("title",
			mcp.Description("Notification title (optional when a template is used)"),
		),
		mcp.WithString("body",
			mcp.Description("Notification body text (optional when a template is used)"),
		),
		mcp.WithString("priority",
			mcp.Description("Notification priority"),
			mcp.Enum(string(notify.PriorityLow), string(notify.PriorityMedium), string(notify.PriorityHigh)),
			mcp.DefaultString(string(notify.PriorityMedium)),
		),
		mcp.WithString("template",
			mcp.Description("Optional message template name"),
			mcp.Enum(notify.TemplateNames()...),
		),
		mcp.WithObject("template_data",
			mcp.Description("Values for the template placeholders"),
		),
	)
}

// HandleSendNotification delivers one notification through the sink
func (r *Registry) HandleSendNotification(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("send_notification")

	recipient := recipientArgument(req)
	if recipient == "" {
		return r.failure(CodeNotificationError, "user_token is required")
	}

	var n notify.Notification
	if name := mcp.ParseString(req, "template", ""); name != "" {
		values, err := templateValues(req)
		if err != nil {
			return r.failure(CodeNotificationError, err.Error())
		}
		n, err = notify.RenderTemplate(name, recipient, values)
		if err != nil {
			return r.failure(CodeNotificationError, err.Error())
		}
	} else {
		n = notify.Notification{
			Recipient: recipient,
			Title:     mcp.ParseString(req, "title", ""),
			Body:      mcp.ParseString(req, "body", ""),
		}
	}
	if p, ok := argument(req, "priority"); ok {
		s, _ := p.(string)
		priority, err := notify.ParsePriority(s)
		if err != nil {
			return r.failure(CodeNotificationError, err.Error())
		}
		n.Priority = priority
	}
	if n.Priority == "" {
		n.Priority = notify.PriorityMedium
	}
	if err := n.Validate(); err != nil {
		return r.failure(CodeNotificationError, err.Error())
	}

	sendCtx, cancel := context.WithTimeout(ctx, r.notifyTimeout)
	defer cancel()
	delivery, err := r.sink.Send(sendCtx, n)
	if err != nil {
		logger.Warn("notification failed", "recipient", notify.TokenPrefix(recipient, 8), "error", err)
		return r.failure(CodeNotificationError, fmt.Sprintf("Notification sending failed: %v", err))
	}

	status := "delivered"
	if !delivery.Delivered {
		status = "undelivered"
	}
	logger.Info("notification sent", "recipient", notify.TokenPrefix(recipient, 8), "status", status)

	return r.success(map[string]any{
		"notification": map[string]any{
			"notification_id": delivery.ID,
			"user_token":      notify.TokenPrefix(recipient, 8),
			"title":           n.Title,
			"body":            n.Body,
			"priority":        n.Priority,
			"delivery_status": status,
			"sent_at":         delivery.SentAt.Format(time.RFC3339),
			"source":          delivery.Source,
		},
		"delivery_info": map[string]any{
			"delivered": delivery.Delivered,
			"platform":  delivery.Source,
			"receivers": delivery.Receivers,
		},
	})
}

// recipientArgument reads the push token under its current or legacy name.
func recipientArgument(req mcp.CallToolRequest) string {
	v, ok := firstArgument(req, "recipient_token", "user_token")
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// templateValues flattens template_data into strings.
func templateValues(req mcp.CallToolRequest) (map[string]string, error) {
	v, ok := argument(req, "template_data")
	if !ok {
		return map[string]string{}, nil
	}
	raw, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("template_data must be an object")
	}
	values := make(map[string]string, len(raw))
	for k, item := range raw {
		switch x := item.(type) {
		case string:
			values[k] = x
		case float64:
			values[k] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			values[k] = strconv.FormatBool(x)
		default:
			return nil, fmt.Errorf("template_data.%s must be a string, number or boolean", k)
		}
	}
	return values, nil
}

// ScheduleLocationAlertsTool returns a tool definition for waypoint alerts
func ScheduleLocationAlertsTool() mcp.Tool {
	return mcp.NewTool("schedule_location_alerts",
		mcp.WithDescription("Set up location-based notification alerts for the user's journey"),
		mcp.WithString("user_token",
			mcp.Required(),
			mcp.Description("User's push notification token"),
		),
		mcp.WithArray("journey_waypoints",
			mcp.Required(),
			mcp.Description("Journey waypoints, each an object with lat, lng and optional address"),
		),
		mcp.WithNumber("alert_radius",
			mcp.Description("Alert radius in meters"),
			mcp.DefaultNumber(defaultAlertRadiusMeters),
		),
		mcp.WithArray("alert_types",
			mcp.Description("Types of alerts to enable (attractions, restaurants, transport, all)"),
			mcp.DefaultArray([]interface{}{"all"}),
		),
	)
}

type waypoint struct {
	Latitude  *float64 `json:"lat"`
	Longitude *float64 `json:"lng"`
	Address   string   `json:"address"`
}

type locationAlert struct {
	ID           string    `json:"alert_id"`
	UserToken    string    `json:"user_token"`
	Location     alertSpot `json:"location"`
	RadiusMeters float64   `json:"radius_meters"`
	AlertTypes   []string  `json:"alert_types"`
	Status       string    `json:"status"`
	CreatedAt    string    `json:"created_at"`
	ExpiresAt    string    `json:"expires_at"`
}

type alertSpot struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Address   string  `json:"address"`
}

// HandleScheduleLocationAlerts records one alert per waypoint
func (r *Registry) HandleScheduleLocationAlerts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("schedule_location_alerts")

	recipient := recipientArgument(req)
	if recipient == "" {
		return r.failure(CodeAlertScheduling, "user_token is required")
	}
	raw, ok := argument(req, "journey_waypoints")
	if !ok {
		return r.failure(CodeAlertScheduling, "journey_waypoints is required")
	}
	var waypoints []waypoint
	if err := decodeArgument(raw, &waypoints); err != nil {
		return r.failure(CodeAlertScheduling, fmt.Sprintf("journey_waypoints must be an array of objects: %v", err))
	}

	radius := mcp.ParseFloat64(req, "alert_radius", defaultAlertRadiusMeters)
	if radius <= 0 {
		return r.failure(CodeAlertScheduling, "alert_radius must be greater than 0")
	}
	types := stringSlice(req, "alert_types", []string{"all"})
	for _, t := range types {
		if !contains(alertTypes, t) {
			return r.failure(CodeAlertScheduling, fmt.Sprintf("unknown alert type %q", t))
		}
	}

	now := r.now()
	alerts := make([]locationAlert, 0, len(waypoints))
	for i, wp := range waypoints {
		if wp.Latitude == nil || wp.Longitude == nil {
			return r.failure(CodeAlertScheduling, fmt.Sprintf("waypoint %d is missing lat or lng", i))
		}
		if err := geo.ValidateCoords(*wp.Latitude, *wp.Longitude); err != nil {
			return r.failure(CodeAlertScheduling, fmt.Sprintf("waypoint %d: %v", i, err))
		}
		address := wp.Address
		if address == "" {
			address = "Unknown location"
		}
		alerts = append(alerts, locationAlert{
			ID:           fmt.Sprintf("location_alert_%s_%d_%d", notify.TokenPrefix(recipient, 8), i, now.Unix()),
			UserToken:    notify.TokenPrefix(recipient, 8),
			Location:     alertSpot{Latitude: *wp.Latitude, Longitude: *wp.Longitude, Address: address},
			RadiusMeters: radius,
			AlertTypes:   types,
			Status:       "active",
			CreatedAt:    now.Format(time.RFC3339),
			ExpiresAt:    now.Add(alertExpiry).Format(time.RFC3339),
		})
	}

	logger.Info("location alerts scheduled", "recipient", notify.TokenPrefix(recipient, 8), "count", len(alerts))
	return r.success(map[string]any{
		"scheduled_alerts":    alerts,
		"total_alerts":        len(alerts),
		"alert_radius_meters": radius,
		"alert_types":         types,
		"expires_in_hours":    int(alertExpiry.Hours()),
		"source":              "mock_scheduler",
	})
}

// SendJourneyRemindersTool returns a tool definition for departure reminders
func SendJourneyRemindersTool() mcp.Tool {
	return mcp.NewTool("send_journey_reminders",
		mcp.WithDescription("Schedule reminders for upcoming transport connections of a planned route"),
		mcp.WithString("user_token",
			mcp.Required(),
			mcp.Description("User's push notification token"),
		),
		mcp.WithObject("journey_plan",
			mcp.Required(),
			mcp.Description("Route as returned by plan_route (route.steps) or an object with steps"),
		),
		mcp.WithArray("reminder_minutes",
			mcp.Description("Minutes before departure to send reminders"),
			mcp.DefaultArray([]interface{}{15, 5}),
		),
	)
}

type reminder struct {
	ID               string            `json:"reminder_id"`
	UserToken        string            `json:"user_token"`
	TransportStep    map[string]any    `json:"transport_step"`
	MinutesBefore    int               `json:"reminder_minutes_before"`
	ScheduledFor     string            `json:"scheduled_for"`
	NotificationData map[string]any    `json:"notification_data"`
	Preview          map[string]string `json:"preview"`
	Status           string            `json:"status"`
	CreatedAt        string            `json:"created_at"`
}

// HandleSendJourneyReminders schedules one reminder per transit step and
// lead time. Nothing is delivered yet.
func (r *Registry) HandleSendJourneyReminders(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("send_journey_reminders")

	recipient := recipientArgument(req)
	if recipient == "" {
		return r.failure(CodeReminderError, "user_token is required")
	}
	raw, ok := argument(req, "journey_plan")
	if !ok {
		return r.failure(CodeReminderError, "journey_plan is required")
	}
	var plan struct {
		Route struct {
			Steps []map[string]any `json:"steps"`
		} `json:"route"`
		Steps []map[string]any `json:"steps"`
	}
	if err := decodeArgument(raw, &plan); err != nil {
		return r.failure(CodeReminderError, fmt.Sprintf("journey_plan must be an object: %v", err))
	}
	steps := plan.Route.Steps
	if len(steps) == 0 {
		steps = plan.Steps
	}
	leadTimes := intSlice(req, "reminder_minutes", []int{15, 5})

	now := r.now()
	reminders := []reminder{}
	for _, step := range steps {
		mode, _ := step["mode"].(string)
		if !transitModes[mode] {
			continue
		}
		stepNumber := 0
		if f, ok := step["step_number"].(float64); ok {
			stepNumber = int(f)
		}
		destination, _ := step["end_station"].(string)
		if destination == "" {
			destination = "Unknown"
		}
		departure, _ := step["departure_time"].(string)
		if departure == "" {
			departure = "now"
		}

		for _, minutes := range leadTimes {
			scheduledFor := departure
			if t, err := time.Parse(time.RFC3339, departure); err == nil {
				scheduledFor = t.Add(-time.Duration(minutes) * time.Minute).Format(time.RFC3339)
			}
			values := map[string]string{
				"destination":    destination,
				"transport_type": mode,
				"minutes":        strconv.Itoa(minutes),
			}
			preview, err := notify.RenderTemplate(notify.TemplateJourneyReminder, recipient, values)
			if err != nil {
				return r.failure(CodeReminderError, err.Error())
			}
			reminders = append(reminders, reminder{
				ID:            fmt.Sprintf("reminder_%s_%d_%d", notify.TokenPrefix(recipient, 8), stepNumber, minutes),
				UserToken:     notify.TokenPrefix(recipient, 8),
				TransportStep: step,
				MinutesBefore: minutes,
				ScheduledFor:  scheduledFor,
				NotificationData: map[string]any{
					"destination":    destination,
					"transport_type": mode,
					"minutes":        minutes,
				},
				Preview:   map[string]string{"title": preview.Title, "body": preview.Body},
				Status:    "scheduled",
				CreatedAt: now.Format(time.RFC3339),
			})
		}
	}

	logger.Info("journey reminders scheduled", "recipient", notify.TokenPrefix(recipient, 8), "count", len(reminders))
	return r.success(map[string]any{
		"scheduled_reminders": reminders,
		"total_reminders":     len(reminders),
		"reminder_schedule":   leadTimes,
		"journey_steps":       len(steps),
		"source":              "mock_scheduler",
	})
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
