// Package tools provides the Sydney Guide MCP tool implementations.
package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sydneyguide/sydneymcp/pkg/journey"
	"github.com/sydneyguide/sydneymcp/pkg/notify"
	"github.com/sydneyguide/sydneymcp/pkg/osm"
)

// Registry holds the collaborators shared by all tools. Without an OSM
// client the location, place and routing tools answer from the static
// Sydney tables.
type Registry struct {
	logger        *slog.Logger
	engine        *journey.Engine
	sink          notify.Sink
	osm           *osm.Client
	now           func() time.Time
	notifyTimeout time.Duration
}

// DefaultNotifyTimeout bounds a send_notification delivery.
const DefaultNotifyTimeout = 5 * time.Second

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithOSMClient switches location, place and routing tools to live
// OpenStreetMap data.
func WithOSMClient(c *osm.Client) RegistryOption {
	return func(r *Registry) {
		r.osm = c
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithNotifyTimeout bounds how long send_notification waits for the sink.
func WithNotifyTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.notifyTimeout = d
		}
	}
}

// NewRegistry creates a new MCP tool registry.
func NewRegistry(logger *slog.Logger, engine *journey.Engine, sink notify.Sink, opts ...RegistryOption) *Registry {
	r := &Registry{
		logger:        logger,
		engine:        engine,
		sink:          sink,
		now:           time.Now,
		notifyTimeout: DefaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LiveMode reports whether external geodata services are used.
func (r *Registry) LiveMode() bool {
	return r.osm != nil
}

// ToolDefinition represents a Sydney Guide MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns all tool definitions.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		// Location Tools
		{
			Name:        "get_current_location",
			Description: "Get the user's current location",
			Tool:        GetCurrentLocationTool(),
			Handler:     r.HandleGetCurrentLocation,
		},
		{
			Name:        "calculate_distance",
			Description: "Calculate the distance between two points",
			Tool:        CalculateDistanceTool(),
			Handler:     r.HandleCalculateDistance,
		},

		// Place Tools
		{
			Name:        "search_places",
			Description: "Search places in Sydney by query, location, type and radius",
			Tool:        SearchPlacesTool(),
			Handler:     r.HandleSearchPlaces,
		},
		{
			Name:        "get_place_details",
			Description: "Get detailed information for a place",
			Tool:        GetPlaceDetailsTool(),
			Handler:     r.HandleGetPlaceDetails,
		},
		{
			Name:        "get_places_by_type",
			Description: "List places of a type ordered by rating",
			Tool:        GetPlacesByTypeTool(),
			Handler:     r.HandleGetPlacesByType,
		},
		{
			Name:        "get_popular_places",
			Description: "Get the highest rated places",
			Tool:        GetPopularPlacesTool(),
			Handler:     r.HandleGetPopularPlaces,
		},

		// Transport Tools
		{
			Name:        "find_nearby_transport",
			Description: "Find nearby transport stations and stops",
			Tool:        FindNearbyTransportTool(),
			Handler:     r.HandleFindNearbyTransport,
		},
		{
			Name:        "plan_route",
			Description: "Plan a route between two locations",
			Tool:        PlanRouteTool(),
			Handler:     r.HandlePlanRoute,
		},
		{
			Name:        "get_transport_status",
			Description: "Get upcoming departures for a stop",
			Tool:        GetTransportStatusTool(),
			Handler:     r.HandleGetTransportStatus,
		},

		// Notification Tools
		{
			Name:        "send_notification",
			Description: "Send a push notification to the user",
			Tool:        SendNotificationTool(),
			Handler:     r.HandleSendNotification,
		},
		{
			Name:        "schedule_location_alerts",
			Description: "Schedule alerts for journey waypoints",
			Tool:        ScheduleLocationAlertsTool(),
			Handler:     r.HandleScheduleLocationAlerts,
		},
		{
			Name:        "send_journey_reminders",
			Description: "Schedule departure reminders for transit steps",
			Tool:        SendJourneyRemindersTool(),
			Handler:     r.HandleSendJourneyReminders,
		},

		// Journey Tracking Tools
		{
			Name:        "start_journey_tracking",
			Description: "Start real-time journey tracking with proximity alerts",
			Tool:        StartJourneyTrackingTool(),
			Handler:     r.HandleStartJourneyTracking,
		},
		{
			Name:        "update_journey_location",
			Description: "Send a GPS update for an active tracking session",
			Tool:        UpdateJourneyLocationTool(),
			Handler:     r.HandleUpdateJourneyLocation,
		},
		{
			Name:        "stop_journey_tracking",
			Description: "Stop a journey tracking session",
			Tool:        StopJourneyTrackingTool(),
			Handler:     r.HandleStopJourneyTracking,
		},
		{
			Name:        "get_journey_status",
			Description: "Get the current state of a tracking session",
			Tool:        GetJourneyStatusTool(),
			Handler:     r.HandleGetJourneyStatus,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}

// toolLogger returns the logger for one tool invocation.
func (r *Registry) toolLogger(name string) *slog.Logger {
	return r.logger.With("tool", name)
}

func (r *Registry) success(data any) (*mcp.CallToolResult, error) {
	return successResponse(r.now(), data)
}

func (r *Registry) failure(code, message string) (*mcp.CallToolResult, error) {
	return ErrorResponse(r.now(), code, message), nil
}
