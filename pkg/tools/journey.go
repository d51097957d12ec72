package tools

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/journey"
)

// StartJourneyTrackingTool returns a tool definition for starting tracking
func StartJourneyTrackingTool() mcp.Tool {
	return mcp.NewTool("start_journey_tracking",
		mcp.WithDescription("Start real-time journey tracking with GPS monitoring and proximity alerts"),
		mcp.WithString("recipient_token",
			mcp.Required(),
			mcp.Description("Push notification token that receives proximity alerts (user_token is accepted too)"),
		),
		mcp.WithObject("journey_plan",
			mcp.Description("Journey plan: legs of stops with name, lat, lng and sequence_number. plan_route returns one."),
		),
		mcp.WithObject("options",
			mcp.Description("Tracking options: alert_distance_meters (200), stops_ahead_warning (2), gps_update_interval_seconds (10), repeat_alerts (false)"),
		),
		mcp.WithBoolean("demo",
			mcp.Description("Track the built-in Circular Quay to Bondi Junction sample route when no plan is given"),
			mcp.DefaultBool(false),
		),
	)
}

// HandleStartJourneyTracking registers a new tracking session
func (r *Registry) HandleStartJourneyTracking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("start_journey_tracking")

	recipient := recipientArgument(req)
	if recipient == "" {
		return r.failure(CodeTrackingStartError, journey.ErrInvalidRecipient.Error())
	}

	var plan *journey.Plan
	if raw, ok := argument(req, "journey_plan"); ok {
		plan = &journey.Plan{}
		if err := decodeArgument(raw, plan); err != nil {
			return r.failure(CodeInvalidJourneyPlan, fmt.Sprintf("%v: %v", journey.ErrInvalidJourneyPlan, err))
		}
	} else if mcp.ParseBoolean(req, "demo", false) {
		demo := journey.DemoPlan()
		plan = &demo
	}

	var opts *journey.Options
	if raw, ok := firstArgument(req, "options", "tracking_options"); ok {
		opts = &journey.Options{}
		if err := decodeArgument(raw, opts); err != nil {
			return r.failure(CodeTrackingStartError, fmt.Sprintf("%v: %v", journey.ErrInvalidOptions, err))
		}
	}

	session, err := r.engine.StartTracking(ctx, recipient, plan, opts)
	if err != nil {
		logger.Warn("tracking start rejected", "error", err)
		return r.failure(journeyErrorCode(err, CodeTrackingStartError), fmt.Sprintf("Journey tracking failed to start: %v", err))
	}

	return r.success(map[string]any{
		"tracking_session": session,
		"message":          "Journey tracking started successfully",
		"next_steps": []string{
			"Send GPS updates via update_journey_location",
			"Receive proximity alerts automatically",
			"Stop tracking via stop_journey_tracking",
		},
	})
}

// UpdateJourneyLocationTool returns a tool definition for GPS updates
func UpdateJourneyLocationTool() mcp.Tool {
	return mcp.NewTool("update_journey_location",
		mcp.WithDescription("Update the user's GPS location during journey tracking and trigger proximity alerts"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Active journey tracking session ID"),
		),
		mcp.WithObject("current_location",
			mcp.Required(),
			mcp.Description("Current GPS fix: lat, lng and optional accuracy and timestamp"),
		),
		mcp.WithObject("movement_data",
			mcp.Description("Optional speed, heading and in_vehicle data"),
		),
	)
}

// fixArgument distinguishes absent coordinates from a zero value.
type fixArgument struct {
	Latitude  *float64  `json:"lat"`
	Longitude *float64  `json:"lng"`
	Accuracy  float64   `json:"accuracy"`
	Timestamp time.Time `json:"timestamp"`
}

// HandleUpdateJourneyLocation feeds one GPS fix to the engine
func (r *Registry) HandleUpdateJourneyLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := r.toolLogger("update_journey_location")

	sessionID := strings.TrimSpace(mcp.ParseString(req, "session_id", ""))
	if sessionID == "" {
		return r.failure(CodeLocationUpdateError, "session_id is required")
	}

	fix, problem := fixFromArguments(req)
	if problem != "" {
		// An unknown or finished session is reported ahead of a bad fix.
		s, err := r.engine.Session(ctx, sessionID)
		switch {
		case errors.Is(err, journey.ErrSessionNotFound):
			return r.sessionNotFound(sessionID)
		case err == nil && (s.Status == journey.StatusCompleted || s.Finished()):
			return r.journeyCompleted(sessionID)
		}
		return r.failure(CodeInvalidLocation, problem)
	}

	var movement *journey.Movement
	if raw, ok := argument(req, "movement_data"); ok {
		movement = &journey.Movement{}
		if err := decodeArgument(raw, movement); err != nil {
			return r.failure(CodeLocationUpdateError, fmt.Sprintf("movement_data is malformed: %v", err))
		}
	}

	result, err := r.engine.UpdateLocation(ctx, sessionID, fix, movement)
	if err != nil {
		code := journeyErrorCode(err, CodeLocationUpdateError)
		if code == CodeSessionNotFound {
			return r.sessionNotFound(sessionID)
		}
		logger.Warn("location update failed", "session_id", sessionID, "error", err)
		return r.failure(code, fmt.Sprintf("Location update failed: %v", err))
	}

	if result.AlreadyCompleted {
		return r.journeyCompleted(result.SessionID)
	}

	result.DistanceToDestination = round(result.DistanceToDestination, 1)
	return r.success(result)
}

// fixFromArguments decodes current_location. A non-empty problem describes
// why the argument was rejected.
func fixFromArguments(req mcp.CallToolRequest) (journey.Fix, string) {
	raw, ok := argument(req, "current_location")
	if !ok {
		return journey.Fix{}, "current_location is required"
	}
	var arg fixArgument
	if err := decodeArgument(raw, &arg); err != nil {
		return journey.Fix{}, fmt.Sprintf("current_location is malformed: %v", err)
	}
	if arg.Latitude == nil || arg.Longitude == nil {
		return journey.Fix{}, "current_location must contain lat and lng"
	}
	return journey.Fix{
		Latitude:  *arg.Latitude,
		Longitude: *arg.Longitude,
		Accuracy:  arg.Accuracy,
		Timestamp: arg.Timestamp,
	}, ""
}

func (r *Registry) sessionNotFound(sessionID string) (*mcp.CallToolResult, error) {
	return r.failure(CodeSessionNotFound, fmt.Sprintf("Tracking session %s not found. %s", sessionID, GuidanceRestartTracking))
}

func (r *Registry) journeyCompleted(sessionID string) (*mcp.CallToolResult, error) {
	return r.success(map[string]any{
		"status":     journey.SessionCompleted,
		"message":    "Journey completed",
		"session_id": sessionID,
	})
}

// StopJourneyTrackingTool returns a tool definition for stopping tracking
func StopJourneyTrackingTool() mcp.Tool {
	return mcp.NewTool("stop_journey_tracking",
		mcp.WithDescription("Stop active journey tracking"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Journey tracking session ID to stop"),
		),
	)
}

// HandleStopJourneyTracking ends a session
func (r *Registry) HandleStopJourneyTracking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(mcp.ParseString(req, "session_id", ""))
	if sessionID == "" {
		return r.failure(CodeTrackingStopError, "session_id is required")
	}

	result, err := r.engine.StopTracking(ctx, sessionID)
	if err != nil {
		code := journeyErrorCode(err, CodeTrackingStopError)
		if code == CodeSessionNotFound {
			return r.failure(code, fmt.Sprintf("Tracking session %s not found", sessionID))
		}
		r.toolLogger("stop_journey_tracking").Error("stop failed", "session_id", sessionID, "error", err)
		return r.failure(code, fmt.Sprintf("Failed to stop tracking: %v", err))
	}

	return r.success(map[string]any{
		"session_id":        result.SessionID,
		"message":           "Journey tracking stopped successfully",
		"alerts_sent_count": result.AlertsSentCount,
		"started_at":        result.StartedAt.Format(time.RFC3339),
		"ended_at":          result.EndedAt.Format(time.RFC3339),
		"duration_seconds":  math.Round(result.DurationSeconds),
	})
}

// GetJourneyStatusTool returns a tool definition for session lookups
func GetJourneyStatusTool() mcp.Tool {
	return mcp.NewTool("get_journey_status",
		mcp.WithDescription("Get the current state of a journey tracking session"),
		mcp.WithString("session_id",
			mcp.Required(),
			mcp.Description("Journey tracking session ID"),
		),
	)
}

// HandleGetJourneyStatus returns a session snapshot with its current leg
func (r *Registry) HandleGetJourneyStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := strings.TrimSpace(mcp.ParseString(req, "session_id", ""))
	if sessionID == "" {
		return r.failure(CodeInvalidParameters, "session_id is required")
	}

	session, err := r.engine.Session(ctx, sessionID)
	if err != nil {
		if errors.Is(err, journey.ErrSessionNotFound) {
			return r.sessionNotFound(sessionID)
		}
		return r.failure(CodeInternal, fmt.Sprintf("Session lookup failed: %v", err))
	}

	data := map[string]any{
		"session":           session,
		"journey_completed": session.Status == journey.StatusCompleted || session.Finished(),
		"alerts_sent_count": len(session.AlertsSent),
	}
	if !session.Finished() {
		leg := session.Plan.Legs[session.CurrentLeg]
		data["current_leg"] = leg
		if session.LastLocation != nil {
			d := geo.DistanceBetween(session.LastLocation.Fix.Location(), leg.DestinationStop().Location())
			data["distance_to_leg_destination"] = round(d, 1)
		}
	}
	return r.success(data)
}
