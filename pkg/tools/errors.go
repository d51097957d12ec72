package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sydneyguide/sydneymcp/pkg/journey"
	"github.com/sydneyguide/sydneymcp/pkg/osm"
)

// Error codes carried in the error envelope
const (
	CodeInvalidParameters   = "INVALID_PARAMETERS"
	CodeInternal            = "INTERNAL_ERROR"
	CodeLocationError       = "LOCATION_ERROR"
	CodeCalculationError    = "CALCULATION_ERROR"
	CodeSearchError         = "SEARCH_ERROR"
	CodePlaceNotFound       = "PLACE_NOT_FOUND"
	CodeTransportSearch     = "TRANSPORT_SEARCH_ERROR"
	CodeRoutePlanning       = "ROUTE_PLANNING_ERROR"
	CodeTransportStatus     = "TRANSPORT_STATUS_ERROR"
	CodeNotificationError   = "NOTIFICATION_ERROR"
	CodeAlertScheduling     = "ALERT_SCHEDULING_ERROR"
	CodeReminderError       = "REMINDER_ERROR"
	CodeSessionNotFound     = "SESSION_NOT_FOUND"
	CodeInvalidJourneyPlan  = "INVALID_JOURNEY_PLAN"
	CodeInvalidLocation     = "INVALID_LOCATION"
	CodeTrackingStartError  = "TRACKING_START_ERROR"
	CodeLocationUpdateError = "LOCATION_UPDATE_ERROR"
	CodeTrackingStopError   = "TRACKING_STOP_ERROR"
)

// APIError represents an error that occurred while communicating with
// an external API service, with information to help users recover.
type APIError struct {
	Service     string // The API service name (e.g., "Nominatim", "Overpass")
	StatusCode  int    // HTTP status code
	Message     string // Error message
	Recoverable bool   // Whether the error can be recovered from
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s API error (%d): %s. %s", e.Service, e.StatusCode, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// Common error guidance messages
const (
	GuidanceNominatimRateLimit = "Please try again in a few seconds."
	GuidanceNominatimGeneral   = "Check the coordinates and try again."
	GuidanceOverpassRateLimit  = "The Overpass API is currently experiencing high load. Please try again in a minute."
	GuidanceOverpassGeneral    = "Try a smaller search radius or fewer search criteria."
	GuidanceOSRMRouteNotFound  = "No route could be found between the specified points. Try locations with walkable streets."
	GuidanceOSRMGeneral        = "Check that both points are reachable on foot."

	GuidanceGeneral      = "Please try again later or modify your request parameters."
	GuidanceNetworkError = "Check your internet connection and try again."

	GuidanceRestartTracking = "Tracking is not active for this session. Start a new session with start_journey_tracking."
)

// NewAPIError creates a new APIError with appropriate guidance based on status code.
func NewAPIError(service string, statusCode int, message, guidance string) *APIError {
	if guidance == "" {
		switch statusCode {
		case http.StatusTooManyRequests:
			guidance = "Rate limit exceeded. Please try again in a few moments."
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			guidance = "The request timed out. Try reducing the search area or simplifying the query."
		case http.StatusBadRequest:
			guidance = "The request was invalid. Check your parameters and try again."
		case http.StatusInternalServerError:
			guidance = "The server encountered an error. This is likely temporary, please try again later."
		case http.StatusServiceUnavailable:
			guidance = "The service is temporarily unavailable. Please try again later."
		default:
			guidance = GuidanceGeneral
		}
	}

	return &APIError{
		Service:     service,
		StatusCode:  statusCode,
		Message:     message,
		Recoverable: statusCode != http.StatusBadRequest,
		Guidance:    guidance,
	}
}

// upstreamError converts an osm client failure into an APIError.
func upstreamError(service osm.Service, err error) *APIError {
	var statusErr *osm.StatusError
	switch {
	case errors.As(err, &statusErr):
		guidance := ""
		if statusErr.StatusCode == http.StatusTooManyRequests {
			switch statusErr.Service {
			case osm.ServiceNominatim:
				guidance = GuidanceNominatimRateLimit
			case osm.ServiceOverpass:
				guidance = GuidanceOverpassRateLimit
			}
		}
		return NewAPIError(string(statusErr.Service), statusErr.StatusCode, "upstream request failed", guidance)
	case errors.Is(err, osm.ErrNoRoute):
		return NewAPIError(string(service), http.StatusNotFound, err.Error(), GuidanceOSRMRouteNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		return NewAPIError(string(service), http.StatusGatewayTimeout, "request timed out", "")
	default:
		guidance := GuidanceNetworkError
		switch service {
		case osm.ServiceNominatim:
			guidance = GuidanceNominatimGeneral
		case osm.ServiceOverpass:
			guidance = GuidanceOverpassGeneral
		case osm.ServiceOSRM:
			guidance = GuidanceOSRMGeneral
		}
		return NewAPIError(string(service), http.StatusBadGateway, err.Error(), guidance)
	}
}

// guidanceMessage formats an APIError for the error envelope.
func guidanceMessage(err *APIError) string {
	return fmt.Sprintf("%s. %s", err.Message, err.Guidance)
}

// ValidationError creates an error for invalid coordinate or radius parameters.
func ValidationError(lat, lon, radius, maxRadius float64) *APIError {
	var message string

	switch {
	case lat < -90 || lat > 90:
		message = fmt.Sprintf("Invalid latitude value: %f (must be between -90 and 90)", lat)
	case lon < -180 || lon > 180:
		message = fmt.Sprintf("Invalid longitude value: %f (must be between -180 and 180)", lon)
	case radius <= 0:
		message = "Radius must be greater than 0"
	case radius > maxRadius:
		message = fmt.Sprintf("Radius too large: %g (maximum allowed is %g km)", radius, maxRadius)
	default:
		return nil
	}

	return &APIError{
		Service:     "Validation",
		StatusCode:  http.StatusBadRequest,
		Message:     message,
		Recoverable: true,
		Guidance:    "Please correct the parameters and try again.",
	}
}

// journeyErrorCode maps an engine error to its envelope code, using
// fallback for anything unexpected.
func journeyErrorCode(err error, fallback string) string {
	switch {
	case errors.Is(err, journey.ErrSessionNotFound):
		return CodeSessionNotFound
	case errors.Is(err, journey.ErrInvalidJourneyPlan):
		return CodeInvalidJourneyPlan
	case errors.Is(err, journey.ErrInvalidLocation):
		return CodeInvalidLocation
	default:
		return fallback
	}
}
