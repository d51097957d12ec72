package journey

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or already stopped sessions.
	ErrSessionNotFound = errors.New("tracking session not found")

	// ErrInvalidJourneyPlan is returned when a plan is missing or malformed.
	ErrInvalidJourneyPlan = errors.New("invalid journey plan")

	// ErrInvalidOptions is returned when tracking options break an invariant.
	ErrInvalidOptions = errors.New("invalid tracking options")

	// ErrInvalidLocation is returned for missing or malformed coordinates.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidRecipient is returned when no recipient token is supplied.
	ErrInvalidRecipient = errors.New("recipient token is required")

	// ErrNotificationDelivery marks an alert whose delivery failed. It is
	// recorded on the alert, never returned from UpdateLocation.
	ErrNotificationDelivery = errors.New("notification delivery failed")
)
