// Package notify delivers push notifications to tourists. A Sink is the only
// capability the journey engine needs from the outside world: it takes a
// recipient token, a title, a body and a priority and reports whether the
// message was delivered.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority is the urgency of a notification.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Delivery sources reported in Delivery.Source
const (
	SourceMock  = "mock_notification_service"
	SourceFCM   = "firebase_fcm"
	SourceRedis = "redis_pubsub"
)

var (
	// ErrInvalidNotification is returned when a notification is missing a
	// recipient, a title or a body, or carries an unknown priority.
	ErrInvalidNotification = errors.New("invalid notification")

	// ErrDeliveryFailed wraps every transport-level delivery failure.
	ErrDeliveryFailed = errors.New("notification delivery failed")
)

// ParsePriority converts a user supplied priority. An empty string means
// medium.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PriorityMedium, nil
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown priority %q (must be low, medium or high)", ErrInvalidNotification, s)
	}
}

// Notification is a single push message addressed to one recipient token.
type Notification struct {
	Recipient string            `json:"recipient"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Priority  Priority          `json:"priority"`
	Category  string            `json:"category,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Validate checks that the notification can be handed to a transport.
func (n Notification) Validate() error {
	if strings.TrimSpace(n.Recipient) == "" {
		return fmt.Errorf("%w: recipient token is required", ErrInvalidNotification)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidNotification)
	}
	if strings.TrimSpace(n.Body) == "" {
		return fmt.Errorf("%w: body is required", ErrInvalidNotification)
	}
	if _, err := ParsePriority(string(n.Priority)); err != nil {
		return err
	}
	return nil
}

// Delivery reports the outcome of a Send.
type Delivery struct {
	ID        string    `json:"notification_id"`
	Delivered bool      `json:"delivered"`
	Source    string    `json:"source"`
	SentAt    time.Time `json:"sent_at"`
	Receivers int64     `json:"receivers,omitempty"`
}

// Sink delivers notifications. Implementations must honour ctx cancellation
// so callers can bound how long a delivery may take.
type Sink interface {
	Send(ctx context.Context, n Notification) (*Delivery, error)
}

// TokenPrefix returns at most the first n bytes of a recipient token. Tokens
// are opaque, so only a prefix ever appears in identifiers and logs.
func TokenPrefix(token string, n int) string {
	if len(token) <= n {
		return token
	}
	return token[:n]
}

// newID builds a notification id of the form {prefix}_{unix}_{token[:8]}_{rand}.
func newID(prefix, recipient string, now time.Time) string {
	return fmt.Sprintf("%s_%d_%s_%s", prefix, now.Unix(), TokenPrefix(recipient, 8), uuid.NewString()[:8])
}

// normalize fills the default priority.
func normalize(n Notification) Notification {
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	return n
}
