// Package journey implements real-time journey tracking. A session follows
// a tourist along a planned route, ingests GPS fixes and sends proximity
// alerts as the destination of the current leg comes near.
package journey

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
	"github.com/sydneyguide/sydneymcp/pkg/notify"
)

// DefaultSendTimeout bounds a single notification delivery.
const DefaultSendTimeout = 5 * time.Second

// maxIDAttempts bounds retries when a generated session id is already taken.
const maxIDAttempts = 3

// Engine owns the tracking session lifecycle.
type Engine struct {
	dir         Directory
	sink        notify.Sink
	logger      *slog.Logger
	locks       *keyedMutex
	now         func() time.Time
	sendTimeout time.Duration
	newID       func(recipient string, now time.Time) string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithSendTimeout bounds each notification delivery.
func WithSendTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		if d > 0 {
			e.sendTimeout = d
		}
	}
}

// WithIDGenerator overrides session id allocation.
func WithIDGenerator(fn func(recipient string, now time.Time) string) EngineOption {
	return func(e *Engine) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// NewEngine creates an engine over a session directory and a notification
// sink.
func NewEngine(dir Directory, sink notify.Sink, opts ...EngineOption) *Engine {
	e := &Engine{
		dir:         dir,
		sink:        sink,
		logger:      slog.Default(),
		locks:       newKeyedMutex(),
		now:         time.Now,
		sendTimeout: DefaultSendTimeout,
		newID:       NewSessionID,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "journey")
	return e
}

// NewSessionID returns journey_{recipient[:8]}_{unix}_{random}.
func NewSessionID(recipient string, now time.Time) string {
	return fmt.Sprintf("journey_%s_%d_%s", notify.TokenPrefix(recipient, 8), now.Unix(), uuid.NewString()[:8])
}

// StartTracking validates plan, registers a new ACTIVE session and returns
// it. A nil opts uses DefaultOptions. The sink is never contacted.
func (e *Engine) StartTracking(ctx context.Context, recipient string, plan *Plan, opts *Options) (*Session, error) {
	if strings.TrimSpace(recipient) == "" {
		return nil, ErrInvalidRecipient
	}

	normalized, err := plan.normalized()
	if err != nil {
		return nil, err
	}

	options := DefaultOptions()
	if opts != nil {
		options = *opts
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}

	now := e.now()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := e.newID(recipient, now)
		s, err := e.create(ctx, id, recipient, normalized, options, now)
		if errors.Is(err, errSessionExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		e.logger.Info("journey tracking started",
			"session_id", s.ID,
			"legs", len(s.Plan.Legs),
			"destination", s.Plan.Destination,
			"alert_distance_m", s.Options.AlertDistanceMeters)
		return s, nil
	}
	return nil, fmt.Errorf("allocate session id: %w", errSessionExists)
}

var errSessionExists = errors.New("session id already in use")

func (e *Engine) create(ctx context.Context, id, recipient string, plan Plan, options Options, now time.Time) (*Session, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	if _, err := e.dir.Get(ctx, id); err == nil {
		return nil, errSessionExists
	} else if !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}

	s := &Session{
		ID:         id,
		Recipient:  recipient,
		Plan:       plan,
		Options:    options,
		Status:     StatusActive,
		CurrentLeg: 0,
		AlertsSent: []AlertRecord{},
		Fired:      map[string]bool{},
		StartedAt:  now,
	}
	if err := e.dir.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("register session: %w", err)
	}
	return s.Clone(), nil
}

// UpdateLocation records a GPS fix on the session and evaluates the
// proximity rules against every stop of the current leg. An unknown session
// is reported before an invalid fix, and a completed session ignores the fix.
// Delivery failures are recorded on the alerts and never returned as errors.
func (e *Engine) UpdateLocation(ctx context.Context, id string, fix Fix, movement *Movement) (*UpdateResult, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	s, err := e.dir.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Status == StatusCompleted || s.Finished() {
		return &UpdateResult{
			SessionID:        s.ID,
			AlreadyCompleted: true,
			SessionStatus:    SessionCompleted,
			CurrentLegIndex:  s.CurrentLeg,
			TriggeredAlerts:  []AlertRecord{},
		}, nil
	}

	if err := fix.Validate(); err != nil {
		return nil, err
	}

	now := e.now()
	if fix.Timestamp.IsZero() {
		fix.Timestamp = now
	}
	last := &LastLocation{Fix: fix, ReceivedAt: now}
	if movement != nil {
		last.Movement = *movement
	}
	s.LastLocation = last

	legIndex := s.CurrentLeg
	leg := s.Plan.Legs[legIndex]
	dest := leg.DestinationStop()
	here := fix.Location()
	threshold := s.Options.AlertDistanceMeters

	triggered := []AlertRecord{}
	for _, stop := range leg.Stops {
		d := geo.DistanceBetween(here, stop.Location())

		if stop.Sequence == dest.Sequence && d <= threshold {
			if rec, ok := e.alert(ctx, s, legIndex, stop, d, AlertArrival, notify.TemplateJourneyArrival,
				map[string]string{"stop_name": dest.Name}); ok {
				triggered = append(triggered, rec)
			}
		}

		if d <= 2*threshold {
			remaining := leg.RemainingAfter(stop)
			if remaining > 0 && remaining <= s.Options.StopsAheadWarning {
				if rec, ok := e.alert(ctx, s, legIndex, stop, d, AlertLookahead, notify.TemplateJourneyLookahead,
					map[string]string{"remaining_stops": strconv.Itoa(remaining), "destination": dest.Name}); ok {
					triggered = append(triggered, rec)
				}
			}
		}
	}

	distToDest := geo.DistanceBetween(here, dest.Location())

	// The leg only advances once its arrival alert has been delivered, so a
	// failed arrival is retried on the next fix.
	advanced := false
	if distToDest <= threshold && s.Fired[firedKey(legIndex, dest, AlertArrival)] {
		s.CurrentLeg++
		advanced = true
		if s.Finished() {
			s.Status = StatusCompleted
		}
		e.logger.Info("leg completed",
			"session_id", s.ID,
			"leg_index", legIndex,
			"destination", dest.Name,
			"journey_completed", s.Status == StatusCompleted)
	}

	if err := e.dir.Put(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	status := SessionTracking
	if s.Status == StatusCompleted {
		status = SessionCompleted
	}

	e.logger.Debug("location updated",
		"session_id", s.ID,
		"distance_to_destination_m", math.Round(distToDest),
		"alerts", len(triggered))

	return &UpdateResult{
		SessionID:             s.ID,
		LocationUpdated:       true,
		CurrentLocation:       fix,
		DistanceToDestination: distToDest,
		TriggeredAlerts:       triggered,
		SessionStatus:         status,
		CurrentLegIndex:       s.CurrentLeg,
		LegAdvanced:           advanced,
	}, nil
}

// firedKey identifies an alert for deduplication.
func firedKey(leg int, stop Stop, kind AlertKind) string {
	return fmt.Sprintf("%d:%d:%s", leg, stop.Sequence, kind)
}

// alert delivers one alert and appends it to the session log. It reports
// false when the alert was already delivered earlier in the session.
func (e *Engine) alert(ctx context.Context, s *Session, leg int, stop Stop, distance float64, kind AlertKind, template string, values map[string]string) (AlertRecord, bool) {
	key := firedKey(leg, stop, kind)
	if !s.Options.RepeatAlerts && s.Fired[key] {
		return AlertRecord{}, false
	}

	rec := AlertRecord{
		Kind:           kind,
		LegIndex:       leg,
		StopName:       stop.Name,
		StopSequence:   stop.Sequence,
		DistanceMeters: int(math.Round(distance)),
		Timestamp:      e.now(),
	}

	n, err := notify.RenderTemplate(template, s.Recipient, values)
	if err != nil {
		// Templates are static, so this only happens on a programming error.
		rec.Error = err.Error()
		e.logger.Error("render alert", "session_id", s.ID, "template", template, "error", err)
		s.AlertsSent = append(s.AlertsSent, rec)
		return rec, true
	}
	rec.Message = n.Body

	delivery, err := e.send(ctx, n)
	switch {
	case err != nil:
		rec.Error = err.Error()
	case delivery == nil || !delivery.Delivered:
		rec.Error = ErrNotificationDelivery.Error()
	default:
		rec.DeliverySuccess = true
		rec.NotificationID = delivery.ID
	}

	if rec.DeliverySuccess {
		if s.Fired == nil {
			s.Fired = map[string]bool{}
		}
		s.Fired[key] = true
	} else {
		e.logger.Warn("alert delivery failed",
			"session_id", s.ID,
			"stop", stop.Name,
			"alert_type", kind,
			"error", rec.Error)
	}

	s.AlertsSent = append(s.AlertsSent, rec)
	return rec, true
}

// send calls the sink with a bounded timeout.
func (e *Engine) send(ctx context.Context, n notify.Notification) (*notify.Delivery, error) {
	ctx, cancel := context.WithTimeout(ctx, e.sendTimeout)
	defer cancel()

	delivery, err := e.sink.Send(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotificationDelivery, err)
	}
	return delivery, nil
}

// StopTracking marks the session COMPLETED, removes it from the directory
// and returns a summary. The id is unusable afterwards.
func (e *Engine) StopTracking(ctx context.Context, id string) (*StopResult, error) {
	unlock := e.locks.Lock(id)
	defer unlock()

	s, err := e.dir.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := e.now()
	s.Status = StatusCompleted
	s.EndedAt = &now

	if err := e.dir.Delete(ctx, id); err != nil {
		return nil, err
	}

	e.logger.Info("journey tracking stopped",
		"session_id", id,
		"alerts_sent", len(s.AlertsSent))

	return &StopResult{
		SessionID:       s.ID,
		AlertsSentCount: len(s.AlertsSent),
		StartedAt:       s.StartedAt,
		EndedAt:         now,
		DurationSeconds: now.Sub(s.StartedAt).Seconds(),
	}, nil
}

// Session returns a snapshot of the session.
func (e *Engine) Session(ctx context.Context, id string) (*Session, error) {
	return e.dir.Get(ctx, id)
}
