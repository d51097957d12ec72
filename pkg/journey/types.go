package journey

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/sydneyguide/sydneymcp/pkg/geo"
)

// Status is the lifecycle state of a tracking session.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// AlertKind distinguishes the two proximity rules.
type AlertKind string

const (
	AlertArrival   AlertKind = "arrival"
	AlertLookahead AlertKind = "look_ahead"
)

// Option defaults
const (
	DefaultAlertDistanceMeters = 200.0
	DefaultStopsAheadWarning   = 2
	DefaultGPSUpdateInterval   = 10
)

// Stop is a named point on a leg. Sequence gives its strict order.
type Stop struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
	Sequence  int     `json:"sequence_number"`
}

// UnmarshalJSON accepts stop_sequence as an alias of sequence_number.
func (s *Stop) UnmarshalJSON(data []byte) error {
	type plain Stop
	aux := struct {
		*plain
		StopSequence *int `json:"stop_sequence"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.StopSequence != nil && s.Sequence == 0 {
		s.Sequence = *aux.StopSequence
	}
	return nil
}

// Location returns the stop's coordinates.
func (s Stop) Location() geo.Location {
	return geo.Location{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Leg is one continuous transport segment.
type Leg struct {
	TransportMode string `json:"transport_mode"`
	RouteLabel    string `json:"route_label"`
	Stops         []Stop `json:"stops"`
	Destination   *Stop  `json:"destination_stop,omitempty"`
}

// UnmarshalJSON accepts transport_type and route_name as aliases.
func (l *Leg) UnmarshalJSON(data []byte) error {
	type plain Leg
	aux := struct {
		*plain
		TransportType string `json:"transport_type"`
		RouteName     string `json:"route_name"`
	}{plain: (*plain)(l)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if l.TransportMode == "" {
		l.TransportMode = aux.TransportType
	}
	if l.RouteLabel == "" {
		l.RouteLabel = aux.RouteName
	}
	return nil
}

// DestinationStop returns the stop that ends the leg. For a validated plan
// this is always the last stop.
func (l Leg) DestinationStop() Stop {
	if l.Destination != nil {
		return *l.Destination
	}
	if len(l.Stops) == 0 {
		return Stop{}
	}
	return l.Stops[len(l.Stops)-1]
}

// RemainingAfter counts stops ordered strictly after stop.
func (l Leg) RemainingAfter(stop Stop) int {
	n := 0
	for _, s := range l.Stops {
		if s.Sequence > stop.Sequence {
			n++
		}
	}
	return n
}

// Plan is an ordered sequence of legs.
type Plan struct {
	Destination string `json:"destination"`
	Legs        []Leg  `json:"legs"`
}

// UnmarshalJSON accepts steps as an alias of legs.
func (p *Plan) UnmarshalJSON(data []byte) error {
	type plain Plan
	aux := struct {
		*plain
		Steps []Leg `json:"steps"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if len(p.Legs) == 0 {
		p.Legs = aux.Steps
	}
	return nil
}

// Options tune the proximity rules of one session.
type Options struct {
	AlertDistanceMeters      float64 `json:"alert_distance_meters"`
	StopsAheadWarning        int     `json:"stops_ahead_warning"`
	GPSUpdateIntervalSeconds int     `json:"gps_update_interval_seconds"`
	// RepeatAlerts re-sends an alert on every qualifying update instead of
	// once per stop.
	RepeatAlerts bool `json:"repeat_alerts"`
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		AlertDistanceMeters:      DefaultAlertDistanceMeters,
		StopsAheadWarning:        DefaultStopsAheadWarning,
		GPSUpdateIntervalSeconds: DefaultGPSUpdateInterval,
	}
}

// UnmarshalJSON starts from DefaultOptions so absent fields keep their
// default, and accepts gps_update_interval as an alias.
func (o *Options) UnmarshalJSON(data []byte) error {
	type plain Options
	p := plain(DefaultOptions())
	aux := struct {
		*plain
		GPSUpdateInterval *int `json:"gps_update_interval"`
	}{plain: &p}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.GPSUpdateInterval != nil {
		p.GPSUpdateIntervalSeconds = *aux.GPSUpdateInterval
	}
	*o = Options(p)
	return nil
}

// Validate enforces the option invariants. The alert distance and GPS
// interval must be positive; a stops_ahead_warning of 0 turns look-ahead
// alerts off.
func (o Options) Validate() error {
	if math.IsNaN(o.AlertDistanceMeters) || o.AlertDistanceMeters <= 0 {
		return fmt.Errorf("%w: alert_distance_meters must be greater than 0, got %v", ErrInvalidOptions, o.AlertDistanceMeters)
	}
	if o.StopsAheadWarning < 0 {
		return fmt.Errorf("%w: stops_ahead_warning must not be negative, got %d", ErrInvalidOptions, o.StopsAheadWarning)
	}
	if o.GPSUpdateIntervalSeconds <= 0 {
		return fmt.Errorf("%w: gps_update_interval_seconds must be greater than 0, got %d", ErrInvalidOptions, o.GPSUpdateIntervalSeconds)
	}
	return nil
}

// Fix is one GPS reading.
type Fix struct {
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// Location returns the fix's coordinates.
func (f Fix) Location() geo.Location {
	return geo.Location{Latitude: f.Latitude, Longitude: f.Longitude}
}

// Validate rejects non-finite or out of range coordinates.
func (f Fix) Validate() error {
	if math.IsInf(f.Latitude, 0) || math.IsInf(f.Longitude, 0) {
		return fmt.Errorf("%w: coordinates must be finite", ErrInvalidLocation)
	}
	if err := geo.ValidateCoords(f.Latitude, f.Longitude); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if f.Accuracy < 0 {
		return fmt.Errorf("%w: accuracy must not be negative", ErrInvalidLocation)
	}
	return nil
}

// Movement is optional motion metadata sent alongside a fix.
type Movement struct {
	Speed     float64 `json:"speed,omitempty"`
	Heading   float64 `json:"heading,omitempty"`
	InVehicle bool    `json:"in_vehicle,omitempty"`
}

// LastLocation is the most recent fix recorded on a session.
type LastLocation struct {
	Fix        Fix       `json:"location"`
	Movement   Movement  `json:"movement_data"`
	ReceivedAt time.Time `json:"received_at"`
}

// AlertRecord is one alert evaluated by the engine and handed to the sink.
type AlertRecord struct {
	Kind            AlertKind `json:"alert_type"`
	LegIndex        int       `json:"leg_index"`
	StopName        string    `json:"stop_name"`
	StopSequence    int       `json:"stop_sequence"`
	DistanceMeters  int       `json:"distance_meters"`
	Message         string    `json:"message"`
	DeliverySuccess bool      `json:"delivery_success"`
	NotificationID  string    `json:"notification_id,omitempty"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

// Session is the mutable record for one tracked journey.
type Session struct {
	ID           string          `json:"session_id"`
	Recipient    string          `json:"recipient_token"`
	Plan         Plan            `json:"journey_plan"`
	Options      Options         `json:"options"`
	Status       Status          `json:"status"`
	CurrentLeg   int             `json:"current_leg_index"`
	LastLocation *LastLocation   `json:"last_location,omitempty"`
	AlertsSent   []AlertRecord   `json:"alerts_sent"`
	Fired        map[string]bool `json:"fired_alerts,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
}

// Finished reports whether the leg cursor has moved past the last leg.
func (s *Session) Finished() bool {
	return s.CurrentLeg >= len(s.Plan.Legs)
}

// Clone returns a deep copy so stored sessions are never aliased.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Plan = s.Plan.clone()
	if s.LastLocation != nil {
		ll := *s.LastLocation
		c.LastLocation = &ll
	}
	if s.AlertsSent != nil {
		c.AlertsSent = append([]AlertRecord(nil), s.AlertsSent...)
	}
	if s.Fired != nil {
		c.Fired = make(map[string]bool, len(s.Fired))
		for k, v := range s.Fired {
			c.Fired[k] = v
		}
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	return &c
}

func (p Plan) clone() Plan {
	c := Plan{Destination: p.Destination}
	if p.Legs == nil {
		return c
	}
	c.Legs = make([]Leg, len(p.Legs))
	for i, leg := range p.Legs {
		c.Legs[i] = leg
		c.Legs[i].Stops = append([]Stop(nil), leg.Stops...)
		if leg.Destination != nil {
			d := *leg.Destination
			c.Legs[i].Destination = &d
		}
	}
	return c
}

// UpdateResult is returned for each location update.
type UpdateResult struct {
	SessionID string `json:"session_id"`
	// AlreadyCompleted is set when the session had finished before this
	// update; nothing else is populated in that case.
	AlreadyCompleted      bool          `json:"-"`
	LocationUpdated       bool          `json:"location_updated"`
	CurrentLocation       Fix           `json:"current_location"`
	DistanceToDestination float64       `json:"distance_to_destination"`
	TriggeredAlerts       []AlertRecord `json:"triggered_alerts"`
	SessionStatus         string        `json:"session_status"`
	CurrentLegIndex       int           `json:"current_leg_index"`
	LegAdvanced           bool          `json:"leg_advanced"`
}

// Values of UpdateResult.SessionStatus
const (
	SessionTracking  = "tracking"
	SessionCompleted = "completed"
)

// StopResult summarises a stopped session.
type StopResult struct {
	SessionID       string    `json:"session_id"`
	AlertsSentCount int       `json:"alerts_sent_count"`
	StartedAt       time.Time `json:"started_at"`
	EndedAt         time.Time `json:"ended_at"`
	DurationSeconds float64   `json:"duration_seconds"`
}
