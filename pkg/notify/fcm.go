package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// DefaultFCMEndpoint is the Firebase Cloud Messaging legacy HTTP endpoint.
const DefaultFCMEndpoint = "https://fcm.googleapis.com/fcm/send"

// maxFCMResponseBytes caps how much of an FCM response body is read.
const maxFCMResponseBytes = 1 << 20

// FCMSink delivers notifications through Firebase Cloud Messaging using a
// server key.
type FCMSink struct {
	endpoint  string
	serverKey string
	client    *http.Client
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// FCMOption configures an FCMSink.
type FCMOption func(*FCMSink)

// WithEndpoint overrides the FCM endpoint URL.
func WithEndpoint(endpoint string) FCMOption {
	return func(s *FCMSink) {
		if endpoint != "" {
			s.endpoint = endpoint
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) FCMOption {
	return func(s *FCMSink) {
		if client != nil {
			s.client = client
		}
	}
}

// WithRateLimit limits outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) FCMOption {
	return func(s *FCMSink) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the sink's logger.
func WithLogger(logger *slog.Logger) FCMOption {
	return func(s *FCMSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewFCMSink creates an FCM sink. The server key is required.
func NewFCMSink(serverKey string, opts ...FCMOption) (*FCMSink, error) {
	if serverKey == "" {
		return nil, errors.New("fcm: server key is required")
	}

	s := &FCMSink{
		endpoint:  DefaultFCMEndpoint,
		serverKey: serverKey,
		client:    &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Limit(10), 20),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "fcm_sink")
	return s, nil
}

type fcmMessage struct {
	To           string            `json:"to"`
	Priority     string            `json:"priority"`
	Notification fcmNotification   `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	MulticastID int64 `json:"multicast_id"`
	Success     int   `json:"success"`
	Failure     int   `json:"failure"`
	Results     []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

// fcmPriority maps our three levels onto FCM's two.
func fcmPriority(p Priority) string {
	if p == PriorityHigh {
		return "high"
	}
	return "normal"
}

// Send implements Sink.
func (s *FCMSink) Send(ctx context.Context, n Notification) (*Delivery, error) {
	n = normalize(n)
	if err := n.Validate(); err != nil {
		return nil, err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %w", ErrDeliveryFailed, err)
	}

	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	if n.Category != "" {
		data["category"] = n.Category
	}

	payload, err := json.Marshal(fcmMessage{
		To:           n.Recipient,
		Priority:     fcmPriority(n.Priority),
		Notification: fcmNotification{Title: n.Title, Body: n.Body},
		Data:         data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode fcm message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.serverKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("fcm request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFCMResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrDeliveryFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("fcm returned error status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: fcm status %d: %s", ErrDeliveryFailed, resp.StatusCode, bytes.TrimSpace(body))
	}

	var result fcmResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrDeliveryFailed, err)
	}

	if result.Failure > 0 {
		reason := "unknown error"
		if len(result.Results) > 0 && result.Results[0].Error != "" {
			reason = result.Results[0].Error
		}
		return nil, fmt.Errorf("%w: fcm rejected message: %s", ErrDeliveryFailed, reason)
	}

	id := strconv.FormatInt(result.MulticastID, 10)
	if len(result.Results) > 0 && result.Results[0].MessageID != "" {
		id = result.Results[0].MessageID
	}

	s.logger.Debug("fcm notification delivered", "recipient", TokenPrefix(n.Recipient, 8), "message_id", id)

	return &Delivery{
		ID:        id,
		Delivered: result.Success > 0,
		Source:    SourceFCM,
		SentAt:    time.Now(),
		Receivers: int64(result.Success),
	}, nil
}
