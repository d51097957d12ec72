package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MockSink records notifications instead of delivering them. It is the
// development sink used in mock mode and by tests, which can inject a
// failure, a non-delivery or a delay.
type MockSink struct {
	mu          sync.Mutex
	sent        []Notification
	err         error
	undelivered bool
	delay       time.Duration
	logger      *slog.Logger
}

// NewMockSink creates a MockSink. A nil logger uses slog.Default().
func NewMockSink(logger *slog.Logger) *MockSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MockSink{logger: logger.With("component", "mock_sink")}
}

// FailWith makes every following Send return err. A nil err clears it.
func (m *MockSink) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// SetUndelivered makes Send succeed but report Delivered=false.
func (m *MockSink) SetUndelivered(undelivered bool) {
	m.mu.Lock()
	m.undelivered = undelivered
	m.mu.Unlock()
}

// SetDelay makes Send block for d or until ctx is done.
func (m *MockSink) SetDelay(d time.Duration) {
	m.mu.Lock()
	m.delay = d
	m.mu.Unlock()
}

// Send implements Sink.
func (m *MockSink) Send(ctx context.Context, n Notification) (*Delivery, error) {
	n = normalize(n)
	if err := n.Validate(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	delay, failure, undelivered := m.delay, m.err, m.undelivered
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	m.mu.Lock()
	m.sent = append(m.sent, n)
	m.mu.Unlock()

	if failure != nil {
		m.logger.Debug("mock delivery failed", "recipient", TokenPrefix(n.Recipient, 8), "error", failure)
		return nil, failure
	}

	now := time.Now()
	m.logger.Debug("mock notification recorded",
		"recipient", TokenPrefix(n.Recipient, 8),
		"title", n.Title,
		"priority", n.Priority)

	return &Delivery{
		ID:        newID("mock", n.Recipient, now),
		Delivered: !undelivered,
		Source:    SourceMock,
		SentAt:    now,
		Receivers: 1,
	}, nil
}

// Sent returns a copy of every notification handed to Send.
func (m *MockSink) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset forgets recorded notifications.
func (m *MockSink) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
