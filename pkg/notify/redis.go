package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel returns the pub/sub channel a push gateway subscribes to for one
// recipient.
func Channel(recipient string) string {
	return "notifications:" + recipient
}

// Message is the JSON document published by RedisSink.
type Message struct {
	ID string `json:"notification_id"`
	Notification
	SentAt time.Time `json:"sent_at"`
}

// RedisSink publishes notifications on Redis pub/sub for a push gateway to
// fan out to devices.
type RedisSink struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisSink creates a RedisSink on an existing client.
func NewRedisSink(client redis.UniversalClient, logger *slog.Logger) *RedisSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSink{client: client, logger: logger.With("component", "redis_sink")}
}

// Send implements Sink. A notification counts as delivered once Redis has
// accepted the publish, whether or not a gateway is currently subscribed.
func (s *RedisSink) Send(ctx context.Context, n Notification) (*Delivery, error) {
	n = normalize(n)
	if err := n.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	msg := Message{
		ID:           newID("push", n.Recipient, now),
		Notification: n,
		SentAt:       now,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}

	receivers, err := s.client.Publish(ctx, Channel(n.Recipient), payload).Result()
	if err != nil {
		s.logger.Warn("redis publish failed", "recipient", TokenPrefix(n.Recipient, 8), "error", err)
		return nil, fmt.Errorf("%w: publish: %w", ErrDeliveryFailed, err)
	}

	if receivers == 0 {
		s.logger.Debug("no gateway subscribed", "channel", Channel(TokenPrefix(n.Recipient, 8)))
	}

	return &Delivery{
		ID:        msg.ID,
		Delivered: true,
		Source:    SourceRedis,
		SentAt:    now,
		Receivers: receivers,
	}, nil
}
