package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sydneyguide/sydneymcp/pkg/testutil"
)

func TestRedisSinkPublishes(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel("device-token"))
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sink := NewRedisSink(client, testutil.NewTLogger(t))
	d, err := sink.Send(ctx, Notification{
		Recipient: "device-token",
		Title:     "Journey Alert",
		Body:      "Get ready! 1 stops until Bondi Junction.",
		Priority:  PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !d.Delivered || d.Source != SourceRedis || d.Receivers != 1 {
		t.Errorf("unexpected delivery %+v", d)
	}

	select {
	case msg := <-sub.Channel():
		var got Message
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.ID != d.ID || got.Title != "Journey Alert" || got.Priority != PriorityHigh {
			t.Errorf("unexpected message %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for published notification")
	}
}

func TestRedisSinkNoSubscriber(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	d, err := NewRedisSink(client, testutil.NewTLogger(t)).Send(context.Background(), Notification{Recipient: "tok", Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !d.Delivered || d.Receivers != 0 {
		t.Errorf("unexpected delivery %+v", d)
	}
}

func TestRedisSinkPublishError(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()
	s.Close()

	_, err := NewRedisSink(client, testutil.NewTLogger(t)).Send(context.Background(), Notification{Recipient: "tok", Title: "t", Body: "b"})
	if !errors.Is(err, ErrDeliveryFailed) {
		t.Errorf("Send error = %v, want ErrDeliveryFailed", err)
	}
}
