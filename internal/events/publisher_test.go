package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/trader-link/internal/domain"
)

func TestPublishDeliversEvent(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, Channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	p := NewPublisher(client)
	want := domain.ConnectionEvent{
		Type:      "connected",
		ListingID: "l1",
		AccountID: "a1",
		Mode:      domain.ConnectBoth,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	p.Publish(ctx, want)

	select {
	case msg := <-sub.Channel():
		var got domain.ConnectionEvent
		if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if got.ListingID != want.ListingID || got.AccountID != want.AccountID || got.Mode != want.Mode {
			t.Errorf("event mismatch: got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered within 2s")
	}
}
