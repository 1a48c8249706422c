package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/ordercore/domain"
	"github.com/fastygo/ordercore/usecase"
)

func TestNotifierPublishesEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	sub := client.Subscribe(ctx, "order-events")
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	notifier := NewNotifier(client, "order-events", nil)
	event := domain.NewDomainEvent(domain.EventOrderPaid, "ord-1", domain.OrderPaidPayload{Total: "12.99"})
	if err := notifier.Publish(ctx, event); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		var decoded struct {
			Kind        string `json:"kind"`
			AggregateID string `json:"aggregate_id"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &decoded); err != nil {
			t.Fatalf("payload not decodable: %v", err)
		}
		if decoded.Kind != string(domain.EventOrderPaid) || decoded.AggregateID != "ord-1" {
			t.Fatalf("published %+v", decoded)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestNotifierSubscribesToOrderEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	defer client.Close()

	registry := usecase.NewEventRegistry()
	NewNotifier(client, "", nil).Subscribe(registry)

	for _, kind := range []domain.EventKind{
		domain.EventOrderPlaced,
		domain.EventOrderLineAdded,
		domain.EventOrderPaid,
		domain.EventOrderCancelled,
	} {
		if got := registry.HandlersFor(kind); len(got) != 1 {
			t.Fatalf("handlers for %q = %d, want 1", kind, len(got))
		}
	}
	if got := registry.HandlersFor(domain.EventCustomerRegistered); got != nil {
		t.Fatalf("customer events unexpectedly subscribed: %d", len(got))
	}
}
