package events

import (
	"context"
	"encoding/json"
	"errors"
	"freight-order-service/internal/domain"
	"freight-order-service/internal/ports"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange, key string
	msg           amqp.Publishing
}

type fakeChannel struct {
	out    []published
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.out = append(c.out, published{exchange, key, msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublishOrderEvent(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, DefaultExchange)

	e := ports.OrderEvent{OrderID: 12, Status: domain.StatusCancelledByClient, ClientStatus: domain.ClientCancelled, ActorID: 7, At: "2026-03-01T09:00:00Z"}
	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(ch.out) != 1 {
		t.Fatalf("published %d messages", len(ch.out))
	}
	got := ch.out[0]
	if got.exchange != DefaultExchange || got.key != "order.cancelled_by_client" {
		t.Fatalf("exchange/key = %q/%q", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp.Persistent || got.msg.ContentType != "application/json" {
		t.Fatalf("publishing = %+v", got.msg)
	}

	var decoded map[string]any
	if err := json.Unmarshal(got.msg.Body, &decoded); err != nil {
		t.Fatalf("body: %v", err)
	}
	if decoded["client_status"] != "cancelled" || decoded["order_id"] != float64(12) {
		t.Fatalf("body = %v", decoded)
	}
}

func TestPublishAfterClose(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, DefaultExchange)
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !ch.closed {
		t.Fatalf("channel not closed")
	}
	if err := p.Publish(context.Background(), ports.OrderEvent{OrderID: 1}); err == nil {
		t.Fatalf("publish after close should fail")
	}
}

func TestPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	p := newPublisher(&fakeChannel{err: boom}, DefaultExchange)
	if err := p.Publish(context.Background(), ports.OrderEvent{OrderID: 1, Status: domain.StatusNew}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
}
