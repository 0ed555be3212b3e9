// Package events publishes dispatch events for other services to consume.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published by the dashboard.
const (
	SubjectDeliveryAssigned  = "dashboard.delivery.assigned"
	SubjectDeliveryCompleted = "dashboard.delivery.completed"
	SubjectOrderCreated      = "dashboard.order.created"
)

// Event is the JSON payload of every subject.
type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId,omitempty"`
	AgentID    string    `json:"agentId,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher sends events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Encode renders e as published on the wire.
func Encode(e Event) ([]byte, error) {
	if e.Type == "" {
		return nil, fmt.Errorf("event type is required")
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	return json.Marshal(e)
}

// NATSPublisher publishes each event on the subject named by its Type.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("food-delivery-admin"), nats.Timeout(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := Encode(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(e.Type, msg)
}

func (p *NATSPublisher) Close() error {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
	return nil
}

// Nop discards events. It is used when NATS_URL is not set.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
