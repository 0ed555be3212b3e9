package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	b, err := Encode(Event{Type: SubjectDeliveryAssigned, OrderID: "o1", AgentID: "a1", Actor: "u1", OccurredAt: at})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "dashboard.delivery.assigned", got["type"])
	assert.Equal(t, "o1", got["orderId"])
	assert.Equal(t, "a1", got["agentId"])
	assert.Equal(t, "u1", got["actor"])
	assert.Equal(t, "2025-03-01T12:00:00Z", got["occurredAt"])
}

func TestEncode_FillsTimeAndRequiresType(t *testing.T) {
	_, err := Encode(Event{})
	assert.Error(t, err)

	b, err := Encode(Event{Type: SubjectOrderCreated, OrderID: "o2"})
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal(b, &got))
	assert.False(t, got.OccurredAt.IsZero())
	assert.Empty(t, got.AgentID)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: SubjectOrderCreated}))
	assert.NoError(t, p.Close())
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	_, err := NewNATSPublisher("nats://127.0.0.1:1")
	assert.Error(t, err)
}
