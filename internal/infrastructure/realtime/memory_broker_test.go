package realtime

import (
	"context"
	"testing"
	"time"

	"mediconnect/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBroker_DeliversToTableSubscribers(t *testing.T) {
	broker := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, unsubscribe, err := broker.Subscribe(ctx, "consultations")
	require.NoError(t, err)
	defer unsubscribe()

	other, unsubscribeOther, err := broker.Subscribe(ctx, "appointments")
	require.NoError(t, err)
	defer unsubscribeOther()

	require.NoError(t, broker.Publish(ctx, entity.ChangeEvent{Table: "consultations", Type: entity.ChangeInsert, RecordID: "c1"}))

	select {
	case event := <-events:
		assert.Equal(t, "c1", event.RecordID)
		assert.Equal(t, entity.ChangeInsert, event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected a consultation event")
	}

	select {
	case event := <-other:
		t.Fatalf("unexpected event on appointments: %+v", event)
	default:
	}
}

func TestMemoryBroker_ClosesOnContextDone(t *testing.T) {
	broker := NewMemoryBroker()
	ctx, cancel := context.WithCancel(context.Background())

	events, _, err := broker.Subscribe(ctx, "messages")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel was not closed")
	}
}
