package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/pkg/channels/gochannel"
	"github.com/flowboard/flowboard/pkg/events"
	"github.com/flowboard/flowboard/pkg/models"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return NewWatermillEventBus(pub, sub)
}

func TestWatermillEventBus_PublishAndSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := newTestBus(t)

	received := make(chan *events.TriggerEvent, 1)

	err := bus.SubscribeTriggers(ctx, func(_ context.Context, event *events.TriggerEvent) error {
		received <- event

		return nil
	})
	require.NoError(t, err)

	sent := events.NewTriggerEvent("org-1", models.TriggerCardCompleted, map[string]any{"card_id": "card-1"})
	require.NoError(t, bus.PublishTrigger(ctx, sent))

	select {
	case event := <-received:
		assert.Equal(t, sent.EventID, event.EventID)
		assert.Equal(t, "org-1", event.OrganizationID)
		assert.Equal(t, models.TriggerCardCompleted, event.TriggerType)
		assert.Equal(t, "card-1", event.Payload["card_id"])
	case <-ctx.Done():
		t.Fatal("timed out waiting for trigger event")
	}
}

func TestWatermillEventBus_PublishRejectsInvalidEvent(t *testing.T) {
	bus := newTestBus(t)

	err := bus.PublishTrigger(context.Background(), &events.TriggerEvent{
		TriggerType: models.TriggerCardCreated,
	})
	assert.ErrorIs(t, err, events.ErrMissingOrganization)
}
