package assignuser

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTrigger(data map[string]any) models.TriggerContext {
	return models.TriggerContext{
		OrganizationID: "org-1",
		TriggerType:    models.TriggerCardCreated,
		Data:           data,
	}
}

func TestFactory(t *testing.T) {
	factory := NewFactory(memory.NewCardStore(), memory.NewMembershipStore())

	assert.Equal(t, "assign_user", factory.ID())

	action, err := factory.Create(nil)
	require.NoError(t, err)
	assert.NotNil(t, action)
}

func TestAction_Execute(t *testing.T) {
	cards := memory.NewCardStore()
	cards.SeedCard(&models.Card{ID: "card-1", OrganizationID: "org-1", Status: "todo"})

	members := memory.NewMembershipStore()
	members.AddMember("org-1", "user-1")

	factory := NewFactory(cards, members)

	t.Run("assigns from explicit parameters", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"card_id": "card-1", "user_id": "user-1"})
		require.NoError(t, err)

		output, err := action.Execute(context.Background(), newTrigger(nil), testLogger())
		require.NoError(t, err)

		assert.Equal(t, true, output["success"])
		assert.Equal(t, "user-1", output["assigned_to"])

		card, err := cards.CardByID(context.Background(), "card-1")
		require.NoError(t, err)
		assert.Equal(t, "user-1", card.AssignedTo)
	})

	t.Run("falls back to trigger data for card id", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"user_id": "user-1"})
		require.NoError(t, err)

		output, err := action.Execute(context.Background(), newTrigger(map[string]any{"card_id": "card-1"}), testLogger())
		require.NoError(t, err)
		assert.Equal(t, "card-1", output["card_id"])
	})

	t.Run("missing card id", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"user_id": "user-1"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), newTrigger(nil), testLogger())
		assert.ErrorIs(t, err, ErrMissingCardID)
	})

	t.Run("missing user id", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"card_id": "card-1"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), newTrigger(nil), testLogger())
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("unknown card", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"card_id": "nope", "user_id": "user-1"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), newTrigger(nil), testLogger())
		assert.Error(t, err)
	})

	t.Run("user outside the organization", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"card_id": "card-1", "user_id": "outsider"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), newTrigger(nil), testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a member")
	})
}
