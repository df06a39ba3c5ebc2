package changestatus

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

func TestFactory(t *testing.T) {
	factory := NewFactory(memory.NewCardStore())
	assert.Equal(t, "change_status", factory.ID())
}

func TestAction_Execute(t *testing.T) {
	cards := memory.NewCardStore()
	cards.SeedCard(&models.Card{ID: "card-1", OrganizationID: "org-1", Status: "todo"})

	factory := NewFactory(cards)

	trigger := models.TriggerContext{
		OrganizationID: "org-1",
		TriggerType:    models.TriggerCardUpdated,
		Data:           map[string]any{"card_id": "card-1"},
	}

	t.Run("reports old and new status", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"status": "in_progress"})
		require.NoError(t, err)

		output, err := action.Execute(context.Background(), trigger, testLogger())
		require.NoError(t, err)

		assert.Equal(t, "todo", output["old_status"])
		assert.Equal(t, "in_progress", output["new_status"])

		card, err := cards.CardByID(context.Background(), "card-1")
		require.NoError(t, err)
		assert.Equal(t, "in_progress", card.Status)
	})

	t.Run("status comes from parameters only", func(t *testing.T) {
		action, err := factory.Create(nil)
		require.NoError(t, err)

		withStatusInData := models.TriggerContext{
			OrganizationID: "org-1",
			Data:           map[string]any{"card_id": "card-1", "status": "done"},
		}

		_, err = action.Execute(context.Background(), withStatusInData, testLogger())
		assert.ErrorIs(t, err, ErrMissingStatus)
	})

	t.Run("missing card id", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"status": "done"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), models.TriggerContext{OrganizationID: "org-1"}, testLogger())
		assert.ErrorIs(t, err, ErrMissingCardID)
	})

	t.Run("unknown card", func(t *testing.T) {
		action, err := factory.Create(map[string]any{"card_id": "ghost", "status": "done"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), trigger, testLogger())
		assert.Error(t, err)
	})
}
