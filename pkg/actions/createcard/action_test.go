package createcard

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
	factory := NewFactory(memory.NewCardStore(), memory.NewMembershipStore())
	assert.Equal(t, "create_card", factory.ID())
}

func TestAction_Execute(t *testing.T) {
	trigger := models.TriggerContext{
		OrganizationID: "org-1",
		TriggerType:    models.TriggerProjectCreated,
		Data: map[string]any{
			"project_id":   "proj-1",
			"project_name": "Website",
		},
	}

	newStores := func() (*memory.CardStore, *memory.MembershipStore) {
		cards := memory.NewCardStore()
		cards.AddProject("proj-1", "org-1")

		members := memory.NewMembershipStore()
		members.AddMember("org-1", "user-1")

		return cards, members
	}

	t.Run("creates card with rendered title and defaults", func(t *testing.T) {
		cards, members := newStores()
		factory := NewFactory(cards, members)

		action, err := factory.Create(map[string]any{
			"title":       "Kickoff for {project_name}",
			"description": "Setup {project_name}",
		})
		require.NoError(t, err)

		output, err := action.Execute(context.Background(), trigger, testLogger())
		require.NoError(t, err)

		assert.Equal(t, true, output["success"])
		assert.Equal(t, "Kickoff for Website", output["title"])

		cardID, ok := output["card_id"].(string)
		require.True(t, ok)

		card, err := cards.CardByID(context.Background(), cardID)
		require.NoError(t, err)
		assert.Equal(t, "todo", card.Status)
		assert.Equal(t, "medium", card.Priority)
		assert.Equal(t, "Setup Website", card.Description)
	})

	t.Run("explicit status and priority override defaults", func(t *testing.T) {
		cards, members := newStores()
		factory := NewFactory(cards, members)

		action, err := factory.Create(map[string]any{
			"status":   "backlog",
			"priority": "high",
		})
		require.NoError(t, err)

		output, err := action.Execute(context.Background(), trigger, testLogger())
		require.NoError(t, err)

		card, err := cards.CardByID(context.Background(), output["card_id"].(string))
		require.NoError(t, err)
		assert.Equal(t, "backlog", card.Status)
		assert.Equal(t, "high", card.Priority)
	})

	t.Run("assignee must be a member", func(t *testing.T) {
		cards, members := newStores()
		factory := NewFactory(cards, members)

		action, err := factory.Create(map[string]any{"assigned_to": "outsider"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), trigger, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a member")
	})

	t.Run("project must belong to the organization", func(t *testing.T) {
		cards, members := newStores()
		factory := NewFactory(cards, members)

		action, err := factory.Create(map[string]any{"project_id": "foreign-project"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), trigger, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found in organization")
	})

	t.Run("missing project id", func(t *testing.T) {
		cards, members := newStores()
		factory := NewFactory(cards, members)

		action, err := factory.Create(nil)
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), models.TriggerContext{OrganizationID: "org-1"}, testLogger())
		assert.ErrorIs(t, err, ErrMissingProjectID)
	})
}
