package sendnotification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/pkg/mocks"
	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence/memory"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFactory(t *testing.T) {
	factory := NewFactory(memory.NewNotificationSink())
	assert.Equal(t, "send_notification", factory.ID())
}

func TestAction_Execute(t *testing.T) {
	trigger := models.TriggerContext{
		OrganizationID: "org-1",
		TriggerType:    models.TriggerCardCompleted,
		Data: map[string]any{
			"card_id":    "card-1",
			"card_title": "Fix login",
			"user_id":    "user-1",
		},
	}

	t.Run("renders templates from trigger data", func(t *testing.T) {
		sink := memory.NewNotificationSink()
		factory := NewFactory(sink)

		action, err := factory.Create(map[string]any{
			"title":   "Done: {card_title}",
			"message": "{card_title} was completed",
		})
		require.NoError(t, err)

		output, err := action.Execute(context.Background(), trigger, testLogger())
		require.NoError(t, err)
		assert.Equal(t, true, output["success"])

		notifications := sink.Notifications()
		require.Len(t, notifications, 1)

		delivered := notifications[0]
		assert.Equal(t, "Done: Fix login", delivered.Title)
		assert.Equal(t, "Fix login was completed", delivered.Message)
		assert.Equal(t, "workflow_automation", delivered.Type)
		assert.Equal(t, "in_app", delivered.DeliveryMethod)
		assert.Equal(t, "user-1", delivered.UserID)
	})

	t.Run("applies defaults", func(t *testing.T) {
		sink := memory.NewNotificationSink()
		factory := NewFactory(sink)

		action, err := factory.Create(map[string]any{"user_id": "user-2"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), trigger, testLogger())
		require.NoError(t, err)

		notifications := sink.Notifications()
		require.Len(t, notifications, 1)
		assert.Equal(t, "Workflow Notification", notifications[0].Title)
		assert.Equal(t, "Automated notification", notifications[0].Message)
		assert.Equal(t, "medium", notifications[0].Priority)
		assert.Equal(t, "user-2", notifications[0].UserID)
	})

	t.Run("missing user id", func(t *testing.T) {
		factory := NewFactory(memory.NewNotificationSink())

		action, err := factory.Create(nil)
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), models.TriggerContext{OrganizationID: "org-1"}, testLogger())
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("sink failure surfaces", func(t *testing.T) {
		sink := new(mocks.MockNotificationSink)
		sink.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("smtp down"))

		factory := NewFactory(sink)

		action, err := factory.Create(map[string]any{"user_id": "user-1"})
		require.NoError(t, err)

		_, err = action.Execute(context.Background(), trigger, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "smtp down")
	})
}
