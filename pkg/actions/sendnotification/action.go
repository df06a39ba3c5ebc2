// Package sendnotification implements the send_notification action: render
// the configured title and message templates from the trigger payload and
// hand an in-app notification to the notification sink.
package sendnotification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
	"github.com/flowboard/flowboard/pkg/template"
)

var ErrMissingUserID = errors.New("send_notification: user_id is required")

const (
	defaultTitle    = "Workflow Notification"
	defaultMessage  = "Automated notification"
	defaultPriority = "medium"
)

type Action struct {
	parameters    map[string]any
	notifications protocol.NotificationSink
}

func (a *Action) Execute(ctx context.Context, trigger models.TriggerContext, logger *slog.Logger) (map[string]any, error) {
	userID := trigger.ResolveString(a.parameters, "user_id")
	if userID == "" {
		return nil, ErrMissingUserID
	}

	title := stringParameter(a.parameters, "title", defaultTitle)
	message := stringParameter(a.parameters, "message", defaultMessage)
	priority := stringParameter(a.parameters, "priority", defaultPriority)

	notification := &models.Notification{
		OrganizationID: trigger.OrganizationID,
		UserID:         userID,
		Type:           "workflow_automation",
		Title:          template.Render(title, trigger.Data),
		Message:        template.Render(message, trigger.Data),
		Priority:       priority,
		Context:        trigger.Data,
		DeliveryMethod: "in_app",
	}

	if err := a.notifications.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("failed to create notification for user %s: %w", userID, err)
	}

	logger.Info("Sent notification", "notification_id", notification.ID, "user_id", userID)

	return map[string]any{
		"success":         true,
		"notification_id": notification.ID,
		"user_id":         userID,
		"message":         notification.Message,
	}, nil
}

func stringParameter(parameters map[string]any, key, fallback string) string {
	if v, ok := parameters[key]; ok {
		if s := models.Stringify(v); s != "" {
			return s
		}
	}

	return fallback
}
