package sendnotification

import (
	"github.com/flowboard/flowboard/pkg/protocol"
)

const ActionType = "send_notification"

type Factory struct {
	notifications protocol.NotificationSink
}

func NewFactory(notifications protocol.NotificationSink) *Factory {
	return &Factory{notifications: notifications}
}

func (*Factory) ID() string {
	return ActionType
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}

	return &Action{parameters: parameters, notifications: f.notifications}, nil
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_id": map[string]any{
				"type":        "string",
				"description": "Recipient. Falls back to the user_id of the triggering event.",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Notification title. Supports {key} placeholders rendered from the trigger payload.",
				"examples":    []string{"New card: {title}", "Due soon: {title}"},
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Notification body. Supports {key} placeholders rendered from the trigger payload.",
			},
			"priority": map[string]any{
				"type":        "string",
				"description": "Notification priority.",
				"default":     "medium",
				"enum":        []string{"low", "medium", "high", "urgent"},
			},
		},
	}
}
