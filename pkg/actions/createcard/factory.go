package createcard

import (
	"github.com/flowboard/flowboard/pkg/protocol"
)

const ActionType = "create_card"

type Factory struct {
	cards   protocol.CardStore
	members protocol.MembershipStore
}

func NewFactory(cards protocol.CardStore, members protocol.MembershipStore) *Factory {
	return &Factory{cards: cards, members: members}
}

func (*Factory) ID() string {
	return ActionType
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}

	return &Action{parameters: parameters, cards: f.cards, members: f.members}, nil
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"project_id": map[string]any{
				"type":        "string",
				"description": "Project to create the card under. Falls back to the project_id of the triggering event. Must belong to the organization.",
			},
			"title": map[string]any{
				"type":        "string",
				"description": "Card title. Supports {key} placeholders rendered from the trigger payload.",
				"examples":    []string{"Follow up: {title}"},
			},
			"description": map[string]any{
				"type":        "string",
				"description": "Card description. Supports {key} placeholders rendered from the trigger payload.",
			},
			"status": map[string]any{
				"type":        "string",
				"description": "Initial status for the card.",
				"default":     "todo",
			},
			"priority": map[string]any{
				"type":        "string",
				"description": "Initial priority for the card.",
				"default":     "medium",
				"enum":        []string{"low", "medium", "high", "urgent"},
			},
			"assigned_to": map[string]any{
				"type":        "string",
				"description": "Optional assignee. Must be a member of the organization.",
			},
		},
	}
}
