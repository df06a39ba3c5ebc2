// Package setpriority implements the set_priority action: overwrite a card's
// priority column.
package setpriority

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
)

const ActionType = "set_priority"

var (
	ErrMissingCardID   = errors.New("set_priority: card_id is required")
	ErrMissingPriority = errors.New("set_priority: priority is required")
)

type Factory struct {
	cards protocol.CardStore
}

func NewFactory(cards protocol.CardStore) *Factory {
	return &Factory{cards: cards}
}

func (*Factory) ID() string {
	return ActionType
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}

	return &Action{parameters: parameters, cards: f.cards}, nil
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"card_id": map[string]any{
				"type":        "string",
				"description": "Card to update. Falls back to the card_id of the triggering event.",
			},
			"priority": map[string]any{
				"type":        "string",
				"description": "New priority for the card.",
				"enum":        []string{"low", "medium", "high", "urgent"},
			},
		},
		"required": []string{"priority"},
	}
}

type Action struct {
	parameters map[string]any
	cards      protocol.CardStore
}

func (a *Action) Execute(ctx context.Context, trigger models.TriggerContext, logger *slog.Logger) (map[string]any, error) {
	cardID := trigger.ResolveString(a.parameters, "card_id")
	if cardID == "" {
		return nil, ErrMissingCardID
	}

	newPriority := models.Stringify(a.parameters["priority"])
	if newPriority == "" {
		return nil, ErrMissingPriority
	}

	card, err := a.cards.CardByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("card %s not found: %w", cardID, err)
	}

	if err := a.cards.UpdatePriority(ctx, card.ID, newPriority); err != nil {
		return nil, fmt.Errorf("failed to update priority of card %s: %w", card.ID, err)
	}

	logger.Info("Set card priority", "card_id", card.ID, "old_priority", card.Priority, "new_priority", newPriority)

	return map[string]any{
		"success":      true,
		"card_id":      card.ID,
		"old_priority": card.Priority,
		"new_priority": newPriority,
	}, nil
}
