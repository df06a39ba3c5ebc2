// Package changestatus implements the change_status action: overwrite a
// card's status column.
package changestatus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
)

const ActionType = "change_status"

var (
	ErrMissingCardID = errors.New("change_status: card_id is required")
	ErrMissingStatus = errors.New("change_status: status is required")
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
			"status": map[string]any{
				"type":        "string",
				"description": "New status for the card.",
			},
		},
		"required": []string{"status"},
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

	newStatus := models.Stringify(a.parameters["status"])
	if newStatus == "" {
		return nil, ErrMissingStatus
	}

	card, err := a.cards.CardByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("card %s not found: %w", cardID, err)
	}

	if err := a.cards.UpdateStatus(ctx, card.ID, newStatus); err != nil {
		return nil, fmt.Errorf("failed to update status of card %s: %w", card.ID, err)
	}

	logger.Info("Changed card status", "card_id", card.ID, "old_status", card.Status, "new_status", newStatus)

	return map[string]any{
		"success":    true,
		"card_id":    card.ID,
		"old_status": card.Status,
		"new_status": newStatus,
	}, nil
}
