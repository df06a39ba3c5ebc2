// Package assignuser implements the assign_user action: set a card's
// assignee after verifying the user belongs to the organization.
package assignuser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
)

const ActionType = "assign_user"

var (
	ErrMissingCardID = errors.New("assign_user: card_id is required")
	ErrMissingUserID = errors.New("assign_user: user_id is required")
)

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
			"card_id": map[string]any{
				"type":        "string",
				"description": "Card to assign. Falls back to the card_id of the triggering event.",
			},
			"user_id": map[string]any{
				"type":        "string",
				"description": "User to assign. Must be a member of the organization.",
			},
		},
	}
}

type Action struct {
	parameters map[string]any
	cards      protocol.CardStore
	members    protocol.MembershipStore
}

func (a *Action) Execute(ctx context.Context, trigger models.TriggerContext, logger *slog.Logger) (map[string]any, error) {
	cardID := trigger.ResolveString(a.parameters, "card_id")
	if cardID == "" {
		return nil, ErrMissingCardID
	}

	userID := trigger.ResolveString(a.parameters, "user_id")
	if userID == "" {
		return nil, ErrMissingUserID
	}

	card, err := a.cards.CardByID(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("card %s not found: %w", cardID, err)
	}

	member, err := a.members.IsMember(ctx, trigger.OrganizationID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership for user %s: %w", userID, err)
	}

	if !member {
		return nil, fmt.Errorf("user %s is not a member of organization %s", userID, trigger.OrganizationID)
	}

	if err := a.cards.UpdateAssignee(ctx, card.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to assign card %s: %w", card.ID, err)
	}

	logger.Info("Assigned user to card", "card_id", card.ID, "user_id", userID)

	return map[string]any{
		"success":     true,
		"card_id":     card.ID,
		"assigned_to": userID,
	}, nil
}
