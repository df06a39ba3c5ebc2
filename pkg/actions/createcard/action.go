// Package createcard implements the create_card action: create a new card
// under a project of the same organization, with title and description
// rendered from the trigger payload.
package createcard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
	"github.com/flowboard/flowboard/pkg/template"
)

var ErrMissingProjectID = errors.New("create_card: project_id is required")

const (
	defaultTitle    = "Automated Task"
	defaultStatus   = "todo"
	defaultPriority = "medium"
)

type Action struct {
	parameters map[string]any
	cards      protocol.CardStore
	members    protocol.MembershipStore
}

func (a *Action) Execute(ctx context.Context, trigger models.TriggerContext, logger *slog.Logger) (map[string]any, error) {
	projectID := trigger.ResolveString(a.parameters, "project_id")
	if projectID == "" {
		return nil, ErrMissingProjectID
	}

	inOrganization, err := a.cards.ProjectInOrganization(ctx, projectID, trigger.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project %s: %w", projectID, err)
	}

	if !inOrganization {
		return nil, fmt.Errorf("project %s not found in organization %s", projectID, trigger.OrganizationID)
	}

	assignee := models.Stringify(a.parameters["assigned_to"])
	if assignee != "" {
		member, err := a.members.IsMember(ctx, trigger.OrganizationID, assignee)
		if err != nil {
			return nil, fmt.Errorf("failed to check membership for user %s: %w", assignee, err)
		}

		if !member {
			return nil, fmt.Errorf("user %s is not a member of organization %s", assignee, trigger.OrganizationID)
		}
	}

	title := defaultTitle
	if v, ok := a.parameters["title"]; ok {
		if s := models.Stringify(v); s != "" {
			title = s
		}
	}

	card := &models.Card{
		OrganizationID: trigger.OrganizationID,
		ProjectID:      projectID,
		Title:          template.Render(title, trigger.Data),
		Description:    template.Render(models.Stringify(a.parameters["description"]), trigger.Data),
		Status:         defaultStatus,
		Priority:       defaultPriority,
		AssignedTo:     assignee,
	}

	if s := models.Stringify(a.parameters["status"]); s != "" {
		card.Status = s
	}

	if s := models.Stringify(a.parameters["priority"]); s != "" {
		card.Priority = s
	}

	if err := a.cards.CreateCard(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card in project %s: %w", projectID, err)
	}

	logger.Info("Created card", "card_id", card.ID, "project_id", projectID, "title", card.Title)

	return map[string]any{
		"success":    true,
		"card_id":    card.ID,
		"title":      card.Title,
		"project_id": projectID,
	}, nil
}
