package protocol

import (
	"context"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
)

// CardStore is the engine's view of the kanban card subsystem.
type CardStore interface {
	CardByID(ctx context.Context, cardID string) (*models.Card, error)
	UpdateAssignee(ctx context.Context, cardID, userID string) error
	UpdateStatus(ctx context.Context, cardID, status string) error
	UpdatePriority(ctx context.Context, cardID, priority string) error
	// CreateCard persists a new card and fills in its ID.
	CreateCard(ctx context.Context, card *models.Card) error
	ProjectInOrganization(ctx context.Context, projectID, organizationID string) (bool, error)
	// CardsDueBefore lists open cards whose due date falls before cutoff,
	// used by the due-date scanner.
	CardsDueBefore(ctx context.Context, cutoff time.Time) ([]*models.Card, error)
}

// MembershipStore verifies organization membership.
type MembershipStore interface {
	IsMember(ctx context.Context, organizationID, userID string) (bool, error)
}

// NotificationSink accepts in-app notifications; it fills in the ID.
type NotificationSink interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
}

// CustomFieldStore resolves field definitions and upserts typed values.
type CustomFieldStore interface {
	FieldByName(ctx context.Context, organizationID, name string) (*models.CustomField, error)
	UpsertValue(ctx context.Context, value *models.CustomFieldValue) error
}

// TemplateSource fetches public automation templates.
type TemplateSource interface {
	PublicTemplateByID(ctx context.Context, templateID string) (*models.AutomationTemplate, error)
}
