// Package events defines the domain events the automation engine consumes.
package events

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/flowboard/pkg/models"
)

// Topic is the event-bus topic trigger events are published on.
const Topic = "flowboard.trigger-events"

// Metadata keys set on event-bus messages.
const (
	EventIDMetadataKey     = "event_id"
	TriggerTypeMetadataKey = "trigger_type"
)

var (
	ErrMissingOrganization = errors.New("trigger event requires an organization_id")
	ErrUnknownTriggerType  = errors.New("trigger event has an unknown trigger type")
)

// TriggerEvent is one domain event: something happened in an organization
// that rules may react to.
type TriggerEvent struct {
	EventID        string             `json:"event_id"`
	OrganizationID string             `json:"organization_id"`
	TriggerType    models.TriggerType `json:"trigger_type"`
	Payload        map[string]any     `json:"payload"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

func NewTriggerEvent(organizationID string, triggerType models.TriggerType, payload map[string]any) *TriggerEvent {
	return &TriggerEvent{
		EventID:        uuid.New().String(),
		OrganizationID: organizationID,
		TriggerType:    triggerType,
		Payload:        payload,
		OccurredAt:     time.Now().UTC(),
	}
}

func (e *TriggerEvent) Validate() error {
	if e.OrganizationID == "" {
		return ErrMissingOrganization
	}

	if !e.TriggerType.Valid() {
		return ErrUnknownTriggerType
	}

	return nil
}
