// Package models defines the core domain models for the workflow automation engine.
package models

import "time"

// TriggerType is the closed category of domain event a rule reacts to.
type TriggerType string

const (
	TriggerCardCreated        TriggerType = "card_created"
	TriggerCardUpdated        TriggerType = "card_updated"
	TriggerCardCompleted      TriggerType = "card_completed"
	TriggerDueDateApproaching TriggerType = "due_date_approaching"
	TriggerProjectCreated     TriggerType = "project_created"
	TriggerUserAssigned       TriggerType = "user_assigned"
)

// KnownTriggerTypes lists every trigger type the engine dispatches on.
var KnownTriggerTypes = []TriggerType{
	TriggerCardCreated,
	TriggerCardUpdated,
	TriggerCardCompleted,
	TriggerDueDateApproaching,
	TriggerProjectCreated,
	TriggerUserAssigned,
}

func (t TriggerType) Valid() bool {
	for _, known := range KnownTriggerTypes {
		if t == known {
			return true
		}
	}

	return false
}

// ActionSpec is one configured side effect in a rule's ordered action list.
type ActionSpec struct {
	Type       string         `json:"action_type" validate:"required"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Rule is the unit of automation: a trigger type, a predicate tree over the
// event payload, and an ordered list of actions to run when it matches.
type Rule struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id" validate:"required"`
	ProjectID      string       `json:"project_id,omitempty"`
	Name           string       `json:"name"            validate:"required,min=3"`
	Description    string       `json:"description,omitempty"`
	TriggerType    TriggerType  `json:"trigger_type"    validate:"required"`
	Conditions     ConditionSet `json:"trigger_conditions"`
	Actions        []ActionSpec `json:"actions"         validate:"required,min=1,dive"`
	Priority       int          `json:"priority"`
	IsActive       bool         `json:"is_active"`
	ExecutionCount int64        `json:"execution_count"`
	LastExecuted   *time.Time   `json:"last_executed,omitempty"`
	CreatedBy      string       `json:"created_by"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
