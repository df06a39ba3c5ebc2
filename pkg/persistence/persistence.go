// Package persistence provides the data storage abstraction for automation
// rules, execution records, custom fields, and templates.
package persistence

import (
	"context"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
)

// RuleRepository stores automation rules.
type RuleRepository interface {
	// ActiveRulesForTrigger returns the active rules of an organization for
	// one trigger type, ordered by priority descending with creation order as
	// the tie-break.
	ActiveRulesForTrigger(ctx context.Context, organizationID string, trigger models.TriggerType) ([]*models.Rule, error)
	RuleByID(ctx context.Context, id string) (*models.Rule, error)
	AllRules(ctx context.Context) ([]*models.Rule, error)
	SaveRule(ctx context.Context, rule *models.Rule) error
	// IncrementExecution atomically bumps the rule's execution counter and
	// stamps last_executed, avoiding read-modify-write on the rule row.
	IncrementExecution(ctx context.Context, ruleID string, at time.Time) error
}

// ExecutionRepository stores execution audit records.
type ExecutionRepository interface {
	// SaveExecution inserts the record or updates it in place by ID.
	SaveExecution(ctx context.Context, execution *models.Execution) error
	ExecutionByID(ctx context.Context, id string) (*models.Execution, error)
}

// CustomFieldRepository stores custom field definitions and values.
type CustomFieldRepository interface {
	// FieldByName resolves an active field definition within an organization.
	FieldByName(ctx context.Context, organizationID, name string) (*models.CustomField, error)
	SaveField(ctx context.Context, field *models.CustomField) error
	// UpsertValue stores a value, replacing any existing row for the same
	// (field, entity) pair.
	UpsertValue(ctx context.Context, value *models.CustomFieldValue) error
	ValueFor(ctx context.Context, fieldID, entityID string) (*models.CustomFieldValue, error)
}

// TemplateRepository stores automation templates.
type TemplateRepository interface {
	PublicTemplateByID(ctx context.Context, id string) (*models.AutomationTemplate, error)
	SaveTemplate(ctx context.Context, template *models.AutomationTemplate) error
	IncrementUsage(ctx context.Context, id string) error
}

// Persistence aggregates the engine's repositories.
type Persistence interface {
	Rules() RuleRepository
	Executions() ExecutionRepository
	CustomFields() CustomFieldRepository
	Templates() TemplateRepository

	// WithinTransaction runs fn against a transaction-scoped view of the
	// repositories; every write inside commits or rolls back together.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, p Persistence) error) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
