package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

const ruleColumns = `
	id
  , organization_id
  , project_id
  , name
  , description
  , trigger_type
  , trigger_conditions
  , actions
  , priority
  , is_active
  , execution_count
  , last_executed
  , created_by
  , created_at
  , updated_at
`

// RuleRepository handles automation rule database operations.
type RuleRepository struct {
	db     dbtx
	logger *slog.Logger
}

func NewRuleRepository(db dbtx, logger *slog.Logger) *RuleRepository {
	return &RuleRepository{db: db, logger: logger}
}

// ActiveRulesForTrigger returns active rules ordered by priority descending,
// oldest first within the same priority.
func (r *RuleRepository) ActiveRulesForTrigger(ctx context.Context, organizationID string, trigger models.TriggerType) ([]*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM automation_rules
		WHERE organization_id = $1 AND trigger_type = $2 AND is_active
		ORDER BY priority DESC, created_at ASC, id ASC
	`

	return r.queryRules(ctx, query, organizationID, string(trigger))
}

func (r *RuleRepository) AllRules(ctx context.Context) ([]*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM automation_rules
		ORDER BY created_at ASC
	`

	return r.queryRules(ctx, query)
}

func (r *RuleRepository) queryRules(ctx context.Context, query string, args ...any) ([]*models.Rule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	rules := make([]*models.Rule, 0)

	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}

		rules = append(rules, rule)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

func (r *RuleRepository) RuleByID(ctx context.Context, id string) (*models.Rule, error) {
	query := `
		SELECT ` + ruleColumns + `
		FROM automation_rules
		WHERE id = $1
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewRuleError("RuleByID", id, persistence.ErrRuleNotFound)
		}

		return nil, fmt.Errorf("failed to scan rule: %w", err)
	}

	return rule, nil
}

// SaveRule inserts the rule or updates it in place by ID.
func (r *RuleRepository) SaveRule(ctx context.Context, rule *models.Rule) error {
	now := time.Now().UTC()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = now
	}

	rule.UpdatedAt = now

	conditionsJSON, err := json.Marshal(rule.Conditions)
	if err != nil {
		return fmt.Errorf("failed to marshal conditions: %w", err)
	}

	actionsJSON, err := json.Marshal(rule.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
		INSERT INTO automation_rules (
			id, organization_id, project_id, name, description, trigger_type,
			trigger_conditions, actions, priority, is_active, execution_count,
			last_executed, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			organization_id = EXCLUDED.organization_id,
			project_id = EXCLUDED.project_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			trigger_type = EXCLUDED.trigger_type,
			trigger_conditions = EXCLUDED.trigger_conditions,
			actions = EXCLUDED.actions,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID,
		rule.OrganizationID,
		rule.ProjectID,
		rule.Name,
		rule.Description,
		string(rule.TriggerType),
		conditionsJSON,
		actionsJSON,
		rule.Priority,
		rule.IsActive,
		rule.ExecutionCount,
		rule.LastExecuted,
		rule.CreatedBy,
		rule.CreatedAt,
		rule.UpdatedAt,
	)
	if err != nil {
		return persistence.NewRuleError("SaveRule", rule.ID, err)
	}

	return nil
}

// IncrementExecution bumps the counter with a single UPDATE so concurrent
// dispatches never lose updates to a read-modify-write race.
func (r *RuleRepository) IncrementExecution(ctx context.Context, ruleID string, at time.Time) error {
	query := `
		UPDATE automation_rules
		SET execution_count = execution_count + 1,
			last_executed = $2,
			updated_at = $2
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, ruleID, at.UTC())
	if err != nil {
		return persistence.NewRuleError("IncrementExecution", ruleID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewRuleError("IncrementExecution", ruleID, err)
	}

	if affected == 0 {
		return persistence.NewRuleError("IncrementExecution", ruleID, persistence.ErrRuleNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.Rule, error) {
	var (
		rule           models.Rule
		triggerType    string
		conditionsJSON []byte
		actionsJSON    []byte
		lastExecuted   sql.NullTime
	)

	err := row.Scan(
		&rule.ID,
		&rule.OrganizationID,
		&rule.ProjectID,
		&rule.Name,
		&rule.Description,
		&triggerType,
		&conditionsJSON,
		&actionsJSON,
		&rule.Priority,
		&rule.IsActive,
		&rule.ExecutionCount,
		&lastExecuted,
		&rule.CreatedBy,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.TriggerType = models.TriggerType(triggerType)

	if err := json.Unmarshal(conditionsJSON, &rule.Conditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conditions: %w", err)
	}

	if err := json.Unmarshal(actionsJSON, &rule.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}

	if lastExecuted.Valid {
		executed := lastExecuted.Time
		rule.LastExecuted = &executed
	}

	return &rule, nil
}
