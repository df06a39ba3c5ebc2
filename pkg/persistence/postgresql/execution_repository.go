package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// ExecutionRepository handles execution audit record database operations.
type ExecutionRepository struct {
	db     dbtx
	logger *slog.Logger
}

func NewExecutionRepository(db dbtx, logger *slog.Logger) *ExecutionRepository {
	return &ExecutionRepository{db: db, logger: logger}
}

// SaveExecution inserts the record or updates it in place by ID. The executor
// calls it twice per run: once for the running record, once finalized.
func (r *ExecutionRepository) SaveExecution(ctx context.Context, execution *models.Execution) error {
	triggerDataJSON, err := json.Marshal(execution.TriggerData)
	if err != nil {
		return fmt.Errorf("failed to marshal trigger data: %w", err)
	}

	actionsJSON, err := json.Marshal(execution.ActionsPerformed)
	if err != nil {
		return fmt.Errorf("failed to marshal actions performed: %w", err)
	}

	resultsJSON, err := json.Marshal(execution.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal execution results: %w", err)
	}

	query := `
		INSERT INTO rule_executions (
			id, rule_id, trigger_data, execution_status, actions_performed,
			execution_results, error_details, execution_time_ms, started_at, completed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			execution_status = EXCLUDED.execution_status,
			actions_performed = EXCLUDED.actions_performed,
			execution_results = EXCLUDED.execution_results,
			error_details = EXCLUDED.error_details,
			execution_time_ms = EXCLUDED.execution_time_ms,
			completed_at = EXCLUDED.completed_at
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.RuleID,
		triggerDataJSON,
		string(execution.Status),
		actionsJSON,
		resultsJSON,
		execution.ErrorDetails,
		execution.ExecutionTimeMS,
		execution.StartedAt,
		execution.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) ExecutionByID(ctx context.Context, id string) (*models.Execution, error) {
	query := `
		SELECT
			id
		  , rule_id
		  , trigger_data
		  , execution_status
		  , actions_performed
		  , execution_results
		  , error_details
		  , execution_time_ms
		  , started_at
		  , completed_at
		FROM rule_executions
		WHERE id = $1
	`

	var (
		execution       models.Execution
		status          string
		triggerDataJSON []byte
		actionsJSON     []byte
		resultsJSON     []byte
		completedAt     sql.NullTime
	)

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&execution.ID,
		&execution.RuleID,
		&triggerDataJSON,
		&status,
		&actionsJSON,
		&resultsJSON,
		&execution.ErrorDetails,
		&execution.ExecutionTimeMS,
		&execution.StartedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrExecutionNotFound
		}

		return nil, fmt.Errorf("failed to scan execution: %w", err)
	}

	execution.Status = models.ExecutionStatus(status)

	if err := json.Unmarshal(triggerDataJSON, &execution.TriggerData); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trigger data: %w", err)
	}

	if err := json.Unmarshal(actionsJSON, &execution.ActionsPerformed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions performed: %w", err)
	}

	if err := json.Unmarshal(resultsJSON, &execution.Results); err != nil {
		return nil, fmt.Errorf("failed to unmarshal execution results: %w", err)
	}

	if completedAt.Valid {
		completed := completedAt.Time
		execution.CompletedAt = &completed
	}

	return &execution, nil
}
