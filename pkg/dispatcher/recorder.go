package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// Recorder creates and finalizes the audit record for one rule invocation.
// The record is persisted in running state before any action executes, so a
// crash mid-run leaves visible forensic state.
type Recorder struct {
	executions persistence.ExecutionRepository
	logger     *slog.Logger
}

func NewRecorder(executions persistence.ExecutionRepository, logger *slog.Logger) *Recorder {
	return &Recorder{
		executions: executions,
		logger:     logger.With("module", "execution_recorder"),
	}
}

// Begin persists a new execution record in running state.
func (r *Recorder) Begin(ctx context.Context, rule *models.Rule, triggerData map[string]any) (*models.Execution, error) {
	execution := &models.Execution{
		ID:          generateExecutionID(),
		RuleID:      rule.ID,
		TriggerData: triggerData,
		Status:      models.ExecutionRunning,
		Results:     make(map[string]models.ActionResult),
		StartedAt:   time.Now().UTC(),
	}

	if err := r.executions.SaveExecution(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to create execution record for rule %s: %w", rule.ID, err)
	}

	return execution, nil
}

// Finalize stamps completion time and duration and persists the terminal
// record. Timing telemetry is set on every exit path, success or failure.
func (r *Recorder) Finalize(ctx context.Context, execution *models.Execution) error {
	now := time.Now().UTC()
	execution.CompletedAt = &now
	execution.ExecutionTimeMS = now.Sub(execution.StartedAt).Milliseconds()

	if err := r.executions.SaveExecution(ctx, execution); err != nil {
		return fmt.Errorf("failed to finalize execution record %s: %w", execution.ID, err)
	}

	return nil
}

func generateExecutionID() string {
	return "exec-" + uuid.New().String()[:8]
}
