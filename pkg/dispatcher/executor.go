package dispatcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/registry"
)

// Executor runs one rule's ordered action list with per-action isolation: a
// failing action is captured as data in the execution record and later
// actions still run.
type Executor struct {
	registry      *registry.Registry
	recorder      *Recorder
	logger        *slog.Logger
	actionTimeout time.Duration
}

type ExecutorOption func(*Executor)

// WithActionTimeout bounds each action's execution; a timeout is recorded as
// that action's error without aborting the remaining actions.
func WithActionTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		e.actionTimeout = d
	}
}

func NewExecutor(reg *registry.Registry, recorder *Recorder, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	executor := &Executor{
		registry: reg,
		recorder: recorder,
		logger:   logger.With("module", "action_executor"),
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Execute runs the rule against the trigger payload and returns its execution
// record. The record finishes as completed whenever the executor got through
// the full action list; business-level failures live inside Results. A
// recorder failure is the only path that marks the record failed and returns
// an error.
func (e *Executor) Execute(ctx context.Context, rule *models.Rule, triggerData map[string]any) (*models.Execution, error) {
	logger := e.logger.With("rule_id", rule.ID, "rule_name", rule.Name)

	execution, err := e.recorder.Begin(ctx, rule, triggerData)
	if err != nil {
		logger.Error("Failed to open execution record", "error", err)

		return nil, err
	}

	logger = logger.With("execution_id", execution.ID)
	logger.Info("Executing rule", "actions", len(rule.Actions))

	trigger := models.TriggerContext{
		OrganizationID: rule.OrganizationID,
		TriggerType:    rule.TriggerType,
		Data:           triggerData,
	}

	for _, spec := range rule.Actions {
		result := e.runAction(ctx, spec, trigger, logger)

		execution.ActionsPerformed = append(execution.ActionsPerformed, spec)
		execution.Results[spec.Type] = result

		if result.Failed() {
			logger.Warn("Action failed", "action_type", spec.Type, "error", result.Error)
		}
	}

	execution.Status = models.ExecutionCompleted

	if err := e.recorder.Finalize(ctx, execution); err != nil {
		execution.Status = models.ExecutionFailed
		execution.ErrorDetails = err.Error()

		logger.Error("Failed to finalize execution record", "error", err)

		return execution, err
	}

	logger.Info("Rule executed", "execution_time_ms", execution.ExecutionTimeMS)

	return execution, nil
}

func (e *Executor) runAction(ctx context.Context, spec models.ActionSpec, trigger models.TriggerContext, logger *slog.Logger) models.ActionResult {
	action, err := e.registry.Create(spec.Type, spec.Parameters)
	if err != nil {
		return models.ActionResult{Error: err.Error()}
	}

	actionCtx := ctx

	if e.actionTimeout > 0 {
		var cancel context.CancelFunc

		actionCtx, cancel = context.WithTimeout(ctx, e.actionTimeout)
		defer cancel()
	}

	output, err := action.Execute(actionCtx, trigger, logger.With("action_type", spec.Type))
	if err != nil {
		return models.ActionResult{Error: err.Error()}
	}

	return models.ActionResult{Output: output}
}
