// Package dispatcher orchestrates rule execution for incoming domain events:
// it loads the candidate rules for an organization and trigger type, evaluates
// their conditions in priority order, and runs matching rules through the
// action executor while recording a durable audit trail.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/otelhelper"
	"github.com/flowboard/flowboard/pkg/persistence"
)

// Dispatcher is the engine's sole entry point for domain events.
type Dispatcher struct {
	rules    persistence.RuleRepository
	executor *Executor
	logger   *slog.Logger
	tracer   trace.Tracer
}

type DispatcherOption func(*Dispatcher)

func WithTracer(tracer trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		d.tracer = tracer
	}
}

func NewDispatcher(rules persistence.RuleRepository, executor *Executor, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	dispatcher := &Dispatcher{
		rules:    rules,
		executor: executor,
		logger:   logger.With("module", "trigger_dispatcher"),
	}

	for _, opt := range opts {
		opt(dispatcher)
	}

	return dispatcher
}

// Dispatch evaluates every active rule of the organization for the trigger
// type, in priority order, and returns the execution records produced by the
// rules that matched. Rules are isolated from each other: one rule's failure
// never prevents lower-priority rules from running. Only a rule-load failure
// aborts the whole call.
func (d *Dispatcher) Dispatch(ctx context.Context, organizationID string, triggerType models.TriggerType, payload map[string]any) ([]*models.Execution, error) {
	logger := d.logger.With("organization_id", organizationID, "trigger_type", triggerType)

	if d.tracer != nil {
		var span trace.Span

		ctx, span = otelhelper.StartSpan(ctx, d.tracer, "dispatch",
			attribute.String(otelhelper.OrganizationIDKey, organizationID),
			attribute.String(otelhelper.TriggerTypeKey, string(triggerType)),
		)
		defer span.End()
	}

	rules, err := d.rules.ActiveRulesForTrigger(ctx, organizationID, triggerType)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules for trigger %s: %w", triggerType, err)
	}

	logger.Debug("Loaded candidate rules", "count", len(rules))

	var executions []*models.Execution

	for _, rule := range rules {
		if !rule.Conditions.Evaluate(payload) {
			continue
		}

		execution, err := d.executor.Execute(ctx, rule, payload)
		if err != nil {
			logger.Error("Rule execution failed", "rule_id", rule.ID, "error", err)
		}

		// No execution record means the run never started, so there is
		// nothing to count.
		if execution == nil {
			continue
		}

		executions = append(executions, execution)

		if err := d.rules.IncrementExecution(ctx, rule.ID, time.Now().UTC()); err != nil {
			// Statistics are best-effort bookkeeping; a lost update must not
			// fail the dispatch.
			logger.Warn("Failed to update rule statistics", "rule_id", rule.ID, "error", err)
		}
	}

	logger.Info("Processed trigger", "rules_matched", len(executions))

	return executions, nil
}
