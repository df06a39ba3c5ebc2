package models

import "time"

// ExecutionStatus describes the executor's lifecycle for one rule invocation.
// Completed means the executor ran the full action list; individual action
// failures live in Results, not here.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionFailed    ExecutionStatus = "failed"
)

// ActionResult holds one attempted action's outcome: either the handler's
// structured output or the error that stopped it.
type ActionResult struct {
	Output map[string]any `json:"output,omitempty"`
	Error  string         `json:"error,omitempty"`
}

func (r ActionResult) Failed() bool {
	return r.Error != ""
}

// Execution is the audit record produced each time a rule is matched and run.
// TriggerData is a verbatim snapshot of the payload that caused the match and
// is immutable once set.
type Execution struct {
	ID               string                  `json:"id"`
	RuleID           string                  `json:"rule_id"`
	TriggerData      map[string]any          `json:"trigger_data"`
	Status           ExecutionStatus         `json:"execution_status"`
	ActionsPerformed []ActionSpec            `json:"actions_performed,omitempty"`
	Results          map[string]ActionResult `json:"execution_results,omitempty"`
	ErrorDetails     string                  `json:"error_details,omitempty"`
	ExecutionTimeMS  int64                   `json:"execution_time_ms"`
	StartedAt        time.Time               `json:"started_at"`
	CompletedAt      *time.Time              `json:"completed_at,omitempty"`
}
