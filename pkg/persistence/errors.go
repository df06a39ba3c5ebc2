// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrRuleNotFound indicates a rule was not found by the given identifier.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrExecutionNotFound indicates an execution record was not found.
	ErrExecutionNotFound = errors.New("execution not found")

	// ErrCustomFieldNotFound indicates no active custom field matches the
	// given organization and name.
	ErrCustomFieldNotFound = errors.New("custom field not found")

	// ErrFieldValueNotFound indicates no value row exists for the given
	// (field, entity) pair.
	ErrFieldValueNotFound = errors.New("custom field value not found")

	// ErrTemplateNotFound indicates an automation template was not found.
	ErrTemplateNotFound = errors.New("automation template not found")

	// ErrTemplateNotPublic indicates the template exists but is not public.
	ErrTemplateNotPublic = errors.New("automation template is not public")

	// ErrCardNotFound indicates a card was not found by the given identifier.
	ErrCardNotFound = errors.New("card not found")

	// ErrProjectNotFound indicates a project was not found in the organization.
	ErrProjectNotFound = errors.New("project not found")
)

// RuleError wraps rule-related storage errors with operation context.
type RuleError struct {
	Op     string // Operation being performed (e.g., "Save", "IncrementExecution")
	RuleID string
	Err    error
}

func (e *RuleError) Error() string {
	return fmt.Sprintf("%s operation failed for rule %s: %v", e.Op, e.RuleID, e.Err)
}

func (e *RuleError) Unwrap() error {
	return e.Err
}

func (e *RuleError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewRuleError creates a rule error with context.
func NewRuleError(op, ruleID string, err error) *RuleError {
	return &RuleError{Op: op, RuleID: ruleID, Err: err}
}

// IsRuleNotFound checks if an error indicates a rule was not found.
func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
