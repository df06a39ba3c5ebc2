// Package protocol defines the interfaces between the automation engine and
// its pluggable parts: action handlers and the externally-owned domain stores.
package protocol

import (
	"context"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
)

// Action is one executable side effect, created by its factory with the
// rule-configured parameters already bound.
type Action interface {
	Execute(ctx context.Context, trigger models.TriggerContext, logger *slog.Logger) (map[string]any, error)
}

// ActionFactory creates actions of one type. Schema returns the JSON schema
// the registry validates rule parameters against at creation time.
type ActionFactory interface {
	Create(parameters map[string]any) (Action, error)
	ID() string
	Schema() map[string]any
}
