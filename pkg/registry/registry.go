// Package registry resolves action types to their handler factories, once at
// startup, and validates rule action parameters against each factory's schema
// so a bad action type fails when the rule is created rather than when it runs.
package registry

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
)

type Registry struct {
	logger    *slog.Logger
	factories map[string]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger,
		factories: make(map[string]protocol.ActionFactory),
	}
}

func (r *Registry) Register(factory protocol.ActionFactory) {
	r.factories[factory.ID()] = factory
}

// Create builds an action of the given type with the rule-configured
// parameters bound. Unknown types are an error the executor records as that
// action's failure slot.
func (r *Registry) Create(actionType string, parameters map[string]any) (protocol.Action, error) {
	factory, ok := r.factories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type '%s' not registered", actionType)
	}

	return factory.Create(parameters)
}

// ActionTypes returns the registered action types.
func (r *Registry) ActionTypes() []string {
	types := make([]string, 0, len(r.factories))
	for actionType := range r.factories {
		types = append(types, actionType)
	}

	return types
}

// ValidateSpec checks one action spec against its factory's JSON schema.
func (r *Registry) ValidateSpec(spec models.ActionSpec) error {
	factory, ok := r.factories[spec.Type]
	if !ok {
		return fmt.Errorf("action type '%s' not registered", spec.Type)
	}

	parameters := spec.Parameters
	if parameters == nil {
		parameters = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(factory.Schema()),
		gojsonschema.NewGoLoader(parameters),
	)
	if err != nil {
		return fmt.Errorf("failed to validate parameters for action '%s': %w", spec.Type, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, resultError := range result.Errors() {
			details = append(details, resultError.String())
		}

		return fmt.Errorf("invalid parameters for action '%s': %s", spec.Type, strings.Join(details, "; "))
	}

	return nil
}

// ValidateRule checks every action spec of a rule.
func (r *Registry) ValidateRule(rule *models.Rule) error {
	for _, spec := range rule.Actions {
		if err := r.ValidateSpec(spec); err != nil {
			return err
		}
	}

	return nil
}
