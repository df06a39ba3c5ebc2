// Package updatefield implements the update_field action: resolve a custom
// field definition by name and upsert one typed value for the target entity.
package updatefield

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/protocol"
)

const ActionType = "update_field"

var (
	ErrMissingEntityID  = errors.New("update_field: entity_id is required")
	ErrMissingFieldName = errors.New("update_field: field_name is required")
)

type Factory struct {
	fields protocol.CustomFieldStore
}

func NewFactory(fields protocol.CustomFieldStore) *Factory {
	return &Factory{fields: fields}
}

func (*Factory) ID() string {
	return ActionType
}

func (f *Factory) Create(parameters map[string]any) (protocol.Action, error) {
	if parameters == nil {
		parameters = map[string]any{}
	}

	return &Action{parameters: parameters, fields: f.fields}, nil
}

func (*Factory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"entity_id": map[string]any{
				"type":        "string",
				"description": "Entity the value attaches to. Falls back to the card_id of the triggering event.",
			},
			"field_name": map[string]any{
				"type":        "string",
				"description": "Name of the custom field, resolved within the organization.",
			},
			"field_value": map[string]any{
				"description": "Value to store. Converted according to the field's declared type.",
			},
		},
		"required": []string{"field_name"},
	}
}

type Action struct {
	parameters map[string]any
	fields     protocol.CustomFieldStore
}

func (a *Action) Execute(ctx context.Context, trigger models.TriggerContext, logger *slog.Logger) (map[string]any, error) {
	entityID := trigger.ResolveString(a.parameters, "entity_id")
	if entityID == "" {
		// Rules commonly target the card that fired the event.
		entityID = models.Stringify(trigger.Data["card_id"])
	}

	if entityID == "" {
		return nil, ErrMissingEntityID
	}

	fieldName := models.Stringify(a.parameters["field_name"])
	if fieldName == "" {
		return nil, ErrMissingFieldName
	}

	field, err := a.fields.FieldByName(ctx, trigger.OrganizationID, fieldName)
	if err != nil {
		return nil, fmt.Errorf("custom field %s not found: %w", fieldName, err)
	}

	fieldValue := a.parameters["field_value"]

	value := &models.CustomFieldValue{
		FieldID:  field.ID,
		EntityID: entityID,
	}

	if err := value.SetTypedValue(field.Type, fieldValue); err != nil {
		return nil, fmt.Errorf("invalid value for field %s: %w", fieldName, err)
	}

	if err := a.fields.UpsertValue(ctx, value); err != nil {
		return nil, fmt.Errorf("failed to store value for field %s: %w", fieldName, err)
	}

	logger.Info("Updated custom field", "field_id", field.ID, "entity_id", entityID, "field_name", fieldName)

	return map[string]any{
		"success":     true,
		"entity_id":   entityID,
		"field_name":  fieldName,
		"field_value": fieldValue,
	}, nil
}
