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

// CustomFieldRepository handles custom field definition and value database
// operations.
type CustomFieldRepository struct {
	db     dbtx
	logger *slog.Logger
}

func NewCustomFieldRepository(db dbtx, logger *slog.Logger) *CustomFieldRepository {
	return &CustomFieldRepository{db: db, logger: logger}
}

// FieldByName resolves an active field definition within an organization.
func (r *CustomFieldRepository) FieldByName(ctx context.Context, organizationID, name string) (*models.CustomField, error) {
	query := `
		SELECT
			id
		  , organization_id
		  , name
		  , field_type
		  , entity_type
		  , description
		  , options
		  , validation_rules
		  , required
		  , searchable
		  , display_order
		  , is_active
		  , created_by
		  , created_at
		  , updated_at
		FROM custom_fields
		WHERE organization_id = $1 AND name = $2 AND is_active
	`

	var (
		field          models.CustomField
		fieldType      string
		entityType     string
		optionsJSON    []byte
		validationJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, organizationID, name).Scan(
		&field.ID,
		&field.OrganizationID,
		&field.Name,
		&fieldType,
		&entityType,
		&field.Description,
		&optionsJSON,
		&validationJSON,
		&field.Required,
		&field.Searchable,
		&field.DisplayOrder,
		&field.IsActive,
		&field.CreatedBy,
		&field.CreatedAt,
		&field.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrCustomFieldNotFound
		}

		return nil, fmt.Errorf("failed to scan custom field: %w", err)
	}

	field.Type = models.FieldType(fieldType)
	field.EntityType = models.EntityType(entityType)

	if err := json.Unmarshal(optionsJSON, &field.Options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}

	if err := json.Unmarshal(validationJSON, &field.ValidationRules); err != nil {
		return nil, fmt.Errorf("failed to unmarshal validation rules: %w", err)
	}

	return &field, nil
}

// SaveField inserts the field definition or updates it in place by ID.
func (r *CustomFieldRepository) SaveField(ctx context.Context, field *models.CustomField) error {
	now := time.Now().UTC()

	if field.ID == "" {
		field.ID = uuid.New().String()
	}

	if field.CreatedAt.IsZero() {
		field.CreatedAt = now
	}

	field.UpdatedAt = now

	optionsJSON, err := json.Marshal(field.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	validationJSON, err := json.Marshal(field.ValidationRules)
	if err != nil {
		return fmt.Errorf("failed to marshal validation rules: %w", err)
	}

	query := `
		INSERT INTO custom_fields (
			id, organization_id, name, field_type, entity_type, description,
			options, validation_rules, required, searchable, display_order,
			is_active, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			field_type = EXCLUDED.field_type,
			entity_type = EXCLUDED.entity_type,
			description = EXCLUDED.description,
			options = EXCLUDED.options,
			validation_rules = EXCLUDED.validation_rules,
			required = EXCLUDED.required,
			searchable = EXCLUDED.searchable,
			display_order = EXCLUDED.display_order,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		field.ID,
		field.OrganizationID,
		field.Name,
		string(field.Type),
		string(field.EntityType),
		field.Description,
		optionsJSON,
		validationJSON,
		field.Required,
		field.Searchable,
		field.DisplayOrder,
		field.IsActive,
		field.CreatedBy,
		field.CreatedAt,
		field.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save custom field %s: %w", field.ID, err)
	}

	return nil
}

// UpsertValue stores a value row, replacing the existing one for the same
// (field, entity) pair. The unique constraint makes the replacement atomic.
func (r *CustomFieldRepository) UpsertValue(ctx context.Context, value *models.CustomFieldValue) error {
	now := time.Now().UTC()

	if value.ID == "" {
		value.ID = uuid.New().String()
	}

	if value.CreatedAt.IsZero() {
		value.CreatedAt = now
	}

	value.UpdatedAt = now

	var valueJSON []byte
	if value.ValueJSON != nil {
		encoded, err := json.Marshal(value.ValueJSON)
		if err != nil {
			return fmt.Errorf("failed to marshal json value: %w", err)
		}

		valueJSON = encoded
	}

	query := `
		INSERT INTO custom_field_values (
			id, field_id, entity_id, value_text, value_number, value_date,
			value_boolean, value_json, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (field_id, entity_id) DO UPDATE SET
			value_text = EXCLUDED.value_text,
			value_number = EXCLUDED.value_number,
			value_date = EXCLUDED.value_date,
			value_boolean = EXCLUDED.value_boolean,
			value_json = EXCLUDED.value_json,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		value.ID,
		value.FieldID,
		value.EntityID,
		value.ValueText,
		value.ValueNumber,
		value.ValueDate,
		value.ValueBoolean,
		valueJSON,
		value.CreatedAt,
		value.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert value for field %s: %w", value.FieldID, err)
	}

	return nil
}

func (r *CustomFieldRepository) ValueFor(ctx context.Context, fieldID, entityID string) (*models.CustomFieldValue, error) {
	query := `
		SELECT
			id
		  , field_id
		  , entity_id
		  , value_text
		  , value_number
		  , value_date
		  , value_boolean
		  , value_json
		  , created_at
		  , updated_at
		FROM custom_field_values
		WHERE field_id = $1 AND entity_id = $2
	`

	var (
		value     models.CustomFieldValue
		valueJSON []byte
	)

	err := r.db.QueryRowContext(ctx, query, fieldID, entityID).Scan(
		&value.ID,
		&value.FieldID,
		&value.EntityID,
		&value.ValueText,
		&value.ValueNumber,
		&value.ValueDate,
		&value.ValueBoolean,
		&valueJSON,
		&value.CreatedAt,
		&value.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.ErrFieldValueNotFound
		}

		return nil, fmt.Errorf("failed to scan custom field value: %w", err)
	}

	if valueJSON != nil {
		if err := json.Unmarshal(valueJSON, &value.ValueJSON); err != nil {
			return nil, fmt.Errorf("failed to unmarshal json value: %w", err)
		}
	}

	return &value, nil
}
