package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldType is the declared value type of a custom field.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multi_select"
)

// EntityType names the kind of domain entity a custom field attaches to.
type EntityType string

const (
	EntityTypeCard    EntityType = "card"
	EntityTypeProject EntityType = "project"
	EntityTypeUser    EntityType = "user"
)

// CustomField is an organization-defined typed attribute attachable to a
// domain entity.
type CustomField struct {
	ID              string         `json:"id"`
	OrganizationID  string         `json:"organization_id" validate:"required"`
	Name            string         `json:"name"            validate:"required"`
	Type            FieldType      `json:"type"            validate:"required"`
	EntityType      EntityType     `json:"entity_type"     validate:"required"`
	Description     string         `json:"description,omitempty"`
	Options         []string       `json:"options,omitempty"`
	ValidationRules map[string]any `json:"validation_rules,omitempty"`
	Required        bool           `json:"required"`
	Searchable      bool           `json:"searchable"`
	DisplayOrder    int            `json:"display_order"`
	IsActive        bool           `json:"is_active"`
	CreatedBy       string         `json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// CustomFieldValue binds a field to one entity and stores exactly one typed
// slot, chosen by the field's declared type. At most one value row exists per
// (field, entity) pair.
type CustomFieldValue struct {
	ID           string         `json:"id"`
	FieldID      string         `json:"field_id"`
	EntityID     string         `json:"entity_id"`
	ValueText    *string        `json:"value_text,omitempty"`
	ValueNumber  *float64       `json:"value_number,omitempty"`
	ValueDate    *time.Time     `json:"value_date,omitempty"`
	ValueBoolean *bool          `json:"value_boolean,omitempty"`
	ValueJSON    map[string]any `json:"value_json,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// SetTypedValue clears every slot and stores value in the one matching the
// field type. Select and multi-select values land in the JSON slot.
func (v *CustomFieldValue) SetTypedValue(fieldType FieldType, value any) error {
	v.ValueText = nil
	v.ValueNumber = nil
	v.ValueDate = nil
	v.ValueBoolean = nil
	v.ValueJSON = nil

	switch fieldType {
	case FieldTypeText:
		text := Stringify(value)
		v.ValueText = &text
	case FieldTypeNumber:
		number, ok := toFloat(value)
		if !ok {
			parsed, err := strconv.ParseFloat(Stringify(value), 64)
			if err != nil {
				return fmt.Errorf("value %v is not numeric: %w", value, err)
			}

			number = parsed
		}

		v.ValueNumber = &number
	case FieldTypeDate:
		date, err := parseDateValue(value)
		if err != nil {
			return err
		}

		v.ValueDate = &date
	case FieldTypeBoolean:
		truthy := toBool(value)
		v.ValueBoolean = &truthy
	default:
		if structured, ok := value.(map[string]any); ok {
			v.ValueJSON = structured
		} else {
			v.ValueJSON = map[string]any{"value": value}
		}
	}

	return nil
}

func parseDateValue(value any) (time.Time, error) {
	switch d := value.(type) {
	case time.Time:
		return d, nil
	case string:
		normalized := strings.Replace(d, "Z", "+00:00", 1)
		if parsed, err := time.Parse(time.RFC3339, d); err == nil {
			return parsed, nil
		}

		parsed, err := time.Parse("2006-01-02T15:04:05-07:00", normalized)
		if err != nil {
			return time.Time{}, fmt.Errorf("value %q is not a date: %w", d, err)
		}

		return parsed, nil
	default:
		return time.Time{}, fmt.Errorf("value %v is not a date", value)
	}
}

func toBool(value any) bool {
	switch b := value.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)

		return err == nil && parsed
	default:
		number, ok := toFloat(value)

		return ok && number != 0
	}
}
