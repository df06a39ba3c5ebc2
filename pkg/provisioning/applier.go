// Package provisioning materializes automation templates into organizations:
// the template's rule and custom-field blueprints become live rows owned by
// the organization, in a single transaction.
package provisioning

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowboard/flowboard/pkg/models"
	"github.com/flowboard/flowboard/pkg/persistence"
	"github.com/flowboard/flowboard/pkg/registry"
)

// Customizations overrides template items by position. The entry at index i
// is merged field-by-field over the template's item i; indexes past the end
// of the template are ignored.
type Customizations struct {
	Rules        []map[string]any `json:"rules,omitempty"`
	CustomFields []map[string]any `json:"custom_fields,omitempty"`
}

type Applier struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	logger      *slog.Logger
}

type ApplierOption func(*Applier)

// WithRegistry makes Apply validate every materialized rule's action
// parameters before committing.
func WithRegistry(reg *registry.Registry) ApplierOption {
	return func(a *Applier) {
		a.registry = reg
	}
}

func NewApplier(p persistence.Persistence, logger *slog.Logger, opts ...ApplierOption) *Applier {
	applier := &Applier{
		persistence: p,
		logger:      logger.With("module", "provisioning"),
	}

	for _, opt := range opts {
		opt(applier)
	}

	return applier
}

// Apply copies a public template's rules and custom fields into the
// organization. Everything is created inside one transaction: a failure on
// any item leaves the organization untouched.
func (a *Applier) Apply(ctx context.Context, organizationID, templateID, actorID string, customizations *Customizations) error {
	template, err := a.persistence.Templates().PublicTemplateByID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", templateID, err)
	}

	rules, err := materializeRules(template, organizationID, actorID, customizations)
	if err != nil {
		return err
	}

	fields, err := materializeFields(template, organizationID, actorID, customizations)
	if err != nil {
		return err
	}

	if a.registry != nil {
		for _, rule := range rules {
			if err := a.registry.ValidateRule(rule); err != nil {
				return fmt.Errorf("template rule '%s' is invalid: %w", rule.Name, err)
			}
		}
	}

	err = a.persistence.WithinTransaction(ctx, func(ctx context.Context, p persistence.Persistence) error {
		for _, rule := range rules {
			if err := p.Rules().SaveRule(ctx, rule); err != nil {
				return fmt.Errorf("failed to create rule '%s': %w", rule.Name, err)
			}
		}

		for _, field := range fields {
			if err := p.CustomFields().SaveField(ctx, field); err != nil {
				return fmt.Errorf("failed to create custom field '%s': %w", field.Name, err)
			}
		}

		return p.Templates().IncrementUsage(ctx, templateID)
	})
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "Applied automation template",
		"template_id", templateID,
		"organization_id", organizationID,
		"rules", len(rules),
		"custom_fields", len(fields))

	return nil
}

func materializeRules(template *models.AutomationTemplate, organizationID, actorID string, customizations *Customizations) ([]*models.Rule, error) {
	now := time.Now().UTC()
	rules := make([]*models.Rule, 0, len(template.Data.Rules))

	for i, blueprint := range template.Data.Rules {
		merged := blueprint
		if customizations != nil && i < len(customizations.Rules) {
			if err := mergeInto(&merged, customizations.Rules[i]); err != nil {
				return nil, fmt.Errorf("rule customization at index %d is invalid: %w", i, err)
			}
		}

		priority := merged.Priority
		if priority == 0 {
			priority = 1
		}

		rules = append(rules, &models.Rule{
			ID:             uuid.New().String(),
			OrganizationID: organizationID,
			Name:           merged.Name,
			Description:    merged.Description,
			TriggerType:    merged.TriggerType,
			Conditions:     merged.Conditions,
			Actions:        merged.Actions,
			Priority:       priority,
			IsActive:       true,
			CreatedBy:      actorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return rules, nil
}

func materializeFields(template *models.AutomationTemplate, organizationID, actorID string, customizations *Customizations) ([]*models.CustomField, error) {
	now := time.Now().UTC()
	fields := make([]*models.CustomField, 0, len(template.Data.CustomFields))

	for i, blueprint := range template.Data.CustomFields {
		merged := blueprint
		if customizations != nil && i < len(customizations.CustomFields) {
			if err := mergeInto(&merged, customizations.CustomFields[i]); err != nil {
				return nil, fmt.Errorf("custom field customization at index %d is invalid: %w", i, err)
			}
		}

		fields = append(fields, &models.CustomField{
			ID:             uuid.New().String(),
			OrganizationID: organizationID,
			Name:           merged.Name,
			Type:           merged.Type,
			EntityType:     merged.EntityType,
			Description:    merged.Description,
			Options:        merged.Options,
			Required:       merged.Required,
			Searchable:     true,
			IsActive:       true,
			CreatedBy:      actorID,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	return fields, nil
}

// mergeInto overlays override keys onto the blueprint via a JSON round trip,
// so customizations use the same field names as the template JSON itself.
// Each overridden key replaces the blueprint field wholesale: the combined
// document is decoded into a fresh value, never into the blueprint itself,
// whose maps and slices may share storage with the stored template.
func mergeInto[T any](blueprint *T, override map[string]any) error {
	if len(override) == 0 {
		return nil
	}

	base := map[string]any{}

	encoded, err := json.Marshal(blueprint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(encoded, &base); err != nil {
		return err
	}

	for key, value := range override {
		base[key] = value
	}

	combined, err := json.Marshal(base)
	if err != nil {
		return err
	}

	var merged T
	if err := json.Unmarshal(combined, &merged); err != nil {
		return err
	}

	*blueprint = merged

	return nil
}
