package models

import "time"

// TemplateRule is a rule blueprint inside an automation template. Applying a
// template copies it into an organization as a new Rule row; the template is
// never referenced at run time afterward.
type TemplateRule struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	TriggerType TriggerType  `json:"trigger_type"`
	Conditions  ConditionSet `json:"trigger_conditions,omitempty"`
	Actions     []ActionSpec `json:"actions"`
	Priority    int          `json:"priority,omitempty"`
}

// TemplateField is a custom-field blueprint inside an automation template.
type TemplateField struct {
	Name        string     `json:"name"`
	Type        FieldType  `json:"type"`
	EntityType  EntityType `json:"entity_type"`
	Description string     `json:"description,omitempty"`
	Options     []string   `json:"options,omitempty"`
	Required    bool       `json:"required,omitempty"`
}

// TemplateData is the versionless bundle an automation template materializes.
type TemplateData struct {
	Rules        []TemplateRule  `json:"rules,omitempty"`
	CustomFields []TemplateField `json:"custom_fields,omitempty"`
}

// AutomationTemplate is a named, read-only blueprint of rules and custom
// fields that can be applied to an organization.
type AutomationTemplate struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"     validate:"required"`
	Category    string       `json:"category" validate:"required"`
	Description string       `json:"description,omitempty"`
	Data        TemplateData `json:"template_data"`
	UseCases    []string     `json:"use_cases,omitempty"`
	IsPublic    bool         `json:"is_public"`
	IsFeatured  bool         `json:"is_featured"`
	UsageCount  int64        `json:"usage_count"`
	Rating      float64      `json:"rating"`
	CreatedBy   string       `json:"created_by,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
