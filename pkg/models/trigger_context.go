package models

// TriggerContext carries the event that matched a rule into its action
// handlers: the owning organization, the trigger type, and the verbatim
// payload snapshot.
type TriggerContext struct {
	OrganizationID string         `json:"organization_id"`
	TriggerType    TriggerType    `json:"trigger_type"`
	Data           map[string]any `json:"trigger_data,omitempty"`
}

// ResolveString returns the string form of key from parameters if present,
// falling back to the same-named key in the trigger data. This lets a rule's
// actions target the entity that triggered the event without the rule author
// repeating IDs. Empty when neither source has the key.
func (tc TriggerContext) ResolveString(parameters map[string]any, key string) string {
	if v, ok := parameters[key]; ok && v != nil {
		if s := Stringify(v); s != "" {
			return s
		}
	}

	if v, ok := tc.Data[key]; ok && v != nil {
		return Stringify(v)
	}

	return ""
}
