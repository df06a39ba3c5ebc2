package models

import "time"

// Card is the narrow view of a kanban card the engine's action handlers need.
// The card's own CRUD and board positioning belong to the card store.
type Card struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProjectID      string     `json:"project_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	AssignedTo     string     `json:"assigned_to,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
}
