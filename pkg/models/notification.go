package models

import "time"

// Notification is an in-app notification handed to the notification sink.
// Delivery transport (email, websocket, push) is the sink's own concern.
type Notification struct {
	ID             string         `json:"id"`
	OrganizationID string         `json:"organization_id"`
	UserID         string         `json:"user_id"`
	Type           string         `json:"notification_type"`
	Title          string         `json:"title"`
	Message        string         `json:"message"`
	Priority       string         `json:"priority"`
	Context        map[string]any `json:"context_data,omitempty"`
	DeliveryMethod string         `json:"delivery_method"`
	CreatedAt      time.Time      `json:"created_at"`
}
