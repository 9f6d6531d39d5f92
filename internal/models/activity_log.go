package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity action types
const (
	ActionCreated    = "CREATED"
	ActionUpdated    = "UPDATED"
	ActionSubmitted  = "SUBMITTED"
	ActionApproved   = "APPROVED"
	ActionRejected   = "REJECTED"
	ActionArchived   = "ARCHIVED"
	ActionUnarchived = "UNARCHIVED"
	ActionDeleted    = "DELETED"
)

// ActivityLogEntry is an append-only audit record of a workflow transition
type ActivityLogEntry struct {
	ID          uuid.UUID      `json:"id"`
	EntityType  EntityType     `json:"entity_type"`
	EntityID    uuid.UUID      `json:"entity_id"`
	Action      string         `json:"action"`
	FromStatus  EntityStatus   `json:"from_status,omitempty"`
	ToStatus    EntityStatus   `json:"to_status,omitempty"`
	PerformedBy uuid.UUID      `json:"performed_by"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`

	PerformedByName string `json:"performed_by_name,omitempty"`
}
