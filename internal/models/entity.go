package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EntityType string

const (
	EntityCustomer EntityType = "customer"
	EntityProperty EntityType = "property"
)

func (t EntityType) Valid() bool {
	return t == EntityCustomer || t == EntityProperty
}

// Label is the capitalised name used in notification text
func (t EntityType) Label() string {
	switch t {
	case EntityCustomer:
		return "Customer"
	case EntityProperty:
		return "Property"
	}
	return string(t)
}

type EntityStatus string

const (
	StatusDraft     EntityStatus = "DRAFT"
	StatusSubmitted EntityStatus = "SUBMITTED"
	StatusApproved  EntityStatus = "APPROVED"
	StatusRejected  EntityStatus = "REJECTED"
	StatusArchived  EntityStatus = "ARCHIVED" // properties only
)

// EntityKey addresses a single customer or property
type EntityKey struct {
	Type EntityType `json:"entity_type"`
	ID   uuid.UUID  `json:"entity_id"`
}

func (k EntityKey) String() string {
	return fmt.Sprintf("%s/%s", k.Type, k.ID)
}

// EntityHeader holds the workflow columns shared by customers and properties.
type EntityHeader struct {
	ID                uuid.UUID    `json:"id"`
	Type              EntityType   `json:"entity_type"`
	ReferenceID       string       `json:"reference_id"`
	Status            EntityStatus `json:"status"`
	CreatedBy         uuid.UUID    `json:"created_by"`
	ApprovedBy        *uuid.UUID   `json:"approved_by,omitempty"`
	RejectionFeedback *string      `json:"rejection_feedback,omitempty"`
	SubmittedBy       *uuid.UUID   `json:"submitted_by,omitempty"`
	SubmittedAt       *time.Time   `json:"submitted_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func (h *EntityHeader) Key() EntityKey {
	return EntityKey{Type: h.Type, ID: h.ID}
}

// Clone returns a deep copy so callers can derive the next state without
// touching the loaded one.
func (h *EntityHeader) Clone() *EntityHeader {
	c := *h
	if h.ApprovedBy != nil {
		v := *h.ApprovedBy
		c.ApprovedBy = &v
	}
	if h.RejectionFeedback != nil {
		v := *h.RejectionFeedback
		c.RejectionFeedback = &v
	}
	if h.SubmittedBy != nil {
		v := *h.SubmittedBy
		c.SubmittedBy = &v
	}
	if h.SubmittedAt != nil {
		v := *h.SubmittedAt
		c.SubmittedAt = &v
	}
	return &c
}

// IsEditable reports whether the record content may still be changed by its creator
func (h *EntityHeader) IsEditable() bool {
	return h.Status == StatusDraft || h.Status == StatusRejected
}
