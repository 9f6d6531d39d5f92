package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ReviewQueueItem is a read-only projection of a SUBMITTED entity
type ReviewQueueItem struct {
	ID              uuid.UUID  `json:"id"`
	EntityType      EntityType `json:"entity_type"`
	ReferenceID     string     `json:"reference_id"`
	DisplayName     *string    `json:"display_name"`
	CategoryLabel   string     `json:"category_label"`
	SubmittedBy     uuid.UUID  `json:"submitted_by"`
	SubmittedByName string     `json:"submitted_by_name"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	DaysPending     int        `json:"days_pending"`
}

type QueueView string

const (
	QueueAll        QueueView = "all"
	QueueCustomers  QueueView = "customers"
	QueueProperties QueueView = "properties"
	QueueOverdue    QueueView = "overdue"
)

func ParseQueueView(s string) (QueueView, error) {
	switch QueueView(s) {
	case "", QueueAll:
		return QueueAll, nil
	case QueueCustomers, QueueProperties, QueueOverdue:
		return QueueView(s), nil
	}
	return "", fmt.Errorf("unknown queue view %q", s)
}

// QueueSummary holds badge counts per view
type QueueSummary struct {
	All           int `json:"all"`
	Customers     int `json:"customers"`
	Properties    int `json:"properties"`
	Overdue       int `json:"overdue"`
	OverdueAfter  int `json:"overdue_after_days"`
	OldestPending int `json:"oldest_days_pending"`
}
