package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"land-backend/internal/cache"
	"land-backend/internal/metrics"
	"land-backend/internal/models"
	"land-backend/internal/timeutil"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UnknownUserName is shown when the submitter cannot be resolved
const UnknownUserName = "Unknown user"

// ReviewQueueService builds the merged list of entities awaiting review
type ReviewQueueService struct {
	Customers        SubmittedCustomers
	Properties       SubmittedProperties
	Users            UserDirectory
	Clock            timeutil.Clock
	OverdueAfterDays int
	DefaultLimit     int
	Log              logrus.FieldLogger
}

func NewReviewQueueService(
	customers SubmittedCustomers,
	properties SubmittedProperties,
	users UserDirectory,
	overdueAfterDays, defaultLimit int,
	log logrus.FieldLogger,
) *ReviewQueueService {
	return &ReviewQueueService{
		Customers:        customers,
		Properties:       properties,
		Users:            users,
		Clock:            timeutil.SystemClock{},
		OverdueAfterDays: overdueAfterDays,
		DefaultLimit:     defaultLimit,
		Log:              log,
	}
}

// BuildQueue returns up to limit submitted customers plus up to limit
// submitted properties, oldest submission first. A record with a missing
// detail row still appears, with a nil display name.
func (s *ReviewQueueService) BuildQueue(ctx context.Context, limit int) ([]*models.ReviewQueueItem, error) {
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if limit <= 0 {
		limit = 100
	}

	customers, err := s.Customers.ListSubmitted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitted customers: %w", err)
	}
	properties, err := s.Properties.ListSubmitted(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load submitted properties: %w", err)
	}

	now := s.Clock.Now()
	items := make([]*models.ReviewQueueItem, 0, len(customers)+len(properties))

	for _, c := range customers {
		if c.Status != models.StatusSubmitted {
			continue
		}
		var name string
		if c.Detail != nil {
			name = c.Detail.DisplayName()
		}
		items = append(items, s.project(&c.EntityHeader, name, c.Detail == nil, c.CustomerType.Label(), now))
	}
	for _, p := range properties {
		if p.Status != models.StatusSubmitted {
			continue
		}
		var name string
		if p.Detail != nil {
			name = p.Detail.DisplayName()
		}
		items = append(items, s.project(&p.EntityHeader, name, p.Detail == nil, p.PropertyType.Label(), now))
	}

	s.resolveNames(ctx, items)
	SortQueue(items)

	metrics.ReviewQueueItems.WithLabelValues(string(models.EntityCustomer)).Set(float64(len(customers)))
	metrics.ReviewQueueItems.WithLabelValues(string(models.EntityProperty)).Set(float64(len(properties)))

	return items, nil
}

func (s *ReviewQueueService) project(h *models.EntityHeader, name string, orphan bool, label string, now time.Time) *models.ReviewQueueItem {
	item := &models.ReviewQueueItem{
		ID:            h.ID,
		EntityType:    h.Type,
		ReferenceID:   h.ReferenceID,
		CategoryLabel: label,
		SubmittedBy:   h.CreatedBy,
	}
	if h.SubmittedBy != nil {
		item.SubmittedBy = *h.SubmittedBy
	}

	if orphan || name == "" {
		s.Log.WithFields(logrus.Fields{"entity_type": h.Type, "entity_id": h.ID}).
			Warn("review queue item has no detail record")
	} else {
		item.DisplayName = &name
	}

	if h.SubmittedAt != nil {
		item.SubmittedAt = *h.SubmittedAt
	} else {
		s.Log.WithFields(logrus.Fields{"entity_type": h.Type, "entity_id": h.ID}).
			Warn("submitted record has no submission time, using last update")
		item.SubmittedAt = h.UpdatedAt
	}
	item.DaysPending = timeutil.WholeDaysSince(item.SubmittedAt, now)
	return item
}

// resolveNames fills SubmittedByName from the cache and then the user
// directory. Lookup failures degrade to UnknownUserName.
func (s *ReviewQueueService) resolveNames(ctx context.Context, items []*models.ReviewQueueItem) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, it := range items {
		if !seen[it.SubmittedBy] {
			seen[it.SubmittedBy] = true
			ids = append(ids, it.SubmittedBy)
		}
	}

	names, missing := cache.GetUserNames(ctx, ids)
	if len(missing) > 0 {
		fetched, err := s.Users.NamesByIDs(ctx, missing)
		if err != nil {
			s.Log.WithError(err).Warn("failed to resolve submitter names")
		} else {
			cache.CacheUserNames(ctx, fetched)
			for id, n := range fetched {
				names[id] = n
			}
		}
	}

	for _, it := range items {
		if n, ok := names[it.SubmittedBy]; ok && n != "" {
			it.SubmittedByName = n
		} else {
			it.SubmittedByName = UnknownUserName
		}
	}
}

// View builds the queue and applies one of the named filters
func (s *ReviewQueueService) View(ctx context.Context, view models.QueueView, limit int) ([]*models.ReviewQueueItem, error) {
	items, err := s.BuildQueue(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FilterQueue(items, view, s.OverdueAfterDays), nil
}

// Summary returns the badge counts for every view
func (s *ReviewQueueService) Summary(ctx context.Context, limit int) (*models.QueueSummary, error) {
	items, err := s.BuildQueue(ctx, limit)
	if err != nil {
		return nil, err
	}

	sum := &models.QueueSummary{All: len(items), OverdueAfter: s.OverdueAfterDays}
	for _, it := range items {
		switch it.EntityType {
		case models.EntityCustomer:
			sum.Customers++
		case models.EntityProperty:
			sum.Properties++
		}
		if IsOverdue(it, s.OverdueAfterDays) {
			sum.Overdue++
		}
		if it.DaysPending > sum.OldestPending {
			sum.OldestPending = it.DaysPending
		}
	}
	return sum, nil
}

// SortQueue orders items oldest submission first, ties broken by id
func SortQueue(items []*models.ReviewQueueItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}

// IsOverdue reports whether an item has waited longer than threshold days
func IsOverdue(item *models.ReviewQueueItem, threshold int) bool {
	return item.DaysPending > threshold
}

// FilterQueue applies a view to an already sorted queue
func FilterQueue(items []*models.ReviewQueueItem, view models.QueueView, threshold int) []*models.ReviewQueueItem {
	out := make([]*models.ReviewQueueItem, 0, len(items))
	for _, it := range items {
		switch view {
		case models.QueueCustomers:
			if it.EntityType != models.EntityCustomer {
				continue
			}
		case models.QueueProperties:
			if it.EntityType != models.EntityProperty {
				continue
			}
		case models.QueueOverdue:
			if !IsOverdue(it, threshold) {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}
