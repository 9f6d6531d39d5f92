package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"land-backend/internal/models"
	"land-backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var errBoom = errors.New("boom")

// fakeEntityStore keeps entity headers in memory and honours the status guard
type fakeEntityStore struct {
	mu        sync.Mutex
	entities  map[models.EntityKey]*models.EntityHeader
	photos    map[models.EntityKey][]string
	afterGet  func()
	updateErr error
}

func newFakeEntityStore() *fakeEntityStore {
	return &fakeEntityStore{
		entities: make(map[models.EntityKey]*models.EntityHeader),
		photos:   make(map[models.EntityKey][]string),
	}
}

func (f *fakeEntityStore) put(h *models.EntityHeader) models.EntityKey {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if h.ReferenceID == "" {
		h.ReferenceID = fmt.Sprintf("REF-%s", h.ID.String()[:6])
	}
	f.entities[h.Key()] = h.Clone()
	return h.Key()
}

func (f *fakeEntityStore) get(key models.EntityKey) *models.EntityHeader {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.entities[key]
	if !ok {
		return nil
	}
	return h.Clone()
}

func (f *fakeEntityStore) GetHeader(_ context.Context, key models.EntityKey) (*models.EntityHeader, error) {
	f.mu.Lock()
	h, ok := f.entities[key]
	var c *models.EntityHeader
	if ok {
		c = h.Clone()
	}
	hook := f.afterGet
	f.mu.Unlock()

	if !ok {
		return nil, repositories.ErrNotFound
	}
	if hook != nil {
		hook()
	}
	return c, nil
}

func (f *fakeEntityStore) current(loaded *models.EntityHeader) (*models.EntityHeader, bool) {
	cur, ok := f.entities[loaded.Key()]
	if !ok || cur.Status != loaded.Status || !cur.UpdatedAt.Equal(loaded.UpdatedAt) {
		return nil, false
	}
	return cur, true
}

func (f *fakeEntityStore) UpdateWorkflowState(_ context.Context, loaded, next *models.EntityHeader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.current(loaded); !ok {
		return repositories.ErrStaleStatus
	}
	next.UpdatedAt = time.Now()
	f.entities[next.Key()] = next.Clone()
	return nil
}

func (f *fakeEntityStore) Delete(_ context.Context, loaded *models.EntityHeader) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.current(loaded); !ok {
		return nil, repositories.ErrStaleStatus
	}
	key := loaded.Key()
	keys := f.photos[key]
	delete(f.entities, key)
	delete(f.photos, key)
	return keys, nil
}

func (f *fakeEntityStore) photoRows(key models.EntityKey) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.photos[key]...)
}

type entitySnapshot struct {
	entities map[models.EntityKey]*models.EntityHeader
	photos   map[models.EntityKey][]string
}

func (f *fakeEntityStore) snapshot() entitySnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := entitySnapshot{
		entities: make(map[models.EntityKey]*models.EntityHeader, len(f.entities)),
		photos:   make(map[models.EntityKey][]string, len(f.photos)),
	}
	for k, v := range f.entities {
		s.entities[k] = v.Clone()
	}
	for k, v := range f.photos {
		s.photos[k] = append([]string(nil), v...)
	}
	return s
}

func (f *fakeEntityStore) restore(s entitySnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entities = s.entities
	f.photos = s.photos
}

// fakeActivity is an in-memory append-only log
type fakeActivity struct {
	mu      sync.Mutex
	entries []*models.ActivityLogEntry
	err     error
}

func (f *fakeActivity) Append(_ context.Context, e *models.ActivityLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	e.ID = uuid.New()
	e.CreatedAt = time.Now()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeActivity) ListForEntity(_ context.Context, key models.EntityKey) ([]*models.ActivityLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ActivityLogEntry
	for _, e := range f.entries {
		if e.EntityType == key.Type && e.EntityID == key.ID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeActivity) forEntity(key models.EntityKey, action string) int {
	entries, _ := f.ListForEntity(context.Background(), key)
	n := 0
	for _, e := range entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

func (f *fakeActivity) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *fakeActivity) truncate(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = f.entries[:n]
}

// fakeTx serializes transactions and undoes store and log writes on error
type fakeTx struct {
	mu       sync.Mutex
	store    *fakeEntityStore
	activity *fakeActivity
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var snap entitySnapshot
	if t.store != nil {
		snap = t.store.snapshot()
	}
	logLen := 0
	if t.activity != nil {
		logLen = t.activity.len()
	}

	if err := fn(ctx); err != nil {
		if t.store != nil {
			t.store.restore(snap)
		}
		if t.activity != nil {
			t.activity.truncate(logLen)
		}
		return err
	}
	return nil
}

type fakeUsers struct {
	roles map[uuid.UUID]models.Role
	names map[uuid.UUID]string
	// inactive users are excluded from role lookups
	inactive map[uuid.UUID]bool
	err      error
	lookups  int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		roles:    make(map[uuid.UUID]models.Role),
		names:    make(map[uuid.UUID]string),
		inactive: make(map[uuid.UUID]bool),
	}
}

func (f *fakeUsers) add(name string, role models.Role, active bool) models.Actor {
	id := uuid.New()
	f.roles[id] = role
	f.names[id] = name
	if !active {
		f.inactive[id] = true
	}
	return models.Actor{UserID: id, Role: role, IsActive: active}
}

func (f *fakeUsers) ListActiveByRoles(_ context.Context, roles ...models.Role) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	var ids []uuid.UUID
	for id, r := range f.roles {
		if f.inactive[id] {
			continue
		}
		for _, want := range roles {
			if r == want {
				ids = append(ids, id)
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (f *fakeUsers) NamesByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.lookups++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID]string)
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

// fakeNotificationStore keeps notifications in insertion order
type fakeNotificationStore struct {
	mu    sync.Mutex
	items []*models.Notification
	err   error
}

func (f *fakeNotificationStore) CreateBatch(_ context.Context, items []*models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, n := range items {
		n.ID = uuid.New()
		n.CreatedAt = time.Now()
		f.items = append(f.items, n)
	}
	return nil
}

func (f *fakeNotificationStore) Get(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			c := *n
			return &c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeNotificationStore) ListForUser(_ context.Context, userID uuid.UUID, filter models.NotificationFilter, limit int) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		n := f.items[i]
		if n.UserID != userID {
			continue
		}
		if filter == models.NotificationsUnread && n.IsRead {
			continue
		}
		if filter == models.NotificationsRead && !n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id && n.UserID == userID && !n.IsRead {
			now := time.Now()
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (f *fakeNotificationStore) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var changed int64
	for _, n := range f.items {
		if n.UserID == userID && !n.IsRead {
			now := time.Now()
			n.IsRead = true
			n.ReadAt = &now
			changed++
		}
	}
	return changed, nil
}

func (f *fakeNotificationStore) CountUnread(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if it.UserID == userID && !it.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotificationStore) countFor(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if it.UserID == userID {
			n++
		}
	}
	return n
}

func (f *fakeNotificationStore) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type failingNotifier struct{ calls int }

func (f *failingNotifier) Notify(context.Context, []uuid.UUID, models.NotificationMessage) error {
	f.calls++
	return errBoom
}

type fakePhotos struct {
	mu      sync.Mutex
	blobs   map[string]int64
	deleted []string
	err     error
}

func newFakePhotos() *fakePhotos {
	return &fakePhotos{blobs: make(map[string]int64)}
}

func (f *fakePhotos) NewKey(propertyID uuid.UUID, filename string) string {
	return "properties/" + propertyID.String() + "/" + uuid.NewString() + "-" + filename
}

func (f *fakePhotos) Put(_ context.Context, key, _ string, body io.Reader, size int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	f.blobs[key] = size
	return nil
}

func (f *fakePhotos) Delete(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, k := range keys {
		delete(f.blobs, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func (f *fakePhotos) URL(key string) string { return "https://cdn.test/" + key }
