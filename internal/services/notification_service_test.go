package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"land-backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type recordingPublisher struct {
	mu   sync.Mutex
	sent map[uuid.UUID]int
}

func (p *recordingPublisher) Publish(userID uuid.UUID, _ *models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sent == nil {
		p.sent = make(map[uuid.UUID]int)
	}
	p.sent[userID]++
}

func testMessage() models.NotificationMessage {
	return models.NotificationMessage{
		Title:      "Customer submitted for review",
		Message:    "Customer CUS-000001 is awaiting approval",
		EntityType: models.EntityCustomer,
		EntityID:   uuid.New(),
	}
}

func TestNotifyDeduplicatesRecipients(t *testing.T) {
	store := &fakeNotificationStore{}
	pub := &recordingPublisher{}
	svc := NewNotificationService(store, pub, testLogger())

	a, b := uuid.New(), uuid.New()
	if err := svc.Notify(context.Background(), []uuid.UUID{a, b, a, uuid.Nil}, testMessage()); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if store.total() != 2 || store.countFor(a) != 1 || store.countFor(b) != 1 {
		t.Fatalf("expected one notification per distinct recipient, got %d", store.total())
	}
	if pub.sent[a] != 1 || pub.sent[b] != 1 {
		t.Fatalf("expected one live push per recipient, got %v", pub.sent)
	}
}

func TestNotifyWithoutRecipientsIsNoop(t *testing.T) {
	store := &fakeNotificationStore{err: errBoom}
	svc := NewNotificationService(store, nil, testLogger())

	if err := svc.Notify(context.Background(), nil, testMessage()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNotifyStoreFailure(t *testing.T) {
	store := &fakeNotificationStore{err: errBoom}
	pub := &recordingPublisher{}
	svc := NewNotificationService(store, pub, testLogger())

	err := svc.Notify(context.Background(), []uuid.UUID{uuid.New()}, testMessage())
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected store error, got %v", err)
	}
	if len(pub.sent) != 0 {
		t.Fatal("published notifications that were never stored")
	}
}

func TestListForUserFiltersAndDefaults(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, nil, testLogger())
	ctx := context.Background()
	user, other := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		if err := svc.Notify(ctx, []uuid.UUID{user, other}, testMessage()); err != nil {
			t.Fatal(err)
		}
	}

	empty, err := svc.ListForUser(ctx, uuid.New(), models.NotificationsAll, 0)
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected an empty non-nil list, got %v", empty)
	}

	all, err := svc.ListForUser(ctx, user, models.NotificationsAll, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3, got %d", len(all))
	}

	if err := svc.MarkRead(ctx, all[0].ID, user); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	unread, _ := svc.ListForUser(ctx, user, models.NotificationsUnread, 0)
	read, _ := svc.ListForUser(ctx, user, models.NotificationsRead, 0)
	if len(unread) != 2 || len(read) != 1 {
		t.Fatalf("expected 2 unread and 1 read, got %d and %d", len(unread), len(read))
	}

	limited, _ := svc.ListForUser(ctx, user, models.NotificationsAll, 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestMarkReadOwnershipAndIdempotence(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, nil, testLogger())
	ctx := context.Background()
	owner := uuid.New()

	if err := svc.Notify(ctx, []uuid.UUID{owner}, testMessage()); err != nil {
		t.Fatal(err)
	}
	id := store.items[0].ID

	if err := svc.MarkRead(ctx, id, uuid.New()); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected permission denied for another user, got %v", err)
	}
	if err := svc.MarkRead(ctx, uuid.New(), owner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := svc.MarkRead(ctx, id, owner); err != nil {
			t.Fatalf("mark read attempt %d: %v", i+1, err)
		}
	}
	if n, _ := svc.UnreadCount(ctx, owner); n != 0 {
		t.Fatalf("expected 0 unread, got %d", n)
	}
}

func TestMarkAllRead(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, nil, testLogger())
	ctx := context.Background()
	user := uuid.New()

	for i := 0; i < 4; i++ {
		if err := svc.Notify(ctx, []uuid.UUID{user}, testMessage()); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := svc.UnreadCount(ctx, user); n != 4 {
		t.Fatalf("expected 4 unread, got %d", n)
	}

	changed, err := svc.MarkAllRead(ctx, user)
	if err != nil || changed != 4 {
		t.Fatalf("expected 4 changed, got %d (%v)", changed, err)
	}
	changed, err = svc.MarkAllRead(ctx, user)
	if err != nil || changed != 0 {
		t.Fatalf("expected second call to change nothing, got %d (%v)", changed, err)
	}
}

func TestNotificationHubDeliversToConnectedUser(t *testing.T) {
	hub := NewNotificationHub(testLogger())
	defer hub.Close()
	userID := uuid.New()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(userID, conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sent := &models.Notification{ID: uuid.New(), UserID: userID, Title: "Property approved"}
	hub.Publish(userID, sent)
	hub.Publish(uuid.New(), &models.Notification{ID: uuid.New(), Title: "someone else"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Notification
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != sent.ID || got.Title != sent.Title {
		t.Fatalf("unexpected notification %+v", got)
	}
}
