package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"land-backend/internal/middleware"
	"land-backend/internal/models"
	"land-backend/internal/repositories"
	"land-backend/internal/services"
	"land-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestWriteServiceErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{services.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{services.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{services.ErrValidation, http.StatusBadRequest, "validation"},
		{services.ErrConflict, http.StatusConflict, "conflict"},
		{services.ErrNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("wrapped: %w", services.ErrNotFound), http.StatusNotFound, "not_found"},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, ""},
		{services.ErrStorageDisabled, http.StatusServiceUnavailable, ""},
		{errors.New("connection reset"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		writeServiceError(rec, quietLogger(), tc.err)

		if rec.Code != tc.code {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.code, rec.Code)
			continue
		}
		var body utils.ErrorBody
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("%v: decode: %v", tc.err, err)
		}
		if body.Kind != tc.kind {
			t.Errorf("%v: expected kind %q, got %q", tc.err, tc.kind, body.Kind)
		}
	}
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, quietLogger(), errors.New("pq: password authentication failed"))
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("internal detail leaked: %s", rec.Body.String())
	}
}

// memEntities is a minimal EntityStore for routing tests
type memEntities map[models.EntityKey]*models.EntityHeader

func (m memEntities) GetHeader(_ context.Context, key models.EntityKey) (*models.EntityHeader, error) {
	h, ok := m[key]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return h.Clone(), nil
}

func (m memEntities) UpdateWorkflowState(_ context.Context, loaded, next *models.EntityHeader) error {
	cur, ok := m[next.Key()]
	if !ok || cur.Status != loaded.Status {
		return repositories.ErrStaleStatus
	}
	m[next.Key()] = next.Clone()
	return nil
}

func (m memEntities) Delete(_ context.Context, loaded *models.EntityHeader) ([]string, error) {
	delete(m, loaded.Key())
	return nil, nil
}

type noUsers struct{}

func (noUsers) ListActiveByRoles(context.Context, ...models.Role) ([]uuid.UUID, error) {
	return nil, nil
}

func (noUsers) NamesByIDs(context.Context, []uuid.UUID) (map[uuid.UUID]string, error) {
	return map[uuid.UUID]string{}, nil
}

type memActivity []*models.ActivityLogEntry

func (m *memActivity) Append(_ context.Context, e *models.ActivityLogEntry) error {
	*m = append(*m, e)
	return nil
}

func (m *memActivity) ListForEntity(_ context.Context, key models.EntityKey) ([]*models.ActivityLogEntry, error) {
	var out []*models.ActivityLogEntry
	for _, e := range *m {
		if e.EntityID == key.ID {
			out = append(out, e)
		}
	}
	return out, nil
}

type directTx struct{}

func (directTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, []uuid.UUID, models.NotificationMessage) error {
	return nil
}

// storeRecords builds full records from the headers in a memEntities
type storeRecords struct {
	store memEntities
}

func (s storeRecords) Get(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	h, ok := s.store[models.EntityKey{Type: models.EntityCustomer, ID: id}]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &models.Customer{
		EntityHeader: *h.Clone(),
		CustomerType: models.CustomerPerson,
		Detail:       models.PersonDetail{FirstName: "Ada", LastName: "Obi"},
	}, nil
}

func newWorkflowRouter(store memEntities) *mux.Router {
	svc := services.NewWorkflowService(store, noUsers{}, &memActivity{}, directTx{}, nopNotifier{}, nil, quietLogger())
	h := NewWorkflowHandler(svc, storeRecords{store}, nil, quietLogger())

	r := mux.NewRouter()
	r.HandleFunc("/api/customers/{id}/approve", h.Approve(models.EntityCustomer)).Methods("POST")
	r.HandleFunc("/api/customers/{id}/reject", h.Reject(models.EntityCustomer)).Methods("POST")
	r.HandleFunc("/api/customers/{id}/activity", h.History(models.EntityCustomer)).Methods("GET")
	r.HandleFunc("/api/properties/{id}/archive", h.Archive(models.EntityProperty)).Methods("POST")
	return r
}

func asUser(r *http.Request, role models.Role) *http.Request {
	user := &models.User{ID: uuid.New(), Name: "Test", Role: role, IsActive: true}
	return r.WithContext(middleware.WithUser(r.Context(), user))
}

func TestWorkflowRoutes(t *testing.T) {
	creator := uuid.New()
	submitted := &models.EntityHeader{ID: uuid.New(), Type: models.EntityCustomer, Status: models.StatusSubmitted, CreatedBy: creator}
	draft := &models.EntityHeader{ID: uuid.New(), Type: models.EntityCustomer, Status: models.StatusDraft, CreatedBy: creator}
	store := memEntities{submitted.Key(): submitted, draft.Key(): draft}
	router := newWorkflowRouter(store)

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		role   models.Role
		code   int
	}{
		{"bad id", "POST", "/api/customers/not-a-uuid/approve", "", models.RoleApprover, http.StatusBadRequest},
		{"unknown id", "POST", "/api/customers/" + uuid.NewString() + "/approve", "", models.RoleApprover, http.StatusNotFound},
		{"viewer approve", "POST", "/api/customers/" + submitted.ID.String() + "/approve", "", models.RoleViewer, http.StatusForbidden},
		{"approve draft", "POST", "/api/customers/" + draft.ID.String() + "/approve", "", models.RoleApprover, http.StatusConflict},
		{"reject without body", "POST", "/api/customers/" + submitted.ID.String() + "/reject", "", models.RoleApprover, http.StatusBadRequest},
		{"reject blank feedback", "POST", "/api/customers/" + submitted.ID.String() + "/reject", `{"feedback":"  "}`, models.RoleApprover, http.StatusBadRequest},
		{"reject malformed body", "POST", "/api/customers/" + submitted.ID.String() + "/reject", `{"feedback":`, models.RoleApprover, http.StatusBadRequest},
		{"reject", "POST", "/api/customers/" + submitted.ID.String() + "/reject", `{"feedback":"missing ID"}`, models.RoleApprover, http.StatusOK},
		{"activity", "GET", "/api/customers/" + submitted.ID.String() + "/activity", "", models.RoleViewer, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, asUser(req, tc.role))
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d: %s", tc.code, rec.Code, rec.Body.String())
			}
		})
	}

	if store[submitted.Key()].Status != models.StatusRejected {
		t.Fatalf("expected REJECTED, got %s", store[submitted.Key()].Status)
	}
}

func TestTransitionReturnsFullRecord(t *testing.T) {
	submitted := &models.EntityHeader{ID: uuid.New(), Type: models.EntityCustomer, Status: models.StatusSubmitted, CreatedBy: uuid.New()}
	router := newWorkflowRouter(memEntities{submitted.Key(): submitted})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/customers/"+submitted.ID.String()+"/approve", nil)
	router.ServeHTTP(rec, asUser(req, models.RoleApprover))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Status       models.EntityStatus `json:"status"`
		CustomerType models.CustomerType `json:"customer_type"`
		Detail       models.PersonDetail `json:"detail"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != models.StatusApproved || body.CustomerType != models.CustomerPerson || body.Detail.LastName != "Obi" {
		t.Fatalf("expected approved customer with detail, got %+v", body)
	}
}

func TestWorkflowRouteRequiresActor(t *testing.T) {
	router := newWorkflowRouter(memEntities{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/customers/"+uuid.NewString()+"/approve", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestArchivePropertyRoute(t *testing.T) {
	approved := &models.EntityHeader{ID: uuid.New(), Type: models.EntityProperty, Status: models.StatusApproved}
	router := newWorkflowRouter(memEntities{approved.Key(): approved})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/properties/"+approved.ID.String()+"/archive", nil)
	router.ServeHTTP(rec, asUser(req, models.RoleAdministrator))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body models.EntityHeader
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != models.StatusArchived {
		t.Fatalf("expected ARCHIVED, got %s", body.Status)
	}
}
