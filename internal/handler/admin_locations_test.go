package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/handler"
	"github.com/v2lunch/api/internal/middleware"
)

// --- Mock AdminLocationStore ---

type mockAdminLocationStore struct {
	listLocationsFn     func(ctx context.Context) ([]database.Location, error)
	getLocationFn       func(ctx context.Context, id uuid.UUID) (database.Location, error)
	getLocationByNameFn func(ctx context.Context, name string) (database.Location, error)
	createLocationFn    func(ctx context.Context, name string) (database.Location, error)
	setLocationActiveFn func(ctx context.Context, arg database.SetLocationActiveParams) (database.Location, error)
}

func (m *mockAdminLocationStore) ListLocations(ctx context.Context) ([]database.Location, error) {
	if m.listLocationsFn != nil {
		return m.listLocationsFn(ctx)
	}
	return nil, nil
}

func (m *mockAdminLocationStore) GetLocation(ctx context.Context, id uuid.UUID) (database.Location, error) {
	if m.getLocationFn != nil {
		return m.getLocationFn(ctx, id)
	}
	return database.Location{}, pgx.ErrNoRows
}

func (m *mockAdminLocationStore) GetLocationByName(ctx context.Context, name string) (database.Location, error) {
	if m.getLocationByNameFn != nil {
		return m.getLocationByNameFn(ctx, name)
	}
	return database.Location{}, pgx.ErrNoRows
}

func (m *mockAdminLocationStore) CreateLocation(ctx context.Context, name string) (database.Location, error) {
	if m.createLocationFn != nil {
		return m.createLocationFn(ctx, name)
	}
	return database.Location{ID: uuid.New(), Name: name, IsActive: true, CreatedAt: time.Now()}, nil
}

func (m *mockAdminLocationStore) SetLocationActive(ctx context.Context, arg database.SetLocationActiveParams) (database.Location, error) {
	if m.setLocationActiveFn != nil {
		return m.setLocationActiveFn(ctx, arg)
	}
	return database.Location{ID: arg.ID, Name: "Main Building", IsActive: arg.IsActive}, nil
}

func setupAdminLocationRouter(store *mockAdminLocationStore) chi.Router {
	h := handler.NewAdminLocationHandler(store)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/admin/locations", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		h.RegisterRoutes(r)
	})
	return r
}

// --- Tests ---

func TestAdminLocationDeleteRetires(t *testing.T) {
	id := uuid.New()
	var gotParams []database.SetLocationActiveParams
	store := &mockAdminLocationStore{
		setLocationActiveFn: func(ctx context.Context, arg database.SetLocationActiveParams) (database.Location, error) {
			gotParams = append(gotParams, arg)
			return database.Location{ID: arg.ID, Name: "North Campus", IsActive: arg.IsActive}, nil
		},
	}
	router := setupAdminLocationRouter(store)

	rr := doAdminRequest(t, router, "DELETE", "/admin/locations/"+id.String(), nil, true)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}

	// The row stays; only the active flag drops so historical orders
	// keep their location name.
	if len(gotParams) != 1 {
		t.Fatalf("expected 1 update, got %d", len(gotParams))
	}
	if gotParams[0].ID != id {
		t.Errorf("updated ID: got %s, want %s", gotParams[0].ID, id)
	}
	if gotParams[0].IsActive {
		t.Error("expected location to be retired, got active")
	}
}

func TestAdminLocationDeleteNotFound(t *testing.T) {
	store := &mockAdminLocationStore{
		setLocationActiveFn: func(ctx context.Context, arg database.SetLocationActiveParams) (database.Location, error) {
			return database.Location{}, pgx.ErrNoRows
		},
	}
	router := setupAdminLocationRouter(store)

	rr := doAdminRequest(t, router, "DELETE", "/admin/locations/"+uuid.New().String(), nil, true)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestAdminLocationToggleFlips(t *testing.T) {
	id := uuid.New()
	store := &mockAdminLocationStore{
		getLocationFn: func(ctx context.Context, got uuid.UUID) (database.Location, error) {
			if got != id {
				t.Errorf("get location ID: got %s, want %s", got, id)
			}
			return database.Location{ID: id, Name: "Main Building", IsActive: true}, nil
		},
		setLocationActiveFn: func(ctx context.Context, arg database.SetLocationActiveParams) (database.Location, error) {
			if arg.IsActive {
				t.Error("expected toggle to deactivate an active location")
			}
			return database.Location{ID: arg.ID, Name: "Main Building", IsActive: arg.IsActive}, nil
		},
	}
	router := setupAdminLocationRouter(store)

	rr := doAdminRequest(t, router, "POST", "/admin/locations/"+id.String()+"/toggle", nil, true)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["is_active"].(bool) {
		t.Error("expected is_active false in response")
	}
}

func TestAdminLocationToggleNotFound(t *testing.T) {
	store := &mockAdminLocationStore{}
	router := setupAdminLocationRouter(store)

	rr := doAdminRequest(t, router, "POST", "/admin/locations/"+uuid.New().String()+"/toggle", nil, true)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}
