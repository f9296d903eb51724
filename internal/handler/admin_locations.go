package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/v2lunch/api/internal/database"
)

// AdminLocationStore defines the database methods needed by location
// admin. Satisfied by *database.Queries; narrow interface for
// testability.
type AdminLocationStore interface {
	ListLocations(ctx context.Context) ([]database.Location, error)
	GetLocation(ctx context.Context, id uuid.UUID) (database.Location, error)
	GetLocationByName(ctx context.Context, name string) (database.Location, error)
	CreateLocation(ctx context.Context, name string) (database.Location, error)
	SetLocationActive(ctx context.Context, arg database.SetLocationActiveParams) (database.Location, error)
}

// AdminLocationHandler manages the delivery locations offered in the
// wizard.
type AdminLocationHandler struct {
	store AdminLocationStore
}

// NewAdminLocationHandler creates a new AdminLocationHandler.
func NewAdminLocationHandler(store AdminLocationStore) *AdminLocationHandler {
	return &AdminLocationHandler{store: store}
}

// RegisterRoutes registers the location admin endpoints. Mounted under
// /admin/locations.
func (h *AdminLocationHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Post("/{id}/toggle", h.Toggle)
	r.Delete("/{id}", h.Delete)
}

type locationResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type createLocationRequest struct {
	Name string `json:"name"`
}

func toLocationResponse(l database.Location) locationResponse {
	return locationResponse{ID: l.ID, Name: l.Name, IsActive: l.IsActive, CreatedAt: l.CreatedAt}
}

// List returns every location, active and retired.
func (h *AdminLocationHandler) List(w http.ResponseWriter, r *http.Request) {
	locations, err := h.store.ListLocations(r.Context())
	if err != nil {
		log.Printf("ERROR: list locations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]locationResponse, len(locations))
	for i, l := range locations {
		resp[i] = toLocationResponse(l)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a delivery location. Names are unique.
func (h *AdminLocationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if _, err := h.store.GetLocationByName(r.Context(), req.Name); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "location already exists"})
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: get location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	location, err := h.store.CreateLocation(r.Context(), req.Name)
	if err != nil {
		log.Printf("ERROR: create location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toLocationResponse(location))
}

// Toggle flips whether a location shows in the wizard. Retired
// locations stop showing; existing orders keep their location string.
func (h *AdminLocationHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location ID"})
		return
	}

	location, err := h.store.GetLocation(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "location not found"})
			return
		}
		log.Printf("ERROR: get location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	updated, err := h.store.SetLocationActive(r.Context(), database.SetLocationActiveParams{
		ID:       location.ID,
		IsActive: !location.IsActive,
	})
	if err != nil {
		log.Printf("ERROR: toggle location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toLocationResponse(updated))
}

// Delete retires a location. Rows are never removed: historical orders
// reference the location by name and keep doing so.
func (h *AdminLocationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location ID"})
		return
	}

	if _, err := h.store.SetLocationActive(r.Context(), database.SetLocationActiveParams{
		ID:       id,
		IsActive: false,
	}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "location not found"})
			return
		}
		log.Printf("ERROR: retire location: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
