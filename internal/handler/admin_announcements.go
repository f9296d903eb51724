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
	"github.com/v2lunch/api/internal/enum"
)

// AdminAnnouncementStore defines the database methods needed by
// announcement admin. Satisfied by *database.Queries; narrow interface
// for testability.
type AdminAnnouncementStore interface {
	ListAnnouncements(ctx context.Context) ([]database.Announcement, error)
	CreateAnnouncement(ctx context.Context, arg database.CreateAnnouncementParams) (database.Announcement, error)
	UpdateAnnouncement(ctx context.Context, arg database.UpdateAnnouncementParams) (database.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
}

// AdminAnnouncementHandler manages the site banners.
type AdminAnnouncementHandler struct {
	store AdminAnnouncementStore
}

// NewAdminAnnouncementHandler creates a new AdminAnnouncementHandler.
func NewAdminAnnouncementHandler(store AdminAnnouncementStore) *AdminAnnouncementHandler {
	return &AdminAnnouncementHandler{store: store}
}

// RegisterRoutes registers the announcement admin endpoints. Mounted
// under /admin/announcements.
func (h *AdminAnnouncementHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type adminAnnouncementResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Style     string    `json:"style"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type announcementRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Style    string `json:"style"`
	IsActive *bool  `json:"is_active"`
}

func toAdminAnnouncementResponse(a database.Announcement) adminAnnouncementResponse {
	return adminAnnouncementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		Style:     a.Style,
		IsActive:  a.IsActive,
		CreatedAt: a.CreatedAt,
	}
}

// List returns all banners, newest first.
func (h *AdminAnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.store.ListAnnouncements(r.Context())
	if err != nil {
		log.Printf("ERROR: list announcements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminAnnouncementResponse, len(announcements))
	for i, a := range announcements {
		resp[i] = toAdminAnnouncementResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create publishes a new banner.
func (h *AdminAnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and message are required"})
		return
	}
	if req.Style == "" {
		req.Style = enum.AnnouncementStyleInfo
	}
	if !enum.IsValidAnnouncementStyle(req.Style) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid style"})
		return
	}

	a, err := h.store.CreateAnnouncement(r.Context(), database.CreateAnnouncementParams{
		Title:   req.Title,
		Message: req.Message,
		Style:   req.Style,
	})
	if err != nil {
		log.Printf("ERROR: create announcement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toAdminAnnouncementResponse(a))
}

// Update edits or toggles a banner.
func (h *AdminAnnouncementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid announcement ID"})
		return
	}

	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and message are required"})
		return
	}
	if req.Style == "" {
		req.Style = enum.AnnouncementStyleInfo
	}
	if !enum.IsValidAnnouncementStyle(req.Style) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid style"})
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	a, err := h.store.UpdateAnnouncement(r.Context(), database.UpdateAnnouncementParams{
		ID:       id,
		Title:    req.Title,
		Message:  req.Message,
		Style:    req.Style,
		IsActive: active,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "announcement not found"})
			return
		}
		log.Printf("ERROR: update announcement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAdminAnnouncementResponse(a))
}

// Delete removes a banner.
func (h *AdminAnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid announcement ID"})
		return
	}

	if err := h.store.DeleteAnnouncement(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "announcement not found"})
			return
		}
		log.Printf("ERROR: delete announcement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
