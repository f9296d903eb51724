package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/middleware"
)

// AnnouncementStore defines the database methods needed by the
// customer announcement endpoints. Satisfied by *database.Queries;
// narrow interface for testability.
type AnnouncementStore interface {
	GetLatestActiveAnnouncementForUser(ctx context.Context, userID uuid.UUID) (database.Announcement, error)
	DismissAnnouncement(ctx context.Context, arg database.DismissAnnouncementParams) error
}

// AnnouncementHandler serves the site banner.
type AnnouncementHandler struct {
	store AnnouncementStore
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(store AnnouncementStore) *AnnouncementHandler {
	return &AnnouncementHandler{store: store}
}

// RegisterRoutes registers the announcement endpoints (authenticated).
func (h *AnnouncementHandler) RegisterRoutes(r chi.Router) {
	r.Get("/announcement", h.Active)
	r.Post("/dismiss_announcement", h.Dismiss)
}

type announcementResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Style     string    `json:"style"`
	CreatedAt time.Time `json:"created_at"`
}

type dismissRequest struct {
	ID string `json:"id"`
}

// Active returns the newest banner the user has not dismissed, or 204
// when there is nothing to show.
func (h *AnnouncementHandler) Active(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	a, err := h.store.GetLatestActiveAnnouncementForUser(r.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Printf("ERROR: get active announcement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, announcementResponse{
		ID:        a.ID,
		Title:     a.Title,
		Message:   a.Message,
		Style:     a.Style,
		CreatedAt: a.CreatedAt,
	})
}

// Dismiss hides a banner for this user permanently.
func (h *AnnouncementHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid announcement ID"})
		return
	}

	if err := h.store.DismissAnnouncement(r.Context(), database.DismissAnnouncementParams{
		UserID:         claims.UserID,
		AnnouncementID: id,
	}); err != nil {
		log.Printf("ERROR: dismiss announcement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
