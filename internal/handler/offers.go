package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/v2lunch/api/internal/database"
)

// OfferStore defines the database methods needed by the public offers
// endpoint. Satisfied by *database.Queries; narrow interface for
// testability.
type OfferStore interface {
	ListActiveOffers(ctx context.Context, now time.Time) ([]database.Offer, error)
}

// OfferHandler serves the promotional offers shown to customers.
type OfferHandler struct {
	store OfferStore
	now   func() time.Time
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(store OfferStore) *OfferHandler {
	return &OfferHandler{store: store, now: time.Now}
}

// RegisterRoutes registers the offers endpoint.
func (h *OfferHandler) RegisterRoutes(r chi.Router) {
	r.Get("/offers", h.Active)
}

// Active returns enabled offers that have not expired yet.
func (h *OfferHandler) Active(w http.ResponseWriter, r *http.Request) {
	offers, err := h.store.ListActiveOffers(r.Context(), h.now())
	if err != nil {
		log.Printf("ERROR: list offers: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]offerResponse, len(offers))
	for i, o := range offers {
		resp[i] = toOfferResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}
