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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/service"
)

// AdminSettingsStore defines the database methods needed by billing
// and offer admin. Satisfied by *database.Queries; narrow interface
// for testability.
type AdminSettingsStore interface {
	GetBillingSettings(ctx context.Context) (database.BillingSettings, error)
	UpsertBillingSettings(ctx context.Context, arg database.UpsertBillingSettingsParams) (database.BillingSettings, error)
	ListOffers(ctx context.Context) ([]database.Offer, error)
	CreateOffer(ctx context.Context, arg database.CreateOfferParams) (database.Offer, error)
	DeleteOffer(ctx context.Context, id uuid.UUID) error
}

// AdminSettingsHandler manages billing settings and promotional offers.
type AdminSettingsHandler struct {
	store AdminSettingsStore
}

// NewAdminSettingsHandler creates a new AdminSettingsHandler.
func NewAdminSettingsHandler(store AdminSettingsStore) *AdminSettingsHandler {
	return &AdminSettingsHandler{store: store}
}

// RegisterRoutes registers the settings endpoints. Mounted under
// /admin.
func (h *AdminSettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/bill-settings", h.GetBilling)
	r.Put("/bill-settings", h.UpdateBilling)
	r.Get("/offers", h.ListOffers)
	r.Post("/offers", h.CreateOffer)
	r.Delete("/offers/{id}", h.DeleteOffer)
}

type billingResponse struct {
	DeliveryFee string `json:"delivery_fee"`
	TaxRate     string `json:"tax_rate"`
	Packaging   string `json:"packaging"`
	Service     string `json:"service"`
}

type billingRequest struct {
	DeliveryFee string `json:"delivery_fee"`
	TaxRate     string `json:"tax_rate"`
	Packaging   string `json:"packaging"`
	Service     string `json:"service"`
}

// GetBilling returns the current charges, falling back to defaults
// when nothing is stored yet.
func (h *AdminSettingsHandler) GetBilling(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.GetBillingSettings(r.Context())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			b := service.DefaultBilling()
			writeJSON(w, http.StatusOK, billingResponse{
				DeliveryFee: b.DeliveryFee.StringFixed(2),
				TaxRate:     b.TaxRate.String(),
				Packaging:   b.Packaging.StringFixed(2),
				Service:     b.Service.StringFixed(2),
			})
			return
		}
		log.Printf("ERROR: get billing settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, billingResponse{
		DeliveryFee: numericToString(settings.DeliveryFee),
		TaxRate:     numericToDecimalAmount(settings.TaxRate).String(),
		Packaging:   numericToString(settings.Packaging),
		Service:     numericToString(settings.Service),
	})
}

// UpdateBilling replaces the charges. New orders pick the new values
// up; placed orders keep their stored breakdown.
func (h *AdminSettingsHandler) UpdateBilling(w http.ResponseWriter, r *http.Request) {
	var req billingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	parse := func(field, value string) (pgtype.Numeric, bool) {
		d, err := decimal.NewFromString(value)
		if err != nil || d.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + field})
			return pgtype.Numeric{}, false
		}
		var n pgtype.Numeric
		_ = n.Scan(d.String())
		return n, true
	}

	deliveryFee, ok := parse("delivery_fee", req.DeliveryFee)
	if !ok {
		return
	}
	taxRate, ok := parse("tax_rate", req.TaxRate)
	if !ok {
		return
	}
	packaging, ok := parse("packaging", req.Packaging)
	if !ok {
		return
	}
	serviceCharge, ok := parse("service", req.Service)
	if !ok {
		return
	}

	settings, err := h.store.UpsertBillingSettings(r.Context(), database.UpsertBillingSettingsParams{
		DeliveryFee: deliveryFee,
		TaxRate:     taxRate,
		Packaging:   packaging,
		Service:     serviceCharge,
	})
	if err != nil {
		log.Printf("ERROR: upsert billing settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, billingResponse{
		DeliveryFee: numericToString(settings.DeliveryFee),
		TaxRate:     numericToDecimalAmount(settings.TaxRate).String(),
		Packaging:   numericToString(settings.Packaging),
		Service:     numericToString(settings.Service),
	})
}

type offerResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	Discount   string    `json:"discount"`
	ValidUntil time.Time `json:"valid_until"`
	IsActive   bool      `json:"is_active"`
}

type createOfferRequest struct {
	Name       string `json:"name"`
	Code       string `json:"code"`
	Discount   string `json:"discount"`
	ValidUntil string `json:"valid_until"`
}

func toOfferResponse(o database.Offer) offerResponse {
	return offerResponse{
		ID:         o.ID,
		Name:       o.Name,
		Code:       o.Code,
		Discount:   numericToString(o.Discount),
		ValidUntil: o.ValidUntil,
		IsActive:   o.IsActive,
	}
}

// ListOffers returns all offers, active or not.
func (h *AdminSettingsHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.store.ListOffers(r.Context())
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

// CreateOffer adds a promotional offer.
func (h *AdminSettingsHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	var req createOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name and code are required"})
		return
	}
	discount, err := decimal.NewFromString(req.Discount)
	if err != nil || discount.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid discount"})
		return
	}
	validUntil, err := time.Parse(service.DateFormat, req.ValidUntil)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid valid_until date"})
		return
	}

	var discountNum pgtype.Numeric
	_ = discountNum.Scan(discount.StringFixed(2))

	offer, err := h.store.CreateOffer(r.Context(), database.CreateOfferParams{
		Name:       req.Name,
		Code:       req.Code,
		Discount:   discountNum,
		ValidUntil: validUntil,
	})
	if err != nil {
		log.Printf("ERROR: create offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOfferResponse(offer))
}

// DeleteOffer removes an offer.
func (h *AdminSettingsHandler) DeleteOffer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid offer ID"})
		return
	}

	if err := h.store.DeleteOffer(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "offer not found"})
			return
		}
		log.Printf("ERROR: delete offer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
