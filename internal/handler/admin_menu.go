package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/enum"
)

// AdminMenuStore defines the database methods needed by menu admin.
// Satisfied by *database.Queries; narrow interface for testability.
type AdminMenuStore interface {
	ListMenuItems(ctx context.Context, itemType string) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, arg database.DeleteMenuItemParams) error
}

// AdminMenuHandler manages the catalog: main dishes, side dishes and
// other items share one endpoint set keyed by type.
type AdminMenuHandler struct {
	store AdminMenuStore
}

// NewAdminMenuHandler creates a new AdminMenuHandler.
func NewAdminMenuHandler(store AdminMenuStore) *AdminMenuHandler {
	return &AdminMenuHandler{store: store}
}

// RegisterRoutes registers the menu admin endpoints. Mounted under
// /admin/food-items.
func (h *AdminMenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{type}", h.List)
	r.Post("/{type}", h.Create)
	r.Put("/{type}/{id}", h.Update)
	r.Post("/{type}/{id}/toggle", h.ToggleAvailability)
	r.Delete("/{type}/{id}", h.Delete)
}

type adminMenuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description *string   `json:"description"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	IsAvailable bool      `json:"is_available"`
}

func toAdminMenuItemResponse(m database.MenuItem) adminMenuItemResponse {
	resp := adminMenuItemResponse{
		ID:          m.ID,
		Name:        m.Name,
		Price:       numericToString(m.Price),
		Type:        m.ItemType,
		Category:    m.Category.String,
		IsAvailable: m.IsAvailable,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	return resp
}

type menuItemRequest struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description"`
	Category    string `json:"category"`
	IsAvailable *bool  `json:"is_available"`
}

func itemTypeParam(r *http.Request) (string, bool) {
	t := chi.URLParam(r, "type")
	return t, enum.IsValidItemType(t)
}

// List returns all items of a type, including unavailable ones.
func (h *AdminMenuHandler) List(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item type"})
		return
	}

	items, err := h.store.ListMenuItems(r.Context(), itemType)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminMenuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toAdminMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new item to the catalog.
func (h *AdminMenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item type"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}
	if !enum.IsValidMenuCategory(itemType, req.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	desc := pgtype.Text{}
	if req.Description != "" {
		desc = pgtype.Text{String: req.Description, Valid: true}
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	var priceNum pgtype.Numeric
	_ = priceNum.Scan(price.StringFixed(2))

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		ItemType:    itemType,
		Name:        req.Name,
		Price:       priceNum,
		Description: desc,
		Category:    pgtype.Text{String: req.Category, Valid: true},
		IsAvailable: available,
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toAdminMenuItemResponse(item))
}

// Update modifies an existing item.
func (h *AdminMenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item type"})
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid price"})
		return
	}
	if !enum.IsValidMenuCategory(itemType, req.Category) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category"})
		return
	}

	desc := pgtype.Text{}
	if req.Description != "" {
		desc = pgtype.Text{String: req.Description, Valid: true}
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	var priceNum pgtype.Numeric
	_ = priceNum.Scan(price.StringFixed(2))

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		ItemType:    itemType,
		Name:        req.Name,
		Price:       priceNum,
		Description: desc,
		Category:    pgtype.Text{String: req.Category, Valid: true},
		IsAvailable: available,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAdminMenuItemResponse(item))
}

// ToggleAvailability flips whether an item shows in the wizard.
func (h *AdminMenuHandler) ToggleAvailability(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item type"})
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{ID: id, ItemType: itemType})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	updated, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          item.ID,
		ItemType:    item.ItemType,
		Name:        item.Name,
		Price:       item.Price,
		Description: item.Description,
		Category:    item.Category,
		IsAvailable: !item.IsAvailable,
	})
	if err != nil {
		log.Printf("ERROR: toggle menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toAdminMenuItemResponse(updated))
}

// Delete removes an item from the catalog. Existing orders keep their
// own name and price snapshots.
func (h *AdminMenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemType, ok := itemTypeParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item type"})
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if err := h.store.DeleteMenuItem(r.Context(), database.DeleteMenuItemParams{ID: id, ItemType: itemType}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
