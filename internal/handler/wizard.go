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
	"github.com/shopspring/decimal"

	"github.com/v2lunch/api/internal/cart"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/enum"
	"github.com/v2lunch/api/internal/middleware"
	"github.com/v2lunch/api/internal/service"
)

// WizardStore defines the database methods needed by the order wizard.
// Satisfied by *database.Queries; narrow interface for testability.
type WizardStore interface {
	ListAvailableMenuItems(ctx context.Context, itemType string) ([]database.MenuItem, error)
	GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	ListActiveLocations(ctx context.Context) ([]database.Location, error)
	GetBillingSettings(ctx context.Context) (database.BillingSettings, error)
}

// WizardHandler walks the customer through building an order: mains,
// sides, other items, then date, location and time slot.
type WizardHandler struct {
	store  WizardStore
	codec  *cart.Codec
	orders *service.OrderService
	now    func() time.Time
}

// NewWizardHandler creates a new WizardHandler.
func NewWizardHandler(store WizardStore, codec *cart.Codec, orders *service.OrderService) *WizardHandler {
	return &WizardHandler{store: store, codec: codec, orders: orders, now: time.Now}
}

// RegisterRoutes registers the wizard steps. Every step requires a
// signed-in user; mount inside the authenticated group.
func (h *WizardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
	r.Post("/", h.AddMeals)
	r.Post("/add-to-cart", h.AddToCart)
	r.Post("/remove-from-cart", h.RemoveFromCart)
	r.Post("/update-quantity", h.UpdateQuantity)
	r.Get("/side-dishes", h.SideDishes)
	r.Post("/side-dishes", h.AddSideDishes)
	r.Post("/skip-side-dishes", h.SkipSideDishes)
	r.Get("/other-items", h.OtherItems)
	r.Post("/other-items", h.AddOtherItems)
	r.Post("/skip-other-items", h.SkipOtherItems)
	r.Get("/select-date", h.SelectDateOptions)
	r.Post("/select-date", h.SelectDate)
	r.Get("/location", h.LocationOptions)
	r.Post("/location", h.SelectLocation)
	r.Get("/time-slot", h.TimeSlotOptions)
	r.Post("/time-slot", h.SelectTimeSlot)
	r.Get("/summary", h.Summary)
	r.Post("/confirm-order", h.ConfirmOrder)
}

// --- Request / Response types ---

type menuItemResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	Description *string   `json:"description"`
	Type        string    `json:"type"`
}

func toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:    m.ID,
		Name:  m.Name,
		Price: numericToString(m.Price),
		Type:  m.ItemType,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	return resp
}

type cartLineResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Price    string    `json:"price"`
	Quantity int32     `json:"quantity"`
	Type     string    `json:"type"`
	Amount   string    `json:"amount"`
}

type cartResponse struct {
	Items    []cartLineResponse `json:"items"`
	Subtotal string             `json:"subtotal"`
	Count    int32              `json:"count"`
}

func toCartResponse(s *cart.State) cartResponse {
	resp := cartResponse{
		Items:    make([]cartLineResponse, len(s.Items)),
		Subtotal: s.Subtotal().StringFixed(2),
		Count:    s.Count(),
	}
	for i, it := range s.Items {
		resp.Items[i] = cartLineResponse{
			ID:       it.ID,
			Name:     it.Name,
			Price:    it.Price.StringFixed(2),
			Quantity: it.Quantity,
			Type:     it.Type,
			Amount:   it.Price.Mul(decimal.NewFromInt32(it.Quantity)).StringFixed(2),
		}
	}
	return resp
}

type quantityEntry struct {
	ID       string `json:"id"`
	Quantity int32  `json:"quantity"`
}

type addMealsRequest struct {
	Items []quantityEntry `json:"items"`
}

type addToCartRequest struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Quantity int32  `json:"quantity"`
}

type cartLineRequest struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type updateQuantityRequest struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Action string `json:"action"`
}

type selectValueRequest struct {
	Value string `json:"value"`
}

// --- Handlers ---

// Home lists the available main dishes together with the current cart.
func (h *WizardHandler) Home(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAvailableMenuItems(r.Context(), enum.ItemTypeMain)
	if err != nil {
		log.Printf("ERROR: list main dishes: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}

	state := h.codec.Read(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": resp,
		"cart":  toCartResponse(state),
	})
}

// AddMeals is the bulk path from the home page: every main with a
// positive quantity joins the cart, merging with existing lines.
func (h *WizardHandler) AddMeals(w http.ResponseWriter, r *http.Request) {
	var req addMealsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	state := h.codec.Read(r)
	added := 0
	for _, entry := range req.Items {
		if entry.Quantity <= 0 {
			continue
		}
		id, err := uuid.Parse(entry.ID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
			return
		}
		item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{ID: id, ItemType: enum.ItemTypeMain})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
				return
			}
			log.Printf("ERROR: get menu item: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if !item.IsAvailable {
			writeRedirect(w, http.StatusConflict, item.Name+" is no longer available", "warning", "/")
			return
		}
		state.AddItem(cartLine(item, entry.Quantity))
		added++
	}

	if added == 0 {
		writeRedirect(w, http.StatusBadRequest, "Please select at least one meal", "warning", "/")
		return
	}

	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeRedirect(w, http.StatusOK, "Meals added to your order", "success", "/side-dishes")
}

// AddToCart adds a single item. A main dish replaces any mains already
// in the cart; sides and other items merge in.
func (h *WizardHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !enum.IsValidItemType(req.Type) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item type"})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), database.GetMenuItemParams{ID: id, ItemType: req.Type})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !item.IsAvailable {
		writeRedirect(w, http.StatusConflict, item.Name+" is no longer available", "warning", "/")
		return
	}

	state := h.codec.Read(r)
	line := cartLine(item, req.Quantity)
	if req.Type == enum.ItemTypeMain {
		state.ReplaceMain(line)
	} else {
		state.AddItem(line)
	}

	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": item.Name + " added to your order",
		"cart":    toCartResponse(state),
	})
}

// RemoveFromCart deletes a line from the cart.
func (h *WizardHandler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	var req cartLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	state := h.codec.Read(r)
	state.Remove(id, req.Type)

	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "cart": toCartResponse(state)})
}

// UpdateQuantity bumps a line's quantity up or down (never below 1).
func (h *WizardHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Action != "increase" && req.Action != "decrease" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid action"})
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	state := h.codec.Read(r)
	state.Adjust(id, req.Type, req.Action)

	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "cart": toCartResponse(state)})
}

// SideDishes lists available side dishes; the cart must already hold a
// main dish to be here.
func (h *WizardHandler) SideDishes(w http.ResponseWriter, r *http.Request) {
	h.listStep(w, r, enum.ItemTypeSide)
}

// AddSideDishes bulk-adds the selected sides and moves on.
func (h *WizardHandler) AddSideDishes(w http.ResponseWriter, r *http.Request) {
	h.addStep(w, r, enum.ItemTypeSide, "/other-items")
}

// SkipSideDishes moves on without adding sides.
func (h *WizardHandler) SkipSideDishes(w http.ResponseWriter, r *http.Request) {
	h.skipStep(w, r, "/other-items")
}

// OtherItems lists drinks, desserts and extras.
func (h *WizardHandler) OtherItems(w http.ResponseWriter, r *http.Request) {
	h.listStep(w, r, enum.ItemTypeOther)
}

// AddOtherItems bulk-adds the selected extras and moves on.
func (h *WizardHandler) AddOtherItems(w http.ResponseWriter, r *http.Request) {
	h.addStep(w, r, enum.ItemTypeOther, "/select-date")
}

// SkipOtherItems moves on without extras.
func (h *WizardHandler) SkipOtherItems(w http.ResponseWriter, r *http.Request) {
	h.skipStep(w, r, "/select-date")
}

func (h *WizardHandler) listStep(w http.ResponseWriter, r *http.Request, itemType string) {
	state := h.codec.Read(r)
	if !state.HasMain() {
		writeRedirect(w, http.StatusConflict, "Please choose a main dish first", "warning", "/")
		return
	}

	items, err := h.store.ListAvailableMenuItems(r.Context(), itemType)
	if err != nil {
		log.Printf("ERROR: list %s items: %v", itemType, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = toMenuItemResponse(m)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": resp,
		"cart":  toCartResponse(state),
	})
}

func (h *WizardHandler) addStep(w http.ResponseWriter, r *http.Request, itemType, next string) {
	var req addMealsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	state := h.codec.Read(r)
	if !state.HasMain() {
		writeRedirect(w, http.StatusConflict, "Please choose a main dish first", "warning", "/")
		return
	}

	for _, entry := range req.Items {
		if entry.Quantity <= 0 {
			continue
		}
		id, err := uuid.Parse(entry.ID)
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
		if !item.IsAvailable {
			continue
		}
		state.AddItem(cartLine(item, entry.Quantity))
	}

	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeRedirect(w, http.StatusOK, "Added to your order", "success", next)
}

func (h *WizardHandler) skipStep(w http.ResponseWriter, r *http.Request, next string) {
	state := h.codec.Read(r)
	if !state.HasMain() {
		writeRedirect(w, http.StatusConflict, "Please choose a main dish first", "warning", "/")
		return
	}
	writeRedirect(w, http.StatusOK, "", "info", next)
}

// SelectDateOptions returns the selectable delivery dates.
func (h *WizardHandler) SelectDateOptions(w http.ResponseWriter, r *http.Request) {
	state := h.codec.Read(r)
	if !state.HasMain() {
		writeRedirect(w, http.StatusConflict, "Please choose a main dish first", "warning", "/")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"options":  service.DateOptions(h.now()),
		"selected": state.DeliveryDate,
	})
}

// SelectDate stores the chosen delivery date.
func (h *WizardHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req selectValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	state := h.codec.Read(r)
	if !state.HasMain() {
		writeRedirect(w, http.StatusConflict, "Please choose a main dish first", "warning", "/")
		return
	}
	if !service.IsValidDeliveryDate(req.Value, h.now()) {
		writeRedirect(w, http.StatusBadRequest, "That delivery date is not available", "warning", "/select-date")
		return
	}

	state.DeliveryDate = req.Value
	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeRedirect(w, http.StatusOK, "", "info", "/location")
}

// LocationOptions returns the active delivery locations.
func (h *WizardHandler) LocationOptions(w http.ResponseWriter, r *http.Request) {
	state := h.codec.Read(r)
	if state.DeliveryDate == "" {
		writeRedirect(w, http.StatusConflict, "Please pick a delivery date first", "warning", "/select-date")
		return
	}

	locations, err := h.store.ListActiveLocations(r.Context())
	if err != nil {
		log.Printf("ERROR: list locations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if len(locations) == 0 {
		writeRedirect(w, http.StatusConflict, "No delivery locations are available right now", "warning", "/")
		return
	}

	names := make([]string, len(locations))
	for i, l := range locations {
		names[i] = l.Name
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locations": names,
		"selected":  state.DeliveryLocation,
	})
}

// SelectLocation stores the chosen delivery location.
func (h *WizardHandler) SelectLocation(w http.ResponseWriter, r *http.Request) {
	var req selectValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	state := h.codec.Read(r)
	if state.DeliveryDate == "" {
		writeRedirect(w, http.StatusConflict, "Please pick a delivery date first", "warning", "/select-date")
		return
	}

	locations, err := h.store.ListActiveLocations(r.Context())
	if err != nil {
		log.Printf("ERROR: list locations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	valid := false
	for _, l := range locations {
		if l.Name == req.Value {
			valid = true
			break
		}
	}
	if !valid {
		writeRedirect(w, http.StatusBadRequest, "Please choose a delivery location", "warning", "/location")
		return
	}

	state.DeliveryLocation = req.Value
	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeRedirect(w, http.StatusOK, "", "info", "/time-slot")
}

// TimeSlotOptions returns the fixed lunch delivery windows.
func (h *WizardHandler) TimeSlotOptions(w http.ResponseWriter, r *http.Request) {
	state := h.codec.Read(r)
	if state.DeliveryLocation == "" {
		writeRedirect(w, http.StatusConflict, "Please choose a delivery location first", "warning", "/location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"slots":    service.TimeSlots(),
		"selected": state.TimeSlot,
	})
}

// SelectTimeSlot stores the chosen delivery window.
func (h *WizardHandler) SelectTimeSlot(w http.ResponseWriter, r *http.Request) {
	var req selectValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	state := h.codec.Read(r)
	if state.DeliveryLocation == "" {
		writeRedirect(w, http.StatusConflict, "Please choose a delivery location first", "warning", "/location")
		return
	}
	if !service.IsValidTimeSlot(req.Value) {
		writeRedirect(w, http.StatusBadRequest, "Please choose a delivery time", "warning", "/time-slot")
		return
	}

	state.TimeSlot = req.Value
	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeRedirect(w, http.StatusOK, "", "info", "/summary")
}

// Summary shows the full order before confirmation: cart, selections
// and the price breakdown.
func (h *WizardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	state := h.codec.Read(r)
	if !state.HasMain() {
		writeRedirect(w, http.StatusConflict, "Please choose a main dish first", "warning", "/")
		return
	}
	if state.DeliveryDate == "" || state.DeliveryLocation == "" || state.TimeSlot == "" {
		writeRedirect(w, http.StatusConflict, "Please finish choosing delivery details", "warning", "/select-date")
		return
	}

	billing := service.DefaultBilling()
	settings, err := h.store.GetBillingSettings(r.Context())
	if err == nil {
		billing = service.BillingFromSettings(settings)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: get billing settings: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	quote := service.ComputeQuote(state.Subtotal(), billing)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cart":              toCartResponse(state),
		"delivery_date":     state.DeliveryDate,
		"delivery_location": state.DeliveryLocation,
		"time_slot":         state.TimeSlot,
		"quote":             toQuoteResponse(quote),
	})
}

type quoteResponse struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"delivery_fee"`
	Packaging   string `json:"packaging"`
	Service     string `json:"service"`
	Tax         string `json:"tax"`
	TaxRate     string `json:"tax_rate"`
	Total       string `json:"total"`
}

func toQuoteResponse(q service.Quote) quoteResponse {
	return quoteResponse{
		Subtotal:    q.Subtotal.StringFixed(2),
		DeliveryFee: q.DeliveryFee.StringFixed(2),
		Packaging:   q.Packaging.StringFixed(2),
		Service:     q.Service.StringFixed(2),
		Tax:         q.Tax.StringFixed(2),
		TaxRate:     q.TaxRate.String(),
		Total:       q.Total.StringFixed(2),
	}
}

// ConfirmOrder places the order for the signed-in user and resets the
// wizard, leaving a pointer to the new order for the tracking page.
func (h *WizardHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	state := h.codec.Read(r)
	result, err := h.orders.PlaceOrder(r.Context(), claims.UserID, state)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart), errors.Is(err, service.ErrNoMainDish):
			writeRedirect(w, http.StatusConflict, "Your cart is empty", "warning", "/")
		case errors.Is(err, service.ErrMissingDeliveryDate), errors.Is(err, service.ErrInvalidDeliveryDate):
			writeRedirect(w, http.StatusConflict, "Please pick a valid delivery date", "warning", "/select-date")
		case errors.Is(err, service.ErrMissingLocation):
			writeRedirect(w, http.StatusConflict, "Please choose a delivery location", "warning", "/location")
		case errors.Is(err, service.ErrMissingTimeSlot), errors.Is(err, service.ErrInvalidTimeSlot):
			writeRedirect(w, http.StatusConflict, "Please choose a delivery time", "warning", "/time-slot")
		default:
			log.Printf("ERROR: place order: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	state.ClearAfterConfirm(result.Order.ID)
	if err := h.codec.Write(w, state); err != nil {
		log.Printf("ERROR: write wizard state: %v", err)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  "Your order has been placed",
		"category": "success",
		"redirect": "/tracking",
		"order_id": result.Order.ID,
	})
}

func cartLine(item database.MenuItem, quantity int32) cart.Item {
	price, _ := decimal.NewFromString(numericToString(item.Price))
	return cart.Item{
		ID:       item.ID,
		Name:     item.Name,
		Price:    price,
		Quantity: quantity,
		Type:     item.ItemType,
	}
}
