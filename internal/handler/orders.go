package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/v2lunch/api/internal/cart"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/enum"
	"github.com/v2lunch/api/internal/middleware"
	"github.com/v2lunch/api/internal/service"
)

// OrderStore defines the database methods needed by customer order
// endpoints. Satisfied by *database.Queries; narrow interface for
// testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderForUser(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListStatusHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error)
	CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	CreateStatusHistory(ctx context.Context, arg database.CreateStatusHistoryParams) (database.OrderStatusHistory, error)
	DeactivateNotificationsForOrder(ctx context.Context, orderID pgtype.UUID) error
	ListActiveNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]database.Notification, error)
	MarkNotificationRead(ctx context.Context, arg database.MarkNotificationReadParams) error
}

// OrderNotifier pushes live status updates to connected clients.
// Satisfied by *ws.Hub.
type OrderNotifier interface {
	NotifyOrderStatus(userID, orderID uuid.UUID, status string)
}

// NewCustomerOrderStore creates an OrderStore from a DBTX (pool or tx).
type NewCustomerOrderStore func(db database.DBTX) OrderStore

// OrderHandler serves the customer-facing order endpoints.
type OrderHandler struct {
	store    OrderStore
	pool     service.TxBeginner
	newStore NewCustomerOrderStore
	codec    *cart.Codec
	notifier OrderNotifier
	now      func() time.Time
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, pool service.TxBeginner, newStore NewCustomerOrderStore, codec *cart.Codec, notifier OrderNotifier) *OrderHandler {
	return &OrderHandler{
		store:    store,
		pool:     pool,
		newStore: newStore,
		codec:    codec,
		notifier: notifier,
		now:      time.Now,
	}
}

// RegisterRoutes registers the customer order endpoints. All of them
// require authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tracking", h.Tracking)
	r.Get("/check-order-status", h.CheckStatus)
	r.Get("/my-orders", h.MyOrders)
	r.Get("/order-details/{id}", h.Details)
	r.Post("/cancel-order/{id}", h.Cancel)
	r.Get("/notifications", h.Notifications)
	r.Post("/notifications/{id}/read", h.MarkNotificationRead)
}

// --- Response types ---

type orderResponse struct {
	ID               uuid.UUID           `json:"id"`
	Status           string              `json:"status"`
	DeliveryDate     string              `json:"delivery_date"`
	DeliveryLocation string              `json:"delivery_location"`
	TimeSlot         string              `json:"time_slot"`
	Subtotal         string              `json:"subtotal"`
	DeliveryFee      string              `json:"delivery_fee"`
	Packaging        string              `json:"packaging"`
	Service          string              `json:"service"`
	Tax              string              `json:"tax"`
	Total            string              `json:"total"`
	CreatedAt        time.Time           `json:"created_at"`
	CanCancel        bool                `json:"can_cancel"`
	Items            []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Price    string `json:"price"`
	Quantity int32  `json:"quantity"`
	Amount   string `json:"amount"`
}

type statusHistoryResponse struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
	Notes     *string   `json:"notes"`
}

func (h *OrderHandler) toOrderResponse(o database.Order) orderResponse {
	cancellable := o.Status != enum.OrderStatusDelivered &&
		o.Status != enum.OrderStatusCancelled &&
		service.CanCancel(o.DeliveryDate, h.now())
	return orderResponse{
		ID:               o.ID,
		Status:           o.Status,
		DeliveryDate:     o.DeliveryDate.Format(service.DateFormat),
		DeliveryLocation: o.DeliveryLocation,
		TimeSlot:         o.TimeSlot,
		Subtotal:         numericToString(o.Subtotal),
		DeliveryFee:      numericToString(o.DeliveryFee),
		Packaging:        numericToString(o.Packaging),
		Service:          numericToString(o.Service),
		Tax:              numericToString(o.Tax),
		Total:            numericToString(o.Total),
		CreatedAt:        o.CreatedAt,
		CanCancel:        cancellable,
	}
}

func toOrderItemResponse(it database.OrderItem) orderItemResponse {
	return orderItemResponse{
		Name:     it.Name,
		Type:     it.ItemType,
		Price:    numericToString(it.Price),
		Quantity: it.Quantity,
		Amount:   service.ItemSubtotal(it).StringFixed(2),
	}
}

// --- Handlers ---

// Tracking shows the order the wizard most recently placed. Once the
// order reaches a terminal state, the pointer is cleared so the next
// visit starts a fresh wizard.
func (h *OrderHandler) Tracking(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	state := h.codec.Read(r)
	if state.CurrentOrder == nil {
		writeRedirect(w, http.StatusNotFound, "No active order to track", "info", "/")
		return
	}

	order, err := h.store.GetOrderForUser(r.Context(), database.GetOrderForUserParams{
		ID:     state.CurrentOrder.OrderID,
		UserID: claims.UserID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			state.CurrentOrder = nil
			if werr := h.codec.Write(w, state); werr != nil {
				log.Printf("ERROR: write wizard state: %v", werr)
			}
			writeRedirect(w, http.StatusNotFound, "No active order to track", "info", "/")
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if order.Status == enum.OrderStatusDelivered || order.Status == enum.OrderStatusCancelled {
		state.CurrentOrder = nil
		if werr := h.codec.Write(w, state); werr != nil {
			log.Printf("ERROR: write wizard state: %v", werr)
		}
	}

	resp := h.toOrderResponse(order)
	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(it))
	}

	history, err := h.store.ListStatusHistoryByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list status history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	historyResp := make([]statusHistoryResponse, len(history))
	for i, hrow := range history {
		entry := statusHistoryResponse{Status: hrow.Status, ChangedAt: hrow.ChangedAt}
		if hrow.Notes.Valid {
			entry.Notes = &hrow.Notes.String
		}
		historyResp[i] = entry
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order":   resp,
		"history": historyResp,
	})
}

// CheckStatus is the lightweight polling endpoint behind the tracking
// page.
func (h *OrderHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	state := h.codec.Read(r)
	if state.CurrentOrder == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active order"})
		return
	}

	order, err := h.store.GetOrderForUser(r.Context(), database.GetOrderForUserParams{
		ID:     state.CurrentOrder.OrderID,
		UserID: claims.UserID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if order.Status == enum.OrderStatusDelivered || order.Status == enum.OrderStatusCancelled {
		state.CurrentOrder = nil
		if werr := h.codec.Write(w, state); werr != nil {
			log.Printf("ERROR: write wizard state: %v", werr)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"order_id": order.ID.String(),
		"status":   order.Status,
	})
}

// MyOrders lists the user's order history, newest first.
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	orders, err := h.store.ListOrdersByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = h.toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Details returns one of the user's orders with its items and history.
func (h *OrderHandler) Details(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrderForUser(r.Context(), database.GetOrderForUserParams{ID: id, UserID: claims.UserID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := h.toOrderResponse(order)
	items, err := h.store.ListOrderItemsByOrder(r.Context(), order.ID)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	for _, it := range items {
		resp.Items = append(resp.Items, toOrderItemResponse(it))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Cancel lets the customer cancel an order before delivery: any time
// before the delivery day, or on the day itself before 10 AM.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrderForUser(r.Context(), database.GetOrderForUserParams{ID: id, UserID: claims.UserID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if order.Status == enum.OrderStatusDelivered || order.Status == enum.OrderStatusCancelled {
		writeRedirect(w, http.StatusConflict, "This order can no longer be cancelled", "warning", "/my-orders")
		return
	}
	if !service.CanCancel(order.DeliveryDate, h.now()) {
		writeRedirect(w, http.StatusConflict,
			fmt.Sprintf("Orders can only be cancelled before %d:00 AM on the delivery day", service.SameDayCutoffHour),
			"warning", "/my-orders")
		return
	}

	tx, err := h.pool.Begin(r.Context())
	if err != nil {
		log.Printf("ERROR: begin tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer tx.Rollback(r.Context()) //nolint:errcheck

	store := h.newStore(tx)
	cancelled, err := store.CancelOrder(r.Context(), database.CancelOrderParams{ID: id, UserID: claims.UserID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the race with a concurrent status change.
			writeRedirect(w, http.StatusConflict, "This order can no longer be cancelled", "warning", "/my-orders")
			return
		}
		log.Printf("ERROR: cancel order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if _, err := store.CreateStatusHistory(r.Context(), database.CreateStatusHistoryParams{
		OrderID:   cancelled.ID,
		Status:    enum.OrderStatusCancelled,
		ChangedBy: claims.UserID,
		Notes:     pgtype.Text{String: "Cancelled by customer", Valid: true},
	}); err != nil {
		log.Printf("ERROR: create status history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := store.DeactivateNotificationsForOrder(r.Context(), pgtype.UUID{Bytes: cancelled.ID, Valid: true}); err != nil {
		log.Printf("ERROR: deactivate notifications: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyOrderStatus(claims.UserID, cancelled.ID, enum.OrderStatusCancelled)
	}

	state := h.codec.Read(r)
	if state.CurrentOrder != nil && state.CurrentOrder.OrderID == cancelled.ID {
		state.CurrentOrder = nil
		if werr := h.codec.Write(w, state); werr != nil {
			log.Printf("ERROR: write wizard state: %v", werr)
		}
	}

	writeRedirect(w, http.StatusOK, "Your order has been cancelled", "success", "/my-orders")
}

// Notifications lists the user's active notifications.
func (h *OrderHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	notifications, err := h.store.ListActiveNotificationsByUser(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: list notifications: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	type notificationResponse struct {
		ID        uuid.UUID `json:"id"`
		OrderID   *string   `json:"order_id"`
		Title     string    `json:"title"`
		Message   string    `json:"message"`
		IsRead    bool      `json:"is_read"`
		CreatedAt time.Time `json:"created_at"`
	}
	resp := make([]notificationResponse, len(notifications))
	for i, n := range notifications {
		entry := notificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
		if n.OrderID.Valid {
			s := uuid.UUID(n.OrderID.Bytes).String()
			entry.OrderID = &s
		}
		resp[i] = entry
	}
	writeJSON(w, http.StatusOK, resp)
}

// MarkNotificationRead marks one of the user's notifications as read.
func (h *OrderHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid notification ID"})
		return
	}

	if err := h.store.MarkNotificationRead(r.Context(), database.MarkNotificationReadParams{ID: id, UserID: claims.UserID}); err != nil {
		log.Printf("ERROR: mark notification read: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
