package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/enum"
	"github.com/v2lunch/api/internal/middleware"
	"github.com/v2lunch/api/internal/report"
	"github.com/v2lunch/api/internal/service"
)

const defaultPageSize = 20

// AdminOrderStore defines the database methods needed by order admin.
// Satisfied by *database.Queries; narrow interface for testability.
type AdminOrderStore interface {
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	CountOrders(ctx context.Context, arg database.CountOrdersParams) (int64, error)
	ListOrdersForReport(ctx context.Context, arg database.CountOrdersParams) ([]database.Order, error)
	ListOrderDeliveryDates(ctx context.Context) ([]time.Time, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (database.User, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	ListStatusHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	CreateStatusHistory(ctx context.Context, arg database.CreateStatusHistoryParams) (database.OrderStatusHistory, error)
	CreateNotification(ctx context.Context, arg database.CreateNotificationParams) (database.Notification, error)
	DeactivateNotificationsForOrder(ctx context.Context, orderID pgtype.UUID) error
	CountAllOrders(ctx context.Context) (int64, error)
	CountOrdersByDeliveryDate(ctx context.Context, date time.Time) (int64, error)
	ListRecentOrders(ctx context.Context, limit int32) ([]database.Order, error)
	CountUsers(ctx context.Context) (int64, error)
	ListActiveLocations(ctx context.Context) ([]database.Location, error)
}

// NewAdminOrderStore creates an AdminOrderStore from a DBTX (pool or tx).
type NewAdminOrderStore func(db database.DBTX) AdminOrderStore

// AdminOrderHandler serves the admin order console: list, detail,
// status updates, dashboard and PDF reports.
type AdminOrderHandler struct {
	store    AdminOrderStore
	pool     service.TxBeginner
	newStore NewAdminOrderStore
	notifier OrderNotifier
	now      func() time.Time
}

// NewAdminOrderHandler creates a new AdminOrderHandler.
func NewAdminOrderHandler(store AdminOrderStore, pool service.TxBeginner, newStore NewAdminOrderStore, notifier OrderNotifier) *AdminOrderHandler {
	return &AdminOrderHandler{
		store:    store,
		pool:     pool,
		newStore: newStore,
		notifier: notifier,
		now:      time.Now,
	}
}

// RegisterRoutes registers the admin order endpoints. Mounted under
// /admin.
func (h *AdminOrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/orders", h.List)
	r.Get("/orders/{id}", h.Details)
	r.Post("/orders/{id}/status", h.UpdateStatus)
	r.Get("/orders/pdf-report", h.PDFReport)
}

// --- Response types ---

type adminOrderResponse struct {
	orderResponse
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
}

// --- Handlers ---

// Dashboard returns the stats tiles and the latest orders.
func (h *AdminOrderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	totalOrders, err := h.store.CountAllOrders(ctx)
	if err != nil {
		log.Printf("ERROR: count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	now := h.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	todayOrders, err := h.store.CountOrdersByDeliveryDate(ctx, today)
	if err != nil {
		log.Printf("ERROR: count today's orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	totalUsers, err := h.store.CountUsers(ctx)
	if err != nil {
		log.Printf("ERROR: count users: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	recent, err := h.store.ListRecentOrders(ctx, 10)
	if err != nil {
		log.Printf("ERROR: list recent orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	recentResp := make([]adminOrderResponse, 0, len(recent))
	for _, o := range recent {
		entry, err := h.withCustomer(ctx, o)
		if err != nil {
			log.Printf("ERROR: load order customer: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		recentResp = append(recentResp, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_orders":  totalOrders,
		"orders_today":  todayOrders,
		"total_users":   totalUsers,
		"recent_orders": recentResp,
	})
}

// List returns orders with optional date, status and location filters,
// paginated.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filterDate := pgtype.Date{}
	if v := q.Get("date"); v != "" {
		d, err := time.Parse(service.DateFormat, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date filter"})
			return
		}
		filterDate = pgtype.Date{Time: d, Valid: true}
	}
	filterStatus := pgtype.Text{}
	if v := q.Get("status"); v != "" {
		if !enum.IsValidOrderStatus(v) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		filterStatus = pgtype.Text{String: v, Valid: true}
	}
	filterLocation := pgtype.Text{}
	if v := q.Get("location"); v != "" {
		filterLocation = pgtype.Text{String: v, Valid: true}
	}

	page := 1
	if v := q.Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid page"})
			return
		}
		page = p
	}

	total, err := h.store.CountOrders(r.Context(), database.CountOrdersParams{
		DeliveryDate:     filterDate,
		Status:           filterStatus,
		DeliveryLocation: filterLocation,
	})
	if err != nil {
		log.Printf("ERROR: count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	orders, err := h.store.ListOrders(r.Context(), database.ListOrdersParams{
		DeliveryDate:     filterDate,
		Status:           filterStatus,
		DeliveryLocation: filterLocation,
		Limit:            defaultPageSize,
		Offset:           int32((page - 1) * defaultPageSize),
	})
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminOrderResponse, 0, len(orders))
	for _, o := range orders {
		entry, err := h.withCustomer(r.Context(), o)
		if err != nil {
			log.Printf("ERROR: load order customer: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		resp = append(resp, entry)
	}

	dates, err := h.store.ListOrderDeliveryDates(r.Context())
	if err != nil {
		log.Printf("ERROR: list delivery dates: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	dateValues := make([]string, len(dates))
	for i, d := range dates {
		dateValues[i] = d.Format(service.DateFormat)
	}

	locations, err := h.store.ListActiveLocations(r.Context())
	if err != nil {
		log.Printf("ERROR: list locations: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	locationNames := make([]string, len(locations))
	for i, l := range locations {
		locationNames[i] = l.Name
	}

	totalPages := (total + defaultPageSize - 1) / defaultPageSize
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"orders":      resp,
		"total":       total,
		"page":        page,
		"total_pages": totalPages,
		"filters": map[string]interface{}{
			"dates":     dateValues,
			"statuses":  []string{enum.OrderStatusPreparing, enum.OrderStatusOutForDelivery, enum.OrderStatusDelivered, enum.OrderStatusCancelled},
			"locations": locationNames,
		},
	})
}

// Details returns one order with customer, items and history.
func (h *AdminOrderHandler) Details(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp, err := h.withCustomer(r.Context(), order)
	if err != nil {
		log.Printf("ERROR: load order customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

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

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// statusTitles feed the notification sent to the customer.
var statusTitles = map[string]string{
	enum.OrderStatusOutForDelivery: "Your order is on its way",
	enum.OrderStatusDelivered:      "Your order has been delivered",
	enum.OrderStatusCancelled:      "Your order was cancelled",
}

// UpdateStatus moves an order through its lifecycle and tells the
// customer: a notification row plus a live push.
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	order, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := service.ValidateStatusTransition(order.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": fmt.Sprintf("cannot move order from %s to %s", order.Status, req.Status),
		})
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

	updated, err := store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{ID: id, Status: req.Status})
	if err != nil {
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}
	if _, err := store.CreateStatusHistory(r.Context(), database.CreateStatusHistoryParams{
		OrderID:   updated.ID,
		Status:    req.Status,
		ChangedBy: claims.UserID,
		Notes:     notes,
	}); err != nil {
		log.Printf("ERROR: create status history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if title, ok := statusTitles[req.Status]; ok {
		if _, err := store.CreateNotification(r.Context(), database.CreateNotificationParams{
			UserID:  updated.UserID,
			OrderID: pgtype.UUID{Bytes: updated.ID, Valid: true},
			Title:   title,
			Message: fmt.Sprintf("Order for %s, %s", updated.DeliveryDate.Format("Mon, Jan 2"), updated.TimeSlot),
		}); err != nil {
			log.Printf("ERROR: create notification: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	if req.Status == enum.OrderStatusDelivered || req.Status == enum.OrderStatusCancelled {
		if err := store.DeactivateNotificationsForOrder(r.Context(), pgtype.UUID{Bytes: updated.ID, Valid: true}); err != nil {
			log.Printf("ERROR: deactivate notifications: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
	}

	if err := tx.Commit(r.Context()); err != nil {
		log.Printf("ERROR: commit tx: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyOrderStatus(updated.UserID, updated.ID, req.Status)
	}

	resp, err := h.withCustomer(r.Context(), updated)
	if err != nil {
		log.Printf("ERROR: load order customer: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PDFReport streams the summary or detailed order report. Accepts the
// same filters as the order list, plus type=summary|detailed.
func (h *AdminOrderHandler) PDFReport(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	q := r.URL.Query()

	detailed := false
	switch q.Get("type") {
	case "", "summary":
	case "detailed":
		detailed = true
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report type"})
		return
	}

	filterDate := pgtype.Date{}
	if v := q.Get("date"); v != "" {
		d, err := time.Parse(service.DateFormat, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date filter"})
			return
		}
		filterDate = pgtype.Date{Time: d, Valid: true}
	}
	filterStatus := pgtype.Text{}
	if v := q.Get("status"); v != "" {
		if !enum.IsValidOrderStatus(v) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status filter"})
			return
		}
		filterStatus = pgtype.Text{String: v, Valid: true}
	}
	filterLocation := pgtype.Text{}
	if v := q.Get("location"); v != "" {
		filterLocation = pgtype.Text{String: v, Valid: true}
	}

	orders, err := h.store.ListOrdersForReport(r.Context(), database.CountOrdersParams{
		DeliveryDate:     filterDate,
		Status:           filterStatus,
		DeliveryLocation: filterLocation,
	})
	if err != nil {
		log.Printf("ERROR: list orders for report: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if len(orders) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no orders match the selected filters"})
		return
	}

	data := report.Data{
		Detailed:       detailed,
		FilterDate:     q.Get("date"),
		FilterStatus:   q.Get("status"),
		FilterLocation: q.Get("location"),
		GeneratedBy:    claims.FullName,
		Now:            h.now(),
	}
	for _, o := range orders {
		user, err := h.store.GetUserByID(r.Context(), o.UserID)
		if err != nil {
			log.Printf("ERROR: get order customer: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		entry := report.OrderData{
			Reference:    shortID(o.ID),
			CustomerName: user.FullName,
			Phone:        user.Phone,
			Location:     o.DeliveryLocation,
			TimeSlot:     o.TimeSlot,
			DeliveryDate: o.DeliveryDate,
			Status:       o.Status,
			Subtotal:     numericToDecimalAmount(o.Subtotal),
			DeliveryFee:  numericToDecimalAmount(o.DeliveryFee),
			Tax:          numericToDecimalAmount(o.Tax),
			Total:        numericToDecimalAmount(o.Total),
		}
		items, err := h.store.ListOrderItemsByOrder(r.Context(), o.ID)
		if err != nil {
			log.Printf("ERROR: list order items: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		for _, it := range items {
			entry.Items = append(entry.Items, report.ItemLine{
				Name:     it.Name,
				Type:     it.ItemType,
				Price:    numericToDecimalAmount(it.Price),
				Quantity: it.Quantity,
			})
		}
		data.Orders = append(data.Orders, entry)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(data)))
	if err := report.Generate(w, data); err != nil {
		log.Printf("ERROR: generate pdf report: %v", err)
	}
}

func (h *AdminOrderHandler) withCustomer(ctx context.Context, o database.Order) (adminOrderResponse, error) {
	user, err := h.store.GetUserByID(ctx, o.UserID)
	if err != nil {
		return adminOrderResponse{}, err
	}
	base := orderResponse{
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
	}
	return adminOrderResponse{
		orderResponse: base,
		CustomerName:  user.FullName,
		Phone:         user.Phone,
		Email:         user.Email,
	}, nil
}

// shortID is the first UUID block, enough to identify an order on a
// printed page.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
