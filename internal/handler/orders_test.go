package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/v2lunch/api/internal/auth"
	"github.com/v2lunch/api/internal/cart"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/handler"
	"github.com/v2lunch/api/internal/middleware"
)

// --- Mock pgx.Tx / pool ---

type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }

func (m *mockTx) LargeObjects() pgx.LargeObjects { return pgx.LargeObjects{} }

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Conn() *pgx.Conn { return nil }

type mockPool struct {
	tx *mockTx
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.tx == nil {
		m.tx = &mockTx{}
	}
	return m.tx, nil
}

// --- Mock notifier ---

type pushedEvent struct {
	userID  uuid.UUID
	orderID uuid.UUID
	status  string
}

type mockNotifier struct {
	events []pushedEvent
}

func (m *mockNotifier) NotifyOrderStatus(userID, orderID uuid.UUID, status string) {
	m.events = append(m.events, pushedEvent{userID: userID, orderID: orderID, status: status})
}

// --- Mock OrderStore ---

type mockCustomerOrderStore struct {
	getOrderFn                        func(ctx context.Context, id uuid.UUID) (database.Order, error)
	getOrderForUserFn                 func(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error)
	listOrdersByUserFn                func(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	listOrderItemsByOrderFn           func(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	listStatusHistoryByOrderFn        func(ctx context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error)
	cancelOrderFn                     func(ctx context.Context, arg database.CancelOrderParams) (database.Order, error)
	createStatusHistoryFn             func(ctx context.Context, arg database.CreateStatusHistoryParams) (database.OrderStatusHistory, error)
	deactivateNotificationsForOrderFn func(ctx context.Context, orderID pgtype.UUID) error
	listActiveNotificationsByUserFn   func(ctx context.Context, userID uuid.UUID) ([]database.Notification, error)
	markNotificationReadFn            func(ctx context.Context, arg database.MarkNotificationReadParams) error
}

func (m *mockCustomerOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, id)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockCustomerOrderStore) GetOrderForUser(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
	if m.getOrderForUserFn != nil {
		return m.getOrderForUserFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockCustomerOrderStore) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error) {
	if m.listOrdersByUserFn != nil {
		return m.listOrdersByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCustomerOrderStore) ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error) {
	if m.listOrderItemsByOrderFn != nil {
		return m.listOrderItemsByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockCustomerOrderStore) ListStatusHistoryByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error) {
	if m.listStatusHistoryByOrderFn != nil {
		return m.listStatusHistoryByOrderFn(ctx, orderID)
	}
	return nil, nil
}

func (m *mockCustomerOrderStore) CancelOrder(ctx context.Context, arg database.CancelOrderParams) (database.Order, error) {
	if m.cancelOrderFn != nil {
		return m.cancelOrderFn(ctx, arg)
	}
	return database.Order{}, pgx.ErrNoRows
}

func (m *mockCustomerOrderStore) CreateStatusHistory(ctx context.Context, arg database.CreateStatusHistoryParams) (database.OrderStatusHistory, error) {
	if m.createStatusHistoryFn != nil {
		return m.createStatusHistoryFn(ctx, arg)
	}
	return database.OrderStatusHistory{}, nil
}

func (m *mockCustomerOrderStore) DeactivateNotificationsForOrder(ctx context.Context, orderID pgtype.UUID) error {
	if m.deactivateNotificationsForOrderFn != nil {
		return m.deactivateNotificationsForOrderFn(ctx, orderID)
	}
	return nil
}

func (m *mockCustomerOrderStore) ListActiveNotificationsByUser(ctx context.Context, userID uuid.UUID) ([]database.Notification, error) {
	if m.listActiveNotificationsByUserFn != nil {
		return m.listActiveNotificationsByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCustomerOrderStore) MarkNotificationRead(ctx context.Context, arg database.MarkNotificationReadParams) error {
	if m.markNotificationReadFn != nil {
		return m.markNotificationReadFn(ctx, arg)
	}
	return nil
}

// --- Setup helpers ---

func setupOrderRouter(store *mockCustomerOrderStore, pool *mockPool, notifier *mockNotifier) (chi.Router, *cart.Codec) {
	codec := cart.NewCodec(testJWTSecret)
	h := handler.NewOrderHandler(store, pool, func(db database.DBTX) handler.OrderStore {
		return store
	}, codec, notifier)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	h.RegisterRoutes(r)
	return r, codec
}

func testOrder(t *testing.T, userID uuid.UUID, status string, deliveryDate time.Time) database.Order {
	t.Helper()
	return database.Order{
		ID:               uuid.New(),
		UserID:           userID,
		Status:           status,
		DeliveryDate:     deliveryDate,
		DeliveryLocation: "Main Building",
		TimeSlot:         "12:00 PM - 12:30 PM",
		Subtotal:         mustNumeric(t, "23.00"),
		DeliveryFee:      mustNumeric(t, "2.00"),
		Packaging:        mustNumeric(t, "0.50"),
		Service:          mustNumeric(t, "0.00"),
		Tax:              mustNumeric(t, "1.15"),
		TaxRate:          mustNumeric(t, "5.0"),
		Total:            mustNumeric(t, "26.65"),
		CreatedAt:        time.Now(),
	}
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, userID uuid.UUID, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	token, err := auth.GenerateToken(testJWTSecret, userID, "Test Customer", false)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeInto(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

// --- Tests ---

func TestTrackingWithoutActiveOrder(t *testing.T) {
	router, _ := setupOrderRouter(&mockCustomerOrderStore{}, &mockPool{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/tracking", uuid.New(), nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
	resp := decodeBody(t, rr)
	if resp["redirect"].(string) != "/" {
		t.Errorf("redirect: got %s, want /", resp["redirect"])
	}
}

func TestTrackingActiveOrder(t *testing.T) {
	userID := uuid.New()
	order := testOrder(t, userID, "preparing", time.Now().AddDate(0, 0, 1))
	store := &mockCustomerOrderStore{
		getOrderForUserFn: func(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
			if arg.ID == order.ID && arg.UserID == userID {
				return order, nil
			}
			return database.Order{}, pgx.ErrNoRows
		},
		listStatusHistoryByOrderFn: func(ctx context.Context, orderID uuid.UUID) ([]database.OrderStatusHistory, error) {
			return []database.OrderStatusHistory{
				{ID: uuid.New(), OrderID: orderID, Status: "preparing", ChangedAt: time.Now(),
					Notes: pgtype.Text{String: "Order placed", Valid: true}},
			}, nil
		},
	}
	router, codec := setupOrderRouter(store, &mockPool{}, &mockNotifier{})

	state := &cart.State{CurrentOrder: &cart.ActiveOrder{OrderID: order.ID}}
	cookie := stateCookie(t, codec, state)

	rr := doAuthRequest(t, router, "GET", "/tracking", userID, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	orderResp := resp["order"].(map[string]interface{})
	if orderResp["status"].(string) != "preparing" {
		t.Errorf("status: got %s, want preparing", orderResp["status"])
	}
	if orderResp["total"].(string) != "26.65" {
		t.Errorf("total: got %s, want 26.65", orderResp["total"])
	}
	if orderResp["can_cancel"].(bool) != true {
		t.Error("a preparing order for tomorrow should be cancellable")
	}
	history := resp["history"].([]interface{})
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}
}

func TestTrackingClearsPointerOnDelivered(t *testing.T) {
	userID := uuid.New()
	order := testOrder(t, userID, "delivered", time.Now())
	store := &mockCustomerOrderStore{
		getOrderForUserFn: func(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
			return order, nil
		},
	}
	router, codec := setupOrderRouter(store, &mockPool{}, &mockNotifier{})

	state := &cart.State{CurrentOrder: &cart.ActiveOrder{OrderID: order.ID}}
	cookie := stateCookie(t, codec, state)

	rr := doAuthRequest(t, router, "GET", "/tracking", userID, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	after := stateFromResponse(t, codec, rr)
	if after.CurrentOrder != nil {
		t.Error("terminal order should clear the active order pointer")
	}
}

func TestMyOrders(t *testing.T) {
	userID := uuid.New()
	orders := []database.Order{
		testOrder(t, userID, "preparing", time.Now().AddDate(0, 0, 1)),
		testOrder(t, userID, "delivered", time.Now().AddDate(0, 0, -3)),
	}
	store := &mockCustomerOrderStore{
		listOrdersByUserFn: func(ctx context.Context, got uuid.UUID) ([]database.Order, error) {
			if got != userID {
				t.Errorf("expected user %s, got %s", userID, got)
			}
			return orders, nil
		},
	}
	router, _ := setupOrderRouter(store, &mockPool{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/my-orders", userID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []map[string]interface{}
	decodeInto(t, rr, &resp)
	if len(resp) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(resp))
	}
	if resp[0]["can_cancel"].(bool) != true {
		t.Error("upcoming preparing order should be cancellable")
	}
	if resp[1]["can_cancel"].(bool) != false {
		t.Error("delivered order must not be cancellable")
	}
}

func TestCancelOrder(t *testing.T) {
	userID := uuid.New()
	order := testOrder(t, userID, "preparing", time.Now().AddDate(0, 0, 1))
	cancelled := order
	cancelled.Status = "cancelled"

	var historyNote string
	var deactivated bool
	store := &mockCustomerOrderStore{
		getOrderForUserFn: func(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
			return order, nil
		},
		cancelOrderFn: func(ctx context.Context, arg database.CancelOrderParams) (database.Order, error) {
			if arg.ID != order.ID || arg.UserID != userID {
				t.Errorf("cancel called with wrong keys: %v %v", arg.ID, arg.UserID)
			}
			return cancelled, nil
		},
		createStatusHistoryFn: func(ctx context.Context, arg database.CreateStatusHistoryParams) (database.OrderStatusHistory, error) {
			historyNote = arg.Notes.String
			return database.OrderStatusHistory{}, nil
		},
		deactivateNotificationsForOrderFn: func(ctx context.Context, orderID pgtype.UUID) error {
			deactivated = true
			return nil
		},
	}
	pool := &mockPool{}
	notifier := &mockNotifier{}
	router, codec := setupOrderRouter(store, pool, notifier)

	state := &cart.State{CurrentOrder: &cart.ActiveOrder{OrderID: order.ID}}
	cookie := stateCookie(t, codec, state)

	rr := doAuthRequest(t, router, "POST", "/cancel-order/"+order.ID.String(), userID, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	if !pool.tx.committed {
		t.Error("transaction was not committed")
	}
	if historyNote != "Cancelled by customer" {
		t.Errorf("history note: got %q", historyNote)
	}
	if !deactivated {
		t.Error("notifications should be deactivated for the cancelled order")
	}
	if len(notifier.events) != 1 || notifier.events[0].status != "cancelled" {
		t.Errorf("expected one cancelled push, got %+v", notifier.events)
	}

	after := stateFromResponse(t, codec, rr)
	if after.CurrentOrder != nil {
		t.Error("active order pointer should be cleared after cancellation")
	}
}

func TestCancelDeliveredOrder(t *testing.T) {
	userID := uuid.New()
	order := testOrder(t, userID, "delivered", time.Now())
	store := &mockCustomerOrderStore{
		getOrderForUserFn: func(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
			return order, nil
		},
	}
	router, _ := setupOrderRouter(store, &mockPool{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "POST", "/cancel-order/"+order.ID.String(), userID, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCancelAfterCutoff(t *testing.T) {
	userID := uuid.New()
	// Delivery day already passed: the cutoff has certainly gone by
	order := testOrder(t, userID, "out_for_delivery", time.Now().AddDate(0, 0, -1))
	store := &mockCustomerOrderStore{
		getOrderForUserFn: func(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
			return order, nil
		},
	}
	router, _ := setupOrderRouter(store, &mockPool{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "POST", "/cancel-order/"+order.ID.String(), userID, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestCancelLosesRace(t *testing.T) {
	userID := uuid.New()
	order := testOrder(t, userID, "preparing", time.Now().AddDate(0, 0, 1))
	store := &mockCustomerOrderStore{
		getOrderForUserFn: func(ctx context.Context, arg database.GetOrderForUserParams) (database.Order, error) {
			return order, nil
		},
		// Concurrent update flipped the order to a terminal status
		cancelOrderFn: func(ctx context.Context, arg database.CancelOrderParams) (database.Order, error) {
			return database.Order{}, pgx.ErrNoRows
		},
	}
	notifier := &mockNotifier{}
	router, _ := setupOrderRouter(store, &mockPool{}, notifier)

	rr := doAuthRequest(t, router, "POST", "/cancel-order/"+order.ID.String(), userID, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if len(notifier.events) != 0 {
		t.Error("no push should be sent when cancellation loses the race")
	}
}

func TestNotificationsList(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()
	store := &mockCustomerOrderStore{
		listActiveNotificationsByUserFn: func(ctx context.Context, got uuid.UUID) ([]database.Notification, error) {
			return []database.Notification{
				{
					ID:      uuid.New(),
					UserID:  got,
					OrderID: pgtype.UUID{Bytes: orderID, Valid: true},
					Title:   "Your order is on its way",
					Message: "Order for Mon, Jan 2, 12:00 PM - 12:30 PM",
				},
			}, nil
		},
	}
	router, _ := setupOrderRouter(store, &mockPool{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "GET", "/notifications", userID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []map[string]interface{}
	decodeInto(t, rr, &resp)
	if len(resp) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(resp))
	}
	if resp[0]["order_id"].(string) != orderID.String() {
		t.Errorf("order_id: got %v, want %s", resp[0]["order_id"], orderID)
	}
}

func TestMarkNotificationRead(t *testing.T) {
	userID := uuid.New()
	notifID := uuid.New()
	var marked *database.MarkNotificationReadParams
	store := &mockCustomerOrderStore{
		markNotificationReadFn: func(ctx context.Context, arg database.MarkNotificationReadParams) error {
			marked = &arg
			return nil
		},
	}
	router, _ := setupOrderRouter(store, &mockPool{}, &mockNotifier{})

	rr := doAuthRequest(t, router, "POST", "/notifications/"+notifID.String()+"/read", userID, nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if marked == nil || marked.ID != notifID || marked.UserID != userID {
		t.Errorf("mark called with wrong keys: %+v", marked)
	}
}
