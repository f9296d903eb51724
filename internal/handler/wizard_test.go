package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/v2lunch/api/internal/auth"
	"github.com/v2lunch/api/internal/cart"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/handler"
	"github.com/v2lunch/api/internal/middleware"
	"github.com/v2lunch/api/internal/service"
)

const testJWTSecret = "test-secret"

// --- Mock WizardStore ---

type mockWizardStore struct {
	listAvailableMenuItemsFn func(ctx context.Context, itemType string) ([]database.MenuItem, error)
	getMenuItemFn            func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error)
	listActiveLocationsFn    func(ctx context.Context) ([]database.Location, error)
	getBillingSettingsFn     func(ctx context.Context) (database.BillingSettings, error)
}

func (m *mockWizardStore) ListAvailableMenuItems(ctx context.Context, itemType string) ([]database.MenuItem, error) {
	if m.listAvailableMenuItemsFn != nil {
		return m.listAvailableMenuItemsFn(ctx, itemType)
	}
	return nil, nil
}

func (m *mockWizardStore) GetMenuItem(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
	if m.getMenuItemFn != nil {
		return m.getMenuItemFn(ctx, arg)
	}
	return database.MenuItem{}, pgx.ErrNoRows
}

func (m *mockWizardStore) ListActiveLocations(ctx context.Context) ([]database.Location, error) {
	if m.listActiveLocationsFn != nil {
		return m.listActiveLocationsFn(ctx)
	}
	return nil, nil
}

func (m *mockWizardStore) GetBillingSettings(ctx context.Context) (database.BillingSettings, error) {
	if m.getBillingSettingsFn != nil {
		return m.getBillingSettingsFn(ctx)
	}
	return database.BillingSettings{}, pgx.ErrNoRows
}

// --- Helpers ---

func mustNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("scan numeric %q: %v", s, err)
	}
	return n
}

func testMenuItem(t *testing.T, itemType, name, price string) database.MenuItem {
	t.Helper()
	return database.MenuItem{
		ID:          uuid.New(),
		ItemType:    itemType,
		Name:        name,
		Price:       mustNumeric(t, price),
		IsAvailable: true,
	}
}

func setupWizardRouter(store *mockWizardStore, codec *cart.Codec) chi.Router {
	h := handler.NewWizardHandler(store, codec, service.NewOrderService(nil, nil))
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		h.RegisterRoutes(r)
	})
	return r
}

// stateCookie serializes a wizard state the way the handler does, so a
// request can carry pre-existing cart contents.
func stateCookie(t *testing.T, codec *cart.Codec, state *cart.State) *http.Cookie {
	t.Helper()
	rr := httptest.NewRecorder()
	if err := codec.Write(rr, state); err != nil {
		t.Fatalf("write wizard state: %v", err)
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == cart.CookieName {
			return c
		}
	}
	t.Fatal("wizard cookie not set")
	return nil
}

// stateFromResponse decodes the wizard cookie a handler wrote back.
func stateFromResponse(t *testing.T, codec *cart.Codec, rr *httptest.ResponseRecorder) *cart.State {
	t.Helper()
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range rr.Result().Cookies() {
		if c.Name == cart.CookieName {
			req.AddCookie(c)
		}
	}
	return codec.Read(req)
}

// doWizardRequest issues a request as a signed-in customer. Every
// wizard step sits behind authentication.
func doWizardRequest(t *testing.T, router http.Handler, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	token, err := auth.GenerateToken(testJWTSecret, uuid.New(), "Test Customer", false)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestWizardHomeListsMains(t *testing.T) {
	main := testMenuItem(t, "main", "Grilled Chicken Rice Bowl", "8.00")
	store := &mockWizardStore{
		listAvailableMenuItemsFn: func(ctx context.Context, itemType string) ([]database.MenuItem, error) {
			if itemType != "main" {
				t.Errorf("expected item type 'main', got %q", itemType)
			}
			return []database.MenuItem{main}, nil
		},
	}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	rr := doWizardRequest(t, router, "GET", "/", nil, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}

	resp := decodeBody(t, rr)
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	first := items[0].(map[string]interface{})
	if first["price"].(string) != "8.00" {
		t.Errorf("price: got %s, want 8.00", first["price"])
	}
	cartResp := resp["cart"].(map[string]interface{})
	if cartResp["count"].(float64) != 0 {
		t.Errorf("expected empty cart, got count %v", cartResp["count"])
	}
}

func TestWizardAddMealsMergesIntoCart(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	store := &mockWizardStore{
		getMenuItemFn: func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
			if arg.ID == main.ID && arg.ItemType == "main" {
				return main, nil
			}
			return database.MenuItem{}, pgx.ErrNoRows
		},
	}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	// Cart already holds one of the same main
	existing := &cart.State{}
	existing.AddItem(cart.Item{ID: main.ID, Name: main.Name, Price: decimal.RequireFromString("9.50"), Quantity: 1, Type: "main"})
	cookie := stateCookie(t, codec, existing)

	body := map[string]interface{}{
		"items": []map[string]interface{}{
			{"id": main.ID.String(), "quantity": 2},
		},
	}
	rr := doWizardRequest(t, router, "POST", "/", body, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	if resp["redirect"].(string) != "/side-dishes" {
		t.Errorf("redirect: got %s, want /side-dishes", resp["redirect"])
	}

	state := stateFromResponse(t, codec, rr)
	if len(state.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(state.Items))
	}
	if state.Items[0].Quantity != 3 {
		t.Errorf("quantity: got %d, want 3", state.Items[0].Quantity)
	}
}

func TestWizardAddMealsRequiresSelection(t *testing.T) {
	store := &mockWizardStore{}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	body := map[string]interface{}{
		"items": []map[string]interface{}{},
	}
	rr := doWizardRequest(t, router, "POST", "/", body, nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
	resp := decodeBody(t, rr)
	if resp["redirect"].(string) != "/" {
		t.Errorf("redirect: got %s, want /", resp["redirect"])
	}
}

func TestWizardAddToCartReplacesMain(t *testing.T) {
	oldMain := testMenuItem(t, "main", "Vegetable Biryani", "7.00")
	newMain := testMenuItem(t, "main", "Beef Rendang", "9.50")
	side := testMenuItem(t, "side", "Garden Salad", "2.50")
	store := &mockWizardStore{
		getMenuItemFn: func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
			if arg.ID == newMain.ID {
				return newMain, nil
			}
			return database.MenuItem{}, pgx.ErrNoRows
		},
	}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	existing := &cart.State{}
	existing.AddItem(cart.Item{ID: oldMain.ID, Name: oldMain.Name, Price: decimal.RequireFromString("7.00"), Quantity: 2, Type: "main"})
	existing.AddItem(cart.Item{ID: side.ID, Name: side.Name, Price: decimal.RequireFromString("2.50"), Quantity: 1, Type: "side"})
	cookie := stateCookie(t, codec, existing)

	body := map[string]interface{}{"id": newMain.ID.String(), "type": "main", "quantity": 1}
	rr := doWizardRequest(t, router, "POST", "/add-to-cart", body, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	state := stateFromResponse(t, codec, rr)
	if len(state.Items) != 2 {
		t.Fatalf("expected 2 lines (new main + side), got %d", len(state.Items))
	}
	for _, it := range state.Items {
		if it.Type == "main" && it.ID != newMain.ID {
			t.Errorf("old main should have been replaced, found %s", it.Name)
		}
	}
}

func TestWizardSideDishesRequiresMain(t *testing.T) {
	store := &mockWizardStore{}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	rr := doWizardRequest(t, router, "GET", "/side-dishes", nil, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	resp := decodeBody(t, rr)
	if resp["redirect"].(string) != "/" {
		t.Errorf("redirect: got %s, want /", resp["redirect"])
	}
}

func TestWizardSelectDate(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(&mockWizardStore{}, codec)

	state := &cart.State{}
	state.AddItem(cart.Item{ID: main.ID, Name: main.Name, Price: decimal.RequireFromString("9.50"), Quantity: 1, Type: "main"})
	cookie := stateCookie(t, codec, state)

	// Tomorrow is always selectable
	tomorrow := time.Now().AddDate(0, 0, 1).Format(service.DateFormat)
	rr := doWizardRequest(t, router, "POST", "/select-date", map[string]interface{}{"value": tomorrow}, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := stateFromResponse(t, codec, rr).DeliveryDate; got != tomorrow {
		t.Errorf("delivery date: got %s, want %s", got, tomorrow)
	}

	// A date in the past is rejected
	rr = doWizardRequest(t, router, "POST", "/select-date", map[string]interface{}{"value": "2020-01-01"}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("past date status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestWizardSelectLocation(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	store := &mockWizardStore{
		listActiveLocationsFn: func(ctx context.Context) ([]database.Location, error) {
			return []database.Location{
				{ID: uuid.New(), Name: "Main Building", IsActive: true},
				{ID: uuid.New(), Name: "North Campus", IsActive: true},
			}, nil
		},
	}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	state := &cart.State{DeliveryDate: time.Now().AddDate(0, 0, 1).Format(service.DateFormat)}
	state.AddItem(cart.Item{ID: main.ID, Name: main.Name, Price: decimal.RequireFromString("9.50"), Quantity: 1, Type: "main"})
	cookie := stateCookie(t, codec, state)

	rr := doWizardRequest(t, router, "POST", "/location", map[string]interface{}{"value": "North Campus"}, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := stateFromResponse(t, codec, rr).DeliveryLocation; got != "North Campus" {
		t.Errorf("location: got %s, want North Campus", got)
	}

	// Unknown location is rejected
	rr = doWizardRequest(t, router, "POST", "/location", map[string]interface{}{"value": "Moon Base"}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown location status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestWizardLocationOptionsEmpty(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	store := &mockWizardStore{
		listActiveLocationsFn: func(ctx context.Context) ([]database.Location, error) {
			return nil, nil
		},
	}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	state := &cart.State{DeliveryDate: time.Now().AddDate(0, 0, 1).Format(service.DateFormat)}
	state.AddItem(cart.Item{ID: main.ID, Name: main.Name, Price: decimal.RequireFromString("9.50"), Quantity: 1, Type: "main"})
	cookie := stateCookie(t, codec, state)

	rr := doWizardRequest(t, router, "GET", "/location", nil, cookie)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	resp := decodeBody(t, rr)
	if resp["redirect"].(string) != "/" {
		t.Errorf("redirect: got %s, want /", resp["redirect"])
	}
	if resp["category"].(string) != "warning" {
		t.Errorf("category: got %s, want warning", resp["category"])
	}
}

func TestWizardSelectTimeSlot(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(&mockWizardStore{}, codec)

	state := &cart.State{
		DeliveryDate:     time.Now().AddDate(0, 0, 1).Format(service.DateFormat),
		DeliveryLocation: "Main Building",
	}
	state.AddItem(cart.Item{ID: main.ID, Name: main.Name, Price: decimal.RequireFromString("9.50"), Quantity: 1, Type: "main"})
	cookie := stateCookie(t, codec, state)

	rr := doWizardRequest(t, router, "POST", "/time-slot", map[string]interface{}{"value": "12:00 PM - 12:30 PM"}, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["redirect"].(string) != "/summary" {
		t.Errorf("redirect: got %s, want /summary", resp["redirect"])
	}

	rr = doWizardRequest(t, router, "POST", "/time-slot", map[string]interface{}{"value": "3:00 PM - 4:00 PM"}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad slot status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestWizardSummaryQuote(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	// No billing settings row: defaults apply (delivery 2.00, tax 5%, packaging 0.50)
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(&mockWizardStore{}, codec)

	state := &cart.State{
		DeliveryDate:     time.Now().AddDate(0, 0, 1).Format(service.DateFormat),
		DeliveryLocation: "Main Building",
		TimeSlot:         "12:00 PM - 12:30 PM",
	}
	state.AddItem(cart.Item{ID: main.ID, Name: main.Name, Price: decimal.RequireFromString("11.50"), Quantity: 2, Type: "main"})
	cookie := stateCookie(t, codec, state)

	rr := doWizardRequest(t, router, "GET", "/summary", nil, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeBody(t, rr)
	quote := resp["quote"].(map[string]interface{})
	if quote["subtotal"].(string) != "23.00" {
		t.Errorf("subtotal: got %s, want 23.00", quote["subtotal"])
	}
	if quote["tax"].(string) != "1.15" {
		t.Errorf("tax: got %s, want 1.15", quote["tax"])
	}
	if quote["total"].(string) != "26.65" {
		t.Errorf("total: got %s, want 26.65", quote["total"])
	}
}

func TestWizardSummaryRequiresDeliveryDetails(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(&mockWizardStore{}, codec)

	state := &cart.State{}
	state.AddItem(cart.Item{ID: main.ID, Name: main.Name, Price: decimal.RequireFromString("9.50"), Quantity: 1, Type: "main"})
	cookie := stateCookie(t, codec, state)

	rr := doWizardRequest(t, router, "GET", "/summary", nil, cookie)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestWizardStepsRequireLogin(t *testing.T) {
	main := testMenuItem(t, "main", "Beef Rendang", "9.50")
	store := &mockWizardStore{
		getMenuItemFn: func(ctx context.Context, arg database.GetMenuItemParams) (database.MenuItem, error) {
			return main, nil
		},
	}
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(store, codec)

	steps := []struct {
		method string
		path   string
		body   interface{}
	}{
		{"GET", "/", nil},
		{"POST", "/add-to-cart", map[string]interface{}{"id": main.ID.String(), "type": "main", "quantity": 1}},
		{"GET", "/side-dishes", nil},
		{"POST", "/select-date", map[string]interface{}{"value": "2030-01-01"}},
		{"GET", "/summary", nil},
		{"POST", "/confirm-order", nil},
	}
	for _, step := range steps {
		var req *http.Request
		if step.body != nil {
			b, err := json.Marshal(step.body)
			if err != nil {
				t.Fatalf("marshal body: %v", err)
			}
			req = httptest.NewRequest(step.method, step.path, bytes.NewReader(b))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(step.method, step.path, nil)
		}
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status got %d, want %d", step.method, step.path, rr.Code, http.StatusUnauthorized)
		}
		resp := decodeBody(t, rr)
		if resp["redirect"].(string) != "/login" {
			t.Errorf("%s %s: redirect got %s, want /login", step.method, step.path, resp["redirect"])
		}
		// An anonymous visitor must not come away with a cart.
		for _, c := range rr.Result().Cookies() {
			if c.Name == cart.CookieName {
				t.Errorf("%s %s: wizard cookie set for anonymous request", step.method, step.path)
			}
		}
	}
}

func TestWizardConfirmOrderEmptyCart(t *testing.T) {
	codec := cart.NewCodec(testJWTSecret)
	router := setupWizardRouter(&mockWizardStore{}, codec)

	token, err := auth.GenerateToken(testJWTSecret, uuid.New(), "Test Customer", false)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest("POST", "/confirm-order", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d, body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if resp["redirect"].(string) != "/" {
		t.Errorf("redirect: got %s, want /", resp["redirect"])
	}
}
