package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Kariqs/tableside-api/controllers"
	"github.com/Kariqs/tableside-api/gateways"
	"github.com/Kariqs/tableside-api/initializers"
	"github.com/Kariqs/tableside-api/middlewares"
	"github.com/Kariqs/tableside-api/models"
	"github.com/Kariqs/tableside-api/realtime"
	"github.com/Kariqs/tableside-api/routes"
	"github.com/Kariqs/tableside-api/services"
	"github.com/gin-gonic/gin"
)

type testEnv struct {
	engine  *gin.Engine
	handler *controllers.Handler
	hub     *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	controllers.RegisterValidators()

	db, err := initializers.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := initializers.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &initializers.Config{
		JWTSecret:              "test-secret",
		TokenTTL:               time.Hour,
		FrontendURL:            "https://menu.example.com",
		StrictOrderTransitions: true,
	}
	hub := realtime.NewHub(8)
	t.Cleanup(hub.Close)

	h := &controllers.Handler{
		DB:       db,
		Config:   cfg,
		Orders:   services.NewOrderService(db, hub, true),
		Payments: services.NewPaymentService(db, gateways.NewRegistry(gateways.COD{}), hub, cfg.FrontendURL),
		Hub:      hub,
	}
	engine := gin.New()
	routes.Register(engine, h)
	return &testEnv{engine: engine, handler: h, hub: hub}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

type seeded struct {
	ownerToken   string
	restaurantID uint
	itemA        uint
	itemB        uint
}

// seedRestaurant signs up an owner and builds a five table restaurant with
// item A at 100 and item B at 50.
func (e *testEnv) seedRestaurant(t *testing.T) seeded {
	t.Helper()

	w := e.do(t, http.MethodPost, "/auth/signup", gin.H{
		"fullname": "Sita Shrestha",
		"email":    "owner@example.com",
		"password": "supersecret",
	}, "")
	expectStatus(t, w, http.StatusCreated)
	var signup struct {
		Token string `json:"token"`
	}
	decode(t, w, &signup)

	w = e.do(t, http.MethodPost, "/restaurant", gin.H{
		"name":       "Himalayan Kitchen",
		"tableCount": 5,
		"openingHours": []gin.H{
			{"day": "mon", "open": "10:00", "close": "22:00"},
		},
	}, signup.Token)
	expectStatus(t, w, http.StatusCreated)
	var created struct {
		Restaurant models.Restaurant `json:"restaurant"`
		Token      string            `json:"token"`
	}
	decode(t, w, &created)
	if len(created.Restaurant.Tables) != 5 {
		t.Fatalf("expected 5 tables, got %d", len(created.Restaurant.Tables))
	}

	w = e.do(t, http.MethodPost, "/categories", gin.H{"name": "Mains"}, created.Token)
	expectStatus(t, w, http.StatusCreated)
	var category models.Category
	decode(t, w, &category)

	item := func(name string, price float64) uint {
		w := e.do(t, http.MethodPost, "/menu-items", gin.H{"categoryId": category.ID, "name": name, "price": price}, created.Token)
		expectStatus(t, w, http.StatusCreated)
		var m models.MenuItem
		decode(t, w, &m)
		return m.ID
	}

	return seeded{
		ownerToken:   created.Token,
		restaurantID: created.Restaurant.ID,
		itemA:        item("Momo", 100),
		itemB:        item("Lassi", 50),
	}
}

func (e *testEnv) placeOrder(t *testing.T, s seeded, table int) models.Order {
	t.Helper()
	w := e.do(t, http.MethodPost, "/orders", gin.H{
		"restaurantId": s.restaurantID,
		"tableNumber":  table,
		"items": []gin.H{
			{"menuItemId": s.itemA, "quantity": 2},
			{"menuItemId": s.itemB, "quantity": 1},
		},
	}, "")
	expectStatus(t, w, http.StatusCreated)
	var order models.Order
	decode(t, w, &order)
	return order
}

func (e *testEnv) chefToken(t *testing.T, restaurantID uint) string {
	t.Helper()
	chef := models.User{Fullname: "Ram", Email: "chef@example.com", Password: "x", Role: models.RoleChef, RestaurantID: &restaurantID}
	if err := e.handler.DB.Create(&chef).Error; err != nil {
		t.Fatalf("create chef: %v", err)
	}
	token, err := middlewares.GenerateToken(chef, e.handler.Config.JWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}

func TestOrderFlow(t *testing.T) {
	e := newTestEnv(t)
	s := e.seedRestaurant(t)

	w := e.do(t, http.MethodGet, fmt.Sprintf("/public/restaurants/%d/menu", s.restaurantID), nil, "")
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), "Momo") {
		t.Fatalf("menu missing item: %s", w.Body.String())
	}

	order := e.placeOrder(t, s, 4)
	if order.TotalAmount != 250 || order.Status != models.OrderPending {
		t.Fatalf("unexpected order: %+v", order)
	}

	w = e.do(t, http.MethodPost, "/orders", gin.H{
		"restaurantId": s.restaurantID,
		"tableNumber":  4,
		"items":        []gin.H{{"menuItemId": s.itemB, "quantity": 1}},
	}, "")
	expectStatus(t, w, http.StatusConflict)

	w = e.do(t, http.MethodPost, fmt.Sprintf("/orders/%d/items", order.ID), gin.H{
		"items": []gin.H{{"menuItemId": s.itemA, "quantity": 1}},
	}, "")
	expectStatus(t, w, http.StatusOK)
	var updated models.Order
	decode(t, w, &updated)
	if updated.TotalAmount != 350 {
		t.Fatalf("expected total 350, got %v", updated.TotalAmount)
	}

	w = e.do(t, http.MethodGet, fmt.Sprintf("/orders/active?restaurantId=%d&tableNumber=4", s.restaurantID), nil, "")
	expectStatus(t, w, http.StatusOK)

	for _, status := range []string{"accepted", "preparing", "completed"} {
		w = e.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": status}, s.ownerToken)
		expectStatus(t, w, http.StatusOK)
	}

	w = e.do(t, http.MethodGet, fmt.Sprintf("/orders/active?restaurantId=%d&tableNumber=4", s.restaurantID), nil, "")
	expectStatus(t, w, http.StatusNotFound)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/orders/%d/history", order.ID), nil, s.ownerToken)
	expectStatus(t, w, http.StatusOK)
	var history struct {
		History      []models.OrderStatusHistory `json:"history"`
		NextStatuses []models.OrderStatus        `json:"nextStatuses"`
	}
	decode(t, w, &history)
	if len(history.History) != 4 {
		t.Fatalf("expected 4 history rows, got %d", len(history.History))
	}
	if len(history.NextStatuses) != 1 || history.NextStatuses[0] != models.OrderPaid {
		t.Fatalf("expected paid as the only next status, got %v", history.NextStatuses)
	}

	w = e.do(t, http.MethodGet, "/orders?status=completed", nil, s.ownerToken)
	expectStatus(t, w, http.StatusOK)
	var list struct {
		Orders []models.Order `json:"orders"`
	}
	decode(t, w, &list)
	if len(list.Orders) != 1 {
		t.Fatalf("expected 1 completed order, got %d", len(list.Orders))
	}

	e.placeOrder(t, s, 4)
}

func TestOrderValidation(t *testing.T) {
	e := newTestEnv(t)
	s := e.seedRestaurant(t)

	w := e.do(t, http.MethodPost, "/orders", gin.H{"restaurantId": s.restaurantID, "tableNumber": 1, "items": []gin.H{}}, "")
	expectStatus(t, w, http.StatusBadRequest)
	var body struct {
		Fields map[string]string `json:"fields"`
	}
	decode(t, w, &body)
	if _, ok := body.Fields["Items"]; !ok {
		t.Fatalf("expected an Items field error, got %v", body.Fields)
	}

	order := e.placeOrder(t, s, 1)
	w = e.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": "served"}, s.ownerToken)
	expectStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": "completed"}, s.ownerToken)
	expectStatus(t, w, http.StatusConflict)

	w = e.do(t, http.MethodGet, "/orders/999", nil, "")
	expectStatus(t, w, http.StatusNotFound)
}

func TestStaffPermissions(t *testing.T) {
	e := newTestEnv(t)
	s := e.seedRestaurant(t)
	chef := e.chefToken(t, s.restaurantID)
	order := e.placeOrder(t, s, 2)

	w := e.do(t, http.MethodGet, "/orders", nil, "")
	expectStatus(t, w, http.StatusUnauthorized)

	w = e.do(t, http.MethodPost, "/categories", gin.H{"name": "Drinks"}, chef)
	expectStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": "completed", "force": true}, chef)
	expectStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/orders/%d/status", order.ID), gin.H{"status": "accepted"}, chef)
	expectStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/menu-items/%d/availability", s.itemA), gin.H{"available": false}, chef)
	expectStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodPost, "/orders", gin.H{
		"restaurantId": s.restaurantID,
		"tableNumber":  3,
		"items":        []gin.H{{"menuItemId": s.itemA, "quantity": 1}},
	}, "")
	expectStatus(t, w, http.StatusBadRequest)
}

func TestCashPayment(t *testing.T) {
	e := newTestEnv(t)
	s := e.seedRestaurant(t)
	order := e.placeOrder(t, s, 1)

	w := e.do(t, http.MethodPost, "/payments/checkout", gin.H{"orderId": order.ID, "method": "BITCOIN"}, "")
	expectStatus(t, w, http.StatusBadRequest)

	w = e.do(t, http.MethodPost, "/payments/checkout", gin.H{"orderId": order.ID, "method": "COD"}, "")
	expectStatus(t, w, http.StatusOK)
	var checkout services.Checkout
	decode(t, w, &checkout)
	if checkout.Payment == nil || checkout.Payment.Status != models.TransactionUnpaid {
		t.Fatalf("unexpected checkout: %s", w.Body.String())
	}

	w = e.do(t, http.MethodPatch, fmt.Sprintf("/payments/%d/status", checkout.Payment.ID), gin.H{"status": "PAID"}, s.ownerToken)
	expectStatus(t, w, http.StatusOK)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil, "")
	expectStatus(t, w, http.StatusOK)
	var paid models.Order
	decode(t, w, &paid)
	if paid.PaymentStatus != models.PaymentPaid || paid.Payment.Data() == nil {
		t.Fatalf("expected paid order with snapshot, got %s", w.Body.String())
	}

	w = e.do(t, http.MethodPost, "/payments/checkout", gin.H{"orderId": order.ID, "method": "COD"}, "")
	expectStatus(t, w, http.StatusConflict)
}

type streamRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func (r *streamRecorder) CloseNotify() <-chan bool { return r.closed }

func TestStreamOrder(t *testing.T) {
	e := newTestEnv(t)
	s := e.seedRestaurant(t)
	order := e.placeOrder(t, s, 1)
	room := realtime.OrderRoom(order.ID)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/realtime/orders/%d", order.ID), nil)
	rec := &streamRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
	done := make(chan struct{})
	go func() {
		e.engine.ServeHTTP(rec, req)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for e.hub.Subscribers(room) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	e.hub.Publish(room, realtime.EventOrderUpdate, gin.H{"status": "accepted"})
	// closing the hub ends the stream after the buffered event is written
	e.hub.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not finish")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "ready") || !strings.Contains(body, realtime.EventOrderUpdate) || !strings.Contains(body, "accepted") {
		t.Fatalf("unexpected stream body: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestStreamUnavailableAfterShutdown(t *testing.T) {
	e := newTestEnv(t)
	s := e.seedRestaurant(t)
	order := e.placeOrder(t, s, 1)
	e.hub.Close()

	w := e.do(t, http.MethodGet, fmt.Sprintf("/realtime/orders/%d", order.ID), nil, "")
	expectStatus(t, w, http.StatusServiceUnavailable)
	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	if body.Message == "" || strings.Contains(body.Message, realtime.ErrHubClosed.Error()) {
		t.Fatalf("expected a fixed client message, got %q", body.Message)
	}
}

func TestStreamRestaurantRequiresOwnRestaurant(t *testing.T) {
	e := newTestEnv(t)
	s := e.seedRestaurant(t)

	w := e.do(t, http.MethodGet, fmt.Sprintf("/realtime/restaurants/%d", s.restaurantID+1), nil, s.ownerToken)
	expectStatus(t, w, http.StatusForbidden)

	w = e.do(t, http.MethodGet, fmt.Sprintf("/realtime/restaurants/%d?token=bogus", s.restaurantID), nil, "")
	expectStatus(t, w, http.StatusUnauthorized)

	w = e.do(t, http.MethodGet, "/realtime/orders/999", nil, "")
	expectStatus(t, w, http.StatusNotFound)
}
