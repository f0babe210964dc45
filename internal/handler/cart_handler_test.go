package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/horus-optical/horus-backend/internal/cache"
	"github.com/horus-optical/horus-backend/internal/domain"
	"github.com/horus-optical/horus-backend/internal/middleware"
	"github.com/horus-optical/horus-backend/internal/service"
	"github.com/horus-optical/horus-backend/internal/testutil"
	"github.com/horus-optical/horus-backend/internal/websocket"
	"github.com/labstack/echo/v4"
)

// nopPublisher discards events in handler tests
type nopPublisher struct{}

func (nopPublisher) Publish(userID string, event websocket.Event) {}

// setupAuthContext injects an authenticated user into the echo context the
// way the auth middleware does
func setupAuthContext(c echo.Context, userID string) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

func newCartHandler() (*CartHandler, *testutil.MockCartRepository) {
	repo := testutil.NewMockCartRepository()
	svc := service.NewCartService(repo, cache.NoOpCache{}, nopPublisher{})
	return NewCartHandler(svc), repo
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestGetCart_EmptyDefault(t *testing.T) {
	e := echo.New()
	handler, _ := newCartHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")

	if err := handler.GetCart(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var cart domain.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Errorf("Expected empty cart, got %d items", len(cart.Items))
	}
	if cart.Version != 0 {
		t.Errorf("Expected version 0, got %d", cart.Version)
	}
}

func TestGetCart_Unauthenticated(t *testing.T) {
	e := echo.New()
	handler, _ := newCartHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.GetCart(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestPushCart_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newCartHandler()

	body := `{"items":[{"productId":"acuvue-oasys","planType":"single","name":"Acuvue Oasys","unitPrice":"29.90","quantity":2}],"baseVersion":0}`
	req := jsonRequest(http.MethodPost, "/api/v1/cart", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")

	if err := handler.PushCart(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var cart domain.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if cart.Version != 1 {
		t.Errorf("Expected version 1, got %d", cart.Version)
	}
	if cart.ItemCount != 2 {
		t.Errorf("Expected item count 2, got %d", cart.ItemCount)
	}
	if cart.Total.StringFixed(2) != "59.80" {
		t.Errorf("Expected total 59.80, got %s", cart.Total.StringFixed(2))
	}
}

func TestPushCart_MissingProductID(t *testing.T) {
	e := echo.New()
	handler, _ := newCartHandler()

	body := `{"items":[{"planType":"single","quantity":1}],"baseVersion":0}`
	req := jsonRequest(http.MethodPost, "/api/v1/cart", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")

	if err := handler.PushCart(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestPushCart_VersionConflictReturnsServerCart(t *testing.T) {
	e := echo.New()
	handler, _ := newCartHandler()

	// Seed the server at version 1
	body := `{"items":[{"productId":"acuvue-oasys","planType":"single","unitPrice":"29.90","quantity":2}],"baseVersion":0}`
	req := jsonRequest(http.MethodPost, "/api/v1/cart", body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")
	if err := handler.PushCart(c); err != nil {
		t.Fatalf("Seed push failed: %v", err)
	}

	// Push again with a stale base version
	stale := `{"items":[{"productId":"biofinity","planType":"single","unitPrice":"24.50","quantity":1}],"baseVersion":0}`
	req = jsonRequest(http.MethodPost, "/api/v1/cart", stale)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")

	if err := handler.PushCart(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if problem.Cart == nil {
		t.Fatal("Expected conflict response to carry the server cart")
	}
	if problem.Cart.Version != 1 {
		t.Errorf("Expected server cart at version 1, got %d", problem.Cart.Version)
	}
	if problem.Cart.ItemCount != 2 {
		t.Errorf("Expected server item count 2, got %d", problem.Cart.ItemCount)
	}
}

func TestMigrateCart_MergesAndIsIdempotent(t *testing.T) {
	e := echo.New()
	handler, _ := newCartHandler()

	seed := `{"items":[{"productId":"acuvue-oasys","planType":"single","unitPrice":"29.90","quantity":2}],"baseVersion":0}`
	req := jsonRequest(http.MethodPost, "/api/v1/cart", seed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")
	if err := handler.PushCart(c); err != nil {
		t.Fatalf("Seed push failed: %v", err)
	}

	guestID := uuid.New()
	migrate := `{"guestCartId":"` + guestID.String() + `","items":[{"productId":"acuvue-oasys","planType":"single","unitPrice":"29.90","quantity":3}]}`

	for attempt := 1; attempt <= 2; attempt++ {
		req = jsonRequest(http.MethodPost, "/api/v1/cart/migrate", migrate)
		rec = httptest.NewRecorder()
		c = e.NewContext(req, rec)
		setupAuthContext(c, "auth0|u1")

		if err := handler.MigrateCart(c); err != nil {
			t.Fatalf("Attempt %d: expected no error, got %v", attempt, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("Attempt %d: expected status 200, got %d", attempt, rec.Code)
		}

		var cart domain.Cart
		if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
			t.Fatalf("Attempt %d: failed to unmarshal response: %v", attempt, err)
		}
		if cart.ItemCount != 5 {
			t.Errorf("Attempt %d: expected item count 5, got %d", attempt, cart.ItemCount)
		}
	}
}

func TestMigrateCart_RequiresGuestCartID(t *testing.T) {
	e := echo.New()
	handler, _ := newCartHandler()

	req := jsonRequest(http.MethodPost, "/api/v1/cart/migrate", `{"items":[]}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")

	if err := handler.MigrateCart(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestClearCart(t *testing.T) {
	e := echo.New()
	handler, repo := newCartHandler()

	seed := `{"items":[{"productId":"acuvue-oasys","planType":"single","unitPrice":"29.90","quantity":2}],"baseVersion":0}`
	req := jsonRequest(http.MethodPost, "/api/v1/cart", seed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")
	if err := handler.PushCart(c); err != nil {
		t.Fatalf("Seed push failed: %v", err)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	setupAuthContext(c, "auth0|u1")

	if err := handler.ClearCart(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if _, ok := repo.Carts["auth0|u1"]; ok {
		t.Error("Expected cart to be deleted")
	}
}
