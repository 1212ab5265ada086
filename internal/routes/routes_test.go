package routes

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tokengrid/tokengrid/internal/config"
	"github.com/tokengrid/tokengrid/internal/logging"
)

func devConfig() config.Config {
	return config.Config{
		AppName:        "tokengrid-test",
		AppEnv:         "development",
		JWTSecret:      "test-secret",
		JWTExpiry:      time.Hour,
		FeeRatio:       0.05,
		TokenValue:     1.0,
		IdempotencyTTL: time.Minute,
	}
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: devConfig(), Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body, bearer string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	decoded := map[string]any{}
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestSaleAndRedemptionFlow(t *testing.T) {
	app := setupApp(t)

	status, reg := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register",
		`{"email":"seller@example.com","password":"correct-horse"}`, "")
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%v)", status, reg)
	}
	sellerID, _ := reg["user_id"].(string)
	bearer, _ := reg["token"].(string)
	if sellerID == "" || bearer == "" {
		t.Fatalf("register response missing user_id/token: %v", reg)
	}

	saleBody := fmt.Sprintf(`{"sellerId":%q,"totalFiatPaid":100,"transactionId":"sale-1"}`, sellerID)
	status, sale := doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/complete", saleBody, "")
	if status != http.StatusOK {
		t.Fatalf("complete sale: expected 200, got %d (%v)", status, sale)
	}
	if sale["feeCharged"] != "5.00" {
		t.Fatalf("expected feeCharged 5.00, got %v", sale["feeCharged"])
	}
	if credited, _ := sale["tokensCredited"].(float64); credited != 95 {
		t.Fatalf("expected 95 tokens credited, got %v", sale["tokensCredited"])
	}

	status, redeem := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/redeem",
		`{"tokensToRedeem":40}`, bearer)
	if status != http.StatusOK {
		t.Fatalf("redeem: expected 200, got %d (%v)", status, redeem)
	}
	if redeem["fiatRedeemed"] != "40.00" {
		t.Fatalf("expected fiatRedeemed 40.00, got %v", redeem["fiatRedeemed"])
	}

	status, balance := doJSON(t, app, fiber.MethodGet, "/api/v1/wallet/balance", "", bearer)
	if status != http.StatusOK {
		t.Fatalf("balance: expected 200, got %d (%v)", status, balance)
	}
	if got, _ := balance["token_balance"].(float64); got != 55 {
		t.Fatalf("expected balance 55, got %v", balance["token_balance"])
	}

	status, history := doJSON(t, app, fiber.MethodGet, "/api/v1/wallet/history", "", bearer)
	if status != http.StatusOK {
		t.Fatalf("history: expected 200, got %d", status)
	}
	entries, _ := history["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(entries))
	}
}

func TestCompleteSaleRejectsInvalidInput(t *testing.T) {
	app := setupApp(t)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/complete",
		`{"sellerId":"someone","totalFiatPaid":0}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", status, body)
	}
	if body["error"] != "invalid_input" {
		t.Fatalf("expected invalid_input, got %v", body["error"])
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/transactions/complete",
		`{"totalFiatPaid":50}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sellerId, got %d", status)
	}
}

func TestRedeemRequiresAuth(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/redeem",
		`{"tokensToRedeem":10}`, "")
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestRedeemInsufficientBalance(t *testing.T) {
	app := setupApp(t)

	status, reg := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register",
		`{"email":"poor@example.com","password":"correct-horse"}`, "")
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", status)
	}
	bearer, _ := reg["token"].(string)

	status, body := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/redeem",
		`{"tokensToRedeem":10}`, bearer)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%v)", status, body)
	}
	if body["error"] != "insufficient_balance" {
		t.Fatalf("expected insufficient_balance, got %v", body["error"])
	}

	status, rejected := doJSON(t, app, fiber.MethodPost, "/api/v1/wallet/redeem",
		`{"tokensToRedeem":-5}`, bearer)
	if status != http.StatusBadRequest || rejected["error"] != "invalid_input" {
		t.Fatalf("expected invalid_input 400, got %d (%v)", status, rejected)
	}
}

func TestLoginFlow(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/register",
		`{"email":"login@example.com","password":"correct-horse"}`, "")
	if status != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", status)
	}

	status, login := doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
		`{"email":"login@example.com","password":"correct-horse"}`, "")
	if status != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%v)", status, login)
	}
	if tok, _ := login["token"].(string); tok == "" {
		t.Fatalf("login response missing token: %v", login)
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/api/v1/auth/login",
		`{"email":"login@example.com","password":"wrong-password"}`, "")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad credentials, got %d", status)
	}
}
