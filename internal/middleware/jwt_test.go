package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tokengrid/tokengrid/internal/auth"
	"github.com/tokengrid/tokengrid/internal/config"
)

func jwtTestApp(t *testing.T, cfg config.Config) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(JWTAuth(cfg))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		return c.SendString(uid)
	})
	return app
}

func TestJWTAuthBindsVerifiedUser(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	app := jwtTestApp(t, cfg)

	signed, err := auth.IssueSessionToken("user-1", []byte(cfg.JWTSecret), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signed)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := make([]byte, 32)
	n, _ := resp.Body.Read(body)
	if got := string(body[:n]); got != "user-1" {
		t.Fatalf("expected bound user-1, got %q", got)
	}
}

func TestJWTAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret"}
	app := jwtTestApp(t, cfg)

	req := httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	other, err := auth.IssueSessionToken("user-1", []byte("other-secret"), time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	req = httptest.NewRequest(fiber.MethodGet, "/whoami", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+other)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 with foreign signature, got %d", resp.StatusCode)
	}
}
