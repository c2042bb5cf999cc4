package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"shoplens-backend/config"
)

func initApp() *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/init/admin", HandleInitializeAdmin)
	return app
}

func setInitToken(t *testing.T, token string) {
	t.Helper()
	prev := config.AppConfig.InitToken
	config.AppConfig.InitToken = token
	t.Cleanup(func() { config.AppConfig.InitToken = prev })
}

func TestHandleInitializeAdmin_UnconfiguredTokenIs403(t *testing.T) {
	setInitToken(t, "")
	app := initApp()

	req := httptest.NewRequest("POST", "/api/v1/init/admin", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app test error: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("expected 403 when INIT_TOKEN is not configured, got %d", resp.StatusCode)
	}
}

func TestHandleInitializeAdmin_RejectsWrongToken(t *testing.T) {
	setInitToken(t, "super-secret-init-token")
	app := initApp()

	req := httptest.NewRequest("POST", "/api/v1/init/admin", nil)
	req.Header.Set("X-Init-Token", "guessed-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app test error: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("expected 401 for a wrong init token, got %d", resp.StatusCode)
	}
}

func TestHandleInitializeAdmin_RejectsMalformedBody(t *testing.T) {
	setInitToken(t, "super-secret-init-token")
	app := initApp()

	req := httptest.NewRequest("POST", "/api/v1/init/admin", strings.NewReader(`{"name": 42`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Init-Token", "super-secret-init-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app test error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 for a malformed body, got %d", resp.StatusCode)
	}
}

func TestHandleInitializeAdmin_RejectsMissingFields(t *testing.T) {
	setInitToken(t, "super-secret-init-token")
	app := initApp()

	req := httptest.NewRequest("POST", "/api/v1/init/admin", strings.NewReader(`{"name": "Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Init-Token", "super-secret-init-token")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app test error: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400 when required fields are missing, got %d", resp.StatusCode)
	}
}
