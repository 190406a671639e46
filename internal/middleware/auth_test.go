package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mdemena/lists-sharing-sub000/internal/auth"
	"github.com/mdemena/lists-sharing-sub000/internal/models"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"standard", "Bearer abc.def", "abc.def"},
		{"lowercase scheme", "bearer abc", "abc"},
		{"extra spaces", "  Bearer   abc  ", "abc"},
		{"basic auth", "Basic dXNlcjpwYXNz", ""},
		{"no scheme", "abc", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BearerToken(tt.header); got != tt.want {
				t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

type fakeAuth struct {
	user *models.User
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*models.User, *auth.Claims, error) {
	if token != "good" {
		return nil, nil, errors.New("bad token")
	}
	return f.user, &auth.Claims{UserID: f.user.ID}, nil
}

func newTestApp(m *AuthMiddleware) *fiber.App {
	app := fiber.New()
	handler := func(c fiber.Ctx) error {
		if u := User(c); u != nil {
			return c.SendString(u.Email)
		}
		return c.SendString("anonymous")
	}
	app.Get("/required", m.RequireAuth, handler)
	app.Get("/optional", m.OptionalAuth, handler)
	return app
}

func do(t *testing.T, app *fiber.App, path, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(&fakeAuth{user: &models.User{ID: uuid.New(), Email: "ana@example.com"}})
	app := newTestApp(m)

	status, body := do(t, app, "/required", "Bearer good")
	if status != http.StatusOK || body != "ana@example.com" {
		t.Errorf("valid token: got %d %q", status, body)
	}

	status, body = do(t, app, "/required", "")
	if status != http.StatusUnauthorized {
		t.Errorf("missing token: status = %d, want 401", status)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(body), &payload); err != nil || payload["error"] == "" {
		t.Errorf("missing token: body = %q, want JSON error", body)
	}

	status, _ = do(t, app, "/required", "Bearer bad")
	if status != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", status)
	}
}

func TestOptionalAuth(t *testing.T) {
	m := NewAuthMiddleware(&fakeAuth{user: &models.User{ID: uuid.New(), Email: "ana@example.com"}})
	app := newTestApp(m)

	status, body := do(t, app, "/optional", "")
	if status != http.StatusOK || body != "anonymous" {
		t.Errorf("no token: got %d %q", status, body)
	}

	status, body = do(t, app, "/optional", "Bearer good")
	if status != http.StatusOK || body != "ana@example.com" {
		t.Errorf("valid token: got %d %q", status, body)
	}

	status, _ = do(t, app, "/optional", "Bearer bad")
	if status != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", status)
	}
}
