package web

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/arith/pkg/store"
)

func setupTestApp(t *testing.T) (*fiber.App, *store.Store) {
	t.Helper()
	s := store.New(100)
	h := New(s, 64)
	app := fiber.New()
	h.Register(app)
	return app, s
}

func get(t *testing.T, app *fiber.App, path string) string {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	return string(body)
}

func TestDashboardEmpty(t *testing.T) {
	app, _ := setupTestApp(t)

	html := get(t, app, "/ui")
	if !strings.Contains(html, "Dashboard") {
		t.Error("expected Dashboard in response")
	}
	if !strings.Contains(html, "No evaluations yet") {
		t.Error("expected empty state message")
	}
}

func TestDashboardWithData(t *testing.T) {
	app, s := setupTestApp(t)

	s.Record("http", "2 ^ 3 ^ 2", 512, nil)
	s.Record("grpc", "1.5 + 2.25", 3.75, nil)

	html := get(t, app, "/ui")
	for _, want := range []string{"2 ^ 3 ^ 2", "512", "3.75", "2 succeeded", "0 failed", "grpc"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in response", want)
		}
	}
}

func TestEvaluateForm(t *testing.T) {
	app, s := setupTestApp(t)

	form := url.Values{"expression": {"(1 + 2"}}
	req := httptest.NewRequest("POST", "/ui/evaluate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected 302 redirect, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/ui?last=") {
		t.Fatalf("unexpected redirect %s", loc)
	}

	evs := s.List(0)
	if len(evs) != 1 || evs[0].State != store.EvaluationFailed || evs[0].Source != "web" {
		t.Fatalf("unexpected history: %+v", evs)
	}

	html := get(t, app, loc)
	if !strings.Contains(html, "expected &#39;)&#39;") {
		t.Error("expected the parse error to be shown")
	}
}

func TestEvaluateFormEmpty(t *testing.T) {
	app, s := setupTestApp(t)

	req := httptest.NewRequest("POST", "/ui/evaluate", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 || resp.Header.Get("Location") != "/ui" {
		t.Fatalf("expected redirect to /ui, got %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	if s.Len() != 0 {
		t.Error("empty form must not be recorded")
	}
}

func TestRootRedirect(t *testing.T) {
	app, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 302 {
		t.Fatalf("expected 302 redirect, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if loc != "/ui" {
		t.Fatalf("expected redirect to /ui, got %s", loc)
	}
}

func TestEvaluateFormTooLong(t *testing.T) {
	app, s := setupTestApp(t)

	form := url.Values{"expression": {strings.Repeat("(", 10000)}}
	req := httptest.NewRequest("POST", "/ui/evaluate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "exceeds maximum length of 64 characters") {
		t.Errorf("expected length notice in response")
	}
	if s.Len() != 0 {
		t.Errorf("rejected expression must not be recorded, got %d", s.Len())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"1 + 2", 10, "1 + 2"},
		{"1 + 2 + 3", 5, "1 + 2..."},
		{"é + ü + ö", 3, "é +..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
