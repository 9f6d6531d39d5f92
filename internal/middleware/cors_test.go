package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"land-backend/internal/config"
)

func corsConfig(origins ...string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.CorsAllowedOrigins = origins
	cfg.Server.CorsAllowedMethods = []string{"GET", "POST"}
	cfg.Server.CorsAllowedHeaders = []string{"Authorization", "Content-Type"}
	return cfg
}

func TestCORSPreflightForListedOrigin(t *testing.T) {
	h := NewCORS(corsConfig("https://land.example.com"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/api/customers", nil)
	req.Header.Set("Origin", "https://land.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://land.example.com" {
		t.Fatalf("expected origin echoed, got %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatal("expected credentials allowed for explicit origin")
	}
}

func TestCORSRejectsUnlistedOrigin(t *testing.T) {
	h := NewCORS(corsConfig("https://land.example.com"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
}

func TestAllowsAnyOrigin(t *testing.T) {
	if !allowsAnyOrigin(nil) || !allowsAnyOrigin([]string{"https://a", "*"}) {
		t.Fatal("expected wildcard detection")
	}
	if allowsAnyOrigin([]string{"https://a"}) {
		t.Fatal("explicit list reported as wildcard")
	}
}
