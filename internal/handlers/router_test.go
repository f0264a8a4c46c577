package handlers

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestNewRouterDefaultMounts(t *testing.T) {
	router := NewRouter()

	cases := []struct {
		method string
		path   string
		status int
		code   string
	}{
		{http.MethodGet, "/api/v1/public/quotes", http.StatusNotImplemented, "not_implemented"},
		{http.MethodGet, "/api/v1/me/estimates", http.StatusNotImplemented, "not_implemented"},
		{http.MethodPost, "/api/v1/quote-requests", http.StatusNotImplemented, "not_implemented"},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound, "route_not_found"},
		{http.MethodGet, "/nope", http.StatusNotFound, "route_not_found"},
	}
	for _, tc := range cases {
		rr := doRequest(t, router, tc.method, tc.path, "", "")
		if rr.Code != tc.status {
			t.Fatalf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, rr.Code)
		}
		if body := decodeBody[errorBody](t, rr); body.Error != tc.code {
			t.Fatalf("%s %s: expected code %s, got %+v", tc.method, tc.path, tc.code, body)
		}
	}

	rr := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if rr.Code != http.StatusOK || rr.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("expected JSON healthz, got %d %s", rr.Code, rr.Header().Get("Content-Type"))
	}
}

func TestNewRouterMethodNotAllowed(t *testing.T) {
	router := NewRouter(WithPublicRoutes(func(r chi.Router) {
		r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	}))

	if rr := doRequest(t, router, http.MethodGet, "/api/v1/public/ping", "", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	rr := doRequest(t, router, http.MethodDelete, "/api/v1/public/ping", "", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}
