package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthzOK(t *testing.T) {
	srv := httptest.NewServer(Handler(func(context.Context) error { return nil }))
	defer srv.Close()

	res, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", res.StatusCode)
	}
}

func TestHealthzUnhealthy(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	Handler(func(context.Context) error { return errors.New("kvs down") }).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "kvs down") {
		t.Fatalf("body = %q, want cause", rec.Body.String())
	}
}

func TestStartMetricsServerDisabledWithoutPort(t *testing.T) {
	if srv := StartMetricsServer("", nil, nil); srv != nil {
		t.Fatal("expected nil server when port is empty")
	}
}
