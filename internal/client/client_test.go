package client

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientRespectsEnvOverride(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/health":
			w.WriteHeader(http.StatusOK)
		case "/echo":
			w.Write([]byte(`{"ok":true}`))
		default:
			http.Error(w, `{"error":"nope"}`, http.StatusNotFound)
		}
	}))
	defer ts.Close()

	t.Setenv("JUNOMEM_URL", ts.URL)
	c := New()

	if !c.Healthy() {
		t.Fatal("daemon should report healthy")
	}

	body, err := c.Get("/echo")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body = %s", body)
	}

	if _, err := c.Post("/missing", []byte(`{}`)); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestClientUnreachableDaemon(t *testing.T) {
	t.Setenv("JUNOMEM_URL", "http://127.0.0.1:1")
	c := New()

	if c.Healthy() {
		t.Fatal("unreachable daemon reported healthy")
	}
	if _, err := c.Get("/api/memory/stats"); err == nil {
		t.Fatal("expected connection error")
	}
}
