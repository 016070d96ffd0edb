package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/solatis/cratekeeper/internal/core/config"
)

func newTestServer(t *testing.T) *HTTPServer {
	t.Helper()
	s, err := NewHTTPServer(&config.ConsoleConfig{
		Host:           "127.0.0.1",
		Port:           0,
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		RequestTimeout: time.Second,
		Enabled:        true,
	}, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	s := newTestServer(t)

	t.Run("assigns an id", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if w.Header().Get(requestIDHeader) == "" {
			t.Error("no request id on response")
		}
	})

	t.Run("keeps a caller-supplied id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		r.Header.Set(requestIDHeader, "caller-id")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, r)
		if got := w.Header().Get(requestIDHeader); got != "caller-id" {
			t.Errorf("request id = %q", got)
		}
	})
}

func TestRecoverMiddleware(t *testing.T) {
	s := newTestServer(t)
	s.router.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, expected 500", w.Code)
	}
}

func TestMountService(t *testing.T) {
	s := newTestServer(t)
	var suffixes []string
	s.MountService("things", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		suffixes = append(suffixes, r.URL.Path)
	}))

	for _, target := range []string{"/bin/things", "/bin/things/a/b/c"} {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d", target, w.Code)
		}
	}
	if len(suffixes) != 2 {
		t.Errorf("handler invocations = %d, expected 2", len(suffixes))
	}
}
