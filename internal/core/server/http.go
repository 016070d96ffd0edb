// Package server provides HTTP server lifecycle management for the console.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/solatis/cratekeeper/internal/core/config"
	"github.com/solatis/cratekeeper/internal/types"
)

// HTTPServer manages the console HTTP server lifecycle.
type HTTPServer struct {
	server *http.Server
	router *mux.Router
	config *config.ConsoleConfig
	log    *slog.Logger
}

// NewHTTPServer creates the server with its middleware chain and health route.
// Console endpoints are added with MountService before Start.
func NewHTTPServer(cfg *config.ConsoleConfig, logger *slog.Logger) (*HTTPServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	router := mux.NewRouter()
	router.Use(recoverMiddleware(logger))
	router.Use(requestIDMiddleware)
	router.Use(logMiddleware(logger))

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	s := &HTTPServer{
		router: router,
		config: cfg,
		log:    logger,
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      http.TimeoutHandler(router, cfg.RequestTimeout, "request timed out"),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// MountService binds a console endpoint under /bin/{service} with suffix
// capture, the route shape the resource locator depends on. Both the bare
// route and the suffixed route are registered so /bin/users and
// /bin/users/home/users/jane reach the same handler.
func (s *HTTPServer) MountService(service string, h http.Handler) {
	base := "/bin/" + service
	s.router.Handle(base, h)
	s.router.Handle(base+"/{suffix:.*}", h)
}

// Start binds the listener and serves requests.
// Blocks until Shutdown is called or the listener fails.
func (s *HTTPServer) Start(ctx context.Context) error {
	s.log.Info("console listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve on %s: %w", s.server.Addr, err)
	}
	return nil
}

// Shutdown gracefully stops the server with a 30-second timeout.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// requestIDHeader carries the correlation ID on responses and into logs.
const requestIDHeader = "X-Request-Id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = types.NewRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func logMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", w.Header().Get(requestIDHeader),
				"duration", time.Since(start))
		})
	}
}

func recoverMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
