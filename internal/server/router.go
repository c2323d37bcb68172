// Package server assembles the HTTP API and runs it until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/telhawk-systems/opsboard/common/config"
	"github.com/telhawk-systems/opsboard/common/middleware"
	"github.com/telhawk-systems/opsboard/internal/handlers"
)

// RouterConfig holds dependencies needed to configure routes
type RouterConfig struct {
	DashboardHandler *handlers.DashboardHandler
	AllowedOrigins   []string
	Logger           *slog.Logger
}

// NewRouter constructs the API handler with middleware applied.
func NewRouter(cfg RouterConfig) http.Handler {
	h := cfg.DashboardHandler
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.HandleFunc("GET /api/v1/dashboard", h.Dashboard)
	mux.HandleFunc("GET /api/v1/overview", h.Overview)
	mux.HandleFunc("GET /api/v1/events", h.Events)

	mux.HandleFunc("GET /api/v1/anomalies", h.Anomalies)
	mux.HandleFunc("GET /api/v1/anomalies/heatmap", h.Heatmap)

	mux.HandleFunc("GET /api/v1/volume", h.Volume)
	mux.HandleFunc("PUT /api/v1/volume/range", h.SetVolumeRange)

	mux.HandleFunc("GET /api/v1/refresh", h.GetRefresh)
	mux.HandleFunc("PUT /api/v1/refresh", h.UpdateRefresh)
	mux.HandleFunc("POST /api/v1/refresh", h.ManualRefresh)

	mux.HandleFunc("GET /api/v1/stream", h.Stream)
	mux.HandleFunc("POST /api/v1/stream/pause", h.PauseStream)
	mux.HandleFunc("POST /api/v1/stream/resume", h.ResumeStream)
	mux.HandleFunc("POST /api/v1/stream/connect", h.ConnectStream)
	mux.HandleFunc("POST /api/v1/stream/disconnect", h.DisconnectStream)

	mux.HandleFunc("GET /api/v1/notifications", h.Notifications)
	mux.HandleFunc("DELETE /api/v1/notifications/{id}", h.DeleteNotification)

	mux.Handle("GET /metrics", promhttp.Handler())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})

	// RequestID -> AccessLog -> CORS -> Security Headers -> Routes
	handler := middleware.SecurityHeaders(mux)
	handler = corsHandler.Handler(handler)
	handler = middleware.AccessLog(cfg.Logger)(handler)
	return middleware.RequestID(handler)
}

// New creates an HTTP server for handler using the server config.
func New(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// ShutdownTimeout bounds the graceful drain in Run.
const ShutdownTimeout = 10 * time.Second

// Run serves on ln until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, srv *http.Server, ln net.Listener, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
