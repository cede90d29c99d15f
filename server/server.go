// Package server exposes the tracker over HTTP: read-only views of the last
// published state and the two reset commands.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pthm-cable/goldhelper/plugin"
)

// Controller is the part of plugin.Plugin the server needs.
type Controller interface {
	View() plugin.View
	ResetAll(ctx context.Context) error
	ResetProfitabilityData(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	ctrl         Controller
	resetTimeout time.Duration
	logger       *slog.Logger
}

// NewHandler creates a handler backed by ctrl.
func NewHandler(ctrl Controller, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{ctrl: ctrl, resetTimeout: 5 * time.Second, logger: logger}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	e.GET("/v1/state", h.GetState)
	e.GET("/v1/session", h.GetSession)
	e.GET("/v1/runs", h.ListRuns)
	e.GET("/v1/ranking", h.GetRanking)

	e.POST("/v1/reset", h.ResetAll)
	e.POST("/v1/reset/profitability", h.ResetProfitability)
}

// New builds the Echo server with logging and recovery middleware.
func New(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelDebug
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			h.logger.LogAttrs(c.Request().Context(), level, "http request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	h.RegisterRoutes(e)
	return e
}

// Serve runs e on addr until ctx is cancelled, then shuts it down.
func Serve(ctx context.Context, e *echo.Echo, addr string, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- e.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("http server stopped")
	return nil
}
