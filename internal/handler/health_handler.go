package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const (
	serviceName    = "Qmate API"
	serviceVersion = "1.0.0"
)

type healthChecker interface {
	Health(ctx context.Context) error
}

type HealthHandler struct {
	db          healthChecker
	environment string
}

func NewHealthHandler(db healthChecker, environment string) *HealthHandler {
	return &HealthHandler{db: db, environment: environment}
}

func (h *HealthHandler) Root(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{
		"message": "Welcome to " + serviceName,
		"version": serviceVersion,
		"docs":    "/docs",
	})
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	database := "ok"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.Health(ctx); err != nil {
			slog.Warn("database health check failed", "error", err)
			status = http.StatusServiceUnavailable
			database = "unavailable"
		}
	}

	writeSuccess(w, status, map[string]string{
		"status":      statusLabel(status),
		"environment": h.environment,
		"database":    database,
	})
}

func statusLabel(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "degraded"
}
