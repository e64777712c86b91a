// Package health exposes liveness and database diagnostics.
package health

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/app/database"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

const checkTimeout = 3 * time.Second

type Checker interface {
	Ping(ctx context.Context) error
	Now(ctx context.Context) (time.Time, error)
}

// SQLChecker runs the checks against a database/sql pool.
type SQLChecker struct {
	DB *sql.DB
}

func (c SQLChecker) Ping(ctx context.Context) error {
	return database.Ping(ctx, c.DB)
}

func (c SQLChecker) Now(ctx context.Context) (time.Time, error) {
	return database.Now(ctx, c.DB)
}

type Services struct {
	Database string `json:"database"`
	API      string `json:"api"`
}

type Status struct {
	Status       string   `json:"status"`
	Timestamp    string   `json:"timestamp"`
	Uptime       float64  `json:"uptime"`
	Environment  string   `json:"environment"`
	Services     Services `json:"services"`
	Error        string   `json:"error,omitempty"`
	ResponseTime string   `json:"responseTime"`
}

type Handler struct {
	checker     Checker
	environment string
	started     time.Time
	now         func() time.Time
	log         logrus.FieldLogger
}

func NewHandler(checker Checker, environment string, log logrus.FieldLogger) *Handler {
	return &Handler{
		checker:     checker,
		environment: environment,
		started:     time.Now(),
		now:         time.Now,
		log:         log,
	}
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	status := Status{
		Status:      StatusHealthy,
		Timestamp:   start.UTC().Format(time.RFC3339Nano),
		Uptime:      start.Sub(h.started).Seconds(),
		Environment: h.environment,
		Services:    Services{Database: StatusHealthy, API: StatusHealthy},
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()
	if err := h.checker.Ping(ctx); err != nil {
		h.log.WithError(err).Warn("database health check failed")
		status.Status = StatusUnhealthy
		status.Services.Database = StatusUnhealthy
		status.Error = "database check failed"
	}

	elapsed := fmt.Sprintf("%dms", h.now().Sub(start).Milliseconds())
	status.ResponseTime = elapsed

	code := http.StatusOK
	if status.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.Header().Set("X-Response-Time", elapsed)
	api.JSONResponse(w, code, status)
}

type testDBResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

func (h *Handler) HandleTestDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	now, err := h.checker.Now(ctx)
	if err != nil {
		h.log.WithError(err).Error("database connection test failed")
		api.JSONResponse(w, http.StatusInternalServerError, testDBResponse{
			Success: false,
			Message: "Database connection failed",
		})
		return
	}

	api.OKResponse(w, testDBResponse{
		Success: true,
		Message: "Database connection successful",
		Data:    map[string]any{"current_time": now.UTC().Format(time.RFC3339Nano)},
	})
}
