package analytics

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	"pct":   func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) + "%" },
}).ParseFS(templateFS, "templates/dashboard.html"))

// DashboardProvider builds the dashboard for a window of days ending now.
type DashboardProvider interface {
	Dashboard(ctx context.Context, now time.Time, days int) (*Dashboard, error)
}

type Handler struct {
	svc DashboardProvider
	log logrus.FieldLogger
	now func() time.Time
}

func NewHandler(svc DashboardProvider, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, log: log, now: time.Now}
}

// parseDays reads ?days=, accepting 1..MaxWindowDays.
func parseDays(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return DefaultWindowDays, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > MaxWindowDays {
		return 0, false
	}
	return days, true
}

func (h *Handler) HandleJSON(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(r)
	if !ok {
		api.ErrorResponse(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	d, err := h.svc.Dashboard(r.Context(), h.now(), days)
	if err != nil {
		h.log.WithError(err).Error("failed to build analytics")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to load analytics")
		return
	}
	api.OKResponse(w, d)
}

func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context(), h.now(), DefaultWindowDays)
	if err != nil {
		h.log.WithError(err).Error("failed to build analytics")
		http.Error(w, "Failed to load analytics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, d); err != nil {
		h.log.WithError(err).Error("failed to render dashboard")
	}
}
