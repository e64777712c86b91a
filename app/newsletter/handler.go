package newsletter

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/models"
)

//go:embed templates/unsubscribe.html
var templateFS embed.FS

var unsubscribeTmpl = template.Must(template.ParseFS(templateFS, "templates/unsubscribe.html"))

type Subscriptions interface {
	Subscribe(ctx context.Context, email, name string) (*models.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

// Limiter is consulted once per subscribe request, keyed by client IP.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Handler struct {
	svc     Subscriptions
	limiter Limiter
	log     logrus.FieldLogger
}

func NewHandler(svc Subscriptions, limiter Limiter, log logrus.FieldLogger) *Handler {
	return &Handler{svc: svc, limiter: limiter, log: log}
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	ok, err := h.limiter.Allow(r.Context(), api.ClientIP(r))
	if err != nil {
		// Fail open: a limiter outage must not close the signup form.
		h.log.WithError(err).Warn("rate limiter unavailable")
	} else if !ok {
		api.ErrorResponse(w, http.StatusTooManyRequests, "Too many requests, please try again later")
		return
	}

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	_, err = h.svc.Subscribe(r.Context(), req.Email, req.Name)
	switch {
	case err == nil:
		api.MessageResponse(w, http.StatusCreated, "Successfully subscribed to newsletter")
	case errors.Is(err, ErrInvalidEmail):
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid email address")
	case errors.Is(err, ErrAlreadySubscribed):
		api.ErrorResponse(w, http.StatusBadRequest, "Email already subscribed")
	default:
		h.log.WithError(err).Error("newsletter subscription error")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to subscribe to newsletter")
	}
}

func (h *Handler) HandleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("email")
	if addr == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Email is required")
		return
	}

	err := h.svc.Unsubscribe(r.Context(), addr)
	switch {
	case err == nil:
		api.MessageResponse(w, http.StatusOK, "Successfully unsubscribed from newsletter")
	case errors.Is(err, models.ErrSubscriberNotFound):
		api.ErrorResponse(w, http.StatusNotFound, "Email is not subscribed")
	default:
		h.log.WithError(err).Error("newsletter unsubscribe error")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to unsubscribe from newsletter")
	}
}

type unsubscribePage struct {
	Email   string
	Title   string
	Message string
}

// HandleUnsubscribePage is the landing page for the link in every email footer.
func (h *Handler) HandleUnsubscribePage(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("email")
	page := unsubscribePage{Email: addr}
	status := http.StatusOK

	if addr == "" {
		status = http.StatusBadRequest
		page.Title = "Missing email"
		page.Message = "The unsubscribe link is incomplete."
	} else {
		err := h.svc.Unsubscribe(r.Context(), addr)
		switch {
		case err == nil:
			page.Title = "You have been unsubscribed"
			page.Message = "You will no longer receive our newsletter."
		case errors.Is(err, models.ErrSubscriberNotFound):
			status = http.StatusNotFound
			page.Title = "Not subscribed"
			page.Message = "This address is not on our mailing list."
		default:
			h.log.WithError(err).Error("newsletter unsubscribe error")
			status = http.StatusInternalServerError
			page.Title = "Something went wrong"
			page.Message = "Failed to unsubscribe from newsletter. Please try again later."
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := unsubscribeTmpl.Execute(w, page); err != nil {
		h.log.WithError(err).Error("failed to render unsubscribe page")
	}
}
