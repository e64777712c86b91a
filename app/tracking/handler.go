// Package tracking records outbound clicks on affiliate links.
package tracking

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/models"
)

type ProductFinder interface {
	GetByID(id string) (*models.Product, error)
}

// Enqueuer accepts click events for asynchronous persistence.
type Enqueuer interface {
	Enqueue(evt ClickEvent) bool
}

type Handler struct {
	recorder ClickRecorder
	products ProductFinder
	queue    Enqueuer
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewHandler(recorder ClickRecorder, products ProductFinder, queue Enqueuer, log logrus.FieldLogger) *Handler {
	return &Handler{
		recorder: recorder,
		products: products,
		queue:    queue,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

type trackClickRequest struct {
	ProductID string `json:"productId"`
}

// HandleTrackClick records a click synchronously.
func (h *Handler) HandleTrackClick(w http.ResponseWriter, r *http.Request) {
	var req trackClickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	if _, err := uuid.Parse(req.ProductID); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	click := &models.ClickTracking{
		ProductID: req.ProductID,
		IPAddress: api.ClientIP(r),
		UserAgent: userAgent(r),
		ClickedAt: h.now(),
	}
	if err := h.recorder.CreateClick(click); err != nil {
		h.log.WithError(err).WithField("product_id", req.ProductID).Error("failed to track click")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to track click")
		return
	}

	api.OKResponse(w, map[string]bool{"success": true})
}

// HandleRedirect sends the visitor to the product's affiliate URL and queues
// the click. Persistence never delays or fails the redirect.
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		http.NotFound(w, r)
		return
	}

	product, err := h.products.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			http.NotFound(w, r)
			return
		}
		h.log.WithError(err).WithField("product_id", id).Error("failed to load product for redirect")
		http.Error(w, "Failed to load product", http.StatusInternalServerError)
		return
	}

	h.queue.Enqueue(ClickEvent{
		ProductID: product.ID,
		IPAddress: api.ClientIP(r),
		UserAgent: userAgent(r),
		At:        h.now(),
	})

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, product.AffiliateURL(), http.StatusFound)
}

func userAgent(r *http.Request) string {
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return "unknown"
}
