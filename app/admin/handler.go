// Package admin serves the product management API used by the dashboard.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/app/media"
	"github.com/flowerssaints/storefront/app/scrape"
	"github.com/flowerssaints/storefront/models"
)

type ProductStore interface {
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}

type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*scrape.Metadata, error)
}

type Handler struct {
	products   ProductStore
	uploader   Uploader
	fetcher    MetadataFetcher
	defaultTag string
	log        logrus.FieldLogger
}

func NewHandler(products ProductStore, uploader Uploader, fetcher MetadataFetcher, defaultTag string, log logrus.FieldLogger) *Handler {
	return &Handler{
		products:   products,
		uploader:   uploader,
		fetcher:    fetcher,
		defaultTag: defaultTag,
		log:        log,
	}
}

type ProductInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	AmazonLink  string          `json:"amazonLink"`
	AffiliateID string          `json:"affiliateId"`
	CategoryID  string          `json:"categoryId"`
}

type ProductResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Image        string  `json:"image"`
	Price        float64 `json:"price"`
	AmazonLink   string  `json:"amazonLink"`
	AffiliateID  string  `json:"affiliateId"`
	AffiliateURL string  `json:"affiliateUrl"`
	CategoryID   string  `json:"categoryId"`
}

// validate normalizes in and returns a user-facing message for the first problem.
func (h *Handler) validate(in *ProductInput) string {
	in.Title = strings.TrimSpace(in.Title)
	in.AmazonLink = strings.TrimSpace(in.AmazonLink)
	in.AffiliateID = strings.TrimSpace(in.AffiliateID)
	if in.AffiliateID == "" {
		in.AffiliateID = h.defaultTag
	}

	switch {
	case in.Title == "":
		return "Title is required"
	case !in.Price.IsPositive():
		return "Price must be greater than zero"
	case !isHTTPURL(in.AmazonLink):
		return "A valid product link is required"
	case in.AffiliateID == "":
		return "Affiliate ID is required"
	case !isUUID(in.CategoryID):
		return "Invalid category"
	case in.Image != "" && !isHTTPURL(in.Image):
		return "Image must be a URL"
	}
	return ""
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func toResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Image:        p.Image,
		Price:        p.Price.InexactFloat64(),
		AmazonLink:   p.AmazonLink,
		AffiliateID:  p.AffiliateID,
		AffiliateURL: p.AffiliateURL(),
		CategoryID:   p.CategoryID,
	}
}

func (in *ProductInput) apply(p *models.Product) {
	p.Title = in.Title
	p.Description = strings.TrimSpace(in.Description)
	p.Image = strings.TrimSpace(in.Image)
	p.Price = in.Price
	p.AmazonLink = in.AmazonLink
	p.AffiliateID = in.AffiliateID
	p.CategoryID = in.CategoryID
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (*ProductInput, bool) {
	var in ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return nil, false
	}
	if msg := h.validate(&in); msg != "" {
		api.ErrorResponse(w, http.StatusBadRequest, msg)
		return nil, false
	}
	return &in, true
}

func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	product := &models.Product{}
	in.apply(product)
	if err := h.products.Create(product); err != nil {
		h.writeStoreError(w, err, "Failed to create product")
		return
	}

	h.log.WithField("product_id", product.ID).Info("product created")
	api.JSONResponse(w, http.StatusCreated, toResponse(product))
}

func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}

	product := &models.Product{ID: id}
	in.apply(product)
	if err := h.products.Update(product); err != nil {
		h.writeStoreError(w, err, "Failed to update product")
		return
	}

	updated, err := h.products.GetByID(id)
	if err != nil {
		h.writeStoreError(w, err, "Failed to update product")
		return
	}
	api.OKResponse(w, toResponse(updated))
}

func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}
	if err := h.products.Delete(id); err != nil {
		h.writeStoreError(w, err, "Failed to delete product")
		return
	}
	h.log.WithField("product_id", id).Info("product deleted")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, models.ErrCategoryNotFound):
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid category")
	case errors.Is(err, models.ErrProductHasClicks):
		api.ErrorResponse(w, http.StatusConflict, "Product has recorded clicks")
	default:
		h.log.WithError(err).Error(msg)
		api.ErrorResponse(w, http.StatusInternalServerError, msg)
	}
}

// HandleUpload accepts a multipart "file" field and stores it.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "An image file is required")
		return
	}
	defer file.Close()

	location, err := h.uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, media.ErrUnsupportedType) {
			api.ErrorResponse(w, http.StatusBadRequest, "Only image uploads are accepted")
			return
		}
		if errors.Is(err, media.ErrStorageDisabled) {
			api.ErrorResponse(w, http.StatusServiceUnavailable, "Image uploads are not configured")
			return
		}
		h.log.WithError(err).Error("image upload failed")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	api.JSONResponse(w, http.StatusCreated, map[string]string{"url": location})
}

// HandleImport fetches a product page and returns a prefilled form payload.
// Nothing is stored.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	var in struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !isHTTPURL(strings.TrimSpace(in.URL)) {
		api.ErrorResponse(w, http.StatusBadRequest, "A valid url is required")
		return
	}

	meta, err := h.fetcher.Fetch(r.Context(), strings.TrimSpace(in.URL))
	if err != nil {
		h.log.WithError(err).Warn("product import failed")
		api.ErrorResponse(w, http.StatusBadGateway, "Failed to fetch product page")
		return
	}

	draft := ProductInput{
		Title:       meta.Title,
		Description: meta.Description,
		Image:       meta.Image,
		AmazonLink:  strings.TrimSpace(in.URL),
		AffiliateID: h.defaultTag,
	}
	if meta.Price != nil {
		draft.Price = *meta.Price
	}
	api.OKResponse(w, draft)
}
