package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Product struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Image        string   `json:"image"`
	Price        float64  `json:"price"`
	AffiliateURL string   `json:"affiliateUrl"`
	Category     Category `json:"category"`
}

type ProductDetail struct {
	Product
	AmazonLink string    `json:"amazonLink"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type ProductProvider interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
}

type CatalogHandler struct {
	repo ProductProvider
	log  logrus.FieldLogger
}

func NewCatalogHandler(r ProductProvider, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{
		repo: r,
		log:  log,
	}
}

// ParsePagination reads offset and limit from the query string.
// Invalid values fall back to the defaults; limit is clamped to 1..MaxLimit.
func ParsePagination(r *http.Request) (offset, limit int) {
	limit = DefaultLimit

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > MaxLimit {
				limit = MaxLimit
			} else {
				limit = l
			}
		}
	}
	return offset, limit
}

// ParseFilters reads category, price_lt and q from the query string.
func ParseFilters(r *http.Request) models.ProductFilters {
	var priceFilter *float64
	if priceStr := r.URL.Query().Get("price_lt"); priceStr != "" {
		if val, err := strconv.ParseFloat(priceStr, 64); err == nil {
			priceFilter = &val
		}
	}

	return models.ProductFilters{
		CategorySlug:  r.URL.Query().Get("category"),
		PriceLessThan: priceFilter,
		Search:        strings.TrimSpace(r.URL.Query().Get("q")),
	}
}

func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	offset, limit := ParsePagination(r)

	res, total, err := h.repo.GetFilteredProducts(offset, limit, ParseFilters(r))
	if err != nil {
		h.log.WithError(err).Error("failed to get products")
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to get products")
		return
	}

	products := make([]Product, len(res))
	for i := range res {
		products[i] = toProduct(&res[i])
	}

	api.OKResponse(w, Response{
		Total:    int(total),
		Products: products,
	})
}

func (h *CatalogHandler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Product not found")
		return
	}

	product, err := h.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			api.ErrorResponse(w, http.StatusNotFound, "Product not found")
			return
		}
		h.log.WithError(err).WithField("product_id", id).Error("failed to retrieve product")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	api.OKResponse(w, ProductDetail{
		Product:    toProduct(product),
		AmazonLink: product.AmazonLink,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	})
}

func toProduct(p *models.Product) Product {
	return Product{
		ID:           p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Image:        p.Image,
		Price:        p.Price.InexactFloat64(),
		AffiliateURL: p.AffiliateURL(),
		Category: Category{
			ID:   p.Category.ID,
			Name: p.Category.Name,
			Slug: p.Category.Slug,
		},
	}
}
