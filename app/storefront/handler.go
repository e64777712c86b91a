// Package storefront renders the public HTML pages, the sitemap and robots.txt.
package storefront

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/models"
)

const (
	FeaturedCount = 8
	PageSize      = 24
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}

var pages = map[string]*template.Template{
	"home":     parsePage("home.html"),
	"products": parsePage("products.html"),
	"product":  parsePage("product.html"),
	"notfound": parsePage("notfound.html"),
}

func parsePage(name string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name))
}

type ProductSource interface {
	GetFilteredProducts(offset, limit int, filters models.ProductFilters) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
	GetAllProducts() ([]models.Product, error)
}

type CategorySource interface {
	GetAllCategories() ([]models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
}

type Handler struct {
	products   ProductSource
	categories CategorySource
	baseURL    string
	log        logrus.FieldLogger
}

func NewHandler(products ProductSource, categories CategorySource, baseURL string, log logrus.FieldLogger) *Handler {
	return &Handler{
		products:   products,
		categories: categories,
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

type pageData struct {
	Title       string
	Description string
	Canonical   string
	Categories  []models.Category

	Heading   string
	Category  *models.Category
	Product   *models.Product
	Products  []models.Product
	Total     int64
	PrevPage  int
	NextPage  int
	PrevQuery template.URL
	NextQuery template.URL
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data *pageData) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log.WithError(err).WithField("page", page).Error("failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter, err error, msg string) {
	h.log.WithError(err).Error(msg)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (h *Handler) notFound(w http.ResponseWriter, categories []models.Category) {
	h.render(w, http.StatusNotFound, "notfound", &pageData{Title: "Not found", Categories: categories})
}

func (h *Handler) HandleHome(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAllCategories()
	if err != nil {
		h.serverError(w, err, "failed to load categories")
		return
	}
	products, _, err := h.products.GetFilteredProducts(0, FeaturedCount, models.ProductFilters{})
	if err != nil {
		h.serverError(w, err, "failed to load featured products")
		return
	}

	h.render(w, http.StatusOK, "home", &pageData{
		Title:       "Curated Amazon finds",
		Description: "Hand-picked products across fashion, home, fitness and more.",
		Canonical:   h.baseURL + "/",
		Categories:  categories,
		Products:    products,
	})
}

// HandleProducts lists the catalog, optionally narrowed by ?category=<slug>.
func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAllCategories()
	if err != nil {
		h.serverError(w, err, "failed to load categories")
		return
	}

	data := &pageData{
		Title:      "All products",
		Heading:    "All products",
		Canonical:  h.baseURL + "/products",
		Categories: categories,
	}
	if slug := strings.TrimSpace(r.URL.Query().Get("category")); slug != "" {
		for i := range categories {
			if categories[i].Slug == slug {
				data.Category = &categories[i]
				data.Heading = categories[i].Name
				data.Title = categories[i].Name
				break
			}
		}
		if data.Category == nil {
			h.notFound(w, categories)
			return
		}
	}
	h.listProducts(w, r, data)
}

func (h *Handler) HandleCategory(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAllCategories()
	if err != nil {
		h.serverError(w, err, "failed to load categories")
		return
	}
	category, err := h.categories.GetBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, models.ErrCategoryNotFound) {
			h.notFound(w, categories)
			return
		}
		h.serverError(w, err, "failed to load category")
		return
	}

	h.listProducts(w, r, &pageData{
		Title:       category.Name,
		Description: "Our favourite " + strings.ToLower(category.Name) + " picks.",
		Canonical:   h.baseURL + "/category/" + category.Slug,
		Categories:  categories,
		Heading:     category.Name,
		Category:    category,
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request, data *pageData) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	filters := models.ProductFilters{}
	if data.Category != nil {
		filters.CategorySlug = data.Category.Slug
	}
	products, total, err := h.products.GetFilteredProducts((page-1)*PageSize, PageSize, filters)
	if err != nil {
		h.serverError(w, err, "failed to load products")
		return
	}

	data.Products = products
	data.Total = total
	if page > 1 {
		data.PrevPage = page - 1
		data.PrevQuery = pageQuery(r.URL.Query(), page-1)
	}
	if int64(page*PageSize) < total {
		data.NextPage = page + 1
		data.NextQuery = pageQuery(r.URL.Query(), page+1)
	}
	h.render(w, http.StatusOK, "products", data)
}

// pageQuery keeps the current filters. Values are encoded by url.Values.
func pageQuery(q url.Values, page int) template.URL {
	out := url.Values{}
	for k, v := range q {
		out[k] = v
	}
	out.Set("page", strconv.Itoa(page))
	return template.URL(out.Encode())
}

func (h *Handler) HandleProduct(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAllCategories()
	if err != nil {
		h.serverError(w, err, "failed to load categories")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		h.notFound(w, categories)
		return
	}
	product, err := h.products.GetByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			h.notFound(w, categories)
			return
		}
		h.serverError(w, err, "failed to load product")
		return
	}

	h.render(w, http.StatusOK, "product", &pageData{
		Title:       product.Title,
		Description: truncate(product.Description, 160),
		Canonical:   h.baseURL + "/products/" + product.ID,
		Categories:  categories,
		Product:     product,
	})
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}

// HandleNotFound is the router fallback for unknown pages.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.GetAllCategories()
	if err != nil {
		h.log.WithError(err).Warn("failed to load categories for 404 page")
	}
	h.notFound(w, categories)
}
