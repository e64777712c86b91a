package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/admin"
	"github.com/flowerssaints/storefront/app/analytics"
	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/app/auth"
	"github.com/flowerssaints/storefront/app/catalog"
	"github.com/flowerssaints/storefront/app/categories"
	"github.com/flowerssaints/storefront/app/health"
	"github.com/flowerssaints/storefront/app/marketing"
	"github.com/flowerssaints/storefront/app/newsletter"
	"github.com/flowerssaints/storefront/app/storefront"
	"github.com/flowerssaints/storefront/app/tracking"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Catalog    *catalog.CatalogHandler
	Categories *categories.CategoryHandler
	Storefront *storefront.Handler
	Tracking   *tracking.Handler
	Analytics  *analytics.Handler
	Newsletter *newsletter.Handler
	Marketing  *marketing.Handler
	Auth       *auth.Handler
	Admin      *admin.Handler
	Health     *health.Handler
}

// NewRouter mounts the public pages, the JSON API and the admin routes.
// requireAdmin guards everything that changes the catalog or reads analytics.
func NewRouter(h Handlers, requireAdmin func(http.Handler) http.Handler, allowedOrigins []string, log logrus.FieldLogger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/", h.Storefront.HandleHome)
	r.Get("/products", h.Storefront.HandleProducts)
	r.Get("/products/{id}", h.Storefront.HandleProduct)
	r.Get("/category/{slug}", h.Storefront.HandleCategory)
	r.Get("/go/{id}", h.Tracking.HandleRedirect)
	r.Get("/sitemap.xml", h.Storefront.HandleSitemap)
	r.Get("/robots.txt", h.Storefront.HandleRobots)
	r.Get("/unsubscribe", h.Newsletter.HandleUnsubscribePage)
	r.With(requireAdmin).Get("/admin", h.Analytics.HandlePage)
	r.NotFound(h.Storefront.HandleNotFound)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			api.ErrorResponse(w, http.StatusNotFound, "Not found")
		})

		r.Get("/health", h.Health.HandleHealth)
		r.Get("/test-db", h.Health.HandleTestDB)

		r.Get("/products", h.Catalog.HandleGet)
		r.Get("/products/{id}", h.Catalog.HandleGetProduct)
		r.Get("/categories", h.Categories.HandleGetAll)

		r.Post("/track-click", h.Tracking.HandleTrackClick)
		r.Post("/newsletter", h.Newsletter.HandleSubscribe)
		r.Delete("/newsletter", h.Newsletter.HandleUnsubscribe)

		r.Post("/auth/login", h.Auth.HandleLogin)
		r.Post("/auth/logout", h.Auth.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)

			r.Post("/categories", h.Categories.HandleCreate)
			r.Delete("/categories/{id}", h.Categories.HandleDelete)

			r.Post("/marketing", h.Marketing.HandleSend)
			r.Get("/marketing", h.Marketing.HandleHistory)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/analytics", h.Analytics.HandleJSON)
				r.Post("/products", h.Admin.HandleCreateProduct)
				r.Post("/products/import", h.Admin.HandleImport)
				r.Put("/products/{id}", h.Admin.HandleUpdateProduct)
				r.Delete("/products/{id}", h.Admin.HandleDeleteProduct)
				r.Post("/uploads", h.Admin.HandleUpload)
			})
		})
	})

	return r
}
