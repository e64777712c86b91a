package categories

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/flowerssaints/storefront/app/api"
	"github.com/flowerssaints/storefront/models"
)

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CategoryProvider interface {
	GetAllCategories() ([]models.Category, error)
	CreateCategory(category *models.Category) error
	DeleteCategory(id string) error
}

type CategoryHandler struct {
	repo CategoryProvider
	log  logrus.FieldLogger
}

func NewCategoryHandler(r CategoryProvider, log logrus.FieldLogger) *CategoryHandler {
	return &CategoryHandler{repo: r, log: log}
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and collapses every run of other characters into a dash.
func Slugify(s string) string {
	return strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories()
	if err != nil {
		h.log.WithError(err).Error("failed to fetch categories")
		api.ErrorResponse(w, http.StatusInternalServerError, "failed to fetch categories")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:   c.ID,
			Name: c.Name,
			Slug: c.Slug,
		}
	}

	api.OKResponse(w, response)
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
		Slug string `json:"slug"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Missing name")
		return
	}
	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(input.Name)
	}
	if slug == "" {
		api.ErrorResponse(w, http.StatusBadRequest, "Invalid slug")
		return
	}

	category := &models.Category{
		Name: input.Name,
		Slug: slug,
	}

	if err := h.repo.CreateCategory(category); err != nil {
		if errors.Is(err, models.ErrCategoryExists) {
			api.ErrorResponse(w, http.StatusConflict, "Category already exists")
			return
		}
		h.log.WithError(err).Error("failed to create category")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	h.log.WithField("slug", category.Slug).Info("category created")

	api.JSONResponse(w, http.StatusCreated, CategoryResponse{
		ID:   category.ID,
		Name: category.Name,
		Slug: category.Slug,
	})
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
		return
	}

	err := h.repo.DeleteCategory(id)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, models.ErrCategoryNotFound):
		api.ErrorResponse(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, models.ErrCategoryInUse):
		api.ErrorResponse(w, http.StatusConflict, "Category still has products")
	default:
		h.log.WithError(err).WithField("category_id", id).Error("failed to delete category")
		api.ErrorResponse(w, http.StatusInternalServerError, "Failed to delete category")
	}
}
