package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrCategoryInUse is returned when deleting a category that still has products.
var ErrCategoryInUse = errors.New("category has products")

// ErrCategoryExists is returned when the name or slug is already taken.
var ErrCategoryExists = errors.New("category already exists")

type CategoriesRepository struct {
	db *gorm.DB
}

func NewCategoriesRepository(db *gorm.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

func (r *CategoriesRepository) GetAllCategories() ([]Category, error) {
	var categories []Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoriesRepository) GetBySlug(slug string) (*Category, error) {
	var category Category
	if err := r.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory inserts a category whose name and slug are both unused.
func (r *CategoriesRepository) CreateCategory(category *Category) error {
	var count int64
	if err := r.db.Model(&Category{}).
		Where("name = ? OR slug = ?", category.Name, category.Slug).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check category: %w", err)
	}
	if count > 0 {
		return ErrCategoryExists
	}
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// DeleteCategory removes an empty category. Categories that still own
// products are rejected with ErrCategoryInUse.
func (r *CategoriesRepository) DeleteCategory(id string) error {
	var count int64
	if err := r.db.Model(&Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	res := r.db.Where("id = ?", id).Delete(&Category{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete category %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
