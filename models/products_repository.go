package models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductsRepository struct {
	db *gorm.DB
}

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrCategoryNotFound is returned when a product references a missing category.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrProductHasClicks is returned when deleting a product with recorded clicks.
	ErrProductHasClicks = errors.New("product has recorded clicks")
)

type ProductFilters struct {
	CategorySlug  string
	PriceLessThan *float64
	Search        string
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// GetAllProducts returns the whole catalog, newest first. Used by the sitemap.
func (r *ProductsRepository) GetAllProducts() ([]Product, error) {
	var products []Product
	if err := r.db.
		Preload("Category").
		Order("products.created_at DESC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductsRepository) GetFilteredProducts(offset, limit int, filters ProductFilters) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.Model(&Product{}).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Preload("Category")

	// Filter
	if filters.CategorySlug != "" {
		query = query.Where("categories.slug = ?", filters.CategorySlug)
	}
	if filters.PriceLessThan != nil {
		query = query.Where("products.price < ?", *filters.PriceLessThan)
	}
	if filters.Search != "" {
		like := "%" + escapeLike(filters.Search) + "%"
		query = query.Where(`LOWER(products.title) LIKE LOWER(?) ESCAPE '\' OR LOWER(products.description) LIKE LOWER(?) ESCAPE '\'`, like, like)
	}

	// Count total after filtering
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Apply pagination
	if err := query.
		Order("products.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductsRepository) GetByID(id string) (*Product, error) {
	var product Product
	if err := r.db.
		Preload("Category").
		Where("id = ?", id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err // Other DB error
	}
	return &product, nil
}

// GetByIDs returns the products matching ids. Unknown ids are skipped.
func (r *ProductsRepository) GetByIDs(ids []string) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a product after checking that its category exists.
func (r *ProductsRepository) Create(product *Product) error {
	if err := r.requireCategory(product.CategoryID); err != nil {
		return err
	}
	if err := r.db.Omit(clause.Associations).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *ProductsRepository) Update(product *Product) error {
	if err := r.requireCategory(product.CategoryID); err != nil {
		return err
	}
	res := r.db.Model(&Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"title":        product.Title,
			"description":  product.Description,
			"image":        product.Image,
			"price":        product.Price,
			"amazon_link":  product.AmazonLink,
			"affiliate_id": product.AffiliateID,
			"category_id":  product.CategoryID,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update product %s: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// Delete removes a product. Click rows are append-only, so a product that has
// been clicked is kept and ErrProductHasClicks is returned.
func (r *ProductsRepository) Delete(id string) error {
	var clicks int64
	if err := r.db.Model(&ClickTracking{}).Where("product_id = ?", id).Count(&clicks).Error; err != nil {
		return fmt.Errorf("failed to count clicks for product %s: %w", id, err)
	}
	if clicks > 0 {
		return ErrProductHasClicks
	}
	res := r.db.Where("id = ?", id).Delete(&Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductsRepository) requireCategory(id string) error {
	var count int64
	if err := r.db.Model(&Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
