// Package seed loads the sample catalog used for local development and demos.
package seed

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/flowerssaints/storefront/models"
)

type sampleCategory struct {
	Name string
	Slug string
}

type sampleProduct struct {
	Title       string
	Description string
	Price       string
	Image       string
	Category    string
}

var categories = []sampleCategory{
	{Name: "Clothes", Slug: "clothes"},
	{Name: "Shoes", Slug: "shoes"},
	{Name: "Pet Products", Slug: "pet-products"},
	{Name: "Skincare", Slug: "skincare"},
	{Name: "Gaming Accessories", Slug: "gaming"},
	{Name: "Fitness Products", Slug: "fitness"},
	{Name: "Home Devices", Slug: "home-devices"},
}

var products = []sampleProduct{
	{
		Title:       "Premium Wireless Headphones",
		Description: "Over-ear noise cancelling headphones with 30 hour battery life.",
		Price:       "199.99",
		Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?q=80&w=2340",
		Category:    "gaming",
	},
	{
		Title:       "Organic Skincare Set",
		Description: "Cleanser, toner and moisturizer made from plant-based ingredients.",
		Price:       "89.99",
		Image:       "https://images.unsplash.com/photo-1556228720-195a672e8a03?q=80&w=2187",
		Category:    "skincare",
	},
	{
		Title:       "Smart Fitness Tracker",
		Description: "Heart rate, sleep and step tracking with a week of battery.",
		Price:       "149.99",
		Image:       "https://images.unsplash.com/photo-1575311373937-040b8e1fd6b0?q=80&w=2187",
		Category:    "fitness",
	},
	{
		Title:       "Designer Pet Bed",
		Description: "Washable orthopedic bed for medium and large dogs.",
		Price:       "79.99",
		Image:       "https://images.unsplash.com/photo-1548199973-03cce0bbc87b?q=80&w=2187",
		Category:    "pet-products",
	},
}

// Result counts the rows created by Run. Rows that already existed are not
// counted.
type Result struct {
	Categories int
	Products   int
}

// Run inserts the sample categories and products. It is safe to run again:
// categories match on slug and products on title.
func Run(db *gorm.DB, affiliateTag string) (Result, error) {
	var res Result
	err := db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]string, len(categories))
		for _, c := range categories {
			var cat models.Category
			found := tx.Where("slug = ?", c.Slug).Limit(1).Find(&cat)
			if found.Error != nil {
				return fmt.Errorf("seeding category %s: %w", c.Slug, found.Error)
			}
			if found.RowsAffected == 0 {
				cat = models.Category{Name: c.Name, Slug: c.Slug}
				if err := tx.Create(&cat).Error; err != nil {
					return fmt.Errorf("seeding category %s: %w", c.Slug, err)
				}
				res.Categories++
			}
			ids[c.Slug] = cat.ID
		}

		for _, p := range products {
			var count int64
			if err := tx.Model(&models.Product{}).Where("title = ?", p.Title).Count(&count).Error; err != nil {
				return fmt.Errorf("seeding product %q: %w", p.Title, err)
			}
			if count > 0 {
				continue
			}
			product := models.Product{
				Title:       p.Title,
				Description: p.Description,
				Price:       decimal.RequireFromString(p.Price),
				Image:       p.Image,
				AmazonLink:  searchLink(p.Title),
				AffiliateID: affiliateTag,
				CategoryID:  ids[p.Category],
			}
			if err := tx.Omit(clause.Associations).Create(&product).Error; err != nil {
				return fmt.Errorf("seeding product %q: %w", p.Title, err)
			}
			res.Products++
		}
		return nil
	})
	return res, err
}

// searchLink points at an Amazon search so seeded products resolve without
// a real listing.
func searchLink(title string) string {
	return "https://www.amazon.com/s?k=" + url.QueryEscape(title)
}
