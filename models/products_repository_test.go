package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, repo *ProductsRepository, categories *CategoriesRepository) (Category, Category) {
	t.Helper()

	shoes := Category{Name: "Shoes", Slug: "shoes"}
	clothing := Category{Name: "Clothing", Slug: "clothing"}
	require.NoError(t, categories.CreateCategory(&shoes))
	require.NoError(t, categories.CreateCategory(&clothing))

	products := []Product{
		{Title: "Trail Runner", Price: decimal.NewFromFloat(19.99), CategoryID: shoes.ID},
		{Title: "Linen Shirt", Description: "Breathable summer shirt", Price: decimal.NewFromFloat(24.99), CategoryID: clothing.ID},
		{Title: "Denim Jacket", Price: decimal.NewFromFloat(95.50), CategoryID: clothing.ID},
	}
	for i := range products {
		products[i].AmazonLink = "https://www.amazon.com/dp/B0000000" + string(rune('1'+i))
		products[i].AffiliateID = "store-20"
		require.NoError(t, repo.Create(&products[i]))
	}
	return shoes, clothing
}

func TestProductsRepository_GetFilteredProducts(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductsRepository(db)
	_, _ = seedCatalog(t, repo, NewCategoriesRepository(db))

	price := 30.0
	testCases := []struct {
		name          string
		offset, limit int
		filters       ProductFilters
		expectedTotal int64
		expectedLen   int
	}{
		{name: "No filters", limit: 10, expectedTotal: 3, expectedLen: 3},
		{name: "Pagination", offset: 1, limit: 1, expectedTotal: 3, expectedLen: 1},
		{name: "Category slug", limit: 10, filters: ProductFilters{CategorySlug: "clothing"}, expectedTotal: 2, expectedLen: 2},
		{name: "Price less than", limit: 10, filters: ProductFilters{PriceLessThan: &price}, expectedTotal: 2, expectedLen: 2},
		{name: "Search matches description", limit: 10, filters: ProductFilters{Search: "summer"}, expectedTotal: 1, expectedLen: 1},
		{name: "Search percent is literal", limit: 10, filters: ProductFilters{Search: "%"}, expectedTotal: 0, expectedLen: 0},
		{name: "Search underscore is literal", limit: 10, filters: ProductFilters{Search: "_"}, expectedTotal: 0, expectedLen: 0},
		{name: "Unknown category", limit: 10, filters: ProductFilters{CategorySlug: "toys"}, expectedTotal: 0, expectedLen: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			products, total, err := repo.GetFilteredProducts(tc.offset, tc.limit, tc.filters)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTotal, total)
			assert.Len(t, products, tc.expectedLen)
			for _, p := range products {
				assert.NotEmpty(t, p.Category.Name, "Category should be preloaded")
			}
		})
	}
}

func TestProductsRepository_CreateRequiresCategory(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductsRepository(db)

	err := repo.Create(&Product{
		Title:      "Orphan",
		Price:      decimal.NewFromInt(1),
		AmazonLink: "https://www.amazon.com/dp/B000",
		CategoryID: "00000000-0000-0000-0000-000000000000",
	})
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	var count int64
	require.NoError(t, db.Model(&Product{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProductsRepository_GetUpdateDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductsRepository(db)
	shoes, _ := seedCatalog(t, repo, NewCategoriesRepository(db))

	all, err := repo.GetAllProducts()
	require.NoError(t, err)
	require.Len(t, all, 3)

	product, err := repo.GetByID(all[0].ID)
	require.NoError(t, err)
	assert.Equal(t, all[0].Title, product.Title)

	product.Title = "Renamed"
	product.CategoryID = shoes.ID
	require.NoError(t, repo.Update(product))

	reloaded, err := repo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Title)
	assert.Equal(t, "shoes", reloaded.Category.Slug)

	byIDs, err := repo.GetByIDs([]string{all[1].ID, all[2].ID, "missing"})
	require.NoError(t, err)
	assert.Len(t, byIDs, 2)

	require.NoError(t, repo.Delete(product.ID))
	_, err = repo.GetByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, repo.Delete(product.ID), ErrProductNotFound)
}

func TestProductsRepository_DeleteWithClicks(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductsRepository(db)
	seedCatalog(t, repo, NewCategoriesRepository(db))
	all, err := repo.GetAllProducts()
	require.NoError(t, err)

	click := ClickTracking{ProductID: all[0].ID, IPAddress: "10.0.0.1", UserAgent: "test"}
	require.NoError(t, NewClicksRepository(db).CreateClick(&click))

	err = repo.Delete(all[0].ID)
	assert.ErrorIs(t, err, ErrProductHasClicks)

	_, err = repo.GetByID(all[0].ID)
	assert.NoError(t, err)

	require.NoError(t, repo.Delete(all[1].ID))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\d`, escapeLike(`c:\d`))
	assert.Equal(t, "shirt", escapeLike("shirt"))
}

func TestProduct_AffiliateURL(t *testing.T) {
	testCases := []struct {
		name     string
		product  Product
		expected string
	}{
		{
			name:     "Appends tag",
			product:  Product{AmazonLink: "https://www.amazon.com/dp/B0001", AffiliateID: "store-20"},
			expected: "https://www.amazon.com/dp/B0001?tag=store-20",
		},
		{
			name:     "Keeps existing query and replaces tag",
			product:  Product{AmazonLink: "https://www.amazon.com/dp/B0001?tag=old-20&th=1", AffiliateID: "store-20"},
			expected: "https://www.amazon.com/dp/B0001?tag=store-20&th=1",
		},
		{
			name:     "No affiliate id",
			product:  Product{AmazonLink: "https://www.amazon.com/dp/B0001"},
			expected: "https://www.amazon.com/dp/B0001",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.product.AffiliateURL())
		})
	}
}
