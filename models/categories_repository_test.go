package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesRepository(t *testing.T) {
	db := newTestDB(t)
	categories := NewCategoriesRepository(db)
	shoes, clothing := seedCatalog(t, NewProductsRepository(db), categories)

	t.Run("list is ordered by name", func(t *testing.T) {
		all, err := categories.GetAllCategories()
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, "Clothing", all[0].Name)
		assert.Equal(t, "Shoes", all[1].Name)
	})

	t.Run("get by slug", func(t *testing.T) {
		got, err := categories.GetBySlug("shoes")
		require.NoError(t, err)
		assert.Equal(t, shoes.ID, got.ID)

		_, err = categories.GetBySlug("hats")
		assert.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("create rejects duplicate name or slug", func(t *testing.T) {
		assert.ErrorIs(t, categories.CreateCategory(&Category{Name: "Shoes", Slug: "footwear"}), ErrCategoryExists)
		assert.ErrorIs(t, categories.CreateCategory(&Category{Name: "Footwear", Slug: "shoes"}), ErrCategoryExists)
	})

	t.Run("delete refuses categories with products", func(t *testing.T) {
		err := categories.DeleteCategory(clothing.ID)
		assert.ErrorIs(t, err, ErrCategoryInUse)
	})

	t.Run("delete empty category", func(t *testing.T) {
		hats := Category{Name: "Hats", Slug: "hats"}
		require.NoError(t, categories.CreateCategory(&hats))

		require.NoError(t, categories.DeleteCategory(hats.ID))
		assert.ErrorIs(t, categories.DeleteCategory(hats.ID), ErrCategoryNotFound)
	})
}
