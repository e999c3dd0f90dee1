package services

import (
	"context"
	"errors"
	"testing"

	"business_manager/internal/apperrors"
	"business_manager/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogItemLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	empty, err := env.catalog.CreateItem(ctx, CreateItemInput{CategoryName: "Drinks & Refreshments", Name: "Ice pop", Price: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.False(t, empty.IsAvailable, "no stock means not on sale")

	_, err = env.catalog.SetAvailability(ctx, empty.ID, true)
	var invalid *apperrors.ValidationError
	require.True(t, errors.As(err, &invalid))

	restocked, err := env.catalog.Restock(ctx, empty.ID, 12)
	require.NoError(t, err)
	assert.Equal(t, 12, restocked.Quantity)
	assert.True(t, restocked.IsAvailable)

	hidden, err := env.catalog.SetAvailability(ctx, empty.ID, false)
	require.NoError(t, err)
	assert.False(t, hidden.IsAvailable)
	assert.Equal(t, 12, hidden.Quantity)

	visible, err := env.catalog.ListItems(ctx, repository.ItemFilter{AvailableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, visible)

	restocked, err = env.catalog.Restock(ctx, empty.ID, 1)
	require.NoError(t, err)
	assert.True(t, restocked.IsAvailable, "a release puts a hidden item back on sale")

	_, err = env.catalog.Restock(ctx, empty.ID, 0)
	assert.True(t, errors.As(err, &invalid))
}

func TestUpdateItemDetailsLeavesStockAlone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	item := env.stockItem(t, "Bhajia", 60, 7)

	updated, err := env.catalog.UpdateItemDetails(ctx, item.ID, UpdateItemInput{CategoryName: "Main Meals", Name: "Bhajia (large)", Price: decimal.NewFromInt(90)})
	require.NoError(t, err)

	assert.Equal(t, "Bhajia (large)", updated.Name)
	assert.Equal(t, "Main Meals", updated.Category.Name)
	assertMoney(t, 90, updated.Price)
	assert.Equal(t, 7, updated.Quantity)
	assert.True(t, updated.IsAvailable)

	categories, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestCreateCategoryIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.catalog.CreateCategory(ctx, "Fast Food")
	require.NoError(t, err)
	second, err := env.catalog.CreateCategory(ctx, " Fast Food ")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}
