package migrations

import (
	"testing"

	"business_manager/internal/database"
	"business_manager/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunMigrationsSeedsOnce(t *testing.T) {
	db, err := database.Initialize("sqlite", ":memory:", "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, RunMigrations(db, true, zap.NewNop()))
	require.NoError(t, RunMigrations(db, true, zap.NewNop()))

	var categories, items, expenseCategories int64
	require.NoError(t, db.Model(&models.FoodCategory{}).Count(&categories).Error)
	require.NoError(t, db.Model(&models.SellableItem{}).Count(&items).Error)
	require.NoError(t, db.Model(&models.ExpenseCategory{}).Count(&expenseCategories).Error)
	assert.Equal(t, int64(3), categories)
	assert.Equal(t, int64(11), items)
	assert.Equal(t, int64(5), expenseCategories)

	var chips models.SellableItem
	require.NoError(t, db.Where("name = ?", "Chips").First(&chips).Error)
	assert.Zero(t, chips.Quantity)
	assert.False(t, chips.IsAvailable)
}

func TestRunMigrationsWithoutSeed(t *testing.T) {
	db, err := database.Initialize("sqlite", ":memory:", "silent")
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, RunMigrations(db, false, zap.NewNop()))

	var items int64
	require.NoError(t, db.Model(&models.SellableItem{}).Count(&items).Error)
	assert.Zero(t, items)
}
