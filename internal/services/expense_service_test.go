package services

import (
	"context"
	"errors"
	"testing"

	"business_manager/internal/apperrors"
	"business_manager/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseCategoryInUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	category, err := env.expenses.CreateCategory(ctx, " Electricity ")
	require.NoError(t, err)
	assert.Equal(t, "Electricity", category.Label)

	record, err := env.expenses.CreateRecord(ctx, ExpenseInput{CategoryID: category.ID, Shop: models.ShopHotel, Amount: decimal.NewFromInt(1500)})
	require.NoError(t, err)

	err = env.expenses.DeleteCategory(ctx, category.ID)
	var inUse *apperrors.CategoryInUseError
	require.True(t, errors.As(err, &inUse))
	assert.Equal(t, int64(1), inUse.Count)

	require.NoError(t, env.expenses.DeleteRecord(ctx, record.ID))
	require.NoError(t, env.expenses.DeleteCategory(ctx, category.ID))
	assert.ErrorIs(t, env.expenses.DeleteCategory(ctx, category.ID), apperrors.ErrNotFound)
}

func TestExpenseRecordDefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	category, err := env.expenses.CreateCategory(ctx, "Water")
	require.NoError(t, err)

	record, err := env.expenses.CreateRecord(ctx, ExpenseInput{CategoryID: category.ID, Shop: models.ShopB, Amount: decimal.NewFromInt(300), Notes: " meter "})
	require.NoError(t, err)
	assert.True(t, models.StartOfDay(testToday).Equal(record.Date))
	assert.Equal(t, models.LineLaundry, record.BusinessLine)
	assert.Equal(t, "meter", record.Notes)

	cases := []ExpenseInput{
		{CategoryID: category.ID, Shop: "Shop Z", Amount: decimal.NewFromInt(1)},
		{CategoryID: category.ID, Shop: models.ShopA, Amount: decimal.Zero},
		{CategoryID: 999, Shop: models.ShopA, Amount: decimal.NewFromInt(1)},
	}
	for _, in := range cases {
		_, err := env.expenses.CreateRecord(ctx, in)
		var invalid *apperrors.ValidationError
		assert.True(t, errors.As(err, &invalid), "input %+v gave %v", in, err)
	}
}

func TestUpdateExpenseKeepsDateUnlessGiven(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	category, err := env.expenses.CreateCategory(ctx, "Salaries")
	require.NoError(t, err)
	record, err := env.expenses.CreateRecord(ctx, ExpenseInput{CategoryID: category.ID, Shop: models.ShopA, Amount: decimal.NewFromInt(100), Date: day(2026, 5, 2)})
	require.NoError(t, err)

	updated, err := env.expenses.UpdateRecord(ctx, record.ID, ExpenseInput{CategoryID: category.ID, Shop: models.ShopB, Amount: decimal.NewFromInt(120)})
	require.NoError(t, err)

	assert.True(t, day(2026, 5, 2).Equal(updated.Date))
	assert.Equal(t, models.ShopB, updated.Shop)
	assertMoney(t, 120, updated.Amount)
}

func TestListExpenseRecordsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rent, err := env.expenses.CreateCategory(ctx, "Rent")
	require.NoError(t, err)
	supplies, err := env.expenses.CreateCategory(ctx, "Supplies")
	require.NoError(t, err)

	for _, in := range []ExpenseInput{
		{CategoryID: rent.ID, Shop: models.ShopA, Amount: decimal.NewFromInt(100), Date: day(2026, 6, 1)},
		{CategoryID: supplies.ID, Shop: models.ShopA, Amount: decimal.NewFromInt(40), Date: day(2026, 6, 30)},
		{CategoryID: rent.ID, Shop: models.ShopHotel, Amount: decimal.NewFromInt(200), Date: day(2026, 6, 10)},
		{CategoryID: rent.ID, Shop: models.ShopA, Amount: decimal.NewFromInt(100), Date: day(2026, 7, 1)},
	} {
		_, err := env.expenses.CreateRecord(ctx, in)
		require.NoError(t, err)
	}

	june, err := env.expenses.ListRecords(ctx, ExpenseQuery{BusinessLine: models.LineLaundry, From: day(2026, 6, 1), To: day(2026, 6, 30)})
	require.NoError(t, err)
	assert.Len(t, june, 2, "the end date is inclusive")

	rentOnly, err := env.expenses.ListRecords(ctx, ExpenseQuery{CategoryID: rent.ID})
	require.NoError(t, err)
	assert.Len(t, rentOnly, 3)
	assert.Equal(t, "Rent", rentOnly[0].Category.Label)
}
