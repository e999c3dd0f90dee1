package migrations

import (
	"context"
	"fmt"

	"business_manager/internal/database"
	"business_manager/internal/repository"
	"business_manager/internal/services"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type defaultItem struct {
	name  string
	price int64
}

type defaultCategory struct {
	name  string
	items []defaultItem
}

var defaultMenu = []defaultCategory{
	{name: "Fast Food", items: []defaultItem{
		{"Chips", 100}, {"Bhajia", 120}, {"Sausages", 60},
		{"Smokies", 50}, {"Kebab", 80}, {"Samosas", 50},
	}},
	{name: "Main Meals", items: []defaultItem{
		{"Chapo", 30}, {"Chicken", 350}, {"Pilau", 250},
	}},
	{name: "Drinks & Refreshments", items: []defaultItem{
		{"Sodas", 70}, {"Ice pop", 20},
	}},
}

var defaultExpenseCategories = []string{"Rent", "Electricity", "Water", "Salaries", "Supplies"}

// RunMigrations brings the schema up to date and, when seed is set, adds
// the default menu and expense categories. Existing rows are never
// dropped and seeding skips anything already present.
func RunMigrations(db *gorm.DB, seed bool, logger *zap.Logger) error {
	logger.Info("running database migrations")
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if !seed {
		return nil
	}

	ctx := context.Background()
	repos := repository.NewRepositories(db)
	if err := seedMenu(ctx, services.NewCatalogService(repos, logger), logger); err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	if err := seedExpenseCategories(ctx, services.NewExpenseService(repos, nil, logger), logger); err != nil {
		return fmt.Errorf("seed expense categories: %w", err)
	}
	logger.Info("database migrations completed")
	return nil
}

// Seeded items start with no stock, so they stay off the menu until restocked.
func seedMenu(ctx context.Context, catalog services.CatalogService, logger *zap.Logger) error {
	for _, def := range defaultMenu {
		category, err := catalog.CreateCategory(ctx, def.name)
		if err != nil {
			return err
		}
		existing, err := catalog.ListItems(ctx, repository.ItemFilter{CategoryID: category.ID})
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, item := range existing {
			have[item.Name] = true
		}

		for _, item := range def.items {
			if have[item.name] {
				continue
			}
			if _, err := catalog.CreateItem(ctx, services.CreateItemInput{
				CategoryName: def.name,
				Name:         item.name,
				Price:        decimal.NewFromInt(item.price),
			}); err != nil {
				return err
			}
			logger.Debug("seeded menu item", zap.String("category", def.name), zap.String("name", item.name))
		}
	}
	return nil
}

func seedExpenseCategories(ctx context.Context, expenses services.ExpenseService, logger *zap.Logger) error {
	existing, err := expenses.ListCategories(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, category := range existing {
		have[category.Label] = true
	}
	for _, label := range defaultExpenseCategories {
		if have[label] {
			continue
		}
		if _, err := expenses.CreateCategory(ctx, label); err != nil {
			return err
		}
		logger.Debug("seeded expense category", zap.String("label", label))
	}
	return nil
}
