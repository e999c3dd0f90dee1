package repository

import (
	"business_manager/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ExpenseFilter struct {
	BusinessLine models.BusinessLine
	Shop         models.Shop
	CategoryID   uint
	Dates        DateRange
	Page         Page
}

type ExpenseRepository interface {
	CreateCategory(category *models.ExpenseCategory) error
	GetCategory(id uint) (*models.ExpenseCategory, error)
	GetCategoryForUpdate(id uint) (*models.ExpenseCategory, error)
	GetCategoryByLabel(label string) (*models.ExpenseCategory, error)
	ListCategories() ([]models.ExpenseCategory, error)
	UpdateCategory(category *models.ExpenseCategory) error
	DeleteCategory(id uint) error
	CountRecordsByCategory(categoryID uint) (int64, error)

	CreateRecord(record *models.ExpenseRecord) error
	GetRecord(id uint) (*models.ExpenseRecord, error)
	UpdateRecord(record *models.ExpenseRecord) error
	DeleteRecord(id uint) error
	FindRecords(filter ExpenseFilter) ([]models.ExpenseRecord, error)
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) CreateCategory(category *models.ExpenseCategory) error {
	return r.db.Create(category).Error
}

func (r *expenseRepository) GetCategory(id uint) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *expenseRepository) GetCategoryForUpdate(id uint) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *expenseRepository) GetCategoryByLabel(label string) (*models.ExpenseCategory, error) {
	var category models.ExpenseCategory
	if err := r.db.Where("label = ?", label).First(&category).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *expenseRepository) ListCategories() ([]models.ExpenseCategory, error) {
	var categories []models.ExpenseCategory
	err := r.db.Order("label").Find(&categories).Error
	return categories, err
}

func (r *expenseRepository) UpdateCategory(category *models.ExpenseCategory) error {
	return r.db.Save(category).Error
}

func (r *expenseRepository) DeleteCategory(id uint) error {
	return r.db.Delete(&models.ExpenseCategory{}, id).Error
}

func (r *expenseRepository) CountRecordsByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ExpenseRecord{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

func (r *expenseRepository) CreateRecord(record *models.ExpenseRecord) error {
	return r.db.Omit(clause.Associations).Create(record).Error
}

func (r *expenseRepository) GetRecord(id uint) (*models.ExpenseRecord, error) {
	var record models.ExpenseRecord
	if err := r.db.Preload("Category").First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

func (r *expenseRepository) UpdateRecord(record *models.ExpenseRecord) error {
	return r.db.Omit(clause.Associations).Save(record).Error
}

func (r *expenseRepository) DeleteRecord(id uint) error {
	return r.db.Delete(&models.ExpenseRecord{}, id).Error
}

func (r *expenseRepository) FindRecords(filter ExpenseFilter) ([]models.ExpenseRecord, error) {
	query := r.db.Preload("Category").Order("date DESC, id DESC")
	if filter.BusinessLine != "" {
		query = query.Where("business_line = ?", filter.BusinessLine)
	}
	if filter.Shop != "" {
		query = query.Where("shop = ?", filter.Shop)
	}
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	query = filter.Page.apply(filter.Dates.apply(query, "date"))

	var records []models.ExpenseRecord
	err := query.Find(&records).Error
	return records, err
}
