package services

import (
	"context"
	"time"

	"business_manager/internal/models"
	"business_manager/internal/repository"

	"github.com/shopspring/decimal"
)

type ExportFilter struct {
	BusinessLine  models.BusinessLine
	Shop          models.Shop
	Status        models.OrderStatus
	PaymentStatus models.PaymentStatus
	From          *time.Time
	To            *time.Time
}

type OrderRow struct {
	Code           string               `json:"code"`
	CustomerName   string               `json:"customer_name"`
	CustomerPhone  string               `json:"customer_phone"`
	Shop           models.Shop          `json:"shop"`
	BusinessLine   models.BusinessLine  `json:"business_line"`
	DeliveryDate   time.Time            `json:"delivery_date"`
	Status         models.OrderStatus   `json:"order_status"`
	PaymentStatus  models.PaymentStatus `json:"payment_status"`
	PaymentType    string               `json:"payment_type"`
	TotalPrice     decimal.Decimal      `json:"total_price"`
	AmountPaid     decimal.Decimal      `json:"amount_paid"`
	Balance        decimal.Decimal      `json:"balance"`
	AddressDetails string               `json:"address_details"`
	CreatedBy      string               `json:"created_by"`
	CreatedAt      time.Time            `json:"created_at"`
}

type LineItemRow struct {
	OrderCode      string               `json:"order_code"`
	Shop           models.Shop          `json:"shop"`
	ItemName       string               `json:"item_name"`
	ItemType       models.ItemType      `json:"item_type"`
	ServiceTypes   string               `json:"service_types"`
	Condition      models.ItemCondition `json:"item_condition"`
	Quantity       int                  `json:"quantity"`
	UnitPrice      decimal.Decimal      `json:"unit_price"`
	ExtendedPrice  decimal.Decimal      `json:"extended_price"`
	AdditionalInfo string               `json:"additional_info"`
}

// ExportService exposes flat, read-only datasets. Rendering them to a file
// format is left to the caller.
type ExportService interface {
	OrderRows(ctx context.Context, filter ExportFilter) ([]OrderRow, error)
	LineItemRows(ctx context.Context, filter ExportFilter) ([]LineItemRow, error)
}

type exportService struct {
	repos *repository.Repositories
}

func NewExportService(repos *repository.Repositories) ExportService {
	return &exportService{repos: repos}
}

func (s *exportService) OrderRows(ctx context.Context, filter ExportFilter) ([]OrderRow, error) {
	orders, err := s.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, OrderRow{
			Code:           o.Code,
			CustomerName:   o.Customer.Name,
			CustomerPhone:  o.Customer.Phone,
			Shop:           o.Shop,
			BusinessLine:   o.BusinessLine,
			DeliveryDate:   o.DeliveryDate,
			Status:         o.Status,
			PaymentStatus:  o.PaymentStatus,
			PaymentType:    o.PaymentType.Label(),
			TotalPrice:     o.TotalPrice,
			AmountPaid:     o.AmountPaid,
			Balance:        o.Balance,
			AddressDetails: o.AddressDetails,
			CreatedBy:      o.CreatedBy,
			CreatedAt:      o.CreatedAt,
		})
	}
	return rows, nil
}

func (s *exportService) LineItemRows(ctx context.Context, filter ExportFilter) ([]LineItemRow, error) {
	orders, err := s.find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var rows []LineItemRow
	for _, o := range orders {
		for _, item := range o.Items {
			rows = append(rows, LineItemRow{
				OrderCode:      o.Code,
				Shop:           o.Shop,
				ItemName:       item.ItemName,
				ItemType:       item.ItemType,
				ServiceTypes:   item.ServiceTypes,
				Condition:      item.Condition,
				Quantity:       item.Quantity,
				UnitPrice:      item.UnitPrice,
				ExtendedPrice:  item.ExtendedPrice,
				AdditionalInfo: item.AdditionalInfo,
			})
		}
	}
	if rows == nil {
		rows = []LineItemRow{}
	}
	return rows, nil
}

func (s *exportService) find(ctx context.Context, filter ExportFilter) ([]models.Order, error) {
	return s.repos.WithContext(ctx).Orders.Find(repository.OrderFilter{
		BusinessLine:  filter.BusinessLine,
		Shop:          filter.Shop,
		Status:        filter.Status,
		PaymentStatus: filter.PaymentStatus,
		Delivery:      inclusiveRange(filter.From, filter.To),
	})
}
