package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound                = errors.New("record not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidQuantity         = errors.New("quantity must not be negative")
)

// InsufficientStockError is returned when a reservation asks for more than
// an item has on hand.
type InsufficientStockError struct {
	ItemID    uint   `json:"item_id"`
	ItemName  string `json:"item_name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.label(), e.Available, e.Requested)
}

func (e *InsufficientStockError) label() string {
	if e.ItemName != "" {
		return e.ItemName
	}
	return fmt.Sprintf("item %d", e.ItemID)
}

// StockUnavailableError carries every line that failed stock validation in
// one create or edit request.
type StockUnavailableError struct {
	Violations []*InsufficientStockError
}

func (e *StockUnavailableError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s (short by %d)", v.label(), v.Shortfall()))
	}
	return "stock unavailable: " + strings.Join(parts, "; ")
}

func (e *StockUnavailableError) Unwrap() []error {
	errs := make([]error, 0, len(e.Violations))
	for _, v := range e.Violations {
		errs = append(errs, v)
	}
	return errs
}

type CodeGenerationExhaustedError struct {
	Attempts int
}

func (e *CodeGenerationExhaustedError) Error() string {
	return fmt.Sprintf("could not generate a unique order code after %d attempts", e.Attempts)
}

type CategoryInUseError struct {
	CategoryID uint
	Label      string
	Count      int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("expense category %q is used by %d record(s); remove them first", e.Label, e.Count)
}

type CustomerHasOrdersError struct {
	CustomerID uint
	Count      int64
}

func (e *CustomerHasOrdersError) Error() string {
	return fmt.Sprintf("customer %d has %d order(s) and cannot be deleted", e.CustomerID, e.Count)
}

// AnalyticsComputationError marks a failed aggregation stage. It is logged
// and never returned to analytics callers.
type AnalyticsComputationError struct {
	Stage string
	Err   error
}

func (e *AnalyticsComputationError) Error() string {
	return fmt.Sprintf("analytics %s: %v", e.Stage, e.Err)
}

func (e *AnalyticsComputationError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
