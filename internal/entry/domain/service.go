package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

var (
	ErrNotFound         = errors.New("entry_not_found")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrInvalidID        = errors.New("invalid_entry_id")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidPay       = errors.New("invalid_customer_pay")
	ErrInvalidDate      = errors.New("invalid_entry_date")
	ErrInvalidDateRange = errors.New("invalid_date_range")
)

// CreateEntryRequest carries one day's deliveries, returns and payment for a
// customer. EntryDate defaults to the current business day when zero.
type CreateEntryRequest struct {
	CustomerID   string          `json:"customer_id"`
	JarGiven     int             `json:"jar_given"`
	JarTaken     int             `json:"jar_taken"`
	CapsuleGiven int             `json:"capsule_given"`
	CapsuleTaken int             `json:"capsule_taken"`
	CustomerPay  decimal.Decimal `json:"customer_pay"`
	EntryDate    *time.Time      `json:"entry_date,omitempty"`
}

// UpdateEntryRequest replaces every mutable field of an entry.
type UpdateEntryRequest struct {
	JarGiven     int             `json:"jar_given"`
	JarTaken     int             `json:"jar_taken"`
	CapsuleGiven int             `json:"capsule_given"`
	CapsuleTaken int             `json:"capsule_taken"`
	CustomerPay  decimal.Decimal `json:"customer_pay"`
	EntryDate    *time.Time      `json:"entry_date,omitempty"`
}

// ListEntriesRequest pages through a customer's entries, optionally bounded
// by an inclusive date window.
type ListEntriesRequest struct {
	pagination.KeysetQuery
	CustomerID string     `form:"customer_id"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
}

// SummaryRequest aggregates a customer's entries over an optional window.
type SummaryRequest struct {
	CustomerID string     `form:"customer_id"`
	From       *time.Time `form:"from"`
	To         *time.Time `form:"to"`
}

type Service interface {
	Create(ctx context.Context, req CreateEntryRequest) (*Entry, error)
	GetByID(ctx context.Context, id string) (*Entry, error)
	ListByCustomer(ctx context.Context, req ListEntriesRequest) ([]Entry, error)
	Update(ctx context.Context, id string, req UpdateEntryRequest) (*Entry, error)
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, req SummaryRequest) (*CustomerSummary, error)
}

// ParseID parses a snowflake id in its string form.
func ParseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, ErrInvalidID
	}
	return id, nil
}
