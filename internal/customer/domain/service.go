package domain

import (
	"context"
	"errors"

	"github.com/ayz7879/fg-plant/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// Service manages customer records. Billing-cycle state (BillDone,
// BillDoneDate) is owned by the billing service; customer edits never touch
// it.
type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error)
	GetByID(ctx context.Context, id string) (*Customer, error)
	List(ctx context.Context, req ListCustomerRequest) ([]Customer, error)
	Search(ctx context.Context, req SearchCustomerRequest) ([]Customer, error)
	Counts(ctx context.Context) (CustomerCounts, error)
	Update(ctx context.Context, id string, req UpdateCustomerRequest) (*Customer, error)
	Delete(ctx context.Context, id string) error
}

type CreateCustomerRequest struct {
	Name                  string          `json:"name"`
	Address               string          `json:"address"`
	Phone                 string          `json:"phone"`
	AdvancePay            decimal.Decimal `json:"advance_pay"`
	InitialDepositJar     int             `json:"initial_deposit_jar"`
	InitialDepositCapsule int             `json:"initial_deposit_capsule"`
	PricePerJar           decimal.Decimal `json:"price_per_jar"`
	PricePerCapsule       decimal.Decimal `json:"price_per_capsule"`
	Type                  CustomerType    `json:"type"`
	Active                bool            `json:"active"`
	BillDay               int             `json:"bill_day"`
}

// UpdateCustomerRequest carries the full editable field set. Cycle state is
// deliberately absent.
type UpdateCustomerRequest = CreateCustomerRequest

type ListCustomerRequest struct {
	pagination.KeysetQuery
	Type CustomerType
}

type SearchCustomerRequest struct {
	pagination.KeysetQuery
	Term string
}

// CustomerCounts reports customer totals overall and per type.
type CustomerCounts struct {
	Total   int64 `json:"total"`
	Regular int64 `json:"regular"`
	Event   int64 `json:"event"`
}

var (
	ErrNotFound       = errors.New("customer_not_found")
	ErrPhoneExists    = errors.New("phone_exists")
	ErrInvalidID      = errors.New("invalid_customer_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidAddress = errors.New("invalid_address")
	ErrInvalidPhone   = errors.New("invalid_phone")
	ErrInvalidPrice   = errors.New("invalid_price")
	ErrInvalidBillDay = errors.New("invalid_bill_day")
	ErrInvalidType    = errors.New("invalid_customer_type")
)
