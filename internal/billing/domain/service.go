package domain

import (
	"context"
	"errors"
	"time"

	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

var (
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrInvalidCustomerID = errors.New("invalid_customer_id")
	ErrInvalidDateWindow = errors.New("invalid_date_window")
	ErrTransient         = errors.New("billing_store_unavailable")
)

// DueWindow restricts a due computation to entries with dates inside the
// inclusive [From, To] range. A nil bound leaves that side unbounded; a
// From after To is rejected with ErrInvalidDateWindow.
type DueWindow struct {
	From *time.Time
	To   *time.Time
}

// ListDueRequest pages through all customers owing money. Search matches
// name, address or phone as a case-insensitive substring.
type ListDueRequest struct {
	pagination.Pagination
	Search string `form:"search"`
}

// ListDueResponse carries one page of due customers plus listing-wide totals.
// Totals cover the whole filtered listing, not just the returned page.
type ListDueResponse struct {
	Customers []DueCustomer `json:"customers"`
	Totals    DueTotals     `json:"totals"`
	Page      int           `json:"page"`
	PageSize  int           `json:"page_size"`
	TotalRows int           `json:"total_rows"`
}

// ListDueTodayRequest pages through unsettled customers, today's bill-day
// customers first.
type ListDueTodayRequest struct {
	pagination.Pagination
	Search string `form:"search"`
}

// ListDueTodayResponse includes totals restricted to customers whose bill day
// is today.
type ListDueTodayResponse struct {
	Customers   []DueCustomer `json:"customers"`
	TodayTotals DueTotals     `json:"today_totals"`
	Page        int           `json:"page"`
	PageSize    int           `json:"page_size"`
	TotalRows   int           `json:"total_rows"`
}

// SettleResult reports whether MarkSettled changed anything. Already is true
// when the customer was settled before the call.
type SettleResult struct {
	Updated bool `json:"updated"`
	Already bool `json:"already"`
}

type Service interface {
	// ComputeDue derives a customer's exact due amount from the entry ledger,
	// optionally restricted to a date window.
	ComputeDue(ctx context.Context, customerID string, window DueWindow) (*DueBreakdown, error)

	// ListDue returns every customer owing money, highest due first.
	ListDue(ctx context.Context, req ListDueRequest) (*ListDueResponse, error)

	// ListDueToday normalizes stale cycles, then returns unsettled customers
	// owing money, today's bill-day customers ranked first.
	ListDueToday(ctx context.Context, req ListDueTodayRequest) (*ListDueTodayResponse, error)

	// MarkSettled closes the customer's current cycle. Idempotent.
	MarkSettled(ctx context.Context, customerID string) (*SettleResult, error)

	// NormalizeCycles reverts settlements from a previous month for customers
	// whose bill day is today and who still owe money.
	NormalizeCycles(ctx context.Context) (*NormalizeReport, error)
}
