package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DueCustomer is one customer's standing in a due listing. DueAmount is the
// exact ledger balance; DisplayDue is its whole-rupee truncation used by
// clients.
type DueCustomer struct {
	CustomerID     snowflake.ID    `json:"customer_id"`
	Name           string          `json:"name"`
	Address        string          `json:"address"`
	Phone          string          `json:"phone"`
	BillDay        int             `json:"bill_day"`
	BillDone       bool            `json:"bill_done"`
	BillDoneDate   *time.Time      `json:"bill_done_date,omitempty"`
	DueAmount      decimal.Decimal `json:"due_amount"`
	DisplayDue     int64           `json:"display_due"`
	DueToday       bool            `json:"due_today"`
	PendingJar     int64           `json:"pending_jar"`
	PendingCapsule int64           `json:"pending_capsule"`
	TotalJarGiven  int64           `json:"total_jar_given"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
}

// DueBreakdown itemizes how a single customer's due amount was derived.
type DueBreakdown struct {
	CustomerID        snowflake.ID    `json:"customer_id"`
	TotalJarGiven     int64           `json:"total_jar_given"`
	TotalCapsuleGiven int64           `json:"total_capsule_given"`
	PricePerJar       decimal.Decimal `json:"price_per_jar"`
	PricePerCapsule   decimal.Decimal `json:"price_per_capsule"`
	JarCharges        decimal.Decimal `json:"jar_charges"`
	CapsuleCharges    decimal.Decimal `json:"capsule_charges"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	DueAmount         decimal.Decimal `json:"due_amount"`
	DisplayDue        int64           `json:"display_due"`
}

// DueTotals aggregates a due listing.
type DueTotals struct {
	Customers  int             `json:"customers"`
	TotalDue   decimal.Decimal `json:"total_due"`
	DisplayDue int64           `json:"display_due"`
}

// NormalizeReport summarizes one normalization pass.
type NormalizeReport struct {
	Day        int       `json:"day"`
	Candidates int       `json:"candidates"`
	Reset      int       `json:"reset"`
	Skipped    int       `json:"skipped"`
	RanAt      time.Time `json:"ran_at"`
}
