package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Entry is one dated ledger record of jars/capsules delivered or returned and
// payment received for a customer.
type Entry struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID   snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	JarGiven     int             `gorm:"not null;default:0" json:"jar_given"`
	JarTaken     int             `gorm:"not null;default:0" json:"jar_taken"`
	CapsuleGiven int             `gorm:"not null;default:0" json:"capsule_given"`
	CapsuleTaken int             `gorm:"not null;default:0" json:"capsule_taken"`
	CustomerPay  decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"customer_pay"`
	EntryDate    time.Time       `gorm:"type:date;not null;index" json:"entry_date"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Entry) TableName() string { return "daily_entries" }

// CustomerSummary aggregates a customer's entries over a date window,
// including derived pending counts and the pending payment.
type CustomerSummary struct {
	CustomerID          snowflake.ID    `json:"customer_id"`
	TotalJarGiven       int64           `json:"total_jar_given"`
	TotalJarTaken       int64           `json:"total_jar_taken"`
	PendingJar          int64           `json:"pending_jar"`
	TotalCapsuleGiven   int64           `json:"total_capsule_given"`
	TotalCapsuleTaken   int64           `json:"total_capsule_taken"`
	PendingCapsule      int64           `json:"pending_capsule"`
	TotalJarPayment     decimal.Decimal `json:"total_jar_payment"`
	TotalCapsulePayment decimal.Decimal `json:"total_capsule_payment"`
	TotalPayment        decimal.Decimal `json:"total_payment"`
	TotalPaid           decimal.Decimal `json:"total_paid"`
	PendingPayment      decimal.Decimal `json:"pending_payment"`
}
