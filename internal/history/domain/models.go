package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// History is the chronological feed of delivery activity, one row per daily
// entry. Its date is kept in sync when an entry's date is edited.
type History struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	EntryID   snowflake.ID `gorm:"not null;uniqueIndex" json:"entry_id"`
	EntryDate time.Time    `gorm:"type:date;not null;index" json:"entry_date"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (History) TableName() string { return "histories" }

// HistoryDetail joins a history row with its entry and customer for feed
// listings.
type HistoryDetail struct {
	HistoryID       snowflake.ID    `json:"history_id"`
	EntryID         snowflake.ID    `json:"entry_id"`
	EntryDate       time.Time       `json:"entry_date"`
	CustomerID      snowflake.ID    `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	CustomerAddress string          `json:"customer_address"`
	JarGiven        int             `json:"jar_given"`
	JarTaken        int             `json:"jar_taken"`
	CapsuleGiven    int             `json:"capsule_given"`
	CapsuleTaken    int             `json:"capsule_taken"`
	CustomerPay     decimal.Decimal `json:"customer_pay"`
}

// HistorySummary aggregates delivery activity over a date window.
type HistorySummary struct {
	TotalJarGiven     int64           `json:"total_jar_given"`
	TotalJarTaken     int64           `json:"total_jar_taken"`
	TotalCapsuleGiven int64           `json:"total_capsule_given"`
	TotalCapsuleTaken int64           `json:"total_capsule_taken"`
	TotalCustomerPay  decimal.Decimal `json:"total_customer_pay"`
}
