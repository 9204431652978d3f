package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// CustomerType distinguishes recurring delivery customers from one-off event
// customers.
type CustomerType string

const (
	CustomerTypeRegular CustomerType = "REGULAR"
	CustomerTypeEvent   CustomerType = "EVENT"
)

// Customer is a delivery account with per-customer pricing and billing-cycle
// state.
type Customer struct {
	ID                    snowflake.ID    `gorm:"primaryKey" json:"id"`
	Name                  string          `gorm:"type:text;not null" json:"name"`
	Address               string          `gorm:"type:text;not null" json:"address"`
	Phone                 string          `gorm:"type:text;not null;uniqueIndex" json:"phone"`
	AdvancePay            decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"advance_pay"`
	InitialDepositJar     int             `gorm:"not null;default:0" json:"initial_deposit_jar"`
	InitialDepositCapsule int             `gorm:"not null;default:0" json:"initial_deposit_capsule"`
	PricePerJar           decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"price_per_jar"`
	PricePerCapsule       decimal.Decimal `gorm:"type:numeric;not null;default:0" json:"price_per_capsule"`
	Type                  CustomerType    `gorm:"type:text;not null;default:'REGULAR'" json:"type"`
	Active                bool            `gorm:"not null;default:false" json:"active"`
	AccessToken           string          `gorm:"type:text;uniqueIndex" json:"-"`

	// BillDay is the day of month (1-31) on which this customer's billing
	// cycle starts.
	BillDay int `gorm:"not null;default:1;index" json:"bill_day"`

	// BillDone marks the current cycle's bill as handled. It is only valid
	// for the month recorded in BillDoneDate; the billing normalization
	// pass reverts stale values.
	BillDone     bool       `gorm:"not null;default:false" json:"bill_done"`
	BillDoneDate *time.Time `gorm:"type:date" json:"bill_done_date,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
