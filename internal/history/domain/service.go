package domain

import (
	"context"
	"errors"
	"time"

	"github.com/ayz7879/fg-plant/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service records and lists the delivery history feed.
type Service interface {
	// Record inserts a history row for a newly created entry. RecordTx
	// variants run inside the caller's transaction.
	Record(ctx context.Context, entryID snowflake.ID, entryDate time.Time) error
	RecordTx(ctx context.Context, tx *gorm.DB, entryID snowflake.ID, entryDate time.Time) error

	// Resync updates the history date after an entry's date was edited.
	Resync(ctx context.Context, entryID snowflake.ID, entryDate time.Time) error

	List(ctx context.Context, req ListHistoryRequest) ([]HistoryDetail, error)
	Summary(ctx context.Context, startDate, endDate *time.Time) (HistorySummary, error)
}

type ListHistoryRequest struct {
	pagination.KeysetQuery
	StartDate *time.Time
	EndDate   *time.Time
}

var (
	ErrInvalidEntryID   = errors.New("invalid_entry_id")
	ErrInvalidDateRange = errors.New("invalid_date_range")
)
