package service

import (
	"context"
	"time"

	historydomain "github.com/ayz7879/fg-plant/internal/history/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) historydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("history.service"),
		genID: p.GenID,
	}
}

func (s *Service) Record(ctx context.Context, entryID snowflake.ID, entryDate time.Time) error {
	return s.RecordTx(ctx, s.db, entryID, entryDate)
}

func (s *Service) RecordTx(ctx context.Context, tx *gorm.DB, entryID snowflake.ID, entryDate time.Time) error {
	if entryID == 0 {
		return historydomain.ErrInvalidEntryID
	}
	record := &historydomain.History{
		ID:        s.genID.Generate(),
		EntryID:   entryID,
		EntryDate: truncateToDate(entryDate),
		CreatedAt: time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(record).Error
}

func (s *Service) Resync(ctx context.Context, entryID snowflake.ID, entryDate time.Time) error {
	if entryID == 0 {
		return historydomain.ErrInvalidEntryID
	}
	// Missing rows are tolerated; entries created before history tracking
	// have none.
	return s.db.WithContext(ctx).
		Model(&historydomain.History{}).
		Where("entry_id = ?", entryID).
		Update("entry_date", truncateToDate(entryDate)).Error
}

func (s *Service) List(ctx context.Context, req historydomain.ListHistoryRequest) ([]historydomain.HistoryDetail, error) {
	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		return nil, historydomain.ErrInvalidDateRange
	}
	query := req.KeysetQuery.Normalize()

	sql := `SELECT h.id AS history_id, h.entry_date AS entry_date,
	               e.id AS entry_id, e.customer_id AS customer_id,
	               e.jar_given, e.jar_taken, e.capsule_given, e.capsule_taken, e.customer_pay,
	               c.name AS customer_name, c.address AS customer_address
	        FROM histories h
	        JOIN daily_entries e ON e.id = h.entry_id
	        JOIN customers c ON c.id = e.customer_id
	        WHERE h.id > ?`
	args := []any{query.LastFetchID}

	if req.StartDate != nil {
		sql += ` AND h.entry_date >= ?`
		args = append(args, truncateToDate(*req.StartDate))
	}
	if req.EndDate != nil {
		sql += ` AND h.entry_date <= ?`
		args = append(args, truncateToDate(*req.EndDate))
	}
	sql += ` ORDER BY h.id ASC LIMIT ?`
	args = append(args, query.PageSize)

	var rows []historydomain.HistoryDetail
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) Summary(ctx context.Context, startDate, endDate *time.Time) (historydomain.HistorySummary, error) {
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return historydomain.HistorySummary{}, historydomain.ErrInvalidDateRange
	}

	sql := `SELECT COALESCE(SUM(e.jar_given), 0) AS total_jar_given,
	               COALESCE(SUM(e.jar_taken), 0) AS total_jar_taken,
	               COALESCE(SUM(e.capsule_given), 0) AS total_capsule_given,
	               COALESCE(SUM(e.capsule_taken), 0) AS total_capsule_taken,
	               COALESCE(SUM(e.customer_pay), 0) AS total_customer_pay
	        FROM histories h
	        JOIN daily_entries e ON e.id = h.entry_id
	        WHERE 1 = 1`
	args := []any{}

	if startDate != nil {
		sql += ` AND h.entry_date >= ?`
		args = append(args, truncateToDate(*startDate))
	}
	if endDate != nil {
		sql += ` AND h.entry_date <= ?`
		args = append(args, truncateToDate(*endDate))
	}

	var summary historydomain.HistorySummary
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&summary).Error; err != nil {
		return historydomain.HistorySummary{}, err
	}
	return summary, nil
}

func truncateToDate(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}
