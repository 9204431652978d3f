package service

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ayz7879/fg-plant/internal/clock"
	"github.com/ayz7879/fg-plant/internal/config"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	entrydomain "github.com/ayz7879/fg-plant/internal/entry/domain"
	historydomain "github.com/ayz7879/fg-plant/internal/history/domain"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Config  config.Config
	History historydomain.Service
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	loc     *time.Location
	history historydomain.Service
}

func NewService(p Params) (entrydomain.Service, error) {
	loc, err := time.LoadLocation(p.Config.BillingTimezone)
	if err != nil {
		return nil, err
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("entry.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		loc:     loc,
		history: p.History,
	}, nil
}

func (s *Service) Create(ctx context.Context, req entrydomain.CreateEntryRequest) (*entrydomain.Entry, error) {
	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return nil, entrydomain.ErrCustomerNotFound
	}
	if err := validateAmounts(req.JarGiven, req.JarTaken, req.CapsuleGiven, req.CapsuleTaken, req.CustomerPay); err != nil {
		return nil, err
	}

	if err := s.customerExists(ctx, customerID); err != nil {
		return nil, err
	}

	entryDate := s.businessToday()
	if req.EntryDate != nil {
		entryDate = truncateToDate(*req.EntryDate)
	}

	now := time.Now().UTC()
	record := &entrydomain.Entry{
		ID:           s.genID.Generate(),
		CustomerID:   customerID,
		JarGiven:     req.JarGiven,
		JarTaken:     req.JarTaken,
		CapsuleGiven: req.CapsuleGiven,
		CapsuleTaken: req.CapsuleTaken,
		CustomerPay:  req.CustomerPay,
		EntryDate:    entryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		return s.history.RecordTx(ctx, tx, record.ID, record.EntryDate)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*entrydomain.Entry, error) {
	entryID, err := entrydomain.ParseID(id)
	if err != nil {
		return nil, err
	}

	var record entrydomain.Entry
	err = s.db.WithContext(ctx).First(&record, "id = ?", entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entrydomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Service) ListByCustomer(ctx context.Context, req entrydomain.ListEntriesRequest) ([]entrydomain.Entry, error) {
	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return nil, entrydomain.ErrCustomerNotFound
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, entrydomain.ErrInvalidDateRange
	}
	req.KeysetQuery = req.Normalize()

	if err := s.customerExists(ctx, customerID); err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("entry_date DESC, id DESC").
		Limit(req.PageSize)

	if req.From != nil {
		query = query.Where("entry_date >= ?", truncateToDate(*req.From))
	}
	if req.To != nil {
		query = query.Where("entry_date <= ?", truncateToDate(*req.To))
	}
	if req.LastFetchID > 0 {
		query = query.Where("id < ?", req.LastFetchID)
	}

	var records []entrydomain.Entry
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Update(ctx context.Context, id string, req entrydomain.UpdateEntryRequest) (*entrydomain.Entry, error) {
	entryID, err := entrydomain.ParseID(id)
	if err != nil {
		return nil, err
	}
	if err := validateAmounts(req.JarGiven, req.JarTaken, req.CapsuleGiven, req.CapsuleTaken, req.CustomerPay); err != nil {
		return nil, err
	}

	var record entrydomain.Entry
	err = s.db.WithContext(ctx).First(&record, "id = ?", entryID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entrydomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	dateChanged := false
	newDate := record.EntryDate
	if req.EntryDate != nil {
		newDate = truncateToDate(*req.EntryDate)
		dateChanged = !newDate.Equal(record.EntryDate)
	}

	updates := map[string]interface{}{
		"jar_given":     req.JarGiven,
		"jar_taken":     req.JarTaken,
		"capsule_given": req.CapsuleGiven,
		"capsule_taken": req.CapsuleTaken,
		"customer_pay":  req.CustomerPay,
		"entry_date":    newDate,
		"updated_at":    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Model(&entrydomain.Entry{}).Where("id = ?", entryID).Updates(updates).Error; err != nil {
		return nil, err
	}

	if dateChanged {
		// Keep the history feed aligned with the edited date.
		if err := s.history.Resync(ctx, entryID, newDate); err != nil {
			s.log.Warn("history resync failed",
				zap.String("entry_id", entryID.String()),
				zap.Error(err))
		}
	}

	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	entryID, err := entrydomain.ParseID(id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&entrydomain.Entry{}, "id = ?", entryID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entrydomain.ErrNotFound
	}
	return nil
}

func (s *Service) Summary(ctx context.Context, req entrydomain.SummaryRequest) (*entrydomain.CustomerSummary, error) {
	customerID, err := snowflake.ParseString(req.CustomerID)
	if err != nil {
		return nil, entrydomain.ErrCustomerNotFound
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, entrydomain.ErrInvalidDateRange
	}

	var customer customerdomain.Customer
	err = s.db.WithContext(ctx).First(&customer, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entrydomain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}

	var row struct {
		JarGiven     int64
		JarTaken     int64
		CapsuleGiven int64
		CapsuleTaken int64
		Paid         decimal.Decimal `gorm:"type:numeric"`
	}
	query := s.db.WithContext(ctx).Model(&entrydomain.Entry{}).
		Select("COALESCE(SUM(jar_given), 0) AS jar_given, COALESCE(SUM(jar_taken), 0) AS jar_taken, COALESCE(SUM(capsule_given), 0) AS capsule_given, COALESCE(SUM(capsule_taken), 0) AS capsule_taken, COALESCE(SUM(customer_pay), 0) AS paid").
		Where("customer_id = ?", customerID)
	if req.From != nil {
		query = query.Where("entry_date >= ?", truncateToDate(*req.From))
	}
	if req.To != nil {
		query = query.Where("entry_date <= ?", truncateToDate(*req.To))
	}
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	jarPayment := customer.PricePerJar.Mul(decimal.NewFromInt(row.JarGiven))
	capsulePayment := customer.PricePerCapsule.Mul(decimal.NewFromInt(row.CapsuleGiven))
	total := jarPayment.Add(capsulePayment)

	return &entrydomain.CustomerSummary{
		CustomerID:          customerID,
		TotalJarGiven:       row.JarGiven,
		TotalJarTaken:       row.JarTaken,
		PendingJar:          row.JarGiven - row.JarTaken,
		TotalCapsuleGiven:   row.CapsuleGiven,
		TotalCapsuleTaken:   row.CapsuleTaken,
		PendingCapsule:      row.CapsuleGiven - row.CapsuleTaken,
		TotalJarPayment:     jarPayment,
		TotalCapsulePayment: capsulePayment,
		TotalPayment:        total,
		TotalPaid:           row.Paid,
		PendingPayment:      total.Sub(row.Paid),
	}, nil
}

func (s *Service) customerExists(ctx context.Context, id snowflake.ID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&customerdomain.Customer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return entrydomain.ErrCustomerNotFound
	}
	return nil
}

func (s *Service) businessToday() time.Time {
	return truncateToDate(s.clock.Now().In(s.loc))
}

func validateAmounts(jarGiven, jarTaken, capsuleGiven, capsuleTaken int, pay decimal.Decimal) error {
	if jarGiven < 0 || jarTaken < 0 || capsuleGiven < 0 || capsuleTaken < 0 {
		return entrydomain.ErrInvalidQuantity
	}
	if pay.IsNegative() {
		return entrydomain.ErrInvalidPay
	}
	return nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
