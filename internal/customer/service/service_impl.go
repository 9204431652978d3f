package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/ayz7879/fg-plant/internal/cache"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	"github.com/ayz7879/fg-plant/internal/observability/logger"
	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// cacheTTL is short on purpose: billing flips cycle flags behind this
// service's back, so cached reads must not lag for long.
const cacheTTL = 10 * time.Second

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	cache cache.Cache[snowflake.ID, customerdomain.Customer]
}

func NewService(p Params) customerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("customer.service"),
		genID: p.GenID,
		cache: cache.NewTTLCache[snowflake.ID, customerdomain.Customer](),
	}
}

func (s *Service) Create(ctx context.Context, req customerdomain.CreateCustomerRequest) (*customerdomain.Customer, error) {
	req = normalizeRequest(req)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.phoneExists(ctx, req.Phone, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, customerdomain.ErrPhoneExists
	}

	now := time.Now().UTC()
	record := &customerdomain.Customer{
		ID:                    s.genID.Generate(),
		Name:                  req.Name,
		Address:               req.Address,
		Phone:                 req.Phone,
		AdvancePay:            req.AdvancePay,
		InitialDepositJar:     req.InitialDepositJar,
		InitialDepositCapsule: req.InitialDepositCapsule,
		PricePerJar:           req.PricePerJar,
		PricePerCapsule:       req.PricePerCapsule,
		Type:                  req.Type,
		Active:                req.Active,
		AccessToken:           uuid.NewString(),
		BillDay:               req.BillDay,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}

	s.log.Info("customer created",
		zap.String("customer_id", record.ID.String()),
		zap.String("phone", logger.MaskPhone(record.Phone)))
	return record, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (*customerdomain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.Get(customerID); ok {
		return &cached, nil
	}

	var record customerdomain.Customer
	err = s.db.WithContext(ctx).First(&record, "id = ?", customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customerdomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.cache.Set(customerID, record, cacheTTL)
	return &record, nil
}

func (s *Service) List(ctx context.Context, req customerdomain.ListCustomerRequest) ([]customerdomain.Customer, error) {
	query := req.KeysetQuery.Normalize()

	tx := s.db.WithContext(ctx).
		Where("id > ?", query.LastFetchID).
		Order("id ASC").
		Limit(query.PageSize)

	if req.Type != "" {
		if req.Type != customerdomain.CustomerTypeRegular && req.Type != customerdomain.CustomerTypeEvent {
			return nil, customerdomain.ErrInvalidType
		}
		tx = tx.Where("type = ?", req.Type)
	}

	var records []customerdomain.Customer
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Search(ctx context.Context, req customerdomain.SearchCustomerRequest) ([]customerdomain.Customer, error) {
	query := req.KeysetQuery.Normalize()

	tx := s.db.WithContext(ctx).
		Where("id > ?", query.LastFetchID).
		Order("id ASC").
		Limit(query.PageSize)

	if term := strings.ToLower(strings.TrimSpace(req.Term)); term != "" {
		like := "%" + term + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(address) LIKE ?", like, like, like)
	}

	var records []customerdomain.Customer
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) Counts(ctx context.Context) (customerdomain.CustomerCounts, error) {
	var counts customerdomain.CustomerCounts
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(1) AS total,
		        COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS regular,
		        COALESCE(SUM(CASE WHEN type = ? THEN 1 ELSE 0 END), 0) AS event
		 FROM customers`,
		customerdomain.CustomerTypeRegular,
		customerdomain.CustomerTypeEvent,
	).Scan(&counts).Error
	if err != nil {
		return customerdomain.CustomerCounts{}, err
	}
	return counts, nil
}

func (s *Service) Update(ctx context.Context, id string, req customerdomain.UpdateCustomerRequest) (*customerdomain.Customer, error) {
	customerID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	req = normalizeRequest(req)
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.Phone != req.Phone {
		exists, err := s.phoneExists(ctx, req.Phone, customerID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, customerdomain.ErrPhoneExists
		}
	}

	// Column list is explicit so cycle state (bill_done, bill_done_date)
	// survives ordinary edits.
	updates := map[string]any{
		"name":                    req.Name,
		"address":                 req.Address,
		"phone":                   req.Phone,
		"advance_pay":             req.AdvancePay,
		"initial_deposit_jar":     req.InitialDepositJar,
		"initial_deposit_capsule": req.InitialDepositCapsule,
		"price_per_jar":           req.PricePerJar,
		"price_per_capsule":       req.PricePerCapsule,
		"type":                    req.Type,
		"active":                  req.Active,
		"bill_day":                req.BillDay,
		"updated_at":              time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("id = ?", customerID).
		Updates(updates).Error; err != nil {
		return nil, err
	}

	s.cache.Delete(customerID)
	return s.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	customerID, err := parseID(id)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Delete(&customerdomain.Customer{}, "id = ?", customerID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return customerdomain.ErrNotFound
	}
	s.cache.Delete(customerID)
	return nil
}

func (s *Service) phoneExists(ctx context.Context, phone string, excludeID snowflake.ID) (bool, error) {
	var count int64
	tx := s.db.WithContext(ctx).
		Model(&customerdomain.Customer{}).
		Where("phone = ?", phone)
	if excludeID != 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	if err := tx.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, customerdomain.ErrInvalidID
	}
	return id, nil
}

func normalizeRequest(req customerdomain.CreateCustomerRequest) customerdomain.CreateCustomerRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Type == "" {
		req.Type = customerdomain.CustomerTypeRegular
	}
	if req.BillDay == 0 {
		req.BillDay = 1
	}
	return req
}

func validateRequest(req customerdomain.CreateCustomerRequest) error {
	if req.Name == "" || len(req.Name) > 100 {
		return customerdomain.ErrInvalidName
	}
	if req.Address == "" || len(req.Address) > 300 {
		return customerdomain.ErrInvalidAddress
	}
	if !validPhone(req.Phone) {
		return customerdomain.ErrInvalidPhone
	}
	if req.PricePerJar.LessThan(decimal.Zero) || req.PricePerCapsule.LessThan(decimal.Zero) {
		return customerdomain.ErrInvalidPrice
	}
	if req.AdvancePay.LessThan(decimal.Zero) {
		return customerdomain.ErrInvalidPrice
	}
	if req.BillDay < 1 || req.BillDay > 31 {
		return customerdomain.ErrInvalidBillDay
	}
	if req.Type != customerdomain.CustomerTypeRegular && req.Type != customerdomain.CustomerTypeEvent {
		return customerdomain.ErrInvalidType
	}
	return nil
}

func validPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
