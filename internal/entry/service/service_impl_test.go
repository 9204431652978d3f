package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ayz7879/fg-plant/internal/clock"
	"github.com/ayz7879/fg-plant/internal/config"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	entrydomain "github.com/ayz7879/fg-plant/internal/entry/domain"
	historydomain "github.com/ayz7879/fg-plant/internal/history/domain"
	historyservice "github.com/ayz7879/fg-plant/internal/history/service"
	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

func newTestService(t *testing.T, at time.Time) (entrydomain.Service, *gorm.DB, customerdomain.Customer) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&entrydomain.Entry{},
		&historydomain.History{},
	))

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	history := historyservice.NewService(historyservice.Params{DB: db, Log: zap.NewNop(), GenID: genID})

	svc, err := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: genID,
		Clock: clock.Fixed(at),
		Config: config.Config{
			BillingTimezone: "Asia/Kolkata",
		},
		History: history,
	})
	require.NoError(t, err)

	now := time.Now().UTC()
	customer := customerdomain.Customer{
		ID:              genID.Generate(),
		Name:            "Ramesh",
		Address:         "Ward 4, Tilak Nagar",
		Phone:           "9812345670",
		PricePerJar:     decimal.NewFromInt(30),
		PricePerCapsule: decimal.NewFromInt(5),
		Type:            customerdomain.CustomerTypeRegular,
		Active:          true,
		AccessToken:     "token",
		BillDay:         15,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, db.Create(&customer).Error)

	return svc, db, customer
}

func ptrDate(y int, m time.Month, d int) *time.Time {
	v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &v
}

func TestCreateEntryRecordsHistory(t *testing.T) {
	svc, db, customer := newTestService(t, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), entrydomain.CreateEntryRequest{
		CustomerID:  customer.ID.String(),
		JarGiven:    4,
		JarTaken:    2,
		CustomerPay: decimal.NewFromInt(60),
		EntryDate:   ptrDate(2026, time.March, 10),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, created.JarGiven)
	assert.Equal(t, "2026-03-10", created.EntryDate.Format("2006-01-02"))

	var history historydomain.History
	require.NoError(t, db.First(&history, "entry_id = ?", created.ID).Error)
	assert.Equal(t, "2026-03-10", history.EntryDate.Format("2006-01-02"))
}

func TestCreateEntryDefaultsToBusinessToday(t *testing.T) {
	// 20:00 UTC on the 14th is already the 15th in Kolkata.
	svc, _, customer := newTestService(t, time.Date(2026, time.March, 14, 20, 0, 0, 0, time.UTC))

	created, err := svc.Create(context.Background(), entrydomain.CreateEntryRequest{
		CustomerID: customer.ID.String(),
		JarGiven:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", created.EntryDate.Format("2006-01-02"))
}

func TestCreateEntryValidation(t *testing.T) {
	svc, _, customer := newTestService(t, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.Create(ctx, entrydomain.CreateEntryRequest{
		CustomerID: customer.ID.String(),
		JarGiven:   -1,
	})
	assert.ErrorIs(t, err, entrydomain.ErrInvalidQuantity)

	_, err = svc.Create(ctx, entrydomain.CreateEntryRequest{
		CustomerID:  customer.ID.String(),
		CustomerPay: decimal.NewFromInt(-5),
	})
	assert.ErrorIs(t, err, entrydomain.ErrInvalidPay)

	_, err = svc.Create(ctx, entrydomain.CreateEntryRequest{
		CustomerID: "987654321098765432",
		JarGiven:   1,
	})
	assert.ErrorIs(t, err, entrydomain.ErrCustomerNotFound)
}

func TestUpdateEntryResyncsHistory(t *testing.T) {
	svc, db, customer := newTestService(t, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	created, err := svc.Create(ctx, entrydomain.CreateEntryRequest{
		CustomerID: customer.ID.String(),
		JarGiven:   4,
		EntryDate:  ptrDate(2026, time.March, 10),
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID.String(), entrydomain.UpdateEntryRequest{
		JarGiven:  5,
		EntryDate: ptrDate(2026, time.March, 12),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.JarGiven)
	assert.Equal(t, "2026-03-12", updated.EntryDate.Format("2006-01-02"))

	var history historydomain.History
	require.NoError(t, db.First(&history, "entry_id = ?", created.ID).Error)
	assert.Equal(t, "2026-03-12", history.EntryDate.Format("2006-01-02"))
}

func TestDeleteEntry(t *testing.T) {
	svc, _, customer := newTestService(t, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	created, err := svc.Create(ctx, entrydomain.CreateEntryRequest{
		CustomerID: customer.ID.String(),
		JarGiven:   1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))
	assert.ErrorIs(t, svc.Delete(ctx, created.ID.String()), entrydomain.ErrNotFound)

	_, err = svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, entrydomain.ErrNotFound)
}

func TestListByCustomerWindowAndKeyset(t *testing.T) {
	svc, _, customer := newTestService(t, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for day := 1; day <= 6; day++ {
		_, err := svc.Create(ctx, entrydomain.CreateEntryRequest{
			CustomerID: customer.ID.String(),
			JarGiven:   day,
			EntryDate:  ptrDate(2026, time.March, day),
		})
		require.NoError(t, err)
	}

	window, err := svc.ListByCustomer(ctx, entrydomain.ListEntriesRequest{
		CustomerID: customer.ID.String(),
		From:       ptrDate(2026, time.March, 2),
		To:         ptrDate(2026, time.March, 4),
	})
	require.NoError(t, err)
	assert.Len(t, window, 3)

	_, err = svc.ListByCustomer(ctx, entrydomain.ListEntriesRequest{
		CustomerID: customer.ID.String(),
		From:       ptrDate(2026, time.March, 4),
		To:         ptrDate(2026, time.March, 2),
	})
	assert.ErrorIs(t, err, entrydomain.ErrInvalidDateRange)

	page1, err := svc.ListByCustomer(ctx, entrydomain.ListEntriesRequest{
		KeysetQuery: pagination.KeysetQuery{PageSize: 4},
		CustomerID:  customer.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, page1, 4)

	page2, err := svc.ListByCustomer(ctx, entrydomain.ListEntriesRequest{
		KeysetQuery: pagination.KeysetQuery{PageSize: 4, LastFetchID: int64(page1[3].ID)},
		CustomerID:  customer.ID.String(),
	})
	require.NoError(t, err)
	require.Len(t, page2, 2)
}

func TestSummary(t *testing.T) {
	svc, _, customer := newTestService(t, time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC))
	ctx := context.Background()

	_, err := svc.Create(ctx, entrydomain.CreateEntryRequest{
		CustomerID:   customer.ID.String(),
		JarGiven:     6,
		JarTaken:     4,
		CapsuleGiven: 2,
		CustomerPay:  decimal.NewFromInt(100),
		EntryDate:    ptrDate(2026, time.March, 1),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, entrydomain.CreateEntryRequest{
		CustomerID:  customer.ID.String(),
		JarGiven:    4,
		CustomerPay: decimal.NewFromInt(50),
		EntryDate:   ptrDate(2026, time.March, 8),
	})
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, entrydomain.SummaryRequest{CustomerID: customer.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, int64(10), summary.TotalJarGiven)
	assert.Equal(t, int64(6), summary.PendingJar)
	assert.Equal(t, int64(2), summary.PendingCapsule)
	// 10 jars * 30 + 2 capsules * 5 = 310 charged, 150 paid.
	assert.Equal(t, "310", summary.TotalPayment.String())
	assert.Equal(t, "150", summary.TotalPaid.String())
	assert.Equal(t, "160", summary.PendingPayment.String())
}
