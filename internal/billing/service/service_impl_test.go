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

	auditdomain "github.com/ayz7879/fg-plant/internal/audit/domain"
	auditrepo "github.com/ayz7879/fg-plant/internal/audit/repository"
	auditservice "github.com/ayz7879/fg-plant/internal/audit/service"
	billingdomain "github.com/ayz7879/fg-plant/internal/billing/domain"
	"github.com/ayz7879/fg-plant/internal/clock"
	"github.com/ayz7879/fg-plant/internal/config"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	entrydomain "github.com/ayz7879/fg-plant/internal/entry/domain"
	"github.com/ayz7879/fg-plant/internal/events"
	"github.com/ayz7879/fg-plant/internal/observability/metrics"
	"github.com/ayz7879/fg-plant/pkg/db/pagination"
)

type testEnv struct {
	svc   billingdomain.Service
	db    *gorm.DB
	genID *snowflake.Node
	loc   *time.Location
}

func newTestEnv(t *testing.T, at time.Time) *testEnv {
	t.Helper()
	metrics.ResetBillingMetricsForTest()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&customerdomain.Customer{},
		&entrydomain.Entry{},
		&auditdomain.AuditLog{},
	))
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS billing_events (
		id INTEGER PRIMARY KEY,
		event_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		dedupe_key TEXT,
		published BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL
	)`).Error)
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_billing_events_dedupe ON billing_events(dedupe_key)`,
	).Error)

	genID, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Config{
		ServiceName:     "fgplant-test",
		BillingTimezone: "Asia/Kolkata",
		StoreTimeout:    5 * time.Second,
	}

	audit := auditservice.NewService(auditservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: genID,
		Repo:  auditrepo.Provide(),
	})

	svc, err := NewService(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Clock:  clock.Fixed(at),
		Config: cfg,
		Outbox: events.NewOutbox(db, genID),
		Audit:  audit,
	})
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	return &testEnv{svc: svc, db: db, genID: genID, loc: loc}
}

func (e *testEnv) seedCustomer(t *testing.T, name string, billDay int, pricePerJar, pricePerCapsule string) customerdomain.Customer {
	t.Helper()
	now := time.Now().UTC()
	record := customerdomain.Customer{
		ID:              e.genID.Generate(),
		Name:            name,
		Address:         "Ward 4, Tilak Nagar",
		Phone:           nextPhone(),
		PricePerJar:     decimal.RequireFromString(pricePerJar),
		PricePerCapsule: decimal.RequireFromString(pricePerCapsule),
		Type:            customerdomain.CustomerTypeRegular,
		Active:          true,
		AccessToken:     name + "-token",
		BillDay:         billDay,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, e.db.Create(&record).Error)
	return record
}

var phoneSeq int64

func nextPhone() string {
	phoneSeq++
	return fmt.Sprintf("98%08d", phoneSeq)
}

func (e *testEnv) seedEntry(t *testing.T, customerID snowflake.ID, jarGiven, capsuleGiven int, pay string, date time.Time) {
	t.Helper()
	now := time.Now().UTC()
	record := entrydomain.Entry{
		ID:           e.genID.Generate(),
		CustomerID:   customerID,
		JarGiven:     jarGiven,
		CapsuleGiven: capsuleGiven,
		CustomerPay:  decimal.RequireFromString(pay),
		EntryDate:    date,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.db.Create(&record).Error)
}

func (e *testEnv) settle(t *testing.T, customerID snowflake.ID, on time.Time) {
	t.Helper()
	require.NoError(t, e.db.Exec(
		`UPDATE customers SET bill_done = ?, bill_done_date = ? WHERE id = ?`,
		true, on, customerID,
	).Error)
}

func (e *testEnv) reload(t *testing.T, customerID snowflake.ID) customerdomain.Customer {
	t.Helper()
	var record customerdomain.Customer
	require.NoError(t, e.db.First(&record, "id = ?", customerID).Error)
	return record
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeDueNoEntries(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Ramesh", 15, "30", "5")

	breakdown, err := env.svc.ComputeDue(context.Background(), customer.ID.String(), billingdomain.DueWindow{})
	require.NoError(t, err)
	assert.True(t, breakdown.DueAmount.IsZero())
	assert.Equal(t, int64(0), breakdown.DisplayDue)
	assert.Equal(t, int64(0), breakdown.TotalJarGiven)
}

func TestComputeDueFormula(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Ramesh", 15, "30", "5")
	env.seedEntry(t, customer.ID, 6, 2, "50", date(2026, time.March, 1))
	env.seedEntry(t, customer.ID, 4, 2, "70", date(2026, time.March, 8))

	breakdown, err := env.svc.ComputeDue(context.Background(), customer.ID.String(), billingdomain.DueWindow{})
	require.NoError(t, err)

	// 10 jars * 30 + 4 capsules * 5 - 120 paid = 200
	assert.Equal(t, "200", breakdown.DueAmount.String())
	assert.Equal(t, int64(200), breakdown.DisplayDue)
	assert.Equal(t, int64(10), breakdown.TotalJarGiven)
	assert.Equal(t, int64(4), breakdown.TotalCapsuleGiven)
	assert.Equal(t, "300", breakdown.JarCharges.String())
	assert.Equal(t, "20", breakdown.CapsuleCharges.String())
	assert.Equal(t, "120", breakdown.TotalPaid.String())
}

func TestComputeDueTruncatesOnlyForDisplay(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Sita", 10, "30.5", "0")
	env.seedEntry(t, customer.ID, 3, 0, "0", date(2026, time.March, 1))

	breakdown, err := env.svc.ComputeDue(context.Background(), customer.ID.String(), billingdomain.DueWindow{})
	require.NoError(t, err)
	assert.Equal(t, "91.5", breakdown.DueAmount.String())
	assert.Equal(t, int64(91), breakdown.DisplayDue)
}

func TestComputeDueWindow(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Ramesh", 15, "30", "5")
	env.seedEntry(t, customer.ID, 6, 0, "50", date(2026, time.February, 20))
	env.seedEntry(t, customer.ID, 4, 0, "30", date(2026, time.March, 1))
	env.seedEntry(t, customer.ID, 2, 0, "0", date(2026, time.March, 10))

	from := date(2026, time.March, 1)
	to := date(2026, time.March, 1)

	// Inclusive on both bounds: only the March 1 entry.
	breakdown, err := env.svc.ComputeDue(context.Background(), customer.ID.String(),
		billingdomain.DueWindow{From: &from, To: &to})
	require.NoError(t, err)
	assert.Equal(t, "90", breakdown.DueAmount.String())
	assert.Equal(t, int64(4), breakdown.TotalJarGiven)

	// Open-ended lower bound covers everything up to March 1.
	breakdown, err = env.svc.ComputeDue(context.Background(), customer.ID.String(),
		billingdomain.DueWindow{To: &to})
	require.NoError(t, err)
	assert.Equal(t, "220", breakdown.DueAmount.String())
}

func TestComputeDueRejectsInvertedWindow(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Ramesh", 15, "30", "5")
	env.seedEntry(t, customer.ID, 4, 0, "0", date(2026, time.March, 5))

	from := date(2026, time.March, 10)
	to := date(2026, time.March, 1)

	_, err := env.svc.ComputeDue(context.Background(), customer.ID.String(),
		billingdomain.DueWindow{From: &from, To: &to})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidDateWindow)
}

func TestComputeDueUnknownCustomer(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	_, err := env.svc.ComputeDue(context.Background(), "999999999999999999", billingdomain.DueWindow{})
	assert.ErrorIs(t, err, billingdomain.ErrCustomerNotFound)

	_, err = env.svc.ComputeDue(context.Background(), "not-a-snowflake", billingdomain.DueWindow{})
	assert.ErrorIs(t, err, billingdomain.ErrInvalidCustomerID)
}

func TestListDueSkipsSettledBalances(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	owing := env.seedCustomer(t, "Owing", 10, "30", "5")
	env.seedEntry(t, owing.ID, 5, 0, "0", date(2026, time.March, 1))

	paidUp := env.seedCustomer(t, "PaidUp", 10, "30", "5")
	env.seedEntry(t, paidUp.ID, 5, 0, "150", date(2026, time.March, 1))

	overpaid := env.seedCustomer(t, "Overpaid", 10, "30", "5")
	env.seedEntry(t, overpaid.ID, 2, 0, "100", date(2026, time.March, 1))

	resp, err := env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, owing.ID, resp.Customers[0].CustomerID)
	assert.Equal(t, 1, resp.Totals.Customers)
	assert.Equal(t, "150", resp.Totals.TotalDue.String())
}

func TestListDueOrderingAndTieBreak(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	small := env.seedCustomer(t, "Small", 10, "30", "0")
	env.seedEntry(t, small.ID, 1, 0, "0", date(2026, time.March, 1))

	tieA := env.seedCustomer(t, "TieA", 10, "30", "0")
	env.seedEntry(t, tieA.ID, 5, 0, "0", date(2026, time.March, 1))

	tieB := env.seedCustomer(t, "TieB", 10, "30", "0")
	env.seedEntry(t, tieB.ID, 5, 0, "0", date(2026, time.March, 1))

	resp, err := env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 3)

	// Highest due first; the equal pair falls back to ascending id.
	assert.Equal(t, tieA.ID, resp.Customers[0].CustomerID)
	assert.Equal(t, tieB.ID, resp.Customers[1].CustomerID)
	assert.Equal(t, small.ID, resp.Customers[2].CustomerID)
}

func TestListDuePagination(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	for i := 0; i < 25; i++ {
		customer := env.seedCustomer(t, fmt.Sprintf("Cust%02d", i), 10, "30", "0")
		env.seedEntry(t, customer.ID, i+1, 0, "0", date(2026, time.March, 1))
	}

	var firstTotals billingdomain.DueTotals
	seen := map[snowflake.ID]bool{}
	for page := 1; page <= 3; page++ {
		resp, err := env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{
			Pagination: pagination.Pagination{Page: page, PageSize: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, 25, resp.TotalRows)
		if page == 1 {
			firstTotals = resp.Totals
		} else {
			// Totals describe the whole listing, not the page.
			assert.Equal(t, firstTotals.TotalDue.String(), resp.Totals.TotalDue.String())
		}
		want := 10
		if page == 3 {
			want = 5
		}
		require.Len(t, resp.Customers, want)
		for _, customer := range resp.Customers {
			assert.False(t, seen[customer.CustomerID], "customer repeated across pages")
			seen[customer.CustomerID] = true
		}
	}
	assert.Len(t, seen, 25)

	resp, err := env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{
		Pagination: pagination.Pagination{Page: 4, PageSize: 10},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Customers)
	assert.Equal(t, 25, resp.TotalRows)
}

func TestListDueInvalidPagination(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	_, err := env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{
		Pagination: pagination.Pagination{Page: -1, PageSize: 10},
	})
	assert.ErrorIs(t, err, pagination.ErrInvalidPage)

	_, err = env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{
		Pagination: pagination.Pagination{Page: 1, PageSize: 500},
	})
	assert.ErrorIs(t, err, pagination.ErrInvalidPageSize)
}

func TestListDueSearch(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	ramesh := env.seedCustomer(t, "Ramesh Kumar", 10, "30", "0")
	env.seedEntry(t, ramesh.ID, 3, 0, "0", date(2026, time.March, 1))

	suresh := env.seedCustomer(t, "Suresh", 10, "30", "0")
	env.seedEntry(t, suresh.ID, 3, 0, "0", date(2026, time.March, 1))

	resp, err := env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{Search: "ramesh"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, ramesh.ID, resp.Customers[0].CustomerID)

	resp, err = env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{Search: suresh.Phone})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, suresh.ID, resp.Customers[0].CustomerID)

	resp, err = env.svc.ListDue(context.Background(), billingdomain.ListDueRequest{Search: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, resp.Customers)
	assert.Equal(t, 0, resp.Totals.Customers)
}

func TestMarkSettledIdempotent(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Ramesh", 15, "30", "0")
	env.seedEntry(t, customer.ID, 3, 0, "0", date(2026, time.March, 1))

	result, err := env.svc.MarkSettled(context.Background(), customer.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Updated)
	assert.False(t, result.Already)

	record := env.reload(t, customer.ID)
	assert.True(t, record.BillDone)
	require.NotNil(t, record.BillDoneDate)
	assert.Equal(t, "2026-03-15", record.BillDoneDate.Format("2006-01-02"))

	result, err = env.svc.MarkSettled(context.Background(), customer.ID.String())
	require.NoError(t, err)
	assert.False(t, result.Updated)
	assert.True(t, result.Already)

	var eventCount int64
	require.NoError(t, env.db.Raw(
		`SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, "billing.customer_settled",
	).Scan(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)

	var auditCount int64
	require.NoError(t, env.db.Raw(
		`SELECT COUNT(1) FROM audit_logs WHERE action = ?`, "billing.mark_settled",
	).Scan(&auditCount).Error)
	assert.Equal(t, int64(1), auditCount)
}

func TestMarkSettledUnknownCustomer(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	_, err := env.svc.MarkSettled(context.Background(), "123456789012345678")
	assert.ErrorIs(t, err, billingdomain.ErrCustomerNotFound)
}

func TestMarkSettledUsesBusinessDay(t *testing.T) {
	// 19:30 UTC is already past midnight in Kolkata, so the settlement date
	// must land on the next calendar day.
	env := newTestEnv(t, time.Date(2026, time.March, 14, 19, 30, 0, 0, time.UTC))
	customer := env.seedCustomer(t, "NightOwl", 15, "30", "0")

	result, err := env.svc.MarkSettled(context.Background(), customer.ID.String())
	require.NoError(t, err)
	assert.True(t, result.Updated)

	record := env.reload(t, customer.ID)
	require.NotNil(t, record.BillDoneDate)
	assert.Equal(t, "2026-03-15", record.BillDoneDate.Format("2006-01-02"))
}

func TestNormalizeReopensStaleSettlement(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Stale", 15, "30", "0")
	env.seedEntry(t, customer.ID, 4, 0, "0", date(2026, time.February, 20))
	env.settle(t, customer.ID, date(2026, time.February, 15))

	report, err := env.svc.NormalizeCycles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, 1, report.Reset)
	assert.Equal(t, 0, report.Skipped)

	record := env.reload(t, customer.ID)
	assert.False(t, record.BillDone)
	assert.Nil(t, record.BillDoneDate)

	var eventCount int64
	require.NoError(t, env.db.Raw(
		`SELECT COUNT(1) FROM billing_events WHERE event_type = ?`, "billing.cycle_reopened",
	).Scan(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount)
}

func TestNormalizePaidOffStaysSettled(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "PaidUp", 15, "30", "0")
	env.seedEntry(t, customer.ID, 4, 0, "120", date(2026, time.February, 20))
	env.settle(t, customer.ID, date(2026, time.February, 15))

	report, err := env.svc.NormalizeCycles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, 0, report.Reset)

	record := env.reload(t, customer.ID)
	assert.True(t, record.BillDone)
}

func TestNormalizeSameMonthUntouched(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "Fresh", 15, "30", "0")
	env.seedEntry(t, customer.ID, 4, 0, "0", date(2026, time.March, 1))
	env.settle(t, customer.ID, date(2026, time.March, 15))

	report, err := env.svc.NormalizeCycles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Candidates)
	assert.Equal(t, 0, report.Reset)

	record := env.reload(t, customer.ID)
	assert.True(t, record.BillDone)
}

func TestNormalizeIgnoresOtherBillDays(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "OtherDay", 20, "30", "0")
	env.seedEntry(t, customer.ID, 4, 0, "0", date(2026, time.February, 1))
	env.settle(t, customer.ID, date(2026, time.February, 20))

	report, err := env.svc.NormalizeCycles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Candidates)

	record := env.reload(t, customer.ID)
	assert.True(t, record.BillDone)
}

func TestNormalizeDay31NeverFiresInShortMonth(t *testing.T) {
	// April has 30 days, so a day-31 customer is not a candidate at all.
	env := newTestEnv(t, date(2026, time.April, 30))
	customer := env.seedCustomer(t, "EndOfMonth", 31, "30", "0")
	env.seedEntry(t, customer.ID, 4, 0, "0", date(2026, time.March, 1))
	env.settle(t, customer.ID, date(2026, time.March, 31))

	report, err := env.svc.NormalizeCycles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Candidates)
	assert.True(t, env.reload(t, customer.ID).BillDone)
}

func TestNormalizeNilSettledDateCountsAsStale(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))
	customer := env.seedCustomer(t, "NoDate", 15, "30", "0")
	env.seedEntry(t, customer.ID, 4, 0, "0", date(2026, time.February, 1))
	require.NoError(t, env.db.Exec(
		`UPDATE customers SET bill_done = ?, bill_done_date = NULL WHERE id = ?`,
		true, customer.ID,
	).Error)

	report, err := env.svc.NormalizeCycles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reset)
	assert.False(t, env.reload(t, customer.ID).BillDone)
}

func TestListDueTodayOrderingAndTotals(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	todayBig := env.seedCustomer(t, "TodayBig", 15, "30", "0")
	env.seedEntry(t, todayBig.ID, 10, 0, "0", date(2026, time.March, 1))

	todaySmall := env.seedCustomer(t, "TodaySmall", 15, "30", "0")
	env.seedEntry(t, todaySmall.ID, 2, 0, "0", date(2026, time.March, 1))

	otherDay := env.seedCustomer(t, "OtherDay", 20, "30", "0")
	env.seedEntry(t, otherDay.ID, 20, 0, "0", date(2026, time.March, 1))

	settled := env.seedCustomer(t, "Settled", 20, "30", "0")
	env.seedEntry(t, settled.ID, 5, 0, "0", date(2026, time.March, 1))
	env.settle(t, settled.ID, date(2026, time.March, 10))

	resp, err := env.svc.ListDueToday(context.Background(), billingdomain.ListDueTodayRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 3)

	// Today's bill-day customers rank first even when another customer owes
	// more overall.
	assert.Equal(t, todayBig.ID, resp.Customers[0].CustomerID)
	assert.Equal(t, todaySmall.ID, resp.Customers[1].CustomerID)
	assert.Equal(t, otherDay.ID, resp.Customers[2].CustomerID)
	assert.True(t, resp.Customers[0].DueToday)
	assert.False(t, resp.Customers[2].DueToday)

	// 10*30 + 2*30 for the two day-15 customers only.
	assert.Equal(t, 2, resp.TodayTotals.Customers)
	assert.Equal(t, "360", resp.TodayTotals.TotalDue.String())
}

func TestListDueTodaySkipsNonPositiveBalances(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	owing := env.seedCustomer(t, "Owing", 15, "30", "0")
	env.seedEntry(t, owing.ID, 4, 0, "0", date(2026, time.March, 1))

	// No ledger entries at all: due is zero.
	env.seedCustomer(t, "Fresh", 15, "30", "0")

	overpaid := env.seedCustomer(t, "Overpaid", 15, "30", "0")
	env.seedEntry(t, overpaid.ID, 1, 0, "100", date(2026, time.March, 1))

	resp, err := env.svc.ListDueToday(context.Background(), billingdomain.ListDueTodayRequest{})
	require.NoError(t, err)

	require.Len(t, resp.Customers, 1)
	assert.Equal(t, owing.ID, resp.Customers[0].CustomerID)
	assert.Equal(t, 1, resp.TotalRows)
	assert.Equal(t, 1, resp.TodayTotals.Customers)
	assert.Equal(t, "120", resp.TodayTotals.TotalDue.String())
}

func TestListDueTodayNormalizesFirst(t *testing.T) {
	env := newTestEnv(t, date(2026, time.March, 15))

	stale := env.seedCustomer(t, "Stale", 15, "30", "0")
	env.seedEntry(t, stale.ID, 4, 0, "0", date(2026, time.February, 20))
	env.settle(t, stale.ID, date(2026, time.February, 15))

	resp, err := env.svc.ListDueToday(context.Background(), billingdomain.ListDueTodayRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, stale.ID, resp.Customers[0].CustomerID)
	assert.True(t, resp.Customers[0].DueToday)
	assert.False(t, env.reload(t, stale.ID).BillDone)
}
