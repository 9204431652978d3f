package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	auditdomain "github.com/ayz7879/fg-plant/internal/audit/domain"
	billingdomain "github.com/ayz7879/fg-plant/internal/billing/domain"
	"github.com/ayz7879/fg-plant/internal/clock"
	"github.com/ayz7879/fg-plant/internal/config"
	customerdomain "github.com/ayz7879/fg-plant/internal/customer/domain"
	"github.com/ayz7879/fg-plant/internal/events"
	obscontext "github.com/ayz7879/fg-plant/internal/observability/context"
	"github.com/ayz7879/fg-plant/internal/observability/metrics"
	"github.com/ayz7879/fg-plant/internal/observability/tracing"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config
	Outbox *events.Outbox
	Audit  auditdomain.Service
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	clock        clock.Clock
	loc          *time.Location
	storeTimeout time.Duration
	outbox       *events.Outbox
	audit        auditdomain.Service
	metrics      *metrics.BillingMetrics
	tracer       oteltrace.Tracer
}

func NewService(p Params) (billingdomain.Service, error) {
	loc, err := time.LoadLocation(p.Config.BillingTimezone)
	if err != nil {
		return nil, err
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("billing.service"),
		clock:        p.Clock,
		loc:          loc,
		storeTimeout: p.Config.StoreTimeout,
		outbox:       p.Outbox,
		audit:        p.Audit,
		metrics:      metrics.Billing(p.Config.ServiceName),
		tracer:       otel.Tracer("billing.service"),
	}, nil
}

// dueRow is one customer joined with the column sums of its entry ledger.
type dueRow struct {
	ID              snowflake.ID
	Name            string
	Address         string
	Phone           string
	BillDay         int
	BillDone        bool
	BillDoneDate    *time.Time
	PricePerJar     decimal.Decimal
	PricePerCapsule decimal.Decimal
	JarGiven        int64
	JarTaken        int64
	CapsuleGiven    int64
	CapsuleTaken    int64
	Paid            decimal.Decimal
}

const dueRowsSQL = `
SELECT c.id, c.name, c.address, c.phone, c.bill_day, c.bill_done, c.bill_done_date,
       c.price_per_jar, c.price_per_capsule,
       COALESCE(SUM(e.jar_given), 0)     AS jar_given,
       COALESCE(SUM(e.jar_taken), 0)     AS jar_taken,
       COALESCE(SUM(e.capsule_given), 0) AS capsule_given,
       COALESCE(SUM(e.capsule_taken), 0) AS capsule_taken,
       COALESCE(SUM(e.customer_pay), 0)  AS paid
FROM customers c
LEFT JOIN daily_entries e ON e.customer_id = c.id`

const dueRowsGroupSQL = `
GROUP BY c.id, c.name, c.address, c.phone, c.bill_day, c.bill_done, c.bill_done_date,
         c.price_per_jar, c.price_per_capsule
ORDER BY c.id ASC`

func (s *Service) dueRows(ctx context.Context, search string, onlyUnsettled bool) ([]dueRow, error) {
	sql := dueRowsSQL
	var (
		where []string
		args  []any
	)
	if onlyUnsettled {
		where = append(where, "c.bill_done = ?")
		args = append(args, false)
	}
	if trimmed := strings.TrimSpace(search); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		where = append(where, "(LOWER(c.name) LIKE ? OR LOWER(c.address) LIKE ? OR c.phone LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if len(where) > 0 {
		sql += "\nWHERE " + strings.Join(where, " AND ")
	}
	sql += dueRowsGroupSQL

	var rows []dueRow
	if err := s.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// dueAmount derives the exact balance: charges for everything delivered minus
// everything paid. Sign decisions use the unrounded value.
func dueAmount(row dueRow) decimal.Decimal {
	jarCharges := row.PricePerJar.Mul(decimal.NewFromInt(row.JarGiven))
	capsuleCharges := row.PricePerCapsule.Mul(decimal.NewFromInt(row.CapsuleGiven))
	return jarCharges.Add(capsuleCharges).Sub(row.Paid)
}

func toDueCustomer(row dueRow, due decimal.Decimal, today int) billingdomain.DueCustomer {
	return billingdomain.DueCustomer{
		CustomerID:     row.ID,
		Name:           row.Name,
		Address:        row.Address,
		Phone:          row.Phone,
		BillDay:        row.BillDay,
		BillDone:       row.BillDone,
		BillDoneDate:   row.BillDoneDate,
		DueAmount:      due,
		DisplayDue:     due.IntPart(),
		DueToday:       row.BillDay == today,
		PendingJar:     row.JarGiven - row.JarTaken,
		PendingCapsule: row.CapsuleGiven - row.CapsuleTaken,
		TotalJarGiven:  row.JarGiven,
		TotalPaid:      row.Paid,
	}
}

func (s *Service) ComputeDue(ctx context.Context, customerID string, window billingdomain.DueWindow) (*billingdomain.DueBreakdown, error) {
	id, err := snowflake.ParseString(customerID)
	if err != nil {
		return nil, billingdomain.ErrInvalidCustomerID
	}
	if window.From != nil && window.To != nil &&
		truncateToDate(*window.From).After(truncateToDate(*window.To)) {
		return nil, billingdomain.ErrInvalidDateWindow
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	var customer customerdomain.Customer
	err = s.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, billingdomain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, classify(err)
	}

	var sums struct {
		JarGiven     int64
		CapsuleGiven int64
		Paid         decimal.Decimal
	}
	query := `SELECT COALESCE(SUM(jar_given), 0)     AS jar_given,
	                 COALESCE(SUM(capsule_given), 0) AS capsule_given,
	                 COALESCE(SUM(customer_pay), 0)  AS paid
	          FROM daily_entries
	          WHERE customer_id = ?`
	args := []any{id}
	if window.From != nil {
		query += " AND entry_date >= ?"
		args = append(args, truncateToDate(*window.From))
	}
	if window.To != nil {
		query += " AND entry_date <= ?"
		args = append(args, truncateToDate(*window.To))
	}
	err = s.db.WithContext(ctx).Raw(query, args...).Scan(&sums).Error
	if err != nil {
		return nil, classify(err)
	}

	jarCharges := customer.PricePerJar.Mul(decimal.NewFromInt(sums.JarGiven))
	capsuleCharges := customer.PricePerCapsule.Mul(decimal.NewFromInt(sums.CapsuleGiven))
	due := jarCharges.Add(capsuleCharges).Sub(sums.Paid)

	return &billingdomain.DueBreakdown{
		CustomerID:        id,
		TotalJarGiven:     sums.JarGiven,
		TotalCapsuleGiven: sums.CapsuleGiven,
		PricePerJar:       customer.PricePerJar,
		PricePerCapsule:   customer.PricePerCapsule,
		JarCharges:        jarCharges,
		CapsuleCharges:    capsuleCharges,
		TotalPaid:         sums.Paid,
		DueAmount:         due,
		DisplayDue:        due.IntPart(),
	}, nil
}

func (s *Service) ListDue(ctx context.Context, req billingdomain.ListDueRequest) (*billingdomain.ListDueResponse, error) {
	page := req.Pagination.Normalize()
	if err := page.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	rows, err := s.dueRows(ctx, req.Search, false)
	if err != nil {
		return nil, err
	}

	today := s.businessNow().Day()
	due := make([]billingdomain.DueCustomer, 0, len(rows))
	totals := billingdomain.DueTotals{TotalDue: decimal.Zero}
	for _, row := range rows {
		amount := dueAmount(row)
		if !amount.IsPositive() {
			continue
		}
		due = append(due, toDueCustomer(row, amount, today))
		totals.Customers++
		totals.TotalDue = totals.TotalDue.Add(amount)
	}
	totals.DisplayDue = totals.TotalDue.IntPart()

	// Highest due first; equal dues fall back to customer id so pages are
	// stable across requests.
	sort.SliceStable(due, func(i, j int) bool {
		cmp := due[i].DueAmount.Cmp(due[j].DueAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return due[i].CustomerID < due[j].CustomerID
	})

	s.metrics.SetDueCustomers(len(due))

	start, end := page.Slice(len(due))
	return &billingdomain.ListDueResponse{
		Customers: due[start:end],
		Totals:    totals,
		Page:      page.Page,
		PageSize:  page.PageSize,
		TotalRows: len(due),
	}, nil
}

func (s *Service) ListDueToday(ctx context.Context, req billingdomain.ListDueTodayRequest) (*billingdomain.ListDueTodayResponse, error) {
	page := req.Pagination.Normalize()
	if err := page.Validate(); err != nil {
		return nil, err
	}

	// Stale settlements from a previous month must reopen before the listing
	// is computed, otherwise a customer billed today could be hidden.
	if _, err := s.NormalizeCycles(ctx); err != nil {
		s.log.Warn("cycle normalization failed before due-today listing", zap.Error(err))
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	rows, err := s.dueRows(ctx, req.Search, true)
	if err != nil {
		return nil, err
	}

	today := s.businessNow().Day()
	pending := make([]billingdomain.DueCustomer, 0, len(rows))
	todayTotals := billingdomain.DueTotals{TotalDue: decimal.Zero}
	for _, row := range rows {
		amount := dueAmount(row)
		if !amount.IsPositive() {
			continue
		}
		customer := toDueCustomer(row, amount, today)
		pending = append(pending, customer)
		if customer.DueToday {
			todayTotals.Customers++
			todayTotals.TotalDue = todayTotals.TotalDue.Add(amount)
		}
	}
	todayTotals.DisplayDue = todayTotals.TotalDue.IntPart()

	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].DueToday != pending[j].DueToday {
			return pending[i].DueToday
		}
		cmp := pending[i].DueAmount.Cmp(pending[j].DueAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return pending[i].CustomerID < pending[j].CustomerID
	})

	start, end := page.Slice(len(pending))
	return &billingdomain.ListDueTodayResponse{
		Customers:   pending[start:end],
		TodayTotals: todayTotals,
		Page:        page.Page,
		PageSize:    page.PageSize,
		TotalRows:   len(pending),
	}, nil
}

func (s *Service) MarkSettled(ctx context.Context, customerID string) (*billingdomain.SettleResult, error) {
	id, err := snowflake.ParseString(customerID)
	if err != nil {
		return nil, billingdomain.ErrInvalidCustomerID
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "billing.MarkSettled", oteltrace.WithAttributes(
		tracing.SafeAttributes(attribute.String("customer_id", customerID))...))
	defer span.End()

	var customer customerdomain.Customer
	err = s.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, billingdomain.ErrCustomerNotFound
	}
	if err != nil {
		return nil, classify(err)
	}

	settledDate := truncateToDate(s.businessNow())
	now := time.Now().UTC()

	var updated bool
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Guarded update: only an open cycle can settle, so concurrent calls
		// settle exactly once.
		result := tx.Exec(
			`UPDATE customers
			 SET bill_done = ?, bill_done_date = ?, updated_at = ?
			 WHERE id = ? AND bill_done = ?`,
			true, settledDate, now, id, false,
		)
		if result.Error != nil {
			return result.Error
		}
		updated = result.RowsAffected > 0
		if !updated {
			return nil
		}

		payload := events.SettlementPayload{
			CustomerID:  id.String(),
			SettledDate: settledDate.Format("2006-01-02"),
		}
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventCustomerSettled,
			Payload:   payload.ToMap(),
			DedupeKey: "settle:" + id.String() + ":" + payload.SettledDate,
		}); err != nil {
			return err
		}

		var actorID *string
		if actor := obscontext.ActorFromContext(ctx); actor != "" {
			actorID = &actor
		}
		return s.audit.WriteTx(ctx, tx, auditdomain.Record{
			ActorType:  auditdomain.ActorTypeUser,
			ActorID:    actorID,
			Action:     auditdomain.ActionMarkSettled,
			TargetType: "customer",
			TargetID:   id.String(),
			Metadata:   map[string]any{"settled_date": payload.SettledDate},
		})
	})
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return nil, classify(err)
	}

	if !updated {
		return &billingdomain.SettleResult{Updated: false, Already: true}, nil
	}

	s.metrics.IncSettlement()
	s.log.Info("customer settled",
		zap.String("customer_id", id.String()),
		zap.String("settled_date", settledDate.Format("2006-01-02")))
	return &billingdomain.SettleResult{Updated: true}, nil
}

func (s *Service) NormalizeCycles(ctx context.Context) (*billingdomain.NormalizeReport, error) {
	ctx, span := s.tracer.Start(ctx, "billing.NormalizeCycles")
	defer span.End()

	now := s.businessNow()
	report := &billingdomain.NormalizeReport{Day: now.Day(), RanAt: now}

	var candidates []struct {
		ID           snowflake.ID
		BillDay      int
		BillDoneDate *time.Time
	}
	listCtx, cancel := s.storeCtx(ctx)
	err := s.db.WithContext(listCtx).Raw(
		`SELECT id, bill_day, bill_done_date
		 FROM customers
		 WHERE bill_day = ? AND bill_done = ?`,
		now.Day(), true,
	).Scan(&candidates).Error
	cancel()
	if err != nil {
		span.RecordError(tracing.SafeError(err))
		return nil, classify(err)
	}
	report.Candidates = len(candidates)

	for _, candidate := range candidates {
		if candidate.BillDoneDate != nil && sameMonth(*candidate.BillDoneDate, now) {
			continue
		}
		if err := s.resetCycle(ctx, candidate.ID, now); err != nil {
			// One broken customer must not block the rest of the pass.
			report.Skipped++
			s.metrics.IncNormalizeError()
			s.log.Warn("cycle reset skipped",
				zap.String("customer_id", candidate.ID.String()),
				zap.Error(err))
			continue
		}
		report.Reset++
	}

	span.SetAttributes(
		attribute.Int("candidates", report.Candidates),
		attribute.Int("reset", report.Reset),
		attribute.Int("skipped", report.Skipped),
	)
	return report, nil
}

// resetCycle reopens one settled cycle when the customer still owes money.
func (s *Service) resetCycle(ctx context.Context, id snowflake.ID, now time.Time) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	breakdown, err := s.ComputeDue(ctx, id.String(), billingdomain.DueWindow{})
	if err != nil {
		return err
	}
	if !breakdown.DueAmount.IsPositive() {
		// Fully paid customers stay settled; nothing to collect this month.
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(
			`UPDATE customers
			 SET bill_done = ?, bill_done_date = NULL, updated_at = ?
			 WHERE id = ? AND bill_done = ?`,
			false, time.Now().UTC(), id, true,
		)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race to a concurrent reset; already open.
			return nil
		}

		s.metrics.IncCycleReset()
		payload := events.CycleReopenedPayload{
			CustomerID: id.String(),
			BillDay:    now.Day(),
			ResetDate:  now.Format("2006-01-02"),
		}
		if err := s.outbox.PublishTx(ctx, tx, events.Event{
			Type:      events.EventCycleReopened,
			Payload:   payload.ToMap(),
			DedupeKey: "reopen:" + id.String() + ":" + payload.ResetDate,
		}); err != nil {
			return err
		}

		return s.audit.WriteTx(ctx, tx, auditdomain.Record{
			ActorType:  auditdomain.ActorTypeSystem,
			Action:     auditdomain.ActionCycleReopened,
			TargetType: "customer",
			TargetID:   id.String(),
			Metadata: map[string]any{
				"bill_day":   now.Day(),
				"reset_date": payload.ResetDate,
				"due_amount": breakdown.DueAmount.String(),
			},
		})
	})
}

func (s *Service) businessNow() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// classify maps store-level failures onto the billing error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return billingdomain.ErrTransient
	}
	return err
}
