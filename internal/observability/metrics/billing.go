package metrics

import (
	"errors"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// BillingMetrics counts billing-cycle activity for operational dashboards.
type BillingMetrics struct {
	settlements     prometheus.Counter
	cycleResets     prometheus.Counter
	normalizeErrors prometheus.Counter
	dueCustomers    prometheus.Gauge
}

var (
	billingMetricsOnce sync.Once
	billingMetrics     *BillingMetrics
)

// Billing returns the process-wide billing metrics instance.
func Billing(serviceName string) *BillingMetrics {
	billingMetricsOnce.Do(func() {
		billingMetrics = newBillingMetrics(prometheus.DefaultRegisterer, serviceName)
	})
	return billingMetrics
}

// ResetBillingMetricsForTest clears the singleton between test runs.
func ResetBillingMetricsForTest() {
	billingMetricsOnce = sync.Once{}
	billingMetrics = nil
}

func newBillingMetrics(registerer prometheus.Registerer, serviceName string) *BillingMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	name := strings.TrimSpace(serviceName)
	if name == "" {
		name = "fgplant"
	}
	constLabels := prometheus.Labels{"service": name}

	m := &BillingMetrics{
		settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "billing_settlements_total",
			Help:        "Number of customers marked settled.",
			ConstLabels: constLabels,
		}),
		cycleResets: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "billing_cycle_resets_total",
			Help:        "Number of stale settlements reverted to pending by normalization.",
			ConstLabels: constLabels,
		}),
		normalizeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "billing_normalize_errors_total",
			Help:        "Per-customer failures skipped during normalization passes.",
			ConstLabels: constLabels,
		}),
		dueCustomers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "billing_due_customers",
			Help:        "Customers owing money as of the last due listing.",
			ConstLabels: constLabels,
		}),
	}

	for _, collector := range []prometheus.Collector{m.settlements, m.cycleResets, m.normalizeErrors, m.dueCustomers} {
		if err := registerer.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
		}
	}

	return m
}

func (m *BillingMetrics) IncSettlement() {
	if m == nil {
		return
	}
	m.settlements.Inc()
}

func (m *BillingMetrics) IncCycleReset() {
	if m == nil {
		return
	}
	m.cycleResets.Inc()
}

func (m *BillingMetrics) IncNormalizeError() {
	if m == nil {
		return
	}
	m.normalizeErrors.Inc()
}

func (m *BillingMetrics) SetDueCustomers(count int) {
	if m == nil {
		return
	}
	m.dueCustomers.Set(float64(count))
}
