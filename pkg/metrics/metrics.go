package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records the operational counters exposed on /metrics. All methods
// are nil-safe so tests can pass a zero value.
type Metrics struct {
	ordersCreated  prometheus.Counter
	duplicateFlags prometheus.Counter
	transitions    *prometheus.CounterVec
	ledgerPosts    *prometheus.CounterVec
	importRows     *prometheus.CounterVec
}

// New registers the service metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted through create or import.",
	})
	duplicateFlags := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_duplicate_flags_total",
		Help: "Orders parked as possible duplicates on creation.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"to"})
	ledgerPosts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_ledger_posts_total",
		Help: "Inventory ledger entries by transaction type.",
	}, []string{"type"})
	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "import_rows_total",
		Help: "Spreadsheet import rows by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(ordersCreated, duplicateFlags, transitions, ledgerPosts, importRows)
	return &Metrics{
		ordersCreated:  ordersCreated,
		duplicateFlags: duplicateFlags,
		transitions:    transitions,
		ledgerPosts:    ledgerPosts,
		importRows:     importRows,
	}
}

// IncOrdersCreated counts one accepted order.
func (m *Metrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncDuplicateFlag counts one order parked for duplicate review.
func (m *Metrics) IncDuplicateFlag() {
	if m == nil || m.duplicateFlags == nil {
		return
	}
	m.duplicateFlags.Inc()
}

// IncTransition counts one status transition into the given status.
func (m *Metrics) IncTransition(to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// IncLedgerPost counts one inventory ledger entry of the given type.
func (m *Metrics) IncLedgerPost(transactionType string) {
	if m == nil || m.ledgerPosts == nil {
		return
	}
	m.ledgerPosts.WithLabelValues(normalizeLabel(transactionType)).Inc()
}

// IncImportRows counts import rows by outcome ("imported", "skipped").
func (m *Metrics) IncImportRows(outcome string, count int) {
	if m == nil || m.importRows == nil || count <= 0 {
		return
	}
	m.importRows.WithLabelValues(normalizeLabel(outcome)).Add(float64(count))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
