package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	operations *prometheus.CounterVec
	reminders  prometheus.Counter
	ticks      *prometheus.CounterVec
	orders     *prometheus.GaugeVec
	backups    *prometheus.CounterVec
}

// New registers the ledger metrics. A nil registerer uses the default one.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_ledger_operations_total",
			Help: "Ledger mutations by operation and result.",
		},
		[]string{"operation", "result"}, // ok | error
	)

	reminders := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rental_ledger_reminders_sent_total",
			Help: "Expiry reminders emitted.",
		},
	)

	ticks := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_ledger_monitor_ticks_total",
			Help: "Reminder monitor ticks by result.",
		},
		[]string{"result"},
	)

	orders := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rental_ledger_orders",
			Help: "Stored orders by status.",
		},
		[]string{"status"},
	)

	backups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_ledger_backups_total",
			Help: "Backup exports and restores by target and result.",
		},
		[]string{"action", "result"},
	)

	registerer.MustRegister(operations, reminders, ticks, orders, backups)

	return &Metrics{
		operations: operations,
		reminders:  reminders,
		ticks:      ticks,
		orders:     orders,
		backups:    backups,
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, result(err)).Inc()
}

func (m *Metrics) AddReminders(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reminders.Add(float64(n))
}

func (m *Metrics) ObserveTick(err error) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) SetOrders(status string, n int) {
	if m == nil {
		return
	}
	m.orders.WithLabelValues(status).Set(float64(n))
}

func (m *Metrics) ObserveBackup(action string, err error) {
	if m == nil {
		return
	}
	m.backups.WithLabelValues(action, result(err)).Inc()
}
