package daemon

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the gauges exported at /metrics. Each service owns its own
// registry so tests can build several services in one process.
type metrics struct {
	registry *prometheus.Registry

	balance     prometheus.Gauge
	totalSpend  prometheus.Gauge
	totalCredit prometheus.Gauge
	dailySpend  prometheus.Gauge
	personNet   prometheus.Gauge
	entries     *prometheus.GaugeVec
	onboarded   prometheus.Gauge
}

func newMetrics() *metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "stipend", Name: name, Help: help})
	}
	m := &metrics{
		registry:    prometheus.NewRegistry(),
		balance:     gauge("balance", "Monthly budget plus credits minus spends."),
		totalSpend:  gauge("total_spend", "Sum of all spend entries."),
		totalCredit: gauge("total_credit", "Sum of all credit entries."),
		dailySpend:  gauge("daily_spend", "Spend recorded on the current calendar day."),
		personNet:   gauge("person_net", "Received minus given across the person ledger."),
		onboarded:   gauge("onboarded", "1 when a profile exists."),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stipend",
			Name:      "entries",
			Help:      "Number of ledger entries by ledger.",
		}, []string{"ledger"}),
	}
	m.registry.MustRegister(m.balance, m.totalSpend, m.totalCredit, m.dailySpend, m.personNet, m.onboarded, m.entries)
	return m
}

func (m *metrics) observe(snap Snapshot) {
	m.balance.Set(snap.Balance.InexactFloat64())
	m.totalSpend.Set(snap.TotalSpend.InexactFloat64())
	m.totalCredit.Set(snap.TotalCredit.InexactFloat64())
	m.dailySpend.Set(snap.DailySpend.InexactFloat64())
	m.personNet.Set(snap.PersonNet.InexactFloat64())
	m.entries.WithLabelValues("budget").Set(float64(snap.Transactions))
	m.entries.WithLabelValues("person").Set(float64(snap.PersonTransactions))
	if snap.Onboarded {
		m.onboarded.Set(1)
	} else {
		m.onboarded.Set(0)
	}
}
