package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "launchscope"

// Metrics holds the monitor's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	blocksScanned    prometheus.Counter
	blockErrors      prometheus.Counter
	cursor           prometheus.Gauge
	eventsClassified *prometheus.CounterVec
	profileStages    *prometheus.CounterVec
	posts            *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		blocksScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_scanned_total",
			Help:      "Blocks scanned by the poller.",
		}),
		blockErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_errors_total",
			Help:      "Blocks skipped because they failed to load or process.",
		}),
		cursor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cursor_block",
			Help:      "Last processed block number.",
		}),
		eventsClassified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_classified_total",
			Help:      "Transactions to the tracked contract by kind.",
		}, []string{"kind"}),
		profileStages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_stage_total",
			Help:      "Profile resolver stage outcomes.",
		}, []string{"stage", "result"}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification outcomes by channel.",
		}, []string{"channel", "result"}),
	}
	m.Registry.MustRegister(m.blocksScanned, m.blockErrors, m.cursor, m.eventsClassified, m.profileStages, m.posts)
	return m
}

func (m *Metrics) BlockScanned() {
	if m == nil {
		return
	}
	m.blocksScanned.Inc()
}

func (m *Metrics) BlockError() {
	if m == nil {
		return
	}
	m.blockErrors.Inc()
}

func (m *Metrics) Cursor(block uint64) {
	if m == nil {
		return
	}
	m.cursor.Set(float64(block))
}

func (m *Metrics) EventClassified(kind string) {
	if m == nil {
		return
	}
	m.eventsClassified.WithLabelValues(kind).Inc()
}

func (m *Metrics) ProfileStage(stage, result string) {
	if m == nil {
		return
	}
	m.profileStages.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) Post(channel, result string) {
	if m == nil {
		return
	}
	m.posts.WithLabelValues(channel, result).Inc()
}
