package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the analysis pipeline's Prometheus instruments. All methods
// are safe on a nil receiver so components can treat metrics as optional.
type Metrics struct {
	cyclesTotal        *prometheus.CounterVec
	commandsClassified prometheus.Counter
	lastAnalysisTS     prometheus.Gauge
	snapshotsPruned    prometheus.Counter
	cacheHits          prometheus.Counter
}

// New registers the instruments on reg. Pass prometheus.DefaultRegisterer in
// binaries and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "honeysift_analysis_cycles_total",
			Help: "Analysis cycles by outcome.",
		}, []string{"status"}),
		commandsClassified: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "honeysift_commands_classified_total",
			Help: "Commands run through the classifier during analysis cycles.",
		}),
		lastAnalysisTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "honeysift_last_analysis_timestamp_seconds",
			Help: "Unix timestamp of the last persisted analysis cycle.",
		}),
		snapshotsPruned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "honeysift_snapshots_pruned_total",
			Help: "Snapshot files removed by retention.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "honeysift_prediction_cache_hits_total",
			Help: "Predictions served from the LRU cache.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.cyclesTotal, m.commandsClassified, m.lastAnalysisTS, m.snapshotsPruned, m.cacheHits)
	}
	return m
}

func (m *Metrics) IncCycle(status string) {
	if m == nil {
		return
	}
	m.cyclesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) AddClassified(n int) {
	if m == nil {
		return
	}
	m.commandsClassified.Add(float64(n))
}

func (m *Metrics) SetLastAnalysis(unixSeconds float64) {
	if m == nil {
		return
	}
	m.lastAnalysisTS.Set(unixSeconds)
}

func (m *Metrics) AddPruned(n int) {
	if m == nil {
		return
	}
	m.snapshotsPruned.Add(float64(n))
}

func (m *Metrics) IncCacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}
