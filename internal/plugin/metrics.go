package plugin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SyncMetrics 동기화 Prometheus 메트릭
type SyncMetrics struct {
	runs     *prometheus.CounterVec
	records  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewSyncMetrics reg 에 동기화 메트릭 등록 (nil 이면 기본 레지스트리)
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &SyncMetrics{
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plugin_sync_runs_total",
				Help: "Total number of plugin synchronization runs",
			},
			[]string{"result"},
		),
		records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plugin_sync_records_total",
				Help: "Plugin point/plugin records touched by synchronization",
			},
			[]string{"kind", "action"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "plugin_sync_duration_seconds",
				Help:    "Plugin synchronization duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (sm *SyncMetrics) observe(result *SyncResult, err error, elapsed time.Duration) {
	if sm == nil {
		return
	}

	switch {
	case err != nil:
		sm.runs.WithLabelValues("error").Inc()
	case result.Skipped:
		sm.runs.WithLabelValues("skipped").Inc()
		return
	default:
		sm.runs.WithLabelValues("success").Inc()
	}
	sm.duration.Observe(elapsed.Seconds())

	sm.addStats("point", result.Points)
	sm.addStats("plugin", result.Plugins)
}

func (sm *SyncMetrics) addStats(kind string, s SyncStats) {
	add := func(action string, n int) {
		if n > 0 {
			sm.records.WithLabelValues(kind, action).Add(float64(n))
		}
	}
	add("created", s.Created)
	add("reactivated", s.Reactivated)
	add("updated", s.Updated)
	add("removed", s.Removed)
	add("deleted", s.Deleted)
}
