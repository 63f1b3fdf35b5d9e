package plugin

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSyncMetrics(t *testing.T) {
	sm := NewSyncMetrics(prometheus.NewRegistry())
	env := newTestEnv(t, WithMetrics(sm))
	declareMyPlugins(env.registry)

	env.sync(t, SyncOptions{})
	env.sync(t, SyncOptions{})

	assert.Equal(t, 2.0, testutil.ToFloat64(sm.runs.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.records.WithLabelValues("point", "created")))
	assert.Equal(t, 3.0, testutil.ToFloat64(sm.records.WithLabelValues("plugin", "created")))

	env.registry.Reset()
	env.sync(t, SyncOptions{DeleteRemoved: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.records.WithLabelValues("point", "removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.records.WithLabelValues("point", "deleted")))
}

func TestSyncMetrics_Nil(t *testing.T) {
	var sm *SyncMetrics
	assert.NotPanics(t, func() {
		sm.observe(&SyncResult{}, nil, 0)
	})
}
