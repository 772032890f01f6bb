package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsCounters(t *testing.T) {
	m := New()
	m.BlockScanned()
	m.BlockScanned()
	m.EventClassified("BUY")
	m.Post("arena", "posted")
	m.Cursor(42)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.blocksScanned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsClassified.WithLabelValues("BUY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.posts.WithLabelValues("arena", "posted")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.cursor))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.BlockScanned()
	m.BlockError()
	m.EventClassified("UNKNOWN")
	m.ProfileStage("handle", "ok")
	m.Post("discord", "failed")
	m.Cursor(1)
}
