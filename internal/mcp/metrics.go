package mcp

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the tool dispatch metrics.
type Metrics struct {
	callsTotal     *prometheus.CounterVec
	callDuration   *prometheus.HistogramVec
	toolsAvailable prometheus.Gauge
}

// NewMetrics registers the dispatch metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		callsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gitlabd",
			Name:      "tool_calls_total",
			Help:      "Tool calls by tool name and outcome (ok or an error kind).",
		}, []string{"tool", "outcome"}),
		callDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gitlabd",
			Name:      "tool_call_duration_seconds",
			Help:      "Tool call duration in seconds, including the upstream API round trip.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"tool"}),
		toolsAvailable: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "gitlabd",
			Name:      "tools_available",
			Help:      "Number of tools that passed the gate at startup.",
		}),
	}
}

func (m *Metrics) observeCall(tool string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if te, ok := err.(*ToolError); ok {
			outcome = string(te.Kind)
		}
	}
	m.callsTotal.WithLabelValues(tool, outcome).Inc()
	m.callDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
}

func (m *Metrics) setToolsAvailable(n int) {
	if m == nil {
		return
	}
	m.toolsAvailable.Set(float64(n))
}
