package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

func TestPrometheusMetricsRegistersAndObserves(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)

	metrics.ObserveShaping(domain.ShapePassthrough)
	metrics.ObserveShaping(domain.ShapeFallback)
	metrics.ObserveRankingLatency("ok", 120*time.Millisecond)
	metrics.CountRouterFallback("completion_error")
	metrics.ObserveDispatch("call_tool_script", 40*time.Millisecond)

	families, err := registry.Gather()
	require.NoError(t, err)

	names := make(map[string]bool, len(families))
	for _, family := range families {
		names[family.GetName()] = true
	}
	assert.True(t, names["utcpgw_shaping_decisions_total"])
	assert.True(t, names["utcpgw_ranking_latency_seconds"])
	assert.True(t, names["utcpgw_router_fallbacks_total"])
	assert.True(t, names["utcpgw_dispatch_duration_seconds"])
}

func TestPrometheusMetricsDuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewPrometheusMetrics(registry)
	assert.Panics(t, func() { NewPrometheusMetrics(registry) })
}
