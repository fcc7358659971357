package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

type PrometheusMetrics struct {
	shapingDecisions *prometheus.CounterVec
	rankingLatency   *prometheus.HistogramVec
	routerFallbacks  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		shapingDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcpgw_shaping_decisions_total",
				Help: "Total number of response shaping decisions by outcome",
			},
			[]string{"decision"},
		),
		rankingLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "utcpgw_ranking_latency_seconds",
				Help:    "Latency of semantic tool ranking calls in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		routerFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "utcpgw_router_fallbacks_total",
				Help: "Total number of lexical fallbacks taken by the tool router",
			},
			[]string{"reason"},
		),
		dispatchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "utcpgw_dispatch_duration_seconds",
				Help:    "Duration of gateway tool dispatches in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"tool"},
		),
	}
}

func (p *PrometheusMetrics) ObserveShaping(decision string) {
	p.shapingDecisions.WithLabelValues(decision).Inc()
}

func (p *PrometheusMetrics) ObserveRankingLatency(outcome string, duration time.Duration) {
	p.rankingLatency.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (p *PrometheusMetrics) CountRouterFallback(reason string) {
	p.routerFallbacks.WithLabelValues(reason).Inc()
}

func (p *PrometheusMetrics) ObserveDispatch(tool string, duration time.Duration) {
	p.dispatchDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
