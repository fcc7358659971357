package domain

import "time"

// Shaping decisions reported to metrics.
const (
	ShapePassthrough = "passthrough"
	ShapeTruncate    = "truncate"
	ShapeSummarize   = "summarize"
	ShapeFallback    = "summarize_fallback"
)

// Metrics receives gateway observations. Implementations must be safe for
// concurrent use.
type Metrics interface {
	ObserveShaping(decision string)
	ObserveRankingLatency(model string, d time.Duration)
	CountRouterFallback(reason string)
	ObserveDispatch(status string, d time.Duration)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveShaping(string)                       {}
func (NopMetrics) ObserveRankingLatency(string, time.Duration) {}
func (NopMetrics) CountRouterFallback(string)                  {}
func (NopMetrics) ObserveDispatch(string, time.Duration)       {}
