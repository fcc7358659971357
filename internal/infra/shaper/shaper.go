package shaper

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

// Shaper decides how a raw tool result reaches the agent: unchanged,
// truncated, or summarized through the completion API. Summarization is
// always best-effort; truncation is the floor. A completion failure is
// never surfaced to the caller.
type Shaper struct {
	policy  domain.FilterPolicy
	model   model.BaseChatModel
	metrics domain.Metrics
	logger  *zap.Logger
}

// New builds a Shaper. A nil chat model means no completion-API credential
// is configured and the shaper degrades to truncation.
func New(policy domain.FilterPolicy, chatModel model.BaseChatModel, metrics domain.Metrics, logger *zap.Logger) *Shaper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &Shaper{
		policy:  policy,
		model:   chatModel,
		metrics: metrics,
		logger:  logger.Named("shaper"),
	}
}

// CanSummarize reports whether the summarization branch is reachable.
func (s *Shaper) CanSummarize() bool {
	return s.model != nil
}

// Shape applies the response-shaping decision tree to content under the
// configured policy.
func (s *Shaper) Shape(ctx context.Context, content, purpose string) string {
	return s.ShapeWith(ctx, content, purpose, s.policy)
}

// ShapeWith applies the decision tree under a caller-supplied policy.
// Per-call overrides (an output budget or an explicit filter request)
// arrive here as a modified copy of the configured policy.
func (s *Shaper) ShapeWith(ctx context.Context, content, purpose string, policy domain.FilterPolicy) string {
	limit := policy.MaxResponseChars
	length := len([]rune(content))

	switch {
	case policy.ForceSummarize:
		// Forced summarization bypasses every length check.
		return s.summarize(ctx, content, purpose, limit)
	case !policy.Enabled || s.model == nil:
		if length > limit {
			s.metrics.ObserveShaping(domain.ShapeTruncate)
			return Truncate(content, limit)
		}
		s.metrics.ObserveShaping(domain.ShapePassthrough)
		return content
	case length <= limit:
		s.metrics.ObserveShaping(domain.ShapePassthrough)
		return content
	case length < policy.SummarizeThreshold:
		s.metrics.ObserveShaping(domain.ShapeTruncate)
		return Truncate(content, limit)
	default:
		return s.summarize(ctx, content, purpose, limit)
	}
}

// summarize asks the completion API to compress content, falling back to
// truncation on any failure. The input is pre-capped before it leaves the
// process so upstream cost stays bounded regardless of policy.
func (s *Shaper) summarize(ctx context.Context, content, purpose string, limit int) string {
	if s.model == nil {
		s.metrics.ObserveShaping(domain.ShapeFallback)
		return Truncate(content, limit)
	}

	input := content
	if len([]rune(input)) > domain.SummarizeInputCap {
		input = TruncateWithGuidance(input, domain.SummarizeInputCap, "input capped before summarization")
	}

	system := genericSummarySystemPrompt
	if strings.TrimSpace(purpose) != "" {
		system = purposeSummarySystemPrompt(purpose, limit)
	}
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(summaryUserPrompt(input, limit)),
	}

	response, err := s.model.Generate(ctx, messages)
	if err != nil {
		s.logger.Warn("summarization failed, falling back to truncation", zap.Error(err))
		s.metrics.ObserveShaping(domain.ShapeFallback)
		return Truncate(content, limit)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		s.logger.Warn("summarization returned empty content, falling back to truncation")
		s.metrics.ObserveShaping(domain.ShapeFallback)
		return Truncate(content, limit)
	}

	s.metrics.ObserveShaping(domain.ShapeSummarize)
	return response.Content
}
