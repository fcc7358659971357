// Package router selects the tools most relevant to a natural-language
// query. It asks a completion model to rank against a compact catalog
// digest and falls back to lexical search whenever the model is absent,
// disabled, or misbehaves.
package router

import (
	"context"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

type Router struct {
	policy  domain.RoutingPolicy
	model   model.BaseChatModel
	engine  domain.Engine
	metrics domain.Metrics
	logger  *zap.Logger
}

type Options struct {
	Policy  domain.RoutingPolicy
	Model   model.BaseChatModel
	Engine  domain.Engine
	Metrics domain.Metrics
	Logger  *zap.Logger
}

func New(opts Options) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &Router{
		policy:  opts.Policy,
		model:   opts.Model,
		engine:  opts.Engine,
		metrics: metrics,
		logger:  logger.Named("router"),
	}
}

// Rank returns up to limit tool records relevant to the query, most
// relevant first. A failing or unusable model ranking never fails the
// call: it degrades to lexical search against the live tool set.
func (r *Router) Rank(ctx context.Context, query string, records []domain.ToolRecord, limit int) ([]domain.ToolRecord, error) {
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	if !r.policy.Enabled || r.model == nil || len(records) == 0 {
		return r.lexical(ctx, query, limit)
	}

	ranked, err := r.semantic(ctx, query, records, limit)
	if err != nil {
		r.logger.Warn("semantic ranking failed, falling back to lexical search",
			zap.String("query", query),
			zap.Error(err),
		)
		r.countFallback("completion_error")
		return r.lexical(ctx, query, limit)
	}
	return ranked, nil
}

func (r *Router) semantic(ctx context.Context, query string, records []domain.ToolRecord, limit int) ([]domain.ToolRecord, error) {
	start := time.Now()

	messages := []*schema.Message{
		schema.SystemMessage(rankingSystemPrompt),
		schema.UserMessage(rankingUserPrompt(query, records, limit)),
	}
	response, err := r.model.Generate(ctx, messages, model.WithTemperature(0))
	if err != nil {
		r.observeLatency("error", start)
		return nil, domain.Wrap(domain.CodeUnavailable, "router.semantic", err)
	}
	if response == nil || response.Content == "" {
		r.observeLatency("empty", start)
		return nil, domain.E(domain.CodeUnavailable, "router.semantic", "completion returned no content", nil)
	}
	r.observeLatency("ok", start)

	names := parseRankedNames(response.Content)
	return resolveRanked(names, records, limit), nil
}

func (r *Router) lexical(ctx context.Context, query string, limit int) ([]domain.ToolRecord, error) {
	results, err := r.engine.SearchTools(ctx, query, limit)
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "router.lexical", err)
	}
	return results, nil
}

func (r *Router) observeLatency(outcome string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveRankingLatency(outcome, time.Since(start))
	}
}

func (r *Router) countFallback(reason string) {
	if r.metrics != nil {
		r.metrics.CountRouterFallback(reason)
	}
}
