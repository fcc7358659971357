package envconfig

import (
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

// Resolver turns layered environment input into a validated Configuration.
type Resolver struct {
	logger *zap.Logger
}

func NewResolver(logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{logger: logger.Named("envconfig")}
}

// Resolve parses the environment and validates the result. The provider
// shapes are mutually exclusive: the first shape with any match wins
// entirely and is never merged with a later one.
func (r *Resolver) Resolve(env Environment) (domain.Config, error) {
	var raws []rawProvider
	for _, shape := range []providerShape{indexedShape{}, delimitedShape{}} {
		raws = shape.parse(env)
		if len(raws) > 0 {
			break
		}
	}

	cfg := domain.Config{
		Filter:      readFilterPolicy(env, r.logger),
		Routing:     readRoutingPolicy(env),
		Model:       readModelConfig(env),
		MetricsAddr: env.Get(envObservabilityListen),
	}
	for _, raw := range raws {
		cfg.Providers = append(cfg.Providers, normalizeProvider(raw, r.logger))
	}

	if err := Validate(cfg); err != nil {
		return domain.Config{}, err
	}

	if cfg.Filter.Enabled && !cfg.HasCredential() {
		r.logger.Warn("summarization enabled but no completion-API credential is set; truncation becomes the effective filter mode")
	}
	if cfg.Filter.SummarizeThreshold > cfg.Filter.MaxResponseChars {
		r.logger.Warn("summarize threshold exceeds max response chars; responses between the two are truncated, not summarized",
			zap.Int("summarizeThreshold", cfg.Filter.SummarizeThreshold),
			zap.Int("maxResponseChars", cfg.Filter.MaxResponseChars),
		)
	}
	return cfg, nil
}
