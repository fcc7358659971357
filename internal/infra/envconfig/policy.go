package envconfig

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

const (
	envFilterEnabled       = "UTCP_FILTER_ENABLED"
	envFilterMaxChars      = "UTCP_FILTER_MAX_RESPONSE_CHARS"
	envFilterThreshold     = "UTCP_FILTER_SUMMARIZE_THRESHOLD"
	envFilterForce         = "UTCP_FILTER_FORCE_SUMMARIZE"
	envRouterEnabled       = "UTCP_ROUTER_ENABLED"
	envRouterModel         = "UTCP_ROUTER_MODEL"
	envCompletionAPIKey    = "OPENAI_API_KEY"
	envCompletionBaseURL   = "OPENAI_BASE_URL"
	envCompletionModel     = "UTCP_LLM_MODEL"
	envObservabilityListen = "UTCP_METRICS_ADDR"
)

// readFilterPolicy reads the filter policy fields, each with an explicit
// default, independent of whichever provider shape matched.
func readFilterPolicy(env Environment, logger *zap.Logger) domain.FilterPolicy {
	return domain.FilterPolicy{
		Enabled:            readBool(env, envFilterEnabled, true),
		MaxResponseChars:   readInt(env, envFilterMaxChars, domain.DefaultMaxResponseChars, logger),
		SummarizeThreshold: readInt(env, envFilterThreshold, domain.DefaultSummarizeThreshold, logger),
		ForceSummarize:     readBool(env, envFilterForce, false),
	}
}

func readRoutingPolicy(env Environment) domain.RoutingPolicy {
	return domain.RoutingPolicy{
		Enabled: readBool(env, envRouterEnabled, true),
		Model:   env.Get(envRouterModel),
	}
}

func readModelConfig(env Environment) domain.ModelConfig {
	model := env.Get(envCompletionModel)
	if model == "" {
		model = domain.DefaultCompletionModel
	}
	return domain.ModelConfig{
		APIKey:  env.Get(envCompletionAPIKey),
		BaseURL: env.Get(envCompletionBaseURL),
		Model:   model,
	}
}

// readBool compares the value case-insensitively against the literal
// "true"/"false"; anything else keeps the default.
func readBool(env Environment, key string, def bool) bool {
	switch strings.ToLower(env.Get(key)) {
	case "true":
		return true
	case "false":
		return false
	default:
		return def
	}
}

func readInt(env Environment, key string, def int, logger *zap.Logger) int {
	value := env.Get(key)
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		logger.Warn("ignoring non-positive or malformed integer setting",
			zap.String("key", key),
			zap.String("value", value),
		)
		return def
	}
	return parsed
}
