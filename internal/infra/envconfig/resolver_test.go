package envconfig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

func observedResolver(t *testing.T) (*Resolver, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	return NewResolver(zap.New(core)), logs
}

func TestResolve_IndexedShape(t *testing.T) {
	resolver := NewResolver(zap.NewNop())
	cfg, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_1_NAME":       "docs",
		"UTCP_PROVIDER_1_URL":        "https://x/mcp",
		"UTCP_PROVIDER_1_AUTH_TYPE":  "bearer",
		"UTCP_PROVIDER_1_AUTH_TOKEN": "tok",
		// index 2 left as a gap on purpose
		"UTCP_PROVIDER_3_NAME":    "local",
		"UTCP_PROVIDER_3_COMMAND": "npx",
		"UTCP_PROVIDER_3_ARGS":    "-y some-server --verbose",
	})
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)

	expect := []domain.ProviderSpec{
		{
			Name:      "docs",
			Transport: domain.TransportRemote,
			URL:       "https://x/mcp",
			Auth:      domain.AuthSpec{Type: domain.AuthBearer, Token: "tok"},
		},
		{
			Name:      "local",
			Transport: domain.TransportLocal,
			Command:   "npx",
			Args:      []string{"-y", "some-server", "--verbose"},
			Auth:      domain.AuthSpec{Type: domain.AuthNone},
		},
	}
	if diff := cmp.Diff(expect, cfg.Providers); diff != "" {
		t.Fatalf("providers mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_IndexedWinsOverDelimited(t *testing.T) {
	resolver := NewResolver(zap.NewNop())
	cfg, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_1_NAME": "indexed-only",
		"UTCP_PROVIDER_1_URL":  "https://indexed/mcp",
		// The delimited shape describes two other providers; it must be
		// ignored entirely, not merged.
		"UTCP_PROVIDER_NAME": "a;b",
		"UTCP_PROVIDER_URL":  "https://a/mcp;https://b/mcp",
	})
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "indexed-only", cfg.Providers[0].Name)
}

func TestResolve_DelimitedShape(t *testing.T) {
	resolver := NewResolver(zap.NewNop())
	cfg, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_NAME":    "alpha;;gamma",
		"UTCP_PROVIDER_URL":     "https://a/mcp;https://b/mcp;https://c/mcp",
		"UTCP_PROVIDER_COMMAND": ";;",
	})
	require.NoError(t, err)

	// Position 1 has no name and is dropped; positions are aligned, not
	// compacted, so gamma keeps its own URL.
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "alpha", cfg.Providers[0].Name)
	assert.Equal(t, "https://a/mcp", cfg.Providers[0].URL)
	assert.Equal(t, "gamma", cfg.Providers[1].Name)
	assert.Equal(t, "https://c/mcp", cfg.Providers[1].URL)
}

func TestResolve_CommandForcesLocalTransport(t *testing.T) {
	resolver, logs := observedResolver(t)
	cfg, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_1_NAME":      "mixed",
		"UTCP_PROVIDER_1_TRANSPORT": "remote",
		"UTCP_PROVIDER_1_URL":       "https://ignored/mcp",
		"UTCP_PROVIDER_1_COMMAND":   "./server",
	})
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, domain.TransportLocal, cfg.Providers[0].Transport)
	assert.Empty(t, cfg.Providers[0].URL)
	assert.Equal(t, 1, logs.FilterMessageSnippet("transport overridden").Len())
}

func TestResolve_MalformedProviderEnv(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		wantEnv     map[string]string
		wantSnippet string
	}{
		{
			name:        "not JSON at all",
			env:         "{not json",
			wantEnv:     nil,
			wantSnippet: "not a JSON object",
		},
		{
			name:        "JSON but not an object",
			env:         `["A","B"]`,
			wantEnv:     nil,
			wantSnippet: "not a JSON object",
		},
		{
			name:        "non-string value dropped, strings kept",
			env:         `{"A": 1, "B": "ok"}`,
			wantEnv:     map[string]string{"B": "ok"},
			wantSnippet: "non-string provider env overrides",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, logs := observedResolver(t)
			cfg, err := resolver.Resolve(Environment{
				"UTCP_PROVIDER_1_NAME": "docs",
				"UTCP_PROVIDER_1_URL":  "https://x/mcp",
				"UTCP_PROVIDER_1_ENV":  tt.env,
			})
			require.NoError(t, err, "malformed env overrides must never abort loading")
			require.Len(t, cfg.Providers, 1)
			assert.Equal(t, tt.wantEnv, cfg.Providers[0].Env)
			assert.Equal(t, 1, logs.FilterMessageSnippet(tt.wantSnippet).Len())
		})
	}
}

func TestResolve_PolicyDefaultsAndBooleans(t *testing.T) {
	resolver := NewResolver(zap.NewNop())
	cfg, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_1_NAME":        "docs",
		"UTCP_PROVIDER_1_URL":         "https://x/mcp",
		"UTCP_FILTER_FORCE_SUMMARIZE": "TRUE",
		"UTCP_ROUTER_ENABLED":         "False",
		"UTCP_FILTER_ENABLED":         "yes please", // not a literal, keeps default
	})
	require.NoError(t, err)

	assert.True(t, cfg.Filter.Enabled)
	assert.True(t, cfg.Filter.ForceSummarize)
	assert.False(t, cfg.Routing.Enabled)
	assert.Equal(t, domain.DefaultMaxResponseChars, cfg.Filter.MaxResponseChars)
	assert.Equal(t, domain.DefaultSummarizeThreshold, cfg.Filter.SummarizeThreshold)
	assert.Equal(t, domain.DefaultCompletionModel, cfg.Model.Model)
}

func TestResolve_RoutingModelFallback(t *testing.T) {
	resolver := NewResolver(zap.NewNop())
	cfg, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_1_NAME": "docs",
		"UTCP_PROVIDER_1_URL":  "https://x/mcp",
		"UTCP_LLM_MODEL":       "global-model",
	})
	require.NoError(t, err)
	assert.Equal(t, "global-model", cfg.RoutingModel())

	cfg.Routing.Model = "ranker"
	assert.Equal(t, "ranker", cfg.RoutingModel())
}

func TestResolve_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		env     Environment
		snippet string
	}{
		{
			name:    "no providers",
			env:     Environment{},
			snippet: "no tool providers configured",
		},
		{
			name: "remote without URL",
			env: Environment{
				"UTCP_PROVIDER_1_NAME": "docs",
			},
			snippet: "remote transport requires a URL",
		},
		{
			name: "local without command",
			env: Environment{
				"UTCP_PROVIDER_1_NAME":      "local",
				"UTCP_PROVIDER_1_TRANSPORT": "local-process",
			},
			snippet: "local-process transport requires a command",
		},
		{
			name: "duplicate names",
			env: Environment{
				"UTCP_PROVIDER_1_NAME": "docs",
				"UTCP_PROVIDER_1_URL":  "https://a/mcp",
				"UTCP_PROVIDER_2_NAME": "docs",
				"UTCP_PROVIDER_2_URL":  "https://b/mcp",
			},
			snippet: "duplicate name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(zap.NewNop())
			_, err := resolver.Resolve(tt.env)
			require.Error(t, err)
			code, ok := domain.CodeFrom(err)
			require.True(t, ok)
			assert.Equal(t, domain.CodeInvalidConfig, code)
			assert.Contains(t, err.Error(), tt.snippet)
		})
	}
}

func TestResolve_NoCredentialWarning(t *testing.T) {
	resolver, logs := observedResolver(t)
	_, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_1_NAME": "docs",
		"UTCP_PROVIDER_1_URL":  "https://x/mcp",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessageSnippet("no completion-API credential").Len())
}

func TestResolve_ThresholdAboveMaxIsNotFatal(t *testing.T) {
	resolver, logs := observedResolver(t)
	cfg, err := resolver.Resolve(Environment{
		"UTCP_PROVIDER_1_NAME":            "docs",
		"UTCP_PROVIDER_1_URL":             "https://x/mcp",
		"UTCP_FILTER_MAX_RESPONSE_CHARS":  "100",
		"UTCP_FILTER_SUMMARIZE_THRESHOLD": "500",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Filter.MaxResponseChars)
	assert.Equal(t, 500, cfg.Filter.SummarizeThreshold)
	assert.Equal(t, 1, logs.FilterMessageSnippet("summarize threshold exceeds max response chars").Len())
}
