package utcpengine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/cli"
	utcphttp "github.com/universal-tool-calling-protocol/go-utcp/src/providers/http"
	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

type stubClient struct {
	registered  []base.Provider
	searchQuery string
	searchLimit int
	tools       []tools.Tool
	err         error
}

func (s *stubClient) RegisterToolProvider(_ context.Context, prov base.Provider) ([]tools.Tool, error) {
	s.registered = append(s.registered, prov)
	return s.tools, s.err
}

func (s *stubClient) SearchTools(query string, limit int) ([]tools.Tool, error) {
	s.searchQuery = query
	s.searchLimit = limit
	return s.tools, s.err
}

type stubRunner struct {
	handled bool
	output  string
	err     error
	input   string
}

func (s *stubRunner) CallTool(_ context.Context, input string) (bool, string, error) {
	s.input = input
	return s.handled, s.output, s.err
}

func TestProviderFromSpec_Remote(t *testing.T) {
	prov, err := providerFromSpec(domain.ProviderSpec{
		Name:      "docs",
		Transport: domain.TransportRemote,
		URL:       "https://x/mcp",
		Auth:      domain.AuthSpec{Type: domain.AuthBearer, Token: "tok"},
	})
	require.NoError(t, err)

	httpProv, ok := prov.(*utcphttp.HttpProvider)
	require.True(t, ok)
	assert.Equal(t, "docs", httpProv.Name)
	assert.Equal(t, "https://x/mcp", httpProv.URL)
	assert.Equal(t, "Bearer tok", httpProv.Headers["Authorization"])
}

func TestProviderFromSpec_Local(t *testing.T) {
	prov, err := providerFromSpec(domain.ProviderSpec{
		Name:      "fs",
		Transport: domain.TransportLocal,
		Command:   "npx",
		Args:      []string{"-y", "server-fs"},
		Env:       map[string]string{"DEBUG": "1"},
	})
	require.NoError(t, err)

	cliProv, ok := prov.(*cli.CliProvider)
	require.True(t, ok)
	assert.Equal(t, "npx -y server-fs", cliProv.CommandName)
	assert.Equal(t, map[string]string{"DEBUG": "1"}, cliProv.EnvVars)
}

func TestAuthHeaders(t *testing.T) {
	tests := []struct {
		name string
		auth domain.AuthSpec
		want map[string]string
	}{
		{
			name: "none without token",
			auth: domain.AuthSpec{Type: domain.AuthNone},
			want: nil,
		},
		{
			name: "api key uses default header",
			auth: domain.AuthSpec{Type: domain.AuthAPIKey, Token: "k"},
			want: map[string]string{"X-API-Key": "k"},
		},
		{
			name: "custom header override",
			auth: domain.AuthSpec{Type: domain.AuthCustom, Token: "k", Header: "X-Custom"},
			want: map[string]string{"X-Custom": "k"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authHeaders(tt.auth))
		})
	}
}

func TestRunScript_ResultMapping(t *testing.T) {
	tests := []struct {
		name   string
		runner *stubRunner
		want   domain.RunResult
	}{
		{
			name:   "handled success",
			runner: &stubRunner{handled: true, output: "done"},
			want:   domain.RunResult{Success: true, Result: "done"},
		},
		{
			name:   "interpreter rejected script",
			runner: &stubRunner{handled: false},
			want:   domain.RunResult{Success: false, Log: "script was not accepted by the code-mode interpreter"},
		},
		{
			name:   "script error goes to the log, not the error return",
			runner: &stubRunner{handled: true, output: "partial", err: errors.New("boom")},
			want:   domain.RunResult{Success: false, Result: "partial", Log: "boom"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewWithClient(&stubClient{}, tt.runner, zap.NewNop())
			got, err := engine.RunScript(context.Background(), "script", time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTools_UsesEmptyQuery(t *testing.T) {
	client := &stubClient{tools: []tools.Tool{{Name: "docs.search", Description: "search docs"}}}
	engine := NewWithClient(client, &stubRunner{}, zap.NewNop())

	records, err := engine.Tools(context.Background())
	require.NoError(t, err)
	assert.Empty(t, client.searchQuery)
	require.Len(t, records, 1)
	assert.Equal(t, "docs.search", records[0].Name)
	assert.Equal(t, "docs", records[0].Provider)
}
