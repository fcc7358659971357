package utcpengine

import (
	"fmt"
	"strings"

	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/cli"
	utcphttp "github.com/universal-tool-calling-protocol/go-utcp/src/providers/http"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

const defaultAPIKeyHeader = "X-API-Key"

// providerFromSpec maps a resolved provider descriptor onto the UTCP
// provider type matching its transport.
func providerFromSpec(spec domain.ProviderSpec) (base.Provider, error) {
	switch spec.Transport {
	case domain.TransportRemote:
		return &utcphttp.HttpProvider{
			BaseProvider: base.BaseProvider{
				Name:         spec.Name,
				ProviderType: base.ProviderHTTP,
			},
			URL:        spec.URL,
			HTTPMethod: "POST",
			Headers:    authHeaders(spec.Auth),
		}, nil
	case domain.TransportLocal:
		command := spec.Command
		if len(spec.Args) > 0 {
			command = command + " " + strings.Join(spec.Args, " ")
		}
		return &cli.CliProvider{
			BaseProvider: base.BaseProvider{
				Name:         spec.Name,
				ProviderType: base.ProviderCLI,
			},
			CommandName: command,
			EnvVars:     spec.Env,
		}, nil
	default:
		return nil, fmt.Errorf("provider %q: unsupported transport %q", spec.Name, spec.Transport)
	}
}

// authHeaders renders the auth descriptor as request headers.
func authHeaders(auth domain.AuthSpec) map[string]string {
	if auth.Token == "" {
		return nil
	}
	switch auth.Type {
	case domain.AuthBearer:
		return map[string]string{"Authorization": "Bearer " + auth.Token}
	case domain.AuthAPIKey:
		return map[string]string{defaultAPIKeyHeader: auth.Token}
	case domain.AuthCustom:
		header := auth.Header
		if header == "" {
			header = defaultAPIKeyHeader
		}
		return map[string]string{header: auth.Token}
	default:
		return nil
	}
}
