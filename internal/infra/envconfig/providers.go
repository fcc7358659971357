package envconfig

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

// Provider field suffixes shared by the indexed and delimited shapes.
const (
	fieldName       = "NAME"
	fieldTransport  = "TRANSPORT"
	fieldURL        = "URL"
	fieldCommand    = "COMMAND"
	fieldArgs       = "ARGS"
	fieldAuthType   = "AUTH_TYPE"
	fieldAuthToken  = "AUTH_TOKEN"
	fieldAuthHeader = "AUTH_HEADER"
	fieldEnv        = "ENV"
)

// rawProvider is one provider before normalization, exactly as it appeared
// in the environment.
type rawProvider struct {
	origin     string
	name       string
	transport  string
	url        string
	command    string
	args       string
	authType   string
	authToken  string
	authHeader string
	env        string
}

// providerShape extracts zero or more raw providers from the environment.
// Shapes are tried in strict order; the first shape yielding any provider
// wins entirely and later shapes are ignored.
type providerShape interface {
	parse(env Environment) []rawProvider
}

// indexedShape reads UTCP_PROVIDER_<N>_<FIELD> for N in 1..MaxIndexedProviders.
// Presence is keyed solely on the name field; gaps are allowed.
type indexedShape struct{}

func (indexedShape) parse(env Environment) []rawProvider {
	var out []rawProvider
	for i := 1; i <= domain.MaxIndexedProviders; i++ {
		key := func(field string) string {
			return fmt.Sprintf("%s_%d_%s", domain.EnvProviderPrefix, i, field)
		}
		name := env.Get(key(fieldName))
		if name == "" {
			continue
		}
		out = append(out, rawProvider{
			origin:     fmt.Sprintf("%s_%d", domain.EnvProviderPrefix, i),
			name:       name,
			transport:  env.Get(key(fieldTransport)),
			url:        env.Get(key(fieldURL)),
			command:    env.Get(key(fieldCommand)),
			args:       env.Get(key(fieldArgs)),
			authType:   env.Get(key(fieldAuthType)),
			authToken:  env.Get(key(fieldAuthToken)),
			authHeader: env.Get(key(fieldAuthHeader)),
			env:        env.Get(key(fieldEnv)),
		})
	}
	return out
}

// delimitedShape reads one UTCP_PROVIDER_<FIELD> per field with ;-joined
// positional entries. The provider count is the longest list; positions with
// no name are dropped.
type delimitedShape struct{}

func (delimitedShape) parse(env Environment) []rawProvider {
	field := func(name string) []string {
		value := env.Get(fmt.Sprintf("%s_%s", domain.EnvProviderPrefix, name))
		if value == "" {
			return nil
		}
		parts := strings.Split(value, domain.ProviderListSep)
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}

	names := field(fieldName)
	transports := field(fieldTransport)
	urls := field(fieldURL)
	commands := field(fieldCommand)
	args := field(fieldArgs)
	authTypes := field(fieldAuthType)
	authTokens := field(fieldAuthToken)
	authHeaders := field(fieldAuthHeader)
	envs := field(fieldEnv)

	count := 0
	for _, list := range [][]string{names, transports, urls, commands, args, authTypes, authTokens, authHeaders, envs} {
		if len(list) > count {
			count = len(list)
		}
	}

	at := func(list []string, i int) string {
		if i < len(list) {
			return list[i]
		}
		return ""
	}

	var out []rawProvider
	for i := 0; i < count; i++ {
		if at(names, i) == "" {
			continue
		}
		out = append(out, rawProvider{
			origin:     fmt.Sprintf("%s[%d]", domain.EnvProviderPrefix, i),
			name:       at(names, i),
			transport:  at(transports, i),
			url:        at(urls, i),
			command:    at(commands, i),
			args:       at(args, i),
			authType:   at(authTypes, i),
			authToken:  at(authTokens, i),
			authHeader: at(authHeaders, i),
			env:        at(envs, i),
		})
	}
	return out
}

// normalizeProvider turns one raw provider into a ProviderSpec. Auxiliary
// problems (bad env JSON, unknown auth type) are reported as warnings and
// never abort resolution.
func normalizeProvider(raw rawProvider, logger *zap.Logger) domain.ProviderSpec {
	spec := domain.ProviderSpec{
		Name:    raw.name,
		URL:     raw.url,
		Command: raw.command,
	}
	if raw.args != "" {
		spec.Args = strings.Fields(raw.args)
	}

	// Command presence forces local-process transport; a contradicting
	// explicit value is not fatal.
	declared := domain.Transport(strings.ToLower(raw.transport))
	switch {
	case spec.Command != "":
		if declared != "" && declared != domain.TransportLocal {
			logger.Warn("provider transport overridden by command presence",
				zap.String("provider", spec.Name),
				zap.String("origin", raw.origin),
				zap.String("declared", raw.transport),
			)
		}
		spec.Transport = domain.TransportLocal
		spec.URL = ""
	case declared == domain.TransportLocal:
		spec.Transport = domain.TransportLocal
	default:
		spec.Transport = domain.TransportRemote
		if declared != "" && declared != domain.TransportRemote {
			logger.Warn("unknown provider transport, assuming remote",
				zap.String("provider", spec.Name),
				zap.String("origin", raw.origin),
				zap.String("declared", raw.transport),
			)
		}
	}

	spec.Auth = normalizeAuth(raw, logger)
	spec.Env = parseProviderEnv(raw, logger)
	return spec
}

func normalizeAuth(raw rawProvider, logger *zap.Logger) domain.AuthSpec {
	auth := domain.AuthSpec{
		Type:   domain.AuthNone,
		Token:  raw.authToken,
		Header: raw.authHeader,
	}
	switch domain.AuthType(strings.ToLower(raw.authType)) {
	case domain.AuthNone, "":
	case domain.AuthBearer:
		auth.Type = domain.AuthBearer
	case domain.AuthAPIKey:
		auth.Type = domain.AuthAPIKey
	case domain.AuthCustom:
		auth.Type = domain.AuthCustom
	default:
		logger.Warn("unknown auth type, provider will authenticate as none",
			zap.String("provider", raw.name),
			zap.String("authType", raw.authType),
		)
	}
	return auth
}

// parseProviderEnv decodes the per-provider extra environment map. A value
// that is not a JSON object drops the whole map; non-string values inside an
// otherwise valid object are dropped individually. Both cases warn and keep
// the provider.
func parseProviderEnv(raw rawProvider, logger *zap.Logger) map[string]string {
	if raw.env == "" {
		return nil
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw.env), &decoded); err != nil {
		logger.Warn("provider env overrides are not a JSON object, starting without them",
			zap.String("provider", raw.name),
			zap.Error(err),
		)
		return nil
	}

	env := make(map[string]string, len(decoded))
	var dropped []string
	for key, value := range decoded {
		str, ok := value.(string)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		env[key] = str
	}
	if len(dropped) > 0 {
		logger.Warn("dropping non-string provider env overrides",
			zap.String("provider", raw.name),
			zap.Strings("keys", dropped),
		)
	}
	if len(env) == 0 {
		return nil
	}
	return env
}
