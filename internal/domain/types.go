package domain

type Transport string

const (
	TransportRemote Transport = "remote"
	TransportLocal  Transport = "local-process"
)

type AuthType string

const (
	AuthNone   AuthType = "none"
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "api-key"
	AuthCustom AuthType = "custom"
)

// AuthSpec describes how a remote provider authenticates outbound calls.
// Header is only honored for AuthCustom.
type AuthSpec struct {
	Type   AuthType
	Token  string
	Header string
}

// ProviderSpec is one remote tool source, fully resolved from the
// environment. Exactly one of URL and Command is populated, consistent
// with Transport. Immutable after resolution.
type ProviderSpec struct {
	Name      string
	Transport Transport
	URL       string
	Command   string
	Args      []string
	Env       map[string]string
	Auth      AuthSpec
}

type FilterPolicy struct {
	Enabled            bool
	MaxResponseChars   int
	SummarizeThreshold int
	ForceSummarize     bool
}

type RoutingPolicy struct {
	Enabled bool
	// Model overrides the global completion model for ranking when set.
	Model string
}

// ModelConfig holds the completion-API credential and endpoint shared by
// the shaper and the router.
type ModelConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Config struct {
	Providers   []ProviderSpec
	Filter      FilterPolicy
	Routing     RoutingPolicy
	Model       ModelConfig
	MetricsAddr string
}

// HasCredential reports whether a completion-API credential is configured.
func (c Config) HasCredential() bool {
	return c.Model.APIKey != ""
}

// RoutingModel returns the model used for semantic ranking.
func (c Config) RoutingModel() string {
	if c.Routing.Model != "" {
		return c.Routing.Model
	}
	return c.Model.Model
}
