package domain

const (
	// Provider environment contract.
	EnvProviderPrefix   = "UTCP_PROVIDER"
	MaxIndexedProviders = 20
	ProviderListSep     = ";"

	// Filter policy defaults.
	DefaultMaxResponseChars   = 10000
	DefaultSummarizeThreshold = 5000

	// Hard cap applied to summarization input before it is sent upstream,
	// independent of any configured policy.
	SummarizeInputCap = 200000

	// Routing defaults.
	DefaultSearchLimit = 10

	// Execution dispatch defaults.
	DefaultCallTimeoutMillis = 30000

	// Completion API defaults.
	DefaultCompletionModel = "gpt-4o-mini"

	// Capability digest shows this many tool names per provider before
	// collapsing to a count suffix.
	DigestToolNamesPerProvider = 2

	// Router digest keeps this many description characters per tool.
	RouterDescriptionChars = 100
)
