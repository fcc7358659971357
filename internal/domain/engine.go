package domain

import (
	"context"
	"time"
)

// RunResult is the outcome of one composite-call dispatch.
type RunResult struct {
	Success bool
	Result  string
	Log     string
}

// Engine is the execution collaborator: it dials tool providers, answers
// lexical searches, and runs caller-composed scripts against registered
// tools. The gateway never implements any of this itself.
type Engine interface {
	// RegisterProvider connects one provider and returns the tools it
	// exposes. Connection failures are returned as-is; the registry wraps
	// them with CodeRegistration.
	RegisterProvider(ctx context.Context, spec ProviderSpec) ([]ToolRecord, error)

	// Tools returns the live tool list across all registered providers.
	Tools(ctx context.Context) ([]ToolRecord, error)

	// SearchTools performs lexical search over registered tools.
	SearchTools(ctx context.Context, query string, limit int) ([]ToolRecord, error)

	// RunScript executes a composed script with the given timeout. The
	// timeout is enforced by the engine; there is no mid-flight abort
	// beyond it.
	RunScript(ctx context.Context, script string, timeout time.Duration) (RunResult, error)
}
