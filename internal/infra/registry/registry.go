// Package registry maintains the set of tools known across all registered
// providers and derives the agent-facing views of it: compact summaries,
// full interface descriptions, and the capability digest.
package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/hashutil"
)

type Registry struct {
	engine domain.Engine
	logger *zap.Logger

	mu         sync.RWMutex
	snapshot   domain.ToolSnapshot
	registered map[string]struct{}
}

func New(engine domain.Engine, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		engine:     engine,
		logger:     logger.Named("registry"),
		registered: make(map[string]struct{}),
	}
}

// RegisterProviders connects each provider with the execution collaborator.
// Registration is idempotent per provider name. A connection failure is not
// retried here: a misconfigured provider should stop the gateway rather
// than run half-functional, so the error surfaces to the caller.
func (r *Registry) RegisterProviders(ctx context.Context, specs []domain.ProviderSpec) error {
	for _, spec := range specs {
		r.mu.RLock()
		_, done := r.registered[spec.Name]
		r.mu.RUnlock()
		if done {
			continue
		}

		if _, err := r.engine.RegisterProvider(ctx, spec); err != nil {
			return domain.E(domain.CodeRegistration, "registry.RegisterProviders",
				fmt.Sprintf("provider %q could not be registered", spec.Name), err)
		}

		r.mu.Lock()
		r.registered[spec.Name] = struct{}{}
		r.mu.Unlock()
	}
	return nil
}

// Refresh rebuilds the full tool record set and capability digest from the
// collaborator's live tool list. The snapshot is replaced wholesale, never
// patched, so concurrent readers always see a complete set.
func (r *Registry) Refresh(ctx context.Context) error {
	records, err := r.engine.Tools(ctx)
	if err != nil {
		return domain.Wrap(domain.CodeUnavailable, "registry.Refresh", err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	next := domain.ToolSnapshot{
		Records: records,
		Digest:  buildDigest(records),
		ETag:    hashutil.ToolSetETag(r.logger, records),
	}

	r.mu.Lock()
	changed := next.ETag != r.snapshot.ETag
	r.snapshot = next
	r.mu.Unlock()

	if changed {
		r.logger.Info("tool snapshot refreshed",
			zap.Int("tools", len(records)),
			zap.String("etag", next.ETag),
		)
	}
	return nil
}

// Snapshot returns a copy of the current tool set.
func (r *Registry) Snapshot() domain.ToolSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return domain.CloneToolSnapshot(r.snapshot)
}

// Summary is the compact listing entry for one tool.
type Summary struct {
	Name  string
	Brief string
}

// Summaries returns one compact entry per known tool.
func (r *Registry) Summaries() []Summary {
	snapshot := r.Snapshot()
	out := make([]Summary, 0, len(snapshot.Records))
	for _, record := range snapshot.Records {
		out = append(out, Summary{
			Name:  record.Name,
			Brief: briefOf(record.Description),
		})
	}
	return out
}

// Digest returns the human-readable capability digest.
func (r *Registry) Digest() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot.Digest
}

// Lookup resolves a tool by any equivalent spelling of its identity.
func (r *Registry) Lookup(name string) (domain.ToolRecord, error) {
	normalized := domain.NormalizeToolName(name)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.snapshot.Records {
		if record.Name == name || domain.NormalizeToolName(record.Name) == normalized {
			return record, nil
		}
	}
	return domain.ToolRecord{}, domain.E(domain.CodeNotFound, "registry.Lookup",
		fmt.Sprintf("tool %q is not registered", name), nil)
}

// FullInterface renders the complete interface description for one tool.
// Lookups tolerate raw provider-qualified names, normalized tokens, and
// already-normalized input.
func (r *Registry) FullInterface(name string) (string, error) {
	record, err := r.Lookup(name)
	if err != nil {
		return "", err
	}
	return renderInterface(record), nil
}
