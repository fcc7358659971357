// Package gateway exposes the UTCP tool ecosystem to an MCP client
// behind four meta-tools: discovery by query, full listing, interface
// inspection, and composite script execution.
package gateway

import (
	"context"
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/registry"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/router"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/shaper"
)

const serverName = "utcp-mcp-gateway"

type Gateway struct {
	config   domain.Config
	engine   domain.Engine
	registry *registry.Registry
	router   *router.Router
	shaper   *shaper.Shaper
	metrics  domain.Metrics
	logger   *zap.Logger
	version  string

	server *mcp.Server

	initOnce sync.Once
	initErr  error
}

type Options struct {
	Config   domain.Config
	Engine   domain.Engine
	Registry *registry.Registry
	Router   *router.Router
	Shaper   *shaper.Shaper
	Metrics  domain.Metrics
	Logger   *zap.Logger
	Version  string
}

func New(opts Options) *Gateway {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	version := opts.Version
	if version == "" {
		version = "0.0.0-dev"
	}

	g := &Gateway{
		config:   opts.Config,
		engine:   opts.Engine,
		registry: opts.Registry,
		router:   opts.Router,
		shaper:   opts.Shaper,
		metrics:  metrics,
		logger:   logger.Named("gateway"),
		version:  version,
	}

	g.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	for _, def := range toolDefinitions(opts.Config.Filter) {
		g.server.AddTool(def.tool, def.handler(g))
	}
	return g
}

// ensureInit registers every configured provider and builds the first
// tool snapshot exactly once. Concurrent first callers block until the
// attempt finishes; a failed attempt is not retried and every later
// call observes the same error.
func (g *Gateway) ensureInit(ctx context.Context) error {
	g.initOnce.Do(func() {
		if err := g.registry.RegisterProviders(ctx, g.config.Providers); err != nil {
			g.initErr = err
			g.logger.Error("provider registration failed", zap.Error(err))
			return
		}
		if err := g.registry.Refresh(ctx); err != nil {
			g.initErr = err
			g.logger.Error("initial tool snapshot failed", zap.Error(err))
			return
		}
		g.logger.Info("gateway initialized",
			zap.Int("providers", len(g.config.Providers)),
		)
	})
	return g.initErr
}

// RunStdio serves the gateway over stdio until ctx is cancelled.
func (g *Gateway) RunStdio(ctx context.Context) error {
	g.logger.Info("serving over stdio")
	return g.server.Run(ctx, &mcp.StdioTransport{})
}

// StreamableHTTPHandler returns an HTTP handler speaking the MCP
// streamable-HTTP transport, sharing this gateway's single server.
func (g *Gateway) StreamableHTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return g.server
	}, nil)
}

// Server exposes the underlying MCP server for in-memory transports.
func (g *Gateway) Server() *mcp.Server {
	return g.server
}
