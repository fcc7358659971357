package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/envconfig"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/gateway"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/registry"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/router"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/shaper"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/telemetry"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/utcpengine"
)

var version = "0.1.0"

type serveOptions struct {
	transport string
	httpAddr  string
	httpPath  string
	logger    *zap.Logger
}

func main() {
	opts := serveOptions{
		transport: "stdio",
		httpAddr:  "127.0.0.1:8090",
		httpPath:  "/mcp",
		logger:    zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "utcp-mcp-gateway",
		Short: "MCP gateway that virtualizes UTCP tool providers behind a discovery and scripting surface",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			// stdout belongs to the MCP stdio transport.
			cfg.OutputPaths = []string{"stderr"}
			log, err := cfg.Build()
			if err != nil {
				return err
			}
			opts.logger = log
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = opts.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signalAwareContext(cmd.Context())
			defer cancel()
			return run(ctx, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.transport, "transport", opts.transport, "gateway transport (stdio or streamable-http)")
	root.PersistentFlags().StringVar(&opts.httpAddr, "http-addr", opts.httpAddr, "streamable HTTP listen address")
	root.PersistentFlags().StringVar(&opts.httpPath, "http-path", opts.httpPath, "streamable HTTP endpoint path")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "utcp-mcp-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts serveOptions) error {
	logger := opts.logger

	cfg, err := envconfig.NewResolver(logger).Resolve(envconfig.FromOS())
	if err != nil {
		return fmt.Errorf("resolve configuration: %w", err)
	}

	chatModel, err := buildChatModel(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build completion model: %w", err)
	}

	engine, err := utcpengine.New(ctx, logger)
	if err != nil {
		return fmt.Errorf("build execution engine: %w", err)
	}

	metrics := telemetry.NewPrometheusMetrics(nil)
	reg := registry.New(engine, logger)
	rt := router.New(router.Options{
		Policy:  cfg.Routing,
		Model:   routingModel(ctx, cfg, chatModel, logger),
		Engine:  engine,
		Metrics: metrics,
		Logger:  logger,
	})
	sh := shaper.New(cfg.Filter, chatModel, metrics, logger)

	gw := gateway.New(gateway.Options{
		Config:   cfg,
		Engine:   engine,
		Registry: reg,
		Router:   rt,
		Shaper:   sh,
		Metrics:  metrics,
		Logger:   logger,
		Version:  version,
	})

	if cfg.MetricsAddr != "" {
		go func() {
			if err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{Addr: cfg.MetricsAddr}, logger); err != nil {
				logger.Error("observability server failed", zap.Error(err))
			}
		}()
	}

	switch opts.transport {
	case "stdio":
		err = gw.RunStdio(ctx)
	case "streamable-http":
		err = runStreamableHTTP(ctx, gw, opts, logger)
	default:
		return fmt.Errorf("unsupported transport: %s", opts.transport)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// buildChatModel returns nil without error when no credential is set; the
// shaper and router degrade to their non-LLM paths in that case.
func buildChatModel(ctx context.Context, cfg domain.Config) (model.BaseChatModel, error) {
	if !cfg.HasCredential() {
		return nil, nil
	}
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:   cfg.Model.Model,
		APIKey:  cfg.Model.APIKey,
		BaseURL: cfg.Model.BaseURL,
	})
}

// routingModel prefers a routing-specific model when one is configured,
// falling back to the shared completion model.
func routingModel(ctx context.Context, cfg domain.Config, shared model.BaseChatModel, logger *zap.Logger) model.BaseChatModel {
	if shared == nil || !cfg.Routing.Enabled {
		return shared
	}
	name := cfg.RoutingModel()
	if name == cfg.Model.Model {
		return shared
	}
	dedicated, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:   name,
		APIKey:  cfg.Model.APIKey,
		BaseURL: cfg.Model.BaseURL,
	})
	if err != nil {
		logger.Warn("routing model unavailable, using shared completion model",
			zap.String("model", name),
			zap.Error(err),
		)
		return shared
	}
	return dedicated
}

func runStreamableHTTP(ctx context.Context, gw *gateway.Gateway, opts serveOptions, logger *zap.Logger) error {
	if strings.TrimSpace(opts.httpAddr) == "" {
		return errors.New("http address is required")
	}
	if !isLoopbackAddr(opts.httpAddr) {
		return errors.New("streamable HTTP binds to loopback addresses only")
	}

	mux := http.NewServeMux()
	mux.Handle(opts.httpPath, gw.StreamableHTTPHandler())

	server := &http.Server{
		Addr:    opts.httpAddr,
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("serving over streamable HTTP",
			zap.String("addr", opts.httpAddr),
			zap.String("path", opts.httpPath),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func isLoopbackAddr(addr string) bool {
	host := addr
	if strings.Contains(addr, ":") {
		if h, _, err := net.SplitHostPort(addr); err == nil {
			host = h
		}
	}
	host = strings.TrimSpace(host)
	if host == "" || host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback()
}

func signalAwareContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(signals)
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
