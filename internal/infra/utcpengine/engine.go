// Package utcpengine adapts a UTCP client to the gateway's execution
// collaborator boundary. Dialing providers, lexical search, and script
// execution all live in go-utcp; this package only translates specs and
// results.
package utcpengine

import (
	"context"
	"fmt"
	"time"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
	"github.com/universal-tool-calling-protocol/go-utcp/src/plugins/codemode"
	"github.com/universal-tool-calling-protocol/go-utcp/src/providers/base"
	"github.com/universal-tool-calling-protocol/go-utcp/src/tools"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

// utcpClient is the slice of utcp.UtcpClientInterface the engine uses.
type utcpClient interface {
	RegisterToolProvider(ctx context.Context, prov base.Provider) ([]tools.Tool, error)
	SearchTools(query string, limit int) ([]tools.Tool, error)
}

// scriptRunner is the code-mode plugin surface.
type scriptRunner interface {
	CallTool(ctx context.Context, input string) (bool, string, error)
}

type Engine struct {
	client utcpClient
	runner scriptRunner
	logger *zap.Logger
}

// New dials a fresh UTCP client and wires the code-mode plugin onto it.
func New(ctx context.Context, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := utcp.NewUTCPClient(ctx, &utcp.UtcpClientConfig{}, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create utcp client: %w", err)
	}
	return &Engine{
		client: client,
		runner: codeModeRunner{cm: codemode.NewCodeModeUTCP(client, nil)},
		logger: logger.Named("utcpengine"),
	}, nil
}

// codeModeRunner narrows the plugin's CallTool, whose output is declared
// as any, to the string-valued scriptRunner seam.
type codeModeRunner struct {
	cm *codemode.CodeModeUTCP
}

func (r codeModeRunner) CallTool(ctx context.Context, input string) (bool, string, error) {
	handled, out, err := r.cm.CallTool(ctx, input)
	s, ok := out.(string)
	if !ok && out != nil {
		s = fmt.Sprint(out)
	}
	return handled, s, err
}

// NewWithClient builds an engine over an existing client and runner.
func NewWithClient(client utcpClient, runner scriptRunner, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{client: client, runner: runner, logger: logger.Named("utcpengine")}
}

func (e *Engine) RegisterProvider(ctx context.Context, spec domain.ProviderSpec) ([]domain.ToolRecord, error) {
	provider, err := providerFromSpec(spec)
	if err != nil {
		return nil, err
	}

	registered, err := e.client.RegisterToolProvider(ctx, provider)
	if err != nil {
		return nil, err
	}

	e.logger.Info("provider registered",
		zap.String("provider", spec.Name),
		zap.String("transport", string(spec.Transport)),
		zap.Int("tools", len(registered)),
	)
	return toRecords(registered), nil
}

func (e *Engine) Tools(ctx context.Context) ([]domain.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// An empty query matches every registered tool.
	found, err := e.client.SearchTools("", 0)
	if err != nil {
		return nil, err
	}
	return toRecords(found), nil
}

func (e *Engine) SearchTools(ctx context.Context, query string, limit int) ([]domain.ToolRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	found, err := e.client.SearchTools(query, limit)
	if err != nil {
		return nil, err
	}
	return toRecords(found), nil
}

// RunScript hands the composed script to the code-mode interpreter. Script
// failures come back inside the RunResult; the error return is reserved
// for the engine itself being unusable.
func (e *Engine) RunScript(ctx context.Context, script string, timeout time.Duration) (domain.RunResult, error) {
	if timeout <= 0 {
		timeout = domain.DefaultCallTimeoutMillis * time.Millisecond
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	handled, output, err := e.runner.CallTool(runCtx, script)
	if err != nil {
		return domain.RunResult{Success: false, Result: output, Log: err.Error()}, nil
	}
	if !handled {
		return domain.RunResult{Success: false, Log: "script was not accepted by the code-mode interpreter"}, nil
	}
	return domain.RunResult{Success: true, Result: output}, nil
}

func toRecords(in []tools.Tool) []domain.ToolRecord {
	out := make([]domain.ToolRecord, 0, len(in))
	for _, t := range in {
		out = append(out, domain.ToolRecord{
			Name:        t.Name,
			Provider:    domain.ProviderOf(t.Name),
			Description: t.Description,
			Inputs:      t.Inputs,
			Outputs:     t.Outputs,
		})
	}
	return out
}
