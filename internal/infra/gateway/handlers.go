package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
	"github.com/mochadwi/utcp-mcp-gateway/internal/infra/shaper"
)

type searchToolsArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type toolInterfaceArgs struct {
	Name string `json:"name"`
}

type callToolScriptArgs struct {
	Script         string `json:"script"`
	TimeoutMillis  int    `json:"timeout_ms"`
	MaxOutputChars int    `json:"max_output_chars"`
	FilterResponse bool   `json:"filter_response"`
	Purpose        string `json:"purpose"`
}

// scriptEnvelope is the JSON payload call_tool_script returns. Result
// carries shaped output; Log carries execution diagnostics verbatim.
type scriptEnvelope struct {
	Success bool   `json:"success"`
	Result  string `json:"result"`
	Log     string `json:"log,omitempty"`
	RunID   string `json:"run_id"`
}

func (g *Gateway) handleSearchTools(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer g.observeDispatch("search_tools", time.Now())

	var args searchToolsArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(args.Query) == "" {
		return errorResult(fmt.Errorf("query must not be empty")), nil
	}
	if err := g.ensureInit(ctx); err != nil {
		return errorResult(err), nil
	}

	snapshot := g.registry.Snapshot()
	ranked, err := g.router.Rank(ctx, args.Query, snapshot.Records, args.Limit)
	if err != nil {
		return errorResult(err), nil
	}
	if len(ranked) == 0 {
		return textResult("No registered tool matches this task. Use list_tools to see everything available."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tools relevant to %q, most relevant first:\n\n", args.Query)
	for _, record := range ranked {
		rendered, err := g.registry.FullInterface(record.Name)
		if err != nil {
			// Ranked from a snapshot the registry just served; a miss here
			// means the set refreshed mid-call, so fall back to the summary.
			fmt.Fprintf(&b, "%s: %s\n\n", record.Name, firstLine(record.Description))
			continue
		}
		b.WriteString(rendered)
		b.WriteString("\n")
	}
	return textResult(strings.TrimRight(b.String(), "\n")), nil
}

func (g *Gateway) handleListTools(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer g.observeDispatch("list_tools", time.Now())

	if err := g.ensureInit(ctx); err != nil {
		return errorResult(err), nil
	}

	summaries := g.registry.Summaries()
	if len(summaries) == 0 {
		return textResult("No tools are currently registered."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Capability digest:\n%s\n\nAll tools (%d):\n", g.registry.Digest(), len(summaries))
	for _, summary := range summaries {
		fmt.Fprintf(&b, "- %s: %s\n", summary.Name, summary.Brief)
	}
	return textResult(b.String()), nil
}

func (g *Gateway) handleToolInterface(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer g.observeDispatch("get_tool_interface", time.Now())

	var args toolInterfaceArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(args.Name) == "" {
		return errorResult(fmt.Errorf("name must not be empty")), nil
	}
	if err := g.ensureInit(ctx); err != nil {
		return errorResult(err), nil
	}

	rendered, err := g.registry.FullInterface(args.Name)
	if err != nil {
		if domain.IsNotFound(err) {
			return errorResult(fmt.Errorf("tool %q is not registered; use search_tools or list_tools to discover valid names", args.Name)), nil
		}
		return errorResult(err), nil
	}
	return textResult(rendered), nil
}

func (g *Gateway) handleCallToolScript(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defer g.observeDispatch("call_tool_script", time.Now())

	var args callToolScriptArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult(err), nil
	}
	if strings.TrimSpace(args.Script) == "" {
		return errorResult(fmt.Errorf("script must not be empty")), nil
	}
	if err := g.ensureInit(ctx); err != nil {
		return errorResult(err), nil
	}

	timeout := time.Duration(domain.DefaultCallTimeoutMillis) * time.Millisecond
	if args.TimeoutMillis > 0 {
		timeout = time.Duration(args.TimeoutMillis) * time.Millisecond
	}

	runID := uuid.NewString()
	g.logger.Info("dispatching script",
		zap.String("run_id", runID),
		zap.Duration("timeout", timeout),
	)

	run, err := g.engine.RunScript(ctx, args.Script, timeout)
	if err != nil {
		return errorResult(err), nil
	}

	envelope := scriptEnvelope{
		Success: run.Success,
		Result:  run.Result,
		Log:     run.Log,
		RunID:   runID,
	}
	envelope = g.shapeScriptEnvelope(ctx, envelope, args)

	raw, err := json.Marshal(envelope)
	if err != nil {
		return errorResult(err), nil
	}
	return textResult(string(raw)), nil
}

// shapeScriptEnvelope decides the final result and log fields. The size
// check runs against the serialized envelope, and both payload fields are
// budgeted, so a verbose diagnostic log cannot smuggle the response past
// the caller's limit. Without a stated purpose an oversized result is only
// truncated; summarizing without knowing what the caller needs wastes
// completion tokens on guesswork.
func (g *Gateway) shapeScriptEnvelope(ctx context.Context, envelope scriptEnvelope, args callToolScriptArgs) scriptEnvelope {
	policy := g.config.Filter
	if args.MaxOutputChars > 0 {
		policy.MaxResponseChars = args.MaxOutputChars
	}
	if args.FilterResponse {
		policy.ForceSummarize = true
	}

	serialized := 0
	if raw, err := json.Marshal(envelope); err == nil {
		serialized = len([]rune(string(raw)))
	}
	oversized := serialized > policy.MaxResponseChars

	if !oversized {
		if policy.ForceSummarize {
			envelope.Result = g.shaper.ShapeWith(ctx, envelope.Result, args.Purpose, policy)
			return envelope
		}
		g.metrics.ObserveShaping(domain.ShapePassthrough)
		return envelope
	}

	// The payload fields share whatever the budget leaves after the JSON
	// framing; the result is shaped first and the log gets the remainder.
	overhead := serialized - len([]rune(envelope.Result)) - len([]rune(envelope.Log))
	budget := policy.MaxResponseChars - overhead
	if budget < 1 {
		budget = 1
	}

	if strings.TrimSpace(args.Purpose) != "" || policy.ForceSummarize {
		resultPolicy := policy
		resultPolicy.MaxResponseChars = budget
		envelope.Result = g.shaper.ShapeWith(ctx, envelope.Result, args.Purpose, resultPolicy)
	} else {
		g.metrics.ObserveShaping(domain.ShapeTruncate)
		envelope.Result = shaper.TruncateWithGuidance(envelope.Result, budget,
			"filter data inside the script, or pass a purpose to enable summarization")
	}

	logBudget := budget - len([]rune(envelope.Result))
	if logBudget < 1 {
		logBudget = 1
	}
	if len([]rune(envelope.Log)) > logBudget {
		envelope.Log = shaper.Truncate(envelope.Log, logBudget)
	}
	return envelope
}

func (g *Gateway) observeDispatch(tool string, start time.Time) {
	g.metrics.ObserveDispatch(tool, time.Since(start))
}

func decodeArgs(req *mcp.CallToolRequest, out any) error {
	raw := json.RawMessage(req.Params.Arguments)
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %s", err.Error())}},
	}
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
