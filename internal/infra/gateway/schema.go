package gateway

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

type toolDef struct {
	tool    *mcp.Tool
	handler func(*Gateway) mcp.ToolHandler
}

// toolDefinitions builds the advertised meta-tool surface. The surface
// is a pure function of the filter policy, which never changes after
// startup: under forced summarization the filter_response flag would be
// a no-op, so it is not advertised at all.
func toolDefinitions(policy domain.FilterPolicy) []toolDef {
	return []toolDef{
		{
			tool: &mcp.Tool{
				Name: "search_tools",
				Description: "Find the registered tools most relevant to a task. " +
					"Returns ranked tool names with short descriptions; use " +
					"get_tool_interface for full input and output schemas.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "Natural-language description of the task.",
						},
						"limit": map[string]any{
							"type":        "integer",
							"description": "Maximum number of tools to return.",
						},
					},
					"required": []string{"query"},
				},
			},
			handler: func(g *Gateway) mcp.ToolHandler { return g.handleSearchTools },
		},
		{
			tool: &mcp.Tool{
				Name: "list_tools",
				Description: "List every registered tool with a one-line summary, " +
					"grouped under a capability digest.",
				InputSchema: map[string]any{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
			handler: func(g *Gateway) mcp.ToolHandler { return g.handleListTools },
		},
		{
			tool: &mcp.Tool{
				Name: "get_tool_interface",
				Description: "Show the full interface of one tool: description, " +
					"input schema, and output schema. Accepts any spelling of the " +
					"tool name (dots, dashes, or underscores).",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "Tool name, for example provider.tool_name.",
						},
					},
					"required": []string{"name"},
				},
			},
			handler: func(g *Gateway) mcp.ToolHandler { return g.handleToolInterface },
		},
		{
			tool: &mcp.Tool{
				Name: "call_tool_script",
				Description: "Execute a composite script that calls one or more " +
					"registered tools and returns a single result. Use this for " +
					"multi-step workflows instead of separate round trips.",
				InputSchema: scriptInputSchema(policy),
			},
			handler: func(g *Gateway) mcp.ToolHandler { return g.handleCallToolScript },
		},
	}
}

func scriptInputSchema(policy domain.FilterPolicy) map[string]any {
	properties := map[string]any{
		"script": map[string]any{
			"type":        "string",
			"description": "The script to execute.",
		},
		"timeout_ms": map[string]any{
			"type":        "integer",
			"description": "Execution timeout in milliseconds.",
		},
		"max_output_chars": map[string]any{
			"type":        "integer",
			"description": "Per-call output budget in characters.",
		},
		"purpose": map[string]any{
			"type": "string",
			"description": "What the output will be used for. Guides " +
				"summarization when the result is large.",
		},
	}
	if !policy.ForceSummarize {
		properties["filter_response"] = map[string]any{
			"type": "boolean",
			"description": "Summarize the result through the completion API " +
				"even when it fits the output budget.",
		}
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   []string{"script"},
	}
}
