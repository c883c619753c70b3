// Package mcptool exposes read-only console operations as MCP tools so agent
// tooling can query backend status and CRM listings over stdio.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ncanzani/salesdeck/internal/backend"
	"github.com/ncanzani/salesdeck/internal/status"
)

// Deps holds dependencies for the MCP server.
type Deps struct {
	Client     *backend.Client
	Aggregator *status.Aggregator
}

// NewServer creates an MCP server with the console's tools registered.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"salesdeck",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("salesdeck — operator console for the WhatsApp sales-automation backend."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("get_status",
			mcp.WithDescription("Fetch current backend health: API, message queue, and knowledge index, plus queue depth and index sizes."),
		),
		toolGetStatus(deps),
	)

	s.AddTool(
		mcp.NewTool("list_conversations",
			mcp.WithDescription("List one page of WhatsApp conversations."),
			mcp.WithNumber("page", mcp.Description("1-based page index (default 1)")),
			mcp.WithNumber("page_size", mcp.Description("Records per page (default 20)")),
		),
		toolListConversations(deps),
	)

	s.AddTool(
		mcp.NewTool("list_leads",
			mcp.WithDescription("List one page of sales leads."),
			mcp.WithNumber("page", mcp.Description("1-based page index (default 1)")),
			mcp.WithNumber("page_size", mcp.Description("Records per page (default 20)")),
		),
		toolListLeads(deps),
	)

	return s
}

func toolGetStatus(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap := deps.Aggregator.Refresh(ctx)
		sys := snap.System()

		out := map[string]any{
			"api_ok":      sys.APIOK,
			"queue_ok":    sys.QueueOK,
			"rag_ok":      sys.RAGOK,
			"unreachable": snap.Unreachable,
		}
		if snap.LastError != "" {
			out["last_error"] = snap.LastError
		}
		if snap.Stats != nil {
			out["queue"] = snap.Stats.Queue
			out["rag"] = snap.Stats.RAG
			out["config"] = snap.Stats.Config
		}
		if snap.Health != nil {
			out["version"] = snap.Health.Version
			out["env"] = snap.Health.Env
		}
		return toolJSON(out)
	}
}

func toolListConversations(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, pageSize := pageArgs(req)
		p, err := deps.Client.Conversations(ctx, page, pageSize)
		if err != nil {
			return toolError(fmt.Sprintf("listing conversations failed: %s", backend.UserMessage(err))), nil
		}
		return toolJSON(p)
	}
}

func toolListLeads(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, pageSize := pageArgs(req)
		p, err := deps.Client.Leads(ctx, page, pageSize)
		if err != nil {
			return toolError(fmt.Sprintf("listing leads failed: %s", backend.UserMessage(err))), nil
		}
		return toolJSON(p)
	}
}

func pageArgs(req mcp.CallToolRequest) (page, pageSize int) {
	page = req.GetInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = req.GetInt("page_size", 20)
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return toolText(string(data)), nil
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
