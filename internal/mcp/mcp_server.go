// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"time"

	"github.com/huangsam/flowstate/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Flowstate MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.Store) *server.MCPServer {
	s := server.NewMCPServer(
		"Flowstate Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
		now:     time.Now,
	}

	// --- 1. Tool: get_presence_status ---
	s.AddTool(mcp.NewTool("get_presence_status",
		mcp.WithDescription("Report whether the user is flowing, active or only online."),
		mcp.WithString("active_window", mcp.Description("How recent activity must be to count as active (e.g., '5m').")),
	), h.handleGetPresenceStatus)

	// --- 2. Tool: get_flow_score ---
	s.AddTool(mcp.NewTool("get_flow_score",
		mcp.WithDescription("Score a window of recorded activity without persisting it. Defaults to the interval ending now."),
		mcp.WithString("start", mcp.Description("Window start as RFC3339 or a relative time (e.g., '30 minutes ago').")),
		mcp.WithString("interval", mcp.Description("Window length (e.g., '10m', '15 minutes').")),
	), h.handleGetFlowScore)

	// --- 3. Tool: list_flow_periods ---
	s.AddTool(mcp.NewTool("list_flow_periods",
		mcp.WithDescription("List persisted flow periods with their score breakdown."),
		mcp.WithString("since", mcp.Description("Lower bound as RFC3339 or a relative time (e.g., '2 hours ago'). Defaults to the last day.")),
		mcp.WithString("order", mcp.Description("Sort order. Defaults to 'recent'."), mcp.Enum("recent", "score")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleListFlowPeriods)

	// --- 4. Tool: list_flow_sessions ---
	s.AddTool(mcp.NewTool("list_flow_sessions",
		mcp.WithDescription("List focus and break sessions started by the user, newest first."),
		mcp.WithString("since", mcp.Description("Lower bound as RFC3339 or a relative time. Defaults to the last day.")),
	), h.handleListFlowSessions)

	return s
}

// StartMCPServer starts the Flowstate MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.Store) error {
	s := NewMCPServer(baseCfg, store)
	return server.ServeStdio(s)
}
