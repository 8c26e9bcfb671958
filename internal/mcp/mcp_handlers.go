package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/flowstate/core"
	"github.com/huangsam/flowstate/core/algo"
	"github.com/huangsam/flowstate/internal/contract"
	"github.com/huangsam/flowstate/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.Store
	now     func() time.Time
}

func (h *toolHandler) handleGetPresenceStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	activeWindow := h.baseCfg.ActiveWindow
	if s := request.GetString("active_window", ""); s != "" {
		d, err := contract.ParseDuration(s)
		if err != nil || d <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid active_window %q", s)), nil
		}
		activeWindow = d
	}

	classifier := core.NewStatusClassifier(h.store,
		core.WithStatusClock(h.now),
		core.WithActiveWindow(activeWindow))
	status, err := classifier.Classify(ctx)

	result := map[string]string{"status": status.String()}
	if err != nil {
		result["warning"] = err.Error()
	}
	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetFlowScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := h.now()

	interval := h.baseCfg.Interval
	if s := request.GetString("interval", ""); s != "" {
		d, err := contract.ParseDuration(s)
		if err != nil || d <= 0 {
			return mcp.NewToolResultError(fmt.Sprintf("invalid interval %q", s)), nil
		}
		interval = d
	}
	if interval <= 0 {
		interval = schema.DefaultScoringInterval
	}

	w := schema.Window{Start: now.Add(-interval), End: now}
	if s := request.GetString("start", ""); s != "" {
		start, err := contract.ParseSince(s, now)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid start: %v", err)), nil
		}
		w = schema.Window{Start: start, End: start.Add(interval)}
	}

	job := core.NewScoringJob(h.store, nil,
		core.WithInterval(interval),
		core.WithStreakLookback(h.baseCfg.StreakLookback),
		core.WithJobClock(h.now))
	period, err := job.Evaluate(ctx, w)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}

	enriched := schema.EnrichPeriods([]schema.FlowPeriod{period})
	jsonData, _ := json.MarshalIndent(enriched[0], "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListFlowPeriods(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	now := h.now()
	since, err := h.since(request, now)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = min(l, contract.MaxResultLimit)
	}

	periods, err := h.store.GetFlowPeriodsBetween(ctx, since, now)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list flow periods: %v", err)), nil
	}

	switch order := request.GetString("order", "recent"); order {
	case "recent":
		periods = algo.MostRecentFirst(periods)
		if limit > 0 && len(periods) > limit {
			periods = periods[:limit]
		}
	case "score":
		periods = algo.RankPeriods(periods, limit)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("invalid order %q (expected recent or score)", order)), nil
	}

	jsonData, _ := json.MarshalIndent(schema.EnrichPeriods(periods), "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListFlowSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	since, err := h.since(request, h.now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sessions, err := h.store.ListFlowSessions(ctx, since)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list flow sessions: %v", err)), nil
	}
	if sessions == nil {
		sessions = []schema.FlowSession{}
	}

	jsonData, _ := json.MarshalIndent(sessions, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// since resolves the "since" argument, falling back to the configured lower bound.
func (h *toolHandler) since(request mcp.CallToolRequest, now time.Time) (time.Time, error) {
	s := request.GetString("since", "")
	if s == "" {
		if !h.baseCfg.Since.IsZero() {
			return h.baseCfg.Since, nil
		}
		return now.Add(-contract.DefaultSince), nil
	}
	t, err := contract.ParseSince(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid since: %w", err)
	}
	return t, nil
}
