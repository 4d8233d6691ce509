// Package statserver exposes channel analysis as MCP tools.
package statserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
	"github.com/anatolykoptev/go_ytstats/internal/engine/stats"
	"github.com/anatolykoptev/go_ytstats/internal/toolutil"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// RegisterTools registers channel_analyze and channel_lookup on the given MCP server.
func RegisterTools(server *mcp.Server) {
	registerChannelAnalyze(server)
	registerChannelLookup(server)
}

func registerChannelAnalyze(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_analyze",
		Description: "Analyze a public YouTube channel. Accepts a handle (@name) or a channel link (https://www.youtube.com/@name). Returns channel statistics, every uploaded video with views/likes/comments/duration, top-5 videos by views and likes, monthly and yearly upload buckets, and optionally a short LLM-written narrative.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handleChannelAnalyze)
}

func registerChannelLookup(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "channel_lookup",
		Description: "Resolve a YouTube channel handle or link to its canonical channel ID (UC…) without fetching statistics.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, handleChannelLookup)
}

// handleChannelAnalyze declares an untyped output: the analysis carries timestamps,
// which are sent as RFC 3339 strings without an output schema.
func handleChannelAnalyze(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelAnalyzeInput) (*mcp.CallToolResult, any, error) {
	if input.Channel == "" {
		return nil, nil, fmt.Errorf("channel is required")
	}
	a, err := stats.Analyze(ctx, stats.AnalysisRequest{Input: input.Channel, Narrative: input.Narrative})
	if err != nil {
		return nil, nil, toolutil.ToolError(err)
	}
	return nil, a, nil
}

func handleChannelLookup(ctx context.Context, _ *mcp.CallToolRequest, input engine.ChannelLookupInput) (*mcp.CallToolResult, engine.ChannelLookupOutput, error) {
	if input.Channel == "" {
		return nil, engine.ChannelLookupOutput{}, fmt.Errorf("channel is required")
	}
	out, err := stats.Lookup(ctx, input.Channel)
	if err != nil {
		slog.Debug("channel_lookup failed", slog.String("channel", input.Channel), slog.Any("error", err))
		return nil, engine.ChannelLookupOutput{}, toolutil.ToolError(err)
	}
	return nil, out, nil
}
