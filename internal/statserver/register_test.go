package statserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
	"github.com/anatolykoptev/go_ytstats/internal/engine/stats"
	"github.com/anatolykoptev/go_ytstats/internal/toolutil"
)

// fakeUpstream serves a one-video channel for @solo and no channel id for anything else.
func fakeUpstream(t *testing.T) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/estimator"):
			if r.URL.Query().Get("channelName") == "@solo" {
				fmt.Fprint(w, `{"data": {"channel": {"id": "UCsolo"}}}`)
				return
			}
			fmt.Fprint(w, `{"data": {}}`)
		case strings.HasSuffix(r.URL.Path, "/channels"):
			fmt.Fprint(w, `{"items": [{"id": "UCsolo", "snippet": {"title": "Solo"},
				"statistics": {"videoCount": "1"}, "contentDetails": {"relatedPlaylists": {"uploads": "UUsolo"}}}]}`)
		case strings.HasSuffix(r.URL.Path, "/playlistItems"):
			fmt.Fprint(w, `{"items": [{"contentDetails": {"videoId": "only", "videoPublishedAt": "2024-04-04T04:04:04Z"}, "snippet": {"title": "Only"}}]}`)
		case strings.HasSuffix(r.URL.Path, "/videos"):
			fmt.Fprint(w, `{"items": [{"id": "only", "statistics": {"viewCount": "7"}, "contentDetails": {"duration": "PT7S"}}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	engine.Init(engine.Config{
		YouTubeAPIKey:    "k",
		YouTubeAPIBase:   srv.URL,
		EstimatorAPIKey:  "r",
		EstimatorBaseURL: srv.URL,
		YouTubeRPS:       1000,
		Retry:            engine.RetryConfig{MaxRetries: 1, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 2},
	})
	engine.InitCache("", 0, 0, 0)
	t.Cleanup(func() { engine.Init(engine.Config{}) })
}

func TestHandleChannelAnalyze(t *testing.T) {
	fakeUpstream(t)

	_, out, err := handleChannelAnalyze(context.Background(), nil, engine.ChannelAnalyzeInput{Channel: "@solo"})
	require.NoError(t, err)
	a, ok := out.(*stats.Analysis)
	require.True(t, ok)
	require.Len(t, a.Videos, 1)
	assert.Equal(t, int64(7), a.Videos[0].ViewCount)
	assert.Equal(t, "Solo", a.Report.Overview.Title)
}

func TestHandleChannelAnalyzeErrors(t *testing.T) {
	fakeUpstream(t)

	_, _, err := handleChannelAnalyze(context.Background(), nil, engine.ChannelAnalyzeInput{})
	require.Error(t, err)

	_, out, err := handleChannelAnalyze(context.Background(), nil, engine.ChannelAnalyzeInput{Channel: "@nobody"})
	require.Error(t, err)
	assert.Nil(t, out)
	var ue *toolutil.UserError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, engine.UserMessage(ue.Err), err.Error())
	assert.True(t, engine.IsKind(err, engine.KindMalformedResponse))
}

func TestHandleChannelLookup(t *testing.T) {
	fakeUpstream(t)

	_, out, err := handleChannelLookup(context.Background(), nil, engine.ChannelLookupInput{Channel: "https://www.youtube.com/@solo"})
	require.NoError(t, err)
	assert.Equal(t, "@solo", out.Handle)
	assert.Equal(t, "UCsolo", out.ChannelID)

	_, _, err = handleChannelLookup(context.Background(), nil, engine.ChannelLookupInput{Channel: "https://www.youtube.com/c/legacy"})
	assert.ErrorIs(t, err, engine.ErrUnresolvable)
}

func TestRegisterToolsOverMCP(t *testing.T) {
	fakeUpstream(t)
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "go_ytstats", Version: "test"}, nil)
	RegisterTools(server)

	ct, st := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	defer cs.Close()

	tools, err := cs.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"channel_analyze", "channel_lookup"}, names)
	assert.Len(t, names, ToolCount)

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "channel_lookup", Arguments: map[string]any{"channel": "@solo"}})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "channel_analyze", Arguments: map[string]any{"channel": "@nobody"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
