// go_ytstats: YouTube channel statistics over MCP and a web dashboard.
//
// Exposes two MCP tools: channel_analyze, channel_lookup.
// The dashboard (HTML + JSON API) runs alongside on DASHBOARD_PORT.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_ytstats/internal/dashboard"
	"github.com/anatolykoptev/go_ytstats/internal/engine"
	"github.com/anatolykoptev/go_ytstats/internal/statserver"
)

var (
	version       = "dev"
	mcpPort       = env.Str("MCP_PORT", "8891")
	dashboardPort = env.Str("DASHBOARD_PORT", "8892")
)

func main() {
	initLogger(env.Str("LOG_LEVEL", "info"))
	initEngine()

	slog.Info("starting go_ytstats",
		slog.String("mcp_port", mcpPort),
		slog.String("dashboard_port", dashboardPort),
		slog.Bool("narrative", engine.NarrativeEnabled()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if dashboardPort != "" && dashboardPort != "0" {
		go func() {
			err := dashboard.Run(ctx, ":"+dashboardPort, dashboard.Options{
				Version:     version,
				CORSOrigins: env.List("CORS_ORIGINS", ""),
			})
			if err != nil {
				slog.Error("dashboard failed", slog.Any("error", err))
			}
		}()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_ytstats",
		Version: version,
	}, nil)

	statserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", statserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_ytstats",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: engine.Cfg.AnalysisTimeout + 30*time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initLogger(level string) {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func initEngine() {
	fetchTimeout := env.Duration("FETCH_TIMEOUT", 15*time.Second)
	c := engine.Config{
		YouTubeAPIKey:         env.Str("YOUTUBE_API_KEY", ""),
		YouTubeAPIKeyFallback: env.Str("YOUTUBE_API_KEY_FALLBACK", ""),
		YouTubeAPIBase:        env.Str("YOUTUBE_API_BASE", engine.DefaultYouTubeAPIBase),
		EstimatorAPIKey:       env.Str("RAPIDAPI_KEY", ""),
		EstimatorHost:         env.Str("ESTIMATOR_HOST", engine.DefaultEstimatorHost),
		EstimatorBaseURL:      env.Str("ESTIMATOR_BASE_URL", ""),
		LLMAPIKey:             env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:    env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:            env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:              env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:        env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:          env.Int("LLM_MAX_TOKENS", 1024),
		FetchTimeout:          fetchTimeout,
		AnalysisTimeout:       env.Duration("ANALYSIS_TIMEOUT", 5*time.Minute),
		MaxCatalogPages:       env.Int("MAX_CATALOG_PAGES", engine.DefaultMaxCatalogPages),
		StatsConcurrency:      env.Int("STATS_CONCURRENCY", engine.DefaultStatsConcurrency),
		YouTubeRPS:            env.Float("YOUTUBE_RPS", engine.DefaultYouTubeRPS),
		CacheMaxEntries:       env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval:  env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if c.YouTubeAPIKey == "" {
		slog.Warn("YOUTUBE_API_KEY not set, analyses will fail")
	}
	if c.EstimatorAPIKey == "" {
		slog.Warn("RAPIDAPI_KEY not set, channel lookups will fail")
	}

	if c.LLMAPIKey != "" {
		client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
		)
		c.LLMComplete = func(ctx context.Context, prompt string) (string, error) {
			return client.Complete(ctx, "", prompt)
		}
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 24*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
}
