package engine

import (
	"context"
	"net/http"
	"time"
)

// CompleteFunc sends a single prompt to the configured LLM and returns the raw text.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey         string
	YouTubeAPIKeyFallback string
	YouTubeAPIBase        string
	EstimatorAPIKey       string
	EstimatorHost         string
	EstimatorBaseURL      string
	LLMAPIKey             string
	LLMAPIKeyFallbacks    []string
	LLMAPIBase            string
	LLMModel              string
	LLMTemperature        float64
	LLMMaxTokens          int
	LLMComplete           CompleteFunc // nil = narrative disabled
	FetchTimeout          time.Duration
	AnalysisTimeout       time.Duration
	MaxCatalogPages       int
	StatsConcurrency      int
	YouTubeRPS            float64
	CacheMaxEntries       int
	CacheCleanupInterval  time.Duration
	HTTPClient            *http.Client
	Retry                 RetryConfig
}

// Defaults used when a field is left zero.
const (
	DefaultYouTubeAPIBase   = "https://www.googleapis.com/youtube/v3"
	DefaultEstimatorHost    = "youtuber-success-estimator.p.rapidapi.com"
	DefaultMaxCatalogPages  = 400
	DefaultStatsConcurrency = 4
	DefaultYouTubeRPS       = 10
)

var cfg = withDefaults(Config{})

// Cfg exposes the engine configuration for sub-packages (sources, stats).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = withDefaults(c)
	Cfg = &cfg
}

func withDefaults(c Config) Config {
	if c.YouTubeAPIBase == "" {
		c.YouTubeAPIBase = DefaultYouTubeAPIBase
	}
	if c.EstimatorHost == "" {
		c.EstimatorHost = DefaultEstimatorHost
	}
	if c.EstimatorBaseURL == "" {
		c.EstimatorBaseURL = "https://" + c.EstimatorHost
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 15 * time.Second
	}
	if c.AnalysisTimeout <= 0 {
		c.AnalysisTimeout = 5 * time.Minute
	}
	if c.MaxCatalogPages <= 0 {
		c.MaxCatalogPages = DefaultMaxCatalogPages
	}
	if c.StatsConcurrency <= 0 {
		c.StatsConcurrency = DefaultStatsConcurrency
	}
	if c.YouTubeRPS <= 0 {
		c.YouTubeRPS = DefaultYouTubeRPS
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.FetchTimeout}
	}
	if c.Retry == (RetryConfig{}) {
		c.Retry = DefaultRetryConfig
	}
	return c
}

// NarrativeEnabled reports whether an LLM client is wired.
func NarrativeEnabled() bool {
	return cfg.LLMComplete != nil
}
