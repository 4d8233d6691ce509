package engine

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// registry is private so tests and the MCP metrics hook see only engine series.
var registry = prometheus.NewRegistry()

var (
	apiRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ytstats_api_requests_total",
		Help: "Upstream API requests by operation.",
	}, []string{"op"})

	apiErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ytstats_api_errors_total",
		Help: "Upstream API failures by operation and error kind.",
	}, []string{"op", "kind"})

	catalogPages = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytstats_catalog_pages_total",
		Help: "Uploads playlist pages walked.",
	})

	videosAggregated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytstats_videos_aggregated_total",
		Help: "Video records produced by the catalog aggregator.",
	})

	analyses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ytstats_analyses_total",
		Help: "Channel analyses by outcome.",
	}, []string{"outcome"})

	analysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ytstats_analysis_duration_seconds",
		Help:    "Wall time of a full channel analysis.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	llmCalls = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytstats_llm_calls_total",
		Help: "Narrative generation calls.",
	})

	llmErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytstats_llm_errors_total",
		Help: "Failed narrative generation calls.",
	})
)

func init() {
	registry.MustRegister(
		apiRequests, apiErrors, catalogPages, videosAggregated,
		analyses, analysisDuration, llmCalls, llmErrors,
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "ytstats_cache_hits_total",
			Help: "Lookup cache hits.",
		}, func() float64 { return float64(cacheHits.Load()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "ytstats_cache_misses_total",
			Help: "Lookup cache misses.",
		}, func() float64 { return float64(cacheMisses.Load()) }),
	)
}

// Registry exposes the engine metrics for an HTTP /metrics handler.
func Registry() *prometheus.Registry { return registry }

// FormatMetrics returns metrics in the Prometheus text format for the MCP server hook.
func FormatMetrics() string {
	families, err := registry.Gather()
	if err != nil {
		slog.Warn("metrics: gather failed", slog.Any("error", err))
	}
	var sb strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&sb, mf); err != nil {
			slog.Warn("metrics: encode failed", slog.String("family", mf.GetName()), slog.Any("error", err))
		}
	}
	return sb.String()
}

func IncrAPIRequest(op string)          { apiRequests.WithLabelValues(op).Inc() }
func IncrAPIError(op string, kind Kind) { apiErrors.WithLabelValues(op, string(kind)).Inc() }
func IncrCatalogPage()                  { catalogPages.Inc() }
func AddVideosAggregated(n int)         { videosAggregated.Add(float64(n)) }
func IncrLLMCall()                      { llmCalls.Inc() }
func IncrLLMError()                     { llmErrors.Inc() }

// ObserveAnalysis records the outcome and duration of one analysis.
func ObserveAnalysis(outcome string, elapsed time.Duration) {
	analyses.WithLabelValues(outcome).Inc()
	analysisDuration.Observe(elapsed.Seconds())
}

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
