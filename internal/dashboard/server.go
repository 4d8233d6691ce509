// Package dashboard serves the single-page channel dashboard and its JSON API.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
	"github.com/anatolykoptev/go_ytstats/internal/engine/stats"
	"github.com/anatolykoptev/go_ytstats/internal/toolutil"
)

// Options configures the dashboard router.
type Options struct {
	Version     string
	CORSOrigins []string // empty = allow all
}

// NewRouter builds the gin engine with every dashboard route.
func NewRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	config := cors.DefaultConfig()
	if len(opts.CORSOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = opts.CORSOrigins
	}
	config.AllowMethods = []string{"GET", "OPTIONS"}
	r.Use(cors.New(config))

	r.SetHTMLTemplate(loadTemplates())

	r.GET("/", index)
	r.GET("/analyze", analyzePage)
	r.GET("/api/analyze", analyzeJSON)
	r.GET("/api/lookup", lookupJSON)
	r.GET("/health", func(c *gin.Context) {
		hits, misses := engine.CacheStats()
		c.JSON(http.StatusOK, gin.H{
			"status":       "healthy",
			"service":      "go_ytstats",
			"version":      opts.Version,
			"narrative":    engine.NarrativeEnabled(),
			"cache_hits":   hits,
			"cache_misses": misses,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(engine.Registry(), promhttp.HandlerOpts{})))
	return r
}

// Run serves the dashboard on addr until ctx is done.
func Run(ctx context.Context, addr string, opts Options) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      engine.Cfg.AnalysisTimeout + 30*time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("dashboard listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func index(c *gin.Context) {
	c.HTML(http.StatusOK, "page.tmpl", pageData{NarrativeEnabled: engine.NarrativeEnabled()})
}

// analyzePage renders either the full report or exactly one error message.
func analyzePage(c *gin.Context) {
	req := analysisRequest(c)
	data := pageData{Input: req.Input, Narrative: req.Narrative, NarrativeEnabled: engine.NarrativeEnabled()}

	a, err := stats.Analyze(c.Request.Context(), req)
	if err != nil {
		data.Error = engine.UserMessage(err)
		c.HTML(toolutil.HTTPStatus(err), "page.tmpl", data)
		return
	}
	data.Analysis = a
	c.HTML(http.StatusOK, "page.tmpl", data)
}

func analyzeJSON(c *gin.Context) {
	a, err := stats.Analyze(c.Request.Context(), analysisRequest(c))
	if err != nil {
		c.JSON(toolutil.HTTPStatus(err), gin.H{"error": engine.UserMessage(err), "kind": engine.KindOf(err)})
		return
	}
	c.JSON(http.StatusOK, a)
}

func lookupJSON(c *gin.Context) {
	out, err := stats.Lookup(c.Request.Context(), c.Query("channel"))
	if err != nil {
		c.JSON(toolutil.HTTPStatus(err), gin.H{"error": engine.UserMessage(err), "kind": engine.KindOf(err)})
		return
	}
	c.JSON(http.StatusOK, out)
}

func analysisRequest(c *gin.Context) stats.AnalysisRequest {
	return stats.AnalysisRequest{
		Input:     c.Query("channel"),
		Narrative: toolutil.ParseFlag(c.Query("narrative")),
	}
}

// requestLogger writes one structured log line per request.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}
