package sources

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

var (
	limiterMu  sync.Mutex
	limiter    *rate.Limiter
	limiterRPS float64
)

// ytLimiter returns the process-wide Data API limiter, rebuilt when YOUTUBE_RPS changes.
func ytLimiter() *rate.Limiter {
	limiterMu.Lock()
	defer limiterMu.Unlock()
	rps := engine.Cfg.YouTubeRPS
	if limiter == nil || limiterRPS != rps {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(rps), burst)
		limiterRPS = rps
	}
	return limiter
}

// ytGet calls a Data API v3 endpoint and decodes the response into out.
// Falls back to the secondary key when the primary one is refused with 403 (quota).
func ytGet(ctx context.Context, endpoint string, params url.Values, out any) error {
	keys := []string{engine.Cfg.YouTubeAPIKey}
	if engine.Cfg.YouTubeAPIKeyFallback != "" {
		keys = append(keys, engine.Cfg.YouTubeAPIKeyFallback)
	}
	if keys[0] == "" {
		return engine.Errorf(engine.KindUpstreamQuota, endpoint, "YOUTUBE_API_KEY: %w", engine.ErrNotConfigured)
	}

	var lastErr error
	for i, key := range keys {
		if err := ytLimiter().Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}
			return engine.NewError(engine.KindNetwork, endpoint, err)
		}
		q := url.Values{}
		for k, v := range params {
			q[k] = v
		}
		q.Set("key", key)
		apiURL := strings.TrimRight(engine.Cfg.YouTubeAPIBase, "/") + "/" + endpoint + "?" + q.Encode()

		engine.IncrAPIRequest(endpoint)
		err := engine.GetJSON(ctx, endpoint, apiURL, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if engine.StatusCode(err) != http.StatusForbidden || i == len(keys)-1 {
			break
		}
		slog.Debug("youtube data API key refused, trying fallback",
			slog.String("endpoint", endpoint), slog.String("reason", apiErrorReason(err)))
	}
	return lastErr
}

func httpStatusErr(err error) *engine.HTTPStatusError {
	var se *engine.HTTPStatusError
	if errors.As(err, &se) {
		return se
	}
	return nil
}
