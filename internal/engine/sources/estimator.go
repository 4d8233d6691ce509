package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

const estimatorPath = "/api/v0/analytics/creators/estimator"

type estimatorResp struct {
	Data struct {
		Channel struct {
			ID string `json:"id"`
		} `json:"channel"`
	} `json:"data"`
}

// LookupChannelID resolves a handle to the canonical channel ID through the RapidAPI estimator.
// Successful resolutions are cached; analysis data never is.
func LookupChannelID(ctx context.Context, handle string) (string, error) {
	if engine.Cfg.EstimatorAPIKey == "" {
		return "", engine.LookupError(engine.KindUpstreamQuota, fmt.Errorf("RAPIDAPI_KEY: %w", engine.ErrNotConfigured))
	}

	cacheKey := engine.CacheKey("lookup", strings.ToLower(handle))
	if id, ok := engine.CacheLoadJSON[string](ctx, cacheKey); ok && id != "" {
		slog.Debug("lookup: cache hit", slog.String("handle", handle))
		return id, nil
	}

	params := url.Values{}
	params.Set("channelName", handle)
	params.Set("channelType", "youtube")
	apiURL := strings.TrimRight(engine.Cfg.EstimatorBaseURL, "/") + estimatorPath + "?" + params.Encode()

	engine.IncrAPIRequest("lookup")
	var resp estimatorResp
	err := engine.GetJSON(ctx, "lookup", apiURL, map[string]string{
		"x-rapidapi-key":  engine.Cfg.EstimatorAPIKey,
		"x-rapidapi-host": engine.Cfg.EstimatorHost,
	}, &resp)
	if err != nil {
		var e *engine.Error
		if errors.As(err, &e) {
			return "", engine.LookupError(e.Kind, e.Err)
		}
		return "", engine.LookupError(engine.KindNetwork, err)
	}

	id := strings.TrimSpace(resp.Data.Channel.ID)
	if id == "" {
		engine.IncrAPIError("lookup", engine.KindMalformedResponse)
		return "", engine.LookupError(engine.KindMalformedResponse, errors.New("response has no data.channel.id"))
	}

	engine.CacheStoreJSON(ctx, cacheKey, id)
	slog.Info("lookup: resolved", slog.String("handle", handle), slog.String("channel_id", id))
	return id, nil
}
