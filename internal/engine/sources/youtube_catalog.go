package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

// pageSize is the Data API maximum for playlistItems and videos?id=.
const pageSize = 50

// Catalog walks a channel's uploads playlist and enriches every page with one batched
// videos request. Listing is sequential; enrichment of listed pages runs concurrently.
type Catalog struct {
	MaxPages    int // hard cap on listed pages
	Concurrency int // parallel enrichment requests
}

// CatalogStats describes one aggregation run.
type CatalogStats struct {
	Pages   int `json:"pages"`
	Videos  int `json:"videos"`
	NoStats int `json:"no_stats"` // items absent from the videos response (private or deleted)
}

// NewCatalog returns a Catalog configured from engine.Cfg.
func NewCatalog() *Catalog {
	return &Catalog{
		MaxPages:    engine.Cfg.MaxCatalogPages,
		Concurrency: engine.Cfg.StatsConcurrency,
	}
}

// Collect returns every upload of ch in listing order. Any page or enrichment failure aborts
// the run and nothing partial is returned. A channel without uploads yields an empty,
// non-nil collection.
func (c *Catalog) Collect(ctx context.Context, ch engine.ChannelRecord) (engine.VideoCollection, CatalogStats, error) {
	var st CatalogStats
	playlistID, err := uploadsPlaylistID(ch)
	if err != nil {
		return nil, st, err
	}
	maxPages := c.MaxPages
	if maxPages <= 0 {
		maxPages = engine.DefaultMaxCatalogPages
	}
	limit := c.Concurrency
	if limit <= 0 {
		limit = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	type pageResult struct {
		videos  []engine.VideoRecord
		noStats int
	}
	var pages []*pageResult
	seen := make(map[string]bool)
	token := ""

	listErr := func() error {
		for {
			if len(pages) >= maxPages {
				return engine.NewError(engine.KindPageLimit, "playlistItems",
					fmt.Errorf("%w: more than %d pages", engine.ErrPageLimit, maxPages))
			}

			resp, err := fetchPlaylistPage(gctx, playlistID, token)
			if err != nil {
				if len(pages) == 0 && ch.VideoCount == 0 && engine.StatusCode(err) == http.StatusNotFound {
					slog.Debug("catalog: uploads playlist missing for empty channel", slog.String("channel", ch.ID))
					return nil
				}
				return err
			}
			engine.IncrCatalogPage()

			res := &pageResult{}
			pages = append(pages, res)
			items := resp.Items
			g.Go(func() error {
				videos, noStats, err := enrichPage(gctx, items)
				if err != nil {
					return err
				}
				res.videos, res.noStats = videos, noStats
				return nil
			})

			next := resp.NextPageToken
			if next == "" {
				return nil
			}
			if next == token || seen[next] {
				return engine.NewError(engine.KindPageLimit, "playlistItems",
					fmt.Errorf("%w: cursor %q repeated", engine.ErrPageLimit, next))
			}
			seen[next] = true
			token = next
		}
	}()

	// An enrichment failure cancels gctx, which surfaces in the listing as a context error;
	// report the enrichment error as the cause.
	if err := g.Wait(); err != nil {
		return nil, st, err
	}
	if listErr != nil {
		return nil, st, listErr
	}

	videos := make(engine.VideoCollection, 0, len(pages)*pageSize)
	for _, p := range pages {
		videos = append(videos, p.videos...)
		st.NoStats += p.noStats
	}
	st.Pages = len(pages)
	st.Videos = len(videos)
	engine.AddVideosAggregated(len(videos))
	slog.Info("catalog: collected", slog.String("channel", ch.ID),
		slog.Int("pages", st.Pages), slog.Int("videos", st.Videos), slog.Int("no_stats", st.NoStats))
	return videos, st, nil
}

func fetchPlaylistPage(ctx context.Context, playlistID, token string) (*ytPlaylistItemsResp, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("maxResults", fmt.Sprint(pageSize))
	if token != "" {
		params.Set("pageToken", token)
	}
	var resp ytPlaylistItemsResp
	if err := ytGet(ctx, "playlistItems", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// enrichPage turns one listing page into records, merging one batched videos response.
// Items missing from that response keep their playlist snippet with zero statistics.
func enrichPage(ctx context.Context, items []ytPlaylistItem) ([]engine.VideoRecord, int, error) {
	if len(items) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(items))
	for _, it := range items {
		if id := it.videoID(); id != "" {
			ids = append(ids, id)
		}
	}

	byID := make(map[string]ytVideo, len(ids))
	if len(ids) > 0 {
		params := url.Values{}
		params.Set("part", "snippet,statistics,contentDetails")
		params.Set("id", strings.Join(ids, ","))
		params.Set("maxResults", fmt.Sprint(pageSize))
		var resp ytVideosResp
		if err := ytGet(ctx, "videos", params, &resp); err != nil {
			return nil, 0, err
		}
		for _, v := range resp.Items {
			byID[v.ID] = v
		}
	}

	out := make([]engine.VideoRecord, 0, len(items))
	noStats := 0
	for _, it := range items {
		v, ok := byID[it.videoID()]
		if !ok {
			noStats++
		}
		rec, err := videoRecord(it, v, ok)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, rec)
	}
	return out, noStats, nil
}

func videoRecord(it ytPlaylistItem, v ytVideo, hasStats bool) (engine.VideoRecord, error) {
	id := it.videoID()
	rec := engine.VideoRecord{
		ID:           id,
		Title:        it.Snippet.Title,
		ThumbnailURL: it.Snippet.Thumbnails.best(),
		URL:          engine.WatchURL(id),
	}
	published := it.publishedAt()

	if hasStats {
		if v.Snippet.Title != "" {
			rec.Title = v.Snippet.Title
		}
		if v.Snippet.PublishedAt != "" {
			published = v.Snippet.PublishedAt
		}
		if thumb := v.Snippet.Thumbnails.best(); thumb != "" {
			rec.ThumbnailURL = thumb
		}
		var err error
		if rec.ViewCount, err = ParseCount(v.Statistics.ViewCount); err != nil {
			return rec, err
		}
		if rec.LikeCount, err = ParseCount(v.Statistics.LikeCount); err != nil {
			return rec, err
		}
		if rec.CommentCount, err = ParseCount(v.Statistics.CommentCount); err != nil {
			return rec, err
		}
		if v.ContentDetails.Duration != "" {
			if rec.Duration, err = ParseISODuration(v.ContentDetails.Duration); err != nil {
				return rec, err
			}
		}
	}

	if published != "" {
		t, err := ParseTimestamp(published)
		if err != nil {
			return rec, err
		}
		rec.PublishedAt = t
	}
	return rec, nil
}
