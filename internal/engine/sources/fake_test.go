package sources

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

// fakeVideo is one upload served by fakeYouTube.
type fakeVideo struct {
	ID        string
	Title     string
	Published string
	Views     string
	Likes     string
	Comments  string
	Duration  string
	NoStats   bool // omitted from videos responses
}

// fakeYouTube serves channels, playlistItems, videos and the estimator from memory.
type fakeYouTube struct {
	mu          sync.Mutex
	channel     map[string]any // nil = empty items
	pages       [][]fakeVideo  // uploads playlist pages, in order
	tokens      []string       // tokens[i] is the nextPageToken of page i; defaults to "p<i+1>"
	playlist404 bool
	videosFail  int // status returned by videos; 0 = ok
	lookupID    string
	lookupCode  int

	lookupCalls atomic.Int32
	videoCalls  atomic.Int32
	keys        []string
	headers     http.Header
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.keys = append(f.keys, r.URL.Query().Get("key"))
	f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, estimatorPath):
		f.lookupCalls.Add(1)
		f.mu.Lock()
		f.headers = r.Header.Clone()
		f.mu.Unlock()
		if f.lookupCode != 0 {
			w.WriteHeader(f.lookupCode)
			return
		}
		writeJSON(w, map[string]any{"data": map[string]any{"channel": map[string]any{"id": f.lookupID}}})
	case strings.HasSuffix(r.URL.Path, "/channels"):
		items := []any{}
		if f.channel != nil {
			items = append(items, f.channel)
		}
		writeJSON(w, map[string]any{"items": items})
	case strings.HasSuffix(r.URL.Path, "/playlistItems"):
		f.servePlaylist(w, r)
	case strings.HasSuffix(r.URL.Path, "/videos"):
		f.videoCalls.Add(1)
		if f.videosFail != 0 {
			w.WriteHeader(f.videosFail)
			return
		}
		f.serveVideos(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeYouTube) token(i int) string {
	if i < len(f.tokens) {
		return f.tokens[i]
	}
	return fmt.Sprintf("p%d", i+1)
}

func (f *fakeYouTube) servePlaylist(w http.ResponseWriter, r *http.Request) {
	if f.playlist404 {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error": {"code": 404, "errors": [{"reason": "playlistNotFound"}]}}`)
		return
	}
	idx := 0
	if tok := r.URL.Query().Get("pageToken"); tok != "" {
		idx = -1
		for i := range f.pages {
			if f.token(i) == tok {
				idx = i + 1
				break
			}
		}
		if idx < 0 || idx >= len(f.pages) {
			http.Error(w, `{"error": {"code": 400, "errors": [{"reason": "invalidPageToken"}]}}`, http.StatusBadRequest)
			return
		}
	}
	items := []any{}
	for _, v := range f.pages[idx] {
		items = append(items, map[string]any{
			"snippet": map[string]any{
				"title":       v.Title,
				"publishedAt": "2024-01-01T00:00:00Z",
				"resourceId":  map[string]any{"videoId": v.ID},
			},
			"contentDetails": map[string]any{"videoId": v.ID, "videoPublishedAt": v.Published},
		})
	}
	resp := map[string]any{"items": items}
	if idx < len(f.pages)-1 || idx < len(f.tokens) {
		resp["nextPageToken"] = f.token(idx)
	}
	writeJSON(w, resp)
}

func (f *fakeYouTube) serveVideos(w http.ResponseWriter, r *http.Request) {
	want := strings.Split(r.URL.Query().Get("id"), ",")
	byID := map[string]fakeVideo{}
	for _, page := range f.pages {
		for _, v := range page {
			byID[v.ID] = v
		}
	}
	items := []any{}
	for _, id := range want {
		v, ok := byID[id]
		if !ok || v.NoStats {
			continue
		}
		stats := map[string]any{}
		if v.Views != "" {
			stats["viewCount"] = v.Views
		}
		if v.Likes != "" {
			stats["likeCount"] = v.Likes
		}
		if v.Comments != "" {
			stats["commentCount"] = v.Comments
		}
		items = append(items, map[string]any{
			"id":             v.ID,
			"snippet":        map[string]any{"title": v.Title, "publishedAt": v.Published},
			"statistics":     stats,
			"contentDetails": map[string]any{"duration": v.Duration},
		})
	}
	writeJSON(w, map[string]any{"items": items})
}

// keyGuard answers 403 quotaExceeded for the refused key ("*" refuses all).
type keyGuard struct {
	next   http.Handler
	refuse string
	mu     sync.Mutex
	seen   []string
}

func (g *keyGuard) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	g.mu.Lock()
	g.seen = append(g.seen, key)
	g.mu.Unlock()
	if g.refuse == "*" || key == g.refuse {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": {"code": 403, "errors": [{"reason": "quotaExceeded"}]}}`)
		return
	}
	g.next.ServeHTTP(w, r)
}

func (g *keyGuard) seenKeys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.seen...)
}

func (f *fakeYouTube) header(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers.Get(name)
}

func (f *fakeYouTube) seenKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// testConfig points the engine at srv with fast retries and no lookup cache.
func testConfig(t *testing.T, srv *httptest.Server, mutate ...func(*engine.Config)) {
	t.Helper()
	c := engine.Config{
		YouTubeAPIKey:    "yt-key",
		YouTubeAPIBase:   srv.URL,
		EstimatorAPIKey:  "rapid-key",
		EstimatorBaseURL: srv.URL,
		YouTubeRPS:       1000,
		MaxCatalogPages:  10,
		StatsConcurrency: 3,
		Retry:            engine.RetryConfig{MaxRetries: 1, InitialWait: time.Millisecond, MaxWait: 2 * time.Millisecond, Multiplier: 2},
	}
	for _, m := range mutate {
		m(&c)
	}
	engine.Init(c)
	engine.InitCache("", 0, 0, 0)
	t.Cleanup(func() { engine.Init(engine.Config{}) })
}

func startFake(t *testing.T, f *fakeYouTube, mutate ...func(*engine.Config)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	testConfig(t, srv, mutate...)
	return srv
}

func testChannel(videoCount string) map[string]any {
	return map[string]any{
		"id": "UCabc123",
		"snippet": map[string]any{
			"title":       "Test Channel",
			"description": "about",
			"publishedAt": "2015-03-04T05:06:07.000Z",
			"thumbnails":  map[string]any{"default": map[string]any{"url": "https://img/d.jpg"}, "high": map[string]any{"url": "https://img/h.jpg"}},
		},
		"statistics": map[string]any{
			"viewCount":       "123456",
			"subscriberCount": "789",
			"videoCount":      videoCount,
		},
		"contentDetails": map[string]any{"relatedPlaylists": map[string]any{"uploads": "UUabc123"}},
	}
}
