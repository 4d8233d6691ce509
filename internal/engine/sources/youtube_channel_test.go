package sources

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

func TestFetchChannel(t *testing.T) {
	f := &fakeYouTube{channel: testChannel("42")}
	startFake(t, f)

	ch, err := FetchChannel(context.Background(), "UCabc123")
	require.NoError(t, err)
	assert.Equal(t, "UCabc123", ch.ID)
	assert.Equal(t, "Test Channel", ch.Title)
	assert.Equal(t, int64(789), ch.SubscriberCount)
	assert.Equal(t, int64(123456), ch.ViewCount)
	assert.Equal(t, int64(42), ch.VideoCount)
	assert.Equal(t, "UUabc123", ch.UploadsPlaylistID)
	assert.Equal(t, "https://img/h.jpg", ch.ThumbnailURL)
	assert.True(t, time.Date(2015, 3, 4, 5, 6, 7, 0, time.UTC).Equal(ch.CreatedAt))
	assert.Equal(t, []string{"yt-key"}, f.seenKeys())
}

func TestFetchChannelAbsentCounts(t *testing.T) {
	c := testChannel("")
	c["statistics"] = map[string]any{"hiddenSubscriberCount": true}
	startFake(t, &fakeYouTube{channel: c})

	ch, err := FetchChannel(context.Background(), "UCabc123")
	require.NoError(t, err)
	assert.Zero(t, ch.SubscriberCount)
	assert.Zero(t, ch.ViewCount)
	assert.Zero(t, ch.VideoCount)
	assert.True(t, ch.HiddenSubscriberCount)
}

func TestFetchChannelNotFound(t *testing.T) {
	startFake(t, &fakeYouTube{})

	_, err := FetchChannel(context.Background(), "UCnope")
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindMalformedResponse))
}

func TestFetchChannelBadValues(t *testing.T) {
	badCount := testChannel("lots")
	_, err := fetchWith(t, badCount)
	assert.True(t, engine.IsKind(err, engine.KindParse))

	badDate := testChannel("1")
	badDate["snippet"].(map[string]any)["publishedAt"] = "last tuesday"
	_, err = fetchWith(t, badDate)
	assert.True(t, engine.IsKind(err, engine.KindParse))
}

func fetchWith(t *testing.T, channel map[string]any) (engine.ChannelRecord, error) {
	t.Helper()
	startFake(t, &fakeYouTube{channel: channel})
	return FetchChannel(context.Background(), "UCabc123")
}

func TestFetchChannelKeyFallback(t *testing.T) {
	f := &fakeYouTube{channel: testChannel("1")}
	guard := &keyGuard{next: f, refuse: "yt-key"}
	srv := httptest.NewServer(guard)
	t.Cleanup(srv.Close)
	testConfig(t, srv, func(c *engine.Config) { c.YouTubeAPIKeyFallback = "yt-backup" })

	ch, err := FetchChannel(context.Background(), "UCabc123")
	require.NoError(t, err)
	assert.Equal(t, "Test Channel", ch.Title)
	assert.Equal(t, []string{"yt-key", "yt-backup"}, guard.seenKeys())
}

func TestFetchChannelKeyFallbackExhausted(t *testing.T) {
	f := &fakeYouTube{channel: testChannel("1")}
	guard := &keyGuard{next: f, refuse: "*"}
	srv := httptest.NewServer(guard)
	t.Cleanup(srv.Close)
	testConfig(t, srv, func(c *engine.Config) { c.YouTubeAPIKeyFallback = "yt-backup" })

	_, err := FetchChannel(context.Background(), "UCabc123")
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindUpstreamQuota))
	assert.Equal(t, "quotaExceeded", apiErrorReason(err))
	assert.Len(t, guard.seenKeys(), 2)
}

func TestFetchChannelNoKey(t *testing.T) {
	f := &fakeYouTube{channel: testChannel("1")}
	startFake(t, f, func(c *engine.Config) { c.YouTubeAPIKey = "" })

	_, err := FetchChannel(context.Background(), "UCabc123")
	require.ErrorIs(t, err, engine.ErrNotConfigured)
	assert.Empty(t, f.seenKeys())
}

func TestUploadsPlaylistID(t *testing.T) {
	id, err := uploadsPlaylistID(engine.ChannelRecord{ID: "UCabc", UploadsPlaylistID: "UUother"})
	require.NoError(t, err)
	assert.Equal(t, "UUother", id)

	id, err = uploadsPlaylistID(engine.ChannelRecord{ID: "UCabc"})
	require.NoError(t, err)
	assert.Equal(t, "UUabc", id)

	_, err = uploadsPlaylistID(engine.ChannelRecord{ID: "HCabc"})
	assert.True(t, engine.IsKind(err, engine.KindMalformedResponse))
}
