package sources

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

func TestLookupChannelID(t *testing.T) {
	f := &fakeYouTube{lookupID: "UCxyz"}
	startFake(t, f)

	id, err := LookupChannelID(context.Background(), "@creator")
	require.NoError(t, err)
	assert.Equal(t, "UCxyz", id)
	assert.Equal(t, "rapid-key", f.header("x-rapidapi-key"))
	assert.Equal(t, engine.DefaultEstimatorHost, f.header("x-rapidapi-host"))
}

func TestLookupChannelIDMissingField(t *testing.T) {
	f := &fakeYouTube{lookupID: ""}
	startFake(t, f)

	_, err := LookupChannelID(context.Background(), "@creator")
	require.Error(t, err)
	assert.True(t, engine.IsKind(err, engine.KindMalformedResponse))

	var e *engine.Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "lookup", e.Op)
}

func TestLookupChannelIDStatusKinds(t *testing.T) {
	tests := []struct {
		code  int
		kind  engine.Kind
		calls int32
	}{
		{http.StatusForbidden, engine.KindUpstreamQuota, 1},
		{http.StatusTooManyRequests, engine.KindUpstreamQuota, 2},
		{http.StatusInternalServerError, engine.KindNetwork, 2},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.code), func(t *testing.T) {
			f := &fakeYouTube{lookupCode: tt.code}
			startFake(t, f)

			_, err := LookupChannelID(context.Background(), "@creator")
			require.Error(t, err)
			assert.Equal(t, tt.kind, engine.KindOf(err))
			assert.Equal(t, tt.calls, f.lookupCalls.Load(), "retries only on transient statuses")
		})
	}
}

func TestLookupChannelIDNotConfigured(t *testing.T) {
	f := &fakeYouTube{lookupID: "UCxyz"}
	startFake(t, f, func(c *engine.Config) { c.EstimatorAPIKey = "" })

	_, err := LookupChannelID(context.Background(), "@creator")
	require.ErrorIs(t, err, engine.ErrNotConfigured)
	assert.Zero(t, f.lookupCalls.Load())
}

func TestLookupChannelIDCached(t *testing.T) {
	f := &fakeYouTube{lookupID: "UCcached"}
	startFake(t, f)
	engine.InitCache("", time.Minute, 100, time.Minute)
	t.Cleanup(func() { engine.InitCache("", 0, 0, 0) })

	ctx := context.Background()
	for range 3 {
		id, err := LookupChannelID(ctx, "@Cached")
		require.NoError(t, err)
		assert.Equal(t, "UCcached", id)
	}
	id, err := LookupChannelID(ctx, "@cached")
	require.NoError(t, err)
	assert.Equal(t, "UCcached", id)
	assert.Equal(t, int32(1), f.lookupCalls.Load())
}
