package sources

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

// FetchChannel loads snippet, statistics and the uploads playlist of one channel.
func FetchChannel(ctx context.Context, channelID string) (engine.ChannelRecord, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics,contentDetails")
	params.Set("id", channelID)

	var resp ytChannelsResp
	if err := ytGet(ctx, "channels", params, &resp); err != nil {
		return engine.ChannelRecord{}, err
	}
	if len(resp.Items) == 0 {
		return engine.ChannelRecord{}, engine.NewError(engine.KindMalformedResponse, "channels",
			fmt.Errorf("channel %s not found", channelID))
	}

	item := resp.Items[0]
	rec := engine.ChannelRecord{
		ID:                    item.ID,
		Title:                 item.Snippet.Title,
		Description:           item.Snippet.Description,
		HiddenSubscriberCount: item.Statistics.HiddenSubscriberCount,
		ThumbnailURL:          item.Snippet.Thumbnails.best(),
		UploadsPlaylistID:     item.ContentDetails.RelatedPlaylists.Uploads,
	}
	if rec.ID == "" {
		rec.ID = channelID
	}

	var err error
	if rec.SubscriberCount, err = ParseCount(item.Statistics.SubscriberCount); err != nil {
		return engine.ChannelRecord{}, err
	}
	if rec.ViewCount, err = ParseCount(item.Statistics.ViewCount); err != nil {
		return engine.ChannelRecord{}, err
	}
	if rec.VideoCount, err = ParseCount(item.Statistics.VideoCount); err != nil {
		return engine.ChannelRecord{}, err
	}
	if item.Snippet.PublishedAt != "" {
		if rec.CreatedAt, err = ParseTimestamp(item.Snippet.PublishedAt); err != nil {
			return engine.ChannelRecord{}, err
		}
	}
	return rec, nil
}

// uploadsPlaylistID returns the recorded uploads playlist, deriving UU… from a UC… channel ID when absent.
func uploadsPlaylistID(ch engine.ChannelRecord) (string, error) {
	if ch.UploadsPlaylistID != "" {
		return ch.UploadsPlaylistID, nil
	}
	if len(ch.ID) > 2 && ch.ID[:2] == "UC" {
		return "UU" + ch.ID[2:], nil
	}
	return "", engine.NewError(engine.KindMalformedResponse, "channels",
		errors.New("channel has no uploads playlist"))
}
