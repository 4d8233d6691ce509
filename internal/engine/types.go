package engine

import "time"

// --- Domain records ---

// ChannelRecord is the channel-level aggregate fetched once per analysis.
type ChannelRecord struct {
	ID                    string    `json:"id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description,omitempty"`
	SubscriberCount       int64     `json:"subscriber_count"`
	HiddenSubscriberCount bool      `json:"hidden_subscriber_count,omitempty"`
	ViewCount             int64     `json:"view_count"`
	VideoCount            int64     `json:"video_count"`
	CreatedAt             time.Time `json:"created_at"`
	ThumbnailURL          string    `json:"thumbnail_url,omitempty"`
	UploadsPlaylistID     string    `json:"uploads_playlist_id"`
}

// VideoRecord is one uploaded video with parsed statistics.
type VideoRecord struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	PublishedAt  time.Time     `json:"published_at"`
	ViewCount    int64         `json:"view_count"`
	LikeCount    int64         `json:"like_count"`
	CommentCount int64         `json:"comment_count"`
	Duration     time.Duration `json:"duration_ns"`
	ThumbnailURL string        `json:"thumbnail_url,omitempty"`
	URL          string        `json:"url"`
}

// VideoCollection keeps the order in which the uploads listing returned the videos.
type VideoCollection []VideoRecord

// WatchURL returns the public watch page of a video.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// --- MCP tool input/output ---

// ChannelAnalyzeInput is the input for the channel_analyze tool.
type ChannelAnalyzeInput struct {
	Channel   string `json:"channel" jsonschema:"YouTube channel handle (e.g. @channelname) or channel link (https://www.youtube.com/@channelname)"`
	Narrative bool   `json:"narrative,omitempty" jsonschema:"Also generate a short LLM-written summary of the channel (default: false)"`
}

// ChannelLookupInput is the input for the channel_lookup tool.
type ChannelLookupInput struct {
	Channel string `json:"channel" jsonschema:"YouTube channel handle (e.g. @channelname) or channel link"`
}

// ChannelLookupOutput is the structured output of channel_lookup.
type ChannelLookupOutput struct {
	Input     string `json:"input"`
	Handle    string `json:"handle"`
	ChannelID string `json:"channel_id"`
}
