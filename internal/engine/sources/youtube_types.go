package sources

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

// YouTube Data API v3 payloads. Only the fields the analysis reads are declared.

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytThumbnails struct {
	Default ytThumbnail `json:"default"`
	Medium  ytThumbnail `json:"medium"`
	High    ytThumbnail `json:"high"`
}

// best picks the highest resolution available, or "" when the item has none.
func (t ytThumbnails) best() string {
	switch {
	case t.High.URL != "":
		return t.High.URL
	case t.Medium.URL != "":
		return t.Medium.URL
	}
	return t.Default.URL
}

type ytChannelsResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string       `json:"title"`
			Description string       `json:"description"`
			PublishedAt string       `json:"publishedAt"`
			Thumbnails  ytThumbnails `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount             string `json:"viewCount"`
			SubscriberCount       string `json:"subscriberCount"`
			HiddenSubscriberCount bool   `json:"hiddenSubscriberCount"`
			VideoCount            string `json:"videoCount"`
		} `json:"statistics"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type ytPlaylistItemsResp struct {
	NextPageToken string `json:"nextPageToken"`
	PageInfo      struct {
		TotalResults int `json:"totalResults"`
	} `json:"pageInfo"`
	Items []ytPlaylistItem `json:"items"`
}

type ytPlaylistItem struct {
	Snippet struct {
		Title       string       `json:"title"`
		PublishedAt string       `json:"publishedAt"`
		Thumbnails  ytThumbnails `json:"thumbnails"`
		ResourceID  struct {
			VideoID string `json:"videoId"`
		} `json:"resourceId"`
	} `json:"snippet"`
	ContentDetails struct {
		VideoID          string `json:"videoId"`
		VideoPublishedAt string `json:"videoPublishedAt"`
	} `json:"contentDetails"`
}

// videoID prefers contentDetails, which the API fills for every item kind.
func (it ytPlaylistItem) videoID() string {
	if it.ContentDetails.VideoID != "" {
		return it.ContentDetails.VideoID
	}
	return it.Snippet.ResourceID.VideoID
}

// publishedAt is the video's own publish time; snippet.publishedAt is when it joined the playlist.
func (it ytPlaylistItem) publishedAt() string {
	if it.ContentDetails.VideoPublishedAt != "" {
		return it.ContentDetails.VideoPublishedAt
	}
	return it.Snippet.PublishedAt
}

type ytVideosResp struct {
	Items []ytVideo `json:"items"`
}

type ytVideo struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string       `json:"title"`
		PublishedAt string       `json:"publishedAt"`
		Thumbnails  ytThumbnails `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

// ytErrorBody is the error envelope returned with non-200 responses.
type ytErrorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// apiErrorReason extracts the first error reason ("quotaExceeded", "playlistNotFound", ...)
// from a failed Data API call. The body may be truncated, so a substring match is the fallback.
func apiErrorReason(err error) string {
	var body string
	if se := httpStatusErr(err); se != nil {
		body = se.Body
	}
	if body == "" {
		return ""
	}
	var eb ytErrorBody
	if json.Unmarshal([]byte(body), &eb) == nil && len(eb.Error.Errors) > 0 {
		return eb.Error.Errors[0].Reason
	}
	const marker = `"reason": "`
	if i := strings.Index(body, marker); i >= 0 {
		rest := body[i+len(marker):]
		if j := strings.IndexByte(rest, '"'); j >= 0 {
			return rest[:j]
		}
	}
	return ""
}

// ParseCount converts a Data API count string. Absent counts are zero; negative ones are rejected.
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, engine.Errorf(engine.KindParse, "count", "non-numeric count %q", s)
	}
	if n < 0 {
		return 0, engine.Errorf(engine.KindParse, "count", "negative count %q", s)
	}
	return n, nil
}
