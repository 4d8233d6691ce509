package stats

import (
	"cmp"
	"slices"
	"time"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
	"github.com/anatolykoptev/go_ytstats/internal/engine/sources"
)

// TopN is the length of the top-by-views and top-by-likes lists.
const TopN = 5

const (
	createdLayout   = "January 02, 2006"
	publishedLayout = "2006-01-02"
	maxTableTitle   = 100
	maxDescription  = 300
)

// Report is the presentation-ready projection of one analysis.
// Every chart of the dashboard reads from exactly one field.
type Report struct {
	Empty       bool                 `json:"empty"`
	Overview    Overview             `json:"overview"`
	MostRecent  *engine.VideoRecord  `json:"most_recent,omitempty"`
	MostPopular *engine.VideoRecord  `json:"most_popular,omitempty"`
	TopByViews  []engine.VideoRecord `json:"top_by_views"`
	TopByLikes  []engine.VideoRecord `json:"top_by_likes"`
	Performance []PerformancePoint   `json:"performance"`
	Engagement  []EngagementPoint    `json:"engagement"`
	Monthly     []Bucket             `json:"monthly"`
	Yearly      []Bucket             `json:"yearly"`
	Table       []TableRow           `json:"table"`
	Totals      Totals               `json:"totals"`
}

// Overview is the channel header block.
type Overview struct {
	Title             string `json:"title"`
	Description       string `json:"description,omitempty"`
	ThumbnailURL      string `json:"thumbnail_url,omitempty"`
	Subscribers       int64  `json:"subscribers"`
	HiddenSubscribers bool   `json:"hidden_subscribers,omitempty"`
	Views             int64  `json:"views"`
	Videos            int64  `json:"videos"`
	CreatedOn         string `json:"created_on"`
	SubscribersText   string `json:"subscribers_text"`
	ViewsText         string `json:"views_text"`
	VideosText        string `json:"videos_text"`
}

// PerformancePoint is one sample of the views-over-time line.
type PerformancePoint struct {
	PublishedAt time.Time `json:"published_at"`
	Title       string    `json:"title"`
	Views       int64     `json:"views"`
}

// EngagementPoint is one sample of the engagement-over-time chart.
type EngagementPoint struct {
	PublishedAt time.Time `json:"published_at"`
	Title       string    `json:"title"`
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	Comments    int64     `json:"comments"`
}

// Bucket aggregates the uploads of one month ("2006-01") or year ("2006").
type Bucket struct {
	Period   string `json:"period"`
	Uploads  int    `json:"uploads"`
	Views    int64  `json:"views"`
	Likes    int64  `json:"likes"`
	Comments int64  `json:"comments"`
}

// TableRow is one line of the full video table.
type TableRow struct {
	Title     string `json:"title"`
	Duration  string `json:"duration"`
	Views     int64  `json:"views"`
	Likes     int64  `json:"likes"`
	Comments  int64  `json:"comments"`
	Published string `json:"published"`
}

// Totals sums the collection.
type Totals struct {
	Videos        int     `json:"videos"`
	Views         int64   `json:"views"`
	Likes         int64   `json:"likes"`
	Comments      int64   `json:"comments"`
	AvgViews      float64 `json:"avg_views"`
	AvgLikes      float64 `json:"avg_likes"`
	AvgComments   float64 `json:"avg_comments"`
	LikeViewRatio float64 `json:"like_view_ratio"`
}

// BuildReport projects a channel and its uploads into the dashboard views.
// It never mutates videos.
func BuildReport(ch engine.ChannelRecord, videos engine.VideoCollection) Report {
	r := Report{
		Empty:    len(videos) == 0,
		Overview: buildOverview(ch),
	}
	if r.Empty {
		return r
	}

	r.MostRecent = mostRecent(videos)
	r.MostPopular = mostPopular(videos)
	r.TopByViews = topBy(videos, func(v engine.VideoRecord) int64 { return v.ViewCount })
	r.TopByLikes = topBy(videos, func(v engine.VideoRecord) int64 { return v.LikeCount })

	chrono := chronological(videos)
	r.Performance = make([]PerformancePoint, 0, len(chrono))
	r.Engagement = make([]EngagementPoint, 0, len(chrono))
	for _, v := range chrono {
		r.Performance = append(r.Performance, PerformancePoint{PublishedAt: v.PublishedAt, Title: v.Title, Views: v.ViewCount})
		r.Engagement = append(r.Engagement, EngagementPoint{
			PublishedAt: v.PublishedAt, Title: v.Title,
			Views: v.ViewCount, Likes: v.LikeCount, Comments: v.CommentCount,
		})
	}
	r.Monthly = bucketize(chrono, "2006-01")
	r.Yearly = bucketize(chrono, "2006")

	r.Table = make([]TableRow, 0, len(videos))
	for _, v := range videos {
		row := TableRow{
			Title:    engine.TruncateRunes(v.Title, maxTableTitle, "…"),
			Duration: sources.FormatClock(v.Duration),
			Views:    v.ViewCount,
			Likes:    v.LikeCount,
			Comments: v.CommentCount,
		}
		if !v.PublishedAt.IsZero() {
			row.Published = v.PublishedAt.Format(publishedLayout)
		}
		r.Table = append(r.Table, row)
	}

	r.Totals = totals(videos)
	return r
}

func buildOverview(ch engine.ChannelRecord) Overview {
	o := Overview{
		Title:             ch.Title,
		Description:       engine.TruncateAtWord(ch.Description, maxDescription),
		ThumbnailURL:      ch.ThumbnailURL,
		Subscribers:       ch.SubscriberCount,
		HiddenSubscribers: ch.HiddenSubscriberCount,
		Views:             ch.ViewCount,
		Videos:            ch.VideoCount,
		SubscribersText:   engine.FormatCount(ch.SubscriberCount),
		ViewsText:         engine.FormatCount(ch.ViewCount),
		VideosText:        engine.FormatCount(ch.VideoCount),
	}
	if ch.HiddenSubscriberCount {
		o.SubscribersText = "hidden"
	}
	if !ch.CreatedAt.IsZero() {
		o.CreatedOn = ch.CreatedAt.Format(createdLayout)
	}
	return o
}

// mostRecent returns the latest upload; ties keep the earlier entry.
func mostRecent(videos engine.VideoCollection) *engine.VideoRecord {
	best := 0
	for i, v := range videos {
		if v.PublishedAt.After(videos[best].PublishedAt) {
			best = i
		}
	}
	v := videos[best]
	return &v
}

func mostPopular(videos engine.VideoCollection) *engine.VideoRecord {
	best := 0
	for i, v := range videos {
		if v.ViewCount > videos[best].ViewCount {
			best = i
		}
	}
	v := videos[best]
	return &v
}

// topBy returns the TopN videos by key, descending. Ties keep collection order.
func topBy(videos engine.VideoCollection, key func(engine.VideoRecord) int64) []engine.VideoRecord {
	sorted := slices.Clone([]engine.VideoRecord(videos))
	slices.SortStableFunc(sorted, func(a, b engine.VideoRecord) int {
		return cmp.Compare(key(b), key(a))
	})
	if len(sorted) > TopN {
		sorted = sorted[:TopN]
	}
	return sorted
}

// chronological returns dated videos sorted ascending by publish time.
// Undated items (private uploads without a publish time) are left out of time series.
func chronological(videos engine.VideoCollection) []engine.VideoRecord {
	out := make([]engine.VideoRecord, 0, len(videos))
	for _, v := range videos {
		if !v.PublishedAt.IsZero() {
			out = append(out, v)
		}
	}
	slices.SortStableFunc(out, func(a, b engine.VideoRecord) int {
		return a.PublishedAt.Compare(b.PublishedAt)
	})
	return out
}

// bucketize groups chronologically sorted videos by the formatted publish time.
func bucketize(chrono []engine.VideoRecord, layout string) []Bucket {
	var out []Bucket
	for _, v := range chrono {
		period := v.PublishedAt.UTC().Format(layout)
		if len(out) == 0 || out[len(out)-1].Period != period {
			out = append(out, Bucket{Period: period})
		}
		b := &out[len(out)-1]
		b.Uploads++
		b.Views += v.ViewCount
		b.Likes += v.LikeCount
		b.Comments += v.CommentCount
	}
	return out
}

func totals(videos engine.VideoCollection) Totals {
	t := Totals{Videos: len(videos)}
	for _, v := range videos {
		t.Views += v.ViewCount
		t.Likes += v.LikeCount
		t.Comments += v.CommentCount
	}
	if n := float64(len(videos)); n > 0 {
		t.AvgViews = float64(t.Views) / n
		t.AvgLikes = float64(t.Likes) / n
		t.AvgComments = float64(t.Comments) / n
	}
	if t.Views > 0 {
		t.LikeViewRatio = float64(t.Likes) / float64(t.Views)
	}
	return t
}
