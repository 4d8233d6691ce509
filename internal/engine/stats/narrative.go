package stats

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

const maxPromptTitle = 80

// Narrate asks the LLM for a short summary of an analysis. No retry.
func Narrate(ctx context.Context, a *Analysis) (string, error) {
	if !engine.NarrativeEnabled() {
		return "", fmt.Errorf("narrative: %w", engine.ErrNotConfigured)
	}
	prompt := engine.BuildNarrativePrompt(a.Channel.Title, narrativeFacts(a))
	text, err := engine.CompleteJSONField(ctx, prompt, "summary")
	if err != nil {
		return "", fmt.Errorf("narrative: %w", err)
	}
	return text, nil
}

// narrativeFacts renders the overview and top videos as a plain facts block.
func narrativeFacts(a *Analysis) string {
	r := a.Report
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subscribers: %s\n", r.Overview.SubscribersText)
	fmt.Fprintf(&sb, "Total views: %s\n", r.Overview.ViewsText)
	fmt.Fprintf(&sb, "Videos: %s\n", r.Overview.VideosText)
	if r.Overview.CreatedOn != "" {
		fmt.Fprintf(&sb, "Created: %s\n", r.Overview.CreatedOn)
	}
	if r.Empty {
		sb.WriteString("The channel has no public uploads.\n")
		return sb.String()
	}

	t := r.Totals
	fmt.Fprintf(&sb, "Average views per video: %s\n", engine.FormatCount(int64(t.AvgViews)))
	fmt.Fprintf(&sb, "Average likes per video: %s\n", engine.FormatCount(int64(t.AvgLikes)))
	fmt.Fprintf(&sb, "Likes per 100 views: %.2f\n", t.LikeViewRatio*100)
	if r.MostRecent != nil {
		fmt.Fprintf(&sb, "Most recent video: %q (%s)\n",
			engine.TruncateRunes(r.MostRecent.Title, maxPromptTitle, "…"), r.MostRecent.PublishedAt.Format(publishedLayout))
	}

	sb.WriteString("Top videos by views:\n")
	for i, v := range r.TopByViews {
		fmt.Fprintf(&sb, "%d. %q: %s views, %s likes, %s comments\n", i+1,
			engine.TruncateRunes(v.Title, maxPromptTitle, "…"),
			engine.FormatCount(v.ViewCount), engine.FormatCount(v.LikeCount), engine.FormatCount(v.CommentCount))
	}

	if len(r.Yearly) > 0 {
		sb.WriteString("Uploads per year:")
		for _, b := range r.Yearly {
			fmt.Fprintf(&sb, " %s=%d", b.Period, b.Uploads)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
