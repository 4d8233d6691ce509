package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
	"github.com/anatolykoptev/go_ytstats/internal/engine/stats"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// pageData feeds templates/page.tmpl. Either Error or Analysis is set, never both.
type pageData struct {
	Input            string
	Narrative        bool
	NarrativeEnabled bool
	Error            string
	Analysis         *stats.Analysis
}

// Chart area of the views-over-time polyline.
const (
	chartWidth  = 1000
	chartHeight = 200
)

var templateFuncs = template.FuncMap{
	"count":      engine.FormatCount,
	"int64":      func(f float64) int64 { return int64(f) },
	"inc":        func(i int) int { return i + 1 },
	"date":       formatDate,
	"pct":        pct,
	"maxUploads": maxUploads,
	"sparkline":  sparkline,
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl"))
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 02, 2006")
}

func pct(n, total int) int {
	if total <= 0 {
		return 0
	}
	return n * 100 / total
}

func maxUploads(buckets []stats.Bucket) int {
	m := 0
	for _, b := range buckets {
		m = max(m, b.Uploads)
	}
	return m
}

// sparkline maps chronological view counts onto the chart's polyline coordinates.
func sparkline(points []stats.PerformancePoint) string {
	if len(points) == 0 {
		return ""
	}
	var peak int64
	for _, p := range points {
		peak = max(peak, p.Views)
	}
	var sb strings.Builder
	for i, p := range points {
		x := 0.0
		if len(points) > 1 {
			x = float64(i) * chartWidth / float64(len(points)-1)
		}
		y := float64(chartHeight)
		if peak > 0 {
			y = chartHeight - float64(p.Views)*chartHeight/float64(peak)
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
	}
	return sb.String()
}
