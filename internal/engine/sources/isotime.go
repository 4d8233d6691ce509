package sources

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/sosodev/duration"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

// timestampLayouts are tried in order; the first successful parse wins.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp variants the Data API emits.
// "2020-01-01T00:00:00Z" and "2020-01-01T00:00:00.000Z" yield the same instant.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, engine.DateParseError(s)
}

// isoDurationGrammar accepts designators once each and in order. A T must be
// followed by at least one time component.
var isoDurationGrammar = regexp.MustCompile(
	`^P(?:\d+(?:\.\d+)?Y)?(?:\d+(?:\.\d+)?M)?(?:\d+(?:\.\d+)?W)?(?:\d+(?:\.\d+)?D)?` +
		`(?:T(?:\d+(?:\.\d+)?H)?(?:\d+(?:\.\d+)?M)?(?:\d+(?:\.\d+)?S)?)?$`)

// maxDurationSeconds keeps the nanosecond total inside int64.
const maxDurationSeconds = float64(math.MaxInt64)/float64(time.Second) - 1

// ParseISODuration parses an ISO-8601 duration such as PT1H2M3S, P1DT2H or P0D.
// Year and month designators have no fixed length and are rejected.
func ParseISODuration(s string) (time.Duration, error) {
	if s == "P" || strings.HasSuffix(s, "T") || !isoDurationGrammar.MatchString(s) {
		return 0, engine.Errorf(engine.KindParse, "duration", "invalid ISO-8601 duration %q", s)
	}
	d, err := duration.Parse(s)
	if err != nil {
		return 0, engine.Errorf(engine.KindParse, "duration", "invalid ISO-8601 duration %q: %w", s, err)
	}
	if d.Years != 0 || d.Months != 0 {
		return 0, engine.Errorf(engine.KindParse, "duration", "calendar designator in %q is not supported", s)
	}
	secs := d.Weeks*7*86400 + d.Days*86400 + d.Hours*3600 + d.Minutes*60 + d.Seconds
	if secs > maxDurationSeconds {
		return 0, engine.Errorf(engine.KindParse, "duration", "duration %q out of range", s)
	}
	return d.ToTimeDuration(), nil
}

// FormatClock renders d as H:MM:SS, prefixed with "N day(s), " past 24 hours.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	days := secs / 86400
	secs %= 86400
	clock := fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	}
	return fmt.Sprintf("%d days, %s", days, clock)
}
