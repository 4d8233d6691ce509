package engine

import (
	"net/url"

	"github.com/anatolykoptev/go-kit/strutil"
	"github.com/dustin/go-humanize"
)

// User-Agent sent to the upstream APIs.
const UserAgentBot = "GoYTStats/1.0"

// secretParams are query parameters scrubbed from URLs before they reach logs or errors.
var secretParams = []string{"key", "api_key", "apikey"}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// TruncateAtWord truncates a string to maxLen runes at a word boundary.
func TruncateAtWord(s string, maxLen int) string {
	return strutil.TruncateAtWord(s, maxLen)
}

// FormatCount renders n with thousands separators (1234567 → "1,234,567").
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// RedactURL replaces API keys in rawURL's query with a placeholder.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()
	return u.String()
}
