package sources

import (
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

// channelURLPrefix is the only URL form the resolver unpacks.
const channelURLPrefix = "https://www.youtube.com/"

// handleRE matches an @handle; word characters are Unicode-aware.
var handleRE = regexp.MustCompile(`@[\p{L}\p{M}\p{N}_-]+`)

// ResolveHandle normalizes viewer input to a bare handle.
//
// Input starting with https://www.youtube.com/ yields the first @handle inside it,
// or an engine.KindUnresolvable error when the URL carries none (legacy /channel/
// and /c/ links). Any other input is returned unchanged.
func ResolveHandle(input string) (string, error) {
	if !strings.HasPrefix(input, channelURLPrefix) {
		return input, nil
	}
	if h := handleRE.FindString(input); h != "" {
		return h, nil
	}
	return "", engine.NewError(engine.KindUnresolvable, "resolve", engine.ErrUnresolvable)
}
