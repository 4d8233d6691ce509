package engine

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindNetwork           Kind = "network"
	KindMalformedResponse Kind = "malformed_response"
	KindParse             Kind = "parse"
	KindUpstreamQuota     Kind = "upstream_quota"
	KindUnresolvable      Kind = "unresolvable"
	KindPageLimit         Kind = "page_limit"
	KindInvalidInput      Kind = "invalid_input"
)

var (
	ErrUnresolvable  = errors.New("channel URL has no @handle segment")
	ErrPageLimit     = errors.New("pagination did not terminate")
	ErrNotConfigured = errors.New("not configured")
	ErrEmptyInput    = errors.New("channel input is empty")
)

// Error is a classified failure from one of the upstream calls.
type Error struct {
	Kind Kind
	Op   string // e.g. "lookup", "channels", "playlistItems"
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a kind and operation name.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// LookupError reports a failed handle→channel-ID resolution.
func LookupError(kind Kind, err error) *Error {
	return NewError(kind, "lookup", err)
}

// DateParseError reports a timestamp that matched none of the known layouts.
func DateParseError(value string) *Error {
	return Errorf(KindParse, "date", "unrecognized timestamp %q", value)
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// UserMessage renders err as the single message shown to the viewer.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotConfigured) {
		return "The service is missing an API key for this request; ask the operator to configure it: " + err.Error()
	}
	switch KindOf(err) {
	case KindInvalidInput:
		return "Please enter a YouTube channel handle (e.g. @channelname) or channel link."
	case KindUnresolvable:
		return "That link does not contain a channel @handle. Paste a link like https://www.youtube.com/@channelname."
	case KindUpstreamQuota:
		return "The YouTube or estimator API rejected the request (quota or access): " + err.Error()
	case KindNetwork:
		return "Could not reach an upstream API: " + err.Error()
	case KindPageLimit:
		return "The video listing did not finish; the channel may be too large: " + err.Error()
	}
	return "An error occurred: " + err.Error()
}
