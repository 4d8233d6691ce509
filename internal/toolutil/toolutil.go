// Package toolutil holds helpers shared by the MCP tools and the dashboard.
package toolutil

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytstats/internal/engine"
)

// UserError carries the single viewer-facing message of a failed analysis
// while keeping the classified cause reachable through errors.As.
type UserError struct {
	Msg string
	Err error
}

func (e *UserError) Error() string { return e.Msg }
func (e *UserError) Unwrap() error { return e.Err }

// ToolError converts a pipeline error into a UserError. nil stays nil.
func ToolError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{Msg: engine.UserMessage(err), Err: err}
}

// HTTPStatus maps a pipeline error to the status of the JSON API.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, engine.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	switch engine.KindOf(err) {
	case engine.KindInvalidInput, engine.KindUnresolvable:
		return http.StatusBadRequest
	case engine.KindUpstreamQuota, engine.KindNetwork, engine.KindMalformedResponse, engine.KindParse:
		return http.StatusBadGateway
	case engine.KindPageLimit:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// ParseFlag reads a checkbox or query flag: "1", "true", "on", "yes" are true.
func ParseFlag(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "on", "yes":
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}
