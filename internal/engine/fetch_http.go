package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes caps a single upstream JSON body.
const maxResponseBytes = 8 << 20

// GetJSON performs a GET with retry logic and decodes the JSON body into out.
// op names the upstream call in errors and metrics ("lookup", "channels", ...).
// Failures come back as *Error: network/timeouts as KindNetwork, 4xx as
// KindUpstreamQuota, undecodable bodies as KindMalformedResponse.
func GetJSON(ctx context.Context, op, rawURL string, headers map[string]string, out any) error {
	body, err := RetryDo(ctx, cfg.Retry, func() ([]byte, error) {
		return fetchOnce(ctx, rawURL, headers)
	})
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			urlErr.URL = RedactURL(urlErr.URL)
		}
		kind := classifyFetchError(err)
		IncrAPIError(op, kind)
		return NewError(kind, op, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		IncrAPIError(op, KindMalformedResponse)
		return NewError(KindMalformedResponse, op, fmt.Errorf("decode: %w", err))
	}
	return nil
}

// fetchOnce issues a single attempt bounded by FetchTimeout.
func fetchOnce(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgentBot)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func classifyFetchError(err error) Kind {
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return KindUpstreamQuota
	}
	return KindNetwork
}

// StatusCode returns the upstream HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPStatusError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
