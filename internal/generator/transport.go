package generator

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds a whole generation call when the config sets none.
const DefaultTimeout = 120 * time.Second

// HTTPClient builds the client used by providers. The timeout covers the full
// streamed response.
func HTTPClient(timeoutSecs int) *http.Client {
	timeout := time.Duration(timeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// OpenEventStream sends req and returns the response body once the provider
// has accepted the call. Non-200 statuses become errors; 429 becomes a
// RateLimitError.
func OpenEventStream(client *http.Client, req *http.Request, provider string) (io.ReadCloser, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", provider, err)
	}
	if resp.StatusCode == http.StatusOK {
		return resp.Body, nil
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	baseErr := fmt.Errorf("%s API error (status %d): %s", provider, resp.StatusCode, string(body))
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return nil, NewRateLimitError(provider, baseErr, retryAfter)
	}
	return nil, baseErr
}
