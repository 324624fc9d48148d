// Package fetch retrieves a JSON array document from a source URL (spec
// §4.1): HTTPS, a configurable timeout, and classified failures. The
// fetcher never retries; that is the coordinator's concern.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorKind classifies a fetch failure per spec §4.1/§7.
type ErrorKind string

const (
	ErrorKindHTTP      ErrorKind = "http_error"
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindTransport ErrorKind = "transport_error"
	ErrorKindJSONParse ErrorKind = "json_parse_error"
	ErrorKindShape     ErrorKind = "shape_error"
)

// Error wraps a classified fetch failure.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch: %s (status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves a JSON array document over HTTPS.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// New constructs a Fetcher with the given per-request timeout (spec §4.1
// default 30s, configured via FETCH_TIMEOUT_SECONDS).
func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Fetch retrieves sourceURL and decodes its body as a JSON array of objects.
// single-flight per URL within a run is the coordinator's responsibility
// (it processes one source at a time, spec §5); this method itself performs
// one fetch per call.
func (f *Fetcher) Fetch(ctx context.Context, sourceURL string) ([]map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, &Error{Kind: ErrorKindTransport, Err: fmt.Errorf("build request: %w", err)}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &Error{Kind: ErrorKindTimeout, Err: err}
		}
		return nil, &Error{Kind: ErrorKindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: ErrorKindHTTP, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &Error{Kind: ErrorKindJSONParse, Err: err}
	}

	arr, ok := raw.([]any)
	if !ok {
		return nil, &Error{Kind: ErrorKindShape, Err: fmt.Errorf("root element is not a JSON array")}
	}

	out := make([]map[string]any, 0, len(arr))
	for i, el := range arr {
		obj, ok := el.(map[string]any)
		if !ok {
			return nil, &Error{Kind: ErrorKindShape, Err: fmt.Errorf("element %d is not an object", i)}
		}
		out = append(out, obj)
	}
	return out, nil
}
