package launchsdk

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Fetcher retrieves a JSON document. Implementations own retry and timeout policy.
type Fetcher interface {
	FetchJSON(ctx context.Context, url string) (json.RawMessage, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (json.RawMessage, error)

func (f FetcherFunc) FetchJSON(ctx context.Context, url string) (json.RawMessage, error) {
	return f(ctx, url)
}

// HTTPFetcher is the default Fetcher backed by net/http.
type HTTPFetcher struct {
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	Logger     *slog.Logger
}

type requestIDKey struct{}

// ContextWithRequestID attaches a request id that HTTPFetcher sends as X-Request-Id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the id set by ContextWithRequestID.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

func (f *HTTPFetcher) FetchJSON(ctx context.Context, url string) (json.RawMessage, error) {
	client := f.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: f.Timeout}
	}
	logger := f.Logger
	if logger == nil {
		logger = discardLogger
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	if id, ok := RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-Id", id)
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		logger.DebugContext(ctx, "fetch failed", "url", url, "error", err)
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	logger.DebugContext(ctx, "fetch", "url", url, "status", resp.StatusCode, "duration", time.Since(start))
	if err != nil {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, &MalformedResponseError{Path: url, Reason: "body is not valid JSON"}
	}
	return json.RawMessage(body), nil
}
