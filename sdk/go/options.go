package launchsdk

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL sets the service root and API version, e.g. "https://launchlibrary.net" and "1.4".
func WithBaseURL(baseURL, version string) Option {
	return func(c *Client) error {
		baseURL = strings.TrimRight(baseURL, "/")
		if baseURL == "" {
			return errors.New("base url required")
		}
		if version == "" {
			c.root = baseURL
			return nil
		}
		c.root = baseURL + "/" + strings.Trim(version, "/")
		return nil
	}
}

// WithFetcher replaces the transport.
func WithFetcher(f Fetcher) Option {
	return func(c *Client) error {
		if f == nil {
			return errors.New("nil fetcher")
		}
		c.fetcher = f
		return nil
	}
}

// WithHTTPClient sets the http.Client used by the default HTTPFetcher.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.http.HTTPClient = hc
		return nil
	}
}

// WithTimeout sets the per-request timeout of the default HTTPFetcher.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d < 0 {
			return fmt.Errorf("negative timeout %s", d)
		}
		c.http.Timeout = d
		return nil
	}
}

// WithUserAgent sets the User-Agent of the default HTTPFetcher.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		c.http.UserAgent = ua
		return nil
	}
}

// WithLogger sets the logger. A nil logger keeps the silent default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger != nil {
			c.logger = logger
		}
		return nil
	}
}

// WithConcurrency bounds how many launches of one response are parsed at once.
// Secondary lookups of different launches then overlap; output order is unchanged.
func WithConcurrency(n int) Option {
	return func(c *Client) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		c.concurrency = n
		return nil
	}
}

// WithCache memoizes status code and LSP reference lookups in LRU caches of the
// given size. Zero disables caching, which is the default.
func WithCache(size int) Option {
	return func(c *Client) error {
		if size < 0 {
			return fmt.Errorf("cache size must not be negative, got %d", size)
		}
		if size == 0 {
			c.cache = nil
			return nil
		}
		cache, err := newLookupCache(size)
		if err != nil {
			return err
		}
		c.cache = cache
		return nil
	}
}
