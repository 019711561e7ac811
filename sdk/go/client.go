package launchsdk

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Defaults used by New when no option overrides them.
const (
	// DefaultBaseURL is the public Launch Library service.
	DefaultBaseURL = "https://launchlibrary.net"
	// DefaultVersion is the API version appended to the base URL.
	DefaultVersion = "1.4"
	// DefaultUserAgent is sent by the default HTTPFetcher.
	DefaultUserAgent = "launchline"
	// DefaultTimeout bounds each request of the default HTTPFetcher.
	DefaultTimeout = 10 * time.Second
)

// Client is a read-only Launch Library API client.
type Client struct {
	root        string
	http        HTTPFetcher
	fetcher     Fetcher
	logger      *slog.Logger
	concurrency int
	cache       *lookupCache
}

// New creates a client with sane defaults.
func New(options ...Option) (*Client, error) {
	c := &Client{
		root:        DefaultBaseURL + "/" + DefaultVersion,
		http:        HTTPFetcher{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent},
		logger:      discardLogger,
		concurrency: 1,
	}
	for _, option := range options {
		if err := option(c); err != nil {
			return nil, fmt.Errorf("applying option on launch client: %w", err)
		}
	}
	if c.fetcher == nil {
		c.http.Logger = c.logger
		c.fetcher = &c.http
	}
	return c, nil
}

// Root returns the versioned API root all endpoints are resolved against.
func (c *Client) Root() string { return c.root }

// UpcomingLaunches fetches and parses the launches matching f.
func (c *Client) UpcomingLaunches(ctx context.Context, f LaunchFilter) ([]LaunchEvent, error) {
	endpoint := BuildLaunchQuery(c.root, f)
	raw, err := c.fetcher.FetchJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	launches, err := c.ParseLaunchList(ctx, raw)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "launches parsed", "url", endpoint, "count", len(launches))
	return launches, nil
}

// NextLaunch returns the next upcoming launch, or a NotFoundError when there is none.
func (c *Client) NextLaunch(ctx context.Context) (LaunchEvent, error) {
	launches, err := c.UpcomingLaunches(ctx, LaunchFilter{Count: Int(1)})
	if err != nil {
		return LaunchEvent{}, err
	}
	if len(launches) == 0 {
		return LaunchEvent{}, &NotFoundError{Query: "next launch"}
	}
	return launches[0], nil
}
