package app

import (
	"fmt"
	"log/slog"
	"time"

	"launchline/internal/config"
	"launchline/internal/metrics"
	launchsdk "launchline/sdk/go"
)

// Overrides carries command-line and environment values that win over the config file.
// Zero values leave the file setting untouched.
type Overrides struct {
	APIRoot     string
	APIVersion  string
	Timeout     time.Duration
	Concurrency int
	CacheSize   int
}

// ResolveConfig loads launchline.yml from dir (defaults when absent) and applies overrides.
func ResolveConfig(dir string, o Overrides) (*config.Config, error) {
	cfg, err := config.LoadOptional(dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.APIRoot != "" {
		cfg.API.Root = o.APIRoot
	}
	if o.APIVersion != "" {
		cfg.API.Version = o.APIVersion
	}
	if o.Timeout > 0 {
		cfg.API.Timeout = o.Timeout
	}
	if o.Concurrency > 0 {
		cfg.Client.Concurrency = o.Concurrency
	}
	if o.CacheSize > 0 {
		cfg.Client.CacheSize = o.CacheSize
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewClient builds an SDK client from cfg. When collector is non-nil every upstream
// fetch is recorded in it.
func NewClient(cfg *config.Config, logger *slog.Logger, collector *metrics.Collector) (*launchsdk.Client, error) {
	opts := []launchsdk.Option{
		launchsdk.WithBaseURL(cfg.API.Root, cfg.API.Version),
		launchsdk.WithLogger(logger),
		launchsdk.WithConcurrency(cfg.Client.Concurrency),
		launchsdk.WithCache(cfg.Client.CacheSize),
	}
	if collector != nil {
		fetcher := &launchsdk.HTTPFetcher{
			Timeout:   cfg.API.Timeout,
			UserAgent: cfg.API.UserAgent,
			Logger:    logger,
		}
		opts = append(opts, launchsdk.WithFetcher(collector.Instrument(fetcher)))
	} else {
		opts = append(opts, launchsdk.WithTimeout(cfg.API.Timeout), launchsdk.WithUserAgent(cfg.API.UserAgent))
	}
	return launchsdk.New(opts...)
}
