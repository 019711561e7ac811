// Package metrics instruments upstream Launch Library fetches with Prometheus.
package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	launchsdk "launchline/sdk/go"
)

// Collector owns a private registry with the upstream fetch metrics.
type Collector struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New builds a Collector with its metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "launchline_upstream_requests_total",
			Help: "Upstream Launch Library requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "launchline_upstream_request_duration_seconds",
			Help:    "Upstream Launch Library request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	c.registry.MustRegister(c.requests, c.duration)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Instrument wraps next so every fetch is counted and timed.
func (c *Collector) Instrument(next launchsdk.Fetcher) launchsdk.Fetcher {
	return launchsdk.FetcherFunc(func(ctx context.Context, rawURL string) (json.RawMessage, error) {
		endpoint := Endpoint(rawURL)
		start := time.Now()
		doc, err := next.FetchJSON(ctx, rawURL)
		c.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.requests.WithLabelValues(endpoint, outcome).Inc()
		return doc, err
	})
}

// Endpoint classifies an upstream URL as launch, launchstatus, lsp or other.
func Endpoint(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "other"
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		switch segments[i] {
		case "launch", "launchstatus", "lsp":
			return segments[i]
		}
	}
	return "other"
}
