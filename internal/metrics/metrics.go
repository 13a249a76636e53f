// Package metrics exposes Prometheus collectors for a crawl run.
package metrics

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registry = prometheus.NewRegistry()

	crawlerPagesTotal          *prometheus.CounterVec
	crawlerBytesTotal          *prometheus.CounterVec
	crawlerEmailsTotal         *prometheus.CounterVec
	crawlerRobotsDeniedTotal   *prometheus.CounterVec
	crawlerFetchDurationSecond *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		factory := promauto.With(registry)

		crawlerPagesTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_pages_total",
				Help: "Total number of pages fetched, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		crawlerBytesTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_bytes_total",
				Help: "Total number of bytes fetched, labeled by site.",
			},
			[]string{"site"},
		)

		crawlerEmailsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_emails_total",
				Help: "Total number of distinct per-page email addresses found, labeled by site.",
			},
			[]string{"site"},
		)

		crawlerRobotsDeniedTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_robots_denied_total",
				Help: "Total number of frontier URLs skipped because robots.txt disallowed them.",
			},
			[]string{"site"},
		)

		crawlerFetchDurationSecond = factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawler_fetch_duration_seconds",
				Help:    "Histogram of page fetch latencies, labeled by site.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"site"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// ObservePage records one fetch attempt and the bytes it returned.
func ObservePage(site string, status string, bytesFetched int, duration time.Duration) {
	Init()
	sanitizedSite := SanitizeSite(site)
	crawlerPagesTotal.WithLabelValues(sanitizedSite, status).Inc()
	if bytesFetched > 0 {
		crawlerBytesTotal.WithLabelValues(sanitizedSite).Add(float64(bytesFetched))
	}
	if duration > 0 {
		crawlerFetchDurationSecond.WithLabelValues(sanitizedSite).Observe(duration.Seconds())
	}
}

// ObserveEmails adds the number of addresses recorded for a page.
func ObserveEmails(site string, count int) {
	Init()
	if count <= 0 {
		return
	}
	crawlerEmailsTotal.WithLabelValues(SanitizeSite(site)).Add(float64(count))
}

// ObserveRobotsDenied counts a URL skipped by robots.txt.
func ObserveRobotsDenied(site string) {
	Init()
	crawlerRobotsDeniedTotal.WithLabelValues(SanitizeSite(site)).Inc()
}

// Gatherer exposes the package registry, mainly for tests.
func Gatherer() prometheus.Gatherer {
	return registry
}

// WriteTextfile dumps the current metric values in the text exposition format,
// suitable for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	Init()
	if err := prometheus.WriteToTextfile(path, registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}
