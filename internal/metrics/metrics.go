// Package metrics exposes Prometheus collectors for the crawl adapter.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	crawlerRecordsTotal              *prometheus.CounterVec
	crawlerCrawlsTotal               *prometheus.CounterVec
	crawlerDescriptionFetchSeconds   prometheus.Histogram
	crawlerActiveDescriptionWorkers  prometheus.Gauge
	crawlerListingPromotionsHeadless prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlerRecordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_records_total",
				Help: "Total number of listing records processed, labeled by site and outcome.",
			},
			[]string{"site", "outcome"},
		)

		crawlerCrawlsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawler_crawls_total",
				Help: "Total number of crawl invocations, labeled by status.",
			},
			[]string{"status"},
		)

		crawlerDescriptionFetchSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "crawler_description_fetch_seconds",
				Help:    "Histogram of secondary description fetch latencies.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
		)

		crawlerActiveDescriptionWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawler_active_description_workers",
				Help: "Number of workers currently processing a listing node.",
			},
		)

		crawlerListingPromotionsHeadless = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "crawler_listing_headless_promotions_total",
				Help: "Total listing-page fetches promoted to a headless browser.",
			},
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

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRecord increments the per-record counter for the given outcome.
func ObserveRecord(site string, outcome string) {
	if crawlerRecordsTotal == nil {
		return
	}
	crawlerRecordsTotal.WithLabelValues(SanitizeSite(site), outcome).Inc()
}

// ObserveCrawl increments the crawl counter for the given status.
func ObserveCrawl(status string) {
	if crawlerCrawlsTotal == nil {
		return
	}
	crawlerCrawlsTotal.WithLabelValues(status).Inc()
}

// ObserveDescriptionFetch records the duration of one description fetch.
func ObserveDescriptionFetch(duration time.Duration) {
	if crawlerDescriptionFetchSeconds == nil {
		return
	}
	crawlerDescriptionFetchSeconds.Observe(duration.Seconds())
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if crawlerActiveDescriptionWorkers == nil {
		return
	}
	crawlerActiveDescriptionWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if crawlerActiveDescriptionWorkers == nil {
		return
	}
	crawlerActiveDescriptionWorkers.Dec()
}

// ObserveHeadlessPromotion increments the headless promotion counter.
func ObserveHeadlessPromotion() {
	if crawlerListingPromotionsHeadless == nil {
		return
	}
	crawlerListingPromotionsHeadless.Inc()
}
