// Package collyfetch implements jobboard.Fetcher using gocolly.
package collyfetch

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jobwire/boardcrawler/internal/jobboard"
)

// Config controls collector behavior.
type Config struct {
	// UserAgent is sent on every request. Job boards commonly reject
	// non-browser agents, so this defaults to a browser-like string.
	UserAgent string
	Timeout   time.Duration
}

// DefaultUserAgent is the browser-like identification header used when none
// is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Fetcher implements jobboard.Fetcher using the Colly collector.
type Fetcher struct {
	cfg           Config
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	c := colly.NewCollector(
		colly.Async(false),
		colly.UserAgent(cfg.UserAgent),
	)
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &Fetcher{
		cfg:           cfg,
		baseCollector: c,
	}
}

// Fetch executes a single HTTP GET using Colly.
func (f *Fetcher) Fetch(ctx context.Context, url string) (jobboard.Page, error) {
	var (
		result   jobboard.Page
		fetchErr error
	)

	collector := f.baseCollector.Clone()
	collector.SetRequestTimeout(f.cfg.Timeout)

	collector.OnResponse(func(r *colly.Response) {
		result = jobboard.Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return jobboard.Page{}, fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return jobboard.Page{}, fmt.Errorf("colly visit failed: %w", err)
		}
		if fetchErr != nil {
			return jobboard.Page{}, fmt.Errorf("colly response failed: %w", fetchErr)
		}
		return result, nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// Several target boards serve certificates that fail verification;
		// verification is disabled as a site-compatibility accommodation.
		// TODO: gate this per company once certificate inventory is known.
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
