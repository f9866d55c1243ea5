package jobboard

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/metrics"
)

// descriptionID is the id of the element holding the long-form description
// on a job detail page.
const descriptionID = "js-job-description"

// descriptionStrip lists the characters removed from extracted description
// text after whitespace collapsing.
var descriptionStrip = []string{"\n", "\t", "\r", "\u00a0", `"`}

// DescriptionFetcher performs the secondary fetch for a job's long-form
// description. It never fails: any error yields an empty description.
type DescriptionFetcher struct {
	fetcher Fetcher
	timeout time.Duration
	logger  *zap.Logger
}

// NewDescriptionFetcher builds a DescriptionFetcher. timeout bounds each
// fetch; zero falls back to 15 seconds.
func NewDescriptionFetcher(fetcher Fetcher, timeout time.Duration, logger *zap.Logger) *DescriptionFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DescriptionFetcher{
		fetcher: fetcher,
		timeout: timeout,
		logger:  logger,
	}
}

// Fetch retrieves jobURL and extracts the cleaned description text. On any
// failure (network error, timeout, parse error, missing element) it returns
// the empty string; a missing description is never fatal to the record.
func (d *DescriptionFetcher) Fetch(ctx context.Context, jobURL string) string {
	if d.fetcher == nil || jobURL == "" {
		return ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	page, err := d.fetcher.Fetch(fetchCtx, jobURL)
	metrics.ObserveDescriptionFetch(time.Since(start))
	if err != nil {
		d.logger.Debug("description fetch failed", zap.String("url", jobURL), zap.Error(err))
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		d.logger.Debug("description parse failed", zap.String("url", jobURL), zap.Error(err))
		return ""
	}

	section := doc.Find("#" + descriptionID).First()
	if section.Length() == 0 {
		d.logger.Debug("description element missing", zap.String("url", jobURL))
		return ""
	}

	text := strings.Join(strings.Fields(section.Text()), " ")
	return Clean(text, descriptionStrip...)
}
