package jobboard

import (
	"context"
	"time"
)

// Fetcher retrieves a URL and returns the response body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// JobStore persists job records.
type JobStore interface {
	InsertJob(ctx context.Context, companyID int64, record JobRecord) error
}

// DescriptionStore exposes the rows the description backfill pass works on.
type DescriptionStore interface {
	JobsMissingDescription(ctx context.Context, companyID int64, outputTable string) ([]string, error)
	SetDescription(ctx context.Context, companyID int64, outputTable string, jobURL string, description string) error
}

// Backfiller runs the post-pass that fills descriptions for previously
// persisted records under a company/output-table pair.
type Backfiller interface {
	UpdateMissingDescriptions(ctx context.Context, companyID int64, outputTable string) error
}

// StatusStore records crawl reports and recalls the most recent one for a
// company/output-table pair.
type StatusStore interface {
	SaveCrawlResult(ctx context.Context, companyID int64, outputTable string, result CrawlResult) error
	LatestStatus(ctx context.Context, companyID int64, outputTable string) (StatusRecord, error)
}

// CompanyProvider returns the companies eligible for crawling.
type CompanyProvider interface {
	Companies(ctx context.Context, companyID int64, excludedIDs []int64, resource string) ([]Company, error)
}

// Publisher pushes crawl-completion events to Pub/Sub (or similar).
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
}

// Archiver stores raw listing-page HTML and returns a URI.
type Archiver interface {
	PutObject(ctx context.Context, path string, contentType string, data []byte) (string, error)
}

// HeadlessDetector decides whether a headless re-fetch is warranted.
type HeadlessDetector interface {
	ShouldPromote(page Page) bool
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
