package jobboard

// CrawlStatus represents the overall outcome of one crawl invocation.
type CrawlStatus string

// Crawl status values persisted with the crawl report.
const (
	CrawlStatusSuccess CrawlStatus = "success"
	CrawlStatusFailed  CrawlStatus = "failed"
)

// Company identifies the company/site being crawled. It is supplied by the
// caller and read-only to the pipeline.
type Company struct {
	ID int64 `json:"id"`

	// ListingURL is the raw job-listing URL. It may carry a feed suffix
	// (/feed.atom, /feed.json) that is stripped before use.
	ListingURL string `json:"listing_url"`

	// Resource names the extraction pattern used for this site.
	Resource string `json:"resource"`
}

// JobRecord is one job posting to persist. Title and URL must be non-empty
// for the record to be valid; every other field degrades to a default rather
// than aborting the record.
type JobRecord struct {
	Title          string `json:"title"`
	URL            string `json:"url"`
	Location       string `json:"location"`
	PostDate       string `json:"post_date"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	EmploymentType string `json:"employment_type"`
	OutputTable    string `json:"output_table"`
}

// Valid reports whether the record satisfies the persistence invariant.
func (r JobRecord) Valid() bool {
	return r.Title != "" && r.URL != ""
}

// StatusRecord carries the counters of a previously recorded crawl. It seeds
// the result when a run only backfills descriptions.
type StatusRecord struct {
	SuccessCount int `json:"success_count"`
	FailedCount  int `json:"failed_count"`
}

// CrawlResult is the report returned for one crawl invocation. It is built
// incrementally during the crawl and immutable after return.
type CrawlResult struct {
	Status       CrawlStatus `json:"status"`
	SuccessCount int         `json:"success_count"`
	FailedCount  int         `json:"failed_count"`
	ErrorLog     string      `json:"error_log,omitempty"`
}

// Outcome is the classification of one processed listing node. Exactly one
// of Succeeded/Err applies: a succeeded outcome carries no error text and a
// failed outcome always carries one.
type Outcome struct {
	JobURL    string
	Succeeded bool
	Err       string
}

// Page is the response returned by a Fetcher implementation.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
}
