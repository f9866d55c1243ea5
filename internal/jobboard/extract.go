package jobboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultLocation is the sentinel used when a listing carries no location.
const DefaultLocation = "Global"

// Extraction errors that are fatal to a single record.
var (
	ErrNoTitleAnchor = errors.New("listing has no title anchor")
	ErrNoJobURL      = errors.New("listing anchor has no href")
)

// Selectors names the markers a site uses inside one listing node. Empty
// fields fall back to the defaults below.
type Selectors struct {
	// Listing selects one job posting node on the index page.
	Listing string `mapstructure:"listing"`
	// Location is the class of the span holding the job location.
	Location string `mapstructure:"location"`
	// PostDate is the class of the div holding the posting date.
	PostDate string `mapstructure:"post_date"`
	// Subtitle selects the pipe-delimited metadata elements.
	Subtitle string `mapstructure:"subtitle"`
}

func (s Selectors) withDefaults() Selectors {
	if s.Listing == "" {
		s.Listing = "div.job-listing"
	}
	if s.Location == "" {
		s.Location = "location"
	}
	if s.PostDate == "" {
		s.PostDate = "posting-date"
	}
	if s.Subtitle == "" {
		s.Subtitle = ".subtitle"
	}
	return s
}

// Listing is the partial job record extracted from one listing node, before
// the long-form description is attached.
type Listing struct {
	Title          string
	URL            string
	Location       string
	PostDate       string
	Category       string
	EmploymentType string
}

// ListingExtractor turns one parsed listing node into a Listing using
// field-specific fallback rules. Title and URL are required; every other
// field substitutes a default on absence.
type ListingExtractor struct {
	baseURL   string
	selectors Selectors
}

// NewListingExtractor builds an extractor for one site. baseURL is the fixed
// site base that relative hrefs are appended to.
func NewListingExtractor(baseURL string, selectors Selectors) *ListingExtractor {
	return &ListingExtractor{
		baseURL:   baseURL,
		selectors: selectors.withDefaults(),
	}
}

// Extract parses a single listing node. currentDate is the crawl's
// current-date string, substituted when the node carries no posting date.
func (e *ListingExtractor) Extract(node *goquery.Selection, currentDate string) (Listing, error) {
	anchor := node.Find("a").First()
	if anchor.Length() == 0 {
		return Listing{}, ErrNoTitleAnchor
	}
	title := strings.TrimSpace(anchor.Text())
	if title == "" {
		return Listing{}, fmt.Errorf("%w: anchor text is empty", ErrNoTitleAnchor)
	}
	href, ok := anchor.Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return Listing{}, ErrNoJobURL
	}

	location, ok := e.location(node)
	if !ok {
		location = DefaultLocation
	}
	postDate, ok := e.postDate(node)
	if !ok {
		postDate = currentDate
	}

	listing := Listing{
		Title:    title,
		URL:      e.baseURL + href,
		Location: location,
		PostDate: postDate,
	}
	listing.Category, listing.EmploymentType = e.Metadata(node)
	return listing, nil
}

// location returns the cleaned location text and whether it was present.
func (e *ListingExtractor) location(node *goquery.Selection) (string, bool) {
	span := node.Find("span." + e.selectors.Location).First()
	if span.Length() == 0 {
		return "", false
	}
	loc := Clean(span.Text(), "%")
	loc = strings.ReplaceAll(loc, "'", `"`)
	if loc == "" {
		return "", false
	}
	return loc, true
}

// postDate returns the posting-date text and whether it was present.
func (e *ListingExtractor) postDate(node *goquery.Selection) (string, bool) {
	div := node.Find("div." + e.selectors.PostDate).First()
	if div.Length() == 0 {
		return "", false
	}
	date := Clean(div.Text())
	if date == "" {
		return "", false
	}
	return date, true
}

// Metadata scans the node's subtitle elements for a pipe-delimited
// "category | something | employment type" triple. The first subtitle whose
// split yields at least three parts wins and scanning stops; the middle
// part is ignored. When no subtitle qualifies both values are empty.
func (e *ListingExtractor) Metadata(node *goquery.Selection) (category, employmentType string) {
	node.Find(e.selectors.Subtitle).EachWithBreak(func(_ int, subtitle *goquery.Selection) bool {
		parts := strings.Split(strings.TrimSpace(subtitle.Text()), "|")
		if len(parts) < 3 {
			return true
		}
		category = strings.TrimSpace(parts[0])
		employmentType = strings.TrimSpace(parts[2])
		return false
	})
	return category, employmentType
}
