package jobboard

import (
	"bytes"
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/metrics"
)

// ListingPage is the parsed index page for one company.
type ListingPage struct {
	URL          string
	Body         []byte
	Nodes        []*goquery.Selection
	UsedHeadless bool
}

// ListingLoader fetches a company's canonical listing page and selects its
// listing nodes. When the plain fetch yields no nodes and the page looks
// JS-rendered, the loader promotes to a headless fetch.
type ListingLoader struct {
	fetcher   Fetcher
	headless  Fetcher
	detector  HeadlessDetector
	selectors Selectors
	logger    *zap.Logger
}

// NewListingLoader builds a loader. headless and detector may be nil, which
// disables promotion.
func NewListingLoader(
	fetcher Fetcher,
	headless Fetcher,
	detector HeadlessDetector,
	selectors Selectors,
	logger *zap.Logger,
) *ListingLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingLoader{
		fetcher:   fetcher,
		headless:  headless,
		detector:  detector,
		selectors: selectors.withDefaults(),
		logger:    logger,
	}
}

// Load fetches the canonical listing URL for company and returns the parsed
// page with its listing nodes.
func (l *ListingLoader) Load(ctx context.Context, company Company) (*ListingPage, error) {
	listingURL := CanonicalListingURL(company.ListingURL)
	page, err := l.fetcher.Fetch(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetch listing page: %w", err)
	}

	result, err := l.parse(listingURL, page.Body, false)
	if err != nil {
		return nil, err
	}
	if len(result.Nodes) > 0 || !l.shouldPromote(page) {
		return result, nil
	}

	l.logger.Info("promoting listing fetch to headless",
		zap.Int64("company_id", company.ID),
		zap.String("url", listingURL),
	)
	metrics.ObserveHeadlessPromotion()
	rendered, err := l.headless.Fetch(ctx, listingURL)
	if err != nil {
		// Keep the plain result; an empty node set is the caller's signal.
		l.logger.Warn("headless listing fetch failed", zap.String("url", listingURL), zap.Error(err))
		return result, nil
	}
	return l.parse(listingURL, rendered.Body, true)
}

func (l *ListingLoader) parse(listingURL string, body []byte, usedHeadless bool) (*ListingPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing page: %w", err)
	}
	var nodes []*goquery.Selection
	doc.Find(l.selectors.Listing).Each(func(_ int, node *goquery.Selection) {
		nodes = append(nodes, node)
	})
	return &ListingPage{
		URL:          listingURL,
		Body:         body,
		Nodes:        nodes,
		UsedHeadless: usedHeadless,
	}, nil
}

func (l *ListingLoader) shouldPromote(page Page) bool {
	return l.headless != nil && l.detector != nil && l.detector.ShouldPromote(page)
}
