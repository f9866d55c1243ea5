package jobboard

import (
	"context"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/metrics"
)

// Processor turns one listing node into a persisted JobRecord and
// classifies the attempt as a success or a failure.
type Processor struct {
	extractor    *ListingExtractor
	descriptions *DescriptionFetcher
	store        JobStore
	logger       *zap.Logger
}

// NewProcessor constructs a Processor.
func NewProcessor(
	extractor *ListingExtractor,
	descriptions *DescriptionFetcher,
	store JobStore,
	logger *zap.Logger,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		extractor:    extractor,
		descriptions: descriptions,
		store:        store,
		logger:       logger,
	}
}

// Process extracts, enriches, and persists a single listing node. Exactly
// one of Succeeded/Err is set on the returned Outcome. Extraction and
// persistence failures drop the record and carry the full error text;
// description fetch failures only leave the description empty.
func (p *Processor) Process(
	ctx context.Context,
	node *goquery.Selection,
	company Company,
	outputTable string,
	currentDate string,
) Outcome {
	listing, err := p.extractor.Extract(node, currentDate)
	if err != nil {
		p.logger.Warn("listing extraction failed",
			zap.Int64("company_id", company.ID),
			zap.Error(err),
		)
		metrics.ObserveRecord(company.ListingURL, "extract_failed")
		return Outcome{Succeeded: false, Err: err.Error()}
	}

	record := JobRecord{
		Title:          listing.Title,
		URL:            listing.URL,
		Location:       listing.Location,
		PostDate:       listing.PostDate,
		Description:    p.descriptions.Fetch(ctx, listing.URL),
		Category:       listing.Category,
		EmploymentType: listing.EmploymentType,
		OutputTable:    outputTable,
	}

	if err := p.store.InsertJob(ctx, company.ID, record); err != nil {
		p.logger.Warn("job insert failed",
			zap.Int64("company_id", company.ID),
			zap.String("url", record.URL),
			zap.Error(err),
		)
		metrics.ObserveRecord(company.ListingURL, "persist_failed")
		return Outcome{JobURL: record.URL, Succeeded: false, Err: err.Error()}
	}

	metrics.ObserveRecord(company.ListingURL, "persisted")
	return Outcome{JobURL: record.URL, Succeeded: true}
}
