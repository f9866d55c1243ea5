package jobboard

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Runner executes crawls end to end. ListingLoader, extraction, and the
// Orchestrator are all scoped to a single company and its site base URL, so
// the Runner rebuilds that chain per company and wraps it with the parts
// that outlive one crawl: the stores, the archiver, and the publisher.
type Runner struct {
	loader       *ListingLoader
	descriptions *DescriptionFetcher
	jobs         JobStore
	statuses     StatusStore
	backfiller   Backfiller
	publisher    Publisher
	archiver     Archiver
	clock        Clock
	cfg          Config
	logger       *zap.Logger
}

// NewRunner constructs a Runner. statuses, publisher, and archiver may be
// nil; the corresponding step is skipped.
func NewRunner(
	loader *ListingLoader,
	descriptions *DescriptionFetcher,
	jobs JobStore,
	statuses StatusStore,
	backfiller Backfiller,
	publisher Publisher,
	archiver Archiver,
	clock Clock,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		loader:       loader,
		descriptions: descriptions,
		jobs:         jobs,
		statuses:     statuses,
		backfiller:   backfiller,
		publisher:    publisher,
		archiver:     archiver,
		clock:        clock,
		cfg:          cfg,
		logger:       logger,
	}
}

// CrawlCompany runs one crawl for company and persists its report. In
// description-only mode the listing phase is skipped and the previously
// recorded counters carry forward; the backfill pass runs either way.
func (r *Runner) CrawlCompany(ctx context.Context, company Company, descriptionOnly bool) (CrawlResult, error) {
	base, err := SiteBase(CanonicalListingURL(company.ListingURL))
	if err != nil {
		return CrawlResult{}, fmt.Errorf("derive site base for company %d: %w", company.ID, err)
	}

	orchestrator := NewOrchestrator(
		NewProcessor(NewListingExtractor(base, r.cfg.Selectors), r.descriptions, r.jobs, r.logger),
		r.backfiller,
		r.publisher,
		r.clock,
		OrchestratorConfig{
			Workers:         r.cfg.DescriptionWorkers,
			MaxErrorLog:     r.cfg.MaxErrorLog,
			CompletionTopic: r.cfg.CompletionTopic,
		},
		r.logger,
	)

	var page *ListingPage
	prior := StatusRecord{}
	if descriptionOnly {
		prior, err = r.priorStatus(ctx, company.ID)
		if err != nil {
			return CrawlResult{}, err
		}
	} else {
		page, err = r.loader.Load(ctx, company)
		if err != nil {
			// An unreachable listing page is a whole-crawl failure, but
			// still a reportable one.
			errs := NewErrorSet()
			errs.Add(fmt.Sprintf("load listing page: %v", err))
			result := CrawlResult{
				Status:   CrawlStatusFailed,
				ErrorLog: errs.Format(r.cfg.MaxErrorLog),
			}
			r.saveResult(ctx, company.ID, result)
			return result, nil
		}
		r.archivePage(ctx, company, page)
	}

	var nodes []*goquery.Selection
	if page != nil {
		nodes = page.Nodes
	}
	result := orchestrator.Run(ctx, company, nodes, prior, r.cfg.OutputTable, descriptionOnly)
	r.saveResult(ctx, company.ID, result)
	return result, nil
}

// CrawlAll crawls every company the provider returns, continuing past
// individual failures. It reports how many companies ended in a failed
// status.
func (r *Runner) CrawlAll(
	ctx context.Context,
	provider CompanyProvider,
	companyID int64,
	excludedIDs []int64,
	resource string,
	descriptionOnly bool,
) (int, error) {
	companies, err := provider.Companies(ctx, companyID, excludedIDs, resource)
	if err != nil {
		return 0, fmt.Errorf("list companies: %w", err)
	}

	failed := 0
	for _, company := range companies {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		result, err := r.CrawlCompany(ctx, company, descriptionOnly)
		if err != nil {
			r.logger.Error("crawl failed before processing",
				zap.Int64("company_id", company.ID),
				zap.Error(err),
			)
			failed++
			continue
		}
		if result.Status == CrawlStatusFailed {
			failed++
		}
	}
	return failed, nil
}

func (r *Runner) priorStatus(ctx context.Context, companyID int64) (StatusRecord, error) {
	if r.statuses == nil {
		return StatusRecord{}, nil
	}
	prior, err := r.statuses.LatestStatus(ctx, companyID, r.cfg.OutputTable)
	if err != nil {
		return StatusRecord{}, fmt.Errorf("load prior status for company %d: %w", companyID, err)
	}
	return prior, nil
}

func (r *Runner) saveResult(ctx context.Context, companyID int64, result CrawlResult) {
	if r.statuses == nil {
		return
	}
	if err := r.statuses.SaveCrawlResult(ctx, companyID, r.cfg.OutputTable, result); err != nil {
		r.logger.Warn("saving crawl report failed",
			zap.Int64("company_id", companyID),
			zap.Error(err),
		)
	}
}

func (r *Runner) archivePage(ctx context.Context, company Company, page *ListingPage) {
	if r.archiver == nil || len(page.Body) == 0 {
		return
	}
	path := fmt.Sprintf("%s/%d/%s.html",
		r.cfg.ArchivePrefix, company.ID, r.clock.Now().UTC().Format("20060102T150405Z"))
	uri, err := r.archiver.PutObject(ctx, path, "text/html; charset=utf-8", page.Body)
	if err != nil {
		r.logger.Warn("archiving listing page failed",
			zap.Int64("company_id", company.ID),
			zap.Error(err),
		)
		return
	}
	r.logger.Debug("listing page archived",
		zap.Int64("company_id", company.ID),
		zap.String("uri", uri),
	)
}
