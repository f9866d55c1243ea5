package jobboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/metrics"
)

const defaultDescriptionWorkers = 8

// OrchestratorConfig controls Orchestrator behavior.
type OrchestratorConfig struct {
	// Workers bounds the fan-out for per-listing processing. Description
	// fetches dominate the cost, so this is effectively the number of
	// concurrent secondary fetches against the target site.
	Workers int
	// MaxErrorLog caps the formatted error log, in runes.
	MaxErrorLog int
	// CompletionTopic names the topic for crawl-completion events. Empty
	// disables publishing.
	CompletionTopic string
}

// Orchestrator drives one crawl for a company: it runs the Processor over
// every listing node, folds the outcomes into a CrawlResult, and triggers
// the description backfill pass. It never panics its caller.
type Orchestrator struct {
	processor  *Processor
	backfiller Backfiller
	publisher  Publisher
	clock      Clock
	cfg        OrchestratorConfig
	logger     *zap.Logger
}

// NewOrchestrator constructs an Orchestrator. publisher may be nil when no
// completion events are wanted.
func NewOrchestrator(
	processor *Processor,
	backfiller Backfiller,
	publisher Publisher,
	clock Clock,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultDescriptionWorkers
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		processor:  processor,
		backfiller: backfiller,
		publisher:  publisher,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes one crawl invocation. When descriptionOnly is true the
// listing phase is skipped and the counters carry forward from prior; the
// description backfill pass runs either way. Any panic inside the run is
// converted into an error-log entry and a failed status while still
// returning whatever counts accumulated.
func (o *Orchestrator) Run(
	ctx context.Context,
	company Company,
	nodes []*goquery.Selection,
	prior StatusRecord,
	outputTable string,
	descriptionOnly bool,
) (result CrawlResult) {
	start := o.clock.Now()
	currentDate := start.Format("2006-01-02")
	logger := o.logger.With(
		zap.Int64("company_id", company.ID),
		zap.String("listing_url", CanonicalListingURL(company.ListingURL)),
	)

	var outcomes []Outcome
	defer func() {
		if r := recover(); r != nil {
			logger.Error("crawl aborted", zap.Any("panic", r))
			errs := NewErrorSet()
			for _, out := range outcomes {
				if !out.Succeeded {
					errs.Add(out.Err)
				}
			}
			errs.Add(fmt.Sprintf("crawl aborted: %v", r))
			result = Aggregate(outcomes, 0)
			result.Status = CrawlStatusFailed
			result.ErrorLog = errs.Format(o.cfg.MaxErrorLog)
		}
		metrics.ObserveCrawl(string(result.Status))
		logger.Info("crawl finished",
			zap.String("status", string(result.Status)),
			zap.Int("succeeded", result.SuccessCount),
			zap.Int("failed", result.FailedCount),
			zap.Duration("elapsed", o.clock.Now().Sub(start)),
		)
	}()

	if descriptionOnly {
		// Carry the previously recorded counters forward unmodified.
		result = CrawlResult{
			Status:       CrawlStatusSuccess,
			SuccessCount: prior.SuccessCount,
			FailedCount:  prior.FailedCount,
		}
		if prior.FailedCount > 0 {
			result.Status = CrawlStatusFailed
		}
	} else {
		outcomes = o.processNodes(ctx, company, nodes, outputTable, currentDate)
		result = Aggregate(outcomes, o.cfg.MaxErrorLog)
	}

	o.backfillDescriptions(ctx, company.ID, outputTable, logger)
	o.publishCompletion(ctx, company, outputTable, result, logger)
	return result
}

// Aggregate folds per-item outcomes into a CrawlResult. The fold is
// commutative: counters are sums and the error log is a sorted, deduplicated
// join, so the order outcomes arrive in cannot change the result.
func Aggregate(outcomes []Outcome, maxErrorLog int) CrawlResult {
	errs := NewErrorSet()
	result := CrawlResult{Status: CrawlStatusSuccess}
	for _, out := range outcomes {
		if out.Succeeded {
			result.SuccessCount++
			continue
		}
		result.FailedCount++
		errs.Add(out.Err)
	}
	if result.FailedCount > 0 {
		result.Status = CrawlStatusFailed
	}
	result.ErrorLog = errs.Format(maxErrorLog)
	return result
}

// processNodes fans Process out over a bounded worker pool and collects the
// outcomes. Context cancellation stops admission of new nodes; nodes already
// handed to a worker drain normally.
func (o *Orchestrator) processNodes(
	ctx context.Context,
	company Company,
	nodes []*goquery.Selection,
	outputTable string,
	currentDate string,
) []Outcome {
	if len(nodes) == 0 {
		return nil
	}
	workers := o.cfg.Workers
	if workers > len(nodes) {
		workers = len(nodes)
	}

	work := make(chan *goquery.Selection)
	results := make(chan Outcome, len(nodes))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for node := range work {
				metrics.IncActiveWorkers()
				results <- o.processNode(ctx, node, company, outputTable, currentDate)
				metrics.DecActiveWorkers()
			}
		}()
	}

	go func() {
		defer close(work)
		for _, node := range nodes {
			select {
			case <-ctx.Done():
				return
			case work <- node:
			}
		}
	}()

	wg.Wait()
	close(results)

	outcomes := make([]Outcome, 0, len(nodes))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// processNode shields the pool from panics in a single record: a panicking
// node becomes one failed outcome, not a dead worker.
func (o *Orchestrator) processNode(
	ctx context.Context,
	node *goquery.Selection,
	company Company,
	outputTable string,
	currentDate string,
) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Succeeded: false, Err: fmt.Sprintf("process listing: %v", r)}
		}
	}()
	return o.processor.Process(ctx, node, company, outputTable, currentDate)
}

// backfillDescriptions triggers the post-pass that fills in descriptions for
// previously persisted records. Best effort: its failures are logged but do
// not affect the crawl result.
func (o *Orchestrator) backfillDescriptions(ctx context.Context, companyID int64, outputTable string, logger *zap.Logger) {
	if o.backfiller == nil {
		return
	}
	if err := o.backfiller.UpdateMissingDescriptions(ctx, companyID, outputTable); err != nil {
		logger.Warn("description backfill failed", zap.Error(err))
	}
}

func (o *Orchestrator) publishCompletion(
	ctx context.Context,
	company Company,
	outputTable string,
	result CrawlResult,
	logger *zap.Logger,
) {
	if o.publisher == nil || o.cfg.CompletionTopic == "" {
		return
	}
	payload := map[string]any{
		"run_id":        uuid.NewString(),
		"company_id":    company.ID,
		"output_table":  outputTable,
		"status":        string(result.Status),
		"success_count": result.SuccessCount,
		"failed_count":  result.FailedCount,
		"timestamp":     o.clock.Now().Format(time.RFC3339),
	}
	if _, err := o.publisher.Publish(ctx, o.cfg.CompletionTopic, payload); err != nil {
		logger.Warn("completion publish failed", zap.Error(err))
	}
}
