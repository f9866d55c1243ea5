package jobboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DescriptionBackfiller fills in descriptions for already-persisted records
// that are missing one. Fetch failures skip the row; only store errors are
// reported.
type DescriptionBackfiller struct {
	store        DescriptionStore
	descriptions *DescriptionFetcher
	logger       *zap.Logger
}

// NewDescriptionBackfiller constructs a DescriptionBackfiller.
func NewDescriptionBackfiller(store DescriptionStore, descriptions *DescriptionFetcher, logger *zap.Logger) *DescriptionBackfiller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DescriptionBackfiller{
		store:        store,
		descriptions: descriptions,
		logger:       logger,
	}
}

// UpdateMissingDescriptions re-fetches every record under the company and
// output table whose description is empty and writes back any text found.
func (b *DescriptionBackfiller) UpdateMissingDescriptions(ctx context.Context, companyID int64, outputTable string) error {
	urls, err := b.store.JobsMissingDescription(ctx, companyID, outputTable)
	if err != nil {
		return fmt.Errorf("list jobs missing description: %w", err)
	}
	if len(urls) == 0 {
		return nil
	}

	var updated, failed int
	for _, jobURL := range urls {
		description := b.descriptions.Fetch(ctx, jobURL)
		if description == "" {
			continue
		}
		if err := b.store.SetDescription(ctx, companyID, outputTable, jobURL, description); err != nil {
			failed++
			b.logger.Warn("description update failed", zap.String("url", jobURL), zap.Error(err))
			continue
		}
		updated++
	}

	b.logger.Info("description backfill finished",
		zap.Int64("company_id", companyID),
		zap.Int("candidates", len(urls)),
		zap.Int("updated", updated),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		return fmt.Errorf("description backfill: %d of %d updates failed", failed, len(urls))
	}
	return nil
}
