// Package cmd defines and implements the CLI commands for the boardcrawler executable.
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newCrawlCmd creates and configures the 'crawl' subcommand. It runs one
// crawl pass over the selected companies and exits.
func newCrawlCmd() *cobra.Command {
	var (
		companyID       int64
		excludedIDs     []int64
		resource        string
		descriptionOnly bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawls the configured job boards once",
		Long: `Runs a single crawl pass. By default every enabled company is crawled;
use --company to crawl one company, --exclude to skip specific companies,
and --resource to restrict the pass to one board type. With
--description-only the listing phase is skipped and only the description
backfill pass runs.`,

		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			logger := appInstance.Logger()

			failed, err := appInstance.Runner().CrawlAll(
				cmd.Context(),
				appInstance.Companies(),
				companyID,
				excludedIDs,
				resource,
				descriptionOnly,
			)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("run crawl: %w", err)
			}

			logger.Info("Crawl command finished.", zap.Int("failed_companies", failed))
			if failed > 0 {
				return fmt.Errorf("%d companies finished with a failed status", failed)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&companyID, "company", 0, "crawl only this company ID (0 = all)")
	cmd.Flags().Int64SliceVar(&excludedIDs, "exclude", nil, "company IDs to skip")
	cmd.Flags().StringVar(&resource, "resource", "", "restrict the pass to one board resource type")
	cmd.Flags().BoolVar(&descriptionOnly, "description-only", false, "only backfill missing descriptions")

	return cmd
}
