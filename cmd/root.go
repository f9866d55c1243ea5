package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobwire/boardcrawler/internal/app"
	"github.com/jobwire/boardcrawler/internal/jobboard"
	"github.com/jobwire/boardcrawler/internal/logging"
	"github.com/jobwire/boardcrawler/pkg/config"
)

var cfgFile string

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App defines the application surface that commands use. It is an
// interface so tests can inject a mock app.
type App interface {
	Close()
	Logger() *zap.Logger
	Runner() *jobboard.Runner
	Companies() jobboard.CompanyProvider
	Statuses() jobboard.StatusStore
	Config() jobboard.Config
}

// newApp is the application factory. It is a variable so tests can replace
// it with a mock factory.
var newApp = func(ctx context.Context) (App, error) {
	return app.New(ctx)
}

// newRootCmd creates and configures the root command.
func newRootCmd(bootLogger *zap.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "boardcrawler",
		Short: "A per-site crawl adapter for job boards.",
		Long: `boardcrawler ingests job listings from company job boards. It fetches
each company's listing page, extracts and normalizes the individual
postings, enriches them with full descriptions, and persists the records
together with a per-crawl status report.`,

		// Runs after config is loaded but before the subcommand's RunE, so
		// it is where the application services get built and injected.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cobra.OnInitialize(func() { config.InitConfig(bootLogger) })

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ., /etc/boardcrawler, $HOME/.boardcrawler)")

	cmd.AddCommand(newCrawlCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	bootLogger, err := logging.New(false)
	if err != nil {
		panic(fmt.Sprintf("initialize logger: %v", err))
	}

	if err := newRootCmd(bootLogger).Execute(); err != nil {
		bootLogger.Fatal("Command execution failed", zap.Error(err))
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application services not initialized")
	}
	return appInstance, nil
}
