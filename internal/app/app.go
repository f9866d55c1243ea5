// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	gcsapi "cloud.google.com/go/storage"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	archivegcs "github.com/jobwire/boardcrawler/internal/archive/gcs"
	archivelocal "github.com/jobwire/boardcrawler/internal/archive/local"
	archivememory "github.com/jobwire/boardcrawler/internal/archive/memory"
	"github.com/jobwire/boardcrawler/internal/clock/system"
	collyfetch "github.com/jobwire/boardcrawler/internal/fetch/colly"
	"github.com/jobwire/boardcrawler/internal/fetch/headless"
	"github.com/jobwire/boardcrawler/internal/headless/detector"
	"github.com/jobwire/boardcrawler/internal/jobboard"
	"github.com/jobwire/boardcrawler/internal/logging"
	publishermemory "github.com/jobwire/boardcrawler/internal/publisher/memory"
	publisherpubsub "github.com/jobwire/boardcrawler/internal/publisher/pubsub"
	storagememory "github.com/jobwire/boardcrawler/internal/storage/memory"
	"github.com/jobwire/boardcrawler/internal/storage/postgres"
)

// App holds the shared, long-lived services for the application. It is
// initialized once at startup and passed to the commands and the HTTP
// server that need it.
type App struct {
	logger    *zap.Logger
	runner    *jobboard.Runner
	companies jobboard.CompanyProvider
	statuses  jobboard.StatusStore
	cfg       jobboard.Config

	pgStore      *postgres.JobStore
	gcsClient    *gcsapi.Client
	pubsubClient *pubsub.Client
	headless     *headless.Fetcher
}

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger { return a.logger }

// Runner returns the crawl runner.
func (a *App) Runner() *jobboard.Runner { return a.runner }

// Companies returns the provider of crawlable companies.
func (a *App) Companies() jobboard.CompanyProvider { return a.companies }

// Statuses returns the store of per-crawl reports.
func (a *App) Statuses() jobboard.StatusStore { return a.statuses }

// Config returns the crawl configuration loaded at startup.
func (a *App) Config() jobboard.Config { return a.cfg }

// New creates and initializes an App from the application's configuration.
// It reads provider selections from Viper and instantiates the matching
// implementations, failing fast when a critical service cannot be built.
func New(ctx context.Context) (*App, error) {
	logger, err := logging.New(viper.GetBool("logging.development"))
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	logger.Info("Initializing application services...")

	cfg, err := jobboard.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load crawl config: %w", err)
	}

	a := &App{logger: logger, cfg: cfg}

	var (
		jobs      jobboard.JobStore
		statuses  jobboard.StatusStore
		descStore jobboard.DescriptionStore
		companies jobboard.CompanyProvider
	)
	switch provider := viper.GetString("database.provider"); provider {
	case "postgres":
		dsn := viper.GetString("database.postgres.dsn")
		if dsn == "" {
			return nil, fmt.Errorf("database provider is 'postgres' but database.postgres.dsn is not set")
		}
		logger.Info("Connecting to PostgreSQL...")
		store, err := postgres.NewJobStore(ctx, postgres.Config{
			DSN:      dsn,
			MaxConns: int32(viper.GetInt("database.postgres.max_conns")),
		})
		if err != nil {
			return nil, fmt.Errorf("initialize postgres store: %w", err)
		}
		a.pgStore = store
		jobs, statuses, descStore, companies = store, store, store, store
	case "memory":
		logger.Info("Using in-memory job store. Data is lost on exit.")
		store := storagememory.NewJobStore()
		jobs, statuses, descStore, companies = store, store, store, store
	default:
		return nil, fmt.Errorf("unknown database provider: %s", provider)
	}

	var archiver jobboard.Archiver
	switch provider := viper.GetString("archive.provider"); provider {
	case "gcs":
		bucket := viper.GetString("archive.gcs.bucket")
		if bucket == "" {
			return nil, fmt.Errorf("archive provider is 'gcs' but archive.gcs.bucket is not set")
		}
		logger.Info("Using GCS archive", zap.String("bucket", bucket))
		client, err := gcsapi.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("initialize GCS client: %w", err)
		}
		a.gcsClient = client
		archiver, err = archivegcs.New(client, archivegcs.Config{Bucket: bucket})
		if err != nil {
			return nil, fmt.Errorf("initialize GCS archive: %w", err)
		}
	case "local":
		baseDir := viper.GetString("archive.local.base_dir")
		logger.Info("Using local archive", zap.String("base_dir", baseDir))
		archiver, err = archivelocal.New(archivelocal.Config{BaseDir: baseDir})
		if err != nil {
			return nil, fmt.Errorf("initialize local archive: %w", err)
		}
	case "memory":
		logger.Info("Using in-memory archive. Raw listing pages are retained in process.")
		archiver = archivememory.NewBlobStore()
	case "noop":
		logger.Info("Archiving disabled. Raw listing pages will be discarded.")
	default:
		return nil, fmt.Errorf("unknown archive provider: %s", provider)
	}

	var publisher jobboard.Publisher
	switch provider := viper.GetString("pubsub.provider"); provider {
	case "pubsub":
		projectID := viper.GetString("pubsub.project_id")
		if projectID == "" || cfg.CompletionTopic == "" {
			return nil, fmt.Errorf("pubsub provider is 'pubsub' but project_id or completion_topic is not set")
		}
		logger.Info("Connecting to GCP Pub/Sub", zap.String("topic", cfg.CompletionTopic))
		client, err := pubsub.NewClient(ctx, projectID)
		if err != nil {
			return nil, fmt.Errorf("initialize pub/sub client: %w", err)
		}
		a.pubsubClient = client
		publisher = publisherpubsub.New(client)
	case "memory":
		logger.Info("Using in-memory publisher. Completion events are retained in process.")
		publisher = publishermemory.New()
	case "noop":
		logger.Info("Completion publishing disabled.")
	default:
		return nil, fmt.Errorf("unknown pubsub provider: %s", provider)
	}

	fetcher := collyfetch.New(collyfetch.Config{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.RequestTimeout,
	})

	var headlessFetcher jobboard.Fetcher
	var promote jobboard.HeadlessDetector
	if cfg.HeadlessEnabled {
		hf, err := headless.New(headless.Config{
			MaxParallel:       viper.GetInt("headless.max_parallel"),
			UserAgent:         cfg.UserAgent,
			NavigationTimeout: cfg.HeadlessTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("initialize headless fetcher: %w", err)
		}
		a.headless = hf
		headlessFetcher = hf
		promote = detector.NewHeuristic(viper.GetInt("detector.min_html_bytes"))
	}

	clk := system.New()
	descriptions := jobboard.NewDescriptionFetcher(fetcher, cfg.DescriptionTimeout, logger)
	loader := jobboard.NewListingLoader(fetcher, headlessFetcher, promote, cfg.Selectors, logger)
	backfiller := jobboard.NewDescriptionBackfiller(descStore, descriptions, logger)

	a.runner = jobboard.NewRunner(
		loader, descriptions, jobs, statuses, backfiller,
		publisher, archiver, clk, cfg, logger,
	)
	a.companies = companies
	a.statuses = statuses

	logger.Info("Application services initialized successfully.")
	return a, nil
}

// Close gracefully shuts down all services in the App container. It is
// called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	a.logger.Info("Shutting down application services...")
	if a.headless != nil {
		a.headless.Close()
	}
	if a.pgStore != nil {
		a.pgStore.Close()
	}
	if a.pubsubClient != nil {
		if err := a.pubsubClient.Close(); err != nil {
			a.logger.Warn("Error closing pub/sub client", zap.Error(err))
		}
	}
	if a.gcsClient != nil {
		if err := a.gcsClient.Close(); err != nil {
			a.logger.Warn("Error closing GCS client", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
