// Package config initializes the application's configuration. It uses the
// Viper library to read settings from a config file and environment
// variables, providing a unified configuration system.
package config

import (
	"errors"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// InitConfig initializes the application's configuration using Viper. It
// sets up default values, defines configuration search paths, and enables
// reading from environment variables. Call once at application startup.
func InitConfig(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/boardcrawler/")
	viper.AddConfigPath("$HOME/.boardcrawler")

	// Crawl pipeline defaults.
	viper.SetDefault("crawl.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")
	viper.SetDefault("crawl.request_timeout", "15s")
	viper.SetDefault("crawl.description_timeout", "15s")
	viper.SetDefault("crawl.description_workers", 8)
	viper.SetDefault("crawl.max_error_log", 1000)
	viper.SetDefault("crawl.output_table", "jobs")

	// Listing-node selectors; override per deployment when a site deviates
	// from the default board markup.
	viper.SetDefault("selectors.listing", "div.job-listing")
	viper.SetDefault("selectors.location", "location")
	viper.SetDefault("selectors.post_date", "posting-date")
	viper.SetDefault("selectors.subtitle", ".subtitle")

	// Headless promotion for JS-rendered boards.
	viper.SetDefault("headless.enabled", false)
	viper.SetDefault("headless.max_parallel", 2)
	viper.SetDefault("headless.navigation_timeout", "45s")
	viper.SetDefault("detector.min_html_bytes", 2048)

	// Persistence and eventing providers.
	viper.SetDefault("database.provider", "memory")
	viper.SetDefault("database.postgres.dsn", "")
	viper.SetDefault("database.postgres.max_conns", 8)
	viper.SetDefault("archive.provider", "noop")
	viper.SetDefault("archive.prefix", "listings")
	viper.SetDefault("archive.local.base_dir", "data/archive")
	viper.SetDefault("archive.gcs.bucket", "")
	viper.SetDefault("pubsub.provider", "noop")
	viper.SetDefault("pubsub.project_id", "")
	viper.SetDefault("pubsub.completion_topic", "")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("logging.development", false)

	viper.SetEnvPrefix("BOARDCRAWLER") // e.g. BOARDCRAWLER_CRAWL_REQUEST_TIMEOUT=30s
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logger.Warn("Config file not found; using defaults and environment variables.")
		} else {
			logger.Error("Error reading config file", zap.Error(err))
		}
	} else {
		logger.Info("Using config file", zap.String("path", viper.ConfigFileUsed()))
	}
}
