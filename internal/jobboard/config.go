package jobboard

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob that influences a crawl run. All
// values originate from Viper so the adapter can be configured via files,
// env vars, or CLI flags.
type Config struct {
	UserAgent          string
	RequestTimeout     time.Duration
	DescriptionTimeout time.Duration
	DescriptionWorkers int
	MaxErrorLog        int
	OutputTable        string
	CompletionTopic    string
	ArchivePrefix      string
	Selectors          Selectors
	HeadlessEnabled    bool
	HeadlessTimeout    time.Duration
}

// LoadConfig constructs a Config by reading from Viper.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		UserAgent:          v.GetString("crawl.user_agent"),
		RequestTimeout:     v.GetDuration("crawl.request_timeout"),
		DescriptionTimeout: v.GetDuration("crawl.description_timeout"),
		DescriptionWorkers: v.GetInt("crawl.description_workers"),
		MaxErrorLog:        v.GetInt("crawl.max_error_log"),
		OutputTable:        v.GetString("crawl.output_table"),
		CompletionTopic:    v.GetString("pubsub.completion_topic"),
		ArchivePrefix:      v.GetString("archive.prefix"),
		Selectors: Selectors{
			Listing:  v.GetString("selectors.listing"),
			Location: v.GetString("selectors.location"),
			PostDate: v.GetString("selectors.post_date"),
			Subtitle: v.GetString("selectors.subtitle"),
		},
		HeadlessEnabled: v.GetBool("headless.enabled"),
		HeadlessTimeout: v.GetDuration("headless.navigation_timeout"),
	}
	return cfg, cfg.Validate()
}

// Validate checks for obviously bad configuration combinations.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("crawl.user_agent must be set")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("crawl.request_timeout must be > 0")
	}
	if c.DescriptionTimeout <= 0 {
		return fmt.Errorf("crawl.description_timeout must be > 0")
	}
	if c.DescriptionWorkers <= 0 {
		return fmt.Errorf("crawl.description_workers must be > 0")
	}
	if c.MaxErrorLog <= 0 {
		return fmt.Errorf("crawl.max_error_log must be > 0")
	}
	if c.OutputTable == "" {
		return fmt.Errorf("crawl.output_table must be set")
	}
	if c.HeadlessEnabled && c.HeadlessTimeout <= 0 {
		return fmt.Errorf("headless.navigation_timeout must be > 0 when headless is enabled")
	}
	return nil
}
