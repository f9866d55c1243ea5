package jobboard

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	v.Set("crawl.user_agent", "test-agent")
	v.Set("crawl.request_timeout", "10s")
	v.Set("crawl.description_timeout", "15s")
	v.Set("crawl.description_workers", 8)
	v.Set("crawl.max_error_log", 1000)
	v.Set("crawl.output_table", "jobs")
	return v
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("loads a complete config", func(t *testing.T) {
		t.Parallel()
		v := newTestViper()
		v.Set("pubsub.completion_topic", "crawl-done")
		v.Set("selectors.listing", "li.posting")
		v.Set("headless.enabled", true)
		v.Set("headless.navigation_timeout", "30s")

		cfg, err := LoadConfig(v)
		require.NoError(t, err)
		require.Equal(t, "test-agent", cfg.UserAgent)
		require.Equal(t, 10*time.Second, cfg.RequestTimeout)
		require.Equal(t, 15*time.Second, cfg.DescriptionTimeout)
		require.Equal(t, 8, cfg.DescriptionWorkers)
		require.Equal(t, "crawl-done", cfg.CompletionTopic)
		require.Equal(t, "li.posting", cfg.Selectors.Listing)
		require.True(t, cfg.HeadlessEnabled)
		require.Equal(t, 30*time.Second, cfg.HeadlessTimeout)
	})

	t.Run("rejects missing user agent", func(t *testing.T) {
		t.Parallel()
		v := newTestViper()
		v.Set("crawl.user_agent", "")

		_, err := LoadConfig(v)
		require.ErrorContains(t, err, "crawl.user_agent")
	})

	t.Run("rejects non-positive worker count", func(t *testing.T) {
		t.Parallel()
		v := newTestViper()
		v.Set("crawl.description_workers", 0)

		_, err := LoadConfig(v)
		require.ErrorContains(t, err, "crawl.description_workers")
	})

	t.Run("rejects missing output table", func(t *testing.T) {
		t.Parallel()
		v := newTestViper()
		v.Set("crawl.output_table", "")

		_, err := LoadConfig(v)
		require.ErrorContains(t, err, "crawl.output_table")
	})

	t.Run("rejects headless without navigation timeout", func(t *testing.T) {
		t.Parallel()
		v := newTestViper()
		v.Set("headless.enabled", true)

		_, err := LoadConfig(v)
		require.ErrorContains(t, err, "headless.navigation_timeout")
	})
}
