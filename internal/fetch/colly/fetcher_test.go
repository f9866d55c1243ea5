package collyfetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns body, status, and final url", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "test-agent", r.UserAgent())
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("<html><body>listings</body></html>"))
		}))
		defer server.Close()

		fetcher := New(Config{UserAgent: "test-agent", Timeout: 5 * time.Second})
		page, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		require.Equal(t, 200, page.StatusCode)
		require.Contains(t, string(page.Body), "listings")
		require.Contains(t, page.URL, server.URL)
	})

	t.Run("accepts self-signed certificates", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("secure listings"))
		}))
		defer server.Close()

		fetcher := New(Config{Timeout: 5 * time.Second})
		page, err := fetcher.Fetch(context.Background(), server.URL)

		require.NoError(t, err)
		require.Contains(t, string(page.Body), "secure listings")
	})

	t.Run("server error surfaces as a fetch error", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		fetcher := New(Config{Timeout: 5 * time.Second})
		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("canceled context aborts the fetch", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
			_, _ = w.Write([]byte("late"))
		}))
		defer server.Close()
		defer close(release)

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		fetcher := New(Config{Timeout: 30 * time.Second})
		_, err := fetcher.Fetch(ctx, server.URL)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("unreachable host is an error", func(t *testing.T) {
		t.Parallel()
		fetcher := New(Config{Timeout: 2 * time.Second})
		_, err := fetcher.Fetch(context.Background(), "http://127.0.0.1:1")
		require.Error(t, err)
	})
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	fetcher := New(Config{})
	require.Equal(t, DefaultUserAgent, fetcher.cfg.UserAgent)
	require.Equal(t, 15*time.Second, fetcher.cfg.Timeout)
}
