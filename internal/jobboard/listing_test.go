package jobboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

const plainListingHTML = `<html><body>
	<div class="job-listing"><a href="/jobs/1">Gopher</a></div>
	<div class="job-listing"><a href="/jobs/2">Rustacean</a></div>
</body></html>`

const shellHTML = `<html><body><div id="app"></div><script src="/bundle.js"></script></body></html>`

// stubDetector promotes unconditionally.
type stubDetector struct{ promote bool }

func (d stubDetector) ShouldPromote(Page) bool { return d.promote }

func TestListingLoader_Load(t *testing.T) {
	t.Parallel()

	company := Company{ID: 3, ListingURL: testBaseURL + "/jobs/feed.atom"}
	listingURL := testBaseURL + "/jobs"

	t.Run("parses listing nodes from the plain fetch", func(t *testing.T) {
		t.Parallel()
		fetcher := newFakeFetcher()
		fetcher.add(listingURL, plainListingHTML)
		loader := NewListingLoader(fetcher, nil, nil, Selectors{}, nil)

		page, err := loader.Load(context.Background(), company)
		require.NoError(t, err)
		require.Equal(t, listingURL, page.URL, "feed suffix must be stripped before fetching")
		require.Len(t, page.Nodes, 2)
		require.False(t, page.UsedHeadless)
	})

	t.Run("fetch error is returned", func(t *testing.T) {
		t.Parallel()
		fetcher := newFakeFetcher()
		fetcher.err = errors.New("dns failure")
		loader := NewListingLoader(fetcher, nil, nil, Selectors{}, nil)

		_, err := loader.Load(context.Background(), company)
		require.ErrorContains(t, err, "dns failure")
	})

	t.Run("promotes to headless when shell page has no nodes", func(t *testing.T) {
		t.Parallel()
		plain := newFakeFetcher()
		plain.add(listingURL, shellHTML)
		headless := newFakeFetcher()
		headless.add(listingURL, plainListingHTML)
		loader := NewListingLoader(plain, headless, stubDetector{promote: true}, Selectors{}, nil)

		page, err := loader.Load(context.Background(), company)
		require.NoError(t, err)
		require.Len(t, page.Nodes, 2)
		require.True(t, page.UsedHeadless)
	})

	t.Run("no promotion when detector declines", func(t *testing.T) {
		t.Parallel()
		plain := newFakeFetcher()
		plain.add(listingURL, shellHTML)
		headless := newFakeFetcher()
		loader := NewListingLoader(plain, headless, stubDetector{promote: false}, Selectors{}, nil)

		page, err := loader.Load(context.Background(), company)
		require.NoError(t, err)
		require.Empty(t, page.Nodes)
		require.Empty(t, headless.requests)
	})

	t.Run("headless failure falls back to the plain result", func(t *testing.T) {
		t.Parallel()
		plain := newFakeFetcher()
		plain.add(listingURL, shellHTML)
		headless := newFakeFetcher()
		headless.err = errors.New("chrome crashed")
		loader := NewListingLoader(plain, headless, stubDetector{promote: true}, Selectors{}, nil)

		page, err := loader.Load(context.Background(), company)
		require.NoError(t, err)
		require.Empty(t, page.Nodes)
		require.False(t, page.UsedHeadless)
	})

	t.Run("nodes present suppress promotion", func(t *testing.T) {
		t.Parallel()
		plain := newFakeFetcher()
		plain.add(listingURL, plainListingHTML)
		headless := newFakeFetcher()
		loader := NewListingLoader(plain, headless, stubDetector{promote: true}, Selectors{}, nil)

		page, err := loader.Load(context.Background(), company)
		require.NoError(t, err)
		require.Len(t, page.Nodes, 2)
		require.Empty(t, headless.requests)
	})
}
