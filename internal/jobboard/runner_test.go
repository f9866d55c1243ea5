package jobboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeArchiver struct {
	mu    sync.Mutex
	paths []string
	data  [][]byte
	err   error
}

func (a *fakeArchiver) PutObject(_ context.Context, path, _ string, data []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return "", a.err
	}
	a.paths = append(a.paths, path)
	a.data = append(a.data, data)
	return "memory://" + path, nil
}

type fakeCompanyProvider struct {
	companies []Company
	err       error
}

func (p *fakeCompanyProvider) Companies(context.Context, int64, []int64, string) ([]Company, error) {
	return p.companies, p.err
}

type runnerFixture struct {
	fetcher    *fakeFetcher
	jobs       *fakeJobStore
	statuses   *fakeStatusStore
	backfiller *fakeBackfiller
	archiver   *fakeArchiver
	runner     *Runner
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()
	fetcher := newFakeFetcher()
	jobs := newFakeJobStore()
	statuses := newFakeStatusStore()
	backfiller := &fakeBackfiller{}
	archiver := &fakeArchiver{}

	cfg := Config{
		UserAgent:          "test-agent",
		RequestTimeout:     5 * time.Second,
		DescriptionTimeout: time.Second,
		DescriptionWorkers: 2,
		MaxErrorLog:        1000,
		OutputTable:        "jobs",
		ArchivePrefix:      "listings",
	}

	runner := NewRunner(
		NewListingLoader(fetcher, nil, nil, Selectors{}, nil),
		NewDescriptionFetcher(fetcher, time.Second, nil),
		jobs,
		statuses,
		backfiller,
		nil,
		archiver,
		testClock,
		cfg,
		nil,
	)
	return &runnerFixture{
		fetcher:    fetcher,
		jobs:       jobs,
		statuses:   statuses,
		backfiller: backfiller,
		archiver:   archiver,
		runner:     runner,
	}
}

func TestRunner_CrawlCompany(t *testing.T) {
	t.Parallel()

	company := Company{ID: 11, ListingURL: testBaseURL + "/jobs/feed.atom"}
	listingURL := testBaseURL + "/jobs"

	t.Run("crawls, persists, and records the report", func(t *testing.T) {
		t.Parallel()
		fx := newRunnerFixture(t)
		fx.fetcher.add(listingURL, plainListingHTML)
		fx.fetcher.add(testBaseURL+"/jobs/1",
			`<html><body><div id="js-job-description">Write Go.</div></body></html>`)

		result, err := fx.runner.CrawlCompany(context.Background(), company, false)

		require.NoError(t, err)
		require.Equal(t, CrawlStatusSuccess, result.Status)
		require.Equal(t, 2, result.SuccessCount)
		require.Equal(t, 0, result.FailedCount)

		records := fx.jobs.insertedRecords()
		require.Len(t, records, 2)
		require.Equal(t, 1, fx.backfiller.callCount())

		require.Len(t, fx.statuses.saved, 1)
		require.Equal(t, result, fx.statuses.saved[0])

		require.Len(t, fx.archiver.paths, 1)
		require.Contains(t, fx.archiver.paths[0], "listings/11/")
		require.Equal(t, []byte(plainListingHTML), fx.archiver.data[0])
	})

	t.Run("unreachable listing page is a failed report", func(t *testing.T) {
		t.Parallel()
		fx := newRunnerFixture(t)
		fx.fetcher.err = errors.New("connect timeout")

		result, err := fx.runner.CrawlCompany(context.Background(), company, false)

		require.NoError(t, err)
		require.Equal(t, CrawlStatusFailed, result.Status)
		require.Contains(t, result.ErrorLog, "load listing page")
		require.Len(t, fx.statuses.saved, 1)
	})

	t.Run("description-only run carries the prior report", func(t *testing.T) {
		t.Parallel()
		fx := newRunnerFixture(t)
		fx.statuses.latest[company.ID] = StatusRecord{SuccessCount: 9, FailedCount: 0}

		result, err := fx.runner.CrawlCompany(context.Background(), company, true)

		require.NoError(t, err)
		require.Equal(t, CrawlStatusSuccess, result.Status)
		require.Equal(t, 9, result.SuccessCount)
		require.NotContains(t, fx.fetcher.requests, listingURL, "listing page must not be fetched")
		require.Equal(t, 1, fx.backfiller.callCount())
	})

	t.Run("invalid listing url is an error", func(t *testing.T) {
		t.Parallel()
		fx := newRunnerFixture(t)

		_, err := fx.runner.CrawlCompany(context.Background(), Company{ID: 1, ListingURL: "not a url"}, false)
		require.Error(t, err)
	})
}

func TestRunner_CrawlAll(t *testing.T) {
	t.Parallel()

	t.Run("continues past failing companies", func(t *testing.T) {
		t.Parallel()
		fx := newRunnerFixture(t)
		good := Company{ID: 1, ListingURL: testBaseURL + "/jobs"}
		bad := Company{ID: 2, ListingURL: "://broken"}
		fx.fetcher.add(testBaseURL+"/jobs", plainListingHTML)

		failed, err := fx.runner.CrawlAll(context.Background(),
			&fakeCompanyProvider{companies: []Company{bad, good}}, 0, nil, "", false)

		require.NoError(t, err)
		require.Equal(t, 1, failed)
		require.Len(t, fx.jobs.insertedRecords(), 2)
	})

	t.Run("provider error aborts the pass", func(t *testing.T) {
		t.Parallel()
		fx := newRunnerFixture(t)

		_, err := fx.runner.CrawlAll(context.Background(),
			&fakeCompanyProvider{err: errors.New("db down")}, 0, nil, "", false)

		require.ErrorContains(t, err, "list companies")
	})
}
