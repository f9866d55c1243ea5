package jobboard

import (
	"context"
	"sync"
	"time"
)

// fakeFetcher serves canned pages keyed by URL. Unknown URLs return notFound
// if set, otherwise an empty page.
type fakeFetcher struct {
	mu       sync.Mutex
	pages    map[string]Page
	err      error
	requests []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: make(map[string]Page)}
}

func (f *fakeFetcher) add(url, body string) {
	f.pages[url] = Page{URL: url, StatusCode: 200, Body: []byte(body)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (Page, error) {
	f.mu.Lock()
	f.requests = append(f.requests, url)
	f.mu.Unlock()
	if f.err != nil {
		return Page{}, f.err
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return Page{URL: url, StatusCode: 200}, nil
}

// fakeJobStore records inserts and fails URLs listed in failURLs.
type fakeJobStore struct {
	mu       sync.Mutex
	inserted []JobRecord
	failURLs map[string]error
	panicOn  string
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{failURLs: make(map[string]error)}
}

func (s *fakeJobStore) InsertJob(_ context.Context, _ int64, record JobRecord) error {
	if s.panicOn != "" && record.URL == s.panicOn {
		panic("store blew up")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.failURLs[record.URL]; ok {
		return err
	}
	s.inserted = append(s.inserted, record)
	return nil
}

func (s *fakeJobStore) insertedRecords() []JobRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]JobRecord, len(s.inserted))
	copy(out, s.inserted)
	return out
}

// fakeStatusStore keeps the last saved result per company.
type fakeStatusStore struct {
	mu     sync.Mutex
	latest map[int64]StatusRecord
	saved  []CrawlResult
	err    error
}

func newFakeStatusStore() *fakeStatusStore {
	return &fakeStatusStore{latest: make(map[int64]StatusRecord)}
}

func (s *fakeStatusStore) SaveCrawlResult(_ context.Context, companyID int64, _ string, result CrawlResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, result)
	s.latest[companyID] = StatusRecord{
		SuccessCount: result.SuccessCount,
		FailedCount:  result.FailedCount,
	}
	return nil
}

func (s *fakeStatusStore) LatestStatus(_ context.Context, companyID int64, _ string) (StatusRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return StatusRecord{}, s.err
	}
	return s.latest[companyID], nil
}

// fakeBackfiller counts invocations.
type fakeBackfiller struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (b *fakeBackfiller) UpdateMissingDescriptions(_ context.Context, _ int64, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.err
}

func (b *fakeBackfiller) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// fakePublisher records published payloads.
type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	payloads []any
}

func (p *fakePublisher) Publish(_ context.Context, topic string, payload any) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return "msg-1", nil
}

// fixedClock returns a constant time.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}
