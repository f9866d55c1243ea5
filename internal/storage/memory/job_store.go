// Package memory contains in-memory store implementations for development
// and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jobwire/boardcrawler/internal/jobboard"
)

type jobKey struct {
	companyID int64
	table     string
	url       string
}

type crawlRun struct {
	companyID int64
	table     string
	result    jobboard.CrawlResult
}

// JobStore provides an in-memory implementation of the persistence
// collaborators for development and testing.
type JobStore struct {
	mu        sync.RWMutex
	jobs      map[jobKey]jobboard.JobRecord
	runs      []crawlRun
	companies []jobboard.Company
}

// NewJobStore constructs a JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[jobKey]jobboard.JobRecord)}
}

// SeedCompanies replaces the companies returned by Companies.
func (s *JobStore) SeedCompanies(companies []jobboard.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies = append([]jobboard.Company(nil), companies...)
}

// InsertJob upserts a record keyed on (company id, output table, url).
func (s *JobStore) InsertJob(_ context.Context, companyID int64, record jobboard.JobRecord) error {
	if !record.Valid() {
		return fmt.Errorf("job record requires title and url")
	}
	if record.OutputTable == "" {
		return fmt.Errorf("output table is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey{companyID: companyID, table: record.OutputTable, url: record.URL}
	if existing, ok := s.jobs[key]; ok && record.Description == "" {
		// Keep a previously filled description on re-crawl.
		record.Description = existing.Description
	}
	s.jobs[key] = record
	return nil
}

// JobsMissingDescription returns the URLs of stored jobs without a
// description, sorted for deterministic iteration.
func (s *JobStore) JobsMissingDescription(_ context.Context, companyID int64, table string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var urls []string
	for key, record := range s.jobs {
		if key.companyID == companyID && key.table == table && record.Description == "" {
			urls = append(urls, key.url)
		}
	}
	sort.Strings(urls)
	return urls, nil
}

// SetDescription writes back a description for one stored job.
func (s *JobStore) SetDescription(_ context.Context, companyID int64, table string, jobURL string, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := jobKey{companyID: companyID, table: table, url: jobURL}
	record, ok := s.jobs[key]
	if !ok {
		return fmt.Errorf("no job row for company %d url %q", companyID, jobURL)
	}
	record.Description = description
	s.jobs[key] = record
	return nil
}

// SaveCrawlResult appends the report of one crawl invocation.
func (s *JobStore) SaveCrawlResult(_ context.Context, companyID int64, table string, result jobboard.CrawlResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, crawlRun{companyID: companyID, table: table, result: result})
	return nil
}

// LatestStatus returns the counters of the most recent crawl for the pair,
// or a zero StatusRecord when none exists.
func (s *JobStore) LatestStatus(_ context.Context, companyID int64, table string) (jobboard.StatusRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.runs) - 1; i >= 0; i-- {
		run := s.runs[i]
		if run.companyID == companyID && run.table == table {
			return jobboard.StatusRecord{
				SuccessCount: run.result.SuccessCount,
				FailedCount:  run.result.FailedCount,
			}, nil
		}
	}
	return jobboard.StatusRecord{}, nil
}

// Companies returns the seeded companies with the same filtering semantics
// as the Postgres provider.
func (s *JobStore) Companies(_ context.Context, companyID int64, excludedIDs []int64, resource string) ([]jobboard.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	excluded := make(map[int64]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}
	var out []jobboard.Company
	for _, company := range s.companies {
		if companyID != 0 && company.ID != companyID {
			continue
		}
		if resource != "" && company.Resource != resource {
			continue
		}
		if _, skip := excluded[company.ID]; skip {
			continue
		}
		out = append(out, company)
	}
	return out, nil
}

// Jobs returns a copy of the stored records for a company/table pair.
func (s *JobStore) Jobs(companyID int64, table string) []jobboard.JobRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []jobboard.JobRecord
	for key, record := range s.jobs {
		if key.companyID == companyID && key.table == table {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].URL < out[j].URL })
	return out
}
