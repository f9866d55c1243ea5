// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jobwire/boardcrawler/internal/jobboard"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for job rows.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// JobStore writes job rows into Postgres. The destination table is carried
// per record (OutputTable) and validated before interpolation.
type JobStore struct {
	pool querier
}

// NewJobStore creates a Postgres-backed JobStore using the provided config.
func NewJobStore(ctx context.Context, cfg Config) (*JobStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &JobStore{pool: pool}, nil
}

// NewJobStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewJobStoreWithPool(pool querier) (*JobStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &JobStore{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *JobStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// InsertJob upserts one job record into the record's output table, keyed on
// (company_id, url).
func (s *JobStore) InsertJob(ctx context.Context, companyID int64, record jobboard.JobRecord) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("job store is not configured")
	}
	if !record.Valid() {
		return fmt.Errorf("job record requires title and url")
	}
	table, err := outputTable(record.OutputTable)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	company_id,
	title,
	url,
	location,
	post_date,
	description,
	category,
	employment_type
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8
)
ON CONFLICT (company_id, url) DO UPDATE SET
	title = EXCLUDED.title,
	location = EXCLUDED.location,
	post_date = EXCLUDED.post_date,
	description = CASE
		WHEN EXCLUDED.description <> '' THEN EXCLUDED.description
		ELSE %s.description
	END,
	category = EXCLUDED.category,
	employment_type = EXCLUDED.employment_type`, table, table)

	args := []any{
		companyID,
		record.Title,
		record.URL,
		record.Location,
		record.PostDate,
		record.Description,
		record.Category,
		record.EmploymentType,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// JobsMissingDescription returns the URLs of persisted jobs for the company
// whose description is still empty.
func (s *JobStore) JobsMissingDescription(ctx context.Context, companyID int64, table string) ([]string, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("job store is not configured")
	}
	tbl, err := outputTable(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
SELECT url FROM %s
WHERE company_id = $1 AND (description IS NULL OR description = '')
ORDER BY url`, tbl)

	rows, err := s.pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("query jobs missing description: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var jobURL string
		if err := rows.Scan(&jobURL); err != nil {
			return nil, fmt.Errorf("scan job url: %w", err)
		}
		urls = append(urls, jobURL)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job urls: %w", err)
	}
	return urls, nil
}

// SetDescription writes back a description for one persisted job.
func (s *JobStore) SetDescription(ctx context.Context, companyID int64, table string, jobURL string, description string) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("job store is not configured")
	}
	tbl, err := outputTable(table)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET description = $3 WHERE company_id = $1 AND url = $2`, tbl)
	tag, err := s.pool.Exec(ctx, query, companyID, jobURL, description)
	if err != nil {
		return fmt.Errorf("update description: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("no job row for company %d url %q", companyID, jobURL)
	}
	return nil
}

// SaveCrawlResult records the report of one crawl invocation.
func (s *JobStore) SaveCrawlResult(ctx context.Context, companyID int64, table string, result jobboard.CrawlResult) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("job store is not configured")
	}
	query := `
INSERT INTO crawl_runs (company_id, output_table, status, success_count, failed_count, error_log, finished_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())`
	args := []any{
		companyID,
		table,
		string(result.Status),
		result.SuccessCount,
		result.FailedCount,
		result.ErrorLog,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert crawl run: %w", err)
	}
	return nil
}

// LatestStatus returns the counters of the most recent crawl for the
// company/output-table pair. A company with no prior crawl yields a zero
// StatusRecord.
func (s *JobStore) LatestStatus(ctx context.Context, companyID int64, table string) (jobboard.StatusRecord, error) {
	if s == nil || s.pool == nil {
		return jobboard.StatusRecord{}, fmt.Errorf("job store is not configured")
	}
	query := `
SELECT success_count, failed_count FROM crawl_runs
WHERE company_id = $1 AND output_table = $2
ORDER BY finished_at DESC
LIMIT 1`

	var record jobboard.StatusRecord
	err := s.pool.QueryRow(ctx, query, companyID, table).Scan(&record.SuccessCount, &record.FailedCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return jobboard.StatusRecord{}, nil
	}
	if err != nil {
		return jobboard.StatusRecord{}, fmt.Errorf("query latest crawl status: %w", err)
	}
	return record, nil
}

func outputTable(table string) (string, error) {
	if table == "" {
		return "", fmt.Errorf("output table is required")
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}
