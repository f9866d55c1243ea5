package postgres

import (
	"context"
	"fmt"

	"github.com/jobwire/boardcrawler/internal/jobboard"
)

// Companies returns the crawlable companies, optionally narrowed to a single
// company id and/or a resource name, with excludedIDs filtered out. A
// companyID of zero matches every company.
func (s *JobStore) Companies(ctx context.Context, companyID int64, excludedIDs []int64, resource string) ([]jobboard.Company, error) {
	if s == nil || s.pool == nil {
		return nil, fmt.Errorf("job store is not configured")
	}
	if excludedIDs == nil {
		excludedIDs = []int64{}
	}

	query := `
SELECT id, listing_url, resource FROM companies
WHERE enabled
  AND ($1 = 0 OR id = $1)
  AND ($3 = '' OR resource = $3)
  AND NOT (id = ANY($2))
ORDER BY id`

	rows, err := s.pool.Query(ctx, query, companyID, excludedIDs, resource)
	if err != nil {
		return nil, fmt.Errorf("query companies: %w", err)
	}
	defer rows.Close()

	var companies []jobboard.Company
	for rows.Next() {
		var company jobboard.Company
		if err := rows.Scan(&company.ID, &company.ListingURL, &company.Resource); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}
