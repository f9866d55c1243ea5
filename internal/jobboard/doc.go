// Package jobboard implements the per-site crawl adapter pipeline: parsing
// listing nodes into job records, fetching long-form descriptions, persisting
// records, and folding per-item outcomes into a single crawl result.
package jobboard
