// Package main hosts the boardcrawler entrypoint.
//
// Architecture overview:
//   - Crawl pipeline: internal/jobboard holds the per-site adapter. A
//     ListingLoader fetches the canonical listing page (with optional
//     headless promotion for client-rendered boards), a ListingExtractor
//     normalizes each posting node, a DescriptionFetcher enriches records
//     with full descriptions, and the Orchestrator fans processing out over
//     a bounded worker pool before folding the outcomes into a per-crawl
//     report.
//   - Persistence & fanout: job records and crawl reports go to Postgres
//     (or the in-memory store for local runs), raw listing pages are
//     archived to GCS or the local filesystem, and a compact Pub/Sub event
//     is published when a completion topic is configured.
//   - Configuration & plumbing: Viper populates config from files and env
//     vars, zap provides structured logging, and Prometheus metrics are
//     exported via the /metrics handler when serving.
//   - Entry points: 'crawl' runs one pass over the configured companies and
//     exits; 'serve' runs the HTTP API for triggering crawls remotely.
package main

import "github.com/jobwire/boardcrawler/cmd"

func main() {
	cmd.Execute()
}
