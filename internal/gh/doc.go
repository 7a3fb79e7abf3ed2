// Package gh fetches the datasets one report run needs from the GitHub REST
// API: merged pull requests, their reviews and sizes, open-PR count, workflow
// runs, deployments (with a release fallback) and per-PR first commits.
//
// Per-PR detail requests run with bounded concurrency. Optional datasets
// degrade to absence with a warning log instead of failing the run — only the
// merged-PR listing itself is fatal. Everything is handed to internal/metrics
// as finished in-memory collections; no fetching happens past this package.
package gh
