// Package report renders a SprintMetrics record, its coaching insight and the
// health status into the markdown report, and writes it to the configured
// sinks (stdout is the caller's job; this package handles the output file and
// the GITHUB_STEP_SUMMARY append used in CI).
//
// Absent metrics render as "n/a" — the report never shows a 0 for a dataset
// that was simply unavailable.
package report
