// Package metrics is the pure computation core of sprintpulse.
//
// aggregate.go reduces already-fetched pull-request, review, build and
// deployment records into a single SprintMetrics value. insights.go turns
// that value into threshold-driven coaching callouts and an overall health
// status. stats.go holds the shared median/percentile helpers.
//
// Nothing in this package performs I/O or holds state between calls: every
// function is total over well-formed input, returns fresh values, and is safe
// to call concurrently. Optional datasets (PR sizes, CI summary, ship events,
// first-commit dates) are modelled as explicit absence — a nil pointer or
// empty label — never as sentinel zeros.
package metrics
