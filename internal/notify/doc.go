// Package notify pushes a compact run summary to configured webhook targets
// (Slack, Microsoft Teams, or a generic JSON endpoint) after a report run.
//
// Delivery is best-effort: failures are logged and never fail the run. URLs
// are resolved from environment variables named in the config so secrets stay
// out of the config file.
package notify
