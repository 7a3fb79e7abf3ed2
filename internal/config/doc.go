// Package config loads and validates the sprintpulse YAML configuration:
// the target repository and analysis window, threshold overrides for the
// insight evaluator, report output settings and webhook targets.
//
// Secrets (GitHub token, webhook URLs) are never stored in the file itself —
// the config names the environment variable and the value is resolved at use
// time. Watch provides fsnotify-based hot-reload for long-running watch mode.
package config
