package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sprintpulse/sprintpulse/internal/metrics"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultPeriodDays       = metrics.DefaultPeriodDays
	DefaultFetchConcurrency = 5
	DefaultTokenEnv         = "GITHUB_TOKEN"
	DefaultWatchInterval    = 1 * time.Hour
	DefaultTitle            = "Sprint report"
)

// Config is the top-level sprintpulse configuration.
type Config struct {
	Repo       RepoConfig      `yaml:"repo"`
	Report     ReportConfig    `yaml:"report"`
	Thresholds ThresholdConfig `yaml:"thresholds"`
	Webhooks   []WebhookConfig `yaml:"webhooks"`
	Watch      WatchConfig     `yaml:"watch"`
}

// RepoConfig identifies the repository to analyze and how to reach it.
type RepoConfig struct {
	// Owner and Name form the GitHub owner/repo pair.
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`

	// TokenEnv is the name of the environment variable holding the GitHub
	// token. Unauthenticated requests work for public repos but rate-limit
	// quickly.
	TokenEnv string `yaml:"token_env"`

	// PeriodDays is the analysis window length in days.
	PeriodDays int `yaml:"period_days"`

	// FetchConcurrency bounds parallel per-PR detail requests (reviews,
	// commits, sizes).
	FetchConcurrency int `yaml:"fetch_concurrency"`
}

// Token returns the GitHub token resolved from the environment.
// Returns empty string if TokenEnv is unset or the variable is not found.
func (r RepoConfig) Token() string {
	if r.TokenEnv == "" {
		return ""
	}
	return os.Getenv(r.TokenEnv)
}

// Slug returns the owner/name pair in GitHub notation.
func (r RepoConfig) Slug() string {
	return r.Owner + "/" + r.Name
}

// ReportConfig holds report output settings.
type ReportConfig struct {
	// Title is the report heading.
	Title string `yaml:"title"`

	// OutputFile is an optional path the rendered markdown is written to.
	// The report always goes to stdout; when GITHUB_STEP_SUMMARY is set it
	// is appended there as well.
	OutputFile string `yaml:"output_file"`
}

// ThresholdConfig mirrors the configurable evaluator cutoffs 1:1 in YAML.
// The concentration, review-depth and lead-time cutoffs are fixed inside the
// evaluator and intentionally have no fields here.
type ThresholdConfig struct {
	CycleTimeWarningHours  float64 `yaml:"cycle_time_warning_hours"`
	CycleTimeCriticalHours float64 `yaml:"cycle_time_critical_hours"`
	ReviewWarningHours     float64 `yaml:"review_warning_hours"`
	ReviewCriticalHours    float64 `yaml:"review_critical_hours"`
	WIPWarningRatio        float64 `yaml:"wip_warning_ratio"`
	WIPCriticalRatio       float64 `yaml:"wip_critical_ratio"`
	PRSizeWarning          float64 `yaml:"pr_size_warning"`
	PRSizeCritical         float64 `yaml:"pr_size_critical"`
	BuildSuccessWarning    int     `yaml:"build_success_warning"`
	BuildSuccessCritical   int     `yaml:"build_success_critical"`
}

// Thresholds converts the YAML fields to the evaluator's value type.
func (t ThresholdConfig) Thresholds() metrics.Thresholds {
	return metrics.Thresholds{
		CycleTimeWarningHours:  t.CycleTimeWarningHours,
		CycleTimeCriticalHours: t.CycleTimeCriticalHours,
		ReviewWarningHours:     t.ReviewWarningHours,
		ReviewCriticalHours:    t.ReviewCriticalHours,
		WIPWarningRatio:        t.WIPWarningRatio,
		WIPCriticalRatio:       t.WIPCriticalRatio,
		PRSizeWarning:          t.PRSizeWarning,
		PRSizeCritical:         t.PRSizeCritical,
		BuildSuccessWarning:    t.BuildSuccessWarning,
		BuildSuccessCritical:   t.BuildSuccessCritical,
	}
}

// WebhookConfig defines one delivery target for the report summary.
type WebhookConfig struct {
	// Type is one of: slack | teams | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// WatchConfig holds watch-mode settings.
type WatchConfig struct {
	// Interval is how often the report is regenerated in watch mode.
	Interval time.Duration `yaml:"interval"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	th := metrics.DefaultThresholds()
	return &Config{
		Repo: RepoConfig{
			TokenEnv:         DefaultTokenEnv,
			PeriodDays:       DefaultPeriodDays,
			FetchConcurrency: DefaultFetchConcurrency,
		},
		Report: ReportConfig{
			Title: DefaultTitle,
		},
		Thresholds: ThresholdConfig{
			CycleTimeWarningHours:  th.CycleTimeWarningHours,
			CycleTimeCriticalHours: th.CycleTimeCriticalHours,
			ReviewWarningHours:     th.ReviewWarningHours,
			ReviewCriticalHours:    th.ReviewCriticalHours,
			WIPWarningRatio:        th.WIPWarningRatio,
			WIPCriticalRatio:       th.WIPCriticalRatio,
			PRSizeWarning:          th.PRSizeWarning,
			PRSizeCritical:         th.PRSizeCritical,
			BuildSuccessWarning:    th.BuildSuccessWarning,
			BuildSuccessCritical:   th.BuildSuccessCritical,
		},
		Watch: WatchConfig{
			Interval: DefaultWatchInterval,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Repo.Owner == "" {
		return fmt.Errorf("repo.owner is required")
	}
	if cfg.Repo.Name == "" {
		return fmt.Errorf("repo.name is required")
	}
	if cfg.Repo.PeriodDays <= 0 {
		return fmt.Errorf("repo.period_days must be positive")
	}
	if cfg.Repo.FetchConcurrency <= 0 {
		return fmt.Errorf("repo.fetch_concurrency must be positive")
	}
	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive")
	}

	t := cfg.Thresholds
	pairs := []struct {
		name           string
		warn, critical float64
	}{
		{"cycle_time", t.CycleTimeWarningHours, t.CycleTimeCriticalHours},
		{"review", t.ReviewWarningHours, t.ReviewCriticalHours},
		{"wip", t.WIPWarningRatio, t.WIPCriticalRatio},
		{"pr_size", t.PRSizeWarning, t.PRSizeCritical},
	}
	for _, p := range pairs {
		if p.warn <= 0 || p.critical <= 0 {
			return fmt.Errorf("thresholds: %s cutoffs must be positive", p.name)
		}
		if p.critical < p.warn {
			return fmt.Errorf("thresholds: %s critical cutoff must be >= warning", p.name)
		}
	}
	// Build success thresholds run the other way: lower is worse.
	if t.BuildSuccessCritical <= 0 || t.BuildSuccessWarning <= 0 {
		return fmt.Errorf("thresholds: build_success cutoffs must be positive")
	}
	if t.BuildSuccessCritical > t.BuildSuccessWarning {
		return fmt.Errorf("thresholds: build_success critical cutoff must be <= warning")
	}

	for i, wh := range cfg.Webhooks {
		switch wh.Type {
		case "slack", "teams", "http":
		default:
			return fmt.Errorf("webhooks[%d]: unknown type %q", i, wh.Type)
		}
		if wh.URLEnv == "" {
			return fmt.Errorf("webhooks[%d]: url_env is required", i)
		}
	}
	return nil
}
