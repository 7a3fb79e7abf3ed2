package metrics

import (
	"fmt"
	"sort"
)

// Severity orders coaching insights; critical outranks warning outranks info.
type Severity string

// Severity levels.
const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// rank maps a severity to its sort position; lower sorts first.
func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Insight categories.
const (
	CategoryKnowledgeSilo    = "knowledge-silo"
	CategoryCycleTime        = "cycle-time"
	CategoryWIPOverload      = "wip-overload"
	CategoryReviewTurnaround = "review-turnaround"
	CategoryReviewDepth      = "review-depth"
	CategoryPRSize           = "pr-size"
	CategoryBuildFailures    = "build-failures"
	CategoryLeadTime         = "lead-time"
)

// Insight is one threshold-driven coaching callout.
type Insight struct {
	Category string
	Severity Severity
	Message  string
}

// Thresholds holds the configurable warning/critical cutoffs the evaluator
// compares metrics against. It is a plain value passed explicitly to every
// call — no global state, so callers can evaluate the same metrics against
// different threshold sets concurrently.
type Thresholds struct {
	CycleTimeWarningHours  float64
	CycleTimeCriticalHours float64
	ReviewWarningHours     float64
	ReviewCriticalHours    float64
	WIPWarningRatio        float64
	WIPCriticalRatio       float64
	PRSizeWarning          float64
	PRSizeCritical         float64
	BuildSuccessWarning    int
	BuildSuccessCritical   int
}

// Fixed cutoffs deliberately not exposed through Thresholds.
const (
	concentrationWarning  = 0.6
	concentrationCritical = 0.75
	reviewDepthWarning    = 1.0
	reviewDepthCritical   = 0.3
	leadTimeWarningHours  = 168.0 // one week
)

// DefaultThresholds returns the stock cutoffs used when no configuration
// overrides them.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CycleTimeWarningHours:  48,
		CycleTimeCriticalHours: 96,
		ReviewWarningHours:     24,
		ReviewCriticalHours:    48,
		WIPWarningRatio:        2,
		WIPCriticalRatio:       3,
		PRSizeWarning:          400,
		PRSizeCritical:         1000,
		BuildSuccessWarning:    85,
		BuildSuccessCritical:   70,
	}
}

// DetectInsights evaluates every rule against m and returns at most the
// single highest-severity insight, or an empty slice when nothing fires.
//
// Rules append independently; selection is a stable sort by severity rank
// followed by truncation to the head, so ties keep rule-table order and
// switching to "return everything" only means dropping the truncation.
func DetectInsights(m SprintMetrics, t Thresholds) []Insight {
	var found []Insight
	add := func(category string, sev Severity, msg string) {
		found = append(found, Insight{Category: category, Severity: sev, Message: msg})
	}

	switch {
	case m.ConcentrationRatio >= concentrationCritical:
		add(CategoryKnowledgeSilo, SeverityCritical, fmt.Sprintf(
			"%.0f%% of merged PRs come from a single author. Spread ownership across the team before it becomes a bus-factor risk.",
			m.ConcentrationRatio*100))
	case m.ConcentrationRatio >= concentrationWarning:
		add(CategoryKnowledgeSilo, SeverityWarning, fmt.Sprintf(
			"One author accounts for %.0f%% of merged PRs. Consider pairing or rotating ownership to spread knowledge.",
			m.ConcentrationRatio*100))
	}

	switch {
	case m.CycleTimeMedianHours >= t.CycleTimeCriticalHours:
		add(CategoryCycleTime, SeverityCritical, fmt.Sprintf(
			"Median cycle time is %.1fh — PRs sit far too long between open and merge. Slice work smaller and unblock reviews.",
			m.CycleTimeMedianHours))
	case m.CycleTimeMedianHours >= t.CycleTimeWarningHours:
		add(CategoryCycleTime, SeverityWarning, fmt.Sprintf(
			"Median cycle time is %.1fh. Keeping PRs small and reviewable usually brings this down.",
			m.CycleTimeMedianHours))
	}

	ratio := wipRatio(m)
	switch {
	case ratio >= t.WIPCriticalRatio:
		add(CategoryWIPOverload, SeverityCritical, fmt.Sprintf(
			"%.1f open PRs per contributor — work in progress is piling up. Finish before starting.",
			ratio))
	case ratio >= t.WIPWarningRatio:
		add(CategoryWIPOverload, SeverityWarning, fmt.Sprintf(
			"%.1f open PRs per contributor. Watch that in-flight work keeps moving.",
			ratio))
	}

	switch {
	case m.ReviewTurnaroundMedianHours >= t.ReviewCriticalHours:
		add(CategoryReviewTurnaround, SeverityCritical, fmt.Sprintf(
			"First reviews take a median of %.1fh. Reviews this slow stall the whole flow — agree on a review SLA.",
			m.ReviewTurnaroundMedianHours))
	case m.ReviewTurnaroundMedianHours >= t.ReviewWarningHours:
		add(CategoryReviewTurnaround, SeverityWarning, fmt.Sprintf(
			"First reviews take a median of %.1fh. Nudging reviewers earlier keeps PRs fresh.",
			m.ReviewTurnaroundMedianHours))
	}

	if m.Throughput > 0 {
		switch {
		case m.ReviewDepthScore <= reviewDepthCritical:
			add(CategoryReviewDepth, SeverityCritical, fmt.Sprintf(
				"Reviews average %.1f comments per PR — approvals may be rubber stamps. Ask for substantive feedback.",
				m.ReviewDepthScore))
		case m.ReviewDepthScore <= reviewDepthWarning:
			add(CategoryReviewDepth, SeverityInfo, fmt.Sprintf(
				"Review depth is %.1f comments per PR. A question or suggestion per review keeps quality up.",
				m.ReviewDepthScore))
		}
	}

	if m.PRSizeMedian != nil {
		switch {
		case *m.PRSizeMedian >= t.PRSizeCritical:
			add(CategoryPRSize, SeverityCritical, fmt.Sprintf(
				"Median PR touches %.0f lines. PRs this large are hard to review well — split them up.",
				*m.PRSizeMedian))
		case *m.PRSizeMedian >= t.PRSizeWarning:
			add(CategoryPRSize, SeverityInfo, fmt.Sprintf(
				"Median PR touches %.0f lines. Smaller PRs get faster, better reviews.",
				*m.PRSizeMedian))
		}
	}

	if m.BuildSuccessRate != nil {
		switch {
		case *m.BuildSuccessRate < t.BuildSuccessCritical:
			add(CategoryBuildFailures, SeverityCritical, fmt.Sprintf(
				"Only %d%% of builds succeed. A red main branch blocks everyone — fix the pipeline first.",
				*m.BuildSuccessRate))
		case *m.BuildSuccessRate < t.BuildSuccessWarning:
			add(CategoryBuildFailures, SeverityWarning, fmt.Sprintf(
				"Build success rate is %d%%. Flaky or failing builds erode trust in CI.",
				*m.BuildSuccessRate))
		}
	}

	if m.LeadTimeMedianHours != nil && *m.LeadTimeMedianHours >= leadTimeWarningHours {
		add(CategoryLeadTime, SeverityWarning, fmt.Sprintf(
			"Lead time from first commit to ship is %.0fh — over a week. Shipping more often shortens feedback loops.",
			*m.LeadTimeMedianHours))
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Severity.rank() < found[j].Severity.rank()
	})
	if len(found) > 1 {
		found = found[:1]
	}
	return found
}

// HealthStatus is the single traffic-light indicator for the report header.
type HealthStatus string

// Health states.
const (
	HealthCritical HealthStatus = "critical"
	HealthWarning  HealthStatus = "warning"
	HealthHealthy  HealthStatus = "healthy"
)

// Emoji returns the indicator rendered in the report header.
func (h HealthStatus) Emoji() string {
	switch h {
	case HealthCritical:
		return "🔴"
	case HealthWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

// Health classifies the sprint into critical, warning or healthy.
//
// It aggregates a subset of the insight signals (cycle time, WIP ratio,
// concentration, build success) and is evaluated independently of
// DetectInsights — the two need not agree.
func Health(m SprintMetrics, t Thresholds) HealthStatus {
	ratio := wipRatio(m)

	if m.CycleTimeMedianHours >= t.CycleTimeCriticalHours ||
		ratio >= t.WIPCriticalRatio ||
		(m.BuildSuccessRate != nil && *m.BuildSuccessRate < t.BuildSuccessCritical) {
		return HealthCritical
	}

	if m.CycleTimeMedianHours >= t.CycleTimeWarningHours ||
		ratio >= t.WIPWarningRatio ||
		m.ConcentrationRatio >= concentrationWarning ||
		(m.BuildSuccessRate != nil && *m.BuildSuccessRate < t.BuildSuccessWarning) {
		return HealthWarning
	}

	return HealthHealthy
}

// wipRatio is open PRs per contributor, 0 when there are no contributors.
func wipRatio(m SprintMetrics) float64 {
	if m.CollaboratorCount == 0 {
		return 0
	}
	return float64(m.WIPCount) / float64(m.CollaboratorCount)
}
