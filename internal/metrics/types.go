package metrics

import "time"

// PullRequest is one pull request merged inside the analysis window.
// MergedAt is always at or after CreatedAt.
type PullRequest struct {
	Number    int
	Title     string
	Author    string
	CreatedAt time.Time
	MergedAt  time.Time
}

// Review is a single submitted review on a pull request.
type Review struct {
	Reviewer    string
	SubmittedAt time.Time
	State       string // "APPROVED", "CHANGES_REQUESTED", "COMMENTED", ...

	// CommentWeight is 1 when the review carried a body comment, plus an even
	// fractional share of the PR's inline comments across all non-author
	// reviews of that PR. Never negative, may be non-integral.
	CommentWeight float64
}

// Size is the line-change footprint of one pull request.
type Size struct {
	Additions int
	Deletions int
}

// Total returns additions plus deletions.
func (s Size) Total() int { return s.Additions + s.Deletions }

// WorkflowSummary aggregates completed CI runs inside the window.
// Cancelled and skipped runs are excluded upstream.
type WorkflowSummary struct {
	Total   int
	Success int
	Failure int
}

// Ship event sources.
const (
	SourceDeployment = "deployment"
	SourceRelease    = "release"
)

// ShipEvent is a deployment or release, used as a proxy for "shipped to users".
type ShipEvent struct {
	ID        int64
	Ref       string
	Timestamp time.Time
	Source    string // SourceDeployment | SourceRelease
	Label     string
}

// Categories for the median PR size.
const (
	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeLarge  = "large"
)

// TrendStable is the only trend value produced today. Comparing against a
// prior period would need that period's aggregated metrics as a second input.
const TrendStable = "stable"

// SprintMetrics is the flat record one aggregation run produces.
//
// Optional fields are nil (pointers) or empty (labels) when the underlying
// dataset was not supplied or yielded no data — absent and measured-zero are
// deliberately distinguishable.
type SprintMetrics struct {
	CycleTimeMedianHours float64
	CycleTimeP90Hours    float64
	Throughput           int
	WIPCount             int

	PRSizeMedian   *float64
	PRSizeCategory string // "" when size data is absent

	BuildSuccessRate *int // integer percent, rounded to nearest
	BuildTotalRuns   *int

	ShipFrequencyPerDay *float64
	ShipCount           *int
	ShipSource          string // "" when there are no ship events

	LeadTimeMedianHours *float64

	ReviewTurnaroundMedianHours float64
	CollaboratorCount           int
	ConcentrationRatio          float64
	ReviewDepthScore            float64

	Trend     string
	PRNumbers []int
}
