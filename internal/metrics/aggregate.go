package metrics

import (
	"math"
	"sort"
	"time"
)

// DefaultPeriodDays is the analysis window length assumed when the caller
// does not specify one.
const DefaultPeriodDays = 14

// Input carries the already-resolved datasets one aggregation run consumes.
//
// PullRequests, Reviews and OpenPRCount are the required core; all of them
// may be empty. The remaining fields are optional auxiliary datasets — when
// missing or empty the corresponding SprintMetrics fields come back absent,
// not zero.
type Input struct {
	PullRequests []PullRequest
	Reviews      map[int][]Review
	OpenPRCount  int

	Sizes        map[int]Size
	Workflow     *WorkflowSummary
	ShipEvents   []ShipEvent
	FirstCommits map[int]time.Time

	// PeriodDays is the window length in days; DefaultPeriodDays when <= 0.
	PeriodDays int
}

// Aggregate reduces the input datasets to a single SprintMetrics record.
// It never fails: an empty PR set yields a record with every numeric field
// at its logical zero and every optional field absent.
func Aggregate(in Input) SprintMetrics {
	periodDays := in.PeriodDays
	if periodDays <= 0 {
		periodDays = DefaultPeriodDays
	}

	m := SprintMetrics{
		Throughput: len(in.PullRequests),
		WIPCount:   in.OpenPRCount,
		Trend:      TrendStable,
		PRNumbers:  make([]int, 0, len(in.PullRequests)),
	}

	cycle := make([]float64, 0, len(in.PullRequests))
	byAuthor := make(map[string]int, len(in.PullRequests))
	maxShare := 0
	for _, pr := range in.PullRequests {
		m.PRNumbers = append(m.PRNumbers, pr.Number)
		cycle = append(cycle, pr.MergedAt.Sub(pr.CreatedAt).Hours())
		byAuthor[pr.Author]++
		if byAuthor[pr.Author] > maxShare {
			maxShare = byAuthor[pr.Author]
		}
	}
	m.CycleTimeMedianHours = median(cycle)
	m.CycleTimeP90Hours = percentile(cycle, 90)

	m.CollaboratorCount = len(byAuthor)
	if len(in.PullRequests) > 0 {
		m.ConcentrationRatio = float64(maxShare) / float64(len(in.PullRequests))
	}

	m.ReviewTurnaroundMedianHours = median(turnarounds(in.PullRequests, in.Reviews))
	m.ReviewDepthScore = reviewDepth(in.PullRequests, in.Reviews)

	if len(in.Sizes) > 0 {
		totals := make([]float64, 0, len(in.Sizes))
		for _, s := range in.Sizes {
			totals = append(totals, float64(s.Total()))
		}
		med := median(totals)
		m.PRSizeMedian = &med
		m.PRSizeCategory = sizeCategory(med)
	}

	if in.Workflow != nil && in.Workflow.Total > 0 {
		rate := int(math.Round(float64(in.Workflow.Success) / float64(in.Workflow.Total) * 100))
		total := in.Workflow.Total
		m.BuildSuccessRate = &rate
		m.BuildTotalRuns = &total
	}

	if len(in.ShipEvents) > 0 {
		count := len(in.ShipEvents)
		freq := float64(count) / float64(periodDays)
		m.ShipCount = &count
		m.ShipFrequencyPerDay = &freq
		// The source label for the whole result comes from the first element
		// of the collection as supplied, before any sorting.
		m.ShipSource = in.ShipEvents[0].Source
	}

	if lead, ok := leadTime(in.PullRequests, in.ShipEvents, in.FirstCommits); ok {
		m.LeadTimeMedianHours = &lead
	}

	return m
}

// turnarounds returns, per PR, the hours from creation to the earliest review
// by someone other than the PR author. PRs without such a review contribute
// no sample — they are excluded rather than scored as 0.
func turnarounds(prs []PullRequest, reviews map[int][]Review) []float64 {
	var out []float64
	for _, pr := range prs {
		var first time.Time
		for _, rv := range reviews[pr.Number] {
			if rv.Reviewer == pr.Author {
				continue
			}
			if first.IsZero() || rv.SubmittedAt.Before(first) {
				first = rv.SubmittedAt
			}
		}
		if first.IsZero() {
			continue
		}
		out = append(out, first.Sub(pr.CreatedAt).Hours())
	}
	return out
}

// reviewDepth returns the mean per-PR sum of non-author comment weights,
// averaged only over PRs that have at least one non-author review. PRs with
// zero qualifying reviews stay out of both numerator and denominator so they
// do not drag the average toward 0.
func reviewDepth(prs []PullRequest, reviews map[int][]Review) float64 {
	var total float64
	reviewed := 0
	for _, pr := range prs {
		var weight float64
		qualifying := false
		for _, rv := range reviews[pr.Number] {
			if rv.Reviewer == pr.Author {
				continue
			}
			qualifying = true
			weight += rv.CommentWeight
		}
		if qualifying {
			reviewed++
			total += weight
		}
	}
	if reviewed == 0 {
		return 0
	}
	return total / float64(reviewed)
}

// leadTime computes the median hours from a PR's first commit to the first
// ship event at or after its merge. It needs both a non-empty event
// collection and a non-empty first-commit map; otherwise, or when no PR
// yields a usable pair, the result is absent.
func leadTime(prs []PullRequest, events []ShipEvent, firstCommits map[int]time.Time) (float64, bool) {
	if len(events) == 0 || len(firstCommits) == 0 {
		return 0, false
	}

	sorted := make([]ShipEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var samples []float64
	for _, pr := range prs {
		commit, ok := firstCommits[pr.Number]
		if !ok {
			continue
		}
		// First event at or after the merge — scanning the ascending list in
		// order, never the globally nearest one.
		for _, ev := range sorted {
			if ev.Timestamp.Before(pr.MergedAt) {
				continue
			}
			// Negative spans mean clock skew in the source data; drop the
			// sample silently rather than propagate it.
			if hours := ev.Timestamp.Sub(commit).Hours(); hours >= 0 {
				samples = append(samples, hours)
			}
			break
		}
	}
	if len(samples) == 0 {
		return 0, false
	}
	return median(samples), true
}

// sizeCategory buckets a median PR size in lines changed.
func sizeCategory(med float64) string {
	switch {
	case med < 100:
		return SizeSmall
	case med < 400:
		return SizeMedium
	default:
		return SizeLarge
	}
}
