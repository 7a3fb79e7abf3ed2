package metrics

import (
	"strings"
	"testing"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// healthyMetrics returns a SprintMetrics that fires no rule at the default
// thresholds. Individual tests override single fields from here.
func healthyMetrics() SprintMetrics {
	return SprintMetrics{
		CycleTimeMedianHours:        12,
		CycleTimeP90Hours:           30,
		Throughput:                  8,
		WIPCount:                    4,
		ReviewTurnaroundMedianHours: 4,
		CollaboratorCount:           4,
		ConcentrationRatio:          0.4,
		ReviewDepthScore:            2.5,
		Trend:                       TrendStable,
	}
}

func TestDetectInsights_NothingFires(t *testing.T) {
	got := DetectInsights(healthyMetrics(), DefaultThresholds())
	if len(got) != 0 {
		t.Errorf("DetectInsights = %+v, want empty", got)
	}
}

func TestDetectInsights_NeverMoreThanOne(t *testing.T) {
	// Everything on fire at once.
	m := healthyMetrics()
	m.ConcentrationRatio = 0.9
	m.CycleTimeMedianHours = 200
	m.WIPCount = 40
	m.ReviewTurnaroundMedianHours = 100
	m.ReviewDepthScore = 0.1
	m.PRSizeMedian = floatPtr(2000)
	m.BuildSuccessRate = intPtr(10)
	m.LeadTimeMedianHours = floatPtr(500)

	got := DetectInsights(m, DefaultThresholds())
	if len(got) != 1 {
		t.Fatalf("DetectInsights returned %d insights, want 1", len(got))
	}
	if got[0].Severity != SeverityCritical {
		t.Errorf("Severity = %q, want critical", got[0].Severity)
	}
	// Stable sort: with several criticals, rule-table order keeps
	// concentration first.
	if got[0].Category != CategoryKnowledgeSilo {
		t.Errorf("Category = %q, want %q", got[0].Category, CategoryKnowledgeSilo)
	}
}

func TestDetectInsights_CriticalBeatsWarning(t *testing.T) {
	m := healthyMetrics()
	m.CycleTimeMedianHours = 50 // warning at default 48
	m.ConcentrationRatio = 0.8  // critical at fixed 0.75

	got := DetectInsights(m, DefaultThresholds())
	if len(got) != 1 {
		t.Fatalf("DetectInsights returned %d insights, want 1", len(got))
	}
	if got[0].Category != CategoryKnowledgeSilo || got[0].Severity != SeverityCritical {
		t.Errorf("got %s/%s, want knowledge-silo/critical", got[0].Category, got[0].Severity)
	}
}

func TestDetectInsights_KnowledgeSilo(t *testing.T) {
	tests := []struct {
		name    string
		ratio   float64
		wantSev Severity
		wantHit bool
	}{
		{"below warning", 0.59, "", false},
		{"warning boundary inclusive", 0.6, SeverityWarning, true},
		{"critical boundary inclusive", 0.75, SeverityCritical, true},
		{"four of five PRs by one author", 0.8, SeverityCritical, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := healthyMetrics()
			m.ConcentrationRatio = tc.ratio
			got := DetectInsights(m, DefaultThresholds())

			if !tc.wantHit {
				if len(got) != 0 {
					t.Fatalf("got %+v, want none", got)
				}
				return
			}
			if len(got) != 1 || got[0].Category != CategoryKnowledgeSilo {
				t.Fatalf("got %+v, want one knowledge-silo insight", got)
			}
			if got[0].Severity != tc.wantSev {
				t.Errorf("Severity = %q, want %q", got[0].Severity, tc.wantSev)
			}
			if got[0].Message == "" {
				t.Error("Message must be non-empty")
			}
		})
	}
}

func TestDetectInsights_CycleTimeBoundaries(t *testing.T) {
	th := DefaultThresholds()

	m := healthyMetrics()
	m.CycleTimeMedianHours = th.CycleTimeWarningHours // inclusive boundary
	got := DetectInsights(m, th)
	if len(got) != 1 || got[0].Severity != SeverityWarning || got[0].Category != CategoryCycleTime {
		t.Errorf("at warning boundary got %+v, want cycle-time warning", got)
	}

	m.CycleTimeMedianHours = th.CycleTimeCriticalHours
	got = DetectInsights(m, th)
	if len(got) != 1 || got[0].Severity != SeverityCritical {
		t.Errorf("at critical boundary got %+v, want cycle-time critical", got)
	}
}

func TestDetectInsights_WIPRatio(t *testing.T) {
	m := healthyMetrics()
	m.CollaboratorCount = 3
	m.WIPCount = 9 // ratio 3.0 — critical at default
	got := DetectInsights(m, DefaultThresholds())
	if len(got) != 1 || got[0].Category != CategoryWIPOverload || got[0].Severity != SeverityCritical {
		t.Errorf("got %+v, want wip-overload critical", got)
	}

	// No collaborators → ratio 0, never fires even with open PRs.
	m = healthyMetrics()
	m.CollaboratorCount = 0
	m.Throughput = 0
	m.WIPCount = 50
	got = DetectInsights(m, DefaultThresholds())
	if len(got) != 0 {
		t.Errorf("got %+v, want none when there are no collaborators", got)
	}
}

func TestDetectInsights_ReviewDepth(t *testing.T) {
	th := DefaultThresholds()

	t.Run("critical at low score", func(t *testing.T) {
		m := healthyMetrics()
		m.ReviewDepthScore = 0.2
		got := DetectInsights(m, th)
		if len(got) != 1 || got[0].Category != CategoryReviewDepth || got[0].Severity != SeverityCritical {
			t.Errorf("got %+v, want review-depth critical", got)
		}
	})

	t.Run("info between critical and warning cutoffs", func(t *testing.T) {
		m := healthyMetrics()
		m.ReviewDepthScore = 0.8
		got := DetectInsights(m, th)
		if len(got) != 1 || got[0].Category != CategoryReviewDepth || got[0].Severity != SeverityInfo {
			t.Errorf("got %+v, want review-depth info", got)
		}
	})

	t.Run("skipped when throughput is zero", func(t *testing.T) {
		m := healthyMetrics()
		m.Throughput = 0
		m.ReviewDepthScore = 0
		m.ConcentrationRatio = 0
		got := DetectInsights(m, th)
		if len(got) != 0 {
			t.Errorf("got %+v, want none with zero throughput", got)
		}
	})
}

func TestDetectInsights_PRSizeIsInfoNotWarning(t *testing.T) {
	m := healthyMetrics()
	m.PRSizeMedian = floatPtr(500) // over warning 400, under critical 1000
	got := DetectInsights(m, DefaultThresholds())
	if len(got) != 1 || got[0].Category != CategoryPRSize {
		t.Fatalf("got %+v, want one pr-size insight", got)
	}
	if got[0].Severity != SeverityInfo {
		t.Errorf("Severity = %q, want info", got[0].Severity)
	}

	m.PRSizeMedian = nil
	if got := DetectInsights(m, DefaultThresholds()); len(got) != 0 {
		t.Errorf("got %+v, want none with absent size", got)
	}
}

func TestDetectInsights_BuildSuccess(t *testing.T) {
	th := DefaultThresholds()

	m := healthyMetrics()
	m.BuildSuccessRate = intPtr(th.BuildSuccessWarning) // equal — strict <, no fire
	if got := DetectInsights(m, th); len(got) != 0 {
		t.Errorf("got %+v, want none at exactly the warning rate", got)
	}

	m.BuildSuccessRate = intPtr(th.BuildSuccessWarning - 1)
	got := DetectInsights(m, th)
	if len(got) != 1 || got[0].Category != CategoryBuildFailures || got[0].Severity != SeverityWarning {
		t.Errorf("got %+v, want build-failures warning", got)
	}

	m.BuildSuccessRate = intPtr(th.BuildSuccessCritical - 1)
	got = DetectInsights(m, th)
	if len(got) != 1 || got[0].Severity != SeverityCritical {
		t.Errorf("got %+v, want build-failures critical", got)
	}
}

func TestDetectInsights_LeadTime(t *testing.T) {
	m := healthyMetrics()
	m.LeadTimeMedianHours = floatPtr(168) // fixed one-week cutoff, inclusive
	got := DetectInsights(m, DefaultThresholds())
	if len(got) != 1 || got[0].Category != CategoryLeadTime || got[0].Severity != SeverityWarning {
		t.Errorf("got %+v, want lead-time warning", got)
	}
	if !strings.Contains(got[0].Message, "168") {
		t.Errorf("Message = %q, want the concrete value embedded", got[0].Message)
	}

	m.LeadTimeMedianHours = floatPtr(167)
	if got := DetectInsights(m, DefaultThresholds()); len(got) != 0 {
		t.Errorf("got %+v, want none under the cutoff", got)
	}

	m.LeadTimeMedianHours = nil
	if got := DetectInsights(m, DefaultThresholds()); len(got) != 0 {
		t.Errorf("got %+v, want none when lead time is absent", got)
	}
}

func TestHealth(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name   string
		mutate func(*SprintMetrics)
		want   HealthStatus
	}{
		{"all green", func(*SprintMetrics) {}, HealthHealthy},
		{
			"cycle time critical overrides everything",
			func(m *SprintMetrics) { m.CycleTimeMedianHours = th.CycleTimeCriticalHours },
			HealthCritical,
		},
		{
			"wip ratio critical",
			func(m *SprintMetrics) { m.WIPCount = m.CollaboratorCount * 3 },
			HealthCritical,
		},
		{
			"build rate below critical",
			func(m *SprintMetrics) { m.BuildSuccessRate = intPtr(th.BuildSuccessCritical - 1) },
			HealthCritical,
		},
		{
			"cycle time warning",
			func(m *SprintMetrics) { m.CycleTimeMedianHours = th.CycleTimeWarningHours },
			HealthWarning,
		},
		{
			"wip ratio warning",
			func(m *SprintMetrics) { m.WIPCount = m.CollaboratorCount * 2 },
			HealthWarning,
		},
		{
			"concentration warning",
			func(m *SprintMetrics) { m.ConcentrationRatio = 0.6 },
			HealthWarning,
		},
		{
			"build rate below warning",
			func(m *SprintMetrics) { m.BuildSuccessRate = intPtr(th.BuildSuccessWarning - 1) },
			HealthWarning,
		},
		{
			"absent build rate stays healthy",
			func(m *SprintMetrics) { m.BuildSuccessRate = nil },
			HealthHealthy,
		},
		{
			// Concentration critical only feeds the warning tier of the
			// status check; insights may disagree and that is fine.
			"concentration critical is still a warning status",
			func(m *SprintMetrics) { m.ConcentrationRatio = 0.8 },
			HealthWarning,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := healthyMetrics()
			tc.mutate(&m)
			if got := Health(m, th); got != tc.want {
				t.Errorf("Health = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHealthStatus_Emoji(t *testing.T) {
	tests := []struct {
		h    HealthStatus
		want string
	}{
		{HealthCritical, "🔴"},
		{HealthWarning, "🟡"},
		{HealthHealthy, "🟢"},
	}
	for _, tc := range tests {
		if got := tc.h.Emoji(); got != tc.want {
			t.Errorf("%s.Emoji() = %q, want %q", tc.h, got, tc.want)
		}
	}
}

func TestSeverityRank_Ordering(t *testing.T) {
	if !(SeverityCritical.rank() < SeverityWarning.rank() && SeverityWarning.rank() < SeverityInfo.rank()) {
		t.Error("severity ranks must order critical < warning < info")
	}
}
