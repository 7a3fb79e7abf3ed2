package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/sprintpulse/sprintpulse/internal/metrics"
)

// absent is rendered wherever an optional dataset yielded no data.
const absent = "n/a"

// Data is everything the markdown template renders.
type Data struct {
	Title       string
	Repo        string
	PeriodDays  int
	GeneratedAt time.Time

	Metrics  metrics.SprintMetrics
	Insights []metrics.Insight
	Health   metrics.HealthStatus
}

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"hours":      fmtHours,
	"optHours":   fmtOptHours,
	"size":       fmtSize,
	"builds":     fmtBuilds,
	"ships":      fmtShips,
	"pct":        func(ratio float64) string { return fmt.Sprintf("%.0f%%", ratio*100) },
	"depth":      func(score float64) string { return fmt.Sprintf("%.1f", score) },
	"numbers":    fmtNumbers,
	"capitalize": capitalize,
}).Parse(reportTemplate))

const reportTemplate = `# {{ .Title }}

{{ .Health.Emoji }} **{{ capitalize (printf "%s" .Health) }}** — ` + "`{{ .Repo }}`" + `, last {{ .PeriodDays }} days (generated {{ .GeneratedAt.Format "2006-01-02" }})

## Delivery

| Metric | Value |
| --- | --- |
| Cycle time (median) | {{ hours .Metrics.CycleTimeMedianHours }} |
| Cycle time (p90) | {{ hours .Metrics.CycleTimeP90Hours }} |
| Throughput | {{ .Metrics.Throughput }} merged |
| Open PRs (WIP) | {{ .Metrics.WIPCount }} |
| PR size (median) | {{ size .Metrics }} |
| Build success | {{ builds .Metrics }} |
| Ship frequency | {{ ships .Metrics }} |
| Lead time (median) | {{ optHours .Metrics.LeadTimeMedianHours }} |

## Collaboration

| Metric | Value |
| --- | --- |
| Review turnaround (median) | {{ hours .Metrics.ReviewTurnaroundMedianHours }} |
| Review depth | {{ depth .Metrics.ReviewDepthScore }} comments/PR |
| Contributors | {{ .Metrics.CollaboratorCount }} |
| Top-author share | {{ pct .Metrics.ConcentrationRatio }} |
{{ if .Insights }}
## Coaching
{{ range .Insights }}
> **{{ .Severity }}** ` + "`{{ .Category }}`" + ` — {{ .Message }}
{{ end }}{{ end }}
Cycle-time trend: {{ .Metrics.Trend }}.

_PRs included: {{ numbers .Metrics.PRNumbers }}_
`

// Render produces the markdown report for d.
func Render(d Data) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, d); err != nil {
		return "", fmt.Errorf("report: render: %w", err)
	}
	return sb.String(), nil
}

// WriteOutputs writes the rendered markdown to path (when non-empty) and
// appends it to the file named by GITHUB_STEP_SUMMARY (when set).
func WriteOutputs(md, path string) error {
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("report: create output dir: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
			return fmt.Errorf("report: write file: %w", err)
		}
	}

	if summary := os.Getenv("GITHUB_STEP_SUMMARY"); summary != "" {
		f, err := os.OpenFile(summary, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("report: open step summary: %w", err)
		}
		defer f.Close()
		if _, err := f.WriteString(md + "\n"); err != nil {
			return fmt.Errorf("report: append step summary: %w", err)
		}
	}
	return nil
}

func fmtHours(h float64) string {
	return fmt.Sprintf("%.1f h", h)
}

func fmtOptHours(h *float64) string {
	if h == nil {
		return absent
	}
	return fmtHours(*h)
}

func fmtSize(m metrics.SprintMetrics) string {
	if m.PRSizeMedian == nil {
		return absent
	}
	return fmt.Sprintf("%.0f lines (%s)", *m.PRSizeMedian, m.PRSizeCategory)
}

func fmtBuilds(m metrics.SprintMetrics) string {
	if m.BuildSuccessRate == nil || m.BuildTotalRuns == nil {
		return absent
	}
	return fmt.Sprintf("%d%% of %d runs", *m.BuildSuccessRate, *m.BuildTotalRuns)
}

func fmtShips(m metrics.SprintMetrics) string {
	if m.ShipFrequencyPerDay == nil || m.ShipCount == nil {
		return absent
	}
	return fmt.Sprintf("%.2f/day (%d %ss)", *m.ShipFrequencyPerDay, *m.ShipCount, m.ShipSource)
}

func fmtNumbers(nums []int) string {
	if len(nums) == 0 {
		return "none"
	}
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = "#" + strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
