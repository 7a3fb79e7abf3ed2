package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/sprintpulse/sprintpulse/internal/config"
	"github.com/sprintpulse/sprintpulse/internal/metrics"
)

const sendTimeout = 10 * time.Second

// Summary is the compact payload pushed to webhooks after a run.
type Summary struct {
	Repo     string                `json:"repo"`
	Health   metrics.HealthStatus  `json:"health"`
	Metrics  metrics.SprintMetrics `json:"metrics"`
	Insights []metrics.Insight     `json:"insights,omitempty"`
}

// Notifier delivers run summaries to the configured webhook targets.
type Notifier struct {
	targets []config.WebhookConfig
	client  *http.Client
}

// New creates a Notifier. An empty target list is valid — Push is a no-op.
func New(targets []config.WebhookConfig) *Notifier {
	return &Notifier{
		targets: targets,
		client:  &http.Client{Timeout: sendTimeout},
	}
}

// Push sends s to every configured target. Errors are logged, not returned:
// a dead webhook must not fail the report run.
func (n *Notifier) Push(ctx context.Context, s Summary) {
	for _, wh := range n.targets {
		url := wh.URL()
		if url == "" {
			slog.Warn("notify: webhook url env not set — skipping", "type", wh.Type, "env", wh.URLEnv)
			continue
		}

		var err error
		switch wh.Type {
		case "slack":
			err = n.sendSlack(ctx, url, s)
		case "teams":
			err = n.sendTeams(ctx, url, s)
		default: // "http" — validated at config load
			err = n.sendJSON(ctx, url, s)
		}

		if err != nil {
			slog.Error("notify: webhook delivery failed", "type", wh.Type, "err", err)
		} else {
			slog.Debug("notify: webhook delivered", "type", wh.Type)
		}
	}
}

func (n *Notifier) sendSlack(ctx context.Context, url string, s Summary) error {
	body, _ := json.Marshal(map[string]string{
		"text": fmt.Sprintf("%s *%s* — sprint health for `%s`: %s",
			s.Health.Emoji(), s.Health, s.Repo, headline(s)),
	})
	return n.post(ctx, url, body)
}

func (n *Notifier) sendTeams(ctx context.Context, url string, s Summary) error {
	payload := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": healthColor(s.Health),
		"summary":    fmt.Sprintf("Sprint health: %s", s.Health),
		"title":      fmt.Sprintf("sprintpulse: %s is %s", s.Repo, s.Health),
		"text":       headline(s),
	}
	body, _ := json.Marshal(payload)
	return n.post(ctx, url, body)
}

func (n *Notifier) sendJSON(ctx context.Context, url string, s Summary) error {
	body, _ := json.Marshal(s)
	return n.post(ctx, url, body)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// headline is the one-line text shared by the chat-style payloads.
func headline(s Summary) string {
	line := fmt.Sprintf("%d PRs merged, median cycle time %.1fh",
		s.Metrics.Throughput, s.Metrics.CycleTimeMedianHours)
	if len(s.Insights) > 0 {
		line += " — " + s.Insights[0].Message
	}
	return line
}

func healthColor(h metrics.HealthStatus) string {
	switch h {
	case metrics.HealthCritical:
		return "D93F0B"
	case metrics.HealthWarning:
		return "FBCA04"
	default:
		return "0E8A16"
	}
}
