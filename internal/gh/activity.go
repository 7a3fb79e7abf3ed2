package gh

import (
	"context"
	"fmt"

	"github.com/google/go-github/v62/github"

	"github.com/sprintpulse/sprintpulse/internal/metrics"
)

// Workflow-run conclusions excluded from the build summary: neither a signal
// of pipeline health nor of failure.
func excludedConclusion(c string) bool {
	return c == "cancelled" || c == "skipped"
}

// FetchWorkflowSummary counts completed workflow runs created inside the
// window. Cancelled and skipped runs are excluded entirely. Returns nil when
// no run qualifies — build metrics are then absent, not zero.
func (c *Client) FetchWorkflowSummary(ctx context.Context, w Window) (*metrics.WorkflowSummary, error) {
	opts := &github.ListWorkflowRunsOptions{
		Status:      "completed",
		Created:     fmt.Sprintf(">=%s", w.Since.Format("2006-01-02")),
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var summary metrics.WorkflowSummary
	for page := 0; page < maxPages; page++ {
		runs, resp, err := c.gh.Actions.ListRepositoryWorkflowRuns(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("gh: list workflow runs: %w", err)
		}
		for _, run := range runs.WorkflowRuns {
			conclusion := run.GetConclusion()
			if excludedConclusion(conclusion) {
				continue
			}
			summary.Total++
			switch conclusion {
			case "success":
				summary.Success++
			case "failure":
				summary.Failure++
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	if summary.Total == 0 {
		return nil, nil
	}
	return &summary, nil
}

// FetchShipEvents returns deployments created inside the window, falling back
// to releases when the repository has no deployments there. The slice is
// empty (never an error) when neither source has events in the window.
func (c *Client) FetchShipEvents(ctx context.Context, w Window) ([]metrics.ShipEvent, error) {
	events, err := c.deployments(ctx, w)
	if err != nil {
		return nil, err
	}
	if len(events) > 0 {
		return events, nil
	}
	return c.releases(ctx, w)
}

func (c *Client) deployments(ctx context.Context, w Window) ([]metrics.ShipEvent, error) {
	var out []metrics.ShipEvent
	opts := &github.DeploymentsListOptions{ListOptions: github.ListOptions{PerPage: perPage}}
	for page := 0; page < maxPages; page++ {
		deps, resp, err := c.gh.Repositories.ListDeployments(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("gh: list deployments: %w", err)
		}
		for _, d := range deps {
			created := d.GetCreatedAt().Time
			if !w.Contains(created) {
				continue
			}
			out = append(out, metrics.ShipEvent{
				ID:        d.GetID(),
				Ref:       d.GetSHA(),
				Timestamp: created,
				Source:    metrics.SourceDeployment,
				Label:     d.GetEnvironment(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

func (c *Client) releases(ctx context.Context, w Window) ([]metrics.ShipEvent, error) {
	var out []metrics.ShipEvent
	opts := &github.ListOptions{PerPage: perPage}
	for page := 0; page < maxPages; page++ {
		rels, resp, err := c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("gh: list releases: %w", err)
		}
		for _, r := range rels {
			published := r.GetPublishedAt().Time
			if !w.Contains(published) {
				continue
			}
			out = append(out, metrics.ShipEvent{
				ID:        r.GetID(),
				Ref:       r.GetTagName(),
				Timestamp: published,
				Source:    metrics.SourceRelease,
				Label:     r.GetName(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}
