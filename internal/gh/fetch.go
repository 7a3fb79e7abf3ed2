package gh

import (
	"context"
	"log/slog"

	"github.com/sprintpulse/sprintpulse/internal/metrics"
)

// FetchAll assembles every dataset one aggregation run consumes.
//
// The merged-PR listing and the review map are required and their failure is
// fatal. All auxiliary datasets (open count, workflow summary, ship events,
// first commits, sizes) degrade to absence with a warning — the aggregator
// then reports those metrics as absent rather than zero.
func (c *Client) FetchAll(ctx context.Context, w Window, periodDays int) (metrics.Input, error) {
	prs, err := c.FetchMergedPRs(ctx, w)
	if err != nil {
		return metrics.Input{}, err
	}
	slog.Info("gh: merged PRs fetched", "repo", c.owner+"/"+c.repo, "count", len(prs))

	in := metrics.Input{
		PullRequests: prs,
		PeriodDays:   periodDays,
	}

	in.Reviews, err = c.FetchReviews(ctx, prs)
	if err != nil {
		return metrics.Input{}, err
	}

	if open, err := c.FetchOpenPRCount(ctx); err != nil {
		slog.Warn("gh: open PR count unavailable", "err", err)
	} else {
		in.OpenPRCount = open
	}

	if wf, err := c.FetchWorkflowSummary(ctx, w); err != nil {
		slog.Warn("gh: workflow summary unavailable", "err", err)
	} else {
		in.Workflow = wf
	}

	if events, err := c.FetchShipEvents(ctx, w); err != nil {
		slog.Warn("gh: ship events unavailable", "err", err)
	} else {
		in.ShipEvents = events
	}

	// First commits only matter for lead time, which also needs ship events.
	if len(in.ShipEvents) > 0 {
		if fc, err := c.FetchFirstCommits(ctx, prs); err != nil {
			slog.Warn("gh: first commit dates unavailable", "err", err)
		} else {
			in.FirstCommits = fc
		}
	}

	if sizes, err := c.FetchPRSizes(ctx, prs); err != nil {
		slog.Warn("gh: PR sizes unavailable", "err", err)
	} else {
		in.Sizes = sizes
	}

	return in, nil
}
