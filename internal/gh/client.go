package gh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/sprintpulse/sprintpulse/internal/config"
	"github.com/sprintpulse/sprintpulse/internal/metrics"
)

const (
	perPage = 100

	// maxPages caps pagination per listing; beyond this the window filter has
	// long since stopped matching anyway.
	maxPages = 20
)

// Window is the analysis period, inclusive on both ends.
type Window struct {
	Since time.Time
	Until time.Time
}

// LastDays returns the window covering the `days` days up to now.
func LastDays(days int, now time.Time) Window {
	return Window{Since: now.AddDate(0, 0, -days), Until: now}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && !t.After(w.Until)
}

// Client wraps the GitHub API for a single owner/repo pair.
type Client struct {
	gh          *github.Client
	owner       string
	repo        string
	concurrency int
}

// New builds a Client from the repo configuration. The token (if any) is
// resolved from the environment; without one, public repos still work within
// the unauthenticated rate limit.
func New(cfg config.RepoConfig) *Client {
	c := github.NewClient(nil)
	if tok := cfg.Token(); tok != "" {
		c = c.WithAuthToken(tok)
	}
	return &Client{
		gh:          c,
		owner:       cfg.Owner,
		repo:        cfg.Name,
		concurrency: cfg.FetchConcurrency,
	}
}

// NewWithBase points the client at an alternate API base URL.
// Used by tests to target an httptest server.
func NewWithBase(baseURL, owner, repo string, concurrency int) (*Client, error) {
	c, err := github.NewClient(nil).WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("gh: base url: %w", err)
	}
	return &Client{gh: c, owner: owner, repo: repo, concurrency: concurrency}, nil
}

// FetchMergedPRs lists pull requests merged inside the window.
//
// It pages through closed PRs sorted by update time (newest first) and stops
// as soon as a page entry was last updated before the window start — a merge
// always bumps the update time, so nothing older can still qualify.
func (c *Client) FetchMergedPRs(ctx context.Context, w Window) ([]metrics.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "closed",
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}

	var out []metrics.PullRequest
	for page := 0; page < maxPages; page++ {
		prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("gh: list pull requests: %w", err)
		}

		stale := false
		for _, pr := range prs {
			if pr.MergedAt != nil && w.Contains(pr.GetMergedAt().Time) {
				out = append(out, metrics.PullRequest{
					Number:    pr.GetNumber(),
					Title:     pr.GetTitle(),
					Author:    pr.GetUser().GetLogin(),
					CreatedAt: pr.GetCreatedAt().Time,
					MergedAt:  pr.GetMergedAt().Time,
				})
			}
			if pr.GetUpdatedAt().Time.Before(w.Since) {
				stale = true
			}
		}

		if stale || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// FetchOpenPRCount returns the number of currently open pull requests,
// independent of the analysis window.
func (c *Client) FetchOpenPRCount(ctx context.Context) (int, error) {
	query := fmt.Sprintf("repo:%s/%s is:pr is:open", c.owner, c.repo)
	result, _, err := c.gh.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return 0, fmt.Errorf("gh: count open pull requests: %w", err)
	}
	return result.GetTotal(), nil
}
