package gh

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/sync/errgroup"

	"github.com/sprintpulse/sprintpulse/internal/metrics"
)

// FetchReviews loads reviews for every PR with bounded concurrency.
//
// Each review's comment weight is 1 when the review has a body, plus an even
// fractional share of the PR's inline comments spread across its non-author
// reviews. A PR whose review fetch fails is treated as unreviewed (logged,
// not fatal); the returned error only reflects context cancellation.
func (c *Client) FetchReviews(ctx context.Context, prs []metrics.PullRequest) (map[int][]metrics.Review, error) {
	out := make(map[int][]metrics.Review, len(prs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, pr := range prs {
		pr := pr
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reviews, err := c.prReviews(ctx, pr)
			if err != nil {
				slog.Warn("gh: review fetch failed — treating PR as unreviewed",
					"pr", pr.Number, "err", err)
				return nil
			}
			mu.Lock()
			out[pr.Number] = reviews
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// prReviews fetches one PR's reviews and distributes its inline-comment count.
func (c *Client) prReviews(ctx context.Context, pr metrics.PullRequest) ([]metrics.Review, error) {
	var ghReviews []*github.PullRequestReview
	opts := &github.ListOptions{PerPage: perPage}
	for page := 0; page < maxPages; page++ {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, c.owner, c.repo, pr.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("list reviews: %w", err)
		}
		ghReviews = append(ghReviews, reviews...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	if len(ghReviews) == 0 {
		return nil, nil
	}

	inline, err := c.inlineCommentCount(ctx, pr.Number)
	if err != nil {
		// Inline comments only refine the weight; reviews alone still count.
		slog.Warn("gh: inline comment count unavailable", "pr", pr.Number, "err", err)
		inline = 0
	}

	nonAuthor := 0
	for _, rv := range ghReviews {
		if rv.GetUser().GetLogin() != pr.Author {
			nonAuthor++
		}
	}
	var share float64
	if nonAuthor > 0 {
		share = float64(inline) / float64(nonAuthor)
	}

	out := make([]metrics.Review, 0, len(ghReviews))
	for _, rv := range ghReviews {
		var weight float64
		if strings.TrimSpace(rv.GetBody()) != "" {
			weight = 1
		}
		if rv.GetUser().GetLogin() != pr.Author {
			weight += share
		}
		out = append(out, metrics.Review{
			Reviewer:      rv.GetUser().GetLogin(),
			SubmittedAt:   rv.GetSubmittedAt().Time,
			State:         rv.GetState(),
			CommentWeight: weight,
		})
	}
	return out, nil
}

// inlineCommentCount counts a PR's review (inline) comments.
func (c *Client) inlineCommentCount(ctx context.Context, number int) (int, error) {
	count := 0
	opts := &github.PullRequestListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	for page := 0; page < maxPages; page++ {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return 0, fmt.Errorf("list comments: %w", err)
		}
		count += len(comments)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return count, nil
}

// FetchPRSizes loads additions+deletions per PR with bounded concurrency.
// PRs whose detail fetch fails are simply absent from the map.
func (c *Client) FetchPRSizes(ctx context.Context, prs []metrics.PullRequest) (map[int]metrics.Size, error) {
	out := make(map[int]metrics.Size, len(prs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, pr := range prs {
		pr := pr
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			full, _, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, pr.Number)
			if err != nil {
				slog.Warn("gh: size fetch failed", "pr", pr.Number, "err", err)
				return nil
			}
			mu.Lock()
			out[pr.Number] = metrics.Size{
				Additions: full.GetAdditions(),
				Deletions: full.GetDeletions(),
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchFirstCommits loads the earliest commit date per PR with bounded
// concurrency. PRs without a resolvable commit date are absent from the map.
func (c *Client) FetchFirstCommits(ctx context.Context, prs []metrics.PullRequest) (map[int]time.Time, error) {
	out := make(map[int]time.Time, len(prs))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, pr := range prs {
		pr := pr
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			first, ok, err := c.firstCommitDate(ctx, pr.Number)
			if err != nil {
				slog.Warn("gh: first commit fetch failed", "pr", pr.Number, "err", err)
				return nil
			}
			if !ok {
				return nil
			}
			mu.Lock()
			out[pr.Number] = first
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// firstCommitDate scans a PR's commits for the earliest author date.
// The API lists PR commits oldest-first, but author dates can be rewritten by
// rebases, so scan instead of trusting the order.
func (c *Client) firstCommitDate(ctx context.Context, number int) (time.Time, bool, error) {
	var first time.Time
	opts := &github.ListOptions{PerPage: perPage}
	for page := 0; page < maxPages; page++ {
		commits, resp, err := c.gh.PullRequests.ListCommits(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("list commits: %w", err)
		}
		for _, rc := range commits {
			date := rc.GetCommit().GetAuthor().GetDate().Time
			if date.IsZero() {
				continue
			}
			if first.IsZero() || date.Before(first) {
				first = date
			}
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return first, !first.IsZero(), nil
}
