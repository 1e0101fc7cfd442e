package aggregate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"

	"workdigest/internal"
	"workdigest/internal/client"
	"workdigest/internal/digest"
	"workdigest/internal/logger"
	"workdigest/internal/paginate"
)

// IssueSearcher fetches one page of GitHub issue search results.
type IssueSearcher interface {
	SearchIssues(ctx context.Context, query string, page, perPage int) ([]*gh.Issue, int, error)
}

type githubAggregator struct {
	search IssueSearcher
	query  string
	filter digest.Filter
}

type githubRawResult struct {
	PullRequests []*gh.Issue
}

// NewGitHub aggregates pull requests cfg.Username merged during year, keeping
// those whose repository matches cfg.OrgFilter.
func NewGitHub(search IssueSearcher, cfg internal.GitHubConfig, year int) SourceAggregator {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
	return &githubAggregator{
		search: search,
		query:  client.MergedPRQuery(cfg.Username, year),
		filter: digest.All(
			digest.NamespaceContains(cfg.OrgFilter),
			digest.CompletedBetween(start, end),
		),
	}
}

func (agg *githubAggregator) Source() internal.SourceType {
	return internal.SourceTypeGitHub
}

func (agg *githubAggregator) Extract(ctx context.Context, progress paginate.Progress) (RawResult, error) {
	logger.Info("Fetching merged GitHub pull requests", "query", agg.query)

	pager := paginate.NewOffsetPager(func(ctx context.Context, page, perPage int) ([]*gh.Issue, int, error) {
		logger.Debug("Requesting search page", "page", page, "per_page", perPage)
		return agg.search.SearchIssues(ctx, agg.query, page, perPage)
	}, paginate.DefaultPageSize)

	prs, err := paginate.Collect(ctx, pager, progress)
	if err != nil {
		return nil, err
	}
	return githubRawResult{PullRequests: prs}, nil
}

func (agg *githubAggregator) Enrich(raw RawResult) ([]internal.Record, error) {
	ghRaw, ok := raw.(githubRawResult)
	if !ok {
		return nil, fmt.Errorf("unexpected raw result type for github aggregator: %T", raw)
	}

	records := make([]internal.Record, 0, len(ghRaw.PullRequests))
	for _, pr := range ghRaw.PullRequests {
		records = append(records, NormalizePullRequest(pr))
	}

	kept := digest.Apply(records, agg.filter)
	logger.Debug("Filtered pull requests", "fetched", len(records), "kept", len(kept))
	return kept, nil
}

func (agg *githubAggregator) Format(records []internal.Record) (string, bool) {
	return digest.Format(records, digest.GitHubTemplate, digest.ByCompletedDesc)
}

// NormalizePullRequest converts a search result item into a Record. The
// namespace is the owner/name pair taken from the repository API URL.
func NormalizePullRequest(pr *gh.Issue) internal.Record {
	return internal.Record{
		Namespace:  repoName(pr.GetRepositoryURL()),
		Identifier: strconv.Itoa(pr.GetNumber()),
		Title:      pr.GetTitle(),
		Completed:  pr.GetClosedAt().Time,
		URL:        pr.GetHTMLURL(),
		Body:       pr.GetBody(),
	}
}

func repoName(repositoryURL string) string {
	parts := strings.Split(strings.TrimRight(repositoryURL, "/"), "/")
	if len(parts) < 2 {
		return repositoryURL
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}
