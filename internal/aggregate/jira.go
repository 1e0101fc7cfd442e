package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"workdigest/internal"
	"workdigest/internal/adf"
	"workdigest/internal/client"
	"workdigest/internal/digest"
	"workdigest/internal/logger"
	"workdigest/internal/paginate"
)

// jiraTimeLayouts are the timestamp shapes Jira Cloud emits.
var jiraTimeLayouts = []string{
	"2006-01-02T15:04:05.000-0700",
	time.RFC3339,
	"2006-01-02",
}

// IssueQuerier fetches one page of JQL search results.
type IssueQuerier interface {
	SearchIssues(ctx context.Context, q client.JQLQuery, token string) ([]gjson.Result, string, error)
	BrowseURL(key string) string
}

type jiraAggregator struct {
	search    IssueQuerier
	query     client.JQLQuery
	acFieldID string
	filter    digest.Filter
}

type jiraRawResult struct {
	Issues []gjson.Result
}

// NewJira aggregates issues assigned to cfg.AssigneeAccountID and resolved
// during year, keeping those whose project matches cfg.ProjectFilter.
func NewJira(search IssueQuerier, cfg internal.JiraConfig, year int) SourceAggregator {
	return &jiraAggregator{
		search: search,
		query: client.JQLQuery{
			JQL: client.CompletedIssuesJQL(cfg.AssigneeAccountID, year),
			Fields: []string{
				"key", "summary", "comment", "description", cfg.ACFieldID,
				"project", "resolutiondate", "created",
			},
			MaxResults: paginate.DefaultPageSize,
		},
		acFieldID: cfg.ACFieldID,
		filter:    digest.NamespaceContains(cfg.ProjectFilter),
	}
}

func (agg *jiraAggregator) Source() internal.SourceType {
	return internal.SourceTypeJira
}

func (agg *jiraAggregator) Extract(ctx context.Context, progress paginate.Progress) (RawResult, error) {
	logger.Info("Fetching completed Jira tickets", "jql", agg.query.JQL)

	pager := paginate.NewCursorPager(func(ctx context.Context, token string) ([]gjson.Result, string, error) {
		logger.Debug("Requesting JQL page", "token", token)
		return agg.search.SearchIssues(ctx, agg.query, token)
	})

	issues, err := paginate.Collect(ctx, pager, progress)
	if err != nil {
		return nil, err
	}
	return jiraRawResult{Issues: issues}, nil
}

func (agg *jiraAggregator) Enrich(raw RawResult) ([]internal.Record, error) {
	jiraRaw, ok := raw.(jiraRawResult)
	if !ok {
		return nil, fmt.Errorf("unexpected raw result type for jira aggregator: %T", raw)
	}

	records := make([]internal.Record, 0, len(jiraRaw.Issues))
	for _, issue := range jiraRaw.Issues {
		records = append(records, NormalizeIssue(issue, agg.acFieldID, agg.search.BrowseURL))
	}

	kept := digest.Apply(records, agg.filter)
	logger.Debug("Filtered tickets", "fetched", len(records), "kept", len(kept))
	return kept, nil
}

// Format keeps the backend order (newest created first).
func (agg *jiraAggregator) Format(records []internal.Record) (string, bool) {
	return digest.Format(records, digest.JiraTemplate, nil)
}

// NormalizeIssue converts a raw Jira issue into a Record. Rich-text fields
// are flattened; the acceptance criteria live in the custom field acFieldID.
func NormalizeIssue(issue gjson.Result, acFieldID string, browseURL func(key string) string) internal.Record {
	fields := issue.Get("fields")

	key := stringOr(issue.Get("key"), "N/A")
	url := "N/A"
	if issue.Get("key").Type == gjson.String {
		url = browseURL(key)
	}
	namespace := fields.Get("project.key").String()
	if namespace == "" {
		namespace, _, _ = strings.Cut(key, "-")
	}

	rec := internal.Record{
		Namespace:          namespace,
		Identifier:         key,
		Title:              stringOr(fields.Get("summary"), "N/A"),
		Completed:          parseJiraTime(fields.Get("resolutiondate").String()),
		URL:                url,
		Body:               adf.Text(fields.Get("description"), ""),
		AcceptanceCriteria: adf.Text(fields.Map()[acFieldID], ""),
	}

	fields.Get("comment.comments").ForEach(func(_, c gjson.Result) bool {
		rec.Comments = append(rec.Comments, internal.Comment{
			Author: stringOr(c.Get("author.displayName"), "Unknown"),
			Body:   adf.Text(c.Get("body"), ""),
		})
		return true
	})

	return rec
}

func stringOr(v gjson.Result, def string) string {
	if v.Type != gjson.String {
		return def
	}
	return v.Str
}

func parseJiraTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range jiraTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
