package aggregate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"workdigest/internal"
	"workdigest/internal/client"
	"workdigest/internal/fakeapi"
)

const acField = "customfield_10020"

func githubFixture(t *testing.T, fake *fakeapi.GitHub, cfg internal.GitHubConfig) SourceAggregator {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	c, err := client.NewGitHubClient(context.Background(), "token", server.URL)
	require.NoError(t, err)
	return NewGitHub(c, cfg, 2024)
}

func jiraFixture(t *testing.T, fake *fakeapi.Jira, cfg internal.JiraConfig) SourceAggregator {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	return NewJira(client.NewJiraClient(server.URL, "me@example.com", "token"), cfg, 2024)
}

func TestNormalizePullRequest(t *testing.T) {
	var pr gh.Issue
	raw, err := json.Marshal(fakeapi.PullRequest("ACME/example", 42, "Fix it", "2024-03-01T10:00:00Z", "Body text"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &pr))

	rec := NormalizePullRequest(&pr)

	assert.Equal(t, "ACME/example", rec.Namespace)
	assert.Equal(t, "42", rec.Identifier)
	assert.Equal(t, "Fix it", rec.Title)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), rec.Completed.UTC())
	assert.Equal(t, "https://github.com/ACME/example/pull/42", rec.URL)
	assert.Equal(t, "Body text", rec.Body)
	assert.Empty(t, rec.Comments)
}

func TestRepoName(t *testing.T) {
	assert.Equal(t, "acme/widgets", repoName("https://api.github.com/repos/acme/widgets"))
	assert.Equal(t, "acme/widgets", repoName("https://api.github.com/repos/acme/widgets/"))
	assert.Equal(t, "widgets", repoName("widgets"))
}

func TestNormalizeIssue(t *testing.T) {
	raw, err := json.Marshal(fakeapi.Issue(
		"PROJ-7", "Do the thing", "2024-02-10T09:15:00.000+0000",
		fakeapi.Paragraph("Rich description"),
		map[string]any{acField: fakeapi.Paragraph("Given, when, then")},
		fakeapi.Comment("Alice", "first"),
		fakeapi.Comment("Bob", "second"),
	))
	require.NoError(t, err)

	rec := NormalizeIssue(gjson.ParseBytes(raw), acField, func(key string) string {
		return "https://jira.example/browse/" + key
	})

	assert.Equal(t, "PROJ", rec.Namespace)
	assert.Equal(t, "PROJ-7", rec.Identifier)
	assert.Equal(t, "Do the thing", rec.Title)
	assert.Equal(t, "2024-02-10", rec.Completed.Format("2006-01-02"))
	assert.Equal(t, "https://jira.example/browse/PROJ-7", rec.URL)
	assert.Equal(t, "Rich description", rec.Body)
	assert.Equal(t, "Given, when, then", rec.AcceptanceCriteria)
	assert.Equal(t, []internal.Comment{
		{Author: "Alice", Body: "first"},
		{Author: "Bob", Body: "second"},
	}, rec.Comments)
}

func TestNormalizeIssue_Degrades(t *testing.T) {
	doc := gjson.Parse(`{
		"key": "OPS-1",
		"fields": {
			"description": "plain string description",
			"customfield_10020": "plain criteria",
			"comment": {"comments": [{"body": {"type": "weird"}}]}
		}
	}`)

	rec := NormalizeIssue(doc, acField, func(key string) string { return key })

	assert.Equal(t, "OPS", rec.Namespace)
	assert.Equal(t, "N/A", rec.Title)
	assert.True(t, rec.Completed.IsZero())
	assert.Equal(t, "plain string description", rec.Body)
	assert.Equal(t, "plain criteria", rec.AcceptanceCriteria)
	assert.Equal(t, []internal.Comment{{Author: "Unknown", Body: ""}}, rec.Comments)
}

func TestNormalizeIssue_ScalarAcceptanceCriteria(t *testing.T) {
	doc := gjson.Parse(`{"key": "OPS-2", "fields": {"customfield_10020": 5}}`)

	rec := NormalizeIssue(doc, acField, func(key string) string { return key })

	assert.Equal(t, "5", rec.AcceptanceCriteria)
}

func TestNormalizeIssue_MissingKey(t *testing.T) {
	doc := gjson.Parse(`{"fields": {"summary": "Orphan", "project": {"key": "OPS"}}}`)

	rec := NormalizeIssue(doc, acField, func(key string) string {
		return "https://jira.example/browse/" + key
	})

	assert.Equal(t, "N/A", rec.Identifier)
	assert.Equal(t, "N/A", rec.URL)
	assert.Equal(t, "OPS", rec.Namespace)
}

func TestGitHubDigest_UndatedPullRequestKept(t *testing.T) {
	fake := &fakeapi.GitHub{
		Issues: []map[string]any{
			fakeapi.PullRequest("acme/widgets", 4, "No merge date", "", ""),
		},
	}
	agg := githubFixture(t, fake, internal.GitHubConfig{Username: "octo", OrgFilter: "acme"})

	out, ok, err := Digest(context.Background(), agg, nil)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, out, "PR #4: No merge date\nMerged On: N/A\n")
}

func TestGitHubDigest_EndToEnd(t *testing.T) {
	fake := &fakeapi.GitHub{
		Issues: []map[string]any{
			fakeapi.PullRequest("acme/widgets", 1, "January work", "2024-01-15T12:00:00Z", ""),
			fakeapi.PullRequest("other/repo", 2, "Side project", "2024-02-01T12:00:00Z", "skip me"),
			fakeapi.PullRequest("Acme/gadgets", 3, "March work", "2024-03-01T12:00:00Z", "Shipped."),
		},
	}
	agg := githubFixture(t, fake, internal.GitHubConfig{Username: "octo", OrgFilter: "acme"})

	out, ok, err := Digest(context.Background(), agg, nil)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, strings.Join([]string{
		"--- github 1 ---",
		"Repo: Acme/gadgets",
		"PR #3: March work",
		"Merged On: 2024-03-01",
		"URL: https://github.com/Acme/gadgets/pull/3",
		"",
		"Description:",
		"Shipped.",
		"",
		"--- github 2 ---",
		"Repo: acme/widgets",
		"PR #1: January work",
		"Merged On: 2024-01-15",
		"URL: https://github.com/acme/widgets/pull/1",
		"",
		"Description:",
		"No description provided.",
	}, "\n"), out)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "is:pr author:octo is:merged merged:2024-01-01..2024-12-31", reqs[0].URL.Query().Get("q"))
}

func TestGitHubDigest_PagesUntilTotal(t *testing.T) {
	var issues []map[string]any
	for i := 1; i <= 250; i++ {
		issues = append(issues, fakeapi.PullRequest("acme/widgets", i, "PR", "2024-05-01T00:00:00Z", ""))
	}
	fake := &fakeapi.GitHub{Issues: issues}
	agg := githubFixture(t, fake, internal.GitHubConfig{Username: "octo"})

	raw, err := agg.Extract(context.Background(), nil)
	require.NoError(t, err)

	assert.Len(t, raw.(githubRawResult).PullRequests, 250)
	reqs := fake.Requests()
	require.Len(t, reqs, 3)
	for i, r := range reqs {
		assert.Equal(t, []string{"1", "2", "3"}[i], r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
	}
}

func TestGitHubDigest_NothingAfterFilter(t *testing.T) {
	fake := &fakeapi.GitHub{
		Issues: []map[string]any{
			fakeapi.PullRequest("other/repo", 2, "Side project", "2024-02-01T12:00:00Z", ""),
		},
	}
	agg := githubFixture(t, fake, internal.GitHubConfig{Username: "octo", OrgFilter: "acme"})

	out, ok, err := Digest(context.Background(), agg, nil)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestGitHubDigest_FailureMidPagination(t *testing.T) {
	var issues []map[string]any
	for i := 1; i <= 150; i++ {
		issues = append(issues, fakeapi.PullRequest("acme/widgets", i, "PR", "2024-05-01T00:00:00Z", ""))
	}
	fake := &fakeapi.GitHub{
		Issues:  issues,
		Failure: &fakeapi.Failure{Page: 2, Status: http.StatusInternalServerError, Body: `{"message":"boom"}`},
	}
	agg := githubFixture(t, fake, internal.GitHubConfig{Username: "octo"})

	out, ok, err := Digest(context.Background(), agg, nil)

	var rejected *client.RequestRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, http.StatusInternalServerError, rejected.StatusCode)
	assert.False(t, ok)
	assert.Empty(t, out)
}

func TestJiraDigest_EndToEnd(t *testing.T) {
	fake := &fakeapi.Jira{
		Pages: [][]map[string]any{
			{
				fakeapi.Issue("PROJ-9", "Newest", "2024-06-01T10:00:00.000+0000",
					fakeapi.Paragraph("Nine"),
					map[string]any{acField: fakeapi.Paragraph("AC nine")},
					fakeapi.Comment("Alice", "lgtm"),
					fakeapi.Comment("Bob", "merged"),
				),
			},
			{
				fakeapi.Issue("PROJ-3", "Oldest", "2024-08-01T10:00:00.000+0000", nil, nil),
			},
		},
	}
	agg := jiraFixture(t, fake, internal.JiraConfig{ACFieldID: acField, AssigneeAccountID: "abc"})

	out, ok, err := Digest(context.Background(), agg, nil)

	require.NoError(t, err)
	require.True(t, ok)

	entries := strings.Split(out, "\n\n--- jira ")
	require.Len(t, entries, 2)
	assert.True(t, strings.HasPrefix(entries[0], "--- jira 1 ---\nProject: PROJ\nTicket PROJ-9: Newest\nResolved On: 2024-06-01\n"))
	assert.Contains(t, entries[0], "Description:\nNine")
	assert.Contains(t, entries[0], "Acceptance Criteria:\nAC nine")
	assert.Contains(t, entries[0], "Comments:\n- Alice: lgtm\n- Bob: merged")
	assert.True(t, strings.HasPrefix(entries[1], "2 ---\nProject: PROJ\nTicket PROJ-3: Oldest"))
	assert.Contains(t, entries[1], "Description:\nNo description.")
	assert.Contains(t, entries[1], "Acceptance Criteria:\nN/A")
	assert.True(t, strings.HasSuffix(entries[1], "Comments:\n- No comments found."))

	bodies := fake.Bodies()
	require.Len(t, bodies, 2)
	assert.Contains(t, gjson.Get(bodies[0], "fields").String(), acField)
	assert.Equal(t, "page-1", gjson.Get(bodies[1], "nextPageToken").String())
}

func TestJiraDigest_ProjectFilter(t *testing.T) {
	fake := &fakeapi.Jira{
		Pages: [][]map[string]any{{
			fakeapi.Issue("PROJ-1", "Keep", "2024-01-01T00:00:00.000+0000", nil, nil),
			fakeapi.Issue("OPS-1", "Drop", "2024-01-01T00:00:00.000+0000", nil, nil),
		}},
	}
	agg := jiraFixture(t, fake, internal.JiraConfig{ACFieldID: acField, ProjectFilter: "proj"})

	out, ok, err := Digest(context.Background(), agg, nil)

	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, out, "Ticket PROJ-1: Keep")
	assert.NotContains(t, out, "OPS-1")
}

func TestAggregate(t *testing.T) {
	ghAgg := githubFixture(t, &fakeapi.GitHub{}, internal.GitHubConfig{Username: "octo"})
	jiraAgg := jiraFixture(t, &fakeapi.Jira{
		Pages: [][]map[string]any{{
			fakeapi.Issue("PROJ-1", "Only", "2024-01-01T00:00:00.000+0000", nil, nil),
		}},
	}, internal.JiraConfig{ACFieldID: acField})

	result, err := Aggregate(context.Background(), []SourceAggregator{ghAgg, jiraAgg}, nil)

	require.NoError(t, err)
	assert.False(t, result.Empty())
	assert.NotContains(t, result.Digests, internal.SourceTypeGitHub)
	assert.Contains(t, result.Digests[internal.SourceTypeJira], "Ticket PROJ-1: Only")
}

func TestAggregate_StopsOnFirstError(t *testing.T) {
	jiraFake := &fakeapi.Jira{Failure: &fakeapi.Failure{Status: http.StatusUnauthorized, Body: "nope"}}
	ghFake := &fakeapi.GitHub{}
	sources := []SourceAggregator{
		jiraFixture(t, jiraFake, internal.JiraConfig{ACFieldID: acField}),
		githubFixture(t, ghFake, internal.GitHubConfig{Username: "octo"}),
	}

	_, err := Aggregate(context.Background(), sources, nil)

	require.Error(t, err)
	assert.True(t, client.IsUnauthorized(err))
	assert.Contains(t, err.Error(), "jira:")
	assert.Empty(t, ghFake.Requests())
}
