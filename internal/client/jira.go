package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const jiraSearchPath = "/rest/api/3/search/jql"

// JQLQuery is the fixed part of every JQL search request.
type JQLQuery struct {
	JQL        string
	Fields     []string
	MaxResults int
}

// CompletedIssuesJQL selects issues assigned to accountID that were resolved
// during year, newest first by creation date.
func CompletedIssuesJQL(accountID string, year int) string {
	return fmt.Sprintf(
		"assignee = '%s' AND status in (Done, Closed, Resolved) "+
			`AND resolutiondate >= "%d-01-01" AND resolutiondate <= "%d-12-31" ORDER BY created DESC`,
		accountID, year, year,
	)
}

// JiraClient queries the Jira Cloud JQL search endpoint with basic auth.
type JiraClient struct {
	http     *http.Client
	baseURL  string
	email    string
	apiToken string
}

func NewJiraClient(baseURL, email, apiToken string) *JiraClient {
	return &JiraClient{
		http:     &http.Client{Timeout: DefaultTimeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		apiToken: apiToken,
	}
}

// BrowseURL returns the web URL of an issue key.
func (c *JiraClient) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

// SearchIssues fetches the page identified by token ("" for the first page).
// Issues are returned as raw JSON values in response order together with the
// next page token, which is empty on the last page.
func (c *JiraClient) SearchIssues(ctx context.Context, q JQLQuery, token string) ([]gjson.Result, string, error) {
	payload, err := searchPayload(q, token)
	if err != nil {
		return nil, "", fmt.Errorf("build search payload: %w", err)
	}

	searchURL := c.baseURL + jiraSearchPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, searchURL, strings.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("build search request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", &TransportError{Op: http.MethodPost, URL: searchURL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &TransportError{Op: http.MethodPost, URL: searchURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &RequestRejectedError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
			URL:        searchURL,
		}
	}

	body := string(data)
	if !gjson.Valid(body) {
		return nil, "", fmt.Errorf("decode search response from %s: invalid json", searchURL)
	}
	doc := gjson.Parse(body)

	return doc.Get("issues").Array(), doc.Get("nextPageToken").String(), nil
}

func searchPayload(q JQLQuery, token string) (string, error) {
	payload, err := sjson.Set("{}", "jql", q.JQL)
	if err != nil {
		return "", err
	}
	if payload, err = sjson.Set(payload, "fields", q.Fields); err != nil {
		return "", err
	}
	if payload, err = sjson.Set(payload, "maxResults", q.MaxResults); err != nil {
		return "", err
	}
	if token != "" {
		if payload, err = sjson.Set(payload, "nextPageToken", token); err != nil {
			return "", err
		}
	}
	return payload, nil
}
