package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds every single page request.
	DefaultTimeout = 30 * time.Second

	// searchRequestsPerMinute is GitHub's authenticated search API quota.
	searchRequestsPerMinute = 30
)

// GitHubClient queries the GitHub issue search endpoint.
type GitHubClient struct {
	gh      *gh.Client
	limiter *rate.Limiter
}

// NewGitHubClient creates a client authenticating with a bearer token against
// baseURL (the public API when empty).
func NewGitHubClient(ctx context.Context, token, baseURL string) (*GitHubClient, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	c := gh.NewClient(tc)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse github api url: %w", err)
		}
		c.BaseURL = u
	}

	return &GitHubClient{
		gh:      c,
		limiter: rate.NewLimiter(rate.Every(time.Minute/searchRequestsPerMinute), searchRequestsPerMinute),
	}, nil
}

// MergedPRQuery builds the search query for pull requests by username merged
// during year.
func MergedPRQuery(username string, year int) string {
	return fmt.Sprintf("is:pr author:%s is:merged merged:%d-01-01..%d-12-31", username, year, year)
}

// SearchIssues fetches one page of issue search results along with the total
// match count GitHub reports.
func (c *GitHubClient) SearchIssues(ctx context.Context, query string, page, perPage int) ([]*gh.Issue, int, error) {
	// Proactive throttle only; a rejected request is never retried.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{Page: page, PerPage: perPage},
	}
	result, _, err := c.gh.Search.Issues(ctx, query, opts)
	if err != nil {
		return nil, 0, c.wrapError(err)
	}

	return result.Issues, result.GetTotal(), nil
}

// wrapError converts go-github errors to our error types.
func (c *GitHubClient) wrapError(err error) error {
	var (
		ghErr    *gh.ErrorResponse
		limitErr *gh.RateLimitError
		abuseErr *gh.AbuseRateLimitError
	)
	switch {
	case errors.As(err, &ghErr):
		return rejected(ghErr.Response, ghErr.Message)
	case errors.As(err, &limitErr):
		return rejected(limitErr.Response, limitErr.Message)
	case errors.As(err, &abuseErr):
		return rejected(abuseErr.Response, abuseErr.Message)
	}

	return &TransportError{
		Op:  http.MethodGet,
		URL: c.gh.BaseURL.String() + "search/issues",
		Err: err,
	}
}

func rejected(resp *http.Response, message string) error {
	e := &RequestRejectedError{Body: message}
	if resp != nil {
		e.StatusCode = resp.StatusCode
		if resp.Request != nil && resp.Request.URL != nil {
			e.URL = resp.Request.URL.String()
		}
	}
	return e
}
