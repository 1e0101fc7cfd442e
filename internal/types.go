package internal

import (
	"fmt"
	"strings"
	"time"
)

// Config is the resolved configuration for every backend. Sections are only
// validated when the command that needs them runs.
type Config struct {
	GitHub GitHubConfig `toml:"github"`
	Jira   JiraConfig   `toml:"jira"`
	OpenAI OpenAIConfig `toml:"openai"`
}

// GitHubConfig configures the pull request search backend. The json tags are
// the lower-cased environment variable names and double as validation keys.
type GitHubConfig struct {
	Token     string `toml:"token" json:"github_token"`
	Username  string `toml:"username" json:"github_username"`
	OrgFilter string `toml:"org_filter" json:"github_org_filter"`
	APIURL    string `toml:"api_url" json:"github_api_url"`
}

// JiraConfig configures the issue tracker backend.
type JiraConfig struct {
	URL               string `toml:"url" json:"jira_url"`
	Email             string `toml:"email" json:"jira_email"`
	APIToken          string `toml:"api_token" json:"jira_api_token"`
	ACFieldID         string `toml:"ac_field_id" json:"jira_ac_field_id"`
	AssigneeAccountID string `toml:"assignee_account_id" json:"jira_assignee_account_id"`
	ProjectFilter     string `toml:"project_filter" json:"jira_project_filter"`
}

type OpenAIConfig struct {
	APIKey string `toml:"api_key" json:"openai_api_key"`
	Model  string `toml:"model" json:"openai_model"`
}

// ConfigError lists every required configuration key that was not set.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Missing, ", "))
}

// Record is a single completed unit of work normalized from any backend.
// Completed is the zero time when the backend did not report one.
type Record struct {
	Namespace          string
	Identifier         string
	Title              string
	Completed          time.Time
	URL                string
	Body               string
	Comments           []Comment
	AcceptanceCriteria string
}

// Comment is one discussion entry attached to a Record, in backend order.
type Comment struct {
	Author string
	Body   string
}

type SourceType string

const (
	SourceTypeGitHub SourceType = "github"
	SourceTypeJira   SourceType = "jira"
)
