package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

const (
	DefaultGitHubAPIURL = "https://api.github.com/"
	DefaultOpenAIModel  = "gpt-4.1-mini"
)

// Load resolves the configuration from the optional TOML file at path, a
// .env file in the working directory and the process environment, in
// increasing order of precedence. Neither file has to exist.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	return loadWith(path, os.LookupEnv)
}

func loadWith(path string, lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	for key, field := range cfg.envFields() {
		if v, ok := lookup(key); ok && v != "" {
			*field = v
		}
	}

	if cfg.GitHub.APIURL == "" {
		cfg.GitHub.APIURL = DefaultGitHubAPIURL
	}
	if cfg.OpenAI.Model == "" {
		cfg.OpenAI.Model = DefaultOpenAIModel
	}
	return cfg, nil
}

func (c *Config) envFields() map[string]*string {
	return map[string]*string{
		"GITHUB_TOKEN":             &c.GitHub.Token,
		"GITHUB_USERNAME":          &c.GitHub.Username,
		"GITHUB_ORG_FILTER":        &c.GitHub.OrgFilter,
		"GITHUB_API_URL":           &c.GitHub.APIURL,
		"JIRA_URL":                 &c.Jira.URL,
		"JIRA_EMAIL":               &c.Jira.Email,
		"JIRA_API_TOKEN":           &c.Jira.APIToken,
		"JIRA_AC_FIELD_ID":         &c.Jira.ACFieldID,
		"JIRA_ASSIGNEE_ACCOUNT_ID": &c.Jira.AssigneeAccountID,
		"JIRA_PROJECT_FILTER":      &c.Jira.ProjectFilter,
		"OPENAI_API_KEY":           &c.OpenAI.APIKey,
		"OPENAI_MODEL":             &c.OpenAI.Model,
	}
}

// Validate validates the GitHub configuration.
func (c *GitHubConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Token, validation.Required),
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.APIURL, validation.Required),
	)
}

// Validate validates the Jira configuration.
func (c *JiraConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required),
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.APIToken, validation.Required),
		validation.Field(&c.ACFieldID, validation.Required),
		validation.Field(&c.AssigneeAccountID, validation.Required),
	)
}

// Validate validates the OpenAI configuration.
func (c *OpenAIConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIKey, validation.Required),
	)
}

// Require validates every section and reports all failing keys at once as a
// *ConfigError, using their environment variable names.
func Require(sections ...validation.Validatable) error {
	var missing []string
	for _, s := range sections {
		err := s.Validate()
		if err == nil {
			continue
		}
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for key := range fieldErrs {
			missing = append(missing, strings.ToUpper(key))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &ConfigError{Missing: missing}
}
