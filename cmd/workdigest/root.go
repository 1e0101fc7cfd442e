package main

import (
	"context"
	"fmt"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/spf13/cobra"

	"workdigest/internal"
	"workdigest/internal/aggregate"
	"workdigest/internal/client"
	"workdigest/internal/logger"
	"workdigest/internal/paginate"
	"workdigest/internal/progress"
)

var (
	configPath string
	outDir     string
	year       int
	verbose    bool

	// now is replaced in tests to pin output file names.
	now = time.Now
)

var rootCmd = &cobra.Command{
	Use:   "workdigest",
	Short: "Collect a year of completed work into plain-text digests",
	Long: `Fetches the pull requests you merged on GitHub and the tickets you resolved
in Jira during a calendar year and writes each set as a flat text digest
ready to paste into a language model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "workdigest.toml", "Path to an optional TOML configuration file")
	flags.StringVar(&outDir, "out-dir", ".", "Directory digests are written to")
	flags.IntVar(&year, "year", time.Now().Year(), "Calendar year to collect")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// loadConfig resolves the configuration and checks every section the
// requested sources (and the review agent, when openAI is set) need before
// any request is made.
func loadConfig(sources []internal.SourceType, openAI bool) (internal.Config, error) {
	cfg, err := internal.Load(configPath)
	if err != nil {
		return internal.Config{}, err
	}

	var sections []validation.Validatable
	if openAI {
		sections = append(sections, &cfg.OpenAI)
	}
	for _, s := range sources {
		switch s {
		case internal.SourceTypeGitHub:
			sections = append(sections, &cfg.GitHub)
		case internal.SourceTypeJira:
			sections = append(sections, &cfg.Jira)
		}
	}
	if err := internal.Require(sections...); err != nil {
		return internal.Config{}, err
	}
	return cfg, nil
}

func newAggregator(ctx context.Context, cfg internal.Config, source internal.SourceType) (aggregate.SourceAggregator, error) {
	switch source {
	case internal.SourceTypeGitHub:
		c, err := client.NewGitHubClient(ctx, cfg.GitHub.Token, cfg.GitHub.APIURL)
		if err != nil {
			return nil, err
		}
		return aggregate.NewGitHub(c, cfg.GitHub, year), nil
	case internal.SourceTypeJira:
		c := client.NewJiraClient(cfg.Jira.URL, cfg.Jira.Email, cfg.Jira.APIToken)
		return aggregate.NewJira(c, cfg.Jira, year), nil
	default:
		return nil, fmt.Errorf("unknown source %q", source)
	}
}

var progressNouns = map[internal.SourceType]string{
	internal.SourceTypeGitHub: "PRs",
	internal.SourceTypeJira:   "tickets",
}

// progressLines hands out one terminal reporter per source, closing the
// previous line when the next source starts.
type progressLines struct {
	w       io.Writer
	current *progress.Reporter
}

func (p *progressLines) For(source internal.SourceType) paginate.Progress {
	p.Done()
	p.current = progress.New(p.w, progressNouns[source])
	return p.current
}

func (p *progressLines) Done() {
	if p.current != nil {
		p.current.Done()
	}
}
