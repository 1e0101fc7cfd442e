package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"workdigest/internal"
	"workdigest/internal/agent"
	"workdigest/internal/aggregate"
	"workdigest/internal/client"
	"workdigest/internal/prompt"
)

// newResponder is replaced in tests.
var newResponder = func(cfg internal.OpenAIConfig) agent.Responder {
	return client.NewOpenAIClient(cfg)
}

var reviewCmd = &cobra.Command{
	Use:   "review [question]",
	Short: "Ask a language model about the year's digests",
	Long: `Starts an agent that reads your GitHub and Jira digests on demand and answers
the question, or drafts a year-in-review when no question is given.`,
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sources := []internal.SourceType{internal.SourceTypeGitHub, internal.SourceTypeJira}

	cfg, err := loadConfig(sources, true)
	if err != nil {
		return err
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		question = prompt.DefaultQuestion
	}

	lines := &progressLines{w: cmd.ErrOrStderr()}
	defer lines.Done()
	digest := func(ctx context.Context, source internal.SourceType) (string, error) {
		agg, err := newAggregator(ctx, cfg, source)
		if err != nil {
			return "", err
		}
		out, _, err := aggregate.Digest(ctx, agg, lines.For(source))
		lines.Done()
		return out, err
	}

	userPipe := make(chan string)
	a := agent.New(newResponder(cfg.OpenAI), userPipe, cmd.OutOrStdout(), digest)

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
	}()

	userPipe <- question
	close(userPipe)

	return <-errCh
}
