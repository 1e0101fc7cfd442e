package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"workdigest/internal"
	"workdigest/internal/aggregate"
	"workdigest/internal/logger"
	"workdigest/internal/util"
)

var githubCmd = &cobra.Command{
	Use:   "github",
	Short: "Write a digest of the pull requests you merged",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCollect(cmd, internal.SourceTypeGitHub)
	},
}

var jiraCmd = &cobra.Command{
	Use:   "jira",
	Short: "Write a digest of the Jira tickets you resolved",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCollect(cmd, internal.SourceTypeJira)
	},
}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Write both digests, GitHub first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runCollect(cmd, internal.SourceTypeGitHub, internal.SourceTypeJira)
	},
}

func init() {
	rootCmd.AddCommand(githubCmd, jiraCmd, allCmd)
}

func runCollect(cmd *cobra.Command, sources ...internal.SourceType) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(sources, false)
	if err != nil {
		return err
	}

	aggs := make([]aggregate.SourceAggregator, 0, len(sources))
	for _, s := range sources {
		agg, err := newAggregator(ctx, cfg, s)
		if err != nil {
			return err
		}
		aggs = append(aggs, agg)
	}

	lines := &progressLines{w: cmd.ErrOrStderr()}
	result, err := aggregate.Aggregate(ctx, aggs, lines.For)
	lines.Done()
	if err != nil {
		return err
	}

	written := now()
	for _, s := range sources {
		out, ok := result.Digests[s]
		if !ok {
			logger.Info("No completed work found, nothing written", "source", s, "year", year)
			continue
		}
		path, err := util.WriteDigest(outDir, s, written, out)
		if err != nil {
			return err
		}
		logger.Info("Wrote digest", "source", s, "path", path)
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	return nil
}
