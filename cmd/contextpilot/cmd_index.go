package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contextpilot/internal/config"
	"contextpilot/internal/coordinator"
	"contextpilot/internal/logging"
	"contextpilot/internal/shardstore"
	"contextpilot/internal/vcs"
)

var indexCmd = &cobra.Command{
	Use:   "index [files...]",
	Short: "Index line provenance for the workspace, or a given set of files",
	Long: `index drives the coordinator over every git-tracked file in the
repository (or a caller-supplied subset), skipping files whose head
revision is unchanged since the last run and replaying full history for
the rest.`,
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	cfg, err := config.Load(ws.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	provider := vcs.NewGitProvider(ws.RepoRoot)

	files := args
	if len(files) == 0 {
		tracked, err := provider.ListFiles(ctx)
		if err != nil {
			return fmt.Errorf("list tracked files: %w", err)
		}
		files = tracked
	}
	for i, f := range files {
		if !filepath.IsAbs(f) {
			files[i] = filepath.Join(ws.RepoRoot, f)
		}
	}

	shards, err := shardstore.Open(ws.DBRoot, cfg.MaxLinesPerShard)
	if err != nil {
		return fmt.Errorf("open shard store: %w", err)
	}
	shardstore.SetAuditLogger(logging.AuditWithRun(logging.NewRunID()))

	coord := coordinator.New(provider, shards, runtime.NumCPU())
	results, err := coord.IndexFiles(ctx, files)
	if err != nil {
		return fmt.Errorf("index run: %w", err)
	}

	if err := shards.Store(); err != nil {
		return fmt.Errorf("persist shard store: %w", err)
	}

	summary := coordinator.Summarize(results)
	logger.Info("index run complete",
		zap.Int("indexed", summary.Indexed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
		zap.Int("aborted", summary.Aborted),
	)
	fmt.Printf("indexed=%d skipped=%d failed=%d aborted=%d\n",
		summary.Indexed, summary.Skipped, summary.Failed, summary.Aborted)

	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed to index", summary.Failed)
	}
	return nil
}
</content>
