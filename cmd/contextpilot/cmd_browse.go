package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"contextpilot/internal/config"
	"contextpilot/internal/indexer"
	"contextpilot/internal/query"
	"contextpilot/internal/shardstore"
	"contextpilot/internal/tui"
	"contextpilot/internal/vcs"
)

var browseCmd = &cobra.Command{
	Use:   "browse <file> [start] [end]",
	Short: "Interactively browse a file's line provenance",
	Args:  cobra.RangeArgs(1, 3),
	RunE:  runBrowse,
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	file := args[0]
	if !filepath.IsAbs(file) {
		file = filepath.Join(ws.RepoRoot, file)
	}
	cfg, err := config.Load(ws.ConfigPath())
	if err != nil {
		return err
	}
	shards, err := shardstore.Open(ws.DBRoot, cfg.MaxLinesPerShard)
	if err != nil {
		return err
	}
	provider := vcs.NewGitProvider(ws.RepoRoot)
	api := query.New(shards, indexer.New(provider), cfg.OutputCountThreshold)
	runCtx := context.WithoutCancel(ctx)

	if len(args) >= 3 {
		start, end, err := parseRange(args[1], args[2])
		if err != nil {
			return err
		}
		return tui.RunRange(runCtx, api, file, start, end)
	}
	return tui.Run(runCtx, api, file)
}
</content>
