package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contextpilot/internal/config"
	"contextpilot/internal/coordinator"
	"contextpilot/internal/logging"
	"contextpilot/internal/shardstore"
	"contextpilot/internal/vcs"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the repository and incrementally reindex files on save",
	Long: `watch runs fsnotify over the repository root and, after a short
debounce window, reindexes whichever files changed. Exits on context
cancellation (Ctrl-C).`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "quiet period before a changed file is reindexed")
}

func runWatch(cmd *cobra.Command, args []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, ws.RepoRoot); err != nil {
		return fmt.Errorf("watch repo root: %w", err)
	}

	cfg, err := config.Load(ws.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	shards, err := shardstore.Open(ws.DBRoot, cfg.MaxLinesPerShard)
	if err != nil {
		return fmt.Errorf("open shard store: %w", err)
	}
	shardstore.SetAuditLogger(logging.AuditWithRun(logging.NewRunID()))
	provider := vcs.NewGitProvider(ws.RepoRoot)
	coord := coordinator.New(provider, shards, 1)

	ctx := cmd.Context()
	pending := make(map[string]struct{})
	debounceTimer := time.NewTimer(0)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}

	logger.Info("watching for changes", zap.String("repo_root", ws.RepoRoot))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[ev.Name] = struct{}{}
			debounceTimer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-debounceTimer.C:
			if len(pending) == 0 {
				continue
			}
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			pending = make(map[string]struct{})

			reindexCtx, cancel := context.WithTimeout(ctx, timeout)
			results, err := coord.IndexFiles(reindexCtx, files)
			cancel()
			if err != nil {
				logger.Warn("incremental reindex error", zap.Error(err))
				continue
			}
			if err := shards.Store(); err != nil {
				logger.Warn("shard persist error", zap.Error(err))
				continue
			}
			summary := coordinator.Summarize(results)
			fmt.Printf("reindexed=%d failed=%d\n", summary.Indexed, summary.Failed)
		}
	}
}

// addRecursive subscribes every directory under root, skipping .git and
// the workspace's own DB root — fsnotify has no recursive mode, so each
// directory needs an explicit Add.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if base == ".git" || path == ws.DBRoot {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}
</content>
