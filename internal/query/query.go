// Package query implements QueryAPI: the thin read-side surface used by
// editor plugins. Each operation consults ShardStore first; when a
// requested line is missing but the file is known to the routing table
// (indicating a post-indexing change), it falls back to an on-demand
// FileIndexer invocation unless the caller disables that fallback.
package query

import (
	"context"
	"os"
	"sort"

	"contextpilot/internal/indexer"
	"contextpilot/internal/logging"
	"contextpilot/internal/provenance"
	"contextpilot/internal/shardstore"
)

// API is the QueryAPI, bound to one workspace's ShardStore and an
// indexer used for the on-demand fallback.
type API struct {
	Shards  *shardstore.ShardStore
	Indexer *indexer.FileIndexer

	// OutputCountThreshold caps items returned by Authors/CoEditedFiles;
	// zero means unbounded.
	OutputCountThreshold int
	// DisableFallback, when true, never invokes the indexer for missing
	// lines — callers that only want cached data set this.
	DisableFallback bool
}

// New returns an API backed by shards, performing on-demand fallback
// through idx.
func New(shards *shardstore.ShardStore, idx *indexer.FileIndexer, outputCountThreshold int) *API {
	return &API{Shards: shards, Indexer: idx, OutputCountThreshold: outputCountThreshold}
}

// records resolves [start,end] for file: ShardStore first, then an
// on-demand full re-index to fill any gaps, unless DisableFallback is set
// or the file isn't in the routing table at all.
func (a *API) records(ctx context.Context, file string, start, end int) ([]provenance.FileRecord, error) {
	found, missing, err := a.Shards.Lookup(file, start, end)
	if err != nil {
		return nil, err
	}
	if len(missing) == 0 || a.DisableFallback {
		return found, nil
	}
	if len(a.Shards.RoutingFor(file)) == 0 {
		// Never indexed at all; nothing to fall back from.
		return found, nil
	}

	logging.QueryDebug("on-demand reindex for %s: %d missing lines in [%d,%d]", file, len(missing), start, end)
	fresh, err := a.Indexer.IndexFile(ctx, file, nil)
	if err != nil {
		logging.QueryError("on-demand reindex failed for %s: %v", file, err)
		return found, nil
	}
	if err := a.Shards.Replace(file, fresh); err != nil {
		logging.QueryError("on-demand shard commit failed for %s: %v", file, err)
	}

	found2, _, err := a.Shards.Lookup(file, start, end)
	if err != nil {
		return found, nil
	}
	return found2, nil
}

func (a *API) cap(items []string) []string {
	if a.OutputCountThreshold > 0 && len(items) > a.OutputCountThreshold {
		return items[:a.OutputCountThreshold]
	}
	return items
}

// Authors returns distinct author names touching any line in [start,end].
func (a *API) Authors(ctx context.Context, file string, start, end int) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryQuery, "authors:"+file)
	defer timer.Stop()
	records, err := a.records(ctx, file, start, end)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		for _, name := range r.AuthorNames {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return a.cap(out), nil
}

// CoEditedFiles returns distinct file paths touched by any revision that
// also touched a line in [start,end] of file, excluding file itself and
// files no longer present on disk.
func (a *API) CoEditedFiles(ctx context.Context, file string, start, end int) ([]string, error) {
	timer := logging.StartTimer(logging.CategoryQuery, "co_edited_files:"+file)
	defer timer.Stop()
	records, err := a.records(ctx, file, start, end)
	if err != nil {
		return nil, err
	}

	revisionSet := make(map[string]struct{})
	for _, r := range records {
		for _, rev := range r.Revisions {
			revisionSet[rev] = struct{}{}
		}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, other := range a.Shards.RoutedFiles() {
		if other == file {
			continue
		}
		if _, ok := seen[other]; ok {
			continue
		}
		if _, statErr := os.Stat(other); statErr != nil {
			continue
		}
		if a.fileSharesRevision(other, revisionSet) {
			seen[other] = struct{}{}
			out = append(out, other)
		}
	}
	sort.Strings(out)
	return a.cap(out), nil
}

// History returns raw per-line FileRecords for [start,end].
func (a *API) History(ctx context.Context, file string, start, end int) ([]provenance.FileRecord, error) {
	return a.records(ctx, file, start, end)
}

// HistoryAll returns every currently stored record for file, reindexing
// on demand if the file is routed but nothing is stored yet. Unlike
// History it is not bounded by a line range, so callers that want "the
// whole file" (e.g. the browse view) never need to guess an upper bound.
func (a *API) HistoryAll(ctx context.Context, file string) ([]provenance.FileRecord, error) {
	found, err := a.Shards.AllRecords(file)
	if err != nil {
		return nil, err
	}
	if len(found) > 0 || a.DisableFallback || len(a.Shards.RoutingFor(file)) == 0 {
		return found, nil
	}

	fresh, err := a.Indexer.IndexFile(ctx, file, nil)
	if err != nil {
		logging.QueryError("on-demand reindex failed for %s: %v", file, err)
		return found, nil
	}
	if err := a.Shards.Replace(file, fresh); err != nil {
		logging.QueryError("on-demand shard commit failed for %s: %v", file, err)
	}
	return a.Shards.AllRecords(file)
}

func (a *API) fileSharesRevision(file string, revisionSet map[string]struct{}) bool {
	found, err := a.Shards.AllRecords(file)
	if err != nil {
		return false
	}
	for _, r := range found {
		for _, rev := range r.Revisions {
			if _, ok := revisionSet[rev]; ok {
				return true
			}
		}
	}
	return false
}
</content>
