// Package coordinator implements IndexingCoordinator: per file, compares
// the latest revision touching it against the last-indexed revision
// recorded in ShardStore's metadata, skips unchanged files, and otherwise
// drives a full replay through FileIndexer before committing to
// ShardStore. File-level work is fanned out with bounded parallelism;
// ShardStore itself serializes the actual writes.
package coordinator

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"contextpilot/internal/errs"
	"contextpilot/internal/indexer"
	"contextpilot/internal/logging"
	"contextpilot/internal/shardstore"
	"contextpilot/internal/vcs"
)

// Outcome tags how one file's indexing run ended.
type Outcome int

const (
	OutcomeIndexed Outcome = iota
	OutcomeSkipped
	OutcomeFailed
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIndexed:
		return "indexed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// FileResult is one file's outcome from a coordinator run.
type FileResult struct {
	File    string
	Outcome Outcome
	Lines   int
	Err     error
}

// Coordinator drives IndexFiles over a set of paths.
type Coordinator struct {
	History     vcs.HistoryProvider
	Shards      *shardstore.ShardStore
	Indexer     *indexer.FileIndexer
	Concurrency int // max files processed at once; <=0 means unbounded
}

// New returns a Coordinator wired to history and shards, creating its own
// FileIndexer from history.
func New(history vcs.HistoryProvider, shards *shardstore.ShardStore, concurrency int) *Coordinator {
	return &Coordinator{
		History:     history,
		Shards:      shards,
		Indexer:     indexer.New(history),
		Concurrency: concurrency,
	}
}

// IndexFiles runs the coordinator over files, returning one FileResult per
// input path in the same order. A single file's failure never aborts the
// others. The returned error is always nil: a ctx canceled before or
// during the run shows up as OutcomeAborted in the affected results.
func (c *Coordinator) IndexFiles(ctx context.Context, files []string) ([]FileResult, error) {
	runID := logging.NewRunID()
	audit := logging.AuditWithRun(runID)
	logging.Coordinator("run %s: indexing %d files", runID, len(files))

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	if c.Concurrency > 0 {
		g.SetLimit(c.Concurrency)
	}

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			results[i] = c.indexOne(gctx, audit, file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (c *Coordinator) indexOne(ctx context.Context, audit *logging.AuditLogger, file string) FileResult {
	if err := ctx.Err(); err != nil {
		return FileResult{File: file, Outcome: OutcomeAborted, Err: err}
	}

	last := c.Shards.LastIndexedRevision(file)
	head, err := c.History.HeadRevisionFor(ctx, file)
	if err != nil && ctx.Err() == nil {
		// History lookups get one retry before the file is failed.
		head, err = c.History.HeadRevisionFor(ctx, file)
	}
	if err != nil {
		wrapped := &errs.HistoryUnavailableError{File: file, Op: "head_revision_for", Cause: err}
		audit.IndexFailed(file, "", wrapped)
		logging.CoordinatorError("head revision lookup failed for %s: %v", file, wrapped)
		return FileResult{File: file, Outcome: OutcomeFailed, Err: wrapped}
	}

	if last != "" && last == head {
		audit.IndexSkip(file, head)
		return FileResult{File: file, Outcome: OutcomeSkipped}
	}

	audit.IndexStart(file)
	start := time.Now()

	records, err := c.Indexer.IndexFile(ctx, file, nil)
	var ioErr *errs.IOError
	var histErr *errs.HistoryUnavailableError
	if err != nil && ctx.Err() == nil && (errors.As(err, &ioErr) || errors.As(err, &histErr)) {
		// I/O and history failures get one retry (a second full replay).
		records, err = c.Indexer.IndexFile(ctx, file, nil)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
			logging.CoordinatorWarn("indexing aborted for %s: %v", file, err)
			return FileResult{File: file, Outcome: OutcomeAborted, Err: err}
		}
		var revision string
		var ife *errs.IndexFailedError
		if errors.As(err, &ife) {
			revision = ife.Revision
		}
		audit.IndexFailed(file, revision, err)
		logging.CoordinatorError("indexing failed for %s: %v", file, err)
		return FileResult{File: file, Outcome: OutcomeFailed, Err: err}
	}

	err = c.Shards.ReplaceAndMarkIndexed(file, records, head)
	if errors.As(err, &ioErr) {
		err = c.Shards.ReplaceAndMarkIndexed(file, records, head)
	}
	if err != nil {
		audit.IndexFailed(file, head, err)
		logging.CoordinatorError("shard commit failed for %s: %v", file, err)
		return FileResult{File: file, Outcome: OutcomeFailed, Err: err}
	}

	audit.IndexComplete(file, head, len(records), time.Since(start).Milliseconds())
	return FileResult{File: file, Outcome: OutcomeIndexed, Lines: len(records)}
}

// Summary tallies outcomes across a run, the basis for a coordinator's
// exit code.
type Summary struct {
	Indexed, Skipped, Failed, Aborted int
}

// Summarize tallies results by outcome.
func Summarize(results []FileResult) Summary {
	var s Summary
	for _, r := range results {
		switch r.Outcome {
		case OutcomeIndexed:
			s.Indexed++
		case OutcomeSkipped:
			s.Skipped++
		case OutcomeFailed:
			s.Failed++
		case OutcomeAborted:
			s.Aborted++
		}
	}
	return s
}
</content>
