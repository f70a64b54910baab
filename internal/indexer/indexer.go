// Package indexer implements FileIndexer: drives a single file's full
// revision history through DiffParser, HunkClassifier, and ReorderEngine,
// then flattens the resulting ProvenanceMap into FileRecords with
// batch-resolved author names.
package indexer

import (
	"context"
	"fmt"
	"sort"

	"contextpilot/internal/classify"
	"contextpilot/internal/diffparse"
	"contextpilot/internal/errs"
	"contextpilot/internal/logging"
	"contextpilot/internal/provenance"
	"contextpilot/internal/reorder"
	"contextpilot/internal/vcs"
)

// FileIndexer drives one file's history replay. It holds no per-file
// state between calls to IndexFile — a ProvenanceMap is created fresh for
// each invocation and discarded once flattened.
type FileIndexer struct {
	History vcs.HistoryProvider
}

// New returns a FileIndexer backed by history.
func New(history vcs.HistoryProvider) *FileIndexer {
	return &FileIndexer{History: history}
}

// IndexFile replays path's full history and returns its flattened
// FileRecords. If revisions is non-nil it restricts replay to that
// caller-supplied subset, preserving order; otherwise the full ordered
// revision list is fetched from History.
//
// Any hunk application failure abandons the file: the partial map is
// discarded and an *errs.IndexFailedError is returned. A file failure is
// never fatal to a caller driving multiple files (see internal/coordinator).
func (fi *FileIndexer) IndexFile(ctx context.Context, path string, revisions []string) ([]provenance.FileRecord, error) {
	if revisions == nil {
		rs, err := fi.History.RevisionsFor(ctx, path)
		if err != nil {
			return nil, &errs.IndexFailedError{File: path, Cause: err}
		}
		revisions = rs
	}

	timer := logging.StartTimer(logging.CategoryIndexer, "IndexFile:"+path)
	defer timer.Stop()

	m := provenance.New()
	for _, revision := range revisions {
		select {
		case <-ctx.Done():
			return nil, &errs.IndexFailedError{File: path, Revision: revision, Cause: ctx.Err()}
		default:
		}

		diffText, err := fi.History.Diff(ctx, revision, path)
		if err != nil {
			logging.IndexerError("diff fetch failed for %s at %s: %v", path, revision, err)
			return nil, &errs.IndexFailedError{File: path, Revision: revision, Cause: err}
		}

		hunks, err := diffparse.ParseDiff(path, diffText)
		if err != nil {
			logging.IndexerError("malformed diff for %s at %s: %v", path, revision, err)
			return nil, &errs.IndexFailedError{File: path, Revision: revision, Cause: err}
		}

		// Descending added_start so earlier shifts never disturb
		// not-yet-applied lower-numbered hunks (§4.3 ordering rule).
		sort.Slice(hunks, func(i, j int) bool { return hunks[i].AddedStart > hunks[j].AddedStart })

		for _, h := range hunks {
			shape, err := classify.Classify(path, h)
			if err != nil {
				logging.IndexerError("classify failed for %s at %s: %v", path, revision, err)
				return nil, &errs.IndexFailedError{File: path, Revision: revision, Cause: err}
			}
			if err := reorder.Apply(m, path, revision, shape, h); err != nil {
				logging.IndexerError("reorder failed for %s at %s: %v", path, revision, err)
				return nil, &errs.IndexFailedError{File: path, Revision: revision, Cause: err}
			}
		}
	}

	records := m.Flatten(path)
	if err := fi.resolveAuthors(ctx, records); err != nil {
		logging.IndexerWarn("author resolution incomplete for %s: %v", path, err)
	}
	return records, nil
}

// resolveAuthors performs a single batched metadata lookup against the
// union of revisions appearing across records, then fills each record's
// AuthorNames from its own revision list. Per §4.4: "a single batched
// metadata lookup against the HistoryProvider keyed by the union of
// revision identifiers appearing in M."
func (fi *FileIndexer) resolveAuthors(ctx context.Context, records []provenance.FileRecord) error {
	union := make(map[string]struct{})
	for _, r := range records {
		for _, rev := range r.Revisions {
			union[rev] = struct{}{}
		}
	}

	authorOf := make(map[string]string, len(union))
	var firstErr error
	for rev := range union {
		meta, err := fi.History.Metadata(ctx, rev)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("metadata for %s: %w", rev, err)
			}
			continue
		}
		authorOf[rev] = meta.AuthorName
	}

	for i := range records {
		seen := make(map[string]struct{})
		var names []string
		for _, rev := range records[i].Revisions {
			name, ok := authorOf[rev]
			if !ok || name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
		records[i].AuthorNames = names
	}
	return firstErr
}
</content>
