package vcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"contextpilot/internal/contentdiff"
	"contextpilot/internal/diffparse"
)

// Snapshot is one revision's full content for a file.
type Snapshot struct {
	Revision string
	Content  string
	Meta     RevisionMetadata
}

// ContentSnapshotProvider is a HistoryProvider backed by successive
// full-content snapshots rather than native diff text. It synthesizes
// zero-context unified diff text between consecutive snapshots via
// internal/contentdiff so every downstream consumer still goes through
// DiffParser uniformly; the core engine never needs to know a given
// file's history didn't come from git.
type ContentSnapshotProvider struct {
	snapshots map[string][]Snapshot // path -> snapshots, oldest first
}

// NewContentSnapshotProvider returns an empty provider ready for AddSnapshot calls.
func NewContentSnapshotProvider() *ContentSnapshotProvider {
	return &ContentSnapshotProvider{snapshots: make(map[string][]Snapshot)}
}

// AddSnapshot appends the next known revision of path's content.
func (p *ContentSnapshotProvider) AddSnapshot(path string, snap Snapshot) {
	p.snapshots[path] = append(p.snapshots[path], snap)
}

func (p *ContentSnapshotProvider) RevisionsFor(ctx context.Context, path string) ([]string, error) {
	snaps := p.snapshots[path]
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.Revision
	}
	return out, nil
}

// Diff synthesizes zero-context unified diff text between the snapshot at
// revision and the one immediately preceding it (empty content if
// revision is the file's first snapshot).
func (p *ContentSnapshotProvider) Diff(ctx context.Context, revision, path string) (string, error) {
	snaps := p.snapshots[path]
	idx := -1
	for i, s := range snaps {
		if s.Revision == revision {
			idx = i
			break
		}
	}
	if idx == -1 {
		return "", fmt.Errorf("content snapshot provider: no snapshot %s for %s", revision, path)
	}
	prev := ""
	if idx > 0 {
		prev = snaps[idx-1].Content
	}
	hunks := contentdiff.Hunks(prev, snaps[idx].Content)
	return renderUnifiedDiff(hunks), nil
}

func (p *ContentSnapshotProvider) Metadata(ctx context.Context, revision string) (RevisionMetadata, error) {
	for _, snaps := range p.snapshots {
		for _, s := range snaps {
			if s.Revision == revision {
				return s.Meta, nil
			}
		}
	}
	return RevisionMetadata{}, fmt.Errorf("content snapshot provider: no metadata for %s", revision)
}

func (p *ContentSnapshotProvider) HeadRevisionFor(ctx context.Context, path string) (string, error) {
	snaps := p.snapshots[path]
	if len(snaps) == 0 {
		return "", nil
	}
	return snaps[len(snaps)-1].Revision, nil
}

// renderUnifiedDiff renders hunks as zero-context unified diff text, the
// inverse of diffparse.ParseDiff, so a ContentSnapshotProvider can satisfy
// HistoryProvider.Diff's text-returning signature.
func renderUnifiedDiff(hunks []diffparse.Hunk) string {
	var b strings.Builder
	for _, h := range hunks {
		b.WriteString("@@ -")
		b.WriteString(strconv.Itoa(h.DeletedStart))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(h.DeletedCount))
		b.WriteString(" +")
		b.WriteString(strconv.Itoa(h.AddedStart))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(h.AddedCount))
		b.WriteString(" @@\n")
		for _, l := range h.DeletedContent {
			b.WriteByte('-')
			b.WriteString(l)
			b.WriteByte('\n')
		}
		for _, l := range h.AddedContent {
			b.WriteByte('+')
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
</content>
