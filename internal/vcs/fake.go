package vcs

import (
	"context"
	"fmt"
)

// FakeProvider is a canned, in-memory HistoryProvider for driving the
// engine in tests without a real repository, per §9's subprocess
// abstraction goal.
type FakeProvider struct {
	Revisions map[string][]string          // path -> revision IDs, oldest first
	Diffs     map[string]map[string]string // path -> revision -> diff text
	Meta      map[string]RevisionMetadata  // revision -> metadata
}

// NewFakeProvider returns an empty FakeProvider ready for Add* calls.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Revisions: make(map[string][]string),
		Diffs:     make(map[string]map[string]string),
		Meta:      make(map[string]RevisionMetadata),
	}
}

// AddRevision records that revision touched path with the given diff
// text, appending to path's revision list (callers must add in order).
func (f *FakeProvider) AddRevision(path, revision, diffText string, meta RevisionMetadata) {
	f.Revisions[path] = append(f.Revisions[path], revision)
	if f.Diffs[path] == nil {
		f.Diffs[path] = make(map[string]string)
	}
	f.Diffs[path][revision] = diffText
	f.Meta[revision] = meta
}

func (f *FakeProvider) RevisionsFor(ctx context.Context, path string) ([]string, error) {
	return append([]string(nil), f.Revisions[path]...), nil
}

func (f *FakeProvider) Diff(ctx context.Context, revision, path string) (string, error) {
	byRev, ok := f.Diffs[path]
	if !ok {
		return "", fmt.Errorf("fake provider: no diffs recorded for %s", path)
	}
	text, ok := byRev[revision]
	if !ok {
		return "", fmt.Errorf("fake provider: no diff for %s at %s", path, revision)
	}
	return text, nil
}

func (f *FakeProvider) Metadata(ctx context.Context, revision string) (RevisionMetadata, error) {
	meta, ok := f.Meta[revision]
	if !ok {
		return RevisionMetadata{}, fmt.Errorf("fake provider: no metadata for %s", revision)
	}
	return meta, nil
}

func (f *FakeProvider) HeadRevisionFor(ctx context.Context, path string) (string, error) {
	revs := f.Revisions[path]
	if len(revs) == 0 {
		return "", nil
	}
	return revs[len(revs)-1], nil
}
</content>
