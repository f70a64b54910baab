package coordinator

import (
	"context"
	"testing"

	"go.uber.org/goleak"

	"contextpilot/internal/shardstore"
	"contextpilot/internal/vcs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestStore(t *testing.T) *shardstore.ShardStore {
	t.Helper()
	s, err := shardstore.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestIndexFiles_FreshFileIndexed(t *testing.T) {
	fp := vcs.NewFakeProvider()
	fp.AddRevision("a.go", "c1", "@@ -0,0 +1,1 @@\n+a\n", vcs.RevisionMetadata{AuthorName: "ada"})

	c := New(fp, newTestStore(t), 2)
	results, err := c.IndexFiles(context.Background(), []string{"a.go"})
	if err != nil {
		t.Fatalf("IndexFiles: %v", err)
	}
	if len(results) != 1 || results[0].Outcome != OutcomeIndexed {
		t.Fatalf("expected indexed outcome, got %+v", results)
	}
	if results[0].Lines != 1 {
		t.Errorf("expected 1 line indexed, got %d", results[0].Lines)
	}
}

func TestIndexFiles_SkipsUnchangedHead(t *testing.T) {
	fp := vcs.NewFakeProvider()
	fp.AddRevision("a.go", "c1", "@@ -0,0 +1,1 @@\n+a\n", vcs.RevisionMetadata{AuthorName: "ada"})
	store := newTestStore(t)

	c := New(fp, store, 1)
	ctx := context.Background()
	if _, err := c.IndexFiles(ctx, []string{"a.go"}); err != nil {
		t.Fatalf("first run: %v", err)
	}

	results, err := c.IndexFiles(ctx, []string{"a.go"})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if results[0].Outcome != OutcomeSkipped {
		t.Fatalf("expected skipped outcome on unchanged head, got %+v", results[0])
	}
}

func TestIndexFiles_OneFailureDoesNotAbortOthers(t *testing.T) {
	fp := vcs.NewFakeProvider()
	fp.AddRevision("good.go", "c1", "@@ -0,0 +1,1 @@\n+a\n", vcs.RevisionMetadata{AuthorName: "ada"})
	fp.AddRevision("bad.go", "c1", "not a diff\n", vcs.RevisionMetadata{})

	c := New(fp, newTestStore(t), 2)
	results, err := c.IndexFiles(context.Background(), []string{"good.go", "bad.go"})
	if err != nil {
		t.Fatalf("IndexFiles: %v", err)
	}

	byFile := map[string]FileResult{}
	for _, r := range results {
		byFile[r.File] = r
	}
	if byFile["good.go"].Outcome != OutcomeIndexed {
		t.Errorf("expected good.go indexed, got %+v", byFile["good.go"])
	}
	if byFile["bad.go"].Outcome != OutcomeFailed {
		t.Errorf("expected bad.go failed, got %+v", byFile["bad.go"])
	}

	summary := Summarize(results)
	if summary.Indexed != 1 || summary.Failed != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
}

func TestIndexFiles_AbortedOnCanceledContext(t *testing.T) {
	fp := vcs.NewFakeProvider()
	fp.AddRevision("a.go", "c1", "@@ -0,0 +1,1 @@\n+a\n", vcs.RevisionMetadata{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(fp, newTestStore(t), 1)
	results, err := c.IndexFiles(ctx, []string{"a.go"})
	if err != nil {
		t.Fatalf("IndexFiles: %v", err)
	}
	if results[0].Outcome != OutcomeAborted {
		t.Fatalf("expected aborted outcome on pre-canceled context, got %+v", results[0])
	}
}
</content>
