package vcs

import (
	"context"
	"testing"
)

func TestFakeProvider_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fp := NewFakeProvider()
	fp.AddRevision("f.go", "c1", "@@ -0,0 +1,1 @@\n+a\n", RevisionMetadata{AuthorName: "ada"})

	revs, err := fp.RevisionsFor(ctx, "f.go")
	if err != nil || len(revs) != 1 || revs[0] != "c1" {
		t.Fatalf("RevisionsFor: %v %v", revs, err)
	}
	head, err := fp.HeadRevisionFor(ctx, "f.go")
	if err != nil || head != "c1" {
		t.Fatalf("HeadRevisionFor: %v %v", head, err)
	}
	diff, err := fp.Diff(ctx, "c1", "f.go")
	if err != nil || diff == "" {
		t.Fatalf("Diff: %q %v", diff, err)
	}
	meta, err := fp.Metadata(ctx, "c1")
	if err != nil || meta.AuthorName != "ada" {
		t.Fatalf("Metadata: %+v %v", meta, err)
	}
}

func TestContentSnapshotProvider_SynthesizesDiff(t *testing.T) {
	ctx := context.Background()
	p := NewContentSnapshotProvider()
	p.AddSnapshot("f.go", Snapshot{Revision: "c1", Content: "a\n"})
	p.AddSnapshot("f.go", Snapshot{Revision: "c2", Content: "a\nb\n"})

	diffText, err := p.Diff(ctx, "c2", "f.go")
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if diffText == "" {
		t.Fatal("expected non-empty synthesized diff")
	}
	head, err := p.HeadRevisionFor(ctx, "f.go")
	if err != nil || head != "c2" {
		t.Fatalf("HeadRevisionFor: %v %v", head, err)
	}
}
</content>
