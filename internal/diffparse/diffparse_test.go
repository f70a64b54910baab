package diffparse

import (
	"errors"
	"testing"

	"contextpilot/internal/errs"
	"github.com/google/go-cmp/cmp"
)

func TestParseDiff_PureInsertion(t *testing.T) {
	text := "@@ -0,0 +1,2 @@\n+a\n+b\n"
	hunks, err := ParseDiff("f.go", text)
	if err != nil {
		t.Fatalf("ParseDiff: %v", err)
	}
	want := []Hunk{{
		DeletedStart: 0, DeletedCount: 0,
		AddedStart: 1, AddedCount: 2,
		AddedContent: []string{"a", "b"},
	}}
	if diff := cmp.Diff(want, hunks); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDiff_OmittedCountsDefaultToOne(t *testing.T) {
	text := "@@ -5 +5 @@\n-old\n+new\n"
	hunks, err := ParseDiff("f.go", text)
	if err != nil {
		t.Fatalf("ParseDiff: %v", err)
	}
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
	h := hunks[0]
	if h.DeletedCount != 1 || h.AddedCount != 1 {
		t.Errorf("expected counts to default to 1, got deleted=%d added=%d", h.DeletedCount, h.AddedCount)
	}
}

func TestParseDiff_MultipleHunks(t *testing.T) {
	text := "@@ -10,1 +10,1 @@\n-x\n+y\n@@ -1,0 +1,1 @@\n+z\n"
	hunks, err := ParseDiff("f.go", text)
	if err != nil {
		t.Fatalf("ParseDiff: %v", err)
	}
	if len(hunks) != 2 {
		t.Fatalf("expected 2 hunks, got %d", len(hunks))
	}
	if hunks[0].AddedStart != 10 || hunks[1].AddedStart != 1 {
		t.Errorf("expected hunk order preserved as parsed, got %+v", hunks)
	}
}

func TestParseDiff_RejectsBadHeader(t *testing.T) {
	_, err := ParseDiff("f.go", "@@ garbage @@\n+x\n")
	if err == nil {
		t.Fatal("expected error for unparsable header")
	}
	var malformed *errs.MalformedDiffError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedDiffError, got %T: %v", err, err)
	}
}

func TestParseDiff_RejectsCountMismatch(t *testing.T) {
	_, err := ParseDiff("f.go", "@@ -1,2 +1,1 @@\n-a\n+z\n")
	if err == nil {
		t.Fatal("expected error: header promises 2 deleted lines, body has 1")
	}
}

func TestParseDiff_RejectsEmptyHunk(t *testing.T) {
	_, err := ParseDiff("f.go", "@@ -0,0 +0,0 @@\n")
	if err == nil {
		t.Fatal("expected error for degenerate 0,0 hunk")
	}
}

func TestParseDiff_IgnoresPreambleLines(t *testing.T) {
	text := "diff --git a/f.go b/f.go\n--- a/f.go\n+++ b/f.go\n@@ -1,1 +1,1 @@\n-a\n+b\n"
	hunks, err := ParseDiff("f.go", text)
	if err != nil {
		t.Fatalf("ParseDiff: %v", err)
	}
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(hunks))
	}
}
</content>
