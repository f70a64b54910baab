package contentdiff

import (
	"strconv"
	"testing"

	"contextpilot/internal/classify"
	"contextpilot/internal/diffparse"
)

func TestHunks_PureInsertion(t *testing.T) {
	old := "a\nb\n"
	next := "a\nb\nc\n"
	hunks := Hunks(old, next)
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d: %+v", len(hunks), hunks)
	}
	h := hunks[0]
	if h.DeletedCount != 0 || h.AddedCount != 1 || h.AddedContent[0] != "c" {
		t.Errorf("unexpected hunk: %+v", h)
	}
	shape, err := classify.Classify("f.go", h)
	if err != nil || shape != classify.PureInsertion {
		t.Errorf("expected PureInsertion, got %v err=%v", shape, err)
	}
}

func TestHunks_SingleReplace(t *testing.T) {
	old := "let a = 5;\n"
	next := "let a = 6;\n"
	hunks := Hunks(old, next)
	if len(hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d: %+v", len(hunks), hunks)
	}
	h := hunks[0]
	if h.DeletedCount != 1 || h.AddedCount != 1 {
		t.Errorf("expected a single replace shape, got %+v", h)
	}
}

func TestHunks_RoundTripThroughDiffParser(t *testing.T) {
	old := "one\ntwo\nthree\n"
	next := "one\nTWO\nthree\nfour\n"
	hunks := Hunks(old, next)
	if len(hunks) == 0 {
		t.Fatal("expected at least one hunk")
	}
	text := render(hunks)
	parsed, err := diffparse.ParseDiff("f.go", text)
	if err != nil {
		t.Fatalf("ParseDiff on synthesized text: %v", err)
	}
	if len(parsed) != len(hunks) {
		t.Fatalf("expected %d hunks after round trip, got %d", len(hunks), len(parsed))
	}
}

func render(hunks []diffparse.Hunk) string {
	var b []byte
	for _, h := range hunks {
		b = append(b, headerLine(h)...)
		for _, l := range h.DeletedContent {
			b = append(b, "-"+l+"\n"...)
		}
		for _, l := range h.AddedContent {
			b = append(b, "+"+l+"\n"...)
		}
	}
	return string(b)
}

func headerLine(h diffparse.Hunk) string {
	return "@@ -" + strconv.Itoa(h.DeletedStart) + "," + strconv.Itoa(h.DeletedCount) +
		" +" + strconv.Itoa(h.AddedStart) + "," + strconv.Itoa(h.AddedCount) + " @@\n"
}
</content>
