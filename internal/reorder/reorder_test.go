package reorder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"contextpilot/internal/classify"
	"contextpilot/internal/diffparse"
	"contextpilot/internal/provenance"
)

func detail(content string, revisions ...string) provenance.LineDetail {
	return provenance.LineDetail{Content: content, Revisions: revisions}
}

func snapshot(m *provenance.Map) map[int]provenance.LineDetail {
	out := make(map[int]provenance.LineDetail)
	for i := 1; i <= m.Len(); i++ {
		if d, ok := m.Get(i); ok {
			out[i] = d
		}
	}
	return out
}

// S1: pure insertion on an empty map.
func TestS1_PureInsertionOnEmptyMap(t *testing.T) {
	m := provenance.New()
	h := diffparse.Hunk{DeletedStart: 0, DeletedCount: 0, AddedStart: 1, AddedCount: 2, AddedContent: []string{"a", "b"}}
	if err := Apply(m, "f.go", "c1", classify.PureInsertion, h); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := map[int]provenance.LineDetail{1: detail("a", "c1"), 2: detail("b", "c1")}
	if diff := cmp.Diff(want, snapshot(m), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// S2: single-line replace, similar content merges history.
func TestS2_SingleReplaceSimilar(t *testing.T) {
	m := provenance.New()
	m.Set(1, detail("let a = 5;", "c1"))
	h := diffparse.Hunk{DeletedStart: 1, DeletedCount: 1, AddedStart: 1, AddedCount: 1,
		DeletedContent: []string{"let a = 5;"}, AddedContent: []string{"let a = 6;"}}
	if err := Apply(m, "f.go", "c2", classify.SingleReplace, h); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := map[int]provenance.LineDetail{1: detail("let a = 6;", "c1", "c2")}
	if diff := cmp.Diff(want, snapshot(m), cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// S3: unmatched deletion starts fresh history.
func TestS3_SingleReplaceUnmatched(t *testing.T) {
	m := provenance.New()
	m.Set(1, detail("a", "x"))
	m.Set(2, detail("b", "x"))
	m.Set(3, detail("c", "x"))
	m.Set(4, detail("d", "x"))
	m.Set(5, detail("fn main() {}", "c1"))
	h := diffparse.Hunk{DeletedStart: 5, DeletedCount: 1, AddedStart: 5, AddedCount: 1,
		DeletedContent: []string{"fn main() {}"}, AddedContent: []string{"fn start() {}"}}
	if err := Apply(m, "f.go", "c3", classify.SingleReplace, h); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got, _ := m.Get(5)
	want := detail("fn start() {}", "c3")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

// S4: ManyToOne collapse, matched head line.
func TestS4_ManyToOneCollapse(t *testing.T) {
	m := provenance.New()
	for i := 1; i <= 9; i++ {
		m.Set(i, detail("line", "c1"))
	}
	h := diffparse.Hunk{DeletedStart: 2, DeletedCount: 5, AddedStart: 2, AddedCount: 1,
		DeletedContent: []string{"line", "line", "line", "line", "line"}, AddedContent: []string{"line X"}}
	if err := Apply(m, "f.go", "c2", classify.ManyToOne, h); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Len() != 5 {
		t.Fatalf("expected N=5, got %d", m.Len())
	}
	got2, _ := m.Get(2)
	if diff := cmp.Diff(detail("line X", "c1", "c2"), got2); diff != "" {
		t.Errorf("line 2 mismatch (-want +got):\n%s", diff)
	}
	for i := 3; i <= 5; i++ {
		got, _ := m.Get(i)
		if diff := cmp.Diff(detail("line", "c1"), got); diff != "" {
			t.Errorf("line %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

// S5: interleaved insertion and deletion (pure insertion ahead of old lines).
func TestS5_InterleavedInsertion(t *testing.T) {
	m := provenance.New()
	m.Set(1, detail("A", "c1"))
	m.Set(2, detail("B", "c1"))
	h := diffparse.Hunk{DeletedStart: 0, DeletedCount: 0, AddedStart: 1, AddedCount: 2, AddedContent: []string{"H1", "H2"}}
	if err := Apply(m, "f.go", "c2", classify.PureInsertion, h); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Len() != 4 {
		t.Fatalf("expected N=4, got %d", m.Len())
	}
	want := map[int]provenance.LineDetail{
		1: detail("H1", "c2"), 2: detail("H2", "c2"),
		3: detail("A", "c1"), 4: detail("B", "c1"),
	}
	if diff := cmp.Diff(want, snapshot(m)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestBlockDeletion(t *testing.T) {
	m := provenance.New()
	for i := 1; i <= 5; i++ {
		m.Set(i, detail("l", "c1"))
	}
	h := diffparse.Hunk{DeletedStart: 2, DeletedCount: 3, AddedStart: 2, AddedCount: 0}
	if err := Apply(m, "f.go", "c2", classify.BlockDeletion, h); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("expected N=2, got %d", m.Len())
	}
}

func TestManyToMany_GrowsWithPartialMatch(t *testing.T) {
	m := provenance.New()
	m.Set(1, detail("keep before", "c1"))
	m.Set(2, detail("alpha beta", "c1"))
	m.Set(3, detail("gamma delta", "c1"))
	m.Set(4, detail("keep after", "c1"))
	h := diffparse.Hunk{
		DeletedStart: 2, DeletedCount: 2, AddedStart: 2, AddedCount: 3,
		DeletedContent: []string{"alpha beta", "gamma delta"},
		AddedContent:   []string{"alpha beto", "brand new line", "gamma delto"},
	}
	if err := Apply(m, "f.go", "c2", classify.ManyToMany, h); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if m.Len() != 5 {
		t.Fatalf("expected N=5, got %d", m.Len())
	}
	l2, _ := m.Get(2)
	if len(l2.Revisions) != 2 || l2.Content != "alpha beto" {
		t.Errorf("expected line 2 to continue c1's history, got %+v", l2)
	}
	l3, _ := m.Get(3)
	if len(l3.Revisions) != 1 || l3.Revisions[0] != "c2" {
		t.Errorf("expected line 3 to be fresh, got %+v", l3)
	}
	l5, _ := m.Get(5)
	if l5.Content != "keep after" {
		t.Errorf("expected trailing line shifted to 5, got %+v", l5)
	}
}

func TestApply_InvariantViolationOnBadHunk(t *testing.T) {
	m := provenance.New()
	// AddedStart of 5 on an empty map leaves a gap: not contiguous.
	h := diffparse.Hunk{AddedStart: 5, AddedCount: 1, AddedContent: []string{"x"}}
	err := Apply(m, "f.go", "c1", classify.PureInsertion, h)
	if err == nil {
		t.Fatal("expected InvariantViolationError for discontiguous result")
	}
}
</content>
