package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"contextpilot/internal/indexer"
	"contextpilot/internal/query"
	"contextpilot/internal/shardstore"
	"contextpilot/internal/vcs"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	fp := vcs.NewFakeProvider()
	fp.AddRevision("f.go", "c1", "@@ -0,0 +1,2 @@\n+a\n+b\n", vcs.RevisionMetadata{AuthorName: "ada", Subject: "add lines"})

	store, err := shardstore.Open(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	idx := indexer.New(fp)
	records, err := idx.IndexFile(context.Background(), "f.go", nil)
	if err != nil {
		t.Fatalf("IndexFile: %v", err)
	}
	if err := store.ReplaceAndMarkIndexed("f.go", records, "c1"); err != nil {
		t.Fatalf("ReplaceAndMarkIndexed: %v", err)
	}

	api := query.New(store, idx, 0)
	m, err := NewModel(context.Background(), api, "f.go", 1, 2)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func TestModel_QuitsOnQ(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected a quit command on 'q'")
	}
}

func TestModel_WindowResizeSizesPanes(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	if m.detail.Width == 0 {
		t.Error("expected detail pane width to be set after resize")
	}
}

func TestModel_RenderDetailForSelectedLine(t *testing.T) {
	m := newTestModel(t)
	out := m.renderDetail()
	if out == "" {
		t.Error("expected non-empty detail render for a populated list")
	}
}
</content>
