package workspace

import (
	"strings"
	"testing"
)

func TestResolveDefaultsNameToRepoBasename(t *testing.T) {
	w, err := Resolve("/tmp/my-repo", "")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if w.Name != "my-repo" {
		t.Errorf("expected name my-repo, got %q", w.Name)
	}
	if !strings.HasSuffix(w.DBRoot, "/.context_pilot_db/my-repo") {
		t.Errorf("unexpected db root: %q", w.DBRoot)
	}
}

func TestResolveRejectsInvalidName(t *testing.T) {
	if _, err := Resolve("/tmp/repo", "has a space"); err == nil {
		t.Fatal("expected error for invalid workspace name")
	}
}

func TestEnsureDirsCreatesDBRoot(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	w, err := Resolve("/tmp/repo", "proj")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := w.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs: %v", err)
	}
}
</content>
