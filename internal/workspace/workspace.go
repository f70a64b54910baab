// Package workspace resolves the on-disk workspace DB root:
// $HOME/.context_pilot_db/<workspace_name>/. Resolution happens once at
// process startup and the result is threaded explicitly through every
// caller — there is no process-wide singleton, so two workspaces can be
// driven from the same process (e.g. in tests) without interference.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

const rootDirName = ".context_pilot_db"

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Workspace is a resolved DB root plus the repository path it indexes.
type Workspace struct {
	// Name is the workspace identifier, usually derived from the
	// repository's basename.
	Name string
	// RepoRoot is the filesystem path to the repository being indexed.
	RepoRoot string
	// DBRoot is $HOME/.context_pilot_db/<Name>, created on demand.
	DBRoot string
}

// Resolve derives a Workspace for repoRoot. If name is empty, it defaults
// to filepath.Base(repoRoot). Resolve does not create DBRoot; call
// EnsureDirs for that.
func Resolve(repoRoot, name string) (*Workspace, error) {
	absRepo, err := filepath.Abs(repoRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve repo root: %w", err)
	}
	if name == "" {
		name = filepath.Base(absRepo)
	}
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("invalid workspace name %q: must match %s", name, validName.String())
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	return &Workspace{
		Name:     name,
		RepoRoot: absRepo,
		DBRoot:   filepath.Join(home, rootDirName, name),
	}, nil
}

// EnsureDirs creates DBRoot if it doesn't exist. It does not create the
// logs subdirectory.
func (w *Workspace) EnsureDirs() error {
	if err := os.MkdirAll(w.DBRoot, 0o755); err != nil {
		return fmt.Errorf("create workspace db root %s: %w", w.DBRoot, err)
	}
	return nil
}

// ConfigPath is the path to this workspace's config.json.
func (w *Workspace) ConfigPath() string {
	return filepath.Join(w.DBRoot, "config.json")
}
</content>
