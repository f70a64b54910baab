package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"contextpilot/internal/errs"
	"contextpilot/internal/logging"
)

// GitProvider implements HistoryProvider by shelling out to the git
// binary: one short-lived process per call, stdout captured and
// parsed, no long-lived git subprocess held open.
type GitProvider struct {
	// RepoRoot is the working directory every git invocation runs in.
	RepoRoot string
}

// NewGitProvider returns a GitProvider rooted at repoRoot.
func NewGitProvider(repoRoot string) *GitProvider {
	return &GitProvider{RepoRoot: repoRoot}
}

func (g *GitProvider) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.RepoRoot
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

// RevisionsFor returns commit hashes touching path, oldest first,
// following renames so a file's full history is captured under its
// current path.
func (g *GitProvider) RevisionsFor(ctx context.Context, path string) ([]string, error) {
	logging.HistoryDebug("git log --follow --reverse for %s", path)
	out, err := g.run(ctx, "log", "--follow", "--reverse", "--format=%H", "--", path)
	if err != nil {
		return nil, &errs.HistoryUnavailableError{File: path, Op: "revisions_for", Cause: err}
	}
	var revisions []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			revisions = append(revisions, line)
		}
	}
	return revisions, nil
}

// Diff returns the zero-context, rename-aware unified diff for path at
// revision against its parent (or against the empty tree, for a file's
// first revision — git show renders that as a pure addition).
func (g *GitProvider) Diff(ctx context.Context, revision, path string) (string, error) {
	out, err := g.run(ctx, "show", "--unified=0", "--find-renames", "--format=", revision, "--", path)
	if err != nil {
		return "", &errs.HistoryUnavailableError{File: path, Op: "diff@" + revision, Cause: err}
	}
	return out, nil
}

// Metadata returns author/subject/body/timestamp for revision.
func (g *GitProvider) Metadata(ctx context.Context, revision string) (RevisionMetadata, error) {
	out, err := g.run(ctx, "show", "-s", "--format=%an%x00%s%x00%b%x00%ct", revision)
	if err != nil {
		return RevisionMetadata{}, &errs.HistoryUnavailableError{Op: "metadata@" + revision, Cause: err}
	}
	parts := strings.SplitN(strings.TrimRight(out, "\n"), "\x00", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	ts, _ := strconv.ParseInt(strings.TrimSpace(parts[3]), 10, 64)
	return RevisionMetadata{
		AuthorName: parts[0],
		Subject:    parts[1],
		Body:       parts[2],
		Timestamp:  ts,
	}, nil
}

// HeadRevisionFor returns the newest commit hash touching path, or ("",
// nil) if git reports no history for it.
func (g *GitProvider) HeadRevisionFor(ctx context.Context, path string) (string, error) {
	out, err := g.run(ctx, "log", "-1", "--format=%H", "--", path)
	if err != nil {
		return "", &errs.HistoryUnavailableError{File: path, Op: "head_revision_for", Cause: err}
	}
	head := strings.TrimSpace(out)
	return head, nil
}

// ListFiles returns every file path git currently tracks, relative to
// RepoRoot. Using git's own tracked-file list rather than walking the
// directory tree means .gitignore rules are honored for free — an
// ignored file was never tracked in the first place.
func (g *GitProvider) ListFiles(ctx context.Context) ([]string, error) {
	out, err := g.run(ctx, "ls-files")
	if err != nil {
		return nil, &errs.HistoryUnavailableError{Op: "ls-files", Cause: err}
	}
	var files []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}
</content>
