// Package contentdiff synthesizes zero-context diffparse.Hunks directly
// from two content snapshots, using github.com/sergi/go-diff's line-mode
// diffing. DiffParser consumes diff *text* that a HistoryProvider already
// produced; this package exists for the HistoryProvider implementations
// that only have successive full-content snapshots (ContentSnapshotProvider)
// and for test fixtures that want to express a revision as "before"/"after"
// content rather than hand-written unified diff text.
package contentdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"contextpilot/internal/diffparse"
)

// Engine computes line-level diffs between two content snapshots. The
// zero value is not usable; use NewEngine.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine builds a content-diff engine tuned for code: no timeout
// (accuracy over latency at the sizes this tool operates on).
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp}
}

// DefaultEngine is a singleton for package-level convenience use.
var DefaultEngine = NewEngine()

// Hunks returns the sequence of diffparse.Hunks that, if rendered as
// unified diff text with zero context and parsed back through
// diffparse.ParseDiff, would describe the same change from oldContent to
// newContent.
func Hunks(oldContent, newContent string) []diffparse.Hunk {
	return DefaultEngine.Hunks(oldContent, newContent)
}

// Hunks computes the zero-context hunks between oldContent and newContent.
func (e *Engine) Hunks(oldContent, newContent string) []diffparse.Hunk {
	a, b, lineArray := e.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)
	return e.toHunks(diffs)
}

// lineOp is one line's classification within the dmp diff sequence.
type lineOp struct {
	kind    diffmatchpatch.Operation
	oldLine int // 1-based, valid for DiffEqual/DiffDelete
	newLine int // 1-based, valid for DiffEqual/DiffInsert
	content string
}

// toHunks groups consecutive non-equal runs into zero-context hunks: any
// run of deletes immediately followed by (or combined with) a run of
// inserts at the same position becomes one hunk, since there is no
// context to carry between separate change regions.
func (e *Engine) toHunks(diffs []diffmatchpatch.Diff) []diffparse.Hunk {
	ops := toLineOps(diffs)

	var hunks []diffparse.Hunk
	i := 0
	for i < len(ops) {
		if ops[i].kind == diffmatchpatch.DiffEqual {
			i++
			continue
		}
		start := i
		var deleted, added []string
		deletedStart, addedStart := 0, 0
		for i < len(ops) && ops[i].kind != diffmatchpatch.DiffEqual {
			switch ops[i].kind {
			case diffmatchpatch.DiffDelete:
				if len(deleted) == 0 {
					deletedStart = ops[i].oldLine
				}
				deleted = append(deleted, ops[i].content)
			case diffmatchpatch.DiffInsert:
				if len(added) == 0 {
					addedStart = ops[i].newLine
				}
				added = append(added, ops[i].content)
			}
			i++
		}
		if start == i {
			i++
			continue
		}
		if addedStart == 0 {
			// Pure deletion: the unified-diff convention points added_start
			// at the line preceding the cut in the new file's numbering.
			addedStart = precedingNewLine(ops, start)
		}
		if deletedStart == 0 {
			deletedStart = precedingOldLine(ops, start) + 1
		}
		hunks = append(hunks, diffparse.Hunk{
			DeletedStart:   deletedStart,
			DeletedCount:   len(deleted),
			AddedStart:     addedStart,
			AddedCount:     len(added),
			DeletedContent: deleted,
			AddedContent:   added,
		})
	}
	return hunks
}

func precedingNewLine(ops []lineOp, at int) int {
	for j := at - 1; j >= 0; j-- {
		if ops[j].kind != diffmatchpatch.DiffDelete {
			return ops[j].newLine
		}
	}
	return 0
}

func precedingOldLine(ops []lineOp, at int) int {
	for j := at - 1; j >= 0; j-- {
		if ops[j].kind != diffmatchpatch.DiffInsert {
			return ops[j].oldLine
		}
	}
	return 0
}

func toLineOps(diffs []diffmatchpatch.Diff) []lineOp {
	var ops []lineOp
	oldLine, newLine := 0, 0
	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				oldLine++
				newLine++
				ops = append(ops, lineOp{kind: d.Type, oldLine: oldLine, newLine: newLine, content: line})
			case diffmatchpatch.DiffDelete:
				oldLine++
				ops = append(ops, lineOp{kind: d.Type, oldLine: oldLine, content: line})
			case diffmatchpatch.DiffInsert:
				newLine++
				ops = append(ops, lineOp{kind: d.Type, newLine: newLine, content: line})
			}
		}
	}
	return ops
}
</content>
