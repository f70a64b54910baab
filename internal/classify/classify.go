// Package classify tags a parsed Hunk with one of six shapes, driving
// which ReorderEngine branch applies it.
package classify

import (
	"contextpilot/internal/diffparse"
	"contextpilot/internal/errs"
)

// HunkShape names the six ways a hunk's deleted/added counts can combine.
type HunkShape int

const (
	PureInsertion  HunkShape = iota // deleted=0, added>0
	SingleDeletion                  // deleted=1, added=0
	BlockDeletion                   // deleted>1, added=0
	SingleReplace                   // deleted=1, added=1
	ManyToOne                       // deleted>1, added=1
	ManyToMany                      // deleted>1, added>1 (also deleted=1, added>1)
)

func (s HunkShape) String() string {
	switch s {
	case PureInsertion:
		return "PureInsertion"
	case SingleDeletion:
		return "SingleDeletion"
	case BlockDeletion:
		return "BlockDeletion"
	case SingleReplace:
		return "SingleReplace"
	case ManyToOne:
		return "ManyToOne"
	case ManyToMany:
		return "ManyToMany"
	default:
		return "Unknown"
	}
}

// Classify maps a Hunk to its HunkShape. The degenerate 0,0 hunk is
// rejected as MalformedDiff; DiffParser should never produce one, but
// Classify is defensive since it may also be called on hunks synthesized
// directly (e.g. by internal/contentdiff).
func Classify(file string, h diffparse.Hunk) (HunkShape, error) {
	d, a := h.DeletedCount, h.AddedCount
	switch {
	case d == 0 && a == 0:
		return 0, &errs.MalformedDiffError{File: file, Detail: "empty hunk (0 deleted, 0 added)"}
	case d == 0 && a > 0:
		return PureInsertion, nil
	case d == 1 && a == 0:
		return SingleDeletion, nil
	case d > 1 && a == 0:
		return BlockDeletion, nil
	case d == 1 && a == 1:
		return SingleReplace, nil
	case d > 1 && a == 1:
		return ManyToOne, nil
	default: // d > 1 && a > 1, or d == 1 && a > 1
		return ManyToMany, nil
	}
}
</content>
