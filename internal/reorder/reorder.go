// Package reorder implements the ReorderEngine: the core algorithm that
// mutates a ProvenanceMap to reflect one classified hunk. This is the
// heart of the line-provenance engine; every other package exists to feed
// it ordered, classified hunks or to persist/query what it produces.
package reorder

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"contextpilot/internal/classify"
	"contextpilot/internal/diffparse"
	"contextpilot/internal/errs"
	"contextpilot/internal/provenance"
)

// SimilarityThreshold is the maximum Levenshtein distance at which two
// lines are considered the same line continuing under new content.
const SimilarityThreshold = 3

// similar reports whether a and b are within SimilarityThreshold.
func similar(a, b string) bool {
	if a == b {
		return true
	}
	return levenshtein.ComputeDistance(a, b) <= SimilarityThreshold
}

// SimilarityMatch greedily pairs deleted lines with added lines for
// ManyToMany hunks. Deleted lines are considered in order; for each, the
// leftmost not-yet-used added line within SimilarityThreshold is claimed.
// The result maps added-line index to the deleted-line index it inherits
// history from — this is the "Replaced" set from the hunk shape spec,
// keyed by added index since that is what the per-added-line write loop
// needs.
func SimilarityMatch(deletedContent, addedContent []string) map[int]int {
	matched := make(map[int]int)
	usedAdded := make(map[int]bool)
	for di, dline := range deletedContent {
		for ai, aline := range addedContent {
			if usedAdded[ai] {
				continue
			}
			if similar(dline, aline) {
				usedAdded[ai] = true
				matched[ai] = di
				break
			}
		}
	}
	return matched
}

// Apply mutates m in place to reflect hunk h, classified as shape,
// introduced by revision. It returns InvariantViolationError if the
// resulting map is not contiguous or its size doesn't match the
// deleted/added line-count law.
func Apply(m *provenance.Map, file, revision string, shape classify.HunkShape, h diffparse.Hunk) error {
	before := m.Len()
	delta := h.AddedCount - h.DeletedCount

	switch shape {
	case classify.PureInsertion:
		applyPureInsertion(m, revision, h)
	case classify.SingleDeletion:
		applySingleDeletion(m, h)
	case classify.BlockDeletion:
		applyBlockDeletion(m, h)
	case classify.SingleReplace:
		applySingleReplace(m, revision, h)
	case classify.ManyToOne:
		applyManyToOne(m, revision, h)
	case classify.ManyToMany:
		applyManyToMany(m, revision, h)
	default:
		return &errs.InvariantViolationError{File: file, Revision: revision, Detail: fmt.Sprintf("unknown hunk shape %v", shape)}
	}

	if !m.Contiguous() {
		return &errs.InvariantViolationError{File: file, Revision: revision, Detail: "map keys are not contiguous 1..N after hunk application"}
	}
	if want := before + delta; m.Len() != want {
		return &errs.InvariantViolationError{File: file, Revision: revision,
			Detail: fmt.Sprintf("line-count law violated: N=%d before, Δ=%d, want N'=%d, got %d", before, delta, want, m.Len())}
	}
	return nil
}

// applyPureInsertion: shift keys >= s up by added_count, then write fresh
// entries into the vacated [s, s+added_count) range. Works unmodified when
// M starts empty (s=1, no existing keys to shift).
func applyPureInsertion(m *provenance.Map, revision string, h diffparse.Hunk) {
	s := h.AddedStart
	m.ShiftUp(s, h.AddedCount)
	for i := 0; i < h.AddedCount; i++ {
		m.Set(s+i, provenance.LineDetail{Content: h.AddedContent[i], Revisions: []string{revision}})
	}
}

// applySingleDeletion: remove key s, shift keys > s down by 1.
func applySingleDeletion(m *provenance.Map, h diffparse.Hunk) {
	s := h.AddedStart
	m.Delete(s)
	m.ShiftDown(s+1, 1)
}

// applyBlockDeletion: remove keys [s, s+deleted_count), shift the
// remainder down by deleted_count.
func applyBlockDeletion(m *provenance.Map, h diffparse.Hunk) {
	s := h.AddedStart
	for k := s; k < s+h.DeletedCount; k++ {
		m.Delete(k)
	}
	m.ShiftDown(s+h.DeletedCount, h.DeletedCount)
}

// applySingleReplace: overwrite content at s; if the new content is
// similar to the old, the line is considered the same line continuing
// (append revision), otherwise it's a new line (fresh history).
func applySingleReplace(m *provenance.Map, revision string, h diffparse.Hunk) {
	s := h.AddedStart
	newContent := h.AddedContent[0]
	old, _ := m.Get(s)
	var next provenance.LineDetail
	if similar(old.Content, newContent) {
		next = provenance.WithRevision(old, revision)
		next.Content = newContent
	} else {
		next = provenance.LineDetail{Content: newContent, Revisions: []string{revision}}
	}
	m.Set(s, next)
}

// applyManyToOne: the sole added line inherits history from the deleted
// block's first line only — §4.3 pins the matched deleted index to 0 if
// any match exists at all, so this checks deleted[0] directly rather than
// searching the whole block.
func applyManyToOne(m *provenance.Map, revision string, h diffparse.Hunk) {
	s := h.AddedStart
	newContent := h.AddedContent[0]
	matchedHead := len(h.DeletedContent) > 0 && similar(h.DeletedContent[0], newContent)

	var head provenance.LineDetail
	if matchedHead {
		head, _ = m.Get(s)
	}
	for k := s; k < s+h.DeletedCount; k++ {
		m.Delete(k)
	}
	m.ShiftDown(s+h.DeletedCount, h.DeletedCount-1)

	if matchedHead {
		next := provenance.WithRevision(head, revision)
		next.Content = newContent
		m.Set(s, next)
	} else {
		m.Set(s, provenance.LineDetail{Content: newContent, Revisions: []string{revision}})
	}
}

// applyManyToMany: matches deleted lines to added lines via
// SimilarityMatch, makes room for the size delta, then writes every added
// line either as a continuation of its matched deleted line or fresh.
func applyManyToMany(m *provenance.Map, revision string, h diffparse.Hunk) {
	s := h.AddedStart
	delta := h.AddedCount - h.DeletedCount
	matched := SimilarityMatch(h.DeletedContent, h.AddedContent) // addedIdx -> deletedIdx

	preserved := make(map[int]provenance.LineDetail, len(matched))
	for _, deletedIdx := range matched {
		if d, ok := m.Get(s + deletedIdx); ok {
			preserved[deletedIdx] = d
		}
	}

	for k := s; k < s+h.DeletedCount; k++ {
		m.Delete(k)
	}

	switch {
	case delta > 0:
		m.ShiftUp(s+h.DeletedCount, delta)
	case delta < 0:
		m.ShiftDown(s+h.DeletedCount, -delta)
	}

	for i := 0; i < h.AddedCount; i++ {
		key := s + i
		if deletedIdx, ok := matched[i]; ok {
			if old, ok2 := preserved[deletedIdx]; ok2 {
				next := provenance.WithRevision(old, revision)
				next.Content = h.AddedContent[i]
				m.Set(key, next)
				continue
			}
		}
		m.Set(key, provenance.LineDetail{Content: h.AddedContent[i], Revisions: []string{revision}})
	}
}
</content>
