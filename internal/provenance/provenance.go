// Package provenance holds the in-memory per-file line → revision-history
// mapping that ReorderEngine mutates one hunk at a time.
package provenance

// LineDetail is the provenance record for one current line.
type LineDetail struct {
	// Content is the line's text as it stands after the most recent hunk.
	Content string
	// Revisions is the ordered sequence of revision identifiers that have
	// touched this line, oldest first; never empty, never duplicated
	// adjacently. The last entry is the most recent.
	Revisions []string
}

// clone returns a LineDetail with its own Revisions backing array, so
// mutating the copy never aliases the original.
func (d LineDetail) clone() LineDetail {
	out := LineDetail{Content: d.Content}
	if len(d.Revisions) > 0 {
		out.Revisions = append([]string(nil), d.Revisions...)
	}
	return out
}

// withRevision returns a copy of d with revision appended, unless revision
// already equals the last entry (adjacent duplicates are never recorded).
func (d LineDetail) withRevision(revision string) LineDetail {
	out := d.clone()
	if len(out.Revisions) > 0 && out.Revisions[len(out.Revisions)-1] == revision {
		return out
	}
	out.Revisions = append(out.Revisions, revision)
	return out
}

// Map is the mapping from 1-based line number to LineDetail for one file.
// Keys always form a contiguous 1..=N range; N is the map's current line
// count. A Map is exclusively owned by one FileIndexer from creation to
// flatten — concurrent mutation is never expected.
type Map struct {
	lines map[int]LineDetail
	n     int
}

// New returns an empty ProvenanceMap, the starting state for a file's
// first revision.
func New() *Map {
	return &Map{lines: make(map[int]LineDetail)}
}

// Len returns N, the current line count.
func (m *Map) Len() int { return m.n }

// Get returns the LineDetail at line (1-based) and whether it exists.
func (m *Map) Get(line int) (LineDetail, bool) {
	d, ok := m.lines[line]
	return d, ok
}

// Set writes (or overwrites) the LineDetail at line. Callers are
// responsible for keeping the key range contiguous; use Resize to grow or
// shrink N explicitly.
func (m *Map) Set(line int, detail LineDetail) {
	m.lines[line] = detail
	if line > m.n {
		m.n = line
	}
}

// Delete removes the entry at line. Callers must subsequently shift
// remaining keys and call Resize to restore contiguity.
func (m *Map) Delete(line int) {
	delete(m.lines, line)
}

// Resize sets N directly; used once a shift/shrink operation has made the
// key range 1..=n contiguous again.
func (m *Map) Resize(n int) {
	m.n = n
}

// ShiftUp moves every key >= from upward by delta, iterating in
// descending order so earlier moves never overwrite not-yet-moved keys.
// delta must be >= 0.
func (m *Map) ShiftUp(from, delta int) {
	if delta <= 0 {
		return
	}
	for k := m.n; k >= from; k-- {
		if d, ok := m.lines[k]; ok {
			delete(m.lines, k)
			m.lines[k+delta] = d
		}
	}
	m.n += delta
}

// ShiftDown moves every key >= from downward by delta, iterating in
// ascending order. Keys that land below 1 are never produced by valid
// callers (ReorderEngine always deletes the vacated range first).
func (m *Map) ShiftDown(from, delta int) {
	if delta <= 0 {
		return
	}
	for k := from; k <= m.n; k++ {
		if d, ok := m.lines[k]; ok {
			delete(m.lines, k)
			m.lines[k-delta] = d
		}
	}
	m.n -= delta
}

// Contiguous reports whether keys form exactly 1..=N with no gaps, per the
// ProvenanceMap invariant. Used by ReorderEngine after every hunk.
func (m *Map) Contiguous() bool {
	if len(m.lines) != m.n {
		return false
	}
	for k := range m.lines {
		if k < 1 || k > m.n {
			return false
		}
	}
	return true
}

// FileRecord is one flattened ShardStore entry: one per current line.
type FileRecord struct {
	FilePath    string   `json:"file_path"`
	LineNumber  int      `json:"line_number"`
	Revisions   []string `json:"revisions"`
	AuthorNames []string `json:"author_names"`
}

// Flatten converts the map into FileRecords, one per line, in ascending
// line order. AuthorNames is left empty; FileIndexer fills it via a
// batched HistoryProvider metadata lookup.
func (m *Map) Flatten(filePath string) []FileRecord {
	out := make([]FileRecord, 0, m.n)
	for i := 1; i <= m.n; i++ {
		d, ok := m.lines[i]
		if !ok {
			continue
		}
		out = append(out, FileRecord{
			FilePath:   filePath,
			LineNumber: i,
			Revisions:  append([]string(nil), d.Revisions...),
		})
	}
	return out
}

// WithRevision is exported so ReorderEngine can append a revision to an
// existing LineDetail without reaching into its internals.
func WithRevision(d LineDetail, revision string) LineDetail {
	return d.withRevision(revision)
}
</content>
