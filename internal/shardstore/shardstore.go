// Package shardstore persists per-file provenance records across
// size-bounded JSON shard files with a workspace-level routing table, per
// §4.5 and §6 of the workspace DB layout.
package shardstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"contextpilot/internal/errs"
	"contextpilot/internal/logging"
	"contextpilot/internal/provenance"
)

const defaultMaxLinesPerShard = 30

// shard is the on-disk shape of one <shard_id>.json: file_path -> line
// number (as a string key, since JSON object keys must be strings) ->
// FileRecords.
type shard struct {
	id      int
	lines   map[string]map[string][]provenance.FileRecord
	lineCnt int
	dirty   bool
}

func newShard(id int) *shard {
	return &shard{id: id, lines: make(map[string]map[string][]provenance.FileRecord)}
}

func (s *shard) count() int {
	n := 0
	for _, byLine := range s.lines {
		n += len(byLine)
	}
	return n
}

// ShardStore is the behind-a-single-mutex persistence layer described in
// §5: writers hold the lock for append/replace+store, readers take a
// short critical section to copy what they need then release.
type ShardStore struct {
	mu               sync.Mutex
	dbRoot           string
	maxLinesPerShard int

	routing  map[string][]int  // file_path -> shard ids, load-order preserved
	metadata map[string]string // file_path -> last indexed revision

	shards      map[int]*shard
	routingDone bool
}

// Open loads (or initializes) the routing table and indexing metadata
// under dbRoot. Shard files themselves are loaded lazily on first access.
func Open(dbRoot string, maxLinesPerShard int) (*ShardStore, error) {
	if maxLinesPerShard <= 0 {
		maxLinesPerShard = defaultMaxLinesPerShard
	}
	s := &ShardStore{
		dbRoot:           dbRoot,
		maxLinesPerShard: maxLinesPerShard,
		routing:          make(map[string][]int),
		metadata:         make(map[string]string),
		shards:           make(map[int]*shard),
	}
	if err := s.loadRouting(); err != nil {
		return nil, err
	}
	if err := s.loadMetadata(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ShardStore) mappingPath() string  { return filepath.Join(s.dbRoot, "mapping.json") }
func (s *ShardStore) metadataPath() string { return filepath.Join(s.dbRoot, "indexing_metadata.json") }
func (s *ShardStore) shardPath(id int) string {
	return filepath.Join(s.dbRoot, strconv.Itoa(id)+".json")
}

func (s *ShardStore) loadRouting() error {
	data, err := os.ReadFile(s.mappingPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errs.IOError{Path: s.mappingPath(), Op: "read mapping", Cause: err}
	}
	var raw map[string][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return &errs.IOError{Path: s.mappingPath(), Op: "parse mapping", Cause: err}
	}
	s.routing = raw
	return nil
}

func (s *ShardStore) loadMetadata() error {
	data, err := os.ReadFile(s.metadataPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errs.IOError{Path: s.metadataPath(), Op: "read metadata", Cause: err}
	}
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return &errs.IOError{Path: s.metadataPath(), Op: "parse metadata", Cause: err}
	}
	for path, revs := range raw {
		if len(revs) > 0 {
			s.metadata[path] = revs[len(revs)-1]
		}
	}
	return nil
}

// LastIndexedRevision returns IndexingMetadata[filePath], or "" if never indexed.
func (s *ShardStore) LastIndexedRevision(filePath string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata[filePath]
}

// SetLastIndexedRevision records the most recently indexed revision for
// filePath. The list form in indexing_metadata.json is retained for
// forward compatibility but only the tail element is meaningful.
func (s *ShardStore) SetLastIndexedRevision(filePath, revision string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata[filePath] = revision
}

// loadShard returns the shard for id, loading it from disk on first
// access. A corrupt shard is quarantined (renamed with a .corrupt suffix),
// every file routed to it loses its last indexed revision so the next
// coordinator run re-indexes it in full, and ShardCorruptError is returned.
func (s *ShardStore) loadShard(id int) (*shard, error) {
	if sh, ok := s.shards[id]; ok {
		return sh, nil
	}
	path := s.shardPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			sh := newShard(id)
			s.shards[id] = sh
			return sh, nil
		}
		return nil, &errs.IOError{Path: path, Op: "read shard", Cause: err}
	}

	var raw map[string]map[string][]provenance.FileRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		quarantined := path + ".corrupt"
		_ = os.Rename(path, quarantined)
		logging.ShardError("quarantined corrupt shard %d: %v", id, err)
		for file, ids := range s.routing {
			for _, routed := range ids {
				if routed == id {
					delete(s.metadata, file)
					break
				}
			}
		}
		if audit := currentAudit; audit != nil {
			audit.ShardCorrupt(id, err)
		}
		return nil, &errs.ShardCorruptError{ShardID: id, Path: path, Cause: err}
	}
	sh := &shard{id: id, lines: raw}
	s.shards[id] = sh
	return sh, nil
}

// currentAudit, when set via SetAuditLogger, receives ShardCorrupt/
// ShardWrite events. Optional: a nil value means shard events are only
// logged, not audited.
var currentAudit *logging.AuditLogger

// SetAuditLogger attaches a run-scoped audit logger used for ShardWrite/
// ShardCorrupt events emitted during this process's lifetime.
func SetAuditLogger(a *logging.AuditLogger) { currentAudit = a }

// Append locates or creates shards for filePath via the routing table,
// packing records into the tail shard until it reaches
// maxLinesPerShard, then opening a new shard with the next free id.
func (s *ShardStore) Append(filePath string, records []provenance.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(filePath, records)
}

func (s *ShardStore) appendLocked(filePath string, records []provenance.FileRecord) error {
	ids := s.routing[filePath]

	var tail *shard
	if len(ids) > 0 {
		sh, err := s.loadShard(ids[len(ids)-1])
		if err != nil {
			return err
		}
		tail = sh
	}
	if tail == nil || tail.count() >= s.maxLinesPerShard {
		tail = newShard(s.nextFreeShardID())
		ids = append(ids, tail.id)
		s.shards[tail.id] = tail
	}

	for _, rec := range records {
		if tail.count() >= s.maxLinesPerShard {
			tail = newShard(s.nextFreeShardID())
			ids = append(ids, tail.id)
			s.shards[tail.id] = tail
		}
		if tail.lines[filePath] == nil {
			tail.lines[filePath] = make(map[string][]provenance.FileRecord)
		}
		key := strconv.Itoa(rec.LineNumber)
		tail.lines[filePath][key] = append(tail.lines[filePath][key], rec)
		tail.dirty = true
	}

	s.routing[filePath] = ids
	if currentAudit != nil {
		currentAudit.ShardWrite(filePath, tail.id, len(records))
	}
	return nil
}

func (s *ShardStore) nextFreeShardID() int {
	max := -1
	for id := range s.shards {
		if id > max {
			max = id
		}
	}
	for _, ids := range s.routing {
		for _, id := range ids {
			if id > max {
				max = id
			}
		}
	}
	return max + 1
}

// Replace deletes all shard entries for filePath across every shard in
// its routing entry (the shard files themselves remain, only the file's
// sub-map is removed), then appends records fresh.
func (s *ShardStore) Replace(filePath string, records []provenance.FileRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replaceLocked(filePath, records)
}

// replaceLocked is Replace's body, callable from within an already-held
// critical section (see ReplaceAndMarkIndexed).
func (s *ShardStore) replaceLocked(filePath string, records []provenance.FileRecord) error {
	for _, id := range s.routing[filePath] {
		sh, err := s.loadShard(id)
		if err != nil {
			// A corrupt shard has nothing of this file's to remove; continue.
			continue
		}
		if _, ok := sh.lines[filePath]; ok {
			delete(sh.lines, filePath)
			sh.dirty = true
		}
	}
	delete(s.routing, filePath)
	return s.appendLocked(filePath, records)
}

// Lookup unions per-line records for filePath across every shard listed
// for it, returning found records plus the line indices in [start,end]
// for which no record exists.
func (s *ShardStore) Lookup(filePath string, start, end int) ([]provenance.FileRecord, []int, error) {
	s.mu.Lock()
	ids := append([]int(nil), s.routing[filePath]...)
	s.mu.Unlock()

	byLine := make(map[int]provenance.FileRecord)
	s.mu.Lock()
	for _, id := range ids {
		sh, err := s.loadShard(id)
		if err != nil {
			s.mu.Unlock()
			return nil, nil, err
		}
		for lineStr, recs := range sh.lines[filePath] {
			line, convErr := strconv.Atoi(lineStr)
			if convErr != nil || len(recs) == 0 {
				continue
			}
			byLine[line] = recs[len(recs)-1]
		}
	}
	s.mu.Unlock()

	var found []provenance.FileRecord
	var missing []int
	for line := start; line <= end; line++ {
		if rec, ok := byLine[line]; ok {
			found = append(found, rec)
		} else {
			missing = append(missing, line)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].LineNumber < found[j].LineNumber })
	return found, missing, nil
}

// AllRecords returns every record stored for filePath across its routed
// shards, in ascending line order, without bounding by a line range.
func (s *ShardStore) AllRecords(filePath string) ([]provenance.FileRecord, error) {
	s.mu.Lock()
	ids := append([]int(nil), s.routing[filePath]...)
	s.mu.Unlock()

	var out []provenance.FileRecord
	s.mu.Lock()
	for _, id := range ids {
		sh, err := s.loadShard(id)
		if err != nil {
			s.mu.Unlock()
			return nil, err
		}
		for _, recs := range sh.lines[filePath] {
			if len(recs) > 0 {
				out = append(out, recs[len(recs)-1])
			}
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].LineNumber < out[j].LineNumber })
	return out, nil
}

// RoutedFiles returns every file path with a non-empty routing entry.
func (s *ShardStore) RoutedFiles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.routing))
	for f, ids := range s.routing {
		if len(ids) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// ReplaceAndMarkIndexed performs Replace followed by recording revision as
// filePath's last indexed revision, under one critical section — the
// coordinator's per-file commit point, since §5 specifies ShardStore and
// IndexingMetadata share one mutex.
func (s *ShardStore) ReplaceAndMarkIndexed(filePath string, records []provenance.FileRecord, revision string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.replaceLocked(filePath, records); err != nil {
		return err
	}
	s.metadata[filePath] = revision
	return nil
}

// Store atomically rewrites every shard modified this session, plus
// mapping.json and indexing_metadata.json, via temp-file + rename.
func (s *ShardStore) Store() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dbRoot, 0o755); err != nil {
		return &errs.IOError{Path: s.dbRoot, Op: "mkdir", Cause: err}
	}

	for id, sh := range s.shards {
		if !sh.dirty {
			continue
		}
		data, err := json.MarshalIndent(sh.lines, "", "  ")
		if err != nil {
			return &errs.IOError{Path: s.shardPath(id), Op: "marshal shard", Cause: err}
		}
		if err := writeFileAtomic(s.shardPath(id), data); err != nil {
			return err
		}
		sh.dirty = false
	}

	mappingData, err := json.MarshalIndent(s.routing, "", "  ")
	if err != nil {
		return &errs.IOError{Path: s.mappingPath(), Op: "marshal mapping", Cause: err}
	}
	if err := writeFileAtomic(s.mappingPath(), mappingData); err != nil {
		return err
	}

	metaOut := make(map[string][]string, len(s.metadata))
	for path, rev := range s.metadata {
		metaOut[path] = []string{rev}
	}
	metaData, err := json.MarshalIndent(metaOut, "", "  ")
	if err != nil {
		return &errs.IOError{Path: s.metadataPath(), Op: "marshal metadata", Cause: err}
	}
	return writeFileAtomic(s.metadataPath(), metaData)
}

// writeFileAtomic writes data to a temp file in path's directory then
// renames it into place, so readers never observe a partial write.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.IOError{Path: dir, Op: "mkdir", Cause: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &errs.IOError{Path: path, Op: "create temp", Cause: err}
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &errs.IOError{Path: path, Op: "write temp", Cause: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &errs.IOError{Path: path, Op: "close temp", Cause: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &errs.IOError{Path: path, Op: "rename", Cause: err}
	}
	return nil
}

// RoutingFor exposes a copy of the shard ids routed to filePath, for
// callers (e.g. QueryAPI) that need to check routing-table membership
// without mutating it.
func (s *ShardStore) RoutingFor(filePath string) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.routing[filePath]...)
}

// ShardCount exposes the number of shards currently tracked, primarily
// for tests asserting the shard-bound invariant.
func (s *ShardStore) ShardCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.shards)
}

// ShardLineCount returns how many (file,line) entries shard id currently
// holds, or an error if it cannot be loaded.
func (s *ShardStore) ShardLineCount(id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, err := s.loadShard(id)
	if err != nil {
		return 0, err
	}
	return sh.count(), nil
}
</content>
