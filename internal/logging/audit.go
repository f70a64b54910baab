// Package logging provides audit logging: one structured JSON line per
// indexing/query event, suitable for offline analysis of coordinator runs.
package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditEventType names one kind of audit event.
type AuditEventType string

const (
	AuditIndexStart     AuditEventType = "index_start"
	AuditIndexSkip      AuditEventType = "index_skip"
	AuditIndexComplete  AuditEventType = "index_complete"
	AuditIndexFailed    AuditEventType = "index_failed"
	AuditInvariantBreak AuditEventType = "invariant_violation"
	AuditShardWrite     AuditEventType = "shard_write"
	AuditShardCorrupt   AuditEventType = "shard_corrupt"
	AuditQueryServed    AuditEventType = "query_served"
)

// AuditEvent is one structured audit log entry.
type AuditEvent struct {
	Timestamp  int64                  `json:"ts"`
	EventType  AuditEventType         `json:"event"`
	RunID      string                 `json:"run,omitempty"`
	File       string                 `json:"file,omitempty"`
	Revision   string                 `json:"revision,omitempty"`
	Success    bool                   `json:"success"`
	DurationMs int64                  `json:"dur_ms,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Message    string                 `json:"msg"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

var (
	auditFile *os.File
	auditMu   sync.Mutex
)

// InitAudit opens the audit log for the current run. No-op if debug mode
// is disabled.
func InitAudit() error {
	if !IsDebugMode() {
		return nil
	}
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile != nil {
		return nil
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_audit.log", date))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	auditFile = file
	return nil
}

// CloseAudit closes the audit log file.
func CloseAudit() {
	auditMu.Lock()
	defer auditMu.Unlock()
	if auditFile != nil {
		auditFile.Close()
		auditFile = nil
	}
}

// AuditLogger is a run-scoped emitter of AuditEvents.
type AuditLogger struct {
	runID string
}

// AuditWithRun scopes an audit logger to one coordinator run.
func AuditWithRun(runID string) *AuditLogger {
	return &AuditLogger{runID: runID}
}

// Log writes one audit event. No-op if the audit file isn't open.
func (a *AuditLogger) Log(event AuditEvent) {
	if auditFile == nil {
		return
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}
	if event.RunID == "" {
		event.RunID = a.runID
	}

	auditMu.Lock()
	defer auditMu.Unlock()
	data, err := json.Marshal(event)
	if err == nil {
		auditFile.Write(data)
		auditFile.Write([]byte("\n"))
	}
}

// IndexStart records that a file has entered indexing.
func (a *AuditLogger) IndexStart(file string) {
	a.Log(AuditEvent{EventType: AuditIndexStart, File: file, Success: true,
		Message: fmt.Sprintf("indexing started: %s", file)})
}

// IndexSkip records that a file was already up to date.
func (a *AuditLogger) IndexSkip(file, revision string) {
	a.Log(AuditEvent{EventType: AuditIndexSkip, File: file, Revision: revision, Success: true,
		Message: fmt.Sprintf("skip, already at %s: %s", revision, file)})
}

// IndexComplete records a successful file indexing run.
func (a *AuditLogger) IndexComplete(file, revision string, lineCount int, durationMs int64) {
	a.Log(AuditEvent{EventType: AuditIndexComplete, File: file, Revision: revision, Success: true,
		DurationMs: durationMs, Fields: map[string]interface{}{"lines": lineCount},
		Message: fmt.Sprintf("indexed %s at %s (%d lines, %dms)", file, revision, lineCount, durationMs)})
}

// IndexFailed records that a file's indexing was abandoned.
func (a *AuditLogger) IndexFailed(file, revision string, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	a.Log(AuditEvent{EventType: AuditIndexFailed, File: file, Revision: revision, Success: false,
		Error: msg, Message: fmt.Sprintf("indexing abandoned for %s at %s: %s", file, revision, msg)})
}

// InvariantViolation records a ReorderEngine post-condition failure.
func (a *AuditLogger) InvariantViolation(file, revision, detail string) {
	a.Log(AuditEvent{EventType: AuditInvariantBreak, File: file, Revision: revision, Success: false,
		Message: fmt.Sprintf("invariant violation in %s at %s: %s", file, revision, detail)})
}

// ShardWrite records a shard store append/replace.
func (a *AuditLogger) ShardWrite(file string, shardID int, lineCount int) {
	a.Log(AuditEvent{EventType: AuditShardWrite, File: file, Success: true,
		Fields:  map[string]interface{}{"shard_id": shardID, "lines": lineCount},
		Message: fmt.Sprintf("wrote %d lines for %s to shard %d", lineCount, file, shardID)})
}

// ShardCorrupt records that a shard was quarantined.
func (a *AuditLogger) ShardCorrupt(shardID int, cause error) {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	a.Log(AuditEvent{EventType: AuditShardCorrupt, Success: false, Error: msg,
		Fields:  map[string]interface{}{"shard_id": shardID},
		Message: fmt.Sprintf("quarantined shard %d: %s", shardID, msg)})
}

// QueryServed records a QueryAPI call.
func (a *AuditLogger) QueryServed(file string, start, end int, kind string, durationMs int64) {
	a.Log(AuditEvent{EventType: AuditQueryServed, File: file, Success: true, DurationMs: durationMs,
		Fields:  map[string]interface{}{"start": start, "end": end, "kind": kind},
		Message: fmt.Sprintf("query %s %s:%d-%d (%dms)", kind, file, start, end, durationMs)})
}
