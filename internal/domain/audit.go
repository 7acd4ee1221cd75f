package domain

import "time"

// Audit status values.
const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailed  = "FAILED"
)

// AuditEntry records one pipeline operation for traceability.
// Corresponds to the audit_log table in PostgreSQL (append-only).
type AuditEntry struct {
	ID              int64 // assigned by the store
	LoggedAt        time.Time
	Operation       string // e.g. "ingest", "validate", "score"
	TableName       string // subject table or extract, empty for run-level entries
	RecordsAffected int
	DurationMs      int64
	Status          string  // SUCCESS | FAILED
	ErrorMessage    *string // set when Status is FAILED
}
